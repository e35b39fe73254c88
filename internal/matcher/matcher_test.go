package matcher_test

import (
	"math"
	"testing"

	"transcriptsync/internal/catalog"
	"transcriptsync/internal/matcher"
)

func episodes(guests ...string) []catalog.Episode {
	out := make([]catalog.Episode, 0, len(guests))
	for i, g := range guests {
		out = append(out, catalog.Episode{ID: string(rune('1' + i)), Guest: g})
	}
	return out
}

func TestNormalizeStripsNoise(t *testing.T) {
	cases := map[string]string{
		"Jane_Smith_final.srt":        "jane smith",
		"Jane Smith (Final)":          "jane smith",
		"alex-rivera.en_us.srt":       "alex rivera",
		"José Álvarez (2).srt":        "jose alvarez",
		"Kim Park (new)_subtitles":    "kim park",
		"jsmith_interview_v2":         "jsmith interview",
		"  Sam   Lee.mp4 ":            "sam lee",
		"Lee__Chen--interview.en.srt": "lee chen interview",
	}
	for in, want := range cases {
		if got := matcher.Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestContainmentShortCircuitsAtFullConfidence(t *testing.T) {
	m := matcher.New(episodes("Jane Smyth", "Jane Smith"), 0)
	cand, ok := m.Match("Jane Smith (Final)")
	if !ok {
		t.Fatal("expected match")
	}
	if cand.Episode.Guest != "Jane Smith" || cand.Confidence != 1 || !cand.Contained {
		t.Fatalf("unexpected candidate %+v", cand)
	}
}

func TestGuestContainingShortNameMatches(t *testing.T) {
	m := matcher.New(episodes("Dr. Alexander Rivera"), 0)
	cand, ok := m.Match("rivera.srt")
	if !ok || !cand.Contained {
		t.Fatalf("expected containment match, got %+v ok=%v", cand, ok)
	}
}

func TestBelowThresholdIsNoMatch(t *testing.T) {
	m := matcher.New(episodes("Jane Smith"), 0)
	cand, ok := m.Match("jsmith_interview_v2")
	if ok {
		t.Fatalf("expected no match, got %+v", cand)
	}
	if cand.Confidence >= 0.6 {
		t.Fatalf("expected score below threshold, got %.3f", cand.Confidence)
	}
	if cand.Episode.Guest != "Jane Smith" {
		t.Fatalf("expected best candidate to be reported, got %+v", cand)
	}
}

func TestSharedFirstNameAloneDoesNotMatch(t *testing.T) {
	m := matcher.New(episodes("Sarah Rivera"), 0)
	cand, ok := m.Match("sarah_garcia_final.srt")
	if ok {
		t.Fatalf("expected no match, got %+v", cand)
	}
	if want := 14.0 / 24.0; math.Abs(cand.Confidence-want) > 1e-9 {
		t.Fatalf("confidence = %v, want %v", cand.Confidence, want)
	}
}

func TestFuzzyPicksHighestScore(t *testing.T) {
	m := matcher.New(episodes("Michael Chen", "Jane Smith", "Mika Chen"), 0)
	cand, ok := m.Match("mike_chen.srt")
	if !ok {
		t.Fatal("expected match")
	}
	if cand.Episode.Guest != "Mika Chen" {
		t.Fatalf("expected Mika Chen, got %+v", cand)
	}
	if cand.Contained {
		t.Fatal("fuzzy match flagged as containment")
	}
}

func TestTiesGoToFirstCatalogEntry(t *testing.T) {
	eps := []catalog.Episode{
		{ID: "10", Guest: "Jane Smith"},
		{ID: "20", Guest: "Jane Smith"},
	}
	m := matcher.New(eps, 0)
	cand, ok := m.Match("jane smyth")
	if !ok || cand.Episode.ID != "10" {
		t.Fatalf("expected first entry to win, got %+v ok=%v", cand, ok)
	}
}

func TestThresholdIsConfigurable(t *testing.T) {
	eps := episodes("Michael Chen")
	if _, ok := matcher.New(eps, 0).Match("mike chen"); !ok {
		t.Fatal("expected default threshold to accept 0.76")
	}
	strict := matcher.New(eps, 0.8)
	if strict.Threshold() != 0.8 {
		t.Fatalf("threshold = %v", strict.Threshold())
	}
	if _, ok := strict.Match("mike chen"); ok {
		t.Fatal("expected strict threshold to reject")
	}
}

func TestEmptyInputsNeverMatch(t *testing.T) {
	m := matcher.New(episodes("Jane Smith", ""), 0)
	if _, ok := m.Match(".srt"); ok {
		t.Fatal("empty normalized name must not match")
	}
	if _, ok := matcher.New(nil, 0).Match("jane smith"); ok {
		t.Fatal("empty catalog must not match")
	}
}
