package textutil

import (
	"math"
	"strings"
	"testing"
)

func TestRatioKnownValues(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"abc", "", 0},
		{"jane smith", "jane smith", 1},
		{"jsmith interview v2", "jane smith", 12.0 / 29.0},
		{"smith jane", "jane smith", 0.5},
		{"jane smyth", "jane smith", 0.9},
		{"dr alexander rivero", "alex rivera", 20.0 / 30.0},
	}
	for _, tt := range tests {
		got := Ratio(tt.a, tt.b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRatioUsesBlocksNotSubsequence(t *testing.T) {
	// A longest common subsequence would give 18/24 here.
	if got, want := Ratio("sarah garcia", "sarah rivera"), 14.0/24.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Ratio() = %v, want %v", got, want)
	}
}

func TestRatioDependsOnArgumentOrder(t *testing.T) {
	if got := Ratio("alex rivera", "chen mika"); math.Abs(got-0.1) > 1e-9 {
		t.Errorf("Ratio(name, guest) = %v, want 0.1", got)
	}
	if got := Ratio("chen mika", "alex rivera"); math.Abs(got-0.4) > 1e-9 {
		t.Errorf("Ratio(guest, name) = %v, want 0.4", got)
	}
}

func TestRatioPrunesPopularRunesInLongInput(t *testing.T) {
	long := strings.Repeat("a", 250)
	if got := Ratio("xaaaaa", long); got != 0 {
		t.Errorf("Ratio() = %v, want 0", got)
	}
	// The block found on "b" still extends over the pruned runes.
	if got, want := Ratio("aaab", long+"b"), 8.0/255.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Ratio() = %v, want %v", got, want)
	}
}

func TestRatioCountsRunesNotBytes(t *testing.T) {
	if got := Ratio("josé", "josé"); got != 1 {
		t.Errorf("Ratio(identical multibyte) = %v, want 1", got)
	}
	if got := Ratio("é", "e"); got != 0 {
		t.Errorf("Ratio(distinct runes) = %v, want 0", got)
	}
}

func TestFoldStripsDiacriticsAndCase(t *testing.T) {
	if got := Fold("José NÚÑEZ"); got != "jose nunez" {
		t.Errorf("Fold() = %q, want %q", got, "jose nunez")
	}
}

func TestCollapseSpace(t *testing.T) {
	if got := CollapseSpace("  a \t b\n\nc  "); got != "a b c" {
		t.Errorf("CollapseSpace() = %q", got)
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := map[string]string{
		"Alex Rivera":        "alex_rivera",
		"José Núñez":         "jose_nunez",
		"Dr. Mika  (Chen)":   "dr_mika_chen",
		"1171":               "1171",
		"  ":                 "unknown",
		"???":                "unknown",
		"o'brien-smith, jr.": "o_brien-smith_jr",
	}
	for in, want := range tests {
		if got := SanitizeToken(in); got != want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", in, got, want)
		}
	}
}
