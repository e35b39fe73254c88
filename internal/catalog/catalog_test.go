package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"transcriptsync/internal/catalog"
	"transcriptsync/internal/services/notion"
)

func TestExtractVideoIDShapes(t *testing.T) {
	const id = "8AkPm4Zy3MU"
	shapes := []string{
		"https://youtu.be/8AkPm4Zy3MU",
		"https://youtu.be/8AkPm4Zy3MU?t=42",
		"https://www.youtube.com/watch?v=8AkPm4Zy3MU",
		"https://www.youtube.com/watch?feature=share&v=8AkPm4Zy3MU&t=1",
		"youtube.com/watch?v=8AkPm4Zy3MU",
		"https://www.youtube.com/embed/8AkPm4Zy3MU",
		"https://m.youtube.com/shorts/8AkPm4Zy3MU",
		"https://www.youtube.com/live/8AkPm4Zy3MU?si=x",
		"8AkPm4Zy3MU",
	}
	for _, shape := range shapes {
		if got := catalog.ExtractVideoID(shape); got != id {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", shape, got, id)
		}
	}
	for _, bad := range []string{"", "https://open.spotify.com/episode/abc", "https://vimeo.com/123", "short"} {
		if got := catalog.ExtractVideoID(bad); got != "" {
			t.Errorf("ExtractVideoID(%q) = %q, want empty", bad, got)
		}
	}
}

func TestLoadJSONWithNumericIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "episodes.json")
	content := `[
  {"episode": 1171, "guest": "Alex Rivera", "youtubeId": "8AkPm4Zy3MU"},
  {"episode": "12", "guest": " Jane Smith ", "link": "https://youtu.be/abcdefghijk"},
  {"episode": "", "guest": "No Id"},
  {"episode": "12", "guest": "Duplicate"}
]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	idx, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if idx.Len() != 2 {
		t.Fatalf("expected 2 episodes, got %d", idx.Len())
	}
	ep, ok := idx.Lookup("1171")
	if !ok || ep.Guest != "Alex Rivera" || ep.VideoRef() != "8AkPm4Zy3MU" {
		t.Fatalf("unexpected episode %+v", ep)
	}
	ep, _ = idx.Lookup("12")
	if ep.Guest != "Jane Smith" || ep.VideoRef() != "abcdefghijk" {
		t.Fatalf("unexpected episode %+v", ep)
	}
	if diff := cmp.Diff([]string{"12"}, idx.Duplicates()); diff != "" {
		t.Fatalf("duplicates mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "episodes.yaml")
	content := "- episode: 3\n  guest: Sam Lee\n  youtube_url: https://www.youtube.com/watch?v=abcdefghijk\n  folder_id: fold-3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	idx, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ep, ok := idx.Lookup("3")
	if !ok || ep.FolderID != "fold-3" || ep.VideoRef() != "abcdefghijk" {
		t.Fatalf("unexpected episode %+v", ep)
	}
}

func TestNewestFirstOrdersNumericDescending(t *testing.T) {
	idx := catalog.NewIndex([]catalog.Episode{
		{ID: "9", Guest: "a"},
		{ID: "bonus", Guest: "b"},
		{ID: "1171", Guest: "c"},
		{ID: "100", Guest: "d"},
	})
	var got []string
	for _, ep := range idx.NewestFirst() {
		got = append(got, ep.ID)
	}
	if diff := cmp.Diff([]string{"1171", "100", "9", "bonus"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if idx.All()[0].ID != "9" {
		t.Fatalf("expected All to keep catalog order")
	}
}

func TestSaveRoundTripsThroughLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "episodes.json")
	episodes := []catalog.Episode{{ID: "5", Guest: "Kim Park", VideoID: "abcdefghijk"}}
	if err := catalog.Save(path, episodes); err != nil {
		t.Fatalf("Save: %v", err)
	}
	idx, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(episodes, idx.All()); diff != "" {
		t.Fatalf("catalog mismatch (-want +got):\n%s", diff)
	}
}

type fakeDatabase struct {
	pages []notion.Page
	query notion.Query
}

func (f *fakeDatabase) QueryDatabase(_ context.Context, _ string, q notion.Query) ([]notion.Page, error) {
	f.query = q
	return f.pages, nil
}

func TestFetchFromWorkspaceMapsProperties(t *testing.T) {
	num := 1171.0
	yt := "https://youtu.be/8AkPm4Zy3MU"
	spotify := "https://open.spotify.com/episode/x"
	folder := "https://drive.google.com/drive/folders/fold-1171?usp=sharing"
	db := &fakeDatabase{pages: []notion.Page{
		{
			ID: "p1",
			Properties: map[string]notion.Property{
				"Episode No.":           {Type: "number", Number: &num},
				"Episode Name":          {Type: "title", Title: []notion.RichText{{PlainText: "Alex Rivera"}}},
				"Podcast Episode Title": {Type: "rich_text", RichText: []notion.RichText{{PlainText: "Leading Teams"}}},
				"YouTube Link":          {Type: "url", URL: &yt},
				"Spotify Link":          {Type: "url", URL: &spotify},
				"Drive Folder":          {Type: "url", URL: &folder},
				"Publication Date":      {Type: "date", Date: &notion.DateValue{Start: "2024-05-01"}},
				"Series":                {Type: "select", Select: &notion.SelectValue{Name: "Main"}},
			},
		},
		{ID: "empty", Properties: map[string]notion.Property{}},
	}}

	episodes, err := catalog.FetchFromWorkspace(context.Background(), db, "db", "")
	if err != nil {
		t.Fatalf("FetchFromWorkspace: %v", err)
	}
	want := []catalog.Episode{{
		ID:       "1171",
		Title:    "Ep1171: Alex Rivera: Leading Teams",
		Guest:    "Alex Rivera",
		Topic:    "Leading Teams",
		Link:     spotify,
		VideoURL: yt,
		VideoID:  "8AkPm4Zy3MU",
		Date:     "2024-05-01",
		Series:   "Main",
		FolderID: "fold-1171",
	}}
	if diff := cmp.Diff(want, episodes); diff != "" {
		t.Fatalf("episodes mismatch (-want +got):\n%s", diff)
	}
	if len(db.query.Sorts) != 1 || db.query.Sorts[0].Direction != "descending" || db.query.PageSize != 100 {
		t.Fatalf("unexpected query %+v", db.query)
	}
}
