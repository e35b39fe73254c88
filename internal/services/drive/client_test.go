package drive_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"transcriptsync/internal/services"
	"transcriptsync/internal/services/drive"
)

func newClient(t *testing.T, url string) *drive.Client {
	t.Helper()
	client, err := drive.New(context.Background(), drive.Config{
		AccessToken: "tok",
		BaseURL:     url,
		DocsBaseURL: url + "/docs",
		Timeout:     5 * time.Second,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestNewRequiresToken(t *testing.T) {
	if _, err := drive.New(context.Background(), drive.Config{}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSearchPaginatesWithBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Fatalf("missing oauth bearer header, got %q", r.Header.Get("Authorization"))
		}
		if r.URL.Query().Get("q") != "name contains '.srt'" {
			t.Fatalf("unexpected query %q", r.URL.Query().Get("q"))
		}
		if r.URL.Query().Get("pageToken") == "" {
			_, _ = io.WriteString(w, `{"files":[{"id":"f1","name":"a.srt"}],"nextPageToken":"t2"}`)
			return
		}
		_, _ = io.WriteString(w, `{"files":[{"id":"f2","name":"b.srt"}]}`)
	}))
	defer server.Close()

	files, err := newClient(t, server.URL).Search(context.Background(), "name contains '.srt'")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(files) != 2 || files[1].ID != "f2" {
		t.Fatalf("unexpected files %+v", files)
	}
}

func TestDownloadUsesAltMedia(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/f1" || r.URL.Query().Get("alt") != "media" {
			t.Fatalf("unexpected request %s", r.URL.String())
		}
		_, _ = io.WriteString(w, "1\n00:00:01,000 --> 00:00:02,000\nhello\n")
	}))
	defer server.Close()

	data, err := newClient(t, server.URL).Download(context.Background(), "f1")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("unexpected body %q", data)
	}
}

func TestCreateDocumentAndInsertText(t *testing.T) {
	var inserted string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/files":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["mimeType"] != drive.DocumentMimeType || body["name"] != "Ep7 - Jane Smith (Transcript)" {
				t.Fatalf("unexpected create body %v", body)
			}
			_, _ = io.WriteString(w, `{"id":"doc1","name":"Ep7 - Jane Smith (Transcript)"}`)
		case "/docs/documents/doc1:batchUpdate":
			data, _ := io.ReadAll(r.Body)
			inserted = string(data)
			_, _ = io.WriteString(w, `{}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	doc, err := client.CreateDocument(context.Background(), "folder", "Ep7 - Jane Smith (Transcript)")
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if err := client.InsertText(context.Background(), doc.ID, "transcript body"); err != nil {
		t.Fatalf("InsertText: %v", err)
	}
	if !strings.Contains(inserted, `"index":1`) || !strings.Contains(inserted, "transcript body") {
		t.Fatalf("unexpected insert body %s", inserted)
	}
}

func TestDeleteFile(t *testing.T) {
	var method, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	if err := client.DeleteFile(context.Background(), "doc1"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if method != http.MethodDelete || path != "/files/doc1" {
		t.Fatalf("unexpected request %s %s", method, path)
	}
}

func TestSearchInFolderEscapesQuotes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := `'fo\'lder' in parents and name contains 'Transcript' and trashed = false`
		if got := r.URL.Query().Get("q"); got != want {
			t.Fatalf("unexpected query %q", got)
		}
		_, _ = io.WriteString(w, `{"files":[]}`)
	}))
	defer server.Close()

	if _, err := newClient(t, server.URL).SearchInFolder(context.Background(), "fo'lder", "Transcript"); err != nil {
		t.Fatalf("SearchInFolder: %v", err)
	}
}
