package notion_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"transcriptsync/internal/services"
	"transcriptsync/internal/services/notion"
)

func newClient(t *testing.T, url string) *notion.Client {
	t.Helper()
	client, err := notion.New(notion.Config{APIKey: "secret", BaseURL: url})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := notion.New(notion.Config{}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestQueryDatabaseFollowsCursor(t *testing.T) {
	var bodies []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/databases/db1/query" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Notion-Version") != "2022-06-28" {
			t.Fatalf("missing version header")
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Fatalf("missing auth header")
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		bodies = append(bodies, body)
		if _, ok := body["start_cursor"]; !ok {
			_, _ = io.WriteString(w, `{"results":[{"id":"p1"}],"has_more":true,"next_cursor":"c2"}`)
			return
		}
		_, _ = io.WriteString(w, `{"results":[{"id":"p2"}],"has_more":false}`)
	}))
	defer server.Close()

	pages, err := newClient(t, server.URL).QueryDatabase(context.Background(), "db1", notion.Query{
		Sorts: []notion.Sort{{Property: "Episode No.", Direction: "descending"}},
	})
	if err != nil {
		t.Fatalf("QueryDatabase: %v", err)
	}
	if len(pages) != 2 || pages[0].ID != "p1" || pages[1].ID != "p2" {
		t.Fatalf("unexpected pages %+v", pages)
	}
	if bodies[0]["page_size"].(float64) != 100 {
		t.Fatalf("expected page_size 100, got %v", bodies[0]["page_size"])
	}
	if bodies[1]["start_cursor"] != "c2" {
		t.Fatalf("expected cursor on second call, got %v", bodies[1])
	}
}

func TestFindPageByNumberSendsFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(data), `"filter":{"property":"Episode No.","number":{"equals":1171}}`) {
			t.Fatalf("unexpected body %s", data)
		}
		_, _ = io.WriteString(w, `{"results":[{"id":"page-1171","url":"https://notion.so/page-1171"}]}`)
	}))
	defer server.Close()

	page, ok, err := newClient(t, server.URL).FindPageByNumber(context.Background(), "db", "Episode No.", 1171)
	if err != nil || !ok {
		t.Fatalf("FindPageByNumber: ok=%v err=%v", ok, err)
	}
	if page.ID != "page-1171" {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestListChildrenAndPlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start_cursor") == "" {
			_, _ = io.WriteString(w, `{"results":[{"type":"heading_2","heading_2":{"rich_text":[{"plain_text":"📝 Transcript"}]}}],"has_more":true,"next_cursor":"n"}`)
			return
		}
		_, _ = io.WriteString(w, `{"results":[{"type":"paragraph","paragraph":{"rich_text":[{"plain_text":"hello "},{"plain_text":"world"}]}}]}`)
	}))
	defer server.Close()

	blocks, err := newClient(t, server.URL).ListChildren(context.Background(), "page")
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if !blocks[0].IsHeading() || blocks[0].PlainText() != "📝 Transcript" {
		t.Fatalf("unexpected heading %+v", blocks[0])
	}
	if blocks[1].PlainText() != "hello world" {
		t.Fatalf("unexpected paragraph text %q", blocks[1].PlainText())
	}
}

func TestAppendChildrenEncodesBlocks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Fatalf("expected PATCH, got %s", r.Method)
		}
		data, _ := io.ReadAll(r.Body)
		body := string(data)
		for _, fragment := range []string{`"type":"divider","divider":{}`, `"heading_2":{"rich_text":[{"type":"text","text":{"content":"📝 Transcript"}}]}`} {
			if !strings.Contains(body, fragment) {
				t.Fatalf("expected %s in %s", fragment, body)
			}
		}
		_, _ = io.WriteString(w, `{}`)
	}))
	defer server.Close()

	blocks := []notion.Block{notion.DividerBlock(), notion.Heading2Block("📝 Transcript"), notion.ParagraphBlock("text")}
	if err := newClient(t, server.URL).AppendChildren(context.Background(), "page", blocks); err != nil {
		t.Fatalf("AppendChildren: %v", err)
	}
}

func TestAppendChildrenRejectsOversizedRequest(t *testing.T) {
	client := newClient(t, "http://unused.invalid")
	blocks := make([]notion.Block, 101)
	for i := range blocks {
		blocks[i] = notion.ParagraphBlock("x")
	}
	if err := client.AppendChildren(context.Background(), "page", blocks); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateURLProperty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pages/page-1" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			Properties map[string]struct {
				URL string `json:"url"`
			} `json:"properties"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Properties["Link to transcript"].URL != "https://docs.google.com/document/d/doc1" {
			t.Fatalf("unexpected body %+v", body)
		}
		_, _ = io.WriteString(w, `{}`)
	}))
	defer server.Close()

	err := newClient(t, server.URL).UpdateURLProperty(context.Background(), "page-1", "Link to transcript", "https://docs.google.com/document/d/doc1")
	if err != nil {
		t.Fatalf("UpdateURLProperty: %v", err)
	}
}
