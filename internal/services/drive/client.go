package drive

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"transcriptsync/internal/services"
	"transcriptsync/internal/services/httpapi"
)

const (
	defaultDriveURL = "https://www.googleapis.com/drive/v3"
	defaultDocsURL  = "https://docs.googleapis.com/v1"
	// DocumentMimeType marks a native document in the file store.
	DocumentMimeType = "application/vnd.google-apps.document"
	searchPageSize   = "1000"
)

// Config captures the runtime settings required to talk to the store.
type Config struct {
	AccessToken string
	BaseURL     string
	DocsBaseURL string
	Timeout     time.Duration
}

// File is a file store entry.
type File struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType,omitempty"`
}

// Client talks to the file and document APIs.
type Client struct {
	files *httpapi.Client
	docs  *httpapi.Client
}

// New constructs a client authenticated with a static bearer token.
func New(ctx context.Context, cfg Config, opts ...httpapi.Option) (*Client, error) {
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return nil, services.Wrap(services.ErrConfiguration, "drive", "new client", "access token required", nil)
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultDriveURL
	}
	docsURL := strings.TrimSpace(cfg.DocsBaseURL)
	if docsURL == "" {
		docsURL = defaultDocsURL
	}
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
	httpClient.Timeout = cfg.Timeout
	base := []httpapi.Option{httpapi.WithHTTPClient(httpClient)}
	return &Client{
		files: httpapi.New("drive", baseURL, cfg.Timeout, append(base, opts...)...),
		docs:  httpapi.New("docs", docsURL, cfg.Timeout, append(base, opts...)...),
	}, nil
}

type listResponse struct {
	Files         []File `json:"files"`
	NextPageToken string `json:"nextPageToken"`
}

// Search returns every file matching the query expression, following pagination.
func (c *Client) Search(ctx context.Context, query string) ([]File, error) {
	params := url.Values{
		"q":        {query},
		"pageSize": {searchPageSize},
		"fields":   {"nextPageToken,files(id,name,mimeType)"},
	}
	var files []File
	for {
		var resp listResponse
		if err := c.files.DoJSON(ctx, http.MethodGet, "/files", params, nil, &resp); err != nil {
			return nil, err
		}
		files = append(files, resp.Files...)
		if resp.NextPageToken == "" {
			return files, nil
		}
		params.Set("pageToken", resp.NextPageToken)
	}
}

// SearchInFolder returns files in folderID whose name contains fragment.
func (c *Client) SearchInFolder(ctx context.Context, folderID, fragment string) ([]File, error) {
	query := "'" + escapeQuery(folderID) + "' in parents and name contains '" + escapeQuery(fragment) + "' and trashed = false"
	return c.Search(ctx, query)
}

// Download fetches the raw bytes of a file.
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	return c.files.Get(ctx, "/files/"+url.PathEscape(fileID), url.Values{"alt": {"media"}})
}

// CreateDocument creates an empty native document named name inside folderID.
func (c *Client) CreateDocument(ctx context.Context, folderID, name string) (File, error) {
	body := map[string]any{
		"name":     name,
		"mimeType": DocumentMimeType,
		"parents":  []string{folderID},
	}
	var created File
	if err := c.files.DoJSON(ctx, http.MethodPost, "/files", nil, body, &created); err != nil {
		return File{}, err
	}
	if created.ID == "" {
		return File{}, services.Wrap(services.ErrTransient, "drive", "create document", "response missing id", nil)
	}
	return created, nil
}

// InsertText writes text at the start of a document body.
func (c *Client) InsertText(ctx context.Context, documentID, text string) error {
	body := map[string]any{
		"requests": []any{
			map[string]any{
				"insertText": map[string]any{
					"location": map[string]int{"index": 1},
					"text":     text,
				},
			},
		},
	}
	return c.docs.DoJSON(ctx, http.MethodPost, "/documents/"+url.PathEscape(documentID)+":batchUpdate", nil, body, nil)
}

// DeleteFile permanently removes a file the caller owns.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	return c.files.DoJSON(ctx, http.MethodDelete, "/files/"+url.PathEscape(fileID), nil, nil, nil)
}

// DocumentURL returns the browser URL of a native document.
func DocumentURL(documentID string) string {
	return "https://docs.google.com/document/d/" + documentID + "/edit"
}

func escapeQuery(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `'`, `\'`)
}
