package notion

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"transcriptsync/internal/services"
	"transcriptsync/internal/services/httpapi"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	defaultVersion = "2022-06-28"
	pageSize       = 100
)

// Config captures the runtime settings required to talk to the workspace.
type Config struct {
	APIKey            string
	BaseURL           string
	Version           string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client talks to the workspace database API.
type Client struct {
	http *httpapi.Client
}

// New constructs a client. Extra options (retry tuning, HTTP client) are
// passed through to the transport.
func New(cfg Config, opts ...httpapi.Option) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, services.Wrap(services.ErrConfiguration, "notion", "new client", "api key required", nil)
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	version := strings.TrimSpace(cfg.Version)
	if version == "" {
		version = defaultVersion
	}
	base := []httpapi.Option{
		httpapi.WithHeader("Authorization", "Bearer "+key),
		httpapi.WithHeader("Notion-Version", version),
		httpapi.WithRateLimit(cfg.RequestsPerSecond),
	}
	return &Client{http: httpapi.New("notion", baseURL, cfg.Timeout, append(base, opts...)...)}, nil
}

// Sort orders a database query.
type Sort struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

// Filter restricts a database query. Only numeric equality is needed.
type Filter struct {
	Property string        `json:"property"`
	Number   *NumberFilter `json:"number,omitempty"`
}

// NumberFilter is a numeric property condition.
type NumberFilter struct {
	Equals *float64 `json:"equals,omitempty"`
}

// NumberEquals builds a filter matching property == value.
func NumberEquals(property string, value int) *Filter {
	v := float64(value)
	return &Filter{Property: property, Number: &NumberFilter{Equals: &v}}
}

// Query is a database query request.
type Query struct {
	Filter      *Filter `json:"filter,omitempty"`
	Sorts       []Sort  `json:"sorts,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
	PageSize    int     `json:"page_size,omitempty"`
}

type queryResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// QueryDatabase returns every page matching q, following pagination.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, q Query) ([]Page, error) {
	if strings.TrimSpace(databaseID) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "notion", "query database", "database id required", nil)
	}
	if q.PageSize <= 0 {
		q.PageSize = pageSize
	}
	path := "/databases/" + url.PathEscape(databaseID) + "/query"
	var pages []Page
	for {
		var resp queryResponse
		if err := c.http.DoJSON(ctx, http.MethodPost, path, nil, q, &resp); err != nil {
			return nil, err
		}
		pages = append(pages, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			return pages, nil
		}
		q.StartCursor = resp.NextCursor
	}
}

// FindPageByNumber returns the first page whose numeric property equals n.
// ok is false when no page matches.
func (c *Client) FindPageByNumber(ctx context.Context, databaseID, property string, n int) (page Page, ok bool, err error) {
	path := "/databases/" + url.PathEscape(databaseID) + "/query"
	var resp queryResponse
	q := Query{Filter: NumberEquals(property, n), PageSize: 1}
	if err := c.http.DoJSON(ctx, http.MethodPost, path, nil, q, &resp); err != nil {
		return Page{}, false, err
	}
	if len(resp.Results) == 0 {
		return Page{}, false, nil
	}
	return resp.Results[0], true, nil
}

type childrenResponse struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor string  `json:"next_cursor"`
}

// ListChildren returns every child block of a page or block.
func (c *Client) ListChildren(ctx context.Context, blockID string) ([]Block, error) {
	path := "/blocks/" + url.PathEscape(blockID) + "/children"
	query := url.Values{"page_size": {strconv.Itoa(pageSize)}}
	var blocks []Block
	for {
		var resp childrenResponse
		if err := c.http.DoJSON(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
			return nil, err
		}
		blocks = append(blocks, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			return blocks, nil
		}
		query.Set("start_cursor", resp.NextCursor)
	}
}

// AppendChildren appends blocks to a page in a single request. Callers must
// respect the per-request block limit.
func (c *Client) AppendChildren(ctx context.Context, blockID string, blocks []Block) error {
	if len(blocks) == 0 {
		return nil
	}
	if len(blocks) > pageSize {
		return services.Wrap(services.ErrValidation, "notion", "append children", "too many blocks in one request", errors.New(strconv.Itoa(len(blocks))))
	}
	path := "/blocks/" + url.PathEscape(blockID) + "/children"
	body := map[string]any{"children": blocks}
	return c.http.DoJSON(ctx, http.MethodPatch, path, nil, body, nil)
}

// UpdateURLProperty sets a url-typed page property.
func (c *Client) UpdateURLProperty(ctx context.Context, pageID, property, value string) error {
	path := "/pages/" + url.PathEscape(pageID)
	body := map[string]any{
		"properties": map[string]any{
			property: map[string]any{"url": value},
		},
	}
	return c.http.DoJSON(ctx, http.MethodPatch, path, nil, body, nil)
}
