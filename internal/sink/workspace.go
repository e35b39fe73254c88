package sink

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"transcriptsync/internal/logging"
	"transcriptsync/internal/services"
	"transcriptsync/internal/services/notion"
	"transcriptsync/internal/transcript"
)

// NameWorkspace is the registered name of the workspace database sink.
const NameWorkspace = "workspace"

// Workspace defaults.
const (
	DefaultChunkChars = 1900
	DefaultMaxBlocks  = 100
	DefaultHeading    = "📝 Transcript"
	DefaultMarker     = "Transcript"
)

// PageWriter is the workspace surface the sink uses.
type PageWriter interface {
	FindPageByNumber(ctx context.Context, databaseID, property string, n int) (notion.Page, bool, error)
	ListChildren(ctx context.Context, blockID string) ([]notion.Block, error)
	AppendChildren(ctx context.Context, blockID string, blocks []notion.Block) error
	UpdateURLProperty(ctx context.Context, pageID, property, value string) error
}

// Workspace appends a transcript section to the episode's database page.
type Workspace struct {
	Pages           PageWriter
	DatabaseID      string
	EpisodeProperty string
	// Marker identifies an existing transcript heading (case-insensitive).
	Marker  string
	Heading string
	// ChunkChars bounds each paragraph block; the platform limit is 2000.
	ChunkChars int
	// MaxBlocks caps one append request, heading and divider included.
	MaxBlocks int
	// LinkProperty receives the document URL when a docstore ack is present.
	LinkProperty string
	Logger       *slog.Logger
}

// Name implements Sink.
func (s *Workspace) Name() string { return NameWorkspace }

// Publish appends divider, heading and chunked paragraphs in a single
// request unless the page already has a transcript heading.
func (s *Workspace) Publish(ctx context.Context, req Request) (Ack, error) {
	n, ok := req.Episode.Number()
	if !ok {
		return Ack{}, services.Wrap(services.ErrValidation, "workspace", "publish", "episode id "+req.Episode.ID+" is not numeric", nil)
	}
	page, found, err := s.Pages.FindPageByNumber(ctx, s.DatabaseID, s.EpisodeProperty, n)
	if err != nil {
		return Ack{}, err
	}
	if !found {
		return Ack{}, services.Wrap(services.ErrNotFound, "workspace", "find page", fmt.Sprintf("no page for episode %d", n), nil)
	}
	ack := Ack{Sink: NameWorkspace, Location: page.URL}
	if ack.Location == "" {
		ack.Location = page.ID
	}

	children, err := s.Pages.ListChildren(ctx, page.ID)
	if err != nil {
		return Ack{}, err
	}
	if HasSection(children, s.marker()) {
		ack.Existing = true
	} else {
		blocks := BuildBlocks(req.Transcript.Paragraphs(), s.heading(), s.chunkChars(), s.maxBlocks())
		if err := s.Pages.AppendChildren(ctx, page.ID, blocks); err != nil {
			return Ack{}, err
		}
	}
	s.updateLink(ctx, page.ID, req)
	return ack, nil
}

func (s *Workspace) updateLink(ctx context.Context, pageID string, req Request) {
	link := req.Location(NameDocstore)
	if link == "" || strings.TrimSpace(s.LinkProperty) == "" {
		return
	}
	if err := s.Pages.UpdateURLProperty(ctx, pageID, s.LinkProperty, link); err != nil {
		logger := logging.WithContext(ctx, logging.NewComponentLogger(s.logger(), "workspace"))
		logging.WarnWithContext(logger, "transcript link not recorded", "link_update_failed",
			logging.String("property", s.LinkProperty),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "set the page property by hand or rerun with --retry-failed"))
	}
}

// HasSection reports whether any heading contains marker.
func HasSection(blocks []notion.Block, marker string) bool {
	marker = strings.ToLower(marker)
	for _, b := range blocks {
		if b.IsHeading() && strings.Contains(strings.ToLower(b.PlainText()), marker) {
			return true
		}
	}
	return false
}

// BuildBlocks lays out divider, heading and paragraph chunks so the total
// never exceeds maxBlocks. Chunks past the cap are replaced by a single
// truncation marker naming how many were left out.
func BuildBlocks(paragraphs []string, heading string, chunkChars, maxBlocks int) []notion.Block {
	var chunks []string
	for _, p := range paragraphs {
		chunks = append(chunks, transcript.Chunk(p, chunkChars)...)
	}
	capacity := maxBlocks - 3
	blocks := make([]notion.Block, 0, min(len(chunks), capacity)+3)
	blocks = append(blocks, notion.DividerBlock(), notion.Heading2Block(heading))
	if len(chunks) <= capacity+1 {
		for _, c := range chunks {
			blocks = append(blocks, notion.ParagraphBlock(c))
		}
		return blocks
	}
	for _, c := range chunks[:capacity] {
		blocks = append(blocks, notion.ParagraphBlock(c))
	}
	marker := fmt.Sprintf("[... transcript truncated, %d more paragraphs ...]", len(chunks)-capacity)
	return append(blocks, notion.ParagraphBlock(marker))
}

func (s *Workspace) marker() string {
	if strings.TrimSpace(s.Marker) == "" {
		return DefaultMarker
	}
	return s.Marker
}

func (s *Workspace) heading() string {
	if strings.TrimSpace(s.Heading) == "" {
		return DefaultHeading
	}
	return s.Heading
}

func (s *Workspace) chunkChars() int {
	if s.ChunkChars <= 0 {
		return DefaultChunkChars
	}
	return s.ChunkChars
}

func (s *Workspace) maxBlocks() int {
	if s.MaxBlocks < 4 {
		return DefaultMaxBlocks
	}
	return s.MaxBlocks
}

func (s *Workspace) logger() *slog.Logger {
	if s.Logger == nil {
		return logging.NewNop()
	}
	return s.Logger
}
