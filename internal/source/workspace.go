package source

import (
	"context"
	"strings"

	"transcriptsync/internal/catalog"
	"transcriptsync/internal/services"
	"transcriptsync/internal/services/notion"
	"transcriptsync/internal/transcript"
)

// PageReader finds episode pages and reads their blocks.
type PageReader interface {
	FindPageByNumber(ctx context.Context, databaseID, property string, n int) (notion.Page, bool, error)
	ListChildren(ctx context.Context, blockID string) ([]notion.Block, error)
}

// Workspace reads back transcript sections published to episode pages.
type Workspace struct {
	Pages           PageReader
	DatabaseID      string
	EpisodeProperty string
	// Marker is matched case-insensitively against heading text.
	Marker string
}

// Name implements Source.
func (s *Workspace) Name() string { return "workspace" }

// Items lists every numbered episode, newest first.
func (s *Workspace) Items(_ context.Context, idx *catalog.Index) ([]Item, error) {
	all := episodeItems(idx, false)
	items := all[:0]
	for _, item := range all {
		if _, ok := item.Episode.Number(); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// Fetch returns the paragraphs under the transcript heading, blank-line
// separated. A missing page or section is unavailable, not an error.
func (s *Workspace) Fetch(ctx context.Context, item Item, _ Progress) (transcript.Artifact, error) {
	n, ok := item.Episode.Number()
	if !ok {
		return transcript.Artifact{}, reasoned(ErrNoPage, services.ErrSourceUnavailable, "workspace", "find page", "episode id is not numeric", nil)
	}
	page, found, err := s.Pages.FindPageByNumber(ctx, s.DatabaseID, s.EpisodeProperty, n)
	if err != nil {
		return transcript.Artifact{}, err
	}
	if !found {
		return transcript.Artifact{}, reasoned(ErrNoPage, services.ErrSourceUnavailable, "workspace", "find page", "no page for episode "+item.Episode.ID, nil)
	}
	blocks, err := s.Pages.ListChildren(ctx, page.ID)
	if err != nil {
		return transcript.Artifact{}, err
	}
	text, ok := TranscriptSection(blocks, s.Marker)
	if !ok {
		return transcript.Artifact{}, reasoned(ErrNoSection, services.ErrSourceUnavailable, "workspace", "read section", "page has no transcript section", nil)
	}
	return transcript.Artifact{
		Format:   transcript.FormatText,
		SourceID: page.ID,
		Content:  []byte(text),
	}, nil
}

// TranscriptSection collects paragraph text after the first heading that
// contains marker, up to the next heading.
func TranscriptSection(blocks []notion.Block, marker string) (string, bool) {
	marker = strings.ToLower(strings.TrimSpace(marker))
	if marker == "" {
		marker = "transcript"
	}
	var (
		inside     bool
		found      bool
		paragraphs []string
	)
	for _, b := range blocks {
		if b.IsHeading() {
			if inside {
				break
			}
			if strings.Contains(strings.ToLower(b.PlainText()), marker) {
				inside = true
				found = true
			}
			continue
		}
		if !inside || b.Type != notion.BlockParagraph {
			continue
		}
		if text := strings.TrimSpace(b.PlainText()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}
	if !found || len(paragraphs) == 0 {
		return "", false
	}
	return strings.Join(paragraphs, "\n\n"), true
}
