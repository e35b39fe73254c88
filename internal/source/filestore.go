package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"transcriptsync/internal/catalog"
	"transcriptsync/internal/logging"
	"transcriptsync/internal/matcher"
	"transcriptsync/internal/services"
	"transcriptsync/internal/services/drive"
	"transcriptsync/internal/transcript"
)

// DefaultFileQuery finds subtitle files in the file store.
const DefaultFileQuery = "name contains '.srt' and trashed = false"

// FileStore searches and downloads files.
type FileStore interface {
	Search(ctx context.Context, query string) ([]drive.File, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// Files reconciles subtitle files found in the file store with the catalog.
type Files struct {
	Store     FileStore
	Query     string
	Threshold float64
	Logger    *slog.Logger
}

// Name implements Source.
func (s *Files) Name() string { return "filestore" }

// Items searches the store and matches every eligible file to an episode.
// When several files match one episode the most confident wins; the others
// come back as duplicates keyed by file id. Unmatched files are keyed by
// file id and carry a no-match error.
func (s *Files) Items(ctx context.Context, idx *catalog.Index) ([]Item, error) {
	query := strings.TrimSpace(s.Query)
	if query == "" {
		query = DefaultFileQuery
	}
	files, err := s.Store.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search file store: %w", err)
	}
	logger := logging.NewComponentLogger(s.logger(), "filestore")

	m := matcher.New(idx.All(), s.Threshold)
	winners := make(map[string]int)
	var items []Item
	for _, f := range files {
		if !EligibleFileName(f.Name) {
			logger.Debug("file ignored", logging.String("file", f.Name))
			continue
		}
		cand, ok := m.Match(f.Name)
		if !ok {
			items = append(items, Item{
				Key:        f.ID,
				Label:      f.Name,
				ExternalID: f.ID,
				Name:       f.Name,
				Confidence: cand.Confidence,
				Err: reasoned(ErrNoMatch, services.ErrValidation, "filestore", "match",
					fmt.Sprintf("%q best score %.2f below %.2f", f.Name, cand.Confidence, m.Threshold()), nil),
			})
			continue
		}
		item := Item{
			Key:        cand.Episode.ID,
			Label:      cand.Episode.Label(),
			Episode:    cand.Episode,
			ExternalID: f.ID,
			Name:       f.Name,
			Confidence: cand.Confidence,
		}
		pos, seen := winners[item.Key]
		if !seen {
			winners[item.Key] = len(items)
			items = append(items, item)
			continue
		}
		loser := item
		if item.Confidence > items[pos].Confidence {
			loser = items[pos]
			items[pos] = item
		}
		items = append(items, duplicateItem(loser, items[pos]))
	}
	return orderNewestFirst(items, idx), nil
}

func duplicateItem(loser, winner Item) Item {
	return Item{
		Key:        loser.ExternalID,
		Label:      loser.Name,
		ExternalID: loser.ExternalID,
		Name:       loser.Name,
		Confidence: loser.Confidence,
		Err: reasoned(ErrDuplicate, services.ErrSourceUnavailable, "filestore", "match",
			fmt.Sprintf("%q lost to %q for episode %s", loser.Name, winner.Name, winner.Episode.ID), nil),
	}
}

// orderNewestFirst puts matched items in catalog newest-first order,
// followed by decided items in search order.
func orderNewestFirst(items []Item, idx *catalog.Index) []Item {
	byEpisode := make(map[string]Item, len(items))
	var decided []Item
	for _, item := range items {
		if item.Err != nil {
			decided = append(decided, item)
			continue
		}
		byEpisode[item.Key] = item
	}
	ordered := make([]Item, 0, len(items))
	for _, ep := range idx.NewestFirst() {
		if item, ok := byEpisode[ep.ID]; ok {
			ordered = append(ordered, item)
		}
	}
	return append(ordered, decided...)
}

// Fetch downloads the matched file.
func (s *Files) Fetch(ctx context.Context, item Item, _ Progress) (transcript.Artifact, error) {
	data, err := s.Store.Download(ctx, item.ExternalID)
	if err != nil {
		return transcript.Artifact{}, err
	}
	return transcript.Artifact{
		Format:   transcript.FormatSubtitle,
		SourceID: item.ExternalID,
		Content:  data,
	}, nil
}

// EligibleFileName keeps files that look like episode transcripts: final
// cuts, subtitle exports, or names with letters before the first dot.
func EligibleFileName(name string) bool {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "_final") || strings.Contains(lower, "subtitles") {
		return true
	}
	base, _, _ := strings.Cut(name, ".")
	return strings.IndexFunc(base, unicode.IsLetter) >= 0
}

func (s *Files) logger() *slog.Logger {
	if s.Logger == nil {
		return logging.NewNop()
	}
	return s.Logger
}
