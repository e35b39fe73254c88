package source

import (
	"context"
	"errors"

	"transcriptsync/internal/catalog"
	"transcriptsync/internal/services"
	"transcriptsync/internal/services/ytdlp"
	"transcriptsync/internal/transcript"
)

// CaptionFetcher downloads a caption track for a video.
type CaptionFetcher interface {
	Captions(ctx context.Context, videoURL, language string) (ytdlp.Track, error)
}

// Captions fetches auto-generated caption tracks.
type Captions struct {
	Fetcher  CaptionFetcher
	Language string
}

// Name implements Source.
func (s *Captions) Name() string { return "captions" }

// Items lists every episode with a video reference, newest first.
func (s *Captions) Items(_ context.Context, idx *catalog.Index) ([]Item, error) {
	return episodeItems(idx, true), nil
}

// Fetch downloads the track. A video without captions is a terminal
// unavailable outcome.
func (s *Captions) Fetch(ctx context.Context, item Item, _ Progress) (transcript.Artifact, error) {
	ref := item.Episode.VideoRef()
	if ref == "" {
		return transcript.Artifact{}, reasoned(ErrNoVideo, services.ErrSourceUnavailable, "captions", "fetch", "episode has no video reference", nil)
	}
	lang := s.Language
	if lang == "" {
		lang = "en"
	}
	track, err := s.Fetcher.Captions(ctx, catalog.WatchURL(ref), lang)
	if errors.Is(err, services.ErrSourceUnavailable) {
		return transcript.Artifact{}, reasoned(ErrNoCaptions, services.ErrSourceUnavailable, "captions", "fetch", "no "+lang+" captions for "+ref, err)
	}
	if err != nil {
		return transcript.Artifact{}, err
	}
	return transcript.Artifact{
		Format:   transcript.FormatCaptions,
		SourceID: ref,
		Content:  []byte(track.Content),
	}, nil
}
