package source

import (
	"context"
	"errors"
	"fmt"

	"transcriptsync/internal/catalog"
	"transcriptsync/internal/services"
	"transcriptsync/internal/transcript"
)

// Reason sentinels. They are joined with a services marker so both
// classification and labeling work through errors.Is.
var (
	ErrNoCaptions = errors.New("no_captions")
	ErrNoMatch    = errors.New("no_match")
	ErrDuplicate  = errors.New("duplicate")
	ErrNoPage     = errors.New("no_page")
	ErrNoSection  = errors.New("no_transcript_section")
	ErrNoVideo    = errors.New("no_video")
)

// Item is one unit of work for a run.
type Item struct {
	// Key is the ledger key: the episode id, or the external id when no
	// episode could be resolved.
	Key     string
	Label   string
	Episode catalog.Episode
	// ExternalID and Name identify the source artifact when it is not the
	// episode itself (file store results).
	ExternalID string
	Name       string
	Confidence float64
	// Err is set when enumeration already decided the outcome; the driver
	// records it without fetching.
	Err error
}

// Progress is the ledger surface adapters use to make submissions durable.
type Progress interface {
	PendingJob(key string) (string, bool)
	RecordPending(key, jobID, label string) error
}

// Source fetches raw material for work items.
type Source interface {
	Name() string
	Items(ctx context.Context, idx *catalog.Index) ([]Item, error)
	Fetch(ctx context.Context, item Item, progress Progress) (transcript.Artifact, error)
}

// Reason returns the short outcome label for an item error.
func Reason(err error) string {
	for _, sentinel := range []error{ErrNoCaptions, ErrNoMatch, ErrDuplicate, ErrNoPage, ErrNoSection, ErrNoVideo, transcript.ErrTooShort} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	switch {
	case err == nil:
		return ""
	case errors.Is(err, services.ErrTimeout):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, services.ErrSourceUnavailable):
		return "unavailable"
	case errors.Is(err, services.ErrSinkConflict):
		return "already_published"
	default:
		return ""
	}
}

// episodeItems turns catalog episodes into items, newest first. When
// needVideo is set, episodes without a video reference are left out.
func episodeItems(idx *catalog.Index, needVideo bool) []Item {
	episodes := idx.NewestFirst()
	items := make([]Item, 0, len(episodes))
	for _, ep := range episodes {
		if needVideo && ep.VideoRef() == "" {
			continue
		}
		items = append(items, Item{Key: ep.ID, Label: ep.Label(), Episode: ep})
	}
	return items
}

// reasoned tags an error with both a taxonomy marker and a reason sentinel.
func reasoned(reason, marker error, component, operation, message string, cause error) error {
	inner := reason
	if cause != nil {
		inner = fmt.Errorf("%w: %w", reason, cause)
	}
	return services.Wrap(marker, component, operation, message, inner)
}
