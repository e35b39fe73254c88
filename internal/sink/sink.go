package sink

import (
	"context"

	"transcriptsync/internal/catalog"
	"transcriptsync/internal/transcript"
)

// Request is everything a sink needs to publish one item.
type Request struct {
	Episode    catalog.Episode
	Transcript transcript.Transcript
	Artifact   transcript.Artifact
	// Acks from sinks that already ran for this item, in order.
	Acks []Ack
}

// Ack reports where a transcript was published.
type Ack struct {
	Sink     string
	Location string
	// Existing is set when the sink found prior output and wrote nothing.
	Existing bool
}

// Sink publishes transcripts idempotently.
type Sink interface {
	Name() string
	Publish(ctx context.Context, req Request) (Ack, error)
}

// Location returns the location reported by the named sink, if any.
func (r Request) Location(sinkName string) string {
	for _, ack := range r.Acks {
		if ack.Sink == sinkName && ack.Location != "" {
			return ack.Location
		}
	}
	return ""
}
