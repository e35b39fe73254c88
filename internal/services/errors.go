package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTransient         = errors.New("transient failure")
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrTimeout           = errors.New("timeout")
	ErrValidation        = errors.New("validation error")
	ErrSinkConflict      = errors.New("sink conflict")
	ErrConfiguration     = errors.New("configuration error")
	ErrNotFound          = errors.New("not found")
	ErrExternalTool      = errors.New("external tool error")
)

// Disposition is the ledger outcome an item error maps to.
type Disposition string

const (
	// DispositionRetry leaves the item pending so the next run resumes it.
	DispositionRetry Disposition = "retry"
	// DispositionFailed records the item as failed with the error text.
	DispositionFailed Disposition = "failed"
	// DispositionSkipped records the item as skipped; the source has nothing to offer.
	DispositionSkipped Disposition = "skipped"
	// DispositionCompleted records the item as completed; the destination already has it.
	DispositionCompleted Disposition = "completed"
)

// Wrap builds an error message that includes component context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps a per-item error to the ledger outcome the driver should
// persist. Cancellation and timeouts keep the item resumable.
func Classify(err error) Disposition {
	switch {
	case err == nil:
		return DispositionCompleted
	case errors.Is(err, ErrSinkConflict):
		return DispositionCompleted
	case errors.Is(err, context.Canceled), errors.Is(err, ErrTimeout):
		return DispositionRetry
	case errors.Is(err, ErrSourceUnavailable):
		return DispositionSkipped
	default:
		return DispositionFailed
	}
}

// NeedsReview reports whether a failure is a data problem an operator should
// look at rather than something a plain retry would fix.
func NeedsReview(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrConfiguration)
}

// Hint returns a short operator-facing next step for an error.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "job still running remotely; rerun to resume polling"
	case errors.Is(err, ErrSourceUnavailable):
		return "source has nothing for this item; no action needed"
	case errors.Is(err, ErrValidation):
		return "inspect the source content for this item"
	case errors.Is(err, ErrNotFound):
		return "check the catalog and destination for this episode"
	case errors.Is(err, ErrConfiguration):
		return "check credentials and config values"
	case errors.Is(err, ErrExternalTool):
		return "check that the external tool is installed and up to date"
	default:
		return "rerun with --retry-failed once the upstream recovers"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
