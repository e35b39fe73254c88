package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/renameio/v2"

	"transcriptsync/internal/logging"
	"transcriptsync/internal/services"
)

// State is the lifecycle position of one item.
type State string

const (
	StatePending   State = "pending"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateSkipped   State = "skipped"
)

// Class separates failures a plain rerun may fix from ones that need an operator.
type Class string

const (
	ClassTransient Class = "transient"
	ClassReview    Class = "review"
)

const snapshotVersion = 1

// ErrPersist marks failures to write the snapshot. Callers treat it as fatal
// for the run.
var ErrPersist = errors.New("ledger persist failed")

// Entry is the persisted record for one item key.
type Entry struct {
	Key           string    `json:"key"`
	State         State     `json:"state"`
	Label         string    `json:"label,omitempty"`
	ExternalJobID string    `json:"external_job_id,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
	Class         Class     `json:"class,omitempty"`
	Attempts      int       `json:"attempts"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Retryable reports whether a driver should process the item again.
// Failed review items come back only when force is set.
func (e Entry) Retryable(force bool) bool {
	switch e.State {
	case StateCompleted, StateSkipped:
		return false
	case StateFailed:
		return force || e.Class != ClassReview
	default:
		return true
	}
}

// Outcome describes a terminal transition.
type Outcome struct {
	State  State
	Reason string
	Label  string
	Err    error
	// Class overrides the failure class derived from Err.
	Class Class
}

type snapshot struct {
	Version   int              `json:"version"`
	Pipeline  string           `json:"pipeline"`
	UpdatedAt time.Time        `json:"updated_at"`
	Entries   map[string]Entry `json:"entries"`
}

// Ledger is the in-memory progress state of one pipeline plus its snapshot file.
type Ledger struct {
	path     string
	pipeline string
	every    int
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]Entry
	dirty   int
}

// Option customizes a Ledger.
type Option func(*Ledger)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// Open loads the snapshot at path, or starts empty when none exists. A
// snapshot that exists but cannot be decoded is an error: silently starting
// over would forget submitted jobs. checkpointEvery <= 0 saves after every
// record.
func Open(path, pipeline string, checkpointEvery int, logger *slog.Logger, opts ...Option) (*Ledger, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("ledger path required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if checkpointEvery <= 0 {
		checkpointEvery = 1
	}
	l := &Ledger{
		path:     path,
		pipeline: pipeline,
		every:    checkpointEvery,
		logger:   logging.NewComponentLogger(logger, "ledger"),
		now:      time.Now,
		entries:  make(map[string]Entry),
	}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.load(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Ledger) load() error {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Debug("ledger starts empty", logging.String("path", l.path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode ledger %s: %w", filepath.Base(l.path), err)
	}
	if snap.Version > snapshotVersion {
		return fmt.Errorf("ledger %s has unsupported version %d", filepath.Base(l.path), snap.Version)
	}
	for key, entry := range snap.Entries {
		entry.Key = key
		l.entries[key] = entry
	}
	l.logger.Debug("ledger loaded",
		logging.String("path", l.path),
		logging.Int("entries", len(l.entries)))
	return nil
}

// Path returns the snapshot location.
func (l *Ledger) Path() string {
	return l.path
}

// Get returns the entry for key.
func (l *Ledger) Get(key string) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[strings.TrimSpace(key)]
	return entry, ok
}

// IsDone is true once the item is completed or skipped.
func (l *Ledger) IsDone(key string) bool {
	entry, ok := l.Get(key)
	return ok && (entry.State == StateCompleted || entry.State == StateSkipped)
}

// PendingJob returns the external job id recorded for an item that has not
// finished. Failed items keep their job so a rerun polls it again instead of
// paying for a new submission.
func (l *Ledger) PendingJob(key string) (string, bool) {
	entry, ok := l.Get(key)
	if !ok || entry.ExternalJobID == "" {
		return "", false
	}
	if entry.State != StatePending && entry.State != StateFailed {
		return "", false
	}
	return entry.ExternalJobID, true
}

// RecordPending marks key as submitted under jobID and saves at once, so a
// crash right after submission cannot lose track of the job.
func (l *Ledger) RecordPending(key, jobID, label string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("ledger key required")
	}
	l.mu.Lock()
	entry := l.entries[key]
	entry.Key = key
	entry.State = StatePending
	entry.ExternalJobID = strings.TrimSpace(jobID)
	entry.Reason = ""
	entry.LastError = ""
	entry.Class = ""
	entry.Attempts++
	entry.UpdatedAt = l.now().UTC()
	if label != "" {
		entry.Label = label
	}
	l.entries[key] = entry
	l.dirty++
	l.mu.Unlock()
	return l.Save()
}

// RecordRetry notes an indeterminate failure. The item stays pending (any
// job id is kept) and is picked up again by the next run.
func (l *Ledger) RecordRetry(key string, err error) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("ledger key required")
	}
	l.mu.Lock()
	entry := l.entries[key]
	entry.Key = key
	entry.State = StatePending
	entry.Class = ""
	if err != nil {
		entry.LastError = err.Error()
	}
	entry.UpdatedAt = l.now().UTC()
	l.entries[key] = entry
	l.mu.Unlock()
	return l.touch()
}

// RecordTerminal moves key to a terminal state. Failed entries are classed
// as review or transient from the error.
func (l *Ledger) RecordTerminal(key string, out Outcome) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("ledger key required")
	}
	switch out.State {
	case StateCompleted, StateFailed, StateSkipped:
	default:
		return fmt.Errorf("ledger state %q is not terminal", out.State)
	}
	l.mu.Lock()
	entry := l.entries[key]
	entry.Key = key
	entry.State = out.State
	if out.State != StateFailed {
		entry.ExternalJobID = ""
	}
	entry.Reason = out.Reason
	entry.LastError = ""
	entry.Class = ""
	if out.Err != nil {
		entry.LastError = out.Err.Error()
	}
	if out.State == StateFailed {
		entry.Class = out.Class
		if entry.Class == "" {
			entry.Class = ClassTransient
			if services.NeedsReview(out.Err) {
				entry.Class = ClassReview
			}
		}
	}
	if out.Label != "" {
		entry.Label = out.Label
	}
	entry.Attempts++
	entry.UpdatedAt = l.now().UTC()
	l.entries[key] = entry
	l.mu.Unlock()
	return l.touch()
}

// touch counts a change and saves when the checkpoint interval is reached.
func (l *Ledger) touch() error {
	l.mu.Lock()
	l.dirty++
	due := l.dirty >= l.every
	l.mu.Unlock()
	if !due {
		return nil
	}
	return l.Save()
}

// Flush saves when there are unsaved changes.
func (l *Ledger) Flush() error {
	l.mu.Lock()
	dirty := l.dirty
	l.mu.Unlock()
	if dirty == 0 {
		return nil
	}
	return l.Save()
}

// Save writes the full snapshot atomically.
func (l *Ledger) Save() error {
	l.mu.Lock()
	snap := snapshot{
		Version:   snapshotVersion,
		Pipeline:  l.pipeline,
		UpdatedAt: l.now().UTC(),
		Entries:   make(map[string]Entry, len(l.entries)),
	}
	for key, entry := range l.entries {
		snap.Entries[key] = entry
	}
	count := l.dirty
	l.mu.Unlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrPersist, err)
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("%w: create directory: %w", ErrPersist, err)
	}
	if err := renameio.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrPersist, filepath.Base(l.path), err)
	}

	l.mu.Lock()
	l.dirty -= count
	l.mu.Unlock()
	l.logger.Debug("ledger saved",
		logging.String("path", l.path),
		logging.Int("entries", len(snap.Entries)),
		logging.Int("changes", count))
	return nil
}

// Entries returns every entry sorted by key.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	out := make([]Entry, 0, len(l.entries))
	for _, entry := range l.entries {
		out = append(out, entry)
	}
	l.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Counts tallies entries per state.
func (l *Ledger) Counts() map[State]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	counts := make(map[State]int, 4)
	for _, entry := range l.entries {
		counts[entry.State]++
	}
	return counts
}
