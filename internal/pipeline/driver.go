package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"transcriptsync/internal/catalog"
	"transcriptsync/internal/history"
	"transcriptsync/internal/ledger"
	"transcriptsync/internal/logging"
	"transcriptsync/internal/metrics"
	"transcriptsync/internal/notifications"
	"transcriptsync/internal/services"
	"transcriptsync/internal/sink"
	"transcriptsync/internal/source"
	"transcriptsync/internal/transcript"
)

// ErrLocked is returned when another process holds the pipeline lock.
var ErrLocked = errors.New("pipeline already running")

// Spec is one configured pipeline.
type Spec struct {
	Name   string
	Source source.Source
	Sinks  []sink.Sink
	// RetryTransient lets transient failures come back on the next run.
	// When false every failure waits for --retry-failed.
	RetryTransient bool
	SpeakerNames   map[string]string
	MinChars       int
}

// Options narrow a run.
type Options struct {
	// Limit caps the number of items processed; 0 means no cap.
	Limit int
	// Episode restricts the run to one episode id or item key.
	Episode string
	// RetryFailed reprocesses failed items that need review.
	RetryFailed bool
}

// HistoryRecorder appends run records. history.Store satisfies it.
type HistoryRecorder interface {
	StartRun(ctx context.Context, runID, pipeline string) error
	RecordItem(ctx context.Context, ev history.ItemEvent) error
	FinishRun(ctx context.Context, runID string, counts history.Counts, errMsg string) error
}

// Driver holds the run-independent collaborators.
type Driver struct {
	Catalog         *catalog.Index
	LedgerPath      string
	LockPath        string
	CheckpointEvery int
	Delay           time.Duration
	History         HistoryRecorder
	Metrics         *metrics.Recorder
	MetricsFile     string
	Notifier        notifications.Service
	Logger          *slog.Logger

	Now      func() time.Time
	NewRunID func() string
}

// Summary is the terminal report of one run.
type Summary struct {
	RunID       string
	Pipeline    string
	Started     time.Time
	Finished    time.Time
	Items       int
	AlreadyDone int
	Processed   int
	Completed   int
	Failed      int
	Skipped     int
	Retried     int
	// Published counts sink writes that created new output.
	Published int
	Reasons   map[string]int
}

// Counts converts the summary for the history store.
func (s Summary) Counts() history.Counts {
	return history.Counts{
		Processed: s.Processed,
		Completed: s.Completed,
		Failed:    s.Failed,
		Skipped:   s.Skipped,
		Retried:   s.Retried,
	}
}

// Run executes one pass of spec.
func (d *Driver) Run(ctx context.Context, spec Spec, opts Options) (summary Summary, err error) {
	now := d.now()
	runID := d.newRunID()
	summary = Summary{RunID: runID, Pipeline: spec.Name, Started: now(), Reasons: map[string]int{}}

	ctx = services.WithPipeline(ctx, spec.Name)
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(d.logger(), "pipeline"))
	defer func() {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.ErrorWithContext(logger, "run aborted", "run_aborted",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, abortHint(err)))
		}
	}()

	unlock, err := d.acquire()
	if err != nil {
		return summary, err
	}
	defer unlock()

	l, err := ledger.Open(d.LedgerPath, spec.Name, d.CheckpointEvery, d.logger())
	if err != nil {
		return summary, fmt.Errorf("open ledger: %w", err)
	}
	d.startHistory(ctx, logger, runID, spec.Name)
	defer func() {
		if flushErr := l.Flush(); flushErr != nil && err == nil {
			err = flushErr
		}
		summary.Finished = now()
		d.finish(ctx, logger, summary, err)
	}()

	items, err := spec.Source.Items(ctx, d.Catalog)
	if err != nil {
		return summary, fmt.Errorf("enumerate %s items: %w", spec.Name, err)
	}
	items, err = selectItems(items, opts.Episode)
	if err != nil {
		return summary, err
	}
	summary.Items = len(items)
	logger.Info("run started",
		logging.Int("items", len(items)),
		logging.Int("sinks", len(spec.Sinks)),
		logging.String("ledger", l.Path()))

	limiter := rate.NewLimiter(rate.Inf, 1)
	if d.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(d.Delay), 1)
	}

	for _, item := range items {
		if entry, ok := l.Get(item.Key); ok && !entry.Retryable(opts.RetryFailed) {
			summary.AlreadyDone++
			continue
		}
		if opts.Limit > 0 && summary.Processed >= opts.Limit {
			break
		}
		if err := limiter.Wait(ctx); err != nil {
			logger.Info("run interrupted", logging.Error(err))
			return summary, err
		}

		res := d.process(ctx, spec, l, item)
		if res.fatal != nil {
			return summary, res.fatal
		}
		if recErr := record(l, spec, item, res); recErr != nil {
			return summary, recErr
		}
		summary.add(res)
		d.report(ctx, spec.Name, item, res)
		if ctx.Err() != nil {
			logger.Info("run interrupted", logging.Error(ctx.Err()))
			return summary, ctx.Err()
		}
	}
	return summary, nil
}

type itemResult struct {
	disposition services.Disposition
	reason      string
	err         error
	acks        []sink.Ack
	elapsed     time.Duration
	fatal       error
}

func (d *Driver) process(ctx context.Context, spec Spec, l *ledger.Ledger, item source.Item) itemResult {
	start := d.now()()
	acks, err := publishItem(ctx, spec, l, item)
	res := itemResult{err: err, acks: acks, elapsed: d.now()().Sub(start)}
	if errors.Is(err, ledger.ErrPersist) {
		res.fatal = err
		return res
	}
	res.disposition = services.Classify(err)
	res.reason = source.Reason(err)
	if res.disposition == services.DispositionCompleted && res.reason == "" && allExisting(acks) {
		res.reason = "already_published"
	}
	return res
}

func publishItem(ctx context.Context, spec Spec, l *ledger.Ledger, item source.Item) ([]sink.Ack, error) {
	if item.Err != nil {
		return nil, item.Err
	}
	artifact, err := spec.Source.Fetch(ctx, item, l)
	if err != nil {
		return nil, err
	}
	tr, err := transcript.FromArtifact(artifact, spec.SpeakerNames)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "normalize", artifact.SourceID, err)
	}
	if err := transcript.Validate(tr, spec.MinChars); err != nil {
		return nil, err
	}
	acks := make([]sink.Ack, 0, len(spec.Sinks))
	for _, s := range spec.Sinks {
		ack, err := s.Publish(ctx, sink.Request{
			Episode:    item.Episode,
			Transcript: tr,
			Artifact:   artifact,
			Acks:       acks,
		})
		if err != nil {
			return acks, fmt.Errorf("sink %s: %w", s.Name(), err)
		}
		if ack.Sink == "" {
			ack.Sink = s.Name()
		}
		acks = append(acks, ack)
	}
	return acks, nil
}

func record(l *ledger.Ledger, spec Spec, item source.Item, res itemResult) error {
	switch res.disposition {
	case services.DispositionRetry:
		return l.RecordRetry(item.Key, res.err)
	case services.DispositionCompleted:
		return l.RecordTerminal(item.Key, ledger.Outcome{State: ledger.StateCompleted, Reason: res.reason, Label: item.Label})
	case services.DispositionSkipped:
		return l.RecordTerminal(item.Key, ledger.Outcome{State: ledger.StateSkipped, Reason: res.reason, Label: item.Label, Err: res.err})
	default:
		out := ledger.Outcome{State: ledger.StateFailed, Reason: res.reason, Label: item.Label, Err: res.err}
		if !spec.RetryTransient {
			out.Class = ledger.ClassReview
		}
		return l.RecordTerminal(item.Key, out)
	}
}

func (s *Summary) add(res itemResult) {
	s.Processed++
	switch res.disposition {
	case services.DispositionCompleted:
		s.Completed++
	case services.DispositionSkipped:
		s.Skipped++
	case services.DispositionRetry:
		s.Retried++
	default:
		s.Failed++
	}
	if res.reason != "" {
		s.Reasons[res.reason]++
	}
	for _, ack := range res.acks {
		if !ack.Existing {
			s.Published++
		}
	}
}

func (d *Driver) report(ctx context.Context, pipeline string, item source.Item, res itemResult) {
	itemCtx := services.WithItemKey(ctx, item.Key)
	logger := logging.WithContext(itemCtx, logging.NewComponentLogger(d.logger(), "pipeline"))
	outcome := string(res.disposition)
	attrs := []logging.Attr{
		logging.Outcome(outcome),
		logging.String("label", item.Label),
		logging.Duration("elapsed", res.elapsed),
	}
	if res.reason != "" {
		attrs = append(attrs, logging.String("reason", res.reason))
	}
	for _, ack := range res.acks {
		attrs = append(attrs, logging.String("sink_"+ack.Sink, ackState(ack)))
	}
	switch res.disposition {
	case services.DispositionFailed:
		logging.WarnWithContext(logger, "item failed", "item_failed", append(attrs,
			logging.Error(res.err),
			logging.String(logging.FieldErrorHint, services.Hint(res.err)))...)
	case services.DispositionRetry:
		logger.Info("item left pending", logging.Args(append(attrs, logging.Error(res.err))...)...)
	default:
		logger.Info("item "+outcome, logging.Args(attrs...)...)
	}

	d.Metrics.ObserveItem(pipeline, outcome, res.elapsed)
	if d.History == nil {
		return
	}
	runID, _ := services.RunIDFromContext(ctx)
	ev := history.ItemEvent{
		RunID:    runID,
		ItemKey:  item.Key,
		Label:    item.Label,
		Outcome:  outcome,
		Reason:   res.reason,
		Duration: res.elapsed,
	}
	if res.err != nil && res.disposition != services.DispositionCompleted {
		ev.Error = res.err.Error()
	}
	if err := d.History.RecordItem(context.WithoutCancel(ctx), ev); err != nil {
		logger.Debug("history item not recorded", logging.Error(err))
	}
}

func (d *Driver) startHistory(ctx context.Context, logger *slog.Logger, runID, pipeline string) {
	if d.History == nil {
		return
	}
	if err := d.History.StartRun(ctx, runID, pipeline); err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the history database under state_dir"))
	}
}

func (d *Driver) finish(ctx context.Context, logger *slog.Logger, summary Summary, runErr error) {
	ctx = context.WithoutCancel(ctx)
	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
	}
	if d.History != nil {
		if err := d.History.FinishRun(ctx, summary.RunID, summary.Counts(), errMsg); err != nil {
			logger.Debug("history run not finished", logging.Error(err))
		}
	}
	d.Metrics.ObserveRun(summary.Pipeline, summary.Finished, summary.Finished.Sub(summary.Started))
	if err := d.Metrics.WriteTextfile(d.MetricsFile); err != nil {
		logging.WarnWithContext(logger, "metrics textfile not written", "metrics_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.metrics_file permissions"))
	}
	if d.Notifier != nil {
		report := notifications.Report{
			Pipeline:  summary.Pipeline,
			RunID:     summary.RunID,
			Processed: summary.Processed,
			Completed: summary.Completed,
			Failed:    summary.Failed,
			Skipped:   summary.Skipped,
			Pending:   summary.Retried,
			Published: summary.Published,
			Elapsed:   summary.Finished.Sub(summary.Started),
			Err:       runErr,
		}
		if errors.Is(runErr, context.Canceled) {
			report.Err = nil
		}
		if err := d.Notifier.NotifyRun(ctx, report); err != nil {
			logging.WarnWithContext(logger, "run notification failed", "notify_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"))
		}
	}
	logger.Info("run finished",
		logging.Int("processed", summary.Processed),
		logging.Int("completed", summary.Completed),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
		logging.Int("pending", summary.Retried),
		logging.Int("already_done", summary.AlreadyDone),
		logging.Int("published", summary.Published),
		logging.Duration("elapsed", summary.Finished.Sub(summary.Started)))
}

func abortHint(err error) string {
	switch {
	case errors.Is(err, ErrLocked):
		return "wait for the other run to finish or remove a stale lock file"
	case errors.Is(err, ledger.ErrPersist):
		return "check that the state directory is writable"
	default:
		return services.Hint(err)
	}
}

// acquire takes the pipeline lock without blocking.
func (d *Driver) acquire() (func(), error) {
	if strings.TrimSpace(d.LockPath) == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(d.LockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(d.LockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s is held by another process", ErrLocked, d.LockPath)
	}
	return func() { _ = lock.Unlock() }, nil
}

func selectItems(items []source.Item, episode string) ([]source.Item, error) {
	episode = strings.TrimSpace(episode)
	if episode == "" {
		return items, nil
	}
	var out []source.Item
	for _, item := range items {
		if item.Key == episode || item.Episode.ID == episode {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "pipeline", "select", "no work item for "+episode, nil)
	}
	return out, nil
}

func allExisting(acks []sink.Ack) bool {
	if len(acks) == 0 {
		return false
	}
	for _, ack := range acks {
		if !ack.Existing {
			return false
		}
	}
	return true
}

func ackState(ack sink.Ack) string {
	if ack.Existing {
		return "existing"
	}
	return "written"
}

func (d *Driver) now() func() time.Time {
	if d.Now != nil {
		return d.Now
	}
	return time.Now
}

func (d *Driver) newRunID() string {
	if d.NewRunID != nil {
		return d.NewRunID()
	}
	return uuid.NewString()
}

func (d *Driver) logger() *slog.Logger {
	if d.Logger == nil {
		return logging.NewNop()
	}
	return d.Logger
}
