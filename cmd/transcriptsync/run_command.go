package main

import (
	"fmt"
	"io"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"transcriptsync/internal/config"
	"transcriptsync/internal/deps"
	"transcriptsync/internal/history"
	"transcriptsync/internal/logging"
	"transcriptsync/internal/metrics"
	"transcriptsync/internal/notifications"
	"transcriptsync/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts pipeline.Options
	var asJSON bool

	cmd := &cobra.Command{
		Use:       "run <pipeline>",
		Short:     "Run one pipeline pass",
		Long:      "Run one pipeline pass. Pipelines: " + strings.Join(config.Pipelines(), ", ") + ".",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.Pipelines(),
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[0])
			spec, err := pipeline.NewSpec(signalCtx, cfg, name, logger)
			if err != nil {
				return err
			}
			if missing, ok := deps.Missing(deps.Check(deps.ForConfig(cfg)), name); ok {
				return fmt.Errorf("%s pipeline needs %s: %s", name, missing.Name, missing.Detail)
			}
			idx, err := ctx.loadCatalog()
			if err != nil {
				return err
			}
			if dups := idx.Duplicates(); len(dups) > 0 {
				logging.WarnWithContext(logger, "catalog has duplicate episode ids", "catalog_duplicates",
					logging.String("ids", strings.Join(dups, ",")),
					logging.String(logging.FieldErrorHint, "first occurrence wins; fix the catalog file"))
			}

			driver := &pipeline.Driver{
				Catalog:         idx,
				LedgerPath:      cfg.LedgerPath(name),
				LockPath:        cfg.LockPath(name),
				CheckpointEvery: cfg.Pipeline.CheckpointEvery,
				Delay:           cfg.ItemDelay(),
				Metrics:         metrics.New(),
				MetricsFile:     cfg.Paths.MetricsFile,
				Notifier:        notifications.NewService(cfg),
				Logger:          logger,
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				logging.WarnWithContext(logger, "run history disabled", "history_open_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check "+cfg.HistoryPath()))
			} else {
				defer store.Close()
				driver.History = store
			}

			summary, runErr := driver.Run(signalCtx, spec, opts)
			if asJSON {
				if err := writeJSON(cmd, summary); err != nil {
					return err
				}
			} else {
				printSummary(cmd.OutOrStdout(), summary)
			}
			return runErr
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Process at most N items (0 = no limit)")
	cmd.Flags().StringVar(&opts.Episode, "episode", "", "Process only this episode id or item key")
	cmd.Flags().BoolVar(&opts.RetryFailed, "retry-failed", false, "Reprocess failed items that need review")
	addJSONFlag(cmd, &asJSON)
	return cmd
}

func printSummary(out io.Writer, s pipeline.Summary) {
	fmt.Fprintf(out, "Pipeline %s (run %s)\n", s.Pipeline, s.RunID)
	rows := [][]string{
		{"items", fmt.Sprint(s.Items)},
		{"already done", fmt.Sprint(s.AlreadyDone)},
		{"processed", fmt.Sprint(s.Processed)},
		{"completed", fmt.Sprint(s.Completed)},
		{"failed", fmt.Sprint(s.Failed)},
		{"skipped", fmt.Sprint(s.Skipped)},
		{"pending", fmt.Sprint(s.Retried)},
		{"published", fmt.Sprint(s.Published)},
	}
	reasons := make([]string, 0, len(s.Reasons))
	for reason := range s.Reasons {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		rows = append(rows, []string{"  " + reason, fmt.Sprint(s.Reasons[reason])})
	}
	if !s.Finished.IsZero() {
		rows = append(rows, []string{"elapsed", s.Finished.Sub(s.Started).Round(time.Millisecond).String()})
	}
	writeTable(out, []string{"Outcome", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
}
