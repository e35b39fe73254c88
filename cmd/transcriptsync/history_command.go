package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"transcriptsync/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var pipelineName string
	var runID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs, or the items of one run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if runID != "" {
				items, err := store.Items(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, items)
				}
				if len(items) == 0 {
					fmt.Fprintf(out, "No items recorded for run %s\n", runID)
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, ev := range items {
					rows = append(rows, []string{ev.ItemKey, ev.Outcome, ev.Reason, ev.Duration.Round(time.Millisecond).String(), truncate(ev.Error, 80)})
				}
				writeTable(out, []string{"Key", "Outcome", "Reason", "Elapsed", "Error"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight})
				return nil
			}

			runs, err := store.ListRuns(cmd.Context(), pipelineName, limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					r.ID,
					r.Pipeline,
					r.Status,
					r.StartedAt.Local().Format(time.DateTime),
					fmt.Sprint(r.Counts.Processed),
					fmt.Sprint(r.Counts.Completed),
					fmt.Sprint(r.Counts.Failed),
					fmt.Sprint(r.Counts.Skipped),
					fmt.Sprint(r.Counts.Retried),
				})
			}
			writeTable(out, []string{"Run", "Pipeline", "Status", "Started", "Processed", "Completed", "Failed", "Skipped", "Pending"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight})
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list")
	cmd.Flags().StringVarP(&pipelineName, "pipeline", "p", "", "Only runs of this pipeline")
	cmd.Flags().StringVar(&runID, "run", "", "Show item outcomes for one run id")
	addJSONFlag(cmd, &asJSON)
	return cmd
}
