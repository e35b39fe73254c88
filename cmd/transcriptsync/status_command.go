package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"transcriptsync/internal/config"
	"transcriptsync/internal/ledger"
)

type statusReport struct {
	Pipeline string               `json:"pipeline"`
	Ledger   string               `json:"ledger"`
	Counts   map[ledger.State]int `json:"counts"`
	Entries  []ledger.Entry       `json:"entries,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var showAll, showFailed, asJSON bool

	cmd := &cobra.Command{
		Use:   "status [pipeline]",
		Short: "Show progress ledger counts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			names := config.Pipelines()
			if len(args) == 1 {
				names = []string{strings.TrimSpace(args[0])}
			}

			reports := make([]statusReport, 0, len(names))
			for _, name := range names {
				l, err := ledger.Open(cfg.LedgerPath(name), name, 1, nil)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				report := statusReport{Pipeline: name, Ledger: l.Path(), Counts: l.Counts()}
				if showAll || showFailed {
					for _, e := range l.Entries() {
						if showAll || e.State == ledger.StateFailed || e.State == ledger.StatePending {
							report.Entries = append(report.Entries, e)
						}
					}
				}
				reports = append(reports, report)
			}

			if asJSON {
				return writeJSON(cmd, reports)
			}
			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(reports))
			for _, r := range reports {
				rows = append(rows, []string{
					r.Pipeline,
					fmt.Sprint(r.Counts[ledger.StateCompleted]),
					fmt.Sprint(r.Counts[ledger.StateSkipped]),
					fmt.Sprint(r.Counts[ledger.StateFailed]),
					fmt.Sprint(r.Counts[ledger.StatePending]),
				})
			}
			writeTable(out, []string{"Pipeline", "Completed", "Skipped", "Failed", "Pending"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight})

			for _, r := range reports {
				if len(r.Entries) == 0 {
					continue
				}
				fmt.Fprintf(out, "\n%s\n", r.Pipeline)
				writeTable(out, []string{"Key", "State", "Class", "Reason", "Attempts", "Updated", "Label / Error"},
					entryRows(r.Entries),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight})
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showFailed, "failed", false, "List failed and pending entries")
	cmd.Flags().BoolVar(&showAll, "all", false, "List every entry")
	addJSONFlag(cmd, &asJSON)
	return cmd
}

func entryRows(entries []ledger.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		detail := e.Label
		if e.LastError != "" {
			detail = truncate(e.LastError, 80)
		}
		updated := ""
		if !e.UpdatedAt.IsZero() {
			updated = e.UpdatedAt.Local().Format(time.DateTime)
		}
		rows = append(rows, []string{
			e.Key,
			string(e.State),
			string(e.Class),
			e.Reason,
			fmt.Sprint(e.Attempts),
			updated,
			detail,
		})
	}
	return rows
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
