package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"transcriptsync/internal/matcher"
)

type matchResult struct {
	Name       string  `json:"name"`
	Normalized string  `json:"normalized"`
	Episode    string  `json:"episode,omitempty"`
	Guest      string  `json:"guest,omitempty"`
	Confidence float64 `json:"confidence"`
	Accepted   bool    `json:"accepted"`
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var threshold float64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "match <name>...",
		Short: "Show how file names match catalog guests",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			idx, err := ctx.loadCatalog()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = cfg.Pipeline.MatchThreshold
			}
			m := matcher.New(idx.All(), threshold)

			results := make([]matchResult, 0, len(args))
			for _, name := range args {
				best, ok := m.Best(name)
				res := matchResult{Name: name, Normalized: matcher.Normalize(name)}
				if ok {
					res.Episode = best.Episode.ID
					res.Guest = best.Episode.Guest
					res.Confidence = best.Confidence
					_, res.Accepted = m.Match(name)
				}
				results = append(results, res)
			}

			if asJSON {
				return writeJSON(cmd, results)
			}
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				verdict := "no match"
				if r.Accepted {
					verdict = "match"
				}
				rows = append(rows, []string{r.Name, r.Normalized, r.Episode, r.Guest, fmt.Sprintf("%.3f", r.Confidence), verdict})
			}
			out := cmd.OutOrStdout()
			writeTable(out, []string{"Name", "Normalized", "Episode", "Guest", "Confidence", "Result"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight})
			fmt.Fprintf(out, "threshold %.2f (confidence must exceed it)\n", m.Threshold())
			return nil
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", matcher.DefaultThreshold, "Override pipeline.match_threshold")
	addJSONFlag(cmd, &asJSON)
	return cmd
}
