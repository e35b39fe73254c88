package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"transcriptsync/internal/catalog"
	"transcriptsync/internal/services/notion"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect or refresh the episode catalog",
	}
	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogSyncCommand(ctx))
	return catalogCmd
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog episodes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := ctx.loadCatalog()
			if err != nil {
				return err
			}
			episodes := idx.NewestFirst()
			if limit > 0 && len(episodes) > limit {
				episodes = episodes[:limit]
			}
			if asJSON {
				return writeJSON(cmd, episodes)
			}
			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(episodes))
			for _, ep := range episodes {
				rows = append(rows, []string{ep.ID, ep.Guest, ep.VideoRef(), ep.Date, truncate(ep.Title, 60)})
			}
			writeTable(out, []string{"Episode", "Guest", "Video", "Date", "Title"}, rows,
				[]columnAlignment{alignRight})
			fmt.Fprintf(out, "%d episodes", idx.Len())
			if dups := idx.Duplicates(); len(dups) > 0 {
				fmt.Fprintf(out, " (%d duplicate ids ignored)", len(dups))
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most N episodes")
	addJSONFlag(cmd, &asJSON)
	return cmd
}

func newCatalogSyncCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Export the workspace database into the catalog file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireNotion(); err != nil {
				return err
			}
			client, err := notion.New(notion.Config{
				APIKey:            cfg.Notion.APIKey,
				BaseURL:           cfg.Notion.BaseURL,
				Version:           cfg.Notion.Version,
				Timeout:           time.Duration(cfg.Notion.RequestTimeout) * time.Second,
				RequestsPerSecond: cfg.Notion.RequestsPerSecond,
			})
			if err != nil {
				return err
			}
			episodes, err := catalog.FetchFromWorkspace(cmd.Context(), client, cfg.Notion.DatabaseID, cfg.Notion.EpisodeProperty)
			if err != nil {
				return err
			}
			target := output
			if target == "" {
				target = cfg.Catalog.Path
			}
			if err := catalog.Save(target, episodes); err != nil {
				return err
			}
			withVideo := 0
			for _, ep := range episodes {
				if ep.VideoRef() != "" {
					withVideo++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d episodes (%d with video) to %s\n", len(episodes), withVideo, target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Catalog destination (defaults to catalog.path)")
	return cmd
}
