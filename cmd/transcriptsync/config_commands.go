package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"transcriptsync/internal/config"
	"transcriptsync/internal/deps"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintf(out, "Set catalog.path and the service credentials (or a .env file in %s) before running a pipeline.\n", filepath.Dir(target))
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration and report which pipelines are ready",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(strings.TrimSpace(*ctx.configFlag))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}

			binaries := deps.Check(deps.ForConfig(cfg))
			rows := make([][]string, 0, len(config.Pipelines()))
			for _, name := range config.Pipelines() {
				status := "ready"
				if err := readiness(cfg, name); err != nil {
					status = err.Error()
				} else if missing, ok := deps.Missing(binaries, name); ok {
					status = missing.Name + ": " + missing.Detail
				}
				rows = append(rows, []string{name, strings.Join(cfg.SinksFor(name), ", "), status})
			}
			writeTable(out, []string{"Pipeline", "Sinks", "Status"}, rows, nil)
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

// readiness reports the first missing credential a pipeline would need.
func readiness(cfg *config.Config, name string) error {
	needs := map[string]bool{}
	switch name {
	case config.PipelineTranscribe:
		needs["assemblyai"] = true
	case config.PipelineDriveSRT:
		needs[config.SinkDocstore] = true
	case config.PipelineDocs:
		needs[config.SinkWorkspace] = true
	}
	for _, s := range cfg.SinksFor(name) {
		needs[s] = true
	}
	if needs["assemblyai"] {
		if err := cfg.RequireAssemblyAI(); err != nil {
			return err
		}
	}
	if needs[config.SinkWorkspace] {
		if err := cfg.RequireNotion(); err != nil {
			return err
		}
	}
	if needs[config.SinkDocstore] {
		if err := cfg.RequireDrive(); err != nil {
			return err
		}
	}
	return nil
}
