package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAssemblyAI(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateNotion(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Catalog.Path) == "" {
		return errors.New("catalog.path must be set")
	}
	return nil
}

func (c *Config) validateAssemblyAI() error {
	if c.AssemblyAI.PollInterval <= 0 {
		return errors.New("assemblyai.poll_interval must be positive")
	}
	if c.AssemblyAI.MaxWait < c.AssemblyAI.PollInterval {
		return errors.New("assemblyai.max_wait must be at least assemblyai.poll_interval")
	}
	if c.AssemblyAI.RequestTimeout <= 0 {
		return errors.New("assemblyai.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateCaptions() error {
	if c.Captions.Timeout <= 0 {
		return errors.New("captions.timeout must be positive")
	}
	return nil
}

func (c *Config) validateNotion() error {
	if c.Notion.ChunkChars <= 0 || c.Notion.ChunkChars >= NotionTextLimit {
		return fmt.Errorf("notion.chunk_chars must be between 1 and %d", NotionTextLimit-1)
	}
	if c.Notion.MaxBlocksPerRequest < 4 || c.Notion.MaxBlocksPerRequest > 100 {
		return errors.New("notion.max_blocks_per_request must be between 4 and 100")
	}
	if c.Notion.RequestsPerSecond <= 0 {
		return errors.New("notion.requests_per_second must be positive")
	}
	if c.Notion.RequestTimeout <= 0 {
		return errors.New("notion.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.MatchThreshold <= 0 || c.Pipeline.MatchThreshold >= 1 {
		return errors.New("pipeline.match_threshold must be between 0 and 1 (exclusive)")
	}
	if c.Pipeline.MinTranscriptChars < 0 {
		return errors.New("pipeline.min_transcript_chars must be zero or positive")
	}
	if c.Pipeline.CheckpointEvery <= 0 {
		return errors.New("pipeline.checkpoint_every must be positive")
	}
	if c.Pipeline.ItemDelayMillis < 0 {
		return errors.New("pipeline.item_delay_ms must be zero or positive")
	}
	known := []string{SinkFile, SinkWorkspace, SinkDocstore}
	for name, sinks := range c.Pipeline.Sinks {
		if !slices.Contains(Pipelines(), name) {
			return fmt.Errorf("pipeline.sinks: unknown pipeline %q", name)
		}
		if len(sinks) == 0 {
			return fmt.Errorf("pipeline.sinks.%s must name at least one sink", name)
		}
		for _, sink := range sinks {
			if !slices.Contains(known, sink) {
				return fmt.Errorf("pipeline.sinks.%s: unsupported sink %q", name, sink)
			}
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// RequireAssemblyAI reports whether transcription credentials are present.
func (c *Config) RequireAssemblyAI() error {
	if c.AssemblyAI.APIKey == "" {
		return errors.New("assemblyai.api_key must be set (or ASSEMBLYAI_API_KEY) for the transcribe pipeline")
	}
	return nil
}

// RequireNotion reports whether workspace credentials are present.
func (c *Config) RequireNotion() error {
	if c.Notion.APIKey == "" {
		return errors.New("notion.api_key must be set (or NOTION_API_KEY) to use the workspace")
	}
	if c.Notion.DatabaseID == "" {
		return errors.New("notion.database_id must be set to use the workspace")
	}
	return nil
}

// RequireDrive reports whether file store credentials are present.
func (c *Config) RequireDrive() error {
	if c.Drive.AccessToken == "" {
		return errors.New("drive.access_token or drive.token_file must be set (or GOOGLE_ACCESS_TOKEN) to use the file store")
	}
	return nil
}
