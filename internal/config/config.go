package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file locations.
type Paths struct {
	StateDir    string `toml:"state_dir"`
	OutputDir   string `toml:"output_dir"`
	LogDir      string `toml:"log_dir"`
	MetricsFile string `toml:"metrics_file"`
}

// Catalog points at the canonical episode list.
type Catalog struct {
	Path string `toml:"path"`
}

// AssemblyAI contains configuration for the transcription service.
type AssemblyAI struct {
	APIKey          string            `toml:"api_key"`
	APIKeyFile      string            `toml:"api_key_file"`
	BaseURL         string            `toml:"base_url"`
	SpeakerLabels   bool              `toml:"speaker_labels"`
	AutoChapters    bool              `toml:"auto_chapters"`
	EntityDetection bool              `toml:"entity_detection"`
	PollInterval    int               `toml:"poll_interval"`
	MaxWait         int               `toml:"max_wait"`
	RequestTimeout  int               `toml:"request_timeout"`
	SpeakerNames    map[string]string `toml:"speaker_names"`
	KeepRawJSON     bool              `toml:"keep_raw_json"`
}

// Captions contains configuration for video platform caption retrieval.
type Captions struct {
	YtDlpBinary string `toml:"ytdlp_binary"`
	Language    string `toml:"language"`
	Timeout     int    `toml:"timeout"`
}

// Drive contains configuration for the cloud file store and document store.
type Drive struct {
	AccessToken    string `toml:"access_token"`
	TokenFile      string `toml:"token_file"`
	BaseURL        string `toml:"base_url"`
	DocsBaseURL    string `toml:"docs_base_url"`
	SearchQuery    string `toml:"search_query"`
	FolderID       string `toml:"folder_id"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Notion contains configuration for the workspace database.
type Notion struct {
	APIKey              string  `toml:"api_key"`
	APIKeyFile          string  `toml:"api_key_file"`
	BaseURL             string  `toml:"base_url"`
	Version             string  `toml:"version"`
	DatabaseID          string  `toml:"database_id"`
	EpisodeProperty     string  `toml:"episode_property"`
	LinkProperty        string  `toml:"link_property"`
	HeadingMarker       string  `toml:"heading_marker"`
	HeadingText         string  `toml:"heading_text"`
	ChunkChars          int     `toml:"chunk_chars"`
	MaxBlocksPerRequest int     `toml:"max_blocks_per_request"`
	RequestsPerSecond   float64 `toml:"requests_per_second"`
	RequestTimeout      int     `toml:"request_timeout"`
}

// Pipeline contains policy knobs shared by every pipeline run.
type Pipeline struct {
	MatchThreshold     float64             `toml:"match_threshold"`
	MinTranscriptChars int                 `toml:"min_transcript_chars"`
	CheckpointEvery    int                 `toml:"checkpoint_every"`
	ItemDelayMillis    int                 `toml:"item_delay_ms"`
	Sinks              map[string][]string `toml:"sinks"`
}

// Notifications contains configuration for run summaries pushed to ntfy.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for transcriptsync.
//
// Configuration sections by subsystem:
//   - Paths: ledger/state, transcript output, logs, metrics textfile
//   - Catalog: canonical episode list location
//   - AssemblyAI: transcription submission and polling
//   - Captions: yt-dlp caption and audio URL retrieval
//   - Drive: file store search/download and document store
//   - Notion: workspace database pages
//   - Pipeline: matching, length gate, checkpoint cadence, sinks per pipeline
//   - Notifications: ntfy topic for run summaries
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Catalog       Catalog       `toml:"catalog"`
	AssemblyAI    AssemblyAI    `toml:"assemblyai"`
	Captions      Captions      `toml:"captions"`
	Drive         Drive         `toml:"drive"`
	Notion        Notion        `toml:"notion"`
	Pipeline      Pipeline      `toml:"pipeline"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	loadDotEnv(filepath.Dir(resolvedPath))

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("transcriptsync.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// loadDotEnv reads .env files from the config directory and the working
// directory. Variables already present in the environment are left alone.
func loadDotEnv(configDir string) {
	candidates := []string{filepath.Join(configDir, ".env")}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, ".env"))
	}
	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		if info, err := os.Stat(candidate); err != nil || info.IsDir() {
			continue
		}
		_ = godotenv.Load(candidate)
	}
}

// EnsureDirectories creates the state, output, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LedgerPath returns the progress ledger location for a pipeline.
func (c *Config) LedgerPath(pipeline string) string {
	return filepath.Join(c.Paths.StateDir, pipeline+".json")
}

// LockPath returns the single-run lock location for a pipeline.
func (c *Config) LockPath(pipeline string) string {
	return filepath.Join(c.Paths.StateDir, pipeline+".lock")
}

// HistoryPath returns the run history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// ItemDelay returns the pause inserted between work items.
func (c *Config) ItemDelay() time.Duration {
	return time.Duration(c.Pipeline.ItemDelayMillis) * time.Millisecond
}

// SinksFor returns the configured sink names for a pipeline.
func (c *Config) SinksFor(pipeline string) []string {
	if sinks, ok := c.Pipeline.Sinks[pipeline]; ok {
		out := make([]string, len(sinks))
		copy(out, sinks)
		return out
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
