package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"transcriptsync/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeAssemblyAI(); err != nil {
		return err
	}
	if err := c.normalizeDrive(); err != nil {
		return err
	}
	if err := c.normalizeNotion(); err != nil {
		return err
	}
	if err := c.normalizeCaptions(); err != nil {
		return err
	}
	c.normalizePipeline()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("state_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("log_dir: %w", err)
	}
	if c.Paths.MetricsFile, err = expandPath(strings.TrimSpace(c.Paths.MetricsFile)); err != nil {
		return fmt.Errorf("metrics_file: %w", err)
	}
	if c.Catalog.Path, err = expandPath(c.Catalog.Path); err != nil {
		return fmt.Errorf("catalog.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeAssemblyAI() error {
	c.AssemblyAI.BaseURL = strings.TrimRight(strings.TrimSpace(c.AssemblyAI.BaseURL), "/")
	if c.AssemblyAI.BaseURL == "" {
		c.AssemblyAI.BaseURL = defaultAssemblyAIBaseURL
	}
	key, err := resolveSecret(c.AssemblyAI.APIKey, c.AssemblyAI.APIKeyFile, "ASSEMBLYAI_API_KEY")
	if err != nil {
		return fmt.Errorf("assemblyai.api_key_file: %w", err)
	}
	c.AssemblyAI.APIKey = key
	if c.AssemblyAI.SpeakerNames == nil {
		c.AssemblyAI.SpeakerNames = map[string]string{}
	}
	cleaned := make(map[string]string, len(c.AssemblyAI.SpeakerNames))
	for label, name := range c.AssemblyAI.SpeakerNames {
		label = strings.ToUpper(strings.TrimSpace(label))
		name = strings.TrimSpace(name)
		if label == "" || name == "" {
			continue
		}
		cleaned[label] = name
	}
	c.AssemblyAI.SpeakerNames = cleaned
	return nil
}

func (c *Config) normalizeDrive() error {
	c.Drive.BaseURL = strings.TrimRight(strings.TrimSpace(c.Drive.BaseURL), "/")
	if c.Drive.BaseURL == "" {
		c.Drive.BaseURL = defaultDriveBaseURL
	}
	c.Drive.DocsBaseURL = strings.TrimRight(strings.TrimSpace(c.Drive.DocsBaseURL), "/")
	if c.Drive.DocsBaseURL == "" {
		c.Drive.DocsBaseURL = defaultDocsBaseURL
	}
	c.Drive.SearchQuery = strings.TrimSpace(c.Drive.SearchQuery)
	if c.Drive.SearchQuery == "" {
		c.Drive.SearchQuery = defaultDriveSearchQuery
	}
	c.Drive.FolderID = strings.TrimSpace(c.Drive.FolderID)

	token := strings.TrimSpace(c.Drive.AccessToken)
	if token == "" && strings.TrimSpace(c.Drive.TokenFile) != "" {
		path, err := expandPath(strings.TrimSpace(c.Drive.TokenFile))
		if err != nil {
			return fmt.Errorf("drive.token_file: %w", err)
		}
		c.Drive.TokenFile = path
		fileToken, err := readTokenFile(path)
		if err != nil {
			return fmt.Errorf("drive.token_file: %w", err)
		}
		token = fileToken
	}
	if token == "" {
		token = strings.TrimSpace(os.Getenv("GOOGLE_ACCESS_TOKEN"))
	}
	c.Drive.AccessToken = token
	return nil
}

func (c *Config) normalizeNotion() error {
	c.Notion.BaseURL = strings.TrimRight(strings.TrimSpace(c.Notion.BaseURL), "/")
	if c.Notion.BaseURL == "" {
		c.Notion.BaseURL = defaultNotionBaseURL
	}
	c.Notion.Version = strings.TrimSpace(c.Notion.Version)
	if c.Notion.Version == "" {
		c.Notion.Version = defaultNotionVersion
	}
	c.Notion.DatabaseID = strings.TrimSpace(c.Notion.DatabaseID)
	if c.Notion.DatabaseID == "" {
		c.Notion.DatabaseID = strings.TrimSpace(os.Getenv("NOTION_DATABASE_ID"))
	}
	if strings.TrimSpace(c.Notion.EpisodeProperty) == "" {
		c.Notion.EpisodeProperty = defaultEpisodeProperty
	}
	if strings.TrimSpace(c.Notion.LinkProperty) == "" {
		c.Notion.LinkProperty = defaultLinkProperty
	}
	if strings.TrimSpace(c.Notion.HeadingMarker) == "" {
		c.Notion.HeadingMarker = defaultHeadingMarker
	}
	if strings.TrimSpace(c.Notion.HeadingText) == "" {
		c.Notion.HeadingText = defaultHeadingText
	}
	key, err := resolveSecret(c.Notion.APIKey, c.Notion.APIKeyFile, "NOTION_API_KEY")
	if err != nil {
		return fmt.Errorf("notion.api_key_file: %w", err)
	}
	c.Notion.APIKey = key
	return nil
}

func (c *Config) normalizeCaptions() error {
	c.Captions.YtDlpBinary = strings.TrimSpace(c.Captions.YtDlpBinary)
	if c.Captions.YtDlpBinary == "" {
		c.Captions.YtDlpBinary = defaultYtDlpBinary
	}
	raw := strings.TrimSpace(c.Captions.Language)
	if raw == "" {
		c.Captions.Language = defaultCaptionLanguage
		return nil
	}
	c.Captions.Language = language.ToISO2(raw)
	if c.Captions.Language == "" {
		return fmt.Errorf("captions.language: unrecognized language %q", raw)
	}
	return nil
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.Sinks == nil {
		c.Pipeline.Sinks = defaultSinks()
	}
	for name, sinks := range defaultSinks() {
		if _, ok := c.Pipeline.Sinks[name]; !ok {
			c.Pipeline.Sinks[name] = sinks
		}
	}
	for name, sinks := range c.Pipeline.Sinks {
		cleaned := make([]string, 0, len(sinks))
		seen := make(map[string]struct{}, len(sinks))
		for _, sink := range sinks {
			sink = strings.ToLower(strings.TrimSpace(sink))
			if sink == "" {
				continue
			}
			if _, dup := seen[sink]; dup {
				continue
			}
			seen[sink] = struct{}{}
			cleaned = append(cleaned, sink)
		}
		c.Pipeline.Sinks[name] = cleaned
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// resolveSecret prefers an inline value, then a key file, then the environment.
// A configured key file that does not exist is an error; an empty one is not.
func resolveSecret(inline, file, envKey string) (string, error) {
	if value := strings.TrimSpace(inline); value != "" {
		return value, nil
	}
	if file = strings.TrimSpace(file); file != "" {
		path, err := expandPath(file)
		if err != nil {
			return "", err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("key file %q not found", path)
			}
			return "", fmt.Errorf("read key file: %w", err)
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			return value, nil
		}
	}
	return strings.TrimSpace(os.Getenv(envKey)), nil
}

// readTokenFile accepts either a raw bearer token or an OAuth token JSON
// document with an access_token field.
func readTokenFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("token file %q not found", path)
		}
		return "", fmt.Errorf("read token file: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "{") {
		return trimmed, nil
	}
	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return "", fmt.Errorf("parse token file: %w", err)
	}
	return strings.TrimSpace(payload.AccessToken), nil
}
