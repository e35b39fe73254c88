package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// Load reads the catalog file at path. The format follows the extension:
// .yaml/.yml decode as YAML, everything else as JSON.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	episodes, err := Decode(data, formatFor(path))
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", filepath.Base(path), err)
	}
	return NewIndex(episodes), nil
}

// Decode parses catalog bytes in the given format ("json" or "yaml").
// Numeric episode ids are accepted and converted to their string form.
func Decode(data []byte, format string) ([]Episode, error) {
	var raw []map[string]any
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	}
	episodes := make([]Episode, 0, len(raw))
	for _, entry := range raw {
		episodes = append(episodes, episodeFromMap(entry))
	}
	return episodes, nil
}

// Save writes episodes to path atomically, as JSON or YAML by extension.
func Save(path string, episodes []Episode) error {
	var (
		data []byte
		err  error
	)
	if formatFor(path) == "yaml" {
		data, err = yaml.Marshal(episodes)
	} else {
		data, err = json.MarshalIndent(episodes, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create catalog directory: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

func formatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// episodeFromMap tolerates both the website export keys and snake_case
// variants so hand-maintained YAML catalogs load without ceremony.
func episodeFromMap(m map[string]any) Episode {
	get := func(keys ...string) string {
		for _, key := range keys {
			if v, ok := m[key]; ok && v != nil {
				if s := stringify(v); s != "" {
					return s
				}
			}
		}
		return ""
	}
	return Episode{
		ID:          get("episode", "id"),
		Title:       get("title"),
		Guest:       get("guest", "guestName", "guest_name"),
		Topic:       get("topic"),
		Description: get("description"),
		Link:        get("link"),
		VideoURL:    get("youtubeUrl", "youtube_url", "video_url"),
		VideoID:     get("youtubeId", "youtube_id", "video_id"),
		Date:        get("date"),
		Series:      get("series"),
		Image:       get("image"),
		FolderID:    get("folderId", "folder_id"),
	}
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return fmt.Sprintf("%d", i)
		}
		if f, err := val.Float64(); err == nil && f == float64(int64(f)) {
			return fmt.Sprintf("%d", int64(f))
		}
		return val.String()
	case int:
		return fmt.Sprintf("%d", val)
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}
