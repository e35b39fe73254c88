package catalog

import (
	"strconv"
	"strings"
)

// Episode is one canonical catalog entry.
type Episode struct {
	ID          string `json:"episode" yaml:"episode"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Guest       string `json:"guest" yaml:"guest"`
	Topic       string `json:"topic,omitempty" yaml:"topic,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Link        string `json:"link,omitempty" yaml:"link,omitempty"`
	VideoURL    string `json:"youtubeUrl,omitempty" yaml:"youtube_url,omitempty"`
	VideoID     string `json:"youtubeId,omitempty" yaml:"youtube_id,omitempty"`
	Date        string `json:"date,omitempty" yaml:"date,omitempty"`
	Series      string `json:"series,omitempty" yaml:"series,omitempty"`
	Image       string `json:"image,omitempty" yaml:"image,omitempty"`
	FolderID    string `json:"folderId,omitempty" yaml:"folder_id,omitempty"`
}

// Number returns the numeric episode id when the id is an integer.
func (e Episode) Number() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(e.ID))
	if err != nil {
		return 0, false
	}
	return n, true
}

// VideoRef returns the normalized 11-character video id, checking the
// explicit id first and then every URL field that may carry one.
func (e Episode) VideoRef() string {
	for _, candidate := range []string{e.VideoID, e.VideoURL, e.Link} {
		if id := ExtractVideoID(candidate); id != "" {
			return id
		}
	}
	return ""
}

// Label renders "Ep{id} {guest}" for logs and tables.
func (e Episode) Label() string {
	guest := strings.TrimSpace(e.Guest)
	if guest == "" {
		guest = "Unknown"
	}
	return "Ep" + e.ID + " " + guest
}
