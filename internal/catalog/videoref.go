package catalog

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	videoPathPattern = regexp.MustCompile(`(?:youtu\.be/|youtube\.com/(?:embed|shorts|live|v)/)([A-Za-z0-9_-]{11})`)
	bareVideoID      = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// ExtractVideoID normalizes the accepted video reference shapes to the bare
// 11-character id: youtu.be/<id>, youtube.com/watch?v=<id>, youtube.com/embed/<id>,
// youtube.com/shorts/<id>, youtube.com/live/<id>, or the id itself. Anything
// else yields "".
func ExtractVideoID(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if bareVideoID.MatchString(ref) {
		return ref
	}
	if m := videoPathPattern.FindStringSubmatch(ref); m != nil {
		return m[1]
	}
	if !strings.Contains(ref, "youtube.com/watch") {
		return ""
	}
	raw := ref
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if v := parsed.Query().Get("v"); len(v) >= 11 && bareVideoID.MatchString(v[:11]) {
		return v[:11]
	}
	return ""
}

// WatchURL builds the canonical watch URL for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
