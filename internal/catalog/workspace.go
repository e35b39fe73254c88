package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"transcriptsync/internal/services/notion"
)

// Workspace property names read by the catalog export.
const (
	PropEpisodeNo    = "Episode No."
	PropEpisodeName  = "Episode Name"
	PropEpisodeTitle = "Podcast Episode Title"
	PropSummary      = "Episode Summary"
	PropDescription  = "Podcast Episode Description"
	PropSpotify      = "Spotify Link"
	PropYouTube      = "YouTube Link"
	PropPublished    = "Publication Date"
	PropSeries       = "Series"
	PropDriveFolder  = "Drive Folder"
)

// DatabaseReader is the workspace operation the export needs.
type DatabaseReader interface {
	QueryDatabase(ctx context.Context, databaseID string, q notion.Query) ([]notion.Page, error)
}

// FetchFromWorkspace pages through the episode database newest first and
// converts every row that has an episode number or a guest into an Episode.
func FetchFromWorkspace(ctx context.Context, db DatabaseReader, databaseID, episodeProperty string) ([]Episode, error) {
	if episodeProperty == "" {
		episodeProperty = PropEpisodeNo
	}
	pages, err := db.QueryDatabase(ctx, databaseID, notion.Query{
		Sorts:    []notion.Sort{{Property: episodeProperty, Direction: "descending"}},
		PageSize: 100,
	})
	if err != nil {
		return nil, fmt.Errorf("query workspace catalog: %w", err)
	}
	episodes := make([]Episode, 0, len(pages))
	for _, page := range pages {
		ep, ok := episodeFromPage(page, episodeProperty)
		if !ok {
			continue
		}
		episodes = append(episodes, ep)
	}
	return episodes, nil
}

func episodeFromPage(page notion.Page, episodeProperty string) (Episode, bool) {
	props := page.Properties
	var id string
	if n := props[episodeProperty].Number; n != nil {
		id = strconv.Itoa(int(*n))
	}
	guest := props[PropEpisodeName].Text()
	if id == "" && guest == "" {
		return Episode{}, false
	}
	topic := props[PropEpisodeTitle].Text()
	desc := props[PropSummary].Text()
	if desc == "" {
		desc = props[PropDescription].Text()
	}
	ep := Episode{
		ID:          id,
		Guest:       guest,
		Title:       composeTitle(id, guest, topic),
		Topic:       topic,
		Description: desc,
		Link:        props[PropSpotify].URLValue(),
		VideoURL:    props[PropYouTube].URLValue(),
		FolderID:    folderFromURL(props[PropDriveFolder].URLValue()),
	}
	if ep.Topic == "" {
		ep.Topic = ep.Title
	}
	ep.VideoID = ExtractVideoID(ep.VideoURL)
	if d := props[PropPublished].Date; d != nil {
		ep.Date = d.Start
	}
	if s := props[PropSeries].Select; s != nil {
		ep.Series = s.Name
	}
	for _, key := range []string{"Key Graphic", "AI Image"} {
		for _, f := range props[key].Files {
			if link := f.Link(); link != "" {
				ep.Image = link
				break
			}
		}
		if ep.Image != "" {
			break
		}
	}
	return ep, true
}

func composeTitle(id, guest, topic string) string {
	switch {
	case id != "" && guest != "" && topic != "":
		return "Ep" + id + ": " + guest + ": " + topic
	case id != "" && guest != "":
		return "Ep" + id + ": " + guest
	case guest != "" && topic != "":
		return guest + ": " + topic
	case guest != "":
		return guest
	case topic != "":
		return topic
	default:
		return "Untitled"
	}
}

// folderFromURL accepts either a bare folder id or a drive folder URL.
func folderFromURL(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	const marker = "/folders/"
	if idx := strings.Index(value, marker); idx >= 0 {
		rest := value[idx+len(marker):]
		if cut := strings.IndexAny(rest, "/?#"); cut >= 0 {
			rest = rest[:cut]
		}
		return rest
	}
	if strings.Contains(value, "/") {
		return ""
	}
	return value
}
