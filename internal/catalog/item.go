package catalog

import (
	"encoding/json"
	"strings"

	"marquee/internal/enrichment"
	"marquee/internal/metadata"
	"marquee/internal/services"
	"marquee/internal/sources"
	"marquee/internal/sources/cinemeta"
	"marquee/internal/sources/mdblist"
)

// Item is one normalized feed entry.
type Item struct {
	Discovery enrichment.Discovery
	// Poster and Background are the artwork the feed advertises, if any.
	Poster     string
	Background string
}

// Art returns the URL screened before enrichment: the background, or the
// poster when the feed has no background.
func (i Item) Art() string {
	if i.Background != "" {
		return i.Background
	}
	return i.Poster
}

// shape holds the keys used to tell feed formats apart.
type shape struct {
	MediaType   *string `json:"mediatype"`
	ReleaseYear any     `json:"release_year"`
	Name        *string `json:"name"`
}

// NormalizeItem converts a Cinemeta catalog meta or an MDBList list item into
// a discovery. Entries with neither an IMDb id nor a title are rejected.
func NormalizeItem(raw json.RawMessage) (Item, error) {
	var probe shape
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Item{}, services.Wrap(services.ErrInvalidInput, "catalog", "normalize item", "not an object", err)
	}
	var item Item
	if probe.MediaType != nil || (probe.ReleaseYear != nil && probe.Name == nil) {
		var entry mdblist.ListItem
		if err := json.Unmarshal(raw, &entry); err != nil {
			return Item{}, services.Wrap(services.ErrInvalidInput, "catalog", "normalize item", "list entry", err)
		}
		item = fromListItem(entry)
	} else {
		var meta cinemeta.Meta
		if err := json.Unmarshal(raw, &meta); err != nil {
			return Item{}, services.Wrap(services.ErrInvalidInput, "catalog", "normalize item", "catalog meta", err)
		}
		item = fromMeta(meta)
	}
	if item.Discovery.ID == "" && item.Discovery.Title == "" {
		return Item{}, services.Wrap(services.ErrInvalidInput, "catalog", "normalize item", "entry has no id or title", nil)
	}
	item.Discovery.Priority = true
	return item, nil
}

func fromMeta(meta cinemeta.Meta) Item {
	d := enrichment.Discovery{
		ID:    imdbID(meta.IMDbID, meta.ID),
		Title: strings.TrimSpace(meta.Name),
		Year:  sources.Year(meta.Year),
	}
	if d.Year == 0 {
		d.Year = sources.Year(meta.ReleaseInfo)
	}
	if kind, ok := metadata.ParseKind(meta.Type); ok {
		d.Kind = kind
	}
	d.SecondaryIDs = secondary(map[string]string{
		"tmdb": sources.String(meta.MovieDBID),
		"tvdb": sources.String(meta.TVDBID),
	})
	return Item{
		Discovery:  d,
		Poster:     strings.TrimSpace(meta.Poster),
		Background: strings.TrimSpace(meta.Background),
	}
}

func fromListItem(entry mdblist.ListItem) Item {
	d := enrichment.Discovery{
		ID:    imdbID(entry.IMDbID),
		Title: strings.TrimSpace(entry.Title),
		Year:  sources.Year(entry.ReleaseYear),
	}
	if kind, ok := metadata.ParseKind(entry.MediaType); ok {
		d.Kind = kind
	}
	d.SecondaryIDs = secondary(map[string]string{"tmdb": sources.String(entry.ID)})
	return Item{Discovery: d}
}

func imdbID(candidates ...string) string {
	for _, id := range candidates {
		id = strings.TrimSpace(id)
		if strings.HasPrefix(id, "tt") {
			return id
		}
	}
	return ""
}

func secondary(ids map[string]string) map[string]string {
	for k, v := range ids {
		if v == "" || v == "0" {
			delete(ids, k)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return ids
}
