package enrichment

import (
	"regexp"
	"strings"

	"marquee/internal/metadata"
	"marquee/internal/services"
	"marquee/internal/textutil"
)

var imdbIDPattern = regexp.MustCompile(`^tt\d{5,}$`)

// Discovery is a title observed by a producer: a media-center tile, a
// catalog entry, or a CLI argument.
type Discovery struct {
	ID           string
	SecondaryIDs map[string]string
	Title        string
	Year         int
	Kind         metadata.Kind
	// Priority jumps the per-source queues.
	Priority bool
}

func (d Discovery) normalized() (Discovery, error) {
	d.ID = strings.TrimSpace(d.ID)
	d.Title = strings.TrimSpace(d.Title)
	if d.ID == "" && d.Title == "" {
		return d, services.Wrap(services.ErrInvalidInput, "enrichment", "discover", "id or title required", nil)
	}
	if d.ID != "" && !imdbIDPattern.MatchString(d.ID) {
		return d, services.Wrap(services.ErrInvalidInput, "enrichment", "discover", "malformed imdb id "+d.ID, nil)
	}
	if d.Year < 0 {
		d.Year = 0
	}
	return d, nil
}

// key identifies the discovery for in-flight dedup.
func (d Discovery) key() string {
	if d.ID != "" {
		return d.ID
	}
	return "title:" + textutil.CacheKey(d.Title, d.Year)
}

func (d Discovery) seed() metadata.Record {
	rec := metadata.Record{
		ID:    d.ID,
		Title: d.Title,
		Year:  d.Year,
		Kind:  d.Kind,
	}
	if len(d.SecondaryIDs) > 0 {
		rec.SecondaryIDs = make(map[string]string, len(d.SecondaryIDs))
		for k, v := range d.SecondaryIDs {
			if v = strings.TrimSpace(v); v != "" {
				rec.SecondaryIDs[k] = v
			}
		}
	}
	return rec
}
