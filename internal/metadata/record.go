package metadata

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Person is one credit entry.
type Person struct {
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// HasPhoto reports whether the person carries a portrait URL.
func (p Person) HasPhoto() bool {
	return strings.TrimSpace(p.ImageURL) != ""
}

// Rating is a provider score. Votes is zero when the provider does not report it.
type Rating struct {
	Score float64 `json:"score"`
	Votes int64   `json:"votes,omitempty"`
}

// Images holds artwork URLs.
type Images struct {
	Poster     string `json:"poster,omitempty"`
	Background string `json:"background,omitempty"`
	Logo       string `json:"logo,omitempty"`
}

// Record is the canonical merged metadata for one title.
type Record struct {
	ID            string            `json:"id"`
	SecondaryIDs  map[string]string `json:"secondary_ids,omitempty"`
	Title         string            `json:"title,omitempty"`
	OriginalTitle string            `json:"original_title,omitempty"`
	Kind          Kind              `json:"kind,omitempty"`

	Plot         string  `json:"plot,omitempty"`
	PlotSource   string  `json:"plot_source,omitempty"`
	Tagline      string  `json:"tagline,omitempty"`
	Runtime      Runtime `json:"runtime,omitzero"`
	Year         int     `json:"year,omitempty"`
	Status       string  `json:"status,omitempty"`
	EpisodeCount int     `json:"episode_count,omitempty"`

	Cast          []Person `json:"cast,omitempty"`
	Directors     []Person `json:"directors,omitempty"`
	Writers       []Person `json:"writers,omitempty"`
	CreditsSource string   `json:"credits_source,omitempty"`

	Genres       []string `json:"genres,omitempty"`
	Interests    []string `json:"interests,omitempty"`
	Demographics []string `json:"demographics,omitempty"`

	Ratings map[string]Rating `json:"ratings,omitempty"`
	Images  Images            `json:"images,omitzero"`

	Sources   []string  `json:"sources,omitempty"`
	Stage     Stage     `json:"stage"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// HasSource reports whether source already contributed to r.
func (r Record) HasSource(source string) bool {
	return slices.Contains(r.Sources, source)
}

// AddSource records a successful contribution and recomputes the stage.
// The stage becomes complete once every source in required has contributed.
func (r *Record) AddSource(source string, required []string) {
	source = strings.TrimSpace(source)
	if source != "" && !r.HasSource(source) {
		r.Sources = append(r.Sources, source)
		slices.Sort(r.Sources)
	}
	r.Stage = StageFor(r.Sources, required)
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := r
	out.SecondaryIDs = cloneMap(r.SecondaryIDs)
	out.Ratings = cloneMap(r.Ratings)
	out.Cast = slices.Clone(r.Cast)
	out.Directors = slices.Clone(r.Directors)
	out.Writers = slices.Clone(r.Writers)
	out.Genres = slices.Clone(r.Genres)
	out.Interests = slices.Clone(r.Interests)
	out.Demographics = slices.Clone(r.Demographics)
	out.Sources = slices.Clone(r.Sources)
	return out
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	if in == nil {
		return nil
	}
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Stage describes how far enrichment has progressed.
type Stage int

const (
	StageUnenriched Stage = iota
	StageSingleSource
	StageMerged
	StageComplete
)

var stageNames = [...]string{"unenriched", "single_source", "merged", "complete"}

func (s Stage) String() string {
	if s < StageUnenriched || s > StageComplete {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// MarshalText encodes the stage name.
func (s Stage) MarshalText() ([]byte, error) {
	if s < StageUnenriched || s > StageComplete {
		return nil, fmt.Errorf("invalid stage %d", int(s))
	}
	return []byte(stageNames[s]), nil
}

// UnmarshalText decodes a stage name.
func (s *Stage) UnmarshalText(text []byte) error {
	name := strings.TrimSpace(string(text))
	for i, candidate := range stageNames {
		if candidate == name {
			*s = Stage(i)
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", name)
}

// StageFor derives the stage from the set of contributing sources.
func StageFor(sources, required []string) Stage {
	if len(sources) == 0 {
		return StageUnenriched
	}
	if len(required) > 0 {
		complete := true
		for _, name := range required {
			if !slices.Contains(sources, name) {
				complete = false
				break
			}
		}
		if complete {
			return StageComplete
		}
	}
	if len(sources) == 1 {
		return StageSingleSource
	}
	return StageMerged
}
