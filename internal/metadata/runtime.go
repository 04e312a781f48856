package metadata

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Runtime is a duration in whole minutes. PerEpisode marks series runtimes
// that describe a single episode.
type Runtime struct {
	Minutes    int  `json:"minutes"`
	PerEpisode bool `json:"per_episode,omitempty"`
}

// IsZero reports an absent runtime.
func (r Runtime) IsZero() bool {
	return r.Minutes <= 0
}

func (r Runtime) String() string {
	if r.IsZero() {
		return ""
	}
	var text string
	switch h, m := r.Minutes/60, r.Minutes%60; {
	case h == 0:
		text = fmt.Sprintf("%dm", m)
	case m == 0:
		text = fmt.Sprintf("%dh", h)
	default:
		text = fmt.Sprintf("%dh %dm", h, m)
	}
	if r.PerEpisode {
		text += " per episode"
	}
	return text
}

var (
	isoRuntimePattern    = regexp.MustCompile(`^pt(?:(\d+)h)?(?:(\d+)m)?(?:(\d+)s)?$`)
	hoursPattern         = regexp.MustCompile(`(\d+)\s*(?:hours|hour|hrs|hr|h)(?:\b|\d)`)
	minutesPattern       = regexp.MustCompile(`(\d+)\s*(?:m|min|mins|minute|minutes)\b`)
	bareNumberPattern    = regexp.MustCompile(`^(\d+)$`)
	perEpisodeMarkerExpr = regexp.MustCompile(`per\s*ep|/\s*ep|each\s*ep`)
)

// ParseRuntime reads free-text runtimes such as "142 min", "2h 22m",
// "2h22m", "1 hr 5 min", "24 min per ep", "PT2H22M", or a bare minute
// count. The second result reports whether the text marked the value as
// per-episode.
// A zero minute count means the text held no usable runtime.
func ParseRuntime(text string) (minutes int, perEpisode bool) {
	value := strings.ToLower(strings.TrimSpace(text))
	if value == "" {
		return 0, false
	}
	perEpisode = perEpisodeMarkerExpr.MatchString(value)

	if m := isoRuntimePattern.FindStringSubmatch(value); m != nil {
		h := atoi(m[1])
		mins := atoi(m[2])
		if secs := atoi(m[3]); secs >= 30 {
			mins++
		}
		return h*60 + mins, perEpisode
	}
	if m := bareNumberPattern.FindStringSubmatch(value); m != nil {
		return atoi(m[1]), perEpisode
	}

	total := 0
	if m := hoursPattern.FindStringSubmatch(value); m != nil {
		total += atoi(m[1]) * 60
	}
	if m := minutesPattern.FindStringSubmatch(value); m != nil {
		total += atoi(m[1])
	}
	return total, perEpisode
}

// RuntimeFromSeconds rounds a second count to whole minutes.
func RuntimeFromSeconds(seconds int) int {
	if seconds <= 0 {
		return 0
	}
	return (seconds + 30) / 60
}

// seriesTotalFloor is the minute count above which a series runtime without
// a per-episode marker is read as a season or series total.
const seriesTotalFloor = 90

// NormalizeRuntime shapes a parsed minute count for kind. Series runtimes
// that look like totals are divided by the episode count hint; other series
// runtimes are taken as per-episode.
func NormalizeRuntime(kind Kind, minutes int, perEpisode bool, episodes int) Runtime {
	if minutes <= 0 {
		return Runtime{}
	}
	if kind != KindSeries {
		return Runtime{Minutes: minutes}
	}
	if !perEpisode && episodes > 1 && minutes > seriesTotalFloor {
		per := (minutes + episodes/2) / episodes
		if per > 0 {
			return Runtime{Minutes: per, PerEpisode: true}
		}
	}
	return Runtime{Minutes: minutes, PerEpisode: true}
}

func atoi(value string) int {
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}
