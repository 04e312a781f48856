package sources

import (
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

var yearPattern = regexp.MustCompile(`(1[89]\d\d|20\d\d)`)

// Year extracts a four-digit year from a number or strings such as
// "1994", "2008–2013", or "1994-09-23". Zero means unknown.
func Year(value any) int {
	if n, err := cast.ToIntE(value); err == nil && n > 1800 && n < 3000 {
		return n
	}
	match := yearPattern.FindString(cast.ToString(value))
	if match == "" {
		return 0
	}
	return cast.ToInt(match)
}

// Float reads a JSON number or numeric string. Unparseable values yield 0.
func Float(value any) float64 {
	f, err := cast.ToFloat64E(strings.TrimSpace(cast.ToString(value)))
	if err != nil {
		return 0
	}
	return f
}

// Int reads a JSON number or numeric string, tolerating thousands separators.
func Int(value any) int64 {
	text := strings.ReplaceAll(strings.TrimSpace(cast.ToString(value)), ",", "")
	if n, err := cast.ToInt64E(text); err == nil {
		return n
	}
	if f, err := cast.ToFloat64E(text); err == nil {
		return int64(f)
	}
	return 0
}

// String reads a JSON string or number as text.
func String(value any) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(value))
}

// Strings reads a JSON array of strings, or a comma-separated string.
func Strings(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		raw, err := cast.ToStringSliceE(value)
		if err != nil {
			return nil
		}
		out := make([]string, 0, len(raw))
		for _, s := range raw {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
}
