package fanart

import (
	"cmp"
	"slices"
	"strings"

	"marquee/internal/metadata"
	"marquee/internal/sources"
)

// Name is the provider key used in records, config, and the limiter.
const Name = "fanart"

// Normalize maps a fanart.tv payload onto a record holding artwork only.
// requestedID is the IMDb or TMDB id for movies and the TVDB id for series.
func Normalize(requestedID string, payload []byte) (metadata.Record, error) {
	var resp artResponse
	if err := sources.Decode(Name, payload, &resp); err != nil {
		return metadata.Record{}, err
	}
	ids := payloadIDs(resp)
	if len(ids) == 0 {
		return metadata.Record{}, sources.NotFound(Name, requestedID)
	}
	if requestedID = strings.TrimSpace(requestedID); requestedID != "" && !slices.Contains(ids, requestedID) {
		return metadata.Record{}, sources.Mismatch(Name, requestedID, ids[0])
	}

	images := metadata.Images{
		Poster:     BestImage(slices.Concat(resp.MoviePoster, resp.TVPoster)),
		Background: BestImage(slices.Concat(resp.MovieBackground, resp.ShowBackground)),
		Logo:       BestImage(slices.Concat(resp.HDMovieLogo, resp.HDTVLogo)),
	}
	if images.Logo == "" {
		images.Logo = BestImage(slices.Concat(resp.MovieLogo, resp.ClearLogo))
	}
	if images == (metadata.Images{}) {
		return metadata.Record{}, sources.NotFound(Name, "no artwork for "+requestedID)
	}
	return metadata.Record{Images: images}, nil
}

func payloadIDs(resp artResponse) []string {
	var ids []string
	for _, id := range []string{
		strings.TrimSpace(resp.IMDbID),
		sources.String(resp.TMDbID),
		sources.String(resp.TheTVDBID),
	} {
		if id != "" && id != "0" {
			ids = append(ids, id)
		}
	}
	return ids
}

// BestImage picks the artwork URL to show: English first, then
// language-neutral, then anything else, most liked within each group.
func BestImage(images []Image) string {
	candidates := make([]Image, 0, len(images))
	for _, img := range images {
		if strings.TrimSpace(img.URL) != "" {
			candidates = append(candidates, img)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	slices.SortStableFunc(candidates, func(a, b Image) int {
		if c := cmp.Compare(langRank(a.Lang), langRank(b.Lang)); c != 0 {
			return c
		}
		return cmp.Compare(sources.Int(b.Likes), sources.Int(a.Likes))
	})
	return strings.TrimSpace(candidates[0].URL)
}

func langRank(lang string) int {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "en":
		return 0
	case "", "00":
		return 1
	default:
		return 2
	}
}
