package fanart

// Image is one fanart.tv artwork entry. Likes arrives as a string.
type Image struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Lang  string `json:"lang"`
	Likes any    `json:"likes"`
}

// artResponse covers both /v3/movies and /v3/tv payloads.
type artResponse struct {
	Name      string `json:"name"`
	IMDbID    string `json:"imdb_id"`
	TMDbID    any    `json:"tmdb_id"`
	TheTVDBID any    `json:"thetvdb_id"`

	MoviePoster     []Image `json:"movieposter"`
	MovieBackground []Image `json:"moviebackground"`
	HDMovieLogo     []Image `json:"hdmovielogo"`
	MovieLogo       []Image `json:"movielogo"`

	TVPoster       []Image `json:"tvposter"`
	ShowBackground []Image `json:"showbackground"`
	HDTVLogo       []Image `json:"hdtvlogo"`
	ClearLogo      []Image `json:"clearlogo"`
}
