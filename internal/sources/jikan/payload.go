package jikan

// animeResponse wraps /anime/{id}/full.
type animeResponse struct {
	Data *Anime `json:"data"`
}

// searchResponse wraps /anime?q=.
type searchResponse struct {
	Data []Anime `json:"data"`
}

// Anime is the Jikan (MyAnimeList) anime payload.
type Anime struct {
	MalID         int      `json:"mal_id"`
	Title         string   `json:"title"`
	TitleEnglish  string   `json:"title_english"`
	TitleJapanese string   `json:"title_japanese"`
	Type          string   `json:"type"`
	Episodes      any      `json:"episodes"`
	Status        string   `json:"status"`
	Duration      string   `json:"duration"`
	Score         any      `json:"score"`
	ScoredBy      any      `json:"scored_by"`
	Synopsis      string   `json:"synopsis"`
	Year          any      `json:"year"`
	Aired         Aired    `json:"aired"`
	Genres        []Entity `json:"genres"`
	Themes        []Entity `json:"themes"`
	Demographics  []Entity `json:"demographics"`
}

// Aired holds the broadcast window.
type Aired struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Entity is a MAL taxonomy entry such as a genre or theme.
type Entity struct {
	MalID int    `json:"mal_id"`
	Name  string `json:"name"`
}
