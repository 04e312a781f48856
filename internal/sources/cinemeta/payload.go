package cinemeta

// metaResponse wraps /meta/{type}/{id}.json.
type metaResponse struct {
	Meta *Meta `json:"meta"`
}

// Meta is the Cinemeta title payload. Several fields arrive as either
// numbers or strings, so they are decoded loosely.
type Meta struct {
	ID          string    `json:"id"`
	IMDbID      string    `json:"imdb_id"`
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ReleaseInfo any       `json:"releaseInfo"`
	Year        any       `json:"year"`
	Runtime     string    `json:"runtime"`
	Status      string    `json:"status"`
	Genres      []string  `json:"genres"`
	Genre       []string  `json:"genre"`
	Cast        []string  `json:"cast"`
	Director    any       `json:"director"`
	Writer      any       `json:"writer"`
	IMDbRating  any       `json:"imdbRating"`
	Poster      string    `json:"poster"`
	Background  string    `json:"background"`
	Logo        string    `json:"logo"`
	MovieDBID   any       `json:"moviedb_id"`
	TVDBID      any       `json:"tvdb_id"`
	Videos      []Video   `json:"videos"`
	AppExtras   AppExtras `json:"app_extras"`
}

// Video is one series episode entry.
type Video struct {
	ID      string `json:"id"`
	Season  int    `json:"season"`
	Episode int    `json:"episode"`
}

// AppExtras carries credits with portraits when Cinemeta has them.
type AppExtras struct {
	Cast      []Credit `json:"cast"`
	Directors []Credit `json:"directors"`
	Writers   []Credit `json:"writers"`
}

// Credit is a person entry inside app_extras.
type Credit struct {
	Name      string `json:"name"`
	Character string `json:"character"`
	Photo     string `json:"photo"`
}

// catalogResponse wraps /catalog/{type}/{id}.json.
type catalogResponse struct {
	Metas []Meta `json:"metas"`
}
