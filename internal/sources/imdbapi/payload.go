package imdbapi

// Image is an IMDb image reference.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// NameRef is a person entry.
type NameRef struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	PrimaryImage *Image `json:"primaryImage"`
}

// Interest is an IMDb interest tag ("Prison Drama", "Shōnen").
type Interest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Rating is the aggregate IMDb user rating.
type Rating struct {
	AggregateRating any `json:"aggregateRating"`
	VoteCount       any `json:"voteCount"`
}

// Title is the /titles/{id} payload.
type Title struct {
	ID             string     `json:"id"`
	Type           string     `json:"type"`
	PrimaryTitle   string     `json:"primaryTitle"`
	OriginalTitle  string     `json:"originalTitle"`
	PrimaryImage   *Image     `json:"primaryImage"`
	StartYear      any        `json:"startYear"`
	EndYear        any        `json:"endYear"`
	RuntimeSeconds any        `json:"runtimeSeconds"`
	Genres         []string   `json:"genres"`
	Interests      []Interest `json:"interests"`
	Rating         *Rating    `json:"rating"`
	Plot           string     `json:"plot"`
	Directors      []NameRef  `json:"directors"`
	Writers        []NameRef  `json:"writers"`
	Stars          []NameRef  `json:"stars"`
}

// Credit is one entry of /titles/{id}/credits.
type Credit struct {
	Name       NameRef  `json:"name"`
	Category   string   `json:"category"`
	Characters []string `json:"characters"`
}

type creditsResponse struct {
	Credits       []Credit `json:"credits"`
	NextPageToken string   `json:"nextPageToken"`
}

type searchResponse struct {
	Titles []Title `json:"titles"`
}
