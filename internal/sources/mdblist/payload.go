package mdblist

import "encoding/json"

// titleResponse is the /imdb/{movie|show}/{id} payload.
type titleResponse struct {
	Title       string   `json:"title"`
	Year        any      `json:"year"`
	Released    string   `json:"released"`
	Description string   `json:"description"`
	Tagline     string   `json:"tagline"`
	Runtime     any      `json:"runtime"`
	Type        string   `json:"type"`
	Ratings     []Rating `json:"ratings"`
	IDs         IDs      `json:"ids"`
	Genres      []Genre  `json:"genres"`
	Response    *bool    `json:"response"`
	Error       string   `json:"error"`
}

// Rating is one provider score. Value uses the provider's own scale.
type Rating struct {
	Source string `json:"source"`
	Value  any    `json:"value"`
	Score  any    `json:"score"`
	Votes  any    `json:"votes"`
}

// IDs lists the cross-reference identifiers MDBList knows.
type IDs struct {
	IMDb  string `json:"imdb"`
	TMDb  any    `json:"tmdb"`
	Trakt any    `json:"trakt"`
	TVDB  any    `json:"tvdb"`
	MAL   any    `json:"mal"`
}

// Genre is a genre entry. Older responses send bare strings instead.
type Genre struct {
	Title string `json:"title"`
}

func (g *Genre) UnmarshalJSON(data []byte) error {
	var title string
	if err := json.Unmarshal(data, &title); err == nil {
		g.Title = title
		return nil
	}
	type plain Genre
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*g = Genre(p)
	return nil
}

// ListItem is one entry of a public MDBList list, used as a catalog feed.
type ListItem struct {
	ID          any    `json:"id"`
	Rank        int    `json:"rank"`
	Title       string `json:"title"`
	IMDbID      string `json:"imdb_id"`
	MediaType   string `json:"mediatype"`
	ReleaseYear any    `json:"release_year"`
}
