package entity

type SearchHit struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// SearchResults mirrors a web search response. Error is set instead of
// failing so that agents can keep working with partial data.
type SearchResults struct {
	Query    string      `json:"query"`
	Organic  []SearchHit `json:"organic"`
	Answer   string      `json:"answer,omitempty"`
	Related  []string    `json:"related,omitempty"`
	Error    string      `json:"error,omitempty"`
	CacheHit bool        `json:"cache_hit,omitempty"`
}

type Page struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
	Links []Link `json:"links,omitempty"`
}

type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}
