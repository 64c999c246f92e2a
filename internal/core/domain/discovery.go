package domain

// Candidate is a video found by a platform search but not yet in the library.
type Candidate struct {
	VideoID  string  `json:"video_id"`
	Title    string  `json:"title"`
	Channel  string  `json:"channel"`
	Duration float64 `json:"duration"`
	URL      string  `json:"url"`

	Description  string `json:"description,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// Cluster is a named group of discovery candidates.
type Cluster struct {
	Name   string      `json:"name"`
	Videos []Candidate `json:"videos"`
}

// Discovery is the result of a topic search.
type Discovery struct {
	Topic string `json:"topic"`

	// Found is the number of raw search results before filtering.
	Found int `json:"total_found"`

	Clusters []Cluster `json:"clusters"`
}

// Total returns the number of candidates kept across all clusters.
func (d *Discovery) Total() int {
	n := 0
	for _, c := range d.Clusters {
		n += len(c.Videos)
	}
	return n
}
