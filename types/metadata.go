package types

// Metadata represents tag fields extracted from an audio file. All tag fields
// are optional; Path and Filename are always set.
type Metadata struct {
	Title       string `json:"title,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Album       string `json:"album,omitempty"`
	Genre       string `json:"genre,omitempty"`
	TrackNumber int    `json:"trackNumber,omitempty"`
	Year        int    `json:"year,omitempty"`
	Path        string `json:"path"`
	Filename    string `json:"filename"`
}
