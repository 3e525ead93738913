package types

// Artist represents a catalog artist row, deduplicated by exact name
type Artist struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// Album represents a catalog album row, deduplicated by exact name
type Album struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// AudioFile represents a filesystem-backed audio resource. The path is the
// ownership key: the catalog never moves or copies the underlying bytes.
type AudioFile struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// Track represents a catalog track row. Artist and Album are optional
// references; Audio always points at the file inserted alongside the track.
type Track struct {
	UUID   string `json:"uuid"`
	Name   string `json:"name"`
	Genre  string `json:"genre,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Audio  string `json:"audio"`
}

// TrackSummary is the compact listing shape returned by list and search
type TrackSummary struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// TrackDetail joins a track with its audio file and optional artist/album
type TrackDetail struct {
	UUID   string     `json:"uuid"`
	Name   string     `json:"name"`
	Genre  string     `json:"genre,omitempty"`
	Audio  AudioFile  `json:"audio"`
	Artist *Artist    `json:"artist,omitempty"`
	Album  *Album     `json:"album,omitempty"`
}

// User represents a registered account. Accounts are never deleted, only
// soft-disabled via IsActive.
type User struct {
	UUID           string `json:"uuid"`
	Name           string `json:"name"`
	HashedPassword string `json:"-"`
	IsActive       bool   `json:"is_active"`
	IsSuperuser    bool   `json:"is_superuser"`
}
