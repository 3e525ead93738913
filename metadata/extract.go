// Package metadata detects audio container formats and extracts tag fields.
package metadata

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dhowden/tag"

	"heavymetal/types"
)

// Extract parses the tag fields of an audio file. Every field is optional;
// when no title tag is present the filename stem is used instead. Extraction
// never fails: parse errors are logged and yield a metadata record with only
// Path, Filename and the fallback Title set.
func Extract(path string) *types.Metadata {
	md := &types.Metadata{
		Path:     path,
		Filename: filepath.Base(path),
	}

	if DetectFormat(path) == FormatUnknown {
		log.Warn("unsupported audio format", "path", path)
		md.Title = titleFromFilename(path)
		return md
	}

	file, err := os.Open(path)
	if err != nil {
		log.Warn("could not open audio file", "path", path, "err", err)
		md.Title = titleFromFilename(path)
		return md
	}
	defer file.Close()

	// The tag library dispatches on the container's tag scheme internally:
	// ID3 frames for MP3, Vorbis comments for FLAC/OGG.
	meta, err := tag.ReadFrom(file)
	if err != nil {
		log.Warn("could not parse audio tags", "path", path, "err", err)
		md.Title = titleFromFilename(path)
		return md
	}

	md.Title = meta.Title()
	md.Artist = meta.Artist()
	md.Album = meta.Album()
	md.Genre = meta.Genre()
	md.Year = meta.Year()
	md.TrackNumber, _ = meta.Track()

	if md.Title == "" {
		md.Title = titleFromFilename(path)
	}

	return md
}

// titleFromFilename strips the extension off the base name
func titleFromFilename(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
