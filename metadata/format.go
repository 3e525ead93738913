package metadata

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// Format identifies a supported audio container
type Format string

const (
	FormatMP3     Format = "mp3"
	FormatFLAC    Format = "flac"
	FormatWAV     Format = "wav"
	FormatOGG     Format = "ogg"
	FormatUnknown Format = ""
)

// extensionMap is the fixed extension-to-format table checked before any
// content sniffing happens
var extensionMap = map[string]Format{
	".mp3":  FormatMP3,
	".flac": FormatFLAC,
	".wav":  FormatWAV,
	".ogg":  FormatOGG,
}

// candidateExtensions is the fast pre-filter applied during traversal. The
// container sniff is the authoritative check.
var candidateExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".wav":  true,
	".m4a":  true,
	".aac":  true,
	".wma":  true,
}

// HasCandidateExtension reports whether the path carries an extension from
// the fixed audio-extension set
func HasCandidateExtension(path string) bool {
	return candidateExtensions[strings.ToLower(filepath.Ext(path))]
}

// DetectFormat identifies the audio container of the file: first by
// extension against the fixed map, then by sniffing the file contents.
// Returns FormatUnknown if neither succeeds.
func DetectFormat(path string) Format {
	if format, ok := extensionMap[strings.ToLower(filepath.Ext(path))]; ok {
		return format
	}

	file, err := os.Open(path)
	if err != nil {
		return FormatUnknown
	}
	defer file.Close()

	return sniffFormat(file)
}

// IsAudioFile reports whether the path is an ingestion candidate: the
// extension must be in the candidate set AND the file must parse as a
// non-empty audio container.
func IsAudioFile(path string) bool {
	if !HasCandidateExtension(path) {
		return false
	}

	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	return sniffFormat(file) != FormatUnknown
}

// sniffFormat identifies the container from the file contents. The tag
// library recognizes everything but WAV, which is matched by its RIFF header.
func sniffFormat(file *os.File) Format {
	if isWAVE(file) {
		return FormatWAV
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return FormatUnknown
	}

	_, fileType, err := tag.Identify(file)
	if err != nil {
		return FormatUnknown
	}

	switch fileType {
	case tag.MP3:
		return FormatMP3
	case tag.FLAC:
		return FormatFLAC
	case tag.OGG:
		return FormatOGG
	default:
		return FormatUnknown
	}
}

// isWAVE checks for the 12-byte RIFF/WAVE container header
func isWAVE(file *os.File) bool {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return false
	}

	header := make([]byte, 12)
	if _, err := io.ReadFull(file, header); err != nil {
		return false
	}

	return bytes.Equal(header[0:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE"))
}

// GetContentType returns the MIME type matching the file's extension
func GetContentType(path string) string {
	switch extensionMap[strings.ToLower(filepath.Ext(path))] {
	case FormatMP3:
		return "audio/mpeg"
	case FormatFLAC:
		return "audio/flac"
	case FormatWAV:
		return "audio/wav"
	case FormatOGG:
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}
