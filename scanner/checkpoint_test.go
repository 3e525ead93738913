package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "checkpoint.txt")

	require.NoError(t, SaveCheckpoint(file, "/music/albums/track.mp3"))

	path, ok := LoadCheckpoint(file)
	require.True(t, ok)
	assert.Equal(t, "/music/albums/track.mp3", path)

	require.NoError(t, ClearCheckpoint(file))
	_, ok = LoadCheckpoint(file)
	assert.False(t, ok)
}

func TestLoadCheckpointMissingFile(t *testing.T) {
	_, ok := LoadCheckpoint(filepath.Join(t.TempDir(), "nope.txt"))
	assert.False(t, ok)
}

func TestLoadCheckpointEmptyFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "checkpoint.txt")
	require.NoError(t, os.WriteFile(file, []byte("  \n"), 0644))

	_, ok := LoadCheckpoint(file)
	assert.False(t, ok)
}

func TestClearCheckpointMissingFileIsNotAnError(t *testing.T) {
	assert.NoError(t, ClearCheckpoint(filepath.Join(t.TempDir(), "nope.txt")))
}
