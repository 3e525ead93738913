package scanner

import (
	"fmt"
	"os"
	"strings"
)

// SaveCheckpoint persists the absolute path of the last committed file.
// Presence of the checkpoint file is what triggers resume on the next run.
func SaveCheckpoint(checkpointFile, lastFile string) error {
	if err := os.WriteFile(checkpointFile, []byte(lastFile), 0644); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint reads the checkpoint file if one exists. The second return
// value reports whether a checkpoint was found.
func LoadCheckpoint(checkpointFile string) (string, bool) {
	data, err := os.ReadFile(checkpointFile)
	if err != nil {
		return "", false
	}

	path := strings.TrimSpace(string(data))
	return path, path != ""
}

// ClearCheckpoint removes the checkpoint file. Called only after a scan runs
// to full completion.
func ClearCheckpoint(checkpointFile string) error {
	err := os.Remove(checkpointFile)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove checkpoint: %w", err)
	}
	return nil
}
