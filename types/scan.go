package types

import "time"

// ScanState represents the current state of the ingestion pipeline
type ScanState string

const (
	ScanStateIdle        ScanState = "idle"
	ScanStateScanning    ScanState = "scanning"
	ScanStateCommitting  ScanState = "committing"
	ScanStateInterrupted ScanState = "interrupted"
	ScanStateDone        ScanState = "done"
	ScanStateFailed      ScanState = "failed"
)

// ScanReport summarizes an ingestion run
type ScanReport struct {
	State       ScanState     `json:"state"`
	Processed   int           `json:"processed"`
	Succeeded   int           `json:"succeeded"`
	Batches     int           `json:"batches"`
	Elapsed     time.Duration `json:"elapsed"`
	FilesPerSec float64       `json:"filesPerSec"`
	SuccessRate float64       `json:"successRate"`
	Error       string        `json:"error,omitempty"`
}

// ProgressMessage represents a WebSocket scan progress update message
type ProgressMessage struct {
	Type        string    `json:"type"` // "progress", "status", "complete", "error"
	State       ScanState `json:"state"`
	Processed   int       `json:"processed"`
	Succeeded   int       `json:"succeeded"`
	FilesPerSec float64   `json:"filesPerSec"`
	SuccessRate float64   `json:"successRate"`
	CurrentFile string    `json:"currentFile,omitempty"`
	Message     string    `json:"message,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
