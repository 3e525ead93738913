// Package services holds the long-running application services behind the
// HTTP handlers.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"heavymetal/catalog"
	"heavymetal/scanner"
	"heavymetal/store"
	"heavymetal/types"
	"heavymetal/websocket"
)

// ErrScanInProgress is returned when a scan is requested while one is running
var ErrScanInProgress = errors.New("a scan is already in progress")

// ScanService interface defines the methods for managing ingestion runs over
// HTTP. Only one run may be active at a time.
type ScanService interface {
	Start(root string) error
	Stop() bool
	Status() types.ScanReport
	Running() bool
}

// scanService serializes ingestion runs and feeds progress to the hub
type scanService struct {
	scanner *scanner.Scanner
	hub     websocket.Hub

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	last    types.ScanReport
}

// NewScanService creates a scan service owning its scanner. The scanner's
// per-batch callback is wired to this service so progress reaches both
// Status() and the WebSocket hub.
func NewScanService(st *store.Store, resolver *catalog.Resolver, cfg scanner.Config, hub websocket.Hub) ScanService {
	s := &scanService{hub: hub, last: types.ScanReport{State: types.ScanStateIdle}}
	cfg.OnBatch = s.progress
	s.scanner = scanner.New(st, resolver, cfg)
	return s
}

// Start launches a scan of root in the background. Returns ErrScanInProgress
// if a run is already active.
func (s *scanService) Start(root string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrScanInProgress
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.running = true
	s.cancel = cancel
	s.last = types.ScanReport{State: types.ScanStateScanning}

	go func() {
		report, err := s.scanner.Scan(ctx, root)
		cancel()

		s.mu.Lock()
		s.running = false
		s.cancel = nil
		s.last = *report
		s.mu.Unlock()

		msg := types.ProgressMessage{
			Type:        "complete",
			State:       report.State,
			Processed:   report.Processed,
			Succeeded:   report.Succeeded,
			FilesPerSec: report.FilesPerSec,
			SuccessRate: report.SuccessRate,
			Timestamp:   time.Now(),
		}
		if err != nil {
			msg.Type = "error"
			msg.Message = err.Error()
			log.Error("scan failed", "err", err)
		}
		s.hub.BroadcastProgress(msg)
	}()

	return nil
}

// Stop cancels the active scan, if any. The scanner flushes its partial
// batch and persists a checkpoint before stopping.
func (s *scanService) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.cancel == nil {
		return false
	}
	s.cancel()
	return true
}

// Status returns the latest progress snapshot of the current or last run
func (s *scanService) Status() types.ScanReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Running reports whether a scan is currently active
func (s *scanService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// progress records a per-batch report and broadcasts it to WebSocket clients
func (s *scanService) progress(report types.ScanReport, lastFile string) {
	s.mu.Lock()
	if s.running {
		s.last = report
	}
	s.mu.Unlock()

	s.hub.BroadcastProgress(types.ProgressMessage{
		Type:        "progress",
		State:       report.State,
		Processed:   report.Processed,
		Succeeded:   report.Succeeded,
		FilesPerSec: report.FilesPerSec,
		SuccessRate: report.SuccessRate,
		CurrentFile: lastFile,
		Timestamp:   time.Now(),
	})
}
