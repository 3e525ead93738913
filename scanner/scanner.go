// Package scanner implements the library-ingestion pipeline: it traverses a
// directory tree, extracts metadata from candidate audio files, resolves
// artist/album identities and commits catalog rows in checkpointed batches.
package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"heavymetal/catalog"
	"heavymetal/metadata"
	"heavymetal/store"
	"heavymetal/types"
)

// ExtractFunc parses tag metadata for a single file
type ExtractFunc func(path string) *types.Metadata

// CandidateFunc decides whether a file should be ingested
type CandidateFunc func(path string) bool

// BatchFunc is invoked after every committed batch with a progress snapshot
// and the path of the batch's last file
type BatchFunc func(report types.ScanReport, lastFile string)

// Config controls a Scanner. Zero values fall back to sensible defaults.
type Config struct {
	BatchSize      int
	MaxWorkers     int
	CheckpointFile string
	ShowProgress   bool
	Extract        ExtractFunc
	IsCandidate    CandidateFunc
	OnBatch        BatchFunc
}

// Scanner drives the ingestion pipeline against a store and resolver
type Scanner struct {
	store    *store.Store
	resolver *catalog.Resolver
	cfg      Config
}

// New creates a scanner. Extraction and candidate filtering default to the
// metadata package implementations.
func New(st *store.Store, resolver *catalog.Resolver, cfg Config) *Scanner {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 100
	}
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = 4
	}
	if cfg.CheckpointFile == "" {
		cfg.CheckpointFile = "library_builder_checkpoint.txt"
	}
	if cfg.Extract == nil {
		cfg.Extract = metadata.Extract
	}
	if cfg.IsCandidate == nil {
		cfg.IsCandidate = metadata.IsAudioFile
	}

	return &Scanner{store: st, resolver: resolver, cfg: cfg}
}

// Scan runs the pipeline over the directory tree rooted at root. Cancelling
// ctx flushes the partial batch, persists a checkpoint and stops cleanly so
// a later run can resume.
func (s *Scanner) Scan(ctx context.Context, root string) (*types.ScanReport, error) {
	start := time.Now()

	root, err := filepath.Abs(root)
	if err != nil {
		return &types.ScanReport{State: types.ScanStateFailed, Error: err.Error()}, err
	}

	checkpoint, resuming := LoadCheckpoint(s.cfg.CheckpointFile)
	if resuming {
		log.Info("resuming from checkpoint", "path", checkpoint)
	}

	if err := s.resolver.Seed(); err != nil {
		return &types.ScanReport{State: types.ScanStateFailed, Error: err.Error()}, err
	}
	artists, albums := s.resolver.CachedCounts()
	log.Info("cached existing artists and albums", "artists", artists, "albums", albums)

	var bar *progressbar.ProgressBar
	if s.cfg.ShowProgress {
		estimated := estimateCandidates(root)
		log.Info("estimated audio files to process", "count", estimated)
		bar = progressbar.Default(int64(estimated), "processing files")
	}

	var (
		batch       []string
		processed   int
		succeeded   int
		batches     int
		skipped     int
		skipping    = resuming
		interrupted bool
	)

	snapshot := func(state types.ScanState) types.ScanReport {
		elapsed := time.Since(start)
		report := types.ScanReport{
			State:     state,
			Processed: processed,
			Succeeded: succeeded,
			Batches:   batches,
			Elapsed:   elapsed,
		}
		if elapsed > 0 {
			report.FilesPerSec = float64(processed) / elapsed.Seconds()
		}
		if processed > 0 {
			report.SuccessRate = float64(succeeded) / float64(processed) * 100
		}
		return report
	}

	// Commits the accumulated batch, records progress and persists the
	// checkpoint. Returns a run-fatal error only when the store itself fails.
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		n, err := s.processBatch(batch)
		if err != nil {
			return err
		}

		processed += len(batch)
		succeeded += n
		batches++
		lastFile := batch[len(batch)-1]

		if err := SaveCheckpoint(s.cfg.CheckpointFile, lastFile); err != nil {
			return err
		}
		if bar != nil {
			bar.Add(len(batch))
		}

		report := snapshot(types.ScanStateScanning)
		log.Info("batch committed",
			"processed", report.Processed,
			"filesPerSec", report.FilesPerSec,
			"successRate", report.SuccessRate)

		if s.cfg.OnBatch != nil {
			s.cfg.OnBatch(report, lastFile)
		}

		batch = nil
		return nil
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			interrupted = true
			return filepath.SkipAll
		}

		if err != nil {
			if os.IsPermission(err) {
				log.Warn("permission denied, skipping subtree", "path", path)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			log.Error("error traversing", "path", path, "err", err)
			return nil
		}

		if d.IsDir() || !s.cfg.IsCandidate(path) {
			return nil
		}

		// When resuming, advance past everything up to and including the
		// checkpointed file without re-processing it.
		if skipping {
			skipped++
			if path == checkpoint {
				skipping = false
				log.Info("skipped previously processed files", "count", skipped)
			}
			return nil
		}

		batch = append(batch, path)
		if len(batch) >= s.cfg.BatchSize {
			return flush()
		}
		return nil
	})

	if walkErr != nil && !interrupted {
		report := snapshot(types.ScanStateFailed)
		report.Error = walkErr.Error()
		log.Error("scan aborted", "err", walkErr)
		return &report, walkErr
	}

	if interrupted {
		log.Warn("scan interrupted, flushing partial batch")
	}

	// Flush whatever is left, on interruption as well as normal completion
	if err := flush(); err != nil {
		report := snapshot(types.ScanStateFailed)
		report.Error = err.Error()
		log.Error("scan aborted", "err", err)
		return &report, err
	}

	if interrupted {
		report := snapshot(types.ScanStateInterrupted)
		log.Warn("scan stopped, checkpoint saved for resume",
			"processed", report.Processed, "succeeded", report.Succeeded)
		return &report, nil
	}

	if err := ClearCheckpoint(s.cfg.CheckpointFile); err != nil {
		log.Warn("could not remove checkpoint", "err", err)
	}

	report := snapshot(types.ScanStateDone)
	log.Info("library build complete",
		"processed", report.Processed,
		"succeeded", report.Succeeded,
		"elapsed", report.Elapsed.Round(time.Second),
		"filesPerSec", report.FilesPerSec,
		"successRate", report.SuccessRate)

	return &report, nil
}

// processBatch extracts metadata for a batch in parallel, then writes all
// catalog rows through a single transaction. Returns the number of files
// that produced catalog entries; a failed commit yields zero credit but is
// not fatal to the run.
func (s *Scanner) processBatch(files []string) (int, error) {
	metas := make([]*types.Metadata, len(files))

	sem := make(chan struct{}, s.cfg.MaxWorkers)
	var wg sync.WaitGroup
	for i, path := range files {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			metas[i] = s.cfg.Extract(path)
		}(i, path)
	}
	wg.Wait()

	batch, err := s.store.Begin()
	if err != nil {
		return 0, err
	}

	succeeded := 0
	for _, md := range metas {
		if err := s.insertEntry(batch, md); err != nil {
			log.Error("failed to create catalog entry", "path", md.Path, "err", err)
			continue
		}
		succeeded++
	}

	if err := batch.Commit(); err != nil {
		log.Error("failed to commit batch, rolling back", "err", err)
		_ = batch.Rollback()
		return 0, nil
	}

	return succeeded, nil
}

// insertEntry writes the audio file, resolved artist/album and track rows
// for one file into the current batch
func (s *Scanner) insertEntry(batch *store.Batch, md *types.Metadata) error {
	audio := types.AudioFile{
		UUID: uuid.New().String(),
		Name: md.Filename,
		Path: md.Path,
	}
	if err := batch.InsertAudio(audio); err != nil {
		return err
	}

	artistID, err := s.resolver.ResolveArtist(batch, md.Artist)
	if err != nil {
		return err
	}
	albumID, err := s.resolver.ResolveAlbum(batch, md.Album)
	if err != nil {
		return err
	}

	track := types.Track{
		UUID:   uuid.New().String(),
		Name:   md.Title,
		Genre:  md.Genre,
		Artist: artistID,
		Album:  albumID,
		Audio:  audio.UUID,
	}
	return batch.InsertTrack(track)
}

// estimateCandidates counts files carrying a candidate extension. Only the
// fast extension pre-filter is applied; the count seeds the progress bar and
// does not need to be exact.
func estimateCandidates(root string) int {
	count := 0
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && metadata.HasCandidateExtension(path) {
			count++
		}
		return nil
	})
	return count
}
