package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"heavymetal/catalog"
	"heavymetal/config"
	"heavymetal/scanner"
	"heavymetal/store"
)

// RunScan executes the ingestion pipeline over the configured media folder.
// SIGINT/SIGTERM flush the partial batch and persist a checkpoint before the
// process exits, so an interrupted run resumes cleanly.
func RunScan(cfg *config.Config) error {
	if err := cfg.ValidateScan(); err != nil {
		return err
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	resolver := catalog.NewResolver(st)
	sc := scanner.New(st, resolver, scanner.Config{
		BatchSize:      cfg.BatchSize,
		MaxWorkers:     cfg.MaxWorkers,
		CheckpointFile: cfg.CheckpointFile,
		ShowProgress:   true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("scanning media folder", "path", cfg.MediaFolder, "batchSize", cfg.BatchSize, "workers", cfg.MaxWorkers)

	_, err = sc.Scan(ctx, cfg.MediaFolder)
	return err
}
