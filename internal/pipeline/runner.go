// Package pipeline selects an ingestion adapter per discovered
// competition and records the outcome on its source record.
package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/soosb/aquafeed/internal/store"
	"go.uber.org/zap"
)

// structuredImporter consumes a downloaded LENEX file.
type structuredImporter interface {
	ImportFile(ctx context.Context, path string, meetID int64) error
}

// scrapeRunner scrapes one competition's live result pages.
type scrapeRunner interface {
	Run(ctx context.Context, onlineEventID int64) error
}

// Runner works through the source records once per invocation. Records
// with a downloaded file go through the structured importer; records
// whose file was never published go through the scraper. Failures mark
// the record and move on; there are no retries.
type Runner struct {
	sources  store.SourceStore
	importer structuredImporter
	scraper  scrapeRunner
	lenexDir string
	log      *zap.Logger
}

// New creates a pipeline runner.
func New(sources store.SourceStore, importer structuredImporter, scraper scrapeRunner, lenexDir string, log *zap.Logger) *Runner {
	return &Runner{
		sources:  sources,
		importer: importer,
		scraper:  scraper,
		lenexDir: lenexDir,
		log:      log,
	}
}

// Run processes all pending source records, structured first.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.runStructured(ctx); err != nil {
		return err
	}
	return r.runScrapes(ctx)
}

func (r *Runner) runStructured(ctx context.Context) error {
	records, err := r.sources.ListByStatus(ctx, store.StatusDownloaded, store.StatusBackedUp)
	if err != nil {
		return err
	}
	r.log.Info("structured import pass", zap.Int("records", len(records)))

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !rec.Filename.Valid || rec.Filename.String == "" {
			r.log.Warn("record has no filename, skipping",
				zap.Int64("competition", rec.OnlineEventID))
			continue
		}

		path := filepath.Join(r.lenexDir, rec.Filename.String)
		if _, err := os.Stat(path); err != nil {
			r.log.Warn("file missing on disk, skipping",
				zap.Int64("competition", rec.OnlineEventID),
				zap.String("path", path))
			continue
		}

		status := store.StatusProcessed
		if err := r.importer.ImportFile(ctx, path, rec.OnlineEventID); err != nil {
			r.log.Error("structured import failed",
				zap.Int64("competition", rec.OnlineEventID),
				zap.Error(err))
			status = store.StatusProcessingFailed
		} else {
			r.log.Info("structured import done",
				zap.Int64("competition", rec.OnlineEventID))
		}

		if err := r.sources.UpdateStatus(ctx, rec.OnlineEventID, status); err != nil {
			return err
		}
	}

	return nil
}

func (r *Runner) runScrapes(ctx context.Context) error {
	records, err := r.sources.ListByStatus(ctx, store.StatusLenexNotFound)
	if err != nil {
		return err
	}
	r.log.Info("scrape pass", zap.Int("records", len(records)))

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		status := store.StatusScraped
		if err := r.scraper.Run(ctx, rec.OnlineEventID); err != nil {
			r.log.Error("scrape failed",
				zap.Int64("competition", rec.OnlineEventID),
				zap.Error(err))
			status = store.StatusScrapeFailed
		} else {
			r.log.Info("scrape done",
				zap.Int64("competition", rec.OnlineEventID))
		}

		if err := r.sources.UpdateStatus(ctx, rec.OnlineEventID, status); err != nil {
			return err
		}
	}

	return nil
}
