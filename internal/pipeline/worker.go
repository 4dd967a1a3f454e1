package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/quizgest/internal/extract"
)

// Worker processes a single document job.
type Worker struct {
	engine *extract.Engine
	jobs   *JobStore
	stats  *LatencyStats
	log    *slog.Logger
}

func NewWorker(engine *extract.Engine, jobs *JobStore, stats *LatencyStats, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		engine: engine,
		jobs:   jobs,
		stats:  stats,
		log:    log,
	}
}

// Process runs the full import pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	if err := extract.ValidateMetadata(job.Meta, w.engine.Durations()); err != nil {
		log.Warn("metadata rejected", "error", err)
		job.Fail("validating", err)
		return
	}

	doc, err := extract.Parse(job.FileData(), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.Fail("parsing", err)
		return
	}
	job.SetBlocks(len(doc.Blocks))

	// Phase 1.5: Dedup check
	if w.jobs != nil {
		if prev := w.jobs.FindCompleted(job.ContentHash, job.Meta, job.ID); prev != nil {
			log.Info("duplicate document, reusing questions", "existing_job_id", prev.ID)
			for _, rec := range prev.Records() {
				job.AddRecord(rec)
			}
			job.mu.Lock()
			job.DuplicateOf = prev.ID
			job.mu.Unlock()
			job.Complete("duplicate")
			return
		}
	}

	// Phase 2: Extract questions.
	job.SetStatus(StatusExtracting, "extracting")
	start := time.Now()
	for rec, err := range w.engine.Questions(ctx, doc, job.Meta) {
		if err != nil {
			log.Error("extraction failed", "error", err)
			job.Fail("extracting", fmt.Errorf("extract: %w", err))
			return
		}
		job.AddRecord(rec)
	}
	elapsed := time.Since(start)
	snap := job.Snapshot()
	if w.stats != nil {
		w.stats.Record(elapsed, snap.Progress.Questions)
	}

	log.Info("import complete",
		"blocks", snap.Progress.Blocks,
		"questions", snap.Progress.Questions,
		"images", snap.Progress.Images,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	job.Complete("done")
}
