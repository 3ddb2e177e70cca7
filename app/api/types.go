package api

import (
	"context"
	"time"

	"github.com/vkarasev/tube-snap/app/database"
	"github.com/vkarasev/tube-snap/app/pipeline"
)

// PipelineRunner is what the trigger endpoints need from the pipeline.
type PipelineRunner interface {
	Run(ctx context.Context, runID string, snapshotDate time.Time) (*pipeline.Summary, error)
	Backfill(ctx context.Context, runID string, start, end time.Time) (*pipeline.BackfillSummary, error)
}

type Handler struct {
	runner PipelineRunner
	repo   database.SnapshotRepository
}
