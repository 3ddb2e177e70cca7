package pipeline

import (
	"context"
	"time"

	"github.com/vkarasev/tube-snap/app/analytics"
	"github.com/vkarasev/tube-snap/app/catalog"
)

// Catalog is the primary API: enumeration and batched detail lookup.
type Catalog interface {
	ListVideoIDs(ctx context.Context) ([]string, error)
	GetVideoDetails(ctx context.Context, ids []string) ([]catalog.Video, error)
}

// Analytics is the secondary metrics API: one bulk day-level query plus
// per-video breakdown queries with tagged per-video outcomes.
type Analytics interface {
	VideoActivity(ctx context.Context, videoIDs []string, day time.Time) ([]analytics.ActivityRow, error)
	TrafficSources(ctx context.Context, videoIDs []string, day time.Time) []analytics.TrafficResult
}
