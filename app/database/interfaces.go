package database

import "context"

// SnapshotRepository replaces snapshot_date partitions of the destination
// tables. Each Replace call swaps exactly the rows for its date inside one
// transaction, so re-running a day supersedes rather than duplicates it and
// readers never observe an empty partition.
type SnapshotRepository interface {
	ReplaceVideoMetadata(ctx context.Context, snapshotDate string, rows []VideoMetadataRow) (int, error)
	ReplaceVideoStats(ctx context.Context, snapshotDate string, rows []VideoStatsRow) (int, error)
	ReplaceVideoAnalytics(ctx context.Context, snapshotDate string, rows []VideoAnalyticsRow) (int, error)
	ReplaceTrafficSources(ctx context.Context, snapshotDate string, rows []TrafficSourceRow) (int, error)

	LatestVideoIDs(ctx context.Context) ([]string, error)
	RowCounts(ctx context.Context) (map[string]int, error)
}
