package pipeline

// Stage names for the run state machine. The run moves strictly forward;
// FAILED is reachable from any stage on an unrecoverable error.
type Stage string

const (
	StageStart          Stage = "START"
	StageEnumerate      Stage = "ENUMERATE"
	StageFetchDetails   Stage = "FETCH_DETAILS"
	StageClassify       Stage = "CLASSIFY"
	StageWriteMetadata  Stage = "WRITE_METADATA_TABLES"
	StageFetchMetrics   Stage = "FETCH_METRICS"
	StageWriteMetrics   Stage = "WRITE_METRICS_TABLES"
	StageSummarize      Stage = "SUMMARIZE"
	StageDone           Stage = "DONE"
	StageFailed         Stage = "FAILED"
)

// ItemError is one degraded per-item metrics failure.
type ItemError struct {
	VideoID string `json:"id"`
	Reason  string `json:"reason"`
}

// Summary is the run's sole externally returned artifact.
type Summary struct {
	SnapshotDate    string         `json:"snapshot_date"`
	RunID           string         `json:"run_id"`
	VideosProcessed int            `json:"videos_processed"`
	Shorts          int            `json:"shorts"`
	FullLength      int            `json:"full_length"`
	RowsInserted    map[string]int `json:"rows_inserted"`
	AnalyticsErrors []ItemError    `json:"analytics_errors"`
	Error           string         `json:"error,omitempty"`
}

// BackfillSummary reports a historical metrics backfill over a date range.
type BackfillSummary struct {
	RunID         string         `json:"run_id"`
	StartDate     string         `json:"start_date"`
	EndDate       string         `json:"end_date"`
	DaysProcessed int            `json:"days_processed"`
	RowsInserted  map[string]int `json:"rows_inserted"`
	Errors        []ItemError    `json:"errors"`
	Error         string         `json:"error,omitempty"`
}
