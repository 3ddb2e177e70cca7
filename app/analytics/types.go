package analytics

// ActivityRow is one video's per-day activity from the bulk report.
// Activity, unlike the catalog counters, is not cumulative; a video with no
// activity on the queried day simply has no row.
type ActivityRow struct {
	VideoID                    string
	EstimatedMinutesWatched    int64
	AverageViewDurationSeconds int64
	AverageViewPercentage      float64
	SubscribersGained          int64
	SubscribersLost            int64
	Shares                     int64
}

// TrafficRow is one discovery channel with nonzero views for one video.
type TrafficRow struct {
	VideoID                 string
	SourceType              string
	Views                   int64
	EstimatedMinutesWatched int64
}

// TrafficResult is the tagged outcome of one per-video traffic query:
// either rows or an error, so aggregation is a plain fold over results.
type TrafficResult struct {
	VideoID string
	Rows    []TrafficRow
	Err     error
}

// reportResponse mirrors the Analytics API reports.query payload: rows of
// positional values in the order of the requested dimensions and metrics.
type reportResponse struct {
	Rows [][]any `json:"rows"`
}
