package database

// Destination table names. Each holds exactly one logical snapshot per
// snapshot_date; runs append across dates and replace within a date.
const (
	TableVideoMetadata  = "video_metadata"
	TableVideoStats     = "daily_video_stats"
	TableVideoAnalytics = "daily_video_analytics"
	TableTrafficSources = "daily_traffic_sources"
)

type VideoMetadataRow struct {
	SnapshotDate      string
	VideoID           string
	Title             string
	PublishedAt       string
	DurationSeconds   int
	DurationFormatted string
	VideoType         string
	Tags              string
	CategoryID        string
	ThumbnailURL      string
}

type VideoStatsRow struct {
	SnapshotDate  string
	VideoID       string
	ViewCount     int64
	LikeCount     int64
	CommentCount  int64
	FavoriteCount int64
}

type VideoAnalyticsRow struct {
	SnapshotDate               string
	VideoID                    string
	EstimatedMinutesWatched    int64
	AverageViewDurationSeconds int64
	AverageViewPercentage      float64
	SubscribersGained          int64
	SubscribersLost            int64
	Shares                     int64
}

type TrafficSourceRow struct {
	SnapshotDate            string
	VideoID                 string
	TrafficSourceType       string
	Views                   int64
	EstimatedMinutesWatched int64
}
