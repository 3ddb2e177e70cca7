package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vkarasev/tube-snap/app/analytics"
	"github.com/vkarasev/tube-snap/app/catalog"
	"github.com/vkarasev/tube-snap/app/database"
)

const dateFormat = "2006-01-02"

// Runner sequences one snapshot run: enumerate, fetch details, write the
// metadata tables, fetch metrics, write the metrics tables, summarize.
// No internal concurrency; every step runs on the caller's goroutine.
type Runner struct {
	catalog      Catalog
	analytics    Analytics
	store        database.SnapshotRepository
	lookbackDays int
}

func NewRunner(catalogClient Catalog, analyticsClient Analytics, store database.SnapshotRepository, lookbackDays int) *Runner {
	return &Runner{
		catalog:      catalogClient,
		analytics:    analyticsClient,
		store:        store,
		lookbackDays: lookbackDays,
	}
}

// Run executes the full pipeline for one snapshot date. A non-nil error
// means the core metadata stage failed and nothing usable was produced;
// per-video metrics failures are reported inside the Summary instead.
func (r *Runner) Run(ctx context.Context, runID string, snapshotDate time.Time) (*Summary, error) {
	logger := slog.With("run_id", runID)
	dateStr := snapshotDate.Format(dateFormat)
	started := time.Now()

	summary := &Summary{
		SnapshotDate:    dateStr,
		RunID:           runID,
		RowsInserted:    make(map[string]int, 4),
		AnalyticsErrors: []ItemError{},
	}

	r.transition(logger, StageStart, StageEnumerate)
	videoIDs, err := r.catalog.ListVideoIDs(ctx)
	if err != nil {
		return r.fail(logger, summary, fmt.Errorf("enumeration failed: %w", err))
	}
	logger.Info("Enumerated catalog", "videos", len(videoIDs))

	r.transition(logger, StageEnumerate, StageFetchDetails)
	videos, err := r.catalog.GetVideoDetails(ctx, videoIDs)
	if err != nil {
		return r.fail(logger, summary, fmt.Errorf("detail fetch failed: %w", err))
	}

	r.transition(logger, StageFetchDetails, StageClassify)
	summary.VideosProcessed = len(videos)
	for _, video := range videos {
		if video.VideoType == catalog.VideoTypeShort {
			summary.Shorts++
		} else {
			summary.FullLength++
		}
	}

	r.transition(logger, StageClassify, StageWriteMetadata)
	count, err := r.store.ReplaceVideoMetadata(ctx, dateStr, makeMetadataRows(videos, dateStr))
	if err != nil {
		return r.fail(logger, summary, fmt.Errorf("metadata write failed: %w", err))
	}
	summary.RowsInserted[database.TableVideoMetadata] = count

	count, err = r.store.ReplaceVideoStats(ctx, dateStr, makeStatsRows(videos, dateStr))
	if err != nil {
		return r.fail(logger, summary, fmt.Errorf("stats write failed: %w", err))
	}
	summary.RowsInserted[database.TableVideoStats] = count

	// Core tables are durable from here on; everything below degrades
	// per item instead of failing the run.
	r.transition(logger, StageWriteMetadata, StageFetchMetrics)
	metricsDay := snapshotDate.AddDate(0, 0, -r.lookbackDays)

	activity, err := r.analytics.VideoActivity(ctx, videoIDs, metricsDay)
	if err != nil {
		logger.Warn("Bulk activity query failed", "metrics_day", metricsDay.Format(dateFormat), "error", err)
		summary.AnalyticsErrors = append(summary.AnalyticsErrors, ItemError{VideoID: "_bulk", Reason: err.Error()})
	}

	trafficResults := r.analytics.TrafficSources(ctx, videoIDs, metricsDay)
	var trafficRows []database.TrafficSourceRow
	for _, result := range trafficResults {
		if result.Err != nil {
			summary.AnalyticsErrors = append(summary.AnalyticsErrors, ItemError{VideoID: result.VideoID, Reason: result.Err.Error()})
			continue
		}
		trafficRows = append(trafficRows, makeTrafficRows(result.Rows, dateStr)...)
	}

	r.transition(logger, StageFetchMetrics, StageWriteMetrics)
	count, err = r.store.ReplaceVideoAnalytics(ctx, dateStr, makeAnalyticsRows(activity, dateStr))
	if err != nil {
		logger.Warn("Analytics table write failed", "table", database.TableVideoAnalytics, "error", err)
		summary.AnalyticsErrors = append(summary.AnalyticsErrors, ItemError{VideoID: "_table:" + database.TableVideoAnalytics, Reason: err.Error()})
	} else {
		summary.RowsInserted[database.TableVideoAnalytics] = count
	}

	count, err = r.store.ReplaceTrafficSources(ctx, dateStr, trafficRows)
	if err != nil {
		logger.Warn("Traffic table write failed", "table", database.TableTrafficSources, "error", err)
		summary.AnalyticsErrors = append(summary.AnalyticsErrors, ItemError{VideoID: "_table:" + database.TableTrafficSources, Reason: err.Error()})
	} else {
		summary.RowsInserted[database.TableTrafficSources] = count
	}

	r.transition(logger, StageWriteMetrics, StageSummarize)
	logger.Info("Run summary",
		"snapshot_date", dateStr,
		"duration", time.Since(started).String(),
		"videos_processed", summary.VideosProcessed,
		"shorts", summary.Shorts,
		"full_length", summary.FullLength,
		"rows_inserted", summary.RowsInserted,
		"analytics_errors", len(summary.AnalyticsErrors))

	r.transition(logger, StageSummarize, StageDone)

	return summary, nil
}

func (r *Runner) transition(logger *slog.Logger, from, to Stage) {
	logger.Info("Stage transition", "from", string(from), "to", string(to))
}

func (r *Runner) fail(logger *slog.Logger, summary *Summary, err error) (*Summary, error) {
	summary.Error = err.Error()
	logger.Error("Run failed", "stage", string(StageFailed), "error", err)
	return summary, err
}

func makeMetadataRows(videos []catalog.Video, snapshotDate string) []database.VideoMetadataRow {
	rows := make([]database.VideoMetadataRow, 0, len(videos))
	for _, v := range videos {
		rows = append(rows, database.VideoMetadataRow{
			SnapshotDate:      snapshotDate,
			VideoID:           v.ID,
			Title:             v.Title,
			PublishedAt:       v.PublishedAt,
			DurationSeconds:   v.DurationSeconds,
			DurationFormatted: v.DurationFormatted,
			VideoType:         v.VideoType,
			Tags:              strings.Join(v.Tags, ","),
			CategoryID:        v.CategoryID,
			ThumbnailURL:      v.ThumbnailURL,
		})
	}
	return rows
}

func makeStatsRows(videos []catalog.Video, snapshotDate string) []database.VideoStatsRow {
	rows := make([]database.VideoStatsRow, 0, len(videos))
	for _, v := range videos {
		rows = append(rows, database.VideoStatsRow{
			SnapshotDate:  snapshotDate,
			VideoID:       v.ID,
			ViewCount:     v.ViewCount,
			LikeCount:     v.LikeCount,
			CommentCount:  v.CommentCount,
			FavoriteCount: v.FavoriteCount,
		})
	}
	return rows
}

func makeAnalyticsRows(activity []analytics.ActivityRow, snapshotDate string) []database.VideoAnalyticsRow {
	rows := make([]database.VideoAnalyticsRow, 0, len(activity))
	for _, a := range activity {
		rows = append(rows, database.VideoAnalyticsRow{
			SnapshotDate:               snapshotDate,
			VideoID:                    a.VideoID,
			EstimatedMinutesWatched:    a.EstimatedMinutesWatched,
			AverageViewDurationSeconds: a.AverageViewDurationSeconds,
			AverageViewPercentage:      a.AverageViewPercentage,
			SubscribersGained:          a.SubscribersGained,
			SubscribersLost:            a.SubscribersLost,
			Shares:                     a.Shares,
		})
	}
	return rows
}

func makeTrafficRows(traffic []analytics.TrafficRow, snapshotDate string) []database.TrafficSourceRow {
	rows := make([]database.TrafficSourceRow, 0, len(traffic))
	for _, t := range traffic {
		rows = append(rows, database.TrafficSourceRow{
			SnapshotDate:            snapshotDate,
			VideoID:                 t.VideoID,
			TrafficSourceType:       t.SourceType,
			Views:                   t.Views,
			EstimatedMinutesWatched: t.EstimatedMinutesWatched,
		})
	}
	return rows
}
