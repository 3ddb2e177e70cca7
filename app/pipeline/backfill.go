package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vkarasev/tube-snap/app/database"
)

// Backfill re-runs the metrics stage for every day in the inclusive range,
// writing each day's activity and traffic rows under that day's own
// snapshot_date partition. Video IDs come from the most recent metadata
// snapshot already in the store. Per-day and per-video failures degrade;
// only the absence of any metadata snapshot is fatal.
func (r *Runner) Backfill(ctx context.Context, runID string, start, end time.Time) (*BackfillSummary, error) {
	logger := slog.With("run_id", runID)

	summary := &BackfillSummary{
		RunID:        runID,
		StartDate:    start.Format(dateFormat),
		EndDate:      end.Format(dateFormat),
		RowsInserted: make(map[string]int, 2),
		Errors:       []ItemError{},
	}

	videoIDs, err := r.store.LatestVideoIDs(ctx)
	if err != nil {
		summary.Error = err.Error()
		return summary, fmt.Errorf("failed to load video IDs for backfill: %w", err)
	}
	if len(videoIDs) == 0 {
		err := errors.New("no metadata snapshot to backfill from")
		summary.Error = err.Error()
		return summary, err
	}

	totalDays := int(end.Sub(start).Hours()/24) + 1
	logger.Info("Backfill started", "start", summary.StartDate, "end", summary.EndDate, "days", totalDays, "videos", len(videoIDs))

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		dayStr := day.Format(dateFormat)

		activity, err := r.analytics.VideoActivity(ctx, videoIDs, day)
		if err != nil {
			logger.Warn("Backfill activity query failed", "day", dayStr, "error", err)
			summary.Errors = append(summary.Errors, ItemError{VideoID: "_bulk:" + dayStr, Reason: err.Error()})
		}

		count, err := r.store.ReplaceVideoAnalytics(ctx, dayStr, makeAnalyticsRows(activity, dayStr))
		if err != nil {
			logger.Warn("Backfill analytics write failed", "day", dayStr, "error", err)
			summary.Errors = append(summary.Errors, ItemError{VideoID: "_table:" + database.TableVideoAnalytics + ":" + dayStr, Reason: err.Error()})
		} else {
			summary.RowsInserted[database.TableVideoAnalytics] += count
		}

		var trafficRows []database.TrafficSourceRow
		for _, result := range r.analytics.TrafficSources(ctx, videoIDs, day) {
			if result.Err != nil {
				summary.Errors = append(summary.Errors, ItemError{VideoID: result.VideoID, Reason: result.Err.Error()})
				continue
			}
			trafficRows = append(trafficRows, makeTrafficRows(result.Rows, dayStr)...)
		}

		count, err = r.store.ReplaceTrafficSources(ctx, dayStr, trafficRows)
		if err != nil {
			logger.Warn("Backfill traffic write failed", "day", dayStr, "error", err)
			summary.Errors = append(summary.Errors, ItemError{VideoID: "_table:" + database.TableTrafficSources + ":" + dayStr, Reason: err.Error()})
		} else {
			summary.RowsInserted[database.TableTrafficSources] += count
		}

		summary.DaysProcessed++
		logger.Info("Backfill day complete", "day", dayStr, "progress", fmt.Sprintf("%d/%d", summary.DaysProcessed, totalDays))
	}

	logger.Info("Backfill complete", "days", summary.DaysProcessed, "rows_inserted", summary.RowsInserted, "errors", len(summary.Errors))

	return summary, nil
}
