package database

import (
	"context"
	"database/sql"
	"fmt"
)

var _ SnapshotRepository = (*snapshotRepository)(nil)

type snapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates the repository backing all four destination tables.
func NewSnapshotRepository(db *DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) ReplaceVideoMetadata(ctx context.Context, snapshotDate string, rows []VideoMetadataRow) (int, error) {
	return r.replacePartition(ctx, TableVideoMetadata, snapshotDate, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO video_metadata (
				snapshot_date, video_id, title, published_at, duration_seconds,
				duration_formatted, video_type, tags, category_id, thumbnail_url
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, row := range rows {
			_, err := stmt.ExecContext(ctx, snapshotDate, row.VideoID, row.Title, row.PublishedAt,
				row.DurationSeconds, row.DurationFormatted, row.VideoType, row.Tags,
				row.CategoryID, row.ThumbnailURL)
			if err != nil {
				return err
			}
		}
		return nil
	}, len(rows))
}

func (r *snapshotRepository) ReplaceVideoStats(ctx context.Context, snapshotDate string, rows []VideoStatsRow) (int, error) {
	return r.replacePartition(ctx, TableVideoStats, snapshotDate, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO daily_video_stats (
				snapshot_date, video_id, view_count, like_count, comment_count, favorite_count
			) VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, row := range rows {
			_, err := stmt.ExecContext(ctx, snapshotDate, row.VideoID, row.ViewCount,
				row.LikeCount, row.CommentCount, row.FavoriteCount)
			if err != nil {
				return err
			}
		}
		return nil
	}, len(rows))
}

func (r *snapshotRepository) ReplaceVideoAnalytics(ctx context.Context, snapshotDate string, rows []VideoAnalyticsRow) (int, error) {
	return r.replacePartition(ctx, TableVideoAnalytics, snapshotDate, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO daily_video_analytics (
				snapshot_date, video_id, estimated_minutes_watched,
				average_view_duration_seconds, average_view_percentage,
				subscribers_gained, subscribers_lost, shares
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, row := range rows {
			_, err := stmt.ExecContext(ctx, snapshotDate, row.VideoID, row.EstimatedMinutesWatched,
				row.AverageViewDurationSeconds, row.AverageViewPercentage,
				row.SubscribersGained, row.SubscribersLost, row.Shares)
			if err != nil {
				return err
			}
		}
		return nil
	}, len(rows))
}

func (r *snapshotRepository) ReplaceTrafficSources(ctx context.Context, snapshotDate string, rows []TrafficSourceRow) (int, error) {
	return r.replacePartition(ctx, TableTrafficSources, snapshotDate, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO daily_traffic_sources (
				snapshot_date, video_id, traffic_source_type, views, estimated_minutes_watched
			) VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, row := range rows {
			_, err := stmt.ExecContext(ctx, snapshotDate, row.VideoID, row.TrafficSourceType,
				row.Views, row.EstimatedMinutesWatched)
			if err != nil {
				return err
			}
		}
		return nil
	}, len(rows))
}

// replacePartition runs DELETE + INSERT for one snapshot_date in a single
// transaction. Readers see either the previous partition or the new one,
// never the gap in between.
func (r *snapshotRepository) replacePartition(ctx context.Context, table, snapshotDate string, insert func(tx *sql.Tx) error, count int) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction for %s: %w", table, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE snapshot_date = ?", snapshotDate)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s partition: %w", table, err)
	}

	if err := insert(tx); err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", table, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit %s replacement: %w", table, err)
	}

	return count, nil
}

// LatestVideoIDs returns the video IDs of the most recent metadata
// snapshot, used by backfill to know which videos to query.
func (r *snapshotRepository) LatestVideoIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT video_id FROM video_metadata
		WHERE snapshot_date = (SELECT MAX(snapshot_date) FROM video_metadata)
		ORDER BY video_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest video IDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan video ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating video ID rows: %w", err)
	}

	return ids, nil
}

// RowCounts returns the total row count per destination table.
func (r *snapshotRepository) RowCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, 4)

	for _, table := range []string{TableVideoMetadata, TableVideoStats, TableVideoAnalytics, TableTrafficSources} {
		var count int
		err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("failed to count rows in %s: %w", table, err)
		}
		counts[table] = count
	}

	return counts, nil
}
