package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/likeswap/internal/models"
	"github.com/desertthunder/likeswap/internal/shared"
)

// TrackRepository stores the track catalog and per-user top-track snapshots.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// UpsertTracks inserts or refreshes catalog rows for records.
func (r *TrackRepository) UpsertTracks(ctx context.Context, records []models.TrackRecord) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		return upsertTracks(ctx, tx, records, time.Now().Unix())
	})
}

func upsertTracks(ctx context.Context, tx *sql.Tx, records []models.TrackRecord, now int64) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tracks (spotify_id, name, artists, popularity, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(spotify_id) DO UPDATE SET
			name = excluded.name,
			artists = excluded.artists,
			popularity = excluded.popularity,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare track upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.Name, rec.Artists, rec.Popularity, now); err != nil {
			return fmt.Errorf("failed to upsert track %s: %w", rec.ID, err)
		}
	}
	return nil
}

// SaveTopTracks records records as the user's top tracks for timeRange at the current time.
// Catalog rows are upserted in the same transaction.
func (r *TrackRepository) SaveTopTracks(ctx context.Context, userID, timeRange string, records []models.TrackRecord) error {
	now := time.Now().Unix()

	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := upsertTracks(ctx, tx, records, now); err != nil {
			return err
		}

		// a second snapshot within the same second replaces the first
		_, err := tx.ExecContext(ctx,
			`DELETE FROM user_top_tracks WHERE user_spotify_id = ? AND time_range = ? AND recorded_at = ?`,
			userID, timeRange, now,
		)
		if err != nil {
			return fmt.Errorf("failed to clear snapshot: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO user_top_tracks (id, user_spotify_id, track_spotify_id, rank, time_range, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare snapshot insert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			if _, err := stmt.ExecContext(ctx, shared.GenerateID(), userID, rec.ID, rec.Index, timeRange, now); err != nil {
				return fmt.Errorf("failed to record top track %s: %w", rec.ID, err)
			}
		}
		return nil
	})
}

// ListTopTracks returns the most recent snapshot of the user's top tracks for timeRange, in rank order.
func (r *TrackRepository) ListTopTracks(ctx context.Context, userID, timeRange string) ([]models.TrackRecord, error) {
	query := `
		SELECT utt.rank, t.spotify_id, t.name, t.artists, t.popularity
		FROM user_top_tracks utt
		JOIN tracks t ON t.spotify_id = utt.track_spotify_id
		WHERE utt.user_spotify_id = ? AND utt.time_range = ?
			AND utt.recorded_at = (
				SELECT MAX(recorded_at) FROM user_top_tracks
				WHERE user_spotify_id = ? AND time_range = ?
			)
		ORDER BY utt.rank ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, timeRange, userID, timeRange)
	if err != nil {
		return nil, fmt.Errorf("failed to query top tracks: %w", err)
	}
	defer rows.Close()

	var records []models.TrackRecord
	for rows.Next() {
		var rec models.TrackRecord
		if err := rows.Scan(&rec.Index, &rec.ID, &rec.Name, &rec.Artists, &rec.Popularity); err != nil {
			return nil, fmt.Errorf("failed to scan top track: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}
