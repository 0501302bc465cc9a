package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/likeswap/internal/models"
	"github.com/desertthunder/likeswap/internal/shared"
)

// SessionRepository persists [models.Session] rows. Expiry is evaluated by SQLite's clock.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Insert stores a new session.
func (r *SessionRepository) Insert(ctx context.Context, s *models.Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `INSERT INTO sessions (id, user_spotify_id, expires_at, created_at) VALUES (?, ?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query, s.ID(), s.UserID(), unix(s.ExpiresAt()), unix(s.CreatedAt())); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// Get retrieves a session by id regardless of expiry.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	query := `SELECT id, user_spotify_id, expires_at, created_at FROM sessions WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

// Active retrieves a session that has not yet expired.
//
// Unknown and expired sessions both return [shared.ErrSessionNotFound].
func (r *SessionRepository) Active(ctx context.Context, id string) (*models.Session, error) {
	query := `
		SELECT id, user_spotify_id, expires_at, created_at
		FROM sessions
		WHERE id = ? AND expires_at > CAST(strftime('%s', 'now') AS INTEGER)
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

// Delete removes a session. Deleting an unknown session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes every expired session and returns how many were removed.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= CAST(strftime('%s', 'now') AS INTEGER)`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return int(rows), nil
}

func (r *SessionRepository) scanOne(row *sql.Row, id string) (*models.Session, error) {
	var (
		sessionID string
		userID    string
		expiresAt int64
		createdAt int64
	)

	err := row.Scan(&sessionID, &userID, &expiresAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return models.RestoreSession(sessionID, userID, fromUnix(expiresAt), fromUnix(createdAt)), nil
}
