package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/likeswap/internal/models"
	"github.com/desertthunder/likeswap/internal/shared"
)

// UserRepository persists [models.User] rows keyed by Spotify id.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Get retrieves a user by Spotify id. Missing users return [shared.ErrUserNotFound].
func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT spotify_id, display_name, email, country, follower_count, profile_image_url,
			access_token, refresh_token, token_expires_at, created_at, updated_at
		FROM users
		WHERE spotify_id = ?
	`

	var (
		userID    string
		profile   models.Profile
		creds     models.Credentials
		expiresAt int64
		createdAt int64
		updatedAt int64
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&userID,
		&profile.DisplayName,
		&profile.Email,
		&profile.Country,
		&profile.FollowerCount,
		&profile.ProfileImageURL,
		&creds.AccessToken,
		&creds.RefreshToken,
		&expiresAt,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrUserNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	creds.ExpiresAt = fromUnix(expiresAt)
	user := models.NewUser(userID, profile, creds)
	user.SetTimestamps(fromUnix(createdAt), fromUnix(updatedAt))

	return user, nil
}

// Upsert creates the user, or refreshes only the credential fields of an existing row.
//
// An empty refresh token keeps the stored one. Returns the row as stored.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) (*models.User, error) {
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO users (
			spotify_id, display_name, email, country, follower_count, profile_image_url,
			access_token, refresh_token, token_expires_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(spotify_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = CASE WHEN excluded.refresh_token = '' THEN users.refresh_token ELSE excluded.refresh_token END,
			token_expires_at = excluded.token_expires_at,
			updated_at = excluded.updated_at
	`

	p := user.Profile()
	c := user.Credentials()
	now := time.Now().Unix()

	_, err := r.db.ExecContext(ctx, query,
		user.ID(),
		p.DisplayName,
		p.Email,
		p.Country,
		p.FollowerCount,
		p.ProfileImageURL,
		c.AccessToken,
		c.RefreshToken,
		unix(c.ExpiresAt),
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return r.Get(ctx, user.ID())
}

// UpdateToken stores refreshed credentials for an existing user.
func (r *UserRepository) UpdateToken(ctx context.Context, id string, creds models.Credentials) error {
	query := `
		UPDATE users
		SET access_token = ?,
			refresh_token = CASE WHEN ? = '' THEN refresh_token ELSE ? END,
			token_expires_at = ?,
			updated_at = ?
		WHERE spotify_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		creds.AccessToken,
		creds.RefreshToken, creds.RefreshToken,
		unix(creds.ExpiresAt),
		time.Now().Unix(),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrUserNotFound, id)
	}

	return nil
}
