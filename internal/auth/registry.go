package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/likeswap/internal/models"
	"github.com/desertthunder/likeswap/internal/shared"
)

// DefaultSessionTTL is the lifetime of a new session.
const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionStore persists sessions. [repositories.SessionRepository] implements it.
type SessionStore interface {
	Insert(ctx context.Context, s *models.Session) error
	// Active returns an unexpired session or an error wrapping [shared.ErrSessionNotFound].
	Active(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int, error)
}

// UserStore persists users. [repositories.UserRepository] implements it.
type UserStore interface {
	// Get returns the user or an error wrapping [shared.ErrUserNotFound].
	Get(ctx context.Context, id string) (*models.User, error)
	// Upsert creates the user or refreshes its credentials, returning the stored row.
	Upsert(ctx context.Context, user *models.User) (*models.User, error)
}

// SessionRegistry creates, resolves and prunes sessions.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions SessionStore
	users    UserStore
	ttl      time.Duration
	logger   *log.Logger
}

// NewSessionRegistry creates a SessionRegistry. A non-positive ttl uses [DefaultSessionTTL].
func NewSessionRegistry(sessions SessionStore, users UserStore, ttl time.Duration, logger *log.Logger) *SessionRegistry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionRegistry{sessions: sessions, users: users, ttl: ttl, logger: logger}
}

// Resolve returns the user owning sessionID.
//
// Empty, unknown and expired ids, and sessions whose user no longer exists, return an error
// wrapping [shared.ErrNotAuthenticated]. Resolve never modifies stored state.
func (r *SessionRegistry) Resolve(ctx context.Context, sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: no session", shared.ErrNotAuthenticated)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.sessions.Active(ctx, sessionID)
	if errors.Is(err, shared.ErrSessionNotFound) {
		return nil, fmt.Errorf("%w: session unknown or expired", shared.ErrNotAuthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	user, err := r.users.Get(ctx, session.UserID())
	if errors.Is(err, shared.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: session user %s missing", shared.ErrNotAuthenticated, session.UserID())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}

	return user, nil
}

// Create opens a session for userID with a random 32-byte id.
func (r *SessionRegistry) Create(ctx context.Context, userID string) (*models.Session, error) {
	id, err := shared.GenerateToken(shared.TokenBytes)
	if err != nil {
		return nil, err
	}

	session := models.NewSession(id, userID, r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.sessions.Insert(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// Revoke deletes sessionID.
func (r *SessionRegistry) Revoke(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions.Delete(ctx, sessionID)
}

// Prune deletes expired sessions and returns how many were removed.
func (r *SessionRegistry) Prune(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 && r.logger != nil {
		r.logger.Debug("pruned expired sessions", "count", n)
	}
	return n, nil
}
