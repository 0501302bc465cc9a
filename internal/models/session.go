package models

import (
	"fmt"
	"time"
)

// PendingAuthorization is an OAuth state token issued by the login step and not yet consumed by a callback.
type PendingAuthorization struct {
	State    string
	IssuedAt time.Time
}

// Session binds an opaque identifier to a [User] until ExpiresAt. Sessions are never mutated after creation.
type Session struct {
	id        string
	userID    string
	expiresAt time.Time
	createdAt time.Time
}

// NewSession creates a [Session] created now and expiring after ttl.
func NewSession(id, userID string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{id: id, userID: userID, expiresAt: now.Add(ttl), createdAt: now}
}

// RestoreSession rebuilds a [Session] read from storage.
func RestoreSession(id, userID string, expiresAt, createdAt time.Time) *Session {
	return &Session{id: id, userID: userID, expiresAt: expiresAt, createdAt: createdAt}
}

func (s *Session) ID() string           { return s.id }
func (s *Session) UserID() string       { return s.userID }
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// UpdatedAt equals CreatedAt.
func (s *Session) UpdatedAt() time.Time { return s.createdAt }

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.expiresAt)
}

// Validate requires an id, a user, and an expiry after creation.
func (s *Session) Validate() error {
	if s.id == "" {
		return fmt.Errorf("session id is required")
	}
	if s.userID == "" {
		return fmt.Errorf("session %s has no user", s.id)
	}
	if !s.expiresAt.After(s.createdAt) {
		return fmt.Errorf("session %s expires before it was created", s.id)
	}
	return nil
}
