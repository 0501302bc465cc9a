package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Profile is the public account data reported by Spotify for a user.
type Profile struct {
	DisplayName     string
	Email           string
	Country         string
	FollowerCount   int
	ProfileImageURL string
}

// Credentials are the OAuth tokens stored for a user.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// User is a Spotify account keyed by its Spotify id.
//
// Profile fields are set when the user is first seen; later logins only refresh [Credentials].
type User struct {
	id          string
	profile     Profile
	credentials Credentials
	createdAt   time.Time
	updatedAt   time.Time
}

// NewUser creates a [User] with both timestamps set to now.
func NewUser(spotifyID string, profile Profile, creds Credentials) *User {
	now := time.Now()
	return &User{
		id:          spotifyID,
		profile:     profile,
		credentials: creds,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (u *User) ID() string               { return u.id }
func (u *User) Profile() Profile         { return u.profile }
func (u *User) DisplayName() string      { return u.profile.DisplayName }
func (u *User) Email() string            { return u.profile.Email }
func (u *User) Credentials() Credentials { return u.credentials }
func (u *User) CreatedAt() time.Time     { return u.createdAt }
func (u *User) UpdatedAt() time.Time     { return u.updatedAt }

// SetCredentials replaces the stored tokens and bumps UpdatedAt.
func (u *User) SetCredentials(creds Credentials) {
	u.credentials = creds
	u.updatedAt = time.Now()
}

// SetTimestamps restores timestamps read from storage.
func (u *User) SetTimestamps(createdAt, updatedAt time.Time) {
	u.createdAt = createdAt
	u.updatedAt = updatedAt
}

// Validate requires an id and an access token.
func (u *User) Validate() error {
	if u.id == "" {
		return fmt.Errorf("user id is required")
	}
	if u.credentials.AccessToken == "" {
		return fmt.Errorf("user %s has no access token", u.id)
	}
	return nil
}

// MarshalJSON renders the public profile. Tokens are never serialized.
func (u *User) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID              string `json:"id"`
		DisplayName     string `json:"display_name"`
		Email           string `json:"email,omitempty"`
		Country         string `json:"country,omitempty"`
		FollowerCount   int    `json:"follower_count"`
		ProfileImageURL string `json:"profile_image_url,omitempty"`
	}{
		ID:              u.id,
		DisplayName:     u.profile.DisplayName,
		Email:           u.profile.Email,
		Country:         u.profile.Country,
		FollowerCount:   u.profile.FollowerCount,
		ProfileImageURL: u.profile.ProfileImageURL,
	})
}
