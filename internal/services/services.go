// package services defines the capability interfaces for the Spotify Web API
// and implements them with [SpotifyService].
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/likeswap/internal/shared"
	"golang.org/x/oauth2"
)

// Library is the subset of the Spotify Web API used to read top tracks and mutate the saved-tracks collection.
type Library interface {
	// TopTracks returns one page of the user's top tracks for timeRange.
	TopTracks(ctx context.Context, timeRange TimeRange, limit, offset int) (*TrackPage, error)

	// SavedTracks returns one page of the user's liked songs, most recently added first.
	SavedTracks(ctx context.Context, limit, offset int) (*SavedTrackPage, error)

	// SaveTracks adds up to 50 tracks to liked songs.
	SaveTracks(ctx context.Context, ids []string) error

	// RemoveSavedTracks removes up to 50 tracks from liked songs.
	RemoveSavedTracks(ctx context.Context, ids []string) error
}

// OAuthProvider is the authorization-code half of the Spotify API.
type OAuthProvider interface {
	// GetAuthURL returns the consent URL carrying state.
	GetAuthURL(state string) string

	// Exchange trades an authorization code for a token.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// Profile fetches the account that owns token.
	Profile(ctx context.Context, token *oauth2.Token) (*SpotifyUser, error)
}

// TimeRange selects the window Spotify uses to compute top tracks.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"  // about four weeks
	MediumTerm TimeRange = "medium_term" // about six months
	LongTerm   TimeRange = "long_term"   // several years
)

// ParseTimeRange accepts "short", "medium", "long" or their full API names.
func ParseTimeRange(s string) (TimeRange, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "short", string(ShortTerm):
		return ShortTerm, nil
	case "medium", string(MediumTerm):
		return MediumTerm, nil
	case "long", string(LongTerm):
		return LongTerm, nil
	default:
		return "", fmt.Errorf("%w: time range %q (want short, medium or long)", shared.ErrInvalidArgument, s)
	}
}

// Short returns the CLI spelling of the range.
func (r TimeRange) Short() string {
	return strings.TrimSuffix(string(r), "_term")
}
