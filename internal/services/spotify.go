// Spotify API implementation of [Library] and [OAuthProvider]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/desertthunder/likeswap/internal/models"
	"github.com/desertthunder/likeswap/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// MaxPageSize is the largest page and mutation batch Spotify accepts.
	MaxPageSize = 50
)

// DefaultScopes are requested when the configuration does not name any.
var DefaultScopes = []string{
	"user-library-read",
	"user-library-modify",
	"user-top-read",
	"user-read-private",
	"user-read-email",
}

type followers struct {
	Total int `json:"total"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Followers   followers      `json:"followers"`
	Images      []SpotifyImage `json:"images"`
}

// ToProfile converts the API payload into a [models.Profile], keeping the first image if any.
func (u *SpotifyUser) ToProfile() models.Profile {
	p := models.Profile{
		DisplayName:   u.DisplayName,
		Email:         u.Email,
		Country:       u.Country,
		FollowerCount: u.Followers.Total,
	}
	if len(u.Images) > 0 {
		p.ProfileImageURL = u.Images[0].URL
	}
	return p
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Explicit   bool            `json:"explicit"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

// ArtistNames joins the track's artist names with ", ".
func (t SpotifyTrack) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date"`
	Images      []SpotifyImage `json:"images"`
}

// TrackPage is a paging object of top tracks.
type TrackPage struct {
	Items    []SpotifyTrack `json:"items"`
	Total    int            `json:"total"`
	Limit    int            `json:"limit"`
	Offset   int            `json:"offset"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
}

// HasNext reports whether Spotify advertised a following page.
func (p *TrackPage) HasNext() bool { return p.Next != nil && *p.Next != "" }

// SavedTrackPage is a paging object of the user's liked songs.
type SavedTrackPage struct {
	Items    []SpotifySavedTrack `json:"items"`
	Total    int                 `json:"total"`
	Limit    int                 `json:"limit"`
	Offset   int                 `json:"offset"`
	Next     *string             `json:"next"`
	Previous *string             `json:"previous"`
}

// HasNext reports whether Spotify advertised a following page.
func (p *SavedTrackPage) HasNext() bool { return p.Next != nil && *p.Next != "" }

// SpotifySavedTrack represents a track saved in the user's library.
//
// Track is nil for entries Spotify can no longer resolve.
type SpotifySavedTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

type spotifyErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SpotifyService implements [Library] and [OAuthProvider] against the Spotify Web API.
// Uses [oauth2] for the authorization-code flow and automatic token refresh.
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	baseURL    string
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
//
// When scopes is empty [DefaultScopes] are requested.
func NewSpotifyService(credentials map[string]string, scopes ...string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://127.0.0.1:3000/auth/callback"
	}

	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   spotifyAuthURL,
			TokenURL:  spotifyTokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		baseURL:    spotifyBaseURL,
	}, nil
}

// SetBaseURL points API calls at another host. Used by tests.
func (s *SpotifyService) SetBaseURL(u string) {
	s.baseURL = u
}

// SetEndpoint overrides the accounts service URLs. Used by tests.
func (s *SpotifyService) SetEndpoint(authURL, tokenURL string) {
	s.config.Endpoint.AuthURL = authURL
	s.config.Endpoint.TokenURL = tokenURL
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a token.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return token, nil
}

// WithToken returns a copy of the service that authenticates as token.
//
// The copy refreshes expired tokens through the accounts service and calls onRefresh, if non-nil,
// each time a new access token is issued.
func (s *SpotifyService) WithToken(ctx context.Context, token *oauth2.Token, onRefresh func(*oauth2.Token)) *SpotifyService {
	var source oauth2.TokenSource = s.config.TokenSource(ctx, token)
	if onRefresh != nil {
		source = &refreshableTokenSource{source: source, callback: onRefresh, last: token.AccessToken}
	}

	return &SpotifyService{
		config:     s.config,
		token:      token,
		httpClient: oauth2.NewClient(ctx, source),
		baseURL:    s.baseURL,
	}
}

// Profile fetches the account that owns token.
func (s *SpotifyService) Profile(ctx context.Context, token *oauth2.Token) (*SpotifyUser, error) {
	return s.WithToken(ctx, token, nil).UserProfile(ctx)
}

// refreshableTokenSource reports tokens whose access token differs from the last one seen.
type refreshableTokenSource struct {
	mu       sync.Mutex
	source   oauth2.TokenSource
	callback func(*oauth2.Token)
	last     string
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	changed := token.AccessToken != r.last
	r.last = token.AccessToken
	r.mu.Unlock()

	if changed && r.callback != nil {
		r.callback(token)
	}
	return token, nil
}

// doRequest performs an authenticated HTTP request to the Spotify API.
//
// A non-nil body is sent as JSON. Status codes map onto shared errors:
// 401 to [shared.ErrTokenExpired], 429 to [shared.ErrRateLimited],
// 503 to [shared.ErrServiceUnavailable] and anything else outside 2xx to [shared.ErrAPIRequest].
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: no token for %s %s", shared.ErrNotAuthenticated, method, endpoint)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", shared.ErrAPIRequest, method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func statusError(resp *http.Response) error {
	var payload spotifyErrorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload)
	msg := payload.Error.Message
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", shared.ErrTokenExpired, msg)
	case http.StatusTooManyRequests:
		if retry := resp.Header.Get("Retry-After"); retry != "" {
			return fmt.Errorf("%w: retry after %ss", shared.ErrRateLimited, retry)
		}
		return shared.ErrRateLimited
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", shared.ErrServiceUnavailable, msg)
	default:
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, msg)
	}
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// TopTracks retrieves one page of the user's top tracks.
func (s *SpotifyService) TopTracks(ctx context.Context, timeRange TimeRange, limit, offset int) (*TrackPage, error) {
	q := url.Values{}
	q.Set("time_range", string(timeRange))
	q.Set("limit", strconv.Itoa(clampLimit(limit)))
	q.Set("offset", strconv.Itoa(offset))

	var response TrackPage
	if err := s.doRequest(ctx, http.MethodGet, "/me/top/tracks?"+q.Encode(), nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// SavedTracks retrieves the user's saved tracks with pagination.
func (s *SpotifyService) SavedTracks(ctx context.Context, limit, offset int) (*SavedTrackPage, error) {
	endpoint := fmt.Sprintf("/me/tracks?limit=%d&offset=%d", clampLimit(limit), offset)

	var response SavedTrackPage
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// SaveTracks adds tracks to the user's liked songs.
func (s *SpotifyService) SaveTracks(ctx context.Context, ids []string) error {
	if err := checkBatch(ids); err != nil {
		return err
	}
	return s.doRequest(ctx, http.MethodPut, "/me/tracks", map[string][]string{"ids": ids}, nil)
}

// RemoveSavedTracks removes tracks from the user's liked songs.
func (s *SpotifyService) RemoveSavedTracks(ctx context.Context, ids []string) error {
	if err := checkBatch(ids); err != nil {
		return err
	}
	return s.doRequest(ctx, http.MethodDelete, "/me/tracks", map[string][]string{"ids": ids}, nil)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

func checkBatch(ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no track IDs provided", shared.ErrInvalidInput)
	}
	if len(ids) > MaxPageSize {
		return fmt.Errorf("%w: maximum %d track IDs allowed, got %d", shared.ErrInvalidInput, MaxPageSize, len(ids))
	}
	return nil
}
