package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/likeswap/internal/shared"
	"golang.org/x/oauth2"
)

func testCredentials() map[string]string {
	return map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
		"redirect_uri":  "http://127.0.0.1:3000/auth/callback",
	}
}

// newTestService returns a service pointed at srv and authenticated with a non-expiring token.
func newTestService(t *testing.T, srv *httptest.Server) *SpotifyService {
	t.Helper()

	base, err := NewSpotifyService(testCredentials())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	base.SetBaseURL(srv.URL)
	base.SetEndpoint(srv.URL+"/authorize", srv.URL+"/api/token")

	return base.WithToken(context.Background(), &oauth2.Token{AccessToken: "test_token"}, nil)
}

type mockTokenSource struct {
	token *oauth2.Token
	err   error
}

func (m *mockTokenSource) Token() (*oauth2.Token, error) {
	return m.token, m.err
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(testCredentials())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}

			if len(srv.config.Scopes) != len(DefaultScopes) {
				t.Errorf("expected default scopes, got %v", srv.config.Scopes)
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_secret": "test_client_secret"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_id": "test_client_id"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Default Redirect URI", func(t *testing.T) {
			srv, err := NewSpotifyService(map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv.config.RedirectURL != "http://127.0.0.1:3000/auth/callback" {
				t.Errorf("expected default redirect URI, got %s", srv.config.RedirectURL)
			}
		})

		t.Run("Custom Scopes", func(t *testing.T) {
			srv, err := NewSpotifyService(testCredentials(), "user-top-read")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(srv.config.Scopes) != 1 || srv.config.Scopes[0] != "user-top-read" {
				t.Errorf("expected custom scopes, got %v", srv.config.Scopes)
			}
		})
	})

	t.Run("Get AuthURL", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials())
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.GetAuthURL("test_state")

		for _, want := range []string{"accounts.spotify.com", "test_client_id", "state=test_state", "user-library-modify", "response_type=code"} {
			if !strings.Contains(authURL, want) {
				t.Errorf("auth URL %s should contain %s", authURL, want)
			}
		}
	})

	t.Run("Requires Token", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials())
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		_, err = srv.UserProfile(context.Background())
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestParseTimeRange(t *testing.T) {
	tc := []struct {
		in      string
		want    TimeRange
		wantErr bool
	}{
		{in: "short", want: ShortTerm},
		{in: "medium", want: MediumTerm},
		{in: "long", want: LongTerm},
		{in: "long_term", want: LongTerm},
		{in: " Short ", want: ShortTerm},
		{in: "forever", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeRange(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimeRange(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseTimeRange(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}

	if MediumTerm.Short() != "medium" {
		t.Errorf("expected medium, got %s", MediumTerm.Short())
	}
}

func TestSpotifyLibrary(t *testing.T) {
	t.Run("UserProfile", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test_token" {
				t.Errorf("unexpected authorization header %q", got)
			}
			io.WriteString(w, `{"id":"user1","display_name":"Ada","email":"ada@example.com","country":"GB","followers":{"total":7},"images":[{"url":"https://img/1"},{"url":"https://img/2"}]}`)
		}))
		defer srv.Close()

		user, err := newTestService(t, srv).UserProfile(context.Background())
		if err != nil {
			t.Fatalf("UserProfile failed: %v", err)
		}

		profile := user.ToProfile()
		if user.ID != "user1" || profile.DisplayName != "Ada" || profile.FollowerCount != 7 {
			t.Errorf("unexpected profile %+v", profile)
		}
		if profile.ProfileImageURL != "https://img/1" {
			t.Errorf("expected first image, got %s", profile.ProfileImageURL)
		}
	})

	t.Run("TopTracks", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me/top/tracks" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			q := r.URL.Query()
			if q.Get("time_range") != "medium_term" || q.Get("limit") != "10" || q.Get("offset") != "20" {
				t.Errorf("unexpected query %s", r.URL.RawQuery)
			}
			io.WriteString(w, `{"items":[{"id":"t1","name":"One","popularity":80,"artists":[{"name":"A"},{"name":"B"}]}],"total":21,"limit":10,"offset":20,"next":null}`)
		}))
		defer srv.Close()

		page, err := newTestService(t, srv).TopTracks(context.Background(), MediumTerm, 10, 20)
		if err != nil {
			t.Fatalf("TopTracks failed: %v", err)
		}

		if len(page.Items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(page.Items))
		}
		if page.Items[0].ArtistNames() != "A, B" {
			t.Errorf("expected joined artists, got %q", page.Items[0].ArtistNames())
		}
		if page.HasNext() {
			t.Error("expected no next page")
		}
	})

	t.Run("SavedTracks keeps null tracks", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("limit") != "50" {
				t.Errorf("limit should be clamped to 50, got %s", r.URL.Query().Get("limit"))
			}
			io.WriteString(w, `{"items":[{"added_at":"2024-01-02T03:04:05Z","track":{"id":"t1","name":"One"}},{"added_at":"2024-01-01T00:00:00Z","track":null}],"total":2,"next":"https://api.spotify.com/v1/me/tracks?offset=50"}`)
		}))
		defer srv.Close()

		page, err := newTestService(t, srv).SavedTracks(context.Background(), 500, 0)
		if err != nil {
			t.Fatalf("SavedTracks failed: %v", err)
		}

		if len(page.Items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(page.Items))
		}
		if page.Items[1].Track != nil {
			t.Error("expected nil track for null entry")
		}
		if !page.HasNext() {
			t.Error("expected next page")
		}
	})

	t.Run("SaveTracks and RemoveSavedTracks send ids", func(t *testing.T) {
		var methods []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			methods = append(methods, r.Method)
			if r.URL.Path != "/me/tracks" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("expected JSON body, got %q", r.Header.Get("Content-Type"))
			}

			var body struct {
				IDs []string `json:"ids"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("failed to decode body: %v", err)
			}
			if strings.Join(body.IDs, ",") != "a,b" {
				t.Errorf("unexpected ids %v", body.IDs)
			}
		}))
		defer srv.Close()

		svc := newTestService(t, srv)
		if err := svc.SaveTracks(context.Background(), []string{"a", "b"}); err != nil {
			t.Fatalf("SaveTracks failed: %v", err)
		}
		if err := svc.RemoveSavedTracks(context.Background(), []string{"a", "b"}); err != nil {
			t.Fatalf("RemoveSavedTracks failed: %v", err)
		}

		if strings.Join(methods, ",") != "PUT,DELETE" {
			t.Errorf("expected PUT then DELETE, got %v", methods)
		}
	})

	t.Run("batch limits", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		}))
		defer srv.Close()

		svc := newTestService(t, srv)
		if err := svc.SaveTracks(context.Background(), nil); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for empty batch, got %v", err)
		}
		if err := svc.RemoveSavedTracks(context.Background(), make([]string, 51)); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for oversized batch, got %v", err)
		}
	})

	t.Run("status mapping", func(t *testing.T) {
		tc := []struct {
			name   string
			status int
			want   error
		}{
			{name: "unauthorized", status: http.StatusUnauthorized, want: shared.ErrTokenExpired},
			{name: "rate limited", status: http.StatusTooManyRequests, want: shared.ErrRateLimited},
			{name: "unavailable", status: http.StatusServiceUnavailable, want: shared.ErrServiceUnavailable},
			{name: "server error", status: http.StatusInternalServerError, want: shared.ErrAPIRequest},
			{name: "forbidden", status: http.StatusForbidden, want: shared.ErrAPIRequest},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("Retry-After", "3")
					w.WriteHeader(tt.status)
					io.WriteString(w, `{"error":{"status":0,"message":"nope"}}`)
				}))
				defer srv.Close()

				err := newTestService(t, srv).SaveTracks(context.Background(), []string{"a"})
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})
}

func TestSpotifyOAuth(t *testing.T) {
	t.Run("Exchange", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/token" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if err := r.ParseForm(); err != nil {
				t.Fatalf("failed to parse form: %v", err)
			}
			if r.Form.Get("grant_type") != "authorization_code" || r.Form.Get("code") != "the-code" {
				t.Errorf("unexpected form %v", r.Form)
			}
			if _, _, ok := r.BasicAuth(); !ok {
				t.Error("expected client credentials in basic auth header")
			}
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"access_token":"access","token_type":"Bearer","refresh_token":"refresh","expires_in":3600}`)
		}))
		defer srv.Close()

		svc, err := NewSpotifyService(testCredentials())
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}
		svc.SetEndpoint(srv.URL+"/authorize", srv.URL+"/api/token")

		token, err := svc.Exchange(context.Background(), "the-code")
		if err != nil {
			t.Fatalf("Exchange failed: %v", err)
		}
		if token.AccessToken != "access" || token.RefreshToken != "refresh" {
			t.Errorf("unexpected token %+v", token)
		}
	})

	t.Run("Exchange failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":"invalid_grant"}`)
		}))
		defer srv.Close()

		svc, _ := NewSpotifyService(testCredentials())
		svc.SetEndpoint(srv.URL+"/authorize", srv.URL+"/api/token")

		if _, err := svc.Exchange(context.Background(), "bad"); err == nil {
			t.Fatal("expected exchange error")
		}
	})

	t.Run("WithToken refreshes and reports", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/token":
				r.ParseForm()
				if r.Form.Get("grant_type") != "refresh_token" || r.Form.Get("refresh_token") != "old-refresh" {
					t.Errorf("unexpected refresh form %v", r.Form)
				}
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, `{"access_token":"fresh","token_type":"Bearer","refresh_token":"new-refresh","expires_in":3600}`)
			case "/me":
				if got := r.Header.Get("Authorization"); got != "Bearer fresh" {
					t.Errorf("expected refreshed token, got %q", got)
				}
				io.WriteString(w, `{"id":"user1"}`)
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		}))
		defer srv.Close()

		base, _ := NewSpotifyService(testCredentials())
		base.SetBaseURL(srv.URL)
		base.SetEndpoint(srv.URL+"/authorize", srv.URL+"/api/token")

		expired := &oauth2.Token{AccessToken: "stale", RefreshToken: "old-refresh", Expiry: time.Now().Add(-time.Hour)}

		var refreshed []*oauth2.Token
		svc := base.WithToken(context.Background(), expired, func(tok *oauth2.Token) {
			refreshed = append(refreshed, tok)
		})

		if _, err := svc.UserProfile(context.Background()); err != nil {
			t.Fatalf("UserProfile failed: %v", err)
		}

		if len(refreshed) != 1 {
			t.Fatalf("expected one refresh callback, got %d", len(refreshed))
		}
		if refreshed[0].AccessToken != "fresh" || refreshed[0].RefreshToken != "new-refresh" {
			t.Errorf("unexpected refreshed token %+v", refreshed[0])
		}
	})

	t.Run("Profile", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer given" {
				t.Errorf("unexpected authorization header %q", got)
			}
			io.WriteString(w, `{"id":"user1","display_name":"Ada"}`)
		}))
		defer srv.Close()

		svc, _ := NewSpotifyService(testCredentials())
		svc.SetBaseURL(srv.URL)

		user, err := svc.Profile(context.Background(), &oauth2.Token{AccessToken: "given"})
		if err != nil {
			t.Fatalf("Profile failed: %v", err)
		}
		if user.ID != "user1" {
			t.Errorf("expected user1, got %s", user.ID)
		}
	})
}

func TestRefreshableTokenSource(t *testing.T) {
	t.Run("skips callback while token is unchanged", func(t *testing.T) {
		calls := 0
		source := &refreshableTokenSource{
			source:   &mockTokenSource{token: &oauth2.Token{AccessToken: "token1"}},
			callback: func(*oauth2.Token) { calls++ },
			last:     "token1",
		}

		for range 3 {
			if _, err := source.Token(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		}

		if calls != 0 {
			t.Errorf("expected no callbacks, got %d", calls)
		}
	})

	t.Run("calls callback when token changes", func(t *testing.T) {
		var captured []string
		mock := &mockTokenSource{token: &oauth2.Token{AccessToken: "token1"}}
		source := &refreshableTokenSource{
			source:   mock,
			callback: func(tok *oauth2.Token) { captured = append(captured, tok.AccessToken) },
			last:     "token1",
		}

		_, _ = source.Token()
		mock.token = &oauth2.Token{AccessToken: "token2"}
		_, _ = source.Token()
		_, _ = source.Token()

		if strings.Join(captured, ",") != "token2" {
			t.Errorf("expected one callback for token2, got %v", captured)
		}
	})

	t.Run("propagates errors", func(t *testing.T) {
		source := &refreshableTokenSource{
			source:   &mockTokenSource{err: errors.New("boom")},
			callback: func(*oauth2.Token) { t.Error("callback should not run") },
		}

		if _, err := source.Token(); err == nil {
			t.Error("expected error")
		}
	})
}
