package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/likeswap/internal/models"
	"github.com/desertthunder/likeswap/internal/repositories"
	"github.com/desertthunder/likeswap/internal/services"
	"github.com/desertthunder/likeswap/internal/shared"
	"github.com/desertthunder/likeswap/internal/tasks"
	tu "github.com/desertthunder/likeswap/internal/testing"
	"golang.org/x/oauth2"
)

type fixture struct {
	runner   *Runner
	lib      *tu.FakeLibrary
	provider *tu.FakeOAuthProvider
	out      *bytes.Buffer
	db       *sql.DB
	config   *shared.Config
}

func newFixture(t *testing.T, lib *tu.FakeLibrary) *fixture {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	config := shared.DefaultConfig()
	config.Database.Path = ":memory:"
	config.Auth.SessionFile = filepath.Join(t.TempDir(), "session")
	config.Sync.PageDelay.Duration = -1

	provider := &tu.FakeOAuthProvider{
		Token: &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", Expiry: time.Now().Add(time.Hour)},
		User:  &services.SpotifyUser{ID: "user1", DisplayName: "Ada", Email: "ada@example.com"},
	}

	out := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:   config,
		Logger:   shared.NewLogger(io.Discard),
		Output:   out,
		DB:       db,
		Provider: provider,
		Library:  lib,
		Waiter:   &tu.RecordingWaiter{},
	})

	return &fixture{runner: runner, lib: lib, provider: provider, out: out, db: db, config: config}
}

// login stores user1 and a live session in the session file.
func (f *fixture) login(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	users := repositories.NewUserRepository(f.db)
	_, err := users.Upsert(ctx, models.NewUser("user1", models.Profile{DisplayName: "Ada", Email: "ada@example.com"}, models.Credentials{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}))
	if err != nil {
		t.Fatalf("failed to store user: %v", err)
	}

	registry, err := f.runner.sessionRegistry()
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	session, err := registry.Create(ctx, "user1")
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if err := f.runner.writeSession(session.ID()); err != nil {
		t.Fatalf("failed to write session: %v", err)
	}
}

func (f *fixture) run(args ...string) error {
	return rootCommand(f.runner).Run(context.Background(), append([]string{"likeswap"}, args...))
}

// freeAddr returns a loopback address that was free a moment ago.
func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

// interruptingLibrary cancels the command while its first removal batch is in flight.
type interruptingLibrary struct {
	*tu.FakeLibrary
	cancel context.CancelFunc
}

func (l *interruptingLibrary) RemoveSavedTracks(ctx context.Context, ids []string) error {
	l.cancel()
	return l.FakeLibrary.RemoveSavedTracks(ctx, ids)
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			lib := &tu.FakeLibrary{}

			runner := NewRunner(RunnerOpts{Config: config, Logger: logger, Output: output, Library: lib})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.library != lib {
				t.Error("expected library to be set")
			}
			if runner.metrics == nil || runner.registry == nil {
				t.Error("expected metrics to be registered")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			if NewRunner(RunnerOpts{}).logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			if NewRunner(RunnerOpts{}).output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		names := map[string]bool{}
		for _, cmd := range NewRunner(RunnerOpts{}).register() {
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "auth", "serve", "tui"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})

	t.Run("session file", func(t *testing.T) {
		f := newFixture(t, &tu.FakeLibrary{})

		if _, err := f.runner.readSession(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated before login, got %v", err)
		}

		if err := f.runner.writeSession("abc"); err != nil {
			t.Fatalf("writeSession failed: %v", err)
		}
		id, err := f.runner.readSession()
		if err != nil || id != "abc" {
			t.Fatalf("expected abc, got %q (%v)", id, err)
		}

		info, err := os.Stat(f.config.Auth.SessionFile)
		if err != nil {
			t.Fatalf("stat failed: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("expected 0600 permissions, got %v", perm)
		}

		if err := f.runner.clearSession(); err != nil {
			t.Fatalf("clearSession failed: %v", err)
		}
		if err := f.runner.clearSession(); err != nil {
			t.Errorf("clearing twice should not fail: %v", err)
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes JSON", func(t *testing.T) {
			out := &bytes.Buffer{}
			r := NewRunner(RunnerOpts{Output: out})
			if err := r.writeJSON(map[string]int{"n": 1}, false); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}
			if strings.TrimSpace(out.String()) != `{"n":1}` {
				t.Errorf("unexpected output %q", out.String())
			}
		})

		t.Run("write error", func(t *testing.T) {
			r := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := r.writeJSON(map[string]int{"n": 1}, false); err == nil {
				t.Error("expected write error")
			}
		})
	})
}

func TestConfigure(t *testing.T) {
	dir := t.TempDir()
	write := func(t *testing.T, body string) string {
		t.Helper()
		path := filepath.Join(dir, t.Name()[strings.LastIndex(t.Name(), "/")+1:]+".toml")
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		return path
	}

	t.Run("loads file and applies environment", func(t *testing.T) {
		t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
		path := write(t, fmt.Sprintf(`
[credentials.spotify]
client_id = "file-id"

[database]
path = %q

[sync]
batch_size = 10
`, filepath.Join(dir, "loads.db")))

		r := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})
		if err := rootCommand(r).Run(context.Background(), []string{"likeswap", "--config", path, "auth", "prune"}); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		if r.config.Sync.BatchSize != 10 {
			t.Errorf("expected batch size 10, got %d", r.config.Sync.BatchSize)
		}
		if r.config.Credentials.Spotify.ClientID != "env-id" {
			t.Errorf("expected environment to override client id, got %s", r.config.Credentials.Spotify.ClientID)
		}
		if r.config.Sync.InterBatchDelay.Duration != 500*time.Millisecond {
			t.Errorf("expected default inter-batch delay, got %v", r.config.Sync.InterBatchDelay)
		}
		if r.db != nil {
			t.Error("expected database to be closed after the command")
		}
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		path := write(t, "[sync]\nbatch_size = -1\n")

		r := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})
		err := rootCommand(r).Run(context.Background(), []string{"likeswap", "--config", path, "auth", "prune"})
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("rejects malformed durations", func(t *testing.T) {
		path := write(t, "[sync]\npage_delay = \"soon\"\n")

		r := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})
		if err := rootCommand(r).Run(context.Background(), []string{"likeswap", "--config", path, "auth", "prune"}); err == nil {
			t.Error("expected error for malformed duration")
		}
	})
}

func TestReplaceCommand(t *testing.T) {
	t.Run("requires a session", func(t *testing.T) {
		f := newFixture(t, &tu.FakeLibrary{Top: tu.MakeTracks("top", 3)})
		if err := f.run(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("expired session is rejected", func(t *testing.T) {
		f := newFixture(t, &tu.FakeLibrary{Top: tu.MakeTracks("top", 3)})
		f.login(t)
		if _, err := f.db.Exec(`UPDATE sessions SET expires_at = ?`, time.Now().Add(-time.Minute).Unix()); err != nil {
			t.Fatalf("failed to expire session: %v", err)
		}
		if err := f.run(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("dry run previews without mutating", func(t *testing.T) {
		lib := &tu.FakeLibrary{Top: tu.MakeTracks("top", 15), Saved: tu.MakeSaved(tu.MakeTracks("old", 4))}
		f := newFixture(t, lib)
		f.login(t)

		if err := f.run("--dry-run"); err != nil {
			t.Fatalf("dry run failed: %v", err)
		}

		out := f.out.String()
		for _, want := range []string{"Connected as Ada", "DRY RUN", "these 15 tracks", "... and 5 more"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
		if lib.MutationCount() != 0 {
			t.Errorf("dry run mutated the library %d times", lib.MutationCount())
		}
		if len(lib.SavedRequests) != 0 {
			t.Error("dry run should not read liked songs")
		}

		history, err := repositories.NewTrackRepository(f.db).ListTopTracks(context.Background(), "user1", string(services.ShortTerm))
		if err != nil {
			t.Fatalf("ListTopTracks failed: %v", err)
		}
		if len(history) != 0 {
			t.Errorf("dry run should not record top tracks, got %d", len(history))
		}
	})

	t.Run("replaces liked songs", func(t *testing.T) {
		lib := &tu.FakeLibrary{Top: tu.MakeTracks("top", 5), Saved: tu.MakeSaved(tu.MakeTracks("old", 3))}
		f := newFixture(t, lib)
		f.login(t)

		if err := f.run("--time-range", "long", "--format", "json"); err != nil {
			t.Fatalf("replace failed: %v", err)
		}

		var summary replaceSummary
		if err := json.Unmarshal(f.out.Bytes(), &summary); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, f.out.String())
		}
		if summary.TimeRange != string(services.LongTerm) {
			t.Errorf("expected long_term, got %s", summary.TimeRange)
		}
		if summary.Liked != 3 || summary.Cleared.Succeeded != 3 || summary.Added.Succeeded != 5 {
			t.Errorf("unexpected summary %+v", summary)
		}

		history, err := repositories.NewTrackRepository(f.db).ListTopTracks(context.Background(), "user1", string(services.LongTerm))
		if err != nil {
			t.Fatalf("ListTopTracks failed: %v", err)
		}
		if len(history) != 5 {
			t.Errorf("expected 5 recorded top tracks, got %d", len(history))
		}

		saved := lib.SavedIDs()
		if len(saved) != 5 {
			t.Fatalf("expected 5 liked songs, got %v", saved)
		}
		for _, id := range saved {
			if !strings.HasPrefix(id, "top-") {
				t.Errorf("unexpected liked song %s", id)
			}
		}
	})

	t.Run("uses batch size flag", func(t *testing.T) {
		lib := &tu.FakeLibrary{Top: tu.MakeTracks("top", 7)}
		f := newFixture(t, lib)
		f.login(t)

		if err := f.run("--batch-size", "3"); err != nil {
			t.Fatalf("replace failed: %v", err)
		}
		if len(lib.Saves) != 3 {
			t.Errorf("expected 3 add batches, got %d", len(lib.Saves))
		}
		if !strings.Contains(f.out.String(), "Successfully replaced") {
			t.Errorf("expected success message, got:\n%s", f.out.String())
		}
	})

	t.Run("clear failure stops before adding", func(t *testing.T) {
		lib := &tu.FakeLibrary{
			Top:         tu.MakeTracks("top", 5),
			Saved:       tu.MakeSaved(tu.MakeTracks("old", 3)),
			RemoveErrAt: map[int]error{1: errors.New("boom")},
		}
		f := newFixture(t, lib)
		f.login(t)

		err := f.run()
		var wfErr *tasks.WorkflowError
		if !errors.As(err, &wfErr) || wfErr.Code != tasks.CodeClearFailed {
			t.Fatalf("expected clear_failed, got %v", err)
		}
		if len(lib.Saves) != 0 {
			t.Error("expected no additions after a failed clear")
		}
		if !strings.Contains(f.out.String(), "❌") {
			t.Errorf("expected failure marker, got:\n%s", f.out.String())
		}
	})

	t.Run("interrupt during the clear is a cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		fake := &tu.FakeLibrary{Top: tu.MakeTracks("top", 5), Saved: tu.MakeSaved(tu.MakeTracks("old", 3))}
		f := newFixture(t, fake)
		f.runner.library = &interruptingLibrary{FakeLibrary: fake, cancel: cancel}
		f.login(t)

		err := rootCommand(f.runner).Run(ctx, []string{"likeswap"})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		var wfErr *tasks.WorkflowError
		if errors.As(err, &wfErr) {
			t.Errorf("cancellation reported as %s", wfErr.Code)
		}
		if len(fake.SavedIDs()) != 0 || len(fake.Saves) != 0 {
			t.Errorf("expected the in-flight clear to finish and nothing to be added, saved = %v", fake.SavedIDs())
		}
	})

	t.Run("no top tracks", func(t *testing.T) {
		f := newFixture(t, &tu.FakeLibrary{Saved: tu.MakeSaved(tu.MakeTracks("old", 3))})
		f.login(t)

		err := f.run()
		var wfErr *tasks.WorkflowError
		if !errors.As(err, &wfErr) || wfErr.Code != tasks.CodeEmptyTargetSet {
			t.Fatalf("expected empty_target_set, got %v", err)
		}
		if f.lib.MutationCount() != 0 {
			t.Error("expected liked songs to be left alone")
		}
	})

	t.Run("invalid flags", func(t *testing.T) {
		tests := []struct {
			name string
			args []string
			want error
		}{
			{"time range", []string{"--time-range", "decade"}, shared.ErrInvalidArgument},
			{"format", []string{"--format", "xml"}, shared.ErrInvalidFlag},
			{"limit", []string{"--limit", "51"}, shared.ErrInvalidFlag},
			{"batch size", []string{"--batch-size", "99"}, shared.ErrInvalidFlag},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t, &tu.FakeLibrary{})
				f.login(t)
				if err := f.run(tt.args...); !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})
}

func TestListingFlags(t *testing.T) {
	t.Run("show top as CSV", func(t *testing.T) {
		lib := &tu.FakeLibrary{Top: tu.MakeTracks("top", 5)}
		f := newFixture(t, lib)
		f.login(t)

		if err := f.run("--show-top", "--format", "csv"); err != nil {
			t.Fatalf("show-top failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(f.out.String()), "\n")
		if len(lines) != 6 {
			t.Fatalf("expected header and 5 rows, got %d lines:\n%s", len(lines), f.out.String())
		}
		if !strings.HasPrefix(lines[0], "Index,ID,Name") {
			t.Errorf("unexpected header %q", lines[0])
		}
		if lib.MutationCount() != 0 {
			t.Error("listing should not mutate")
		}
	})

	t.Run("show liked truncates text", func(t *testing.T) {
		lib := &tu.FakeLibrary{Saved: tu.MakeSaved(tu.MakeTracks("old", 25))}
		f := newFixture(t, lib)
		f.login(t)

		if err := f.run("--show-liked"); err != nil {
			t.Fatalf("show-liked failed: %v", err)
		}

		out := f.out.String()
		if !strings.Contains(out, "Your 25 Liked Songs") || !strings.Contains(out, "... and 5 more") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("show liked as JSON lists everything", func(t *testing.T) {
		lib := &tu.FakeLibrary{Saved: tu.MakeSaved(tu.MakeTracks("old", 25))}
		f := newFixture(t, lib)
		f.login(t)

		if err := f.run("--show-liked", "--format", "json"); err != nil {
			t.Fatalf("show-liked failed: %v", err)
		}

		var listing struct {
			Items []models.TrackRecord `json:"items"`
		}
		if err := json.Unmarshal(f.out.Bytes(), &listing); err != nil {
			t.Fatalf("output is not JSON: %v", err)
		}
		if len(listing.Items) != 25 {
			t.Errorf("expected 25 items, got %d", len(listing.Items))
		}
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("status when logged out", func(t *testing.T) {
		f := newFixture(t, &tu.FakeLibrary{})
		if err := f.run("auth", "status"); err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if !strings.Contains(f.out.String(), "Not logged in") {
			t.Errorf("unexpected output %q", f.out.String())
		}
	})

	t.Run("status when logged in", func(t *testing.T) {
		f := newFixture(t, &tu.FakeLibrary{})
		f.login(t)
		if err := f.run("auth", "status"); err != nil {
			t.Fatalf("status failed: %v", err)
		}
		out := f.out.String()
		if !strings.Contains(out, "Ada") || !strings.Contains(out, "user1") {
			t.Errorf("unexpected output:\n%s", out)
		}
		if strings.Contains(out, "access") {
			t.Error("status must not print tokens")
		}
	})

	t.Run("logout revokes the session", func(t *testing.T) {
		f := newFixture(t, &tu.FakeLibrary{})
		f.login(t)
		id, _ := f.runner.readSession()

		if err := f.run("auth", "logout"); err != nil {
			t.Fatalf("logout failed: %v", err)
		}

		if _, err := os.Stat(f.config.Auth.SessionFile); !os.IsNotExist(err) {
			t.Error("expected session file to be removed")
		}
		registry, _ := f.runner.sessionRegistry()
		if _, err := registry.Resolve(context.Background(), id); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected revoked session, got %v", err)
		}
	})

	t.Run("prune", func(t *testing.T) {
		f := newFixture(t, &tu.FakeLibrary{})
		f.login(t)
		if _, err := f.db.Exec(`UPDATE sessions SET expires_at = ?`, time.Now().Add(-time.Minute).Unix()); err != nil {
			t.Fatalf("failed to expire session: %v", err)
		}

		if err := f.run("auth", "prune"); err != nil {
			t.Fatalf("prune failed: %v", err)
		}
		if !strings.Contains(f.out.String(), "Removed 1 expired session") {
			t.Errorf("unexpected output %q", f.out.String())
		}
	})

	t.Run("login completes through the callback", func(t *testing.T) {
		f := newFixture(t, &tu.FakeLibrary{})
		addr := freeAddr(t)
		f.config.Credentials.Spotify.RedirectURI = "http://" + addr + "/auth/callback"

		f.runner.openBrowser = func(authURL string) error {
			u, err := url.Parse(authURL)
			if err != nil {
				return err
			}
			state := u.Query().Get("state")
			go func() {
				resp, err := http.Get(fmt.Sprintf("http://%s/auth/callback?code=abc&state=%s", addr, url.QueryEscape(state)))
				if err == nil {
					resp.Body.Close()
				}
			}()
			return nil
		}

		if err := f.run("auth", "login", "--timeout", "5s"); err != nil {
			t.Fatalf("login failed: %v", err)
		}

		if !strings.Contains(f.out.String(), "Logged in as Ada") {
			t.Errorf("unexpected output:\n%s", f.out.String())
		}
		if f.provider.ExchangeCount() != 1 {
			t.Errorf("expected one code exchange, got %d", f.provider.ExchangeCount())
		}

		user, err := f.runner.currentUser(context.Background())
		if err != nil {
			t.Fatalf("expected stored session to resolve: %v", err)
		}
		if user.ID() != "user1" {
			t.Errorf("expected user1, got %s", user.ID())
		}
	})

	t.Run("login times out", func(t *testing.T) {
		f := newFixture(t, &tu.FakeLibrary{})
		f.config.Credentials.Spotify.RedirectURI = "http://" + freeAddr(t) + "/auth/callback"
		f.runner.openBrowser = func(string) error { return errors.New("no browser") }

		err := f.run("auth", "login", "--timeout", "50ms")
		if !errors.Is(err, shared.ErrTimeout) {
			t.Fatalf("expected ErrTimeout, got %v", err)
		}
		if !strings.Contains(f.out.String(), "https://accounts.example/authorize") {
			t.Errorf("expected the URL to be printed when the browser fails, got:\n%s", f.out.String())
		}
		if _, err := f.runner.readSession(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Error("expected no session after a timeout")
		}
	})
}

func TestSetup(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(dir, "data", "likeswap.db")

	out := &bytes.Buffer{}
	r := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     shared.NewLogger(io.Discard),
		Output:     out,
	})

	if err := rootCommand(r).Run(context.Background(), []string{"likeswap", "setup"}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	tu.AssertFileExists(t, configPath)
	tu.AssertFileExists(t, config.Database.Path)

	if !strings.Contains(out.String(), "Database ready") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "auth login") {
		t.Error("expected next steps to mention auth login")
	}
	if !strings.Contains(tu.MustReadFile(t, configPath), "[credentials.spotify]") {
		t.Error("expected config file to be written from the template")
	}
}
