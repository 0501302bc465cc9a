package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/likeswap/internal/auth"
	"github.com/desertthunder/likeswap/internal/formatter"
	"github.com/desertthunder/likeswap/internal/models"
	"github.com/desertthunder/likeswap/internal/repositories"
	"github.com/desertthunder/likeswap/internal/services"
	"github.com/desertthunder/likeswap/internal/shared"
	"github.com/desertthunder/likeswap/internal/tasks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database, Spotify client and auth components are created on first use so commands that
// need none of them (setup, help) work without credentials.
type Runner struct {
	config      *shared.Config
	configPath  string
	logger      *log.Logger
	output      io.Writer
	db          *sql.DB
	ownsDB      bool
	spotify     *services.SpotifyService
	provider    services.OAuthProvider
	library     services.Library
	waiter      tasks.Waiter
	registry    *prometheus.Registry
	metrics     *tasks.Metrics
	states      *auth.StateStore
	openBrowser func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config // when set, --config is ignored
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB
	Provider   services.OAuthProvider // overrides the Spotify accounts service
	Library    services.Library       // overrides the per-user Spotify client
	Waiter     tasks.Waiter
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		logger:      opts.Logger,
		output:      opts.Output,
		db:          opts.DB,
		provider:    opts.Provider,
		library:     opts.Library,
		waiter:      opts.Waiter,
		registry:    registry,
		metrics:     tasks.NewMetrics(registry),
		openBrowser: shared.OpenBrowser,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, e.g. to keep log output away from the TUI.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Configure loads configuration before any action runs.
//
// Order of precedence: environment (including .env), then the TOML file, then built-in defaults.
func (r *Runner) Configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if r.config != nil {
		return ctx, nil
	}

	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if err := shared.LoadEnv(".env", filepath.Join(filepath.Dir(r.configPath), ".env")); err != nil {
		r.logger.Warn("failed to load .env", "error", err)
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(r.configPath); err == nil {
		if config, err = shared.LoadConfig(r.configPath); err != nil {
			return ctx, err
		}
		r.logger.Debug("config loaded", "path", r.configPath)
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	config.ApplyEnv()
	if err := config.Validate(); err != nil {
		return ctx, err
	}

	r.config = config
	return ctx, nil
}

// Close releases the database opened by the command. A database passed in [RunnerOpts] stays open.
func (r *Runner) Close(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil || !r.ownsDB {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	path, err := shared.ExpandHome(r.config.Database.Path)
	if err != nil {
		return nil, err
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, err
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	r.ownsDB = true
	return db, nil
}

// spotifyService builds the Spotify client. Missing client credentials are fatal.
func (r *Runner) spotifyService() (*services.SpotifyService, error) {
	if r.spotify != nil {
		return r.spotify, nil
	}

	creds := r.config.Credentials.Spotify
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("%w (set them in %s, .env or SPOTIFY_* variables)", err, r.configPath)
	}

	svc, err := services.NewSpotifyService(creds.Map(), creds.Scopes...)
	if err != nil {
		return nil, err
	}
	r.spotify = svc
	return svc, nil
}

func (r *Runner) oauthProvider() (services.OAuthProvider, error) {
	if r.provider != nil {
		return r.provider, nil
	}
	return r.spotifyService()
}

func (r *Runner) users() (*repositories.UserRepository, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return repositories.NewUserRepository(db), nil
}

func (r *Runner) sessionRegistry() (*auth.SessionRegistry, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return auth.NewSessionRegistry(
		repositories.NewSessionRepository(db),
		repositories.NewUserRepository(db),
		r.config.Auth.SessionTTL.Duration,
		shared.WithLogger(r.logger, "component", "sessions"),
	), nil
}

func (r *Runner) exchanger() (*auth.Exchanger, *auth.SessionRegistry, error) {
	provider, err := r.oauthProvider()
	if err != nil {
		return nil, nil, err
	}
	users, err := r.users()
	if err != nil {
		return nil, nil, err
	}
	registry, err := r.sessionRegistry()
	if err != nil {
		return nil, nil, err
	}

	if r.states == nil {
		r.states = auth.NewStateStore(r.config.Auth.StateTTL.Duration)
	}

	logger := shared.WithLogger(r.logger, "component", "auth")
	return auth.NewExchanger(provider, r.states, users, registry, logger), registry, nil
}

// currentUser resolves the session stored in the session file.
func (r *Runner) currentUser(ctx context.Context) (*models.User, error) {
	id, err := r.readSession()
	if err != nil {
		return nil, err
	}

	registry, err := r.sessionRegistry()
	if err != nil {
		return nil, err
	}

	user, err := registry.Resolve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w (run 'likeswap auth login')", err)
	}
	return user, nil
}

// libraryFor returns a Spotify client acting as user. Refreshed tokens are written back to the users table.
func (r *Runner) libraryFor(ctx context.Context, user *models.User) (services.Library, error) {
	if r.library != nil {
		return r.library, nil
	}

	svc, err := r.spotifyService()
	if err != nil {
		return nil, err
	}

	users, err := r.users()
	if err != nil {
		return nil, err
	}

	creds := user.Credentials()
	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		Expiry:       creds.ExpiresAt,
		TokenType:    "Bearer",
	}

	userID := user.ID()
	return svc.WithToken(ctx, token, func(t *oauth2.Token) {
		err := users.UpdateToken(context.WithoutCancel(ctx), userID, models.Credentials{
			AccessToken:  t.AccessToken,
			RefreshToken: t.RefreshToken,
			ExpiresAt:    t.Expiry,
		})
		if err != nil {
			r.logger.Warn("failed to persist refreshed token", "user", userID, "error", err)
			return
		}
		r.logger.Debug("refreshed access token persisted", "user", userID)
	}), nil
}

// newEngine builds a LibraryEngine for lib from the [sync] settings. batchSize overrides the config when positive.
func (r *Runner) newEngine(lib services.Library, userID string, batchSize int) *tasks.LibraryEngine {
	sync := r.config.Sync
	if batchSize <= 0 {
		batchSize = sync.BatchSize
	}

	opts := tasks.EngineOpts{
		Fetch: tasks.FetcherOpts{PageDelay: sync.PageDelay.Duration},
		Mutate: tasks.MutatorOpts{
			BatchSize:         batchSize,
			InterBatchDelay:   sync.InterBatchDelay.Duration,
			ErrorBackoffDelay: sync.ErrorBackoffDelay.Duration,
			Waiter:            r.waiter,
		},
		Logger:  shared.WithLogger(r.logger, "user", userID),
		Metrics: r.metrics,
	}

	if db, err := r.database(); err == nil {
		opts.Recorder = repositories.NewTopTrackAdapter(repositories.NewTrackRepository(db), userID)
	} else {
		r.logger.Debug("top track history disabled", "error", err)
	}

	return tasks.NewLibraryEngine(lib, opts)
}

func (r *Runner) sessionPath() (string, error) {
	return shared.ExpandHome(r.config.Auth.SessionFile)
}

func (r *Runner) readSession() (string, error) {
	path, err := r.sessionPath()
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w (run 'likeswap auth login')", shared.ErrNotAuthenticated)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (r *Runner) writeSession(id string) error {
	path, err := r.sessionPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func (r *Runner) clearSession() error {
	path, err := r.sessionPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := formatter.ToJSON(data, pretty)
	if err != nil {
		return err
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
