package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Sync        SyncConfig        `toml:"sync"`
	Auth        AuthConfig        `toml:"auth"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	RedirectURI  string   `toml:"redirect_uri"`
	Scopes       []string `toml:"scopes"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// SyncConfig controls pagination and batch pacing against the Spotify API.
type SyncConfig struct {
	BatchSize         int      `toml:"batch_size"`
	PageSize          int      `toml:"page_size"`
	PageDelay         Duration `toml:"page_delay"`
	InterBatchDelay   Duration `toml:"inter_batch_delay"`
	ErrorBackoffDelay Duration `toml:"error_backoff_delay"`
}

// AuthConfig controls the lifetime of pending OAuth states and sessions.
type AuthConfig struct {
	StateTTL   Duration `toml:"state_ttl"`
	SessionTTL Duration `toml:"session_ttl"`
	// SessionFile stores the CLI's current session id between invocations.
	SessionFile string `toml:"session_file"`
}

// Duration is a [time.Duration] that reads and writes as a string like "500ms" or "168h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q: %v", ErrInvalidConfig, string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values from [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads each existing dotenv file into the process environment.
//
// Missing files are skipped. Variables already set in the environment win.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides credentials and the database path from environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REDIRECT_URI"); v != "" {
		c.Credentials.Spotify.RedirectURI = v
	}
	if v := os.Getenv("LIKESWAP_DATABASE"); v != "" {
		c.Database.Path = v
	}
}

// Validate reports the required Spotify credentials that are unset or still hold placeholder values.
func (s SpotifyConfig) Validate() error {
	var missing []string
	for name, v := range map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
	} {
		if v == "" || strings.HasPrefix(v, "your_") {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("%w: spotify %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// Map returns the credentials in the map form accepted by the Spotify service constructor.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
	}
}

// Validate checks the sync and auth sections for values that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.Sync.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("%w: sync.batch_size must not be negative", ErrInvalidConfig))
	}
	if c.Sync.PageSize < 0 || c.Sync.PageSize > 50 {
		errs = append(errs, fmt.Errorf("%w: sync.page_size must be between 0 and 50", ErrInvalidConfig))
	}
	if c.Auth.SessionTTL.Duration <= 0 {
		errs = append(errs, fmt.Errorf("%w: auth.session_ttl must be positive", ErrInvalidConfig))
	}
	if c.Auth.StateTTL.Duration <= 0 {
		errs = append(errs, fmt.Errorf("%w: auth.state_ttl must be positive", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}
