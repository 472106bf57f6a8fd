package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables read at startup.
const (
	EnvToken     = "DISCOGS_TOKEN"
	EnvUsername  = "DISCOGS_USERNAME"
	EnvDeleteAll = "DELETE_ALL_ITEMS_IN_COLLECTION"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Discogs     DiscogsConfig     `toml:"discogs"`
	Sync        SyncConfig        `toml:"sync"`
	Database    DatabaseConfig    `toml:"database"`
}

// CredentialsConfig holds Discogs credentials. Environment variables take precedence.
type CredentialsConfig struct {
	Token    string `toml:"token"`
	Username string `toml:"username"`
}

// DiscogsConfig contains Discogs API settings.
type DiscogsConfig struct {
	BaseURL   string   `toml:"base_url"`
	UserAgent string   `toml:"user_agent"`
	FolderID  int      `toml:"folder_id"`
	PerPage   int      `toml:"per_page"`
	MaxPages  int      `toml:"max_pages"`
	Timeout   Duration `toml:"timeout"`
}

// SyncConfig contains upload orchestration settings.
type SyncConfig struct {
	RetryDelay        Duration `toml:"retry_delay"`
	MaxAttempts       int      `toml:"max_attempts"`
	Workers           int      `toml:"workers"`
	RequestsPerMinute int      `toml:"requests_per_minute"`
	LockFile          string   `toml:"lock_file"`
}

// DatabaseConfig contains run history database settings. An empty path disables history.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// Duration is a [time.Duration] that decodes from strings like "60s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: bad duration %q: %v", ErrInvalidConfig, string(text), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
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

// Validate reports settings that would make the sync misbehave.
func (c *Config) Validate() error {
	if c.Discogs.PerPage < 1 || c.Discogs.PerPage > 500 {
		return fmt.Errorf("%w: discogs.per_page must be between 1 and 500, got %d", ErrInvalidConfig, c.Discogs.PerPage)
	}
	if c.Discogs.MaxPages < 1 {
		return fmt.Errorf("%w: discogs.max_pages must be at least 1", ErrInvalidConfig)
	}
	if c.Sync.MaxAttempts < 1 {
		return fmt.Errorf("%w: sync.max_attempts must be at least 1", ErrInvalidConfig)
	}
	if c.Sync.Workers < 0 || c.Sync.RequestsPerMinute < 0 {
		return fmt.Errorf("%w: sync.workers and sync.requests_per_minute cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// RunConfig is the process-wide, read-only configuration for a single sync run.
type RunConfig struct {
	Token          string
	Username       string
	DeleteAllFirst bool
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process environment.
//
// A missing file is not an error. Variables already set are not overwritten.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// LoadRunConfig builds a [RunConfig] from the environment, falling back to the credentials in c.
func LoadRunConfig(c *Config, getenv func(string) string) (*RunConfig, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	rc := &RunConfig{
		Token:          firstNonEmpty(getenv(EnvToken), c.Credentials.Token),
		Username:       firstNonEmpty(getenv(EnvUsername), c.Credentials.Username),
		DeleteAllFirst: DeleteAllEnabled(getenv(EnvDeleteAll)),
	}

	if rc.Token == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrMissingCredentials, EnvToken)
	}
	if rc.Username == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrMissingCredentials, EnvUsername)
	}
	return rc, nil
}

// DeleteAllEnabled reports whether v turns on clearing the collection before upload.
//
// Only "1" enables it; unset, empty, "0" and anything else keep the skip-duplicates behaviour.
func DeleteAllEnabled(v string) bool {
	return strings.TrimSpace(v) == "1"
}

// DeleteAllIgnored reports whether v is set to something other than "0" or "1".
// Such values are treated as off.
func DeleteAllIgnored(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != "0" && v != "1"
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
