package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// DefaultKeepFromSource lists the card fields copied from the source card when a card is copied to another board.
var DefaultKeepFromSource = []string{"start", "due", "dueReminder", "labels"}

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Trello      TrelloConfig      `toml:"trello"`
	Run         RunConfig         `toml:"run"`
	Copy        CopyConfig        `toml:"copy"`
	Database    DatabaseConfig    `toml:"database"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains the browser session credentials.
//
// Token is the value of the "dsc" cookie, sent in every write body.
// Cookie is the raw Cookie header forwarded on every request.
type CredentialsConfig struct {
	Token  string `toml:"token"`
	Cookie string `toml:"cookie"`
}

// TrelloConfig contains API endpoint settings.
type TrelloConfig struct {
	BaseURL string   `toml:"base_url"`
	Board   string   `toml:"board"`
	Timeout duration `toml:"timeout"`
}

// RunConfig contains defaults shared by every bulk operation.
type RunConfig struct {
	DryRun         bool     `toml:"dry_run"`
	Concurrency    int      `toml:"concurrency"`
	RateLimit      float64  `toml:"rate_limit"`
	KeepFromSource []string `toml:"keep_from_source"`
}

// CopyConfig contains the default list mapping used when copying cards.
type CopyConfig struct {
	Lists map[string]string `toml:"lists"`
}

// DatabaseConfig contains run journal settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	Journal      bool   `toml:"journal"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// duration decodes TOML strings such as "30s" into a [time.Duration].
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q: %v", ErrInvalidConfig, string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the defaults from the embedded example config.
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

// Validate checks value ranges that toml cannot express.
func (c *Config) Validate() error {
	if c.Run.Concurrency < 0 {
		return fmt.Errorf("%w: run.concurrency must be >= 0, got %d", ErrInvalidConfig, c.Run.Concurrency)
	}
	if c.Run.RateLimit < 0 {
		return fmt.Errorf("%w: run.rate_limit must be >= 0, got %v", ErrInvalidConfig, c.Run.RateLimit)
	}
	return nil
}

// Timeout returns the configured HTTP client timeout.
func (c *Config) Timeout() time.Duration {
	return c.Trello.Timeout.Duration
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
