package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/eliasvk/tracksync/internal/timeflip"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Vault   VaultConfig       `yaml:"vault"`
	Remote  RemoteConfig      `yaml:"remote"`
	Sync    SyncConfig        `yaml:"sync"`
	State   StateConfig       `yaml:"state"`
	Journal JournalConfig     `yaml:"journal"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.Remote.Validate(); err != nil {
		return err
	}
	if err := c.Sync.Validate(); err != nil {
		return err
	}
	if err := c.State.Validate(); err != nil {
		return err
	}
	if err := c.Journal.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds the serve-mode HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig locates the Markdown vault and its daily notes.
//
// DailyFolder is relative to the vault root. DailyLayout is a Go
// reference-time layout for daily note filenames (without the .md
// extension); it may contain slashes for nested folders, e.g.
// "2006/01/2006-01-02".
type VaultConfig struct {
	Path        string `yaml:"path"`
	DailyFolder string `yaml:"daily_folder"`
	DailyLayout string `yaml:"daily_layout"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.DailyLayout, validation.Required),
	)
}

// RemoteConfig holds the TimeFlip API endpoint.
type RemoteConfig struct {
	BaseURL string `yaml:"base_url"`
}

// Validate validates the remote configuration.
func (c *RemoteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
	)
}

// SyncConfig tunes the reconciliation pipeline.
//
// WriteDelayMS is the minimum gap after each property write before the
// next one on the same note. Concurrency bounds cross-note work in the
// all-days flow. Schedule is a five-field cron spec for the periodic
// today-sync in serve mode; empty disables it.
type SyncConfig struct {
	WriteDelayMS int    `yaml:"write_delay_ms"`
	Concurrency  int    `yaml:"concurrency"`
	Schedule     string `yaml:"schedule"`
}

// WriteDelay returns the inter-write delay as a duration.
func (c *SyncConfig) WriteDelay() time.Duration {
	return time.Duration(c.WriteDelayMS) * time.Millisecond
}

// Validate validates the sync configuration.
func (c *SyncConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.WriteDelayMS, validation.Min(0)),
		validation.Field(&c.Concurrency, validation.Required, validation.Min(1), validation.Max(64)),
	)
}

// StateConfig holds the path of the persisted settings/token file.
type StateConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the state configuration.
func (c *StateConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// JournalConfig holds the SQLite import journal configuration.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the journal configuration.
func (c *JournalConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds serve-mode API authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8475,
			},
		},
		Vault: VaultConfig{
			Path:        "./vault",
			DailyFolder: "daily",
			DailyLayout: "2006-01-02",
		},
		Remote: RemoteConfig{
			BaseURL: timeflip.DefaultBaseURL,
		},
		Sync: SyncConfig{
			WriteDelayMS: 100,
			Concurrency:  4,
			Schedule:     "*/5 * * * *",
		},
		State: StateConfig{
			Path: "./tracksync-state.yaml",
		},
		Journal: JournalConfig{
			Path: "./tracksync.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
