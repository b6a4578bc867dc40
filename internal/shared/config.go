package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PULSE_"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database" envPrefix:"DATABASE_"`
	Server      ServerConfig      `toml:"server" envPrefix:"SERVER_"`
	Storage     StorageConfig     `toml:"storage" envPrefix:"STORAGE_"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify" envPrefix:"SPOTIFY_"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id" env:"CLIENT_ID"`
	ClientSecret string `toml:"client_secret" env:"CLIENT_SECRET"`
	RedirectURI  string `toml:"redirect_uri" env:"REDIRECT_URI"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"PATH"`
	MaxOpenConns int    `toml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string  `toml:"host" env:"HOST"`
	Port           int     `toml:"port" env:"PORT"`
	SessionSecret  string  `toml:"session_secret" env:"SESSION_SECRET"`
	SecureCookies  bool    `toml:"secure_cookies" env:"SECURE_COOKIES"`
	LogLevel       string  `toml:"log_level" env:"LOG_LEVEL"`
	MaxUploadBytes int64   `toml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES"`
	LoginRate      float64 `toml:"login_rate" env:"LOGIN_RATE"`
	LoginBurst     int     `toml:"login_burst" env:"LOGIN_BURST"`
}

// StorageConfig controls where profile pictures live and how they are resolved.
type StorageConfig struct {
	StaticDir      string `toml:"static_dir" env:"STATIC_DIR"`
	UploadsDir     string `toml:"uploads_dir" env:"UPLOADS_DIR"`
	Placeholder    string `toml:"placeholder" env:"PLACEHOLDER"`
	LatestFallback bool   `toml:"latest_fallback" env:"LATEST_FALLBACK"`
}

// Addr returns the host:port pair the HTTP server listens on.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// UploadsPath is the directory holding uploaded pictures.
func (c StorageConfig) UploadsPath() string {
	return filepath.Join(c.StaticDir, c.UploadsDir)
}

// UploadsURL is the URL prefix uploaded pictures are served under.
func (c StorageConfig) UploadsURL() string {
	return path.Join("/static", filepath.ToSlash(c.UploadsDir))
}

// PlaceholderURL is the URL of the picture shown when nothing else matches.
// Absolute URLs are returned unchanged; anything else is served from /static.
func (c StorageConfig) PlaceholderURL() string {
	if u, err := url.Parse(c.Placeholder); err == nil && u.IsAbs() {
		return c.Placeholder
	}
	return path.Join("/static", filepath.ToSlash(c.Placeholder))
}

// Validate checks the values the server cannot run without.
func (c *Config) Validate() error {
	switch {
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	case c.Server.MaxUploadBytes <= 0:
		return fmt.Errorf("%w: server.max_upload_bytes must be positive", ErrInvalidConfig)
	case c.Database.Path == "":
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	case c.Storage.StaticDir == "" || c.Storage.UploadsDir == "":
		return fmt.Errorf("%w: storage.static_dir and storage.uploads_dir are required", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
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

// LoadDotEnv loads variables from a .env file into the process environment.
// A missing file is not an error and variables already set are kept.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides config values with PULSE_* environment variables.
func ApplyEnv(config *Config) error {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ResolveConfig builds the effective configuration: the file at path when it
// exists (defaults otherwise), overlaid with the environment.
func ResolveConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	if err := ApplyEnv(config); err != nil {
		return nil, err
	}

	return config, nil
}
