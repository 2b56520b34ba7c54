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

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Catalog    CatalogConfig    `toml:"catalog"`
	Cloudinary CloudinaryConfig `toml:"cloudinary"`
	Source     SourceConfig     `toml:"source"`
	Registry   RegistryConfig   `toml:"registry"`
	Dispatcher DispatcherConfig `toml:"dispatcher"`
	Database   DatabaseConfig   `toml:"database"`
	Log        LogConfig        `toml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host                   string `toml:"host"`
	Port                   int    `toml:"port"`
	ShutdownTimeoutSeconds int    `toml:"shutdown_timeout_seconds"`
}

// Addr joins host and port into a listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ShutdownTimeout returns the graceful shutdown window, defaulting to 30s.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	if s.ShutdownTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

// CatalogConfig contains settings for the external song catalog API.
type CatalogConfig struct {
	BaseURL           string  `toml:"base_url"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	APIToken          string  `toml:"api_token"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Timeout returns the per-request timeout, defaulting to 30s.
func (c CatalogConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CloudinaryConfig contains Cloudinary credentials.
type CloudinaryConfig struct {
	CloudName string `toml:"cloud_name"`
	APIKey    string `toml:"api_key"`
	APISecret string `toml:"api_secret"`
}

// Complete reports whether all credentials are present.
func (c CloudinaryConfig) Complete() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// SourceConfig contains yt-dlp settings.
type SourceConfig struct {
	YTDLPPath   string `toml:"ytdlp_path"`
	TempDir     string `toml:"temp_dir"`
	CookiesPath string `toml:"cookies_path"`
	ProxyURL    string `toml:"proxy_url"`
}

// RegistryConfig contains job registry retention settings.
type RegistryConfig struct {
	MaxTasks               int `toml:"max_tasks"`
	CleanupIntervalMinutes int `toml:"cleanup_interval_minutes"`
}

// CleanupInterval returns the janitor period, zero when disabled.
func (r RegistryConfig) CleanupInterval() time.Duration {
	if r.CleanupIntervalMinutes <= 0 {
		return 0
	}
	return time.Duration(r.CleanupIntervalMinutes) * time.Minute
}

// DispatcherConfig bounds background job execution.
type DispatcherConfig struct {
	MaxConcurrentJobs int `toml:"max_concurrent_jobs"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
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

// ApplyEnv overrides secrets with values from the environment when set.
func (c *Config) ApplyEnv() {
	for env, dst := range map[string]*string{
		"CLOUDINARY_CLOUD_NAME": &c.Cloudinary.CloudName,
		"CLOUDINARY_API_KEY":    &c.Cloudinary.APIKey,
		"CLOUDINARY_API_SECRET": &c.Cloudinary.APISecret,
		"CATALOG_API_TOKEN":     &c.Catalog.APIToken,
		"CATALOG_BASE_URL":      &c.Catalog.BaseURL,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
}

// Validate checks settings the server cannot run without.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("%w: catalog.base_url is empty", ErrInvalidConfig)
	}
	if c.Registry.MaxTasks < 0 {
		return fmt.Errorf("%w: registry.max_tasks must not be negative", ErrInvalidConfig)
	}
	if c.Dispatcher.MaxConcurrentJobs < 0 {
		return fmt.Errorf("%w: dispatcher.max_concurrent_jobs must not be negative", ErrInvalidConfig)
	}
	return nil
}
