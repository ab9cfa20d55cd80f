package shared

import (
	_ "embed"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// EnvBackendURL names the environment variable that overrides [BackendConfig.URL].
const EnvBackendURL = "API_URL"

// EnvConfigPath names the environment variable that selects the config file.
const EnvConfigPath = "TRAVELERS_CONFIG"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Backend  BackendConfig  `toml:"backend"`
	Server   ServerConfig   `toml:"server"`
	Client   ClientConfig   `toml:"client"`
	Database DatabaseConfig `toml:"database"`
	Proxy    ProxyConfig    `toml:"proxy"`
	Log      LogConfig      `toml:"log"`
}

// BackendConfig points at the travel stories REST API.
type BackendConfig struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ServerConfig contains BFF HTTP server settings.
type ServerConfig struct {
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	SecureCookies bool   `toml:"secure_cookies"`
}

// ClientConfig contains terminal client settings.
type ClientConfig struct {
	BaseURL      string `toml:"base_url"`
	CallbackAddr string `toml:"callback_addr"`
}

// DatabaseConfig contains the client profile database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ProxyConfig tunes the API proxy.
type ProxyConfig struct {
	RateLimit          float64 `toml:"rate_limit"`
	Burst              int     `toml:"burst"`
	HealthRetries      int     `toml:"health_retries"`
	HealthRetrySeconds int     `toml:"health_retry_seconds"`
}

// LogConfig sets the log level ("debug", "info", "warn", "error").
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
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

// ResolveConfig loads path when it exists, falls back to [DefaultConfig] otherwise,
// then applies environment overrides and validates the result.
func ResolveConfig(path string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	config := DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	config.ApplyEnv(getenv)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
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

// ApplyEnv overrides file values with environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvBackendURL)); v != "" {
		c.Backend.URL = v
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.Backend.URL); err != nil || c.Backend.URL == "" {
		return fmt.Errorf("%w: backend.url %q", ErrInvalidConfig, c.Backend.URL)
	}
	if c.Client.BaseURL != "" {
		if _, err := url.ParseRequestURI(c.Client.BaseURL); err != nil {
			return fmt.Errorf("%w: client.base_url %q", ErrInvalidConfig, c.Client.BaseURL)
		}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d", ErrInvalidConfig, c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is empty", ErrInvalidConfig)
	}
	return nil
}

// APIBase returns the backend URL with the "/api" prefix every backend route lives under.
func (c *Config) APIBase() string {
	return strings.TrimRight(c.Backend.URL, "/") + "/api"
}

// BackendTimeout is the per-request timeout used for backend calls.
func (c *Config) BackendTimeout() time.Duration {
	if c.Backend.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// ServerAddr is the BFF listen address.
func (c *Config) ServerAddr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// ClientBase is where the terminal client sends API requests; it defaults to the backend API.
func (c *Config) ClientBase() string {
	if c.Client.BaseURL != "" {
		return strings.TrimRight(c.Client.BaseURL, "/")
	}
	return c.APIBase()
}

// CheckCallbackAddr reports a callback listener that would collide with the host the client talks to.
func (c *Config) CheckCallbackAddr() error {
	cbHost, cbPort, err := net.SplitHostPort(c.Client.CallbackAddr)
	if err != nil {
		return fmt.Errorf("%w: client.callback_addr %q", ErrInvalidConfig, c.Client.CallbackAddr)
	}

	base, err := url.Parse(c.ClientBase())
	if err != nil {
		return fmt.Errorf("%w: client.base_url %q", ErrInvalidConfig, c.Client.BaseURL)
	}
	port := base.Port()
	if port == "" {
		port = "80"
		if base.Scheme == "https" {
			port = "443"
		}
	}

	if port == cbPort && sameHost(base.Hostname(), cbHost) {
		return fmt.Errorf("%w: client.callback_addr %s is also the API host %s; set client.base_url to the backend or pick another callback_addr",
			ErrInvalidConfig, c.Client.CallbackAddr, base.Host)
	}
	return nil
}

func sameHost(a, b string) bool {
	loopback := func(h string) bool { return h == "localhost" || h == "127.0.0.1" || h == "::1" || h == "" }
	return strings.EqualFold(a, b) || (loopback(a) && loopback(b))
}

// HealthRetryDelay is the pause between backend health probes.
func (c *Config) HealthRetryDelay() time.Duration {
	if c.Proxy.HealthRetrySeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.Proxy.HealthRetrySeconds) * time.Second
}
