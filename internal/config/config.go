package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Market    MarketConfig    `yaml:"market" envconfig:"MARKET"`
	Narrative NarrativeConfig `yaml:"narrative" envconfig:"NARRATIVE"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
	Session   SessionConfig   `yaml:"session" envconfig:"SESSION"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	// ReportTimeout bounds a single report export, which may drive a
	// headless browser for PDF rendering.
	ReportTimeout time.Duration `yaml:"report_timeout" envconfig:"REPORT_TIMEOUT" default:"90s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"25"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/finlens.log"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	WebDir     string `yaml:"web_dir" envconfig:"WEB_DIR" default:"web"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"reports"`
	// Stylesheet is served to the dashboard frontend. A missing file is
	// a startup warning, never an error.
	Stylesheet string `yaml:"stylesheet" envconfig:"STYLESHEET" default:"web/static/styles.css"`
}

// MarketConfig contains the finance data provider configuration
type MarketConfig struct {
	ChartBaseURL  string        `yaml:"chart_base_url" envconfig:"CHART_BASE_URL" default:"https://query1.finance.yahoo.com"`
	SearchBaseURL string        `yaml:"search_base_url" envconfig:"SEARCH_BASE_URL" default:"https://query1.finance.yahoo.com"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"10s"`
	UserAgent     string        `yaml:"user_agent" envconfig:"USER_AGENT" default:"FinLens/1.0"`
	NewsLimit     int           `yaml:"news_limit" envconfig:"NEWS_LIMIT" default:"5"`
}

// NarrativeConfig controls the local text-generation subprocess
type NarrativeConfig struct {
	Command string        `yaml:"command" envconfig:"COMMAND" default:"ollama"`
	Model   string        `yaml:"model" envconfig:"MODEL" default:"mistral"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"25s"`
}

// WebSocketConfig contains WebSocket and quote streaming configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" default:"1024"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" default:"1024"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD" default:"30s"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" default:"60s"`
	QuotePoll       time.Duration `yaml:"quote_poll" envconfig:"QUOTE_POLL" default:"30s"`
}

// SessionConfig contains the ephemeral session store configuration
type SessionConfig struct {
	CookieName string        `yaml:"cookie_name" envconfig:"COOKIE_NAME" default:"finlens_session"`
	TTL        time.Duration `yaml:"ttl" envconfig:"TTL" default:"4h"`
	Sweep      time.Duration `yaml:"sweep" envconfig:"SWEEP" default:"10m"`
}

// Load loads configuration from environment variables and config file.
// File values fill in anything the environment left at its zero value,
// so environment variables always win.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("FINLENS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := getConfigFilePath()
	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Server.Port == 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if envConfig.Server.ReadTimeout == 0 {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if envConfig.Server.WriteTimeout == 0 {
		envConfig.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}
	if envConfig.Market.ChartBaseURL == "" {
		envConfig.Market.ChartBaseURL = fileConfig.Market.ChartBaseURL
	}
	if envConfig.Market.SearchBaseURL == "" {
		envConfig.Market.SearchBaseURL = fileConfig.Market.SearchBaseURL
	}
	if envConfig.Narrative.Command == "" {
		envConfig.Narrative.Command = fileConfig.Narrative.Command
	}
	if envConfig.Narrative.Model == "" {
		envConfig.Narrative.Model = fileConfig.Narrative.Model
	}
	if envConfig.Logging.FilePath == "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}

	return envConfig
}

// EnsureDirectories creates the writable directories the service needs
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogsDir, c.Paths.ReportsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// StaticDir returns the directory static assets are served from
func (c *Config) StaticDir() string {
	return filepath.Join(c.Paths.WebDir, "static")
}

// StylesheetExists reports whether the dashboard stylesheet is present
func (c *Config) StylesheetExists() bool {
	return FileExists(c.Paths.Stylesheet)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Market.Timeout <= 0 {
		return fmt.Errorf("market timeout must be positive")
	}

	if c.Narrative.Timeout <= 0 {
		return fmt.Errorf("narrative timeout must be positive")
	}

	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	// Only JSON logging is supported; coerce rather than fail.
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/finlens.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// FileExists reports whether path exists and is a regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			ReportTimeout:   90 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   25,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/finlens.log",
		},
		Paths: PathsConfig{
			WebDir:     "web",
			LogsDir:    "logs",
			ReportsDir: "reports",
			Stylesheet: "web/static/styles.css",
		},
		Market: MarketConfig{
			ChartBaseURL:  "https://query1.finance.yahoo.com",
			SearchBaseURL: "https://query1.finance.yahoo.com",
			Timeout:       10 * time.Second,
			UserAgent:     "FinLens/1.0",
			NewsLimit:     5,
		},
		Narrative: NarrativeConfig{
			Command: "ollama",
			Model:   "mistral",
			Timeout: 25 * time.Second,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
			QuotePoll:       30 * time.Second,
		},
		Session: SessionConfig{
			CookieName: "finlens_session",
			TTL:        4 * time.Hour,
			Sweep:      10 * time.Minute,
		},
	}
}
