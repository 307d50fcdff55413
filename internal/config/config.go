package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"saferoute/internal/safety"
)

// ARCHITECTURAL DISCOVERY: Configuration layer serves as system-wide settings
// coordinator; clean separation between configuration and business logic
type Config struct {
	Database *DatabaseConfig `json:"database"`
	HTTP     *HTTPConfig     `json:"http"`
	Safety   *SafetyConfig   `json:"safety"`
	SMTP     *SMTPConfig     `json:"smtp"`
}

// DatabaseConfig supports SQLite optimizations
type DatabaseConfig struct {
	Path           string        `json:"path"`
	Timeout        time.Duration `json:"timeout"`
	MigrationsPath string        `json:"migrations_path"`
}

// HTTPConfig balances performance and reliability
type HTTPConfig struct {
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	Host         string        `json:"host"`
}

// SafetyConfig controls the score provider adapter and the disconnect check
type SafetyConfig struct {
	ProviderURL    string        `json:"provider_url"`
	FetchTimeout   time.Duration `json:"fetch_timeout"`
	AlertThreshold float64       `json:"alert_threshold"`
}

// SMTPConfig identifies the alert relay
// FUNCTIONAL DISCOVERY: Username and password intentionally have no file or
// default form - credentials come only from the process environment
type SMTPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	From     string `json:"from"`
	Username string `json:"-"`
	Password string `json:"-"`
}

// DefaultConfig returns production-ready defaults
// Database on local filesystem, HTTP on standard port, the score provider
// fetch bounded at 5 seconds as the provider contract specifies
func DefaultConfig() *Config {
	return &Config{
		Database: &DatabaseConfig{
			Path:           "./data/saferoute.db",
			Timeout:        30 * time.Second,
			MigrationsPath: "./migrations",
		},
		HTTP: &HTTPConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			Host:         "0.0.0.0",
		},
		Safety: &SafetyConfig{
			ProviderURL:    "http://localhost/safty",
			FetchTimeout:   5 * time.Second,
			AlertThreshold: safety.DefaultAlertThreshold,
		},
		SMTP: &SMTPConfig{
			Host: "smtp.gmail.com",
			Port: 587,
			From: "Safety Alert <alerts@localhost>",
		},
	}
}

// Validate prevents invalid system configurations from reaching components
func (c *Config) Validate() error {
	if c.Database == nil {
		return fmt.Errorf("database configuration is required")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	if c.Database.Timeout <= 0 {
		return fmt.Errorf("database timeout must be positive")
	}

	if c.Database.MigrationsPath == "" {
		return fmt.Errorf("database migrations path cannot be empty")
	}

	if c.HTTP == nil {
		return fmt.Errorf("HTTP configuration is required")
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP port must be between 1 and 65535")
	}

	if c.HTTP.ReadTimeout <= 0 {
		return fmt.Errorf("HTTP read timeout must be positive")
	}

	if c.HTTP.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP write timeout must be positive")
	}

	if c.HTTP.Host == "" {
		return fmt.Errorf("HTTP host cannot be empty")
	}

	if c.Safety == nil {
		return fmt.Errorf("safety configuration is required")
	}

	if c.Safety.ProviderURL == "" {
		return fmt.Errorf("safety provider URL cannot be empty")
	}

	if c.Safety.FetchTimeout <= 0 {
		return fmt.Errorf("safety fetch timeout must be positive")
	}

	if c.Safety.AlertThreshold <= 0 {
		return fmt.Errorf("safety alert threshold must be positive")
	}

	if c.SMTP == nil {
		return fmt.Errorf("SMTP configuration is required")
	}

	if c.SMTP.Host == "" {
		return fmt.Errorf("SMTP host cannot be empty")
	}

	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("SMTP port must be between 1 and 65535")
	}

	return nil
}

// LoadFromEnv overrides defaults from environment variables
// Supports containerized deployments and configuration management systems
func LoadFromEnv() *Config {
	config := DefaultConfig()

	if port := os.Getenv("SAFEROUTE_HTTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.HTTP.Port = p
		}
	}

	if host := os.Getenv("SAFEROUTE_HTTP_HOST"); host != "" {
		config.HTTP.Host = host
	}

	if dbPath := os.Getenv("SAFEROUTE_DATABASE_PATH"); dbPath != "" {
		config.Database.Path = dbPath
	}

	if migrationsPath := os.Getenv("SAFEROUTE_MIGRATIONS_PATH"); migrationsPath != "" {
		config.Database.MigrationsPath = migrationsPath
	}

	if readTimeout := os.Getenv("SAFEROUTE_HTTP_READ_TIMEOUT"); readTimeout != "" {
		if timeout, err := time.ParseDuration(readTimeout); err == nil {
			config.HTTP.ReadTimeout = timeout
		}
	}

	if writeTimeout := os.Getenv("SAFEROUTE_HTTP_WRITE_TIMEOUT"); writeTimeout != "" {
		if timeout, err := time.ParseDuration(writeTimeout); err == nil {
			config.HTTP.WriteTimeout = timeout
		}
	}

	if dbTimeout := os.Getenv("SAFEROUTE_DATABASE_TIMEOUT"); dbTimeout != "" {
		if timeout, err := time.ParseDuration(dbTimeout); err == nil {
			config.Database.Timeout = timeout
		}
	}

	if providerURL := os.Getenv("SAFEROUTE_SAFETY_PROVIDER_URL"); providerURL != "" {
		config.Safety.ProviderURL = providerURL
	}

	if fetchTimeout := os.Getenv("SAFEROUTE_SAFETY_FETCH_TIMEOUT"); fetchTimeout != "" {
		if timeout, err := time.ParseDuration(fetchTimeout); err == nil {
			config.Safety.FetchTimeout = timeout
		}
	}

	if threshold := os.Getenv("SAFEROUTE_SAFETY_ALERT_THRESHOLD"); threshold != "" {
		if t, err := strconv.ParseFloat(threshold, 64); err == nil {
			config.Safety.AlertThreshold = t
		}
	}

	if smtpHost := os.Getenv("SAFEROUTE_SMTP_HOST"); smtpHost != "" {
		config.SMTP.Host = smtpHost
	}

	if smtpPort := os.Getenv("SAFEROUTE_SMTP_PORT"); smtpPort != "" {
		if p, err := strconv.Atoi(smtpPort); err == nil {
			config.SMTP.Port = p
		}
	}

	if smtpFrom := os.Getenv("SAFEROUTE_SMTP_FROM"); smtpFrom != "" {
		config.SMTP.From = smtpFrom
	}

	// Credentials are environment-only
	config.SMTP.Username = os.Getenv("SAFEROUTE_SMTP_USER")
	config.SMTP.Password = os.Getenv("SAFEROUTE_SMTP_PASS")

	return config
}

// ConfigFile represents the JSON structure for file-based configuration
// FUNCTIONAL DISCOVERY: Separate struct for JSON parsing to handle duration strings
type ConfigFile struct {
	Database *DatabaseConfigFile `json:"database"`
	HTTP     *HTTPConfigFile     `json:"http"`
	Safety   *SafetyConfigFile   `json:"safety"`
	SMTP     *SMTPConfigFile     `json:"smtp"`
}

type DatabaseConfigFile struct {
	Path           string `json:"path"`
	Timeout        string `json:"timeout"`
	MigrationsPath string `json:"migrations_path"`
}

type HTTPConfigFile struct {
	Port         int    `json:"port"`
	ReadTimeout  string `json:"read_timeout"`
	WriteTimeout string `json:"write_timeout"`
	Host         string `json:"host"`
}

type SafetyConfigFile struct {
	ProviderURL    string  `json:"provider_url"`
	FetchTimeout   string  `json:"fetch_timeout"`
	AlertThreshold float64 `json:"alert_threshold"`
}

type SMTPConfigFile struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	From string `json:"from"`
}

// LoadFromFile supports complex deployment scenarios
// JSON format chosen for readability and tooling support
func LoadFromFile(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filepath, err)
	}

	var configFile ConfigFile
	if err := json.Unmarshal(data, &configFile); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filepath, err)
	}

	// Convert to runtime config with duration parsing
	config := LoadFromEnv()

	if configFile.Database != nil {
		if configFile.Database.Path != "" {
			config.Database.Path = configFile.Database.Path
		}
		if configFile.Database.MigrationsPath != "" {
			config.Database.MigrationsPath = configFile.Database.MigrationsPath
		}
		if configFile.Database.Timeout != "" {
			if timeout, err := time.ParseDuration(configFile.Database.Timeout); err == nil {
				config.Database.Timeout = timeout
			}
		}
	}

	if configFile.HTTP != nil {
		if configFile.HTTP.Port > 0 {
			config.HTTP.Port = configFile.HTTP.Port
		}
		if configFile.HTTP.Host != "" {
			config.HTTP.Host = configFile.HTTP.Host
		}
		if configFile.HTTP.ReadTimeout != "" {
			if timeout, err := time.ParseDuration(configFile.HTTP.ReadTimeout); err == nil {
				config.HTTP.ReadTimeout = timeout
			}
		}
		if configFile.HTTP.WriteTimeout != "" {
			if timeout, err := time.ParseDuration(configFile.HTTP.WriteTimeout); err == nil {
				config.HTTP.WriteTimeout = timeout
			}
		}
	}

	if configFile.Safety != nil {
		if configFile.Safety.ProviderURL != "" {
			config.Safety.ProviderURL = configFile.Safety.ProviderURL
		}
		if configFile.Safety.AlertThreshold > 0 {
			config.Safety.AlertThreshold = configFile.Safety.AlertThreshold
		}
		if configFile.Safety.FetchTimeout != "" {
			if timeout, err := time.ParseDuration(configFile.Safety.FetchTimeout); err == nil {
				config.Safety.FetchTimeout = timeout
			}
		}
	}

	if configFile.SMTP != nil {
		if configFile.SMTP.Host != "" {
			config.SMTP.Host = configFile.SMTP.Host
		}
		if configFile.SMTP.Port > 0 {
			config.SMTP.Port = configFile.SMTP.Port
		}
		if configFile.SMTP.From != "" {
			config.SMTP.From = configFile.SMTP.From
		}
	}

	// Validate configuration after loading to catch errors early
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", filepath, err)
	}

	return config, nil
}

// LoadConfigWithPrecedence applies configuration precedence:
// file > environment > defaults
func LoadConfigWithPrecedence(filepath string) *Config {
	config := LoadFromEnv()

	if filepath != "" {
		if fileConfig, err := LoadFromFile(filepath); err == nil {
			config = fileConfig
		}
		// Silently ignore file errors - environment/defaults still work
	}

	return config
}
