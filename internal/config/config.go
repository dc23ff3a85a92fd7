package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Tap       TapConfig       `yaml:"tap"`
	Karzoun   KarzounConfig   `yaml:"karzoun"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	JWT       JWTConfig       `yaml:"jwt"`
	Site      SiteConfig      `yaml:"site"`
	Platform  PlatformConfig  `yaml:"platform"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// TapConfig contains payment gateway settings
type TapConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
	BaseURL       string `yaml:"base_url"`
}

// KarzounConfig contains WhatsApp messaging provider settings
type KarzounConfig struct {
	APIToken           string `yaml:"api_token"`
	SenderID           string `yaml:"sender_id"`
	NewRequestTemplate string `yaml:"new_request_template"`
	InvoiceTemplate    string `yaml:"invoice_template"`
	BaseURL            string `yaml:"base_url"`
}

// SendGridConfig contains email service settings
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// JWTConfig contains access token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// SiteConfig contains the public site URL used for redirect and deep links
type SiteConfig struct {
	URL string `yaml:"url"`
}

// PlatformConfig contains marketplace-level tunables
type PlatformConfig struct {
	CommissionRatePercent float64 `yaml:"commission_rate_percent"`
	PendingExpiryHours    int     `yaml:"pending_expiry_hours"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ExpireStaleRequests    string `yaml:"expire_stale_requests"`
	CompleteElapsedRentals string `yaml:"complete_elapsed_rentals"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Payment gateway
	if val := os.Getenv("TAP_SECRET_KEY"); val != "" {
		c.Tap.SecretKey = val
	}
	if val := os.Getenv("TAP_WEBHOOK_SECRET"); val != "" {
		c.Tap.WebhookSecret = val
	}
	if val := os.Getenv("TAP_BASE_URL"); val != "" {
		c.Tap.BaseURL = val
	}

	// WhatsApp provider
	if val := os.Getenv("KARZOUN_API_TOKEN"); val != "" {
		c.Karzoun.APIToken = val
	}
	if val := os.Getenv("KARZOUN_SENDER_ID"); val != "" {
		c.Karzoun.SenderID = val
	}
	if val := os.Getenv("KARZOUN_NEW_REQUEST_TEMPLATE"); val != "" {
		c.Karzoun.NewRequestTemplate = val
	}
	if val := os.Getenv("KARZOUN_INVOICE_TEMPLATE_NAME"); val != "" {
		c.Karzoun.InvoiceTemplate = val
	}

	// Email
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}
	if val := os.Getenv("SENDGRID_FROM_EMAIL"); val != "" {
		c.SendGrid.FromEmail = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Site
	if val := os.Getenv("SITE_URL"); val != "" {
		c.Site.URL = val
	}

	// Platform
	if val := os.Getenv("COMMISSION_RATE_PERCENT"); val != "" {
		fmt.Sscanf(val, "%f", &c.Platform.CommissionRatePercent)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// Gateway validation. The webhook secret is mandatory in every
	// environment: signature enforcement is never gated on a deployment
	// mode.
	if c.Tap.SecretKey == "" {
		return fmt.Errorf("tap secret key is required")
	}
	if c.Tap.WebhookSecret == "" {
		return fmt.Errorf("tap webhook secret is required")
	}
	if c.Tap.BaseURL == "" {
		c.Tap.BaseURL = "https://api.tap.company/v2"
	}

	// Messaging defaults
	if c.Karzoun.BaseURL == "" {
		c.Karzoun.BaseURL = "https://api.karzoun.app/CloudApi.php"
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Site validation
	if c.Site.URL == "" {
		return fmt.Errorf("site URL is required")
	}

	// Platform defaults
	if c.Platform.CommissionRatePercent == 0 {
		c.Platform.CommissionRatePercent = 10
	}
	if c.Platform.PendingExpiryHours == 0 {
		c.Platform.PendingExpiryHours = 72
	}

	// Scheduler defaults
	if c.Scheduler.ExpireStaleRequests == "" {
		c.Scheduler.ExpireStaleRequests = "0 0 1 * * *" // 1 AM UTC
	}
	if c.Scheduler.CompleteElapsedRentals == "" {
		c.Scheduler.CompleteElapsedRentals = "0 0 2 * * *" // 2 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
