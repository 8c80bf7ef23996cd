package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendPostgres = "postgres"
	BackendSupabase = "supabase"

	EmailSMTP     = "smtp"
	EmailSendGrid = "sendgrid"
	EmailNone     = "none"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Database  DatabaseConfig  `yaml:"database"`
	Supabase  SupabaseConfig  `yaml:"supabase"`
	Email     EmailConfig     `yaml:"email"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains gRPC and HTTP listener settings
type ServerConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	HTTPPort              int    `yaml:"http_port"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

// StoreConfig selects the persistence backend: "postgres" or "supabase".
type StoreConfig struct {
	Backend string `yaml:"backend"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// SupabaseConfig points at a managed Supabase project.
type SupabaseConfig struct {
	URL        string `yaml:"url"`
	ServiceKey string `yaml:"service_key"`
}

// EmailConfig selects how customer notifications are delivered.
type EmailConfig struct {
	Provider       string     `yaml:"provider"` // "smtp", "sendgrid" or "none"
	From           string     `yaml:"from"`
	FromName       string     `yaml:"from_name"`
	SMTP           SMTPConfig `yaml:"smtp"`
	SendGridAPIKey string     `yaml:"sendgrid_api_key"`
}

// SMTPConfig contains email service settings
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
	Output string `yaml:"output"` // "stdout" or "stderr"
}

// SchedulerConfig contains cron schedule settings (six fields, with seconds)
type SchedulerConfig struct {
	SyncVehicleAvailability string `yaml:"sync_vehicle_availability"`
	SendOverdueReminders    string `yaml:"send_overdue_reminders"`
}

// Load reads configuration from a YAML file. A missing configPath is allowed
// when everything comes from the environment. Variables from a .env file in the
// working directory are loaded first and never override the real environment.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func envString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	envString("SERVER_HOST", &c.Server.Host)
	envInt("SERVER_PORT", &c.Server.Port)
	envInt("SERVER_HTTP_PORT", &c.Server.HTTPPort)
	envInt("SERVER_REQUEST_TIMEOUT_SECONDS", &c.Server.RequestTimeoutSeconds)

	envString("STORE_BACKEND", &c.Store.Backend)

	envString("DB_HOST", &c.Database.Host)
	envInt("DB_PORT", &c.Database.Port)
	envString("DB_USER", &c.Database.User)
	envString("DB_PASSWORD", &c.Database.Password)
	envString("DB_NAME", &c.Database.Database)
	envString("DB_SSL_MODE", &c.Database.SSLMode)

	envString("SUPABASE_URL", &c.Supabase.URL)
	envString("SUPABASE_SERVICE_ROLE_KEY", &c.Supabase.ServiceKey)

	envString("EMAIL_PROVIDER", &c.Email.Provider)
	envString("EMAIL_FROM", &c.Email.From)
	envString("SMTP_HOST", &c.Email.SMTP.Host)
	envInt("SMTP_PORT", &c.Email.SMTP.Port)
	envString("SMTP_USER", &c.Email.SMTP.User)
	envString("SMTP_PASSWORD", &c.Email.SMTP.Password)
	envString("SENDGRID_API_KEY", &c.Email.SendGridAPIKey)

	envString("LOG_LEVEL", &c.Log.Level)
	envString("LOG_FORMAT", &c.Log.Format)
	envString("LOG_OUTPUT", &c.Log.Output)
}

// Validate checks the configuration and fills defaults.
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		c.Server.Port = 50051
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.HTTPPort < 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port: %d", c.Server.HTTPPort)
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		c.Server.RequestTimeoutSeconds = 15
	}

	c.Store.Backend = strings.ToLower(c.Store.Backend)
	switch c.Store.Backend {
	case "", BackendPostgres:
		c.Store.Backend = BackendPostgres
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
		if c.Database.MaxOpenConns <= 0 {
			c.Database.MaxOpenConns = 10
		}
		if c.Database.MaxIdleConns <= 0 {
			c.Database.MaxIdleConns = 5
		}
	case BackendSupabase:
		if c.Supabase.URL == "" || c.Supabase.ServiceKey == "" {
			return fmt.Errorf("supabase url and service key are required")
		}
	default:
		return fmt.Errorf("unknown store backend: %q", c.Store.Backend)
	}

	c.Email.Provider = strings.ToLower(c.Email.Provider)
	switch c.Email.Provider {
	case "", EmailNone:
		c.Email.Provider = EmailNone
	case EmailSMTP:
		if c.Email.SMTP.Host == "" {
			return fmt.Errorf("SMTP host is required")
		}
		if c.Email.SMTP.Port <= 0 || c.Email.SMTP.Port > 65535 {
			return fmt.Errorf("invalid SMTP port: %d", c.Email.SMTP.Port)
		}
	case EmailSendGrid:
		if c.Email.SendGridAPIKey == "" {
			return fmt.Errorf("sendgrid api key is required")
		}
	default:
		return fmt.Errorf("unknown email provider: %q", c.Email.Provider)
	}
	if c.Email.Provider != EmailNone && c.Email.From == "" {
		return fmt.Errorf("email sender address is required")
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "MoFleet"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}

	if c.Scheduler.SyncVehicleAvailability == "" {
		c.Scheduler.SyncVehicleAvailability = "0 */15 * * * *" // every 15 minutes
	}
	if c.Scheduler.SendOverdueReminders == "" {
		c.Scheduler.SendOverdueReminders = "0 0 8 * * *" // 08:00 daily
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

// GetServerAddress returns the gRPC server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetHTTPAddress returns the HTTP listener address, or "" when HTTP is disabled.
func (c *Config) GetHTTPAddress() string {
	if c.Server.HTTPPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}
