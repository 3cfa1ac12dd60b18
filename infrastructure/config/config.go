package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ConfigPathEnv names the optional YAML file overlaid before the environment.
const ConfigPathEnv = "STACKECHO_CONFIG"

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendDynamoDB = "dynamodb"
)

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Address         string        `yaml:"address" env:"SERVER_ADDRESS"`
	ReadTimeout     time.Duration `yaml:"readTimeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" env:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idleTimeout" env:"SERVER_IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	CORSOrigins     []string      `yaml:"corsOrigins" env:"CORS_ORIGINS" envSeparator:","`
}

// StorageConfig selects and configures the snapshot backend
type StorageConfig struct {
	Backend        string        `yaml:"backend" env:"STORAGE_BACKEND"`
	Name           string        `yaml:"name" env:"STORAGE_NAME"`
	Dir            string        `yaml:"dir" env:"STORAGE_DIR"`
	SQLitePath     string        `yaml:"sqlitePath" env:"STORAGE_SQLITE_PATH"`
	DynamoDBTable  string        `yaml:"dynamoDBTable" env:"DYNAMODB_TABLE"`
	PersistTimeout time.Duration `yaml:"persistTimeout" env:"STORAGE_PERSIST_TIMEOUT"`
	BreakerEnabled bool          `yaml:"breakerEnabled" env:"STORAGE_BREAKER_ENABLED"`
}

// SessionsConfig bounds the in-memory session stores
type SessionsConfig struct {
	IdleTimeout   time.Duration `yaml:"idleTimeout" env:"SESSION_IDLE_TIMEOUT"`
	MaxOpen       int           `yaml:"maxOpen" env:"SESSION_MAX_OPEN"`
	SweepInterval time.Duration `yaml:"sweepInterval" env:"SESSION_SWEEP_INTERVAL"`
}

// EventsConfig configures outbound event publishing
type EventsConfig struct {
	EventBusName string `yaml:"eventBusName" env:"EVENT_BUS_NAME"`
}

// AuthConfig configures session tokens and the account directory
type AuthConfig struct {
	JWTSecret  string        `yaml:"jwtSecret" env:"JWT_SECRET"`
	JWTIssuer  string        `yaml:"jwtIssuer" env:"JWT_ISSUER"`
	TokenTTL   time.Duration `yaml:"tokenTTL" env:"JWT_TTL"`
	BcryptCost int           `yaml:"bcryptCost" env:"BCRYPT_COST"`
}

// ObservabilityConfig toggles metrics and tracing
type ObservabilityConfig struct {
	EnableMetrics  bool    `yaml:"enableMetrics" env:"ENABLE_METRICS"`
	EnableTracing  bool    `yaml:"enableTracing" env:"ENABLE_TRACING"`
	OTLPEndpoint   string  `yaml:"otlpEndpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	SampleRate     float64 `yaml:"sampleRate" env:"TRACE_SAMPLE_RATE"`
	ServiceVersion string  `yaml:"serviceVersion" env:"SERVICE_VERSION"`
}

// Config holds all application configuration
type Config struct {
	Environment string `yaml:"environment" env:"ENVIRONMENT"`
	ServiceName string `yaml:"serviceName" env:"SERVICE_NAME"`
	LogLevel    string `yaml:"logLevel" env:"LOG_LEVEL"`
	AWSRegion   string `yaml:"awsRegion" env:"AWS_REGION"`
	IsLambda    bool   `yaml:"-" env:"IS_LAMBDA"`

	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Sessions      SessionsConfig      `yaml:"sessions"`
	Events        EventsConfig        `yaml:"events"`
	Auth          AuthConfig          `yaml:"auth"`
	Observability ObservabilityConfig `yaml:"observability"`

	// Path is the YAML file the configuration was overlaid from, if any.
	Path string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Environment: "development",
		ServiceName: "stackecho",
		LogLevel:    "info",
		AWSRegion:   "us-west-2",
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORSOrigins:     []string{"http://localhost:3000"},
		},
		Storage: StorageConfig{
			Backend:        BackendMemory,
			Name:           "stack-echo-storage",
			Dir:            "./data",
			SQLitePath:     "./data/stackecho.db",
			DynamoDBTable:  "stackecho",
			PersistTimeout: 5 * time.Second,
			BreakerEnabled: true,
		},
		Sessions: SessionsConfig{
			IdleTimeout:   30 * time.Minute,
			MaxOpen:       10000,
			SweepInterval: time.Minute,
		},
		Auth: AuthConfig{
			JWTIssuer: "stackecho",
			TokenTTL:  24 * time.Hour,
		},
		Observability: ObservabilityConfig{
			EnableMetrics:  true,
			OTLPEndpoint:   "localhost:4317",
			SampleRate:     1.0,
			ServiceVersion: "dev",
		},
	}
}

// LoadConfig builds the configuration from defaults, the YAML file named
// by STACKECHO_CONFIG, then the environment. Later sources win.
func LoadConfig() (*Config, error) {
	return LoadFrom(os.Getenv(ConfigPathEnv))
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// LoadFrom is LoadConfig with an explicit YAML path. An empty path skips
// the file.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
		cfg.Path = path
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Storage.Dir == "" {
			errs = append(errs, errors.New("STORAGE_DIR is required for the file backend"))
		}
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("STORAGE_SQLITE_PATH is required for the sqlite backend"))
		}
	case BackendDynamoDB:
		if c.Storage.DynamoDBTable == "" {
			errs = append(errs, errors.New("DYNAMODB_TABLE is required for the dynamodb backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}

	if c.Sessions.MaxOpen < 0 {
		errs = append(errs, errors.New("SESSION_MAX_OPEN must not be negative"))
	}

	if c.IsProduction() && c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	if c.Observability.SampleRate < 0 || c.Observability.SampleRate > 1 {
		errs = append(errs, errors.New("TRACE_SAMPLE_RATE must be between 0 and 1"))
	}

	return errors.Join(errs...)
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	out.Server.CORSOrigins = append([]string{}, c.Server.CORSOrigins...)
	if out.Auth.JWTSecret != "" {
		out.Auth.JWTSecret = "********"
	}
	return &out
}
