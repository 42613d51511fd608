package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported database types
const (
	DatabaseTypePostgres = "postgres"
	DatabaseTypeMySQL    = "mysql"
	DatabaseTypeMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Events   EventsConfig   `mapstructure:"events"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Issuance IssuanceConfig `mapstructure:"issuance"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Hostname     string        `mapstructure:"hostname"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Type            string        `mapstructure:"type"`
	Hostname        string        `mapstructure:"hostname"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

// RedisConfig configures the reference data cache. An empty URL disables it.
type RedisConfig struct {
	URL       string        `mapstructure:"url"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
	PoolSize  int           `mapstructure:"pool_size"`
}

// EventsConfig configures status change publishing. No brokers means no publishing.
type EventsConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// IssuanceConfig holds lifecycle tunables
type IssuanceConfig struct {
	DefaultActor      string `mapstructure:"default_actor"`
	CardExpiryYears   int    `mapstructure:"card_expiry_years"`
	ReportDefaultDays int    `mapstructure:"report_default_days"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	// CARD_ISSUANCE_DATABASE_PASSWORD overrides database.password
	v.SetEnvPrefix("CARD_ISSUANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.hostname", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("database.type", DatabaseTypePostgres)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("redis.key_prefix", "cardissuance:ref:")
	v.SetDefault("redis.ttl", 10*time.Minute)
	v.SetDefault("events.topic", "card-issuance.status-changed")
	v.SetDefault("events.write_timeout", 5*time.Second)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("issuance.default_actor", "System")
	v.SetDefault("issuance.card_expiry_years", 3)
	v.SetDefault("issuance.report_default_days", 30)
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	switch config.Database.Type {
	case DatabaseTypePostgres, DatabaseTypeMySQL:
		if config.Database.Hostname == "" {
			return fmt.Errorf("database hostname is required")
		}
		if config.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	case DatabaseTypeMemory:
	default:
		return fmt.Errorf("unsupported database type: %q", config.Database.Type)
	}

	if len(config.Events.Brokers) > 0 && config.Events.Topic == "" {
		return fmt.Errorf("events topic is required when brokers are configured")
	}

	if config.Issuance.CardExpiryYears <= 0 {
		return fmt.Errorf("card expiry years must be positive")
	}

	return nil
}

// GetDSN returns the driver-specific connection string
func (d *DatabaseConfig) GetDSN() string {
	if d.Type == DatabaseTypeMySQL {
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=UTC",
			d.User,
			d.Password,
			d.Hostname,
			d.Port,
			d.Database,
		)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Hostname,
		d.Port,
		d.User,
		d.Password,
		d.Database,
		d.SSLMode,
	)
}

// DriverName returns the database/sql driver registered for the configured type
func (d *DatabaseConfig) DriverName() string {
	if d.Type == DatabaseTypeMySQL {
		return "mysql"
	}
	return "postgres"
}

// GetServerAddress returns the server address in host:port format
func (s *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", s.Hostname, s.Port)
}

// Enabled reports whether status events should be published
func (e *EventsConfig) Enabled() bool {
	return len(e.Brokers) > 0
}
