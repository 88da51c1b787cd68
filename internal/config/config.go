// Package config loads service configuration from config files and
// environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Annotation  AnnotationConfig `mapstructure:"annotation"`
	Uploads     UploadsConfig    `mapstructure:"uploads"`
	RunStore    RunStoreConfig   `mapstructure:"run_store"`
	LLM         LLMConfig        `mapstructure:"llm"`
	Pipeline    PipelineConfig   `mapstructure:"pipeline"`
	Logging     LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig selects and configures the result-store backend.
type DatabaseConfig struct {
	// Backend is "sqlite" or "postgres".
	Backend string `mapstructure:"backend"`

	// Path is the SQLite database file, used when Backend is "sqlite".
	Path string `mapstructure:"path"`

	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// AnnotationConfig points at the knowledgebase store.
type AnnotationConfig struct {
	Path      string `mapstructure:"path"`
	CacheSize int    `mapstructure:"cache_size"`
}

// UploadsConfig holds upload handling settings.
type UploadsConfig struct {
	Dir string `mapstructure:"dir"`
}

// RunStoreConfig selects where processing-run state lives.
type RunStoreConfig struct {
	// Backend is "memory" or "redis".
	Backend  string        `mapstructure:"backend"`
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LLMConfig configures the inference service client.
type LLMConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Temperature float64       `mapstructure:"temperature"`
	RateLimit   float64       `mapstructure:"rate_limit"`
}

// PipelineConfig tunes the processing pipeline.
type PipelineConfig struct {
	BatchSize int    `mapstructure:"batch_size"`
	Language  string `mapstructure:"language"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Manager loads and holds the configuration.
type Manager struct {
	config *Config
}

// NewManager loads configuration from config.yaml (searched in ., ./config
// and /etc/biogpt/) and BIOGPT_* environment variables.
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.load(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

func (m *Manager) load() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/biogpt/")

	viper.SetEnvPrefix("BIOGPT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine; defaults plus env vars apply.
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}
	m.config = config
	return nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	viper.SetDefault("database.backend", "sqlite")
	viper.SetDefault("database.path", "data/results.db")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.database", "biogpt")
	viper.SetDefault("database.username", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_conns", 25)
	viper.SetDefault("database.min_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")
	viper.SetDefault("database.conn_max_idle_time", "1m")
	viper.SetDefault("database.migrations_path", "migrations")

	viper.SetDefault("annotation.path", "data/annotations.db")
	viper.SetDefault("annotation.cache_size", 10000)

	viper.SetDefault("uploads.dir", "data/uploads")

	viper.SetDefault("run_store.backend", "memory")
	viper.SetDefault("run_store.redis_url", "redis://localhost:6379")
	viper.SetDefault("run_store.ttl", "24h")

	viper.SetDefault("llm.base_url", "http://llm:8001")
	viper.SetDefault("llm.timeout", "30s")
	viper.SetDefault("llm.max_retries", 3)
	viper.SetDefault("llm.temperature", 0.3)
	viper.SetDefault("llm.rate_limit", 5)

	viper.SetDefault("pipeline.batch_size", 100)
	viper.SetDefault("pipeline.language", "pt-BR")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// GetConfig returns the loaded configuration.
func (m *Manager) GetConfig() *Config {
	return m.config
}

// Validate checks the loaded configuration for unusable values.
func (m *Manager) Validate() error {
	cfg := m.config

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	switch cfg.Database.Backend {
	case "sqlite":
		if cfg.Database.Path == "" {
			return fmt.Errorf("database path is required for the sqlite backend")
		}
	case "postgres":
		if cfg.Database.Host == "" {
			return fmt.Errorf("database host is required for the postgres backend")
		}
		if cfg.Database.Database == "" {
			return fmt.Errorf("database name is required for the postgres backend")
		}
		if cfg.Database.Username == "" {
			return fmt.Errorf("database username is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown database backend: %q", cfg.Database.Backend)
	}

	switch cfg.RunStore.Backend {
	case "memory":
	case "redis":
		if cfg.RunStore.RedisURL == "" {
			return fmt.Errorf("redis URL is required for the redis run store")
		}
	default:
		return fmt.Errorf("unknown run store backend: %q", cfg.RunStore.Backend)
	}

	if cfg.Annotation.Path == "" {
		return fmt.Errorf("annotation database path is required")
	}
	if cfg.Uploads.Dir == "" {
		return fmt.Errorf("uploads directory is required")
	}
	if cfg.LLM.BaseURL == "" {
		return fmt.Errorf("llm base URL is required")
	}

	switch cfg.Pipeline.Language {
	case "pt-BR", "en":
	default:
		return fmt.Errorf("unsupported language: %q", cfg.Pipeline.Language)
	}

	if _, err := logrus.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", cfg.Logging.Level)
	}
	return nil
}

// NewLogger builds the process logger from the logging configuration.
func NewLogger(cfg LoggingConfig) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	}
	return log
}
