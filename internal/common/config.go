package common

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
}

// DatabaseConfig holds storage configuration. DSNs starting with "postgres"
// use the pgx pool; anything else is treated as a sqlite path.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout"`
}

// ServerConfig holds the HTTP listener configuration. WatchDirs, when set,
// are ingested continuously alongside API uploads.
type ServerConfig struct {
	Addr      string   `mapstructure:"addr"`
	UploadDir string   `mapstructure:"upload_dir"`
	WatchDirs []string `mapstructure:"watch_dirs"`
}

// ProvidersConfig holds base URLs and timeouts for the external engines.
type ProvidersConfig struct {
	OCRURL           string        `mapstructure:"ocr_url"`
	OCRTimeout       time.Duration `mapstructure:"ocr_timeout"`
	TranslateURL     string        `mapstructure:"translate_url"`
	TranslateTimeout time.Duration `mapstructure:"translate_timeout"`
	EmbeddingURL     string        `mapstructure:"embedding_url"`
	EmbeddingTimeout time.Duration `mapstructure:"embedding_timeout"`
}

// PipelineConfig holds pipeline tunables.
type PipelineConfig struct {
	TargetLanguage      string        `mapstructure:"target_language"`
	ConfidenceThreshold float64       `mapstructure:"confidence_threshold"`
	Workers             int           `mapstructure:"workers"`
	QueueSize           int           `mapstructure:"queue_size"`
	JobTimeout          time.Duration `mapstructure:"job_timeout"`
	EmbeddingCachePath  string        `mapstructure:"embedding_cache_path"`
}

// LoadConfig reads config.yaml (working dir or ./config) and the environment.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("paperlens")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// config file is optional; defaults + env are enough for dev
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.dsn", "paperlens.db")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.max_conn_lifetime", 30*time.Minute)
	v.SetDefault("database.max_conn_idle_time", 5*time.Minute)
	v.SetDefault("database.dial_timeout", 3*time.Second)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.upload_dir", "./data/uploads")

	v.SetDefault("providers.ocr_url", "http://localhost:8501")
	v.SetDefault("providers.ocr_timeout", 120*time.Second)
	v.SetDefault("providers.translate_url", "http://localhost:8502")
	v.SetDefault("providers.translate_timeout", 60*time.Second)
	v.SetDefault("providers.embedding_url", "http://localhost:8503")
	v.SetDefault("providers.embedding_timeout", 30*time.Second)

	v.SetDefault("pipeline.target_language", "en")
	v.SetDefault("pipeline.confidence_threshold", 0.6)
	v.SetDefault("pipeline.workers", 4)
	v.SetDefault("pipeline.queue_size", 256)
	v.SetDefault("pipeline.job_timeout", 5*time.Minute)
	v.SetDefault("pipeline.embedding_cache_path", "./data/label-embeddings.msgpack")
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "database.dsn is required", ErrInvalidInput)
	}
	if c.Providers.OCRURL == "" {
		return NewAppError("CONFIG_ERROR", "providers.ocr_url is required", ErrInvalidInput)
	}
	if c.Pipeline.TargetLanguage == "" {
		return NewAppError("CONFIG_ERROR", "pipeline.target_language is required", ErrInvalidInput)
	}
	return nil
}
