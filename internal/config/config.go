// Package config loads application configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/estatepulse/crm-cli/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Import    ImportConfig    `yaml:"import" mapstructure:"import"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string           `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string           `yaml:"database_url" mapstructure:"database_url"`
	Pool        store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// AnthropicConfig holds Anthropic API settings for the assist features.
type AnthropicConfig struct {
	Key        string `yaml:"key" mapstructure:"key"`
	Model      string `yaml:"model" mapstructure:"model"`
	MaxTokens  int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	RatePerSec int    `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// ImportConfig configures the CSV/XLSX ingestion pipeline.
type ImportConfig struct {
	SchemaPath     string  `yaml:"schema_path" mapstructure:"schema_path"`
	RemapBatchSize int     `yaml:"remap_batch_size" mapstructure:"remap_batch_size"`
	PriceNarrowMin float64 `yaml:"price_narrow_min" mapstructure:"price_narrow_min"`
	PriceNarrowMax float64 `yaml:"price_narrow_max" mapstructure:"price_narrow_max"`
	PriceWideMin   float64 `yaml:"price_wide_min" mapstructure:"price_wide_min"`
	PriceWideMax   float64 `yaml:"price_wide_max" mapstructure:"price_wide_max"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ESTATEPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "estatepulse.db")
	v.SetDefault("store.pool.max_conns", 10)
	v.SetDefault("store.pool.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.rate_per_sec", 2)
	v.SetDefault("import.remap_batch_size", 20)
	v.SetDefault("import.price_narrow_min", 10000)
	v.SetDefault("import.price_narrow_max", 99999999)
	v.SetDefault("import.price_wide_min", 500)
	v.SetDefault("import.price_wide_max", 999999999)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration is usable for the given mode.
// Modes map to command groups: "store" for anything touching the
// database, "assist" additionally needs Anthropic credentials, "serve"
// needs a listen port.
func (c *Config) Validate(mode string) error {
	var missing []string

	checkStore := func() {
		switch c.Store.Driver {
		case "sqlite", "postgres":
		default:
			missing = append(missing, "store.driver must be sqlite or postgres")
		}
		if c.Store.DatabaseURL == "" {
			missing = append(missing, "store.database_url is required")
		}
	}

	switch mode {
	case "store":
		checkStore()
	case "assist":
		checkStore()
		if c.Anthropic.Key == "" {
			missing = append(missing, "anthropic.key is required")
		}
	case "serve":
		checkStore()
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Import.RemapBatchSize < 1 || c.Import.RemapBatchSize > 100 {
		missing = append(missing, "import.remap_batch_size must be between 1 and 100")
	}

	if len(missing) > 0 {
		return eris.Errorf("config: invalid configuration: %s", strings.Join(missing, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
