package config

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultOstrichPort is the admin port used when none is configured.
const DefaultOstrichPort = 9999

type Config struct {
	OstrichPort int    `mapstructure:"ostrich_port"`
	LogLevel    string `mapstructure:"log_level"`
	Monitoring  struct {
		PrometheusEnabled bool `mapstructure:"prometheus_enabled"`
	} `mapstructure:"monitoring"`
	Stats struct {
		Sink     string `mapstructure:"sink"`     // "noop" or "redis"
		Instance string `mapstructure:"instance"` // defaults to the hostname
		Redis    struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"stats"`
}

// ServiceConfig is the subset of the configuration the admin service reads.
type ServiceConfig struct {
	Port              int
	PrometheusEnabled bool
}

// ServiceConfig returns the admin service settings.
func (c *Config) ServiceConfig() ServiceConfig {
	return ServiceConfig{
		Port:              c.OstrichPort,
		PrometheusEnabled: c.Monitoring.PrometheusEnabled,
	}
}

// LoadConfig reads config.yaml from the working directory or ./config and
// overlays SECOR_* environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvPrefix("SECOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = v.BindEnv("log_level", "LOG_LEVEL")

	// Set defaults
	v.SetDefault("ostrich_port", DefaultOstrichPort)
	v.SetDefault("log_level", "info")
	v.SetDefault("monitoring.prometheus_enabled", false)
	v.SetDefault("stats.sink", "noop")
	v.SetDefault("stats.instance", "")
	v.SetDefault("stats.redis.address", "")
	v.SetDefault("stats.redis.password", "")
	v.SetDefault("stats.redis.db", 0)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return unmarshal(v)
}

// LoadConfigFrom reads a YAML document from r. Defaults and environment
// variables are not applied.
func LoadConfigFrom(r io.Reader) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("ostrich_port", DefaultOstrichPort)
	v.SetDefault("stats.sink", "noop")
	if err := v.ReadConfig(r); err != nil {
		return nil, err
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.Stats.Instance == "" {
		if host, err := os.Hostname(); err == nil {
			config.Stats.Instance = host
		}
	}
	return &config, nil
}

// NewLogger builds the console logger at the configured level. An invalid
// level falls back to info and is reported as a warning.
func NewLogger(out io.Writer, levelName string) zerolog.Logger {
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:     out,
		NoColor: false,
	}).With().Timestamp().Logger()

	level := zerolog.InfoLevel // default
	if levelName != "" {
		if parsedLevel, err := zerolog.ParseLevel(levelName); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", levelName).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)
	logger.Info().Str("level", level.String()).Msg("Logging configured")
	return logger
}
