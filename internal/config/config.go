// Package config loads runtime settings from defaults, an optional YAML file
// and HELIX_ prefixed environment variables, in increasing precedence.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/theplant/helix"
)

const EnvPrefix = "HELIX"

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Query    QueryConfig    `mapstructure:"query"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"`
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type QueryConfig struct {
	DefaultSize int `mapstructure:"default_size"`
	MaxSize     int `mapstructure:"max_size"`
	MaxFilters  int `mapstructure:"max_filters"`
}

func (c QueryConfig) Limits() helix.Limits {
	return helix.Limits{
		DefaultSize: c.DefaultSize,
		MaxSize:     c.MaxSize,
		MaxFilters:  c.MaxFilters,
	}
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var defaults = map[string]any{
	"server.addr":             ":8080",
	"server.read_timeout":     "15s",
	"server.write_timeout":    "15s",
	"server.shutdown_timeout": "30s",
	"server.cors_origins":     []string{"*"},
	"database.driver":         DriverPostgres,
	"database.dsn":            "host=localhost user=postgres password=postgres dbname=helix port=5432 sslmode=disable",
	"database.auto_migrate":   false,
	"query.default_size":      helix.DefaultLimits.DefaultSize,
	"query.max_size":          helix.DefaultLimits.MaxSize,
	"query.max_filters":       helix.DefaultLimits.MaxFilters,
	"log.level":               "info",
	"log.format":              "text",
}

// Load reads the configuration. An empty path looks for an optional
// helix.yaml in the working directory; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	} else {
		v.SetConfigName("helix")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return errors.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	if c.Query.MaxSize > 0 && c.Query.DefaultSize > c.Query.MaxSize {
		return errors.Errorf("query.default_size %d exceeds query.max_size %d", c.Query.DefaultSize, c.Query.MaxSize)
	}
	return nil
}
