// Package config loads find-my-fav settings from defaults, a YAML file, a
// .env file, FINDMYFAV_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FINDMYFAV"

// DefaultFileName is the config file looked up in the working directory
// when none is given.
const DefaultFileName = "findmyfav.yaml"

// Config is the full application configuration.
type Config struct {
	DB      string        `mapstructure:"db" validate:"required"`
	Seed    uint64        `mapstructure:"seed"` // 0 = unseeded pairings
	Export  ExportConfig  `mapstructure:"export"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Scan    ScanConfig    `mapstructure:"scan"`
}

// ExportConfig controls ranking thresholds and the export destination.
type ExportConfig struct {
	Threshold   float64  `mapstructure:"threshold" validate:"min=0,max=100"`
	Dir         string   `mapstructure:"dir"`
	Concurrency int      `mapstructure:"concurrency" validate:"min=1,max=64"`
	S3          S3Config `mapstructure:"s3"`
}

// S3Config selects an S3 export destination. Empty Bucket means local.
type S3Config struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
	Region string `mapstructure:"region"`
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}

// ScanConfig controls catalog population.
type ScanConfig struct {
	Recursive bool `mapstructure:"recursive"`
}

// Options tells Load where to look.
type Options struct {
	// File is an explicit config file. When empty, DefaultFileName in the
	// working directory is used if present.
	File string

	// EnvFile is an explicit dotenv file. When empty, ".env" in the working
	// directory is loaded if present. Variables already set in the
	// environment are never overwritten.
	EnvFile string

	// Flags holds command-line flags; FlagKeys maps config keys to flag
	// names. Only flags the user actually set override lower layers.
	Flags    *pflag.FlagSet
	FlagKeys map[string]string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db", "findmyfav.db")
	v.SetDefault("seed", 0)
	v.SetDefault("export.threshold", 85.0)
	v.SetDefault("export.dir", filepath.Join("~", "Pictures", "Favourites"))
	v.SetDefault("export.concurrency", 4)
	v.SetDefault("export.s3.bucket", "")
	v.SetDefault("export.s3.prefix", "")
	v.SetDefault("export.s3.region", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("scan.recursive", false)
}

// Load builds the configuration and validates it.
func Load(opts Options) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, opts.File); err != nil {
		return nil, err
	}

	if opts.Flags != nil {
		for key, name := range opts.FlagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	dir, err := ExpandHome(cfg.Export.Dir)
	if err != nil {
		return nil, err
	}
	cfg.Export.Dir = dir

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags of cfg.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func loadEnvFile(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(strings.TrimSuffix(DefaultFileName, filepath.Ext(DefaultFileName)))
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
