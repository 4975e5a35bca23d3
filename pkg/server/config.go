package server

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/docker/go-units"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/ustclug/ytail/pkg/s3seek"
	"github.com/ustclug/ytail/pkg/tail"
)

type AppConfig struct {
	Debug           bool     `mapstructure:"debug" validate:"-"`
	DbURL           string   `mapstructure:"db_url" validate:"required"`
	SourceConfigDir []string `mapstructure:"source_config_dir" validate:"required,min=1"`
	LogDir          string   `mapstructure:"log_dir" validate:"-"`
	LogLevel        string   `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	ListenAddr      string   `mapstructure:"listen_addr" validate:"omitempty,hostname_port"`
	RefreshInterval string   `mapstructure:"refresh_interval" validate:"omitempty,cron"`
	// MaxTailMemory is a size such as "64MiB".
	MaxTailMemory   string `mapstructure:"max_tail_memory" validate:"-"`
	LineLengthGuess int    `mapstructure:"line_length_guess" validate:"gte=0"`

	S3Endpoint  string `mapstructure:"s3_endpoint" validate:"omitempty,url"`
	S3Region    string `mapstructure:"s3_region" validate:"-"`
	S3AccessKey string `mapstructure:"s3_access_key" validate:"-"`
	S3SecretKey string `mapstructure:"s3_secret_key" validate:"required_with=S3AccessKey"`
}

type Config struct {
	Debug           bool
	DbURL           string
	SourceConfigDir []string
	// LogDir holds ytaild.log. Logs go to stderr when empty.
	LogDir          string
	LogLevel        slog.Level
	ListenAddr      string
	RefreshInterval string
	// MaxTailMemory bounds the bytes held by a single tail request. Zero means
	// unlimited.
	MaxTailMemory   int64
	LineLengthGuess int
	S3              s3seek.ClientOptions
}

var DefaultConfig = Config{
	DbURL:           "/var/lib/ytail/ytaild.db",
	SourceConfigDir: []string{"/etc/ytail/sources"},
	LogLevel:        slog.LevelInfo,
	ListenAddr:      "127.0.0.1:9998",
	RefreshInterval: "@every 5m",
	MaxTailMemory:   64 * units.MiB,
	LineLengthGuess: tail.DefaultLineLengthGuess,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", DefaultConfig.Debug)
	v.SetDefault("db_url", DefaultConfig.DbURL)
	v.SetDefault("source_config_dir", DefaultConfig.SourceConfigDir)
	v.SetDefault("log_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("listen_addr", DefaultConfig.ListenAddr)
	v.SetDefault("refresh_interval", DefaultConfig.RefreshInterval)
	v.SetDefault("max_tail_memory", units.BytesSize(float64(DefaultConfig.MaxTailMemory)))
	v.SetDefault("line_length_guess", DefaultConfig.LineLengthGuess)
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_region", "")
	v.SetDefault("s3_access_key", "")
	v.SetDefault("s3_secret_key", "")
}

// LoadConfig reads the config file at configPath. Every key can be
// overridden by an environment variable such as YTAILD_LISTEN_ADDR.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("ytaild")
	v.AutomaticEnv()
	if len(configPath) > 0 {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	appCfg := new(AppConfig)
	if err := v.Unmarshal(appCfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(appCfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	cfg := Config{
		Debug:           appCfg.Debug,
		DbURL:           appCfg.DbURL,
		SourceConfigDir: appCfg.SourceConfigDir,
		LogDir:          appCfg.LogDir,
		ListenAddr:      appCfg.ListenAddr,
		RefreshInterval: appCfg.RefreshInterval,
		LineLengthGuess: appCfg.LineLengthGuess,
		S3: s3seek.ClientOptions{
			Endpoint:  appCfg.S3Endpoint,
			Region:    appCfg.S3Region,
			AccessKey: appCfg.S3AccessKey,
			SecretKey: appCfg.S3SecretKey,
		},
	}
	if len(cfg.RefreshInterval) == 0 {
		cfg.RefreshInterval = DefaultConfig.RefreshInterval
	}
	if cfg.LineLengthGuess == 0 {
		cfg.LineLengthGuess = tail.DefaultLineLengthGuess
	}

	if len(appCfg.MaxTailMemory) > 0 {
		limit, err := units.RAMInBytes(appCfg.MaxTailMemory)
		if err != nil {
			return nil, fmt.Errorf("invalid max_tail_memory: %w", err)
		}
		if limit < 0 {
			return nil, fmt.Errorf("invalid max_tail_memory: %q", appCfg.MaxTailMemory)
		}
		cfg.MaxTailMemory = limit
	}

	switch strings.ToLower(appCfg.LogLevel) {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	case "info":
		fallthrough
	default:
		cfg.LogLevel = slog.LevelInfo
	}

	return &cfg, nil
}

func (c *Config) s3Enabled() bool {
	return len(c.S3.Endpoint) > 0 || len(c.S3.Region) > 0
}
