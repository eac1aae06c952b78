// Package config provides Viper-based configuration management for articlehub
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "ARTICLEHUB"

// api.base_url is read from ARTICLEHUB_API_BASE_URL.
var envKeyReplacer = strings.NewReplacer(".", "_")

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Feed    FeedConfig    `mapstructure:"feed"`
	Profile ProfileConfig `mapstructure:"profile"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
	Diag    DiagConfig    `mapstructure:"diag"`
	MockAPI MockAPIConfig `mapstructure:"mockapi"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type FeedConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// ProfileConfig sets how long the "saved" status stays up.
type ProfileConfig struct {
	SavedHold time.Duration `mapstructure:"saved_hold"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type OutputConfig struct {
	Colors bool   `mapstructure:"colors"`
	Color  string `mapstructure:"color"`
}

// DiagConfig enables the metrics server when Addr is set.
type DiagConfig struct {
	Addr string `mapstructure:"addr"`
}

type MockAPIConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load reads configuration from file and environment variables. v may carry
// flag bindings; nil starts from a fresh instance.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".articlehub")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/articlehub")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:3333")
	v.SetDefault("api.timeout", 10*time.Second)

	v.SetDefault("feed.page_size", 10)
	v.SetDefault("profile.saved_hold", 2*time.Second)

	v.SetDefault("logging.level", "info")

	v.SetDefault("output.colors", true)
	v.SetDefault("output.color", "auto")

	v.SetDefault("diag.addr", "")
	v.SetDefault("mockapi.addr", ":3333")
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		API:     APIConfig{BaseURL: "http://localhost:3333", Timeout: 10 * time.Second},
		Feed:    FeedConfig{PageSize: 10},
		Profile: ProfileConfig{SavedHold: 2 * time.Second},
		Logging: LoggingConfig{Level: "info"},
		Output:  OutputConfig{Colors: true, Color: "auto"},
		MockAPI: MockAPIConfig{Addr: ":3333"},
	}
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not an absolute URL", cfg.API.BaseURL)
	}
	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", cfg.API.Timeout)
	}
	if cfg.Feed.PageSize < 1 {
		return fmt.Errorf("feed.page_size must be at least 1, got %d", cfg.Feed.PageSize)
	}
	if cfg.Profile.SavedHold < 0 {
		return fmt.Errorf("profile.saved_hold must not be negative, got %s", cfg.Profile.SavedHold)
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q: must be debug, info, warn, or error", cfg.Logging.Level)
	}

	return nil
}
