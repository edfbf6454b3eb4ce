package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all the settings for the conversion service.
type Config struct {
	ListenAddr string `mapstructure:"listen_addr"`
	LogLevel   string `mapstructure:"log_level"`

	// AuthSecret, when non-empty, must match the request's bearer token
	// before any core logic runs.
	AuthSecret string `mapstructure:"auth_secret"`

	TempDir string   `mapstructure:"temp_dir"`
	BinDirs []string `mapstructure:"bin_dirs"`

	DownloadCapBytes int64 `mapstructure:"download_cap_bytes"`

	TotalBudgetMS  int `mapstructure:"total_budget_ms"`
	SafetyMarginMS int `mapstructure:"safety_margin_ms"`
	MinDownloadMS  int `mapstructure:"min_download_ms"`
	ProbeTimeoutMS int `mapstructure:"probe_timeout_ms"`
	AttemptCapMS   int `mapstructure:"attempt_cap_ms"`
	MinAttemptMS   int `mapstructure:"min_attempt_ms"`
}

// LoadConfig initializes Viper and merges all config sources.
func LoadConfig(path string) (*Config, error) {
	viper.SetDefault("listen_addr", ":8080")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("auth_secret", "")
	viper.SetDefault("temp_dir", "/tmp")
	viper.SetDefault("bin_dirs", []string{})
	viper.SetDefault("download_cap_bytes", int64(80*1024*1024))
	viper.SetDefault("total_budget_ms", 25000)
	viper.SetDefault("safety_margin_ms", 1500)
	viper.SetDefault("min_download_ms", 2000)
	viper.SetDefault("probe_timeout_ms", 3000)
	viper.SetDefault("attempt_cap_ms", 10000)
	viper.SetDefault("min_attempt_ms", 2500)

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional; env vars may carry everything.
	}

	viper.SetEnvPrefix("CONV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	err := viper.Unmarshal(&cfg)
	return &cfg, err
}

// Duration helpers keep the millisecond knobs in one place.

func (c *Config) TotalBudget() time.Duration {
	return time.Duration(c.TotalBudgetMS) * time.Millisecond
}
func (c *Config) SafetyMargin() time.Duration {
	return time.Duration(c.SafetyMarginMS) * time.Millisecond
}
func (c *Config) MinDownload() time.Duration {
	return time.Duration(c.MinDownloadMS) * time.Millisecond
}
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutMS) * time.Millisecond
}
func (c *Config) AttemptCap() time.Duration { return time.Duration(c.AttemptCapMS) * time.Millisecond }
func (c *Config) MinAttempt() time.Duration { return time.Duration(c.MinAttemptMS) * time.Millisecond }
