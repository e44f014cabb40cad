package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Backend  BackendConfig
	Database DatabaseConfig
	Log      LogConfig
	UI       UIConfig
	Cache    CacheConfig
	Metrics  MetricsConfig
}

// BackendConfig holds the payments API settings.
type BackendConfig struct {
	URL      string
	TokenEnv string `mapstructure:"token_env"`
	Token    string
	Timeout  time.Duration
}

// DatabaseConfig holds sqlite settings for the review journal.
type DatabaseConfig struct {
	Path string
	// Retention is how long journal entries are kept. Zero keeps them forever.
	Retention time.Duration
}

// LogConfig holds log file settings. The terminal is owned by the UI so logs never go to stdout.
type LogConfig struct {
	Path  string
	Level string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DateFormat     string `mapstructure:"date_format"`
	CurrencySymbol string `mapstructure:"currency_symbol"`
	Timezone       string
	PickerDir      string `mapstructure:"picker_dir"`
}

// CacheConfig holds reference data cache settings.
type CacheConfig struct {
	ReferenceTTL time.Duration `mapstructure:"reference_ttl"`
}

// MetricsConfig holds the optional prometheus listener. Empty Addr disables it.
type MetricsConfig struct {
	Addr string
}

// Load reads configuration from file and env. Env var overrides use prefix AGENTWALLET_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("AGENTWALLET_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "agentwallet"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("AGENTWALLET")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil && !notFound(err) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

func notFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}

func setDefaults(v *viper.Viper) {
	home := os.Getenv("HOME")
	v.SetDefault("backend.url", "http://localhost:8000")
	v.SetDefault("backend.token_env", "AGENTWALLET_TOKEN")
	v.SetDefault("backend.token", "")
	v.SetDefault("backend.timeout", 10*time.Second)
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "agentwallet", "journal.db"))
	v.SetDefault("database.retention", 90*24*time.Hour)
	v.SetDefault("log.path", filepath.Join(home, ".local", "state", "agentwallet", "agentwallet.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("ui.date_format", "02 Jan 15:04")
	v.SetDefault("ui.currency_symbol", "")
	v.SetDefault("ui.timezone", "Local")
	v.SetDefault("ui.picker_dir", home)
	v.SetDefault("cache.reference_ttl", 5*time.Minute)
	v.SetDefault("metrics.addr", "")
}

// Path returns the file Save writes to.
func Path() string {
	if p := os.Getenv("AGENTWALLET_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "agentwallet", "config.toml")
}

// Save writes the provided config to disk, creating the config directory if needed.
// The token is never written; it belongs in the env or the secrets store.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("backend.url", cfg.Backend.URL)
	v.Set("backend.token_env", cfg.Backend.TokenEnv)
	v.Set("backend.timeout", cfg.Backend.Timeout.String())
	v.Set("database.path", cfg.Database.Path)
	v.Set("database.retention", cfg.Database.Retention.String())
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("ui.picker_dir", cfg.UI.PickerDir)
	v.Set("cache.reference_ttl", cfg.Cache.ReferenceTTL.String())
	v.Set("metrics.addr", cfg.Metrics.Addr)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
