// Package config loads budeshi settings from budeshi.yaml, BUDESHI_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/budeshi/budeshi/internal/intelligence"
	"github.com/budeshi/budeshi/internal/llm"
	"github.com/budeshi/budeshi/internal/money"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	AppName   = "budeshi"
	EnvPrefix = "BUDESHI"
)

// Config is the full application configuration.
type Config struct {
	Store      StoreConfig      `mapstructure:"store"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Resolution ResolutionConfig `mapstructure:"resolution"`
	Money      MoneyConfig      `mapstructure:"money"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
}

type StoreConfig struct {
	Backend     string `mapstructure:"backend" validate:"oneof=memory sqlite remote"`
	DBPath      string `mapstructure:"db_path" validate:"required_if=Backend sqlite"`
	RemoteURL   string `mapstructure:"remote_url" validate:"required_if=Backend remote"`
	Seed        bool   `mapstructure:"seed"`         // load the embedded dataset into an empty store
	DatasetPath string `mapstructure:"dataset_path"` // YAML file used instead of the embedded dataset
}

type LLMConfig struct {
	Endpoint    string  `mapstructure:"endpoint" validate:"required,url"`
	Model       string  `mapstructure:"model" validate:"required"`
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `mapstructure:"max_tokens" validate:"gt=0"`
	TimeoutMs   int     `mapstructure:"timeout_ms" validate:"gte=0"`
	APIKey      string  `mapstructure:"api_key"`
	LogCalls    bool    `mapstructure:"log_calls"`
}

type ResolutionConfig struct {
	Mode string `mapstructure:"mode" validate:"oneof=auto local external"`
}

type MoneyConfig struct {
	Currency string `mapstructure:"currency" validate:"len=3"`
	Locale   string `mapstructure:"locale" validate:"required"`
}

type ServerConfig struct {
	Addr              string `mapstructure:"addr" validate:"required"`
	ShutdownTimeoutMs int    `mapstructure:"shutdown_timeout_ms" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"store":      "store.backend",
	"db":         "store.db_path",
	"remote-url": "store.remote_url",
	"dataset":    "store.dataset_path",
	"mode":       "resolution.mode",
	"log-level":  "log.level",
	"log-format": "log.format",
	"addr":       "server.addr",
}

// AddFlags registers the flags that override configuration keys. Unset
// flags leave the file, environment and default values alone.
func AddFlags(fs *pflag.FlagSet) {
	fs.String("store", "", "project store backend: memory, sqlite or remote")
	fs.String("db", "", "SQLite database path")
	fs.String("remote-url", "", "base URL of a budeshi API to read projects from")
	fs.String("dataset", "", "YAML dataset loaded into an empty store instead of the built-in one")
	fs.String("mode", "", "resolution mode: auto, local or external")
	fs.String("log-level", "", "log level: debug, info, warn or error")
	fs.String("log-format", "", "log format: text or json")
}

// DefaultDBPath is ~/.budeshi/budeshi.db, or ./budeshi.db without a home.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName + ".db"
	}
	return filepath.Join(home, "."+AppName, AppName+".db")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("store.db_path", DefaultDBPath())
	v.SetDefault("store.remote_url", "")
	v.SetDefault("store.seed", true)
	v.SetDefault("store.dataset_path", "")

	v.SetDefault("llm.endpoint", llm.DefaultEndpoint)
	v.SetDefault("llm.model", llm.DefaultModel)
	v.SetDefault("llm.temperature", llm.DefaultTemperature)
	v.SetDefault("llm.max_tokens", llm.DefaultMaxTokens)
	v.SetDefault("llm.timeout_ms", 0)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.log_calls", false)

	v.SetDefault("resolution.mode", string(intelligence.ModeAuto))

	v.SetDefault("money.currency", money.DefaultCurrency)
	v.SetDefault("money.locale", money.DefaultLocale)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout_ms", 5000)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration. An empty path searches ./budeshi.yaml and
// ~/.budeshi/budeshi.yaml and tolerates neither existing; an explicit path
// must exist. Changed flags in flags override everything else.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, "."+AppName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %q: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	cfg.Resolution.Mode = strings.ToLower(strings.TrimSpace(cfg.Resolution.Mode))
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every section.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Completion converts the llm section for the completion client.
func (c *Config) Completion() llm.Config {
	return llm.Config{
		Endpoint:    c.LLM.Endpoint,
		Model:       c.LLM.Model,
		Temperature: c.LLM.Temperature,
		MaxTokens:   c.LLM.MaxTokens,
		TimeoutMs:   c.LLM.TimeoutMs,
		LogCalls:    c.LLM.LogCalls,
	}
}

func (c *Config) Mode() (intelligence.Mode, error) {
	return intelligence.ParseMode(c.Resolution.Mode)
}

func (c *Config) Formatter() (*money.Formatter, error) {
	return money.NewFormatter(c.Money.Currency, c.Money.Locale)
}
