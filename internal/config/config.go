package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Addr         string        `mapstructure:"addr"`
		Mode         string        `mapstructure:"mode"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
		BasePath     string        `mapstructure:"base_path"`
	} `mapstructure:"server"`

	Redis struct {
		URL      string `mapstructure:"url"`
		PoolSize int    `mapstructure:"pool_size"`
	} `mapstructure:"redis"`

	Hub struct {
		APIURL          string        `mapstructure:"api_url"`
		PublicURL       string        `mapstructure:"public_url"`
		APIToken        string        `mapstructure:"api_token"`
		SessionLifetime time.Duration `mapstructure:"session_lifetime"`
	} `mapstructure:"hub"`

	Auth struct {
		Disabled bool          `mapstructure:"disabled"`
		DevUser  string        `mapstructure:"dev_user"`
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"auth"`

	Governance struct {
		BaseURL  string        `mapstructure:"base_url"`
		Token    string        `mapstructure:"token"`
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"governance"`

	Observability struct {
		TraceEnabled       bool   `mapstructure:"trace_enabled"`
		TracingEndpointURL string `mapstructure:"tracing_endpoint_url"`
		LogLevel           string `mapstructure:"log_level"`
		Format             string `mapstructure:"log_format"`
		LogSource          bool   `mapstructure:"log_source"`
	} `mapstructure:"observability"`
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	setDefaults(v)
	bindHubEnv(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("ACCESS_REQUEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// The service is usually configured entirely from the hub
		// environment, so a missing config file is not an error.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if env := os.Getenv("APP_ENV"); env != "" {
		v.SetConfigName(fmt.Sprintf("config.%s", env))
		if err := v.MergeInConfig(); err != nil {
			slog.Info("No environment-specific config (optional)", slog.String("env", env))
		} else {
			slog.Info("Environment-specific config loaded", slog.String("env", env))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		slog.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	return cfg
}

func (c *Config) Validate() error {
	if c.Governance.BaseURL == "" {
		return errors.New("governance.base_url is required")
	}
	if !c.Auth.Disabled && c.Hub.APIURL == "" {
		return errors.New("hub.api_url is required when auth is enabled")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8799")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "20s")
	v.SetDefault("server.base_path", "/")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("hub.api_url", "")
	v.SetDefault("hub.public_url", "")
	v.SetDefault("hub.api_token", "")
	// Mirror of the hub's cookie max age, 14 days by default.
	v.SetDefault("hub.session_lifetime", "336h")

	v.SetDefault("auth.disabled", false)
	v.SetDefault("auth.dev_user", "")
	v.SetDefault("auth.cache_ttl", "5m")

	v.SetDefault("governance.base_url", "")
	v.SetDefault("governance.token", "")
	v.SetDefault("governance.cache_ttl", "1m")

	v.SetDefault("observability.trace_enabled", false)
	v.SetDefault("observability.tracing_endpoint_url", "")
	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.log_format", "json")
	v.SetDefault("observability.log_source", false)
}

// bindHubEnv wires the standard hub environment a single-user server is
// spawned with as a fallback behind the ACCESS_REQUEST_* variables.
func bindHubEnv(v *viper.Viper) {
	_ = v.BindEnv("server.base_path", "ACCESS_REQUEST_SERVER_BASE_PATH", "JUPYTERHUB_SERVICE_PREFIX")
	_ = v.BindEnv("hub.api_url", "ACCESS_REQUEST_HUB_API_URL", "JUPYTERHUB_API_URL")
	_ = v.BindEnv("hub.public_url", "ACCESS_REQUEST_HUB_PUBLIC_URL", "JUPYTERHUB_PUBLIC_URL")
	_ = v.BindEnv("hub.api_token", "ACCESS_REQUEST_HUB_API_TOKEN", "JUPYTERHUB_API_TOKEN")
	_ = v.BindEnv("auth.dev_user", "ACCESS_REQUEST_AUTH_DEV_USER", "JUPYTERHUB_USER")
	_ = v.BindEnv("governance.token", "ACCESS_REQUEST_GOVERNANCE_TOKEN", "BERDL_AUTH_TOKEN")
}
