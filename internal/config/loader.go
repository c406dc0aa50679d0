package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/turtacn/crp/pkg/constants"
	"github.com/turtacn/crp/pkg/logger"
)

// EnvPrefix prefixes every environment variable read by the loader.
const EnvPrefix = "CRP"

// LegacyBackendURLEnv is the override the web client honoured; it is still accepted.
const LegacyBackendURLEnv = "REACT_APP_BACKEND_URL"

// Loader reads configuration from defaults, a YAML file and the environment.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader. When path is empty the file is searched as
// config.yaml in /etc/crp/ and the working directory; a missing file is not an error.
func NewLoader(path string) *Loader {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/crp/")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The prefixed variable wins over the legacy one when both are set.
	_ = v.BindEnv("predictor.backend_url", EnvPrefix+"_PREDICTOR_BACKEND_URL", LegacyBackendURLEnv)

	return &Loader{v: v}
}

// Load reads and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Watch re-reads the config file whenever it changes and hands the new,
// validated config to onChange. Invalid edits are logged and ignored.
func (l *Loader) Watch(log logger.Logger, onChange func(*Config)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}

	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		ctx := context.Background()
		cfg, err := l.decode()
		if err != nil {
			log.Error(ctx, "Ignoring invalid config change", err, logger.Fields{"file": e.Name})
			return
		}
		log.Info(ctx, "Config reloaded", logger.Fields{"file": e.Name, "op": e.Op.String()})
		onChange(cfg)
	})
	l.v.WatchConfig()
}

// LoadConfig is a shortcut for NewLoader(path).Load().
func LoadConfig(path string) (*Config, error) {
	return NewLoader(path).Load()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "0s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.rate_limit_rps", 5)
	v.SetDefault("server.rate_limit_burst", 10)

	v.SetDefault("predictor.backend_url", constants.DefaultBackendURL)
	v.SetDefault("predictor.predict_path", constants.DefaultPredictPath)
	v.SetDefault("predictor.timeout", "0s")

	v.SetDefault("session.backend", string(constants.SessionBackendMemory))
	v.SetDefault("session.ttl", constants.DefaultSessionTTL.String())
	v.SetDefault("session.cookie_name", constants.DefaultSessionCookieName)
	v.SetDefault("session.cookie_secure", false)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.master_name", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")

	v.SetDefault("events.enabled", false)
	v.SetDefault("events.brokers", []string{})
	v.SetDefault("events.topic", "crp.assessments")
	v.SetDefault("events.batch_timeout", "100ms")
	v.SetDefault("events.write_timeout", "5s")
	v.SetDefault("events.required_acks", 1)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.jaeger_endpoint", "")
	v.SetDefault("tracing.service_name", constants.ServiceName)
	v.SetDefault("tracing.environment", "development")
	v.SetDefault("tracing.sampling_rate", 1.0)
}

//Personal.AI order the ending
