package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configs/config.yaml (optional) and APP_* environment
// variables on top of the defaults.
func Load() (*Config, error) {
	return load(viper.New(), "./configs", ".", "/app/configs")
}

func load(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	v.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	v.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	v.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	v.BindEnv("nats.url", "NATS_URL", "APP_NATS_URL")
	v.BindEnv("rabbitmq.url", "RABBITMQ_URL", "APP_RABBITMQ_URL")
	v.BindEnv("classifier.url", "CLASSIFIER_URL", "APP_CLASSIFIER_URL")
	v.BindEnv("classifier.api_key", "CLASSIFIER_API_KEY", "APP_CLASSIFIER_API_KEY")
	v.BindEnv("vault.token", "VAULT_TOKEN", "APP_VAULT_TOKEN")
	v.BindEnv("app.environment", "APP_ENVIRONMENT")
	v.BindEnv("logging.level", "LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
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

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "symptom-assistant")
	v.SetDefault("app.version", "v1.0.0")
	v.SetDefault("app.environment", "development")

	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.wait_timeout", 10*time.Second)
	v.SetDefault("http.rate_limit", 120)
	v.SetDefault("http.rate_window", time.Minute)

	v.SetDefault("cors.enabled", true)
	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("classifier.mode", "keyword")
	v.SetDefault("classifier.timeout", 10*time.Second)
	v.SetDefault("classifier.latency", 1500*time.Millisecond)
	v.SetDefault("classifier.cache_ttl", 10*time.Minute)
	v.SetDefault("classifier.circuit_breaker.max_requests", 3)
	v.SetDefault("classifier.circuit_breaker.interval", time.Minute)
	v.SetDefault("classifier.circuit_breaker.timeout", 30*time.Second)
	v.SetDefault("classifier.circuit_breaker.failure_threshold", 0.6)
	v.SetDefault("classifier.circuit_breaker.min_requests", 3)

	v.SetDefault("recorder.backend", "log")
	v.SetDefault("recorder.timeout", 5*time.Second)
	v.SetDefault("recorder.subject", "consultations.recorded")

	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", 2*time.Second)
	v.SetDefault("nats.timeout", 5*time.Second)

	v.SetDefault("session.idle_timeout", 30*time.Minute)
	v.SetDefault("session.default_language", "en")

	v.SetDefault("opentelemetry.enabled", false)
	v.SetDefault("opentelemetry.service_name", "symptom-assistant")
	v.SetDefault("opentelemetry.jaeger.endpoint", "http://jaeger:14268/api/traces")

	v.SetDefault("prometheus.enabled", true)
	v.SetDefault("prometheus.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("vault.database_path", "secret/data/database")
	v.SetDefault("vault.classifier_path", "secret/data/classifier")
}

// Validate checks the combinations that would only fail later at wiring time.
func (c *Config) Validate() error {
	switch c.Classifier.Mode {
	case "keyword":
	case "http":
		if c.Classifier.URL == "" {
			return errors.New("classifier.url is required in http mode")
		}
	default:
		return fmt.Errorf("unknown classifier.mode %q", c.Classifier.Mode)
	}

	switch c.Recorder.Backend {
	case "log":
	case "postgres":
		if c.Database.URL == "" && !c.Vault.Enabled {
			return errors.New("database.url is required for the postgres recorder")
		}
	case "nats":
		if c.NATS.URL == "" {
			return errors.New("nats.url is required for the nats recorder")
		}
	case "rabbitmq":
		if c.RabbitMQ.URL == "" {
			return errors.New("rabbitmq.url is required for the rabbitmq recorder")
		}
	default:
		return fmt.Errorf("unknown recorder.backend %q", c.Recorder.Backend)
	}

	return nil
}
