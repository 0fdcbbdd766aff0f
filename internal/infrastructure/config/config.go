package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Payment       PaymentConfig       `mapstructure:"payment"`
	Gateway       GatewayConfig       `mapstructure:"gateway"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	InstanceID    string              `mapstructure:"instance_id"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig    `mapstructure:"cors"`

	// CallbackRateLimit caps gateway callback requests per client per minute.
	CallbackRateLimit int `mapstructure:"callback_rate_limit"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	ConnectRetries  uint          `mapstructure:"connect_retries"`
}

type RedisConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	DB                int           `mapstructure:"db"`
	Password          string        `mapstructure:"password"`
	ConnectRetries    uint          `mapstructure:"connect_retries"`
	ConnectRetryDelay time.Duration `mapstructure:"connect_retry_delay"`
}

// PaymentConfig controls the orchestrators.
type PaymentConfig struct {
	// CallbackBaseURL is the public address gateways redirect and notify to.
	CallbackBaseURL string        `mapstructure:"callback_base_url"`
	DefaultGateway  string        `mapstructure:"default_gateway"`
	LockEnabled     bool          `mapstructure:"lock_enabled"`
	LockTTL         time.Duration `mapstructure:"lock_ttl"`
	LockWait        time.Duration `mapstructure:"lock_wait"`
	EventStream     string        `mapstructure:"event_stream"`
}

// GatewayConfig holds breaker settings and the simulated gateway knobs.
type GatewayConfig struct {
	BreakerMaxRequests  uint32        `mapstructure:"breaker_max_requests"`
	BreakerInterval     time.Duration `mapstructure:"breaker_interval"`
	BreakerTimeout      time.Duration `mapstructure:"breaker_timeout"`
	BreakerMinRequests  uint32        `mapstructure:"breaker_min_requests"`
	BreakerFailureRatio float64       `mapstructure:"breaker_failure_ratio"`
	Mock                MockConfig    `mapstructure:"mock"`
}

type MockConfig struct {
	Names        []string      `mapstructure:"names"`
	Latency      time.Duration `mapstructure:"latency"`
	FailureRate  float64       `mapstructure:"failure_rate"`
	TimeoutRate  float64       `mapstructure:"timeout_rate"`
	RedirectRate float64       `mapstructure:"redirect_rate"`
	OffsiteURL   string        `mapstructure:"offsite_url"`
}

type ObservabilityConfig struct {
	LogLevel       string `mapstructure:"log_level"`
	ServiceName    string `mapstructure:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	EnableMetrics  bool   `mapstructure:"enable_metrics"`
	EnableTracing  bool   `mapstructure:"enable_tracing"`
}

func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// PAYMENTS_DATABASE_HOST maps to database.host
	v.SetEnvPrefix("PAYMENTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/payments")

	// Config file is optional
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
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.read_timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.write_timeout must be positive"))
	}
	if c.Server.CallbackRateLimit <= 0 {
		errs = append(errs, fmt.Errorf("server.callback_rate_limit must be positive"))
	}
	if c.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if c.Database.Port <= 0 {
		errs = append(errs, fmt.Errorf("database.port must be positive"))
	}
	if c.Redis.Port <= 0 {
		errs = append(errs, fmt.Errorf("redis.port must be positive"))
	}
	if u, err := url.Parse(c.Payment.CallbackBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("payment.callback_base_url must be an absolute URL, got %q", c.Payment.CallbackBaseURL))
	}
	if c.Payment.LockEnabled && c.Payment.LockTTL <= 0 {
		errs = append(errs, fmt.Errorf("payment.lock_ttl must be positive"))
	}
	if len(c.Gateway.Mock.Names) == 0 {
		errs = append(errs, fmt.Errorf("gateway.mock.names must list at least one gateway"))
	}
	for _, rate := range []struct {
		name  string
		value float64
	}{
		{"gateway.mock.failure_rate", c.Gateway.Mock.FailureRate},
		{"gateway.mock.timeout_rate", c.Gateway.Mock.TimeoutRate},
		{"gateway.mock.redirect_rate", c.Gateway.Mock.RedirectRate},
		{"gateway.breaker_failure_ratio", c.Gateway.BreakerFailureRatio},
	} {
		if rate.value < 0 || rate.value > 1 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 1, got %v", rate.name, rate.value))
		}
	}

	// Production environment checks
	env := os.Getenv("ENV")
	if env == "production" || env == "prod" {
		if c.Database.Password == "" {
			errs = append(errs, fmt.Errorf("database.password required in production"))
		}
		if strings.HasPrefix(c.Payment.CallbackBaseURL, "http://") {
			errs = append(errs, fmt.Errorf("payment.callback_base_url must use https in production"))
		}
	}

	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.callback_rate_limit", 60)
	v.SetDefault("server.cors.allowed_origins", []string{"*"})
	v.SetDefault("server.cors.allow_credentials", false)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "payments")
	v.SetDefault("database.database", "payments")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_connections", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.connect_retries", 5)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.connect_retries", 5)
	v.SetDefault("redis.connect_retry_delay", "1s")

	// Payment defaults
	v.SetDefault("payment.callback_base_url", "http://localhost:8080")
	v.SetDefault("payment.default_gateway", "mock")
	v.SetDefault("payment.lock_enabled", true)
	v.SetDefault("payment.lock_ttl", "30s")
	v.SetDefault("payment.lock_wait", "5s")
	v.SetDefault("payment.event_stream", "payments:events")

	// Gateway defaults
	v.SetDefault("gateway.breaker_max_requests", 10)
	v.SetDefault("gateway.breaker_interval", "60s")
	v.SetDefault("gateway.breaker_timeout", "30s")
	v.SetDefault("gateway.breaker_min_requests", 10)
	v.SetDefault("gateway.breaker_failure_ratio", 0.6)
	v.SetDefault("gateway.mock.names", []string{"mock"})
	v.SetDefault("gateway.mock.latency", "50ms")
	v.SetDefault("gateway.mock.failure_rate", 0.0)
	v.SetDefault("gateway.mock.timeout_rate", 0.0)
	v.SetDefault("gateway.mock.redirect_rate", 0.0)
	v.SetDefault("gateway.mock.offsite_url", "https://offsite.example.com/authorize")

	// Observability defaults
	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.service_name", "payment-orchestrator")
	v.SetDefault("observability.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("observability.enable_tracing", true)

	v.SetDefault("instance_id", "orchestrator-1")
}

func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// DatabaseURL is the URL form used by the migrate command.
func (c *DatabaseConfig) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.Database,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
