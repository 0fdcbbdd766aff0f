package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,

			CallbackRateLimit: 60,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "test",
			Password: "test",
			Database: "test_db",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
		},
		Payment: PaymentConfig{
			CallbackBaseURL: "https://shop.example.com",
			LockEnabled:     true,
			LockTTL:         30 * time.Second,
		},
		Gateway: GatewayConfig{
			BreakerFailureRatio: 0.6,
			Mock:                MockConfig{Names: []string{"mock"}},
		},
	}
}

func TestConfig_Validate_Success(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_InvalidServerPort(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"port too low", 0},
		{"port negative", -1},
		{"port too high", 99999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.Port = tt.port

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "server.port")
		})
	}
}

func TestConfig_Validate_CallbackBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "/gateway"} {
		t.Run(raw, func(t *testing.T) {
			cfg := validConfig()
			cfg.Payment.CallbackBaseURL = raw

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "payment.callback_base_url")
		})
	}
}

func TestConfig_Validate_LockTTLOnlyWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.Payment.LockTTL = 0
	assert.ErrorContains(t, cfg.Validate(), "payment.lock_ttl")

	cfg.Payment.LockEnabled = false
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_Rates(t *testing.T) {
	cfg := validConfig()
	cfg.Gateway.Mock.FailureRate = 1.5
	cfg.Gateway.Mock.RedirectRate = -0.1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway.mock.failure_rate")
	assert.Contains(t, err.Error(), "gateway.mock.redirect_rate")
}

func TestConfig_Validate_CallbackRateLimit(t *testing.T) {
	cfg := validConfig()
	cfg.Server.CallbackRateLimit = 0
	assert.ErrorContains(t, cfg.Validate(), "server.callback_rate_limit")
}

func TestConfig_Validate_NoGateways(t *testing.T) {
	cfg := validConfig()
	cfg.Gateway.Mock.Names = nil
	assert.ErrorContains(t, cfg.Validate(), "gateway.mock.names")
}

func TestConfig_Validate_Production(t *testing.T) {
	t.Setenv("ENV", "production")
	cfg := validConfig()
	cfg.Database.Password = ""
	cfg.Payment.CallbackBaseURL = "http://shop.example.com"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.password")
	assert.Contains(t, err.Error(), "https")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 60, cfg.Server.CallbackRateLimit)
	assert.Equal(t, "http://localhost:8080", cfg.Payment.CallbackBaseURL)
	assert.Equal(t, "payments:events", cfg.Payment.EventStream)
	assert.Equal(t, []string{"mock"}, cfg.Gateway.Mock.Names)
	assert.Equal(t, 50*time.Millisecond, cfg.Gateway.Mock.Latency)
	assert.Equal(t, 0.6, cfg.Gateway.BreakerFailureRatio)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PAYMENTS_SERVER_PORT", "9090")
	t.Setenv("PAYMENTS_PAYMENT_CALLBACK_BASE_URL", "https://pay.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://pay.example.com", cfg.Payment.CallbackBaseURL)
}

func TestDatabaseConfig_URLs(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", Database: "payments", SSLMode: "disable"}

	assert.Equal(t, "host=db port=5432 user=u password=p@ss dbname=payments sslmode=disable", c.DatabaseDSN())
	assert.Equal(t, "postgres://u:p%40ss@db:5432/payments?sslmode=disable", c.DatabaseURL())
}

func TestRedisConfig_Addr(t *testing.T) {
	c := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", c.RedisAddr())
}
