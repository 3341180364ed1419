package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		JWTSecret:             "secret",
		BcryptCost:            10,
		RoundingMode:          "half_even",
		CreditAllocationOrder: "oldest_first",
		StoreTimezone:         "America/Sao_Paulo",
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cases := map[string]func(c *Config){
		"missing secret":   func(c *Config) { c.JWTSecret = "" },
		"bcrypt cost":      func(c *Config) { c.BcryptCost = 2 },
		"rounding mode":    func(c *Config) { c.RoundingMode = "ceiling" },
		"allocation order": func(c *Config) { c.CreditAllocationOrder = "largest_first" },
		"timezone":         func(c *Config) { c.StoreTimezone = "Mars/Olympus" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("LOCK_TIMEOUT_MS", "1500")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, 1500, cfg.LockTimeoutMS)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers())
	assert.Equal(t, []string{"https://admin.example.com"}, cfg.Origins())
	assert.Equal(t, 20, cfg.LoginRateLimit)
	assert.Equal(t, "America/Sao_Paulo", cfg.Location().String())
}
