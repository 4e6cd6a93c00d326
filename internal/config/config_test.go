package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_FromEnv(t *testing.T) {
	t.Setenv("RUN_ADDRESS", ":9090")
	t.Setenv("DATABASE_URI", "postgres://u:p@localhost:5432/cashback")
	t.Setenv("ERP_BASE_URL", "http://erp.local/sap/opu/odata/sap/API_SALES_ORDER_SRV")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("ERP_TIMEOUT", "3s")

	cfg := NewBuilder(slog.Default()).FromEnv().GetConfig()

	assert.Equal(t, ":9090", cfg.RunAddr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 3*time.Second, cfg.ERPTimeout)
	assert.Equal(t, uint64(16), cfg.ERPMaxConcurrent)
	assert.Equal(t, "wallet.balance-updated", cfg.KafkaTopic)
}

func TestBuilder_FromDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PARTNER_CACHE_SIZE=42\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("PARTNER_CACHE_SIZE") })

	cfg := NewBuilder(slog.Default()).
		FromDotEnv(path).
		FromEnv().
		GetConfig()
	assert.Equal(t, 42, cfg.PartnerCacheSize)
}

func TestBuilder_FromDotEnv_missingFile(t *testing.T) {
	cfg := NewBuilder(slog.Default()).
		FromDotEnv(filepath.Join(t.TempDir(), "absent.env")).
		GetConfig()
	assert.NotNil(t, cfg)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		DatabaseURI:      "postgres://localhost/cashback",
		ERPBaseURL:       "http://erp.local",
		SecretKey:        "Tr0ub4dor&3-correct-horse-battery-staple",
		ERPMaxConcurrent: 4,
		NotifyWorkers:    1,
		NotifyQueue:      1,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no database", func(c *Config) { c.DatabaseURI = "" }},
		{"no ERP", func(c *Config) { c.ERPBaseURL = "" }},
		{"weak secret", func(c *Config) { c.SecretKey = "secret" }},
		{"zero concurrency", func(c *Config) { c.ERPMaxConcurrent = 0 }},
		{"no workers", func(c *Config) { c.NotifyWorkers = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
