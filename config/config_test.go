package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnv_Defaults(t *testing.T) {
	cfg := LoadEnv()

	assert.Equal(t, 6, cfg.Shop.CatalogPageSize)
	assert.Equal(t, 3, cfg.Shop.HistoryPageSize)
	assert.Equal(t, "inventory.stock", cfg.Kafka.StockTopic)
	assert.NotEmpty(t, cfg.Shop.Managers)
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("SHOP_MANAGERS", "a@shop.local, b@shop.local,,")
	t.Setenv("WORKER_CONCURRENCY", "9")
	t.Setenv("SECURE_COOKIES", "true")
	t.Setenv("SMTP_PORT", "not-a-number")

	cfg := LoadEnv()

	assert.Equal(t, []string{"a@shop.local", "b@shop.local"}, cfg.Shop.Managers)
	assert.Equal(t, 9, cfg.Worker.Concurrency)
	assert.True(t, cfg.Server.SecureCookies)
	assert.Equal(t, 1025, cfg.Mail.Port)
}
