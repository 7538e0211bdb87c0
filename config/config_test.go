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

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	t.Run("Full", func(t *testing.T) {
		path := writeConfig(t, `
log_level: debug
http_server_addr: ":9000"
sql_db: "postgres://u:p@db:5432/catalog"
catalog:
  source: "https://scraper.example/products.json"
  refresh_interval: 30m
  page_size: 48
  image_policy_file: "/policy.yaml"
broker:
  seed_brokers: ["k1:9092", "k2:9092"]
  schema_registry_urls: ["http://sr:8081"]
  tls: {ca: ca.pem, cert: cert.pem, key: key.pem}
  topics: {listings: scraped}
  consumers: {catalog_group: api}
`)

		cfg, err := LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
		assert.Equal(t, ":9000", cfg.HTTPServerAddr)
		assert.Equal(t, 30*time.Minute, cfg.Catalog.RefreshInterval)
		assert.Equal(t, 48, cfg.Catalog.PageSize)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Broker.SeedBrokers)
		assert.True(t, cfg.Broker.Enabled())
		assert.True(t, cfg.Broker.TLS.Enabled())
		assert.Equal(t, "scraped", cfg.Broker.Topics.Listings)
		assert.Equal(t, "api", cfg.Broker.Consumers.CatalogGroup)
	})

	t.Run("Defaults", func(t *testing.T) {
		cfg, err := LoadFile(writeConfig(t, "catalog: {source: products.json}\n"))
		require.NoError(t, err)

		assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
		assert.Equal(t, ":8000", cfg.HTTPServerAddr)
		assert.Equal(t, 6*time.Hour, cfg.Catalog.RefreshInterval)
		assert.Equal(t, 24, cfg.Catalog.PageSize)
		assert.Equal(t, "listings", cfg.Broker.Topics.Listings)
		assert.False(t, cfg.Broker.Enabled())
		assert.False(t, cfg.Broker.TLS.Enabled())
	})

	t.Run("UnknownKey", func(t *testing.T) {
		_, err := LoadFile(writeConfig(t, "catalogue: {source: x}\n"))
		assert.Error(t, err)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "none.yaml"))
		assert.Error(t, err)
	})
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t,
		"postgres://catalog:***@db:5432/catalog",
		maskDSN("postgres://catalog:secret@db:5432/catalog"),
	)
	assert.Equal(t, "postgres://db/catalog", maskDSN("postgres://db/catalog"))
	assert.Equal(t, "", maskDSN(""))
}
