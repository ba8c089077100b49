package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "estatepulse.db", cfg.Store.DatabaseURL)
	assert.Equal(t, int32(10), cfg.Store.Pool.MaxConns)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Import.RemapBatchSize)
	assert.InDelta(t, 10000, cfg.Import.PriceNarrowMin, 0.001)
	assert.InDelta(t, 99999999, cfg.Import.PriceNarrowMax, 0.001)
	assert.InDelta(t, 500, cfg.Import.PriceWideMin, 0.001)
	assert.InDelta(t, 999999999, cfg.Import.PriceWideMax, 0.001)
	assert.Equal(t, 4096, cfg.Anthropic.MaxTokens)
	assert.Equal(t, 2, cfg.Anthropic.RatePerSec)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/crm
log:
  level: debug
  format: console
server:
  port: 9090
import:
  remap_batch_size: 10
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/crm", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Import.RemapBatchSize)
	// Defaults still apply for unset values
	assert.InDelta(t, 10000, cfg.Import.PriceNarrowMin, 0.001)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("ESTATEPULSE_STORE_DRIVER", "sqlite")
	t.Setenv("ESTATEPULSE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("ESTATEPULSE_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

// validDefaults returns a Config with the defaults validation expects.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "estatepulse.db"
	cfg.Server.Port = 8080
	cfg.Import.RemapBatchSize = 20
	return cfg
}

func TestValidateStore_AllPresent(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("store"))
}

func TestValidateStore_MissingURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = ""

	err := cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestValidateStore_BadDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "oracle"

	err := cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be sqlite or postgres")
}

func TestValidateAssist_NeedsKey(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("assist")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")

	cfg.Anthropic.Key = "sk-ant-key"
	assert.NoError(t, cfg.Validate("assist"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateBatchSizeBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Import.RemapBatchSize = 0
	err := cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "remap_batch_size must be between 1 and 100")

	cfg.Import.RemapBatchSize = 101
	err = cfg.Validate("store")
	assert.Error(t, err)

	cfg.Import.RemapBatchSize = 100
	assert.NoError(t, cfg.Validate("store"))
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
