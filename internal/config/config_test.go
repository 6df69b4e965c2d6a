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

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8050, cfg.Server.Port)
	assert.Equal(t, "data/Admin_boundaries.geojson", cfg.Data.AdminPath)
	assert.Equal(t, "data/Atolls.geojson", cfg.Data.AtollPath)
	assert.Equal(t, "Atoll", cfg.Data.AtollField)
	assert.Equal(t, "ID", cfg.Data.IDField)
	assert.Equal(t, "Population", cfg.Data.DefaultField)
	assert.Equal(t, "open-street-map", cfg.Map.Style)
	assert.InDelta(t, 7.0, cfg.Map.CenterLat, 0.001)
	assert.InDelta(t, 171.0, cfg.Map.CenterLon, 0.001)
	assert.InDelta(t, 4.0, cfg.Map.Zoom, 0.001)
	assert.Equal(t, 800, cfg.Map.Width)
	assert.Equal(t, 600, cfg.Map.Height)
	assert.Equal(t, "YlOrRd", cfg.Map.ColorScale)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Empty(t, cfg.Telemetry.OTLPEndpoint)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
data:
  admin_path: /srv/admin.shp
log:
  level: debug
  format: console
server:
  port: 9090
branding:
  top_logos:
    - logos/coastmove.png
    - logos/rmi.png
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/admin.shp", cfg.Data.AdminPath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"logos/coastmove.png", "logos/rmi.png"}, cfg.Branding.TopLogos)
	// Defaults still apply for unset values
	assert.Equal(t, "data/Atolls.geojson", cfg.Data.AtollPath)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
data:
  atoll_field: Atoll
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("DASHBOARD_DATA_ATOLL_FIELD", "ATOLL_NAME")
	t.Setenv("DASHBOARD_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "ATOLL_NAME", cfg.Data.AtollField)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("DASHBOARD_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadPortEnv(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("PORT", "8123")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8123, cfg.Server.Port)
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

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Data.AdminPath = "admin.geojson"
	cfg.Data.AtollPath = "atolls.geojson"
	cfg.Data.AtollField = "Atoll"
	cfg.Map.Width = 800
	cfg.Map.Height = 600
	cfg.Map.Zoom = 4
	cfg.Server.Port = 8050
	cfg.Server.RateBurst = 20
	return cfg
}

func TestValidateServe_Valid(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("serve"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateServe_RateLimit(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.RateLimit = -1
	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.rate_limit must be >= 0")

	cfg.Server.RateLimit = 5
	cfg.Server.RateBurst = 0
	err = cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.rate_burst")

	cfg.Server.RateBurst = 10
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateMissingData(t *testing.T) {
	cfg := validDefaults()
	cfg.Data.AdminPath = ""
	cfg.Data.AtollPath = ""

	err := cfg.Validate("inspect")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "data.admin_path is required")
	assert.Contains(t, err.Error(), "data.atoll_path is required")
}

func TestValidateInspect_IgnoresServerSettings(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0
	assert.NoError(t, cfg.Validate("inspect"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
