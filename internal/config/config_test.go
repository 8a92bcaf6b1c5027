package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("ORBIT_DB", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".orbit", "orbit.db"), cfg.DBPath)
	assert.Equal(t, ":8088", cfg.Addr)
	assert.Equal(t, 10*time.Minute, cfg.RolloverInterval)
	assert.Equal(t, 20*time.Minute, cfg.ReflectAfter)
	assert.Equal(t, 10*time.Minute, cfg.GuardrailCooldown)
	assert.Equal(t, "me", cfg.DefaultStudent)
	assert.False(t, cfg.LogJSON)
}

func TestLoad_Overrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ORBIT_DB", "/tmp/orbit-test.db")
	t.Setenv("ORBIT_CONTENT_URL", "http://content.local/api/")
	t.Setenv("ORBIT_TZ", "America/Chicago")
	t.Setenv("ORBIT_ROLLOVER_INTERVAL", "30s")
	t.Setenv("ORBIT_GUARDRAIL_COOLDOWN", "120")
	t.Setenv("ORBIT_LOG_JSON", "yes")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/orbit-test.db", cfg.DBPath)
	assert.Equal(t, "http://content.local/api", cfg.ContentURL)
	assert.Equal(t, "America/Chicago", cfg.Location.String())
	assert.Equal(t, 30*time.Second, cfg.RolloverInterval)
	assert.Equal(t, 2*time.Minute, cfg.GuardrailCooldown)
	assert.True(t, cfg.LogJSON)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ORBIT_ADDR_DOTENV_PROBE=1\n"), 0o600))
	t.Setenv("ORBIT_DB", "/tmp/orbit-test.db")
	t.Cleanup(func() { os.Unsetenv("ORBIT_ADDR_DOTENV_PROBE") })

	_, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "1", os.Getenv("ORBIT_ADDR_DOTENV_PROBE"))
}

func TestLoad_InvalidTimezone(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ORBIT_DB", "/tmp/orbit-test.db")
	t.Setenv("ORBIT_TZ", "Mars/Olympus")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{
		DBPath:            "x.db",
		Addr:              ":1",
		ContentTimeout:    time.Second,
		RolloverInterval:  time.Minute,
		ReflectAfter:      time.Minute,
		GuardrailCooldown: time.Minute,
		DefaultStudent:    "me",
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.RolloverInterval = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.DBPath = ""
	assert.Error(t, bad.Validate())
}

func TestGetEnvDuration_Garbage(t *testing.T) {
	t.Setenv("ORBIT_TEST_DURATION", "soon")
	assert.Equal(t, time.Minute, getEnvDuration("ORBIT_TEST_DURATION", time.Minute))
}
