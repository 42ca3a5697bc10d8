package config

import (
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

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "database:\n  dsn: postgres://localhost/power\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.CacheTTL)
	assert.Equal(t, "@every 1m", cfg.Monitor.CheckSchedule)
	assert.Equal(t, 5*time.Second, cfg.Monitor.AttemptTimeout)
	assert.Equal(t, time.Second, cfg.Monitor.RetryBackoff)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, cfg.Schedule.Groups)
	assert.Equal(t, 10*time.Minute, cfg.Schedule.RefreshInterval)
	assert.Equal(t, 100*time.Millisecond, cfg.Schedule.RequestDelay)
	assert.Equal(t, 4*time.Hour, cfg.Schedule.StaleAfter)
	assert.Equal(t, 29*time.Minute, cfg.Schedule.Margin)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, 64, cfg.WorkerPool.Buffer)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "power", cfg.MQTT.TopicPrefix)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 9090
monitor:
  check_schedule: "*/2 * * * *"
  retry_backoff_ms: 250
schedule:
  groups: [3]
  margin_minutes: 15
worker_pool:
  size: 4
`))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "*/2 * * * *", cfg.Monitor.CheckSchedule)
	assert.Equal(t, 250*time.Millisecond, cfg.Monitor.RetryBackoff)
	assert.Equal(t, []int{3}, cfg.Schedule.Groups)
	assert.Equal(t, 15*time.Minute, cfg.Schedule.Margin)
	assert.Equal(t, 4, cfg.WorkerPool.Size)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("POWER_TEST_DSN", "postgres://user:secret@db/power")
	t.Setenv("POWER_TEST_VAPID", "private-key")

	cfg, err := Load(writeConfig(t, `
database:
  dsn: ${POWER_TEST_DSN}
push:
  vapid_private_key: ${POWER_TEST_VAPID}
`))
	require.NoError(t, err)

	assert.Equal(t, "postgres://user:secret@db/power", cfg.Database.DSN)
	assert.Equal(t, "private-key", cfg.Push.PrivateKey)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [not, a, map]\n"))
	assert.Error(t, err)
}
