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

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	assert.Equal(t, "stream.orders", cfg.Seckill.Stream)
	assert.Equal(t, "g1", cfg.Seckill.Group)
	assert.Equal(t, 10*time.Second, cfg.Seckill.UserLockExpiry)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
redis:
  addr: redis.internal:6380
  db: 3
seckill:
  consumer: c2
  user_lock_expiry: 5s
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "c2", cfg.Seckill.Consumer)
	assert.Equal(t, 5*time.Second, cfg.Seckill.UserLockExpiry)
	assert.Equal(t, "debug", cfg.Log.Level)

	// 未覆盖的键保持默认值
	assert.Equal(t, "g1", cfg.Seckill.Group)
	assert.Equal(t, "stream.orders", cfg.Seckill.Stream)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
redis:
  addr: from-file:6379
`)
	t.Setenv("HMDP_REDIS_ADDR", "from-env:6379")
	t.Setenv("HMDP_REDIS_DB", "7")
	t.Setenv("HMDP_PG_DSN", "postgres://env/hmdp")
	t.Setenv("HMDP_LOG_LEVEL", "error")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env:6379", cfg.Redis.Addr)
	assert.Equal(t, 7, cfg.Redis.DB)
	assert.Equal(t, "postgres://env/hmdp", cfg.Postgres.DSN)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoad_Failures(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, ErrLoadFailed)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfigFile(t, "redis: [not: closed")
		_, err := Load(path)
		assert.ErrorIs(t, err, ErrLoadFailed)
	})

	t.Run("validation", func(t *testing.T) {
		path := writeConfigFile(t, `
redis:
  addr: ""
`)
		_, err := Load(path)
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestLogConfig_SlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LogConfig{Level: "debug"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "warn"}.SlogLevel())
	assert.Equal(t, slog.LevelError, LogConfig{Level: "error"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: "info"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: "verbose"}.SlogLevel())
}
