package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
id_max_attempts: 7
effect_timeout: 10s
guilds:
  "111111111111111111":
    name: Main
    mute_role_id: "222222222222222222"
    admin_role_ids: ["333333333333333333"]
    log_channel_id: "444444444444444444"
`

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sanction_config.yaml"), []byte(sampleConfig), 0o644))

	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("LOG_CHANNEL_ID", "555")
	t.Setenv("SANCTION_SWEEP_INTERVAL", "2m")
	t.Setenv("ADMIN_ROLE_IDS", "a, b,,")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.BotToken)
	assert.Equal(t, DefaultDatabasePath, cfg.DatabasePath)
	assert.Equal(t, 2*time.Minute, cfg.SweepInterval)
	assert.Equal(t, 10*time.Second, cfg.EffectTimeout)
	assert.Equal(t, 7, cfg.IDMaxAttempts)
	assert.Equal(t, []string{"a", "b"}, cfg.AdminRoleIDs)

	sc, ok := cfg.ServerConfigs["111111111111111111"]
	require.True(t, ok)
	assert.Equal(t, "222222222222222222", sc.MuteRoleID)
	assert.Equal(t, []string{"333333333333333333"}, sc.AdminRoleIDs)

	assert.Equal(t, "444444444444444444", cfg.LogChannelFor("111111111111111111"))
	assert.Equal(t, "555", cfg.LogChannelFor("other"))
	assert.Equal(t, "222222222222222222", cfg.MuteRoleFor("111111111111111111"))
	assert.Empty(t, cfg.MuteRoleFor("other"))
}

func TestLoadFromWithoutFile(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("SANCTION_SWEEP_INTERVAL", "")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultSweepInterval, cfg.SweepInterval)
	assert.Equal(t, 5, cfg.IDMaxAttempts)
	assert.Empty(t, cfg.ServerConfigs)
}

func TestLoadFromRequiresToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	_, err := LoadFrom(t.TempDir())
	assert.ErrorIs(t, err, ErrMissingToken)
}
