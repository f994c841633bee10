package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsFromEnv(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "classic", cfg.Game.DefaultBoard)
	assert.Equal(t, 10*time.Second, cfg.Game.AuctionDuration)
	assert.Equal(t, "monopoly_actions", cfg.Redis.QueueName)
	assert.Equal(t, 20, cfg.Historian.BatchSize)
	assert.Equal(t, []string{"*"}, cfg.Origins())

	rules := cfg.HouseRules()
	assert.Equal(t, 1500, rules.StartingMoney)
	assert.Equal(t, 6, rules.DiceSides)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
http-port: "9000"
allowed-origins: "http://a.test, http://b.test"
game:
  starting-money: 2000
store:
  driver: sqlite
  sqlite-path: /tmp/monopoly.db
`), 0o600))
	t.Setenv("DICE_SIDES", "8")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, 2000, cfg.Game.StartingMoney)
	assert.Equal(t, 8, cfg.Game.DiceSides)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Origins())
	assert.Equal(t, "sqlite", cfg.Store.Driver)
}

func TestUnknownStoreDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	_, err := Load("")
	assert.ErrorContains(t, err, "unknown store driver")

	t.Setenv("STORE_DRIVER", "postgres")
	_, err = Load("")
	assert.ErrorContains(t, err, "DATABASE_URL")
}
