package configs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdcgo/ledger_service/configs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := configs.Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Nil(t, err)
		assert.Equal(t, "TZS", cfg.Ledger.BaseCurrency)
		assert.Equal(t, 3, cfg.Ledger.MaxRetry)
		assert.False(t, cfg.Changefeed.Enabled())
	})

	t.Run("yaml file and env override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
database:
  driver: postgres
  dsn: postgres://ledger@localhost/ledger
ledger:
  base_currency: TZS
  max_retry: 5
  max_catch_up: 4
  rate_cache_ttl: 30m
  exchange_rates:
    usd: "2500"
changefeed:
  endpoint: http://subscriber
http:
  port: "9000"
`
		require.Nil(t, os.WriteFile(path, []byte(content), 0o600))
		t.Setenv("LEDGER_MAX_CATCH_UP", "2")
		t.Setenv("HOST", "")
		t.Setenv("PORT", "")
		t.Setenv("DB_DRIVER", "")

		cfg, err := configs.Load(path)
		require.Nil(t, err)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, 5, cfg.Ledger.MaxRetry)
		assert.Equal(t, 2, cfg.Ledger.MaxCatchUp)
		assert.Equal(t, 30*time.Minute, cfg.Ledger.RateCacheTTL)
		assert.True(t, cfg.Changefeed.Enabled())
		assert.Equal(t, ":9000", cfg.Http.Listen())

		rates, err := cfg.Ledger.Rates()
		require.Nil(t, err)
		assert.Equal(t, "2500", rates["USD"].String())
	})

	t.Run("invalid driver rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.Nil(t, os.WriteFile(path, []byte("database:\n  driver: mysql\n  dsn: x\n"), 0o600))

		_, err := configs.Load(path)
		assert.NotNil(t, err)
	})
}
