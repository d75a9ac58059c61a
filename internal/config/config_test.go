package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(values map[string]string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]string{
		"BOT_TOKEN":    "123:abc",
		"BOT_ADMIN_ID": "42",
	}))
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.Bot.AdminID)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "/webhook", cfg.Bot.WebhookPath)
	assert.Equal(t, "0 */10 * * * *", cfg.Panel.CheckCron)
	assert.True(t, cfg.Bot.UsePolling())
}

func TestFromViperRequiresTokenAndAdmin(t *testing.T) {
	_, err := fromViper(newTestViper(map[string]string{"BOT_ADMIN_ID": "1"}))
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = fromViper(newTestViper(map[string]string{"BOT_TOKEN": "t"}))
	assert.ErrorIs(t, err, ErrMissingAdminID)

	_, err = fromViper(newTestViper(map[string]string{"BOT_TOKEN": "t", "BOT_ADMIN_ID": "abc"}))
	assert.Error(t, err)
}

func TestFromViperRejectsUnknownDriver(t *testing.T) {
	_, err := fromViper(newTestViper(map[string]string{
		"BOT_TOKEN": "t", "BOT_ADMIN_ID": "1", "DB_DRIVER": "oracle",
	}))
	assert.Error(t, err)
}

func TestWebhookURL(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]string{
		"BOT_TOKEN":        "123:abc",
		"BOT_ADMIN_ID":     "7",
		"BOT_WEBHOOK_URL":  "https://bot.example.com/",
		"BOT_WEBHOOK_PATH": "hook/",
	}))
	require.NoError(t, err)

	assert.False(t, cfg.Bot.UsePolling())
	assert.Equal(t, "/hook/123:abc", cfg.Bot.WebhookRoute())
	assert.Equal(t, "https://bot.example.com/hook/123:abc", cfg.Bot.PublicWebhookURL())
}

func TestDSNPerDriver(t *testing.T) {
	d := DatabaseConfig{Driver: "mysql", Host: "h", Port: "3306", Name: "n", User: "u", Pass: "p", Charset: "utf8mb4"}
	assert.Equal(t, "u:p@tcp(h:3306)/n?charset=utf8mb4&parseTime=True&loc=Local", d.DSN())

	d.Driver = "postgres"
	assert.Contains(t, d.DSN(), "port=5432")
	assert.Contains(t, d.DSN(), "dbname=n")

	d.Driver = "sqlite"
	d.Path = "file.db"
	assert.Equal(t, "file.db", d.DSN())
}

func TestLoadDatabaseOnlySkipsBotSettings(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_PATH", "/tmp/smpanel-test.db")

	db, err := LoadDatabaseOnly()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", db.Driver)
	assert.Equal(t, "/tmp/smpanel-test.db", db.DSN())

	t.Setenv("DB_DRIVER", "oracle")
	_, err = LoadDatabaseOnly()
	assert.Error(t, err)
}
