package config

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Bot      BotConfig
	Panel    PanelConfig
}

type ServerConfig struct {
	Port int
	Env  string // "development", "production"
}

type DatabaseConfig struct {
	Driver  string // "mysql", "postgres", "sqlite"
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
	Path    string // sqlite file
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

type BotConfig struct {
	Token       string
	AdminID     int64
	UpdateMode  string // "auto", "polling", "webhook"
	WebhookURL  string
	WebhookPath string
}

type PanelConfig struct {
	Timeout   time.Duration
	CheckCron string
}

var (
	ErrMissingToken   = errors.New("BOT_TOKEN is not set")
	ErrMissingAdminID = errors.New("BOT_ADMIN_ID is not set")
)

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("BOT_UPDATE_MODE", "auto")
	v.SetDefault("BOT_WEBHOOK_PATH", "/webhook")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_CHARSET", "utf8mb4")
	v.SetDefault("DB_PATH", "smpanel.db")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PANEL_TIMEOUT", "10s")
	v.SetDefault("PANEL_CHECK_CRON", "0 */10 * * * *")
}

func fromViper(v *viper.Viper) (*Config, error) {
	timeout, err := time.ParseDuration(v.GetString("PANEL_TIMEOUT"))
	if err != nil || timeout <= 0 {
		timeout = 10 * time.Second
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetInt("APP_PORT"),
			Env:  v.GetString("APP_ENV"),
		},
		Database: databaseFromViper(v),
		Redis: RedisConfig{
			Addr: v.GetString("REDIS_ADDR"),
			Pass: v.GetString("REDIS_PASS"),
			DB:   v.GetInt("REDIS_DB"),
		},
		Bot: BotConfig{
			Token:       strings.TrimSpace(v.GetString("BOT_TOKEN")),
			UpdateMode:  strings.ToLower(strings.TrimSpace(v.GetString("BOT_UPDATE_MODE"))),
			WebhookURL:  strings.TrimRight(strings.TrimSpace(v.GetString("BOT_WEBHOOK_URL")), "/"),
			WebhookPath: v.GetString("BOT_WEBHOOK_PATH"),
		},
		Panel: PanelConfig{
			Timeout:   timeout,
			CheckCron: strings.TrimSpace(v.GetString("PANEL_CHECK_CRON")),
		},
	}

	if cfg.Bot.Token == "" {
		return nil, ErrMissingToken
	}

	rawAdmin := strings.TrimSpace(v.GetString("BOT_ADMIN_ID"))
	if rawAdmin == "" {
		return nil, ErrMissingAdminID
	}
	adminID, err := strconv.ParseInt(rawAdmin, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("BOT_ADMIN_ID must be an integer: %w", err)
	}
	cfg.Bot.AdminID = adminID

	if !strings.HasPrefix(cfg.Bot.WebhookPath, "/") {
		cfg.Bot.WebhookPath = "/" + cfg.Bot.WebhookPath
	}
	cfg.Bot.WebhookPath = strings.TrimRight(cfg.Bot.WebhookPath, "/")
	if cfg.Bot.WebhookPath == "" {
		cfg.Bot.WebhookPath = "/webhook"
	}

	if err := cfg.Database.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDatabaseOnly reads just the DB_* settings. It is used by
// --bootstrap-db, which must work before a bot token exists.
func LoadDatabaseOnly() (*DatabaseConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	db := databaseFromViper(v)
	if err := db.validate(); err != nil {
		return nil, err
	}
	return &db, nil
}

func databaseFromViper(v *viper.Viper) DatabaseConfig {
	return DatabaseConfig{
		Driver:  strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		Host:    v.GetString("DB_HOST"),
		Port:    v.GetString("DB_PORT"),
		Name:    v.GetString("DB_NAME"),
		User:    v.GetString("DB_USER"),
		Pass:    v.GetString("DB_PASS"),
		Charset: v.GetString("DB_CHARSET"),
		Path:    v.GetString("DB_PATH"),
	}
}

func (d *DatabaseConfig) validate() error {
	switch d.Driver {
	case "mysql", "postgres", "sqlite":
	case "":
		d.Driver = "mysql"
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", d.Driver)
	}

	if d.Driver != "sqlite" && d.Name == "" {
		log.Println("WARNING: DB_NAME is not set")
	}
	return nil
}

// UsePolling reports whether updates should come from long polling.
func (b *BotConfig) UsePolling() bool {
	switch b.UpdateMode {
	case "polling":
		return true
	case "webhook":
		return false
	default:
		return b.WebhookURL == ""
	}
}

// WebhookRoute is the echo route the webhook is mounted on: path + "/" + token.
func (b *BotConfig) WebhookRoute() string {
	return b.WebhookPath + "/" + b.Token
}

// PublicWebhookURL is the URL registered with Telegram.
func (b *BotConfig) PublicWebhookURL() string {
	return b.WebhookURL + b.WebhookRoute()
}

// DSN returns the driver-specific DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	switch d.Driver {
	case "postgres":
		port := d.Port
		if port == "" || port == "3306" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			d.Host, port, d.User, d.Pass, d.Name)
	case "sqlite":
		return d.Path
	default:
		return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
	}
}
