package configs

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"required,oneof=postgres sqlite"`
	DSN    string `yaml:"dsn" validate:"required"`
}

type LedgerConfig struct {
	BaseCurrency  string            `yaml:"base_currency" validate:"required,len=3"`
	ExchangeRates map[string]string `yaml:"exchange_rates"`
	RateCacheTTL  time.Duration     `yaml:"rate_cache_ttl"`
	MaxRetry      int               `yaml:"max_retry" validate:"min=1"`
	MaxCatchUp    int               `yaml:"max_catch_up" validate:"min=1"`
}

// Rates parses the configured exchange rates, quoted as units of base
// currency per unit of the keyed currency.
func (l *LedgerConfig) Rates() (map[string]decimal.Decimal, error) {
	rates := map[string]decimal.Decimal{}
	for code, raw := range l.ExchangeRates {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("exchange rate %s: %w", code, err)
		}
		rates[strings.ToUpper(code)] = rate
	}
	return rates, nil
}

type ChangefeedConfig struct {
	Endpoint  string `yaml:"endpoint"`
	QueuePath string `yaml:"queue_path"`
	Local     bool   `yaml:"local"`
}

func (c *ChangefeedConfig) Enabled() bool {
	return c.Endpoint != ""
}

type HttpConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port" validate:"required"`
	Endpoint string `yaml:"endpoint"`
}

func (h *HttpConfig) Listen() string {
	return fmt.Sprintf("%s:%s", h.Host, h.Port)
}

type LogConfig struct {
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
	Level  string `yaml:"level"`
}

type AppConfig struct {
	Database   DatabaseConfig   `yaml:"database"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	Changefeed ChangefeedConfig `yaml:"changefeed"`
	Http       HttpConfig       `yaml:"http"`
	Log        LogConfig        `yaml:"log"`
	CacheDir   string           `yaml:"cache_dir"`
}

func Default() *AppConfig {
	return &AppConfig{
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "ledger.db",
		},
		Ledger: LedgerConfig{
			BaseCurrency:  "TZS",
			ExchangeRates: map[string]string{},
			RateCacheTTL:  time.Hour,
			MaxRetry:      3,
			MaxCatchUp:    12,
		},
		Http: HttpConfig{
			Port:     "8081",
			Endpoint: "http://localhost:8081",
		},
		Log: LogConfig{
			Format: "console",
			Level:  "info",
		},
		CacheDir: "/tmp/ledger_cache",
	}
}

// Load reads .env, then the yaml file at path when it exists, then applies
// environment overrides.
func Load(path string) (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			err = yaml.Unmarshal(raw, cfg)
			if err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}

	err := applyEnv(cfg)
	if err != nil {
		return nil, err
	}

	err = validator.New().Struct(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func NewProductionConfig() (*AppConfig, error) {
	return Load(getEnvOrDefault("LEDGER_CONFIG", "config.yaml"))
}

func applyEnv(cfg *AppConfig) error {
	cfg.Database.Driver = getEnvOrDefault("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = getEnvOrDefault("DB_DSN", cfg.Database.DSN)
	cfg.Ledger.BaseCurrency = strings.ToUpper(getEnvOrDefault("BASE_CURRENCY", cfg.Ledger.BaseCurrency))
	cfg.Changefeed.Endpoint = getEnvOrDefault("CHANGEFEED_ENDPOINT", cfg.Changefeed.Endpoint)
	cfg.Changefeed.QueuePath = getEnvOrDefault("CHANGEFEED_QUEUE", cfg.Changefeed.QueuePath)
	cfg.Http.Host = getEnvOrDefault("HOST", cfg.Http.Host)
	cfg.Http.Port = getEnvOrDefault("PORT", cfg.Http.Port)
	cfg.Http.Endpoint = getEnvOrDefault("LEDGER_ENDPOINT", cfg.Http.Endpoint)
	cfg.Log.Format = getEnvOrDefault("LOG_FORMAT", cfg.Log.Format)
	cfg.Log.Level = getEnvOrDefault("LOG_LEVEL", cfg.Log.Level)
	cfg.CacheDir = getEnvOrDefault("CACHE_DIR", cfg.CacheDir)

	var err error
	cfg.Ledger.MaxRetry, err = parseIntEnv("LEDGER_MAX_RETRY", cfg.Ledger.MaxRetry)
	if err != nil {
		return err
	}
	cfg.Ledger.MaxCatchUp, err = parseIntEnv("LEDGER_MAX_CATCH_UP", cfg.Ledger.MaxCatchUp)
	if err != nil {
		return err
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}

	return parsed, nil
}
