package main

import (
	"github.com/pdcgo/ledger_service"
	"github.com/pdcgo/ledger_service/configs"
	"github.com/pdcgo/ledger_service/logging"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func NewLogger(cfg *configs.AppConfig) zerolog.Logger {
	return logging.NewWithFormat(cfg.Log.Format, cfg.Log.Level)
}

func NewDatabase(cfg *configs.AppConfig) (*gorm.DB, error) {
	if cfg.Database.Driver == "postgres" {
		return gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(cfg.Database.DSN), &gorm.Config{})
}

type Migration struct {
	Run func() error
}

func NewMigration(
	cfg *configs.AppConfig,
	logger zerolog.Logger,
	migrate ledger_service.MigrationHandler,
) *Migration {
	return &Migration{
		Run: func() error {
			logger.Info().
				Str("driver", cfg.Database.Driver).
				Msg("running ledger migration")

			return migrate()
		},
	}
}

func main() {
	mig, err := InitializeMigration()
	if err != nil {
		panic(err)
	}

	err = mig.Run()
	if err != nil {
		panic(err)
	}
}
