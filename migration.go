package ledger_service

import (
	"github.com/pdcgo/ledger_service/ledger_model"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type MigrationHandler func() error

func NewMigrationHandler(
	db *gorm.DB,
	logger zerolog.Logger,
) MigrationHandler {
	return func() error {
		logger.Info().Msg("migrating ledger service")

		models := ledger_model.AllModels()
		err := db.AutoMigrate(models...)
		if err != nil {
			return err
		}

		logger.Info().Int("tables", len(models)).Msg("migration done")
		return nil
	}
}
