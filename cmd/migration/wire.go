//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/pdcgo/ledger_service"
	"github.com/pdcgo/ledger_service/configs"
)

func InitializeMigration() (*Migration, error) {
	wire.Build(
		configs.NewProductionConfig,
		NewLogger,
		NewDatabase,
		ledger_service.NewMigrationHandler,
		NewMigration,
	)

	return &Migration{}, nil
}
