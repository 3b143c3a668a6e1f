//go:build wireinject
// +build wireinject

package main

import (
	"net/http"

	"github.com/google/wire"
	"github.com/pdcgo/ledger_service"
	"github.com/pdcgo/ledger_service/configs"
)

func InitializeApp() (*App, error) {
	wire.Build(
		configs.NewProductionConfig,
		http.NewServeMux,
		NewLogger,
		NewDatabase,
		NewRateCache,
		NewRateProvider,
		NewClock,
		NewPublishers,
		ledger_service.NewMigrationHandler,
		ledger_service.NewRegister,
		NewApp,
	)

	return &App{}, nil
}
