package ledger_service

import (
	"net/http"

	"github.com/pdcgo/ledger_service/account"
	"github.com/pdcgo/ledger_service/changefeed"
	"github.com/pdcgo/ledger_service/clock"
	"github.com/pdcgo/ledger_service/configs"
	"github.com/pdcgo/ledger_service/exchange_rate"
	"github.com/pdcgo/ledger_service/ledger"
	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_iface"
	"github.com/pdcgo/ledger_service/purchase_order"
	"github.com/pdcgo/ledger_service/scheduler"
	"github.com/pdcgo/ledger_service/transfer"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type RegisterHandler func()

func NewRegister(
	db *gorm.DB,
	cfg *configs.AppConfig,
	mux *http.ServeMux,
	rates exchange_rate.Provider,
	clk clock.Clock,
	logger zerolog.Logger,
	publishers []changefeed.Publisher,
) RegisterHandler {

	return func() {
		ledger_core.SetMaxRetry(cfg.Ledger.MaxRetry)
		if len(publishers) > 0 {
			changefeed.Register(publishers...)
		}

		opts := ledger_iface.HandlerOptions(logger)

		path, handler := ledger_iface.NewAccountServiceHandler(account.NewAccountService(db, rates), opts...)
		mux.Handle(path, handler)
		path, handler = ledger_iface.NewLedgerServiceHandler(ledger.NewLedgerService(db), opts...)
		mux.Handle(path, handler)
		path, handler = ledger_iface.NewTransferServiceHandler(transfer.NewTransferService(db), opts...)
		mux.Handle(path, handler)
		path, handler = ledger_iface.NewSchedulerServiceHandler(
			scheduler.NewSchedulerService(db, clk, cfg.Ledger.MaxCatchUp),
			opts...,
		)
		mux.Handle(path, handler)
		path, handler = ledger_iface.NewPurchaseOrderServiceHandler(
			purchase_order.NewPurchaseOrderService(db, rates),
			opts...,
		)
		mux.Handle(path, handler)
	}

}
