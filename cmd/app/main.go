package main

import (
	"context"
	"net/http"

	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	"github.com/pdcgo/ledger_service"
	"github.com/pdcgo/ledger_service/changefeed"
	"github.com/pdcgo/ledger_service/clock"
	"github.com/pdcgo/ledger_service/configs"
	"github.com/pdcgo/ledger_service/exchange_rate"
	"github.com/pdcgo/ledger_service/logging"
	"github.com/pdcgo/shared/pkg/ware_cache"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func NewLogger(cfg *configs.AppConfig) zerolog.Logger {
	return logging.NewWithFormat(cfg.Log.Format, cfg.Log.Level)
}

func NewDatabase(cfg *configs.AppConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	default:
		dialector = sqlite.Open(cfg.Database.DSN)
	}

	return gorm.Open(dialector, &gorm.Config{})
}

func NewRateCache(cfg *configs.AppConfig) (ware_cache.Cache, error) {
	return ware_cache.NewBadgerCache(cfg.CacheDir)
}

func NewRateProvider(cfg *configs.AppConfig, cache ware_cache.Cache) (exchange_rate.Provider, error) {
	rates, err := cfg.Ledger.Rates()
	if err != nil {
		return nil, err
	}

	static := exchange_rate.NewStaticProvider(cfg.Ledger.BaseCurrency, rates)
	return exchange_rate.NewCachedProvider(static, cache, cfg.Ledger.RateCacheTTL), nil
}

func NewClock() clock.Clock {
	return clock.System()
}

func NewPublishers(cfg *configs.AppConfig, logger zerolog.Logger) ([]changefeed.Publisher, error) {
	publishers := []changefeed.Publisher{changefeed.NewHub()}
	if !cfg.Changefeed.Enabled() {
		return publishers, nil
	}

	var dispatch changefeed.Dispatcher
	if cfg.Changefeed.Local {
		dispatch = changefeed.NewLocalDispatcher(http.DefaultClient)
	} else {
		client, err := cloudtasks.NewClient(context.Background())
		if err != nil {
			return nil, err
		}
		dispatch = changefeed.NewCloudTaskDispatcher(client)
	}

	logger.Info().Str("endpoint", cfg.Changefeed.Endpoint).Bool("local", cfg.Changefeed.Local).Msg("changefeed enabled")
	return append(publishers, changefeed.NewTaskNotifier(&cfg.Changefeed, dispatch)), nil
}

func withCors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Headers", "Connect-Protocol-Version, Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control")
		w.Header().Set("Access-Control-Expose-Headers", "Ledger-Error-Field, Ledger-Error-Account, Ledger-Error-Entity, Ledger-Error-Attempts")
		w.Header().Set("Access-Control-Allow-Methods", "HEAD,OPTIONS,GET,POST")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type App struct {
	Run func() error
}

func NewApp(
	cfg *configs.AppConfig,
	mux *http.ServeMux,
	logger zerolog.Logger,
	migrate ledger_service.MigrationHandler,
	ledgerRegister ledger_service.RegisterHandler,
) *App {
	return &App{
		Run: func() error {
			err := migrate()
			if err != nil {
				return err
			}

			ledgerRegister()

			listen := cfg.Http.Listen()
			logger.Info().Str("listen", listen).Msg("ledger service listening")

			// h2c serves HTTP/2 without TLS.
			return http.ListenAndServe(
				listen,
				h2c.NewHandler(
					withCors(mux),
					&http2.Server{}),
			)
		},
	}
}

func main() {
	app, err := InitializeApp()
	if err != nil {
		panic(err)
	}

	err = app.Run()
	if err != nil {
		panic(err)
	}
}
