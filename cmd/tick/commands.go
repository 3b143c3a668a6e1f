package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/google/subcommands"
	"github.com/pdcgo/ledger_service/configs"
	"github.com/pdcgo/ledger_service/ledger_iface"
	"github.com/pdcgo/ledger_service/logging"
	"github.com/rs/zerolog"
)

func newClient() (*ledger_iface.SchedulerServiceClient, zerolog.Logger, error) {
	cfg, err := configs.NewProductionConfig()
	if err != nil {
		return nil, logging.New(), err
	}

	log := logging.NewWithFormat(cfg.Log.Format, cfg.Log.Level)
	return ledger_iface.NewSchedulerServiceClient(http.DefaultClient, cfg.Http.Endpoint), log, nil
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	at, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, err
	}
	return &at, nil
}

type runCmd struct {
	date    string
	timeout time.Duration
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "execute due scheduled transfers and recurring expenses" }
func (*runCmd) Usage() string {
	return `run [-date YYYY-MM-DD] [-timeout 5m]

  Runs one scheduler tick on the ledger service. Missed occurrences are
  caught up, bounded by the service's max_catch_up setting.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "date", "", "process as of this date, default now")
	f.DurationVar(&c.timeout, "timeout", 5*time.Minute, "request timeout")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, log, err := newClient()
	if err != nil {
		log.Error().Err(err).Msg("loading config")
		return subcommands.ExitFailure
	}

	now, err := parseDate(c.date)
	if err != nil {
		log.Error().Err(err).Str("date", c.date).Msg("invalid date")
		return subcommands.ExitUsageError
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := client.Tick(ctx, connect.NewRequest(&ledger_iface.TickRequest{Now: now}))
	if err != nil {
		log.Error().Err(err).Str("code", connect.CodeOf(err).String()).Msg("tick failed")
		return subcommands.ExitFailure
	}

	log.Info().
		Time("now", res.Msg.Now).
		Int("transfers", res.Msg.Transfers.Succeeded).
		Int("transfers_failed", res.Msg.Transfers.Failed).
		Int("expenses", res.Msg.Expenses.Succeeded).
		Int("expenses_failed", res.Msg.Expenses.Failed).
		Msg("tick done")

	if res.Msg.Transfers.Failed > 0 || res.Msg.Expenses.Failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type dueCmd struct {
	branch uint
	date   string
}

func (*dueCmd) Name() string     { return "due" }
func (*dueCmd) Synopsis() string { return "list recurring expenses waiting for manual processing" }
func (*dueCmd) Usage() string {
	return `due -branch <id> [-date YYYY-MM-DD]

  Lists manual recurring expenses whose next date falls within their
  notification window.
`
}

func (c *dueCmd) SetFlags(f *flag.FlagSet) {
	f.UintVar(&c.branch, "branch", 0, "branch id (required)")
	f.StringVar(&c.date, "date", "", "as of this date, default now")
}

func (c *dueCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.branch == 0 {
		return subcommands.ExitUsageError
	}

	client, log, err := newClient()
	if err != nil {
		log.Error().Err(err).Msg("loading config")
		return subcommands.ExitFailure
	}

	now, err := parseDate(c.date)
	if err != nil {
		log.Error().Err(err).Str("date", c.date).Msg("invalid date")
		return subcommands.ExitUsageError
	}

	res, err := client.ExpenseDue(ctx, connect.NewRequest(&ledger_iface.ExpenseDueRequest{
		BranchScope: ledger_iface.BranchScope{BranchID: c.branch},
		Now:         now,
	}))
	if err != nil {
		log.Error().Err(err).Str("code", connect.CodeOf(err).String()).Msg("listing due expenses")
		return subcommands.ExitFailure
	}

	for _, exp := range res.Msg.Data {
		log.Info().
			Uint("expense_id", exp.ID).
			Str("name", exp.Name).
			Str("amount", exp.Amount.String()).
			Str("next", exp.NextDueDate.Format(time.DateOnly)).
			Msg("due")
	}
	return subcommands.ExitSuccess
}
