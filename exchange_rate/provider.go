package exchange_rate

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/shopspring/decimal"
)

// Provider returns how many units of `to` one unit of `from` is worth.
type Provider interface {
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
	Base() string
}

// StaticProvider quotes every currency against the base currency.
type StaticProvider struct {
	base  string
	rates map[string]decimal.Decimal
}

func NewStaticProvider(base string, rates map[string]decimal.Decimal) *StaticProvider {
	norm := map[string]decimal.Decimal{}
	for code, rate := range rates {
		norm[strings.ToUpper(code)] = rate
	}
	base = strings.ToUpper(base)
	norm[base] = decimal.NewFromInt(1)

	return &StaticProvider{
		base:  base,
		rates: norm,
	}
}

// Base implements Provider.
func (s *StaticProvider) Base() string {
	return s.base
}

// Rate implements Provider.
func (s *StaticProvider) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	fromRate, ok := s.rates[from]
	if !ok || !fromRate.IsPositive() {
		return decimal.Zero, ledger_core.NewValidationError("currency", "no exchange rate for %s", from)
	}
	toRate, ok := s.rates[to]
	if !ok || !toRate.IsPositive() {
		return decimal.Zero, ledger_core.NewValidationError("currency", "no exchange rate for %s", to)
	}

	return fromRate.DivRound(toRate, 8), nil
}

// ToBase converts amount in currency to the provider's base currency.
func ToBase(ctx context.Context, p Provider, amount decimal.Decimal, currency string) (decimal.Decimal, decimal.Decimal, error) {
	rate, err := p.Rate(ctx, currency, p.Base())
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("converting %s to %s: %w", currency, p.Base(), err)
	}
	return ledger_core.RoundAmount(amount.Mul(rate)), rate, nil
}
