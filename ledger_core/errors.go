package ledger_core

import (
	"errors"
	"fmt"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var ErrSkipTransaction = errors.New("skip transaction")

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

func NewValidationError(field, format string, a ...any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, a...),
	}
}

type InsufficientBalanceError struct {
	AccountID   uint            `json:"account_id"`
	AccountName string          `json:"account_name"`
	Currency    string          `json:"currency"`
	Required    decimal.Decimal `json:"required"`
	Available   decimal.Decimal `json:"available"`
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf(
		"insufficient balance in %s: required %s, available %s",
		e.AccountName,
		FormatAmount(e.Required, e.Currency),
		FormatAmount(e.Available, e.Currency),
	)
}

type NotFoundError struct {
	Entity string `json:"entity"`
	ID     uint   `json:"id"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

type AlreadyReversedError struct {
	TransactionID uint `json:"transaction_id"`
}

func (e *AlreadyReversedError) Error() string {
	return fmt.Sprintf("transaction %d already reversed", e.TransactionID)
}

type ConcurrencyConflictError struct {
	Attempts int
	Err      error
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("concurrent update conflict after %d attempts, try again: %v", e.Attempts, e.Err)
}

func (e *ConcurrencyConflictError) Unwrap() error {
	return e.Err
}

type ScheduleExpiredError struct {
	ScheduleID uint      `json:"schedule_id"`
	EndDate    time.Time `json:"end_date"`
}

func (e *ScheduleExpiredError) Error() string {
	return fmt.Sprintf("schedule %d expired on %s", e.ScheduleID, e.EndDate.Format(time.DateOnly))
}

// FormatAmount renders an amount with its currency symbol when the currency
// is known, falling back to "<amount> <code>".
func FormatAmount(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return fmt.Sprintf("%s %s", amount.StringFixed(2), currency)
	}

	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

// AmountPlaces is the scale of every stored amount column.
const AmountPlaces = 4

// RoundAmount rounds a computed amount to the stored scale.
func RoundAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(AmountPlaces)
}

// ValidAmountScale reports whether amount fits the stored scale unchanged.
func ValidAmountScale(amount decimal.Decimal) bool {
	return amount.Equal(RoundAmount(amount))
}

// ValidCurrency reports whether code is a known ISO 4217 currency.
func ValidCurrency(code string) bool {
	return money.GetCurrency(code) != nil
}
