package ledger_iface

import (
	"context"
	"errors"
	"strconv"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/ledger_core"
)

const (
	ErrorFieldHeader    = "Ledger-Error-Field"
	ErrorAccountHeader  = "Ledger-Error-Account"
	ErrorEntityHeader   = "Ledger-Error-Entity"
	ErrorAttemptsHeader = "Ledger-Error-Attempts"
)

// ToConnectError maps ledger errors onto connect codes. Errors that are
// already connect errors pass through untouched.
func ToConnectError(err error) error {
	if err == nil {
		return nil
	}

	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return err
	}

	var (
		validation   *ledger_core.ValidationError
		insufficient *ledger_core.InsufficientBalanceError
		notfound     *ledger_core.NotFoundError
		reversed     *ledger_core.AlreadyReversedError
		conflict     *ledger_core.ConcurrencyConflictError
		expired      *ledger_core.ScheduleExpiredError
	)

	switch {
	case errors.As(err, &validation):
		cerr = connect.NewError(connect.CodeInvalidArgument, err)
		cerr.Meta().Set(ErrorFieldHeader, validation.Field)
	case errors.As(err, &insufficient):
		cerr = connect.NewError(connect.CodeFailedPrecondition, err)
		cerr.Meta().Set(ErrorAccountHeader, strconv.FormatUint(uint64(insufficient.AccountID), 10))
	case errors.As(err, &notfound):
		cerr = connect.NewError(connect.CodeNotFound, err)
		cerr.Meta().Set(ErrorEntityHeader, notfound.Entity)
	case errors.As(err, &reversed):
		cerr = connect.NewError(connect.CodeAlreadyExists, err)
	case errors.As(err, &conflict):
		cerr = connect.NewError(connect.CodeAborted, err)
		cerr.Meta().Set(ErrorAttemptsHeader, strconv.Itoa(conflict.Attempts))
	case errors.As(err, &expired):
		cerr = connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, context.Canceled):
		cerr = connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		cerr = connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		cerr = connect.NewError(connect.CodeInternal, err)
	}

	return cerr
}

func NewErrorInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			res, err := next(ctx, req)
			if err != nil {
				return nil, ToConnectError(err)
			}
			return res, nil
		}
	}
}
