package ledger_iface

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"
	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/logging"
	"github.com/rs/zerolog"
)

// NewValidator reports fields by their json names.
func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// NewValidateInterceptor rejects requests failing their struct tags with a
// ledger ValidationError on the first offending field.
func NewValidateInterceptor(validate *validator.Validate) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			err := validate.StructCtx(ctx, req.Any())
			if err != nil {
				var verrs validator.ValidationErrors
				if errors.As(err, &verrs) && len(verrs) > 0 {
					first := verrs[0]
					return nil, ledger_core.NewValidationError(first.Field(), "failed on %s", first.Tag())
				}

				var invalid *validator.InvalidValidationError
				if !errors.As(err, &invalid) {
					return nil, err
				}
			}

			return next(ctx, req)
		}
	}
}

// NewLoggingInterceptor puts a request scoped logger on the context and
// logs every call with its outcome.
func NewLoggingInterceptor(logger zerolog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			reqLogger := logger.With().
				Str("procedure", req.Spec().Procedure).
				Str("peer", req.Peer().Addr).
				Logger()

			ctx = logging.WithContext(ctx, reqLogger)
			res, err := next(ctx, req)

			event := reqLogger.Info()
			if err != nil {
				event = reqLogger.Warn().Err(err).Str("code", connect.CodeOf(err).String())
			}
			event.Dur("duration", time.Since(start)).Msg("handled request")

			return res, err
		}
	}
}

// HandlerOptions is the interceptor chain every ledger service is mounted
// with. Logging wraps the error mapping so it records the connect code.
func HandlerOptions(logger zerolog.Logger) []connect.HandlerOption {
	return []connect.HandlerOption{
		connect.WithInterceptors(
			NewLoggingInterceptor(logger),
			NewErrorInterceptor(),
			NewValidateInterceptor(NewValidator()),
		),
	}
}
