package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/receiptsplit/pkg/logging"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// It logs the procedure name, session ID, duration, and any error codes/messages.
// It must run inside RequireSession to see the session ID.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure
			sessionID := GetSessionID(ctx) // empty for public procedures

			resp, err := next(ctx, req)

			duration := time.Since(start).Milliseconds()
			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					slog.WarnContext(ctx, "RPC error",
						logging.FieldProcedure, procedure,
						logging.FieldCode, connectErr.Code(),
						logging.FieldError, connectErr.Message(),
						logging.FieldSessionID, sessionID,
						logging.FieldDuration, duration,
					)
				} else {
					slog.ErrorContext(ctx, "RPC error",
						logging.FieldProcedure, procedure,
						logging.FieldError, err,
						logging.FieldSessionID, sessionID,
						logging.FieldDuration, duration,
					)
				}
			} else {
				slog.InfoContext(ctx, "RPC ok",
					logging.FieldProcedure, procedure,
					logging.FieldSessionID, sessionID,
					logging.FieldDuration, duration,
				)
			}

			return resp, err
		}
	}
}
