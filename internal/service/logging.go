package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/iliyamo/spark-meetup/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if p, ok := PrincipalFrom(ctx); ok {
		pairs = append(pairs, "actor_id", p.UserID)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// logOutcome is deferred by service operations. Known error kinds log at
// Info, unexpected ones at Error.
func logOutcome(ctx context.Context, logger *slog.Logger, err error, msg string) {
	if err == nil {
		logger.InfoContext(ctx, msg+" succeeded")
		return
	}
	kind := ErrorKind(err)
	if kind == "unexpected" {
		logger.ErrorContext(ctx, msg+" failed", "error", err, "error_kind", kind)
		return
	}
	logger.InfoContext(ctx, msg+" rejected", "error", err, "error_kind", kind)
}

// logFailure is deferred by read operations, which log nothing on success.
// Only unexpected errors are written.
func logFailure(ctx context.Context, base *slog.Logger, serviceName, operation string, err error) {
	if err == nil || ErrorKind(err) != "unexpected" {
		return
	}
	serviceLogger(ctx, base, serviceName, operation).ErrorContext(ctx, "read failed", "error", err, "error_kind", "unexpected")
}

// ErrorKind maps sentinel and validation errors to a stable label. The HTTP
// layer reuses it as the error code.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrDuplicateRegistration):
		return "duplicate_registration"
	case errors.Is(err, ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, ErrPaymentSetupRequired):
		return "payment_setup_required"
	case errors.Is(err, ErrIncompleteProfile):
		return "incomplete_profile"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, ErrExpiredToken):
		return "expired_token"
	case errors.Is(err, ErrTokenAlreadyUsed):
		return "token_already_used"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
