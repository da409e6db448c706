package log

import (
	"context"
	"log/slog"
)

// ContextKey type for context keys
type ContextKey string

// LoggerContextKey holds the request-scoped logger installed by the trace
// middleware.
const LoggerContextKey ContextKey = "logger"

// FromContext returns the request-scoped logger, or one over slog.Default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

// StructuredLogger writes the domain events that get a fixed field set.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogBillRequested logs a stored bill copy request
func (sl *StructuredLogger) LogBillRequested(ctx context.Context, service, billID string, amount float64, requestID string) {
	fields := NewFields().
		WithBill(service, billID, amount).
		WithOperation(OpCreate).
		ToSlice()
	fields = append(fields, FieldLedgerRef, requestID)

	sl.logger.InfoContext(ctx, "Bill copy requested", fields...)
}

// LogBillPaid logs a completed mock payment.
func (sl *StructuredLogger) LogBillPaid(ctx context.Context, service, billID string, amount float64, method string) {
	fields := NewFields().
		WithBill(service, billID, amount).
		WithOperation(OpPay).
		ToSlice()
	fields = append(fields, "method", method)

	sl.logger.InfoContext(ctx, "Bill paid", fields...)
}

// LogError logs an error with its operation.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	sl.logger.ErrorContext(ctx, msg, fields.WithError(err).WithOperation(operation).ToSlice()...)
}
