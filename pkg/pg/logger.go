package pg

import "context"

// logger is the minimal structured-logging surface Migrate needs. slog
// satisfies it directly.
type logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}
