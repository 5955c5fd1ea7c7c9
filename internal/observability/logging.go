// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
)

// RepoLoggingEnabled toggles per-operation repository logs.
var RepoLoggingEnabled = true

// RepoLogger provides structured logging for repository operations.
type RepoLogger struct {
	tableName string
}

// NewRepoLogger creates a new RepoLogger for the given table.
func NewRepoLogger(tableName string) *RepoLogger {
	return &RepoLogger{tableName: tableName}
}

// LogCreate logs a repository create operation.
func (l *RepoLogger) LogCreate(ctx context.Context, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelInfo, "create", "repository create", attrs)
}

// LogRead logs a repository read operation at debug level.
func (l *RepoLogger) LogRead(ctx context.Context, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelDebug, "read", "repository read", attrs)
}

// LogUpdate logs a repository update operation.
func (l *RepoLogger) LogUpdate(ctx context.Context, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelInfo, "update", "repository update", attrs)
}

// LogDelete logs a repository delete operation.
func (l *RepoLogger) LogDelete(ctx context.Context, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelInfo, "delete", "repository delete", attrs)
}

// LogError logs a repository error.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	l.log(ctx, slog.LevelError, operation, "repository error", []slog.Attr{slog.String("error", err.Error())})
}

func (l *RepoLogger) log(ctx context.Context, level slog.Level, operation, msg string, attrs []slog.Attr) {
	if !RepoLoggingEnabled {
		return
	}
	all := make([]slog.Attr, 0, len(attrs)+2)
	all = append(all, slog.String("table", l.tableName), slog.String("operation", operation))
	all = append(all, attrs...)
	slog.Default().LogAttrs(ctx, level, msg, all...)
}
