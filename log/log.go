// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"io"
	"log/slog"
	"slices"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Levels, ordered from the most to the least verbose.
const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// Logger writes key/value records.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
	With(ctx ...any) Logger
	Enabled(level slog.Level) bool
}

// contextLogger resolves the root logger on every call, so package level loggers
// declared before SetDefault still honour the configured handler.
type contextLogger struct {
	ctx []any
}

// WithContext returns a logger that prefixes every record with ctx.
//
//	var logger = log.WithContext("pkg", "processor")
func WithContext(ctx ...any) Logger {
	return &contextLogger{ctx: ctx}
}

// Root returns the root logger.
func Root() Logger {
	return &contextLogger{}
}

// SetDefault installs handler as the root handler.
func SetDefault(handler slog.Handler) {
	ethlog.SetDefault(ethlog.NewLogger(handler))
}

// TerminalHandler renders human friendly records, optionally colored.
func TerminalHandler(w io.Writer, level slog.Level, useColor bool) slog.Handler {
	return ethlog.NewTerminalHandlerWithLevel(w, level, useColor)
}

// JSONHandler renders one JSON object per record.
func JSONHandler(w io.Writer, level slog.Level) slog.Handler {
	return ethlog.JSONHandlerWithLevel(w, level)
}

// DiscardHandler drops every record.
func DiscardHandler() slog.Handler {
	return ethlog.DiscardHandler()
}

// FromVerbosity maps a 0 (crit) .. 5 (trace) verbosity onto a level.
func FromVerbosity(v int) slog.Level {
	return ethlog.FromLegacyLevel(v)
}

func (l *contextLogger) args(ctx []any) []any {
	if len(l.ctx) == 0 {
		return ctx
	}
	return slices.Concat(l.ctx, ctx)
}

func (l *contextLogger) Trace(msg string, ctx ...any) { ethlog.Root().Trace(msg, l.args(ctx)...) }
func (l *contextLogger) Debug(msg string, ctx ...any) { ethlog.Root().Debug(msg, l.args(ctx)...) }
func (l *contextLogger) Info(msg string, ctx ...any)  { ethlog.Root().Info(msg, l.args(ctx)...) }
func (l *contextLogger) Warn(msg string, ctx ...any)  { ethlog.Root().Warn(msg, l.args(ctx)...) }
func (l *contextLogger) Error(msg string, ctx ...any) { ethlog.Root().Error(msg, l.args(ctx)...) }

// Crit logs at the critical level. Unlike the underlying logger it does not exit the process.
func (l *contextLogger) Crit(msg string, ctx ...any) {
	ethlog.Root().Write(LevelCrit, msg, l.args(ctx)...)
}

func (l *contextLogger) With(ctx ...any) Logger {
	return &contextLogger{ctx: l.args(ctx)}
}

func (l *contextLogger) Enabled(level slog.Level) bool {
	return ethlog.Root().Enabled(context.Background(), level)
}
