package app

import (
	"context"

	"github.com/hylla/tavla/internal/domain"
)

// LayoutStore persists the arrangement record and its mutation journal.
// Implementations classify load failures with the sentinel errors in this
// package so the engine can fall back to the default layout.
type LayoutStore interface {
	LoadLayout(context.Context) (domain.Layout, error)
	SaveLayout(context.Context, domain.Layout) error
	DeleteLayout(context.Context) error

	AppendChangeEvents(context.Context, []domain.ChangeEvent) error
	ListChangeEvents(context.Context, int) ([]domain.ChangeEvent, error)
}

// Logger matches the charmbracelet/log call shape so the runtime logger
// can be injected directly.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

// nopLogger discards everything; used when no logger is injected.
type nopLogger struct{}

func (nopLogger) Debug(any, ...any) {}
func (nopLogger) Info(any, ...any)  {}
func (nopLogger) Warn(any, ...any)  {}
func (nopLogger) Error(any, ...any) {}
