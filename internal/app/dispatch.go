package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-commons/internal/commons/command"
	"github.com/yungbote/neurobridge-commons/internal/commons/presenter"
	commonerr "github.com/yungbote/neurobridge-commons/internal/pkg/errors"
)

// Execute runs a registered command by name.
func (a *App) Execute(ctx context.Context, name string, opts map[string]any) (command.Outcome, error) {
	r, ok := a.Registries.Commands.Lookup(name)
	if !ok {
		return nil, commonerr.InvalidArgument(fmt.Sprintf("unknown command %q", name))
	}
	start := time.Now()
	out, err := r.Execute(ctx, opts)
	status := "error"
	switch {
	case err != nil:
	case out.Success():
		status = "success"
	default:
		status = "failure"
	}
	a.Metrics.ObserveCommand(name, status, time.Since(start))
	if err != nil {
		a.Log.Warn("command failed", "command", name, "error", err)
		return nil, err
	}
	return out, nil
}

// Present renders a registered presenter by name.
func (a *App) Present(ctx context.Context, name string, opts map[string]any, positional ...any) (*presenter.Output, error) {
	d, ok := a.Registries.Presenters.Lookup(name)
	if !ok {
		return nil, commonerr.InvalidArgument(fmt.Sprintf("unknown presenter %q", name))
	}
	out, err := d.Present(ctx, opts, positional...)
	a.Metrics.ObservePresenter(name, err)
	return out, err
}

// Scope runs a registered query by name and returns its scope.
func (a *App) Scope(ctx context.Context, name string, opts map[string]any) (*gorm.DB, error) {
	r, ok := a.Registries.Queries.Lookup(name)
	if !ok {
		return nil, commonerr.InvalidArgument(fmt.Sprintf("unknown query %q", name))
	}
	scope, err := r.QueryAsScope(ctx, nil, opts)
	a.Metrics.ObserveQuery(name, err)
	return scope, err
}

// Counts runs the order counts aggregate and records it.
func (a *App) Counts(ctx context.Context) (map[string]int64, error) {
	counts, err := a.Orders.Counts(ctx)
	a.Metrics.ObserveQuery("order_counts", err)
	if err != nil {
		return nil, err
	}
	a.Metrics.SetAggregates("order_counts", counts)
	return counts, nil
}
