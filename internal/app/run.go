package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/stagegrid/internal/config"
	"github.com/specialistvlad/stagegrid/internal/ctxlog"
	"github.com/specialistvlad/stagegrid/internal/loader"
	"github.com/specialistvlad/stagegrid/internal/session"
)

// ErrNoPath is returned when a command needs arrangements but no path was configured.
var ErrNoPath = errors.New("no arrangement path given")

// Run loads the configured arrangement, executes it on a fresh session and
// writes the result summary. The report is returned even when the run failed.
func (a *App) Run(ctx context.Context) (*Report, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	a.startHealthCheckServer()

	arr, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	return a.execute(ctx, arr)
}

// Validate loads the arrangements and compiles every stage without
// executing anything. With an arrangement name only that one is checked.
func (a *App) Validate(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	arrs, err := a.loadAll(ctx)
	if err != nil {
		return err
	}
	if a.config.Arrangement != "" {
		arr, err := loader.Single(arrs, a.config.Arrangement)
		if err != nil {
			return err
		}
		arrs = []*config.Arrangement{arr}
	}

	var errs []error
	for _, arr := range arrs {
		if err := a.engine.Validate(ctx, arr); err != nil {
			errs = append(errs, fmt.Errorf("arrangement %q: %w", arr.Name, err))
			continue
		}
		a.logger.Info("Arrangement is valid.", "arrangement", arr.Name, "stages", len(arr.Stages), "tasks", len(arr.Tasks))
	}
	return errors.Join(errs...)
}

// Tasks returns the implementation references that arrangements can use.
func (a *App) Tasks() []string {
	return a.registry.Refs()
}

func (a *App) execute(ctx context.Context, arr *config.Arrangement) (*Report, error) {
	sess := session.New(a.config.inputs())
	start := time.Now()
	err := a.engine.Run(ctx, arr, sess)

	report := newReport(arr, sess, time.Since(start), err)
	report.Write(a.outW)
	if err != nil {
		return report, fmt.Errorf("run of arrangement %q failed: %w", arr.Name, err)
	}
	return report, nil
}

func (a *App) load(ctx context.Context) (*config.Arrangement, error) {
	arrs, err := a.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	return loader.Single(arrs, a.config.Arrangement)
}

func (a *App) loadAll(ctx context.Context) ([]*config.Arrangement, error) {
	if a.config.ConfigPath == "" {
		return nil, ErrNoPath
	}
	arrs, err := a.loader.Load(ctx, a.config.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load arrangements: %w", err)
	}
	a.logger.Debug("Arrangements loaded.", "path", a.config.ConfigPath, "count", len(arrs))
	return arrs, nil
}
