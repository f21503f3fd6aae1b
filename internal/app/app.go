// Package app wires the seqdemo binary: it turns a Config into a bootstrap
// application with telemetry components and runs the selected demos.
package app

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/kbukum/seqkit/bootstrap"
	"github.com/kbukum/seqkit/drawer"
	"github.com/kbukum/seqkit/internal/demo"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/observability"
	"github.com/kbukum/seqkit/pipeline"
)

// Options carries the non-config inputs of a run.
type Options struct {
	// Out receives the demo output. Defaults to stdout.
	Out io.Writer
	// Summary receives the startup summary. Defaults to stderr.
	Summary io.Writer
	// Logger overrides the global logger and the registry's component loggers.
	Logger  *logger.Logger
	Version string
}

// Run validates cfg, starts the enabled telemetry providers, runs the
// configured demos and shuts everything down.
func Run(ctx context.Context, cfg *Config, opts Options) error {
	bopts := []bootstrap.Option{bootstrap.WithSummaryOutput(opts.Summary)}
	if opts.Logger != nil {
		bopts = append(bopts, bootstrap.WithLogger(opts.Logger))
	}
	if opts.Version != "" {
		bopts = append(bopts, bootstrap.WithVersion(opts.Version))
	}
	a, err := bootstrap.NewApp(cfg, bopts...)
	if err != nil {
		return err
	}

	obs := cfg.Observability
	var tracing *observability.TracingComponent
	var metrics *observability.MetricsComponent
	if obs.Tracing.Enabled {
		tracing = observability.NewTracingComponent(obs.Tracer(cfg.Name, a.Version, cfg.Environment))
		if err := a.RegisterComponent(tracing); err != nil {
			return err
		}
	}
	if obs.Metrics.Enabled {
		metrics = observability.NewMetricsComponent(obs.Meter(cfg.Name, a.Version, cfg.Environment))
		if err := a.RegisterComponent(metrics); err != nil {
			return err
		}
	}

	registry := demo.Builtin()
	selected := cfg.Demos
	if len(selected) == 0 {
		selected = registry.Names()
	}
	a.Summary.TrackDemos(selected)

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return a.RunTask(ctx, func(ctx context.Context) error {
		env := &demo.Env{
			Out: out,
			Log: componentLogger(opts.Logger, "demo"),
		}
		switch {
		case tracing != nil:
			env.Tracer = observability.Tracer()
		case metrics != nil:
			env.Tracer = observability.NoopTracer()
		}
		if metrics != nil {
			env.Metrics = metrics.Metrics()
		}
		env.OnPlan = planHook(cfg.Drawer, componentLogger(opts.Logger, "drawer"))
		return registry.Run(ctx, env, selected...)
	})
}

// componentLogger derives a component logger from base, or takes it from
// the logger registry when no base was given.
func componentLogger(base *logger.Logger, name string) *logger.Logger {
	if base == nil {
		return logger.Get(name)
	}
	return base.WithComponent(name)
}

// planHook logs each observed query's stage graph and, when the drawer is
// enabled, writes it to <output_dir>/<key>.dot. Drawing failures are logged
// and do not stop the demo.
func planHook(cfg DrawerConfig, log *logger.Logger) func(string, *pipeline.Stage) {
	return func(key string, stage *pipeline.Stage) {
		if log.Enabled(zerolog.DebugLevel) {
			if text, err := drawer.Describe(stage); err == nil {
				log.Debug("query plan", logger.Fields(logger.FieldStage, key, logger.FieldPlan, text))
			}
		}
		if !cfg.Enabled {
			return
		}
		path := filepath.Join(cfg.OutputDir, key+".dot")
		if err := drawer.DrawFile(path, stage, drawer.Options{RankDir: cfg.RankDir, Title: key}); err != nil {
			log.Warn("plan not drawn", logger.ErrorFields(key, err))
			return
		}
		log.Debug("plan drawn", logger.Fields("path", path))
	}
}
