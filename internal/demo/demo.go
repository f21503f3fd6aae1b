// Package demo holds the walkthroughs run by the seqdemo binary. Each demo
// composes sequences, prints their results to Env.Out and routes every
// traversal through the logging and tracing stages.
package demo

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/observability"
	"github.com/kbukum/seqkit/pipeline"
)

// Env is what a demo runs against.
type Env struct {
	Out     io.Writer
	Log     *logger.Logger
	Tracer  trace.Tracer
	Metrics *observability.Metrics
	// OnPlan receives the stage graph of every observed query, keyed
	// "<demo>.<query>".
	OnPlan func(key string, stage *pipeline.Stage)

	demo string
}

// Demo is a named walkthrough.
type Demo struct {
	Name        string
	Description string
	Run         func(ctx context.Context, env *Env) error
}

// Registry keeps demos in registration order.
type Registry struct {
	mu    sync.RWMutex
	demos []Demo
	index map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds d. Names must be unique and non-empty.
func (r *Registry) Register(d Demo) error {
	if d.Name == "" || d.Run == nil {
		return apperrors.New(apperrors.ErrCodeInvalidArgument, "demo needs a name and a run function")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[d.Name]; ok {
		return apperrors.New(apperrors.ErrCodeInvalidArgument, fmt.Sprintf("demo %q already registered", d.Name))
	}
	r.index[d.Name] = len(r.demos)
	r.demos = append(r.demos, d)
	return nil
}

// Get returns the demo registered under name.
func (r *Registry) Get(name string) (Demo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[name]
	if !ok {
		return Demo{}, false
	}
	return r.demos[i], true
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.demos))
	for i, d := range r.demos {
		names[i] = d.Name
	}
	return names
}

// Run runs the named demos in the given order, or every demo when names is
// empty. Unknown names are rejected before anything runs. The first failing
// demo stops the run, and so does cancellation of ctx, which is checked
// before each demo starts.
func (r *Registry) Run(ctx context.Context, env *Env, names ...string) error {
	if len(names) == 0 {
		names = r.Names()
	}
	selected := make([]Demo, 0, len(names))
	var unknown []string
	for _, name := range names {
		d, ok := r.Get(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		selected = append(selected, d)
	}
	if len(unknown) > 0 {
		return apperrors.InvalidConfig("demos", "unknown demo(s): "+strings.Join(unknown, ", "))
	}

	base := env.withDefaults()
	for _, d := range selected {
		if err := ctx.Err(); err != nil {
			base.Log.Warn("demo run canceled", logger.Fields(logger.FieldDemo, d.Name))
			return err
		}
		run := base
		run.demo = d.Name
		run.Log = base.Log.WithFields(logger.Fields(logger.FieldDemo, d.Name))

		fmt.Fprintf(run.Out, "== %s ==\n", d.Name)
		start := time.Now()
		run.Log.Debug("demo started")
		if err := d.Run(ctx, &run); err != nil {
			run.Log.WithError(err).Error("demo failed")
			return fmt.Errorf("demo %s: %w", d.Name, err)
		}
		run.Log.Info("demo finished", logger.DurationFields("run", time.Since(start)))
	}
	return nil
}

func (e *Env) withDefaults() Env {
	out := *e
	if out.Out == nil {
		out.Out = io.Discard
	}
	if out.Log == nil {
		out.Log = logger.Nop()
	}
	return out
}

// observe attaches the logging stage and, when a tracer is configured, the
// tracing stage to s, and reports the resulting plan.
func observe[T any](env *Env, name string, s *pipeline.Sequence[T]) *pipeline.Sequence[T] {
	s = observability.Logged(s, name, env.Log)
	if env.Tracer != nil {
		s = observability.Instrument(s, name, env.Tracer, env.Metrics)
	}
	if env.OnPlan != nil {
		env.OnPlan(env.demo+"."+name, s.Stage())
	}
	return s
}

// show prints label followed by the elements of s separated by spaces.
func show[T any](ctx context.Context, env *Env, label string, s *pipeline.Sequence[T]) error {
	text, err := pipeline.Join(ctx, s, " ")
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "%s: %s\n", label, text)
	return nil
}

// printf writes one formatted line.
func printf(env *Env, format string, args ...any) {
	fmt.Fprintf(env.Out, format+"\n", args...)
}

// Builtin returns a registry holding every demo.
func Builtin() *Registry {
	r := NewRegistry()
	for _, d := range []Demo{
		{Name: "query", Description: "filter, order and project a list of names", Run: runQuery},
		{Name: "scenario", Description: "build a chain one operator at a time", Run: runScenario},
		{Name: "reevaluation", Description: "queries re-read their source; Collect snapshots it", Run: runReevaluation},
		{Name: "infinite", Description: "lazy operators over an unbounded source", Run: runInfinite},
		{Name: "fibonacci", Description: "hand-written cursors and early termination", Run: runFibonacci},
		{Name: "operators", Description: "element, aggregate, quantifier and set operators", Run: runOperators},
		{Name: "closures", Description: "captured variables are read during iteration", Run: runClosures},
	} {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}
