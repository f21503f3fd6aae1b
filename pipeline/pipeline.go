package pipeline

import (
	"context"
	"iter"
)

// Cursor provides pull-based sequential access to one traversal of a Sequence.
// A Cursor is not safe for concurrent use.
type Cursor[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the cursor.
	Close() error
}

// Sequence is a lazy, re-iterable description of an ordered stream of values.
// No work happens until a Cursor over it is advanced.
type Sequence[T any] struct {
	create func(ctx context.Context) Cursor[T]
	stage  *Stage
}

// Runnable is a fully-configured traversal ready to execute.
type Runnable struct {
	run func(ctx context.Context) error
}

// Run executes the traversal until the sequence is exhausted or a fault occurs.
func (r *Runnable) Run(ctx context.Context) error {
	return r.run(ctx)
}

// Cursor starts a new traversal. The caller must Close it.
//
// The returned cursor is guarded: once it reports a fault it keeps returning
// that fault, and once exhausted it keeps reporting exhaustion, without
// touching its source again.
func (s *Sequence[T]) Cursor(ctx context.Context) Cursor[T] {
	requireSequence("Cursor", s)
	return &guardCursor[T]{source: s.create(ctx)}
}

// All returns a single-use range-over-func view of a new traversal. A fault
// is yielded once with a zero value and ends the iteration.
//
//	for v, err := range seq.All(ctx) { ... }
func (s *Sequence[T]) All(ctx context.Context) iter.Seq2[T, error] {
	requireSequence("All", s)
	return func(yield func(T, error) bool) {
		c := s.Cursor(ctx)
		defer c.Close()
		for {
			val, ok, err := c.Next(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok || !yield(val, nil) {
				return
			}
		}
	}
}

// Stage returns the description of the operator that produced this sequence.
func (s *Sequence[T]) Stage() *Stage {
	if s == nil {
		return nil
	}
	return s.stage
}

// --- Constructors ---

// FromFunc creates a sequence from a factory that produces a Cursor. The
// factory is called once per traversal and must return an independent cursor
// each time.
func FromFunc[T any](fn func(ctx context.Context) Cursor[T]) *Sequence[T] {
	if fn == nil {
		panic(usageFault("FromFunc", "factory", "must not be nil"))
	}
	return newSequence(fn, &Stage{Name: "func", Kind: KindSource})
}

// --- Terminals ---

// Drain creates a Runnable that pulls all values and sends each to sink.
func Drain[T any](s *Sequence[T], sink func(context.Context, T) error) *Runnable {
	requireSequence("Drain", s)
	requireFunc("Drain", "sink", sink == nil)
	return &Runnable{
		run: func(ctx context.Context) error {
			c := s.Cursor(ctx)
			defer c.Close()
			for {
				val, ok, err := c.Next(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				if err := sink(ctx, val); err != nil {
					return err
				}
			}
		},
	}
}

// Collect runs a traversal and returns all values as a slice. The result is a
// snapshot: later changes to the source do not affect it. On a fault the
// values produced before it are returned alongside the error.
func Collect[T any](ctx context.Context, s *Sequence[T]) ([]T, error) {
	requireSequence("Collect", s)
	c := s.Cursor(ctx)
	defer c.Close()
	var result []T
	for {
		val, ok, err := c.Next(ctx)
		if err != nil {
			return result, err
		}
		if !ok {
			return result, nil
		}
		result = append(result, val)
	}
}

// ForEach pulls all values and calls fn for each. Convenience wrapper around Drain.
func ForEach[T any](ctx context.Context, s *Sequence[T], fn func(context.Context, T) error) error {
	return Drain(s, fn).Run(ctx)
}

// --- Internal cursors ---

func newSequence[T any](create func(ctx context.Context) Cursor[T], stage *Stage) *Sequence[T] {
	return &Sequence[T]{create: create, stage: stage}
}

type guardCursor[T any] struct {
	source Cursor[T]
	err    error
	done   bool
	closed bool
}

func (c *guardCursor[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if c.err != nil {
		return zero, false, c.err
	}
	if c.done || c.closed {
		return zero, false, nil
	}
	val, ok, err := c.source.Next(ctx)
	if err != nil {
		c.err = err
		return zero, false, err
	}
	if !ok {
		c.done = true
		return zero, false, nil
	}
	return val, true, nil
}

func (c *guardCursor[T]) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.source.Close()
}

type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.index >= len(it.items) {
		var zero T
		return zero, false, nil
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }
