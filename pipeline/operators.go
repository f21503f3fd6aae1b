package pipeline

import (
	"context"

	apperrors "github.com/kbukum/seqkit/errors"
)

// Filter keeps only values that satisfy the predicate.
func Filter[T any](s *Sequence[T], fn func(T) bool) *Sequence[T] {
	requireSequence("Filter", s)
	requireFunc("Filter", "predicate", fn == nil)
	return TryFilter(s, func(_ context.Context, v T) (bool, error) { return fn(v), nil })
}

// TryFilter keeps only values that satisfy a predicate that may fail.
func TryFilter[T any](s *Sequence[T], fn func(context.Context, T) (bool, error)) *Sequence[T] {
	requireSequence("TryFilter", s)
	requireFunc("TryFilter", "predicate", fn == nil)
	return newSequence(
		func(ctx context.Context) Cursor[T] {
			return &filterIter[T]{source: s.create(ctx), fn: fn}
		},
		lazyStage("filter", "", s.stage),
	)
}

// Map transforms each value using fn.
func Map[I, O any](s *Sequence[I], fn func(context.Context, I) (O, error)) *Sequence[O] {
	requireSequence("Map", s)
	requireFunc("Map", "transform", fn == nil)
	return newSequence(
		func(ctx context.Context) Cursor[O] {
			return &mapIter[I, O]{source: s.create(ctx), fn: fn}
		},
		lazyStage("map", "", s.stage),
	)
}

// Project transforms each value using fn, which cannot fail.
func Project[I, O any](s *Sequence[I], fn func(I) O) *Sequence[O] {
	requireSequence("Project", s)
	requireFunc("Project", "transform", fn == nil)
	return Map(s, func(_ context.Context, v I) (O, error) { return fn(v), nil })
}

// FlatMap transforms each value into a sequence and flattens the results.
// A nil inner sequence contributes no values.
func FlatMap[I, O any](s *Sequence[I], fn func(context.Context, I) (*Sequence[O], error)) *Sequence[O] {
	requireSequence("FlatMap", s)
	requireFunc("FlatMap", "transform", fn == nil)
	return newSequence(
		func(ctx context.Context) Cursor[O] {
			return &flatMapIter[I, O]{source: s.create(ctx), fn: fn}
		},
		lazyStage("flatMap", "", s.stage),
	)
}

// Tap calls fn as a side-effect for each value, then passes the value through unchanged.
// Use for logging or printing mid-pipeline.
func Tap[T any](s *Sequence[T], fn func(context.Context, T) error) *Sequence[T] {
	requireSequence("Tap", s)
	requireFunc("Tap", "fn", fn == nil)
	return newSequence(
		func(ctx context.Context) Cursor[T] {
			return &tapIter[T]{source: s.create(ctx), fn: fn}
		},
		lazyStage("tap", "", s.stage),
	)
}

// Reduce accumulates all values into a single result.
// The sequence yields exactly one value: the final accumulator.
func Reduce[T, R any](s *Sequence[T], init R, fn func(R, T) R) *Sequence[R] {
	requireSequence("Reduce", s)
	requireFunc("Reduce", "accumulator", fn == nil)
	return newSequence(
		func(ctx context.Context) Cursor[R] {
			return &reduceIter[T, R]{source: s.create(ctx), acc: init, fn: fn}
		},
		&Stage{Name: "reduce", Kind: KindBuffered, Sources: []*Stage{s.stage}},
	)
}

// Concat joins sequences end to end. The cursor of each sequence is created
// only when the previous one is exhausted.
func Concat[T any](seqs ...*Sequence[T]) *Sequence[T] {
	sources := make([]*Stage, len(seqs))
	for i, s := range seqs {
		requireSequence("Concat", s)
		sources[i] = s.stage
	}
	return newSequence(
		func(_ context.Context) Cursor[T] {
			return &concatIter[T]{seqs: seqs}
		},
		lazyStage("concat", "", sources...),
	)
}

// Decorate wraps the cursor of s each time a traversal starts. wrap receives
// the source cursor and returns the cursor the consumer will see; returning
// nil is a usage fault raised when the traversal starts. The stage is
// recorded under name.
func Decorate[T any](s *Sequence[T], name string, wrap func(context.Context, Cursor[T]) Cursor[T]) *Sequence[T] {
	requireSequence("Decorate", s)
	requireFunc("Decorate", "wrap", wrap == nil)
	if name == "" {
		name = "decorate"
	}
	return newSequence(
		func(ctx context.Context) Cursor[T] {
			src := s.create(ctx)
			c := wrap(ctx, src)
			if c == nil {
				src.Close()
				panic(usageFault("Decorate", "wrap", "returned a nil cursor"))
			}
			return c
		},
		&Stage{Name: name, Kind: KindDecorator, Sources: []*Stage{s.stage}},
	)
}

// --- Cursor implementations ---

type filterIter[T any] struct {
	source Cursor[T]
	fn     func(context.Context, T) (bool, error)
	index  int
}

func (it *filterIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return result, false, err
		}
		idx := it.index
		it.index++
		keep, err := it.fn(ctx, val)
		if err != nil {
			return result, false, apperrors.Evaluation("filter", idx, err)
		}
		if keep {
			return val, true, nil
		}
	}
}

func (it *filterIter[T]) Close() error { return it.source.Close() }

type mapIter[I, O any] struct {
	source Cursor[I]
	fn     func(context.Context, I) (O, error)
	index  int
}

func (it *mapIter[I, O]) Next(ctx context.Context) (result O, ok bool, err error) {
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return result, false, err
	}
	idx := it.index
	it.index++
	out, err := it.fn(ctx, val)
	if err != nil {
		return result, false, apperrors.Evaluation("map", idx, err)
	}
	return out, true, nil
}

func (it *mapIter[I, O]) Close() error { return it.source.Close() }

type flatMapIter[I, O any] struct {
	source  Cursor[I]
	fn      func(context.Context, I) (*Sequence[O], error)
	current Cursor[O]
	index   int
}

func (it *flatMapIter[I, O]) Next(ctx context.Context) (result O, ok bool, err error) {
	for {
		if it.current != nil {
			val, ok, err := it.current.Next(ctx)
			if err != nil {
				return result, false, err
			}
			if ok {
				return val, true, nil
			}
			_ = it.current.Close()
			it.current = nil
		}
		in, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return result, false, err
		}
		idx := it.index
		it.index++
		inner, err := it.fn(ctx, in)
		if err != nil {
			return result, false, apperrors.Evaluation("flatMap", idx, err)
		}
		if inner != nil && inner.create != nil {
			it.current = inner.create(ctx)
		}
	}
}

func (it *flatMapIter[I, O]) Close() error {
	if it.current != nil {
		_ = it.current.Close()
	}
	return it.source.Close()
}

type tapIter[T any] struct {
	source Cursor[T]
	fn     func(context.Context, T) error
	index  int
}

func (it *tapIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return val, ok, err
	}
	idx := it.index
	it.index++
	if err := it.fn(ctx, val); err != nil {
		return result, false, apperrors.Evaluation("tap", idx, err)
	}
	return val, true, nil
}

func (it *tapIter[T]) Close() error { return it.source.Close() }

type reduceIter[T, R any] struct {
	source Cursor[T]
	acc    R
	fn     func(R, T) R
	done   bool
}

func (it *reduceIter[T, R]) Next(ctx context.Context) (result R, ok bool, err error) {
	if it.done {
		return result, false, nil
	}
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil {
			return result, false, err
		}
		if !ok {
			it.done = true
			return it.acc, true, nil
		}
		it.acc = it.fn(it.acc, val)
	}
}

func (it *reduceIter[T, R]) Close() error { return it.source.Close() }

type concatIter[T any] struct {
	seqs    []*Sequence[T]
	current Cursor[T]
	index   int
}

func (it *concatIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	for it.index < len(it.seqs) {
		if it.current == nil {
			it.current = it.seqs[it.index].create(ctx)
		}
		val, ok, err := it.current.Next(ctx)
		if err != nil {
			return val, false, err
		}
		if ok {
			return val, true, nil
		}
		_ = it.current.Close()
		it.current = nil
		it.index++
	}
	return result, false, nil
}

func (it *concatIter[T]) Close() error {
	if it.current == nil {
		return nil
	}
	err := it.current.Close()
	it.current = nil
	return err
}
