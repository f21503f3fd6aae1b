package pipeline

import (
	"context"
	"fmt"
)

// Take yields at most the first n values of s. Once n values have been
// yielded the source is not pulled again.
func Take[T any](s *Sequence[T], n int) *Sequence[T] {
	requireSequence("Take", s)
	requireCount("Take", n)
	return newSequence(
		func(ctx context.Context) Cursor[T] {
			return &takeIter[T]{source: s.create(ctx), remaining: n}
		},
		lazyStage("take", fmt.Sprintf("n=%d", n), s.stage),
	)
}

// Skip discards the first n values of s and yields the rest.
func Skip[T any](s *Sequence[T], n int) *Sequence[T] {
	requireSequence("Skip", s)
	requireCount("Skip", n)
	return newSequence(
		func(ctx context.Context) Cursor[T] {
			return &skipIter[T]{source: s.create(ctx), toSkip: n}
		},
		lazyStage("skip", fmt.Sprintf("n=%d", n), s.stage),
	)
}

// TakeWhile yields values while fn holds and stops at the first value that
// fails it, without pulling further.
func TakeWhile[T any](s *Sequence[T], fn func(T) bool) *Sequence[T] {
	requireSequence("TakeWhile", s)
	requireFunc("TakeWhile", "predicate", fn == nil)
	return newSequence(
		func(ctx context.Context) Cursor[T] {
			return &takeWhileIter[T]{source: s.create(ctx), fn: fn}
		},
		lazyStage("takeWhile", "", s.stage),
	)
}

// SkipWhile discards values while fn holds, then yields the first failing
// value and everything after it.
func SkipWhile[T any](s *Sequence[T], fn func(T) bool) *Sequence[T] {
	requireSequence("SkipWhile", s)
	requireFunc("SkipWhile", "predicate", fn == nil)
	return newSequence(
		func(ctx context.Context) Cursor[T] {
			return &skipWhileIter[T]{source: s.create(ctx), fn: fn}
		},
		lazyStage("skipWhile", "", s.stage),
	)
}

// Chunk groups consecutive values into slices of size. The last slice holds
// the remainder and may be shorter.
func Chunk[T any](s *Sequence[T], size int) *Sequence[[]T] {
	requireSequence("Chunk", s)
	if size <= 0 {
		panic(usageFault("Chunk", "size", fmt.Sprintf("must be positive (got %d)", size)))
	}
	return newSequence(
		func(ctx context.Context) Cursor[[]T] {
			return &chunkIter[T]{source: s.create(ctx), size: size}
		},
		lazyStage("chunk", fmt.Sprintf("size=%d", size), s.stage),
	)
}

type takeIter[T any] struct {
	source    Cursor[T]
	remaining int
}

func (it *takeIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	if it.remaining <= 0 {
		return result, false, nil
	}
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return result, false, err
	}
	it.remaining--
	return val, true, nil
}

func (it *takeIter[T]) Close() error { return it.source.Close() }

type skipIter[T any] struct {
	source Cursor[T]
	toSkip int
}

func (it *skipIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	for it.toSkip > 0 {
		_, ok, err := it.source.Next(ctx)
		if err != nil {
			return result, false, err
		}
		if !ok {
			it.toSkip = 0
			return result, false, nil
		}
		it.toSkip--
	}
	return it.source.Next(ctx)
}

func (it *skipIter[T]) Close() error { return it.source.Close() }

type takeWhileIter[T any] struct {
	source Cursor[T]
	fn     func(T) bool
	done   bool
}

func (it *takeWhileIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	if it.done {
		return result, false, nil
	}
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return result, false, err
	}
	if !it.fn(val) {
		it.done = true
		return result, false, nil
	}
	return val, true, nil
}

func (it *takeWhileIter[T]) Close() error { return it.source.Close() }

type skipWhileIter[T any] struct {
	source   Cursor[T]
	fn       func(T) bool
	yielding bool
}

func (it *skipWhileIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return result, false, err
		}
		if it.yielding || !it.fn(val) {
			it.yielding = true
			return val, true, nil
		}
	}
}

func (it *skipWhileIter[T]) Close() error { return it.source.Close() }

type chunkIter[T any] struct {
	source Cursor[T]
	size   int
	done   bool
}

func (it *chunkIter[T]) Next(ctx context.Context) (result []T, ok bool, err error) {
	if it.done {
		return nil, false, nil
	}
	batch := make([]T, 0, it.size)
	for len(batch) < it.size {
		val, ok, err := it.source.Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			it.done = true
			break
		}
		batch = append(batch, val)
	}
	if len(batch) == 0 {
		return nil, false, nil
	}
	return batch, true, nil
}

func (it *chunkIter[T]) Close() error { return it.source.Close() }
