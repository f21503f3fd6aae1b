package pipeline

import (
	"context"
	"fmt"
	"iter"
)

// FromSlice creates a sequence over items. Element writes made to the backing
// array between traversals are visible; use FromSlicePtr when the slice
// itself may grow, shrink or be replaced.
func FromSlice[T any](items []T) *Sequence[T] {
	return newSequence(
		func(_ context.Context) Cursor[T] {
			return &sliceIter[T]{items: items}
		},
		&Stage{Name: "slice", Label: fmt.Sprintf("len=%d", len(items)), Kind: KindSource},
	)
}

// Of creates a sequence over the given values.
func Of[T any](items ...T) *Sequence[T] {
	return FromSlice(items)
}

// FromSlicePtr creates a sequence that reads *items each time a traversal
// starts, so appends, truncation and reassignment between traversals are
// observed.
func FromSlicePtr[T any](items *[]T) *Sequence[T] {
	if items == nil {
		panic(usageFault("FromSlicePtr", "items", "must not be nil"))
	}
	return newSequence(
		func(_ context.Context) Cursor[T] {
			return &sliceIter[T]{items: *items}
		},
		&Stage{Name: "slice", Label: "ref", Kind: KindSource},
	)
}

// FromSeq adapts an iter.Seq. The seq is started on the first pull of each
// traversal and stopped when the cursor is closed.
func FromSeq[T any](seq iter.Seq[T]) *Sequence[T] {
	if seq == nil {
		panic(usageFault("FromSeq", "seq", "must not be nil"))
	}
	return newSequence(
		func(_ context.Context) Cursor[T] {
			return &pullIter[T]{seq: seq}
		},
		&Stage{Name: "seq", Kind: KindSource},
	)
}

// Iterate creates the infinite sequence seed, fn(seed), fn(fn(seed)), ...
// fn is called only when the next element is requested.
func Iterate[T any](seed T, fn func(T) T) *Sequence[T] {
	requireFunc("Iterate", "fn", fn == nil)
	return newSequence(
		func(_ context.Context) Cursor[T] {
			return &iterateIter[T]{current: seed, fn: fn}
		},
		&Stage{Name: "iterate", Label: "infinite", Kind: KindSource},
	)
}

// Range creates the sequence start, start+1, ..., start+count-1.
func Range(start, count int) *Sequence[int] {
	requireCount("Range", count)
	return newSequence(
		func(_ context.Context) Cursor[int] {
			return &rangeIter{next: start, remaining: count}
		},
		&Stage{Name: "range", Label: fmt.Sprintf("%d..%d", start, start+count), Kind: KindSource},
	)
}

// Empty creates a sequence with no elements.
func Empty[T any]() *Sequence[T] {
	return newSequence(
		func(_ context.Context) Cursor[T] {
			return &sliceIter[T]{}
		},
		&Stage{Name: "empty", Kind: KindSource},
	)
}

type pullIter[T any] struct {
	seq  iter.Seq[T]
	next func() (T, bool)
	stop func()
}

func (it *pullIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.next == nil {
		it.next, it.stop = iter.Pull(it.seq)
	}
	val, ok := it.next()
	return val, ok, nil
}

func (it *pullIter[T]) Close() error {
	if it.stop != nil {
		it.stop()
	}
	return nil
}

type iterateIter[T any] struct {
	current T
	fn      func(T) T
	started bool
}

func (it *iterateIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.started {
		it.current = it.fn(it.current)
	}
	it.started = true
	return it.current, true, nil
}

func (it *iterateIter[T]) Close() error { return nil }

type rangeIter struct {
	next      int
	remaining int
}

func (it *rangeIter) Next(_ context.Context) (int, bool, error) {
	if it.remaining <= 0 {
		return 0, false, nil
	}
	val := it.next
	it.next++
	it.remaining--
	return val, true, nil
}

func (it *rangeIter) Close() error { return nil }
