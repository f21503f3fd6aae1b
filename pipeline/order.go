package pipeline

import (
	"cmp"
	"context"
	"slices"

	apperrors "github.com/kbukum/seqkit/errors"
)

// SortBy orders values by ascending key. The sort is stable: values with
// equal keys keep their source order. The first pull drains the source and
// evaluates key exactly once per value.
func SortBy[T any, K cmp.Ordered](s *Sequence[T], key func(T) K) *Sequence[T] {
	requireSequence("SortBy", s)
	requireFunc("SortBy", "key", key == nil)
	return newSortSequence(s, "sortBy", "asc", pureKey(key), cmp.Compare[K])
}

// SortByDescending orders values by descending key, keeping the source order
// of values with equal keys.
func SortByDescending[T any, K cmp.Ordered](s *Sequence[T], key func(T) K) *Sequence[T] {
	requireSequence("SortByDescending", s)
	requireFunc("SortByDescending", "key", key == nil)
	return newSortSequence(s, "sortBy", "desc", pureKey(key), func(a, b K) int { return cmp.Compare(b, a) })
}

// SortFunc orders values with a comparison returning a negative number when
// a sorts before b, zero when equal and a positive number otherwise. Stable.
func SortFunc[T any](s *Sequence[T], compare func(a, b T) int) *Sequence[T] {
	requireSequence("SortFunc", s)
	requireFunc("SortFunc", "compare", compare == nil)
	identity := func(_ context.Context, v T) (T, error) { return v, nil }
	return newSortSequence(s, "sortFunc", "", identity, compare)
}

// TrySortBy orders values by ascending key where computing the key may fail.
// A failing key aborts the sort and no value is yielded.
func TrySortBy[T any, K cmp.Ordered](s *Sequence[T], key func(context.Context, T) (K, error)) *Sequence[T] {
	requireSequence("TrySortBy", s)
	requireFunc("TrySortBy", "key", key == nil)
	return newSortSequence(s, "sortBy", "asc", key, cmp.Compare[K])
}

// Reverse yields the values of s in reverse order. The first pull drains the
// source.
func Reverse[T any](s *Sequence[T]) *Sequence[T] {
	requireSequence("Reverse", s)
	return newSequence(
		func(ctx context.Context) Cursor[T] {
			return &reverseIter[T]{source: s.create(ctx)}
		},
		&Stage{Name: "reverse", Kind: KindBuffered, Sources: []*Stage{s.stage}},
	)
}

func pureKey[T, K any](key func(T) K) func(context.Context, T) (K, error) {
	return func(_ context.Context, v T) (K, error) { return key(v), nil }
}

func newSortSequence[T, K any](s *Sequence[T], name, label string, key func(context.Context, T) (K, error), compare func(a, b K) int) *Sequence[T] {
	return newSequence(
		func(ctx context.Context) Cursor[T] {
			return &sortIter[T, K]{source: s.create(ctx), name: name, key: key, compare: compare}
		},
		&Stage{Name: name, Label: label, Kind: KindBuffered, Sources: []*Stage{s.stage}},
	)
}

type keyed[T, K any] struct {
	val T
	key K
}

type sortIter[T, K any] struct {
	source  Cursor[T]
	name    string
	key     func(context.Context, T) (K, error)
	compare func(a, b K) int
	buffer  []keyed[T, K]
	pos     int
	loaded  bool
}

func (it *sortIter[T, K]) Next(ctx context.Context) (result T, ok bool, err error) {
	if !it.loaded {
		it.loaded = true
		if err := it.load(ctx); err != nil {
			it.buffer = nil
			return result, false, err
		}
	}
	if it.pos >= len(it.buffer) {
		return result, false, nil
	}
	val := it.buffer[it.pos].val
	it.buffer[it.pos] = keyed[T, K]{}
	it.pos++
	return val, true, nil
}

func (it *sortIter[T, K]) load(ctx context.Context) error {
	for idx := 0; ; idx++ {
		val, ok, err := it.source.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		k, err := it.key(ctx, val)
		if err != nil {
			return apperrors.Evaluation(it.name, idx, err)
		}
		it.buffer = append(it.buffer, keyed[T, K]{val: val, key: k})
	}
	slices.SortStableFunc(it.buffer, func(a, b keyed[T, K]) int {
		return it.compare(a.key, b.key)
	})
	return nil
}

func (it *sortIter[T, K]) Close() error { return it.source.Close() }

type reverseIter[T any] struct {
	source Cursor[T]
	buffer []T
	loaded bool
}

func (it *reverseIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	if !it.loaded {
		it.loaded = true
		for {
			val, ok, err := it.source.Next(ctx)
			if err != nil {
				it.buffer = nil
				return result, false, err
			}
			if !ok {
				break
			}
			it.buffer = append(it.buffer, val)
		}
	}
	n := len(it.buffer)
	if n == 0 {
		return result, false, nil
	}
	val := it.buffer[n-1]
	it.buffer = it.buffer[:n-1]
	return val, true, nil
}

func (it *reverseIter[T]) Close() error { return it.source.Close() }
