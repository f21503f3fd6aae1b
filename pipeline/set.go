package pipeline

import "context"

// Distinct yields each value the first time it appears. The set of seen
// values belongs to the traversal, so memory grows with the number of
// distinct values pulled.
func Distinct[T comparable](s *Sequence[T]) *Sequence[T] {
	requireSequence("Distinct", s)
	return newSequence(
		func(ctx context.Context) Cursor[T] {
			return &distinctIter[T]{source: s.create(ctx), seen: make(map[T]struct{})}
		},
		lazyStage("distinct", "", s.stage),
	)
}

// Union yields the values of a followed by those of b, dropping any value
// already yielded.
func Union[T comparable](a, b *Sequence[T]) *Sequence[T] {
	requireSequence("Union", a)
	requireSequence("Union", b)
	seqs := []*Sequence[T]{a, b}
	return newSequence(
		func(_ context.Context) Cursor[T] {
			return &distinctIter[T]{source: &concatIter[T]{seqs: seqs}, seen: make(map[T]struct{})}
		},
		lazyStage("union", "", a.stage, b.stage),
	)
}

type distinctIter[T comparable] struct {
	source Cursor[T]
	seen   map[T]struct{}
}

func (it *distinctIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return result, false, err
		}
		if _, dup := it.seen[val]; dup {
			continue
		}
		it.seen[val] = struct{}{}
		return val, true, nil
	}
}

func (it *distinctIter[T]) Close() error { return it.source.Close() }
