package pipeline

import (
	"context"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/kbukum/seqkit/errors"
)

// counted wraps a sequence so tests can see how many elements were pulled.
func counted[T any](s *Sequence[T], pulls *int) *Sequence[T] {
	return Tap(s, func(context.Context, T) error {
		*pulls++
		return nil
	})
}

func naturals() *Sequence[int] {
	return Iterate(1, func(n int) int { return n + 1 })
}

func assertUsageFault(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a usage panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value should be an error, got %T", r)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument), "got %v", err)
	}()
	fn()
}

func TestLaw_FilterIsOrderedSubsequence(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		src := make([]int, rng.Intn(40))
		for i := range src {
			src[i] = rng.Intn(100)
		}
		pred := func(n int) bool { return n%3 == 0 }

		got, err := Collect(context.Background(), Filter(FromSlice(src), pred))
		require.NoError(t, err)

		var want []int
		for _, v := range src {
			if pred(v) {
				want = append(want, v)
			}
		}
		assert.Equal(t, want, got)
		assert.LessOrEqual(t, len(got), len(src))
	}
}

func TestLaw_ProjectKeepsCardinality(t *testing.T) {
	src := []int{4, 8, 15, 16, 23, 42}
	got, err := Collect(context.Background(), Project(FromSlice(src), func(n int) string {
		return string(rune('a' + n%26))
	}))
	require.NoError(t, err)
	require.Len(t, got, len(src))
	for i, v := range src {
		assert.Equal(t, string(rune('a'+v%26)), got[i])
	}
}

func TestLaw_SortIsStablePermutation(t *testing.T) {
	type item struct{ key, pos int }
	rng := rand.New(rand.NewSource(11))
	src := make([]item, 200)
	for i := range src {
		src[i] = item{key: rng.Intn(10), pos: i}
	}
	got, err := Collect(context.Background(), SortBy(FromSlice(src), func(it item) int { return it.key }))
	require.NoError(t, err)
	require.Len(t, got, len(src))

	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		require.LessOrEqual(t, prev.key, cur.key)
		if prev.key == cur.key {
			require.Less(t, prev.pos, cur.pos, "equal keys must keep source order")
		}
	}
	seen := make([]bool, len(src))
	for _, it := range got {
		seen[it.pos] = true
	}
	assert.NotContains(t, seen, false)
}

func TestLaw_ReiterationWithoutCaching(t *testing.T) {
	calls := 0
	p := Project(Filter(Of(1, 2, 3, 4), func(n int) bool { return n%2 == 0 }), func(n int) int {
		calls++
		return n * 10
	})
	first, err := Collect(context.Background(), p)
	require.NoError(t, err)
	second, err := Collect(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 4, calls, "each traversal re-runs the transform")
}

func TestLaw_MutationVisibility(t *testing.T) {
	numbers := []int{1, 2}
	query := Project(FromSlicePtr(&numbers), func(n int) int { return n * 10 })

	got, _ := Collect(context.Background(), query)
	assert.Equal(t, []int{10, 20}, got)

	numbers = numbers[:0]
	got, _ = Collect(context.Background(), query)
	assert.Empty(t, got)

	numbers = []int{1, 2}
	snapshot, _ := Collect(context.Background(), query)
	numbers = numbers[:0]
	assert.Len(t, snapshot, 2, "Collect output is a snapshot")
}

func TestLaw_CapturedVariableReadAtIteration(t *testing.T) {
	limit := 3
	p := Filter(Of(1, 2, 3, 4, 5), func(n int) bool { return n <= limit })
	limit = 4
	got, _ := Collect(context.Background(), p)
	assert.Equal(t, []int{1, 2, 3, 4}, got)
}

func TestLaw_Laziness(t *testing.T) {
	predCalls, mapCalls := 0, 0
	filtered := Filter(Of(5, 12, 3, 9, 1), func(n int) bool {
		predCalls++
		return n < 10
	})
	projected := Project(filtered, func(n int) int {
		mapCalls++
		return n * n
	})
	assert.Zero(t, predCalls, "composition must not call the predicate")
	assert.Zero(t, mapCalls, "composition must not call the transform")

	ctx := context.Background()
	c := projected.Cursor(ctx)
	defer c.Close()
	assert.Zero(t, predCalls, "opening a cursor must not call the predicate")

	v, ok, err := c.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 25, v)
	assert.Equal(t, 1, predCalls)
	assert.Equal(t, 1, mapCalls)

	v, _, _ = c.Next(ctx)
	assert.Equal(t, 9, v)
	assert.Equal(t, 3, predCalls, "12 was rejected, 3 accepted")
	assert.Equal(t, 2, mapCalls, "transform runs once per produced element")
}

func TestLaw_TakeSkipBoundaries(t *testing.T) {
	ctx := context.Background()
	src := []int{1, 2, 3}

	none, _ := Collect(ctx, Take(FromSlice(src), 0))
	assert.Empty(t, none)

	all, _ := Collect(ctx, Take(FromSlice(src), len(src)+5))
	assert.Equal(t, src, all)

	skipped, _ := Collect(ctx, Skip(FromSlice(src), len(src)+5))
	assert.Empty(t, skipped)

	rest, _ := Collect(ctx, Skip(FromSlice(src), 1))
	assert.Equal(t, []int{2, 3}, rest)

	same, _ := Collect(ctx, Skip(FromSlice(src), 0))
	assert.Equal(t, src, same)
}

func TestLaw_TakeZeroPullsNothing(t *testing.T) {
	pulls := 0
	_, _ = Collect(context.Background(), Take(counted(naturals(), &pulls), 0))
	assert.Zero(t, pulls)
}

func TestScenario_Chain(t *testing.T) {
	ctx := context.Background()
	s := Of(5, 12, 3, 9, 1)

	small := Filter(s, func(n int) bool { return n < 10 })
	got, _ := Collect(ctx, small)
	assert.Equal(t, []int{5, 3, 9, 1}, got)

	sorted := SortBy(small, func(n int) int { return n })
	got, _ = Collect(ctx, sorted)
	assert.Equal(t, []int{1, 3, 5, 9}, got)

	squares := Project(sorted, func(n int) int { return n * n })
	got, _ = Collect(ctx, squares)
	assert.Equal(t, []int{1, 9, 25, 81}, got)

	got, _ = Collect(ctx, Take(squares, 2))
	assert.Equal(t, []int{1, 9}, got)
}

func TestScenario_EmptySource(t *testing.T) {
	ctx := context.Background()
	empty := Of[int]()
	chains := map[string]*Sequence[int]{
		"filter":  Filter(empty, func(int) bool { return true }),
		"project": Project(empty, func(n int) int { return n }),
		"sort":    SortBy(empty, func(n int) int { return n }),
		"take":    Take(empty, 3),
		"skip":    Skip(empty, 3),
		"all": Skip(Take(SortBy(Project(Filter(empty, func(int) bool { return true }),
			func(n int) int { return n }), func(n int) int { return n }), 3), 1),
	}
	for name, p := range chains {
		t.Run(name, func(t *testing.T) {
			got, err := Collect(ctx, p)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestScenario_InfiniteSource(t *testing.T) {
	pulls := 0
	evens := Filter(counted(naturals(), &pulls), func(n int) bool { return n%2 == 0 })
	got, err := Collect(context.Background(), Take(evens, 3))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, got)
	assert.Equal(t, 6, pulls, "must not enumerate beyond the sixth natural")
}

func TestScenario_EarlyTermination(t *testing.T) {
	pulls := 0
	v, err := First(context.Background(), Project(counted(Of(1, 2, 3, 4), &pulls), func(n int) int { return n * 2 }))
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, pulls)
}

func TestFault_EarlierValuesRemainValid(t *testing.T) {
	boom := apperrors.New(apperrors.ErrCodeInternal, "boom")
	p := TryFilter(Of(1, 2, 3, 4), func(_ context.Context, n int) (bool, error) {
		if n == 3 {
			return false, boom
		}
		return true, nil
	})
	got, err := Collect(context.Background(), p)
	assert.Equal(t, []int{1, 2}, got)
	assert.ErrorIs(t, err, boom)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeEvaluationFailed, appErr.Code)
	assert.Equal(t, 2, appErr.Details["index"])
}

func TestFault_CallerPanicPropagates(t *testing.T) {
	p := Filter(Of(1, 2), func(n int) bool {
		if n == 2 {
			panic("predicate exploded")
		}
		return true
	})
	assert.PanicsWithValue(t, "predicate exploded", func() {
		_, _ = Collect(context.Background(), p)
	})
}

func TestUsageFaults_AtComposition(t *testing.T) {
	var nilSeq *Sequence[int]
	src := Of(1, 2, 3)
	cases := map[string]func(){
		"filter nil source":    func() { Filter(nilSeq, func(int) bool { return true }) },
		"filter nil predicate": func() { Filter(src, nil) },
		"map nil transform":    func() { Map[int, int](src, nil) },
		"project nil source":   func() { Project(nilSeq, func(n int) int { return n }) },
		"sort nil key":         func() { SortBy[int, int](src, nil) },
		"sortFunc nil compare": func() { SortFunc(src, nil) },
		"take negative":        func() { Take(src, -1) },
		"skip negative":        func() { Skip(src, -2) },
		"skip nil source":      func() { Skip(nilSeq, 1) },
		"chunk zero":           func() { Chunk(src, 0) },
		"concat nil member":    func() { Concat(src, nilSeq) },
		"zero sequence":        func() { Take(&Sequence[int]{}, 1) },
		"slice ptr nil":        func() { FromSlicePtr[int](nil) },
		"iterate nil fn":       func() { Iterate[int](0, nil) },
		"collect nil":          func() { _, _ = Collect(context.Background(), nilSeq) },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			assertUsageFault(t, fn)
		})
	}
}

func TestIndependentCursors(t *testing.T) {
	query := Project(SortBy(Filter(Range(0, 500), func(n int) bool { return n%7 == 0 }),
		func(n int) int { return -n }), func(n int) int { return n * 2 })
	want, err := Collect(context.Background(), query)
	require.NoError(t, err)

	results := make([][]int, 8)
	g, ctx := errgroup.WithContext(context.Background())
	for i := range results {
		g.Go(func() error {
			got, err := Collect(ctx, query)
			results[i] = got
			return err
		})
	}
	require.NoError(t, g.Wait())
	for i, got := range results {
		assert.True(t, slices.Equal(want, got), "cursor %d diverged", i)
	}
}
