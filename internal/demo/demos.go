package demo

import (
	"context"
	"strings"

	"github.com/kbukum/seqkit/pipeline"
)

var names = []string{"Tom", "Dick", "Harry", "Mary", "Jay"}

func runQuery(ctx context.Context, env *Env) error {
	src := pipeline.FromSlice(names)

	long := observe(env, "long-names", pipeline.Filter(src, func(n string) bool { return len(n) >= 4 }))
	if err := show(ctx, env, "length >= 4", long); err != nil {
		return err
	}

	withA := pipeline.Filter(src, func(n string) bool { return strings.Contains(n, "a") })
	byLength := pipeline.SortBy(withA, func(n string) int { return len(n) })
	upper := observe(env, "upper-by-length", pipeline.Project(byLength, strings.ToUpper))
	if err := show(ctx, env, `contains "a", by length, upper`, upper); err != nil {
		return err
	}

	matches, err := pipeline.Count(ctx, withA)
	if err != nil {
		return err
	}
	printf(env, `names containing "a": %d`, matches)
	return nil
}

func runScenario(ctx context.Context, env *Env) error {
	s := pipeline.Of(5, 12, 3, 9, 1)

	small := pipeline.Filter(s, func(n int) bool { return n < 10 })
	sorted := pipeline.SortBy(small, func(n int) int { return n })
	squares := pipeline.Project(sorted, func(n int) int { return n * n })
	top := observe(env, "top-two-squares", pipeline.Take(squares, 2))

	for _, step := range []struct {
		label string
		seq   *pipeline.Sequence[int]
	}{
		{"filter n < 10", small},
		{"sort ascending", sorted},
		{"square", squares},
		{"take 2", top},
	} {
		if err := show(ctx, env, step.label, step.seq); err != nil {
			return err
		}
	}
	printf(env, "plan: %s", top.Stage().Chain())
	return nil
}

func runReevaluation(ctx context.Context, env *Env) error {
	numbers := []int{1, 2}
	query := observe(env, "times-ten", pipeline.Project(pipeline.FromSlicePtr(&numbers), func(n int) int { return n * 10 }))

	if err := show(ctx, env, "before clear", query); err != nil {
		return err
	}
	numbers = numbers[:0]
	if err := show(ctx, env, "after clear", query); err != nil {
		return err
	}

	numbers = []int{1, 2}
	snapshot, err := pipeline.Collect(ctx, query)
	if err != nil {
		return err
	}
	numbers = numbers[:0]
	printf(env, "snapshot length after clear: %d", len(snapshot))
	return nil
}

func runInfinite(ctx context.Context, env *Env) error {
	pulls := 0
	naturals := pipeline.Tap(pipeline.Iterate(1, func(n int) int { return n + 1 }), func(context.Context, int) error {
		pulls++
		return nil
	})
	evens := pipeline.Filter(naturals, func(n int) bool { return n%2 == 0 })
	firstThree := observe(env, "first-three-evens", pipeline.Take(evens, 3))

	if err := show(ctx, env, "first three evens", firstThree); err != nil {
		return err
	}
	printf(env, "naturals pulled: %d", pulls)

	found, err := pipeline.Contains(ctx, naturals, 50)
	if err != nil {
		return err
	}
	printf(env, "contains 50: %t", found)
	return nil
}

func runOperators(ctx context.Context, env *Env) error {
	numbers := pipeline.Of(10, 9, 8, 7, 6)

	for _, step := range []struct {
		label string
		seq   *pipeline.Sequence[int]
	}{
		{"take 3", pipeline.Take(numbers, 3)},
		{"skip 3", pipeline.Skip(numbers, 3)},
		{"reverse", pipeline.Reverse(numbers)},
		{"concat", pipeline.Concat(pipeline.Of(1, 2, 3), pipeline.Of(3, 4, 5))},
		{"union", observe(env, "union", pipeline.Union(pipeline.Of(1, 2, 3), pipeline.Of(3, 4, 5)))},
	} {
		if err := show(ctx, env, step.label, step.seq); err != nil {
			return err
		}
	}

	first, err := pipeline.First(ctx, numbers)
	if err != nil {
		return err
	}
	last, err := pipeline.Last(ctx, numbers)
	if err != nil {
		return err
	}
	second, err := pipeline.ElementAt(ctx, numbers, 1)
	if err != nil {
		return err
	}
	secondLowest, err := pipeline.First(ctx, pipeline.Skip(pipeline.SortBy(numbers, func(n int) int { return n }), 1))
	if err != nil {
		return err
	}
	printf(env, "first=%d last=%d elementAt(1)=%d secondLowest=%d", first, last, second, secondLowest)

	count, err := pipeline.Count(ctx, numbers)
	if err != nil {
		return err
	}
	lowest, err := pipeline.Min(ctx, numbers)
	if err != nil {
		return err
	}
	printf(env, "count=%d min=%d", count, lowest)

	hasNine, err := pipeline.Contains(ctx, numbers, 9)
	if err != nil {
		return err
	}
	nonEmpty, err := pipeline.Any(ctx, numbers)
	if err != nil {
		return err
	}
	hasOdd, err := pipeline.AnyMatch(ctx, numbers, func(n int) bool { return n%2 != 0 })
	if err != nil {
		return err
	}
	printf(env, "contains 9=%t any=%t any odd=%t", hasNine, nonEmpty, hasOdd)
	return nil
}

func runClosures(ctx context.Context, env *Env) error {
	limit := 3
	upTo := observe(env, "up-to-limit", pipeline.Filter(pipeline.Range(1, 5), func(n int) bool { return n <= limit }))
	limit = 4
	if err := show(ctx, env, "limit changed to 4 after composing", upTo); err != nil {
		return err
	}

	suffix := "?"
	var greetings []*pipeline.Sequence[string]
	for _, n := range names[:3] {
		greetings = append(greetings, pipeline.Project(pipeline.Of(n), func(s string) string { return "hi " + s + suffix }))
	}
	suffix = "!"
	return show(ctx, env, "per-iteration loop variables", pipeline.Concat(greetings...))
}
