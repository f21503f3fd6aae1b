package demo

import (
	"context"
	"fmt"

	"github.com/kbukum/seqkit/pipeline"
)

// fibs yields the first count Fibonacci numbers starting 1 1 2.
func fibs(count int) *pipeline.Sequence[int] {
	return pipeline.FromFunc(func(context.Context) pipeline.Cursor[int] {
		return &fibCursor{remaining: count, prev: 1, cur: 1}
	})
}

type fibCursor struct {
	remaining int
	prev, cur int
}

func (c *fibCursor) Next(context.Context) (int, bool, error) {
	if c.remaining <= 0 {
		return 0, false, nil
	}
	c.remaining--
	v := c.prev
	c.prev, c.cur = c.cur, c.prev+c.cur
	return v, true, nil
}

func (c *fibCursor) Close() error { return nil }

// words yields One, Two and, unless stopEarly is set, Three. Its cleanup
// runs on Close however the traversal ended.
func words(stopEarly bool, cleanup func()) *pipeline.Sequence[string] {
	return pipeline.FromFunc(func(context.Context) pipeline.Cursor[string] {
		items := []string{"One", "Two", "Three"}
		if stopEarly {
			items = items[:2]
		}
		return &cleanupCursor{items: items, cleanup: cleanup}
	})
}

type cleanupCursor struct {
	items   []string
	pos     int
	cleanup func()
}

func (c *cleanupCursor) Next(context.Context) (string, bool, error) {
	if c.pos >= len(c.items) {
		return "", false, nil
	}
	c.pos++
	return c.items[c.pos-1], true, nil
}

func (c *cleanupCursor) Close() error {
	c.cleanup()
	return nil
}

func runFibonacci(ctx context.Context, env *Env) error {
	if err := show(ctx, env, "fibs(6)", observe(env, "fibs", fibs(6))); err != nil {
		return err
	}
	evens := observe(env, "even-fibs", pipeline.Filter(fibs(6), func(n int) bool { return n%2 == 0 }))
	if err := show(ctx, env, "even fibs", evens); err != nil {
		return err
	}

	cleanup := func() { fmt.Fprintln(env.Out, "cleanup ran") }
	if err := show(ctx, env, "words(stopEarly)", words(true, cleanup)); err != nil {
		return err
	}
	first, err := pipeline.First(ctx, words(false, cleanup))
	if err != nil {
		return err
	}
	printf(env, "first word: %s", first)
	return nil
}
