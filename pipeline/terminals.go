package pipeline

import (
	"cmp"
	"context"
	"fmt"
	"reflect"
	"strings"

	apperrors "github.com/kbukum/seqkit/errors"
)

// First returns the first value of s, pulling exactly one element.
func First[T any](ctx context.Context, s *Sequence[T]) (T, error) {
	requireSequence("First", s)
	c := s.Cursor(ctx)
	defer c.Close()
	val, ok, err := c.Next(ctx)
	if err != nil {
		return val, err
	}
	if !ok {
		return val, apperrors.EmptySequence("First")
	}
	return val, nil
}

// Last returns the final value of s. It drains s, so it never returns on an
// infinite sequence.
func Last[T any](ctx context.Context, s *Sequence[T]) (T, error) {
	requireSequence("Last", s)
	var last T
	found := false
	err := ForEach(ctx, s, func(_ context.Context, v T) error {
		last, found = v, true
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	if !found {
		return last, apperrors.EmptySequence("Last")
	}
	return last, nil
}

// ElementAt returns the value at zero-based position index, pulling index+1
// elements at most.
func ElementAt[T any](ctx context.Context, s *Sequence[T], index int) (T, error) {
	requireSequence("ElementAt", s)
	if index < 0 {
		panic(usageFault("ElementAt", "index", fmt.Sprintf("must not be negative (got %d)", index)))
	}
	c := s.Cursor(ctx)
	defer c.Close()
	for i := 0; ; i++ {
		val, ok, err := c.Next(ctx)
		if err != nil {
			return val, err
		}
		if !ok {
			return val, apperrors.IndexOutOfRange(index, i)
		}
		if i == index {
			return val, nil
		}
	}
}

// Count returns the number of values in s.
func Count[T any](ctx context.Context, s *Sequence[T]) (int, error) {
	requireSequence("Count", s)
	n := 0
	err := ForEach(ctx, s, func(context.Context, T) error {
		n++
		return nil
	})
	return n, err
}

// Min returns the smallest value of s.
func Min[T cmp.Ordered](ctx context.Context, s *Sequence[T]) (T, error) {
	requireSequence("Min", s)
	return extreme(ctx, s, "Min", func(a, b T) bool { return a < b })
}

// Max returns the largest value of s.
func Max[T cmp.Ordered](ctx context.Context, s *Sequence[T]) (T, error) {
	requireSequence("Max", s)
	return extreme(ctx, s, "Max", func(a, b T) bool { return a > b })
}

// Contains reports whether v occurs in s, stopping at the first match.
func Contains[T comparable](ctx context.Context, s *Sequence[T], v T) (bool, error) {
	requireSequence("Contains", s)
	return AnyMatch(ctx, s, func(x T) bool { return x == v })
}

// Any reports whether s has at least one value, pulling one element at most.
func Any[T any](ctx context.Context, s *Sequence[T]) (bool, error) {
	requireSequence("Any", s)
	c := s.Cursor(ctx)
	defer c.Close()
	_, ok, err := c.Next(ctx)
	return ok, err
}

// AnyMatch reports whether some value satisfies fn, stopping at the first match.
func AnyMatch[T any](ctx context.Context, s *Sequence[T], fn func(T) bool) (bool, error) {
	requireSequence("AnyMatch", s)
	requireFunc("AnyMatch", "predicate", fn == nil)
	c := s.Cursor(ctx)
	defer c.Close()
	for {
		val, ok, err := c.Next(ctx)
		if err != nil || !ok {
			return false, err
		}
		if fn(val) {
			return true, nil
		}
	}
}

// Every reports whether all values satisfy fn, stopping at the first failure.
// It is true for an empty sequence.
func Every[T any](ctx context.Context, s *Sequence[T], fn func(T) bool) (bool, error) {
	requireSequence("Every", s)
	requireFunc("Every", "predicate", fn == nil)
	failed, err := AnyMatch(ctx, s, func(v T) bool { return !fn(v) })
	return !failed && err == nil, err
}

// Join formats each non-nil value with fmt.Sprint and joins them with sep.
// Nil elements are skipped. An empty sep is a usage fault.
func Join[T any](ctx context.Context, s *Sequence[T], sep string) (string, error) {
	requireSequence("Join", s)
	if sep == "" {
		panic(usageFault("Join", "separator", "must not be empty"))
	}
	var b strings.Builder
	first := true
	err := ForEach(ctx, s, func(_ context.Context, v T) error {
		if isNil(v) {
			return nil
		}
		if !first {
			b.WriteString(sep)
		}
		first = false
		fmt.Fprint(&b, v)
		return nil
	})
	return b.String(), err
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func extreme[T any](ctx context.Context, s *Sequence[T], op string, better func(a, b T) bool) (T, error) {
	var best T
	found := false
	err := ForEach(ctx, s, func(_ context.Context, v T) error {
		if !found || better(v, best) {
			best, found = v, true
		}
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	if !found {
		return best, apperrors.EmptySequence(op)
	}
	return best, nil
}
