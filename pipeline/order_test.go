package pipeline

import (
	"cmp"
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/kbukum/seqkit/errors"
)

type person struct {
	name string
	age  int
}

func names(ps []person) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.name
	}
	return out
}

func TestSortBy(t *testing.T) {
	got, _ := Collect(context.Background(), SortBy(Of(5, 3, 9, 1), func(n int) int { return n }))
	if !intSliceEqual(got, []int{1, 3, 5, 9}) {
		t.Errorf("got %v, want [1 3 5 9]", got)
	}
}

func TestSortBy_Stable(t *testing.T) {
	people := Of(
		person{"tom", 30}, person{"dick", 25}, person{"harry", 30},
		person{"mary", 25}, person{"jay", 40},
	)
	got, _ := Collect(context.Background(), SortBy(people, func(p person) int { return p.age }))
	want := []string{"dick", "mary", "tom", "harry", "jay"}
	if !strSliceEqual(names(got), want) {
		t.Errorf("got %v, want %v", names(got), want)
	}
}

func TestSortByDescending_Stable(t *testing.T) {
	people := Of(person{"a", 1}, person{"b", 2}, person{"c", 1}, person{"d", 2})
	got, _ := Collect(context.Background(), SortByDescending(people, func(p person) int { return p.age }))
	want := []string{"b", "d", "a", "c"}
	if !strSliceEqual(names(got), want) {
		t.Errorf("got %v, want %v", names(got), want)
	}
}

func TestSortBy_StringLength(t *testing.T) {
	words := Filter(Of("Tom", "Dick", "Harry", "Mary", "Jay"), func(s string) bool {
		return strings.Contains(s, "a")
	})
	got, _ := Collect(context.Background(), Project(SortBy(words, func(s string) int { return len(s) }), strings.ToUpper))
	want := []string{"JAY", "MARY", "HARRY"}
	if !strSliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSortBy_KeyCalledOncePerElement(t *testing.T) {
	calls := 0
	p := SortBy(Of(4, 2, 8, 6, 1), func(n int) int {
		calls++
		return n
	})
	if calls != 0 {
		t.Fatal("key evaluated at composition")
	}
	_, _ = Collect(context.Background(), p)
	if calls != 5 {
		t.Errorf("key called %d times, want 5", calls)
	}
}

func TestSortBy_DrainsSourceOnFirstPull(t *testing.T) {
	pulled := 0
	src := Tap(Of(3, 1, 2), func(context.Context, int) error {
		pulled++
		return nil
	})
	first, err := First(context.Background(), SortBy(src, func(n int) int { return n }))
	if err != nil || first != 1 {
		t.Fatalf("got %v %v", first, err)
	}
	if pulled != 3 {
		t.Errorf("pulled %d, want 3", pulled)
	}
}

func TestSortFunc(t *testing.T) {
	byLenThenAlpha := func(a, b string) int {
		if c := cmp.Compare(len(a), len(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	}
	got, _ := Collect(context.Background(), SortFunc(Of("bb", "a", "ab", "c"), byLenThenAlpha))
	want := []string{"a", "c", "ab", "bb"}
	if !strSliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestTrySortBy_KeyError(t *testing.T) {
	bad := errors.New("no key")
	p := TrySortBy(Of(3, 1, 2), func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, bad
		}
		return n, nil
	})
	got, err := Collect(context.Background(), p)
	if !errors.Is(err, bad) || len(got) != 0 {
		t.Fatalf("got %v, %v", got, err)
	}
	appErr, _ := apperrors.AsAppError(err)
	if appErr.Details["stage"] != "sortBy" || appErr.Details["index"] != 2 {
		t.Errorf("unexpected details %v", appErr.Details)
	}
}

func TestReverse(t *testing.T) {
	got, _ := Collect(context.Background(), Reverse(Of(10, 9, 8, 7, 6)))
	if !intSliceEqual(got, []int{6, 7, 8, 9, 10}) {
		t.Errorf("got %v", got)
	}
	empty, _ := Collect(context.Background(), Reverse(Empty[int]()))
	if len(empty) != 0 {
		t.Errorf("expected empty, got %v", empty)
	}
}
