package pipeline

import (
	"fmt"
	"strings"

	apperrors "github.com/kbukum/seqkit/errors"
)

// StageKind classifies how a stage evaluates its source.
type StageKind int

const (
	// KindSource produces values without an upstream sequence.
	KindSource StageKind = iota
	// KindLazy pulls from its source one element at a time.
	KindLazy
	// KindBuffered drains its source on the first pull.
	KindBuffered
	// KindDecorator wraps a cursor without changing its values.
	KindDecorator
)

func (k StageKind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindLazy:
		return "lazy"
	case KindBuffered:
		return "buffered"
	case KindDecorator:
		return "decorator"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Stage describes one operator in a composed sequence. Stages form a DAG
// rooted at the final sequence; Concat and Union have several sources.
type Stage struct {
	// Name is the operator name, e.g. "filter".
	Name string
	// Label summarises the operator's parameters, e.g. "n=3". May be empty.
	Label string
	// Kind is the evaluation strategy of the operator.
	Kind StageKind
	// Sources are the stages this one pulls from.
	Sources []*Stage
}

// String renders the stage as name or name(label).
func (s *Stage) String() string {
	if s.Label == "" {
		return s.Name
	}
	return s.Name + "(" + s.Label + ")"
}

// Chain renders the stages from the first source to s, following the first
// source of each stage, e.g. "slice(len=5) -> filter -> take(n=2)".
func (s *Stage) Chain() string {
	var names []string
	for cur := s; cur != nil; {
		names = append(names, cur.String())
		if len(cur.Sources) == 0 {
			break
		}
		cur = cur.Sources[0]
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, " -> ")
}

func lazyStage(name, label string, sources ...*Stage) *Stage {
	return &Stage{Name: name, Label: label, Kind: KindLazy, Sources: sources}
}

// --- usage checks ---

func usageFault(operator, argument, reason string) *apperrors.AppError {
	return apperrors.InvalidArgument(operator, argument, reason)
}

func requireSequence[T any](operator string, s *Sequence[T]) {
	if s == nil || s.create == nil {
		panic(usageFault(operator, "sequence", "must not be nil"))
	}
}

func requireFunc(operator, argument string, isNil bool) {
	if isNil {
		panic(usageFault(operator, argument, "must not be nil"))
	}
}

func requireCount(operator string, n int) {
	if n < 0 {
		panic(usageFault(operator, "count", fmt.Sprintf("must not be negative (got %d)", n)))
	}
}
