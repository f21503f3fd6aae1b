// Package pipeline provides composable, pull-based, lazily evaluated sequence
// operators.
//
// A Sequence is a description: composing operators never runs caller code.
// Work happens only when a Cursor obtained from the final Sequence is advanced,
// and each stage pulls from its source just enough elements to produce its own
// next value. Every call to Cursor starts a fresh traversal that re-reads the
// source as it is at that moment; nothing is cached between traversals.
//
// Sorting and reversing are the exceptions to element-wise laziness: their
// first pull drains the source into a buffer.
//
// # Operators
//
// Sources:
//
//   - FromSlice, Of, FromSlicePtr: in-memory collections
//   - FromFunc: a cursor factory
//   - FromSeq: adapt an iter.Seq
//   - Iterate, Range, Empty: generated sequences (Iterate is infinite)
//
// Stages:
//
//   - Filter, TryFilter: keep values matching a predicate
//   - Map, Project: transform each value
//   - SortBy, SortByDescending, SortFunc, TrySortBy: stable ordering
//   - Take, Skip, TakeWhile, SkipWhile: bound the sequence
//   - Reverse, Concat, Union, Distinct, FlatMap, Chunk, Reduce, Tap
//   - Decorate: wrap the cursor of a sequence (instrumentation, logging)
//
// Terminals run one traversal and close it: Collect, ForEach, Drain, First,
// Last, ElementAt, Count, Min, Max, Contains, Any, AnyMatch, Every, Join.
//
// # Errors
//
// Invalid composition input (nil sequence, nil function, negative count) panics
// immediately with an *errors.AppError coded INVALID_ARGUMENT. A caller function
// returning an error surfaces from Next as an AppError coded EVALUATION_FAILED
// that wraps the original error; the cursor then keeps returning that error.
//
// # Usage
//
//	nums := pipeline.Of(5, 12, 3, 9, 1)
//	small := pipeline.Filter(nums, func(n int) bool { return n < 10 })
//	sorted := pipeline.SortBy(small, func(n int) int { return n })
//	squares := pipeline.Project(sorted, func(n int) int { return n * n })
//	first, _ := pipeline.Collect(ctx, pipeline.Take(squares, 2)) // [1 9]
package pipeline
