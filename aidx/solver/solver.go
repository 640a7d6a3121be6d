// Package solver resolves conjunctive token queries by intersecting sorted
// posting lists.
//
// A query is an ordered sequence of lists, each strictly increasing. Under
// the Strict policy every list must match, so any empty list empties the
// result. Under the Nonstrict policy a list that is empty, or that would
// leave nothing of the matches accumulated so far, is skipped instead:
// constraints only ever narrow a non-empty result, they never erase it.
//
// A query with no lists at all is unconstrained. All reports that through
// Result.Unconstrained and First returns identifier 0.
//
// The solver holds no state, performs no I/O and never mutates its inputs;
// independent calls may run concurrently.
package solver

import (
	"iter"
	"slices"
)

// Policy selects how empty or unsatisfiable constraints are treated.
type Policy uint8

const (
	// Strict requires every constraint to match.
	Strict Policy = iota
	// Nonstrict skips constraints that would empty the result.
	Nonstrict
)

func (p Policy) String() string {
	if p == Nonstrict {
		return "nonstrict"
	}
	return "strict"
}

// Result is the outcome of All.
type Result[T Unsigned] struct {
	// IDs holds the matching identifiers in ascending order.
	IDs []T
	// Unconstrained is set when the query had no constraints; IDs is nil.
	Unconstrained bool
}

// Empty reports whether the query matched nothing.
func (r Result[T]) Empty() bool {
	return !r.Unconstrained && len(r.IDs) == 0
}

// First returns the smallest match, 0 for an unconstrained result, and
// false when nothing matched.
func (r Result[T]) First() (T, bool) {
	if r.Unconstrained {
		return 0, true
	}
	if len(r.IDs) == 0 {
		return 0, false
	}
	return r.IDs[0], true
}

// All intersects lists under policy.
func All[T Unsigned, S ~[]T](lists []S, policy Policy) Result[T] {
	return AllSeq(slices.Values(lists), policy)
}

// First returns the smallest identifier satisfying lists under policy.
// It reports 0, true for an empty query and false when nothing matches.
func First[T Unsigned, S ~[]T](lists []S, policy Policy) (T, bool) {
	return FirstSeq(slices.Values(lists), policy)
}

// AllSeq is All over any sequence of lists.
func AllSeq[T Unsigned, S ~[]T](lists iter.Seq[S], policy Policy) Result[T] {
	if policy == Nonstrict {
		return allNonstrict[T](lists)
	}
	return allStrict[T](lists)
}

// FirstSeq is First over any sequence of lists.
func FirstSeq[T Unsigned, S ~[]T](lists iter.Seq[S], policy Policy) (T, bool) {
	if policy == Nonstrict {
		return allNonstrict[T](lists).First()
	}
	return firstStrict[T](lists)
}

func allStrict[T Unsigned, S ~[]T](lists iter.Seq[S]) Result[T] {
	var acc []T
	seeded := false
	for l := range lists {
		if !seeded {
			seeded = true
			acc = append(make([]T, 0, len(l)), []T(l)...)
		} else {
			// in place: Intersect never writes ahead of its read position in acc
			acc = Intersect(acc[:0], acc, []T(l))
		}
		if len(acc) == 0 {
			return Result[T]{IDs: []T{}}
		}
	}
	if !seeded {
		return Result[T]{Unconstrained: true}
	}
	return Result[T]{IDs: acc}
}

// allNonstrict seeds from the first non-empty list and folds the rest in,
// discarding any list whose intersection with the running result is empty.
// Once a single candidate remains no later list can change it: it either
// contains the candidate or is discarded.
func allNonstrict[T Unsigned, S ~[]T](lists iter.Seq[S]) Result[T] {
	var acc, scratch []T
	seen, seeded := false, false
	for l := range lists {
		seen = true
		if len(l) == 0 {
			continue
		}
		if !seeded {
			seeded = true
			acc = append(make([]T, 0, len(l)), []T(l)...)
		} else {
			next := Intersect(scratch[:0], acc, []T(l))
			if len(next) == 0 {
				scratch = next
				continue
			}
			acc, scratch = next, acc
		}
		if len(acc) == 1 {
			break
		}
	}
	switch {
	case !seen:
		return Result[T]{Unconstrained: true}
	case !seeded:
		return Result[T]{IDs: []T{}}
	}
	return Result[T]{IDs: acc}
}

// firstStrict finds the smallest common element without materializing the
// intersection: every list gallops to the current candidate, and any list
// that overshoots proposes its value as the new candidate, until all lists
// agree.
func firstStrict[T Unsigned, S ~[]T](lists iter.Seq[S]) (T, bool) {
	var ls [][]T
	for l := range lists {
		if len(l) == 0 {
			return 0, false
		}
		ls = append(ls, []T(l))
	}
	if len(ls) == 0 {
		return 0, true
	}

	pos := make([]int, len(ls))
	candidate := ls[0][0]
	for i, agree := 0, 0; agree < len(ls); i = (i + 1) % len(ls) {
		l := ls[i]
		p := Gallop(l, candidate, pos[i])
		if p == len(l) {
			return 0, false
		}
		pos[i] = p
		if l[p] == candidate {
			agree++
		} else {
			candidate = l[p]
			agree = 1
		}
	}
	return candidate, true
}
