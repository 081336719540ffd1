// Package compile translates a JSON-like query expression into a cursor
// tree, including the inverse-tag rewrite of `["difference", A, B]`
// into an intersection with a materialised complement, and the
// wildcard prefix search.
package compile

import (
	"errors"
	"strings"

	"tagd/internal/cursor"
	"tagd/internal/expr"
	"tagd/internal/store"
)

var (
	// ErrMalformedExpression covers arity mismatches and empty arrays.
	ErrMalformedExpression = errors.New("tagd/compile: malformed expression")
	// ErrUnknownExpression covers an unrecognised operator name.
	ErrUnknownExpression = errors.New("tagd/compile: unknown expression")
	// ErrTooManyMatches is returned when a wildcard prefix resolves to
	// more than a quarter of all topics.
	ErrTooManyMatches = errors.New("tagd/compile: too many matches")
)

// Stores bundles the registries the compiler resolves tags and words
// against.
type Stores struct {
	Tags  *store.TagStore
	Words *store.WordStore
}

// Compile builds a cursor tree for v.
func Compile(s Stores, v expr.Value) (cursor.Cursor, error) {
	switch v.Kind() {
	case expr.KindInt:
		return compileTag(s, v.Int()), nil
	case expr.KindString:
		return compileWord(s, v.Str())
	case expr.KindArray:
		return compileArray(s, v.Arr())
	default:
		return nil, ErrUnknownExpression
	}
}

func compileTag(s Stores, id int64) cursor.Cursor {
	if id == 0 {
		return cursor.Basic(s.Tags.Global.Topics)
	}
	tag, ok := s.Tags.Get(uint32(id))
	if !ok {
		return cursor.Null()
	}
	return cursor.Basic(tag.Topics)
}

func compileWord(s Stores, w string) (cursor.Cursor, error) {
	if strings.HasSuffix(w, "*") {
		return compileWildcard(s, strings.TrimSuffix(w, "*"))
	}
	word, ok := s.Words.Get(w)
	if !ok {
		return cursor.Null(), nil
	}
	return cursor.Basic(word.Topics), nil
}

// compileWildcard scans the word dictionary from the lower bound of
// prefix, summing each matched word's Max() until it would exceed a
// quarter of the global population.
func compileWildcard(s Stores, prefix string) (cursor.Cursor, error) {
	limit := s.Tags.Global.Size() / 4

	var children []cursor.Cursor
	sum := 0
	var tooMany bool
	s.Words.PrefixRange(prefix, func(w *store.Word) bool {
		c := cursor.Basic(w.Topics)
		sum += c.Max()
		if sum > limit {
			tooMany = true
			return false
		}
		children = append(children, c)
		return true
	})
	if tooMany {
		return nil, ErrTooManyMatches
	}
	if len(children) == 0 {
		return cursor.Null(), nil
	}
	return cursor.Union(children...), nil
}

func compileArray(s Stores, arr []expr.Value) (cursor.Cursor, error) {
	if len(arr) == 0 || arr[0].Kind() != expr.KindString {
		return nil, ErrMalformedExpression
	}
	op := arr[0].Str()

	switch op {
	case "difference":
		if len(arr) != 3 {
			return nil, ErrMalformedExpression
		}
		return compileDifference(s, arr[1], arr[2])
	case "union":
		return compileVariadic(s, arr, cursor.Union)
	case "intersection":
		return compileVariadic(s, arr, cursor.Intersection)
	default:
		return nil, ErrUnknownExpression
	}
}

// compileVariadic handles ["union", ...] and ["intersection", ...]: error
// below two total elements, pass the lone operand through unchanged at
// exactly two, otherwise combine every operand.
func compileVariadic(s Stores, arr []expr.Value, combine func(...cursor.Cursor) cursor.Cursor) (cursor.Cursor, error) {
	if len(arr) < 2 {
		return nil, ErrMalformedExpression
	}
	if len(arr) == 2 {
		return Compile(s, arr[1])
	}
	children := make([]cursor.Cursor, 0, len(arr)-1)
	for _, operand := range arr[1:] {
		c, err := Compile(s, operand)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	return combine(children...), nil
}

// compileDifference applies the inverse-rewrite optimisation: A - k
// becomes A ∩ ¬k when tag k has a materialised inverse, and A -
// ["union", ...] splits its members into inverted and non-inverted
// groups before folding the inverted ones into an intersection and
// subtracting a union of the remainder.
func compileDifference(s Stores, a, b expr.Value) (cursor.Cursor, error) {
	left, err := Compile(s, a)
	if err != nil {
		return nil, err
	}

	if b.Kind() == expr.KindInt && b.Int() > 0 {
		if tag, ok := s.Tags.Get(uint32(b.Int())); ok && tag.Inverse != nil {
			return cursor.Intersection(left, cursor.Basic(tag.Inverse.Topics)), nil
		}
	}

	if b.Kind() == expr.KindArray {
		barr := b.Arr()
		if len(barr) > 0 && barr[0].Kind() == expr.KindString && barr[0].Str() == "union" {
			return compileDifferenceOverUnion(s, left, barr[1:])
		}
	}

	right, err := Compile(s, b)
	if err != nil {
		return nil, err
	}
	return cursor.Difference(left, right), nil
}

func compileDifferenceOverUnion(s Stores, left cursor.Cursor, operands []expr.Value) (cursor.Cursor, error) {
	var inverses []cursor.Cursor
	var remainder []expr.Value
	for _, operand := range operands {
		if operand.Kind() == expr.KindInt && operand.Int() > 0 {
			if tag, ok := s.Tags.Get(uint32(operand.Int())); ok && tag.Inverse != nil {
				inverses = append(inverses, cursor.Basic(tag.Inverse.Topics))
				continue
			}
		}
		remainder = append(remainder, operand)
	}

	result := left
	if len(inverses) > 0 {
		result = cursor.Intersection(append([]cursor.Cursor{result}, inverses...)...)
	}
	if len(remainder) == 0 {
		return result, nil
	}

	remCursor, err := compileOperandList(s, remainder)
	if err != nil {
		return nil, err
	}
	return cursor.Difference(result, remCursor), nil
}

func compileOperandList(s Stores, operands []expr.Value) (cursor.Cursor, error) {
	if len(operands) == 1 {
		return Compile(s, operands[0])
	}
	children := make([]cursor.Cursor, 0, len(operands))
	for _, operand := range operands {
		c, err := Compile(s, operand)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	return cursor.Union(children...), nil
}
