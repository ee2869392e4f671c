package dsl

import ts "github.com/reoring/treeskema"

// Array returns an unbounded sequence schema. Chain AtMost/AtLeast on the
// result to bound it; each call returns a new node.
//
//	Array(NonEmptyString()).AtMost(3)
func Array(elem ts.Node) *ts.Array { return ts.NewArray(elem, -1, -1) }

// ArrayLen is Array with an arbitrary count predicate, checked after every
// element has validated.
func ArrayLen(elem ts.Node, name string, fn func(int) bool) *ts.Array {
	return Array(elem).WithLength(name, fn)
}
