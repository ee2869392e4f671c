package dsl

import (
	"errors"

	ts "github.com/reoring/treeskema"
)

// And validates through every node in order.
func And(nodes ...ts.Node) ts.Node { return ts.AllOf(nodes...) }

// Or takes the first node that accepts the value. Put the branch that
// produces the diagnostic you want last.
func Or(nodes ...ts.Node) ts.Node { return ts.AnyOf(nodes...) }

// Use maps any value through fn.
func Use(fn func(ts.Value) (ts.Value, error)) ts.Node { return ts.Use(nil, fn) }

// Fail always fails with msg.
func Fail(msg string) ts.Node { return ts.FailWith(msg) }

// Nullable accepts n or null.
func Nullable(n ts.Node) ts.Node { return ts.AnyOf(n, Null()) }

// NullAs replaces null with def and fails with msg for anything else.
func NullAs(def ts.Value, msg string) ts.Node {
	def = def.Clone()
	return ts.Use(nil, func(v ts.Value) (ts.Value, error) {
		if v.IsNull() {
			return def.Clone(), nil
		}
		return ts.Value{}, errors.New(msg)
	})
}

// OrNull accepts n, turns null into def, and reports msg for any other value.
//
//	OrNull(Array(NonEmptyString()), ts.Seq(), "Only 'None' or 'list' objects are allowed")
func OrNull(n ts.Node, def ts.Value, msg string) ts.Node {
	return ts.AnyOf(n, NullAs(def, msg))
}
