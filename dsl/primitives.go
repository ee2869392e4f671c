package dsl

import (
	"fmt"
	"strings"

	ts "github.com/reoring/treeskema"
)

// String accepts any string.
func String() ts.Node { return ts.IsKind(ts.KindString) }

// Bool accepts true or false.
func Bool() ts.Node { return ts.IsKind(ts.KindBool) }

// Int accepts integers. Floats and bools are rejected.
func Int() ts.Node { return ts.IsKind(ts.KindInt) }

// Null accepts only null.
func Null() ts.Node { return ts.IsKind(ts.KindNull) }

// Any accepts every value unchanged.
func Any() ts.Node { return ts.Use(nil, nil) }

// NonEmptyString accepts strings of non-zero length.
func NonEmptyString() ts.Node {
	return ts.AllOf(String(), ts.NewPredicate("len", func(v ts.Value) bool {
		return v.Len() > 0
	}))
}

// IntRange accepts integers within [min, max].
func IntRange(min, max int64) ts.Node {
	return ts.AllOf(Int(), ts.NewPredicate(fmt.Sprintf("in_range(%d, %d)", min, max), func(v ts.Value) bool {
		i, _ := v.AsInt()
		return min <= i && i <= max
	}))
}

// IntMin accepts integers greater than or equal to min.
func IntMin(min int64) ts.Node {
	return ts.AllOf(Int(), ts.NewPredicate(fmt.Sprintf("at_least(%d)", min), func(v ts.Value) bool {
		i, _ := v.AsInt()
		return i >= min
	}))
}

// Positive accepts integers greater than zero.
func Positive() ts.Node {
	return ts.AllOf(Int(), ts.NewPredicate("positive", func(v ts.Value) bool {
		i, _ := v.AsInt()
		return i > 0
	}))
}

// HasPrefix accepts strings starting with prefix.
func HasPrefix(prefix string) ts.Node {
	return ts.AllOf(String(), ts.NewPredicate(fmt.Sprintf("startswith(%q)", prefix), func(v ts.Value) bool {
		s, _ := v.AsString()
		return strings.HasPrefix(s, prefix)
	}))
}

// Contains accepts strings containing sub.
func Contains(sub string) ts.Node {
	return ts.AllOf(String(), ts.NewPredicate(fmt.Sprintf("contains(%q)", sub), func(v ts.Value) bool {
		s, _ := v.AsString()
		return strings.Contains(s, sub)
	}))
}

// Check wraps an arbitrary predicate.
func Check(name string, fn func(ts.Value) bool) ts.Node { return ts.NewPredicate(name, fn) }
