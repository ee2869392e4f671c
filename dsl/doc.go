// Package dsl provides construction helpers for treeskema schema trees.
//
// Overview
//   - Primitives: String/NonEmptyString/Int/IntRange/Positive/Bool/Null/HasPrefix/Contains.
//   - Composition: And/Or/Use/Fail, plus Nullable, NullAs and OrNull for the
//     common "value, or null replaced by a default, or a custom message" shape.
//   - Object(): builder for mapping schemas. Fields are required unless given
//     Default/DefaultTrusted. Unknown keys are rejected unless UnknownStrip or
//     UnknownPassthrough is selected.
//   - Array(elem): sequence schema, bounded with AtMost/AtLeast.
//
// Build runs self checks: keys must be unique and each Default must validate
// against its own node. DefaultTrusted skips the second check.
//
// Example
//
//	vm := g.Object().
//	    Field("name", g.NonEmptyString()).Required().
//	    Field("count", g.IntRange(1, 16)).Default(1).
//	    Field("tags", g.OrNull(g.Array(g.NonEmptyString()).AtMost(3), ts.Seq(),
//	        "only null or list objects are allowed")).Default([]any{}).
//	    UnknownStrict().
//	    MustBuild()
//
//	out, err := ts.Validate(ctx, vm, input)
package dsl
