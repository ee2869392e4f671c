// Package treeskema validates and normalizes generic configuration trees
// against declarative, composable schemas.
//
//   - Value is an ordered tree of null, bool, int, float, string, sequence
//     and mapping values. Mapping keys keep their insertion order.
//   - Node is a closed set of schema variants (Predicate, And, Or, Transform,
//     Fail, Literal, Object, Array) walked by a single recursive Validate.
//   - Validation is fail-fast: the first violation is returned as an Issue
//     carrying a JSON Pointer, a stable code and a message.
//   - Optional keys carry defaults that are cloned into the result, so
//     results never share storage with the schema or with each other.
//   - Narrow restricts a mapping schema to a subset of its top-level keys and
//     lets every other key through untouched.
//
// Design policy:
//   - Keep only the engine in the root package. Builders live in dsl/,
//     readers in source/, writers in render/.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	s := g.Object().
//		Field("name", g.NonEmptyString()).Required().
//		Field("count", g.IntRange(1, 16)).Default(1).
//		MustBuild()
//	v, err := source.NewLoader(afero.NewOsFs()).Load(path)
//	out, err := treeskema.Validate(ctx, treeskema.Narrow(s, groups), v)
package treeskema
