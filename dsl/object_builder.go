package dsl

import (
	"errors"
	"fmt"

	ts "github.com/reoring/treeskema"
)

type objectBuilder struct {
	fields        []ts.Field
	index         map[string]int
	unknownPolicy ts.UnknownPolicy
	errs          []error
}

type fieldStep struct {
	b   *objectBuilder
	pos int
}

// Object creates a new object builder with safe defaults (UnknownStrict).
// Fields are required unless given a default.
func Object() *objectBuilder {
	return &objectBuilder{index: map[string]int{}, unknownPolicy: ts.UnknownStrict}
}

// Field registers a field with its node.
func (b *objectBuilder) Field(name string, n ts.Node) *fieldStep {
	if _, dup := b.index[name]; dup {
		b.errs = append(b.errs, fmt.Errorf("field %q declared twice", name))
	}
	b.index[name] = len(b.fields)
	b.fields = append(b.fields, ts.Required(name, n))
	return &fieldStep{b: b, pos: len(b.fields) - 1}
}

// Required keeps the field mandatory and returns the builder.
func (f *fieldStep) Required() *objectBuilder {
	f.b.fields[f.pos].Required = true
	return f.b
}

// Default makes the field optional. v is a ts.Value or plain Go data
// accepted by ts.FromAny; it must satisfy the field's node.
func (f *fieldStep) Default(v any) *objectBuilder { return f.setDefault(v, false) }

// DefaultTrusted is Default without the build-time check, for defaults that
// intentionally sit outside the node (e.g. null for a non-empty string).
func (f *fieldStep) DefaultTrusted(v any) *objectBuilder { return f.setDefault(v, true) }

func (f *fieldStep) setDefault(v any, trusted bool) *objectBuilder {
	fld := &f.b.fields[f.pos]
	dv, err := ts.FromAny(v)
	if err != nil {
		f.b.errs = append(f.b.errs, fmt.Errorf("default for %q: %w", fld.Key, err))
		return f.b
	}
	fld.Required = false
	fld.Default = dv
	fld.Trusted = trusted
	return f.b
}

func (f *fieldStep) Field(name string, n ts.Node) *fieldStep { return f.b.Field(name, n) }
func (f *fieldStep) UnknownStrict() *objectBuilder          { return f.b.UnknownStrict() }
func (f *fieldStep) UnknownStrip() *objectBuilder           { return f.b.UnknownStrip() }
func (f *fieldStep) UnknownPassthrough() *objectBuilder     { return f.b.UnknownPassthrough() }
func (f *fieldStep) Build() (*ts.Object, error)             { return f.b.Build() }
func (f *fieldStep) MustBuild() *ts.Object                  { return f.b.MustBuild() }

// UnknownStrict rejects undeclared keys.
func (b *objectBuilder) UnknownStrict() *objectBuilder {
	b.unknownPolicy = ts.UnknownStrict
	return b
}

// UnknownStrip drops undeclared keys.
func (b *objectBuilder) UnknownStrip() *objectBuilder {
	b.unknownPolicy = ts.UnknownStrip
	return b
}

// UnknownPassthrough copies undeclared keys through unvalidated.
func (b *objectBuilder) UnknownPassthrough() *objectBuilder {
	b.unknownPolicy = ts.UnknownPassthrough
	return b
}

// Build validates the declaration and returns the object node.
func (b *objectBuilder) Build() (*ts.Object, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ts.ErrInvalidSchema, errors.Join(b.errs...))
	}
	return ts.NewObject(b.fields, b.unknownPolicy)
}

// MustBuild is Build that panics on error. Intended for package-level
// schema declarations.
func (b *objectBuilder) MustBuild() *ts.Object {
	o, err := b.Build()
	if err != nil {
		panic(err)
	}
	return o
}
