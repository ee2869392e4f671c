package treeskema

import (
	"context"
	"errors"
	"fmt"
)

// Node is one immutable unit of a schema tree. The set of implementations is
// closed: Predicate, And, Or, Transform, Fail, Literal, Object and Array.
type Node interface {
	node()
}

// Predicate is a leaf constraint over a single value.
type Predicate struct {
	name   string
	code   string
	jsType string
	test   func(Value) bool
}

// NewPredicate returns a fine-grained constraint; failures carry CodePredicate.
func NewPredicate(name string, test func(Value) bool) *Predicate {
	return &Predicate{name: name, code: CodePredicate, test: test}
}

// IsKind returns a coarse kind check; failures carry CodeInvalidType.
// KindInt and KindFloat are distinct: an int never satisfies IsKind(KindFloat).
func IsKind(k Kind) *Predicate {
	return &Predicate{
		name:   k.String(),
		code:   CodeInvalidType,
		jsType: jsonType(k),
		test:   func(v Value) bool { return v.Kind() == k },
	}
}

func (p *Predicate) Name() string { return p.name }

// And runs its children in order, feeding each result into the next.
type And struct{ children []Node }

// AllOf builds an And node.
func AllOf(children ...Node) *And { return &And{children: append([]Node(nil), children...)} }

// Or returns the first child that accepts the original value. When every
// child fails, the last child's error is reported, so a trailing Fail or
// Transform can supply the diagnostic.
type Or struct{ children []Node }

// AnyOf builds an Or node.
func AnyOf(children ...Node) *Or { return &Or{children: append([]Node(nil), children...)} }

// Transform validates through base and then maps the result. A nil base
// accepts any value.
type Transform struct {
	base Node
	fn   func(Value) (Value, error)
}

// Use builds a Transform. An error returned by fn becomes a CodeCustom issue
// carrying fn's message, unless it already is an Issue.
func Use(base Node, fn func(Value) (Value, error)) *Transform {
	return &Transform{base: base, fn: fn}
}

// Fail always fails with a literal CodeCustom message.
type Fail struct{ message string }

func FailWith(message string) *Fail { return &Fail{message: message} }

// Literal accepts exactly one value.
type Literal struct{ value Value }

func Const(v Value) *Literal { return &Literal{value: v.Clone()} }

// Field declares one mapping key. Optional fields always carry a Default.
type Field struct {
	Key      string
	Node     Node
	Required bool
	Default  Value
	// Trusted skips the build-time check that Default satisfies Node.
	Trusted bool
}

// Required declares a key that must be present.
func Required(key string, n Node) Field { return Field{Key: key, Node: n, Required: true} }

// Optional declares a key substituted with def when absent.
func Optional(key string, n Node, def Value) Field { return Field{Key: key, Node: n, Default: def} }

// Object validates a mapping.
type Object struct {
	fields  []Field
	byKey   map[string]int
	unknown UnknownPolicy
}

// ErrInvalidSchema is wrapped by schema construction failures.
var ErrInvalidSchema = errors.New("invalid schema")

// NewObject builds a mapping schema. Keys must be unique and every optional
// default must satisfy its own node unless the field is Trusted.
func NewObject(fields []Field, unknown UnknownPolicy) (*Object, error) {
	o := &Object{fields: make([]Field, 0, len(fields)), byKey: make(map[string]int, len(fields)), unknown: unknown}
	for _, f := range fields {
		if f.Node == nil {
			return nil, fmt.Errorf("%w: field %q has no node", ErrInvalidSchema, f.Key)
		}
		if _, dup := o.byKey[f.Key]; dup {
			return nil, fmt.Errorf("%w: field %q declared twice", ErrInvalidSchema, f.Key)
		}
		if !f.Required && !f.Trusted {
			if _, err := Validate(context.Background(), f.Node, f.Default); err != nil {
				return nil, fmt.Errorf("%w: default for %q does not validate: %w", ErrInvalidSchema, f.Key, err)
			}
		}
		f.Default = f.Default.Clone()
		o.byKey[f.Key] = len(o.fields)
		o.fields = append(o.fields, f)
	}
	return o, nil
}

// Fields returns the declared fields in declaration order.
func (o *Object) Fields() []Field {
	out := make([]Field, len(o.fields))
	for i, f := range o.fields {
		f.Default = f.Default.Clone()
		out[i] = f
	}
	return out
}

// Field looks up a declared field.
func (o *Object) Field(key string) (Field, bool) {
	i, ok := o.byKey[key]
	if !ok {
		return Field{}, false
	}
	f := o.fields[i]
	f.Default = f.Default.Clone()
	return f, true
}

func (o *Object) Unknown() UnknownPolicy { return o.unknown }

// Defaults returns a mapping holding every optional field's default, in
// declaration order.
func (o *Object) Defaults() Value {
	out := Map()
	for _, f := range o.fields {
		if !f.Required {
			out.set(f.Key, f.Default.Clone())
		}
	}
	return out
}

// Array validates a sequence element by element, then its length.
type Array struct {
	elem       Node
	min, max   int
	lengthName string
	length     func(int) bool
}

// NewArray builds a sequence schema; negative bounds are unbounded.
func NewArray(elem Node, min, max int) *Array {
	return &Array{elem: elem, min: min, max: max}
}

// AtLeast returns a copy of a with a minimum element count.
func (a *Array) AtLeast(n int) *Array {
	c := *a
	c.min = n
	return &c
}

// AtMost returns a copy of a with a maximum element count.
func (a *Array) AtMost(n int) *Array {
	c := *a
	c.max = n
	return &c
}

// WithLength returns a copy of a with an additional count predicate.
func (a *Array) WithLength(name string, fn func(int) bool) *Array {
	c := *a
	c.lengthName = name
	c.length = fn
	return &c
}

func (a *Array) Elem() Node { return a.elem }
func (a *Array) Min() int   { return a.min }
func (a *Array) Max() int   { return a.max }

func (*Predicate) node() {}
func (*And) node()       {}
func (*Or) node()        {}
func (*Transform) node() {}
func (*Fail) node()      {}
func (*Literal) node()   {}
func (*Object) node()    {}
func (*Array) node()     {}
