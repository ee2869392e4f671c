package treeskema

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindSeq
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindSeq:
		return "list"
	case KindMap:
		return "dict"
	default:
		return "unknown"
	}
}

// Value is the generic tree produced by a loader and consumed by the engine.
// The zero Value is null. Composite values are never mutated after
// construction; accessors hand out copies.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	items []Value
	keys  []string
	vals  []Value
	index map[string]int
}

// Entry is a single key/value pair of a mapping.
type Entry struct {
	Key   string
	Value Value
}

// KV is shorthand for Entry{Key: k, Value: v}.
func KV(k string, v Value) Entry { return Entry{Key: k, Value: v} }

func Null() Value              { return Value{} }
func Bool(b bool) Value        { return Value{kind: KindBool, b: b} }
func Int(i int64) Value        { return Value{kind: KindInt, i: i} }
func Float(f float64) Value    { return Value{kind: KindFloat, f: f} }
func String(s string) Value    { return Value{kind: KindString, s: s} }
func Seq(items ...Value) Value { return Value{kind: KindSeq, items: cloneSlice(items)} }

// Map builds a mapping preserving entry order. A repeated key keeps its first
// position and takes the last value.
func Map(entries ...Entry) Value {
	v := Value{kind: KindMap, index: make(map[string]int, len(entries))}
	for _, e := range entries {
		v.set(e.Key, e.Value.Clone())
	}
	return v
}

// set appends or replaces a key. Only used while a Value is being built.
func (v *Value) set(k string, val Value) {
	if v.index == nil {
		v.index = map[string]int{}
	}
	if pos, ok := v.index[k]; ok {
		v.vals[pos] = val
		return
	}
	v.index[k] = len(v.keys)
	v.keys = append(v.keys, k)
	v.vals = append(v.vals, val)
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool)     { return v.b, v.kind == KindBool }
func (v Value) AsInt() (int64, bool)     { return v.i, v.kind == KindInt }
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsNumber returns ints and floats as float64.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// Len reports the element count of a sequence, the key count of a mapping,
// or the byte length of a string. Other kinds report 0.
func (v Value) Len() int {
	switch v.kind {
	case KindSeq:
		return len(v.items)
	case KindMap:
		return len(v.keys)
	case KindString:
		return len(v.s)
	}
	return 0
}

// Items returns a copy of the sequence elements.
func (v Value) Items() []Value {
	if v.kind != KindSeq {
		return nil
	}
	return cloneSlice(v.items)
}

// Index returns the i-th sequence element.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindSeq || i < 0 || i >= len(v.items) {
		return Value{}, false
	}
	return v.items[i].Clone(), true
}

// Keys returns mapping keys in insertion order.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	return append([]string(nil), v.keys...)
}

// Entries returns the mapping entries in insertion order.
func (v Value) Entries() []Entry {
	if v.kind != KindMap {
		return nil
	}
	out := make([]Entry, len(v.keys))
	for i, k := range v.keys {
		out[i] = Entry{Key: k, Value: v.vals[i].Clone()}
	}
	return out
}

func (v Value) Get(k string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	pos, ok := v.index[k]
	if !ok {
		return Value{}, false
	}
	return v.vals[pos].Clone(), true
}

func (v Value) Has(k string) bool {
	if v.kind != KindMap {
		return false
	}
	_, ok := v.index[k]
	return ok
}

// Clone returns a deep copy.
func (v Value) Clone() Value {
	switch v.kind {
	case KindSeq:
		return Value{kind: KindSeq, items: cloneSlice(v.items)}
	case KindMap:
		out := Value{kind: KindMap, keys: append([]string(nil), v.keys...), vals: cloneSlice(v.vals), index: make(map[string]int, len(v.keys))}
		for i, k := range out.keys {
			out.index[k] = i
		}
		return out
	default:
		return v
	}
}

func cloneSlice(in []Value) []Value {
	if in == nil {
		return []Value{}
	}
	out := make([]Value, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// Equal compares two trees structurally. Mapping key order is ignored; ints
// and floats never compare equal to each other.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindString:
		return v.s == o.s
	case KindSeq:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.keys) != len(o.keys) {
			return false
		}
		for i, k := range v.keys {
			pos, ok := o.index[k]
			if !ok || !v.vals[i].Equal(o.vals[pos]) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders a short form used in diagnostics.
func (v Value) String() string {
	var b strings.Builder
	v.writeTo(&b)
	return b.String()
}

func (v Value) writeTo(b *strings.Builder) {
	switch v.kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		b.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		b.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		b.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString:
		b.WriteString(strconv.Quote(v.s))
	case KindSeq:
		b.WriteByte('[')
		for i, it := range v.items {
			if i > 0 {
				b.WriteString(", ")
			}
			it.writeTo(b)
		}
		b.WriteByte(']')
	case KindMap:
		b.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			v.vals[i].writeTo(b)
		}
		b.WriteByte('}')
	}
}

// ToAny converts the tree into plain Go data (map[string]any, []any, int64,
// float64, string, bool, nil). Mapping order is lost.
func (v Value) ToAny() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindSeq:
		out := make([]any, len(v.items))
		for i := range v.items {
			out[i] = v.items[i].ToAny()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.keys))
		for i, k := range v.keys {
			out[k] = v.vals[i].ToAny()
		}
		return out
	default:
		return nil
	}
}

type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

// FromAny converts decoded Go data into a Value. Keys of Go maps are sorted
// since their iteration order carries no meaning.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t.Clone(), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return fromUint(uint64(t))
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		return fromUint(t)
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case string:
		return String(t), nil
	case number:
		if i, err := t.Int64(); err == nil && !strings.ContainsAny(t.String(), ".eE") {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return Float(f), nil
	case []any:
		out := Value{kind: KindSeq, items: make([]Value, 0, len(t))}
		for i := range t {
			ev, err := FromAny(t[i])
			if err != nil {
				return Value{}, err
			}
			out.items = append(out.items, ev)
		}
		return out, nil
	case []Value:
		return Seq(t...), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := Value{kind: KindMap, index: make(map[string]int, len(keys))}
		for _, k := range keys {
			ev, err := FromAny(t[k])
			if err != nil {
				return Value{}, err
			}
			out.set(k, ev)
		}
		return out, nil
	case map[any]any:
		conv := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				ks = fmt.Sprint(k)
			}
			conv[ks] = vv
		}
		return FromAny(conv)
	default:
		return Value{}, fmt.Errorf("unsupported value of type %T", x)
	}
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, fmt.Errorf("integer %d overflows int64", u)
	}
	return Int(int64(u)), nil
}

// MarshalJSON writes the tree with mapping keys in insertion order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encodeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encodeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindSeq:
		buf.WriteByte('[')
		for i := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := v.items[i].encodeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case KindMap:
		buf.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := gojson.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := v.vals[i].encodeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return fmt.Errorf("cannot encode %v as JSON", v.f)
		}
		// integral floats keep a fraction so they do not read back as Int
		s := strconv.FormatFloat(v.f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		buf.WriteString(s)
		return nil
	}
	b, err := gojson.Marshal(v.ToAny())
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
