package treeskema

import (
	"context"
	"fmt"
	"sort"
	"strconv"
)

// Validate walks v against n and returns the normalized tree, or the first
// Issue encountered. v is never modified and the result shares no storage
// with v or with schema defaults.
func Validate(ctx context.Context, n Node, v Value) (Value, error) {
	return ValidateAt(ctx, n, v, Root())
}

// ValidateAt is Validate with issue paths rooted at at.
func ValidateAt(ctx context.Context, n Node, v Value, at Path) (Value, error) {
	w := &walker{ctx: ctx}
	return w.walk(n, v, at)
}

// ValidateWithMeta is Validate plus presence metadata for every mapping key
// the schema declares.
func ValidateWithMeta(ctx context.Context, n Node, v Value) (Decoded, error) {
	w := &walker{ctx: ctx, pm: PresenceMap{"/": PresenceSeen}}
	out, err := w.walk(n, v, Root())
	if err != nil {
		return Decoded{Presence: w.pm}, err
	}
	return Decoded{Value: out, Presence: w.pm}, nil
}

type walker struct {
	ctx context.Context
	pm  PresenceMap // nil unless presence is collected
}

func (w *walker) walk(n Node, v Value, at Path) (Value, error) {
	switch t := n.(type) {
	case *Predicate:
		return w.walkPredicate(t, v, at)
	case *And:
		cur := v
		for _, c := range t.children {
			out, err := w.walk(c, cur, at)
			if err != nil {
				return Value{}, err
			}
			cur = out
		}
		return cur.Clone(), nil
	case *Or:
		return w.walkOr(t, v, at)
	case *Transform:
		return w.walkTransform(t, v, at)
	case *Fail:
		return Value{}, Issue{Path: at, Code: CodeCustom, Message: t.message}
	case *Literal:
		if !v.Equal(t.value) {
			return Value{}, newIssue(at, CodeInvalidType, map[string]string{"expected": t.value.String(), "got": v.String()}, "")
		}
		return v.Clone(), nil
	case *Object:
		return w.walkObject(t, v, at)
	case *Array:
		return w.walkArray(t, v, at)
	case nil:
		return Value{}, fmt.Errorf("%w: nil node at %s", ErrInvalidSchema, at.Pointer())
	default:
		return Value{}, fmt.Errorf("%w: unsupported node %T at %s", ErrInvalidSchema, n, at.Pointer())
	}
}

func (w *walker) walkPredicate(p *Predicate, v Value, at Path) (Value, error) {
	if p.test != nil && p.test(v) {
		return v.Clone(), nil
	}
	if p.code == CodeInvalidType {
		return Value{}, newIssue(at, CodeInvalidType, map[string]string{"expected": p.name, "got": v.Kind().String(), "value": brief(v)}, "")
	}
	return Value{}, newIssue(at, p.code, map[string]string{"name": p.name, "value": v.String()}, "")
}

func (w *walker) walkOr(o *Or, v Value, at Path) (Value, error) {
	var last error = Issue{Path: at, Code: CodeInvalidType, Message: "no alternatives"}
	for _, c := range o.children {
		branch := w.fork()
		out, err := branch.walk(c, v, at)
		if err == nil {
			w.merge(branch)
			return out, nil
		}
		last = err
	}
	return Value{}, last
}

func (w *walker) walkTransform(t *Transform, v Value, at Path) (Value, error) {
	cur := v.Clone()
	if t.base != nil {
		out, err := w.walk(t.base, v, at)
		if err != nil {
			return Value{}, err
		}
		cur = out
	}
	if t.fn == nil {
		return cur, nil
	}
	out, err := t.fn(cur)
	if err != nil {
		if it, ok := AsIssue(err); ok {
			it.Path = at.join(it.Path)
			return Value{}, it
		}
		return Value{}, Issue{Path: at, Code: CodeCustom, Message: err.Error(), Cause: err}
	}
	return out.Clone(), nil
}

func (w *walker) walkObject(o *Object, v Value, at Path) (Value, error) {
	if err := w.ctx.Err(); err != nil {
		return Value{}, err
	}
	if v.Kind() != KindMap {
		return Value{}, newIssue(at, CodeInvalidType, map[string]string{"expected": KindMap.String(), "got": v.Kind().String(), "value": brief(v)}, "")
	}

	// declared fields in declaration order so the reported issue does not
	// depend on the order of keys in the input
	parsed := make(map[string]Value, len(o.fields))
	var defaulted []string
	for _, f := range o.fields {
		fp := at.Key(f.Key)
		if pos, ok := v.index[f.Key]; ok {
			in := v.vals[pos]
			w.mark(fp, PresenceSeen)
			if in.IsNull() {
				w.mark(fp, PresenceWasNull)
			}
			out, err := w.walk(f.Node, in, fp)
			if err != nil {
				return Value{}, err
			}
			parsed[f.Key] = out
			continue
		}
		if f.Required {
			return Value{}, newIssue(fp, CodeRequired, map[string]string{"key": f.Key}, "")
		}
		parsed[f.Key] = f.Default.Clone()
		defaulted = append(defaulted, f.Key)
		w.mark(fp, PresenceDefaultApplied)
	}

	// unknown keys in key-sorted order
	var unknown []string
	for _, k := range v.keys {
		if _, known := o.byKey[k]; !known {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		switch o.unknown {
		case UnknownStrict:
			hint := ""
			if s := suggestKey(k, o.fields); s != "" {
				hint = "did you mean '" + s + "'?"
			}
			return Value{}, newIssue(at.Key(k), CodeUnknownKey, map[string]string{"key": k}, hint)
		case UnknownPassthrough:
			parsed[k] = v.vals[v.index[k]].Clone()
			w.mark(at.Key(k), PresencePassthrough)
		}
	}

	out := Value{kind: KindMap, index: make(map[string]int, len(parsed))}
	for _, k := range v.keys {
		if pv, ok := parsed[k]; ok {
			out.set(k, pv)
		}
	}
	for _, k := range defaulted {
		out.set(k, parsed[k])
	}
	return out, nil
}

func (w *walker) walkArray(a *Array, v Value, at Path) (Value, error) {
	if err := w.ctx.Err(); err != nil {
		return Value{}, err
	}
	if v.Kind() != KindSeq {
		return Value{}, newIssue(at, CodeInvalidType, map[string]string{"expected": KindSeq.String(), "got": v.Kind().String(), "value": brief(v)}, "")
	}
	items := make([]Value, 0, len(v.items))
	for i, el := range v.items {
		out, err := w.walk(a.elem, el, at.Index(i))
		if err != nil {
			return Value{}, err
		}
		items = append(items, out)
	}
	n := len(items)
	count := strconv.Itoa(n)
	if a.min >= 0 && n < a.min {
		return Value{}, newIssue(at, CodeTooShort, map[string]string{"min": strconv.Itoa(a.min), "count": count}, "")
	}
	if a.max >= 0 && n > a.max {
		return Value{}, newIssue(at, CodeTooLong, map[string]string{"max": strconv.Itoa(a.max), "count": count}, "")
	}
	if a.length != nil && !a.length(n) {
		return Value{}, newIssue(at, CodeLength, map[string]string{"name": a.lengthName, "count": count}, "")
	}
	return Value{kind: KindSeq, items: items}, nil
}

func (w *walker) mark(at Path, p Presence) {
	if w.pm == nil {
		return
	}
	w.pm[at.Pointer()] |= p
}

// fork returns a walker whose presence marks are discarded unless merged.
func (w *walker) fork() *walker {
	if w.pm == nil {
		return w
	}
	return &walker{ctx: w.ctx, pm: PresenceMap{}}
}

func (w *walker) merge(branch *walker) {
	if branch == w || w.pm == nil {
		return
	}
	for k, p := range branch.pm {
		w.pm[k] |= p
	}
}

const briefLimit = 60

// brief renders v for a diagnostic, cut short for large trees.
func brief(v Value) string {
	s := v.String()
	if len(s) > briefLimit {
		return s[:briefLimit] + "..."
	}
	return s
}
