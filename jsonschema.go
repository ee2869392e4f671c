package treeskema

import (
	"fmt"

	js "github.com/reoring/treeskema/jsonschema"
)

// JSONSchema projects a schema tree into a JSON Schema document. Transform
// steps project to their base since their mapping is opaque.
func JSONSchema(n Node) (*js.Schema, error) {
	switch t := n.(type) {
	case *Predicate:
		if t.jsType != "" {
			return &js.Schema{Type: t.jsType}, nil
		}
		return &js.Schema{Description: t.name}, nil
	case *And:
		out := &js.Schema{}
		for _, c := range t.children {
			cs, err := JSONSchema(c)
			if err != nil {
				return nil, err
			}
			out.AllOf = append(out.AllOf, cs)
		}
		return out, nil
	case *Or:
		out := &js.Schema{}
		for _, c := range t.children {
			cs, err := JSONSchema(c)
			if err != nil {
				return nil, err
			}
			out.AnyOf = append(out.AnyOf, cs)
		}
		return out, nil
	case *Transform:
		if t.base == nil {
			return &js.Schema{}, nil
		}
		return JSONSchema(t.base)
	case *Fail:
		return &js.Schema{Description: t.message, Not: &js.Schema{}}, nil
	case *Literal:
		if t.value.IsNull() {
			return &js.Schema{Type: "null"}, nil
		}
		return &js.Schema{Const: t.value.ToAny()}, nil
	case *Object:
		props := make(map[string]*js.Schema, len(t.fields))
		var req []string
		for _, f := range t.fields {
			ps, err := JSONSchema(f.Node)
			if err != nil {
				return nil, err
			}
			if f.Required {
				req = append(req, f.Key)
			} else {
				ps.Default = f.Default.ToAny()
			}
			props[f.Key] = ps
		}
		// UnknownStrict => additionalProperties=false, otherwise accepted
		var additional any = true
		if t.unknown == UnknownStrict {
			additional = false
		}
		return &js.Schema{Type: "object", Properties: props, Required: req, AdditionalProperties: additional}, nil
	case *Array:
		es, err := JSONSchema(t.elem)
		if err != nil {
			return nil, err
		}
		s := &js.Schema{Type: "array", Items: es, Description: t.lengthName}
		if t.min >= 0 {
			n := t.min
			s.MinItems = &n
		}
		if t.max >= 0 {
			n := t.max
			s.MaxItems = &n
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unsupported node %T", ErrInvalidSchema, n)
	}
}

func jsonType(k Kind) string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "number"
	case KindString:
		return "string"
	case KindSeq:
		return "array"
	case KindMap:
		return "object"
	}
	return ""
}
