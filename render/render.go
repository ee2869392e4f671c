// Package render writes treeskema values as YAML or JSON, keeping mapping
// key order.
package render

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	j "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	yamlv3 "gopkg.in/yaml.v3"

	ts "github.com/reoring/treeskema"
)

// Format is an output encoding.
type Format string

const (
	YAMLFormat Format = "yaml"
	JSONFormat Format = "json"
)

// ParseFormat accepts "yaml", "yml" or "json".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "yaml", "yml", "":
		return YAMLFormat, nil
	case "json":
		return JSONFormat, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Encode writes v in format f. JSON output is indented.
func Encode(f Format, v ts.Value) ([]byte, error) {
	switch f {
	case YAMLFormat:
		return YAML(v)
	case JSONFormat:
		return JSON(v, true)
	}
	return nil, fmt.Errorf("unknown output format %q", f)
}

// YAML renders v as a block-style YAML document.
func YAML(v ts.Value) ([]byte, error) {
	out, err := yaml.MarshalWithOptions(toYAML(v), yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return nil, fmt.Errorf("render yaml: %w", err)
	}
	return out, nil
}

func toYAML(v ts.Value) any {
	switch v.Kind() {
	case ts.KindMap:
		ms := make(yaml.MapSlice, 0, v.Len())
		for _, e := range v.Entries() {
			ms = append(ms, yaml.MapItem{Key: e.Key, Value: toYAML(e.Value)})
		}
		return ms
	case ts.KindSeq:
		items := v.Items()
		out := make([]any, len(items))
		for i := range items {
			out[i] = toYAML(items[i])
		}
		return out
	case ts.KindString:
		s, _ := v.AsString()
		if !plainIsString(s) {
			return quotedString(s)
		}
		return s
	case ts.KindFloat:
		f, _ := v.AsFloat()
		return yamlFloat(f)
	default:
		return v.ToAny()
	}
}

// plainIsString reports whether s written as a plain scalar reads back as a
// string under the resolver source.YAMLBytes uses.
func plainIsString(s string) bool {
	n := yamlv3.Node{Kind: yamlv3.ScalarNode, Value: s}
	return n.ShortTag() == "!!str"
}

// quotedString is always written double-quoted.
type quotedString string

func (q quotedString) MarshalYAML() ([]byte, error) {
	return []byte(strconv.Quote(string(q))), nil
}

// yamlFloat keeps a float a float: integral values get a ".0" suffix.
type yamlFloat float64

func (f yamlFloat) MarshalYAML() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(".nan"), nil
	case math.IsInf(v, 1):
		return []byte(".inf"), nil
	case math.IsInf(v, -1):
		return []byte("-.inf"), nil
	}
	return ts.Float(v).MarshalJSON()
}

// JSON renders v as JSON, indented by two spaces when indent is set.
func JSON(v ts.Value, indent bool) ([]byte, error) {
	b, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("render json: %w", err)
	}
	if !indent {
		return b, nil
	}
	var buf bytes.Buffer
	if err := j.Indent(&buf, b, "", "  "); err != nil {
		return nil, fmt.Errorf("render json: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
