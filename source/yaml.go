package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	ts "github.com/reoring/treeskema"
)

// ErrExcessiveAliasing is returned for documents whose aliases expand to far
// more nodes than the document spells out.
var ErrExcessiveAliasing = errors.New("document contains excessive aliasing")

func decodeYAML(b []byte, maxDepth int) (ts.Value, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return ts.Null(), nil
		}
		return ts.Value{}, err
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return ts.Value{}, err
		}
		return ts.Value{}, fmt.Errorf("expected a single document in the stream (line %d)", extra.Line)
	}
	w := &yamlWalker{
		maxDepth: maxDepth,
		active:   map[*yaml.Node]bool{},
		anchors:  map[*yaml.Node]expansion{},
	}
	return w.node(&doc, ts.Root(), 0)
}

type yamlWalker struct {
	maxDepth int
	// anchors currently being expanded, for alias cycle detection
	active map[*yaml.Node]bool
	// anchored nodes already built, reused by later aliases
	anchors map[*yaml.Node]expansion

	// nodes produced so far, and how many of them came from aliases
	decodeCount int
	aliasCount  int
	// deepest container level reached by the node being built
	deepest int
}

type expansion struct {
	v      ts.Value
	size   int
	height int
}

// Same budget as yaml.v3 applies when it expands aliases itself: the share
// of alias-produced nodes shrinks from 99% to 10% as documents grow.
const (
	aliasRatioRangeLow  = 400000
	aliasRatioRangeHigh = 4000000
)

func allowedAliasRatio(decodeCount int) float64 {
	switch {
	case decodeCount <= aliasRatioRangeLow:
		return 0.99
	case decodeCount >= aliasRatioRangeHigh:
		return 0.10
	default:
		return 0.99 - 0.89*(float64(decodeCount-aliasRatioRangeLow)/float64(aliasRatioRangeHigh-aliasRatioRangeLow))
	}
}

func (w *yamlWalker) count(n int, fromAlias bool) error {
	w.decodeCount += n
	if fromAlias {
		w.aliasCount += n
	}
	if w.aliasCount > 100 && w.decodeCount > 1000 &&
		float64(w.aliasCount)/float64(w.decodeCount) > allowedAliasRatio(w.decodeCount) {
		return ErrExcessiveAliasing
	}
	return nil
}

func (w *yamlWalker) node(n *yaml.Node, at ts.Path, depth int) (ts.Value, error) {
	if n.Kind == yaml.AliasNode {
		return w.alias(n, at, depth)
	}
	if err := w.count(1, len(w.active) > 0); err != nil {
		return ts.Value{}, err
	}
	before, outer := w.decodeCount, w.deepest
	w.deepest = depth
	v, err := w.build(n, at, depth)
	if err != nil {
		return ts.Value{}, err
	}
	if n.Anchor != "" {
		w.anchors[n] = expansion{v: v, size: w.decodeCount - before + 1, height: w.deepest - depth}
	}
	w.deepest = max(outer, w.deepest)
	return v, nil
}

func (w *yamlWalker) alias(n *yaml.Node, at ts.Path, depth int) (ts.Value, error) {
	if e, ok := w.anchors[n.Alias]; ok {
		if err := w.count(e.size, true); err != nil {
			return ts.Value{}, err
		}
		if w.maxDepth > 0 && depth+e.height > w.maxDepth {
			return ts.Value{}, depthIssue(at, w.maxDepth)
		}
		w.deepest = max(w.deepest, depth+e.height)
		return e.v, nil
	}
	if w.active[n.Alias] {
		return ts.Value{}, fmt.Errorf("line %d: recursive alias %q", n.Line, n.Value)
	}
	w.active[n.Alias] = true
	defer delete(w.active, n.Alias)
	return w.node(n.Alias, at, depth)
}

func (w *yamlWalker) enter(at ts.Path, depth int) error {
	if w.maxDepth > 0 && depth+1 > w.maxDepth {
		return depthIssue(at, w.maxDepth)
	}
	w.deepest = max(w.deepest, depth+1)
	return nil
}

func (w *yamlWalker) build(n *yaml.Node, at ts.Path, depth int) (ts.Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return ts.Null(), nil
		}
		return w.node(n.Content[0], at, depth)
	case yaml.ScalarNode:
		return scalar(n)
	case yaml.SequenceNode:
		if err := w.enter(at, depth); err != nil {
			return ts.Value{}, err
		}
		items := make([]ts.Value, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := w.node(c, at.Index(i), depth+1)
			if err != nil {
				return ts.Value{}, err
			}
			items = append(items, v)
		}
		return ts.Seq(items...), nil
	case yaml.MappingNode:
		if err := w.enter(at, depth); err != nil {
			return ts.Value{}, err
		}
		return w.mapping(n, at, depth+1)
	case 0:
		return ts.Null(), nil
	}
	return ts.Value{}, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
}

// mapping builds a mapping. Keys brought in by "<<" come first and the
// mapping's own keys override them; among merged sources the earlier wins.
func (w *yamlWalker) mapping(n *yaml.Node, at ts.Path, depth int) (ts.Value, error) {
	var merged, own []ts.Entry
	seen := map[string]bool{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		kn, vn := n.Content[i], n.Content[i+1]
		if kn.Kind == yaml.ScalarNode && kn.ShortTag() == "!!merge" {
			entries, err := w.merge(vn, at, depth)
			if err != nil {
				return ts.Value{}, err
			}
			merged = append(merged, entries...)
			continue
		}
		key, err := w.key(kn)
		if err != nil {
			return ts.Value{}, err
		}
		if seen[key] {
			return ts.Value{}, duplicateIssue(at.Key(key), key)
		}
		seen[key] = true
		v, err := w.node(vn, at.Key(key), depth)
		if err != nil {
			return ts.Value{}, err
		}
		own = append(own, ts.KV(key, v))
	}

	entries := make([]ts.Entry, 0, len(merged)+len(own))
	taken := map[string]bool{}
	for _, e := range merged {
		if taken[e.Key] {
			continue
		}
		taken[e.Key] = true
		entries = append(entries, e)
	}
	// ts.Map keeps the first position of a repeated key and the last value
	return ts.Map(append(entries, own...)...), nil
}

func (w *yamlWalker) merge(n *yaml.Node, at ts.Path, depth int) ([]ts.Entry, error) {
	target := n
	if target.Kind == yaml.AliasNode {
		target = target.Alias
	}
	switch target.Kind {
	case yaml.MappingNode:
		v, err := w.node(n, at, depth-1)
		if err != nil {
			return nil, err
		}
		return v.Entries(), nil
	case yaml.SequenceNode:
		var out []ts.Entry
		for _, c := range target.Content {
			entries, err := w.merge(c, at, depth)
			if err != nil {
				return nil, err
			}
			out = append(out, entries...)
		}
		return out, nil
	}
	return nil, fmt.Errorf("line %d: map merge requires a mapping or a list of mappings", n.Line)
}

func (w *yamlWalker) key(n *yaml.Node) (string, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d: mapping keys must be scalars", n.Line)
	}
	return n.Value, nil
}

func scalar(n *yaml.Node) (ts.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return ts.Null(), nil
	case "!!str", "!!binary", "!!timestamp":
		return ts.String(n.Value), nil
	case "!!bool", "!!int", "!!float":
		var x any
		if err := n.Decode(&x); err != nil {
			return ts.Value{}, err
		}
		v, err := ts.FromAny(x)
		if err != nil {
			return ts.Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	}
	return ts.Value{}, fmt.Errorf("line %d: unsupported tag %s", n.Line, n.Tag)
}
