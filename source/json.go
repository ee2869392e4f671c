package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	j "github.com/goccy/go-json"

	ts "github.com/reoring/treeskema"
)

func decodeJSON(b []byte, maxDepth int) (ts.Value, error) {
	dec := j.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	d := &jsonWalker{dec: dec, maxDepth: maxDepth}

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return ts.Null(), nil
	}
	if err != nil {
		return ts.Value{}, err
	}
	v, err := d.value(tok, ts.Root(), 0)
	if err != nil {
		return ts.Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return ts.Value{}, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

type jsonWalker struct {
	dec      *j.Decoder
	maxDepth int
}

func (d *jsonWalker) value(tok any, at ts.Path, depth int) (ts.Value, error) {
	switch t := tok.(type) {
	case j.Delim:
		if d.maxDepth > 0 && depth+1 > d.maxDepth {
			return ts.Value{}, depthIssue(at, d.maxDepth)
		}
		switch t {
		case '{':
			return d.object(at, depth+1)
		case '[':
			return d.array(at, depth+1)
		}
		return ts.Value{}, fmt.Errorf("%s: unexpected %q", at.Pointer(), rune(t))
	case string:
		return ts.String(t), nil
	case bool:
		return ts.Bool(t), nil
	case j.Number:
		v, err := ts.FromAny(t)
		if err != nil {
			return ts.Value{}, fmt.Errorf("%s: %w", at.Pointer(), err)
		}
		return v, nil
	case float64:
		return ts.Float(t), nil
	case nil:
		return ts.Null(), nil
	}
	return ts.Value{}, fmt.Errorf("%s: unexpected token %v", at.Pointer(), tok)
}

func (d *jsonWalker) object(at ts.Path, depth int) (ts.Value, error) {
	var entries []ts.Entry
	seen := map[string]bool{}
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return ts.Value{}, err
		}
		if delim, ok := tok.(j.Delim); ok && delim == '}' {
			return ts.Map(entries...), nil
		}
		key, ok := tok.(string)
		if !ok {
			return ts.Value{}, fmt.Errorf("%s: expected object key, got %v", at.Pointer(), tok)
		}
		if seen[key] {
			return ts.Value{}, duplicateIssue(at.Key(key), key)
		}
		seen[key] = true
		vt, err := d.dec.Token()
		if err != nil {
			return ts.Value{}, err
		}
		v, err := d.value(vt, at.Key(key), depth)
		if err != nil {
			return ts.Value{}, err
		}
		entries = append(entries, ts.KV(key, v))
	}
}

func (d *jsonWalker) array(at ts.Path, depth int) (ts.Value, error) {
	var items []ts.Value
	for i := 0; ; i++ {
		tok, err := d.dec.Token()
		if err != nil {
			return ts.Value{}, err
		}
		if delim, ok := tok.(j.Delim); ok && delim == ']' {
			return ts.Seq(items...), nil
		}
		v, err := d.value(tok, at.Index(i), depth)
		if err != nil {
			return ts.Value{}, err
		}
		items = append(items, v)
	}
}
