package dsl_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	ts "github.com/reoring/treeskema"
	g "github.com/reoring/treeskema/dsl"
)

func mustFromAny(t *testing.T, v any) ts.Value {
	t.Helper()
	out, err := ts.FromAny(v)
	if err != nil {
		t.Fatalf("FromAny: %v", err)
	}
	return out
}

func TestObject_RequiredAndDefaults(t *testing.T) {
	ctx := context.Background()
	o := g.Object().
		Field("name", g.NonEmptyString()).Required().
		Field("num_cpus", g.IntRange(1, 16)).Default(1).
		Field("tags", g.Array(g.String()).AtMost(3)).Default([]any{"a"}).
		MustBuild()

	out, err := ts.Validate(ctx, o, mustFromAny(t, map[string]any{"name": "vm1"}))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := map[string]any{"name": "vm1", "num_cpus": int64(1), "tags": []any{"a"}}
	if diff := cmp.Diff(want, out.ToAny()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if got := out.Keys(); !cmp.Equal(got, []string{"name", "num_cpus", "tags"}) {
		t.Fatalf("defaulted keys should follow input keys in declaration order, got %v", got)
	}

	_, err = ts.Validate(ctx, o, ts.Map())
	it := expectCode(t, err, ts.CodeRequired)
	if it.Path.Pointer() != "/name" {
		t.Fatalf("unexpected path: %s", it.Path.Pointer())
	}
	if it.Message != "missing key: 'name'" {
		t.Fatalf("unexpected message: %q", it.Message)
	}
}

func TestObject_DefaultIsNotShared(t *testing.T) {
	ctx := context.Background()
	o := g.Object().
		Field("disks", g.Array(g.Positive())).Default([]any{100, 600, 100}).
		MustBuild()

	first, err := ts.Validate(ctx, o, ts.Map())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	second, _ := ts.Validate(ctx, o, ts.Map())
	if !first.Equal(second) {
		t.Fatalf("repeated validation should be equal: %v vs %v", first, second)
	}
	f, _ := o.Field("disks")
	if f.Default.Len() != 3 {
		t.Fatalf("schema default changed: %v", f.Default)
	}
}

func TestObject_UnknownStrict(t *testing.T) {
	ctx := context.Background()
	o := g.Object().Field("a", g.Int()).Required().MustBuild()

	in := ts.Map(ts.KV("a", ts.Int(1)), ts.KV("zz", ts.Int(2)), ts.KV("b", ts.Int(3)))
	_, err := ts.Validate(ctx, o, in)
	it := expectCode(t, err, ts.CodeUnknownKey)
	// lowest unknown key is reported first
	if it.Path.Pointer() != "/b" {
		t.Fatalf("unexpected path: %s", it.Path.Pointer())
	}
	if it.Message != "wrong key 'b'" {
		t.Fatalf("unexpected message: %q", it.Message)
	}
}

func TestObject_UnknownStripAndPassthrough(t *testing.T) {
	ctx := context.Background()
	in := ts.Map(ts.KV("extra", ts.String("x")), ts.KV("a", ts.Int(1)))

	strip := g.Object().Field("a", g.Int()).Required().UnknownStrip().MustBuild()
	out, err := ts.Validate(ctx, strip, in)
	if err != nil {
		t.Fatalf("strip: %v", err)
	}
	if out.Has("extra") {
		t.Fatalf("strip should drop unknown keys: %v", out)
	}

	pass := g.Object().Field("a", g.Int()).Required().UnknownPassthrough().MustBuild()
	out, err = ts.Validate(ctx, pass, in)
	if err != nil {
		t.Fatalf("passthrough: %v", err)
	}
	if !out.Equal(in) {
		t.Fatalf("passthrough should keep input order and keys: %v", out)
	}
}

func TestObject_BuildRejectsDuplicateField(t *testing.T) {
	_, err := g.Object().
		Field("a", g.Int()).Required().
		Field("a", g.String()).Required().
		Build()
	if !errors.Is(err, ts.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestObject_BuildRejectsInvalidDefault(t *testing.T) {
	_, err := g.Object().
		Field("num_cpus", g.IntRange(1, 16)).Default(64).
		Build()
	if !errors.Is(err, ts.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}

	// trusted defaults skip the self check
	o, err := g.Object().
		Field("hostname", g.NonEmptyString()).DefaultTrusted(nil).
		Build()
	if err != nil {
		t.Fatalf("trusted default should build: %v", err)
	}
	out, err := ts.Validate(context.Background(), o, ts.Map())
	if err != nil {
		t.Fatalf("defaults are not revalidated: %v", err)
	}
	if v, _ := out.Get("hostname"); !v.IsNull() {
		t.Fatalf("expected null default, got %v", v)
	}
}

func TestObject_NestedPath(t *testing.T) {
	ctx := context.Background()
	disk := g.Object().Field("disk_path", g.HasPrefix("/dev/")).Required().MustBuild()
	o := g.Object().Field("disks", g.Array(disk)).Required().MustBuild()

	in := mustFromAny(t, map[string]any{"disks": []any{
		map[string]any{"disk_path": "/dev/sdb"},
		map[string]any{"disk_path": "sdc"},
	}})
	_, err := ts.Validate(ctx, o, in)
	it := expectCode(t, err, ts.CodePredicate)
	if it.Path.Pointer() != "/disks/1/disk_path" {
		t.Fatalf("unexpected path: %s", it.Path.Pointer())
	}
}
