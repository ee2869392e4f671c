package treeskema_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	ts "github.com/reoring/treeskema"
	g "github.com/reoring/treeskema/dsl"
)

func asIssue(t *testing.T, err error) ts.Issue {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	it, ok := ts.AsIssue(err)
	if !ok {
		t.Fatalf("expected Issue, got %T: %v", err, err)
	}
	return it
}

func mustValue(t *testing.T, x any) ts.Value {
	t.Helper()
	v, err := ts.FromAny(x)
	if err != nil {
		t.Fatalf("FromAny: %v", err)
	}
	return v
}

func TestIssue_ErrorAndKind(t *testing.T) {
	it := ts.Issue{Path: ts.Root().Key("vmware").Key("host"), Code: ts.CodeRequired, Message: "missing key: 'host'"}
	if got := it.Error(); got != "required at /vmware/host: missing key: 'host'" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if it.Kind() != ts.ErrorMissingKey {
		t.Fatalf("unexpected kind: %v", it.Kind())
	}

	wrapped := fmt.Errorf("loading: %w", it)
	got, ok := ts.AsIssue(wrapped)
	if !ok || got.Code != ts.CodeRequired {
		t.Fatalf("AsIssue should unwrap, got %v %v", got, ok)
	}
	if _, ok := ts.AsIssue(errors.New("plain")); ok {
		t.Fatalf("plain errors are not issues")
	}
}

func TestKindOf(t *testing.T) {
	cases := map[string]ts.ErrorKind{
		ts.CodeRequired:    ts.ErrorMissingKey,
		ts.CodeUnknownKey:  ts.ErrorUnexpectedKey,
		ts.CodeInvalidType: ts.ErrorTypeMismatch,
		ts.CodePredicate:   ts.ErrorPredicateFailed,
		ts.CodeCustom:      ts.ErrorCustomDiagnostic,
		ts.CodeTooLong:     ts.ErrorLengthViolation,
		ts.CodeTooShort:    ts.ErrorLengthViolation,
		ts.CodeParseError:  ts.ErrorOther,
	}
	for code, want := range cases {
		if got := ts.KindOf(code); got != want {
			t.Fatalf("KindOf(%s) = %v, want %v", code, got, want)
		}
	}
}

func TestValidate_DeclaredFieldsBeforeUnknownKeys(t *testing.T) {
	ctx := context.Background()
	o := g.Object().
		Field("a", g.Int()).Required().
		Field("b", g.Int()).Required().
		MustBuild()

	// both an unknown key and a missing key: the missing key wins
	_, err := ts.Validate(ctx, o, ts.Map(ts.KV("zzz", ts.Int(1)), ts.KV("a", ts.Int(1))))
	it := asIssue(t, err)
	if it.Code != ts.CodeRequired || it.Path.Pointer() != "/b" {
		t.Fatalf("unexpected issue: %v", it)
	}

	// declaration order decides between two bad fields, not input order
	_, err = ts.Validate(ctx, o, ts.Map(ts.KV("b", ts.String("x")), ts.KV("a", ts.String("y"))))
	it = asIssue(t, err)
	if it.Path.Pointer() != "/a" {
		t.Fatalf("expected /a first, got %v", it)
	}
}

func TestValidate_UnknownKeyHint(t *testing.T) {
	ctx := context.Background()
	o := g.Object().
		Field("datastore", g.String()).Required().
		Field("folder", g.String()).Required().
		MustBuild()

	in := ts.Map(ts.KV("datastore", ts.String("ds")), ts.KV("folder", ts.String("f")), ts.KV("foldr", ts.Int(1)))
	_, err := ts.Validate(ctx, o, in)
	it := asIssue(t, err)
	if it.Code != ts.CodeUnknownKey || it.Hint != "did you mean 'folder'?" {
		t.Fatalf("unexpected issue: %+v", it)
	}
	if got := it.Error(); got != "unknown_key at /foldr: wrong key 'foldr' (did you mean 'folder'?)" {
		t.Fatalf("hint should be rendered: %q", got)
	}

	in = ts.Map(ts.KV("datastore", ts.String("ds")), ts.KV("folder", ts.String("f")), ts.KV("network", ts.Int(1)))
	_, err = ts.Validate(ctx, o, in)
	if it := asIssue(t, err); it.Hint != "" {
		t.Fatalf("no close key, got hint %q", it.Hint)
	}
}

func TestValidate_OutputOrder(t *testing.T) {
	ctx := context.Background()
	o := g.Object().
		Field("a", g.Int()).Default(1).
		Field("b", g.Int()).Default(2).
		Field("c", g.Int()).Default(3).
		MustBuild()

	out, err := ts.Validate(ctx, o, ts.Map(ts.KV("c", ts.Int(30)), ts.KV("a", ts.Int(10))))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if diff := cmp.Diff([]string{"c", "a", "b"}, out.Keys()); diff != "" {
		t.Fatalf("present keys keep input order, defaults follow (-want +got):\n%s", diff)
	}
}

func TestValidate_NotAMapping(t *testing.T) {
	o := g.Object().Field("a", g.Int()).Required().MustBuild()
	_, err := ts.Validate(context.Background(), o, ts.Seq())
	it := asIssue(t, err)
	if it.Code != ts.CodeInvalidType || it.Message != "expected dict, got list ([])" {
		t.Fatalf("unexpected issue: %v", it)
	}
}

func TestValidate_TypeMismatchNamesValue(t *testing.T) {
	ctx := context.Background()
	_, err := ts.Validate(ctx, g.String(), ts.Int(5))
	it := asIssue(t, err)
	if it.Message != "expected string, got int (5)" {
		t.Fatalf("unexpected message: %q", it.Message)
	}

	long := make([]ts.Value, 40)
	for i := range long {
		long[i] = ts.Int(int64(i))
	}
	o := g.Object().Field("a", g.Int()).Required().MustBuild()
	_, err = ts.Validate(ctx, o, ts.Seq(long...))
	it = asIssue(t, err)
	if !strings.HasPrefix(it.Message, "expected dict, got list ([0, 1, 2") || !strings.HasSuffix(it.Message, "...)") {
		t.Fatalf("large values should be cut short: %q", it.Message)
	}
}

func TestValidate_ArrayBounds(t *testing.T) {
	ctx := context.Background()
	a := g.Array(g.Positive()).AtLeast(1).AtMost(2)

	_, err := ts.Validate(ctx, a, ts.Seq())
	if it := asIssue(t, err); it.Code != ts.CodeTooShort {
		t.Fatalf("expected too_short, got %v", it)
	}
	_, err = ts.Validate(ctx, a, ts.Seq(ts.Int(1), ts.Int(2), ts.Int(3)))
	it := asIssue(t, err)
	if it.Code != ts.CodeTooLong || it.Message != "too long (max 2, got 3)" {
		t.Fatalf("expected too_long, got %v", it)
	}

	// elements are checked before the count
	_, err = ts.Validate(ctx, a, ts.Seq(ts.Int(1), ts.Int(2), ts.Int(-3)))
	it = asIssue(t, err)
	if it.Code != ts.CodePredicate || it.Path.Pointer() != "/2" {
		t.Fatalf("expected element failure first, got %v", it)
	}

	even := g.ArrayLen(g.Int(), "even_count", func(n int) bool { return n%2 == 0 })
	_, err = ts.Validate(ctx, even, ts.Seq(ts.Int(1)))
	if it := asIssue(t, err); it.Code != ts.CodeLength {
		t.Fatalf("expected length, got %v", it)
	}
}

func TestValidate_TransformErrors(t *testing.T) {
	ctx := context.Background()
	plain := ts.Use(nil, func(ts.Value) (ts.Value, error) { return ts.Value{}, errors.New("boom") })
	_, err := ts.Validate(ctx, g.Object().Field("x", plain).Required().MustBuild(), ts.Map(ts.KV("x", ts.Int(1))))
	it := asIssue(t, err)
	if it.Code != ts.CodeCustom || it.Message != "boom" || it.Path.Pointer() != "/x" {
		t.Fatalf("unexpected issue: %v", it)
	}
	if it.Cause == nil || it.Cause.Error() != "boom" {
		t.Fatalf("cause should be kept: %v", it.Cause)
	}

	// issues returned by a transform are rooted at the transform's position
	nested := ts.Use(nil, func(ts.Value) (ts.Value, error) {
		return ts.Value{}, ts.Issue{Path: ts.Root().Key("inner"), Code: ts.CodePredicate, Message: "bad"}
	})
	_, err = ts.ValidateAt(ctx, nested, ts.Null(), ts.Root().Key("outer"))
	it = asIssue(t, err)
	if it.Path.Pointer() != "/outer/inner" || it.Code != ts.CodePredicate {
		t.Fatalf("unexpected issue: %v", it)
	}
}

func TestValidate_Literal(t *testing.T) {
	ctx := context.Background()
	lit := ts.Const(ts.String("v1"))
	if _, err := ts.Validate(ctx, lit, ts.String("v1")); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_, err := ts.Validate(ctx, lit, ts.String("v2"))
	if it := asIssue(t, err); it.Code != ts.CodeInvalidType {
		t.Fatalf("unexpected issue: %v", it)
	}
}

func TestValidate_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o := g.Object().Field("a", g.Int()).Default(1).MustBuild()
	_, err := ts.Validate(ctx, o, ts.Map())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestValidate_InputNotModified(t *testing.T) {
	ctx := context.Background()
	o := g.Object().
		Field("name", g.Use(func(v ts.Value) (ts.Value, error) { return ts.String("renamed"), nil })).Required().
		Field("extra", g.Int()).Default(5).
		MustBuild()
	in := ts.Map(ts.KV("name", ts.String("orig")))
	before := in.Clone()

	if _, err := ts.Validate(ctx, o, in); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !in.Equal(before) || in.Has("extra") {
		t.Fatalf("input modified: %v", in)
	}
}

func TestValidateWithMeta_Presence(t *testing.T) {
	ctx := context.Background()
	inner := g.Object().Field("x", g.Nullable(g.Int())).Default(0).MustBuild()
	o := g.Object().
		Field("a", inner).Required().
		Field("b", g.Int()).Default(7).
		UnknownPassthrough().
		MustBuild()

	in := ts.Map(ts.KV("a", ts.Map(ts.KV("x", ts.Null()))), ts.KV("other", ts.Int(1)))
	d, err := ts.ValidateWithMeta(ctx, o, in)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if diff := cmp.Diff([]string{"/b"}, d.DefaultsApplied()); diff != "" {
		t.Fatalf("defaults (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/a/x"}, d.Presence.With(ts.PresenceWasNull)); diff != "" {
		t.Fatalf("was-null (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/other"}, d.Presence.With(ts.PresencePassthrough)); diff != "" {
		t.Fatalf("passthrough (-want +got):\n%s", diff)
	}
	if d.Presence["/a"]&ts.PresenceSeen == 0 {
		t.Fatalf("/a should be seen")
	}
}

func TestValidateWithMeta_FailedBranchLeavesNoMarks(t *testing.T) {
	ctx := context.Background()
	withDefault := g.Object().
		Field("size", g.Int()).Default(1).
		Field("kind", ts.Const(ts.String("a"))).Required().
		MustBuild()
	other := g.Object().Field("kind", g.String()).Required().UnknownPassthrough().MustBuild()
	n := g.Or(withDefault, other)

	d, err := ts.ValidateWithMeta(ctx, n, ts.Map(ts.KV("kind", ts.String("b"))))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := d.DefaultsApplied(); len(got) != 0 {
		t.Fatalf("failed branch leaked presence: %v", got)
	}
}
