package treeskema

// Narrow restricts o to the top-level keys named in groups. With no groups o
// is returned unchanged and stays strict. Otherwise the result keeps only the
// selected fields, in declaration order, and passes every other key through
// untouched. Nested objects keep their own policy. Group names that match no
// declared key are ignored.
func Narrow(o *Object, groups []string) *Object {
	if len(groups) == 0 {
		return o
	}
	want := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		want[g] = struct{}{}
	}
	out := &Object{byKey: map[string]int{}, unknown: UnknownPassthrough}
	for _, f := range o.fields {
		if _, ok := want[f.Key]; !ok {
			continue
		}
		out.byKey[f.Key] = len(out.fields)
		out.fields = append(out.fields, f)
	}
	return out
}
