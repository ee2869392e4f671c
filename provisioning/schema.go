// Package provisioning holds the schema of the VM provisioning config read by
// the OpenShift deployment tooling.
//
// The config has four top-level groups:
//
//	vmware      vCenter connection and per-role VM sizing (required)
//	vm          repositories, packages and host setup (required)
//	ocp_update  heketi client options (optional)
//	common      output file locations (optional)
package provisioning

import (
	"context"
	"sync"

	ts "github.com/reoring/treeskema"
	g "github.com/reoring/treeskema/dsl"
)

// Diagnostics reported when a list or mapping slot holds some other kind.
const (
	MsgNullOrList = "Only 'None' or 'list' objects are allowed"
	MsgNullOrStr  = "Only 'None' or 'str' objects are allowed"
	MsgNullOrDict = "Only 'None' or 'dict' objects are allowed"
	MsgDictOrNull = "Only 'dict' and 'None' values are allowed"
)

// Roles are the VM roles sized under vmware.vm_parameters and keyed in the
// package and repository lists.
var Roles = []string{"masters", "nodes", "glusterfs", "glusterfs_registry"}

var schema = sync.OnceValue(build)

// Schema returns the full config schema. It is built once and shared; nodes
// are immutable so concurrent use is safe.
func Schema() *ts.Object { return schema() }

// Groups lists the top-level keys accepted as check groups.
func Groups() []string {
	fields := Schema().Fields()
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Key
	}
	return out
}

// Validate checks cfg against the schema narrowed to groups. With no groups
// the whole config is checked and unknown top-level keys are rejected.
func Validate(ctx context.Context, cfg ts.Value, groups []string) (ts.Value, error) {
	return ts.Validate(ctx, ts.Narrow(Schema(), groups), cfg)
}

// ValidateWithMeta is Validate plus presence metadata.
func ValidateWithMeta(ctx context.Context, cfg ts.Value, groups []string) (ts.Decoded, error) {
	return ts.ValidateWithMeta(ctx, ts.Narrow(Schema(), groups), cfg)
}

func build() *ts.Object {
	ocp := ocpUpdateSchema()
	common := commonSchema()
	return g.Object().
		Field("vmware", vmwareSchema()).Required().
		Field("vm", vmSchema()).Required().
		Field("ocp_update", ocp).Default(ocp.Defaults()).
		Field("common", g.Or(common, g.NullAs(common.Defaults(), MsgDictOrNull))).Default(common.Defaults()).
		MustBuild()
}

func ocpUpdateSchema() *ts.Object {
	heketi := g.Object().
		Field("install_client_on_masters", g.Bool()).Default(true).
		Field("client_package_url", g.Nullable(str())).Default(nil).
		Field("add_public_ip_address", g.Bool()).Default(true).
		MustBuild()
	return g.Object().
		Field("heketi", heketi).Default(heketi.Defaults()).
		MustBuild()
}

func commonSchema() *ts.Object {
	return g.Object().
		Field("output_tests_config_file", str()).Default("../tests_config.yaml").
		Field("output_cluster_info_file", str()).Default("../cluster_info.yaml").
		MustBuild()
}

func str() ts.Node { return g.NonEmptyString() }

// listOrNull accepts a list of elem, turning null into [] and anything else
// into msg.
func listOrNull(elem ts.Node, msg string) ts.Node {
	return g.OrNull(g.Array(elem), ts.Seq(), msg)
}

// emptyLists maps each key to [].
func emptyLists(keys ...string) ts.Value {
	entries := make([]ts.Entry, len(keys))
	for i, k := range keys {
		entries[i] = ts.KV(k, ts.Seq())
	}
	return ts.Map(entries...)
}

func allRoles() []string { return append([]string{"all"}, Roles...) }
