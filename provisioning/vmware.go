package provisioning

import (
	ts "github.com/reoring/treeskema"
	g "github.com/reoring/treeskema/dsl"
)

func vmwareSchema() *ts.Object {
	b := g.Object()
	for _, k := range []string{
		"host", "username", "password", "datacenter", "cluster",
		"resource_pool", "folder", "datastore", "vm_network",
	} {
		b.Field(k, str()).Required()
	}
	return b.
		Field("vm_templates", g.Array(str())).Required().
		Field("vm_parameters", vmParameters()).Required().
		MustBuild()
}

func vmParameters() *ts.Object {
	return g.Object().
		Field("masters", roleSizing(3, false)).Required().
		Field("nodes", roleSizing(3, false)).Required().
		Field("glusterfs", roleSizing(9, true)).Required().
		Field("glusterfs_registry", roleSizing(9, true)).Required().
		MustBuild()
}

// roleSizing describes the VMs of one role. Storage roles also carry data
// disks.
func roleSizing(maxNames int, storage bool) *ts.Object {
	b := g.Object().
		Field("num_cpus", g.IntRange(1, 16)).Default(1).
		Field("ram_mb", g.IntRange(4096, 65535)).Default(16384).
		Field("names", g.OrNull(g.Array(str()).AtMost(maxNames), ts.Seq(), MsgNullOrList)).Default([]any{}).
		Field("system_disks_gb", g.Array(g.Positive()).AtMost(4)).Default([]any{150}).
		Field("system_disks_type", str()).Default("thin")
	if storage {
		b.
			Field("storage_disks_gb", g.Array(g.Positive()).AtMost(7)).Default([]any{100, 600, 100}).
			Field("storage_disks_type", str()).Default("thin")
	}
	return b.MustBuild()
}
