package provisioning

import (
	ts "github.com/reoring/treeskema"
	g "github.com/reoring/treeskema/dsl"
)

func vmSchema() *ts.Object {
	setup := setupSchema()
	return g.Object().
		Field("repo", repoSchema()).Required().
		Field("yum", yumSchema()).Required().
		Field("uninstall_packages", packagesSchema()).Default(emptyLists(allRoles()...)).
		Field("install_packages", packagesSchema()).Default(emptyLists(allRoles()...)).
		Field("setup_and_configuration", setup).Default(setup.Defaults()).
		MustBuild()
}

func yumSchema() *ts.Object {
	return g.Object().
		Field("update", g.Bool()).Default(true).
		Field("reboot_after_update", g.Bool()).Default(true).
		Field("sleep_after_reboot_sec", g.Int()).Default(60).
		MustBuild()
}

// packagesSchema maps "all" and every role to a package name list.
func packagesSchema() ts.Node {
	b := g.Object()
	for _, k := range allRoles() {
		b.Field(k, listOrNull(str(), MsgNullOrStr)).Default([]any{})
	}
	return g.Or(b.MustBuild(), g.NullAs(emptyLists(allRoles()...), MsgNullOrDict))
}

func repoSchema() *ts.Object {
	return g.Object().
		Field("upstream", upstreamSchema()).Default(upstreamDefaults()).
		Field("downstream", downstreamSchema()).Default(downstreamDefaults()).
		MustBuild()
}

func upstreamDefaults() ts.Value {
	return ts.Map(
		ts.KV("skip", ts.Bool(true)),
		ts.KV("subscription_server", ts.String("not_set")),
		ts.KV("subscription_baseurl", ts.String("not_set")),
		ts.KV("subscription_user", ts.String("not_set")),
		ts.KV("subscription_pass", ts.String("not_set")),
		ts.KV("subscription_pool", ts.String("not_set")),
		ts.KV("repositories_to_enable", emptyLists(allRoles()...)),
	)
}

// upstreamSchema describes subscription-manager based repositories.
func upstreamSchema() *ts.Object {
	repos := g.Object()
	for _, k := range allRoles() {
		repos.Field(k, listOrNull(str(), MsgNullOrList)).Required()
	}
	b := g.Object().Field("skip", g.Bool()).Default(true)
	for _, k := range []string{
		"subscription_server", "subscription_baseurl", "subscription_user",
		"subscription_pass", "subscription_pool",
	} {
		b.Field(k, g.Nullable(str())).Default("not_set")
	}
	return b.
		Field("repositories_to_enable", g.Nullable(repos.MustBuild())).Default(emptyLists(allRoles()...)).
		MustBuild()
}

func downstreamDefaults() ts.Value {
	return ts.Map(
		ts.KV("skip", ts.Bool(true)),
		ts.KV("repositories_to_enable", emptyLists(allRoles()...)),
	)
}

// downstreamSchema describes plain yum repositories added per role.
func downstreamSchema() ts.Node {
	repo := g.Object().
		Field("name", str()).Required().
		Field("url", g.Contains("http")).Required().
		Field("cost", g.Positive()).Required().
		MustBuild()
	repos := g.Object()
	for _, k := range allRoles() {
		repos.Field(k, listOrNull(repo, MsgNullOrList)).Required()
	}
	reposDefault := emptyLists(allRoles()...)
	obj := g.Object().
		Field("skip", g.Bool()).Default(true).
		Field("repositories_to_enable", g.Or(repos.MustBuild(), g.NullAs(reposDefault, MsgNullOrDict))).Default(reposDefault).
		MustBuild()
	return g.Or(obj, g.NullAs(downstreamDefaults(), MsgNullOrDict))
}

func setupSchema() *ts.Object {
	mount := g.Object().
		Field("disk_path", g.HasPrefix("/dev/")).Required().
		Field("mount_point", g.HasPrefix("/")).Required().
		Field("name_prefix", str()).Required().
		Field("fstype", str()).Required().
		MustBuild()
	docker := g.Object().
		Field("skip", g.Bool()).Default(true).
		Field("disk_path", g.Nullable(str())).Default(nil).
		MustBuild()
	return g.Object().
		Field("setup_common_packages", g.Bool()).Default(true).
		Field("setup_ntp", g.Bool()).Default(true).
		Field("setup_vmware_tools", g.Bool()).Default(true).
		Field("mount_disks", listOrNull(mount, MsgNullOrList)).Default([]any{}).
		Field("setup_docker_storage", docker).Default(docker.Defaults()).
		Field("setup_standalone_glusterfs", g.Bool()).Default(false).
		Field("setup_standalone_glusterfs_registry", g.Bool()).Default(false).
		MustBuild()
}
