package main

import (
	"context"
	"log/slog"
	"strings"

	ts "github.com/reoring/treeskema"
	"github.com/reoring/treeskema/provisioning"
	"github.com/reoring/treeskema/render"
	"github.com/reoring/treeskema/source"
)

// ValidateCommand loads a config file, validates it and prints the
// normalized result.
type ValidateCommand struct {
	*Meta
}

func (c *ValidateCommand) Run(args []string) int {
	var path, groups, format string
	fs := c.flagSet("validate")
	fs.StringVar(&path, "path", "", "path to the config file")
	fs.StringVar(&groups, "groups", "", "comma-separated top-level groups to check")
	fs.StringVar(&format, "format", "yaml", "output format (yaml or json)")
	if err := fs.Parse(args); err != nil {
		c.Ui.Error(err.Error())
		c.Ui.Error(c.Help())
		return 1
	}
	f, err := render.ParseFormat(format)
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}

	cfg, err := c.check(context.Background(), path, splitGroups(groups))
	if err != nil {
		c.Ui.Error(failureMessage(err))
		return 1
	}
	out, err := render.Encode(f, cfg)
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}
	c.Ui.Output(strings.TrimRight(string(out), "\n"))
	return 0
}

// check loads path and validates it against the provisioning schema.
func (m *Meta) check(ctx context.Context, path string, groups []string) (ts.Value, error) {
	log := m.logger()
	cfg, err := source.NewLoader(m.FS).Load(path)
	if err != nil {
		log.Error("load failed", slog.String("path", path), slog.Any("error", err))
		return ts.Value{}, err
	}
	known := provisioning.Groups()
	for _, g := range groups {
		if !contains(known, g) {
			log.Warn("unknown check group ignored", slog.String("group", g))
		}
	}
	d, err := provisioning.ValidateWithMeta(ctx, cfg, groups)
	if err != nil {
		log.Error("validation failed", slog.String("path", path), slog.Any("error", err))
		return ts.Value{}, err
	}
	log.Info("config validated",
		slog.String("path", path),
		slog.Any("groups", groups),
		slog.Int("defaults_applied", len(d.DefaultsApplied())),
	)
	log.Debug("defaults applied", slog.Any("pointers", d.DefaultsApplied()))
	return d.Value, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (c *ValidateCommand) Synopsis() string {
	return "Validate a config file and print it with defaults filled in"
}

func (c *ValidateCommand) Help() string {
	return strings.TrimSpace(`
Usage: vmconfig validate -path FILE [options]

  Reads FILE (YAML, or JSON when it ends in .json), validates it against the
  provisioning schema and prints the normalized config.

Options:

  -path=FILE         Config file to validate. Required.
  -groups=a,b        Only check these top-level groups; other keys pass
                     through untouched.
  -format=yaml       Output format: yaml or json.
  -log-level=LEVEL   DEBUG, INFO, WARN or ERROR. Defaults to $` + EnvLogLevel + `.
  -log-format=text   Log format: text or json.
`)
}
