package main

import (
	"strings"

	j "github.com/goccy/go-json"

	ts "github.com/reoring/treeskema"
	"github.com/reoring/treeskema/provisioning"
)

// SchemaCommand prints the provisioning schema as JSON Schema.
type SchemaCommand struct {
	*Meta
}

func (c *SchemaCommand) Run(args []string) int {
	var groups string
	fs := c.flagSet("schema")
	fs.StringVar(&groups, "groups", "", "comma-separated top-level groups to include")
	if err := fs.Parse(args); err != nil {
		c.Ui.Error(err.Error())
		c.Ui.Error(c.Help())
		return 1
	}

	s, err := ts.JSONSchema(ts.Narrow(provisioning.Schema(), splitGroups(groups)))
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}
	b, err := j.MarshalIndent(s, "", "  ")
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}
	c.Ui.Output(string(b))
	return 0
}

func (c *SchemaCommand) Synopsis() string {
	return "Print the config schema as JSON Schema"
}

func (c *SchemaCommand) Help() string {
	return strings.TrimSpace(`
Usage: vmconfig schema [options]

Options:

  -groups=a,b   Only include these top-level groups.
`)
}
