package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	j "github.com/goccy/go-json"
	"github.com/spf13/afero"

	ts "github.com/reoring/treeskema"
	"github.com/reoring/treeskema/source"
)

// AnsibleCommand runs as an Ansible binary module: it reads the module
// arguments from a JSON file and answers with a JSON result on stdout.
type AnsibleCommand struct {
	*Meta
}

type ansibleArgs struct {
	Path        string     `json:"path"`
	CheckGroups stringList `json:"check_groups"`
	CheckMode   bool       `json:"_ansible_check_mode"`
}

// stringList accepts a JSON list, a comma-separated string or null.
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := j.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = splitGroups(s)
		return nil
	}
	var list []string
	if err := j.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("check_groups: expected a list of strings: %w", err)
	}
	*l = list
	return nil
}

type ansibleResult struct {
	Changed bool     `json:"changed"`
	Config  ts.Value `json:"config"`
}

type ansibleCheckResult struct {
	Changed bool   `json:"changed"`
	Config  string `json:"config"`
}

type ansibleFailure struct {
	Failed bool   `json:"failed"`
	Msg    string `json:"msg"`
}

func (c *AnsibleCommand) Run(args []string) int {
	fs := c.flagSet("ansible")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		c.Ui.Error(c.Help())
		return 1
	}

	raw, err := afero.ReadFile(c.FS, fs.Arg(0))
	if err != nil {
		return c.fail(fmt.Sprintf("reading module arguments: %s", err))
	}
	var in ansibleArgs
	if err := j.Unmarshal(raw, &in); err != nil {
		return c.fail(fmt.Sprintf("parsing module arguments: %s", err))
	}
	if in.CheckMode {
		return c.reply(ansibleCheckResult{Config: ""}, 0)
	}
	if strings.TrimSpace(in.Path) == "" {
		return c.fail(source.ErrEmptyPath.Error())
	}

	cfg, err := c.check(context.Background(), in.Path, in.CheckGroups)
	if err != nil {
		return c.fail(failureMessage(err))
	}
	return c.reply(ansibleResult{Config: cfg}, 0)
}

func (c *AnsibleCommand) fail(msg string) int {
	return c.reply(ansibleFailure{Failed: true, Msg: msg}, 1)
}

func (c *AnsibleCommand) reply(v any, code int) int {
	b, err := j.Marshal(v)
	if err != nil {
		b, _ = j.Marshal(ansibleFailure{Failed: true, Msg: err.Error()})
		code = 1
	}
	c.Ui.Output(string(b))
	return code
}

func (c *AnsibleCommand) Synopsis() string {
	return "Run as an Ansible module"
}

func (c *AnsibleCommand) Help() string {
	return strings.TrimSpace(`
Usage: vmconfig ansible ARGS_FILE

  Ansible binary-module entry point. ARGS_FILE holds the module arguments as
  JSON:

    {"path": "/path/to/config.yaml", "check_groups": ["common", "vm"]}

  The result is printed as JSON: {"changed": false, "config": {...}} on
  success, {"failed": true, "msg": "..."} on failure.
`)
}
