// Command vmconfig validates VM provisioning config files.
//
//	vmconfig validate -path config.yaml [-groups vmware,vm] [-format yaml|json]
//	vmconfig schema [-groups common]
//	vmconfig ansible ARGS_FILE
package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
)

const version = "0.1.0"

func main() {
	os.Exit(realMain(os.Args[1:]))
}

func realMain(args []string) int {
	meta := &Meta{
		Ui: &cli.BasicUi{
			Reader:      os.Stdin,
			Writer:      os.Stdout,
			ErrorWriter: os.Stderr,
		},
		FS:     afero.NewOsFs(),
		LogOut: os.Stderr,
		Getenv: os.Getenv,
	}

	c := cli.NewCLI("vmconfig", version)
	c.Args = args
	c.Commands = Commands(meta)

	code, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %s\n", err)
		return 1
	}
	return code
}

// Commands wires every subcommand to the shared Meta.
func Commands(meta *Meta) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"validate": func() (cli.Command, error) { return &ValidateCommand{Meta: meta}, nil },
		"schema":   func() (cli.Command, error) { return &SchemaCommand{Meta: meta}, nil },
		"ansible":  func() (cli.Command, error) { return &AnsibleCommand{Meta: meta}, nil },
	}
}
