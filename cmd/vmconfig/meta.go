package main

import (
	"errors"
	"flag"
	"io"
	"log/slog"
	"strings"

	"github.com/mitchellh/cli"
	"github.com/spf13/afero"

	ts "github.com/reoring/treeskema"
	"github.com/reoring/treeskema/internal/logging"
	"github.com/reoring/treeskema/source"
)

// EnvLogLevel overrides the default log level.
const EnvLogLevel = "VMCONFIG_LOG_LEVEL"

// Meta holds what every command shares.
type Meta struct {
	Ui     cli.Ui
	FS     afero.Fs
	LogOut io.Writer
	Getenv func(string) string

	logLevel  string
	logFormat string
}

// flagSet returns a flag set carrying the logging flags.
func (m *Meta) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&m.logLevel, "log-level", "", "log level (DEBUG, INFO, WARN, ERROR)")
	fs.StringVar(&m.logFormat, "log-format", "text", "log format (text or json)")
	return fs
}

func (m *Meta) logger() *slog.Logger {
	if m.LogOut == nil {
		return logging.Discard()
	}
	level := m.logLevel
	if level == "" && m.Getenv != nil {
		level = m.Getenv(EnvLogLevel)
	}
	return logging.NewLogger(logging.Config{Level: level, Format: m.logFormat}, m.LogOut)
}

// splitGroups parses a comma-separated group list.
func splitGroups(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// failureMessage renders err the way users of the Ansible module expect:
// schema violations get an "Error: " prefix, loader errors are shown as is.
func failureMessage(err error) string {
	var pe *source.ParseError
	if errors.As(err, &pe) {
		return pe.Error()
	}
	if it, ok := ts.AsIssue(err); ok {
		return "Error: " + it.Error()
	}
	return err.Error()
}
