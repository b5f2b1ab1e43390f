// Package logger builds the hclog logger shared by the server and the
// activity consumer.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// New returns a named logger writing to stderr.  level is an hclog level
// name ("trace", "debug", "info", "warn", "error"); unknown names fall back
// to info.  format "json" switches to JSON lines.
func New(name, level, format string) hclog.Logger {
	return NewWithOutput(name, level, format, os.Stderr)
}

// NewWithOutput is New with an explicit destination.
func NewWithOutput(name, level, format string, out io.Writer) hclog.Logger {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      lvl,
		Output:     out,
		JSONFormat: strings.EqualFold(format, "json"),
	})
}
