package internal

import (
	"io"

	"github.com/starford/fusendo/internal/dialog"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	version string
	driver  dialog.Driver
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithVersion sets the version reported to MCP clients.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithDialogDriver replaces the configured dialog driver.
func WithDialogDriver(d dialog.Driver) Option {
	return func(a *application) {
		a.driver = d
	}
}

// WithIO overrides the process streams used for logs, the terminal prompt
// and the MCP transport.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(a *application) {
		a.stdin = stdin
		a.stdout = stdout
		a.stderr = stderr
	}
}
