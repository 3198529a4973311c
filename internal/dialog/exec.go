package dialog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
)

// Backend names a native dialog helper program.
type Backend string

// Supported helpers.
const (
	BackendZenity    Backend = "zenity"
	BackendKDialog   Backend = "kdialog"
	BackendOSAScript Backend = "osascript"
)

// RunResult is the captured outcome of a helper process. ExitCode is set for
// processes that ran to completion with a non-zero status.
type RunResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes a helper program. It returns an error only when the
// program could not be started or was killed.
type Runner func(ctx context.Context, name string, args ...string) (RunResult, error)

// ExecDriver opens dialogs by running zenity, kdialog or osascript.
type ExecDriver struct {
	backend Backend
	run     Runner
	logger  *slog.Logger
}

// NewExec creates a driver for the given helper.
func NewExec(backend Backend, logger *slog.Logger) *ExecDriver {
	return &ExecDriver{backend: backend, run: runCommand, logger: logger}
}

// WithRunner replaces the process runner. Used by tests.
func (d *ExecDriver) WithRunner(r Runner) *ExecDriver {
	d.run = r
	return d
}

// Backend returns the helper in use.
func (d *ExecDriver) Backend() Backend {
	return d.backend
}

// SaveFile implements Driver.
func (d *ExecDriver) SaveFile(ctx context.Context, opts SaveOptions, cb Callback) {
	name, args := d.saveCommand(opts)
	go d.exec(ctx, name, args, cb)
}

// PickFolder implements Driver.
func (d *ExecDriver) PickFolder(ctx context.Context, opts FolderOptions, cb Callback) {
	name, args := d.folderCommand(opts)
	go d.exec(ctx, name, args, cb)
}

func (d *ExecDriver) exec(ctx context.Context, name string, args []string, cb Callback) {
	d.logger.Debug("dialog: running helper", slog.String("helper", name))
	res, err := d.run(ctx, name, args...)
	if err != nil {
		cb(nil, fmt.Errorf("dialog: run %s: %w", name, err))
		return
	}
	cb(d.interpret(res))
}

// interpret maps a finished helper process to a dialog outcome.
func (d *ExecDriver) interpret(res RunResult) (*FilePath, error) {
	switch {
	case res.ExitCode == 0:
		out := strings.TrimSpace(res.Stdout)
		if out == "" {
			return nil, nil
		}
		if d.backend == BackendOSAScript && len(out) > 1 {
			// choose folder reports directories with a trailing slash.
			out = strings.TrimSuffix(out, "/")
		}
		return ParseSelection(out), nil
	case d.backend == BackendOSAScript:
		if strings.Contains(res.Stderr, "-128") {
			return nil, nil
		}
	case res.ExitCode == 1:
		return nil, nil
	}
	return nil, fmt.Errorf("dialog: %s exited with status %d: %s",
		d.backend, res.ExitCode, strings.TrimSpace(res.Stderr))
}

func (d *ExecDriver) saveCommand(opts SaveOptions) (string, []string) {
	start := opts.FileName
	if opts.Directory != "" {
		start = filepath.Join(opts.Directory, opts.FileName)
	}
	switch d.backend {
	case BackendKDialog:
		var filters []string
		for _, f := range opts.Filters {
			filters = append(filters, fmt.Sprintf("%s (%s)", f.Name, strings.Join(globs(f), " ")))
		}
		args := []string{"--title", opts.Title, "--getsavefilename", start}
		if len(filters) > 0 {
			args = append(args, strings.Join(filters, "\n"))
		}
		return "kdialog", args
	case BackendOSAScript:
		script := fmt.Sprintf("POSIX path of (choose file name with prompt %q default name %q", opts.Title, opts.FileName)
		if opts.Directory != "" {
			script += fmt.Sprintf(" default location POSIX file %q", opts.Directory)
		}
		return "osascript", []string{"-e", script + ")"}
	default:
		args := []string{"--file-selection", "--save", "--title=" + opts.Title}
		if start != "" {
			args = append(args, "--filename="+start)
		}
		for _, f := range opts.Filters {
			args = append(args, fmt.Sprintf("--file-filter=%s | %s", f.Name, strings.Join(globs(f), " ")))
		}
		return "zenity", args
	}
}

func (d *ExecDriver) folderCommand(opts FolderOptions) (string, []string) {
	switch d.backend {
	case BackendKDialog:
		dir := opts.Directory
		if dir == "" {
			dir = "."
		}
		return "kdialog", []string{"--title", opts.Title, "--getexistingdirectory", dir}
	case BackendOSAScript:
		script := fmt.Sprintf("POSIX path of (choose folder with prompt %q", opts.Title)
		if opts.Directory != "" {
			script += fmt.Sprintf(" default location POSIX file %q", opts.Directory)
		}
		return "osascript", []string{"-e", script + ")"}
	default:
		args := []string{"--file-selection", "--directory", "--title=" + opts.Title}
		if opts.Directory != "" {
			args = append(args, "--filename="+strings.TrimSuffix(opts.Directory, "/")+"/")
		}
		return "zenity", args
	}
}

func globs(f Filter) []string {
	out := make([]string, 0, len(f.Extensions))
	for _, ext := range f.Extensions {
		if ext == "*" {
			out = append(out, "*")
			continue
		}
		out = append(out, "*."+strings.TrimPrefix(ext, "."))
	}
	return out
}

func runCommand(ctx context.Context, name string, args ...string) (RunResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := RunResult{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, err
}
