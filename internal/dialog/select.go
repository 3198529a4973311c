package dialog

import (
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
)

// Driver names accepted by Open.
const (
	DriverAuto   = "auto"
	DriverPrompt = "prompt"
)

// DriverNames lists every accepted driver name.
var DriverNames = []string{DriverAuto, DriverPrompt, string(BackendZenity), string(BackendKDialog), string(BackendOSAScript)}

// Detect picks a native helper for goos using lookPath. ok is false when
// none is available.
func Detect(goos string, lookPath func(string) (string, error)) (Backend, bool) {
	if goos == "darwin" {
		return BackendOSAScript, true
	}
	for _, b := range []Backend{BackendZenity, BackendKDialog} {
		if _, err := lookPath(string(b)); err == nil {
			return b, true
		}
	}
	return "", false
}

// Open builds the driver named by name. The prompt driver (and auto, when no
// helper is installed) talks over in/out.
func Open(name string, in io.Reader, out io.Writer, logger *slog.Logger) (Driver, error) {
	switch name {
	case DriverAuto, "":
		if b, ok := Detect(runtime.GOOS, exec.LookPath); ok {
			logger.Info("dialog: using native helper", slog.String("helper", string(b)))
			return NewExec(b, logger), nil
		}
		logger.Warn("dialog: no native helper found, falling back to terminal prompt")
		return NewPrompt(in, out), nil
	case DriverPrompt:
		return NewPrompt(in, out), nil
	case string(BackendZenity), string(BackendKDialog), string(BackendOSAScript):
		return NewExec(Backend(name), logger), nil
	default:
		return nil, fmt.Errorf("dialog: unknown driver %q", name)
	}
}
