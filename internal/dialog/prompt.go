package dialog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
)

// PromptDriver is the terminal fallback used when no native helper exists.
// It prints the dialog title and reads one line: a path (or file:// URL)
// accepts, an empty line cancels. A prompt abandoned by its context leaves
// the next line for the next prompt.
type PromptDriver struct {
	mu    sync.Mutex
	in    *bufio.Reader
	out   io.Writer
	once  sync.Once
	lines chan promptLine
}

type promptLine struct {
	text string
	err  error
}

// NewPrompt creates a prompt driver reading from in and writing to out.
func NewPrompt(in io.Reader, out io.Writer) *PromptDriver {
	return &PromptDriver{in: bufio.NewReader(in), out: out, lines: make(chan promptLine)}
}

// SaveFile implements Driver.
func (d *PromptDriver) SaveFile(ctx context.Context, opts SaveOptions, cb Callback) {
	hint := opts.FileName
	if opts.Directory != "" {
		hint = filepath.Join(opts.Directory, opts.FileName)
	}
	go d.ask(ctx, opts.Title, "Save as", hint, cb)
}

// PickFolder implements Driver.
func (d *PromptDriver) PickFolder(ctx context.Context, opts FolderOptions, cb Callback) {
	go d.ask(ctx, opts.Title, "Folder", opts.Directory, cb)
}

// read feeds lines to waiting prompts until the input ends.
func (d *PromptDriver) read() {
	defer close(d.lines)
	for {
		line, err := d.in.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				if strings.TrimSpace(line) != "" {
					d.lines <- promptLine{text: line}
				}
				return
			}
			d.lines <- promptLine{err: err}
			return
		}
		d.lines <- promptLine{text: line}
	}
}

func (d *PromptDriver) ask(ctx context.Context, title, label, hint string, cb Callback) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.once.Do(func() { go d.read() })

	if ctx.Err() != nil {
		return
	}
	if hint != "" {
		fmt.Fprintf(d.out, "%s\n%s (suggested: %s, empty to cancel): ", title, label, hint)
	} else {
		fmt.Fprintf(d.out, "%s\n%s (empty to cancel): ", title, label)
	}

	select {
	case <-ctx.Done():
		fmt.Fprintln(d.out, "\n(dialog closed)")
	case l, ok := <-d.lines:
		switch {
		case !ok:
			cb(nil, nil)
		case l.err != nil:
			cb(nil, fmt.Errorf("dialog: read prompt: %w", l.err))
		case strings.TrimSpace(l.text) == "":
			cb(nil, nil)
		default:
			cb(ParseSelection(strings.TrimSpace(l.text)), nil)
		}
	}
}
