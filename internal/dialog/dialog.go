// Package dialog bridges callback-style native file dialogs into
// request/response calls.
//
// A Driver opens a dialog and reports the outcome through a callback exactly
// once. Await turns that callback into a bounded wait, and Gate serializes
// dialog-opening requests so two commands never race for the screen.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ErrUnresolvable is returned when a selected URL cannot be mapped to a local path.
var ErrUnresolvable = errors.New("dialog: url is not a local file path")

// FilePath is a dialog selection: exactly one of URL or Path is set.
type FilePath struct {
	URL  *url.URL
	Path string
}

// ParseSelection interprets raw dialog output. Values that carry a scheme
// ("file:///tmp/a.md") become URLs; anything else is a local path.
func ParseSelection(raw string) *FilePath {
	raw = strings.TrimRight(raw, "\r\n")
	if strings.Contains(raw, "://") {
		if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
			return &FilePath{URL: u}
		}
	}
	return &FilePath{Path: raw}
}

// Local resolves the selection to a local filesystem path.
func (p *FilePath) Local() (string, error) {
	if p.URL == nil {
		return p.Path, nil
	}
	u := p.URL
	if u.Scheme != "file" {
		return "", fmt.Errorf("%w: scheme %q", ErrUnresolvable, u.Scheme)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("%w: remote host %q", ErrUnresolvable, u.Host)
	}
	if u.Path == "" || !strings.HasPrefix(u.Path, "/") {
		return "", fmt.Errorf("%w: %q", ErrUnresolvable, u.String())
	}
	return filepath.FromSlash(u.Path), nil
}

func (p *FilePath) String() string {
	if p.URL != nil {
		return p.URL.String()
	}
	return p.Path
}

// Filter restricts the file types offered by a save dialog.
type Filter struct {
	Name       string
	Extensions []string
}

// SaveOptions configures a save-file dialog.
type SaveOptions struct {
	Title     string
	FileName  string
	Directory string
	Filters   []Filter
}

// FolderOptions configures a folder-selection dialog.
type FolderOptions struct {
	Title     string
	Directory string
}

// Callback receives the dialog outcome. A nil path with a nil error means
// the user dismissed the dialog.
type Callback func(path *FilePath, err error)

// Driver opens native dialogs. Implementations must invoke the callback at
// most once and must not block the caller until the user responds.
// Cancelling ctx should close the dialog if the platform allows it.
type Driver interface {
	SaveFile(ctx context.Context, opts SaveOptions, cb Callback)
	PickFolder(ctx context.Context, opts FolderOptions, cb Callback)
}
