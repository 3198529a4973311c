// Package testutil provides shared test helpers: temporary app-data
// directories, history databases and a scripted dialog driver.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/starford/fusendo/internal/dialog"
	"github.com/starford/fusendo/internal/history"
	"github.com/starford/fusendo/internal/sse"
	"github.com/starford/fusendo/internal/storage"
)

// TempHistory creates a temporary history database that is automatically
// cleaned up.
func TempHistory(t *testing.T) *history.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "fusendo-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := history.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TempAppData creates a temporary app-data directory with a storage.Provider.
func TempAppData(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// QuietLogger discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Response scripts one dialog answer.
type Response struct {
	Raw    string        // selection as the platform would report it
	Cancel bool          // dismiss without a selection
	Err    error         // fail the dialog
	Hang   bool          // never answer
	Hold   chan struct{} // answer only once closed
	Late   bool          // with Hold, answer even after the wait was abandoned
}

// ScriptedDriver is a dialog.Driver that answers from a script. Dialogs
// beyond the script are cancelled.
type ScriptedDriver struct {
	mu        sync.Mutex
	responses []Response
	saves     []dialog.SaveOptions
	folders   []dialog.FolderOptions
	open      int
	maxOpen   int
	answered  int
	opened    chan struct{}
}

// NewScriptedDriver returns a driver answering with responses in order.
func NewScriptedDriver(responses ...Response) *ScriptedDriver {
	return &ScriptedDriver{responses: responses, opened: make(chan struct{}, 64)}
}

// SaveFile implements dialog.Driver.
func (d *ScriptedDriver) SaveFile(ctx context.Context, opts dialog.SaveOptions, cb dialog.Callback) {
	d.mu.Lock()
	d.saves = append(d.saves, opts)
	d.mu.Unlock()
	d.run(ctx, cb)
}

// PickFolder implements dialog.Driver.
func (d *ScriptedDriver) PickFolder(ctx context.Context, opts dialog.FolderOptions, cb dialog.Callback) {
	d.mu.Lock()
	d.folders = append(d.folders, opts)
	d.mu.Unlock()
	d.run(ctx, cb)
}

func (d *ScriptedDriver) run(ctx context.Context, cb dialog.Callback) {
	d.mu.Lock()
	r := Response{Cancel: true}
	if len(d.responses) > 0 {
		r = d.responses[0]
		d.responses = d.responses[1:]
	}
	d.open++
	if d.open > d.maxOpen {
		d.maxOpen = d.open
	}
	d.mu.Unlock()
	d.opened <- struct{}{}

	go func() {
		if r.Hang {
			<-ctx.Done()
			d.leave()
			return
		}
		if r.Hold != nil {
			if r.Late {
				<-r.Hold
			} else {
				select {
				case <-r.Hold:
				case <-ctx.Done():
					d.leave()
					return
				}
			}
		}
		d.leave()
		switch {
		case r.Err != nil:
			cb(nil, r.Err)
		case r.Cancel:
			cb(nil, nil)
		default:
			cb(dialog.ParseSelection(r.Raw), nil)
		}
		d.mu.Lock()
		d.answered++
		d.mu.Unlock()
	}()
}

func (d *ScriptedDriver) leave() {
	d.mu.Lock()
	d.open--
	d.mu.Unlock()
}

// WaitOpened blocks until the next dialog opens, failing t after timeout.
func (d *ScriptedDriver) WaitOpened(t *testing.T, timeout time.Duration) {
	t.Helper()
	select {
	case <-d.opened:
	case <-time.After(timeout):
		t.Fatal("timed out waiting for a dialog to open")
	}
}

// Saves returns the options of every save dialog opened so far.
func (d *ScriptedDriver) Saves() []dialog.SaveOptions {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]dialog.SaveOptions(nil), d.saves...)
}

// Folders returns the options of every folder dialog opened so far.
func (d *ScriptedDriver) Folders() []dialog.FolderOptions {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]dialog.FolderOptions(nil), d.folders...)
}

// Answered returns how many dialogs have invoked their callback.
func (d *ScriptedDriver) Answered() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.answered
}

// MaxConcurrent returns the largest number of dialogs open at once.
func (d *ScriptedDriver) MaxConcurrent() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.maxOpen
}

// EventRecorder collects published events.
type EventRecorder struct {
	mu     sync.Mutex
	events []sse.Event
}

// Publish records event.
func (r *EventRecorder) Publish(event sse.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events.
func (r *EventRecorder) Events() []sse.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sse.Event(nil), r.events...)
}

// Types returns the recorded event types in order.
func (r *EventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
