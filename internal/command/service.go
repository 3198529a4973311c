// Package command implements the commands invoked by the front end.
package command

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/starford/fusendo/internal/apperr"
	"github.com/starford/fusendo/internal/dialog"
	"github.com/starford/fusendo/internal/history"
	"github.com/starford/fusendo/internal/i18n"
	"github.com/starford/fusendo/internal/models"
	"github.com/starford/fusendo/internal/sse"
	"github.com/starford/fusendo/internal/storage"
)

// Command names.
const (
	Greet            = "greet"
	SaveMarkdownFile = "save_markdown_file"
	SelectDirectory  = "select_directory"
	WriteFileToPath  = "write_file_to_path"
	CancelDialog     = "cancel_dialog"
	PendingDialogs   = "pending_dialogs"
	ReadTextFile     = "read_text_file"
	WriteTextFile    = "write_text_file"
	Exists           = "exists"
	ListTextFiles    = "list_text_files"
	BackupTextFile   = "backup_text_file"
	RecentLocations  = "recent_locations"
)

// DefaultDialogTimeout bounds every dialog wait unless overridden.
const DefaultDialogTimeout = 5 * time.Minute

// Publisher receives events for the front end.
type Publisher interface {
	Publish(event sse.Event)
}

// Option configures a Service.
type Option func(*Service)

// WithHistory enables location history.
func WithHistory(h history.Store) Option {
	return func(s *Service) { s.history = h }
}

// WithPublisher sends dialog and save events to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithLocale sets the default message locale.
func WithLocale(tag language.Tag) Option {
	return func(s *Service) { s.loc = i18n.New(tag) }
}

// WithDialogTimeout bounds dialog waits. Zero or negative disables the bound.
func WithDialogTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithSerializedDialogs controls whether dialog commands queue behind each
// other (the default) or may open dialogs concurrently.
func WithSerializedDialogs(on bool) Option {
	return func(s *Service) {
		if on {
			s.gate = dialog.NewGate()
		} else {
			s.gate = nil
		}
	}
}

// WithClock overrides the time source used for backup names.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service executes commands. It is safe for concurrent use.
type Service struct {
	driver  dialog.Driver
	store   storage.Provider
	history history.Store
	events  Publisher
	logger  *slog.Logger
	loc     i18n.Localizer
	timeout time.Duration
	gate    *dialog.Gate
	now     func() time.Time

	mu      sync.Mutex
	pending map[string]pendingDialog

	handlers map[string]handler
}

// NewService creates a command service over a dialog driver and the
// app-data store.
func NewService(driver dialog.Driver, store storage.Provider, opts ...Option) *Service {
	s := &Service{
		driver:  driver,
		store:   store,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		loc:     i18n.New(i18n.Supported[0]),
		timeout: DefaultDialogTimeout,
		gate:    dialog.NewGate(),
		now:     time.Now,
		pending: make(map[string]pendingDialog),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handlers = s.buildHandlers()
	return s
}

func (s *Service) localizer(ctx context.Context) i18n.Localizer {
	return i18n.FromContext(ctx, s.loc)
}

func (s *Service) publish(typ string, data any) {
	if s.events != nil {
		s.events.Publish(sse.Event{Type: typ, Data: data})
	}
}

type pendingDialog struct {
	info   models.PendingDialog
	cancel context.CancelCauseFunc
}

// Pending returns the dialogs currently waiting for the user, oldest first.
func (s *Service) Pending() []models.PendingDialog {
	s.mu.Lock()
	out := make([]models.PendingDialog, 0, len(s.pending))
	for _, p := range s.pending {
		out = append(out, p.info)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.Before(out[j].OpenedAt) })
	return out
}

// CancelDialog dismisses a pending dialog. The waiting command fails with
// UserCancelled. It reports whether id was pending.
func (s *Service) CancelDialog(id string) bool {
	s.mu.Lock()
	p, ok := s.pending[id]
	s.mu.Unlock()
	if ok {
		p.cancel(apperr.ErrUserCancelled)
	}
	return ok
}

// Dialog outcomes reported in dialog.closed events.
const (
	outcomeAccepted  = "accepted"
	outcomeCancelled = "cancelled"
	outcomeTimeout   = "timeout"
	outcomeFailed    = "failed"
)

// openDialog runs one dialog through the gate, bounded by the dialog timeout
// and cancellable through CancelDialog.
func (s *Service) openDialog(ctx context.Context, command string, open func(context.Context, dialog.Callback)) (*dialog.FilePath, error) {
	release, err := s.gate.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	waitCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	if s.timeout > 0 {
		var stop context.CancelFunc
		waitCtx, stop = context.WithTimeoutCause(waitCtx, s.timeout, apperr.ErrTimeout)
		defer stop()
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.pending[id] = pendingDialog{
		info:   models.PendingDialog{ID: id, Command: command, OpenedAt: s.now().UTC()},
		cancel: cancel,
	}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}()

	s.logger.Debug("dialog opened", slog.String("id", id), slog.String("command", command))
	s.publish(sse.TypeDialogOpened, map[string]string{"id": id, "command": command})

	path, err := dialog.Await(waitCtx, func(cb dialog.Callback) { open(waitCtx, cb) })

	outcome := outcomeAccepted
	switch {
	case errors.Is(err, apperr.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		outcome = outcomeTimeout
	case errors.Is(err, apperr.ErrUserCancelled), errors.Is(err, context.Canceled), err == nil && path == nil:
		outcome = outcomeCancelled
	case err != nil:
		outcome = outcomeFailed
	}
	s.logger.Debug("dialog closed", slog.String("id", id), slog.String("outcome", outcome))
	s.publish(sse.TypeDialogClosed, map[string]string{"id": id, "command": command, "outcome": outcome})

	return path, err
}

// dialogError converts a failed dialog wait into a tagged error.
func dialogError(loc i18n.Localizer, err error, cancelled i18n.Key) error {
	switch {
	case errors.Is(err, apperr.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return apperr.Wrap(apperr.KindTimeout, loc.T(i18n.DialogTimeout), err)
	case errors.Is(err, apperr.ErrUserCancelled):
		return apperr.Wrap(apperr.KindUserCancelled, loc.T(cancelled), err)
	case errors.Is(err, context.Canceled):
		return apperr.Wrap(apperr.KindUserCancelled, loc.T(i18n.DialogCancelled), err)
	default:
		return apperr.Wrap(apperr.KindIOFailure, loc.T(i18n.ReceivePathFailed, err.Error()), err)
	}
}

func (s *Service) lastDir(ctx context.Context, command string) string {
	if s.history == nil {
		return ""
	}
	dir, err := s.history.LastDir(ctx, command)
	if err != nil {
		s.logger.Warn("history lookup failed", slog.String("command", command), slog.String("error", err.Error()))
		return ""
	}
	return dir
}

func (s *Service) record(ctx context.Context, command, path string, isDir bool) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(ctx, command, path, isDir); err != nil {
		s.logger.Warn("history record failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}
