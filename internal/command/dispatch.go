package command

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/fusendo/internal/apperr"
	"github.com/starford/fusendo/internal/history"
	"github.com/starford/fusendo/internal/i18n"
)

// handler decodes raw JSON arguments and runs one command.
type handler func(ctx context.Context, raw json.RawMessage) (any, error)

// GreetArgs are the arguments of greet.
type GreetArgs struct {
	Name string `json:"name"`
}

// Validate accepts any name, including the empty string.
func (a *GreetArgs) Validate() error { return nil }

// SaveMarkdownArgs are the arguments of save_markdown_file.
type SaveMarkdownArgs struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
}

// Validate accepts any content; an empty filename is replaced by a suggestion.
func (a *SaveMarkdownArgs) Validate() error { return nil }

// WriteFileArgs are the arguments of write_file_to_path.
type WriteFileArgs struct {
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
}

// Validate checks the arguments.
func (a *WriteFileArgs) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.FilePath, validation.Required),
	)
}

// CancelDialogArgs are the arguments of cancel_dialog.
type CancelDialogArgs struct {
	ID string `json:"id"`
}

// Validate checks the arguments.
func (a *CancelDialogArgs) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.ID, validation.Required, is.UUID),
	)
}

// AppFileArgs address one app-data file.
type AppFileArgs struct {
	Path string `json:"path"`
}

// Validate checks the arguments.
func (a *AppFileArgs) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Path, validation.Required),
	)
}

// WriteAppFileArgs are the arguments of write_text_file and backup_text_file.
type WriteAppFileArgs struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Validate checks the arguments.
func (a *WriteAppFileArgs) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Path, validation.Required),
	)
}

// ListArgs are the arguments of list_text_files.
type ListArgs struct {
	Dir string `json:"dir"`
}

// Validate accepts any directory; the store rejects escapes.
func (a *ListArgs) Validate() error { return nil }

// RecentArgs are the arguments of recent_locations.
type RecentArgs struct {
	Limit int `json:"limit"`
}

// Validate checks the arguments.
func (a *RecentArgs) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Limit, validation.Min(0), validation.Max(history.MaxLimit)),
	)
}

// decode unmarshals raw into a fresh T and validates it. An empty or null
// payload decodes to the zero value.
func decode[T any, P interface {
	*T
	validation.Validatable
}](loc i18n.Localizer, raw json.RawMessage) (*T, error) {
	args := P(new(T))
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, args); err != nil {
			return nil, apperr.Wrap(apperr.KindInvalidArgument, loc.T(i18n.ArgumentInvalid, err.Error()), err)
		}
	}
	if err := args.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidArgument, loc.T(i18n.ArgumentInvalid, err.Error()), err)
	}
	return (*T)(args), nil
}

func (s *Service) buildHandlers() map[string]handler {
	return map[string]handler{
		Greet: func(ctx context.Context, raw json.RawMessage) (any, error) {
			args, err := decode[GreetArgs](s.localizer(ctx), raw)
			if err != nil {
				return nil, err
			}
			return s.Greet(args.Name), nil
		},
		SaveMarkdownFile: func(ctx context.Context, raw json.RawMessage) (any, error) {
			args, err := decode[SaveMarkdownArgs](s.localizer(ctx), raw)
			if err != nil {
				return nil, err
			}
			return s.SaveMarkdownFile(ctx, args.Content, args.Filename)
		},
		SelectDirectory: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return s.SelectDirectory(ctx)
		},
		WriteFileToPath: func(ctx context.Context, raw json.RawMessage) (any, error) {
			args, err := decode[WriteFileArgs](s.localizer(ctx), raw)
			if err != nil {
				return nil, err
			}
			return s.WriteFileToPath(ctx, args.FilePath, args.Content)
		},
		CancelDialog: func(ctx context.Context, raw json.RawMessage) (any, error) {
			args, err := decode[CancelDialogArgs](s.localizer(ctx), raw)
			if err != nil {
				return nil, err
			}
			return s.CancelDialog(args.ID), nil
		},
		PendingDialogs: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return s.Pending(), nil
		},
		ReadTextFile: func(ctx context.Context, raw json.RawMessage) (any, error) {
			args, err := decode[AppFileArgs](s.localizer(ctx), raw)
			if err != nil {
				return nil, err
			}
			return s.ReadTextFile(ctx, args.Path)
		},
		WriteTextFile: func(ctx context.Context, raw json.RawMessage) (any, error) {
			args, err := decode[WriteAppFileArgs](s.localizer(ctx), raw)
			if err != nil {
				return nil, err
			}
			return s.WriteTextFile(ctx, args.Path, args.Content)
		},
		Exists: func(ctx context.Context, raw json.RawMessage) (any, error) {
			args, err := decode[AppFileArgs](s.localizer(ctx), raw)
			if err != nil {
				return nil, err
			}
			return s.Exists(ctx, args.Path)
		},
		ListTextFiles: func(ctx context.Context, raw json.RawMessage) (any, error) {
			args, err := decode[ListArgs](s.localizer(ctx), raw)
			if err != nil {
				return nil, err
			}
			return s.ListTextFiles(ctx, args.Dir)
		},
		BackupTextFile: func(ctx context.Context, raw json.RawMessage) (any, error) {
			args, err := decode[WriteAppFileArgs](s.localizer(ctx), raw)
			if err != nil {
				return nil, err
			}
			return s.BackupTextFile(ctx, args.Path, args.Content)
		},
		RecentLocations: func(ctx context.Context, raw json.RawMessage) (any, error) {
			args, err := decode[RecentArgs](s.localizer(ctx), raw)
			if err != nil {
				return nil, err
			}
			return s.RecentLocations(ctx, args.Limit)
		},
	}
}

// Invoke runs the named command with JSON arguments. Failures are
// *apperr.Error values.
func (s *Service) Invoke(ctx context.Context, name string, raw json.RawMessage) (any, error) {
	h, ok := s.handlers[name]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, s.localizer(ctx).T(i18n.UnknownCommand, name))
	}
	return h(ctx, raw)
}

// Names returns the registered command names in sorted order.
func (s *Service) Names() []string {
	names := make([]string, 0, len(s.handlers))
	for name := range s.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
