package command

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/starford/fusendo/internal/apperr"
	"github.com/starford/fusendo/internal/dialog"
	"github.com/starford/fusendo/internal/i18n"
	"github.com/starford/fusendo/internal/markdown"
	"github.com/starford/fusendo/internal/models"
	"github.com/starford/fusendo/internal/sse"
	"github.com/starford/fusendo/internal/storage"
)

// Greet formats a greeting. It has no side effects.
func (s *Service) Greet(name string) string {
	return fmt.Sprintf("Hello, %s! You've been greeted from Go!", name)
}

// SaveMarkdownFile asks the user where to save content and writes it there.
// It returns the saved path.
func (s *Service) SaveMarkdownFile(ctx context.Context, content, filename string) (string, error) {
	loc := s.localizer(ctx)
	opts := dialog.SaveOptions{
		Title:     loc.T(i18n.SaveTitle),
		FileName:  markdown.SuggestFileName(filename, []byte(content)),
		Directory: s.lastDir(ctx, SaveMarkdownFile),
		Filters: []dialog.Filter{
			{Name: loc.T(i18n.FilterMarkdown), Extensions: []string{"md"}},
			{Name: loc.T(i18n.FilterAll), Extensions: []string{"*"}},
		},
	}

	selected, err := s.openDialog(ctx, SaveMarkdownFile, func(ctx context.Context, cb dialog.Callback) {
		s.driver.SaveFile(ctx, opts, cb)
	})
	if err != nil {
		return "", dialogError(loc, err, i18n.SaveCancelled)
	}
	if selected == nil {
		return "", apperr.New(apperr.KindUserCancelled, loc.T(i18n.SaveCancelled))
	}

	path, err := selected.Local()
	if err != nil {
		return "", apperr.Wrap(apperr.KindInvalidPath, loc.T(i18n.SaveInvalidPath), err)
	}
	if err := storage.WriteFile(path, []byte(content)); err != nil {
		return "", apperr.Wrap(apperr.KindIOFailure, loc.T(i18n.SaveFailed, osErrorText(err)), err)
	}

	s.record(ctx, SaveMarkdownFile, path, false)
	s.publish(sse.TypeFileSaved, map[string]string{"path": path, "command": SaveMarkdownFile})
	s.logger.Info("markdown saved", slog.String("path", path), slog.Int("bytes", len(content)))
	return path, nil
}

// SelectDirectory asks the user for a folder and returns its path.
func (s *Service) SelectDirectory(ctx context.Context) (string, error) {
	loc := s.localizer(ctx)
	opts := dialog.FolderOptions{
		Title:     loc.T(i18n.FolderTitle),
		Directory: s.lastDir(ctx, SelectDirectory),
	}

	selected, err := s.openDialog(ctx, SelectDirectory, func(ctx context.Context, cb dialog.Callback) {
		s.driver.PickFolder(ctx, opts, cb)
	})
	if err != nil {
		return "", dialogError(loc, err, i18n.FolderCancelled)
	}
	if selected == nil {
		return "", apperr.New(apperr.KindUserCancelled, loc.T(i18n.FolderCancelled))
	}

	path, err := selected.Local()
	if err != nil {
		return "", apperr.Wrap(apperr.KindInvalidPath, loc.T(i18n.FolderInvalidPath), err)
	}

	s.record(ctx, SelectDirectory, path, true)
	return path, nil
}

// WriteFileToPath writes content to filePath without any dialog, replacing
// an existing file. Parent directories are not created.
func (s *Service) WriteFileToPath(ctx context.Context, filePath, content string) (string, error) {
	loc := s.localizer(ctx)
	if err := storage.WriteFile(filePath, []byte(content)); err != nil {
		return "", apperr.Wrap(apperr.KindIOFailure, loc.T(i18n.SaveFailed, osErrorText(err)), err)
	}
	s.publish(sse.TypeFileSaved, map[string]string{"path": filePath, "command": WriteFileToPath})
	s.logger.Info("file written", slog.String("path", filePath), slog.Int("bytes", len(content)))
	return loc.T(i18n.FileSaved, filePath), nil
}

// ReadTextFile returns an app-data file as text.
func (s *Service) ReadTextFile(ctx context.Context, path string) (string, error) {
	data, err := s.store.Read(path)
	if err != nil {
		return "", appDataError(s.localizer(ctx), path, err, i18n.AppFileReadFailed)
	}
	return string(data), nil
}

// WriteTextFile writes an app-data file, creating parent directories.
func (s *Service) WriteTextFile(ctx context.Context, path, content string) (*models.FileMeta, error) {
	meta, err := s.store.Write(path, []byte(content))
	if err != nil {
		return nil, appDataError(s.localizer(ctx), path, err, i18n.SaveFailed)
	}
	return meta, nil
}

// Exists reports whether an app-data file exists.
func (s *Service) Exists(ctx context.Context, path string) (bool, error) {
	ok, err := s.store.Exists(path)
	if err != nil {
		return false, appDataError(s.localizer(ctx), path, err, i18n.AppFileReadFailed)
	}
	return ok, nil
}

// ListTextFiles lists app-data files under dir ("" for all).
func (s *Service) ListTextFiles(ctx context.Context, dir string) ([]models.FileMeta, error) {
	items, err := s.store.List(dir)
	if err != nil {
		return nil, appDataError(s.localizer(ctx), dir, err, i18n.AppFileListFailed)
	}
	return items, nil
}

// BackupTextFile writes content to a timestamped sibling of path and
// returns the backup's name.
func (s *Service) BackupTextFile(ctx context.Context, path, content string) (string, error) {
	name := storage.BackupName(path, s.now())
	if _, err := s.store.Write(name, []byte(content)); err != nil {
		return "", appDataError(s.localizer(ctx), name, err, i18n.SaveFailed)
	}
	s.logger.Info("backup created", slog.String("path", name))
	return name, nil
}

// RecentLocations returns recently saved or picked locations, newest first.
func (s *Service) RecentLocations(ctx context.Context, limit int) ([]models.Location, error) {
	if s.history == nil {
		return []models.Location{}, nil
	}
	items, err := s.history.Recent(ctx, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindIOFailure, s.localizer(ctx).T(i18n.HistoryFailed, err.Error()), err)
	}
	return items, nil
}

// appDataError classifies an app-data storage failure.
func appDataError(loc i18n.Localizer, path string, err error, failed i18n.Key) error {
	switch {
	case errors.Is(err, storage.ErrOutsideRoot):
		return apperr.Wrap(apperr.KindInvalidPath, loc.T(i18n.AppFileInvalidPath, path), err)
	case errors.Is(err, fs.ErrNotExist):
		return apperr.Wrap(apperr.KindNotFound, loc.T(i18n.AppFileNotFound, path), err)
	default:
		return apperr.Wrap(apperr.KindIOFailure, loc.T(failed, osErrorText(err)), err)
	}
}

// osErrorText returns the OS-level message of err, without our own wrapping.
func osErrorText(err error) string {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return pe.Error()
	}
	return err.Error()
}
