// Package i18n holds the user-facing message catalog and locale selection.
package i18n

import (
	"context"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a catalog message.
type Key string

// Message keys.
const (
	SaveTitle          Key = "save.title"
	SaveCancelled      Key = "save.cancelled"
	SaveInvalidPath    Key = "save.invalid_path"
	SaveFailed         Key = "save.failed"
	FolderTitle        Key = "folder.title"
	FolderCancelled    Key = "folder.cancelled"
	FolderInvalidPath  Key = "folder.invalid_path"
	ReceivePathFailed  Key = "dialog.receive_failed"
	DialogTimeout      Key = "dialog.timeout"
	DialogCancelled    Key = "dialog.cancelled"
	FileSaved          Key = "file.saved"
	FilterMarkdown     Key = "filter.markdown"
	FilterAll          Key = "filter.all"
	ArgumentInvalid    Key = "argument.invalid"
	UnknownCommand     Key = "command.unknown"
	AppFileNotFound    Key = "appdata.not_found"
	AppFileInvalidPath Key = "appdata.invalid_path"
	AppFileReadFailed  Key = "appdata.read_failed"
	AppFileListFailed  Key = "appdata.list_failed"
	HistoryFailed      Key = "history.failed"
)

var messages = map[language.Tag]map[Key]string{
	language.Japanese: {
		SaveTitle:          "付箋レポートを保存",
		SaveCancelled:      "保存がキャンセルされました",
		SaveInvalidPath:    "無効なファイルパスです",
		SaveFailed:         "ファイルの保存に失敗しました: %s",
		FolderTitle:        "保存先フォルダを選択",
		FolderCancelled:    "フォルダ選択がキャンセルされました",
		FolderInvalidPath:  "無効なディレクトリパスです",
		ReceivePathFailed:  "ファイルパスの受信に失敗しました: %s",
		DialogTimeout:      "ダイアログの応答がタイムアウトしました",
		DialogCancelled:    "ダイアログがキャンセルされました",
		FileSaved:          "ファイルを保存しました: %s",
		FilterMarkdown:     "Markdown",
		FilterAll:          "すべてのファイル",
		ArgumentInvalid:    "引数が不正です: %s",
		UnknownCommand:     "不明なコマンドです: %s",
		AppFileNotFound:    "ファイルが見つかりません: %s",
		AppFileInvalidPath: "無効なパスです: %s",
		AppFileReadFailed:  "ファイルの読み込みに失敗しました: %s",
		AppFileListFailed:  "ファイル一覧の取得に失敗しました: %s",
		HistoryFailed:      "履歴の取得に失敗しました: %s",
	},
	language.English: {
		SaveTitle:          "Save sticky note report",
		SaveCancelled:      "Save was cancelled",
		SaveInvalidPath:    "Invalid file path",
		SaveFailed:         "Failed to save file: %s",
		FolderTitle:        "Choose destination folder",
		FolderCancelled:    "Folder selection was cancelled",
		FolderInvalidPath:  "Invalid directory path",
		ReceivePathFailed:  "Failed to receive file path: %s",
		DialogTimeout:      "The dialog timed out waiting for a response",
		DialogCancelled:    "The dialog was cancelled",
		FileSaved:          "File saved: %s",
		FilterMarkdown:     "Markdown",
		FilterAll:          "All files",
		ArgumentInvalid:    "Invalid arguments: %s",
		UnknownCommand:     "Unknown command: %s",
		AppFileNotFound:    "File not found: %s",
		AppFileInvalidPath: "Invalid path: %s",
		AppFileReadFailed:  "Failed to read file: %s",
		AppFileListFailed:  "Failed to list files: %s",
		HistoryFailed:      "Failed to load history: %s",
	},
}

// Supported lists the catalog locales; the first entry is the fallback.
var Supported = []language.Tag{language.Japanese, language.English}

var matcher = language.NewMatcher(Supported)

var builder = newBuilder()

func newBuilder() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(Supported[0]))
	for tag, msgs := range messages {
		for key, msg := range msgs {
			if err := b.SetString(tag, string(key), msg); err != nil {
				panic(fmt.Sprintf("i18n: %s %s: %v", tag, key, err))
			}
		}
	}
	return b
}

// Parse resolves a locale name ("ja", "en-US", ...) to a supported tag.
func Parse(name string) (language.Tag, error) {
	tag, err := language.Parse(name)
	if err != nil {
		return language.Und, fmt.Errorf("i18n: parse locale %q: %w", name, err)
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return language.Und, fmt.Errorf("i18n: unsupported locale %q", name)
	}
	return Supported[idx], nil
}

// Match picks the best supported locale for an Accept-Language header.
// ok is false when the header names nothing we support.
func Match(acceptLanguage string) (tag language.Tag, ok bool) {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.Und, false
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return language.Und, false
	}
	return Supported[idx], true
}

// Localizer formats catalog messages for one locale.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Localizer for tag, falling back to the first supported locale.
func New(tag language.Tag) Localizer {
	if _, ok := messages[tag]; !ok {
		tag = Supported[0]
	}
	return Localizer{tag: tag, printer: message.NewPrinter(tag, message.Catalog(builder))}
}

// Tag returns the locale in use.
func (l Localizer) Tag() language.Tag {
	return l.tag
}

// T formats the message for key. Keys missing from the locale fall back to
// the first supported locale; unknown keys are returned as is.
func (l Localizer) T(key Key, args ...any) string {
	if l.printer == nil {
		l = New(l.tag)
	}
	if _, ok := messages[l.tag][key]; !ok {
		if _, ok := messages[Supported[0]][key]; !ok {
			return string(key)
		}
		l = New(Supported[0])
	}
	return l.printer.Sprintf(string(key), args...)
}

type ctxKey struct{}

// WithLocale attaches a request locale to ctx.
func WithLocale(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, ctxKey{}, tag)
}

// FromContext returns the request locale, or fallback when none was attached.
func FromContext(ctx context.Context, fallback Localizer) Localizer {
	if tag, ok := ctx.Value(ctxKey{}).(language.Tag); ok {
		return New(tag)
	}
	return fallback
}
