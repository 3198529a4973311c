package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/fusendo/internal/command"
	"github.com/starford/fusendo/internal/dialog"
	"github.com/starford/fusendo/internal/i18n"
)

// AppName names the per-user config directory.
const AppName = "fu-sendo-it"

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	AppData AppDataConfig     `yaml:"app_data"`
	Dialog  DialogConfig      `yaml:"dialog"`
	History HistoryConfig     `yaml:"history"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.AppData.Validate(); err != nil {
		return err
	}
	if err := c.Dialog.Validate(); err != nil {
		return err
	}
	if err := c.History.Validate(c.AppData.Path); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	Locale   string     `yaml:"locale"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Locale, validation.Required, validation.By(validLocale)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

func validLocale(v any) error {
	s, _ := v.(string)
	_, err := i18n.Parse(s)
	return err
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// AppDataConfig holds the app-private data directory.
type AppDataConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the app-data configuration.
func (c *AppDataConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// DialogConfig controls how file and folder dialogs are shown.
//
// Driver is one of "auto" (native helper if installed, else terminal
// prompt), "prompt", "zenity", "kdialog" or "osascript".
type DialogConfig struct {
	Driver    string        `yaml:"driver"`
	Timeout   time.Duration `yaml:"timeout"`
	Serialize bool          `yaml:"serialize"`
}

// Validate validates the dialog configuration.
func (c *DialogConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = dialog.DriverAuto
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.In(toAny(dialog.DriverNames)...)),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Second)),
	)
}

// HistoryConfig holds the optional location history database. The database
// must live outside the app-data directory, where the file commands would
// expose it.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Validate validates the history configuration against the app-data root.
func (c *HistoryConfig) Validate(appData string) error {
	if !c.Enabled {
		return nil
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	); err != nil {
		return err
	}
	inside, err := within(appData, c.Path)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if inside {
		return fmt.Errorf("history: path %q is inside app_data.path %q", c.Path, appData)
	}
	return nil
}

// within reports whether p is root or lies below it.
func within(root, p string) (bool, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false, err
	}
	absP, err := filepath.Abs(p)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(absRoot, absP)
	if err != nil {
		return false, nil
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))), nil
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			Locale:   "ja",
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		AppData: AppDataConfig{
			Path: defaultAppDataPath(),
		},
		Dialog: DialogConfig{
			Driver:    dialog.DriverAuto,
			Timeout:   command.DefaultDialogTimeout,
			Serialize: true,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    defaultHistoryPath(),
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}

func defaultAppDataPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "./app-data"
	}
	return filepath.Join(dir, AppName)
}

func defaultHistoryPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, AppName, "history.db")
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
