package internal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/fusendo/internal/sse"
	"github.com/starford/fusendo/internal/testutil"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.AppData.Path = t.TempDir()
	cfg.History.Enabled = false
	return cfg
}

func TestRunRequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Fatal("Run without config should fail")
	}
}

func TestRunMCPRejectsPromptDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Dialog.Driver = "prompt"

	err := RunMCP(context.Background(),
		WithConfig(cfg),
		WithIO(strings.NewReader(""), io.Discard, io.Discard),
	)
	if !errors.Is(err, errPromptUnavailable) {
		t.Fatalf("err = %v, want errPromptUnavailable", err)
	}
}

func TestBuildWiresHistory(t *testing.T) {
	cfg := testConfig(t)
	cfg.History.Enabled = true
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")

	app, err := newApplication([]Option{
		WithConfig(cfg),
		WithDialogDriver(testutil.NewScriptedDriver()),
	})
	if err != nil {
		t.Fatal(err)
	}
	c, err := app.build(io.Discard, nil, false)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer c.Close()

	if c.history == nil {
		t.Fatal("history should be open when enabled")
	}
	if c.store.Root() == "" {
		t.Error("store root is empty")
	}
	got, err := c.svc.Invoke(context.Background(), "recent_locations", nil)
	if err != nil {
		t.Fatalf("recent_locations: %v", err)
	}
	if got == nil {
		t.Error("recent_locations returned nil")
	}
}

func TestBuildRejectsUnknownLocale(t *testing.T) {
	cfg := testConfig(t)
	cfg.App.Locale = "xx"

	app, err := newApplication([]Option{WithConfig(cfg), WithDialogDriver(testutil.NewScriptedDriver())})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := app.build(io.Discard, nil, true); err == nil {
		t.Error("build should fail for an unsupported locale")
	}
}

func TestHistoryNotExposedAsAppData(t *testing.T) {
	cache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cache)
	t.Setenv("HOME", cache)

	cfg := NewDefaultConfig()
	cfg.AppData.Path = t.TempDir()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	target := filepath.Join(t.TempDir(), "report.md")
	app, err := newApplication([]Option{
		WithConfig(cfg),
		WithDialogDriver(testutil.NewScriptedDriver(testutil.Response{Raw: target})),
	})
	if err != nil {
		t.Fatal(err)
	}
	c, err := app.build(io.Discard, nil, false)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if _, err := c.svc.SaveMarkdownFile(ctx, "# Title\n", "report.md"); err != nil {
		t.Fatalf("save: %v", err)
	}

	items, err := c.svc.ListTextFiles(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("app data lists %+v, want nothing", items)
	}
	if ok, _ := c.svc.Exists(ctx, "history.db"); ok {
		t.Error("history.db is reachable through the app-data commands")
	}
	recent, err := c.svc.RecentLocations(ctx, 0)
	if err != nil || len(recent) != 1 {
		t.Errorf("recent = %+v, %v", recent, err)
	}
}

func TestReadyReportsSSEClients(t *testing.T) {
	b := sse.NewBroker(100 * time.Millisecond)
	defer b.Close()

	ready := func() map[string]any {
		t.Helper()
		rec := httptest.NewRecorder()
		readyHandler(b)(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		return body
	}

	if got := ready(); got["status"] != "ok" || got["sse_clients"] != float64(0) {
		t.Fatalf("ready = %v", got)
	}

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)
	if got := ready(); got["sse_clients"] != float64(1) {
		t.Fatalf("ready after subscribe = %v", got)
	}
}
