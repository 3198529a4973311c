// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/fusendo/internal/api"
	"github.com/starford/fusendo/internal/command"
	"github.com/starford/fusendo/internal/dialog"
	"github.com/starford/fusendo/internal/history"
	"github.com/starford/fusendo/internal/i18n"
	"github.com/starford/fusendo/internal/mcpserver"
	"github.com/starford/fusendo/internal/sse"
	"github.com/starford/fusendo/internal/storage"
	"github.com/starford/fusendo/internal/watch"
)

// changeThrottle bounds appdata.changed events.
const changeThrottle = 2 * time.Second

// readyHandler reports readiness along with the live event subscriber count.
func readyHandler(broker *sse.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":      "ok",
			"sse_clients": broker.ClientCount(),
		})
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{
		version: "dev",
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// components are the parts shared by the HTTP and MCP front ends.
type components struct {
	logger  *slog.Logger
	store   *storage.FS
	history *history.DB
	svc     *command.Service
}

func (c *components) Close() {
	if c.history != nil {
		if err := c.history.Close(); err != nil {
			c.logger.Warn("history close failed", slog.String("error", err.Error()))
		}
	}
}

// build wires storage, history, the dialog driver and the command service.
// Logs go to logOut. When allowPrompt is false, resolving to the terminal
// prompt driver is an error.
func (a *application) build(logOut io.Writer, publisher command.Publisher, allowPrompt bool) (*components, error) {
	cfg := a.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("app_data_path", cfg.AppData.Path),
		slog.String("dialog_driver", cfg.Dialog.Driver),
		slog.Duration("dialog_timeout", cfg.Dialog.Timeout),
		slog.Bool("history_enabled", cfg.History.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure app-data directory exists.
	if err := os.MkdirAll(cfg.AppData.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create app data dir: %w", err)
	}

	store, err := storage.NewFS(cfg.AppData.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	locale, err := i18n.Parse(cfg.App.Locale)
	if err != nil {
		return nil, fmt.Errorf("init locale: %w", err)
	}

	driver := a.driver
	if driver == nil {
		driver, err = dialog.Open(cfg.Dialog.Driver, a.stdin, a.stderr, logger)
		if err != nil {
			return nil, fmt.Errorf("init dialog driver: %w", err)
		}
		if _, isPrompt := driver.(*dialog.PromptDriver); isPrompt && !allowPrompt {
			return nil, errPromptUnavailable
		}
	}

	c := &components{logger: logger, store: store}
	svcOpts := []command.Option{
		command.WithLogger(logger),
		command.WithLocale(locale),
		command.WithDialogTimeout(cfg.Dialog.Timeout),
		command.WithSerializedDialogs(cfg.Dialog.Serialize),
	}
	if publisher != nil {
		svcOpts = append(svcOpts, command.WithPublisher(publisher))
	}

	if cfg.History.Enabled {
		if err := os.MkdirAll(filepath.Dir(cfg.History.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
		db, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("init history: %w", err)
		}
		c.history = db
		svcOpts = append(svcOpts, command.WithHistory(db))
	}

	c.svc = command.NewService(driver, store, svcOpts...)
	return c, nil
}

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// SSE broker.
	broker := sse.NewBroker(changeThrottle)
	defer broker.Close()

	c, err := app.build(app.stdout, broker, true)
	if err != nil {
		return err
	}
	defer c.Close()
	logger := c.logger

	apiRouter := api.NewRouter(c.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", readyHandler(broker))

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the app-data directory and forward changes to SSE clients.
	g.Go(func() error {
		if err := watch.Watch(gCtx, c.store.Root(), logger, broker.PublishFileEvent); err != nil {
			logger.Warn("app data watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown stops the errgroup once the server has been shut down, so the
// watcher exits with it.
var errShutdown = errors.New("shutdown")

// RunMCP serves the commands as MCP tools over stdin/stdout. Logs go to
// stderr since stdout carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	c, err := app.build(app.stderr, nil, false)
	if err != nil {
		return err
	}
	defer c.Close()

	srv := mcpserver.New(c.svc, app.version)
	c.logger.Info("MCP server starting on stdio")

	if err := srv.Serve(ctx, app.stdin, app.stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// errPromptUnavailable rejects the terminal prompt where stdin is taken.
var errPromptUnavailable = errors.New("dialog: the terminal prompt driver cannot be used with mcp, stdin carries the protocol")
