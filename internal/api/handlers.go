package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/fusendo/internal/apperr"
	"github.com/starford/fusendo/internal/command"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *command.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *command.Service) *Handler {
	return &Handler{svc: svc}
}

// Commands handles GET /api/commands.
//
//	@Summary		List available commands
//	@Tags			commands
//	@Produce		json
//	@Success		200	{object}	CommandsResponse
//	@Security		BearerAuth
//	@Router			/commands [get]
func (h *Handler) Commands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CommandsResponse{Commands: h.svc.Names()})
}

// Invoke handles POST /api/invoke/{command}. The body is the command's
// argument object; an empty body means no arguments.
//
//	@Summary		Invoke a command
//	@Tags			commands
//	@Accept			json
//	@Produce		json
//	@Param			command	path		string	true	"Command name"
//	@Success		200		{object}	InvokeResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Failure		504		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/invoke/{command} [post]
func (h *Handler) Invoke(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "command")
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body", apperr.KindInvalidArgument))
		return
	}

	result, err := h.svc.Invoke(r.Context(), name, json.RawMessage(body))
	if err != nil {
		kind := apperr.KindOf(err)
		status := statusFor(kind)
		msg := err.Error()
		var e *apperr.Error
		if !errors.As(err, &e) {
			msg = "internal error"
		}
		if status == http.StatusInternalServerError {
			slog.Error("command failed", slog.String("command", name), slog.String("error", err.Error()))
		} else {
			slog.Debug("command rejected", slog.String("command", name), slog.String("kind", string(kind)))
		}
		writeJSON(w, status, errorBody(msg, kind))
		return
	}
	writeJSON(w, http.StatusOK, InvokeResponse{Result: result})
}
