// Package api exposes the command service to the web front end using chi.
package api

import (
	"net/http"
	"strings"

	"github.com/starford/fusendo/internal/i18n"
)

// AuthMiddleware returns middleware that validates a Bearer token.
// If enabled is false, all requests pass through (disabled mode).
// If enabled is true, requests must carry a valid "Authorization: Bearer <token>" header.
func AuthMiddleware(enabled bool, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != token {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized", ""))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LocaleMiddleware attaches the best supported Accept-Language locale to
// the request context. Requests without a usable header keep the service
// default.
func LocaleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tag, ok := i18n.Match(r.Header.Get("Accept-Language")); ok {
			r = r.WithContext(i18n.WithLocale(r.Context(), tag))
		}
		next.ServeHTTP(w, r)
	})
}
