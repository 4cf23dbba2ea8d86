package auth

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/gestloc/internal/domain"
)

// LoginPath is where browsers are sent when their session is missing.
const LoginPath = "/login"

// Middleware requires a valid session. It slides the expiry forward on every
// request and puts the actor into the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Verify(r)
		if err != nil {
			Deny(w, r)
			return
		}

		refreshed, err := m.Issue(w, s.Email)
		if err != nil {
			slog.ErrorContext(r.Context(), "refreshing session", "error", err)
			refreshed = s
		}

		ctx := domain.WithActor(r.Context(), domain.Actor{
			Email:     refreshed.Email,
			IP:        ClientIP(r),
			ExpiresAt: refreshed.ExpiresAt,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Deny answers an unauthenticated request: a problem+json 401 for API
// clients, a redirect to the login page for browsers.
func Deny(w http.ResponseWriter, r *http.Request) {
	if !WantsJSON(r) {
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(huma.NewError(http.StatusUnauthorized, "authentication required"))
}

// WantsJSON reports whether the request comes from script or an API client.
func WantsJSON(r *http.Request) bool {
	if strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// ClientIP returns the request's origin address without its port. The chi
// RealIP middleware has already applied forwarding headers.
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
