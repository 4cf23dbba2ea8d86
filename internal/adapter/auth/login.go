package auth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Credentials is the single administrator account.
type Credentials struct {
	Email        string
	PasswordHash string
}

// Check compares the submitted email and password with the account.
func (c Credentials) Check(email, password string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(strings.ToLower(c.Email))) == 1
	passwordOK := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
	return emailOK && passwordOK
}

// HashPassword hashes a plaintext password using bcrypt with DefaultCost.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

// LoginHandler accepts a form-encoded email and password. Browsers are
// redirected; API clients get 204 or a problem+json 401.
func (m *Manager) LoginHandler(creds Credentials) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		email := r.PostFormValue("email")
		if !creds.Check(email, r.PostFormValue("password")) {
			slog.WarnContext(r.Context(), "login failed", "ip", ClientIP(r))
			if WantsJSON(r) {
				Deny(w, r)
				return
			}
			http.Redirect(w, r, LoginPath+"?erreur=1", http.StatusSeeOther)
			return
		}

		if _, err := m.Issue(w, creds.Email); err != nil {
			slog.ErrorContext(r.Context(), "issuing session", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		slog.InfoContext(r.Context(), "login", "email", creds.Email, "ip", ClientIP(r))
		if WantsJSON(r) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// LogoutHandler clears the session.
func (m *Manager) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	m.Clear(w)
	if WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}
