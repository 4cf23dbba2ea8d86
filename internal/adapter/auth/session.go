// Package auth authenticates the back-office administrator with a signed
// session cookie that expires after a period of inactivity.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the session cookie.
const CookieName = "gestloc_session"

// DefaultIdleTimeout ends a session after two hours without a request.
const DefaultIdleTimeout = 7200 * time.Second

// ErrNoSession is returned when the request carries no valid session.
var ErrNoSession = errors.New("no valid session")

// Session is the principal carried by a valid cookie.
type Session struct {
	Email     string
	ExpiresAt time.Time
}

// Manager issues and verifies HS256 session tokens.
type Manager struct {
	secret []byte
	idle   time.Duration
	secure bool
	now    func() time.Time
}

// NewManager creates a manager. secure marks cookies HTTPS-only.
func NewManager(secret string, idle time.Duration, secure bool) (*Manager, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 bytes, got %d", len(secret))
	}
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Manager{secret: []byte(secret), idle: idle, secure: secure, now: time.Now}, nil
}

// SetClock replaces the time source. Tests use it to move past the idle timeout.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Issue writes a fresh session cookie for email, valid for the idle timeout.
func (m *Manager) Issue(w http.ResponseWriter, email string) (Session, error) {
	now := m.now()
	s := Session{Email: email, ExpiresAt: now.Add(m.idle)}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return Session{}, fmt.Errorf("signing session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  s.ExpiresAt,
		MaxAge:   int(m.idle.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}

// Verify returns the session carried by r.
func (m *Manager) Verify(r *http.Request) (Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Session{}, ErrNoSession
	}

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	if claims.Subject == "" {
		return Session{}, ErrNoSession
	}

	return Session{Email: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Clear expires the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
