// Package session binds browser cookies to authenticated user identities.
// Sessions are server-side: the cookie carries only a random token, and
// the token-to-user mapping lives in a Store. Two stores exist, one on
// the relational database (default) and one on Redis.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const cookieName = "tagebuch_session"

// ErrNotFound is returned by a Store when the token is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Store persists the token-to-user binding.
type Store interface {
	// Create binds token to userID for the given lifetime.
	Create(ctx context.Context, token string, userID uint, ttl time.Duration) error
	// Lookup resolves a token to a user ID. Expired or unknown tokens
	// return ErrNotFound.
	Lookup(ctx context.Context, token string) (uint, error)
	// Delete removes a token. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
}

// Manager issues and resolves session cookies.
type Manager struct {
	store Store
	ttl   time.Duration
}

// NewManager creates a Manager on top of a Store.
func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl}
}

// Start creates a new session for the user and sets the cookie.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, userID uint) error {
	token := uuid.New().String()
	if err := m.store.Create(ctx, token, userID, m.ttl); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(m.ttl),
	})
	return nil
}

// Clear destroys the caller's session, if any, and expires the cookie.
// Safe to call for guests; logout is idempotent.
func (m *Manager) Clear(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		_ = m.store.Delete(ctx, c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
	})
}

// UserID resolves the request's session cookie to a user ID.
func (m *Manager) UserID(r *http.Request) (uint, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}
	userID, err := m.store.Lookup(r.Context(), c.Value)
	if err != nil {
		return 0, false
	}
	return userID, true
}

type contextKey struct{}

// RequireAuth gates a handler behind authentication. Unauthenticated
// callers are redirected to the login page instead of performing the
// operation; authenticated callers get their user ID placed in the
// request context.
func (m *Manager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.UserID(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), contextKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the authenticated user ID set by RequireAuth.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	userID, ok := ctx.Value(contextKey{}).(uint)
	return userID, ok
}
