// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"

	"inkwell/internal/models"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// UserKey is the context key for the authenticated user.
	UserKey contextKey = "user"
)

// LoadUser resolves the session cookie to a fresh user row and stores it
// in the request context. Downstream handlers access it via UserFromCtx().
// This middleware does NOT enforce authentication — it just loads the
// user if a valid session exists. Reading the row on every request means
// role or profile changes take effect immediately, not at next login.
func LoadUser(sessions *session.Store, users *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := sessions.Get(r.Context(), r)
			if err != nil || data == nil {
				// Treat as unauthenticated.
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.FindByID(data.UserID)
			if err != nil || user == nil {
				// Session points at a deleted account; drop it.
				sessions.Logout(r.Context(), w, r)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth redirects unauthenticated visitors to the login page with
// a flash explaining why. Must be applied after LoadUser.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromCtx(r.Context()) == nil {
			session.AddFlash(w, r, "warning", "Login required to view this page.")
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAnonymous redirects authenticated users away from pages that
// only make sense for visitors, such as login and registration forms.
func RequireAnonymous(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromCtx(r.Context()) != nil {
			session.AddFlash(w, r, "warning", "Log out before accessing this page")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin restricts a route to admin users. Anonymous visitors are
// sent to the login page; authenticated non-admins get a 403.
// Must be applied after LoadUser.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromCtx(r.Context())
		if user == nil {
			session.AddFlash(w, r, "warning", "Login required to view this page.")
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		if !user.IsAdmin() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// UserFromCtx extracts the authenticated user from the request context.
// Returns nil for anonymous requests.
func UserFromCtx(ctx context.Context) *models.User {
	user, _ := ctx.Value(UserKey).(*models.User)
	return user
}
