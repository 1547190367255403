// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// Inkwell blog. Routes are organized into public pages, anonymous-only
// auth pages, and authenticated user and admin groups.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/session"
	"inkwell/internal/store"
	"inkwell/internal/upload"
)

// Deps bundles everything the router needs.
type Deps struct {
	Sessions *session.Store
	Users    *store.UserStore
	Uploads  *upload.Store
	Auth     *handlers.Auth
	Posts    *handlers.Posts
	Comments *handlers.Comments
	Profile  *handlers.Profile
	Weather  *handlers.Weather
}

// New creates the configured Chi router with all middleware and route
// groups wired up. The returned rate limiter must be stopped on shutdown.
func New(d Deps) (chi.Router, *middleware.RateLimiter) {
	r := chi.NewRouter()

	// Credential endpoints get a tight limit; everything else shares a
	// generous per-IP budget.
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadUser(d.Sessions, d.Users))

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Uploaded profile pictures.
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.Uploads.Dir())))
	r.Get("/uploads/{name}", fileServer.ServeHTTP)

	// Public pages.
	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF)
		r.Get("/", d.Posts.Home)
		r.Get("/blog", d.Posts.Blog)
		r.Get("/user/visit_post/{id}", d.Posts.VisitPost)
		r.Get("/user/all_comments/{post_id}", d.Comments.AllComments)
	})

	// Auth pages — the login flow is for anonymous visitors only.
	r.Route("/auth", func(r chi.Router) {
		r.Use(middleware.CSRF)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAnonymous)
			r.Use(authLimiter.Middleware)
			r.Get("/register", d.Auth.RegisterPage)
			r.Post("/register", d.Auth.RegisterSubmit)
			r.Get("/login", d.Auth.LoginPage)
			r.Post("/login", d.Auth.LoginSubmit)
			r.Get("/authenticate/{id}", d.Auth.VerifyPage)
			r.Post("/authenticate/{id}", d.Auth.VerifySubmit)
			r.Get("/2fa-verification/{id}", d.Auth.Verify2FAPage)
			r.Post("/2fa-verification/{id}", d.Auth.Verify2FASubmit)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/logout", d.Auth.Logout)
		})
	})

	// Authenticated user actions.
	r.Route("/user", func(r chi.Router) {
		r.Use(middleware.CSRF)
		r.Use(middleware.RequireAuth)

		r.Get("/comment/{post_id}", d.Comments.CommentPage)
		r.Post("/comment/{post_id}", d.Comments.CommentSubmit)
		r.Get("/delete_comment/{post_id}", d.Comments.DeleteComment)
		r.Get("/weather", d.Weather.WeatherPage)
		r.Post("/weather", d.Weather.WeatherSubmit)

		// Publishing is restricted to admins.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/new_post", d.Posts.NewPostPage)
			r.Post("/new_post", d.Posts.NewPostSubmit)
			r.Get("/delete_post/{id}", d.Posts.DeletePost)
		})
	})

	// Profile self-management.
	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF)
		r.Use(middleware.RequireAuth)

		r.Get("/manage_profile", d.Profile.ManageProfile)
		r.Get("/change_username", d.Profile.ChangeUsernamePage)
		r.Post("/change_username", d.Profile.ChangeUsernameSubmit)
		r.Get("/change_email", d.Profile.ChangeEmailPage)
		r.Post("/change_email", d.Profile.ChangeEmailSubmit)
		r.Get("/change_password", d.Profile.ChangePasswordPage)
		r.Post("/change_password", d.Profile.ChangePasswordSubmit)
		r.Get("/change_city", d.Profile.ChangeCityPage)
		r.Post("/change_city", d.Profile.ChangeCitySubmit)
		r.Get("/change_picture", d.Profile.ChangePicturePage)
		r.Post("/change_picture", d.Profile.ChangePictureSubmit)
		r.Get("/setup-2fa", d.Profile.SetupTwoFactor)
		r.Get("/disable-2fa", d.Profile.DisableTwoFactor)
		r.Get("/delete_account", d.Profile.DeleteAccountPage)
		r.Post("/delete_account", d.Profile.DeleteAccountSubmit)
		r.Get("/delete_account_2fa", d.Profile.DeleteAccount2FAPage)
		r.Post("/delete_account_2fa", d.Profile.DeleteAccount2FASubmit)
	})

	return r, authLimiter
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
