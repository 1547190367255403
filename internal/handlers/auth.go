// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/session"
	"inkwell/internal/store"
	"inkwell/internal/twofactor"
	"inkwell/internal/weather"
)

// Auth groups registration, the two-step login flow, and logout.
type Auth struct {
	renderer *render.Renderer
	sessions *session.Store
	users    *store.UserStore
	weather  *weather.Client
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, users *store.UserStore, weather *weather.Client) *Auth {
	return &Auth{renderer: renderer, sessions: sessions, users: users, weather: weather}
}

// RegisterPage renders the registration form.
func (a *Auth) RegisterPage(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "register", &render.PageData{Title: "Register"})
}

// RegisterSubmit creates a new account and logs it in straight away.
func (a *Auth) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	email := r.FormValue("email")
	city := r.FormValue("city")
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	for _, msg := range []string{
		validateUsername(username),
		validateEmail(email),
		validatePassword(password, confirm),
		validateCity(city),
	} {
		if msg != "" {
			session.AddFlash(w, r, "danger", msg)
			http.Redirect(w, r, "/auth/register", http.StatusSeeOther)
			return
		}
	}

	if existing, err := a.users.FindByUsername(username); err != nil {
		slog.Error("register username lookup failed", "error", err)
		a.renderer.Error(w, r, http.StatusInternalServerError)
		return
	} else if existing != nil {
		session.AddFlash(w, r, "danger", fmt.Sprintf("The username %s has already been taken!", username))
		http.Redirect(w, r, "/auth/register", http.StatusSeeOther)
		return
	}
	if existing, err := a.users.FindByEmail(email); err != nil {
		slog.Error("register email lookup failed", "error", err)
		a.renderer.Error(w, r, http.StatusInternalServerError)
		return
	} else if existing != nil {
		session.AddFlash(w, r, "danger", fmt.Sprintf("The email %s is already registered.", email))
		http.Redirect(w, r, "/auth/register", http.StatusSeeOther)
		return
	}

	// An optional city is geocoded on the spot.
	var cityID *int64
	if city != "" {
		resolved, err := a.weather.Resolve(r.Context(), city)
		if err != nil {
			if errors.Is(err, weather.ErrCityNotFound) {
				a.renderer.Error(w, r, http.StatusNotFound)
				return
			}
			slog.Error("register city lookup failed", "city", city, "error", err)
			a.renderer.Error(w, r, http.StatusInternalServerError)
			return
		}
		if resolved.ID != 0 {
			cityID = &resolved.ID
		}
	}

	user, err := a.users.Create(username, email, password, models.RoleRegular, cityID)
	if err != nil {
		slog.Error("register create failed", "error", err)
		a.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	if _, err := a.sessions.Login(r.Context(), w, r, &session.Data{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	}); err != nil {
		slog.Error("register auto-login failed", "error", err)
		a.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	session.AddFlash(w, r, "success", "Congratulation, you have been registered correctly.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LoginPage renders the username form, the first step of the login flow.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "login", &render.PageData{Title: "Log in"})
}

// LoginSubmit resolves the username and routes to the verification step
// matching the account's 2FA setting. The branch is never user-selectable.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	if msg := validateUsername(username); msg != "" {
		session.AddFlash(w, r, "danger", msg)
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}

	user, err := a.users.FindByUsername(username)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		a.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}
	if user == nil {
		session.AddFlash(w, r, "danger", "This username is not registered, register now!")
		http.Redirect(w, r, "/auth/register", http.StatusSeeOther)
		return
	}

	if user.TOTPEnabled {
		http.Redirect(w, r, fmt.Sprintf("/auth/2fa-verification/%d", user.ID), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/auth/authenticate/%d", user.ID), http.StatusSeeOther)
}

// verificationUser resolves the {id} of a verification route, redirecting
// to registration when the account does not exist.
func (a *Auth) verificationUser(w http.ResponseWriter, r *http.Request) *models.User {
	id, ok := parseID(r, "id")
	if !ok {
		a.renderer.Error(w, r, http.StatusNotFound)
		return nil
	}
	user, err := a.users.FindByID(id)
	if err != nil {
		slog.Error("verification lookup failed", "error", err)
		a.renderer.Error(w, r, http.StatusInternalServerError)
		return nil
	}
	if user == nil {
		session.AddFlash(w, r, "danger", "This username is not registered, register now!")
		http.Redirect(w, r, "/auth/register", http.StatusSeeOther)
		return nil
	}
	return user
}

// VerifyPage renders the password form for accounts without 2FA.
func (a *Auth) VerifyPage(w http.ResponseWriter, r *http.Request) {
	user := a.verificationUser(w, r)
	if user == nil {
		return
	}
	if user.TOTPEnabled {
		http.Redirect(w, r, fmt.Sprintf("/auth/2fa-verification/%d", user.ID), http.StatusSeeOther)
		return
	}
	a.renderer.Page(w, r, "verify_password", &render.PageData{
		Title: "Log in",
		Data:  map[string]any{"Action": fmt.Sprintf("/auth/authenticate/%d", user.ID)},
	})
}

// VerifySubmit checks the password. Any failure restarts the flow from
// the login view; the session stays anonymous.
func (a *Auth) VerifySubmit(w http.ResponseWriter, r *http.Request) {
	user := a.verificationUser(w, r)
	if user == nil {
		return
	}
	if user.TOTPEnabled {
		http.Redirect(w, r, fmt.Sprintf("/auth/2fa-verification/%d", user.ID), http.StatusSeeOther)
		return
	}

	if !a.users.CheckPassword(user, r.FormValue("password")) {
		session.AddFlash(w, r, "danger", "Incorrect credentials, retry")
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}

	a.completeLogin(w, r, user)
}

// Verify2FAPage renders the password+code form for accounts with 2FA.
func (a *Auth) Verify2FAPage(w http.ResponseWriter, r *http.Request) {
	user := a.verificationUser(w, r)
	if user == nil {
		return
	}
	if !user.TOTPEnabled {
		session.AddFlash(w, r, "danger", "2fa is not enabled on this account.")
		http.Redirect(w, r, fmt.Sprintf("/auth/authenticate/%d", user.ID), http.StatusSeeOther)
		return
	}
	a.renderer.Page(w, r, "verify_2fa", &render.PageData{
		Title: "Two-factor verification",
		Data:  map[string]any{"Action": fmt.Sprintf("/auth/2fa-verification/%d", user.ID)},
	})
}

// Verify2FASubmit checks password and authenticator code. Both must
// verify; either failure restarts the flow from the login view.
func (a *Auth) Verify2FASubmit(w http.ResponseWriter, r *http.Request) {
	user := a.verificationUser(w, r)
	if user == nil {
		return
	}
	if !user.TOTPEnabled {
		session.AddFlash(w, r, "danger", "2fa is not enabled on this account.")
		http.Redirect(w, r, fmt.Sprintf("/auth/authenticate/%d", user.ID), http.StatusSeeOther)
		return
	}

	if !a.users.CheckPassword(user, r.FormValue("password")) {
		session.AddFlash(w, r, "danger", "Incorrect credentials, retry")
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	if !twofactor.Verify(user.TOTPSecret, r.FormValue("code")) {
		session.AddFlash(w, r, "danger", "Incorrect credentials, retry")
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}

	a.completeLogin(w, r, user)
}

func (a *Auth) completeLogin(w http.ResponseWriter, r *http.Request, user *models.User) {
	if _, err := a.sessions.Login(r.Context(), w, r, &session.Data{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	}); err != nil {
		slog.Error("session create failed", "error", err)
		a.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}
	session.AddFlash(w, r, "success", "Welcome back!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout destroys the session unconditionally.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if user := middleware.UserFromCtx(r.Context()); user != nil {
		if err := a.sessions.Logout(r.Context(), w, r); err != nil {
			slog.Error("logout failed", "error", err)
		}
		session.AddFlash(w, r, "success", "See you space cowboy.")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
