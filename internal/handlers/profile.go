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
	"inkwell/internal/upload"
	"inkwell/internal/weather"
)

// maxUploadBytes caps profile picture uploads.
const maxUploadBytes = 5 << 20

// Profile groups account self-management: identity fields, city,
// profile picture, 2FA setup, and account deletion.
type Profile struct {
	renderer *render.Renderer
	sessions *session.Store
	users    *store.UserStore
	cities   *store.CityStore
	weather  *weather.Client
	uploads  *upload.Store
	appName  string
}

// NewProfile creates a new Profile handler group. appName is used as the
// TOTP provisioning issuer.
func NewProfile(renderer *render.Renderer, sessions *session.Store, users *store.UserStore,
	cities *store.CityStore, weather *weather.Client, uploads *upload.Store, appName string) *Profile {
	return &Profile{
		renderer: renderer,
		sessions: sessions,
		users:    users,
		cities:   cities,
		weather:  weather,
		uploads:  uploads,
		appName:  appName,
	}
}

// ManageProfile renders the profile overview.
func (p *Profile) ManageProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	var city *models.City
	if user.CityID != nil {
		var err error
		city, err = p.cities.FindByID(*user.CityID)
		if err != nil {
			slog.Error("city lookup failed", "error", err)
			p.renderer.Error(w, r, http.StatusInternalServerError)
			return
		}
	}

	p.renderer.Page(w, r, "manage_profile", &render.PageData{
		Title: "Your profile",
		Data:  map[string]any{"City": city},
	})
}

// ChangeUsernamePage renders the username form.
func (p *Profile) ChangeUsernamePage(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "change_username", &render.PageData{Title: "Change username"})
}

// ChangeUsernameSubmit updates the username after validation and a
// uniqueness check.
func (p *Profile) ChangeUsernameSubmit(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	username := r.FormValue("username")

	if msg := validateUsername(username); msg != "" {
		session.AddFlash(w, r, "danger", msg)
		http.Redirect(w, r, "/manage_profile", http.StatusSeeOther)
		return
	}
	if existing, err := p.users.FindByUsername(username); err != nil {
		slog.Error("username lookup failed", "error", err)
		p.renderer.Error(w, r, http.StatusInternalServerError)
		return
	} else if existing != nil && existing.ID != user.ID {
		session.AddFlash(w, r, "danger", fmt.Sprintf("The username %s has already been taken!", username))
		http.Redirect(w, r, "/manage_profile", http.StatusSeeOther)
		return
	}

	if err := p.users.UpdateUsername(user.ID, username); err != nil {
		slog.Error("username update failed", "error", err)
		p.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	session.AddFlash(w, r, "success", "Username updated correctly.")
	http.Redirect(w, r, "/manage_profile", http.StatusSeeOther)
}

// ChangeEmailPage renders the email form.
func (p *Profile) ChangeEmailPage(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "change_email", &render.PageData{Title: "Change email"})
}

// ChangeEmailSubmit updates the email after validation and a
// uniqueness check.
func (p *Profile) ChangeEmailSubmit(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	email := r.FormValue("email")

	if msg := validateEmail(email); msg != "" {
		session.AddFlash(w, r, "danger", msg)
		http.Redirect(w, r, "/manage_profile", http.StatusSeeOther)
		return
	}
	if existing, err := p.users.FindByEmail(email); err != nil {
		slog.Error("email lookup failed", "error", err)
		p.renderer.Error(w, r, http.StatusInternalServerError)
		return
	} else if existing != nil && existing.ID != user.ID {
		session.AddFlash(w, r, "danger", fmt.Sprintf("The email %s is already registered.", email))
		http.Redirect(w, r, "/manage_profile", http.StatusSeeOther)
		return
	}

	if err := p.users.UpdateEmail(user.ID, email); err != nil {
		slog.Error("email update failed", "error", err)
		p.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	session.AddFlash(w, r, "success", "Email updated correctly.")
	http.Redirect(w, r, "/manage_profile", http.StatusSeeOther)
}

// ChangePasswordPage renders the password form.
func (p *Profile) ChangePasswordPage(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "change_password", &render.PageData{Title: "Change password"})
}

// ChangePasswordSubmit re-hashes and stores a new password.
func (p *Profile) ChangePasswordSubmit(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	if msg := validatePassword(r.FormValue("password"), r.FormValue("confirm_password")); msg != "" {
		session.AddFlash(w, r, "danger", msg)
		http.Redirect(w, r, "/manage_profile", http.StatusSeeOther)
		return
	}

	if err := p.users.UpdatePassword(user.ID, r.FormValue("password")); err != nil {
		slog.Error("password update failed", "error", err)
		p.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	session.AddFlash(w, r, "success", "Password updated correctly.")
	http.Redirect(w, r, "/manage_profile", http.StatusSeeOther)
}

// ChangeCityPage renders the city form.
func (p *Profile) ChangeCityPage(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "change_city", &render.PageData{Title: "Change city"})
}

// ChangeCitySubmit geocodes the submitted city and stores the reference.
// An empty field clears the stored city.
func (p *Profile) ChangeCitySubmit(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	city := r.FormValue("city")

	if msg := validateCity(city); msg != "" {
		session.AddFlash(w, r, "danger", msg)
		http.Redirect(w, r, "/manage_profile", http.StatusSeeOther)
		return
	}

	var cityID *int64
	if city != "" {
		resolved, err := p.weather.Resolve(r.Context(), city)
		if err != nil {
			if errors.Is(err, weather.ErrCityNotFound) {
				p.renderer.Error(w, r, http.StatusNotFound)
				return
			}
			slog.Error("city resolve failed", "city", city, "error", err)
			p.renderer.Error(w, r, http.StatusInternalServerError)
			return
		}
		if resolved.ID != 0 {
			cityID = &resolved.ID
		}
	}

	if err := p.users.UpdateCity(user.ID, cityID); err != nil {
		slog.Error("city update failed", "error", err)
		p.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	session.AddFlash(w, r, "success", "Informations about the city updated correctly.")
	http.Redirect(w, r, "/manage_profile", http.StatusSeeOther)
}

// ChangePicturePage renders the upload form.
func (p *Profile) ChangePicturePage(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "change_picture", &render.PageData{Title: "Change profile picture"})
}

// ChangePictureSubmit validates and stores a new profile picture,
// removing the previous one.
func (p *Profile) ChangePictureSubmit(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		p.renderer.Error(w, r, http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("picture")
	if err != nil {
		p.renderer.Error(w, r, http.StatusBadRequest)
		return
	}
	defer file.Close()

	name, err := p.uploads.SaveProfilePicture(file)
	if err != nil {
		if errors.Is(err, upload.ErrUnsupportedFormat) {
			session.AddFlash(w, r, "danger", "Only PNG, JPEG, and GIF images are supported.")
			http.Redirect(w, r, "/manage_profile", http.StatusSeeOther)
			return
		}
		slog.Error("picture save failed", "error", err)
		p.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	if user.ProfilePic != nil {
		if err := p.uploads.Remove(*user.ProfilePic); err != nil {
			slog.Error("old picture removal failed", "error", err)
		}
	}

	if err := p.users.UpdateProfilePic(user.ID, name); err != nil {
		slog.Error("picture update failed", "error", err)
		p.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	session.AddFlash(w, r, "success", "You have updated your profile picture correctly.")
	http.Redirect(w, r, "/manage_profile", http.StatusSeeOther)
}

// SetupTwoFactor generates a fresh secret, enables 2FA in a single
// store operation, and shows the QR code for the authenticator app.
func (p *Profile) SetupTwoFactor(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	if user.TOTPEnabled {
		session.AddFlash(w, r, "danger", "2fa is already enabled for your account.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	secret, err := twofactor.GenerateSecret()
	if err != nil {
		slog.Error("totp secret generation failed", "error", err)
		p.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	uri := twofactor.ProvisioningURI(secret, user.Username, p.appName)
	qr, err := twofactor.QRCodeBase64(uri)
	if err != nil {
		slog.Error("totp qr encoding failed", "error", err)
		p.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	if err := p.users.EnableTOTP(user.ID, secret); err != nil {
		slog.Error("totp enable failed", "error", err)
		p.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	session.AddFlash(w, r, "success", "Congratulation, 2fa has been enabled.")
	p.renderer.Page(w, r, "setup_2fa", &render.PageData{
		Title: "Two-factor authentication",
		Data:  map[string]any{"Secret": secret, "QRCode": qr, "URI": uri},
	})
}

// DisableTwoFactor clears the secret and the flag together.
func (p *Profile) DisableTwoFactor(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	if !user.TOTPEnabled {
		session.AddFlash(w, r, "danger", "2fa is already disabled for your account.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := p.users.DisableTOTP(user.ID); err != nil {
		slog.Error("totp disable failed", "error", err)
		p.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	session.AddFlash(w, r, "success", "Congratulation you have disabled 2fa.")
	http.Redirect(w, r, "/manage_profile", http.StatusSeeOther)
}

// DeleteAccountPage renders the password confirmation form. Accounts
// with 2FA enabled use the 2FA variant.
func (p *Profile) DeleteAccountPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user.TOTPEnabled {
		http.Redirect(w, r, "/delete_account_2fa", http.StatusSeeOther)
		return
	}
	p.renderer.Page(w, r, "delete_account", &render.PageData{Title: "Delete account"})
}

// DeleteAccountSubmit deletes the account after a password check. The
// session is destroyed before the row is removed.
func (p *Profile) DeleteAccountSubmit(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user.TOTPEnabled {
		http.Redirect(w, r, "/delete_account_2fa", http.StatusSeeOther)
		return
	}

	if !p.users.CheckPassword(user, r.FormValue("password")) {
		session.AddFlash(w, r, "danger", "Incorrect credentials, retry")
		http.Redirect(w, r, "/delete_account", http.StatusSeeOther)
		return
	}

	p.destroyAccount(w, r, user)
}

// DeleteAccount2FAPage renders the password+code confirmation form.
func (p *Profile) DeleteAccount2FAPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if !user.TOTPEnabled {
		session.AddFlash(w, r, "danger", "2fa is not enabled on this account.")
		http.Redirect(w, r, "/delete_account", http.StatusSeeOther)
		return
	}
	p.renderer.Page(w, r, "delete_account_2fa", &render.PageData{Title: "Delete account"})
}

// DeleteAccount2FASubmit deletes the account after password and
// authenticator code both verify.
func (p *Profile) DeleteAccount2FASubmit(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if !user.TOTPEnabled {
		session.AddFlash(w, r, "danger", "2fa is not enabled on this account.")
		http.Redirect(w, r, "/delete_account", http.StatusSeeOther)
		return
	}

	if !p.users.CheckPassword(user, r.FormValue("password")) {
		session.AddFlash(w, r, "danger", "Incorrect credentials, retry")
		http.Redirect(w, r, "/delete_account_2fa", http.StatusSeeOther)
		return
	}
	if !twofactor.Verify(user.TOTPSecret, r.FormValue("code")) {
		session.AddFlash(w, r, "danger", "Incorrect credentials, retry")
		http.Redirect(w, r, "/delete_account_2fa", http.StatusSeeOther)
		return
	}

	p.destroyAccount(w, r, user)
}

func (p *Profile) destroyAccount(w http.ResponseWriter, r *http.Request, user *models.User) {
	if err := p.sessions.Logout(r.Context(), w, r); err != nil {
		slog.Error("logout on account deletion failed", "error", err)
	}

	if err := p.users.Delete(user.ID); err != nil {
		slog.Error("account delete failed", "error", err)
		p.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	session.AddFlash(w, r, "success", "Your account has been deleted correctly... See you space cowboy")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
