// profile_flow_test.go covers account self-management: identity updates,
// 2FA enable/disable, and account deletion.
package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/twofactor"
)

func TestManageProfile_Renders(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "profile-view", models.RoleRegular)

	req := httptest.NewRequest(http.MethodGet, "/manage_profile", nil)
	req = req.WithContext(ctxWithUser(req.Context(), user))
	rec := httptest.NewRecorder()

	env.Profile.ManageProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}
}

func TestChangeUsernameSubmit_UpdatesRow(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "rename-before", models.RoleRegular)
	env.DB.Exec("DELETE FROM users WHERE username = $1", "rename-after")

	req := postForm("/change_username", map[string]string{"username": "rename-after"})
	req = req.WithContext(ctxWithUser(req.Context(), user))
	rec := httptest.NewRecorder()

	env.Profile.ChangeUsernameSubmit(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/manage_profile" {
		t.Errorf("Location: got %q, want /manage_profile", loc)
	}

	got, err := env.Users.FindByID(user.ID)
	if err != nil || got == nil {
		t.Fatalf("reload user: %v", err)
	}
	if got.Username != "rename-after" {
		t.Errorf("username: got %q, want rename-after", got.Username)
	}
}

func TestChangeUsernameSubmit_TakenNameRejected(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "rename-claimant", models.RoleRegular)
	env.createUser(t, "rename-holder", models.RoleRegular)

	req := postForm("/change_username", map[string]string{"username": "rename-holder"})
	req = req.WithContext(ctxWithUser(req.Context(), user))
	rec := httptest.NewRecorder()

	env.Profile.ChangeUsernameSubmit(rec, req)

	got, _ := env.Users.FindByID(user.ID)
	if got == nil || got.Username != "rename-claimant" {
		t.Error("username changed despite the name being taken")
	}
	if flashCookieValue(rec) == "" {
		t.Error("expected a flash about the taken username")
	}
}

func TestChangeEmailSubmit_RegisteredEmailRejected(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "email-claimant", models.RoleRegular)
	other := env.createUser(t, "email-holder", models.RoleRegular)

	req := postForm("/change_email", map[string]string{"email": other.Email})
	req = req.WithContext(ctxWithUser(req.Context(), user))
	rec := httptest.NewRecorder()

	env.Profile.ChangeEmailSubmit(rec, req)

	got, _ := env.Users.FindByID(user.ID)
	if got == nil || got.Email != user.Email {
		t.Error("email changed despite being registered to another account")
	}
	if flashCookieValue(rec) == "" {
		t.Error("expected a flash about the registered email")
	}
}

func TestChangePasswordSubmit_NewPasswordWorks(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "repass-user", models.RoleRegular)

	req := postForm("/change_password", map[string]string{
		"password":         "newsecret",
		"confirm_password": "newsecret",
	})
	req = req.WithContext(ctxWithUser(req.Context(), user))
	rec := httptest.NewRecorder()

	env.Profile.ChangePasswordSubmit(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	got, err := env.Users.FindByID(user.ID)
	if err != nil || got == nil {
		t.Fatalf("reload user: %v", err)
	}
	if !env.Users.CheckPassword(got, "newsecret") {
		t.Error("new password does not verify")
	}
	if env.Users.CheckPassword(got, "hunter2") {
		t.Error("old password still verifies")
	}
}

func TestChangeCitySubmit_ResolvesAndStores(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "recity-user", models.RoleRegular)
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM cities WHERE name = $1", "Brasov")
	})

	req := postForm("/change_city", map[string]string{"city": "Brasov"})
	req = req.WithContext(ctxWithUser(req.Context(), user))
	rec := httptest.NewRecorder()

	env.Profile.ChangeCitySubmit(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	got, err := env.Users.FindByID(user.ID)
	if err != nil || got == nil {
		t.Fatalf("reload user: %v", err)
	}
	if got.CityID == nil {
		t.Fatal("city not linked to the user")
	}
	city, err := env.Cities.FindByID(*got.CityID)
	if err != nil || city == nil || city.Name != "Brasov" {
		t.Errorf("linked city: got %+v, want Brasov", city)
	}
}

func TestChangeCitySubmit_UnknownCityReturns404(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "recity-missing", models.RoleRegular)

	// The stub weather server returns no results for "Nowhere".
	req := postForm("/change_city", map[string]string{"city": "Nowhere"})
	req = req.WithContext(ctxWithUser(req.Context(), user))
	rec := httptest.NewRecorder()

	env.Profile.ChangeCitySubmit(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestChangeCitySubmit_EmptyClearsCity(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "recity-clear", models.RoleRegular)
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM cities WHERE name = $1", "Cluj")
	})

	req := postForm("/change_city", map[string]string{"city": "Cluj"})
	req = req.WithContext(ctxWithUser(req.Context(), user))
	env.Profile.ChangeCitySubmit(httptest.NewRecorder(), req)

	linked, _ := env.Users.FindByID(user.ID)
	if linked == nil || linked.CityID == nil {
		t.Fatal("setup: city not linked")
	}

	req = postForm("/change_city", map[string]string{"city": ""})
	req = req.WithContext(ctxWithUser(req.Context(), linked))
	env.Profile.ChangeCitySubmit(httptest.NewRecorder(), req)

	cleared, _ := env.Users.FindByID(user.ID)
	if cleared == nil || cleared.CityID != nil {
		t.Error("city link not cleared by an empty submission")
	}
}

func TestSetupTwoFactor_EnablesAndShowsSecret(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "2fa-setup-user", models.RoleRegular)

	req := httptest.NewRequest(http.MethodGet, "/setup-2fa", nil)
	req = req.WithContext(ctxWithUser(req.Context(), user))
	rec := httptest.NewRecorder()

	env.Profile.SetupTwoFactor(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	got, err := env.Users.FindByID(user.ID)
	if err != nil || got == nil {
		t.Fatalf("reload user: %v", err)
	}
	if !got.TOTPEnabled || got.TOTPSecret == nil {
		t.Fatal("2FA not enabled after setup")
	}
	if !strings.Contains(rec.Body.String(), *got.TOTPSecret) {
		t.Error("expected the provisioning secret in the setup page")
	}
}

func TestSetupTwoFactor_AlreadyEnabledRedirects(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "2fa-again-user", models.RoleRegular)

	secret, _ := twofactor.GenerateSecret()
	if err := env.Users.EnableTOTP(user.ID, secret); err != nil {
		t.Fatalf("enable totp: %v", err)
	}
	user, _ = env.Users.FindByID(user.ID)

	req := httptest.NewRequest(http.MethodGet, "/setup-2fa", nil)
	req = req.WithContext(ctxWithUser(req.Context(), user))
	rec := httptest.NewRecorder()

	env.Profile.SetupTwoFactor(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location: got %q, want /", loc)
	}
}

func TestDisableTwoFactor_ClearsSecret(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "2fa-off-user", models.RoleRegular)

	secret, _ := twofactor.GenerateSecret()
	if err := env.Users.EnableTOTP(user.ID, secret); err != nil {
		t.Fatalf("enable totp: %v", err)
	}
	user, _ = env.Users.FindByID(user.ID)

	req := httptest.NewRequest(http.MethodGet, "/disable-2fa", nil)
	req = req.WithContext(ctxWithUser(req.Context(), user))
	rec := httptest.NewRecorder()

	env.Profile.DisableTwoFactor(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	got, _ := env.Users.FindByID(user.ID)
	if got == nil || got.TOTPEnabled || got.TOTPSecret != nil {
		t.Error("2FA not fully disabled")
	}
}

func TestDeleteAccountSubmit_RemovesUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "selfdelete-user", models.RoleRegular)

	req := postForm("/delete_account", map[string]string{"password": "hunter2"})
	req = req.WithContext(ctxWithUser(req.Context(), user))
	rec := httptest.NewRecorder()

	env.Profile.DeleteAccountSubmit(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location: got %q, want /", loc)
	}
	if got, _ := env.Users.FindByID(user.ID); got != nil {
		t.Error("user row still present after deletion")
	}
}

func TestDeleteAccountSubmit_WrongPasswordKeepsAccount(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "selfdelete-wrong", models.RoleRegular)

	req := postForm("/delete_account", map[string]string{"password": "nope"})
	req = req.WithContext(ctxWithUser(req.Context(), user))
	rec := httptest.NewRecorder()

	env.Profile.DeleteAccountSubmit(rec, req)

	if loc := rec.Header().Get("Location"); loc != "/delete_account" {
		t.Errorf("Location: got %q, want /delete_account", loc)
	}
	if got, _ := env.Users.FindByID(user.ID); got == nil {
		t.Error("account deleted despite a wrong password")
	}
}

func TestDeleteAccountSubmit_TwoFactorAccountRerouted(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "selfdelete-2fa", models.RoleRegular)

	secret, _ := twofactor.GenerateSecret()
	if err := env.Users.EnableTOTP(user.ID, secret); err != nil {
		t.Fatalf("enable totp: %v", err)
	}
	user, _ = env.Users.FindByID(user.ID)

	req := postForm("/delete_account", map[string]string{"password": "hunter2"})
	req = req.WithContext(ctxWithUser(req.Context(), user))
	rec := httptest.NewRecorder()

	env.Profile.DeleteAccountSubmit(rec, req)

	if loc := rec.Header().Get("Location"); loc != "/delete_account_2fa" {
		t.Errorf("Location: got %q, want /delete_account_2fa", loc)
	}
	if got, _ := env.Users.FindByID(user.ID); got == nil {
		t.Error("2FA account deleted without a code")
	}
}
