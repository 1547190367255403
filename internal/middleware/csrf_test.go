package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func csrfCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == CSRFCookieName {
			return c
		}
	}
	return nil
}

func TestCSRFIssuesCookieOnGet(t *testing.T) {
	inner, _ := okHandler()
	handler := CSRF(inner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	cookie := csrfCookie(t, rr)
	if cookie == nil {
		t.Fatal("expected a CSRF cookie to be set")
	}
	if len(cookie.Value) != csrfTokenLength*2 {
		t.Errorf("token length: got %d, want %d", len(cookie.Value), csrfTokenLength*2)
	}
	if rr.Code != http.StatusOK {
		t.Errorf("GET should pass without validation, got %d", rr.Code)
	}
}

func TestCSRFRejectsPostWithoutToken(t *testing.T) {
	inner, called := okHandler()
	handler := CSRF(inner)

	// Establish a cookie first.
	seed := httptest.NewRequest(http.MethodGet, "/", nil)
	seedRR := httptest.NewRecorder()
	handler.ServeHTTP(seedRR, seed)
	cookie := csrfCookie(t, seedRR)
	*called = false

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if *called {
		t.Error("handler should NOT run without a token")
	}
	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestCSRFAcceptsMatchingFormToken(t *testing.T) {
	inner, called := okHandler()
	handler := CSRF(inner)

	seed := httptest.NewRequest(http.MethodGet, "/", nil)
	seedRR := httptest.NewRecorder()
	handler.ServeHTTP(seedRR, seed)
	cookie := csrfCookie(t, seedRR)

	form := url.Values{CSRFFormField: {cookie.Value}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if !*called {
		t.Error("handler should run with a matching token")
	}
	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestCSRFRejectsMismatchedToken(t *testing.T) {
	inner, called := okHandler()
	handler := CSRF(inner)

	seed := httptest.NewRequest(http.MethodGet, "/", nil)
	seedRR := httptest.NewRecorder()
	handler.ServeHTTP(seedRR, seed)
	cookie := csrfCookie(t, seedRR)
	*called = false

	form := url.Values{CSRFFormField: {"0000000000000000"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if *called {
		t.Error("handler should NOT run with a wrong token")
	}
	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestGetCSRFToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetCSRFToken(req); got != "" {
		t.Errorf("expected empty token without cookie, got %q", got)
	}

	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "abc123"})
	if got := GetCSRFToken(req); got != "abc123" {
		t.Errorf("token: got %q, want abc123", got)
	}
}
