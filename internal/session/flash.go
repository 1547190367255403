package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// flashCookie carries one-time notices between a redirect and the next
// render. It lives in a cookie rather than Valkey so anonymous visitors
// get flashes too.
const flashCookie = "iw_flash"

// Flash is a one-time notification message displayed to the user.
type Flash struct {
	Type    string `json:"type"` // "success", "error"
	Message string `json:"message"`
}

// AddFlash appends a flash message to the pending set on the response.
// Existing pending flashes on the request are preserved.
func AddFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	flashes := readFlashes(r)
	flashes = append(flashes, Flash{Type: kind, Message: message})

	payload, err := json.Marshal(flashes)
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.URLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})
}

// PopFlashes returns all pending flash messages and clears the cookie.
func PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	flashes := readFlashes(r)
	if flashes == nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	return flashes
}

func readFlashes(r *http.Request) []Flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}

	payload, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var flashes []Flash
	if err := json.Unmarshal(payload, &flashes); err != nil {
		return nil
	}
	return flashes
}
