package auth

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"
)

const FlashCookieName = "pulse_flash"

// Flash categories understood by the templates.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot message shown after a redirect.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// SetFlash stores a flash message for the next request.
func SetFlash(w http.ResponseWriter, opts CookieOptions, category, message string) {
	opts = opts.normalize()

	data, err := json.Marshal(Flash{Category: category, Message: message})
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     opts.Path,
		MaxAge:   300,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// PopFlash reads the pending flash message, if any, and clears it.
func PopFlash(w http.ResponseWriter, r *http.Request, opts CookieOptions) (Flash, bool) {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil || cookie.Value == "" {
		return Flash{}, false
	}

	opts = opts.normalize()
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    "",
		Path:     opts.Path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})

	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return Flash{}, false
	}

	var f Flash
	if err := json.Unmarshal(data, &f); err != nil || f.Message == "" {
		return Flash{}, false
	}
	return f, true
}
