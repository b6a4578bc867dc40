package server

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	OAuthStateCookie = "pulse_oauth_state"
	oauthStateTTL    = 10 * time.Minute
)

// OAuthProvider starts and completes an authorization code flow.
type OAuthProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// OAuthCompleteFunc receives the token once the callback succeeds.
type OAuthCompleteFunc func(w http.ResponseWriter, r *http.Request, token *oauth2.Token)

// OAuthFailFunc receives any error from the callback.
type OAuthFailFunc func(w http.ResponseWriter, r *http.Request, err error)

// OAuthHandler serves the connect and callback endpoints of an OAuth2 authorization code flow.
// Implements the Handler interface for registration with a Router.
//
// The state token lives in a short-lived cookie bound to the browser that started the flow.
type OAuthHandler struct {
	provider OAuthProvider
	prefix   string
	secure   bool
	complete OAuthCompleteFunc
	fail     OAuthFailFunc
}

// NewOAuthHandler creates a handler serving prefix+"/connect" and prefix+"/callback".
func NewOAuthHandler(provider OAuthProvider, prefix string, secure bool, complete OAuthCompleteFunc, fail OAuthFailFunc) *OAuthHandler {
	if fail == nil {
		fail = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	return &OAuthHandler{
		provider: provider,
		prefix:   strings.TrimSuffix(prefix, "/"),
		secure:   secure,
		complete: complete,
		fail:     fail,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{
		"GET " + h.prefix + "/connect",
		"GET " + h.prefix + "/callback",
	}
}

// ServeHTTP dispatches to the connect or callback step.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case h.prefix + "/connect":
		h.connect(w, r)
	case h.prefix + "/callback":
		h.callback(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *OAuthHandler) connect(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	h.setState(w, state, int(oauthStateTTL.Seconds()))
	http.Redirect(w, r, h.provider.AuthURL(state), http.StatusFound)
}

// callback validates the state parameter, exchanges the authorization code for tokens, and hands the result on.
func (h *OAuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(OAuthStateCookie)
	h.setState(w, "", -1)

	state := r.URL.Query().Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		h.fail(w, r, fmt.Errorf("invalid state parameter"))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		errParam := r.URL.Query().Get("error")
		errDesc := r.URL.Query().Get("error_description")
		h.fail(w, r, fmt.Errorf("authorization failed: %s - %s", errParam, errDesc))
		return
	}

	token, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.fail(w, r, fmt.Errorf("token exchange failed: %w", err))
		return
	}

	h.complete(w, r, token)
}

func (h *OAuthHandler) setState(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     OAuthStateCookie,
		Value:    value,
		Path:     h.prefix + "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
