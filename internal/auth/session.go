package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/pulse/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionCookieName = "pulse_session"
	DefaultSessionTTL = 7 * 24 * time.Hour
	sessionIssuer     = "pulse"
)

// Session is the identity carried by a signed session cookie.
type Session struct {
	UserID    string
	Username  string
	ExpiresAt time.Time
}

type sessionClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"uid"`
	Username string `json:"username"`
}

// CookieOptions controls attributes shared by the cookies this package writes.
type CookieOptions struct {
	Secure   bool
	SameSite http.SameSite
	Path     string
}

func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/"
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// SessionManager issues and verifies HS256-signed session cookies.
type SessionManager struct {
	secret  []byte
	ttl     time.Duration
	cookies CookieOptions
	now     func() time.Time
}

// NewSessionManager creates a manager signing with secret. A zero ttl uses [DefaultSessionTTL].
func NewSessionManager(secret string, ttl time.Duration, cookies CookieOptions) (*SessionManager, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{
		secret:  []byte(secret),
		ttl:     ttl,
		cookies: cookies.normalize(),
		now:     time.Now,
	}, nil
}

// SetClock replaces the time source used for issuing and validating tokens.
func (m *SessionManager) SetClock(now func() time.Time) { m.now = now }

// Cookies returns the cookie options used by this manager.
func (m *SessionManager) Cookies() CookieOptions { return m.cookies }

// Token signs a session token for user.
func (m *SessionManager) Token(user *models.User) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   user.ID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:   user.ID(),
		Username: user.Username(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies a session token and returns its identity.
func (m *SessionManager) Parse(token string) (Session, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrNoSession, err)
	}
	if claims.UserID == "" {
		return Session{}, fmt.Errorf("%w: missing uid", ErrNoSession)
	}

	return Session{
		UserID:    claims.UserID,
		Username:  claims.Username,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Issue writes a session cookie for user.
func (m *SessionManager) Issue(w http.ResponseWriter, user *models.User) error {
	token, expiresAt, err := m.Token(user)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     m.cookies.Path,
		Expires:  expiresAt,
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.cookies.Secure,
		SameSite: m.cookies.SameSite,
	})
	return nil
}

// Read returns the session carried by the request, or [ErrNoSession].
func (m *SessionManager) Read(r *http.Request) (Session, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if errors.Is(err, http.ErrNoCookie) || (err == nil && cookie.Value == "") {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrNoSession, err)
	}
	return m.Parse(cookie.Value)
}

// Clear expires the session cookie.
func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     m.cookies.Path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.cookies.Secure,
		SameSite: m.cookies.SameSite,
	})
}

type sessionKey struct{}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored by [WithSession].
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

// ActiveSessions reads sessions whose user still has a live account.
//
// A valid cookie for a deleted account reads as [ErrNoSession].
type ActiveSessions struct {
	Sessions *SessionManager
	Accounts *Service
}

func (a ActiveSessions) Read(r *http.Request) (Session, error) {
	s, err := a.Sessions.Read(r)
	if err != nil {
		return Session{}, err
	}

	if _, err := a.Accounts.User(r.Context(), s.UserID); err != nil {
		return Session{}, fmt.Errorf("%w: account %s: %w", ErrNoSession, s.UserID, err)
	}
	return s, nil
}
