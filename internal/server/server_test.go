package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/pulse/internal/auth"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

func okHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, body)
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("method patterns", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle(http.MethodGet, "/home", okHandler("home"))
		r.Handle(http.MethodPost, "/login", okHandler("login"))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/home", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "home" {
			t.Errorf("expected home, got %d %q", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mark("first"), mark("second"))
		r.Handle(http.MethodGet, "/", okHandler("ok"), mark("route"))

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		want := "first,second,route"
		if got := strings.Join(order, ","); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	})

	t.Run("custom handler", func(t *testing.T) {
		r := NewBasicRouter()
		h := NewOAuthHandler(&fakeProvider{}, "/spotify", false, nil, nil)
		r.Handler(h)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/spotify/connect", nil))
		if rec.Code != http.StatusFound {
			t.Errorf("expected redirect from connect route, got %d", rec.Code)
		}
	})
}

func TestRecover(t *testing.T) {
	logger := log.New(io.Discard)
	h := Recover(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf strings.Builder
	logger := log.New(&buf)

	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))

	out := buf.String()
	for _, want := range []string{"/brew", "418", "GET"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log to contain %q, got %q", want, out)
		}
	}
}

func TestRateLimit(t *testing.T) {
	limiter := NewClientLimiter(rate.Limit(0.001), 2)
	h := RateLimit(limiter)(okHandler("ok"))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected 200,200,429 got %v", codes)
	}

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other clients should not be limited, got %d", rec.Code)
	}
}

type fakeSessions struct {
	session auth.Session
	err     error
}

func (f fakeSessions) Read(*http.Request) (auth.Session, error) { return f.session, f.err }

func TestRequireSession(t *testing.T) {
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := auth.FromContext(r.Context())
		if !ok {
			t.Error("expected session in context")
		}
		io.WriteString(w, s.Username)
	})

	t.Run("anonymous", func(t *testing.T) {
		h := RequireSession(fakeSessions{err: auth.ErrNoSession}, "/auth")(echo)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/auth?next=%2Fprofile" {
			t.Errorf("unexpected redirect %q", loc)
		}
	})

	t.Run("signed in", func(t *testing.T) {
		h := RequireSession(fakeSessions{session: auth.Session{UserID: "1", Username: "jane"}}, "/auth")(echo)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))

		if rec.Code != http.StatusOK || rec.Body.String() != "jane" {
			t.Errorf("expected jane, got %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("optional", func(t *testing.T) {
		h := LoadSession(fakeSessions{err: auth.ErrNoSession})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.FromContext(r.Context()); ok {
				t.Error("expected no session")
			}
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

type fakeProvider struct {
	code string
	err  error
}

func (f *fakeProvider) AuthURL(state string) string {
	return "https://accounts.example.com/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeProvider) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	f.code = code
	if f.err != nil {
		return nil, f.err
	}
	return &oauth2.Token{AccessToken: "access-" + code}, nil
}

func TestOAuthHandler(t *testing.T) {
	var (
		gotToken *oauth2.Token
		gotErr   error
	)
	complete := func(w http.ResponseWriter, r *http.Request, token *oauth2.Token) {
		gotToken = token
		w.WriteHeader(http.StatusNoContent)
	}
	fail := func(w http.ResponseWriter, r *http.Request, err error) {
		gotErr = err
		w.WriteHeader(http.StatusBadRequest)
	}

	connect := func(t *testing.T, h *OAuthHandler) *http.Cookie {
		t.Helper()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/spotify/connect", nil))

		if rec.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", rec.Code)
		}
		for _, c := range rec.Result().Cookies() {
			if c.Name == OAuthStateCookie {
				if !strings.Contains(rec.Header().Get("Location"), c.Value) {
					t.Errorf("redirect should carry state %s", c.Value)
				}
				return c
			}
		}
		t.Fatal("expected state cookie")
		return nil
	}

	t.Run("success", func(t *testing.T) {
		gotToken, gotErr = nil, nil
		provider := &fakeProvider{}
		h := NewOAuthHandler(provider, "/spotify", false, complete, fail)
		state := connect(t, h)

		req := httptest.NewRequest(http.MethodGet, "/spotify/callback?state="+state.Value+"&code=abc", nil)
		req.AddCookie(state)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d (%v)", rec.Code, gotErr)
		}
		if gotToken == nil || gotToken.AccessToken != "access-abc" {
			t.Errorf("unexpected token %+v", gotToken)
		}
	})

	t.Run("state mismatch", func(t *testing.T) {
		gotToken, gotErr = nil, nil
		provider := &fakeProvider{}
		h := NewOAuthHandler(provider, "/spotify", false, complete, fail)
		state := connect(t, h)

		req := httptest.NewRequest(http.MethodGet, "/spotify/callback?state=forged&code=abc", nil)
		req.AddCookie(state)
		h.ServeHTTP(httptest.NewRecorder(), req)

		if gotErr == nil || gotToken != nil {
			t.Error("expected failure for forged state")
		}
		if provider.code != "" {
			t.Error("code should not be exchanged on state mismatch")
		}
	})

	t.Run("missing cookie", func(t *testing.T) {
		gotToken, gotErr = nil, nil
		h := NewOAuthHandler(&fakeProvider{}, "/spotify", false, complete, fail)

		req := httptest.NewRequest(http.MethodGet, "/spotify/callback?state=x&code=abc", nil)
		h.ServeHTTP(httptest.NewRecorder(), req)
		if gotErr == nil {
			t.Error("expected failure without state cookie")
		}
	})

	t.Run("denied", func(t *testing.T) {
		gotToken, gotErr = nil, nil
		h := NewOAuthHandler(&fakeProvider{}, "/spotify", false, complete, fail)
		state := connect(t, h)

		req := httptest.NewRequest(http.MethodGet, "/spotify/callback?state="+state.Value+"&error=access_denied", nil)
		req.AddCookie(state)
		h.ServeHTTP(httptest.NewRecorder(), req)

		if gotErr == nil || !strings.Contains(gotErr.Error(), "access_denied") {
			t.Errorf("expected access_denied failure, got %v", gotErr)
		}
	})

	t.Run("exchange error", func(t *testing.T) {
		gotToken, gotErr = nil, nil
		exchangeErr := errors.New("bad code")
		h := NewOAuthHandler(&fakeProvider{err: exchangeErr}, "/spotify", false, complete, fail)
		state := connect(t, h)

		req := httptest.NewRequest(http.MethodGet, "/spotify/callback?state="+state.Value+"&code=abc", nil)
		req.AddCookie(state)
		h.ServeHTTP(httptest.NewRecorder(), req)

		if !errors.Is(gotErr, exchangeErr) {
			t.Errorf("expected wrapped exchange error, got %v", gotErr)
		}
	})
}
