// Package web implements the pulse web application: server-rendered pages, accounts, and profile pictures.
//
// # Architecture
//
// [App] wires the account service, session manager, image resolver and uploader, and the Spotify client into a
// [server.BasicRouter]. Pages are html/template files embedded in the binary and rendered inside a shared layout.
//
// # Routes
//
//	GET  /                        → /home when signed in, /auth otherwise
//	GET  /auth                    → login and sign-up forms
//	POST /signup, /login          → create account or sign in (rate limited per client)
//	GET  /logout                  → clear session
//	GET  /home, /profile, ...     → pages behind [server.RequireSession]
//	POST /profile/picture         → multipart upload, field "profile_picture"
//	GET  /u/{username...}         → read-only profile of any user
//	GET  /message                 → chat transcript with the pulse assistant
//	POST /message                 → send a message, field "message"; JSON reply when Accept asks for it
//	GET  /static/...              → embedded assets and uploaded pictures
//	GET  /spotify/connect         → start the Spotify authorization flow
//	GET  /spotify/callback        → finish it and remember the token
//	GET  /health                  → liveness
//
// # Profile Pictures
//
// The picture shown for a user comes from [images.Resolver.Resolve] with the slug of their username. Uploads are
// bounded by [http.MaxBytesReader] and every outcome is reported with a flash message and a redirect to /profile;
// validation failures never produce a 500.
package web

import (
	"errors"
	"html/template"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/pulse/internal/auth"
	"github.com/desertthunder/pulse/internal/chat"
	"github.com/desertthunder/pulse/internal/images"
	"github.com/desertthunder/pulse/internal/server"
	"github.com/desertthunder/pulse/internal/services"
	"github.com/desertthunder/pulse/internal/shared"
	"golang.org/x/time/rate"
)

// SpotifyProvider authorizes users and reads their listening history.
type SpotifyProvider interface {
	server.OAuthProvider
	services.InsightsSource
}

// Deps holds the collaborators of an [App].
type Deps struct {
	Config   *shared.Config
	Logger   *log.Logger
	Accounts *auth.Service
	Sessions *auth.SessionManager
	Store    images.Store
	Spotify  SpotifyProvider // nil disables the Spotify pages
	Tokens   *services.TokenStore
	Chat     *chat.Bot // nil starts a fresh assistant
}

// App is the pulse web application.
type App struct {
	config    *shared.Config
	logger    *log.Logger
	accounts  *auth.Service
	sessions  *auth.SessionManager
	store     images.Store
	resolver  *images.Resolver
	uploader  *images.Uploader
	spotify   SpotifyProvider
	tokens    *services.TokenStore
	chat      *chat.Bot
	templates map[string]*template.Template
	handler   http.Handler
}

// NewApp builds the application and its routes.
func NewApp(d Deps) (*App, error) {
	switch {
	case d.Config == nil:
		return nil, errors.New("web: config is required")
	case d.Accounts == nil || d.Sessions == nil:
		return nil, errors.New("web: accounts and sessions are required")
	case d.Store == nil:
		return nil, errors.New("web: image store is required")
	}

	logger := d.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	tokens := d.Tokens
	if tokens == nil {
		tokens = services.NewTokenStore()
	}

	bot := d.Chat
	if bot == nil {
		bot = chat.NewBot(shared.WithLogger(logger, "component", "chat"))
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	storage := d.Config.Storage
	a := &App{
		config:   d.Config,
		logger:   logger,
		accounts: d.Accounts,
		sessions: d.Sessions,
		store:    d.Store,
		resolver: images.NewResolver(d.Store, images.ResolverOptions{
			BaseURL:               storage.UploadsURL(),
			Placeholder:           storage.PlaceholderURL(),
			DisableLatestFallback: !storage.LatestFallback,
			Logger:                shared.WithLogger(logger, "component", "resolver"),
		}),
		uploader:  images.NewUploader(d.Store, shared.WithLogger(logger, "component", "uploader")),
		spotify:   d.Spotify,
		tokens:    tokens,
		chat:      bot,
		templates: templates,
	}

	a.handler = a.routes()
	return a, nil
}

// ServeHTTP implements [http.Handler].
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// Resolver exposes the picture resolver used by the pages.
func (a *App) Resolver() *images.Resolver { return a.resolver }

func (a *App) routes() http.Handler {
	r := server.NewBasicRouter()
	r.Use(server.Recover(a.logger), server.RequestLogger(shared.WithLogger(a.logger, "component", "http")))

	active := auth.ActiveSessions{Sessions: a.sessions, Accounts: a.accounts}
	signedIn := server.RequireSession(active, "/auth")
	optional := server.LoadSession(active)

	var throttle []server.Middleware
	if a.config.Server.LoginRate > 0 {
		limiter := server.NewClientLimiter(rate.Limit(a.config.Server.LoginRate), a.config.Server.LoginBurst)
		throttle = append(throttle, server.RateLimit(limiter))
	}

	r.HandleFunc(http.MethodGet, "/{$}", a.index, optional)
	r.HandleFunc(http.MethodGet, "/health", a.health)
	r.HandleFunc(http.MethodGet, "/auth", a.authPage, optional)
	r.HandleFunc(http.MethodPost, "/signup", a.signUp, throttle...)
	r.HandleFunc(http.MethodPost, "/login", a.login, throttle...)
	r.HandleFunc(http.MethodGet, "/logout", a.logout)

	r.HandleFunc(http.MethodGet, "/home", a.home, signedIn)
	r.HandleFunc(http.MethodGet, "/profile", a.profile, signedIn)
	r.HandleFunc(http.MethodPost, "/profile/picture", a.uploadPicture, signedIn)
	r.HandleFunc(http.MethodGet, "/u/{username...}", a.userProfile, optional)
	r.HandleFunc(http.MethodGet, "/settings", a.simplePage("settings", "Settings"), signedIn)
	r.HandleFunc(http.MethodPost, "/settings/delete-account", a.deleteAccount, signedIn)
	r.HandleFunc(http.MethodGet, "/weekly-insights", a.weeklyInsights, signedIn)
	r.HandleFunc(http.MethodGet, "/message", a.messages, signedIn)
	r.HandleFunc(http.MethodPost, "/message", a.sendMessage, signedIn)

	for _, p := range simplePages {
		r.HandleFunc(http.MethodGet, p.path, a.simplePage(p.template, p.title), signedIn)
	}

	r.Handler(newStaticHandler(a.store, a.config.Storage.UploadsURL(), a.logger))

	if a.spotify != nil {
		r.Handler(server.NewOAuthHandler(a.spotify, "/spotify", a.config.Server.SecureCookies, a.spotifyConnected, a.spotifyFailed), signedIn)
	}

	return r
}

var simplePages = []struct {
	path, template, title string
}{
	{"/events", "events", "Events"},
	{"/concert-map", "concert_map", "Concert map"},
	{"/matchmaking", "matchmaking", "Matchmaking"},
	{"/blocked-accounts", "blocked_accounts", "Blocked accounts"},
	{"/report", "report", "Report a problem"},
}
