package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/desertthunder/pulse/internal/auth"
	"github.com/desertthunder/pulse/internal/services"
	"github.com/desertthunder/pulse/internal/shared"
	"github.com/desertthunder/pulse/internal/web"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 5 * time.Second

// Serve runs the web application until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.Validate(); err != nil {
		return err
	}

	db, closeDB, err := r.openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}

	sessions, err := r.sessionManager()
	if err != nil {
		return err
	}

	app, err := web.NewApp(web.Deps{
		Config:   r.config,
		Logger:   r.logger,
		Accounts: r.accounts(db),
		Sessions: sessions,
		Store:    store,
		Spotify:  r.spotifyClient(),
		Tokens:   services.NewTokenStore(),
	})
	if err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}

	srv := &http.Server{
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	url := "http://" + listener.Addr().String()
	r.logger.Info("server listening", "url", url, "uploads", r.config.Storage.UploadsPath())

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("could not open browser", "error", err)
		}
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// sessionManager signs with server.session_secret, or a random per-process secret when unset.
func (r *Runner) sessionManager() (*auth.SessionManager, error) {
	secret := r.config.Server.SessionSecret
	if secret == "" {
		generated, err := shared.RandomSecret(32)
		if err != nil {
			return nil, err
		}
		secret = generated
		r.logger.Warn("server.session_secret is empty; sessions will not survive a restart")
	}

	return auth.NewSessionManager(secret, auth.DefaultSessionTTL, auth.CookieOptions{
		Secure: r.config.Server.SecureCookies,
	})
}

// spotifyClient returns nil when credentials are missing or still the example placeholders.
func (r *Runner) spotifyClient() web.SpotifyProvider {
	creds := r.config.Credentials.Spotify
	if strings.HasPrefix(creds.ClientID, "your_") || strings.HasPrefix(creds.ClientSecret, "your_") {
		r.logger.Info("spotify credentials not configured; weekly insights disabled")
		return nil
	}

	client, err := services.NewSpotifyClient(creds)
	if err != nil {
		r.logger.Info("spotify disabled", "reason", err)
		return nil
	}
	return client
}
