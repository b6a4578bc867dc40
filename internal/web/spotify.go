package web

import (
	"errors"
	"net/http"

	"github.com/desertthunder/pulse/internal/auth"
	"github.com/desertthunder/pulse/internal/services"
	"github.com/desertthunder/pulse/internal/shared"
	"golang.org/x/oauth2"
)

type insightsData struct {
	Configured bool
	Connected  bool
	Error      string
	Insights   services.Insights
}

func (a *App) weeklyInsights(w http.ResponseWriter, r *http.Request) {
	s, _ := auth.FromContext(r.Context())
	data := insightsData{Configured: a.spotify != nil}

	if !data.Configured {
		a.render(w, r, http.StatusOK, "weekly_insights", "Weekly insights", data)
		return
	}

	token, ok := a.tokens.Get(s.UserID)
	if !ok {
		a.render(w, r, http.StatusOK, "weekly_insights", "Weekly insights", data)
		return
	}

	insights, err := services.Collect(r.Context(), a.spotify, token, services.DefaultTopLimit)
	switch {
	case errors.Is(err, shared.ErrTokenExpired):
		a.tokens.Delete(s.UserID)
		a.flash(w, auth.FlashInfo, "Your Spotify connection expired. Connect again to refresh your insights.")
		http.Redirect(w, r, "/weekly-insights", http.StatusSeeOther)
		return
	case err != nil:
		a.logger.Error("failed to load insights", "user", s.UserID, "err", err)
		data.Error = "Could not load your Spotify data right now."
		data.Connected = true
	default:
		data.Connected = true
		data.Insights = insights
	}

	a.render(w, r, http.StatusOK, "weekly_insights", "Weekly insights", data)
}

func (a *App) spotifyConnected(w http.ResponseWriter, r *http.Request, token *oauth2.Token) {
	s, _ := auth.FromContext(r.Context())
	a.tokens.Put(s.UserID, token)
	a.logger.Info("spotify connected", "user", s.UserID)
	a.redirectWithFlash(w, r, "/weekly-insights", auth.FlashSuccess, "Spotify connected.")
}

func (a *App) spotifyFailed(w http.ResponseWriter, r *http.Request, err error) {
	a.logger.Warn("spotify authorization failed", "err", err)
	a.redirectWithFlash(w, r, "/weekly-insights", auth.FlashError, "Spotify authorization failed.")
}
