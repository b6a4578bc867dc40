// Spotify Web API implementation of [InsightsSource]
//
// Response types are trimmed to the fields pulse reads; see https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/pulse/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// DefaultTopLimit is the number of items requested when no limit is given.
	DefaultTopLimit = 10
	maxTopLimit     = 50
)

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Popularity int             `json:"popularity"`
}

type spotifyPage[T any] struct {
	Items []T `json:"items"`
}

// SpotifyClient reads a user's top artists and tracks from the Spotify Web API.
// Uses [oauth2] for the authorization code flow and a shared [rate.Limiter] for outgoing requests.
type SpotifyClient struct {
	config     *oauth2.Config
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// SpotifyOption customizes a [SpotifyClient].
type SpotifyOption func(*SpotifyClient)

// WithSpotifyBaseURL points API calls at another host.
func WithSpotifyBaseURL(u string) SpotifyOption {
	return func(c *SpotifyClient) { c.baseURL = u }
}

// WithSpotifyHTTPClient sets the transport used for API and token requests.
func WithSpotifyHTTPClient(h *http.Client) SpotifyOption {
	return func(c *SpotifyClient) { c.httpClient = h }
}

// WithSpotifyRateLimit caps outgoing requests per second.
func WithSpotifyRateLimit(r rate.Limit, burst int) SpotifyOption {
	return func(c *SpotifyClient) { c.limiter = rate.NewLimiter(r, burst) }
}

// NewSpotifyClient creates a client from the configured credentials.
func NewSpotifyClient(creds shared.SpotifyConfig, opts ...SpotifyOption) (*SpotifyClient, error) {
	if creds.ClientID == "" {
		return nil, fmt.Errorf("%w: spotify client_id", shared.ErrMissingCredentials)
	}
	if creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_secret", shared.ErrMissingCredentials)
	}
	if creds.RedirectURI == "" {
		return nil, fmt.Errorf("%w: spotify redirect_uri", shared.ErrMissingCredentials)
	}

	c := &SpotifyClient{
		config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURI,
			Scopes: []string{
				"user-read-private",
				"user-read-email",
				"user-top-read",
			},
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyAuthURL,
				TokenURL: spotifyTokenURL,
			},
		},
		baseURL:    spotifyBaseURL,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(10), 5),
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *SpotifyClient) Name() string {
	return "Spotify"
}

// AuthURL returns the OAuth2 authorization URL for user login.
func (c *SpotifyClient) AuthURL(state string) string {
	return c.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a token.
func (c *SpotifyClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := c.config.Exchange(c.withHTTPClient(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}
	return token, nil
}

func (c *SpotifyClient) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// doRequest performs an authenticated GET against the Spotify API.
func (c *SpotifyClient) doRequest(ctx context.Context, token *oauth2.Token, endpoint string, result any) error {
	if token == nil || token.AccessToken == "" {
		return shared.ErrNotAuthenticated
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := c.config.Client(c.withHTTPClient(ctx), token)
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return shared.ErrTokenExpired
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: retry after %s", shared.ErrServiceUnavailable, resp.Header.Get("Retry-After"))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: spotify status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func topQuery(limit int) string {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	limit = min(limit, maxTopLimit)

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("time_range", "short_term")
	return q.Encode()
}

// TopArtists returns the user's most listened artists of the last weeks.
func (c *SpotifyClient) TopArtists(ctx context.Context, token *oauth2.Token, limit int) ([]Artist, error) {
	var page spotifyPage[SpotifyArtist]
	if err := c.doRequest(ctx, token, "/me/top/artists?"+topQuery(limit), &page); err != nil {
		return nil, err
	}

	artists := make([]Artist, 0, len(page.Items))
	for _, a := range page.Items {
		artists = append(artists, Artist{ID: a.ID, Name: a.Name, Genres: a.Genres})
	}
	return artists, nil
}

// TopTracks returns the user's most played tracks of the last weeks.
func (c *SpotifyClient) TopTracks(ctx context.Context, token *oauth2.Token, limit int) ([]Track, error) {
	var page spotifyPage[SpotifyTrack]
	if err := c.doRequest(ctx, token, "/me/top/tracks?"+topQuery(limit), &page); err != nil {
		return nil, err
	}

	tracks := make([]Track, 0, len(page.Items))
	for _, t := range page.Items {
		track := Track{ID: t.ID, Title: t.Name, Popularity: t.Popularity}
		for _, a := range t.Artists {
			track.Artists = append(track.Artists, a.Name)
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}
