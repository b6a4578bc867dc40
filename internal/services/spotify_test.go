package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/pulse/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

func testCredentials() shared.SpotifyConfig {
	return shared.SpotifyConfig{
		ClientID:     "test_client_id",
		ClientSecret: "test_client_secret",
		RedirectURI:  "http://127.0.0.1:5000/spotify/callback",
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *SpotifyClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewSpotifyClient(testCredentials(),
		WithSpotifyBaseURL(srv.URL),
		WithSpotifyHTTPClient(srv.Client()),
		WithSpotifyRateLimit(rate.Inf, 1),
	)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func TestSpotifyClient(t *testing.T) {
	token := &oauth2.Token{AccessToken: "test_access_token"}

	t.Run("NewSpotifyClient", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			c, err := NewSpotifyClient(testCredentials())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if c.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", c.Name())
			}
		})

		for name, mutate := range map[string]func(*shared.SpotifyConfig){
			"Missing Client ID":     func(c *shared.SpotifyConfig) { c.ClientID = "" },
			"Missing Client Secret": func(c *shared.SpotifyConfig) { c.ClientSecret = "" },
			"Missing Redirect URI":  func(c *shared.SpotifyConfig) { c.RedirectURI = "" },
		} {
			t.Run(name, func(t *testing.T) {
				creds := testCredentials()
				mutate(&creds)
				if _, err := NewSpotifyClient(creds); !errors.Is(err, shared.ErrMissingCredentials) {
					t.Errorf("expected ErrMissingCredentials, got %v", err)
				}
			})
		}
	})

	t.Run("AuthURL", func(t *testing.T) {
		c, _ := NewSpotifyClient(testCredentials())
		authURL := c.AuthURL("test_state")

		for _, want := range []string{"accounts.spotify.com", "test_client_id", "test_state", "user-top-read"} {
			if !strings.Contains(authURL, want) {
				t.Errorf("auth URL should contain %q, got %s", want, authURL)
			}
		}
	})

	t.Run("TopArtists", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me/top/artists" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test_access_token" {
				t.Errorf("unexpected authorization header %q", got)
			}
			if got := r.URL.Query().Get("limit"); got != "5" {
				t.Errorf("expected limit 5, got %s", got)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"id": "a1", "name": "Khruangbin", "genres": []string{"psychedelic", "funk"}, "popularity": 70},
					{"id": "a2", "name": "Tame Impala", "genres": []string{"psychedelic"}},
				},
			})
		})

		artists, err := c.TopArtists(context.Background(), token, 5)
		if err != nil {
			t.Fatalf("failed to get top artists: %v", err)
		}
		if len(artists) != 2 || artists[0].Name != "Khruangbin" || len(artists[0].Genres) != 2 {
			t.Errorf("unexpected artists %+v", artists)
		}
	})

	t.Run("TopTracks", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("limit"); got != "50" {
				t.Errorf("expected limit clamped to 50, got %s", got)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"id": "t1", "name": "Time (You and I)", "popularity": 55, "artists": []map[string]any{{"name": "Khruangbin"}}},
				},
			})
		})

		tracks, err := c.TopTracks(context.Background(), token, 500)
		if err != nil {
			t.Fatalf("failed to get top tracks: %v", err)
		}
		if len(tracks) != 1 || tracks[0].Title != "Time (You and I)" || tracks[0].Artists[0] != "Khruangbin" {
			t.Errorf("unexpected tracks %+v", tracks)
		}
		if tracks[0].Popularity != 55 {
			t.Errorf("expected popularity 55, got %d", tracks[0].Popularity)
		}
	})

	t.Run("Errors", func(t *testing.T) {
		tests := []struct {
			name   string
			status int
			want   error
		}{
			{"unauthorized", http.StatusUnauthorized, shared.ErrTokenExpired},
			{"throttled", http.StatusTooManyRequests, shared.ErrServiceUnavailable},
			{"server error", http.StatusBadGateway, shared.ErrAPIRequest},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
				})
				if _, err := c.TopArtists(context.Background(), token, 0); !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}

		t.Run("no token", func(t *testing.T) {
			c, _ := NewSpotifyClient(testCredentials())
			if _, err := c.TopTracks(context.Background(), nil, 0); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("bad json", func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("{not json"))
			})
			if _, err := c.TopTracks(context.Background(), token, 0); err == nil {
				t.Error("expected decode error")
			}
		})
	})

	t.Run("Exchange", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Errorf("bad token request: %v", err)
				return
			}
			if r.Form.Get("code") != "the-code" {
				t.Errorf("expected code the-code, got %s", r.Form.Get("code"))
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"fresh","token_type":"Bearer","refresh_token":"r","expires_in":3600}`))
		})
		c.config.Endpoint.TokenURL = c.baseURL + "/api/token"

		tok, err := c.Exchange(context.Background(), "the-code")
		if err != nil {
			t.Fatalf("exchange failed: %v", err)
		}
		if tok.AccessToken != "fresh" || tok.RefreshToken != "r" {
			t.Errorf("unexpected token %+v", tok)
		}
	})
}

func TestBuildInsights(t *testing.T) {
	artists := []Artist{
		{Name: "A", Genres: []string{"rock", "indie"}},
		{Name: "B", Genres: []string{"indie", "pop", "indie"}},
		{Name: "C", Genres: []string{"jazz", "rock"}},
		{Name: "D"},
	}
	tracks := []Track{{Title: "t"}}

	got := BuildInsights(artists, tracks)

	want := []GenreCount{{"indie", 2}, {"rock", 2}, {"jazz", 1}, {"pop", 1}}
	if len(got.TopGenres) != len(want) {
		t.Fatalf("expected %d genres, got %+v", len(want), got.TopGenres)
	}
	for i := range want {
		if got.TopGenres[i] != want[i] {
			t.Errorf("genre %d: expected %+v, got %+v", i, want[i], got.TopGenres[i])
		}
	}
	if len(got.TopArtists) != 4 || len(got.TopTracks) != 1 {
		t.Error("artists and tracks should pass through")
	}

	if empty := BuildInsights(nil, nil); len(empty.TopGenres) != 0 {
		t.Errorf("expected no genres, got %+v", empty.TopGenres)
	}
}

type stubSource struct {
	artists []Artist
	err     error
}

func (s stubSource) TopArtists(context.Context, *oauth2.Token, int) ([]Artist, error) {
	return s.artists, s.err
}

func (s stubSource) TopTracks(context.Context, *oauth2.Token, int) ([]Track, error) {
	return []Track{{Title: "x"}}, nil
}

func TestCollect(t *testing.T) {
	ins, err := Collect(context.Background(), stubSource{artists: []Artist{{Genres: []string{"soul"}}}}, nil, 10)
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(ins.TopGenres) != 1 || ins.TopGenres[0].Genre != "soul" {
		t.Errorf("unexpected insights %+v", ins)
	}

	boom := errors.New("boom")
	if _, err := Collect(context.Background(), stubSource{err: boom}, nil, 10); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestTokenStore(t *testing.T) {
	s := NewTokenStore()
	if _, ok := s.Get("u"); ok {
		t.Error("expected empty store")
	}

	s.Put("u", &oauth2.Token{AccessToken: "a"})
	s.Put("u", &oauth2.Token{AccessToken: "b"})
	if tok, ok := s.Get("u"); !ok || tok.AccessToken != "b" {
		t.Errorf("expected latest token, got %+v", tok)
	}

	s.Delete("u")
	if _, ok := s.Get("u"); ok {
		t.Error("expected token to be deleted")
	}
}
