// package services talks to the music providers pulse reads listening data from
package services

import (
	"cmp"
	"context"
	"slices"

	"golang.org/x/oauth2"
)

// InsightsSource fetches a user's listening history for a given access token.
type InsightsSource interface {
	TopArtists(ctx context.Context, token *oauth2.Token, limit int) ([]Artist, error)
	TopTracks(ctx context.Context, token *oauth2.Token, limit int) ([]Track, error)
}

// Artist is a provider-independent artist.
type Artist struct {
	ID     string
	Name   string
	Genres []string
}

// Track is a provider-independent track.
type Track struct {
	ID         string
	Title      string
	Artists    []string
	Popularity int
}

// GenreCount is the number of top artists tagged with a genre.
type GenreCount struct {
	Genre string
	Count int
}

// Insights summarizes a user's listening habits.
type Insights struct {
	TopArtists []Artist
	TopTracks  []Track
	TopGenres  []GenreCount
}

// BuildInsights aggregates genres across artists, ordered by count descending then name.
func BuildInsights(artists []Artist, tracks []Track) Insights {
	counts := make(map[string]int)
	for _, a := range artists {
		seen := make(map[string]bool, len(a.Genres))
		for _, g := range a.Genres {
			if g == "" || seen[g] {
				continue
			}
			seen[g] = true
			counts[g]++
		}
	}

	genres := make([]GenreCount, 0, len(counts))
	for g, n := range counts {
		genres = append(genres, GenreCount{Genre: g, Count: n})
	}
	slices.SortFunc(genres, func(a, b GenreCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Genre, b.Genre)
	})

	return Insights{TopArtists: artists, TopTracks: tracks, TopGenres: genres}
}

// Collect fetches top artists and tracks from src and builds [Insights].
func Collect(ctx context.Context, src InsightsSource, token *oauth2.Token, limit int) (Insights, error) {
	artists, err := src.TopArtists(ctx, token, limit)
	if err != nil {
		return Insights{}, err
	}

	tracks, err := src.TopTracks(ctx, token, limit)
	if err != nil {
		return Insights{}, err
	}

	return BuildInsights(artists, tracks), nil
}
