package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

var spotifyTrackPattern = regexp.MustCompile(
	`^https?://open\.spotify\.com/(?:intl-[a-z]+/)?track/([A-Za-z0-9]+)`,
)

// ErrSpotifyDisabled is returned when no Spotify credentials are configured.
var ErrSpotifyDisabled = errors.New("spotify resolver is not configured")

// SpotifyResolver resolves Spotify track links to plain "artist title" search
// strings. The Lavalink node cannot load Spotify audio directly, so links are
// translated into searchable queries instead.
type SpotifyResolver struct {
	client *spotify.Client
}

// NewSpotifyResolver creates a resolver using the client-credentials flow.
// With empty credentials the resolver is created disabled: Matches still
// recognizes links, but SearchQuery fails and callers fall back to the raw
// query.
func NewSpotifyResolver(ctx context.Context, clientID, clientSecret string) *SpotifyResolver {
	if clientID == "" || clientSecret == "" {
		return &SpotifyResolver{}
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	return &SpotifyResolver{
		client: spotify.New(config.Client(ctx)),
	}
}

// Matches reports whether the query is a Spotify track link.
func (r *SpotifyResolver) Matches(query string) bool {
	return spotifyTrackPattern.MatchString(query)
}

// SearchQuery resolves a Spotify track link to an "artist title" search string.
func (r *SpotifyResolver) SearchQuery(ctx context.Context, url string) (string, error) {
	if r.client == nil {
		return "", ErrSpotifyDisabled
	}

	match := spotifyTrackPattern.FindStringSubmatch(url)
	if match == nil {
		return "", fmt.Errorf("not a Spotify track link: %s", url)
	}

	track, err := r.client.GetTrack(ctx, spotify.ID(match[1]))
	if err != nil {
		return "", fmt.Errorf("failed to fetch Spotify track metadata: %w", err)
	}

	artists := make([]string, len(track.Artists))
	for i, artist := range track.Artists {
		artists[i] = artist.Name
	}

	return strings.Join(artists, ", ") + " " + track.Name, nil
}
