// package services defines the PlaylistService interface for music streaming APIs
//
// Spotify (via github.com/zmb3/spotify/v2)
package services

import (
	"context"

	"github.com/desertthunder/chartx/internal/models"
	"golang.org/x/oauth2"
)

// PlaylistService is the capability the playlist sink needs from a music service.
type PlaylistService interface {
	// Authenticate obtains and verifies a credential. It must succeed before any other call.
	Authenticate(ctx context.Context) (*oauth2.Token, error)

	// SearchTrack returns the best catalog match for title and artist, or nil when nothing matches.
	SearchTrack(ctx context.Context, title, artist string) (*models.Track, error)

	// CreatePlaylist creates a playlist owned by the authenticated user.
	CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error)

	// AddTracks appends tracks to the end of a playlist.
	AddTracks(ctx context.Context, playlistID string, trackIDs ...string) error

	// ReplaceTracks sets the playlist contents to trackIDs; no IDs clears it.
	ReplaceTracks(ctx context.Context, playlistID string, trackIDs ...string) error

	// UpdateDetails renames a playlist and replaces its description.
	UpdateDetails(ctx context.Context, playlistID, name, description string) error

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// TokenProvider supplies the OAuth2 token used to authenticate.
//
// The interactive provider runs a browser login; the headless one returns a stored token.
type TokenProvider interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

// TokenProviderFunc adapts a function to [TokenProvider].
type TokenProviderFunc func(ctx context.Context) (*oauth2.Token, error)

func (f TokenProviderFunc) Token(ctx context.Context) (*oauth2.Token, error) {
	return f(ctx)
}
