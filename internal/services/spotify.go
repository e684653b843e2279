// Spotify implementation of [PlaylistService]
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// DefaultRedirectURI is used when the config leaves redirect_uri empty.
const DefaultRedirectURI = "http://127.0.0.1:8888/callback"

// Scopes requested from Spotify; enough to create and edit the user's playlists.
var Scopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
}

// SpotifyOpts configures a [SpotifyService].
type SpotifyOpts struct {
	Credentials shared.SpotifyConfig
	Tokens      TokenProvider
	Logger      *log.Logger
	BaseURL     string // overrides the Web API base URL, used by tests
	HTTPClient  *http.Client
	Public      bool // visibility of created playlists
}

// SpotifyService implements [PlaylistService] for the Spotify Web API.
type SpotifyService struct {
	auth       *spotifyauth.Authenticator
	tokens     TokenProvider
	logger     *log.Logger
	baseURL    string
	httpClient *http.Client
	public     bool

	client *spotify.Client
	userID string
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 client credentials.
func NewSpotifyService(opts SpotifyOpts) (*SpotifyService, error) {
	creds := opts.Credentials
	if creds.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}
	if creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}
	if creds.RedirectURI == "" {
		creds.RedirectURI = DefaultRedirectURI
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	if opts.BaseURL != "" && !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}
	if opts.Tokens == nil {
		opts.Tokens = HeadlessTokens(creds)
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(creds.ClientID),
		spotifyauth.WithClientSecret(creds.ClientSecret),
		spotifyauth.WithRedirectURL(creds.RedirectURI),
		spotifyauth.WithScopes(Scopes...),
	)

	return &SpotifyService{
		auth:       auth,
		tokens:     opts.Tokens,
		logger:     shared.WithLogger(opts.Logger, "service", "spotify"),
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		public:     opts.Public,
	}, nil
}

// HeadlessTokens returns a [TokenProvider] that only hands out the token stored in creds.
func HeadlessTokens(creds shared.SpotifyConfig) TokenProvider {
	return TokenProviderFunc(func(ctx context.Context) (*oauth2.Token, error) {
		token := creds.Token()
		if token == nil {
			return nil, fmt.Errorf("%w: no stored Spotify token; run `chartx auth` on a machine with a browser first", shared.ErrAuth)
		}
		return token, nil
	})
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Authenticator exposes the OAuth2 authenticator for the interactive login flow.
func (s *SpotifyService) Authenticator() *spotifyauth.Authenticator {
	return s.auth
}

// Authenticate obtains a token from the provider and verifies it by fetching the current user.
func (s *SpotifyService) Authenticate(ctx context.Context) (*oauth2.Token, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrAuth) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrAuth, err)
	}
	if token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuth)
	}

	httpCtx := ctx
	if s.httpClient != nil {
		httpCtx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}

	var clientOpts []spotify.ClientOption
	if s.baseURL != "" {
		clientOpts = append(clientOpts, spotify.WithBaseURL(s.baseURL))
	}
	client := spotify.New(s.auth.Client(httpCtx, token), clientOpts...)

	user, err := client.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuth, err)
	}

	s.client = client
	s.userID = user.ID
	s.logger.Info("authenticated with spotify", "user", user.DisplayName, "id", user.ID)

	return token, nil
}

func (s *SpotifyService) ready() error {
	if s.client == nil {
		return fmt.Errorf("%w: %w", shared.ErrAuth, shared.ErrNotAuthenticated)
	}
	return nil
}

// SearchTrack searches for a track by title and primary artist, falling back to the title alone.
func (s *SpotifyService) SearchTrack(ctx context.Context, title, artist string) (*models.Track, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	queries := []string{
		fmt.Sprintf("track:%s artist:%s", title, shared.PrimaryArtist(artist)),
		title,
	}

	for i, q := range queries {
		results, err := s.client.Search(ctx, q, spotify.SearchTypeTrack, spotify.Limit(1))
		if err != nil {
			return nil, fmt.Errorf("%w: search %q: %v", shared.ErrAPI, q, err)
		}

		if results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
			continue
		}

		track := toTrack(results.Tracks.Tracks[0])
		if i == 0 {
			s.logger.Debug("found", "title", track.Title, "artist", track.Artist)
		} else {
			s.logger.Debug("found close match", "title", track.Title, "artist", track.Artist)
		}
		return &track, nil
	}

	return nil, nil
}

// CreatePlaylist creates a playlist for the authenticated user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	pl, err := s.client.CreatePlaylistForUser(ctx, s.userID, name, description, s.public, false)
	if err != nil {
		return nil, fmt.Errorf("%w: create playlist: %v", shared.ErrAPI, err)
	}

	return &models.Playlist{ID: string(pl.ID), Name: pl.Name, Description: pl.Description}, nil
}

// AddTracks appends tracks to a playlist.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, trackIDs ...string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if len(trackIDs) == 0 {
		return nil
	}

	if _, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), toIDs(trackIDs)...); err != nil {
		return fmt.Errorf("%w: add tracks to %s: %v", shared.ErrAPI, playlistID, err)
	}
	return nil
}

// ReplaceTracks replaces every track of a playlist.
func (s *SpotifyService) ReplaceTracks(ctx context.Context, playlistID string, trackIDs ...string) error {
	if err := s.ready(); err != nil {
		return err
	}

	if err := s.client.ReplacePlaylistTracks(ctx, spotify.ID(playlistID), toIDs(trackIDs)...); err != nil {
		return fmt.Errorf("%w: replace tracks of %s: %v", shared.ErrAPI, playlistID, err)
	}
	return nil
}

// UpdateDetails changes a playlist's name and description.
func (s *SpotifyService) UpdateDetails(ctx context.Context, playlistID, name, description string) error {
	if err := s.ready(); err != nil {
		return err
	}

	id := spotify.ID(playlistID)
	if err := s.client.ChangePlaylistName(ctx, id, name); err != nil {
		return fmt.Errorf("%w: rename playlist %s: %v", shared.ErrAPI, playlistID, err)
	}
	if err := s.client.ChangePlaylistDescription(ctx, id, description); err != nil {
		return fmt.Errorf("%w: describe playlist %s: %v", shared.ErrAPI, playlistID, err)
	}
	return nil
}

func toTrack(t spotify.FullTrack) models.Track {
	track := models.Track{
		ID:    string(t.ID),
		Title: t.Name,
		URI:   string(t.URI),
	}
	if len(t.Artists) > 0 {
		track.Artist = t.Artists[0].Name
	}
	return track
}

func toIDs(ids []string) []spotify.ID {
	out := make([]spotify.ID, len(ids))
	for i, id := range ids {
		out[i] = spotify.ID(id)
	}
	return out
}
