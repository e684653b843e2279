package main

import (
	"context"
	"fmt"
	"net/url"

	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/server"
	"github.com/desertthunder/chartx/internal/services"
	"github.com/desertthunder/chartx/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// oauthFlow is the part of the Spotify authenticator the browser login needs.
type oauthFlow interface {
	server.Exchanger
	AuthURL(state string, opts ...oauth2.AuthCodeOption) string
}

// spotifyService is the default [ServiceFactory].
//
// Headless runs only use the stored token. Interactive runs reuse a stored token when there is one
// and otherwise log in through the browser, saving the new token to the config file.
func (r *Runner) spotifyService(ctx context.Context, creds shared.SpotifyConfig, mode models.AuthMode) (services.PlaylistService, error) {
	if !creds.HasClient() {
		return nil, fmt.Errorf("%w: %w: set client_id and client_secret in %s or SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET",
			shared.ErrAuth, shared.ErrMissingCredentials, r.configPath)
	}

	creds.RedirectURI = r.redirectURI(creds.RedirectURI)
	opts := services.SpotifyOpts{Credentials: creds, Logger: r.logger, HTTPClient: r.httpClient}
	if mode == models.AuthHeadless {
		svc, err := services.NewSpotifyService(opts)
		if err != nil {
			return nil, err
		}
		return svc, nil
	}

	var svc *services.SpotifyService
	opts.Tokens = services.TokenProviderFunc(func(ctx context.Context) (*oauth2.Token, error) {
		if token := creds.Token(); token != nil {
			r.logger.Debug("using stored spotify token")
			return token, nil
		}
		return r.login(ctx, svc.Authenticator(), creds.RedirectURI)
	})

	svc, err := services.NewSpotifyService(opts)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// Auth performs the browser login and stores the token for later headless runs.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	if err := r.setup(cmd); err != nil {
		return err
	}

	creds := r.config.Credentials.Spotify
	creds.RedirectURI = r.redirectURI(creds.RedirectURI)
	svc, err := services.NewSpotifyService(services.SpotifyOpts{Credentials: creds, Logger: r.logger})
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuth, err)
	}

	if _, err := r.login(ctx, svc.Authenticator(), creds.RedirectURI); err != nil {
		return err
	}

	return r.writePlain("You can now run headless: chartx --headless\n")
}

// login runs the authorization code flow: a local callback server, the browser, and a bounded wait.
func (r *Runner) login(ctx context.Context, flow oauthFlow, redirectURI string) (*oauth2.Token, error) {
	addr, path, err := r.callbackAddr(redirectURI)
	if err != nil {
		return nil, err
	}

	logger := shared.WithLogger(r.logger, "component", "oauth")
	state := shared.GenerateState()
	handler := server.NewOAuthHandler(flow, state, path)
	router := server.NewBasicRouter(server.Recover(logger), server.Logging(logger))
	router.Handler(handler)

	srv, err := server.Listen(addr, router, logger)
	if err != nil {
		return nil, err
	}
	defer srv.Close()
	logger.Info("started callback server", "addr", srv.Addr(), "path", path)

	authURL := flow.AuthURL(state)
	if err := r.writePlain("→ Opening browser for Spotify authorization...\n"); err != nil {
		return nil, err
	}
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser automatically", "error", err)
		if err := r.writePlain("⚠ Could not open browser automatically.\nPlease open this URL in your browser:\n%s\n\n", authURL); err != nil {
			return nil, err
		}
	}
	if err := r.writePlain("→ Waiting for authorization (%v timeout)...\n", r.authTimeout); err != nil {
		return nil, err
	}

	token, err := server.AwaitToken(ctx, srv, handler, r.authTimeout)
	if err != nil {
		return nil, err
	}

	if err := r.saveToken(token); err != nil {
		r.logger.Warn("token not saved, the next run will ask again", "error", err)
	}
	if err := r.writePlain("✓ Authorization successful\n"); err != nil {
		return nil, err
	}
	return token, nil
}

// redirectURI returns uri, or the callback URL on the [server] address when uri is empty.
func (r *Runner) redirectURI(uri string) string {
	if uri != "" {
		return uri
	}
	return "http://" + r.config.Server.Addr() + server.DefaultCallbackPath
}

// callbackAddr derives the listen address and path from the redirect URI, falling back to the [server] config.
func (r *Runner) callbackAddr(redirectURI string) (string, string, error) {
	if redirectURI == "" {
		return r.config.Server.Addr(), server.DefaultCallbackPath, nil
	}

	u, err := url.Parse(redirectURI)
	if err != nil || u.Host == "" {
		return "", "", fmt.Errorf("%w: invalid redirect URI %q", shared.ErrInvalidConfig, redirectURI)
	}
	if u.Port() == "" {
		return r.config.Server.Addr(), u.Path, nil
	}
	return u.Host, u.Path, nil
}

func (r *Runner) saveToken(token *oauth2.Token) error {
	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return err
	}
	if r.configPath == "" {
		return fmt.Errorf("%w: no config path", shared.ErrMissingConfig)
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return err
	}
	r.logger.Info("saved spotify token", "path", r.configPath)
	return nil
}
