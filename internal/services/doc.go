// Package services defines the [PlaylistService] interface for music streaming providers and implements it for Spotify.
//
// # Spotify Implementation
//
// [SpotifyService] wraps a [spotify.Client] from github.com/zmb3/spotify/v2.
// Credentials come from an explicit [shared.SpotifyConfig]; nothing is read from the environment here.
//
// The token is obtained from a [TokenProvider]:
//   - [HeadlessTokens] returns the token stored in the config file or environment
//   - the CLI's interactive provider runs the browser login through the internal/server callback handler
//
// The http client built by [spotifyauth.Authenticator.Client] refreshes expired tokens automatically.
//
// # Track Search
//
// [SpotifyService.SearchTrack] drops featured artists from the credit, queries "track:<title> artist:<artist>"
// and, when that finds nothing, retries with the title alone. No match is not an error.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrAuth] : token missing, rejected, or Authenticate() not called
//   - [shared.ErrAPI] : the remote service rejected a request
package services
