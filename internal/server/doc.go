// Package server runs the short-lived local HTTP listener that receives the Spotify OAuth redirect.
//
// # Router Infrastructure
//
// [BasicRouter] wraps [http.ServeMux] with method filtering and a [Middleware] stack.
// Middleware is applied in reverse order (last added executes first), following the standard Go pattern.
// [Logging] and [Recover] are the stock middleware; both log through charmbracelet/log.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the authorization code callback. It checks the state parameter,
// trades the code for a token through an [Exchanger] and delivers exactly one [OAuthResult] on its channel.
// Later callbacks are rejected.
//
// # Lifecycle
//
// [Listen] binds the address before returning so a busy port fails immediately, then serves in the background.
// [AwaitToken] blocks until the callback arrives, the context is cancelled, or the timeout elapses.
package server
