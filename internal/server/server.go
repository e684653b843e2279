// package server contains the router, middleware & OAuth callback handler for the login flow
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chartx/internal/shared"
	"golang.org/x/oauth2"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows which paths it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Server is a running callback listener.
type Server struct {
	httpServer *http.Server
	errs       chan error
	logger     *log.Logger
	addr       string
}

// Listen binds addr and serves h in a background goroutine.
func Listen(addr string, h http.Handler, logger *log.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot listen on %s: %v", shared.ErrAuth, addr, err)
	}

	s := &Server{
		httpServer: &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second},
		errs:       make(chan error, 1),
		logger:     logger,
		addr:       ln.Addr().String(),
	}

	go func() {
		logger.Debug("callback server listening", "addr", s.addr)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errs <- err
		}
	}()

	return s, nil
}

// Addr is the bound address, useful when listening on port 0.
func (s *Server) Addr() string {
	return s.addr
}

// Errors reports a failure of the serve loop.
func (s *Server) Errors() <-chan error {
	return s.errs
}

// Close shuts the server down, waiting up to five seconds for in-flight requests.
func (s *Server) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("error shutting down server", "error", err)
	}
}

// AwaitToken waits for the handler's result.
//
// A cancelled context or an elapsed timeout is reported as [shared.ErrTimeout] wrapped in [shared.ErrAuth].
func AwaitToken(ctx context.Context, s *Server, h *OAuthHandler, timeout time.Duration) (*oauth2.Token, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result OAuthResult
	select {
	case result = <-h.Result():
	case err := <-s.Errors():
		return nil, fmt.Errorf("%w: callback server: %v", shared.ErrAuth, err)
	case <-timer.C:
		return nil, fmt.Errorf("%w: %w: no authorization after %v", shared.ErrAuth, shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w: %v", shared.ErrAuth, shared.ErrTimeout, ctx.Err())
	}

	if err := result.Error(); err != nil {
		return nil, err
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuth)
	}
	return result.Token, nil
}
