package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// configureHTTPServers applies the configured timeouts to echo's own servers.
// Echo.Shutdown only stops those two, so the feed server never runs on a
// separate http.Server.
func (s *Server) configureHTTPServers() {
	for _, hs := range []*http.Server{s.echo.Server, s.echo.TLSServer} {
		hs.ReadTimeout = s.config.ReadTimeout
		hs.ReadHeaderTimeout = s.config.ReadTimeout
		hs.WriteTimeout = s.config.WriteTimeout
		hs.IdleTimeout = s.config.IdleTimeout
	}
}

// Addr is the host:port the server listens on.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, s.config.Port)
}

// Start blocks serving the feed API until the server is shut down.
func (s *Server) Start() error {
	s.LogMetricsInitialization()

	log := s.logger.WithFields(logrus.Fields{
		"addr":  s.Addr(),
		"feeds": []string{"/api/patreon", "/api/last-updated"},
	})
	if s.config.TLSCertFile != "" && s.config.TLSKeyFile != "" {
		log.Info("Serving launcher feeds over HTTPS")
		return s.echo.StartTLS(s.Addr(), s.config.TLSCertFile, s.config.TLSKeyFile)
	}
	log.Warn("Serving launcher feeds over plain HTTP, TLS certificates not configured")
	return s.echo.Start(s.Addr())
}

// Run serves until ctx is done, then drains in-flight requests for at most
// drain. A server that failed to start is reported as an error.
func (s *Server) Run(ctx context.Context, drain time.Duration) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("feed server stopped: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Draining feed server")
	sctx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()
	if err := s.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown feed server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("feed server stopped: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ListenAddr is the bound listener address, or nil before Start has bound it.
func (s *Server) ListenAddr() net.Addr {
	return s.echo.ListenerAddr()
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}
