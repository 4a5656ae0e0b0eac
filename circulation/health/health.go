// Package health exposes liveness and readiness endpoints for the circulation service.
package health

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell"
)

const (
	defaultCheckTimeout    = 2 * time.Second
	defaultShutdownTimeout = 5 * time.Second

	statusOK          = "ok"
	statusUnavailable = "unavailable"

	logMsgServerStarted = "health server started"
	logMsgServerFailed  = "health server failed"
	logAttrAddr         = "addr"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ContextPinger is satisfied by *sql.DB and *sqlx.DB.
type ContextPinger interface {
	PingContext(ctx context.Context) error
}

func PingCheck(p Pinger) Check {
	return p.Ping
}

func SQLCheck(db ContextPinger) Check {
	return db.PingContext
}

func RedisCheck(client redis.UniversalClient) Check {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// Report is the readiness response body.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Server serves /healthz and /readyz.
type Server struct {
	echo         *echo.Echo
	checks       map[string]Check
	checkTimeout time.Duration
	logger       shell.Logger
}

// Option configures a Server.
type Option func(*Server)

func WithCheck(name string, check Check) Option {
	return func(s *Server) {
		s.checks[name] = check
	}
}

func WithCheckTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		if timeout > 0 {
			s.checkTimeout = timeout
		}
	}
}

func WithLogger(logger shell.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server with its routes registered.
func NewServer(opts ...Option) *Server {
	s := &Server{
		echo:         echo.New(),
		checks:       map[string]Check{},
		checkTimeout: defaultCheckTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.GET("/healthz", s.liveness)
	s.echo.GET("/readyz", s.readiness)

	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- s.echo.Start(addr)
	}()

	if s.logger != nil {
		s.logger.Info(logMsgServerStarted, logAttrAddr, addr)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		if s.logger != nil {
			s.logger.Error(logMsgServerFailed, logAttrAddr, addr, shell.LogAttrError, err.Error())
		}

		return err

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultShutdownTimeout)
		defer cancel()

		return s.echo.Shutdown(shutdownCtx)
	}
}

func (s *Server) liveness(c echo.Context) error {
	return c.String(http.StatusOK, statusOK)
}

func (s *Server) readiness(c echo.Context) error {
	report := s.Ready(c.Request().Context())

	code := http.StatusOK
	if report.Status != statusOK {
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, report)
}

// Ready runs every check with its own timeout.
func (s *Server) Ready(ctx context.Context) Report {
	report := Report{Status: statusOK, Checks: make(map[string]string, len(s.checks))}

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, s.checkTimeout)
		err := s.checks[name](checkCtx)
		cancel()

		if err != nil {
			report.Status = statusUnavailable
			report.Checks[name] = err.Error()

			continue
		}

		report.Checks[name] = statusOK
	}

	return report
}
