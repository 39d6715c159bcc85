// Package web serves the tracker page over HTTP for a single local user.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nibzard/tracker-go/internal/app"
	"github.com/nibzard/tracker-go/internal/logging"
	"github.com/nibzard/tracker-go/internal/tracker"
)

const (
	shutdownTimeout = 5 * time.Second
	csrfField       = "_csrf"
	csrfContextKey  = "csrf"
)

// Server exposes one Session over HTTP.
type Server struct {
	session *app.Session
	logger  *log.Logger
	echo    *echo.Echo

	mu    sync.Mutex
	flash app.Notice
}

// New builds a server for session.
func New(session *app.Session, logger *log.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		session: session,
		logger:  logger,
		flash:   session.StartupNotice(),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = newRenderer()
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:" + csrfField,
		ContextKey:     csrfContextKey,
		CookieName:     csrfField,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteStrictMode,
	}))
	s.echo = e
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/", s.index)
	s.echo.POST("/tasks/:index/units/:unit/toggle", s.toggle)
	s.echo.POST("/save", s.save)
	s.echo.POST("/reset", s.reset)

	api := s.echo.Group("/api")
	api.GET("/progress", s.progress)

	s.echo.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving tracker", "addr", addr, "progress", s.session.Path())
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

type pageData struct {
	Title   string
	Tagline string
	Tasks   []tracker.TaskView
	Overall tracker.Totals
	Notice  app.Notice
	Dirty   bool
	Path    string
	CSRF    string
}

func (s *Server) index(c echo.Context) error {
	data := pageData{
		Title:   "Interactive Learning Tracker",
		Tagline: "Track your progress. Save your wins. Reset if needed.",
		Tasks:   s.session.Tasks(),
		Overall: s.session.Overall(),
		Notice:  s.takeFlash(),
		Dirty:   s.session.Dirty(),
		Path:    s.session.Path(),
	}
	if token, ok := c.Get(csrfContextKey).(string); ok {
		data.CSRF = token
	}
	return c.Render(http.StatusOK, "index", data)
}

func (s *Server) toggle(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return notFound(c, "invalid task index")
	}
	unit, err := strconv.Atoi(c.Param("unit"))
	if err != nil {
		return notFound(c, "invalid unit index")
	}

	if err := s.session.ToggleAt(index, unit); err != nil {
		if errors.Is(err, tracker.ErrUnknownTask) || errors.Is(err, tracker.ErrUnitOutOfRange) {
			return notFound(c, err.Error())
		}
		return err
	}
	s.setFlash(app.Notice{})
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) save(c echo.Context) error {
	s.setFlash(s.session.Save())
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) reset(c echo.Context) error {
	s.setFlash(s.session.Reset())
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) progress(c echo.Context) error {
	return c.JSON(http.StatusOK, s.session.Snapshot())
}

func (s *Server) setFlash(n app.Notice) {
	s.mu.Lock()
	s.flash = n
	s.mu.Unlock()
}

// takeFlash returns the pending notice and clears it.
func (s *Server) takeFlash() app.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.flash
	s.flash = app.Notice{}
	return n
}

func notFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, map[string]string{"error": msg})
}
