// Package api serves the calendar over HTTP for the dashboard frontend. The
// item endpoints speak the same wire format the rest source consumes, so one
// contentcal instance can front another.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/chris-regnier/contentcal/internal/calendar"
	"github.com/chris-regnier/contentcal/internal/source"
	"github.com/gin-gonic/gin"
)

// Options configures a Server.
type Options struct {
	Location  *time.Location
	WeekStart time.Weekday
	MonthCap  int
	// Token, when set, is required on every /api request as a bearer token
	// or X-API-Key header.
	Token string
	Now   func() time.Time
}

// Server owns one calendar board backed by a source. Requests that touch the
// board are serialized.
type Server struct {
	src  source.Source
	opts Options

	mu    sync.Mutex
	board *calendar.Board
}

// NewServer returns a server for src. The board is loaded on first use or by
// Reload.
func NewServer(src source.Source, opts Options) *Server {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Server{src: src, opts: opts, board: calendar.NewBoard(opts.Location)}
}

// Reload replaces the board's items with a fresh listing. A failed listing
// keeps the last good items.
func (s *Server) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Server) loadLocked(ctx context.Context) error {
	items, err := s.src.List(ctx, source.ListOptions{})
	if err != nil {
		s.board.LoadFailed(err)
		slog.Warn("calendar reload failed", "error", err)
		return err
	}
	if err := s.board.Load(items); err != nil {
		slog.Warn("calendar has invalid items", "error", err)
	}
	slog.Debug("calendar reloaded", "items", len(items))
	return nil
}

// ensureLoadedLocked loads the board on first use.
func (s *Server) ensureLoadedLocked(ctx context.Context) {
	if s.board.State() == calendar.LoadPending {
		_ = s.loadLocked(ctx)
	}
}

// Close tears the board down. In-flight reschedules are discarded.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board.Close()
}

// Handler builds the gin engine with all routes configured.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(requestLogger())
	r.Use(gin.Recovery())

	// CORS for the dashboard frontend
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-API-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", s.health)

	api := r.Group("/api")
	if s.opts.Token != "" {
		api.Use(authMiddleware(s.opts.Token))
	}
	{
		api.GET("/items", s.listItems)
		api.GET("/items/:kind/:id", s.getItem)
		api.POST("/items/:kind/:id/reschedule", s.reschedule)
		api.GET("/calendar", s.calendar)
		api.GET("/days/:key", s.day)
	}

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	return r
}

// requestLogger logs one line per request through slog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client", c.ClientIP(),
		}
		if msg := c.Errors.ByType(gin.ErrorTypePrivate).String(); msg != "" {
			attrs = append(attrs, "error", msg)
		}
		slog.Info("http request", attrs...)
	}
}

func authMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader("X-API-Key")
		if provided == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				provided = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if provided == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API token required"})
			return
		}
		if provided != token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API token"})
			return
		}

		c.Next()
	}
}
