// Package web serves the generator page to a browser. Each open page holds
// a websocket; the socket owns one controller for as long as it is open.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/firecrawl/appgen/assets"
	"github.com/firecrawl/appgen/internal/catalog"
	"github.com/firecrawl/appgen/internal/config"
	"github.com/firecrawl/appgen/internal/controller"
	"github.com/firecrawl/appgen/internal/logging"
	"github.com/firecrawl/appgen/internal/project"
)

// Server serves the page, the session socket and the JSON API.
type Server struct {
	log    *logrus.Logger
	engine *gin.Engine
	page   *template.Template

	cfgMu sync.RWMutex
	cfg   config.Config

	mu       sync.Mutex
	sessions map[string]*session
}

// NewServer builds the router. cfg is copied; use Apply to change it later.
func NewServer(cfg *config.Config, log *logrus.Logger) (*Server, error) {
	if log == nil {
		log = logging.Discard()
	}
	page, err := parsePage()
	if err != nil {
		return nil, err
	}
	static, err := assets.GetStaticFS()
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	s := &Server{
		log:      log,
		page:     page,
		cfg:      *cfg,
		sessions: make(map[string]*session),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(log))
	router.Use(gin.Recovery())

	router.GET("/", s.handlePage)
	router.GET("/ws", s.handleSocket)
	router.StaticFS("/static", http.FS(static))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.SessionCount()})
	})

	api := router.Group("/api")
	{
		api.GET("/templates", s.handleTemplates)
		api.GET("/sessions/:id/export", s.handleExport)
	}

	s.engine = router
	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.engine }

// Apply swaps in a reloaded configuration. Theme and code style apply to the
// next render; generation settings apply to sessions opened afterwards.
func (s *Server) Apply(cfg *config.Config) {
	s.cfgMu.Lock()
	s.cfg = *cfg
	s.cfgMu.Unlock()
	s.log.WithFields(logrus.Fields{
		"theme":      cfg.Theme,
		"code_style": cfg.CodeStyle,
		"delay":      cfg.GenerationDelay,
	}).Info("Configuration reloaded")
}

func (s *Server) settings() config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

func (s *Server) codeStyle() string { return s.settings().CodeStyle }

// SessionCount is the number of open pages.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) session(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down and closes every open session.
func (s *Server) ListenAndServe(ctx context.Context) error {
	cfg := s.settings()
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", "http://"+cfg.Addr()).Info("Server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.closeSessions()
	s.log.Info("Server stopped")
	return err
}

// closeSessions closes hijacked sockets, which Shutdown does not track.
func (s *Server) closeSessions() {
	s.mu.Lock()
	open := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()

	for _, sess := range open {
		sess.conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

func (s *Server) handleSocket(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		// Accept has already written the response
		s.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	cfg := s.settings()
	ctrl := controller.New(controller.FromConfig(&cfg, s.log))
	sess := newSession(ctrl, conn, s.log, s.codeStyle)

	s.mu.Lock()
	s.sessions[ctrl.ID()] = sess
	s.mu.Unlock()
	sess.log.Info("Session opened")

	defer func() {
		s.mu.Lock()
		delete(s.sessions, ctrl.ID())
		s.mu.Unlock()
		ctrl.Close()
		conn.CloseNow()
		sess.log.Info("Session closed")
	}()

	err = sess.serve(c.Request.Context())
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
	default:
		if err != nil && !errors.Is(err, context.Canceled) {
			sess.log.WithError(err).Debug("Session ended")
		}
	}
}

func (s *Server) handleTemplates(c *gin.Context) {
	templates := catalog.All()
	if q := c.Query("q"); q != "" {
		templates = catalog.Search(q)
	}
	c.JSON(http.StatusOK, templates)
}

func (s *Server) handleExport(c *gin.Context) {
	sess, ok := s.session(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}

	state := sess.ctrl.Snapshot()
	if state.GeneratedFiles.Len() == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "nothing generated yet"})
		return
	}

	root := "app"
	if state.SelectedTemplateID != "" {
		root = state.SelectedTemplateID + "-app"
	}
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", root+".zip"))
	c.Status(http.StatusOK)
	if err := project.WriteZip(c.Writer, state.GeneratedFiles, root); err != nil {
		sess.log.WithError(err).Error("Export failed")
	}
}

// requestLogger logs one line per request through logrus.
func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start).Round(time.Microsecond),
		}).Debug("HTTP request")
	}
}
