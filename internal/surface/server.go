package surface

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"webview-cli/internal/fault"
	"webview-cli/pkg/models"
)

// Controller is the session surface the HTTP API drives.
type Controller interface {
	TypedState() models.TypedState
	Capabilities() models.Capabilities
	Lists() models.EnumerationLists
	Range(id models.RangeID) models.Range
	Health() models.Health
	IssueCommand(ctx context.Context, name string, options map[string]string) error
}

type Server struct {
	ctrl    Controller
	pub     *Publisher
	metrics http.Handler
	log     zerolog.Logger
	engine  *gin.Engine

	mu   sync.Mutex
	http *http.Server
}

// NewServer wires the API routes. metrics may be nil.
func NewServer(ctrl Controller, pub *Publisher, metrics http.Handler, log zerolog.Logger) *Server {
	s := &Server{ctrl: ctrl, pub: pub, metrics: metrics, log: log}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics))
	}

	api := r.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/state", func(c *gin.Context) { c.JSON(http.StatusOK, s.ctrl.TypedState()) })
	api.GET("/capabilities", func(c *gin.Context) { c.JSON(http.StatusOK, s.ctrl.Capabilities()) })
	api.GET("/lists", func(c *gin.Context) { c.JSON(http.StatusOK, s.ctrl.Lists()) })
	api.GET("/ranges/:field", s.handleRange)
	api.GET("/catalog", func(c *gin.Context) { c.JSON(http.StatusOK, s.pub.Catalog()) })
	api.GET("/variables", func(c *gin.Context) { c.JSON(http.StatusOK, s.pub.Values()) })
	api.GET("/feedbacks/:id", s.handleFeedback)
	api.POST("/commands/:name", s.handleCommand)
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("api request")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	status := s.ctrl.Health()
	_, message := s.pub.Status()
	code := http.StatusOK
	if status == models.HealthError {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "message": message})
}

func (s *Server) handleRange(c *gin.Context) {
	id := models.RangeID(c.Param("field"))
	switch id {
	case models.RangeAEBrightness, models.RangeIris, models.RangeGain:
		c.JSON(http.StatusOK, s.ctrl.Range(id))
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown range %q", id)})
	}
}

func (s *Server) handleFeedback(c *gin.Context) {
	opts := make(map[string]string)
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			opts[k] = v[0]
		}
	}
	active := EvaluateFeedback(c.Param("id"), opts, s.ctrl.TypedState())
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "active": active})
}

func (s *Server) handleCommand(c *gin.Context) {
	raw := map[string]any{}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	opts := make(map[string]string, len(raw))
	for k, v := range raw {
		opts[k] = fmt.Sprint(v)
	}

	name := c.Param("name")
	err := s.ctrl.IssueCommand(c.Request.Context(), name, opts)
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, gin.H{"command": name, "status": "ok"})
	case fault.IsLocal(err):
		c.JSON(http.StatusBadRequest, gin.H{"command": name, "error": err.Error(), "kind": fault.KindOf(err).String()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"command": name, "error": err.Error(), "kind": fault.KindOf(err).String()})
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe blocks serving addr until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	s.log.Info().Str("addr", addr).Msg("control surface listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
