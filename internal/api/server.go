// Package api exposes the HTTP surface: genome upload and status polling,
// analysis results, report generation and the analysis chat.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lucianareynaud/biogpt/internal/classify"
	"github.com/lucianareynaud/biogpt/internal/middleware"
	"github.com/lucianareynaud/biogpt/internal/pipeline"
	"github.com/lucianareynaud/biogpt/internal/rag"
	"github.com/lucianareynaud/biogpt/internal/report"
)

const shutdownGrace = 30 * time.Second

// Config holds the HTTP server settings.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	UploadsDir string
	Debug      bool
}

// Server is the HTTP server. Route handlers delegate to the pipeline
// orchestrator, chat engine and report generators.
type Server struct {
	cfg          Config
	log          *logrus.Logger
	orchestrator *pipeline.Orchestrator
	chat         *rag.Engine
	reporters    map[classify.Language]*report.Generator
	sessions     *sessionStore
	router       *gin.Engine
	server       *http.Server
}

// NewServer wires the HTTP routes over the given collaborators.
func NewServer(cfg Config, orch *pipeline.Orchestrator, chat *rag.Engine, log *logrus.Logger) *Server {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.AuditLogger())
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	router.Use(corsMiddleware())

	s := &Server{
		cfg:          cfg,
		log:          log,
		orchestrator: orch,
		chat:         chat,
		reporters: map[classify.Language]*report.Generator{
			classify.LanguagePTBR: report.NewGenerator(classify.LanguagePTBR, log),
			classify.LanguageEN:   report.NewGenerator(classify.LanguageEN, log),
		},
		sessions: newSessionStore(),
		router:   router,
	}
	s.setupRoutes()
	return s
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until the context is cancelled, then drains connections.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()
	s.log.WithField("addr", addr).Info("HTTP server listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/genome-upload", s.handleUpload)
		v1.GET("/genome-upload/:id/status", s.handleStatus)
		v1.GET("/genome-upload/:id/results", s.handleResults)
		v1.POST("/reports/generate", s.handleReport)
		v1.POST("/chat", s.handleChat)
		v1.GET("/chat/sessions", s.handleListSessions)
		v1.GET("/chat/sessions/:id/messages", s.handleSessionMessages)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		c.Header("Access-Control-Expose-Headers", "Content-Length")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
