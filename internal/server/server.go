// Package server exposes the assistant flows as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dyike/FinSage/internal/chat"
	"github.com/dyike/FinSage/internal/logging"
	"github.com/dyike/FinSage/internal/service"
)

const shutdownTimeout = 10 * time.Second

// AssistantFunc returns the assistant to use for one request. It is called
// per request so a reloaded engine takes effect immediately.
type AssistantFunc func() *service.Assistant

type Server struct {
	assistant AssistantFunc
	sessions  *chat.SessionStore
	logger    *logging.Logger
	router    *gin.Engine
}

func New(assistant AssistantFunc, sessions *chat.SessionStore, logger *logging.Logger) *Server {
	s := &Server{
		assistant: assistant,
		sessions:  sessions,
		logger:    logging.OrSilent(logger).Component("http"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/healthz", s.health)

	api := router.Group("/api")
	{
		api.POST("/portfolio/analyze", s.analyzePortfolio)
		api.GET("/quote/:symbol", s.getQuote)
		api.GET("/history/:symbol", s.getHistory)
		api.GET("/chart/:symbol", s.getChart)
		api.GET("/news/:symbol", s.getNews)

		api.POST("/chat/sessions", s.createSession)
		api.GET("/chat/sessions/:id", s.getSession)
		api.DELETE("/chat/sessions/:id", s.deleteSession)
		api.POST("/chat/sessions/:id/messages", s.postMessage)
	}
	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sessions.Run(ctx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info().Msg("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.sessions.Len()})
}
