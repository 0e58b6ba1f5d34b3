// Package api serves the sentence breaker over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/japaniel/sentbreak/pkg/document"
	"github.com/japaniel/sentbreak/pkg/sentbreak"
)

// Segmenter splits a document into sentences.
type Segmenter interface {
	Segment(ctx context.Context, doc *document.Document, maxSentences int) ([]document.Sentence, error)
}

type Server struct {
	router *gin.Engine
	logger *zap.Logger

	segmenters   map[string]Segmenter
	defaultLang  string
	maxSentences int
}

// NewServer builds the router. segmenters is keyed by policy language
// ("en", "zh", "ko", "ja", "default"); requests without a language use
// defaultLang. maxSentences caps every request and zero means no cap.
func NewServer(segmenters map[string]Segmenter, defaultLang string, maxSentences int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	s := &Server{
		router:       router,
		logger:       logger,
		segmenters:   segmenters,
		defaultLang:  defaultLang,
		maxSentences: maxSentences,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	v1 := s.router.Group("/v1")
	v1.POST("/segment", s.segment)
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.logger.Error("Web server failed to start", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// statusFor maps segmentation errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case sentbreak.IsConfigError(err):
		return http.StatusBadRequest
	case sentbreak.IsTooManySentences(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondWithError logs the technical error and returns a user-friendly message
func respondWithError(c *gin.Context, statusCode int, technicalError error, userMessage string, logger *zap.Logger, fields ...zap.Field) {
	fields = append(fields, zap.Error(technicalError))
	if statusCode >= http.StatusInternalServerError {
		logger.Error("Request failed", fields...)
	} else {
		logger.Warn("Request rejected", fields...)
	}
	c.JSON(statusCode, gin.H{"error": userMessage})
}

// respondWithClientError returns a client error (no logging needed for validation errors)
func respondWithClientError(c *gin.Context, statusCode int, userMessage string) {
	c.JSON(statusCode, gin.H{"error": userMessage})
}
