// Package httpapi exposes the plagiarism engine over a small REST API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/plagscan/internal/core/ports/driving"
	"github.com/custodia-labs/plagscan/internal/logger"
)

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("httpapi: document service is required")

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	Documents  driving.DocumentService
	Processing driving.ProcessingService
	Detector   driving.Detector
	Reports    driving.ReportService
}

// Server is the REST server.
type Server struct {
	ports  Ports
	engine *gin.Engine
}

// NewServer builds the router for the given ports.
func NewServer(ports Ports) (*Server, error) {
	if ports.Documents == nil {
		return nil, ErrMissingDocumentService
	}

	s := &Server{ports: ports, engine: gin.New()}
	s.engine.Use(gin.Recovery(), requestLogger())
	s.engine.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	h := &handler{ports: ports}
	s.engine.GET("/healthz", h.Health)

	api := s.engine.Group("/api/v1")
	{
		docs := api.Group("/documents")
		{
			docs.GET("", h.ListDocuments)
			docs.GET("/:id", h.GetDocument)
			docs.GET("/:id/verdict", h.Verdict)
			docs.POST("/:id/submit", h.Submit)
			docs.POST("/:id/reprocess", h.Reprocess)
		}
		api.GET("/report", h.Report)
	}

	return s, nil
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("http: listening on %s", addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http: %s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
