// Package server exposes the AI import pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jasonyy2018/rresume/internal/logger"
	"github.com/jasonyy2018/rresume/internal/version"
	"github.com/jasonyy2018/rresume/pkg/ai"
)

// Config holds HTTP server settings.
type Config struct {
	// BodyLimit is the largest accepted request body in bytes. Files arrive
	// base64 encoded, so it must exceed the decoded file limit by a third.
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BodyLimit:    16 << 20,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 11 * time.Minute,
	}
}

// Server wires the pipeline service to HTTP routes.
type Server struct {
	app *fiber.App
	svc *ai.Service
}

// New creates the server and registers its routes.
func New(svc *ai.Service, cfg Config) *Server {
	app := fiber.New(fiber.Config{
		AppName:               version.UserAgent(),
		BodyLimit:             cfg.BodyLimit,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())
	app.Use(requestLogger)

	s := &Server{app: app, svc: svc}

	app.Get("/health", s.health)
	api := app.Group("/api")
	api.Post("/ai/test-connection", s.testConnection)
	api.Post("/ai/parse-pdf", s.parsePDF)
	api.Post("/ai/parse-docx", s.parseDOCX)
	api.Post("/ai/improve-content", s.improveContent)
	api.Post("/import", s.importResume)

	return s
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until ctx is cancelled.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "version", version.String())
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return nil
	}
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
	}
	logger.Debug("http request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return err
}
