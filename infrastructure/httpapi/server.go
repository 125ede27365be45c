// Package httpapi exposes the validator and aggregator over HTTP so that
// editors and CI jobs can check a single assessment without a batch run.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/one-acre-fund/application-score-card/internal/application"
	"github.com/one-acre-fund/application-score-card/internal/domain"
	"github.com/one-acre-fund/application-score-card/internal/ports"
)

// requestSource names documents received over HTTP in reports and logs.
const requestSource = "request"

// Server serves the scorecard HTTP API.
type Server struct {
	app    *fiber.App
	runner *application.Runner
	config application.HTTPConfig
	logger *slog.Logger
}

// ValidationResponse is the body returned by the validate endpoint.
type ValidationResponse struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// NewServer builds the fiber application and registers every route.
// gatherer backs the /metrics endpoint; nil disables it.
func NewServer(
	cfg application.HTTPConfig,
	runner *application.Runner,
	gatherer prometheus.Gatherer,
	log *slog.Logger,
) *Server {
	if log == nil {
		log = slog.Default()
	}

	s := &Server{runner: runner, config: cfg, logger: log}
	s.app = fiber.New(fiber.Config{
		AppName:               "scorecard",
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	s.app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
	}))

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.app.Group("/v1")
	api.Post("/validate", s.handleValidate)
	api.Post("/aggregate", s.handleAggregate)

	if gatherer != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return s
}

// App returns the underlying fiber application, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.config.Addr)
		errCh <- s.app.Listen(s.config.Addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}
	return nil
}

// handleValidate runs the validator on the request body. Validation errors
// are part of a successful response; only unparsable bodies are rejected.
func (s *Server) handleValidate(c *fiber.Ctx) error {
	report := s.runner.ValidateAll(c.UserContext(), []ports.Document{s.document(c)})
	outcome := report.Validation[0]

	if outcome.Validation == nil {
		return s.reject(c, outcome.Err)
	}
	return c.JSON(toValidationResponse(outcome.Validation))
}

// handleAggregate validates the request body and, if it has no errors,
// returns the normalized record.
func (s *Server) handleAggregate(c *fiber.Ctx) error {
	doc := s.document(c)

	validated := s.runner.ValidateAll(c.UserContext(), []ports.Document{doc})
	outcome := validated.Validation[0]
	if outcome.Validation == nil {
		return s.reject(c, outcome.Err)
	}
	if !outcome.Validation.Valid {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(toValidationResponse(outcome.Validation))
	}

	aggregated := s.runner.AggregateAll(c.UserContext(), []ports.Document{doc})
	if len(aggregated.Records) == 0 {
		return s.reject(c, aggregated.Aggregation[0].Err)
	}
	return c.JSON(aggregated.Records[0])
}

func (s *Server) document(c *fiber.Ctx) ports.Document {
	// fiber reuses the body buffer once the handler returns.
	body := append([]byte(nil), c.Body()...)
	return ports.Document{Source: requestSource, Data: body}
}

// reject maps an outcome error to a status code.
func (s *Server) reject(c *fiber.Ctx, err error) error {
	var inputErr *ports.InputError
	var contentErr *domain.ContentError
	switch {
	case errors.As(err, &inputErr):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &contentErr):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(ErrorResponse{Error: err.Error(), Code: code})
}

func toValidationResponse(r *domain.ValidationResult) ValidationResponse {
	return ValidationResponse{Valid: r.Valid, Errors: r.Errors, Warnings: r.Warnings}
}
