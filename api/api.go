package api

import (
	"errors"
	"net"
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quarrylabs/strata/pkg/knowledge"
)

const requestIDHeader = "X-Request-ID"

// Server is the operational HTTP server. It exposes health and cluster
// endpoints, a text similarity search endpoint, and mounts the MCP handler.
type Server struct {
	config  Config
	service *knowledge.Service
	logger  *zap.Logger
	app     *fiber.App
}

// NewServer creates a new API server.
// The knowledge service is injected to allow sharing with the MCP server.
// mcpHandler is optional; when nil the /mcp endpoint is not mounted.
func NewServer(config Config, service *knowledge.Service, mcpHandler http.Handler, logger *zap.Logger) (*Server, error) {
	if service == nil {
		return nil, errors.New("knowledge service is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:  config,
		service: service,
		logger:  logger,
		app:     app,
	}

	app.Use(s.requestID)

	app.Get("/ping", s.handlePing)
	app.Get("/cluster/health", s.handleClusterHealth)
	app.Get("/cluster/stats", s.handleClusterStats)
	app.Get("/v1/search", s.handleSearch)

	if mcpHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(mcpHandler))
	}

	return s, nil
}

// requestID tags every request with an id for log correlation, keeping a
// caller-provided one when present.
func (s *Server) requestID(c *fiber.Ctx) error {
	id := c.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Locals(requestIDKey, id)
	c.Set(requestIDHeader, id)
	return c.Next()
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener starts the API server on an existing listener.
func (s *Server) RunWithListener(ln net.Listener) error {
	s.logger.Info("starting API server",
		zap.String("listen", ln.Addr().String()),
	)
	return s.app.Listener(ln)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
