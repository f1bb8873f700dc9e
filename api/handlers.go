package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/quarrylabs/strata/pkg/index"
)

const requestIDKey = "request_id"

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleClusterHealth returns the health of the cluster backing the index.
func (s *Server) handleClusterHealth(c *fiber.Ctx) error {
	health, err := s.service.ClusterHealth(c.Context())
	if err != nil {
		s.logger.Error("cluster health request failed",
			zap.Any(requestIDKey, c.Locals(requestIDKey)),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "failed to fetch cluster health"})
	}

	return c.JSON(health)
}

// handleClusterStats returns a high-level overview of cluster statistics.
func (s *Server) handleClusterStats(c *fiber.Ctx) error {
	stats, err := s.service.ClusterStats(c.Context())
	if err != nil {
		s.logger.Error("cluster stats request failed",
			zap.Any(requestIDKey, c.Locals(requestIDKey)),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "failed to fetch cluster stats"})
	}

	return c.JSON(stats)
}

// handleSearch handles GET /v1/search requests.
// Query parameters:
//   - query (required): the search query text
//   - top_k (optional, default 10): number of results to return
func (s *Server) handleSearch(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "query parameter is required",
		})
	}

	topK := 0
	if topKStr := c.Query("top_k"); topKStr != "" {
		parsed, err := strconv.Atoi(topKStr)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: "top_k must be a positive integer",
			})
		}
		topK = parsed
	}

	output, err := s.service.TextSimilaritySearch(c.Context(), query, topK)
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, index.ErrValidation) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(ErrorResponse{
			Error: err.Error(),
		})
	}

	return c.JSON(output)
}
