package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	clusterHealthToolName    = "get_cluster_health"
	clusterHealthDescription = "Returns basic information about the health of the cluster backing the index."

	clusterStatsToolName    = "get_cluster_stats"
	clusterStatsDescription = "Returns a high-level overview of cluster statistics."
)

// ClusterHealthInput represents the (empty) input of the get_cluster_health tool.
type ClusterHealthInput struct{}

// ClusterHealthOutput represents the output of the get_cluster_health tool.
type ClusterHealthOutput struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Health  map[string]any `json:"health,omitempty"`
}

// handleClusterHealth returns the cluster health document.
func (s *Server) handleClusterHealth(ctx context.Context, _ *mcp.CallToolRequest, _ ClusterHealthInput) (*mcp.CallToolResult, ClusterHealthOutput, error) {
	health, err := s.config.Service.ClusterHealth(ctx)
	if err != nil {
		out := ClusterHealthOutput{Status: StatusError, Message: err.Error()}
		return result(out, true), out, nil
	}

	out := ClusterHealthOutput{Status: StatusSuccess, Health: health}
	return result(out, false), out, nil
}

// ClusterStatsInput represents the (empty) input of the get_cluster_stats tool.
type ClusterStatsInput struct{}

// ClusterStatsOutput represents the output of the get_cluster_stats tool.
type ClusterStatsOutput struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Stats   map[string]any `json:"stats,omitempty"`
}

// handleClusterStats returns the cluster statistics document.
func (s *Server) handleClusterStats(ctx context.Context, _ *mcp.CallToolRequest, _ ClusterStatsInput) (*mcp.CallToolResult, ClusterStatsOutput, error) {
	stats, err := s.config.Service.ClusterStats(ctx)
	if err != nil {
		out := ClusterStatsOutput{Status: StatusError, Message: err.Error()}
		return result(out, true), out, nil
	}

	out := ClusterStatsOutput{Status: StatusSuccess, Stats: stats}
	return result(out, false), out, nil
}
