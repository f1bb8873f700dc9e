package knowledge

import "context"

// ClusterHealth returns basic information about the health of the cluster
// backing the index.
func (s *Service) ClusterHealth(ctx context.Context) (map[string]any, error) {
	return s.client.Health(ctx)
}

// ClusterStats returns a high-level overview of cluster statistics.
func (s *Service) ClusterStats(ctx context.Context) (map[string]any, error) {
	return s.client.Stats(ctx)
}
