// This file implements the operational methods of the Engine, wrapping the
// store's CRUD, traversal, and analytics calls with metrics accounting.
// Callers that do not care about metrics can use Engine.Store() directly.
package engine

import (
	"github.com/sanonone/kraphdb/pkg/graph"
	"github.com/sanonone/kraphdb/pkg/metrics"
)

// --- Node CRUD ---

// CreateNode inserts a node and returns its generated identifier.
// Fails with graph.ValidationError when the type is empty after trimming.
func (e *Engine) CreateNode(nodeType string, properties map[string]any, labels []string) (string, error) {
	id, err := e.store.CreateNode(nodeType, properties, labels)
	if err != nil {
		return "", err
	}
	metrics.OperationsTotal.WithLabelValues("create_node").Inc()
	e.syncGauges()
	return id, nil
}

// GetNode retrieves a node by ID.
func (e *Engine) GetNode(id string) (*graph.Node, bool) {
	return e.store.GetNode(id)
}

// UpdateNode applies a partial node mutation. Returns false if unknown.
func (e *Engine) UpdateNode(id string, upd graph.NodeUpdate) bool {
	ok := e.store.UpdateNode(id, upd)
	if ok {
		metrics.OperationsTotal.WithLabelValues("update_node").Inc()
	}
	return ok
}

// DeleteNode removes a node, cascading to its relationships.
func (e *Engine) DeleteNode(id string) bool {
	ok := e.store.DeleteNode(id)
	if ok {
		metrics.OperationsTotal.WithLabelValues("delete_node").Inc()
		e.syncGauges()
	}
	return ok
}

// --- Relationship CRUD ---

// CreateRelationship inserts a directed edge between two existing nodes.
// Fails with graph.ValidationError when either endpoint is missing.
func (e *Engine) CreateRelationship(relType, sourceID, targetID string, properties map[string]any, weight *float64) (string, error) {
	id, err := e.store.CreateRelationship(relType, sourceID, targetID, properties, weight)
	if err != nil {
		return "", err
	}
	metrics.OperationsTotal.WithLabelValues("create_relationship").Inc()
	e.syncGauges()
	return id, nil
}

// GetRelationship retrieves a relationship by ID.
func (e *Engine) GetRelationship(id string) (*graph.Relationship, bool) {
	return e.store.GetRelationship(id)
}

// UpdateRelationship applies a partial relationship mutation.
func (e *Engine) UpdateRelationship(id string, upd graph.RelationshipUpdate) bool {
	ok := e.store.UpdateRelationship(id, upd)
	if ok {
		metrics.OperationsTotal.WithLabelValues("update_relationship").Inc()
	}
	return ok
}

// DeleteRelationship removes a relationship.
func (e *Engine) DeleteRelationship(id string) bool {
	ok := e.store.DeleteRelationship(id)
	if ok {
		metrics.OperationsTotal.WithLabelValues("delete_relationship").Inc()
		e.syncGauges()
	}
	return ok
}

// --- Traversal & analytics ---

// Neighbors enumerates direct neighbors with optional type filters.
func (e *Engine) Neighbors(nodeID string, dir graph.Direction, relTypeFilter, nodeTypeFilter string) []graph.NeighborRef {
	return e.store.Neighbors(nodeID, dir, relTypeFilter, nodeTypeFilter)
}

// FindShortestPath runs a BFS from source and returns the first path
// reaching target.
func (e *Engine) FindShortestPath(sourceID, targetID string) (*graph.Path, bool) {
	metrics.OperationsTotal.WithLabelValues("shortest_path").Inc()
	return e.store.FindShortestPath(sourceID, targetID)
}

// FindAllPaths enumerates simple paths up to maxDepth hops. Potentially
// long-running on dense graphs; bound it externally if needed.
func (e *Engine) FindAllPaths(sourceID, targetID string, maxDepth int) []graph.Path {
	metrics.OperationsTotal.WithLabelValues("all_paths").Inc()
	return e.store.FindAllPaths(sourceID, targetID, maxDepth)
}

// DegreeCentrality ranks all nodes by total degree, descending.
func (e *Engine) DegreeCentrality() []graph.CentralityScore {
	metrics.OperationsTotal.WithLabelValues("degree_centrality").Inc()
	return e.store.DegreeCentrality()
}

// PageRank ranks all nodes with the simplified fixed-iteration PageRank.
// Pass 0 for either argument to use the defaults (0.85, 100).
func (e *Engine) PageRank(damping float64, iterations int) []graph.CentralityScore {
	metrics.OperationsTotal.WithLabelValues("pagerank").Inc()
	return e.store.PageRank(damping, iterations)
}

// ConnectedComponents lists undirected components, largest first.
func (e *Engine) ConnectedComponents() []graph.Component {
	metrics.OperationsTotal.WithLabelValues("components").Inc()
	return e.store.ConnectedComponents()
}

// NodeCount returns the number of stored nodes.
func (e *Engine) NodeCount() int {
	return e.store.NodeCount()
}

// RelationshipCount returns the number of stored relationships.
func (e *Engine) RelationshipCount() int {
	return e.store.RelationshipCount()
}

// GraphStats summarizes the degree distribution and weights.
func (e *Engine) GraphStats() graph.Stats {
	return e.store.GraphStats()
}
