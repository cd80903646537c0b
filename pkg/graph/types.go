package graph

// Node is a typed, labeled vertex with a free-form property map.
// Timestamps are Unix epoch milliseconds, matching the snapshot wire format.
type Node struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Labels     []string       `json:"labels,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	CreatedAt  int64          `json:"created_at"`
	UpdatedAt  int64          `json:"updated_at"`
}

// Relationship is a directed, typed edge between two nodes.
// Weight is optional; algorithms treat a nil weight as 1.
type Relationship struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	SourceID   string         `json:"source_id"`
	TargetID   string         `json:"target_id"`
	Properties map[string]any `json:"properties,omitempty"`
	Weight     *float64       `json:"weight,omitempty"`
	CreatedAt  int64          `json:"created_at"`
	UpdatedAt  int64          `json:"updated_at"`
}

// Direction selects which adjacency to follow during traversal.
type Direction string

const (
	DirectionOut  Direction = "out"
	DirectionIn   Direction = "in"
	DirectionBoth Direction = "both"
)

// NeighborRef pairs a neighboring node with the relationship that reaches it.
type NeighborRef struct {
	NodeID         string `json:"node_id"`
	RelationshipID string `json:"relationship_id"`
}

// Path is an ordered walk through the graph.
// Nodes has exactly one more element than Relationships.
// Weight is the sum of the traversed relationship weights (1 when unset).
type Path struct {
	Nodes         []string `json:"nodes"`
	Relationships []string `json:"relationships"`
	Weight        float64  `json:"weight"`
}

// Hops returns the number of relationships traversed by the path.
func (p Path) Hops() int {
	return len(p.Relationships)
}

// NodeUpdate describes a partial mutation of a node.
// A nil Type keeps the current type; a nil Labels slice keeps the current
// labels (an empty non-nil slice clears them); Properties are merged
// shallowly on top of the existing map.
type NodeUpdate struct {
	Type       *string
	Labels     []string
	Properties map[string]any
}

// RelationshipUpdate describes a partial mutation of a relationship.
type RelationshipUpdate struct {
	Type       *string
	Properties map[string]any
	Weight     *float64
}

// weightOf resolves the effective weight of a relationship.
func weightOf(r *Relationship) float64 {
	if r.Weight == nil {
		return 1
	}
	return *r.Weight
}
