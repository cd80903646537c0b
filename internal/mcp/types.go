package mcp

// --- Tool Arguments ---

type CreateNodeArgs struct {
	Type       string         `json:"type" jsonschema:"The node type (e.g. 'person', 'document'),required"`
	Labels     []string       `json:"labels,omitempty" jsonschema:"Optional secondary labels (e.g. 'employee', 'admin')"`
	Properties map[string]any `json:"properties,omitempty" jsonschema:"Key/value properties (e.g. {\"name\": \"Alice\"})"`
}

type CreateNodeResult struct {
	NodeID string `json:"node_id"`
	Status string `json:"status"`
}

type CreateRelationshipArgs struct {
	SourceID string         `json:"source_id" jsonschema:"ID of the source node,required"`
	TargetID string         `json:"target_id" jsonschema:"ID of the target node,required"`
	Type     string         `json:"type" jsonschema:"The type of relationship (e.g. 'knows', 'works_at'),required"`
	Weight   *float64       `json:"weight,omitempty" jsonschema:"Optional edge weight used by pathfinding. Unset means 1."`
	Props    map[string]any `json:"properties,omitempty"`
}

type CreateRelationshipResult struct {
	RelationshipID string `json:"relationship_id"`
}

type GetNodeArgs struct {
	NodeID string `json:"node_id" jsonschema:"required"`
}

type DeleteNodeArgs struct {
	NodeID string `json:"node_id" jsonschema:"required"`
}

type DeleteNodeResult struct {
	Status string `json:"status"`
}

type RunQueryArgs struct {
	Query string `json:"query" jsonschema:"A graph query (e.g. MATCH (p:person) WHERE p.age > 30 RETURN p.name),required"`
}

type RunQueryResult struct {
	Summary string           `json:"summary"`
	Rows    []map[string]any `json:"rows,omitempty"`
}

type FindPathArgs struct {
	SourceID string `json:"source_id" jsonschema:"Start node ID,required"`
	TargetID string `json:"target_id" jsonschema:"End node ID,required"`
	All      bool   `json:"all,omitempty" jsonschema:"description=If true, enumerate every simple path instead of only the shortest one."`
	MaxDepth int    `json:"max_depth,omitempty" jsonschema:"Hop limit when enumerating all paths (default 5)"`
}

type FindPathResult struct {
	PathDescription string `json:"path_description"` // "A -> B -> C"
}

type ExploreNeighborsArgs struct {
	NodeID    string `json:"node_id" jsonschema:"required"`
	Direction string `json:"direction,omitempty" jsonschema:"Direction of traversal: 'out', 'in', 'both'. Default 'both',enum=out,enum=in,enum=both"`
	RelType   string `json:"rel_type,omitempty" jsonschema:"Only follow relationships of this type"`
	NodeType  string `json:"node_type,omitempty" jsonschema:"Only return neighbors of this node type"`
}

type ExploreNeighborsResult struct {
	GraphDescription string `json:"graph_description"` // Textual description of connections
}

type RankNodesArgs struct {
	Algorithm string `json:"algorithm,omitempty" jsonschema:"'degree' or 'pagerank'. Default 'pagerank',enum=degree,enum=pagerank"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Max number of results (default 10)"`
}

type RankNodesResult struct {
	Ranking []string `json:"ranking"` // Formatted strings for the LLM
}

type FindCommunitiesResult struct {
	Description string `json:"description"`
}

type ExportGraphResult struct {
	SnapshotJSON string `json:"snapshot_json"`
}
