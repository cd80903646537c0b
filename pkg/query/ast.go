package query

// Query is the structured request produced by the parser. Every section is
// optional; an absent section leaves its field zero-valued and the executor
// passes the corresponding pipeline stage through unchanged.
type Query struct {
	Matches  []MatchClause
	Where    []Condition
	Return   []ReturnItem
	OrderBy  []OrderItem
	Skip     *int
	Limit    *int
	Distinct bool

	// Create is set when a CREATE keyword was encountered. Its body is not
	// parsed here; interpretation is left to a higher layer and parsing
	// stops at the keyword.
	Create bool
}

// NodePattern constrains the nodes a MATCH clause selects. Labels match
// either the node type or one of its labels; Properties require equality.
type NodePattern struct {
	Variable   string
	Labels     []string
	Properties map[string]any
}

// RelPattern constrains the relationship of a single-hop MATCH pattern.
// Properties are captured for completeness but the executor filters
// relationships by type only.
type RelPattern struct {
	Variable   string
	Type       string
	Properties map[string]any
	Direction  string // "out", "in", or "both"
}

// MatchClause is one node pattern with an optional single-hop relationship
// pattern. A target node pattern after the relationship is accepted
// syntactically but not captured.
type MatchClause struct {
	Node NodePattern
	Rel  *RelPattern
}

// Condition is one WHERE predicate: variable.property operator value.
// Value is a string, float64, or []any for IN / NOT IN. All conditions in
// a query are evaluated conjunctively regardless of the AND/OR keywords
// that separated them (a known simplification, not full boolean logic).
type Condition struct {
	Variable string
	Property string
	Operator string
	Value    any
}

// ReturnItem is one projection entry: variable(.property)?( AS alias)?.
type ReturnItem struct {
	Variable string
	Property string
	Alias    string
}

// OrderItem is one ORDER BY entry, ascending by default.
type OrderItem struct {
	Variable   string
	Property   string
	Descending bool
}
