// Query execution: interprets a parsed query against the store as a linear
// pipeline with no branching back:
//
//	ALL_NODES/ALL_RELATIONSHIPS -> MATCH filter -> WHERE filter ->
//	ORDER BY -> SKIP/LIMIT -> RETURN projection -> RESULT
//
// Each stage is optional and passes its input through unchanged when the
// corresponding query section is absent. Filtering is sequential; there is
// no query planning.
package engine

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/sanonone/kraphdb/pkg/graph"
	"github.com/sanonone/kraphdb/pkg/metrics"
	"github.com/sanonone/kraphdb/pkg/query"
)

// Result is the outcome of one query run.
type Result struct {
	Nodes         []*graph.Node         `json:"nodes"`
	Relationships []*graph.Relationship `json:"relationships"`
	Paths         []graph.Path          `json:"paths,omitempty"`
	Rows          []map[string]any      `json:"rows,omitempty"`

	// Total counts the matches after filtering but before SKIP/LIMIT, so
	// paginating callers know the full result size.
	Total int `json:"total"`

	// Duration is the wall-clock execution time, including tokenizing and
	// parsing.
	Duration time.Duration `json:"duration"`
}

// ExecutionError signals a query that parsed but could not be evaluated
// against the current store state.
type ExecutionError struct {
	Msg string
}

func (e *ExecutionError) Error() string {
	return "query execution failed: " + e.Msg
}

// Query runs query text through the tokenizer, parser, and executor.
// Returns query.LexError, query.ParseError, or ExecutionError on failure.
func (e *Engine) Query(text string) (*Result, error) {
	start := time.Now()

	q, err := query.Parse(text)
	if err != nil {
		switch err.(type) {
		case *query.LexError:
			metrics.QueriesTotal.WithLabelValues("lex_error").Inc()
		default:
			metrics.QueriesTotal.WithLabelValues("parse_error").Inc()
		}
		return nil, err
	}

	res, err := e.execute(q)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues("exec_error").Inc()
		return nil, err
	}

	res.Duration = time.Since(start)
	metrics.QueriesTotal.WithLabelValues("ok").Inc()
	metrics.QueryDuration.Observe(res.Duration.Seconds())

	slog.Debug("query executed",
		"nodes", len(res.Nodes),
		"relationships", len(res.Relationships),
		"duration", res.Duration.String(),
	)
	return res, nil
}

func (e *Engine) execute(q *query.Query) (*Result, error) {
	if q.Create {
		// CREATE is recognized by the parser but interpreted by a higher
		// layer, never by this executor.
		return nil, &ExecutionError{Msg: "CREATE is not supported by the query executor"}
	}
	if err := checkBindings(q); err != nil {
		return nil, err
	}

	// Stage 1: full scan.
	nodes := e.store.AllNodes()
	rels := e.store.AllRelationships()

	// Stage 2: MATCH filter.
	res := &Result{}
	if len(q.Matches) > 0 {
		nodes = filterNodes(nodes, q.Matches)
		rels, res.Paths = filterRelationships(rels, q.Matches)
	}

	// Stage 3: WHERE filter (conjunction only, whatever the query said).
	for _, cond := range q.Where {
		nodes = applyCondition(nodes, cond)
	}
	res.Total = len(nodes) + len(rels)

	// Stage 4: ORDER BY.
	if len(q.OrderBy) > 0 {
		orderNodes(nodes, q.OrderBy)
	}

	// Stage 5: SKIP/LIMIT, nodes only.
	if q.Skip != nil {
		if *q.Skip >= len(nodes) {
			nodes = nil
		} else {
			nodes = nodes[*q.Skip:]
		}
	}
	if q.Limit != nil && *q.Limit < len(nodes) {
		nodes = nodes[:*q.Limit]
	}

	// Stage 6: RETURN projection.
	res.Nodes = nodes
	res.Relationships = rels
	if len(q.Return) > 0 {
		res.Rows = project(nodes, q.Return, q.Distinct)
	}
	return res, nil
}

// checkBindings verifies that WHERE and ORDER BY only reference variables
// bound by a MATCH clause.
func checkBindings(q *query.Query) error {
	bound := make(map[string]struct{})
	for _, m := range q.Matches {
		if m.Node.Variable != "" {
			bound[m.Node.Variable] = struct{}{}
		}
		if m.Rel != nil && m.Rel.Variable != "" {
			bound[m.Rel.Variable] = struct{}{}
		}
	}
	if len(bound) == 0 {
		return nil
	}
	for _, c := range q.Where {
		if _, ok := bound[c.Variable]; !ok {
			return &ExecutionError{Msg: fmt.Sprintf("variable %q is not bound by a MATCH clause", c.Variable)}
		}
	}
	for _, o := range q.OrderBy {
		if _, ok := bound[o.Variable]; !ok {
			return &ExecutionError{Msg: fmt.Sprintf("variable %q is not bound by a MATCH clause", o.Variable)}
		}
	}
	return nil
}

// filterNodes keeps nodes matching at least one match clause's node
// pattern: every pattern label must equal the node type or appear among
// its labels, and every pattern property must be equal.
func filterNodes(nodes []*graph.Node, matches []query.MatchClause) []*graph.Node {
	out := nodes[:0]
	for _, n := range nodes {
		for _, m := range matches {
			if nodeMatches(n, m.Node) {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

func nodeMatches(n *graph.Node, pat query.NodePattern) bool {
	for _, label := range pat.Labels {
		if n.Type != label && !slices.Contains(n.Labels, label) {
			return false
		}
	}
	for key, want := range pat.Properties {
		if !valuesEqual(n.Properties[key], want) {
			return false
		}
	}
	return true
}

// filterRelationships keeps relationships whose type matches a clause's
// relationship pattern, and derives the single-hop paths those matches
// describe. With no relationship pattern in the query the relationship
// result is empty. Property maps on relationship patterns are parsed but
// deliberately not applied here; see the package documentation.
func filterRelationships(rels []*graph.Relationship, matches []query.MatchClause) ([]*graph.Relationship, []graph.Path) {
	var patterns []*query.RelPattern
	for i := range matches {
		if matches[i].Rel != nil {
			patterns = append(patterns, matches[i].Rel)
		}
	}
	if len(patterns) == 0 {
		return nil, nil
	}

	var out []*graph.Relationship
	var paths []graph.Path
	for _, r := range rels {
		for _, pat := range patterns {
			if pat.Type != "" && r.Type != pat.Type {
				continue
			}
			out = append(out, r)
			w := 1.0
			if r.Weight != nil {
				w = *r.Weight
			}
			paths = append(paths, graph.Path{
				Nodes:         []string{r.SourceID, r.TargetID},
				Relationships: []string{r.ID},
				Weight:        w,
			})
			break
		}
	}
	return out, paths
}

// applyCondition keeps the nodes for which the condition holds.
func applyCondition(nodes []*graph.Node, cond query.Condition) []*graph.Node {
	out := nodes[:0]
	for _, n := range nodes {
		if evalCondition(n.Properties[cond.Property], cond) {
			out = append(out, n)
		}
	}
	return out
}

// evalCondition applies one operator to the stored value and the query
// operand. Numeric comparisons on non-numeric operands are false; the
// substring operators work on string-coerced operands.
func evalCondition(have any, cond query.Condition) bool {
	switch cond.Operator {
	case query.OpEq:
		return valuesEqual(have, cond.Value)
	case query.OpNeq, query.OpNeqAlt:
		return !valuesEqual(have, cond.Value)
	case query.OpLt, query.OpLte, query.OpGt, query.OpGte:
		a, aok := toNumber(have)
		b, bok := toNumber(cond.Value)
		if !aok || !bok {
			return false
		}
		switch cond.Operator {
		case query.OpLt:
			return a < b
		case query.OpLte:
			return a <= b
		case query.OpGt:
			return a > b
		default:
			return a >= b
		}
	case query.OpContains:
		return have != nil && strings.Contains(coerceString(have), coerceString(cond.Value))
	case query.OpStartsWith:
		return have != nil && strings.HasPrefix(coerceString(have), coerceString(cond.Value))
	case query.OpEndsWith:
		return have != nil && strings.HasSuffix(coerceString(have), coerceString(cond.Value))
	case query.OpIn, query.OpNotIn:
		list, ok := cond.Value.([]any)
		if !ok {
			return false
		}
		found := false
		for _, v := range list {
			if valuesEqual(have, v) {
				found = true
				break
			}
		}
		if cond.Operator == query.OpIn {
			return found
		}
		return !found
	}
	return false
}

// orderNodes sorts in place by the ORDER BY items, first item most
// significant. Values compare numerically when both sides are numeric,
// otherwise as strings.
func orderNodes(nodes []*graph.Node, items []query.OrderItem) {
	sort.SliceStable(nodes, func(i, j int) bool {
		for _, item := range items {
			a := nodes[i].Properties[item.Property]
			b := nodes[j].Properties[item.Property]
			c := compareValues(a, b)
			if c == 0 {
				continue
			}
			if item.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compareValues(a, b any) int {
	an, aok := toNumber(a)
	bn, bok := toNumber(b)
	if aok && bok {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(coerceString(a), coerceString(b))
}

// project builds the tabular rows for a RETURN clause. A bare variable
// projects the node ID; variable.property projects the property value.
func project(nodes []*graph.Node, items []query.ReturnItem, distinct bool) []map[string]any {
	rows := make([]map[string]any, 0, len(nodes))
	seen := make(map[string]struct{})

	for _, n := range nodes {
		row := make(map[string]any, len(items))
		for _, item := range items {
			key := item.Alias
			if key == "" {
				key = item.Variable
				if item.Property != "" {
					key = item.Variable + "." + item.Property
				}
			}
			if item.Property != "" {
				row[key] = n.Properties[item.Property]
			} else {
				row[key] = n.ID
			}
		}
		if distinct {
			fp := fmt.Sprintf("%v", row)
			if _, dup := seen[fp]; dup {
				continue
			}
			seen[fp] = struct{}{}
		}
		rows = append(rows, row)
	}
	return rows
}

// --- Value helpers ---

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func coerceString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// valuesEqual is strict equality with numeric normalization, so 30 stored
// as int compares equal to the 30 a query literal parses into.
func valuesEqual(a, b any) bool {
	if an, ok := toNumber(a); ok {
		if bn, ok := toNumber(b); ok {
			return an == bn
		}
		return false
	}
	return a == b
}
