// Centrality and community analytics layered on the store: degree
// centrality, a simplified fixed-iteration PageRank, undirected connected
// components, and summary statistics over the degree distribution.
package graph

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PageRank defaults. The iteration count is fixed: there is no early-exit
// convergence check, so the result is an approximation.
const (
	DefaultDamping    = 0.85
	DefaultIterations = 100
)

// CentralityScore ranks a single node.
type CentralityScore struct {
	NodeID string  `json:"node_id"`
	Score  float64 `json:"score"`
}

// Component is one undirected connected component, listed by node ID.
type Component struct {
	Nodes []string `json:"nodes"`
	Size  int      `json:"size"`
}

// DegreeCentrality scores every node by its total in+out relationship
// count, sorted descending (ties broken by node ID for stable output).
func (s *Store) DegreeCentrality() []CentralityScore {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scores := make([]CentralityScore, 0, len(s.nodes))
	for id := range s.nodes {
		degree := len(s.outgoing[id]) + len(s.incoming[id])
		scores = append(scores, CentralityScore{NodeID: id, Score: float64(degree)})
	}
	sortScores(scores)
	return scores
}

// PageRank runs the standard iterative formula
//
//	PR(n) = (1-d)/N + d * Σ PR(m)/outDegree(m)
//
// over incoming neighbors, for a fixed number of iterations. Non-positive
// damping or iterations fall back to the defaults. Returns scores sorted
// descending.
func (s *Store) PageRank(damping float64, iterations int) []CentralityScore {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if damping <= 0 || damping >= 1 {
		damping = DefaultDamping
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	n := len(s.nodes)
	if n == 0 {
		return nil
	}

	ids := make([]string, 0, n)
	for id := range s.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	pos := make(map[string]int, n)
	for i, id := range ids {
		pos[id] = i
	}

	ranks := make([]float64, n)
	next := make([]float64, n)
	for i := range ranks {
		ranks[i] = 1 / float64(n)
	}

	base := (1 - damping) / float64(n)
	for iter := 0; iter < iterations; iter++ {
		for i, id := range ids {
			var sum float64
			for relID := range s.incoming[id] {
				r, ok := s.relationships[relID]
				if !ok {
					continue
				}
				outDeg := len(s.outgoing[r.SourceID])
				if outDeg == 0 {
					continue
				}
				sum += ranks[pos[r.SourceID]] / float64(outDeg)
			}
			next[i] = base + damping*sum
		}
		ranks, next = next, ranks
	}

	scores := make([]CentralityScore, n)
	for i, id := range ids {
		scores[i] = CentralityScore{NodeID: id, Score: ranks[i]}
	}
	sortScores(scores)
	return scores
}

// ConnectedComponents discovers the undirected components (reachability via
// both directions), returned sorted by size descending. Uses an iterative
// BFS per unvisited node.
func (s *Store) ConnectedComponents() []Component {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	visited := make(map[string]struct{}, len(ids))
	var components []Component

	for _, start := range ids {
		if _, seen := visited[start]; seen {
			continue
		}

		var members []string
		queue := []string{start}
		visited[start] = struct{}{}

		for len(queue) > 0 {
			curr := queue[0]
			queue = queue[1:]
			members = append(members, curr)

			for _, ref := range s.neighborsLocked(curr, DirectionBoth, "", "") {
				if _, seen := visited[ref.NodeID]; seen {
					continue
				}
				visited[ref.NodeID] = struct{}{}
				queue = append(queue, ref.NodeID)
			}
		}

		sort.Strings(members)
		components = append(components, Component{Nodes: members, Size: len(members)})
	}

	sort.SliceStable(components, func(i, j int) bool {
		return components[i].Size > components[j].Size
	})
	return components
}

// Stats summarizes the current graph shape.
type Stats struct {
	Nodes         int     `json:"nodes"`
	Relationships int     `json:"relationships"`
	TotalWeight   float64 `json:"total_weight"`
	MeanDegree    float64 `json:"mean_degree"`
	StdDevDegree  float64 `json:"stddev_degree"`
	MaxDegree     int     `json:"max_degree"`
}

// GraphStats computes summary statistics over the degree distribution and
// relationship weights.
func (s *Store) GraphStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Nodes:         len(s.nodes),
		Relationships: len(s.relationships),
	}
	if len(s.nodes) == 0 {
		return st
	}

	degrees := make([]float64, 0, len(s.nodes))
	for id := range s.nodes {
		d := len(s.outgoing[id]) + len(s.incoming[id])
		degrees = append(degrees, float64(d))
		if d > st.MaxDegree {
			st.MaxDegree = d
		}
	}

	weights := make([]float64, 0, len(s.relationships))
	for _, r := range s.relationships {
		weights = append(weights, weightOf(r))
	}

	st.TotalWeight = floats.Sum(weights)
	st.MeanDegree = stat.Mean(degrees, nil)
	if len(degrees) > 1 {
		st.StdDevDegree = stat.StdDev(degrees, nil)
	}
	return st
}

func sortScores(scores []CentralityScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].NodeID < scores[j].NodeID
	})
}
