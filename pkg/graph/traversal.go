// Path search over the directed graph: breadth-first shortest path and
// depth-bounded all-paths enumeration. Both follow outgoing relationships
// only; undirected reachability lives in ConnectedComponents.
package graph

import "sort"

// FindShortestPath runs a breadth-first search from source and returns the
// first path that reaches target (fewest hops, ties broken by discovery
// order). The path weight is the sum of the traversed relationship weights,
// defaulting to 1 per hop when unset. Returns false when target is
// unreachable or either endpoint is unknown.
func (s *Store) FindShortestPath(sourceID, targetID string) (*Path, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.nodes[sourceID]; !ok {
		return nil, false
	}
	if _, ok := s.nodes[targetID]; !ok {
		return nil, false
	}
	if sourceID == targetID {
		return &Path{Nodes: []string{sourceID}}, true
	}

	queue := []string{sourceID}
	visited := map[string]hop{sourceID: {}}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, ref := range s.neighborsLocked(curr, DirectionOut, "", "") {
			if _, seen := visited[ref.NodeID]; seen {
				continue
			}
			visited[ref.NodeID] = hop{parent: curr, relID: ref.RelationshipID}
			if ref.NodeID == targetID {
				return s.reconstructPath(visitedPath(visited, sourceID, targetID)), true
			}
			queue = append(queue, ref.NodeID)
		}
	}
	return nil, false
}

// hop records how BFS discovered a node: the node it came from and the
// relationship it traversed.
type hop struct {
	parent string
	relID  string
}

// visitedPath walks the BFS parent map backwards from target to source.
func visitedPath(visited map[string]hop, sourceID, targetID string) (nodes, rels []string) {
	curr := targetID
	for curr != sourceID {
		h := visited[curr]
		nodes = append(nodes, curr)
		rels = append(rels, h.relID)
		curr = h.parent
	}
	nodes = append(nodes, sourceID)

	// Reverse into source -> target order.
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	for i, j := 0, len(rels)-1; i < j; i, j = i+1, j-1 {
		rels[i], rels[j] = rels[j], rels[i]
	}
	return nodes, rels
}

// reconstructPath builds a Path from node and relationship ID sequences,
// summing the traversed weights. Caller must hold at least the read lock.
func (s *Store) reconstructPath(nodes, rels []string) *Path {
	p := &Path{Nodes: nodes, Relationships: rels}
	for _, relID := range rels {
		if r, ok := s.relationships[relID]; ok {
			p.Weight += weightOf(r)
		}
	}
	return p
}

// FindAllPaths enumerates every simple path from source to target with at
// most maxDepth hops, sorted ascending by hop count. A node may appear on
// sibling branches but never twice within one path.
//
// The search is a depth-first walk over an explicit frame stack instead of
// recursion, so adversarially deep graphs cannot exhaust the goroutine
// stack. Cost is unbounded on dense graphs; embedders wanting a time limit
// must impose it externally.
func (s *Store) FindAllPaths(sourceID, targetID string, maxDepth int) []Path {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if maxDepth <= 0 {
		return nil
	}
	if _, ok := s.nodes[sourceID]; !ok {
		return nil
	}
	if _, ok := s.nodes[targetID]; !ok {
		return nil
	}

	type frame struct {
		nodeID  string
		nodes   []string
		rels    []string
		visited map[string]struct{}
	}

	var paths []Path
	stack := []frame{{
		nodeID:  sourceID,
		nodes:   []string{sourceID},
		visited: map[string]struct{}{sourceID: {}},
	}}

	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if fr.nodeID == targetID && len(fr.rels) > 0 {
			paths = append(paths, *s.reconstructPath(fr.nodes, fr.rels))
			continue
		}
		if len(fr.rels) >= maxDepth {
			continue
		}

		refs := s.neighborsLocked(fr.nodeID, DirectionOut, "", "")
		// Push in reverse so the stack pops neighbors in discovery order,
		// preserving the tie-breaking a recursive walk would produce.
		for i := len(refs) - 1; i >= 0; i-- {
			ref := refs[i]
			if _, seen := fr.visited[ref.NodeID]; seen {
				continue
			}

			branchVisited := make(map[string]struct{}, len(fr.visited)+1)
			for id := range fr.visited {
				branchVisited[id] = struct{}{}
			}
			branchVisited[ref.NodeID] = struct{}{}

			stack = append(stack, frame{
				nodeID:  ref.NodeID,
				nodes:   append(slicesClone(fr.nodes), ref.NodeID),
				rels:    append(slicesClone(fr.rels), ref.RelationshipID),
				visited: branchVisited,
			})
		}
	}

	sort.SliceStable(paths, func(i, j int) bool {
		return paths[i].Hops() < paths[j].Hops()
	})
	return paths
}

func slicesClone(s []string) []string {
	out := make([]string, len(s), len(s)+1)
	copy(out, s)
	return out
}
