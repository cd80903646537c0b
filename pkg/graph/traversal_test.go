package graph

import (
	"testing"
)

// buildDiamond wires a -> b -> d and a -> c -> d plus a direct a -> d edge,
// returning the four node IDs.
func buildDiamond(t *testing.T, s *Store) (a, b, c, d string) {
	t.Helper()
	a, _ = s.CreateNode("node", map[string]any{"name": "a"}, nil)
	b, _ = s.CreateNode("node", map[string]any{"name": "b"}, nil)
	c, _ = s.CreateNode("node", map[string]any{"name": "c"}, nil)
	d, _ = s.CreateNode("node", map[string]any{"name": "d"}, nil)

	mustLink(t, s, a, b)
	mustLink(t, s, b, d)
	mustLink(t, s, a, c)
	mustLink(t, s, c, d)
	mustLink(t, s, a, d)
	return a, b, c, d
}

func mustLink(t *testing.T, s *Store, from, to string) string {
	t.Helper()
	id, err := s.CreateRelationship("link", from, to, nil, nil)
	if err != nil {
		t.Fatalf("CreateRelationship %s -> %s failed: %v", from, to, err)
	}
	return id
}

func TestShortestPath(t *testing.T) {
	s := New()
	a, _, _, d := buildDiamond(t, s)

	// 1. BFS must take the direct hop, not the two-hop detours.
	path, found := s.FindShortestPath(a, d)
	if !found {
		t.Fatal("no path found in a connected graph")
	}
	if path.Hops() != 1 {
		t.Fatalf("Hops = %d, want 1 (path %v)", path.Hops(), path.Nodes)
	}
	if path.Nodes[0] != a || path.Nodes[len(path.Nodes)-1] != d {
		t.Errorf("path endpoints = %v, want %s .. %s", path.Nodes, a, d)
	}

	// 2. Default weight is 1 per hop.
	if path.Weight != 1 {
		t.Errorf("Weight = %v, want 1", path.Weight)
	}
}

func TestShortestPathSumsWeights(t *testing.T) {
	s := New()
	a, _ := s.CreateNode("node", nil, nil)
	b, _ := s.CreateNode("node", nil, nil)
	c, _ := s.CreateNode("node", nil, nil)

	w1, w2 := 2.0, 0.5
	s.CreateRelationship("link", a, b, nil, &w1)
	s.CreateRelationship("link", b, c, nil, &w2)

	// The path length is measured in hops; weights are only summed for
	// reporting, never used to choose the route.
	path, found := s.FindShortestPath(a, c)
	if !found {
		t.Fatal("no path found")
	}
	if path.Weight != 2.5 {
		t.Errorf("Weight = %v, want 2.5", path.Weight)
	}
}

func TestShortestPathEdgeCases(t *testing.T) {
	s := New()
	a, _ := s.CreateNode("node", nil, nil)
	b, _ := s.CreateNode("node", nil, nil)
	s.CreateRelationship("link", a, b, nil, nil)

	t.Run("source equals target", func(t *testing.T) {
		path, found := s.FindShortestPath(a, a)
		if !found {
			t.Fatal("a node should reach itself")
		}
		if path.Hops() != 0 || len(path.Nodes) != 1 {
			t.Errorf("self path = %v, want a single node", path.Nodes)
		}
	})

	t.Run("direction matters", func(t *testing.T) {
		// Only a -> b exists; b cannot reach a.
		if _, found := s.FindShortestPath(b, a); found {
			t.Error("found a path against the edge direction")
		}
	})

	t.Run("unknown nodes", func(t *testing.T) {
		if _, found := s.FindShortestPath("ghost", a); found {
			t.Error("found a path from a missing node")
		}
		if _, found := s.FindShortestPath(a, "ghost"); found {
			t.Error("found a path to a missing node")
		}
	})
}

func TestAllPaths(t *testing.T) {
	s := New()
	a, _, _, d := buildDiamond(t, s)

	// 1. All three routes, shortest first.
	paths := s.FindAllPaths(a, d, 5)
	if len(paths) != 3 {
		t.Fatalf("got %d paths, want 3", len(paths))
	}
	if paths[0].Hops() != 1 {
		t.Errorf("first path has %d hops, want the direct edge first", paths[0].Hops())
	}
	for i := 1; i < len(paths); i++ {
		if paths[i].Hops() < paths[i-1].Hops() {
			t.Error("paths are not ordered by hop count")
		}
	}

	// 2. A depth limit of 1 keeps only the direct edge.
	short := s.FindAllPaths(a, d, 1)
	if len(short) != 1 || short[0].Hops() != 1 {
		t.Errorf("maxDepth=1 gave %d paths, want only the direct edge", len(short))
	}
}

func TestAllPathsCycleSafety(t *testing.T) {
	s := New()
	a, _ := s.CreateNode("node", nil, nil)
	b, _ := s.CreateNode("node", nil, nil)
	c, _ := s.CreateNode("node", nil, nil)

	// a <-> b cycle plus an exit to c.
	mustLink(t, s, a, b)
	mustLink(t, s, b, a)
	mustLink(t, s, b, c)

	// Each path must visit a node at most once, so the cycle cannot
	// produce infinite or repeated routes.
	paths := s.FindAllPaths(a, c, 10)
	if len(paths) != 1 {
		t.Fatalf("got %d paths, want 1", len(paths))
	}
	seen := make(map[string]bool)
	for _, id := range paths[0].Nodes {
		if seen[id] {
			t.Errorf("node %s repeated within a simple path", id)
		}
		seen[id] = true
	}
}

func TestAllPathsNoRoute(t *testing.T) {
	s := New()
	a, _ := s.CreateNode("node", nil, nil)
	b, _ := s.CreateNode("node", nil, nil)

	if paths := s.FindAllPaths(a, b, 3); len(paths) != 0 {
		t.Errorf("got %d paths between disconnected nodes, want 0", len(paths))
	}
}
