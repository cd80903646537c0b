package client

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sanonone/kraphdb/internal/server"
	"github.com/sanonone/kraphdb/pkg/engine"
)

// newTestClient serves a real engine over httptest and points a client at it.
func newTestClient(t *testing.T, token string) *Client {
	t.Helper()
	srv, err := server.NewServer(engine.New(), &server.Config{AuthToken: token})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return New(ts.URL, token)
}

func TestClientNodeLifecycle(t *testing.T) {
	c := newTestClient(t, "")

	// 1. Create
	id, err := c.CreateNode("person", map[string]any{"name": "Alice"}, []string{"employee"})
	if err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}

	// 2. Read
	node, err := c.GetNode(id)
	if err != nil {
		t.Fatalf("GetNode failed: %v", err)
	}
	if node.Type != "person" || node.Properties["name"] != "Alice" {
		t.Errorf("node = %+v", node)
	}

	// 3. Update merges properties
	updated, err := c.UpdateNode(id, nil, nil, map[string]any{"age": 30})
	if err != nil {
		t.Fatalf("UpdateNode failed: %v", err)
	}
	if updated.Properties["name"] != "Alice" || updated.Properties["age"] != 30.0 {
		t.Errorf("updated = %v", updated.Properties)
	}

	// 4. Delete, then a 404 on re-read
	if err := c.DeleteNode(id); err != nil {
		t.Fatalf("DeleteNode failed: %v", err)
	}
	_, err = c.GetNode(id)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected a 404 APIError, got %v", err)
	}
}

func TestClientRelationshipsAndPaths(t *testing.T) {
	c := newTestClient(t, "")

	a, _ := c.CreateNode("person", map[string]any{"name": "Alice"}, nil)
	b, _ := c.CreateNode("person", map[string]any{"name": "Bob"}, nil)
	d, _ := c.CreateNode("person", map[string]any{"name": "Dan"}, nil)

	if _, err := c.CreateRelationship("knows", a, b, nil, nil); err != nil {
		t.Fatalf("CreateRelationship failed: %v", err)
	}
	w := 2.0
	if _, err := c.CreateRelationship("knows", b, d, nil, &w); err != nil {
		t.Fatal(err)
	}

	// Neighbors
	refs, err := c.Neighbors(a, "out", "", "")
	if err != nil {
		t.Fatalf("Neighbors failed: %v", err)
	}
	if len(refs) != 1 || refs[0].NodeID != b {
		t.Errorf("neighbors = %v", refs)
	}

	// Shortest path a -> d crosses b.
	path, err := c.ShortestPath(a, d)
	if err != nil {
		t.Fatalf("ShortestPath failed: %v", err)
	}
	if path.Hops() != 2 || path.Weight != 3 {
		t.Errorf("path = %+v", path)
	}

	// All paths
	paths, err := c.AllPaths(a, d, 5)
	if err != nil {
		t.Fatalf("AllPaths failed: %v", err)
	}
	if len(paths) != 1 {
		t.Errorf("got %d paths, want 1", len(paths))
	}

	// No route in the reverse direction.
	_, err = c.ShortestPath(d, a)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected a 404 APIError, got %v", err)
	}
}

func TestClientQuery(t *testing.T) {
	c := newTestClient(t, "")
	c.CreateNode("person", map[string]any{"name": "Alice", "age": 30}, nil)
	c.CreateNode("person", map[string]any{"name": "Dan", "age": 19}, nil)

	res, err := c.Query(`MATCH (p:person) WHERE p.age >= 21 RETURN p.name`)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(res.Rows) != 1 || res.Rows[0]["p.name"] != "Alice" {
		t.Errorf("rows = %v", res.Rows)
	}

	// Syntax errors surface as APIError with the server's message.
	_, err = c.Query("MATCH (")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected a 400 APIError, got %v", err)
	}
}

func TestClientAnalytics(t *testing.T) {
	c := newTestClient(t, "")
	hub, _ := c.CreateNode("node", nil, nil)
	for range 3 {
		spoke, _ := c.CreateNode("node", nil, nil)
		c.CreateRelationship("link", spoke, hub, nil, nil)
	}

	scores, err := c.DegreeCentrality()
	if err != nil {
		t.Fatalf("DegreeCentrality failed: %v", err)
	}
	if len(scores) != 4 || scores[0].NodeID != hub {
		t.Errorf("scores = %v", scores)
	}

	ranks, err := c.PageRank(0, 0)
	if err != nil {
		t.Fatalf("PageRank failed: %v", err)
	}
	if len(ranks) != 4 {
		t.Errorf("got %d ranks, want 4", len(ranks))
	}

	comps, err := c.ConnectedComponents()
	if err != nil {
		t.Fatalf("ConnectedComponents failed: %v", err)
	}
	if len(comps) != 1 {
		t.Errorf("got %d components, want 1", len(comps))
	}

	stats, err := c.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Nodes != 4 || stats.Relationships != 3 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestClientSnapshotRoundTrip(t *testing.T) {
	src := newTestClient(t, "")
	a, _ := src.CreateNode("person", map[string]any{"name": "Alice"}, nil)
	b, _ := src.CreateNode("person", map[string]any{"name": "Bob"}, nil)
	src.CreateRelationship("knows", a, b, nil, nil)

	var buf bytes.Buffer
	if err := src.Export(&buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	dst := newTestClient(t, "")
	if err := dst.Import(&buf); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	stats, err := dst.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Nodes != 2 || stats.Relationships != 1 {
		t.Errorf("imported stats = %+v", stats)
	}
}

func TestClientAuth(t *testing.T) {
	srv, err := server.NewServer(engine.New(), &server.Config{AuthToken: "sesame"})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	// Wrong token: rejected.
	bad := New(ts.URL, "wrong")
	_, err = bad.CreateNode("person", nil, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected a 401 APIError, got %v", err)
	}

	// Correct token: accepted. Healthz works either way.
	good := New(ts.URL, "sesame")
	if _, err := good.CreateNode("person", nil, nil); err != nil {
		t.Errorf("authorized create failed: %v", err)
	}
	if err := bad.Healthz(); err != nil {
		t.Errorf("healthz should bypass auth: %v", err)
	}
}
