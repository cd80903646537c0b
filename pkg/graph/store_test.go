package graph

import (
	"errors"
	"testing"
)

func TestNodeLifecycle(t *testing.T) {
	s := New()

	// 1. Create
	id, err := s.CreateNode("person", map[string]any{"name": "Alice", "age": 30}, []string{"employee"})
	if err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}
	if id == "" {
		t.Fatal("CreateNode returned an empty ID")
	}

	// 2. Read back, checking the stored copy
	node, ok := s.GetNode(id)
	if !ok {
		t.Fatal("GetNode did not find the created node")
	}
	if node.Type != "person" {
		t.Errorf("Type = %q, want %q", node.Type, "person")
	}
	if node.Properties["name"] != "Alice" {
		t.Errorf("name = %v, want Alice", node.Properties["name"])
	}
	if node.CreatedAt == 0 || node.UpdatedAt == 0 {
		t.Error("timestamps should be set on create")
	}

	// 3. Update merges properties and bumps UpdatedAt
	before := node.UpdatedAt
	createdAt := node.CreatedAt
	if !s.UpdateNode(id, NodeUpdate{Properties: map[string]any{"age": 31, "city": "Rome"}}) {
		t.Fatal("UpdateNode reported the node as missing")
	}
	node, _ = s.GetNode(id)
	if node.Properties["age"] != 31 {
		t.Errorf("age = %v, want 31", node.Properties["age"])
	}
	if node.Properties["name"] != "Alice" {
		t.Error("update should merge, not replace, the property map")
	}
	if node.Properties["city"] != "Rome" {
		t.Error("new property missing after update")
	}
	if node.UpdatedAt < before {
		t.Error("UpdatedAt went backwards")
	}
	if node.CreatedAt != createdAt {
		t.Error("CreatedAt must not change on update")
	}

	// 4. Delete
	if !s.DeleteNode(id) {
		t.Fatal("DeleteNode reported the node as missing")
	}
	if _, ok := s.GetNode(id); ok {
		t.Error("node still readable after delete")
	}
	if s.DeleteNode(id) {
		t.Error("second delete should report missing")
	}
}

func TestCreateNodeValidation(t *testing.T) {
	s := New()

	_, err := s.CreateNode("  ", nil, nil)
	if err == nil {
		t.Fatal("blank type should be rejected")
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected a ValidationError, got %T", err)
	}
}

func TestLabelsAreDeduplicated(t *testing.T) {
	s := New()

	id, err := s.CreateNode("person", nil, []string{"admin", "employee", "admin"})
	if err != nil {
		t.Fatal(err)
	}
	node, _ := s.GetNode(id)
	if len(node.Labels) != 2 {
		t.Errorf("Labels = %v, want the duplicate removed", node.Labels)
	}
}

func TestGetNodeReturnsACopy(t *testing.T) {
	s := New()
	id, _ := s.CreateNode("person", map[string]any{"name": "Alice"}, nil)

	// Mutating the returned node must not leak into the store.
	node, _ := s.GetNode(id)
	node.Properties["name"] = "Mallory"
	node.Type = "imposter"

	fresh, _ := s.GetNode(id)
	if fresh.Properties["name"] != "Alice" || fresh.Type != "person" {
		t.Error("caller mutation leaked into the stored node")
	}
}

func TestRelationshipLifecycle(t *testing.T) {
	s := New()
	a, _ := s.CreateNode("person", map[string]any{"name": "Alice"}, nil)
	b, _ := s.CreateNode("person", map[string]any{"name": "Bob"}, nil)

	// 1. Endpoints must exist
	if _, err := s.CreateRelationship("knows", a, "ghost", nil, nil); err == nil {
		t.Fatal("relationship to a missing node should fail")
	}

	// 2. Create with explicit weight
	w := 2.5
	relID, err := s.CreateRelationship("knows", a, b, map[string]any{"since": 2020}, &w)
	if err != nil {
		t.Fatalf("CreateRelationship failed: %v", err)
	}

	rel, ok := s.GetRelationship(relID)
	if !ok {
		t.Fatal("GetRelationship did not find the created relationship")
	}
	if rel.SourceID != a || rel.TargetID != b {
		t.Errorf("endpoints = %s -> %s, want %s -> %s", rel.SourceID, rel.TargetID, a, b)
	}
	if rel.Weight == nil || *rel.Weight != 2.5 {
		t.Errorf("Weight = %v, want 2.5", rel.Weight)
	}

	// 3. Unset weight stays nil and is treated as 1 by traversal
	relID2, _ := s.CreateRelationship("knows", b, a, nil, nil)
	rel2, _ := s.GetRelationship(relID2)
	if rel2.Weight != nil {
		t.Error("unset weight should stay nil")
	}

	// 4. Delete
	if !s.DeleteRelationship(relID) {
		t.Fatal("DeleteRelationship reported the relationship as missing")
	}
	if _, ok := s.GetRelationship(relID); ok {
		t.Error("relationship still readable after delete")
	}
}

func TestDeleteNodeCascades(t *testing.T) {
	s := New()
	a, _ := s.CreateNode("person", nil, nil)
	b, _ := s.CreateNode("person", nil, nil)
	c, _ := s.CreateNode("person", nil, nil)

	out, _ := s.CreateRelationship("knows", b, a, nil, nil)
	in, _ := s.CreateRelationship("knows", c, b, nil, nil)
	unrelated, _ := s.CreateRelationship("knows", a, c, nil, nil)

	// Deleting b must remove every relationship touching it, in either
	// direction, and leave the rest alone.
	if !s.DeleteNode(b) {
		t.Fatal("DeleteNode failed")
	}
	if _, ok := s.GetRelationship(out); ok {
		t.Error("outgoing relationship survived the cascade")
	}
	if _, ok := s.GetRelationship(in); ok {
		t.Error("incoming relationship survived the cascade")
	}
	if _, ok := s.GetRelationship(unrelated); !ok {
		t.Error("unrelated relationship was deleted")
	}

	// No dangling references left in the neighbor index.
	for _, ref := range s.Neighbors(a, DirectionBoth, "", "") {
		if ref.NodeID == b {
			t.Error("deleted node still appears as a neighbor")
		}
	}
}

func TestNeighborsFilters(t *testing.T) {
	s := New()
	alice, _ := s.CreateNode("person", map[string]any{"name": "Alice"}, nil)
	bob, _ := s.CreateNode("person", map[string]any{"name": "Bob"}, nil)
	acme, _ := s.CreateNode("company", map[string]any{"name": "Acme"}, nil)

	s.CreateRelationship("knows", alice, bob, nil, nil)
	s.CreateRelationship("works_at", alice, acme, nil, nil)
	s.CreateRelationship("knows", bob, alice, nil, nil)

	t.Run("outgoing only", func(t *testing.T) {
		refs := s.Neighbors(alice, DirectionOut, "", "")
		if len(refs) != 2 {
			t.Fatalf("got %d outgoing neighbors, want 2", len(refs))
		}
	})

	t.Run("relationship type filter", func(t *testing.T) {
		refs := s.Neighbors(alice, DirectionOut, "works_at", "")
		if len(refs) != 1 || refs[0].NodeID != acme {
			t.Fatalf("got %v, want only the company", refs)
		}
	})

	t.Run("node type filter", func(t *testing.T) {
		refs := s.Neighbors(alice, DirectionBoth, "", "person")
		for _, ref := range refs {
			if ref.NodeID != bob {
				t.Errorf("unexpected neighbor %s", ref.NodeID)
			}
		}
	})

	t.Run("unknown node yields nothing", func(t *testing.T) {
		if refs := s.Neighbors("ghost", DirectionBoth, "", ""); len(refs) != 0 {
			t.Errorf("got %v, want none", refs)
		}
	})
}

func TestTypeIndexStaysConsistent(t *testing.T) {
	s := New()
	id, _ := s.CreateNode("person", nil, nil)
	s.CreateNode("company", nil, nil)

	if n := len(s.NodesOfType("person")); n != 1 {
		t.Fatalf("got %d persons, want 1", n)
	}

	// Changing the type must move the node between type buckets.
	newType := "robot"
	s.UpdateNode(id, NodeUpdate{Type: &newType})
	if n := len(s.NodesOfType("person")); n != 0 {
		t.Errorf("person bucket still has %d entries", n)
	}
	robots := s.NodesOfType("robot")
	if len(robots) != 1 || robots[0].ID != id {
		t.Errorf("robot bucket = %v, want the updated node", robots)
	}

	s.DeleteNode(id)
	if n := len(s.NodesOfType("robot")); n != 0 {
		t.Errorf("robot bucket still has %d entries after delete", n)
	}
}

func TestClear(t *testing.T) {
	s := New()
	a, _ := s.CreateNode("person", map[string]any{"name": "Alice"}, nil)
	b, _ := s.CreateNode("person", nil, nil)
	s.CreateRelationship("knows", a, b, nil, nil)

	s.Clear()

	if s.NodeCount() != 0 || s.RelationshipCount() != 0 {
		t.Fatal("Clear left data behind")
	}
	if ids := s.FindNodesByProperty("name", "Alice"); len(ids) != 0 {
		t.Error("Clear left the property index populated")
	}

	// Clearing twice is harmless and the store stays usable.
	s.Clear()
	if _, err := s.CreateNode("person", nil, nil); err != nil {
		t.Errorf("store unusable after Clear: %v", err)
	}
}

func TestAllNodesOrdering(t *testing.T) {
	s := New()
	var ids []string
	for range 5 {
		id, _ := s.CreateNode("person", nil, nil)
		ids = append(ids, id)
	}

	all := s.AllNodes()
	if len(all) != 5 {
		t.Fatalf("got %d nodes, want 5", len(all))
	}
	// Ordering is (CreatedAt, ID), so the listing must at least be sorted
	// by timestamp, contain no duplicates, and cover every node.
	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt < all[i-1].CreatedAt {
			t.Error("AllNodes is not sorted by CreatedAt")
		}
	}
	got := make([]string, len(all))
	for i, n := range all {
		got[i] = n.ID
	}
	seen := make(map[string]bool)
	for _, id := range got {
		if seen[id] {
			t.Fatalf("duplicate node %s in AllNodes", id)
		}
		seen[id] = true
	}
	for _, id := range ids {
		if !seen[id] {
			t.Errorf("node %s missing from AllNodes", id)
		}
	}
}
