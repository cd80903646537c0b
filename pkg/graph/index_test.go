package graph

import (
	"slices"
	"testing"
)

func TestPropertyPointLookup(t *testing.T) {
	s := New()
	alice, _ := s.CreateNode("person", map[string]any{"name": "Alice"}, nil)
	s.CreateNode("person", map[string]any{"name": "Bob"}, nil)
	alice2, _ := s.CreateNode("person", map[string]any{"name": "Alice"}, nil)

	ids := s.FindNodesByProperty("name", "Alice")
	if len(ids) != 2 {
		t.Fatalf("got %d matches, want 2", len(ids))
	}
	if !slices.Contains(ids, alice) || !slices.Contains(ids, alice2) {
		t.Errorf("matches = %v, want both Alices", ids)
	}
	if !slices.IsSorted(ids) {
		t.Error("lookup results should be sorted")
	}
}

func TestPropertyIndexFollowsUpdates(t *testing.T) {
	s := New()
	id, _ := s.CreateNode("person", map[string]any{"name": "Alice"}, nil)

	// Rename: the old key must be dropped and the new one added.
	s.UpdateNode(id, NodeUpdate{Properties: map[string]any{"name": "Alicia"}})
	if ids := s.FindNodesByProperty("name", "Alice"); len(ids) != 0 {
		t.Errorf("stale index entry for old value: %v", ids)
	}
	if ids := s.FindNodesByProperty("name", "Alicia"); len(ids) != 1 {
		t.Errorf("new value not indexed: %v", ids)
	}

	s.DeleteNode(id)
	if ids := s.FindNodesByProperty("name", "Alicia"); len(ids) != 0 {
		t.Errorf("index entry survived the delete: %v", ids)
	}
}

func TestUnindexedPropertyIsIgnored(t *testing.T) {
	s := New()
	s.CreateNode("person", map[string]any{"shoe_size": "44"}, nil)

	// Only allow-listed property names are indexed.
	if ids := s.FindNodesByProperty("shoe_size", "44"); len(ids) != 0 {
		t.Errorf("unexpected index hit: %v", ids)
	}
}

func TestNumericRangeLookup(t *testing.T) {
	s := New()
	// 'status' is allow-listed; store numeric codes under it.
	a, _ := s.CreateNode("job", map[string]any{"status": 10}, nil)
	b, _ := s.CreateNode("job", map[string]any{"status": 20.5}, nil)
	s.CreateNode("job", map[string]any{"status": 99}, nil)
	s.CreateNode("job", map[string]any{"status": "queued"}, nil)

	ids := s.FindNodesByPropertyRange("status", 10, 21)
	if len(ids) != 2 {
		t.Fatalf("got %v, want exactly the two in-range nodes", ids)
	}
	if !slices.Contains(ids, a) || !slices.Contains(ids, b) {
		t.Errorf("range result = %v, want %s and %s", ids, a, b)
	}
}
