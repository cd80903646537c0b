package graph

import (
	"bytes"
	"strings"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	src := New()
	a, _ := src.CreateNode("person", map[string]any{"name": "Alice", "age": 30}, []string{"employee"})
	b, _ := src.CreateNode("company", map[string]any{"name": "Acme"}, nil)
	w := 0.5
	src.CreateRelationship("works_at", a, b, map[string]any{"role": "engineer"}, &w)

	// 1. Serialize to JSON
	var buf bytes.Buffer
	if err := src.Serialize(&buf); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	// 2. Load into a fresh store
	dst := New()
	if err := dst.Deserialize(&buf); err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}

	if dst.NodeCount() != 2 || dst.RelationshipCount() != 1 {
		t.Fatalf("restored %d nodes / %d rels, want 2 / 1",
			dst.NodeCount(), dst.RelationshipCount())
	}

	// 3. IDs, properties, and weight survive intact
	alice, ok := dst.GetNode(a)
	if !ok {
		t.Fatal("node lost its ID across the round trip")
	}
	if alice.Properties["name"] != "Alice" {
		t.Errorf("name = %v, want Alice", alice.Properties["name"])
	}
	rels := dst.RelationshipsOfType("works_at")
	if len(rels) != 1 {
		t.Fatal("relationship lost across the round trip")
	}
	if rels[0].Weight == nil || *rels[0].Weight != 0.5 {
		t.Errorf("Weight = %v, want 0.5", rels[0].Weight)
	}

	// 4. Derived indexes are rebuilt, not serialized
	if ids := dst.FindNodesByProperty("name", "Acme"); len(ids) != 1 || ids[0] != b {
		t.Errorf("property index not rebuilt: %v", ids)
	}
	if refs := dst.Neighbors(a, DirectionOut, "", ""); len(refs) != 1 || refs[0].NodeID != b {
		t.Errorf("adjacency index not rebuilt: %v", refs)
	}
}

func TestImportRejectsDanglingReferences(t *testing.T) {
	s := New()
	keep, _ := s.CreateNode("person", nil, nil)

	snap := Snapshot{
		Nodes: []*Node{{ID: "n1", Type: "person"}},
		Relationships: []*Relationship{
			{ID: "r1", Type: "knows", SourceID: "n1", TargetID: "ghost"},
		},
	}
	if err := s.Import(snap); err == nil {
		t.Fatal("import with a dangling endpoint should fail")
	}

	// A failed import must leave the previous contents untouched.
	if _, ok := s.GetNode(keep); !ok {
		t.Error("failed import destroyed existing data")
	}
	if _, ok := s.GetNode("n1"); ok {
		t.Error("failed import partially applied")
	}
}

func TestImportRejectsDuplicatesAndBlanks(t *testing.T) {
	s := New()

	t.Run("duplicate node IDs", func(t *testing.T) {
		snap := Snapshot{Nodes: []*Node{
			{ID: "n1", Type: "person"},
			{ID: "n1", Type: "person"},
		}}
		if err := s.Import(snap); err == nil {
			t.Error("duplicate IDs should be rejected")
		}
	})

	t.Run("duplicate relationship IDs", func(t *testing.T) {
		// Two relationships share an id but differ in type; the import
		// must reject instead of letting the second overwrite the first.
		snap := Snapshot{
			Nodes: []*Node{
				{ID: "n1", Type: "person"},
				{ID: "n2", Type: "person"},
			},
			Relationships: []*Relationship{
				{ID: "r1", Type: "knows", SourceID: "n1", TargetID: "n2"},
				{ID: "r1", Type: "follows", SourceID: "n2", TargetID: "n1"},
			},
		}
		if err := s.Import(snap); err == nil {
			t.Error("duplicate relationship IDs should be rejected")
		}
		if got := s.RelationshipCount(); got != 0 {
			t.Errorf("rejected import must not apply, found %d relationships", got)
		}
	})

	t.Run("blank type", func(t *testing.T) {
		snap := Snapshot{Nodes: []*Node{{ID: "n1", Type: ""}}}
		if err := s.Import(snap); err == nil {
			t.Error("blank type should be rejected")
		}
	})
}

func TestDeserializeRejectsGarbage(t *testing.T) {
	s := New()
	if err := s.Deserialize(strings.NewReader("not json at all")); err == nil {
		t.Fatal("garbage input should fail")
	}
}
