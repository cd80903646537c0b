// Full-graph snapshotting. The engine holds state only in memory; an
// external collaborator decides where snapshots live (disk, blob store,
// anywhere an io.Reader/Writer can reach). Round-tripping a snapshot
// through Serialize then Deserialize reproduces an equivalent store,
// including the derived index state.
package graph

import (
	"encoding/json"
	"fmt"
	"io"
)

// Snapshot is the serializable state of the whole graph. Every field of
// every node and relationship is carried verbatim; timestamps are Unix
// epoch milliseconds.
type Snapshot struct {
	Nodes         []*Node         `json:"nodes"`
	Relationships []*Relationship `json:"relationships"`
}

// Export returns a deep copy of the current graph as a Snapshot.
// Entities are ordered by creation time for stable output.
func (s *Store) Export() Snapshot {
	return Snapshot{
		Nodes:         s.AllNodes(),
		Relationships: s.AllRelationships(),
	}
}

// Import replaces the store contents with the snapshot, rebuilding every
// derived index from scratch. Relationships referencing unknown nodes are
// rejected before any state is touched.
func (s *Store) Import(snap Snapshot) error {
	known := make(map[string]struct{}, len(snap.Nodes))
	for _, n := range snap.Nodes {
		if n.ID == "" || n.Type == "" {
			return &ValidationError{Field: "node", Reason: "snapshot node missing id or type"}
		}
		if _, dup := known[n.ID]; dup {
			return &ValidationError{Field: "node", Reason: fmt.Sprintf("duplicate node id %q", n.ID)}
		}
		known[n.ID] = struct{}{}
	}
	knownRels := make(map[string]struct{}, len(snap.Relationships))
	for _, r := range snap.Relationships {
		if r.ID == "" || r.Type == "" {
			return &ValidationError{Field: "relationship", Reason: "snapshot relationship missing id or type"}
		}
		if _, dup := knownRels[r.ID]; dup {
			return &ValidationError{Field: "relationship", Reason: fmt.Sprintf("duplicate relationship id %q", r.ID)}
		}
		knownRels[r.ID] = struct{}{}
		if _, ok := known[r.SourceID]; !ok {
			return &ValidationError{Field: "source", Reason: fmt.Sprintf("node %q does not exist", r.SourceID)}
		}
		if _, ok := known[r.TargetID]; !ok {
			return &ValidationError{Field: "target", Reason: fmt.Sprintf("node %q does not exist", r.TargetID)}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[string]*Node, len(snap.Nodes))
	s.relationships = make(map[string]*Relationship, len(snap.Relationships))
	s.nodeTypeIndex = make(map[string]map[string]struct{})
	s.relTypeIndex = make(map[string]map[string]struct{})
	s.outgoing = make(map[string]map[string]struct{})
	s.incoming = make(map[string]map[string]struct{})
	s.propIndex = make(map[string]map[string]map[string]struct{})
	s.numIndex = newNumIndex()

	for _, n := range snap.Nodes {
		c := cloneNode(n)
		c.Labels = dedupLabels(c.Labels)
		s.nodes[c.ID] = c
		s.indexNode(c)
	}
	for _, r := range snap.Relationships {
		c := cloneRelationship(r)
		s.relationships[c.ID] = c
		s.indexRelationship(c)
	}
	return nil
}

// Serialize writes the full graph as JSON to w.
func (s *Store) Serialize(w io.Writer) error {
	snap := s.Export()
	enc := json.NewEncoder(w)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// Deserialize reads a JSON snapshot from r and replaces the store state.
func (s *Store) Deserialize(r io.Reader) error {
	var snap Snapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&snap); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return s.Import(snap)
}
