// Package graph provides the fundamental data structures and logic for the
// KraphDB engine: an in-memory property-graph store holding typed nodes and
// directed, typed, property-bearing relationships.
//
// The Store owns the authoritative node/relationship collections plus the
// derived indexes (by type, by adjacency, by allow-listed property values)
// and keeps them consistent across every mutation. Traversal and analytics
// algorithms (shortest path, all paths, centrality, components) are layered
// on top of the same Store.
//
// The engine is designed for single-writer, in-process use. An internal
// RWMutex keeps concurrent readers safe, but callers that need multiple
// writers must serialize access externally.
package graph

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/btree"
)

// Store is the container for all graph data and its derived indexes.
// Construct one with New and pass it by reference; there is no global
// instance.
type Store struct {
	mu sync.RWMutex

	nodes         map[string]*Node
	relationships map[string]*Relationship

	// type -> set of entity IDs
	nodeTypeIndex map[string]map[string]struct{}
	relTypeIndex  map[string]map[string]struct{}

	// adjacency: node ID -> set of relationship IDs
	outgoing map[string]map[string]struct{}
	incoming map[string]map[string]struct{}

	// string property index: property -> value -> set of node IDs
	propIndex map[string]map[string]map[string]struct{}

	// numeric property index: property -> B-Tree of (value, node ID)
	numIndex map[string]*btree.BTreeG[numItem]
}

// New creates an empty Store with all indexes initialized.
func New() *Store {
	return &Store{
		nodes:         make(map[string]*Node),
		relationships: make(map[string]*Relationship),
		nodeTypeIndex: make(map[string]map[string]struct{}),
		relTypeIndex:  make(map[string]map[string]struct{}),
		outgoing:      make(map[string]map[string]struct{}),
		incoming:      make(map[string]map[string]struct{}),
		propIndex:     make(map[string]map[string]map[string]struct{}),
		numIndex:      newNumIndex(),
	}
}

// --- Node CRUD ---

// CreateNode inserts a new node and returns its generated identifier.
// nodeType is trimmed and must not be empty. Labels are deduplicated.
func (s *Store) CreateNode(nodeType string, properties map[string]any, labels []string) (string, error) {
	nodeType = strings.TrimSpace(nodeType)
	if nodeType == "" {
		return "", &ValidationError{Field: "type", Reason: "must not be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	n := &Node{
		ID:         uuid.NewString(),
		Type:       nodeType,
		Labels:     dedupLabels(labels),
		Properties: cloneProps(properties),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	s.nodes[n.ID] = n
	s.indexNode(n)
	return n.ID, nil
}

// GetNode returns a copy of the node, or false if the ID is unknown.
// The copy shares nested property values but not the top-level maps, so
// callers cannot corrupt the store or its indexes by mutating the result.
func (s *Store) GetNode(id string) (*Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[id]
	if !ok {
		return nil, false
	}
	return cloneNode(n), true
}

// UpdateNode applies a partial mutation: properties merge shallowly (new
// keys overwrite, others are retained), type and labels are replaced
// wholesale when provided. Returns false if the ID is unknown.
func (s *Store) UpdateNode(id string, upd NodeUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return false
	}

	// Two-phase index maintenance: remove entries derived from the old
	// state before touching the node, reinsert from the new state after.
	s.deindexNode(n)

	if upd.Type != nil {
		if t := strings.TrimSpace(*upd.Type); t != "" {
			n.Type = t
		}
	}
	if upd.Labels != nil {
		n.Labels = dedupLabels(upd.Labels)
	}
	if len(upd.Properties) > 0 {
		if n.Properties == nil {
			n.Properties = make(map[string]any, len(upd.Properties))
		}
		for k, v := range upd.Properties {
			n.Properties[k] = v
		}
	}
	n.UpdatedAt = time.Now().UnixMilli()

	s.indexNode(n)
	return true
}

// DeleteNode removes a node and cascades to every relationship where it is
// source or target. Returns false if the ID is unknown.
func (s *Store) DeleteNode(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return false
	}

	// 1. Cascade: collect first, then delete, so we never mutate the
	// adjacency sets while ranging over them.
	touching := make([]string, 0, len(s.outgoing[id])+len(s.incoming[id]))
	for relID := range s.outgoing[id] {
		touching = append(touching, relID)
	}
	for relID := range s.incoming[id] {
		touching = append(touching, relID)
	}
	for _, relID := range touching {
		if r, ok := s.relationships[relID]; ok {
			s.deindexRelationship(r)
			delete(s.relationships, relID)
		}
	}

	// 2. The node itself.
	s.deindexNode(n)
	delete(s.nodes, id)
	return true
}

// --- Relationship CRUD ---

// CreateRelationship inserts a directed edge from source to target and
// returns its generated identifier. Both endpoints must exist; referential
// integrity is enforced only here, not continuously.
func (s *Store) CreateRelationship(relType, sourceID, targetID string, properties map[string]any, weight *float64) (string, error) {
	relType = strings.TrimSpace(relType)
	if relType == "" {
		return "", &ValidationError{Field: "type", Reason: "must not be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[sourceID]; !ok {
		return "", &ValidationError{Field: "source", Reason: fmt.Sprintf("node %q does not exist", sourceID)}
	}
	if _, ok := s.nodes[targetID]; !ok {
		return "", &ValidationError{Field: "target", Reason: fmt.Sprintf("node %q does not exist", targetID)}
	}

	now := time.Now().UnixMilli()
	r := &Relationship{
		ID:         uuid.NewString(),
		Type:       relType,
		SourceID:   sourceID,
		TargetID:   targetID,
		Properties: cloneProps(properties),
		Weight:     weight,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	s.relationships[r.ID] = r
	s.indexRelationship(r)
	return r.ID, nil
}

// GetRelationship returns a copy of the relationship, or false if unknown.
func (s *Store) GetRelationship(id string) (*Relationship, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.relationships[id]
	if !ok {
		return nil, false
	}
	return cloneRelationship(r), true
}

// UpdateRelationship applies a partial mutation mirroring UpdateNode.
// Endpoints cannot be changed. Returns false if the ID is unknown.
func (s *Store) UpdateRelationship(id string, upd RelationshipUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.relationships[id]
	if !ok {
		return false
	}

	s.deindexRelationship(r)

	if upd.Type != nil {
		if t := strings.TrimSpace(*upd.Type); t != "" {
			r.Type = t
		}
	}
	if len(upd.Properties) > 0 {
		if r.Properties == nil {
			r.Properties = make(map[string]any, len(upd.Properties))
		}
		for k, v := range upd.Properties {
			r.Properties[k] = v
		}
	}
	if upd.Weight != nil {
		r.Weight = upd.Weight
	}
	r.UpdatedAt = time.Now().UnixMilli()

	s.indexRelationship(r)
	return true
}

// DeleteRelationship removes a relationship and its index entries.
// Returns false if the ID is unknown.
func (s *Store) DeleteRelationship(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.relationships[id]
	if !ok {
		return false
	}
	s.deindexRelationship(r)
	delete(s.relationships, id)
	return true
}

// --- Neighbor enumeration ---

// Neighbors lists the nodes directly connected to nodeID through the given
// direction, optionally filtered by relationship type and neighbor node
// type (empty filters match everything). Results are ordered by the
// creation order of the traversed relationships, which gives traversal
// algorithms a deterministic discovery order.
func (s *Store) Neighbors(nodeID string, dir Direction, relTypeFilter, nodeTypeFilter string) []NeighborRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.neighborsLocked(nodeID, dir, relTypeFilter, nodeTypeFilter)
}

// neighborsLocked is the lock-free body of Neighbors, shared with the
// traversal and analytics algorithms that hold the read lock across a
// whole run.
func (s *Store) neighborsLocked(nodeID string, dir Direction, relTypeFilter, nodeTypeFilter string) []NeighborRef {
	var rels []*Relationship

	collect := func(relIDs map[string]struct{}) {
		for relID := range relIDs {
			if r, ok := s.relationships[relID]; ok {
				rels = append(rels, r)
			}
		}
	}

	switch dir {
	case DirectionOut:
		collect(s.outgoing[nodeID])
	case DirectionIn:
		collect(s.incoming[nodeID])
	default: // DirectionBoth
		collect(s.outgoing[nodeID])
		collect(s.incoming[nodeID])
	}

	// Stable discovery order: oldest relationship first.
	sort.Slice(rels, func(i, j int) bool {
		if rels[i].CreatedAt != rels[j].CreatedAt {
			return rels[i].CreatedAt < rels[j].CreatedAt
		}
		return rels[i].ID < rels[j].ID
	})

	refs := make([]NeighborRef, 0, len(rels))
	for _, r := range rels {
		if relTypeFilter != "" && r.Type != relTypeFilter {
			continue
		}
		other := r.TargetID
		if other == nodeID {
			other = r.SourceID
		}
		if nodeTypeFilter != "" {
			if n, ok := s.nodes[other]; !ok || n.Type != nodeTypeFilter {
				continue
			}
		}
		refs = append(refs, NeighborRef{NodeID: other, RelationshipID: r.ID})
	}
	return refs
}

// --- Accessors ---

// NodeCount returns the number of live nodes.
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// RelationshipCount returns the number of live relationships.
func (s *Store) RelationshipCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.relationships)
}

// NodesOfType returns copies of all nodes whose current type is t.
func (s *Store) NodesOfType(t string) []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := sortedIDs(s.nodeTypeIndex[t])
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneNode(s.nodes[id]))
	}
	return out
}

// RelationshipsOfType returns copies of all relationships of type t.
func (s *Store) RelationshipsOfType(t string) []*Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := sortedIDs(s.relTypeIndex[t])
	out := make([]*Relationship, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneRelationship(s.relationships[id]))
	}
	return out
}

// AllNodes returns copies of every node, sorted by creation time.
func (s *Store) AllNodes() []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, cloneNode(n))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// AllRelationships returns copies of every relationship, sorted by
// creation time.
func (s *Store) AllRelationships() []*Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Relationship, 0, len(s.relationships))
	for _, r := range s.relationships {
		out = append(out, cloneRelationship(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Clear drops every node, relationship and index entry. The store is
// immediately reusable; identifiers are never recycled because they are
// generated fresh on every create.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[string]*Node)
	s.relationships = make(map[string]*Relationship)
	s.nodeTypeIndex = make(map[string]map[string]struct{})
	s.relTypeIndex = make(map[string]map[string]struct{})
	s.outgoing = make(map[string]map[string]struct{})
	s.incoming = make(map[string]map[string]struct{})
	s.propIndex = make(map[string]map[string]map[string]struct{})
	s.numIndex = newNumIndex()
}

// --- Helpers ---

func dedupLabels(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" || slices.Contains(out, l) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func cloneProps(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

func cloneNode(n *Node) *Node {
	c := *n
	c.Labels = slices.Clone(n.Labels)
	c.Properties = cloneProps(n.Properties)
	return &c
}

func cloneRelationship(r *Relationship) *Relationship {
	c := *r
	c.Properties = cloneProps(r.Properties)
	return &c
}

func sortedIDs(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
