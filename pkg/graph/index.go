// This file maintains the secondary indexes derived from the primary node
// and relationship collections: type indexes, forward/reverse adjacency,
// and the property indexes over the allow-listed property names.
//
// Mutations follow a strict two-phase pattern: deindex the entity with its
// OLD state, apply the mutation, then reindex with the NEW state. The store
// write lock is held across all three phases, so readers never observe a
// half-updated index.
package graph

import "github.com/tidwall/btree"

// indexedProperties is the fixed allow-list of "commonly searched" property
// names. String values go into the inverted index, numeric values into the
// B-Tree index. Everything else is stored but not indexed.
var indexedProperties = map[string]struct{}{
	"name":     {},
	"title":    {},
	"email":    {},
	"status":   {},
	"category": {},
}

// numItem is the B-Tree entry for a numeric property value.
// Entries with equal values are kept distinct by NodeID.
type numItem struct {
	Value  float64
	NodeID string
}

func newNumIndex() map[string]*btree.BTreeG[numItem] {
	return make(map[string]*btree.BTreeG[numItem])
}

func numItemLess(a, b numItem) bool {
	if a.Value != b.Value {
		return a.Value < b.Value
	}
	return a.NodeID < b.NodeID
}

// asIndexableNumber reports whether a property value can live in the
// numeric index, normalizing the integer types JSON and callers produce.
func asIndexableNumber(v any) (float64, bool) {
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

// --- Node indexing ---

// indexNode inserts a node into every derived index.
// Caller must hold the write lock.
func (s *Store) indexNode(n *Node) {
	ids, ok := s.nodeTypeIndex[n.Type]
	if !ok {
		ids = make(map[string]struct{})
		s.nodeTypeIndex[n.Type] = ids
	}
	ids[n.ID] = struct{}{}

	for key, value := range n.Properties {
		if _, ok := indexedProperties[key]; !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			byValue, ok := s.propIndex[key]
			if !ok {
				byValue = make(map[string]map[string]struct{})
				s.propIndex[key] = byValue
			}
			if _, ok := byValue[v]; !ok {
				byValue[v] = make(map[string]struct{})
			}
			byValue[v][n.ID] = struct{}{}
		default:
			if num, ok := asIndexableNumber(value); ok {
				tree, ok := s.numIndex[key]
				if !ok {
					tree = btree.NewBTreeG[numItem](numItemLess)
					s.numIndex[key] = tree
				}
				tree.Set(numItem{Value: num, NodeID: n.ID})
			}
		}
	}
}

// deindexNode removes every index entry derived from the node's CURRENT
// state. It must run before the node is mutated or deleted.
// Caller must hold the write lock.
func (s *Store) deindexNode(n *Node) {
	if ids, ok := s.nodeTypeIndex[n.Type]; ok {
		delete(ids, n.ID)
		if len(ids) == 0 {
			delete(s.nodeTypeIndex, n.Type)
		}
	}

	for key, value := range n.Properties {
		if _, ok := indexedProperties[key]; !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			if byValue, ok := s.propIndex[key]; ok {
				if ids, ok := byValue[v]; ok {
					delete(ids, n.ID)
					if len(ids) == 0 {
						delete(byValue, v)
					}
				}
			}
		default:
			if num, ok := asIndexableNumber(value); ok {
				if tree, ok := s.numIndex[key]; ok {
					tree.Delete(numItem{Value: num, NodeID: n.ID})
				}
			}
		}
	}
}

// --- Relationship indexing ---

// indexRelationship inserts a relationship into the type index and both
// adjacency indexes. Caller must hold the write lock.
func (s *Store) indexRelationship(r *Relationship) {
	ids, ok := s.relTypeIndex[r.Type]
	if !ok {
		ids = make(map[string]struct{})
		s.relTypeIndex[r.Type] = ids
	}
	ids[r.ID] = struct{}{}

	out, ok := s.outgoing[r.SourceID]
	if !ok {
		out = make(map[string]struct{})
		s.outgoing[r.SourceID] = out
	}
	out[r.ID] = struct{}{}

	in, ok := s.incoming[r.TargetID]
	if !ok {
		in = make(map[string]struct{})
		s.incoming[r.TargetID] = in
	}
	in[r.ID] = struct{}{}
}

// deindexRelationship removes a relationship from the type index and both
// adjacency indexes. Caller must hold the write lock.
func (s *Store) deindexRelationship(r *Relationship) {
	if ids, ok := s.relTypeIndex[r.Type]; ok {
		delete(ids, r.ID)
		if len(ids) == 0 {
			delete(s.relTypeIndex, r.Type)
		}
	}
	if out, ok := s.outgoing[r.SourceID]; ok {
		delete(out, r.ID)
		if len(out) == 0 {
			delete(s.outgoing, r.SourceID)
		}
	}
	if in, ok := s.incoming[r.TargetID]; ok {
		delete(in, r.ID)
		if len(in) == 0 {
			delete(s.incoming, r.TargetID)
		}
	}
}

// --- Index lookups ---

// FindNodesByProperty performs a point lookup on the string property index.
// Returns the IDs of nodes whose allow-listed property equals value, sorted.
// Non-indexed property names always yield an empty result.
func (s *Store) FindNodesByProperty(name, value string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byValue, ok := s.propIndex[name]
	if !ok {
		return nil
	}
	return sortedIDs(byValue[value])
}

// FindNodesByPropertyRange scans the numeric B-Tree index for nodes whose
// property value falls within [min, max], inclusive. Returns sorted IDs.
func (s *Store) FindNodesByPropertyRange(name string, min, max float64) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tree, ok := s.numIndex[name]
	if !ok {
		return nil
	}

	ids := make(map[string]struct{})
	tree.Ascend(numItem{Value: min}, func(item numItem) bool {
		if item.Value > max {
			return false
		}
		ids[item.NodeID] = struct{}{}
		return true
	})
	return sortedIDs(ids)
}
