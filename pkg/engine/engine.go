// Package engine provides the high-level, embedded interface for KraphDB.
//
// It wraps the in-memory graph store with the text query pipeline
// (tokenizer, parser, executor) and operation metrics, providing a single
// instance that can be used directly within Go applications without any
// network overhead.
//
// Basic usage:
//
//	eng := engine.New()
//	alice, _ := eng.CreateNode("Person", map[string]any{"name": "Alice"}, nil)
//	res, err := eng.Query("MATCH (p:Person) RETURN p")
//
// The engine runs every call to completion before returning; there are no
// internal suspension points, timeouts, or retries. Callers needing
// bounded execution time for the analytics operations must impose it
// externally.
package engine

import (
	"io"

	"github.com/sanonone/kraphdb/pkg/graph"
	"github.com/sanonone/kraphdb/pkg/metrics"
)

// Engine is the main entry point for KraphDB. It owns one graph store;
// construct one per session and pass it by reference. There is no global
// instance.
type Engine struct {
	store *graph.Store
}

// New creates an Engine with an empty store.
func New() *Engine {
	return &Engine{store: graph.New()}
}

// NewWithStore wraps an existing store, for embedders that build or load
// the store themselves.
func NewWithStore(store *graph.Store) *Engine {
	return &Engine{store: store}
}

// Store exposes the underlying graph store for direct CRUD and traversal
// calls. Operations made through the Engine methods additionally record
// metrics; both routes hit the same store.
func (e *Engine) Store() *graph.Store {
	return e.store
}

// Clear drops all graph data. Identifiers are never reused afterwards.
func (e *Engine) Clear() {
	e.store.Clear()
	metrics.OperationsTotal.WithLabelValues("clear").Inc()
	e.syncGauges()
}

// Serialize writes a full-graph snapshot to w. Where the snapshot lives
// (disk, blob store) is the caller's concern; the engine itself holds
// state only in memory.
func (e *Engine) Serialize(w io.Writer) error {
	return e.store.Serialize(w)
}

// Deserialize replaces the graph with a snapshot read from r.
func (e *Engine) Deserialize(r io.Reader) error {
	if err := e.store.Deserialize(r); err != nil {
		return err
	}
	metrics.OperationsTotal.WithLabelValues("import").Inc()
	e.syncGauges()
	return nil
}

func (e *Engine) syncGauges() {
	metrics.NodesTotal.Set(float64(e.store.NodeCount()))
	metrics.RelationshipsTotal.Set(float64(e.store.RelationshipCount()))
}
