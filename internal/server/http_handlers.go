package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sanonone/kraphdb/pkg/graph"
	"github.com/sanonone/kraphdb/pkg/query"
)

// registerHTTPHandlers sets up the REST API routes.
func (s *Server) registerHTTPHandlers(mux *http.ServeMux) {
	// Queries
	mux.HandleFunc("POST /api/v1/query", s.handleQuery)

	// Nodes
	mux.HandleFunc("POST /api/v1/nodes", s.handleCreateNode)
	mux.HandleFunc("GET /api/v1/nodes/{id}", s.handleGetNode)
	mux.HandleFunc("PATCH /api/v1/nodes/{id}", s.handleUpdateNode)
	mux.HandleFunc("DELETE /api/v1/nodes/{id}", s.handleDeleteNode)
	mux.HandleFunc("GET /api/v1/nodes/{id}/neighbors", s.handleNeighbors)

	// Relationships
	mux.HandleFunc("POST /api/v1/relationships", s.handleCreateRelationship)
	mux.HandleFunc("GET /api/v1/relationships/{id}", s.handleGetRelationship)
	mux.HandleFunc("DELETE /api/v1/relationships/{id}", s.handleDeleteRelationship)

	// Traversal
	mux.HandleFunc("GET /api/v1/paths/shortest", s.handleShortestPath)
	mux.HandleFunc("GET /api/v1/paths/all", s.handleAllPaths)

	// Analytics
	mux.HandleFunc("GET /api/v1/analytics/centrality", s.handleCentrality)
	mux.HandleFunc("GET /api/v1/analytics/pagerank", s.handlePageRank)
	mux.HandleFunc("GET /api/v1/analytics/components", s.handleComponents)
	mux.HandleFunc("GET /api/v1/graph/stats", s.handleStats)

	// Snapshots
	mux.HandleFunc("GET /api/v1/graph/export", s.handleExport)
	mux.HandleFunc("POST /api/v1/graph/import", s.handleImport)
}

// --- Query ---

type queryRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "Invalid JSON, expected an object with a 'query' key")
		return
	}
	if req.Query == "" {
		s.writeHTTPError(w, http.StatusBadRequest, "The query cannot be empty")
		return
	}

	res, err := s.Engine.Query(req.Query)
	if err != nil {
		// Lex and parse failures are the caller's fault; anything else
		// from the executor maps to 422 so clients can tell them apart.
		var lexErr *query.LexError
		var parseErr *query.ParseError
		switch {
		case errors.As(err, &lexErr), errors.As(err, &parseErr):
			s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		default:
			s.writeHTTPError(w, http.StatusUnprocessableEntity, err.Error())
		}
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, res)
}

// --- Nodes ---

type createNodeRequest struct {
	Type       string         `json:"type"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`
}

func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	var req createNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	id, err := s.Engine.CreateNode(req.Type, req.Properties, req.Labels)
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeHTTPResponse(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	node, ok := s.Engine.GetNode(r.PathValue("id"))
	if !ok {
		s.writeHTTPError(w, http.StatusNotFound, "Node not found")
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, node)
}

type updateNodeRequest struct {
	Type       *string        `json:"type"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	var req updateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	ok := s.Engine.UpdateNode(r.PathValue("id"), graph.NodeUpdate{
		Type:       req.Type,
		Labels:     req.Labels,
		Properties: req.Properties,
	})
	if !ok {
		s.writeHTTPError(w, http.StatusNotFound, "Node not found")
		return
	}
	node, _ := s.Engine.GetNode(r.PathValue("id"))
	s.writeHTTPResponse(w, http.StatusOK, node)
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	if !s.Engine.DeleteNode(r.PathValue("id")) {
		s.writeHTTPError(w, http.StatusNotFound, "Node not found")
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.Engine.GetNode(id); !ok {
		s.writeHTTPError(w, http.StatusNotFound, "Node not found")
		return
	}

	dir := graph.DirectionBoth
	switch r.URL.Query().Get("direction") {
	case "", "both":
	case "out":
		dir = graph.DirectionOut
	case "in":
		dir = graph.DirectionIn
	default:
		s.writeHTTPError(w, http.StatusBadRequest, "direction must be 'out', 'in' or 'both'")
		return
	}

	refs := s.Engine.Neighbors(id, dir,
		r.URL.Query().Get("rel_type"),
		r.URL.Query().Get("node_type"),
	)
	s.writeHTTPResponse(w, http.StatusOK, map[string]any{"neighbors": refs})
}

// --- Relationships ---

type createRelationshipRequest struct {
	Type       string         `json:"type"`
	SourceID   string         `json:"source_id"`
	TargetID   string         `json:"target_id"`
	Properties map[string]any `json:"properties"`
	Weight     *float64       `json:"weight"`
}

func (s *Server) handleCreateRelationship(w http.ResponseWriter, r *http.Request) {
	var req createRelationshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	id, err := s.Engine.CreateRelationship(req.Type, req.SourceID, req.TargetID, req.Properties, req.Weight)
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeHTTPResponse(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleGetRelationship(w http.ResponseWriter, r *http.Request) {
	rel, ok := s.Engine.GetRelationship(r.PathValue("id"))
	if !ok {
		s.writeHTTPError(w, http.StatusNotFound, "Relationship not found")
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, rel)
}

func (s *Server) handleDeleteRelationship(w http.ResponseWriter, r *http.Request) {
	if !s.Engine.DeleteRelationship(r.PathValue("id")) {
		s.writeHTTPError(w, http.StatusNotFound, "Relationship not found")
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Traversal ---

func (s *Server) handleShortestPath(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		s.writeHTTPError(w, http.StatusBadRequest, "'from' and 'to' query parameters are required")
		return
	}

	path, found := s.Engine.FindShortestPath(from, to)
	if !found {
		s.writeHTTPError(w, http.StatusNotFound, "No path between the given nodes")
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, path)
}

func (s *Server) handleAllPaths(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		s.writeHTTPError(w, http.StatusBadRequest, "'from' and 'to' query parameters are required")
		return
	}

	maxDepth := 5
	if raw := r.URL.Query().Get("max_depth"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 1 {
			s.writeHTTPError(w, http.StatusBadRequest, "max_depth must be a positive integer")
			return
		}
		maxDepth = d
	}

	paths := s.Engine.FindAllPaths(from, to, maxDepth)
	s.writeHTTPResponse(w, http.StatusOK, map[string]any{"paths": paths, "count": len(paths)})
}

// --- Analytics ---

func (s *Server) handleCentrality(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, map[string]any{"scores": s.Engine.DegreeCentrality()})
}

func (s *Server) handlePageRank(w http.ResponseWriter, r *http.Request) {
	damping := graph.DefaultDamping
	if raw := r.URL.Query().Get("damping"); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil || d <= 0 || d >= 1 {
			s.writeHTTPError(w, http.StatusBadRequest, "damping must be a number between 0 and 1")
			return
		}
		damping = d
	}

	iterations := graph.DefaultIterations
	if raw := r.URL.Query().Get("iterations"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeHTTPError(w, http.StatusBadRequest, "iterations must be a positive integer")
			return
		}
		iterations = n
	}

	s.writeHTTPResponse(w, http.StatusOK, map[string]any{"scores": s.Engine.PageRank(damping, iterations)})
}

func (s *Server) handleComponents(w http.ResponseWriter, r *http.Request) {
	comps := s.Engine.ConnectedComponents()
	s.writeHTTPResponse(w, http.StatusOK, map[string]any{"components": comps, "count": len(comps)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, s.Engine.GraphStats())
}

// --- Snapshots ---

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="graph-export.json"`)
	if err := s.Engine.Serialize(w); err != nil {
		// Headers are already out, the best we can do is log.
		slog.Error("Graph export failed mid-stream", "error", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Deserialize(r.Body); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, map[string]any{
		"status":        "imported",
		"nodes":         s.Engine.NodeCount(),
		"relationships": s.Engine.RelationshipCount(),
	})
}

// --- Helpers ---

func (s *Server) writeHTTPResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeHTTPError(w http.ResponseWriter, statusCode int, message string) {
	s.writeHTTPResponse(w, statusCode, map[string]string{"error": message})
}
