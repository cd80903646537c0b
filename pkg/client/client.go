// Package client provides a Go client for the KraphDB REST API.
//
// It offers a type-safe way to perform all major operations, including:
//   - Node and relationship CRUD.
//   - Running graph queries.
//   - Pathfinding and neighborhood exploration.
//   - Analytics (centrality, PageRank, components, stats).
//   - Snapshot export and import.
//
// The client handles HTTP communication, JSON serialization/deserialization,
// Bearer auth, and standardized error handling.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sanonone/kraphdb/pkg/graph"
)

// APIError represents an error returned by the KraphDB API (status >= 400).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// --- JSON Response Structs ---

type idResponse struct {
	ID string `json:"id"`
}

type neighborsResponse struct {
	Neighbors []graph.NeighborRef `json:"neighbors"`
}

type pathsResponse struct {
	Paths []graph.Path `json:"paths"`
	Count int          `json:"count"`
}

type scoresResponse struct {
	Scores []graph.CentralityScore `json:"scores"`
}

type componentsResponse struct {
	Components []graph.Component `json:"components"`
	Count      int               `json:"count"`
}

// QueryResult models the response of the query endpoint.
type QueryResult struct {
	Nodes         []graph.Node         `json:"nodes"`
	Relationships []graph.Relationship `json:"relationships"`
	Paths         []graph.Path         `json:"paths,omitempty"`
	Rows          []map[string]any     `json:"rows,omitempty"`
	Total         int                  `json:"total"`
}

// --- Client ---

// Client is the Go client for interacting with KraphDB.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// New creates a new KraphDB client for the given base URL
// (e.g. "http://localhost:9191"). An empty token disables auth.
func New(baseURL, authToken string) *Client {
	return &Client{
		baseURL:    baseURL,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// jsonRequest is a helper method to execute all requests to the API.
// It handles JSON serialization, HTTP calls, and error management.
func (c *Client) jsonRequest(method, endpoint string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON payload: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error == "" {
			apiErr.Error = string(body)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}
	return body, nil
}

// --- Nodes ---

// CreateNode creates a node and returns its server-assigned ID.
func (c *Client) CreateNode(nodeType string, properties map[string]any, labels []string) (string, error) {
	body, err := c.jsonRequest(http.MethodPost, "/api/v1/nodes", map[string]any{
		"type":       nodeType,
		"labels":     labels,
		"properties": properties,
	})
	if err != nil {
		return "", err
	}
	var res idResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return res.ID, nil
}

// GetNode fetches a node by ID.
func (c *Client) GetNode(id string) (*graph.Node, error) {
	body, err := c.jsonRequest(http.MethodGet, "/api/v1/nodes/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var node graph.Node
	if err := json.Unmarshal(body, &node); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &node, nil
}

// UpdateNode applies a partial update and returns the updated node.
// Nil fields keep their current values; properties merge into the
// existing map.
func (c *Client) UpdateNode(id string, nodeType *string, labels []string, properties map[string]any) (*graph.Node, error) {
	body, err := c.jsonRequest(http.MethodPatch, "/api/v1/nodes/"+url.PathEscape(id), map[string]any{
		"type":       nodeType,
		"labels":     labels,
		"properties": properties,
	})
	if err != nil {
		return nil, err
	}
	var node graph.Node
	if err := json.Unmarshal(body, &node); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &node, nil
}

// DeleteNode deletes a node and every relationship touching it.
func (c *Client) DeleteNode(id string) error {
	_, err := c.jsonRequest(http.MethodDelete, "/api/v1/nodes/"+url.PathEscape(id), nil)
	return err
}

// Neighbors lists the direct neighbors of a node. Direction is "out",
// "in", or "both"; empty filters match everything.
func (c *Client) Neighbors(id, direction, relType, nodeType string) ([]graph.NeighborRef, error) {
	q := url.Values{}
	if direction != "" {
		q.Set("direction", direction)
	}
	if relType != "" {
		q.Set("rel_type", relType)
	}
	if nodeType != "" {
		q.Set("node_type", nodeType)
	}
	endpoint := "/api/v1/nodes/" + url.PathEscape(id) + "/neighbors"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	body, err := c.jsonRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var res neighborsResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return res.Neighbors, nil
}

// --- Relationships ---

// CreateRelationship links two existing nodes and returns the new
// relationship ID. A nil weight means 1.
func (c *Client) CreateRelationship(relType, sourceID, targetID string, properties map[string]any, weight *float64) (string, error) {
	body, err := c.jsonRequest(http.MethodPost, "/api/v1/relationships", map[string]any{
		"type":       relType,
		"source_id":  sourceID,
		"target_id":  targetID,
		"properties": properties,
		"weight":     weight,
	})
	if err != nil {
		return "", err
	}
	var res idResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return res.ID, nil
}

// GetRelationship fetches a relationship by ID.
func (c *Client) GetRelationship(id string) (*graph.Relationship, error) {
	body, err := c.jsonRequest(http.MethodGet, "/api/v1/relationships/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var rel graph.Relationship
	if err := json.Unmarshal(body, &rel); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &rel, nil
}

// DeleteRelationship deletes a relationship by ID.
func (c *Client) DeleteRelationship(id string) error {
	_, err := c.jsonRequest(http.MethodDelete, "/api/v1/relationships/"+url.PathEscape(id), nil)
	return err
}

// --- Queries ---

// Query runs query text on the server and returns the structured result.
func (c *Client) Query(query string) (*QueryResult, error) {
	body, err := c.jsonRequest(http.MethodPost, "/api/v1/query", map[string]string{"query": query})
	if err != nil {
		return nil, err
	}
	var res QueryResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &res, nil
}

// --- Traversal ---

// ShortestPath returns the fewest-hop path between two nodes.
// A missing route surfaces as an APIError with status 404.
func (c *Client) ShortestPath(from, to string) (*graph.Path, error) {
	q := url.Values{"from": {from}, "to": {to}}
	body, err := c.jsonRequest(http.MethodGet, "/api/v1/paths/shortest?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var path graph.Path
	if err := json.Unmarshal(body, &path); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &path, nil
}

// AllPaths enumerates every simple path between two nodes up to maxDepth
// hops. maxDepth <= 0 uses the server default.
func (c *Client) AllPaths(from, to string, maxDepth int) ([]graph.Path, error) {
	q := url.Values{"from": {from}, "to": {to}}
	if maxDepth > 0 {
		q.Set("max_depth", strconv.Itoa(maxDepth))
	}
	body, err := c.jsonRequest(http.MethodGet, "/api/v1/paths/all?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var res pathsResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return res.Paths, nil
}

// --- Analytics ---

// DegreeCentrality ranks every node by its total degree.
func (c *Client) DegreeCentrality() ([]graph.CentralityScore, error) {
	return c.getScores("/api/v1/analytics/centrality")
}

// PageRank ranks every node by PageRank. Non-positive arguments use the
// server defaults.
func (c *Client) PageRank(damping float64, iterations int) ([]graph.CentralityScore, error) {
	q := url.Values{}
	if damping > 0 {
		q.Set("damping", strconv.FormatFloat(damping, 'f', -1, 64))
	}
	if iterations > 0 {
		q.Set("iterations", strconv.Itoa(iterations))
	}
	endpoint := "/api/v1/analytics/pagerank"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	return c.getScores(endpoint)
}

func (c *Client) getScores(endpoint string) ([]graph.CentralityScore, error) {
	body, err := c.jsonRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var res scoresResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return res.Scores, nil
}

// ConnectedComponents lists the undirected components, largest first.
func (c *Client) ConnectedComponents() ([]graph.Component, error) {
	body, err := c.jsonRequest(http.MethodGet, "/api/v1/analytics/components", nil)
	if err != nil {
		return nil, err
	}
	var res componentsResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return res.Components, nil
}

// Stats returns summary statistics about the graph shape.
func (c *Client) Stats() (*graph.Stats, error) {
	body, err := c.jsonRequest(http.MethodGet, "/api/v1/graph/stats", nil)
	if err != nil {
		return nil, err
	}
	var stats graph.Stats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &stats, nil
}

// --- Snapshots ---

// Export streams the server's snapshot JSON into w.
func (c *Client) Export(w io.Writer) error {
	body, err := c.jsonRequest(http.MethodGet, "/api/v1/graph/export", nil)
	if err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// Import replaces the server's graph with the snapshot JSON read from r.
func (c *Client) Import(r io.Reader) error {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/v1/graph/import", r)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	return nil
}

// Healthz reports whether the server answers its health probe.
func (c *Client) Healthz() error {
	_, err := c.jsonRequest(http.MethodGet, "/healthz", nil)
	return err
}
