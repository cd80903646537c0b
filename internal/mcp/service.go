package mcp

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sanonone/kraphdb/pkg/engine"
	"github.com/sanonone/kraphdb/pkg/graph"
)

type Service struct {
	engine *engine.Engine
}

func NewService(eng *engine.Engine) *Service {
	return &Service{engine: eng}
}

// --- Tool Handlers ---

func (s *Service) CreateNode(ctx context.Context, req *mcp.CallToolRequest, args CreateNodeArgs) (*mcp.CallToolResult, CreateNodeResult, error) {
	id, err := s.engine.CreateNode(args.Type, args.Properties, args.Labels)
	if err != nil {
		return nil, CreateNodeResult{}, err
	}
	return nil, CreateNodeResult{NodeID: id, Status: "created"}, nil
}

func (s *Service) CreateRelationship(ctx context.Context, req *mcp.CallToolRequest, args CreateRelationshipArgs) (*mcp.CallToolResult, CreateRelationshipResult, error) {
	id, err := s.engine.CreateRelationship(args.Type, args.SourceID, args.TargetID, args.Props, args.Weight)
	if err != nil {
		return nil, CreateRelationshipResult{}, err
	}
	return nil, CreateRelationshipResult{RelationshipID: id}, nil
}

func (s *Service) GetNode(ctx context.Context, req *mcp.CallToolRequest, args GetNodeArgs) (*mcp.CallToolResult, *graph.Node, error) {
	node, ok := s.engine.GetNode(args.NodeID)
	if !ok {
		return nil, nil, fmt.Errorf("node '%s' not found", args.NodeID)
	}
	return nil, node, nil
}

func (s *Service) DeleteNode(ctx context.Context, req *mcp.CallToolRequest, args DeleteNodeArgs) (*mcp.CallToolResult, DeleteNodeResult, error) {
	if !s.engine.DeleteNode(args.NodeID) {
		return nil, DeleteNodeResult{}, fmt.Errorf("node '%s' not found", args.NodeID)
	}
	return nil, DeleteNodeResult{Status: "deleted"}, nil
}

func (s *Service) RunQuery(ctx context.Context, req *mcp.CallToolRequest, args RunQueryArgs) (*mcp.CallToolResult, RunQueryResult, error) {
	res, err := s.engine.Query(args.Query)
	if err != nil {
		return nil, RunQueryResult{}, err
	}

	summary := fmt.Sprintf("%d nodes and %d relationships matched (%d total before pagination) in %s",
		len(res.Nodes), len(res.Relationships), res.Total, res.Duration)
	return nil, RunQueryResult{Summary: summary, Rows: res.Rows}, nil
}

func (s *Service) FindPath(ctx context.Context, req *mcp.CallToolRequest, args FindPathArgs) (*mcp.CallToolResult, FindPathResult, error) {
	if args.All {
		maxDepth := args.MaxDepth
		if maxDepth <= 0 {
			maxDepth = 5
		}
		paths := s.engine.FindAllPaths(args.SourceID, args.TargetID, maxDepth)
		if len(paths) == 0 {
			return nil, FindPathResult{PathDescription: "No path found."}, nil
		}
		var sb strings.Builder
		for i, p := range paths {
			sb.WriteString(fmt.Sprintf("%d. %s (weight %.2f)\n", i+1, s.describePath(p), p.Weight))
		}
		return nil, FindPathResult{PathDescription: sb.String()}, nil
	}

	path, found := s.engine.FindShortestPath(args.SourceID, args.TargetID)
	if !found {
		return nil, FindPathResult{PathDescription: "No path found."}, nil
	}
	return nil, FindPathResult{
		PathDescription: fmt.Sprintf("%s (weight %.2f)", s.describePath(*path), path.Weight),
	}, nil
}

func (s *Service) ExploreNeighbors(ctx context.Context, req *mcp.CallToolRequest, args ExploreNeighborsArgs) (*mcp.CallToolResult, ExploreNeighborsResult, error) {
	dir := graph.DirectionBoth
	switch args.Direction {
	case "out":
		dir = graph.DirectionOut
	case "in":
		dir = graph.DirectionIn
	}

	if _, ok := s.engine.GetNode(args.NodeID); !ok {
		return nil, ExploreNeighborsResult{}, fmt.Errorf("node '%s' not found", args.NodeID)
	}

	refs := s.engine.Neighbors(args.NodeID, dir, args.RelType, args.NodeType)
	if len(refs) == 0 {
		return nil, ExploreNeighborsResult{
			GraphDescription: fmt.Sprintf("No connections found around '%s'", args.NodeID),
		}, nil
	}

	// Format as a readable description for the LLM
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Graph context around '%s':\n", args.NodeID))
	for _, ref := range refs {
		rel, _ := s.engine.GetRelationship(ref.RelationshipID)
		node, _ := s.engine.GetNode(ref.NodeID)
		label := ref.NodeID
		if node != nil {
			if name, ok := node.Properties["name"].(string); ok {
				label = fmt.Sprintf("%s (%s)", name, node.Type)
			} else {
				label = fmt.Sprintf("%s (%s)", node.ID, node.Type)
			}
		}
		if rel != nil && rel.SourceID == args.NodeID {
			sb.WriteString(fmt.Sprintf("- [THIS] --(%s)--> %s\n", rel.Type, label))
		} else if rel != nil {
			sb.WriteString(fmt.Sprintf("- [THIS] <--(%s)-- %s\n", rel.Type, label))
		}
	}
	return nil, ExploreNeighborsResult{GraphDescription: sb.String()}, nil
}

func (s *Service) RankNodes(ctx context.Context, req *mcp.CallToolRequest, args RankNodesArgs) (*mcp.CallToolResult, RankNodesResult, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = 10
	}

	var scores []graph.CentralityScore
	switch args.Algorithm {
	case "degree":
		scores = s.engine.DegreeCentrality()
	case "", "pagerank":
		scores = s.engine.PageRank(graph.DefaultDamping, graph.DefaultIterations)
	default:
		return nil, RankNodesResult{}, fmt.Errorf("unknown algorithm '%s', want 'degree' or 'pagerank'", args.Algorithm)
	}

	if len(scores) > limit {
		scores = scores[:limit]
	}
	var res []string
	for i, sc := range scores {
		res = append(res, fmt.Sprintf("%d. %s (score %.4f)", i+1, sc.NodeID, sc.Score))
	}
	return nil, RankNodesResult{Ranking: res}, nil
}

func (s *Service) FindCommunities(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, FindCommunitiesResult, error) {
	comps := s.engine.ConnectedComponents()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d connected component(s):\n", len(comps)))
	for i, c := range comps {
		preview := c.Nodes
		if len(preview) > 5 {
			preview = preview[:5]
		}
		sb.WriteString(fmt.Sprintf("%d. %d node(s): %s", i+1, c.Size, strings.Join(preview, ", ")))
		if c.Size > len(preview) {
			sb.WriteString(", ...")
		}
		sb.WriteString("\n")
	}
	return nil, FindCommunitiesResult{Description: sb.String()}, nil
}

func (s *Service) ExportGraph(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, ExportGraphResult, error) {
	var buf bytes.Buffer
	if err := s.engine.Serialize(&buf); err != nil {
		return nil, ExportGraphResult{}, err
	}
	return nil, ExportGraphResult{SnapshotJSON: buf.String()}, nil
}

// describePath hydrates a path's node IDs into a "A -> B -> C" string,
// preferring 'name' properties when present.
func (s *Service) describePath(p graph.Path) string {
	parts := make([]string, 0, len(p.Nodes))
	for _, id := range p.Nodes {
		if node, ok := s.engine.GetNode(id); ok {
			if name, ok := node.Properties["name"].(string); ok {
				parts = append(parts, name)
				continue
			}
		}
		parts = append(parts, id)
	}
	return strings.Join(parts, " -> ")
}
