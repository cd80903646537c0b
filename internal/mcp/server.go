package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sanonone/kraphdb/pkg/engine"
)

func NewMCPServer(eng *engine.Engine) *mcp.Server {
	service := NewService(eng)

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "KraphDB Graph",
		Version: "0.1.0",
	}, nil) // Options can be nil for default

	// Register Tools using the Generic AddTool which inspects structs!

	mcp.AddTool(s, &mcp.Tool{
		Name:        "create_node",
		Description: "Create a node with a type, optional labels and properties.",
	}, service.CreateNode)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "create_relationship",
		Description: "Create a directed, typed relationship between two existing nodes.",
	}, service.CreateRelationship)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_node",
		Description: "Fetch a node by ID, including its labels and properties.",
	}, service.GetNode)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "delete_node",
		Description: "Delete a node and every relationship touching it.",
	}, service.DeleteNode)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "run_query",
		Description: "Run a graph query (MATCH ... WHERE ... RETURN ...) and get tabular results.",
	}, service.RunQuery)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "find_path",
		Description: "Discover how two nodes are connected in the graph (Pathfinding).",
	}, service.FindPath)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "explore_neighbors",
		Description: "Explore the graph neighborhood of a specific node to understand context.",
	}, service.ExploreNeighbors)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "rank_nodes",
		Description: "Rank nodes by importance using degree centrality or PageRank.",
	}, service.RankNodes)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "find_communities",
		Description: "List the connected components (communities) of the graph.",
	}, service.FindCommunities)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "export_graph",
		Description: "Export the whole graph as a JSON snapshot.",
	}, service.ExportGraph)

	return s
}
