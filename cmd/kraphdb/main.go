package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sanonone/kraphdb/pkg/engine"

	internalmcp "github.com/sanonone/kraphdb/internal/mcp"
	"github.com/sanonone/kraphdb/internal/server"
)

func main() {
	httpAddr := flag.String("http-addr", ":9191", "Address and port for the REST API server (e.g. :9191)")
	configPath := flag.String("config", "", "Path to the YAML configuration file")
	authToken := flag.String("auth-token", "", "Bearer token required on API requests (overrides config)")
	seedPath := flag.String("seed", "", "Path to a JSON snapshot to import at startup (overrides config)")
	mcpMode := flag.Bool("mcp", false, "Serve the MCP tool interface over stdio instead of HTTP")

	flag.Parse()

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Could not load configuration", "error", err)
		os.Exit(1)
	}

	// Flags win over the config file.
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *authToken != "" {
		cfg.AuthToken = *authToken
	}
	if *seedPath != "" {
		cfg.SeedPath = *seedPath
	}

	eng := engine.New()

	if *mcpMode {
		// Stdio is the MCP transport, so logs must stay on stderr.
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

		if cfg.SeedPath != "" {
			f, err := os.Open(cfg.SeedPath)
			if err != nil {
				slog.Error("Could not open seed file", "error", err)
				os.Exit(1)
			}
			err = eng.Deserialize(f)
			f.Close()
			if err != nil {
				slog.Error("Seed import failed", "error", err)
				os.Exit(1)
			}
		}

		mcpServer := internalmcp.NewMCPServer(eng)
		if err := mcpServer.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
			slog.Error("MCP server stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	srv, err := server.NewServer(eng, cfg)
	if err != nil {
		slog.Error("Could not create the server", "error", err)
		os.Exit(1)
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Run(); err != nil {
			slog.Error("Server stopped", "error", err)
			os.Exit(1)
		}
	}()

	<-shutdownChan

	srv.Shutdown()
}
