// Package service assembles and runs the MCP server for the combat tracker.
package service

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/moderncanvas/dmsecretweapon-backend/internal/combat/service"
	"github.com/moderncanvas/dmsecretweapon-backend/internal/mcp/domain"
	"github.com/moderncanvas/dmsecretweapon-backend/internal/rules/catalog"
)

const (
	serverName    = "dm-command-center"
	serverVersion = "0.1.0"

	shutdownTimeout = 10 * time.Second
)

// Transport selects how the MCP server talks to clients.
type Transport string

const (
	// TransportStdio serves MCP over stdin/stdout for local assistants.
	TransportStdio Transport = "stdio"
	// TransportHTTP serves MCP over streamable HTTP.
	TransportHTTP Transport = "http"
)

// Server wires the combat tracker tools into an MCP server.
type Server struct {
	mcpServer *mcp.Server
	logger    *log.Logger
}

// NewServer creates an MCP server with every combat tool registered. The
// monster store is optional; monster_lookup degrades to an empty catalog.
func NewServer(combat *service.Service, monsters catalog.MonsterStore, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(mcpServer, domain.CombatCreateTool(), domain.CombatCreateHandler(combat))
	mcp.AddTool(mcpServer, domain.CombatGetTool(), domain.CombatGetHandler(combat))
	mcp.AddTool(mcpServer, domain.CombatListTool(), domain.CombatListHandler(combat))
	mcp.AddTool(mcpServer, domain.CombatEndTool(), domain.CombatEndHandler(combat))
	mcp.AddTool(mcpServer, domain.CombatAddCombatantTool(), domain.CombatAddCombatantHandler(combat))
	mcp.AddTool(mcpServer, domain.CombatRemoveCombatantTool(), domain.CombatRemoveCombatantHandler(combat))
	mcp.AddTool(mcpServer, domain.CombatNextTurnTool(), domain.CombatNextTurnHandler(combat))
	mcp.AddTool(mcpServer, domain.CombatUpdateHPTool(), domain.CombatUpdateHPHandler(combat))
	mcp.AddTool(mcpServer, domain.CombatAddConditionTool(), domain.CombatAddConditionHandler(combat))
	mcp.AddTool(mcpServer, domain.CombatRemoveConditionTool(), domain.CombatRemoveConditionHandler(combat))
	mcp.AddTool(mcpServer, domain.ConditionsListTool(), domain.ConditionsListHandler())
	mcp.AddTool(mcpServer, domain.MonsterLookupTool(), domain.MonsterLookupHandler(monsters))

	return &Server{mcpServer: mcpServer, logger: logger}
}

// MCPServer exposes the underlying server for in-process client connections.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// Run serves MCP until ctx is canceled. An empty transport defaults to stdio.
func (s *Server) Run(ctx context.Context, transport Transport, httpAddr string) error {
	if transport == "" {
		transport = TransportStdio
	}

	switch transport {
	case TransportStdio:
		return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		return s.runHTTP(ctx, httpAddr)
	default:
		return fmt.Errorf("transport %q is not supported", transport)
	}
}

// runHTTP serves MCP over the SDK's streamable HTTP handler and shuts down
// gracefully on context cancellation.
func (s *Server) runHTTP(ctx context.Context, addr string) error {
	if addr == "" {
		// Localhost-only binding unless explicitly configured otherwise.
		addr = "localhost:8081"
	}

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)

	server := &http.Server{Addr: addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
