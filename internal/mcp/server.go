package mcp

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/adamavenir/amelie/internal/core"
	"github.com/adamavenir/amelie/internal/db"
	"github.com/adamavenir/amelie/internal/favorites"
	"github.com/adamavenir/amelie/internal/guideclient"
	"github.com/adamavenir/amelie/internal/session"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverName = "amelie"

// Server exposes one guide session over MCP on stdio.
type Server struct {
	sdk     *mcp.Server
	tools   *ToolContext
	history *db.History
}

// NewServer wires a guide session from settings and registers its tools.
// Guide history is recorded when the database can be opened.
func NewServer(settings core.Settings, version string) (*Server, error) {
	logger := log.New(os.Stderr, "[amelie-mcp] ", log.LstdFlags)

	client, err := guideclient.New(settings.APIBase,
		guideclient.WithTimeout(settings.Timeout),
		guideclient.WithLogger(logger),
		guideclient.WithUserAgent(serverName+"-mcp/"+version),
	)
	if err != nil {
		return nil, err
	}
	logf("Guide service: %s", client.BaseURL())

	store := session.NewStore()
	controller := session.NewController(store, client, favorites.New(client, store, logger), logger)

	server := &Server{tools: &ToolContext{Controller: controller}}
	if conn, err := db.OpenHistory(settings.HistoryPath); err != nil {
		logf("Guide history disabled: %v", err)
	} else {
		server.history = db.NewHistory(conn)
		controller.History = server.history
		logf("Guide history: %s", settings.HistoryPath)
	}

	server.sdk = mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil)
	RegisterTools(server.sdk, server.tools)
	return server, nil
}

// Run serves MCP over stdio until the client disconnects or ctx is done.
// Favorites start loading right away; a failure is only logged.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		_ = s.tools.Controller.RefreshFavorites(ctx)
	}()
	return s.sdk.Run(ctx, &mcp.StdioTransport{})
}

// Close shuts down the server.
func (s *Server) Close() error {
	if s.history != nil {
		_ = s.history.Close()
	}
	logf("Server closed")
	return nil
}

func logf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "[amelie-mcp] %s\n", fmt.Sprintf(format, args...))
}
