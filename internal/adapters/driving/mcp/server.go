// Package mcp exposes the knowledge base to MCP clients.
//
// The server offers one tool and one resource:
//
//   - search: embeds the query and returns the nearest chunks with their
//     source, position and similarity score.
//   - kbase://index: a JSON summary of the persisted index (entry count,
//     dimensions, embedding model, ingested sources).
//
// Both read the artifact that kbase ingest wrote; neither builds one.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Names clients use to reach the knowledge base.
const (
	SearchToolName   = "search"
	IndexResourceURI = uriScheme + "index"
)

// instructions is sent to clients during initialization.
const instructions = "Answer questions from the ingested knowledge base. " +
	"Call the " + SearchToolName + " tool with the user's question and cite the returned chunks. " +
	"Read " + IndexResourceURI + " to see what has been ingested. " +
	"If the index is missing, ask the user to run kbase ingest."

// Server serves the search tool and the index resource over stdio or
// streamable HTTP. Queries go to Ports.KnowledgeBase against
// Ports.ArtifactPath, or the configured artifact when that is empty.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer validates ports and registers the tool and resource.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "kbase", Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}
	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run serves a single client over stdin/stdout until ctx is done or the
// client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves clients on addr with the streamable HTTP transport. It
// returns nil after ctx is cancelled and the listener shuts down.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
