package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/plugincheck/internal/application"
	"github.com/abdidvp/plugincheck/internal/domain"
)

// Evaluator is the slice of application.EvaluateService the server needs.
type Evaluator interface {
	Evaluate(ctx context.Context, root string, opts application.EvaluateOptions) (*domain.Report, error)
	Validate(ctx context.Context, root string, opts application.EvaluateOptions) (*application.ValidationRun, error)
}

// NewPluginCheckMCPServer creates an MCP server with all plugincheck tools and
// resources registered. pluginPath is the plugin evaluated when a tool call
// does not name one.
func NewPluginCheckMCPServer(pluginPath, version string, eval Evaluator) *server.MCPServer {
	s := server.NewMCPServer(
		"plugincheck",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, pluginPath, eval)
	registerResources(s, pluginPath, eval)

	return s
}
