package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/plugincheck/internal/application"
	"github.com/abdidvp/plugincheck/internal/domain"
)

// registerResources registers all plugincheck MCP resources on the given server.
func registerResources(s *server.MCPServer, pluginPath string, eval Evaluator) {
	// plugincheck://report - full report for the server's plugin
	s.AddResource(
		mcplib.NewResource(
			"plugincheck://report",
			"Plugin Report",
			mcplib.WithResourceDescription("Full evaluation report: results, score and recommendations"),
			mcplib.WithMIMEType("application/json"),
		),
		handleReportResource(pluginPath, eval),
	)

	// plugincheck://components/{type}/{name} - results for one component
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			"plugincheck://components/{type}/{name}",
			"Component Results",
			mcplib.WithTemplateDescription("Validation results for a single component"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		handleComponentResource(pluginPath, eval),
	)
}

func handleReportResource(pluginPath string, eval Evaluator) server.ResourceHandlerFunc {
	return func(ctx context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		root, err := resolvePath(pluginPath, "")
		if err != nil {
			return nil, err
		}
		report, err := eval.Evaluate(ctx, root, application.EvaluateOptions{})
		if err != nil {
			return nil, fmt.Errorf("scoring failed: %w", err)
		}
		return jsonContents("plugincheck://report", report)
	}
}

func handleComponentResource(pluginPath string, eval Evaluator) server.ResourceTemplateHandlerFunc {
	return func(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		typ := templateArg(request, "type")
		name := templateArg(request, "name")
		if typ == "" || name == "" {
			return nil, fmt.Errorf("component type and name are required")
		}
		key := typ + "/" + name

		root, err := resolvePath(pluginPath, "")
		if err != nil {
			return nil, err
		}
		run, err := eval.Validate(ctx, root, application.EvaluateOptions{})
		if err != nil {
			return nil, fmt.Errorf("validate failed: %w", err)
		}

		var results []domain.ValidationResult
		for _, r := range run.Results {
			if r.ComponentKey() == key {
				results = append(results, r)
			}
		}
		if len(results) == 0 {
			return nil, fmt.Errorf("no component %q in plugin %s", key, run.Plugin.Name)
		}
		return jsonContents(request.Params.URI, results)
	}
}

// templateArg reads a URI template variable; depending on the matcher it
// arrives as a string or a one-element slice.
func templateArg(request mcplib.ReadResourceRequest, name string) string {
	switch v := request.Params.Arguments[name].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func jsonContents(uri string, v interface{}) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling resource: %w", err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
