package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/plugincheck/internal/application"
	"github.com/abdidvp/plugincheck/internal/domain"
)

// registerTools registers all plugincheck MCP tools on the given server.
func registerTools(s *server.MCPServer, pluginPath string, eval Evaluator) {
	s.AddTool(
		mcplib.NewTool("plugincheck_score",
			mcplib.WithDescription("Validate and score a plugin. Returns the composite score, dimension breakdown, overrides and grade as JSON"),
			mcplib.WithString("path",
				mcplib.Description("Plugin root directory (defaults to the server's plugin)"),
			),
			mcplib.WithString("tests",
				mcplib.Description("Path to a user test record (JSON or YAML)"),
			),
		),
		handleScore(pluginPath, eval),
	)

	s.AddTool(
		mcplib.NewTool("plugincheck_validate",
			mcplib.WithDescription("Run every validator over a plugin without scoring. Returns validity and all findings"),
			mcplib.WithString("path",
				mcplib.Description("Plugin root directory (defaults to the server's plugin)"),
			),
		),
		handleValidate(pluginPath, eval),
	)

	s.AddTool(
		mcplib.NewTool("plugincheck_recommendations",
			mcplib.WithDescription("Returns the prioritized list of fixes for a plugin, most urgent first"),
			mcplib.WithString("path",
				mcplib.Description("Plugin root directory (defaults to the server's plugin)"),
			),
			mcplib.WithNumber("limit",
				mcplib.Description("Maximum number of recommendations (0 for all)"),
			),
		),
		handleRecommendations(pluginPath, eval),
	)
}

// scoreSummary is the plugincheck_score payload: the score without the raw results.
type scoreSummary struct {
	Plugin     string              `json:"plugin"`
	Version    string              `json:"version,omitempty"`
	RunID      string              `json:"run_id"`
	CommitHash string              `json:"commit_hash,omitempty"`
	Score      domain.QualityScore `json:"score"`
	Findings   int                 `json:"findings"`
}

func handleScore(pluginPath string, eval Evaluator) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		root, err := resolvePath(pluginPath, request.GetString("path", ""))
		if err != nil {
			return errorResult(err.Error()), nil
		}

		report, err := eval.Evaluate(ctx, root, application.EvaluateOptions{TestsPath: request.GetString("tests", "")})
		if err != nil {
			return errorResult(fmt.Sprintf("scoring failed: %v", err)), nil
		}
		return jsonResult(scoreSummary{
			Plugin:     report.Plugin.Name,
			Version:    report.Plugin.Version,
			RunID:      report.RunID,
			CommitHash: report.CommitHash,
			Score:      report.Score,
			Findings:   len(report.Findings()),
		})
	}
}

func handleValidate(pluginPath string, eval Evaluator) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		root, err := resolvePath(pluginPath, request.GetString("path", ""))
		if err != nil {
			return errorResult(err.Error()), nil
		}

		run, err := eval.Validate(ctx, root, application.EvaluateOptions{})
		if err != nil {
			return errorResult(fmt.Sprintf("validate failed: %v", err)), nil
		}
		return jsonResult(map[string]interface{}{
			"plugin":   run.Plugin.Name,
			"valid":    run.Valid(),
			"results":  len(run.Results),
			"findings": domain.CollectFindings(run.Results),
		})
	}
}

func handleRecommendations(pluginPath string, eval Evaluator) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		root, err := resolvePath(pluginPath, request.GetString("path", ""))
		if err != nil {
			return errorResult(err.Error()), nil
		}
		limit := request.GetInt("limit", 0)
		if limit < 0 {
			return errorResult("limit must not be negative"), nil
		}

		report, err := eval.Evaluate(ctx, root, application.EvaluateOptions{})
		if err != nil {
			return errorResult(fmt.Sprintf("scoring failed: %v", err)), nil
		}
		recs := report.Recommendations
		if limit > 0 && len(recs) > limit {
			recs = recs[:limit]
		}
		if len(recs) == 0 {
			return textResult("No recommendations: every sub-metric is above its threshold."), nil
		}
		return jsonResult(recs)
	}
}

func resolvePath(defaultPath, requested string) (string, error) {
	p := defaultPath
	if requested != "" {
		p = requested
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}

// jsonResult marshals v to indented JSON and wraps it in a CallToolResult.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// textResult returns a plain text content result.
func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(text)},
	}
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
