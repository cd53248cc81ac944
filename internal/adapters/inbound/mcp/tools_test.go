package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/plugincheck/internal/application"
	"github.com/abdidvp/plugincheck/internal/domain"
)

type fakeEvaluator struct {
	report *domain.Report
	run    *application.ValidationRun
	err    error

	lastRoot string
	lastOpts application.EvaluateOptions
}

func (f *fakeEvaluator) Evaluate(_ context.Context, root string, opts application.EvaluateOptions) (*domain.Report, error) {
	f.lastRoot, f.lastOpts = root, opts
	return f.report, f.err
}

func (f *fakeEvaluator) Validate(_ context.Context, root string, opts application.EvaluateOptions) (*application.ValidationRun, error) {
	f.lastRoot, f.lastOpts = root, opts
	return f.run, f.err
}

func sampleReport() *domain.Report {
	return &domain.Report{
		RunID:  "run-1",
		Plugin: &domain.Plugin{Name: "demo", Version: "1.0.0"},
		Results: []domain.ValidationResult{{
			Validator: "skill", ComponentType: domain.TypeSkill, ComponentName: "alpha", Valid: true,
			Findings: []domain.Finding{{Severity: domain.SeverityWarning, Category: domain.CategoryNaming, Message: "name"}},
		}},
		Score: domain.QualityScore{Overall: 82.5, Grade: "B+", Passed: true},
		Recommendations: []domain.Recommendation{
			{Priority: domain.PriorityHigh, Dimension: domain.DimensionStructural, Message: "first"},
			{Priority: domain.PriorityLow, Dimension: domain.DimensionDocumentation, Message: "second"},
		},
	}
}

func callTool(args map[string]any) mcplib.CallToolRequest {
	var req mcplib.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcplib.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestHandleScore(t *testing.T) {
	eval := &fakeEvaluator{report: sampleReport()}
	res, err := handleScore("/plugins/demo", eval)(context.Background(), callTool(map[string]any{"tests": "tests.json"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var got scoreSummary
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	assert.Equal(t, "demo", got.Plugin)
	assert.Equal(t, 82.5, got.Score.Overall)
	assert.Equal(t, 1, got.Findings)
	assert.Equal(t, "/plugins/demo", eval.lastRoot)
	assert.Equal(t, "tests.json", eval.lastOpts.TestsPath)
}

func TestHandleScore_PathArgumentWins(t *testing.T) {
	eval := &fakeEvaluator{report: sampleReport()}
	_, err := handleScore("/plugins/demo", eval)(context.Background(), callTool(map[string]any{"path": "/plugins/other"}))
	require.NoError(t, err)
	assert.Equal(t, "/plugins/other", eval.lastRoot)
}

func TestHandleScore_ErrorIsToolError(t *testing.T) {
	eval := &fakeEvaluator{err: errors.New("discovering plugin: boom")}
	res, err := handleScore("/plugins/demo", eval)(context.Background(), callTool(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "scoring failed")
}

func TestHandleValidate(t *testing.T) {
	report := sampleReport()
	report.Results = append(report.Results, domain.ValidationResult{
		ComponentType: domain.TypeManifest, ComponentName: "demo", Valid: false,
		Findings: []domain.Finding{{Severity: domain.SeverityError, Message: "bad version"}},
	})
	eval := &fakeEvaluator{run: &application.ValidationRun{Plugin: report.Plugin, Results: report.Results}}

	res, err := handleValidate("/plugins/demo", eval)(context.Background(), callTool(nil))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	assert.Equal(t, false, got["valid"])
	assert.Equal(t, float64(2), got["results"])
	assert.Len(t, got["findings"], 2)
}

func TestHandleRecommendations(t *testing.T) {
	tests := []struct {
		name  string
		limit any
		want  int
	}{
		{"all", nil, 2},
		{"limited", float64(1), 1},
		{"limit above count", float64(10), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]any{}
			if tt.limit != nil {
				args["limit"] = tt.limit
			}
			res, err := handleRecommendations("/plugins/demo", &fakeEvaluator{report: sampleReport()})(context.Background(), callTool(args))
			require.NoError(t, err)

			var recs []domain.Recommendation
			require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &recs))
			assert.Len(t, recs, tt.want)
			assert.Equal(t, "first", recs[0].Message)
		})
	}
}

func TestHandleRecommendations_None(t *testing.T) {
	report := sampleReport()
	report.Recommendations = nil
	res, err := handleRecommendations("/plugins/demo", &fakeEvaluator{report: report})(context.Background(), callTool(nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "No recommendations")
}

func TestHandleRecommendations_NegativeLimit(t *testing.T) {
	res, err := handleRecommendations("/plugins/demo", &fakeEvaluator{report: sampleReport()})(context.Background(), callTool(map[string]any{"limit": float64(-1)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleComponentResource(t *testing.T) {
	report := sampleReport()
	eval := &fakeEvaluator{run: &application.ValidationRun{Plugin: report.Plugin, Results: report.Results}}
	handler := handleComponentResource("/plugins/demo", eval)

	var req mcplib.ReadResourceRequest
	req.Params.URI = "plugincheck://components/skill/alpha"
	req.Params.Arguments = map[string]any{"type": "skill", "name": "alpha"}
	contents, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text := contents[0].(mcplib.TextResourceContents)
	assert.Contains(t, text.Text, `"alpha"`)

	req.Params.Arguments = map[string]any{"type": "skill", "name": "missing"}
	_, err = handler(context.Background(), req)
	assert.Error(t, err)
}
