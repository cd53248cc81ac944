package application_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/plugincheck/internal/application"
	"github.com/abdidvp/plugincheck/internal/domain"
	"github.com/abdidvp/plugincheck/internal/domain/validation"
)

type fakeDiscoverer struct {
	plugins map[string]*domain.Plugin
}

func (d fakeDiscoverer) Discover(root string) (*domain.Plugin, error) {
	p, ok := d.plugins[root]
	if !ok {
		return nil, fmt.Errorf("no plugin at %s", root)
	}
	return p, nil
}

type staticConfig struct {
	cfg domain.EngineConfig
	err error
}

func (c staticConfig) Load(string) (domain.EngineConfig, error) { return c.cfg, c.err }

type fakeTests struct {
	report *domain.UserTestReport
	err    error
}

func (f fakeTests) Load(string) (*domain.UserTestReport, error) { return f.report, f.err }

type fakeGit struct {
	hash    string
	notRepo bool
}

func (g fakeGit) IsGitRepo(string) bool { return !g.notRepo }

func (g fakeGit) CommitHash(string) (string, error) { return g.hash, nil }

type fakeLocator struct{ refs []domain.PluginRef }

func (l fakeLocator) Locate(string, string) ([]domain.PluginRef, error) { return l.refs, nil }

func builtinSet(domain.EngineConfig) []domain.Validator {
	return validation.Builtin(validation.Options{})
}

const skillBody = `# Demo skill

Checks demo plugins and reports what to fix.

## Usage

1. Run the check against a plugin directory.
2. Read the report.

` + "```bash\nplugincheck score ./my-plugin\n```" + `

## Examples

Example: "check my plugin" runs a full evaluation.

## Troubleshooting

If the command fails, check that the plugin root contains .claude-plugin/plugin.json.
`

func evaluationPlugin() *domain.Plugin {
	p := &domain.Plugin{
		Name:    "demo-plugin",
		Version: "1.2.0",
		Root:    "/plugins/demo",
		Files: []string{
			domain.ManifestPath,
			"README.md",
			"skills/demo-skill/SKILL.md",
		},
		Components: map[domain.ComponentType][]domain.Component{
			domain.TypeManifest: {{
				Type: domain.TypeManifest, Name: "demo-plugin", Path: domain.ManifestPath,
				Payload: map[string]any{
					"name":        "demo-plugin",
					"version":     "1.2.0",
					"description": "Validates demo plugins and scores their quality. Use when you want a quick quality report.",
					"author":      map[string]any{"name": "Demo Author"},
				},
				Body: skillBody,
			}},
			domain.TypeSkill: {{
				Type: domain.TypeSkill, Name: "demo-skill", Folder: "demo-skill", Path: "skills/demo-skill/SKILL.md",
				Payload: map[string]any{
					"name":        "demo-skill",
					"description": `Validates plugin directories and reports quality issues. Use when the user says "check my plugin" or "score this plugin" before publishing.`,
				},
				Body: skillBody,
			}},
		},
	}
	p.IndexFiles()
	return p
}

func brokenManifestPlugin() *domain.Plugin {
	p := evaluationPlugin()
	m := p.Components[domain.TypeManifest][0]
	m.Payload = nil
	m.ParseError = "unexpected end of JSON input"
	p.Components[domain.TypeManifest] = []domain.Component{m}
	return p
}

func newService(opts ...application.ServiceOption) *application.EvaluateService {
	plugins := map[string]*domain.Plugin{
		"/plugins/demo":   evaluationPlugin(),
		"/plugins/broken": brokenManifestPlugin(),
	}
	return application.NewEvaluateService(
		fakeDiscoverer{plugins: plugins},
		staticConfig{cfg: domain.DefaultEngineConfig()},
		builtinSet,
		opts...,
	)
}

func TestEvaluateService_Evaluate(t *testing.T) {
	fixed := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	svc := newService(application.WithGitInfo(fakeGit{hash: "abc123"}), application.WithClock(func() time.Time { return fixed }))

	report, err := svc.Evaluate(context.Background(), "/plugins/demo", application.EvaluateOptions{})
	require.NoError(t, err)

	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)
	assert.Equal(t, "abc123", report.CommitHash)
	assert.Equal(t, fixed, report.GeneratedAt)
	assert.Equal(t, "demo-plugin", report.Plugin.Name)
	assert.NotEmpty(t, report.Results)

	q := report.Score
	assert.Len(t, q.Dimensions, 4)
	assert.Greater(t, q.Overall, 0.0)
	assert.LessOrEqual(t, q.Overall, 100.0)
	assert.Equal(t, domain.GradeFor(q.Overall), q.Grade)
	assert.Equal(t, 70.0, q.Dimensions[domain.DimensionCodeQuality].Value)
	assert.Empty(t, q.Overrides)
	assert.Contains(t, q.ComponentScores, "skill/demo-skill")
}

func TestEvaluateService_CommitHashOnlyInsideRepo(t *testing.T) {
	svc := newService(application.WithGitInfo(fakeGit{hash: "abc123", notRepo: true}))

	report, err := svc.Evaluate(context.Background(), "/plugins/demo", application.EvaluateOptions{})
	require.NoError(t, err)
	assert.Empty(t, report.CommitHash)
}

func TestEvaluateService_UnparseableManifestFails(t *testing.T) {
	report, err := newService().Evaluate(context.Background(), "/plugins/broken", application.EvaluateOptions{})
	require.NoError(t, err)

	assert.False(t, report.Score.Passed)
	assert.Contains(t, report.Score.Overrides, "manifest unparseable")
	require.NotEmpty(t, report.Recommendations)
	assert.Equal(t, domain.PriorityCritical, report.Recommendations[0].Priority)
}

func TestEvaluateService_UserTestsFeedFunctional(t *testing.T) {
	report := &domain.UserTestReport{}
	for i := 0; i < 10; i++ {
		report.Tests = append(report.Tests, domain.UserTestCase{
			Name: fmt.Sprintf("case-%d", i), Passed: true, Severity: domain.TestBlocking, Component: "demo-skill",
		})
	}
	svc := newService(application.WithUserTests(fakeTests{report: report}))

	got, err := svc.Evaluate(context.Background(), "/plugins/demo", application.EvaluateOptions{TestsPath: "tests.json"})
	require.NoError(t, err)

	functional := got.Score.Dimensions[domain.DimensionFunctional]
	assert.Equal(t, 100.0, functional.SubMetrics[domain.MetricUserTests])
	assert.NotContains(t, functional.Rationale, "omission penalty")
}

func TestEvaluateService_UserTestLoadError(t *testing.T) {
	svc := newService(application.WithUserTests(fakeTests{err: errors.New("bad json")}))
	_, err := svc.Evaluate(context.Background(), "/plugins/demo", application.EvaluateOptions{TestsPath: "tests.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading user tests")
}

func TestEvaluateService_ConfigErrors(t *testing.T) {
	bad := domain.DefaultEngineConfig()
	bad.Concurrency = 0

	tests := []struct {
		name    string
		loader  staticConfig
		opts    application.EvaluateOptions
		wantErr string
	}{
		{"load failure", staticConfig{err: errors.New("boom")}, application.EvaluateOptions{}, "loading config"},
		{"invalid config", staticConfig{cfg: bad}, application.EvaluateOptions{}, "invalid config"},
		{"flag repairs config", staticConfig{cfg: bad}, application.EvaluateOptions{Concurrency: 2}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := application.NewEvaluateService(
				fakeDiscoverer{plugins: map[string]*domain.Plugin{"/p": evaluationPlugin()}},
				tt.loader, builtinSet,
			)
			_, err := svc.Evaluate(context.Background(), "/p", tt.opts)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEvaluateService_WeightOverrides(t *testing.T) {
	svc := newService()
	report, err := svc.Evaluate(context.Background(), "/plugins/demo", application.EvaluateOptions{
		Weights: map[string]float64{"code_quality": 0},
	})
	require.NoError(t, err)
	assert.Zero(t, report.Score.Dimensions[domain.DimensionCodeQuality].Weight)
}

func TestEvaluateService_RecommendationsAreStable(t *testing.T) {
	svc := newService()
	first, err := svc.Evaluate(context.Background(), "/plugins/demo", application.EvaluateOptions{})
	require.NoError(t, err)
	second, err := svc.Evaluate(context.Background(), "/plugins/demo", application.EvaluateOptions{})
	require.NoError(t, err)
	assert.Equal(t, first.Recommendations, second.Recommendations)
}

func TestEvaluateService_ValidateOnly(t *testing.T) {
	run, err := newService().Validate(context.Background(), "/plugins/broken", application.EvaluateOptions{})
	require.NoError(t, err)
	assert.False(t, run.Valid())
}

func TestEvaluateService_EvaluateAll(t *testing.T) {
	svc := newService(application.WithLocator(fakeLocator{refs: []domain.PluginRef{
		{Name: "demo", Version: "1.2.0", Path: "/plugins/demo"},
		{Name: "missing", Version: "0.1.0", Path: "/plugins/missing"},
		{Name: "broken", Version: "0.0.1", Path: "/plugins/broken"},
	}}))

	entries, err := svc.EvaluateAll(context.Background(), "/plugins", "", application.EvaluateOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.NotNil(t, entries[0].Report)
	assert.Contains(t, entries[1].Err, "discovering plugin")
	assert.NotNil(t, entries[2].Report)

	sum := application.Summarize(entries)
	assert.Equal(t, 3, sum.TotalPlugins)
	assert.Equal(t, 2, sum.Evaluated)
	assert.Equal(t, []string{"missing"}, sum.Errored)
	assert.Contains(t, sum.PluginsWithErrors, "broken")
}

func TestEvaluateService_EvaluateAllCancelled(t *testing.T) {
	svc := newService(application.WithLocator(fakeLocator{refs: []domain.PluginRef{{Name: "demo", Path: "/plugins/demo"}}}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.EvaluateAll(ctx, "/plugins", "", application.EvaluateOptions{})
	assert.True(t, errors.Is(err, domain.ErrRunCancelled))
}

func TestEvaluateService_EvaluateAllNeedsLocator(t *testing.T) {
	_, err := newService().EvaluateAll(context.Background(), "/plugins", "", application.EvaluateOptions{})
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	report := func(overall, structural float64, passed bool, valid ...bool) *domain.Report {
		r := &domain.Report{Score: domain.QualityScore{
			Overall: overall, Passed: passed,
			Dimensions: map[domain.Dimension]domain.DimensionScore{
				domain.DimensionStructural: {Value: structural},
			},
		}}
		for _, v := range valid {
			r.Results = append(r.Results, domain.ValidationResult{Valid: v})
		}
		return r
	}

	sum := application.Summarize([]application.BatchEntry{
		{Ref: domain.PluginRef{Name: "a"}, Report: report(90, 80, true, true, true)},
		{Ref: domain.PluginRef{Name: "b"}, Report: report(50, 40, false, true, false)},
		{Ref: domain.PluginRef{Name: "c"}, Err: "boom"},
	})

	assert.Equal(t, 3, sum.TotalPlugins)
	assert.Equal(t, 2, sum.Evaluated)
	assert.Equal(t, 4, sum.TotalResults)
	assert.Equal(t, 70.0, sum.AverageOverall)
	assert.Equal(t, 60.0, sum.AverageStructural)
	assert.Equal(t, 1, sum.Passed)
	assert.Equal(t, []string{"b"}, sum.PluginsWithErrors)
	assert.Equal(t, []string{"a"}, sum.CleanPlugins)
	assert.Equal(t, []string{"c"}, sum.Errored)
}
