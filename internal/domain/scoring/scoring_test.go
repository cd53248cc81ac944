package scoring

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/abdidvp/plugincheck/internal/domain"
)

func testPlugin(components ...domain.Component) *domain.Plugin {
	p := &domain.Plugin{Name: "demo", Root: "/tmp/demo", Components: map[domain.ComponentType][]domain.Component{}}
	for _, c := range components {
		p.Components[c.Type] = append(p.Components[c.Type], c)
	}
	return p
}

func manifestComponent() domain.Component {
	return domain.Component{Type: domain.TypeManifest, Name: "demo", Path: domain.ManifestPath,
		Payload: map[string]any{"name": "demo"}}
}

func skillComponent(name string, scripts ...domain.Script) domain.Component {
	return domain.Component{Type: domain.TypeSkill, Name: name, Path: "skills/" + name + "/SKILL.md",
		Payload: map[string]any{"name": name}, Scripts: scripts}
}

func hookComponent() domain.Component {
	return domain.Component{Type: domain.TypeHook, Name: "hooks", Path: "hooks/hooks.json",
		Payload: map[string]any{"hooks": map[string]any{
			"PreToolUse": []any{map[string]any{"hooks": []any{
				map[string]any{"type": "command", "command": "echo hi"},
			}}},
		}}}
}

func result(validator string, c domain.Component, scores map[string]float64, findings ...domain.Finding) domain.ValidationResult {
	r := domain.NewResult(validator, c)
	r.Add(findings...)
	for k, v := range scores {
		r.SetScore(k, v)
	}
	return r
}

func uniformDims(v float64) map[domain.Dimension]domain.DimensionScore {
	dims := map[domain.Dimension]domain.DimensionScore{}
	for _, d := range domain.Dimensions {
		dims[d] = domain.DimensionScore{Dimension: d, Value: v}
	}
	return dims
}

func defaultInput(p *domain.Plugin, results ...domain.ValidationResult) Input {
	return Input{Results: results, Plugin: p, Policy: domain.DefaultUserTestPolicy()}
}

// --- result checks ---

func TestCheckResults_RejectsOutOfRange(t *testing.T) {
	s := skillComponent("alpha")
	err := CheckResults([]domain.ValidationResult{
		result("skill", s, map[string]float64{domain.MetricNaming: 120}),
	})

	var se *domain.ScoringError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, domain.DimensionStructural, se.Dimension)
	assert.Equal(t, "skill/alpha", se.Component)
	assert.Equal(t, 120.0, se.Value)
}

func TestCheckResults_RejectsUnknownAndNaN(t *testing.T) {
	s := skillComponent("alpha")
	var se *domain.ScoringError

	err := CheckResults([]domain.ValidationResult{result("skill", s, map[string]float64{"vibes": 50})})
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "unknown sub-metric", se.Reason)

	err = CheckResults([]domain.ValidationResult{result("skill", s, map[string]float64{domain.MetricNaming: math.NaN()})})
	require.True(t, errors.As(err, &se))
}

func TestScoreDimensions_AbortsOnScoringError(t *testing.T) {
	s := skillComponent("alpha")
	_, err := ScoreDimensions(defaultInput(testPlugin(s),
		result("skill", s, map[string]float64{domain.MetricSecurity: -1})))
	var se *domain.ScoringError
	assert.True(t, errors.As(err, &se))
}

// --- dimension scorers ---

func TestStructural_ComponentTypeWeighting(t *testing.T) {
	m := manifestComponent()
	s := skillComponent("alpha")
	ds, err := StructuralScorer{}.Score(defaultInput(testPlugin(m, s),
		result("skill", s, map[string]float64{domain.MetricNaming: 100}),
		result("manifest", m, map[string]float64{domain.MetricNaming: 40}),
	))
	require.NoError(t, err)

	// skill weight 1.0, manifest 0.5: (100 + 20) / 1.5
	assert.InDelta(t, 80.0, ds.Value, 0.01)
	assert.Equal(t, 100.0, ds.ComponentValues["skill/alpha"])
	assert.Equal(t, 40.0, ds.ComponentValues["manifest/demo"])
	assert.Contains(t, ds.Rationale, "2 component(s)")
}

func TestStructural_SameMetricFromTwoValidatorsIsAveraged(t *testing.T) {
	s := skillComponent("alpha")
	ds, err := StructuralScorer{}.Score(defaultInput(testPlugin(s),
		result("skill", s, map[string]float64{domain.MetricNaming: 100}),
		result("lint", s, map[string]float64{domain.MetricNaming: 50}),
	))
	require.NoError(t, err)
	assert.Equal(t, 75.0, ds.Components["skill/alpha"][domain.MetricNaming])
}

func TestStructural_MissingSubMetricsAreRenormalized(t *testing.T) {
	s := skillComponent("alpha")
	ds, err := StructuralScorer{}.Score(defaultInput(testPlugin(s),
		result("skill", s, map[string]float64{
			domain.MetricParseValidity:  100,
			domain.MetricRequiredFields: 0,
		}),
	))
	require.NoError(t, err)
	// 20*100 / (20+25)
	assert.InDelta(t, 44.4, ds.Value, 0.01)
}

func TestFunctional_AgentProfileOverridesDefault(t *testing.T) {
	agent := domain.Component{Type: domain.TypeAgent, Name: "reviewer", Path: "agents/reviewer.md"}
	skill := skillComponent("alpha")
	scores := map[string]float64{domain.MetricDescriptionQuality: 0, domain.MetricTriggerCoverage: 100}
	tests := &domain.UserTestReport{Tests: []domain.UserTestCase{{Name: "t", Passed: true, Component: "reviewer"}}}

	in := defaultInput(testPlugin(agent, skill),
		result("agent", agent, scores),
		result("skill", skill, scores),
	)
	in.Tests = tests
	ds, err := FunctionalScorer{}.Score(in)
	require.NoError(t, err)

	// One of two components covered: 100 + 3 bonus, clamped to 100.
	// agent: (0*20 + 100*35 + 100*30) / 85, skill: (0*25 + 100*20 + 100*30) / 75
	assert.InDelta(t, 76.5, ds.ComponentValues["agent/reviewer"], 0.05)
	assert.InDelta(t, 66.7, ds.ComponentValues["skill/alpha"], 0.05)
	assert.Greater(t, ds.ComponentValues["agent/reviewer"], ds.ComponentValues["skill/alpha"])
}

func TestFunctional_ZeroTestsAppliesOmissionPenalty(t *testing.T) {
	s := skillComponent("alpha")
	ds, err := FunctionalScorer{}.Score(defaultInput(testPlugin(s),
		result("skill", s, map[string]float64{domain.MetricDescriptionQuality: 80}),
	))
	require.NoError(t, err)

	// skill: (80*25 + 50*30) / 55 = 63.6, then -5 on the dimension only.
	assert.InDelta(t, 58.6, ds.Value, 0.01)
	assert.Equal(t, 50.0, ds.SubMetrics[domain.MetricUserTests])
	assert.Contains(t, ds.Rationale, "no user tests")
	assert.Contains(t, ds.Rationale, "omission penalty")
}

func TestFunctional_NoResultsFallsBackToUserTestScore(t *testing.T) {
	ds, err := FunctionalScorer{}.Score(defaultInput(testPlugin()))
	require.NoError(t, err)
	assert.Equal(t, 45.0, ds.Value)
}

func TestCodeQuality_NoExecutableSurfaceIsBaseline(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 5).Draw(t, "skills")
		components := []domain.Component{manifestComponent()}
		var results []domain.ValidationResult
		for i := 0; i < n; i++ {
			s := skillComponent(fmt.Sprintf("skill-%d", i))
			components = append(components, s)
			results = append(results, result("security", s, map[string]float64{
				domain.MetricSecurity: rapid.Float64Range(0, 100).Draw(t, "security"),
			}))
		}

		ds, err := CodeQualityScorer{}.Score(defaultInput(testPlugin(components...), results...))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ds.Value != CodeQualityBaseline {
			t.Fatalf("code quality = %v, want exactly %v", ds.Value, CodeQualityBaseline)
		}
	})
}

func TestCodeQuality_ExecutableComponentsUseFormula(t *testing.T) {
	m := manifestComponent()
	s := skillComponent("alpha", domain.Script{Path: "skills/alpha/scripts/run.sh", Executable: true})
	ds, err := CodeQualityScorer{}.Score(defaultInput(testPlugin(m, s),
		result("script", s, map[string]float64{
			domain.MetricScriptSyntax:        100,
			domain.MetricPortability:         100,
			domain.MetricBestPractices:       100,
			domain.MetricScriptErrorHandling: 100,
		}),
		result("security", s, map[string]float64{domain.MetricSecurity: 100}),
	))
	require.NoError(t, err)

	// skill 100 at weight 1.0, manifest baseline 70 at weight 0.5.
	assert.InDelta(t, 90.0, ds.Value, 0.01)
	assert.Equal(t, CodeQualityBaseline, ds.ComponentValues["manifest/demo"])
	assert.Contains(t, ds.Rationale, "baseline")
}

func TestDocumentation_Aggregates(t *testing.T) {
	s := skillComponent("alpha")
	ds, err := DocumentationScorer{}.Score(defaultInput(testPlugin(s),
		result("skill", s, map[string]float64{
			domain.MetricBodyQuality: 100,
			domain.MetricExamples:    0,
		}),
	))
	require.NoError(t, err)
	assert.InDelta(t, 50.0, ds.Value, 0.01)
	assert.Contains(t, ds.Rationale, "weakest examples")
}

// --- user tests ---

func TestScoreUserTests_RawAboveHundredIsClamped(t *testing.T) {
	a, b := skillComponent("alpha"), skillComponent("beta")
	report := &domain.UserTestReport{}
	for i := 0; i < 10; i++ {
		name := "alpha"
		if i%2 == 1 {
			name = "beta"
		}
		report.Tests = append(report.Tests, domain.UserTestCase{
			Name: fmt.Sprintf("case-%d", i), Passed: true, Severity: domain.TestWarning, Component: name,
		})
	}

	s := ScoreUserTests(report, testPlugin(manifestComponent(), a, b), domain.DefaultUserTestPolicy())

	assert.True(t, s.Executed)
	assert.Equal(t, 1.0, s.Coverage)
	assert.Equal(t, 105.0, s.Raw)
	assert.Equal(t, 100.0, s.Effective)
}

func TestScoreUserTests_CoverageTiers(t *testing.T) {
	p := testPlugin(skillComponent("a"), skillComponent("b"), skillComponent("c"), skillComponent("d"))
	tests := []struct {
		covered []string
		bonus   float64
	}{
		{[]string{"a"}, 1},
		{[]string{"a", "b"}, 3},
		{[]string{"a", "b", "c"}, 3},
		{[]string{"a", "b", "c", "d"}, 5},
		{[]string{"nope"}, 0},
	}
	for _, tt := range tests {
		report := &domain.UserTestReport{}
		for _, c := range tt.covered {
			report.Tests = append(report.Tests, domain.UserTestCase{Name: c, Passed: true, Component: c})
		}
		s := ScoreUserTests(report, p, domain.DefaultUserTestPolicy())
		assert.Equal(t, tt.bonus, s.Bonus, "covered %v", tt.covered)
	}
}

func TestScoreUserTests_CoverageTierOrderDoesNotMatter(t *testing.T) {
	p := testPlugin(skillComponent("a"), skillComponent("b"))
	report := &domain.UserTestReport{Tests: []domain.UserTestCase{
		{Name: "a", Passed: true, Component: "a"},
		{Name: "b", Passed: true, Component: "b"},
	}}

	ascending := domain.DefaultUserTestPolicy()
	slices.Reverse(ascending.CoverageTiers)

	s := ScoreUserTests(report, p, ascending)
	assert.Equal(t, 5.0, s.Bonus)
	assert.Equal(t, ScoreUserTests(report, p, domain.DefaultUserTestPolicy()), s)
}

func TestScoreUserTests_PenaltiesAreCapped(t *testing.T) {
	report := &domain.UserTestReport{Tests: []domain.UserTestCase{
		{Name: "1", Severity: domain.TestCritical},
		{Name: "2", Severity: domain.TestCritical},
		{Name: "3", Severity: domain.TestBlocking},
		{Name: "4", Passed: true},
	}}
	s := ScoreUserTests(report, testPlugin(skillComponent("alpha")), domain.DefaultUserTestPolicy())

	assert.Equal(t, 50.0, s.Penalty)
	assert.Equal(t, 25.0-50.0, s.Raw)
	assert.Equal(t, 0.0, s.Effective)
}

func TestScoreUserTests_AggregateCountsOnly(t *testing.T) {
	report := &domain.UserTestReport{Total: 4, Passed: 3, Failed: 1}
	s := ScoreUserTests(report, testPlugin(skillComponent("alpha")), domain.DefaultUserTestPolicy())
	assert.Equal(t, 75.0, s.Effective)
	assert.Equal(t, 0.0, s.Coverage)
}

func TestScoreUserTests_NoTestsIsBaseline(t *testing.T) {
	s := ScoreUserTests(nil, testPlugin(), domain.DefaultUserTestPolicy())
	assert.False(t, s.Executed)
	assert.Equal(t, 50.0, s.Effective)
	assert.Contains(t, s.String(), "baseline 50")
}

// --- composite ---

func TestDimensionWeights_ComplexityAdjusted(t *testing.T) {
	tests := []struct {
		name   string
		plugin *domain.Plugin
		want   map[domain.Dimension]float64
	}{
		{"no scripts no hooks", testPlugin(skillComponent("a")), map[domain.Dimension]float64{
			domain.DimensionStructural: 0.35, domain.DimensionFunctional: 0.30,
			domain.DimensionCodeQuality: 0.10, domain.DimensionDocumentation: 0.25,
		}},
		{"scripts only", testPlugin(skillComponent("a", domain.Script{Path: "s.sh"})), map[domain.Dimension]float64{
			domain.DimensionStructural: 0.30, domain.DimensionFunctional: 0.30,
			domain.DimensionCodeQuality: 0.20, domain.DimensionDocumentation: 0.20,
		}},
		{"hooks", testPlugin(hookComponent()), map[domain.Dimension]float64{
			domain.DimensionStructural: 0.25, domain.DimensionFunctional: 0.30,
			domain.DimensionCodeQuality: 0.30, domain.DimensionDocumentation: 0.15,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DimensionWeights(tt.plugin, nil)
			for d, w := range tt.want {
				assert.InDelta(t, w, got[d], 1e-9, string(d))
			}
		})
	}
}

func TestDimensionWeights_OverridesAreNormalized(t *testing.T) {
	got := DimensionWeights(testPlugin(skillComponent("a", domain.Script{Path: "s.sh"})),
		map[string]float64{"code_quality": 0.60})
	sum := 0.0
	for _, d := range domain.Dimensions {
		sum += got[d]
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.InDelta(t, 0.60/1.40, got[domain.DimensionCodeQuality], 1e-9)
}

func TestOverall_MonotonicInEachDimension(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		weights := DimensionWeights(nil, nil)
		dims := map[domain.Dimension]domain.DimensionScore{}
		for _, d := range domain.Dimensions {
			dims[d] = domain.DimensionScore{Value: rapid.Float64Range(0, 100).Draw(t, string(d))}
		}
		before := Overall(dims, weights)

		d := rapid.SampledFrom(domain.Dimensions).Draw(t, "bumped")
		ds := dims[d]
		ds.Value = min(100, ds.Value+rapid.Float64Range(0, 100).Draw(t, "delta"))
		dims[d] = ds

		if after := Overall(dims, weights); after < before {
			t.Fatalf("overall decreased from %v to %v after raising %s", before, after, d)
		}
	})
}

func TestCompose_PassesHealthyPlugin(t *testing.T) {
	p := testPlugin(manifestComponent(), skillComponent("alpha"))
	q := Compose(uniformDims(80), defaultInput(p), domain.DefaultEngineConfig())

	assert.True(t, q.Passed)
	assert.InDelta(t, 80.0, q.Overall, 0.01)
	assert.Equal(t, "B+", q.Grade)
	assert.Empty(t, q.Overrides)
	assert.InDelta(t, 0.35, q.Dimensions[domain.DimensionStructural].Weight, 1e-9)
}

func TestCompose_DisallowedMarkupForcesFail(t *testing.T) {
	s := skillComponent("alpha")
	p := testPlugin(manifestComponent(), s)
	res := result("security", s, nil, domain.Finding{
		Severity: domain.SeverityError, Category: domain.CategorySecurity,
		Rule: domain.RuleDisallowedMarkup, Message: "Field 'description' contains disallowed markup '<b>'",
		Path: s.Path,
	})

	q := Compose(uniformDims(95), defaultInput(p, res), domain.DefaultEngineConfig())

	assert.InDelta(t, 95.0, q.Overall, 0.01)
	assert.Equal(t, "A+", q.Grade)
	assert.False(t, q.Passed)
	assert.Equal(t, []string{"disallowed markup in metadata"}, q.Overrides)
}

func TestCompose_UnparseableManifestForcesFail(t *testing.T) {
	m := manifestComponent()
	m.Payload = nil
	m.ParseError = "invalid character '}' looking for beginning of value"
	p := testPlugin(m, skillComponent("alpha"))

	q := Compose(uniformDims(100), defaultInput(p), domain.DefaultEngineConfig())

	assert.False(t, q.Passed)
	assert.Contains(t, q.Overrides, "manifest unparseable")
}

func TestCompose_Gates(t *testing.T) {
	tests := []struct {
		name  string
		in    Input
		label string
	}{
		{
			name:  "missing manifest",
			in:    defaultInput(testPlugin(skillComponent("alpha"))),
			label: "manifest missing",
		},
		{
			name: "no usable components",
			in: defaultInput(testPlugin(manifestComponent(),
				domain.Component{Type: domain.TypeSkill, Name: "broken", ParseError: "bad yaml"})),
			label: "no usable components",
		},
		{
			name: "critical user test",
			in: Input{
				Plugin: testPlugin(manifestComponent(), skillComponent("alpha")),
				Tests: &domain.UserTestReport{Tests: []domain.UserTestCase{
					{Name: "installs", Severity: domain.TestCritical},
				}},
				Policy: domain.DefaultUserTestPolicy(),
			},
			label: "critical user test failed",
		},
		{
			name: "reserved name",
			in: defaultInput(testPlugin(manifestComponent(), skillComponent("claude-x")),
				result("skill", skillComponent("claude-x"), nil, domain.Finding{
					Severity: domain.SeverityCritical, Category: domain.CategoryNaming,
					Rule: domain.RuleReservedName, Message: "reserved", Path: "skills/claude-x/SKILL.md",
				})),
			label: "reserved name collision",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Compose(uniformDims(100), tt.in, domain.DefaultEngineConfig())
			assert.False(t, q.Passed)
			assert.Contains(t, q.Overrides, tt.label)
		})
	}
}

func TestCompose_StructuralFloor(t *testing.T) {
	p := testPlugin(manifestComponent(), skillComponent("alpha"))
	dims := uniformDims(90)
	dims[domain.DimensionStructural] = domain.DimensionScore{Value: 40}

	q := Compose(dims, defaultInput(p), domain.DefaultEngineConfig())

	assert.GreaterOrEqual(t, q.Overall, 60.0)
	assert.False(t, q.Passed)
	assert.Empty(t, q.Overrides)
}

func TestCompose_BlockingFailureAboveThresholdStillPasses(t *testing.T) {
	in := Input{
		Plugin: testPlugin(manifestComponent(), skillComponent("alpha")),
		Tests: &domain.UserTestReport{Tests: []domain.UserTestCase{
			{Name: "edge case", Severity: domain.TestBlocking},
		}},
	}
	q := Compose(uniformDims(75), in, domain.DefaultEngineConfig())
	assert.True(t, q.Passed)
}

func TestCompose_ComponentScores(t *testing.T) {
	dims := uniformDims(0)
	dims[domain.DimensionStructural] = domain.DimensionScore{Value: 100,
		ComponentValues: map[string]float64{"skill/alpha": 100}}
	dims[domain.DimensionDocumentation] = domain.DimensionScore{Value: 50,
		ComponentValues: map[string]float64{"skill/alpha": 50}}

	q := Compose(dims, defaultInput(testPlugin(manifestComponent(), skillComponent("alpha"))), domain.DefaultEngineConfig())

	// (100*0.35 + 50*0.25) / 0.60
	assert.InDelta(t, 79.2, q.ComponentScores["skill/alpha"], 0.01)
}

// --- recommendations ---

func recommendationFixture() (Input, map[domain.Dimension]domain.DimensionScore, error) {
	s := skillComponent("alpha", domain.Script{Path: "skills/alpha/scripts/run.sh", Executable: true})
	p := testPlugin(manifestComponent(), s)
	in := defaultInput(p,
		result("skill", s, map[string]float64{domain.MetricNaming: 50}, domain.Finding{
			Severity: domain.SeverityError, Category: domain.CategoryNaming,
			Message: "Name 'Alpha' must be kebab-case", Path: s.Path,
		}),
		result("security", s, map[string]float64{domain.MetricSecurity: 40}, domain.Finding{
			Severity: domain.SeverityCritical, Category: domain.CategorySecurity,
			Message: "Possible hardcoded credential", Path: "skills/alpha/scripts/run.sh", Line: 3,
		}),
	)
	dims, err := ScoreDimensions(in)
	return in, dims, err
}

func TestRecommend_PriorityAndDetails(t *testing.T) {
	in, dims, err := recommendationFixture()
	require.NoError(t, err)

	recs := Recommend(dims, in, domain.DefaultEngineConfig())
	require.Len(t, recs, 3)

	assert.Equal(t, domain.PriorityCritical, recs[0].Priority)
	assert.Equal(t, domain.DimensionCodeQuality, recs[0].Dimension)
	assert.Equal(t, domain.MetricSecurity, recs[0].SubMetric)
	assert.Equal(t, []string{"skills/alpha/scripts/run.sh:3: Possible hardcoded credential"}, recs[0].Details)

	assert.Equal(t, domain.PriorityHigh, recs[1].Priority)
	assert.Equal(t, domain.DimensionStructural, recs[1].Dimension)
	assert.Equal(t, "skill/alpha", recs[1].Component)
	assert.Equal(t, []string{"skills/alpha/SKILL.md: Name 'Alpha' must be kebab-case"}, recs[1].Details)

	assert.Equal(t, domain.DimensionFunctional, recs[2].Dimension)
	assert.Equal(t, domain.MetricUserTests, recs[2].SubMetric)
}

func TestRecommend_DeterministicAcrossResultOrder(t *testing.T) {
	in, dims, err := recommendationFixture()
	require.NoError(t, err)
	first := Recommend(dims, in, domain.DefaultEngineConfig())

	reversed := make([]domain.ValidationResult, len(in.Results))
	for i, r := range in.Results {
		reversed[len(in.Results)-1-i] = r
	}
	in.Results = reversed
	dims2, err := ScoreDimensions(in)
	require.NoError(t, err)

	assert.Equal(t, first, Recommend(dims2, in, domain.DefaultEngineConfig()))
}

func TestRecommend_GatesComeFirst(t *testing.T) {
	s := skillComponent("alpha")
	in := defaultInput(testPlugin(manifestComponent(), s),
		result("security", s, nil, domain.Finding{
			Severity: domain.SeverityCritical, Category: domain.CategorySecurity,
			Rule: domain.RuleHardcodedCredential, Message: "Possible hardcoded credential", Path: s.Path,
		}))
	dims, err := ScoreDimensions(in)
	require.NoError(t, err)

	recs := Recommend(dims, in, domain.DefaultEngineConfig())
	require.NotEmpty(t, recs)
	assert.Equal(t, domain.PriorityCritical, recs[0].Priority)
	assert.Equal(t, "Fix release blocker: hardcoded credential", recs[0].Message)
}

func TestPriorityFor(t *testing.T) {
	critical := []domain.Finding{{Severity: domain.SeverityCritical}}
	assert.Equal(t, domain.PriorityCritical, priorityFor(critical, 90, 80))
	assert.Equal(t, domain.PriorityHigh, priorityFor(nil, 59.9, 80))
	assert.Equal(t, domain.PriorityMedium, priorityFor(nil, 75, 65))
	assert.Equal(t, domain.PriorityLow, priorityFor(nil, 75, 85))
}
