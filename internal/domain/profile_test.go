package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abdidvp/plugincheck/internal/domain"
)

func TestDefaultProfile_SubWeights(t *testing.T) {
	p := domain.DefaultProfile()
	for _, d := range domain.Dimensions {
		weights := p.Weights(d)
		assert.Len(t, weights, 5, d)

		sum := 0.0
		for metric, w := range weights {
			assert.Equal(t, d, domain.SubMetricDimension[metric], metric)
			sum += w
		}
		assert.InDelta(t, 100.0, sum, 0.001, d)
	}

	assert.Equal(t, 25.0, p.Structural[domain.MetricRequiredFields])
	assert.Equal(t, 30.0, p.Functional[domain.MetricUserTests])
	assert.Equal(t, 30.0, p.CodeQuality[domain.MetricSecurity])
}

func TestProfileFor_AgentWeighsTriggersHigher(t *testing.T) {
	agent := domain.ProfileFor(domain.TypeAgent)
	skill := domain.ProfileFor(domain.TypeSkill)

	assert.Greater(t, agent.Functional[domain.MetricTriggerCoverage], skill.Functional[domain.MetricTriggerCoverage])
	assert.Equal(t, skill.Structural, agent.Structural)
	assert.Equal(t, domain.DefaultProfile(), skill)
}

func TestProfileFor_OverridesKeepDimensions(t *testing.T) {
	for _, ct := range domain.ComponentTypes {
		p := domain.ProfileFor(ct)
		for metric := range p.Functional {
			assert.Equal(t, domain.DimensionFunctional, domain.SubMetricDimension[metric], "%s/%s", ct, metric)
		}
		for metric := range p.Documentation {
			assert.Equal(t, domain.DimensionDocumentation, domain.SubMetricDimension[metric], "%s/%s", ct, metric)
		}
	}
}

func TestComponentWeight(t *testing.T) {
	assert.Equal(t, 1.0, domain.ComponentWeight(domain.TypeSkill))
	assert.Less(t, domain.ComponentWeight(domain.TypeManifest), domain.ComponentWeight(domain.TypeSkill))
	assert.Equal(t, 0.5, domain.ComponentWeight(domain.ComponentType("theme")))
}
