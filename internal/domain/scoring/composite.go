package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/abdidvp/plugincheck/internal/domain"
)

// Gate is a critical-failure condition. Any gate that fires forces pass=false
// regardless of the numeric score.
type Gate struct {
	Label     string
	Dimension domain.Dimension
	// Rule is the finding rule that trips the gate, empty for plugin-level checks.
	Rule string
	// Details lists the evidence, one line per finding or test.
	Details []string
}

// ruleGates fire when any finding carries their rule.
var ruleGates = []Gate{
	{Label: "disallowed markup in metadata", Dimension: domain.DimensionCodeQuality, Rule: domain.RuleDisallowedMarkup},
	{Label: "hardcoded credential", Dimension: domain.DimensionCodeQuality, Rule: domain.RuleHardcodedCredential},
	{Label: "reserved name collision", Dimension: domain.DimensionStructural, Rule: domain.RuleReservedName},
	{Label: "mandatory filename case mismatch", Dimension: domain.DimensionStructural, Rule: domain.RuleFilenameCase},
}

// DimensionWeights returns the complexity-adjusted dimension weights with any
// configured overrides overlaid, normalized to sum to 1.
func DimensionWeights(p *domain.Plugin, overrides map[string]float64) map[domain.Dimension]float64 {
	w := map[domain.Dimension]float64{
		domain.DimensionStructural:    0.30,
		domain.DimensionFunctional:    0.30,
		domain.DimensionCodeQuality:   0.20,
		domain.DimensionDocumentation: 0.20,
	}
	switch {
	case p == nil:
	case p.HasHooks():
		w[domain.DimensionStructural] = 0.25
		w[domain.DimensionCodeQuality] = 0.30
		w[domain.DimensionDocumentation] = 0.15
	case !p.HasScripts():
		w[domain.DimensionStructural] = 0.35
		w[domain.DimensionCodeQuality] = 0.10
		w[domain.DimensionDocumentation] = 0.25
	}

	for name, v := range overrides {
		w[domain.Dimension(name)] = v
	}
	sum := 0.0
	for _, d := range domain.Dimensions {
		sum += w[d]
	}
	if sum <= 0 {
		return w
	}
	for _, d := range domain.Dimensions {
		w[d] /= sum
	}
	return w
}

// Overall is the weighted sum of dimension values rounded to one decimal.
func Overall(dims map[domain.Dimension]domain.DimensionScore, weights map[domain.Dimension]float64) float64 {
	total := 0.0
	for _, d := range domain.Dimensions {
		total += dims[d].Value * weights[d]
	}
	return round1(total)
}

// CriticalFailures evaluates the fixed gate list in a stable order.
func CriticalFailures(in Input) []Gate {
	var gates []Gate

	manifest := Gate{Dimension: domain.DimensionStructural, Rule: domain.RuleManifestUnparseable}
	if in.Plugin != nil {
		if m, ok := in.Plugin.Manifest(); !ok {
			manifest.Label = "manifest missing"
			manifest.Details = []string{domain.ManifestPath}
		} else if !m.Parsed() {
			manifest.Label = "manifest unparseable"
			manifest.Details = []string{fmt.Sprintf("%s: %s", m.Path, m.ParseError)}
		}
	}
	if manifest.Label == "" {
		if details := ruleDetails(in.Results, domain.RuleManifestUnparseable); len(details) > 0 {
			manifest.Label = "manifest unparseable"
			manifest.Details = details
		}
	}
	if manifest.Label != "" {
		gates = append(gates, manifest)
	}

	if in.Plugin != nil && in.Plugin.UsableComponents() == 0 {
		gates = append(gates, Gate{
			Label:     "no usable components",
			Dimension: domain.DimensionStructural,
			Details:   []string{fmt.Sprintf("%d component(s) discovered, none parsed", in.Plugin.ComponentCount())},
		})
	}

	for _, g := range ruleGates {
		if details := ruleDetails(in.Results, g.Rule); len(details) > 0 {
			g.Details = details
			gates = append(gates, g)
		}
	}

	if in.Tests.HasFailure(domain.TestCritical) {
		var names []string
		for _, t := range in.Tests.Tests {
			if !t.Passed && t.Severity == domain.TestCritical {
				names = append(names, t.Name)
			}
		}
		sort.Strings(names)
		gates = append(gates, Gate{
			Label:     "critical user test failed",
			Dimension: domain.DimensionFunctional,
			Details:   names,
		})
	}
	return gates
}

// ruleDetails collects "path:line: message" for every finding with rule,
// sorted for stable output.
func ruleDetails(results []domain.ValidationResult, rule string) []string {
	var out []string
	for _, r := range results {
		for _, f := range r.Findings {
			if f.Rule == rule {
				out = append(out, f.Location()+": "+f.Message)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Compose combines dimension scores into the QualityScore. dims is updated in
// place with the weight each dimension received.
func Compose(dims map[domain.Dimension]domain.DimensionScore, in Input, cfg domain.EngineConfig) domain.QualityScore {
	weights := DimensionWeights(in.Plugin, cfg.Weights)
	for _, d := range domain.Dimensions {
		ds := dims[d]
		ds.Dimension = d
		ds.Weight = weights[d]
		dims[d] = ds
	}

	q := domain.QualityScore{
		Overall:         Overall(dims, weights),
		Dimensions:      dims,
		ComponentScores: componentScores(dims, weights),
	}
	q.Grade = domain.GradeFor(q.Overall)

	for _, g := range CriticalFailures(in) {
		q.Overrides = append(q.Overrides, g.Label)
	}

	blockingFailed := in.Tests.HasFailure(domain.TestBlocking) && q.Overall < cfg.PassThreshold
	q.Passed = len(q.Overrides) == 0 &&
		q.Overall >= cfg.PassThreshold &&
		dims[domain.DimensionStructural].Value >= cfg.StructuralFloor &&
		!blockingFailed
	return q
}

// componentScores computes each component's composite over the dimensions
// it has a value for, renormalizing the dimension weights.
func componentScores(dims map[domain.Dimension]domain.DimensionScore, weights map[domain.Dimension]float64) map[string]float64 {
	sums := map[string]float64{}
	totals := map[string]float64{}
	for _, d := range domain.Dimensions {
		for key, v := range dims[d].ComponentValues {
			sums[key] += v * weights[d]
			totals[key] += weights[d]
		}
	}
	out := make(map[string]float64, len(sums))
	for key, s := range sums {
		if totals[key] > 0 {
			out[key] = round1(s / totals[key])
		}
	}
	return out
}

// Summary renders a one-line verdict for logs.
func Summary(q domain.QualityScore) string {
	verdict := "pass"
	if !q.Passed {
		verdict = "fail"
	}
	s := fmt.Sprintf("%.1f (%s) %s", q.Overall, q.Grade, verdict)
	if len(q.Overrides) > 0 {
		s += ": " + strings.Join(q.Overrides, ", ")
	}
	return s
}
