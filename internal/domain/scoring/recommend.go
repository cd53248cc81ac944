package scoring

import (
	"fmt"
	"sort"

	"github.com/abdidvp/plugincheck/internal/domain"
)

// dimensionHighPriorityBelow marks a whole dimension as weak.
const dimensionHighPriorityBelow = 60.0

// subMetricMediumBelow marks a single sub-metric as weak.
const subMetricMediumBelow = 70.0

// categoryMetric maps a finding category to the sub-metric it explains.
// Categories absent here share their sub-metric's name.
var categoryMetric = map[string]string{
	domain.CategoryParse:         domain.MetricParseValidity,
	domain.CategoryDocumentation: domain.MetricBodyQuality,
	domain.CategoryLint:          domain.MetricBestPractices,
	domain.CategoryFramework:     "",
}

func metricFor(category string) string {
	if m, ok := categoryMetric[category]; ok {
		return m
	}
	return category
}

// Recommend turns weak sub-metrics and critical-failure gates into a
// deterministic, prioritized list.
func Recommend(dims map[domain.Dimension]domain.DimensionScore, in Input, cfg domain.EngineConfig) []domain.Recommendation {
	findings := indexFindings(in.Results)
	var recs []domain.Recommendation

	for _, g := range CriticalFailures(in) {
		recs = append(recs, domain.Recommendation{
			Priority:  domain.PriorityCritical,
			Dimension: g.Dimension,
			Message:   "Fix release blocker: " + g.Label,
			Details:   g.Details,
		})
	}

	for _, d := range domain.Dimensions {
		ds, ok := dims[d]
		if !ok {
			continue
		}
		for _, key := range sortedKeys(ds.Components) {
			metrics := ds.Components[key]
			for _, metric := range sortedKeys(metrics) {
				if metric == domain.MetricUserTests {
					continue
				}
				v := metrics[metric]
				threshold := cfg.ThresholdFor(metric)
				if v >= threshold {
					continue
				}
				contributing := findings[key][metric]
				recs = append(recs, domain.Recommendation{
					Priority:  priorityFor(contributing, ds.Value, v),
					Dimension: d,
					Component: key,
					SubMetric: metric,
					Message:   fmt.Sprintf("Improve %s of %s (%.1f, target %.0f)", metric, key, v, threshold),
					Details:   details(contributing),
				})
			}
		}

		// user_tests is one plugin-wide value folded into every component.
		if v, ok := ds.SubMetrics[domain.MetricUserTests]; ok && v < cfg.ThresholdFor(domain.MetricUserTests) {
			recs = append(recs, domain.Recommendation{
				Priority:  priorityFor(nil, ds.Value, v),
				Dimension: d,
				SubMetric: domain.MetricUserTests,
				Message:   fmt.Sprintf("Add or fix user tests (%.1f, target %.0f)", v, cfg.ThresholdFor(domain.MetricUserTests)),
			})
		}
	}

	SortRecommendations(recs)
	return recs
}

// priorityFor applies the fixed mapping: a critical finding wins, then a
// weak dimension, then a weak sub-metric.
func priorityFor(contributing []domain.Finding, dimensionValue, metricValue float64) domain.Priority {
	for _, f := range contributing {
		if f.Severity == domain.SeverityCritical {
			return domain.PriorityCritical
		}
	}
	switch {
	case dimensionValue < dimensionHighPriorityBelow:
		return domain.PriorityHigh
	case metricValue < subMetricMediumBelow:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

// indexFindings groups findings by component key and sub-metric.
func indexFindings(results []domain.ValidationResult) map[string]map[string][]domain.Finding {
	out := map[string]map[string][]domain.Finding{}
	for _, r := range results {
		key := r.ComponentKey()
		for _, f := range r.Findings {
			metric := metricFor(f.Category)
			if metric == "" {
				continue
			}
			if out[key] == nil {
				out[key] = map[string][]domain.Finding{}
			}
			out[key][metric] = append(out[key][metric], f)
		}
	}
	return out
}

func details(findings []domain.Finding) []string {
	if len(findings) == 0 {
		return nil
	}
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Location()+": "+f.Message)
	}
	sort.Strings(out)
	return out
}

// SortRecommendations orders by priority, dimension, component, sub-metric
// and finally message, so equal inputs always yield the same list.
func SortRecommendations(recs []domain.Recommendation) {
	order := make(map[domain.Dimension]int, len(domain.Dimensions))
	for i, d := range domain.Dimensions {
		order[d] = i
	}
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() < b.Priority.Rank()
		}
		if order[a.Dimension] != order[b.Dimension] {
			return order[a.Dimension] < order[b.Dimension]
		}
		if a.Component != b.Component {
			return a.Component < b.Component
		}
		if a.SubMetric != b.SubMetric {
			return a.SubMetric < b.SubMetric
		}
		return a.Message < b.Message
	})
}
