// Package scoring reduces validation results into dimension scores, the
// composite quality score and prioritized recommendations.
package scoring

import (
	"math"
	"sort"

	"github.com/abdidvp/plugincheck/internal/domain"
)

// componentMetrics is the per-component view of one dimension:
// component key -> sub-metric -> value. Components in fixed bypass the
// sub-metric formula and contribute the given value as-is.
type componentMetrics struct {
	types  map[string]domain.ComponentType
	values map[string]map[string]float64
	fixed  map[string]float64
}

// CheckResults rejects results carrying unknown sub-metrics or values outside
// [0,100]. Clamping here would hide a broken validator.
func CheckResults(results []domain.ValidationResult) error {
	for _, r := range results {
		for _, metric := range sortedKeys(r.Scores) {
			v := r.Scores[metric]
			dim, known := domain.SubMetricDimension[metric]
			if !known {
				return &domain.ScoringError{
					Validator: r.Validator, Component: r.ComponentKey(),
					SubMetric: metric, Value: v, Reason: "unknown sub-metric",
				}
			}
			if math.IsNaN(v) || v < 0 || v > 100 {
				return &domain.ScoringError{
					Dimension: dim, Validator: r.Validator, Component: r.ComponentKey(),
					SubMetric: metric, Value: v, Reason: "sub-score out of range [0,100]",
				}
			}
		}
	}
	return nil
}

// collect gathers the sub-metrics of one dimension per component. When more
// than one validator reports the same sub-metric for a component the values
// are averaged in (validator name) order.
func collect(results []domain.ValidationResult, dim domain.Dimension) componentMetrics {
	sorted := make([]domain.ValidationResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ComponentKey() != sorted[j].ComponentKey() {
			return sorted[i].ComponentKey() < sorted[j].ComponentKey()
		}
		return sorted[i].Validator < sorted[j].Validator
	})

	type acc struct {
		sum   float64
		count int
	}
	sums := map[string]map[string]*acc{}
	cm := componentMetrics{
		types:  map[string]domain.ComponentType{},
		values: map[string]map[string]float64{},
		fixed:  map[string]float64{},
	}

	for _, r := range sorted {
		key := r.ComponentKey()
		for metric, v := range r.Scores {
			if domain.SubMetricDimension[metric] != dim {
				continue
			}
			if sums[key] == nil {
				sums[key] = map[string]*acc{}
			}
			a := sums[key][metric]
			if a == nil {
				a = &acc{}
				sums[key][metric] = a
			}
			a.sum += v
			a.count++
			cm.types[key] = r.ComponentType
		}
	}
	for key, metrics := range sums {
		cm.values[key] = map[string]float64{}
		for metric, a := range metrics {
			cm.values[key][metric] = a.sum / float64(a.count)
		}
	}
	return cm
}

// weightedMean applies profile weights to the sub-metrics present. Missing
// sub-metrics are not applicable and the remaining weights are renormalized.
func weightedMean(values map[string]float64, weights map[string]float64) (float64, bool) {
	sum, total := 0.0, 0.0
	for _, metric := range sortedKeys(weights) {
		v, ok := values[metric]
		if !ok {
			continue
		}
		sum += v * weights[metric]
		total += weights[metric]
	}
	if total == 0 {
		return 0, false
	}
	return sum / total, true
}

// aggregate turns per-component metrics into a DimensionScore using the
// per-type profile and the component-type weight table.
func aggregate(dim domain.Dimension, cm componentMetrics) domain.DimensionScore {
	ds := domain.DimensionScore{
		Dimension:       dim,
		SubMetrics:      map[string]float64{},
		Components:      map[string]map[string]float64{},
		ComponentValues: map[string]float64{},
	}

	metricSum := map[string]float64{}
	metricWeight := map[string]float64{}
	valueSum, weightSum := 0.0, 0.0

	keys := sortedKeys(cm.values)
	for key := range cm.fixed {
		if _, dup := cm.values[key]; !dup {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		ct := cm.types[key]
		w := domain.ComponentWeight(ct)
		if v, ok := cm.fixed[key]; ok {
			ds.ComponentValues[key] = round1(v)
			valueSum += v * w
			weightSum += w
			continue
		}
		value, ok := weightedMean(cm.values[key], domain.ProfileFor(ct).Weights(dim))
		if !ok {
			continue
		}
		ds.Components[key] = roundMap(cm.values[key])
		ds.ComponentValues[key] = round1(value)
		valueSum += value * w
		weightSum += w
		for metric, v := range cm.values[key] {
			metricSum[metric] += v * w
			metricWeight[metric] += w
		}
	}

	for metric, s := range metricSum {
		ds.SubMetrics[metric] = round1(s / metricWeight[metric])
	}
	if weightSum > 0 {
		ds.Value = round1(valueSum / weightSum)
	}
	return ds
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func roundMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = round1(v)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
