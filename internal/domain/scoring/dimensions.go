package scoring

import (
	"fmt"
	"strings"

	"github.com/abdidvp/plugincheck/internal/domain"
)

// CodeQualityBaseline is the fixed contribution of a component with no
// executable surface.
const CodeQualityBaseline = 70.0

// Input is everything a dimension scorer may consult. Tests is nil when the
// user-test subsystem produced nothing.
type Input struct {
	Results []domain.ValidationResult
	Tests   *domain.UserTestReport
	Plugin  *domain.Plugin
	Policy  domain.UserTestPolicy
}

// DimensionScorer reduces validation results into one dimension score.
type DimensionScorer interface {
	Dimension() domain.Dimension
	Score(in Input) (domain.DimensionScore, error)
}

// Scorers returns the four dimension scorers in canonical order.
func Scorers() []DimensionScorer {
	return []DimensionScorer{
		StructuralScorer{},
		FunctionalScorer{},
		CodeQualityScorer{},
		DocumentationScorer{},
	}
}

// ScoreDimensions runs every scorer. Any ScoringError aborts scoring.
func ScoreDimensions(in Input) (map[domain.Dimension]domain.DimensionScore, error) {
	if err := CheckResults(in.Results); err != nil {
		return nil, err
	}
	out := make(map[domain.Dimension]domain.DimensionScore, len(domain.Dimensions))
	for _, s := range Scorers() {
		ds, err := s.Score(in)
		if err != nil {
			return nil, fmt.Errorf("scoring %s: %w", s.Dimension(), err)
		}
		out[s.Dimension()] = ds
	}
	return out, nil
}

// StructuralScorer covers parse validity, required fields, naming, file
// organization and schema compliance.
type StructuralScorer struct{}

func (StructuralScorer) Dimension() domain.Dimension { return domain.DimensionStructural }

func (s StructuralScorer) Score(in Input) (domain.DimensionScore, error) {
	if err := CheckResults(in.Results); err != nil {
		return domain.DimensionScore{}, err
	}
	ds := aggregate(s.Dimension(), collect(in.Results, s.Dimension()))
	ds.Rationale = rationale(ds)
	return ds, nil
}

// FunctionalScorer folds the user-test score into every component's
// functional metrics. Without user tests the dimension also loses the
// omission penalty.
type FunctionalScorer struct{}

func (FunctionalScorer) Dimension() domain.Dimension { return domain.DimensionFunctional }

func (s FunctionalScorer) Score(in Input) (domain.DimensionScore, error) {
	if err := CheckResults(in.Results); err != nil {
		return domain.DimensionScore{}, err
	}
	cm := collect(in.Results, s.Dimension())
	ut := ScoreUserTests(in.Tests, in.Plugin, in.Policy)

	if in.Plugin != nil {
		for _, c := range in.Plugin.All() {
			key := c.Key()
			if cm.values[key] == nil {
				cm.values[key] = map[string]float64{}
			}
			cm.values[key][domain.MetricUserTests] = ut.Effective
			cm.types[key] = c.Type
		}
	}

	ds := aggregate(s.Dimension(), cm)
	if len(ds.ComponentValues) == 0 {
		ds.Value = ut.Effective
		ds.SubMetrics[domain.MetricUserTests] = round1(ut.Effective)
	}
	if !ut.Executed {
		ds.Value = round1(max(0, ds.Value-in.Policy.OmissionPenalty))
	}
	ds.Rationale = rationale(ds) + "; " + ut.String()
	if !ut.Executed {
		ds.Rationale += fmt.Sprintf("; omission penalty -%.0f", in.Policy.OmissionPenalty)
	}
	return ds, nil
}

// CodeQualityScorer aggregates script metrics. Components without scripts or
// command hooks contribute the fixed baseline instead of the formula.
type CodeQualityScorer struct{}

func (CodeQualityScorer) Dimension() domain.Dimension { return domain.DimensionCodeQuality }

func (s CodeQualityScorer) Score(in Input) (domain.DimensionScore, error) {
	if err := CheckResults(in.Results); err != nil {
		return domain.DimensionScore{}, err
	}
	cm := collect(in.Results, s.Dimension())
	if in.Plugin != nil {
		for _, c := range in.Plugin.All() {
			key := c.Key()
			cm.types[key] = c.Type
			if !c.HasExecutableSurface() || len(cm.values[key]) == 0 {
				delete(cm.values, key)
				cm.fixed[key] = CodeQualityBaseline
			}
		}
	}

	ds := aggregate(s.Dimension(), cm)
	if len(ds.ComponentValues) == 0 {
		ds.Value = CodeQualityBaseline
	}
	if in.Plugin != nil && !in.Plugin.HasScripts() && !in.Plugin.HasCommandHooks() {
		ds.Value = CodeQualityBaseline
		ds.Rationale = fmt.Sprintf("no executable surface; neutral baseline %.0f", CodeQualityBaseline)
		return ds, nil
	}
	ds.Rationale = rationale(ds)
	if n := len(cm.fixed); n > 0 {
		ds.Rationale += fmt.Sprintf("; %d component(s) at baseline %.0f", n, CodeQualityBaseline)
	}
	return ds, nil
}

// DocumentationScorer covers body quality, examples, references,
// troubleshooting and structural clarity.
type DocumentationScorer struct{}

func (DocumentationScorer) Dimension() domain.Dimension { return domain.DimensionDocumentation }

func (s DocumentationScorer) Score(in Input) (domain.DimensionScore, error) {
	if err := CheckResults(in.Results); err != nil {
		return domain.DimensionScore{}, err
	}
	ds := aggregate(s.Dimension(), collect(in.Results, s.Dimension()))
	ds.Rationale = rationale(ds)
	return ds, nil
}

// rationale summarizes how many components were weighed and the weakest
// sub-metric.
func rationale(ds domain.DimensionScore) string {
	if len(ds.ComponentValues) == 0 {
		return "no applicable components"
	}
	parts := []string{fmt.Sprintf("weighted over %d component(s)", len(ds.ComponentValues))}
	weakest, low := "", 101.0
	for _, metric := range sortedKeys(ds.SubMetrics) {
		if v := ds.SubMetrics[metric]; v < low {
			weakest, low = metric, v
		}
	}
	if weakest != "" {
		parts = append(parts, fmt.Sprintf("weakest %s %.1f", weakest, low))
	}
	return strings.Join(parts, "; ")
}
