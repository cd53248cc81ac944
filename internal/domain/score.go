package domain

import "time"

// Dimension names one of the four top-level quality axes.
type Dimension string

const (
	DimensionStructural    Dimension = "structural"
	DimensionFunctional    Dimension = "functional"
	DimensionCodeQuality   Dimension = "code_quality"
	DimensionDocumentation Dimension = "documentation"
)

// Dimensions lists the quality axes in canonical order.
var Dimensions = []Dimension{
	DimensionStructural, DimensionFunctional, DimensionCodeQuality, DimensionDocumentation,
}

// Sub-metric names. Each belongs to exactly one dimension (see SubMetricDimension).
const (
	// structural
	MetricParseValidity    = "parse_validity"
	MetricRequiredFields   = "required_fields"
	MetricNaming           = "naming"
	MetricFileOrganization = "file_organization"
	MetricSchemaCompliance = "schema_compliance"

	// functional
	MetricDescriptionQuality = "description_quality"
	MetricTriggerCoverage    = "trigger_coverage"
	MetricErrorHandling      = "error_handling"
	MetricUserTests          = "user_tests"
	MetricExecutionReadiness = "execution_readiness"

	// code quality
	MetricScriptSyntax        = "script_syntax"
	MetricSecurity            = "security"
	MetricPortability         = "portability"
	MetricBestPractices       = "best_practices"
	MetricScriptErrorHandling = "script_error_handling"

	// documentation
	MetricBodyQuality       = "body_quality"
	MetricExamples          = "examples"
	MetricReferences        = "references"
	MetricTroubleshooting   = "troubleshooting"
	MetricStructuralClarity = "structural_clarity"
)

// SubMetricDimension maps each sub-metric to the dimension it feeds.
var SubMetricDimension = map[string]Dimension{
	MetricParseValidity:       DimensionStructural,
	MetricRequiredFields:      DimensionStructural,
	MetricNaming:              DimensionStructural,
	MetricFileOrganization:    DimensionStructural,
	MetricSchemaCompliance:    DimensionStructural,
	MetricDescriptionQuality:  DimensionFunctional,
	MetricTriggerCoverage:     DimensionFunctional,
	MetricErrorHandling:       DimensionFunctional,
	MetricUserTests:           DimensionFunctional,
	MetricExecutionReadiness:  DimensionFunctional,
	MetricScriptSyntax:        DimensionCodeQuality,
	MetricSecurity:            DimensionCodeQuality,
	MetricPortability:         DimensionCodeQuality,
	MetricBestPractices:       DimensionCodeQuality,
	MetricScriptErrorHandling: DimensionCodeQuality,
	MetricBodyQuality:         DimensionDocumentation,
	MetricExamples:            DimensionDocumentation,
	MetricReferences:          DimensionDocumentation,
	MetricTroubleshooting:     DimensionDocumentation,
	MetricStructuralClarity:   DimensionDocumentation,
}

// DimensionScore is one dimension's aggregated score for a plugin.
type DimensionScore struct {
	Dimension  Dimension          `json:"dimension"`
	Value      float64            `json:"value"`
	SubMetrics map[string]float64 `json:"sub_metrics"`
	Weight     float64            `json:"weight"`
	Rationale  string             `json:"rationale"`

	// Per-component breakdown: component key -> sub-metric -> value, and
	// component key -> that component's value for this dimension.
	Components      map[string]map[string]float64 `json:"components,omitempty"`
	ComponentValues map[string]float64            `json:"component_values,omitempty"`
}

// QualityScore is the composite judgment for one plugin.
type QualityScore struct {
	Overall         float64                      `json:"overall"`
	Grade           string                       `json:"grade"`
	Passed          bool                         `json:"passed"`
	Overrides       []string                     `json:"overrides,omitempty"`
	Dimensions      map[Dimension]DimensionScore `json:"dimensions"`
	ComponentScores map[string]float64           `json:"component_scores"`
}

// Priority ranks a Recommendation.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank orders priorities from most (0) to least urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

// Recommendation is a prioritized, actionable suggestion derived from scores and findings.
type Recommendation struct {
	Priority  Priority  `json:"priority"`
	Dimension Dimension `json:"dimension"`
	Component string    `json:"component,omitempty"`
	SubMetric string    `json:"sub_metric,omitempty"`
	Message   string    `json:"message"`
	Details   []string  `json:"details,omitempty"`
}

// Report is the immutable bundle handed to reporting once a run completes.
type Report struct {
	RunID           string             `json:"run_id"`
	GeneratedAt     time.Time          `json:"generated_at"`
	CommitHash      string             `json:"commit_hash,omitempty"`
	Plugin          *Plugin            `json:"plugin"`
	Results         []ValidationResult `json:"results"`
	Score           QualityScore       `json:"score"`
	Recommendations []Recommendation   `json:"recommendations"`
}

// Findings flattens every finding in the report, in result order.
func (r *Report) Findings() []Finding {
	return CollectFindings(r.Results)
}

// CollectFindings flattens the findings of a result set, preserving order.
func CollectFindings(results []ValidationResult) []Finding {
	var all []Finding
	for _, res := range results {
		all = append(all, res.Findings...)
	}
	return all
}

// Grade band thresholds, highest first. Banding depends only on the rounded score.
var gradeBands = []struct {
	min   float64
	label string
}{
	{95, "A+"},
	{90, "A"},
	{85, "A-"},
	{80, "B+"},
	{75, "B"},
	{70, "B-"},
	{65, "C+"},
	{60, "C"},
	{50, "D"},
	{0, "F"},
}

// GradeFor maps an overall score to its letter band.
func GradeFor(score float64) string {
	for _, b := range gradeBands {
		if score >= b.min {
			return b.label
		}
	}
	return "F"
}

// BadgeColor picks a shields.io color for a score.
func BadgeColor(score float64) string {
	switch {
	case score >= 90:
		return "brightgreen"
	case score >= 80:
		return "green"
	case score >= 70:
		return "yellow"
	case score >= 60:
		return "orange"
	case score >= 50:
		return "red"
	default:
		return "critical"
	}
}

// ScoreEntry is the history record of one scored run.
type ScoreEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	RunID      string    `json:"run_id"`
	CommitHash string    `json:"commit_hash,omitempty"`
	Version    string    `json:"version,omitempty"`
	Overall    float64   `json:"overall"`
	Grade      string    `json:"grade"`
	Passed     bool      `json:"passed"`
}

// HistoryEntry summarizes r for the score history.
func (r *Report) HistoryEntry() ScoreEntry {
	e := ScoreEntry{
		Timestamp:  r.GeneratedAt,
		RunID:      r.RunID,
		CommitHash: r.CommitHash,
		Overall:    r.Score.Overall,
		Grade:      r.Score.Grade,
		Passed:     r.Score.Passed,
	}
	if r.Plugin != nil {
		e.Version = r.Plugin.Version
	}
	return e
}
