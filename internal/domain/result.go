package domain

import (
	"fmt"
	"time"
)

// Severity grades a Finding.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityError    Severity = "error"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Rank orders severities from most (0) to least severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityError:
		return 1
	case SeverityWarning:
		return 2
	default:
		return 3
	}
}

// Blocking reports whether a finding of this severity makes a result invalid.
func (s Severity) Blocking() bool {
	return s == SeverityCritical || s == SeverityError
}

// Finding categories emitted by the built-in validators.
const (
	CategoryParse            = "parse"
	CategoryRequiredFields   = "required_fields"
	CategoryNaming           = "naming"
	CategoryFileOrganization = "file_organization"
	CategorySchema           = "schema_compliance"
	CategoryDescription      = "description_quality"
	CategoryTriggers         = "trigger_coverage"
	CategoryExecution        = "execution_readiness"
	CategoryErrorHandling    = "error_handling"
	CategorySecurity         = "security"
	CategorySyntax           = "script_syntax"
	CategoryPortability      = "portability"
	CategoryBestPractice     = "best_practices"
	CategoryDocumentation    = "documentation"
	CategoryReferences       = "references"
	CategoryLint             = "lint"
	CategoryFramework        = "framework_error"
)

// Rule identifiers that the composite scorer treats as critical-failure overrides.
const (
	RuleManifestUnparseable = "manifest-unparseable"
	RuleDisallowedMarkup    = "disallowed-markup"
	RuleHardcodedCredential = "hardcoded-credential"
	RuleReservedName        = "reserved-name"
	RuleFilenameCase        = "filename-case"
)

// Finding is one discrete validation issue. It is an immutable value.
type Finding struct {
	Severity   Severity `json:"severity"`
	Category   string   `json:"category"`
	Rule       string   `json:"rule,omitempty"`
	Message    string   `json:"message"`
	Path       string   `json:"path"`
	Line       int      `json:"line,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Location renders the finding's source position as path[:line].
func (f Finding) Location() string {
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d", f.Path, f.Line)
	}
	return f.Path
}

// ValidationResult is produced by one validator invocation against one component.
type ValidationResult struct {
	Validator     string             `json:"validator"`
	ComponentType ComponentType      `json:"component_type"`
	ComponentName string             `json:"component_name"`
	ComponentPath string             `json:"component_path"`
	Valid         bool               `json:"valid"`
	Findings      []Finding          `json:"findings,omitempty"`
	Scores        map[string]float64 `json:"scores,omitempty"`
	Duration      time.Duration      `json:"duration_ns"`
}

// NewResult starts a result for validator v against component c.
func NewResult(validator string, c Component) ValidationResult {
	return ValidationResult{
		Validator:     validator,
		ComponentType: c.Type,
		ComponentName: c.Name,
		ComponentPath: c.Path,
		Valid:         true,
		Scores:        map[string]float64{},
	}
}

// ComponentKey matches Component.Key for the component this result covers.
func (r ValidationResult) ComponentKey() string {
	return string(r.ComponentType) + "/" + r.ComponentName
}

// Add appends findings in order and keeps Valid consistent.
func (r *ValidationResult) Add(findings ...Finding) {
	r.Findings = append(r.Findings, findings...)
	r.Finalize()
}

// SetScore records a sub-metric score for this component.
func (r *ValidationResult) SetScore(subMetric string, value float64) {
	if r.Scores == nil {
		r.Scores = map[string]float64{}
	}
	r.Scores[subMetric] = value
}

// SetRatio records a pass ratio as a 0-100 score. A zero total records nothing.
func (r *ValidationResult) SetRatio(subMetric string, passed, total int) {
	if total <= 0 {
		return
	}
	r.SetScore(subMetric, 100*float64(passed)/float64(total))
}

// Finalize recomputes Valid: a result is valid iff no finding is critical or error.
func (r *ValidationResult) Finalize() {
	r.Valid = true
	for _, f := range r.Findings {
		if f.Severity.Blocking() {
			r.Valid = false
			return
		}
	}
}

// HasRule reports whether any finding carries the given rule identifier.
func (r ValidationResult) HasRule(rule string) bool {
	for _, f := range r.Findings {
		if f.Rule == rule {
			return true
		}
	}
	return false
}

// FrameworkFinding converts a recovered engine error into a visible finding.
func FrameworkFinding(severity Severity, path string, err error) Finding {
	return Finding{
		Severity: severity,
		Category: CategoryFramework,
		Message:  err.Error(),
		Path:     path,
	}
}
