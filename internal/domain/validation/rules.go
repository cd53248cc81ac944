// Package validation holds the built-in validators and the registry that maps
// component types to the validators eligible to run on them.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fatih/camelcase"
	"golang.org/x/mod/semver"

	"github.com/abdidvp/plugincheck/internal/domain"
)

var (
	kebabRe        = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$`)
	nonKebabRe     = regexp.MustCompile(`[^a-z0-9]+`)
	quotedPhraseRe = regexp.MustCompile(`"[^"]{3,}"`)
)

// Naming limits shared by every component type.
const (
	minNameLength = 3
	maxNameLength = 50
)

var reservedPrefixes = []string{"claude-", "anthropic-"}

var actionVerbs = []string{
	"creates", "manages", "analyzes", "generates", "validates",
	"converts", "processes", "monitors", "configures", "deploys",
	"builds", "tests", "runs", "executes", "handles",
	"create", "manage", "analyze", "generate", "validate",
	"convert", "review", "deploy", "build", "run",
}

var triggerPhrases = []string{
	"use when", "use this", "trigger", "ask to", "asks for",
	"mentions", "says", "requests", "use for",
}

var vagueMarkers = []string{
	"helps with", "does things", "general purpose", "various tasks", "stuff",
}

// checkNaming applies the lowercase-hyphen naming contract. It returns the
// findings and how many of the four checks passed.
func checkNaming(name, path string) (findings []domain.Finding, passed, total int) {
	total = 4

	if len(name) >= minNameLength {
		passed++
	} else {
		findings = append(findings, domain.Finding{
			Severity:   domain.SeverityError,
			Category:   domain.CategoryNaming,
			Message:    fmt.Sprintf("Name '%s' is too short (minimum %d characters)", name, minNameLength),
			Path:       path,
			Suggestion: fmt.Sprintf("Use a more descriptive name (%d-%d characters)", minNameLength, maxNameLength),
		})
	}

	if len(name) <= maxNameLength {
		passed++
	} else {
		findings = append(findings, domain.Finding{
			Severity: domain.SeverityError,
			Category: domain.CategoryNaming,
			Message:  fmt.Sprintf("Name '%s' is too long (maximum %d characters)", name, maxNameLength),
			Path:     path,
		})
	}

	if kebabRe.MatchString(name) {
		passed++
	} else {
		findings = append(findings, domain.Finding{
			Severity:   domain.SeverityError,
			Category:   domain.CategoryNaming,
			Message:    fmt.Sprintf("Name '%s' must be kebab-case (lowercase, hyphens only)", name),
			Path:       path,
			Suggestion: fmt.Sprintf("Suggested: '%s'", ToKebabCase(name)),
		})
	}

	if prefix, reserved := reservedPrefix(name); reserved {
		findings = append(findings, domain.Finding{
			Severity:   domain.SeverityError,
			Category:   domain.CategoryNaming,
			Rule:       domain.RuleReservedName,
			Message:    fmt.Sprintf("Name '%s' uses reserved prefix '%s'", name, prefix),
			Path:       path,
			Suggestion: "Choose a different name without reserved prefixes",
		})
	} else {
		passed++
	}

	return findings, passed, total
}

func reservedPrefix(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, p := range reservedPrefixes {
		if strings.HasPrefix(lower, p) {
			return p, true
		}
	}
	return "", false
}

// ToKebabCase converts an arbitrary name into a lowercase-hyphen token,
// splitting CamelCase words first.
func ToKebabCase(name string) string {
	words := camelcase.Split(name)
	joined := strings.ToLower(strings.Join(words, "-"))
	joined = nonKebabRe.ReplaceAllString(joined, "-")
	return strings.Trim(joined, "-")
}

// checkRequired reports missing payload fields.
func checkRequired(c domain.Component, required []string, where string) (findings []domain.Finding, passed int) {
	for _, field := range required {
		v, ok := c.Payload[field]
		if ok && v != nil && fmt.Sprint(v) != "" {
			passed++
			continue
		}
		findings = append(findings, domain.Finding{
			Severity:   domain.SeverityError,
			Category:   domain.CategoryRequiredFields,
			Message:    fmt.Sprintf("Missing required field: '%s'", field),
			Path:       c.Path,
			Suggestion: fmt.Sprintf("Add '%s' field to %s", field, where),
		})
	}
	return findings, passed
}

// DescriptionQuality scores a description on four independent axes (length,
// action statement, trigger keywords, quoted examples) with a vagueness penalty.
func DescriptionQuality(description, path string) (float64, []domain.Finding) {
	var findings []domain.Finding
	if len(description) < 10 {
		findings = append(findings, domain.Finding{
			Severity:   domain.SeverityError,
			Category:   domain.CategoryDescription,
			Message:    "Description too short (minimum 10 characters)",
			Path:       path,
			Suggestion: "Expand description with what the component does and when to use it",
		})
		return 0, findings
	}

	lower := strings.ToLower(description)
	score := 0.0

	switch {
	case len(description) >= 100:
		score += 30
	case len(description) >= 50:
		score += 20
	default:
		score += 10
	}

	if containsAny(lower, actionVerbs) {
		score += 10
	} else {
		findings = append(findings, domain.Finding{
			Severity:   domain.SeverityWarning,
			Category:   domain.CategoryDescription,
			Message:    "Description lacks clear action statement",
			Path:       path,
			Suggestion: "Start with what the component does (e.g., 'Manages...', 'Analyzes...')",
		})
	}

	if containsAny(lower, triggerPhrases) {
		score += 30
	} else {
		findings = append(findings, domain.Finding{
			Severity:   domain.SeverityWarning,
			Category:   domain.CategoryDescription,
			Message:    "Description missing trigger conditions",
			Path:       path,
			Suggestion: "Add 'Use when...' with specific user phrases",
		})
	}

	switch quoted := len(quotedPhraseRe.FindAllString(description, -1)); {
	case quoted >= 2:
		score += 30
	case quoted == 1:
		score += 15
	}

	if containsAny(lower, vagueMarkers) {
		score -= 10
		findings = append(findings, domain.Finding{
			Severity:   domain.SeverityWarning,
			Category:   domain.CategoryDescription,
			Message:    "Description contains vague language",
			Path:       path,
			Suggestion: "Be specific about what the component does",
		})
	}

	return clamp(score), findings
}

// triggerCoverage counts trigger signals in a description: a trigger phrase,
// at least one quoted example and a second quoted example.
func triggerCoverage(description string) (passed, total int) {
	total = 3
	if containsAny(strings.ToLower(description), triggerPhrases) {
		passed++
	}
	quoted := len(quotedPhraseRe.FindAllString(description, -1))
	if quoted >= 1 {
		passed++
	}
	if quoted >= 2 {
		passed++
	}
	return passed, total
}

// validSemver accepts full MAJOR.MINOR.PATCH versions with optional pre-release
// and build metadata; the leading "v" is optional.
func validSemver(version string) bool {
	v := version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return false
	}
	core := strings.SplitN(strings.SplitN(v, "+", 2)[0], "-", 2)[0]
	return strings.Count(core, ".") == 2
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func clamp(v float64) float64 {
	return max(0, min(100, v))
}

func organizationScore(violations int) float64 {
	return max(0, 100-15*float64(violations))
}

// checkParsed records parse validity. It returns false when the payload could
// not be parsed and no further checks can run.
func checkParsed(res *domain.ValidationResult, c domain.Component) bool {
	if c.Parsed() {
		res.SetScore(domain.MetricParseValidity, 100)
		return true
	}
	res.SetScore(domain.MetricParseValidity, 0)
	res.Add(domain.Finding{
		Severity:   domain.SeverityError,
		Category:   domain.CategoryParse,
		Message:    fmt.Sprintf("Failed to parse %s: %s", c.Type, c.ParseError),
		Path:       c.Path,
		Suggestion: "Fix the YAML/JSON syntax",
	})
	return false
}

func stringField(c domain.Component, key string) string {
	s, _ := c.String(key)
	return s
}
