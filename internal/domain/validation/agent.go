package validation

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/abdidvp/plugincheck/internal/domain"
)

var (
	agentModels = []string{"inherit", "sonnet", "opus", "haiku"}
	agentColors = []string{"blue", "cyan", "green", "yellow", "magenta", "red", "purple", "orange", "pink"}
)

// AgentValidator checks agents/*.md subagent definitions.
type AgentValidator struct{}

func (AgentValidator) Name() string { return "agent" }

func (AgentValidator) AppliesTo() []domain.ComponentType {
	return []domain.ComponentType{domain.TypeAgent}
}

func (v AgentValidator) Validate(_ context.Context, c domain.Component, p *domain.Plugin) domain.ValidationResult {
	res := domain.NewResult(v.Name(), c)
	if !checkParsed(&res, c) {
		return res
	}

	required, passed := checkRequired(c, []string{"name", "description"}, "agent frontmatter")
	res.Add(required...)
	res.SetRatio(domain.MetricRequiredFields, passed, 2)

	name := stringField(c, "name")
	description := stringField(c, "description")

	if name != "" {
		naming, ok, total := checkNaming(name, c.Path)
		res.Add(naming...)
		res.SetRatio(domain.MetricNaming, ok, total)
	}

	violations := 0
	if !strings.HasPrefix(c.Path, "agents/") || path.Ext(c.Path) != ".md" {
		violations++
		res.Add(domain.Finding{
			Severity:   domain.SeverityWarning,
			Category:   domain.CategoryFileOrganization,
			Message:    "Agent definitions belong in agents/*.md",
			Path:       c.Path,
			Suggestion: "Move the file under agents/",
		})
	}
	if stem := strings.TrimSuffix(path.Base(c.Path), path.Ext(c.Path)); name != "" && stem != name {
		violations++
		res.Add(domain.Finding{
			Severity:   domain.SeverityWarning,
			Category:   domain.CategoryFileOrganization,
			Message:    fmt.Sprintf("File name '%s' doesn't match agent name '%s'", stem, name),
			Path:       c.Path,
			Suggestion: fmt.Sprintf("Rename file to '%s.md'", name),
		})
	}
	res.SetScore(domain.MetricFileOrganization, organizationScore(violations))

	schemaOK, schemaTotal := 0, 0
	for _, field := range []struct {
		key     string
		allowed []string
	}{
		{"model", agentModels},
		{"color", agentColors},
	} {
		raw, present := c.Payload[field.key]
		if !present {
			continue
		}
		schemaTotal++
		value, _ := raw.(string)
		if contains(field.allowed, value) {
			schemaOK++
			continue
		}
		res.Add(domain.Finding{
			Severity:   domain.SeverityError,
			Category:   domain.CategorySchema,
			Message:    fmt.Sprintf("Invalid %s '%v'", field.key, raw),
			Path:       c.Path,
			Suggestion: fmt.Sprintf("Use one of: %s", strings.Join(field.allowed, ", ")),
		})
	}
	if raw, present := c.Payload["tools"]; present {
		schemaTotal++
		if isStringOrStringList(raw) {
			schemaOK++
		} else {
			res.Add(domain.Finding{
				Severity: domain.SeverityError,
				Category: domain.CategorySchema,
				Message:  "'tools' must be a string or a list of strings",
				Path:     c.Path,
			})
		}
	}
	res.SetRatio(domain.MetricSchemaCompliance, schemaOK, schemaTotal)

	if description != "" {
		score, findings := DescriptionQuality(stripAgentTags(description), c.Path)
		res.Add(findings...)
		res.SetScore(domain.MetricDescriptionQuality, score)

		hits, checks := triggerCoverage(description)
		checks++
		if strings.Contains(strings.ToLower(description), "<example>") {
			hits++
		} else {
			res.Add(domain.Finding{
				Severity:   domain.SeverityWarning,
				Category:   domain.CategoryTriggers,
				Message:    "Agent description has no <example> blocks",
				Path:       c.Path,
				Suggestion: "Add <example> blocks showing when the agent should be invoked",
			})
		}
		res.SetRatio(domain.MetricTriggerCoverage, hits, checks)
	}

	scoreErrorGuidance(&res, c)
	scoreExecutionReadiness(&res, c, p)
	scoreDocumentation(&res, c, p)
	return res
}

// Agent descriptions may carry these tags; they are not treated as markup.
var agentTags = []string{"<example>", "</example>", "<commentary>", "</commentary>"}

func stripAgentTags(s string) string {
	for _, t := range agentTags {
		s = strings.ReplaceAll(s, t, " ")
		s = strings.ReplaceAll(s, strings.ToUpper(t), " ")
	}
	return s
}

func contains(list []string, v string) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}
