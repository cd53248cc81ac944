package validation

import (
	"context"
	"fmt"
	"path"

	"github.com/abdidvp/plugincheck/internal/domain"
)

const (
	skillFileName        = "SKILL.md"
	maxSkillNameLength   = 64
	maxDescriptionLength = 1024
	skillValidatorName   = "skill"
)

// SkillValidator checks SKILL.md files: frontmatter, naming, file layout,
// description quality and body documentation.
type SkillValidator struct{}

func (SkillValidator) Name() string { return skillValidatorName }

func (SkillValidator) AppliesTo() []domain.ComponentType {
	return []domain.ComponentType{domain.TypeSkill}
}

func (SkillValidator) Validate(_ context.Context, c domain.Component, p *domain.Plugin) domain.ValidationResult {
	res := domain.NewResult(skillValidatorName, c)
	if !checkParsed(&res, c) {
		return res
	}

	required, passed := checkRequired(c, []string{"name", "description"}, "SKILL.md frontmatter")
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
	if path.Base(c.Path) != skillFileName {
		violations++
		res.Add(domain.Finding{
			Severity:   domain.SeverityError,
			Category:   domain.CategoryFileOrganization,
			Rule:       domain.RuleFilenameCase,
			Message:    "Skill file must be named 'SKILL.md' (exact case)",
			Path:       c.Path,
			Suggestion: "Rename to SKILL.md",
		})
	}
	if c.Folder != "" && name != "" && c.Folder != name {
		violations++
		res.Add(domain.Finding{
			Severity:   domain.SeverityWarning,
			Category:   domain.CategoryFileOrganization,
			Message:    fmt.Sprintf("Folder name '%s' doesn't match skill name '%s'", c.Folder, name),
			Path:       c.Path,
			Suggestion: fmt.Sprintf("Rename folder to '%s'", name),
		})
	}
	res.SetScore(domain.MetricFileOrganization, organizationScore(violations))

	schemaOK, schemaTotal := 0, 0
	schemaTotal++
	if len(description) <= maxDescriptionLength {
		schemaOK++
	} else {
		res.Add(domain.Finding{
			Severity:   domain.SeverityError,
			Category:   domain.CategorySchema,
			Message:    fmt.Sprintf("Description too long (%d characters, max %d)", len(description), maxDescriptionLength),
			Path:       c.Path,
			Suggestion: "Shorten description or move details to SKILL.md body",
		})
	}
	schemaTotal++
	if len(name) <= maxSkillNameLength {
		schemaOK++
	} else {
		res.Add(domain.Finding{
			Severity: domain.SeverityError,
			Category: domain.CategorySchema,
			Message:  fmt.Sprintf("Skill name exceeds %d characters", maxSkillNameLength),
			Path:     c.Path,
		})
	}
	if _, present := c.Payload["allowed-tools"]; present {
		schemaTotal++
		if isStringOrStringList(c.Payload["allowed-tools"]) {
			schemaOK++
		} else {
			res.Add(domain.Finding{
				Severity: domain.SeverityError,
				Category: domain.CategorySchema,
				Message:  "'allowed-tools' must be a string or a list of strings",
				Path:     c.Path,
			})
		}
	}
	res.SetRatio(domain.MetricSchemaCompliance, schemaOK, schemaTotal)

	if description != "" {
		score, findings := DescriptionQuality(description, c.Path)
		res.Add(findings...)
		res.SetScore(domain.MetricDescriptionQuality, score)
		hits, checks := triggerCoverage(description)
		res.SetRatio(domain.MetricTriggerCoverage, hits, checks)
	}

	scoreErrorGuidance(&res, c)
	scoreExecutionReadiness(&res, c, p)
	scoreDocumentation(&res, c, p)
	return res
}

func isStringOrStringList(v any) bool {
	switch t := v.(type) {
	case string:
		return true
	case []any:
		for _, e := range t {
			if _, ok := e.(string); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}
