package validation

import (
	"context"
	"path"
	"regexp"
	"strings"

	"github.com/abdidvp/plugincheck/internal/domain"
)

var argumentRe = regexp.MustCompile(`\$ARGUMENTS\b|\$[1-9]\b`)

// CommandValidator checks commands/**/*.md slash commands. The command name is
// the file name without extension.
type CommandValidator struct{}

func (CommandValidator) Name() string { return "command" }

func (CommandValidator) AppliesTo() []domain.ComponentType {
	return []domain.ComponentType{domain.TypeCommand}
}

func (v CommandValidator) Validate(_ context.Context, c domain.Component, p *domain.Plugin) domain.ValidationResult {
	res := domain.NewResult(v.Name(), c)
	if !checkParsed(&res, c) {
		return res
	}

	required, passed := checkRequired(c, []string{"description"}, "command frontmatter")
	res.Add(required...)
	res.SetRatio(domain.MetricRequiredFields, passed, 1)

	naming, ok, total := checkNaming(c.Name, c.Path)
	res.Add(naming...)
	res.SetRatio(domain.MetricNaming, ok, total)

	violations := 0
	if !strings.HasPrefix(c.Path, "commands/") || path.Ext(c.Path) != ".md" {
		violations++
		res.Add(domain.Finding{
			Severity:   domain.SeverityWarning,
			Category:   domain.CategoryFileOrganization,
			Message:    "Commands belong in commands/**/*.md",
			Path:       c.Path,
			Suggestion: "Move the file under commands/",
		})
	}
	res.SetScore(domain.MetricFileOrganization, organizationScore(violations))

	usesArgs := argumentRe.MatchString(c.Body)
	hint, hasHint := c.Payload["argument-hint"]

	schemaOK, schemaTotal := 0, 0
	if raw, present := c.Payload["allowed-tools"]; present {
		schemaTotal++
		if isStringOrStringList(raw) {
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
	if hasHint {
		schemaTotal++
		if _, isString := hint.(string); isString {
			schemaOK++
		} else {
			res.Add(domain.Finding{
				Severity: domain.SeverityError,
				Category: domain.CategorySchema,
				Message:  "'argument-hint' must be a string",
				Path:     c.Path,
			})
		}
	}
	res.SetRatio(domain.MetricSchemaCompliance, schemaOK, schemaTotal)

	description := stringField(c, "description")
	triggerOK, triggerTotal := 0, 1
	if description != "" {
		score, findings := DescriptionQuality(description, c.Path)
		res.Add(findings...)
		res.SetScore(domain.MetricDescriptionQuality, score)
		triggerOK++
	}
	if usesArgs {
		triggerTotal++
		if hasHint {
			triggerOK++
		} else {
			res.Add(domain.Finding{
				Severity:   domain.SeverityWarning,
				Category:   domain.CategoryTriggers,
				Message:    "Command uses arguments but declares no 'argument-hint'",
				Path:       c.Path,
				Suggestion: "Add 'argument-hint' to the frontmatter, e.g. '[file] [options]'",
			})
		}
	}
	res.SetRatio(domain.MetricTriggerCoverage, triggerOK, triggerTotal)

	scoreErrorGuidance(&res, c)
	scoreExecutionReadiness(&res, c, p)
	scoreDocumentation(&res, c, p)
	return res
}
