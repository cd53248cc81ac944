package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/abdidvp/plugincheck/internal/domain"
)

var manifestPathFields = []string{"commands", "agents", "skills", "hooks", "mcpServers"}

// ManifestValidator checks .claude-plugin/plugin.json and the README that
// documents the plugin as a whole.
type ManifestValidator struct{}

func (ManifestValidator) Name() string { return "manifest" }

func (ManifestValidator) AppliesTo() []domain.ComponentType {
	return []domain.ComponentType{domain.TypeManifest}
}

func (v ManifestValidator) Validate(_ context.Context, c domain.Component, p *domain.Plugin) domain.ValidationResult {
	res := domain.NewResult(v.Name(), c)
	if !c.Parsed() {
		res.SetScore(domain.MetricParseValidity, 0)
		res.Add(domain.Finding{
			Severity:   domain.SeverityCritical,
			Category:   domain.CategoryParse,
			Rule:       domain.RuleManifestUnparseable,
			Message:    "Plugin manifest is missing or unparseable: " + c.ParseError,
			Path:       c.Path,
			Suggestion: "Provide a valid JSON manifest at " + domain.ManifestPath,
		})
		return res
	}
	res.SetScore(domain.MetricParseValidity, 100)

	name := stringField(c, "name")
	description := stringField(c, "description")
	version := stringField(c, "version")

	reqOK := 0
	if name != "" {
		reqOK++
	} else {
		res.Add(domain.Finding{
			Severity:   domain.SeverityError,
			Category:   domain.CategoryRequiredFields,
			Message:    "Missing required field: 'name'",
			Path:       c.Path,
			Suggestion: "Add 'name' field to plugin.json",
		})
	}
	for _, field := range []string{"version", "description"} {
		if stringField(c, field) != "" {
			reqOK++
			continue
		}
		res.Add(domain.Finding{
			Severity:   domain.SeverityWarning,
			Category:   domain.CategoryRequiredFields,
			Message:    fmt.Sprintf("Missing recommended field: '%s'", field),
			Path:       c.Path,
			Suggestion: fmt.Sprintf("Add '%s' field to plugin.json", field),
		})
	}
	res.SetRatio(domain.MetricRequiredFields, reqOK, 3)

	if name != "" {
		naming, ok, total := checkNaming(name, c.Path)
		res.Add(naming...)
		res.SetRatio(domain.MetricNaming, ok, total)
	}

	violations := 0
	if c.Path != domain.ManifestPath {
		violations++
		res.Add(domain.Finding{
			Severity: domain.SeverityWarning,
			Category: domain.CategoryFileOrganization,
			Message:  "Manifest should live at " + domain.ManifestPath,
			Path:     c.Path,
		})
	}
	if !p.HasFile("README.md") {
		violations++
		res.Add(domain.Finding{
			Severity:   domain.SeverityWarning,
			Category:   domain.CategoryFileOrganization,
			Message:    "Plugin has no README.md",
			Path:       "README.md",
			Suggestion: "Add a README describing installation and usage",
		})
	}
	res.SetScore(domain.MetricFileOrganization, organizationScore(violations))

	schemaOK, schemaTotal := checkManifestSchema(&res, c, version, description)
	res.SetRatio(domain.MetricSchemaCompliance, schemaOK, schemaTotal)

	if description != "" {
		score, findings := DescriptionQuality(description, c.Path)
		res.Add(findings...)
		res.SetScore(domain.MetricDescriptionQuality, score)
	}

	readyOK, readyTotal := 0, 0
	for _, field := range manifestPathFields {
		for _, ref := range stringList(c.Payload[field]) {
			readyTotal++
			if hasPath(p, resolveRef("", ref)) {
				readyOK++
				continue
			}
			res.Add(domain.Finding{
				Severity:   domain.SeverityError,
				Category:   domain.CategoryExecution,
				Message:    fmt.Sprintf("Manifest '%s' path '%s' does not exist", field, ref),
				Path:       c.Path,
				Suggestion: "Fix the path or remove the override",
			})
		}
	}
	res.SetRatio(domain.MetricExecutionReadiness, readyOK, readyTotal)

	scoreDocumentation(&res, c, p)
	return res
}

func checkManifestSchema(res *domain.ValidationResult, c domain.Component, version, description string) (passed, total int) {
	fail := func(msg, suggestion string) {
		res.Add(domain.Finding{
			Severity:   domain.SeverityError,
			Category:   domain.CategorySchema,
			Message:    msg,
			Path:       c.Path,
			Suggestion: suggestion,
		})
	}

	if version != "" {
		total++
		if validSemver(version) {
			passed++
		} else {
			fail(fmt.Sprintf("Version '%s' is not a valid semantic version", version), "Use MAJOR.MINOR.PATCH, e.g. 1.0.0")
		}
	}
	if description != "" {
		total++
		if len(description) <= maxDescriptionLength {
			passed++
		} else {
			fail(fmt.Sprintf("Description too long (%d characters, max %d)", len(description), maxDescriptionLength), "")
		}
	}
	if raw, present := c.Payload["author"]; present {
		total++
		switch a := raw.(type) {
		case string:
			passed++
		case map[string]any:
			if n, _ := a["name"].(string); n != "" {
				passed++
			} else {
				fail("'author' object must include 'name'", "")
			}
		default:
			fail("'author' must be a string or an object", "")
		}
	}
	if raw, present := c.Payload["keywords"]; present {
		total++
		if list, ok := raw.([]any); ok && isStringOrStringList(list) {
			passed++
		} else {
			fail("'keywords' must be a list of strings", "")
		}
	}
	for _, key := range []string{"homepage", "repository"} {
		raw, present := c.Payload[key]
		if !present {
			continue
		}
		total++
		if s, _ := raw.(string); strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://") {
			passed++
		} else {
			fail(fmt.Sprintf("'%s' must be an http(s) URL", key), "")
		}
	}
	return passed, total
}

func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		var out []string
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// hasPath reports whether rel names a discovered file or a directory that
// contains one.
func hasPath(p *domain.Plugin, rel string) bool {
	if p.HasFile(rel) {
		return true
	}
	prefix := strings.TrimSuffix(rel, "/") + "/"
	for _, f := range p.Files {
		if strings.HasPrefix(f, prefix) {
			return true
		}
	}
	return false
}
