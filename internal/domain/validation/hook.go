package validation

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/abdidvp/plugincheck/internal/domain"
)

const (
	hooksFilePath     = "hooks/hooks.json"
	maxHookTimeoutSec = 600
)

var hookEvents = []string{
	"PreToolUse", "PostToolUse", "UserPromptSubmit", "Notification", "Stop",
	"SubagentStop", "SessionStart", "SessionEnd", "PreCompact",
}

var pluginRootRefRe = regexp.MustCompile(`\$\{CLAUDE_PLUGIN_ROOT\}/[^\s"';|&)]+`)

// HookValidator checks hooks/hooks.json: known events, entry shape, timeouts
// and that every ${CLAUDE_PLUGIN_ROOT} reference resolves.
type HookValidator struct{}

func (HookValidator) Name() string { return "hook" }

func (HookValidator) AppliesTo() []domain.ComponentType {
	return []domain.ComponentType{domain.TypeHook}
}

func (v HookValidator) Validate(_ context.Context, c domain.Component, p *domain.Plugin) domain.ValidationResult {
	res := domain.NewResult(v.Name(), c)
	if !checkParsed(&res, c) {
		return res
	}

	events, ok := c.Payload["hooks"].(map[string]any)
	if ok {
		res.SetScore(domain.MetricRequiredFields, 100)
	} else {
		res.SetScore(domain.MetricRequiredFields, 0)
		res.Add(domain.Finding{
			Severity:   domain.SeverityError,
			Category:   domain.CategoryRequiredFields,
			Message:    "Missing required 'hooks' object",
			Path:       c.Path,
			Suggestion: `Wrap event handlers in {"hooks": {"PreToolUse": [...]}}`,
		})
	}

	if c.Path == hooksFilePath {
		res.SetScore(domain.MetricFileOrganization, 100)
	} else {
		res.SetScore(domain.MetricFileOrganization, organizationScore(1))
		res.Add(domain.Finding{
			Severity:   domain.SeverityWarning,
			Category:   domain.CategoryFileOrganization,
			Message:    "Hook configuration should live at " + hooksFilePath,
			Path:       c.Path,
			Suggestion: "Move the file to " + hooksFilePath,
		})
	}

	schemaOK, schemaTotal := checkHookSchema(&res, c, events)
	res.SetRatio(domain.MetricSchemaCompliance, schemaOK, schemaTotal)

	commands := c.HookCommands()
	withTimeout := 0
	for _, hc := range commands {
		if hc.Timeout > 0 {
			withTimeout++
			continue
		}
		res.Add(domain.Finding{
			Severity:   domain.SeverityInfo,
			Category:   domain.CategoryErrorHandling,
			Message:    fmt.Sprintf("%s hook '%s' declares no timeout", hc.Event, truncate(hc.Command, 60)),
			Path:       c.Path,
			Suggestion: "Set an explicit 'timeout' so a hung hook cannot stall the session",
		})
	}
	res.SetRatio(domain.MetricErrorHandling, withTimeout, len(commands))

	readyOK, readyTotal := 0, 0
	for _, hc := range commands {
		for _, ref := range pluginRootRefRe.FindAllString(hc.Command, -1) {
			readyTotal++
			if p.HasFile(resolveRef(c.Path, ref)) {
				readyOK++
				continue
			}
			res.Add(domain.Finding{
				Severity:   domain.SeverityError,
				Category:   domain.CategoryExecution,
				Message:    fmt.Sprintf("%s hook references missing file '%s'", hc.Event, ref),
				Path:       c.Path,
				Suggestion: "Add the script or fix the path",
			})
		}
	}
	for _, s := range c.Scripts {
		readyTotal++
		if s.Executable {
			readyOK++
			continue
		}
		res.Add(domain.Finding{
			Severity:   domain.SeverityWarning,
			Category:   domain.CategoryExecution,
			Message:    "Hook script is not executable",
			Path:       s.Path,
			Suggestion: fmt.Sprintf("chmod +x %s", s.Path),
		})
	}
	res.SetRatio(domain.MetricExecutionReadiness, readyOK, readyTotal)
	return res
}

func checkHookSchema(res *domain.ValidationResult, c domain.Component, events map[string]any) (passed, total int) {
	names := make([]string, 0, len(events))
	for name := range events {
		names = append(names, name)
	}
	sort.Strings(names)

	fail := func(msg, suggestion string) {
		res.Add(domain.Finding{
			Severity:   domain.SeverityError,
			Category:   domain.CategorySchema,
			Message:    msg,
			Path:       c.Path,
			Suggestion: suggestion,
		})
	}

	for _, event := range names {
		total++
		if contains(hookEvents, event) {
			passed++
		} else {
			fail(fmt.Sprintf("Unknown hook event '%s'", event), "Use one of: "+strings.Join(hookEvents, ", "))
		}

		groups, ok := events[event].([]any)
		total++
		if !ok {
			fail(fmt.Sprintf("Event '%s' must map to a list of matcher groups", event), "")
			continue
		}
		passed++

		for _, g := range groups {
			group, _ := g.(map[string]any)
			entries, _ := group["hooks"].([]any)
			for _, e := range entries {
				entry, _ := e.(map[string]any)
				kind, _ := entry["type"].(string)

				total++
				switch kind {
				case "command":
					if cmd, _ := entry["command"].(string); strings.TrimSpace(cmd) != "" {
						passed++
					} else {
						fail(fmt.Sprintf("%s command hook has an empty 'command'", event), "")
					}
				case "prompt":
					if prompt, _ := entry["prompt"].(string); strings.TrimSpace(prompt) != "" {
						passed++
					} else {
						fail(fmt.Sprintf("%s prompt hook has an empty 'prompt'", event), "")
					}
				default:
					fail(fmt.Sprintf("%s hook has invalid type '%s'", event, kind), "Use 'command' or 'prompt'")
				}

				if raw, present := entry["timeout"]; present {
					total++
					t, isNum := raw.(float64)
					if isNum && t >= 1 && t <= maxHookTimeoutSec {
						passed++
					} else {
						fail(fmt.Sprintf("%s hook timeout %v out of range", event, raw),
							fmt.Sprintf("Use a timeout between 1 and %d seconds", maxHookTimeoutSec))
					}
				}
			}
		}
	}
	return passed, total
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
