package validation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/abdidvp/plugincheck/internal/domain"
)

const mcpFilePath = ".mcp.json"

var mcpTransports = []string{"stdio", "sse", "http"}

// MCPValidator checks .mcp.json server declarations. LookPath resolves bare
// command names; when nil, bare commands are not checked.
type MCPValidator struct {
	LookPath func(file string) (string, error)
}

func (MCPValidator) Name() string { return "mcp" }

func (MCPValidator) AppliesTo() []domain.ComponentType {
	return []domain.ComponentType{domain.TypeMCPConfig}
}

func (v MCPValidator) Validate(_ context.Context, c domain.Component, p *domain.Plugin) domain.ValidationResult {
	res := domain.NewResult(v.Name(), c)
	if !checkParsed(&res, c) {
		return res
	}

	servers := mcpServers(c.Payload)
	if len(servers) == 0 {
		res.SetScore(domain.MetricRequiredFields, 0)
		res.Add(domain.Finding{
			Severity:   domain.SeverityError,
			Category:   domain.CategoryRequiredFields,
			Message:    "No MCP servers declared",
			Path:       c.Path,
			Suggestion: `Declare servers under "mcpServers"`,
		})
		return res
	}

	if c.Path == mcpFilePath {
		res.SetScore(domain.MetricFileOrganization, 100)
	} else {
		res.SetScore(domain.MetricFileOrganization, organizationScore(1))
		res.Add(domain.Finding{
			Severity: domain.SeverityWarning,
			Category: domain.CategoryFileOrganization,
			Message:  "MCP configuration should live at the plugin root as " + mcpFilePath,
			Path:     c.Path,
		})
	}

	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)

	reqOK, schemaOK, schemaTotal, readyOK, readyTotal := 0, 0, 0, 0, 0
	for _, name := range names {
		server, _ := servers[name].(map[string]any)
		command, _ := server["command"].(string)
		url, _ := server["url"].(string)

		if command != "" || url != "" {
			reqOK++
		} else {
			res.Add(domain.Finding{
				Severity:   domain.SeverityError,
				Category:   domain.CategoryRequiredFields,
				Message:    fmt.Sprintf("Server '%s' declares neither 'command' nor 'url'", name),
				Path:       c.Path,
				Suggestion: "Add a 'command' for stdio servers or a 'url' for remote servers",
			})
		}

		if raw, present := server["type"]; present {
			schemaTotal++
			if kind, _ := raw.(string); contains(mcpTransports, kind) {
				schemaOK++
			} else {
				res.Add(domain.Finding{
					Severity:   domain.SeverityError,
					Category:   domain.CategorySchema,
					Message:    fmt.Sprintf("Server '%s' has invalid type '%v'", name, raw),
					Path:       c.Path,
					Suggestion: "Use one of: " + strings.Join(mcpTransports, ", "),
				})
			}
		}
		if raw, present := server["args"]; present {
			schemaTotal++
			if list, isList := raw.([]any); isList && isStringOrStringList(list) {
				schemaOK++
			} else {
				res.Add(domain.Finding{
					Severity: domain.SeverityError,
					Category: domain.CategorySchema,
					Message:  fmt.Sprintf("Server '%s' args must be a list of strings", name),
					Path:     c.Path,
				})
			}
		}
		if raw, present := server["env"]; present {
			schemaTotal++
			if isStringMap(raw) {
				schemaOK++
			} else {
				res.Add(domain.Finding{
					Severity: domain.SeverityError,
					Category: domain.CategorySchema,
					Message:  fmt.Sprintf("Server '%s' env must map names to strings", name),
					Path:     c.Path,
				})
			}
		}

		if command == "" {
			continue
		}
		resolved, checked := v.resolveCommand(command, c, p)
		if !checked {
			continue
		}
		readyTotal++
		if resolved {
			readyOK++
			continue
		}
		severity := domain.SeverityWarning
		if isPluginLocal(command) {
			severity = domain.SeverityError
		}
		res.Add(domain.Finding{
			Severity:   severity,
			Category:   domain.CategoryExecution,
			Message:    fmt.Sprintf("Server '%s' command '%s' cannot be resolved", name, command),
			Path:       c.Path,
			Suggestion: "Ship the binary inside the plugin or document the prerequisite",
		})
	}

	res.SetRatio(domain.MetricRequiredFields, reqOK, len(names))
	res.SetRatio(domain.MetricSchemaCompliance, schemaOK, schemaTotal)
	res.SetRatio(domain.MetricExecutionReadiness, readyOK, readyTotal)
	return res
}

func (v MCPValidator) resolveCommand(command string, c domain.Component, p *domain.Plugin) (resolved, checked bool) {
	switch {
	case isPluginLocal(command):
		return p.HasFile(resolveRef(c.Path, command)), true
	case v.LookPath != nil:
		_, err := v.LookPath(command)
		return err == nil, true
	default:
		return false, false
	}
}

func isPluginLocal(command string) bool {
	return strings.HasPrefix(command, pluginRootVar) || strings.HasPrefix(command, "./")
}

// mcpServers accepts both {"mcpServers": {...}} and a bare server map.
func mcpServers(payload map[string]any) map[string]any {
	if servers, ok := payload["mcpServers"].(map[string]any); ok {
		return servers
	}
	out := map[string]any{}
	for k, v := range payload {
		if _, ok := v.(map[string]any); ok {
			out[k] = v
		}
	}
	return out
}

func isStringMap(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	for _, e := range m {
		if _, ok := e.(string); !ok {
			return false
		}
	}
	return true
}
