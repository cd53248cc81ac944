package validation

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/abdidvp/plugincheck/internal/domain"
)

var (
	markupRe      = regexp.MustCompile(`<[A-Za-z/!?][^<>]*>|[<>]`)
	credentialRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:api[_-]?key|secret|token|passw(?:or)?d|access[_-]?key)\w*["']?\s*[:=]\s*["']?([A-Za-z0-9_\-/+=.]{12,})`),
		regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
		regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{36,}\b`),
		regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{20,}\b`),
		regexp.MustCompile(`\bxox[baprs]-[A-Za-z0-9-]{10,}\b`),
		regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----`),
	}
	credentialKeyRe = regexp.MustCompile(`(?i)(api[_-]?key|secret|token|passw(?:or)?d|access[_-]?key)`)
	unquotedVarRe   = regexp.MustCompile(`(?:^|\s)\$\{?[A-Za-z_][A-Za-z0-9_]*\}?(?:\s|$)`)
	traversalRe     = regexp.MustCompile(`\$\{?\w+\}?[^\s"']*\.\./|\.\./[^\s"']*\$\{?\w+`)
	quotedSegRe     = regexp.MustCompile(`"(?:[^"\\]|\\.)*"|'[^']*'`)
)

// SecurityValidator runs the binary security checklist over metadata,
// configuration values, scripts and hook commands. The security sub-metric is
// the ratio of applicable checks that passed.
type SecurityValidator struct{}

func (SecurityValidator) Name() string { return "security" }

func (SecurityValidator) AppliesTo() []domain.ComponentType {
	return domain.ComponentTypes
}

func (v SecurityValidator) Validate(_ context.Context, c domain.Component, _ *domain.Plugin) domain.ValidationResult {
	res := domain.NewResult(v.Name(), c)
	var t tally

	t.check(checkMarkup(&res, c))
	t.check(checkCredentials(&res, c))

	shellSources := shellSourcesOf(c)
	if len(shellSources) > 0 {
		t.check(checkUnquotedVars(&res, shellSources))
		t.check(checkTraversal(&res, shellSources))
	}
	var scripts []domain.Script
	for _, s := range c.Scripts {
		if s.IsShell() {
			scripts = append(scripts, s)
		}
	}
	if len(scripts) > 0 {
		t.check(checkStrictPreamble(&res, scripts))
	}

	res.SetRatio(domain.MetricSecurity, t.passed, t.total)
	return res
}

// metadataFields lists the top-level string payload values in key order.
func metadataFields(c domain.Component) []string {
	keys := make([]string, 0, len(c.Payload))
	for k, v := range c.Payload {
		if _, ok := v.(string); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func checkMarkup(res *domain.ValidationResult, c domain.Component) bool {
	if c.Type == domain.TypeHook || c.Type == domain.TypeMCPConfig {
		return true
	}
	clean := true
	for _, key := range metadataFields(c) {
		value, _ := c.String(key)
		if c.Type == domain.TypeAgent {
			value = stripAgentTags(value)
		}
		if m := markupRe.FindString(value); m != "" {
			clean = false
			res.Add(domain.Finding{
				Severity:   domain.SeverityError,
				Category:   domain.CategorySecurity,
				Rule:       domain.RuleDisallowedMarkup,
				Message:    fmt.Sprintf("Field '%s' contains disallowed markup '%s'", key, m),
				Path:       c.Path,
				Suggestion: "Remove angle brackets and tags from frontmatter values",
			})
		}
	}
	return clean
}

func checkCredentials(res *domain.ValidationResult, c domain.Component) bool {
	type source struct {
		path    string
		content string
		lines   bool
	}
	var values []string
	collectStrings(c.Payload, "", &values)
	sources := []source{
		{c.Path, strings.Join(values, "\n"), false},
		{c.Path, c.Body, false},
	}
	for _, s := range c.Scripts {
		sources = append(sources, source{s.Path, s.Content, true})
	}

	clean := true
	for _, src := range sources {
		for i, line := range strings.Split(src.content, "\n") {
			if !looksLikeCredential(line) {
				continue
			}
			clean = false
			f := domain.Finding{
				Severity:   domain.SeverityCritical,
				Category:   domain.CategorySecurity,
				Rule:       domain.RuleHardcodedCredential,
				Message:    "Possible hardcoded credential",
				Path:       src.path,
				Suggestion: "Read secrets from the environment instead of committing them",
			}
			if src.lines {
				f.Line = i + 1
			}
			res.Add(f)
		}
	}
	return clean
}

func looksLikeCredential(line string) bool {
	for _, re := range credentialRes {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if len(m) > 1 && (strings.HasPrefix(m[1], "$") || strings.Contains(strings.ToLower(m[1]), "example")) {
			continue
		}
		return true
	}
	return false
}

// collectStrings flattens payload string values as "key=value" lines so that
// credential patterns keyed on the field name still match.
func collectStrings(v any, key string, out *[]string) {
	switch t := v.(type) {
	case string:
		if key != "" && credentialKeyRe.MatchString(key) {
			*out = append(*out, key+"="+t)
		} else {
			*out = append(*out, t)
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectStrings(t[k], k, out)
		}
	case []any:
		for _, e := range t {
			collectStrings(e, key, out)
		}
	}
}

type shellSource struct {
	path     string
	lines    []string
	numbered bool
}

func (s shellSource) line(i int) int {
	if s.numbered {
		return i + 1
	}
	return 0
}

func shellSourcesOf(c domain.Component) []shellSource {
	var out []shellSource
	for _, s := range c.Scripts {
		if s.IsShell() {
			out = append(out, shellSource{s.Path, strings.Split(s.Content, "\n"), true})
		}
	}
	if cmds := c.HookCommands(); len(cmds) > 0 {
		lines := make([]string, 0, len(cmds))
		for _, hc := range cmds {
			lines = append(lines, hc.Command)
		}
		out = append(out, shellSource{c.Path, lines, false})
	}
	return out
}

func checkUnquotedVars(res *domain.ValidationResult, sources []shellSource) bool {
	clean := true
	for _, src := range sources {
		for i, line := range src.lines {
			code := stripShellComment(line)
			if strings.Contains(code, "[[") {
				continue
			}
			code = quotedSegRe.ReplaceAllString(code, `""`)
			if !unquotedVarRe.MatchString(code) {
				continue
			}
			clean = false
			res.Add(domain.Finding{
				Severity:   domain.SeverityWarning,
				Category:   domain.CategorySecurity,
				Message:    "Unquoted variable expansion",
				Path:       src.path,
				Line:       src.line(i),
				Suggestion: `Quote expansions: "$VAR"`,
			})
			break
		}
	}
	return clean
}

func checkTraversal(res *domain.ValidationResult, sources []shellSource) bool {
	clean := true
	for _, src := range sources {
		for i, line := range src.lines {
			if !traversalRe.MatchString(stripShellComment(line)) {
				continue
			}
			clean = false
			res.Add(domain.Finding{
				Severity:   domain.SeverityError,
				Category:   domain.CategorySecurity,
				Message:    "Path traversal pattern in file path handling",
				Path:       src.path,
				Line:       src.line(i),
				Suggestion: "Resolve paths against ${CLAUDE_PLUGIN_ROOT} and reject '..' segments",
			})
		}
	}
	return clean
}

func checkStrictPreamble(res *domain.ValidationResult, scripts []domain.Script) bool {
	clean := true
	for _, s := range scripts {
		if errexitRe.MatchString(s.Content) {
			continue
		}
		clean = false
		res.Add(domain.Finding{
			Severity:   domain.SeverityWarning,
			Category:   domain.CategorySecurity,
			Message:    "Script does not enable strict failure mode",
			Path:       s.Path,
			Suggestion: "Add 'set -euo pipefail' after the shebang",
		})
	}
	return clean
}
