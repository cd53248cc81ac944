package validation

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/abdidvp/plugincheck/internal/domain"
)

var (
	homePathRe       = regexp.MustCompile(`/(?:Users|home)/[A-Za-z0-9._-]+/`)
	bashismRe        = regexp.MustCompile(`\[\[|^\s*function\s+\w+|^\s*source\s+|\$\{\w+//`)
	backtickRe       = regexp.MustCompile("`[^`]+`")
	evalRe           = regexp.MustCompile(`(?:^|[;&|]\s*)eval\s`)
	bareCdRe         = regexp.MustCompile(`^\s*cd\s+[^|&;]+$`)
	trapRe           = regexp.MustCompile(`(?m)^\s*trap\s`)
	failureCheckRe   = regexp.MustCompile(`\|\||\bif\s+!|\$\?`)
	explicitExitRe   = regexp.MustCompile(`(?m)\bexit\s+[1-9]`)
	errexitRe        = regexp.MustCompile(`(?m)^\s*set\s+(?:-[a-zA-Z]*e[a-zA-Z]*\b|-o\s+errexit)`)
	pythonTryRe      = regexp.MustCompile(`(?m)^\s*try:`)
	portableShebangs = []string{"#!/usr/bin/env ", "#!/bin/sh", "#!/bin/bash"}
)

// ScriptValidator checks attached scripts for syntax, portability, best
// practices and error handling. Shell syntax goes through the SyntaxChecker.
type ScriptValidator struct {
	Syntax domain.SyntaxChecker
}

func (ScriptValidator) Name() string { return "script" }

func (ScriptValidator) AppliesTo() []domain.ComponentType {
	return []domain.ComponentType{domain.TypeSkill, domain.TypeCommand, domain.TypeHook}
}

type tally struct{ passed, total int }

func (t *tally) check(ok bool) bool {
	t.total++
	if ok {
		t.passed++
	}
	return ok
}

func (v ScriptValidator) Validate(ctx context.Context, c domain.Component, _ *domain.Plugin) domain.ValidationResult {
	res := domain.NewResult(v.Name(), c)

	var syntax, portability, practices, errHandling tally
	for _, s := range c.Scripts {
		shell := s.IsShell()
		lines := strings.Split(s.Content, "\n")
		shebang := ""
		if len(lines) > 0 && strings.HasPrefix(lines[0], "#!") {
			shebang = strings.TrimSpace(lines[0])
		}

		if shell && v.Syntax != nil {
			report, err := v.Syntax.CheckSyntax(ctx, []byte(s.Content))
			if err != nil {
				res.Add(domain.FrameworkFinding(domain.SeverityWarning, s.Path, fmt.Errorf("syntax check: %w", err)))
			} else if !syntax.check(report.Valid) {
				res.Add(domain.Finding{
					Severity:   domain.SeverityError,
					Category:   domain.CategorySyntax,
					Message:    "Syntax error: " + report.Message,
					Path:       s.Path,
					Line:       report.Line,
					Suggestion: "Run 'bash -n' on the script to locate the error",
				})
			}
		}

		v.checkPortability(&res, s, shell, shebang, &portability)
		if shell {
			checkShellPractices(&res, s, lines, &practices)
			checkShellErrorHandling(&res, s, &errHandling)
		} else if path.Ext(s.Path) == ".py" {
			if !errHandling.check(pythonTryRe.MatchString(s.Content)) {
				res.Add(domain.Finding{
					Severity: domain.SeverityInfo,
					Category: domain.MetricScriptErrorHandling,
					Message:  "Python script has no exception handling",
					Path:     s.Path,
				})
			}
		}
	}

	res.SetRatio(domain.MetricScriptSyntax, syntax.passed, syntax.total)
	res.SetRatio(domain.MetricPortability, portability.passed, portability.total)
	res.SetRatio(domain.MetricBestPractices, practices.passed, practices.total)
	res.SetRatio(domain.MetricScriptErrorHandling, errHandling.passed, errHandling.total)
	return res
}

func (ScriptValidator) checkPortability(res *domain.ValidationResult, s domain.Script, shell bool, shebang string, t *tally) {
	warn := func(msg, suggestion string) {
		res.Add(domain.Finding{
			Severity:   domain.SeverityWarning,
			Category:   domain.CategoryPortability,
			Message:    msg,
			Path:       s.Path,
			Suggestion: suggestion,
		})
	}

	if !t.check(shebang != "") {
		warn("Script has no shebang line", "Start the script with '#!/usr/bin/env bash'")
	} else if !t.check(hasAnyPrefix(shebang, portableShebangs)) {
		warn(fmt.Sprintf("Non-portable shebang '%s'", shebang), "Use '#!/usr/bin/env <interpreter>'")
	}
	if !t.check(!homePathRe.MatchString(s.Content)) {
		warn("Script hardcodes a user home directory", "Use $HOME or ${CLAUDE_PLUGIN_ROOT}")
	}
	if !t.check(!strings.Contains(s.Content, "\r\n")) {
		warn("Script uses CRLF line endings", "Convert line endings to LF")
	}
	if shell && strings.HasPrefix(shebang, "#!/bin/sh") {
		for i, line := range strings.Split(s.Content, "\n") {
			if bashismRe.MatchString(line) {
				t.check(false)
				res.Add(domain.Finding{
					Severity:   domain.SeverityWarning,
					Category:   domain.CategoryPortability,
					Message:    "Bash-only syntax in a /bin/sh script",
					Path:       s.Path,
					Line:       i + 1,
					Suggestion: "Switch the shebang to bash or use POSIX syntax",
				})
				return
			}
		}
		t.check(true)
	}
}

func checkShellPractices(res *domain.ValidationResult, s domain.Script, lines []string, t *tally) {
	errexit := errexitRe.MatchString(s.Content)
	backtick, eval, bareCd := 0, 0, 0
	for i, line := range lines {
		code := stripShellComment(line)
		if backtick == 0 && backtickRe.MatchString(code) {
			backtick = i + 1
		}
		if eval == 0 && evalRe.MatchString(code) {
			eval = i + 1
		}
		if bareCd == 0 && !errexit && bareCdRe.MatchString(code) {
			bareCd = i + 1
		}
	}

	for _, chk := range []struct {
		line       int
		msg        string
		suggestion string
	}{
		{backtick, "Legacy backtick command substitution", "Use $(...) instead of backticks"},
		{eval, "Use of eval", "Avoid eval; build commands with arrays"},
		{bareCd, "cd without a failure guard", "Use 'cd dir || exit 1'"},
	} {
		if t.check(chk.line == 0) {
			continue
		}
		res.Add(domain.Finding{
			Severity:   domain.SeverityWarning,
			Category:   domain.CategoryBestPractice,
			Message:    chk.msg,
			Path:       s.Path,
			Line:       chk.line,
			Suggestion: chk.suggestion,
		})
	}
}

func checkShellErrorHandling(res *domain.ValidationResult, s domain.Script, t *tally) {
	info := func(msg, suggestion string) {
		res.Add(domain.Finding{
			Severity:   domain.SeverityInfo,
			Category:   domain.MetricScriptErrorHandling,
			Message:    msg,
			Path:       s.Path,
			Suggestion: suggestion,
		})
	}
	if !t.check(trapRe.MatchString(s.Content)) {
		info("No trap handler for cleanup on failure", "Add 'trap cleanup EXIT'")
	}
	if !t.check(failureCheckRe.MatchString(s.Content)) {
		info("Command failures are never checked", "Guard critical commands with '|| exit 1'")
	}
	if !t.check(explicitExitRe.MatchString(s.Content)) {
		info("Script never exits with a failure status", "Exit non-zero on failure")
	}
}

func stripShellComment(line string) string {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "#") {
		return ""
	}
	if i := strings.Index(line, " #"); i >= 0 {
		return line[:i]
	}
	return line
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
