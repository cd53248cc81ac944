package linters

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abdidvp/plugincheck/internal/domain"
)

// ShellcheckValidator runs shellcheck over every shell script attached to a
// component and scores best practices by the share of clean scripts.
type ShellcheckValidator struct {
	tool
}

func NewShellcheck(runner domain.ToolRunner, cfg domain.ToolConfig) *ShellcheckValidator {
	return &ShellcheckValidator{tool{name: "shellcheck", runner: runner, cfg: cfg}}
}

func (v *ShellcheckValidator) Name() string { return "shellcheck" }

func (v *ShellcheckValidator) AppliesTo() []domain.ComponentType {
	return []domain.ComponentType{domain.TypeSkill, domain.TypeCommand, domain.TypeHook}
}

// TimeBudget allows one full tool timeout per shell script.
func (v *ShellcheckValidator) TimeBudget(c domain.Component) time.Duration {
	n := 0
	for _, s := range c.Scripts {
		if s.IsShell() {
			n++
		}
	}
	return v.budget(n)
}

type shellcheckReport struct {
	Comments []shellcheckComment `json:"comments"`
}

type shellcheckComment struct {
	Line    int    `json:"line"`
	Level   string `json:"level"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Fix     *struct {
		Replacements []any `json:"replacements"`
	} `json:"fix"`
}

func (v *ShellcheckValidator) Validate(ctx context.Context, c domain.Component, p *domain.Plugin) domain.ValidationResult {
	res := domain.NewResult(v.Name(), c)

	clean, total := 0, 0
	for _, s := range c.Scripts {
		if !s.IsShell() {
			continue
		}
		// 0: clean, 1: comments found.
		out, err := v.run(ctx, []int{0, 1}, "--format=json1", absPath(p, s.Path))
		if err != nil {
			res.Add(v.failure(s.Path, err))
			if missing(err) {
				return res
			}
			continue
		}

		var report shellcheckReport
		if err := json.Unmarshal(out.Stdout, &report); err != nil {
			res.Add(v.failure(s.Path, fmt.Errorf("decoding shellcheck output: %w", err)))
			continue
		}

		total++
		issues := 0
		for _, cm := range report.Comments {
			sev := shellcheckSeverity(cm.Level)
			if sev.Rank() <= domain.SeverityWarning.Rank() {
				issues++
			}
			f := domain.Finding{
				Severity: sev,
				Category: domain.CategoryLint,
				Rule:     fmt.Sprintf("SC%d", cm.Code),
				Message:  cm.Message,
				Path:     s.Path,
				Line:     cm.Line,
			}
			if cm.Fix != nil {
				f.Suggestion = "shellcheck can apply this fix automatically (shellcheck -f diff)"
			}
			res.Add(f)
		}
		if issues == 0 {
			clean++
		}
	}
	res.SetRatio(domain.MetricBestPractices, clean, total)
	return res
}

func shellcheckSeverity(level string) domain.Severity {
	switch level {
	case "error":
		return domain.SeverityError
	case "warning":
		return domain.SeverityWarning
	default:
		return domain.SeverityInfo
	}
}
