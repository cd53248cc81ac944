package linters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abdidvp/plugincheck/internal/domain"
)

// MarkdownlintValidator runs markdownlint-cli over markdown components.
// Style issues are advisory: they never invalidate a result.
type MarkdownlintValidator struct {
	tool
}

func NewMarkdownlint(runner domain.ToolRunner, cfg domain.ToolConfig) *MarkdownlintValidator {
	return &MarkdownlintValidator{tool{name: "markdownlint", runner: runner, cfg: cfg}}
}

func (v *MarkdownlintValidator) Name() string { return "markdownlint" }

func (v *MarkdownlintValidator) AppliesTo() []domain.ComponentType {
	return []domain.ComponentType{domain.TypeSkill, domain.TypeAgent, domain.TypeCommand}
}

func (v *MarkdownlintValidator) TimeBudget(domain.Component) time.Duration {
	return v.budget(1)
}

type markdownlintIssue struct {
	LineNumber      int      `json:"lineNumber"`
	RuleNames       []string `json:"ruleNames"`
	RuleDescription string   `json:"ruleDescription"`
	ErrorDetail     string   `json:"errorDetail"`
}

func (v *MarkdownlintValidator) Validate(ctx context.Context, c domain.Component, p *domain.Plugin) domain.ValidationResult {
	res := domain.NewResult(v.Name(), c)
	if !c.Parsed() {
		return res
	}

	// 0: clean, 1: issues found. The JSON report goes to stderr.
	out, err := v.run(ctx, []int{0, 1}, "--json", absPath(p, c.Path))
	if err != nil {
		res.Add(v.failure(c.Path, err))
		return res
	}
	if out.ExitCode == 0 {
		return res
	}

	var issues []markdownlintIssue
	if err := json.Unmarshal(out.Stderr, &issues); err != nil {
		res.Add(v.failure(c.Path, fmt.Errorf("decoding markdownlint output: %w", err)))
		return res
	}
	for _, is := range issues {
		msg := is.RuleDescription
		if is.ErrorDetail != "" {
			msg += " [" + is.ErrorDetail + "]"
		}
		res.Add(domain.Finding{
			Severity: domain.SeverityInfo,
			Category: domain.CategoryLint,
			Rule:     strings.Join(is.RuleNames, "/"),
			Message:  msg,
			Path:     c.Path,
			Line:     is.LineNumber,
		})
	}
	return res
}
