// Package linters wraps third-party CLI linters as domain.Validators.
package linters

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/abdidvp/plugincheck/internal/domain"
)

// tool is the shared invocation logic of every wrapper.
type tool struct {
	name   string
	runner domain.ToolRunner
	cfg    domain.ToolConfig
}

// run invokes the tool on one file. okExits lists the exit codes that mean
// "ran normally"; anything else becomes an ExternalToolError.
func (t tool) run(ctx context.Context, okExits []int, args ...string) (domain.ToolOutput, error) {
	out, err := t.runner.Run(ctx, t.cfg.Timeout, t.name, args...)
	if err != nil {
		return out, err
	}
	for _, code := range okExits {
		if out.ExitCode == code {
			return out, nil
		}
	}
	return out, &domain.ExternalToolError{Tool: t.name, ExitCode: out.ExitCode, Stderr: string(out.Stderr)}
}

// budget is the time n invocations may take before the runner kills them.
func (t tool) budget(n int) time.Duration {
	return time.Duration(n) * t.cfg.Timeout
}

// failure turns a tool error into a framework finding: Warning when the tool
// is optional, Error otherwise.
func (t tool) failure(path string, err error) domain.Finding {
	sev := domain.SeverityError
	if t.cfg.Optional {
		sev = domain.SeverityWarning
	}
	f := domain.FrameworkFinding(sev, path, err)
	var toolErr *domain.ExternalToolError
	if errors.As(err, &toolErr) && toolErr.Missing {
		f.Suggestion = fmt.Sprintf("Install %s or disable the %s validator", t.name, t.name)
	}
	return f
}

// missing reports whether err means the binary is absent; the wrapper then
// stops after one finding instead of repeating it per file.
func missing(err error) bool {
	var toolErr *domain.ExternalToolError
	return errors.As(err, &toolErr) && toolErr.Missing
}

func absPath(p *domain.Plugin, rel string) string {
	return filepath.Join(p.Root, filepath.FromSlash(rel))
}
