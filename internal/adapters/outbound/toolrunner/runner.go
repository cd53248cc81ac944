package toolrunner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/abdidvp/plugincheck/internal/domain"
)

// ExecRunner implements domain.ToolRunner with os/exec. A non-zero exit is
// reported through ToolOutput.ExitCode, not as an error; linters exit 1 when
// they find something.
type ExecRunner struct {
	// Paths maps a tool name to an explicit binary, overriding PATH lookup.
	Paths map[string]string
}

func New(paths map[string]string) *ExecRunner {
	return &ExecRunner{Paths: paths}
}

func (r *ExecRunner) LookPath(tool string) (string, error) {
	if p, ok := r.Paths[tool]; ok && p != "" {
		return exec.LookPath(p)
	}
	return exec.LookPath(tool)
}

func (r *ExecRunner) Run(ctx context.Context, timeout time.Duration, tool string, args ...string) (domain.ToolOutput, error) {
	bin, err := r.LookPath(tool)
	if err != nil {
		return domain.ToolOutput{}, &domain.ExternalToolError{Tool: tool, Missing: true, Err: err}
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	out := domain.ToolOutput{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if runCtx.Err() != nil {
		return out, &domain.ExternalToolError{Tool: tool, Stderr: stderr.String(), Err: fmt.Errorf("timed out after %s: %w", timeout, runCtx.Err())}
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return out, nil
	case errors.As(err, &exitErr):
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	default:
		return out, &domain.ExternalToolError{Tool: tool, Stderr: stderr.String(), Err: err}
	}
}
