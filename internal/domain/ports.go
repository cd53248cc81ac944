package domain

import (
	"context"
	"time"
)

// Validator inspects one component with read-only access to the whole plugin.
// Implementations never return errors: malformed input is reported as findings.
// Only validators that shell out are expected to block, and they must honour ctx.
type Validator interface {
	Name() string
	AppliesTo() []ComponentType
	Validate(ctx context.Context, c Component, p *Plugin) ValidationResult
}

// TimeBudgeter is implemented by validators that bound their own work, such
// as external-tool wrappers with per-invocation timeouts. The orchestrator
// gives such a unit the larger of its budget and the configured unit timeout.
type TimeBudgeter interface {
	TimeBudget(c Component) time.Duration
}

// PluginDiscoverer turns a directory into a fully parsed Plugin.
type PluginDiscoverer interface {
	Discover(root string) (*Plugin, error)
}

// PluginLocator finds plugin directories below a cache root.
type PluginLocator interface {
	Locate(root, nameFilter string) ([]PluginRef, error)
}

// PluginRef points at one discovered plugin version on disk.
type PluginRef struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Path    string `json:"path"`
}

// ConfigLoader reads the engine configuration for a plugin root.
type ConfigLoader interface {
	Load(root string) (EngineConfig, error)
}

// ResultCache looks up validation results by (validator, path, mtime).
// Implementations must be safe for concurrent use.
type ResultCache interface {
	Get(key CacheKey) (ValidationResult, bool)
	Put(key CacheKey, result ValidationResult)
}

// ToolRunner invokes an external CLI tool within a timeout.
type ToolRunner interface {
	LookPath(tool string) (string, error)
	Run(ctx context.Context, timeout time.Duration, tool string, args ...string) (ToolOutput, error)
}

// ToolOutput is the raw outcome of an external tool invocation.
type ToolOutput struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// SyntaxChecker parses shell source and reports the first syntax error.
type SyntaxChecker interface {
	CheckSyntax(ctx context.Context, source []byte) (SyntaxReport, error)
}

// SyntaxReport describes the outcome of a syntax check.
type SyntaxReport struct {
	Valid   bool
	Line    int
	Message string
}

// ProgressReporter receives orchestrator progress. Calls may come from any worker.
type ProgressReporter interface {
	Start(total int)
	Advance(label string)
	Finish()
}

// UserTestSource loads results from the external user-test subsystem.
type UserTestSource interface {
	Load(path string) (*UserTestReport, error)
}

// GitInfo provides repository metadata for reports.
type GitInfo interface {
	IsGitRepo(path string) bool
	CommitHash(path string) (string, error)
}

// ScoreHistory persists one entry per scored run of a plugin.
type ScoreHistory interface {
	Save(pluginRoot string, entry ScoreEntry) error
	Load(pluginRoot string) ([]ScoreEntry, error)
}
