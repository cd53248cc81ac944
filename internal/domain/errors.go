package domain

import (
	"errors"
	"fmt"
)

// Run-level failure causes, matchable with errors.Is on a *RunError.
var (
	ErrRunCancelled     = errors.New("run cancelled")
	ErrFailureThreshold = errors.New("framework failure threshold exceeded")
)

// PlanningError means validators could not be enumerated for a component type.
// It is fatal to the run.
type PlanningError struct {
	ComponentType ComponentType
	Component     string
	Reason        string
}

func (e *PlanningError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("planning %s %q: %s", e.ComponentType, e.Component, e.Reason)
	}
	return fmt.Sprintf("planning %s: %s", e.ComponentType, e.Reason)
}

// ValidatorExecutionError means a validator panicked or timed out on one unit.
// The orchestrator recovers it into a critical framework finding.
type ValidatorExecutionError struct {
	Validator string
	Component string
	Timeout   bool
	Err       error
}

func (e *ValidatorExecutionError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("validator %s timed out on %s: %v", e.Validator, e.Component, e.Err)
	}
	return fmt.Sprintf("validator %s failed on %s: %v", e.Validator, e.Component, e.Err)
}

func (e *ValidatorExecutionError) Unwrap() error { return e.Err }

// ExternalToolError means a wrapped third-party tool was missing or exited unexpectedly.
type ExternalToolError struct {
	Tool     string
	Missing  bool
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExternalToolError) Error() string {
	switch {
	case e.Missing:
		return fmt.Sprintf("external tool %s not found", e.Tool)
	case e.Err != nil:
		return fmt.Sprintf("external tool %s failed: %v", e.Tool, e.Err)
	default:
		return fmt.Sprintf("external tool %s exited with code %d: %s", e.Tool, e.ExitCode, e.Stderr)
	}
}

func (e *ExternalToolError) Unwrap() error { return e.Err }

// ScoringError means a malformed ValidationResult reached a scorer. It is fatal
// because clamping would hide a contract violation.
type ScoringError struct {
	Dimension Dimension
	Validator string
	Component string
	SubMetric string
	Value     float64
	Reason    string
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring %s: %s from validator %s on %s: %s (value %.2f)",
		e.Dimension, e.SubMetric, e.Validator, e.Component, e.Reason, e.Value)
}

// RunError aborts a whole evaluation run.
type RunError struct {
	Plugin string
	Failed int
	Total  int
	Cause  error
}

func (e *RunError) Error() string {
	if errors.Is(e.Cause, ErrFailureThreshold) {
		return fmt.Sprintf("run aborted for %s: %d of %d work units failed", e.Plugin, e.Failed, e.Total)
	}
	return fmt.Sprintf("run aborted for %s: %v", e.Plugin, e.Cause)
}

func (e *RunError) Unwrap() error { return e.Cause }
