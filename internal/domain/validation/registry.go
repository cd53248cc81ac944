package validation

import (
	"github.com/abdidvp/plugincheck/internal/domain"
)

// Registry maps component types to the validators eligible to run on them. It
// is assembled once per run and never mutated afterwards.
type Registry struct {
	validators []domain.Validator
	byType     map[domain.ComponentType][]domain.Validator
}

// NewRegistry indexes validators by the component types they declare. Order of
// registration is preserved within each type.
func NewRegistry(validators ...domain.Validator) *Registry {
	r := &Registry{byType: make(map[domain.ComponentType][]domain.Validator)}
	for _, v := range validators {
		if v == nil {
			continue
		}
		r.validators = append(r.validators, v)
		for _, t := range v.AppliesTo() {
			r.byType[t] = append(r.byType[t], v)
		}
	}
	return r
}

// For returns the validators registered for t.
func (r *Registry) For(t domain.ComponentType) []domain.Validator {
	return r.byType[t]
}

// Validators returns every registered validator in registration order.
func (r *Registry) Validators() []domain.Validator {
	return r.validators
}

// Without returns a new registry that excludes the named validators.
func (r *Registry) Without(names ...string) *Registry {
	if len(names) == 0 {
		return r
	}
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}
	var kept []domain.Validator
	for _, v := range r.validators {
		if !skip[v.Name()] {
			kept = append(kept, v)
		}
	}
	return NewRegistry(kept...)
}

// Options wires the ports the built-in validators need.
type Options struct {
	Syntax   domain.SyntaxChecker
	LookPath func(file string) (string, error)
}

// Builtin returns the in-process validators in their canonical order.
func Builtin(opts Options) []domain.Validator {
	return []domain.Validator{
		ManifestValidator{},
		SkillValidator{},
		AgentValidator{},
		CommandValidator{},
		HookValidator{},
		MCPValidator{LookPath: opts.LookPath},
		ScriptValidator{Syntax: opts.Syntax},
		SecurityValidator{},
	}
}
