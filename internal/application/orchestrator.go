package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/abdidvp/plugincheck/internal/domain"
	"github.com/abdidvp/plugincheck/internal/domain/validation"
)

// workUnit is one (validator, component) pair.
type workUnit struct {
	validator domain.Validator
	component domain.Component
}

func (u workUnit) label() string {
	return u.validator.Name() + " " + u.component.Key()
}

// Orchestrator runs every applicable validator over a plugin on a bounded
// worker pool. A crashing or hanging validator costs one synthesized result,
// never the run, unless too many units fail.
type Orchestrator struct {
	registry *validation.Registry
	cfg      domain.EngineConfig
	cache    domain.ResultCache
	progress domain.ProgressReporter
	logger   zerolog.Logger
}

// OrchestratorOption configures optional collaborators.
type OrchestratorOption func(*Orchestrator)

// WithCache enables result lookup by domain.CacheKey.
func WithCache(c domain.ResultCache) OrchestratorOption {
	return func(o *Orchestrator) { o.cache = c }
}

// WithProgress reports each finished unit.
func WithProgress(p domain.ProgressReporter) OrchestratorOption {
	return func(o *Orchestrator) { o.progress = p }
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l zerolog.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator builds an orchestrator over registry. Validators listed in
// cfg.Disabled are dropped up front.
func NewOrchestrator(registry *validation.Registry, cfg domain.EngineConfig, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		registry: registry.Without(cfg.Disabled...),
		cfg:      cfg,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if cfg.NoCache {
		o.cache = nil
	}
	return o
}

// plan enumerates work units in canonical component order, then registry order.
func (o *Orchestrator) plan(p *domain.Plugin) ([]workUnit, error) {
	for t, components := range p.Components {
		if !domain.IsKnownComponentType(t) {
			name := ""
			if len(components) > 0 {
				name = components[0].Name
			}
			return nil, &domain.PlanningError{ComponentType: t, Component: name, Reason: "unknown component type"}
		}
	}

	var units []workUnit
	for _, c := range p.All() {
		for _, v := range o.registry.For(c.Type) {
			units = append(units, workUnit{validator: v, component: c})
		}
	}
	return units, nil
}

// Run executes all units and returns one result per unit, in plan order.
// Cancelling ctx aborts the run with a RunError wrapping ErrRunCancelled.
func (o *Orchestrator) Run(ctx context.Context, p *domain.Plugin) ([]domain.ValidationResult, error) {
	units, err := o.plan(p)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	o.logger.Info().
		Str("component", "orchestrator").
		Str("plugin", p.Name).
		Int("units", len(units)).
		Int("concurrency", o.cfg.Concurrency).
		Msg("validation started")

	if o.progress != nil {
		o.progress.Start(len(units))
		defer o.progress.Finish()
	}

	results := make([]domain.ValidationResult, len(units))
	failed := make([]bool, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, o.cfg.Concurrency))
	for i, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], failed[i] = o.runUnit(gctx, u, p)
			if o.progress != nil {
				o.progress.Advance(u.label())
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		o.logger.Warn().
			Str("component", "orchestrator").
			Str("plugin", p.Name).
			Err(err).
			Msg("validation cancelled")
		return nil, &domain.RunError{Plugin: p.Name, Total: len(units), Cause: fmt.Errorf("%w: %w", domain.ErrRunCancelled, err)}
	}

	nFailed := 0
	for _, f := range failed {
		if f {
			nFailed++
		}
	}
	if len(units) > 0 && float64(nFailed) > o.cfg.FailureThreshold*float64(len(units)) {
		o.logger.Error().
			Str("component", "orchestrator").
			Str("plugin", p.Name).
			Int("failed", nFailed).
			Int("units", len(units)).
			Msg("framework failure threshold exceeded")
		return nil, &domain.RunError{Plugin: p.Name, Failed: nFailed, Total: len(units), Cause: domain.ErrFailureThreshold}
	}

	o.logger.Info().
		Str("component", "orchestrator").
		Str("plugin", p.Name).
		Int("units", len(units)).
		Int("framework_failures", nFailed).
		Dur("duration", time.Since(start)).
		Msg("validation finished")
	return results, nil
}

type unitOutcome struct {
	result domain.ValidationResult
	err    error
}

// runUnit executes one unit under its own timeout. The bool reports a
// framework-level failure (panic or timeout).
func (o *Orchestrator) runUnit(ctx context.Context, u workUnit, p *domain.Plugin) (domain.ValidationResult, bool) {
	key, cacheable := domain.CacheKeyFor(u.validator.Name(), u.component, p)
	if o.cache != nil && cacheable {
		if res, ok := o.cache.Get(key); ok {
			o.logger.Debug().Str("component", "orchestrator").Str("unit", u.label()).Msg("cache hit")
			return res, false
		}
	}

	unitCtx, cancel := context.WithTimeout(ctx, o.deadline(u))
	defer cancel()

	done := make(chan unitOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- unitOutcome{err: &domain.ValidatorExecutionError{
					Validator: u.validator.Name(),
					Component: u.component.Key(),
					Err:       fmt.Errorf("panic: %v", r),
				}}
			}
		}()
		start := time.Now()
		res := u.validator.Validate(unitCtx, u.component, p)
		res.Duration = time.Since(start)
		res.Finalize()
		done <- unitOutcome{result: res}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return o.frameworkFailure(u, out.err), true
		}
		if unitCtx.Err() != nil {
			return o.frameworkFailure(u, o.interrupted(ctx, unitCtx, u)), true
		}
		if o.cache != nil && cacheable {
			o.cache.Put(key, out.result)
		}
		return out.result, false
	case <-unitCtx.Done():
		return o.frameworkFailure(u, o.interrupted(ctx, unitCtx, u)), true
	}
}

// deadline is the unit's time allowance. External tools enforce their own
// per-invocation timeouts, so their units get at least the sum of those plus
// some slack for decoding output.
func (o *Orchestrator) deadline(u workUnit) time.Duration {
	b, ok := u.validator.(domain.TimeBudgeter)
	if !ok {
		return o.cfg.UnitTimeout
	}
	budget := b.TimeBudget(u.component)
	if budget <= 0 {
		return o.cfg.UnitTimeout
	}
	return max(o.cfg.UnitTimeout, budget+budget/10)
}

// interrupted describes a unit whose context ended before it reported. Only
// the unit's own deadline counts as a timeout; a cancelled run does not.
func (o *Orchestrator) interrupted(runCtx, unitCtx context.Context, u workUnit) error {
	return &domain.ValidatorExecutionError{
		Validator: u.validator.Name(),
		Component: u.component.Key(),
		Timeout:   errors.Is(unitCtx.Err(), context.DeadlineExceeded) && runCtx.Err() == nil,
		Err:       unitCtx.Err(),
	}
}

// frameworkFailure synthesizes the invalid result that stands in for a unit
// that crashed or timed out.
func (o *Orchestrator) frameworkFailure(u workUnit, err error) domain.ValidationResult {
	o.logger.Warn().
		Str("component", "orchestrator").
		Str("validator", u.validator.Name()).
		Str("target", u.component.Key()).
		Err(err).
		Msg("validator failed")
	res := domain.NewResult(u.validator.Name(), u.component)
	res.Add(domain.FrameworkFinding(domain.SeverityCritical, u.component.Path, err))
	return res
}
