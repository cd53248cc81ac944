package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abdidvp/plugincheck/internal/domain"
	"github.com/abdidvp/plugincheck/internal/domain/scoring"
	"github.com/abdidvp/plugincheck/internal/domain/validation"
)

// ValidatorSet builds the validators for one run from its configuration.
type ValidatorSet func(cfg domain.EngineConfig) []domain.Validator

// EvaluateOptions carries per-invocation overrides, typically CLI flags.
// Zero values leave the loaded configuration untouched.
type EvaluateOptions struct {
	TestsPath   string
	Concurrency int
	NoCache     bool
	Weights     map[string]float64
}

func (o EvaluateOptions) apply(cfg domain.EngineConfig) domain.EngineConfig {
	if o.Concurrency > 0 {
		cfg.Concurrency = o.Concurrency
	}
	if o.NoCache {
		cfg.NoCache = true
	}
	if len(o.Weights) > 0 {
		merged := make(map[string]float64, len(cfg.Weights)+len(o.Weights))
		for k, v := range cfg.Weights {
			merged[k] = v
		}
		for k, v := range o.Weights {
			merged[k] = v
		}
		cfg.Weights = merged
	}
	return cfg
}

// EvaluateService runs the pipeline:
// load config → discover → orchestrate → score dimensions → compose → recommend.
type EvaluateService struct {
	discoverer   domain.PluginDiscoverer
	locator      domain.PluginLocator
	configLoader domain.ConfigLoader
	validators   ValidatorSet
	tests        domain.UserTestSource
	git          domain.GitInfo
	cache        domain.ResultCache
	progress     domain.ProgressReporter
	logger       zerolog.Logger
	now          func() time.Time
}

// ServiceOption configures optional collaborators of EvaluateService.
type ServiceOption func(*EvaluateService)

func WithLocator(l domain.PluginLocator) ServiceOption {
	return func(s *EvaluateService) { s.locator = l }
}

func WithUserTests(src domain.UserTestSource) ServiceOption {
	return func(s *EvaluateService) { s.tests = src }
}

func WithGitInfo(g domain.GitInfo) ServiceOption {
	return func(s *EvaluateService) { s.git = g }
}

func WithResultCache(c domain.ResultCache) ServiceOption {
	return func(s *EvaluateService) { s.cache = c }
}

func WithProgressReporter(p domain.ProgressReporter) ServiceOption {
	return func(s *EvaluateService) { s.progress = p }
}

func WithServiceLogger(l zerolog.Logger) ServiceOption {
	return func(s *EvaluateService) { s.logger = l }
}

// WithClock fixes the report timestamp; tests use it.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *EvaluateService) { s.now = now }
}

func NewEvaluateService(
	discoverer domain.PluginDiscoverer,
	configLoader domain.ConfigLoader,
	validators ValidatorSet,
	opts ...ServiceOption,
) *EvaluateService {
	s := &EvaluateService{
		discoverer:   discoverer,
		configLoader: configLoader,
		validators:   validators,
		logger:       zerolog.Nop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidationRun is the outcome of validation-only mode.
type ValidationRun struct {
	Plugin  *domain.Plugin            `json:"plugin"`
	Results []domain.ValidationResult `json:"results"`
}

// Valid reports whether every result is free of blocking findings.
func (r *ValidationRun) Valid() bool {
	for _, res := range r.Results {
		if !res.Valid {
			return false
		}
	}
	return true
}

// prepared is the shared front half of Validate and Evaluate.
type prepared struct {
	cfg     domain.EngineConfig
	plugin  *domain.Plugin
	results []domain.ValidationResult
}

func (s *EvaluateService) prepare(ctx context.Context, root string, opts EvaluateOptions) (*prepared, error) {
	// 1. Load and validate config
	cfg, err := s.configLoader.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg = opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// 2. Discover components
	plugin, err := s.discoverer.Discover(root)
	if err != nil {
		return nil, fmt.Errorf("discovering plugin: %w", err)
	}

	// 3. Run validators
	orch := NewOrchestrator(
		validation.NewRegistry(s.validators(cfg)...),
		cfg,
		WithCache(s.cache),
		WithProgress(s.progress),
		WithLogger(s.logger),
	)
	results, err := orch.Run(ctx, plugin)
	if err != nil {
		return nil, err
	}
	return &prepared{cfg: cfg, plugin: plugin, results: results}, nil
}

// Validate runs discovery and the orchestrator without scoring.
func (s *EvaluateService) Validate(ctx context.Context, root string, opts EvaluateOptions) (*ValidationRun, error) {
	pr, err := s.prepare(ctx, root, opts)
	if err != nil {
		return nil, err
	}
	return &ValidationRun{Plugin: pr.plugin, Results: pr.results}, nil
}

// Evaluate runs the full pipeline and returns the immutable report bundle.
func (s *EvaluateService) Evaluate(ctx context.Context, root string, opts EvaluateOptions) (*domain.Report, error) {
	start := s.now()
	pr, err := s.prepare(ctx, root, opts)
	if err != nil {
		return nil, err
	}

	// 4. User tests
	var tests *domain.UserTestReport
	if opts.TestsPath != "" && s.tests != nil {
		tests, err = s.tests.Load(opts.TestsPath)
		if err != nil {
			return nil, fmt.Errorf("loading user tests: %w", err)
		}
	}

	// 5. Score
	in := scoring.Input{Results: pr.results, Tests: tests, Plugin: pr.plugin, Policy: pr.cfg.UserTests}
	dims, err := scoring.ScoreDimensions(in)
	if err != nil {
		s.logger.Error().Str("component", "evaluate").Str("plugin", pr.plugin.Name).Err(err).Msg("scoring aborted")
		return nil, &domain.RunError{Plugin: pr.plugin.Name, Cause: err}
	}
	score := scoring.Compose(dims, in, pr.cfg)

	report := &domain.Report{
		RunID:           uuid.NewString(),
		GeneratedAt:     s.now().UTC(),
		Plugin:          pr.plugin,
		Results:         pr.results,
		Score:           score,
		Recommendations: scoring.Recommend(dims, in, pr.cfg),
	}
	if s.git != nil && s.git.IsGitRepo(root) {
		hash, err := s.git.CommitHash(root)
		if err != nil {
			s.logger.Debug().Str("component", "evaluate").Err(err).Msg("no commit hash")
		}
		report.CommitHash = hash
	}

	s.logger.Info().
		Str("component", "evaluate").
		Str("plugin", pr.plugin.Name).
		Str("run_id", report.RunID).
		Str("verdict", scoring.Summary(score)).
		Int("recommendations", len(report.Recommendations)).
		Dur("duration", s.now().Sub(start)).
		Msg("evaluation finished")
	return report, nil
}

// BatchEntry is one plugin's outcome in a batch evaluation.
type BatchEntry struct {
	Ref    domain.PluginRef `json:"ref"`
	Report *domain.Report   `json:"report,omitempty"`
	Err    string           `json:"error,omitempty"`
}

// EvaluateAll evaluates every plugin found below cacheRoot whose name matches
// filter. A failing plugin is recorded and the batch continues; cancellation
// stops it.
func (s *EvaluateService) EvaluateAll(ctx context.Context, cacheRoot, filter string, opts EvaluateOptions) ([]BatchEntry, error) {
	if s.locator == nil {
		return nil, errors.New("no plugin locator configured")
	}
	refs, err := s.locator.Locate(cacheRoot, filter)
	if err != nil {
		return nil, fmt.Errorf("locating plugins: %w", err)
	}

	entries := make([]BatchEntry, 0, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return entries, &domain.RunError{Plugin: ref.Name, Cause: fmt.Errorf("%w: %w", domain.ErrRunCancelled, err)}
		}
		report, err := s.Evaluate(ctx, ref.Path, opts)
		entry := BatchEntry{Ref: ref, Report: report}
		if err != nil {
			if errors.Is(err, domain.ErrRunCancelled) {
				return entries, err
			}
			entry.Err = err.Error()
			s.logger.Warn().Str("component", "evaluate").Str("plugin", ref.Name).Err(err).Msg("plugin evaluation failed")
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// BatchSummary aggregates a batch evaluation.
type BatchSummary struct {
	TotalPlugins      int      `json:"total_plugins"`
	Evaluated         int      `json:"evaluated"`
	Errored           []string `json:"errored,omitempty"`
	TotalResults      int      `json:"total_results"`
	AverageOverall    float64  `json:"average_overall"`
	AverageStructural float64  `json:"average_structural"`
	Passed            int      `json:"passed"`
	PluginsWithErrors []string `json:"plugins_with_errors,omitempty"`
	CleanPlugins      []string `json:"clean_plugins,omitempty"`
}

// Summarize reduces batch entries to totals and averages.
func Summarize(entries []BatchEntry) BatchSummary {
	sum := BatchSummary{TotalPlugins: len(entries)}
	var overall, structural float64
	for _, e := range entries {
		if e.Report == nil {
			sum.Errored = append(sum.Errored, e.Ref.Name)
			continue
		}
		sum.Evaluated++
		sum.TotalResults += len(e.Report.Results)
		overall += e.Report.Score.Overall
		structural += e.Report.Score.Dimensions[domain.DimensionStructural].Value
		if e.Report.Score.Passed {
			sum.Passed++
		}

		invalid := false
		for _, r := range e.Report.Results {
			if !r.Valid {
				invalid = true
				break
			}
		}
		if invalid {
			sum.PluginsWithErrors = append(sum.PluginsWithErrors, e.Ref.Name)
		} else {
			sum.CleanPlugins = append(sum.CleanPlugins, e.Ref.Name)
		}
	}
	if sum.Evaluated > 0 {
		sum.AverageOverall = roundTenth(overall / float64(sum.Evaluated))
		sum.AverageStructural = roundTenth(structural / float64(sum.Evaluated))
	}
	return sum
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
