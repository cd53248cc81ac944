package cli

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/abdidvp/plugincheck/internal/adapters/outbound/cache"
	"github.com/abdidvp/plugincheck/internal/adapters/outbound/config"
	"github.com/abdidvp/plugincheck/internal/adapters/outbound/discovery"
	"github.com/abdidvp/plugincheck/internal/adapters/outbound/gitinfo"
	"github.com/abdidvp/plugincheck/internal/adapters/outbound/linters"
	"github.com/abdidvp/plugincheck/internal/adapters/outbound/progress"
	"github.com/abdidvp/plugincheck/internal/adapters/outbound/shparse"
	"github.com/abdidvp/plugincheck/internal/adapters/outbound/toolrunner"
	"github.com/abdidvp/plugincheck/internal/adapters/outbound/usertests"
	"github.com/abdidvp/plugincheck/internal/application"
	"github.com/abdidvp/plugincheck/internal/domain"
	"github.com/abdidvp/plugincheck/internal/domain/validation"
)

// ValidatorSet returns the built-in validators plus the external linters,
// configured from cfg. It is shared by the CLI and the MCP server.
func ValidatorSet(cfg domain.EngineConfig) []domain.Validator {
	paths := make(map[string]string, len(cfg.Tools))
	for name, t := range cfg.Tools {
		if t.Path != "" {
			paths[name] = t.Path
		}
	}
	runner := toolrunner.New(paths)

	validators := validation.Builtin(validation.Options{
		Syntax:   shparse.New(),
		LookPath: exec.LookPath,
	})
	return append(validators,
		linters.NewShellcheck(runner, cfg.Tool("shellcheck")),
		linters.NewMarkdownlint(runner, cfg.Tool("markdownlint")),
	)
}

func (o *rootOptions) configLoader() domain.ConfigLoader {
	if o.configFile != "" {
		return config.NewWithFile(o.configFile)
	}
	return config.New()
}

// session is one wired EvaluateService plus the cache it must flush.
type session struct {
	svc   *application.EvaluateService
	store *cache.Store
}

// newSession wires the outbound adapters for a run rooted at root. When
// useCache is set the result cache under root is loaded; a corrupt cache is
// logged and replaced rather than failing the run.
func (o *rootOptions) newSession(root string, useCache bool) *session {
	s := &session{}
	svcOpts := []application.ServiceOption{
		application.WithLocator(discovery.NewLocator()),
		application.WithUserTests(usertests.New()),
		application.WithGitInfo(gitinfo.New()),
		application.WithProgressReporter(progress.New(!o.noProgress)),
		application.WithServiceLogger(o.logger),
	}
	if useCache {
		s.store = cache.New(root)
		if err := s.store.Load(); err != nil {
			o.logger.Warn().Str("component", "cli").Str("path", s.store.Path()).Err(err).Msg("ignoring unreadable result cache")
			s.store = cache.New(root)
		}
		o.logger.Debug().Str("component", "cli").Str("path", s.store.Path()).Int("entries", s.store.Len()).Msg("result cache loaded")
		svcOpts = append(svcOpts, application.WithResultCache(s.store))
	}
	s.svc = application.NewEvaluateService(discovery.New(), o.configLoader(), ValidatorSet, svcOpts...)
	return s
}

// close writes back any new cache entries. Flush failures only cost speed on
// the next run, so they are logged.
func (s *session) close(o *rootOptions) {
	if s.store == nil {
		return
	}
	if err := s.store.Flush(); err != nil {
		o.logger.Warn().Str("component", "cli").Str("path", s.store.Path()).Err(err).Msg("writing result cache")
	}
}

func resolveRoot(args []string) (string, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}
