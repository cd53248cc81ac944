package scoring

import (
	"fmt"
	"strings"

	"github.com/abdidvp/plugincheck/internal/domain"
)

// UserTestScore is the user-test contribution to the Functional dimension.
type UserTestScore struct {
	Executed  bool    `json:"executed"`
	Total     int     `json:"total"`
	Passed    int     `json:"passed"`
	Coverage  float64 `json:"coverage"`
	Bonus     float64 `json:"bonus"`
	Penalty   float64 `json:"penalty"`
	Raw       float64 `json:"raw"`
	Effective float64 `json:"effective"`
}

// ScoreUserTests computes the user-test sub-score: pass rate, plus a coverage
// bonus, minus a capped severity penalty, clamped to [0,100]. Raw keeps the
// pre-clamp value. Without tests the effective score is the neutral baseline.
func ScoreUserTests(tests *domain.UserTestReport, p *domain.Plugin, policy domain.UserTestPolicy) UserTestScore {
	total, passed := tests.Counts()
	if total == 0 {
		return UserTestScore{Raw: policy.NeutralBaseline, Effective: policy.NeutralBaseline}
	}

	s := UserTestScore{Executed: true, Total: total, Passed: passed}
	s.Coverage = coverage(tests, p)
	// Tiers may be listed in any order; the best one reached wins.
	for _, tier := range policy.CoverageTiers {
		if s.Coverage >= tier.MinRatio {
			s.Bonus = max(s.Bonus, tier.Bonus)
		}
	}

	for _, t := range tests.Tests {
		if t.Passed {
			continue
		}
		switch t.Severity {
		case domain.TestCritical:
			s.Penalty += policy.CriticalPenalty
		case domain.TestBlocking:
			s.Penalty += policy.BlockingPenalty
		case domain.TestWarning:
			s.Penalty += policy.WarningPenalty
		default:
			s.Penalty += policy.AdvisoryPenalty
		}
	}
	s.Penalty = min(s.Penalty, policy.PenaltyCap)

	s.Raw = 100*float64(passed)/float64(total) + s.Bonus - s.Penalty
	s.Effective = clamp(s.Raw)
	return s
}

// coverage is the share of non-manifest components covered by at least one test.
func coverage(tests *domain.UserTestReport, p *domain.Plugin) float64 {
	if p == nil {
		return 0
	}
	denominator := p.ComponentCount()
	if denominator == 0 {
		return 0
	}
	byName := map[string]string{}
	for _, c := range p.All() {
		if c.Type == domain.TypeManifest {
			continue
		}
		byName[c.Key()] = c.Key()
		if _, taken := byName[c.Name]; !taken {
			byName[c.Name] = c.Key()
		}
	}
	covered := map[string]bool{}
	for _, t := range tests.Tests {
		if key, ok := byName[strings.TrimSpace(t.Component)]; ok {
			covered[key] = true
		}
	}
	return float64(len(covered)) / float64(denominator)
}

func (s UserTestScore) String() string {
	if !s.Executed {
		return fmt.Sprintf("no user tests (baseline %.0f)", s.Effective)
	}
	return fmt.Sprintf("%d/%d user tests passed, %.0f%% coverage (+%.0f), penalty -%.0f, raw %.1f",
		s.Passed, s.Total, s.Coverage*100, s.Bonus, s.Penalty, s.Raw)
}

func clamp(v float64) float64 {
	return max(0, min(100, v))
}
