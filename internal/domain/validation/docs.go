package validation

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/abdidvp/plugincheck/internal/domain"
)

const pluginRootVar = "${CLAUDE_PLUGIN_ROOT}"

var (
	numberedStepRe  = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+\S`)
	bulletRe        = regexp.MustCompile(`(?m)^\s*[-*+]\s+\S`)
	tableRuleRe     = regexp.MustCompile(`(?m)^\s*\|?\s*:?-{3,}:?\s*\|`)
	localLinkRe     = regexp.MustCompile(`\[[^\]]*\]\(([^)\s#]+)[^)]*\)`)
	scriptRefRe     = regexp.MustCompile(`(?:\$\{CLAUDE_PLUGIN_ROOT\}/|\b)(scripts/[\w./-]+\.(?:sh|bash|py|js|ts|rb))`)
	errorGuidanceRe = regexp.MustCompile(`(?i)\b(if [^.\n]{0,60}fails?|on (?:error|failure)|error handling|troubleshoot\w*|fallback|retry|when [^.\n]{0,40}errors?)\b`)
	exampleHeadRe   = regexp.MustCompile(`(?im)^#{1,6}\s+.*\bexamples?\b`)
	exampleTagRe    = regexp.MustCompile(`(?im)<example>|^\s*examples?:`)
	troubleshootRe  = regexp.MustCompile(`(?im)^#{1,6}\s+.*\b(troubleshoot\w*|common (?:issues|problems|errors)|faq|known issues)\b`)
)

type bodyStats struct {
	words      int
	headings   int
	sections   int
	codeBlocks int
	numbered   bool
	bullets    bool
	tables     bool
	longestPar int
}

func analyzeBody(body string) bodyStats {
	var s bodyStats
	s.words = len(strings.Fields(body))
	s.numbered = numberedStepRe.MatchString(body)
	s.bullets = bulletRe.MatchString(body)
	s.tables = tableRuleRe.MatchString(body)

	fences := 0
	inFence := false
	par := 0
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			fences++
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			s.headings++
			if strings.HasPrefix(trimmed, "##") {
				s.sections++
			}
		}
		if trimmed == "" {
			par = 0
			continue
		}
		par += len(strings.Fields(trimmed))
		s.longestPar = max(s.longestPar, par)
	}
	s.codeBlocks = fences / 2
	return s
}

// BodyQuality scores a markdown body on headings, code blocks, numbered steps,
// tables and word-count banding. Bodies under 50 words are penalized.
func BodyQuality(body string) float64 {
	s := analyzeBody(body)
	score := 0.0

	switch {
	case s.headings >= 3:
		score += 20
	case s.headings >= 1:
		score += 10
	}
	if s.codeBlocks >= 1 {
		score += 20
	}
	if s.numbered {
		score += 15
	}
	if s.tables {
		score += 10
	}

	switch {
	case s.words > 5000:
		score += 20
	case s.words >= 500:
		score += 35
	case s.words >= 200:
		score += 25
	case s.words >= 50:
		score += 15
	default:
		score -= 10
	}
	return clamp(score)
}

// StructuralClarity rewards sectioned bodies with lists and short paragraphs.
func StructuralClarity(body string) float64 {
	s := analyzeBody(body)
	score := 0.0
	switch {
	case s.sections >= 2:
		score += 40
	case s.headings >= 1:
		score += 20
	}
	if s.bullets || s.numbered || s.tables {
		score += 30
	}
	if s.words > 0 && s.longestPar <= 150 {
		score += 30
	}
	return score
}

// scoreDocumentation records the documentation sub-metrics for a markdown
// component and emits the findings that explain low values.
func scoreDocumentation(res *domain.ValidationResult, c domain.Component, p *domain.Plugin) {
	stats := analyzeBody(c.Body)

	res.SetScore(domain.MetricBodyQuality, BodyQuality(c.Body))
	if stats.words < 50 {
		res.Add(domain.Finding{
			Severity:   domain.SeverityWarning,
			Category:   domain.CategoryDocumentation,
			Message:    fmt.Sprintf("Body is very short (%d words)", stats.words),
			Path:       c.Path,
			Suggestion: "Document usage, inputs and expected output",
		})
	}

	res.SetScore(domain.MetricStructuralClarity, StructuralClarity(c.Body))

	if hasExamples(c) {
		res.SetScore(domain.MetricExamples, 100)
	} else {
		res.SetScore(domain.MetricExamples, 0)
		res.Add(domain.Finding{
			Severity:   domain.SeverityInfo,
			Category:   domain.MetricExamples,
			Message:    "No usage examples found",
			Path:       c.Path,
			Suggestion: "Add an '## Examples' section",
		})
	}

	if troubleshootRe.MatchString(c.Body) {
		res.SetScore(domain.MetricTroubleshooting, 100)
	} else {
		res.SetScore(domain.MetricTroubleshooting, 0)
		res.Add(domain.Finding{
			Severity:   domain.SeverityInfo,
			Category:   domain.MetricTroubleshooting,
			Message:    "No troubleshooting section found",
			Path:       c.Path,
			Suggestion: "Add a '## Troubleshooting' section covering common failures",
		})
	}

	scoreReferences(res, c, p)
}

func hasExamples(c domain.Component) bool {
	if exampleHeadRe.MatchString(c.Body) || exampleTagRe.MatchString(c.Body) {
		return true
	}
	desc, _ := c.String("description")
	return strings.Contains(strings.ToLower(desc), "<example>")
}

// scoreReferences checks local markdown links. Components without any local
// reference get a neutral 50.
func scoreReferences(res *domain.ValidationResult, c domain.Component, p *domain.Plugin) {
	var targets []string
	for _, m := range localLinkRe.FindAllStringSubmatch(c.Body, -1) {
		target := m[1]
		if strings.Contains(target, "://") || strings.HasPrefix(target, "mailto:") {
			continue
		}
		targets = append(targets, target)
	}
	if len(targets) == 0 {
		res.SetScore(domain.MetricReferences, 50)
		return
	}

	valid := 0
	for _, t := range targets {
		if p.HasFile(resolveRef(c.Path, t)) {
			valid++
			continue
		}
		res.Add(domain.Finding{
			Severity:   domain.SeverityWarning,
			Category:   domain.CategoryReferences,
			Message:    fmt.Sprintf("Referenced file '%s' does not exist", t),
			Path:       c.Path,
			Suggestion: "Fix the link or add the referenced file",
		})
	}
	res.SetRatio(domain.MetricReferences, valid, len(targets))
}

// resolveRef resolves a reference found in the file at from. Plugin-root
// variables resolve against the plugin root, everything else relative to from.
func resolveRef(from, ref string) string {
	if strings.HasPrefix(ref, pluginRootVar) {
		return path.Clean(strings.TrimPrefix(strings.TrimPrefix(ref, pluginRootVar), "/"))
	}
	if strings.HasPrefix(ref, "/") {
		return path.Clean(strings.TrimPrefix(ref, "/"))
	}
	return path.Join(path.Dir(from), ref)
}

// scoreErrorGuidance records whether a markdown body tells the model what to
// do when things go wrong.
func scoreErrorGuidance(res *domain.ValidationResult, c domain.Component) {
	if errorGuidanceRe.MatchString(c.Body) {
		res.SetScore(domain.MetricErrorHandling, 100)
		return
	}
	res.SetScore(domain.MetricErrorHandling, 0)
	res.Add(domain.Finding{
		Severity:   domain.SeverityInfo,
		Category:   domain.CategoryErrorHandling,
		Message:    "No error-handling guidance in body",
		Path:       c.Path,
		Suggestion: "Describe what to do when a step fails",
	})
}

// scoreExecutionReadiness checks that scripts referenced from the body exist
// and that attached scripts are executable.
func scoreExecutionReadiness(res *domain.ValidationResult, c domain.Component, p *domain.Plugin) {
	passed, total := 0, 0
	seen := map[string]bool{}
	for _, m := range scriptRefRe.FindAllStringSubmatch(c.Body, -1) {
		ref := m[1]
		if seen[ref] {
			continue
		}
		seen[ref] = true
		total++
		candidates := []string{path.Join(path.Dir(c.Path), ref), path.Clean(ref)}
		if anyFile(p, candidates) {
			passed++
			continue
		}
		res.Add(domain.Finding{
			Severity:   domain.SeverityError,
			Category:   domain.CategoryExecution,
			Message:    fmt.Sprintf("Referenced script '%s' not found", ref),
			Path:       c.Path,
			Suggestion: "Add the script or fix the path",
		})
	}
	for _, s := range c.Scripts {
		total++
		if s.Executable {
			passed++
			continue
		}
		res.Add(domain.Finding{
			Severity:   domain.SeverityWarning,
			Category:   domain.CategoryExecution,
			Message:    "Script is not executable",
			Path:       s.Path,
			Suggestion: fmt.Sprintf("chmod +x %s", s.Path),
		})
	}
	res.SetRatio(domain.MetricExecutionReadiness, passed, total)
}

func anyFile(p *domain.Plugin, candidates []string) bool {
	for _, c := range candidates {
		if p.HasFile(c) {
			return true
		}
	}
	return false
}
