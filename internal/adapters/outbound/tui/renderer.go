package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abdidvp/plugincheck/internal/domain"
)

// ── Claude-inspired warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
	lime    = lipgloss.Color("#A3E635")
	orange  = lipgloss.Color("#FB923C")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	criticalStyle = lipgloss.NewStyle().Foreground(danger).Bold(true).Reverse(true)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	dimNameStyle  = lipgloss.NewStyle().Bold(true).Foreground(fg)
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle     = lipgloss.NewStyle().Foreground(dim).Italic(true)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

const maxFindingRows = 25

// RenderReport formats a full evaluation for the terminal.
func RenderReport(r *domain.Report) string {
	var b strings.Builder
	q := r.Score

	// ── Header ──
	title := headerStyle.Render("plugincheck")
	name := r.Plugin.Name
	if r.Plugin.Version != "" {
		name += " " + r.Plugin.Version
	}
	subtitle := dimStyle.Render(name)
	scoreStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(gradeColor(q.Grade)).
		Render(fmt.Sprintf("%.1f / 100  %s", q.Overall, q.Grade))

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + scoreStyled + "  " + verdict(q.Passed)))
	b.WriteString("\n\n")

	// ── Release blockers ──
	if len(q.Overrides) > 0 {
		b.WriteString("  " + sectionStyle.Render("Release blockers") + "\n")
		for _, o := range q.Overrides {
			b.WriteString("    " + failStyle.Render("✕") + " " + o + "\n")
		}
		b.WriteString("\n")
	}

	// ── Dimensions ──
	for _, d := range domain.Dimensions {
		ds, ok := q.Dimensions[d]
		if !ok {
			continue
		}
		renderDimension(&b, ds)
		b.WriteString("\n")
	}

	b.WriteString("  " + separatorLine + "\n\n")

	// ── Findings ──
	renderFindings(&b, r.Findings())

	// ── Recommendations ──
	if len(r.Recommendations) > 0 {
		b.WriteString("\n  " + titleStyle.Render("Recommendations") + "\n\n")
		for _, rec := range r.Recommendations {
			renderRecommendation(&b, rec)
		}
	}

	b.WriteString("\n")
	if r.CommitHash != "" {
		b.WriteString("  " + faintStyle.Render(fmt.Sprintf("run %s  commit %s", r.RunID, shortHash(r.CommitHash))) + "\n")
	} else {
		b.WriteString("  " + faintStyle.Render("run "+r.RunID) + "\n")
	}
	return b.String()
}

// RenderValidation formats validation-only results, without scores.
func RenderValidation(p *domain.Plugin, results []domain.ValidationResult) string {
	var b strings.Builder

	valid := 0
	for _, r := range results {
		if r.Valid {
			valid++
		}
	}
	status := passStyle.Render("valid")
	if valid < len(results) {
		status = failStyle.Render(fmt.Sprintf("%d invalid", len(results)-valid))
	}
	header := titleStyle.Render(p.Name) + "  " + dimStyle.Render(fmt.Sprintf("%d results", len(results))) + "  " + status
	b.WriteString(boxStyle.Render(header))
	b.WriteString("\n\n")

	byComponent := map[string][]domain.ValidationResult{}
	var keys []string
	for _, r := range results {
		k := r.ComponentKey()
		if _, ok := byComponent[k]; !ok {
			keys = append(keys, k)
		}
		byComponent[k] = append(byComponent[k], r)
	}
	for _, k := range keys {
		ok := true
		for _, r := range byComponent[k] {
			ok = ok && r.Valid
		}
		icon := passStyle.Render("●")
		if !ok {
			icon = failStyle.Render("●")
		}
		fmt.Fprintf(&b, "  %s %s\n", icon, dimNameStyle.Render(k))
		for _, r := range byComponent[k] {
			for _, f := range r.Findings {
				fmt.Fprintf(&b, "      %s %s %s\n", severityTag(f.Severity), fileStyle.Render(f.Location()), f.Message)
			}
		}
	}

	b.WriteString("\n")
	return b.String()
}

func verdict(passed bool) string {
	if passed {
		return passStyle.Bold(true).Render("PASS")
	}
	return failStyle.Bold(true).Render("FAIL")
}

func renderDimension(b *strings.Builder, ds domain.DimensionScore) {
	color := scoreColor(ds.Value)
	scoreText := lipgloss.NewStyle().Bold(true).Foreground(color).Render(fmt.Sprintf("%5.1f", ds.Value))
	weight := dimStyle.Render(fmt.Sprintf("%d%%", int(ds.Weight*100+0.5)))
	name := dimNameStyle.Render(padRight(string(ds.Dimension), 20))
	fmt.Fprintf(b, "  %s %s  %s %s\n", name, coloredBar(ds.Value, 20), scoreText, weight)

	metrics := make([]string, 0, len(ds.SubMetrics))
	for m := range ds.SubMetrics {
		metrics = append(metrics, m)
	}
	sort.Strings(metrics)
	for _, m := range metrics {
		v := ds.SubMetrics[m]
		var icon string
		switch {
		case v >= 80:
			icon = passStyle.Render("●")
		case v >= 60:
			icon = warnStyle.Render("●")
		default:
			icon = failStyle.Render("●")
		}
		fmt.Fprintf(b, "    %s %s %s\n", icon, padRight(m, 34), dimStyle.Render(fmt.Sprintf("%.1f", v)))
	}
	if ds.Rationale != "" {
		fmt.Fprintf(b, "    %s\n", faintStyle.Render(ds.Rationale))
	}
}

func renderFindings(b *strings.Builder, findings []domain.Finding) {
	if len(findings) == 0 {
		b.WriteString("  " + passStyle.Render("No findings.") + "\n")
		return
	}
	sorted := make([]domain.Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.Rank() < sorted[j].Severity.Rank()
	})

	counts := map[domain.Severity]int{}
	for _, f := range sorted {
		counts[f.Severity]++
	}
	b.WriteString("  " + titleStyle.Render("Findings") + "  ")
	for _, s := range []domain.Severity{domain.SeverityCritical, domain.SeverityError, domain.SeverityWarning, domain.SeverityInfo} {
		if counts[s] > 0 {
			b.WriteString(severityTag(s) + dimStyle.Render(fmt.Sprintf(" %d  ", counts[s])))
		}
	}
	b.WriteString("\n\n")

	for i, f := range sorted {
		if i == maxFindingRows {
			b.WriteString("    " + hintStyle.Render(fmt.Sprintf("… %d more (use --format json for all)", len(sorted)-maxFindingRows)) + "\n")
			break
		}
		fmt.Fprintf(b, "    %s %s\n", severityTag(f.Severity), fileStyle.Render(f.Location()))
		fmt.Fprintf(b, "         %s\n", dimStyle.Render(f.Message))
		if f.Suggestion != "" {
			fmt.Fprintf(b, "         %s\n", hintStyle.Render(f.Suggestion))
		}
	}
}

func renderRecommendation(b *strings.Builder, rec domain.Recommendation) {
	target := string(rec.Dimension)
	if rec.Component != "" {
		target += " · " + rec.Component
	}
	if rec.SubMetric != "" {
		target += " · " + rec.SubMetric
	}
	fmt.Fprintf(b, "    %s %s\n", priorityTag(rec.Priority), fileStyle.Render(target))
	fmt.Fprintf(b, "         %s\n", rec.Message)
	for _, d := range rec.Details {
		fmt.Fprintf(b, "           %s\n", faintStyle.Render("- "+d))
	}
}

func severityTag(s domain.Severity) string {
	switch s {
	case domain.SeverityCritical:
		return criticalStyle.Render("crit ")
	case domain.SeverityError:
		return errorTagStyle.Render("error")
	case domain.SeverityWarning:
		return warnTagStyle.Render("warn ")
	default:
		return infoTagStyle.Render("info ")
	}
}

func priorityTag(p domain.Priority) string {
	switch p {
	case domain.PriorityCritical:
		return criticalStyle.Render("CRIT")
	case domain.PriorityHigh:
		return errorTagStyle.Render("HIGH")
	case domain.PriorityMedium:
		return warnTagStyle.Render("MED ")
	default:
		return infoTagStyle.Render("LOW ")
	}
}

func coloredBar(score float64, width int) string {
	filled := max(0, min(int(score)*width/100, width))
	empty := width - filled

	color := scoreColor(score)
	filledStr := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func scoreColor(score float64) lipgloss.Color {
	switch {
	case score >= 80:
		return success
	case score >= 60:
		return lime
	case score >= 40:
		return warning
	default:
		return danger
	}
}

func gradeColor(grade string) lipgloss.Color {
	switch {
	case strings.HasPrefix(grade, "A"):
		return success
	case strings.HasPrefix(grade, "B"):
		return lime
	case strings.HasPrefix(grade, "C"):
		return warning
	case grade == "D":
		return orange
	case grade == "F":
		return danger
	}
	return fg
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderHistory formats the score history, oldest first, with the change
// from the previous run.
func RenderHistory(entries []domain.ScoreEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No score history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Score History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, e := range entries {
		hash := shortHash(e.CommitHash)
		if hash == "" {
			hash = "·······"
		}
		date := "          "
		if !e.Timestamp.IsZero() {
			date = e.Timestamp.Format("2006-01-02")
		}

		scoreStyled := lipgloss.NewStyle().
			Foreground(scoreColor(e.Overall)).
			Render(fmt.Sprintf("%5.1f/100", e.Overall))

		line := fmt.Sprintf("  %s  %s  %s  %-2s  %s",
			dimStyle.Render(date),
			faintStyle.Render(hash),
			scoreStyled,
			e.Grade,
			verdict(e.Passed),
		)

		if i > 0 {
			diff := e.Overall - entries[i-1].Overall
			if diff >= 0.05 {
				line += "  " + passStyle.Render(fmt.Sprintf("↑%.1f", diff))
			} else if diff <= -0.05 {
				line += "  " + failStyle.Render(fmt.Sprintf("↓%.1f", -diff))
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}
