package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/abdidvp/plugincheck/internal/domain"
)

const componentMaxRows = 15

// RenderComponents lists per-component scores, weakest first, with each
// dimension's contribution and the number of blocking findings.
func RenderComponents(r *domain.Report) string {
	q := r.Score
	if len(q.ComponentScores) == 0 {
		return "\n  " + dimStyle.Render("No scored components.") + "\n\n"
	}

	type row struct {
		key      string
		score    float64
		dims     []float64
		blocking int
	}

	blocking := map[string]int{}
	for _, res := range r.Results {
		for _, f := range res.Findings {
			if f.Severity.Blocking() {
				blocking[res.ComponentKey()]++
			}
		}
	}

	rows := make([]row, 0, len(q.ComponentScores))
	for key, score := range q.ComponentScores {
		rw := row{key: key, score: score, blocking: blocking[key]}
		for _, d := range domain.Dimensions {
			v, ok := q.Dimensions[d].ComponentValues[key]
			if !ok {
				v = -1
			}
			rw.dims = append(rw.dims, v)
		}
		rows = append(rows, rw)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].score != rows[j].score {
			return rows[i].score < rows[j].score
		}
		return rows[i].key < rows[j].key
	})

	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Components") + "  " + dimStyle.Render(fmt.Sprintf("(%d)", len(rows))) + "\n\n")

	header := "    " + padRight("component", 32) + padRight("score", 8)
	for _, d := range domain.Dimensions {
		header += padRight(abbreviate(string(d)), 7)
	}
	b.WriteString(dimStyle.Render(header+"blocking") + "\n")

	for i, rw := range rows {
		if i == componentMaxRows {
			b.WriteString("    " + hintStyle.Render(fmt.Sprintf("… %d more", len(rows)-componentMaxRows)) + "\n")
			break
		}
		line := "    " + padRight(truncate(rw.key, 30), 32)
		line += colorScore(rw.score, 8)
		for _, v := range rw.dims {
			if v < 0 {
				line += faintStyle.Render(padRight("-", 7))
				continue
			}
			line += colorScore(v, 7)
		}
		if rw.blocking > 0 {
			line += failStyle.Render(fmt.Sprintf("%d", rw.blocking))
		} else {
			line += passStyle.Render("0")
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

// BatchRow is one plugin line of a batch summary.
type BatchRow struct {
	Name    string
	Version string
	Overall float64
	Grade   string
	Passed  bool
	Err     string
}

// RenderBatch formats a batch evaluation table followed by totals.
func RenderBatch(rows []BatchRow, averageOverall float64, passed int) string {
	var b strings.Builder
	title := headerStyle.Render("plugincheck batch")
	stats := dimStyle.Render(fmt.Sprintf("%d plugins  ·  %d passed  ·  average %.1f", len(rows), passed, averageOverall))
	b.WriteString(boxStyle.Render(title + "\n\n" + stats))
	b.WriteString("\n\n")

	for _, r := range rows {
		name := padRight(truncate(strings.TrimSpace(r.Name+" "+r.Version), 36), 38)
		if r.Err != "" {
			fmt.Fprintf(&b, "  %s %s %s\n", failStyle.Render("✕"), name, failStyle.Render(r.Err))
			continue
		}
		fmt.Fprintf(&b, "  %s %s %s %s\n",
			verdictIcon(r.Passed), name, colorScore(r.Overall, 7),
			lipglossGrade(r.Grade))
	}
	b.WriteString("\n")
	return b.String()
}

func verdictIcon(passed bool) string {
	if passed {
		return passStyle.Render("●")
	}
	return failStyle.Render("●")
}

func lipglossGrade(grade string) string {
	return dimNameStyle.Foreground(gradeColor(grade)).Render(grade)
}

func colorScore(v float64, width int) string {
	return dimNameStyle.Foreground(scoreColor(v)).Render(padRight(fmt.Sprintf("%.1f", v), width))
}

func abbreviate(dim string) string {
	parts := strings.Split(dim, "_")
	if len(parts) > 1 {
		return parts[0][:4] + "/" + parts[1][:1]
	}
	if len(dim) > 6 {
		return dim[:6]
	}
	return dim
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
