package tui_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abdidvp/plugincheck/internal/adapters/outbound/tui"
)

func TestRenderComponents_WeakestFirst(t *testing.T) {
	out := tui.RenderComponents(sampleReport())

	assert.Contains(t, out, "Components")
	assert.Contains(t, out, "(2)")
	skill := strings.Index(out, "skill/release-notes")
	manifest := strings.Index(out, "manifest/release-notes")
	assert.Greater(t, skill, 0)
	assert.Greater(t, manifest, skill)
	assert.Contains(t, out, "66.3")
}

func TestRenderComponents_Empty(t *testing.T) {
	r := sampleReport()
	r.Score.ComponentScores = nil
	assert.Contains(t, tui.RenderComponents(r), "No scored components.")
}

func TestRenderBatch(t *testing.T) {
	out := tui.RenderBatch([]tui.BatchRow{
		{Name: "release-notes", Version: "1.4.0", Overall: 82.5, Grade: "B+", Passed: true},
		{Name: "shell-guard", Version: "0.3.1", Overall: 41, Grade: "F"},
		{Name: "broken", Err: "discovering plugin: no such file"},
	}, 61.8, 1)

	assert.Contains(t, out, "3 plugins")
	assert.Contains(t, out, "1 passed")
	assert.Contains(t, out, "average 61.8")
	assert.Contains(t, out, "release-notes 1.4.0")
	assert.Contains(t, out, "82.5")
	assert.Contains(t, out, "discovering plugin")
}
