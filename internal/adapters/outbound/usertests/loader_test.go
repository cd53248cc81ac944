package usertests_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/plugincheck/internal/adapters/outbound/usertests"
	"github.com/abdidvp/plugincheck/internal/domain"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoad_JSONRecord(t *testing.T) {
	p := write(t, "results.json", `{
  "total": 3, "passed": 2, "failed": 1,
  "tests": [
    {"name": "triggers on draft", "passed": true, "severity": "blocking", "component": "release-notes"},
    {"name": "handles no tags", "passed": false, "severity": "warning", "component": "release-notes"},
    {"name": "agent review", "passed": true, "component": "changelog-reviewer"}
  ]
}`)

	report, err := usertests.New().Load(p)
	require.NoError(t, err)

	total, passed := report.Counts()
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, passed)
	assert.True(t, report.HasFailure(domain.TestWarning))
	assert.Equal(t, domain.TestWarning, report.Tests[2].Severity, "missing severity defaults to warning")
}

func TestLoad_YAMLCountsOnly(t *testing.T) {
	p := write(t, "results.yaml", "total: 10\npassed: 9\nfailed: 1\n")

	report, err := usertests.New().Load(p)
	require.NoError(t, err)

	total, passed := report.Counts()
	assert.Equal(t, 10, total)
	assert.Equal(t, 9, passed)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"bad json", "r.json", `{"total": `, "parsing r.json"},
		{"unknown severity", "r.json", `{"tests": [{"name": "x", "passed": false, "severity": "fatal"}]}`, "unknown severity"},
		{"passed exceeds total", "r.json", `{"total": 1, "passed": 2}`, "exceeds total"},
		{"negative counts", "r.yml", "total: -1\n", ">= 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := usertests.New().Load(write(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := usertests.New().Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
