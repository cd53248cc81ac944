// Package usertests loads results reported by the external user-test runner.
package usertests

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abdidvp/plugincheck/internal/domain"
)

// FileLoader implements domain.UserTestSource for JSON or YAML records.
type FileLoader struct{}

func New() *FileLoader {
	return &FileLoader{}
}

func (l *FileLoader) Load(path string) (*domain.UserTestReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var report domain.UserTestReport
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &report)
	default:
		err = json.Unmarshal(data, &report)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	if err := validate(&report); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}
	return &report, nil
}

func validate(r *domain.UserTestReport) error {
	for i := range r.Tests {
		t := &r.Tests[i]
		if t.Severity == "" {
			t.Severity = domain.TestWarning
		}
		switch t.Severity {
		case domain.TestAdvisory, domain.TestWarning, domain.TestBlocking, domain.TestCritical:
		default:
			return fmt.Errorf("tests[%d] (%s): unknown severity %q", i, t.Name, t.Severity)
		}
	}
	if len(r.Tests) == 0 {
		if r.Total < 0 || r.Passed < 0 || r.Failed < 0 {
			return fmt.Errorf("counts must be >= 0")
		}
		if r.Passed > r.Total {
			return fmt.Errorf("passed (%d) exceeds total (%d)", r.Passed, r.Total)
		}
	}
	return nil
}
