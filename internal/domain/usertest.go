package domain

// TestSeverity tags how much a failing user test matters.
type TestSeverity string

const (
	TestAdvisory TestSeverity = "advisory"
	TestWarning  TestSeverity = "warning"
	TestBlocking TestSeverity = "blocking"
	TestCritical TestSeverity = "critical"
)

// UserTestCase is one executed test reported by the external test subsystem.
type UserTestCase struct {
	Name      string       `json:"name"      yaml:"name"`
	Passed    bool         `json:"passed"    yaml:"passed"`
	Severity  TestSeverity `json:"severity"  yaml:"severity"`
	Component string       `json:"component" yaml:"component"`
}

// UserTestReport is the record shape delivered by the test subsystem.
// Tests may be empty when only aggregate counts are known.
type UserTestReport struct {
	Total  int            `json:"total"  yaml:"total"`
	Passed int            `json:"passed" yaml:"passed"`
	Failed int            `json:"failed" yaml:"failed"`
	Tests  []UserTestCase `json:"tests"  yaml:"tests"`
}

// Counts returns (total, passed), preferring per-test records when present.
func (r *UserTestReport) Counts() (total, passed int) {
	if r == nil {
		return 0, 0
	}
	if len(r.Tests) > 0 {
		for _, t := range r.Tests {
			total++
			if t.Passed {
				passed++
			}
		}
		return total, passed
	}
	return r.Total, r.Passed
}

// HasFailure reports whether a test of the given severity failed.
func (r *UserTestReport) HasFailure(sev TestSeverity) bool {
	if r == nil {
		return false
	}
	for _, t := range r.Tests {
		if !t.Passed && t.Severity == sev {
			return true
		}
	}
	return false
}
