package domain

// ScoringProfile carries the sub-metric weights the dimension scorers use for
// one component type. Weights within a dimension are relative; sub-metrics a
// component does not report are dropped and the rest renormalized.
type ScoringProfile struct {
	Structural    map[string]float64
	Functional    map[string]float64
	CodeQuality   map[string]float64
	Documentation map[string]float64
}

// Weights returns the sub-metric weights for a dimension.
func (p ScoringProfile) Weights(d Dimension) map[string]float64 {
	switch d {
	case DimensionStructural:
		return p.Structural
	case DimensionFunctional:
		return p.Functional
	case DimensionCodeQuality:
		return p.CodeQuality
	default:
		return p.Documentation
	}
}

// DefaultProfile returns the generic sub-weights.
func DefaultProfile() ScoringProfile {
	return ScoringProfile{
		Structural: map[string]float64{
			MetricParseValidity:    20,
			MetricRequiredFields:   25,
			MetricNaming:           20,
			MetricFileOrganization: 20,
			MetricSchemaCompliance: 15,
		},
		Functional: map[string]float64{
			MetricDescriptionQuality: 25,
			MetricTriggerCoverage:    20,
			MetricErrorHandling:      15,
			MetricUserTests:          30,
			MetricExecutionReadiness: 10,
		},
		CodeQuality: map[string]float64{
			MetricScriptSyntax:        25,
			MetricSecurity:            30,
			MetricPortability:         20,
			MetricBestPractices:       15,
			MetricScriptErrorHandling: 10,
		},
		Documentation: map[string]float64{
			MetricBodyQuality:       25,
			MetricExamples:          25,
			MetricReferences:        20,
			MetricTroubleshooting:   15,
			MetricStructuralClarity: 15,
		},
	}
}

// typeOverrides replaces the functional/documentation weights per component type.
var typeOverrides = map[ComponentType]struct {
	functional    map[string]float64
	documentation map[string]float64
}{
	TypeAgent: {
		functional: map[string]float64{
			MetricDescriptionQuality: 20,
			MetricTriggerCoverage:    35,
			MetricErrorHandling:      5,
			MetricUserTests:          30,
			MetricExecutionReadiness: 10,
		},
		documentation: map[string]float64{
			MetricBodyQuality:       30,
			MetricExamples:          30,
			MetricReferences:        10,
			MetricTroubleshooting:   10,
			MetricStructuralClarity: 20,
		},
	},
	TypeCommand: {
		functional: map[string]float64{
			MetricDescriptionQuality: 25,
			MetricTriggerCoverage:    15,
			MetricErrorHandling:      15,
			MetricUserTests:          30,
			MetricExecutionReadiness: 15,
		},
		documentation: map[string]float64{
			MetricBodyQuality:       30,
			MetricExamples:          30,
			MetricReferences:        10,
			MetricTroubleshooting:   10,
			MetricStructuralClarity: 20,
		},
	},
	TypeHook: {
		functional: map[string]float64{
			MetricErrorHandling:      30,
			MetricUserTests:          30,
			MetricExecutionReadiness: 40,
		},
	},
	TypeMCPConfig: {
		functional: map[string]float64{
			MetricErrorHandling:      20,
			MetricUserTests:          30,
			MetricExecutionReadiness: 50,
		},
	},
	TypeManifest: {
		functional: map[string]float64{
			MetricDescriptionQuality: 40,
			MetricUserTests:          30,
			MetricExecutionReadiness: 30,
		},
		documentation: map[string]float64{
			MetricBodyQuality:       30,
			MetricExamples:          25,
			MetricReferences:        15,
			MetricTroubleshooting:   15,
			MetricStructuralClarity: 15,
		},
	},
}

// ProfileFor consults the per-type table before falling back to the default profile.
func ProfileFor(t ComponentType) ScoringProfile {
	p := DefaultProfile()
	o, ok := typeOverrides[t]
	if !ok {
		return p
	}
	if o.functional != nil {
		p.Functional = o.functional
	}
	if o.documentation != nil {
		p.Documentation = o.documentation
	}
	return p
}

// componentTypeWeights sets how much each component type contributes to a
// plugin-level dimension score.
var componentTypeWeights = map[ComponentType]float64{
	TypeSkill:     1.0,
	TypeAgent:     1.0,
	TypeCommand:   0.8,
	TypeHook:      0.8,
	TypeMCPConfig: 0.6,
	TypeManifest:  0.5,
}

// ComponentWeight returns the aggregation weight for a component type.
func ComponentWeight(t ComponentType) float64 {
	if w, ok := componentTypeWeights[t]; ok {
		return w
	}
	return 0.5
}
