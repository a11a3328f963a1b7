package policy

import govv1alpha1 "github.com/stochastic-io/governance-platform/api/v1alpha1"

// severityRank orders severities so admission can compare a violation's
// severity against a configured threshold. Mirrors the original
// implementation's rank table: low=1, medium=2, high=3, critical=4.
func severityRank(s govv1alpha1.Severity) int {
	switch s {
	case govv1alpha1.SeverityCritical:
		return 4
	case govv1alpha1.SeverityHigh:
		return 3
	case govv1alpha1.SeverityMedium:
		return 2
	case govv1alpha1.SeverityLow:
		return 1
	default:
		return 2 // unset behaves like medium
	}
}

// MeetsThreshold reports whether a violation's severity is at or above
// minSeverity.
func MeetsThreshold(severity, minSeverity govv1alpha1.Severity) bool {
	return severityRank(severity) >= severityRank(minSeverity)
}
