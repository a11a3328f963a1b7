// Package policy resolves a Policy resource's defaults, ranks severities,
// checks that the CRDs are installed, and builds the AuditResult records
// the reconcile operator creates for each evaluation. Spec validation
// (ValidatePolicySpec) lives in api/v1alpha1.
package policy

import (
	govv1alpha1 "github.com/stochastic-io/governance-platform/api/v1alpha1"
)

const (
	// DefaultMinBlockingSeverity is used when a Policy leaves
	// minBlockingSeverity unset, per DESIGN.md's Open Question decision.
	DefaultMinBlockingSeverity = govv1alpha1.SeverityHigh
	// DefaultAuditResultRetention is how many AuditResult records are
	// kept per policy when auditResultRetention is unset.
	DefaultAuditResultRetention int32 = 10
	// DefaultTCPProbePort is used when neither the policy nor the
	// container declares a port.
	DefaultTCPProbePort int32 = 8080
	// DefaultProbeInitialDelaySeconds and DefaultProbePeriodSeconds back
	// an injected TCP probe when the policy's defaultProbe omits them.
	DefaultProbeInitialDelaySeconds int32 = 5
	DefaultProbePeriodSeconds       int32 = 10
)

// ApplyDefaults returns a copy of spec with every optional field that has
// an operational default filled in. Fields with no default (the boolean
// checks, maxRestartCount, forbidPendingDuration, defaultResources) stay
// nil/absent because "absent" is itself the meaningful value: "this check
// is disabled."
func ApplyDefaults(spec govv1alpha1.PolicySpec) govv1alpha1.PolicySpec {
	out := spec
	if out.EnforcementMode == "" {
		out.EnforcementMode = govv1alpha1.EnforcementModeAudit
	}
	if out.MinBlockingSeverity == "" {
		out.MinBlockingSeverity = DefaultMinBlockingSeverity
	}
	if out.AuditResultRetention == nil {
		v := DefaultAuditResultRetention
		out.AuditResultRetention = &v
	}
	if out.DefaultProbe != nil {
		probe := *out.DefaultProbe
		if probe.InitialDelaySeconds == 0 {
			probe.InitialDelaySeconds = DefaultProbeInitialDelaySeconds
		}
		if probe.PeriodSeconds == 0 {
			probe.PeriodSeconds = DefaultProbePeriodSeconds
		}
		out.DefaultProbe = &probe
	}
	return out
}

// EffectiveMinBlockingSeverity resolves the admission blocking threshold,
// applying the default when unset.
func EffectiveMinBlockingSeverity(spec *govv1alpha1.PolicySpec) govv1alpha1.Severity {
	if spec == nil || spec.MinBlockingSeverity == "" {
		return DefaultMinBlockingSeverity
	}
	return spec.MinBlockingSeverity
}

// EffectiveRetention resolves how many AuditResults to keep for a policy.
func EffectiveRetention(spec *govv1alpha1.PolicySpec) int32 {
	if spec == nil || spec.AuditResultRetention == nil {
		return DefaultAuditResultRetention
	}
	return *spec.AuditResultRetention
}
