package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	govv1alpha1 "github.com/stochastic-io/governance-platform/api/v1alpha1"
)

func TestApplyDefaults(t *testing.T) {
	out := ApplyDefaults(govv1alpha1.PolicySpec{})
	assert.Equal(t, govv1alpha1.EnforcementModeAudit, out.EnforcementMode)
	assert.Equal(t, DefaultMinBlockingSeverity, out.MinBlockingSeverity)
	assert.EqualValues(t, DefaultAuditResultRetention, *out.AuditResultRetention)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	retention := int32(3)
	spec := govv1alpha1.PolicySpec{
		EnforcementMode:      govv1alpha1.EnforcementModeEnforce,
		MinBlockingSeverity:  govv1alpha1.SeverityCritical,
		AuditResultRetention: &retention,
	}
	out := ApplyDefaults(spec)
	assert.Equal(t, govv1alpha1.EnforcementModeEnforce, out.EnforcementMode)
	assert.Equal(t, govv1alpha1.SeverityCritical, out.MinBlockingSeverity)
	assert.EqualValues(t, 3, *out.AuditResultRetention)
}

func TestMeetsThreshold(t *testing.T) {
	assert.True(t, MeetsThreshold(govv1alpha1.SeverityCritical, govv1alpha1.SeverityHigh))
	assert.True(t, MeetsThreshold(govv1alpha1.SeverityHigh, govv1alpha1.SeverityHigh))
	assert.False(t, MeetsThreshold(govv1alpha1.SeverityMedium, govv1alpha1.SeverityHigh))
	assert.False(t, MeetsThreshold(govv1alpha1.SeverityLow, govv1alpha1.SeverityHigh))
}

func TestValidatePolicySpec_RejectsNegativeThresholds(t *testing.T) {
	bad := int32(-1)
	errs := govv1alpha1.ValidatePolicySpec(nil, &govv1alpha1.PolicySpec{MaxRestartCount: &bad})
	assert.NotEmpty(t, errs)
}
