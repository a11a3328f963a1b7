package admission

import (
	"testing"

	"github.com/stretchr/testify/assert"

	govv1alpha1 "github.com/stochastic-io/governance-platform/api/v1alpha1"
	"github.com/stochastic-io/governance-platform/pkg/governance"
)

func boolPtr(b bool) *bool { return &b }

func fullPolicy() *govv1alpha1.PolicySpec {
	return &govv1alpha1.PolicySpec{
		ForbidLatestTag:       boolPtr(true),
		RequireLivenessProbe:  boolPtr(true),
		RequireReadinessProbe: boolPtr(true),
	}
}

func TestVerdict_NilPolicyAllows(t *testing.T) {
	w := governance.Workload{Namespace: "production", Name: "app"}
	d := Verdict(w, nil, govv1alpha1.SeverityHigh)
	assert.True(t, d.Allowed)
	assert.Empty(t, d.Reasons)
}

func TestVerdict_SystemNamespaceAllowsRegardlessOfPolicy(t *testing.T) {
	w := governance.Workload{
		Namespace: "istio-system",
		Name:      "app",
		Containers: []governance.Container{
			{Name: "app", Image: "app:latest"},
		},
	}
	d := Verdict(w, fullPolicy(), govv1alpha1.SeverityLow)
	assert.True(t, d.Allowed)
}

func TestVerdict_DeniesLatestTagAtOrAboveThreshold(t *testing.T) {
	w := governance.Workload{
		Namespace: "production",
		Name:      "app",
		Containers: []governance.Container{
			{Name: "app", Image: "app:latest"},
		},
	}
	d := Verdict(w, fullPolicy(), govv1alpha1.SeverityLow)
	assert.False(t, d.Allowed)
	assert.NotEmpty(t, d.Reasons)
	assert.Contains(t, d.Message(), "denied by governance policy")
}

func TestVerdict_AllowsBelowMinBlockingSeverity(t *testing.T) {
	w := governance.Workload{
		Namespace: "production",
		Name:      "app",
		Containers: []governance.Container{
			{Name: "app", Image: "app:latest"},
		},
	}
	// latest-tag violations default to medium severity, below a critical
	// threshold, so this workload is let through.
	d := Verdict(w, fullPolicy(), govv1alpha1.SeverityCritical)
	assert.True(t, d.Allowed)
}

func TestVerdict_EmptyMinBlockingSeverityFallsBackToDefault(t *testing.T) {
	w := governance.Workload{
		Namespace: "production",
		Name:      "app",
		Containers: []governance.Container{
			{Name: "app", Image: "app:latest"},
		},
	}
	withDefault := Verdict(w, fullPolicy(), "")
	explicit := Verdict(w, fullPolicy(), govv1alpha1.SeverityHigh)
	assert.Equal(t, explicit.Allowed, withDefault.Allowed)
}
