package governance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	govv1alpha1 "github.com/stochastic-io/governance-platform/api/v1alpha1"
)

func boolPtr(b bool) *bool    { return &b }
func int32Ptr(i int32) *int32 { return &i }
func int64Ptr(i int64) *int64 { return &i }

func fullPolicy() *govv1alpha1.PolicySpec {
	return &govv1alpha1.PolicySpec{
		ForbidLatestTag:       boolPtr(true),
		RequireLivenessProbe:  boolPtr(true),
		RequireReadinessProbe: boolPtr(true),
		MaxRestartCount:       int32Ptr(3),
		ForbidPendingDuration: int64Ptr(0),
	}
}

func TestEvaluate_HealthyPod(t *testing.T) {
	w := Workload{
		Namespace: "production",
		Name:      "app-1",
		Phase:     PhaseRunning,
		Containers: []Container{
			{Name: "app", Image: "app:v1.2", HasLivenessProbe: true, HasReadinessProbe: true},
		},
	}
	agg := Evaluate(w, fullPolicy())
	assert.Equal(t, Aggregate{TotalPods: 1}, agg)
	assert.EqualValues(t, 100, Score(agg, DefaultWeights))
	assert.Equal(t, "Healthy", Classify(Score(agg, DefaultWeights)))
}

func TestEvaluate_OffendingPodAuditScenario(t *testing.T) {
	policy := fullPolicy()
	w := Workload{
		Namespace: "production",
		Name:      "nginx-1",
		Phase:     PhasePending,
		PendingSince: 0,
		Containers: []Container{
			{
				Name:              "nginx",
				Image:             "nginx:latest",
				HasLivenessProbe:  false,
				HasReadinessProbe: false,
				RestartCount:      7,
				RestartCountKnown: true,
			},
		},
	}
	// a pending pod that DOES exceed the threshold needs a PendingSince
	// far enough in the past.
	w.PendingSince = nowUnix() - 3600
	agg := Evaluate(w, policy)
	assert.EqualValues(t, 1, agg.LatestTag)
	assert.EqualValues(t, 1, agg.MissingLiveness)
	assert.EqualValues(t, 1, agg.MissingReadiness)
	assert.EqualValues(t, 1, agg.HighRestarts)
	assert.EqualValues(t, 1, agg.Pending)
	assert.EqualValues(t, 1, agg.TotalPods)

	score := Score(agg, DefaultWeights)
	assert.EqualValues(t, 80, score)
	assert.Equal(t, "Healthy", Classify(score))

	violations := DetectViolations(w, policy)
	require.Len(t, violations, 5)
}

func TestDetectViolations_NilPolicyFieldsProduceNoViolations(t *testing.T) {
	w := Workload{
		Namespace: "default",
		Name:      "anything",
		Phase:     PhasePending,
		PendingSince: 1,
		Containers: []Container{
			{Name: "c", Image: "whatever:latest", RestartCount: 999, RestartCountKnown: true},
		},
	}
	assert.Empty(t, DetectViolations(w, &govv1alpha1.PolicySpec{}))
	assert.Equal(t, Aggregate{TotalPods: 1}, Evaluate(w, &govv1alpha1.PolicySpec{}))
}

func TestScore_RangeInvariant(t *testing.T) {
	aggregates := []Aggregate{
		{TotalPods: 0},
		{TotalPods: 1, LatestTag: 1, MissingLiveness: 1, MissingReadiness: 1, HighRestarts: 1, Pending: 1},
		{TotalPods: 5, HighRestarts: 100},
	}
	for _, agg := range aggregates {
		s := Score(agg, DefaultWeights)
		assert.GreaterOrEqual(t, s, int32(0))
		assert.LessOrEqual(t, s, int32(100))
	}
}

func TestAddSubtractAggregate(t *testing.T) {
	x := Aggregate{LatestTag: 3, TotalPods: 5}
	zero := Aggregate{}
	assert.Equal(t, x, AddAggregate(x, zero))

	y := Aggregate{LatestTag: 2, TotalPods: 2}
	assert.Equal(t, x, SubtractAggregate(AddAggregate(x, y), y))

	// underflow saturates to zero rather than going negative.
	assert.Equal(t, Aggregate{}, SubtractAggregate(Aggregate{TotalPods: 1}, Aggregate{TotalPods: 5}))
}

func TestClassifyBoundaries(t *testing.T) {
	assert.Equal(t, "Healthy", Classify(80))
	assert.Equal(t, "Stable", Classify(79))
	assert.Equal(t, "Stable", Classify(60))
	assert.Equal(t, "Degraded", Classify(59))
	assert.Equal(t, "Degraded", Classify(40))
	assert.Equal(t, "Critical", Classify(39))
}

func TestIsSystemNamespace(t *testing.T) {
	assert.True(t, IsSystemNamespace("kube-anything"))
	assert.True(t, IsSystemNamespace("x-system"))
	assert.True(t, IsSystemNamespace("cert-manager"))
	assert.True(t, IsSystemNamespace("istio-system"))
	assert.True(t, IsSystemNamespace("monitoring"))
	assert.True(t, IsSystemNamespace("argocd"))
	assert.False(t, IsSystemNamespace("observability"))
	assert.False(t, IsSystemNamespace("default"))
}

func TestHasLatestTag(t *testing.T) {
	assert.True(t, HasLatestTag("nginx"))
	assert.True(t, HasLatestTag("nginx:latest"))
	assert.False(t, HasLatestTag("nginx:v1.2"))
	assert.True(t, HasLatestTag("registry:5000/app"))
	assert.False(t, HasLatestTag("registry:5000/app:v1"))
}

func TestWatchControllerScenario(t *testing.T) {
	defaultPolicy := fullPolicy()
	healthy := Workload{Namespace: "default", Name: "p1", Phase: PhaseRunning, Containers: []Container{
		{Name: "c", Image: "app:v1", HasLivenessProbe: true, HasReadinessProbe: true},
	}}
	latest1 := Workload{Namespace: "default", Name: "p2", Phase: PhaseRunning, Containers: []Container{
		{Name: "c", Image: "app", HasLivenessProbe: true, HasReadinessProbe: true},
	}}
	latest2 := Workload{Namespace: "default", Name: "p3", Phase: PhaseRunning, Containers: []Container{
		{Name: "c", Image: "app:latest", HasLivenessProbe: true, HasReadinessProbe: true},
	}}

	agg := Aggregate{}
	for _, w := range []Workload{healthy, latest1, latest2} {
		agg = AddAggregate(agg, Evaluate(w, defaultPolicy))
	}
	assert.Equal(t, Aggregate{LatestTag: 2, TotalPods: 3}, agg)
	assert.EqualValues(t, 97, Score(agg, DefaultWeights))

	agg = SubtractAggregate(agg, Evaluate(latest2, defaultPolicy))
	assert.Equal(t, Aggregate{LatestTag: 1, TotalPods: 2}, agg)
	assert.EqualValues(t, 98, Score(agg, DefaultWeights))
}
