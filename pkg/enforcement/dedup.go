package enforcement

import (
	govv1alpha1 "github.com/stochastic-io/governance-platform/api/v1alpha1"
	"github.com/stochastic-io/governance-platform/pkg/governance"
)

// Dedup collapses per-workload plans down to at most one plan per parent
// key. The first workload to resolve a given parent wins; later workloads
// sharing that parent are dropped, matching scenario 3's "sibling pod...
// silently deduplicated."
func Dedup(plans []Plan) []Plan {
	seen := make(map[string]bool, len(plans))
	out := make([]Plan, 0, len(plans))
	for _, p := range plans {
		key := p.Parent.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// PlanAll runs PlanRemediation over every workload and returns the
// deduplicated set of plans to apply this cycle.
func PlanAll(workloads []governance.Workload, namespaceLabels map[string]string, policy *govv1alpha1.PolicySpec) []Plan {
	var plans []Plan
	for _, w := range workloads {
		if p, ok := PlanRemediation(w, namespaceLabels, policy); ok {
			plans = append(plans, p)
		}
	}
	return Dedup(plans)
}
