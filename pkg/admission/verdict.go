// Package admission implements the synchronous, fail-open policy
// evaluator invoked by the API server on workload create/update.
package admission

import (
	"fmt"
	"strings"

	govv1alpha1 "github.com/stochastic-io/governance-platform/api/v1alpha1"
	"github.com/stochastic-io/governance-platform/pkg/governance"
	"github.com/stochastic-io/governance-platform/pkg/policy"
)

// Decision is the outcome of Verdict.
type Decision struct {
	Allowed        bool
	Reasons        []string
	ViolationTypes []govv1alpha1.ViolationType
}

// Message joins Reasons the way the admission response surfaces them.
func (d Decision) Message() string {
	if len(d.Reasons) == 0 {
		return ""
	}
	return fmt.Sprintf("denied by governance policy: %s", strings.Join(d.Reasons, ", "))
}

// Verdict is the pure decision function: given a workload, its governing
// policy (nil if none applies), and the minimum severity that blocks
// admission, decide allow or deny. System namespaces and a nil policy
// always allow.
func Verdict(w governance.Workload, p *govv1alpha1.PolicySpec, minBlockingSeverity govv1alpha1.Severity) Decision {
	if p == nil || governance.IsSystemNamespace(w.Namespace) {
		return Decision{Allowed: true}
	}
	if minBlockingSeverity == "" {
		minBlockingSeverity = policy.DefaultMinBlockingSeverity
	}

	admissionTypes := governance.AdmissionViolationTypes()
	var reasons []string
	var types []govv1alpha1.ViolationType
	for _, v := range governance.DetectViolations(w, p) {
		if !admissionTypes[v.Type] {
			continue
		}
		if !policy.MeetsThreshold(v.Severity, minBlockingSeverity) {
			continue
		}
		reasons = append(reasons, v.Message)
		types = append(types, v.Type)
	}

	if len(reasons) == 0 {
		return Decision{Allowed: true}
	}
	return Decision{Allowed: false, Reasons: reasons, ViolationTypes: types}
}
