package enforcement

import (
	govv1alpha1 "github.com/stochastic-io/governance-platform/api/v1alpha1"
	"github.com/stochastic-io/governance-platform/pkg/governance"
)

// PatchedByAnnotation is stamped onto a parent workload whenever the
// planner's patch is applied, for audit trail purposes.
const PatchedByAnnotation = "governance.stochastic.io/patched-by"

// OperatorIdentity is the value written into PatchedByAnnotation.
const OperatorIdentity = "governance-operator"

// BypassLabel opts a namespace out of enforcement even when it isn't a
// system namespace.
const BypassLabel = "governance/bypass"

// ActionKind enumerates the three patchable facets a plan can inject.
type ActionKind string

const (
	ActionInjectLivenessProbe  ActionKind = "injectLivenessProbe"
	ActionInjectReadinessProbe ActionKind = "injectReadinessProbe"
	ActionInjectResources      ActionKind = "injectResources"
)

// Action is one patch to apply to one container of the resolved parent.
type Action struct {
	ContainerIndex int
	ContainerName  string
	Kind           ActionKind
}

// Plan is the set of actions to apply to a single parent workload.
type Plan struct {
	Parent  ParentRef
	Actions []Action
}

// patchableTypes are the only violation kinds the planner can remediate;
// :latest tags, high restarts, and pending duration are reported but
// never patched.
var patchableTypes = map[govv1alpha1.ViolationType]bool{
	govv1alpha1.ViolationMissingLiveness:  true,
	govv1alpha1.ViolationMissingReadiness: true,
}

// IsPatchable reports whether a violation type can ever produce a plan
// action. Missing resources has no dedicated ViolationType (it isn't
// part of the governance library's five violation checks) so it isn't
// listed here even though the planner can patch it.
func IsPatchable(t govv1alpha1.ViolationType) bool {
	return patchableTypes[t]
}

// IsProtectedNamespace reports whether namespace is exempt from
// enforcement: either a system namespace, or explicitly opted out via the
// governance/bypass=true label.
func IsProtectedNamespace(namespace string, labels map[string]string) bool {
	if governance.IsSystemNamespace(namespace) {
		return true
	}
	return labels[BypassLabel] == "true"
}

// PlanRemediation is a pure function of (workload, policy): it resolves
// the workload's parent, filters to patchable violations, and builds the
// per-container actions needed. It returns ok=false when there is
// nothing to do: no resolvable parent, a protected namespace, an
// audit-mode policy, or zero patchable violations.
func PlanRemediation(w governance.Workload, namespaceLabels map[string]string, policy *govv1alpha1.PolicySpec) (Plan, bool) {
	if policy == nil || policy.EnforcementMode != govv1alpha1.EnforcementModeEnforce {
		return Plan{}, false
	}
	if IsProtectedNamespace(w.Namespace, namespaceLabels) {
		return Plan{}, false
	}
	parent, ok := ResolveParent(w.Namespace, w.Owners)
	if !ok {
		return Plan{}, false
	}

	var actions []Action
	for i, ctr := range w.Containers {
		if policy.RequireLivenessProbe != nil && *policy.RequireLivenessProbe && !ctr.HasLivenessProbe {
			actions = append(actions, Action{ContainerIndex: i, ContainerName: ctr.Name, Kind: ActionInjectLivenessProbe})
		}
		if policy.RequireReadinessProbe != nil && *policy.RequireReadinessProbe && !ctr.HasReadinessProbe {
			actions = append(actions, Action{ContainerIndex: i, ContainerName: ctr.Name, Kind: ActionInjectReadinessProbe})
		}
		if policy.DefaultResources != nil && !(ctr.HasResourceRequests || ctr.HasResourceLimits) {
			actions = append(actions, Action{ContainerIndex: i, ContainerName: ctr.Name, Kind: ActionInjectResources})
		}
	}
	if len(actions) == 0 {
		return Plan{}, false
	}
	return Plan{Parent: parent, Actions: actions}, true
}

// PlanRemediation applied twice against an already-patched parent is
// idempotent: the caller re-evaluates the (now patched) workload, and
// PlanRemediation naturally returns ok=false once every container already
// has the probes/resources it needs.
