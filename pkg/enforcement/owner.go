// Package enforcement resolves a workload's owning parent and plans the
// patches needed to bring it into compliance. Planning is a pure function
// of (workload, policy); only Apply touches the API server.
package enforcement

import (
	"regexp"
	"strings"

	"github.com/stochastic-io/governance-platform/pkg/governance"
)

// ParentKind enumerates the owner kinds the planner knows how to patch.
type ParentKind string

const (
	ParentDeployment  ParentKind = "Deployment"
	ParentStatefulSet ParentKind = "StatefulSet"
	ParentDaemonSet   ParentKind = "DaemonSet"
)

// ParentRef identifies a patchable owning workload.
type ParentRef struct {
	Kind      ParentKind
	Namespace string
	Name      string
}

// Key returns the per-reconcile-cycle deduplication key.
func (p ParentRef) Key() string {
	return strings.ToLower(string(p.Kind)) + "/" + p.Namespace + "/" + p.Name
}

var hashSegment = regexp.MustCompile(`^[0-9a-f]{5,10}$`)

// stripReplicaSetHash strips the trailing hash segment from a ReplicaSet
// name to recover its owning Deployment's name, but only when that
// segment actually looks like a hash (lowercase hex, the length
// kube-controller-manager's random-suffix generator produces). A
// ReplicaSet named without a hash-like suffix is left unchanged.
func stripReplicaSetHash(name string) string {
	idx := strings.LastIndex(name, "-")
	if idx <= 0 {
		return name
	}
	suffix := name[idx+1:]
	if !hashSegment.MatchString(suffix) {
		return name
	}
	return name[:idx]
}

// ResolveParent walks a workload's owner back-references and returns the
// patchable parent, if any. The immediate owner is used directly unless
// it is a ReplicaSet, in which case the owning Deployment's name is
// derived by stripping the ReplicaSet's hash suffix. Unsupported owner
// kinds (or no owners at all) resolve to ok=false.
func ResolveParent(namespace string, owners []governance.OwnerRef) (ParentRef, bool) {
	if len(owners) == 0 {
		return ParentRef{}, false
	}
	owner := owners[0]
	switch owner.Kind {
	case "ReplicaSet":
		return ParentRef{Kind: ParentDeployment, Namespace: namespace, Name: stripReplicaSetHash(owner.Name)}, true
	case string(ParentDeployment):
		return ParentRef{Kind: ParentDeployment, Namespace: namespace, Name: owner.Name}, true
	case string(ParentStatefulSet):
		return ParentRef{Kind: ParentStatefulSet, Namespace: namespace, Name: owner.Name}, true
	case string(ParentDaemonSet):
		return ParentRef{Kind: ParentDaemonSet, Namespace: namespace, Name: owner.Name}, true
	default:
		return ParentRef{}, false
	}
}
