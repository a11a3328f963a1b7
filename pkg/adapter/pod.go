// Package adapter is the single seam between live Kubernetes objects and
// the k8s-API-free governance engine: it translates corev1.Pod (and its
// owner chain) into governance.Workload.
package adapter

import (
	corev1 "k8s.io/api/core/v1"

	"github.com/stochastic-io/governance-platform/pkg/governance"
)

// FromPod builds a governance.Workload from a live pod.
func FromPod(pod *corev1.Pod) governance.Workload {
	w := governance.Workload{
		Namespace: pod.Namespace,
		Name:      pod.Name,
		Phase:     governance.Phase(pod.Status.Phase),
	}
	if w.Phase == "" {
		w.Phase = governance.PhaseUnknown
	}

	for _, cond := range pod.Status.Conditions {
		if cond.Type == corev1.PodScheduled && cond.Status == corev1.ConditionTrue {
			w.PendingSince = cond.LastTransitionTime.Unix()
		}
	}

	statusByName := make(map[string]corev1.ContainerStatus, len(pod.Status.ContainerStatuses))
	for _, cs := range pod.Status.ContainerStatuses {
		statusByName[cs.Name] = cs
	}

	for _, c := range pod.Spec.Containers {
		ctr := governance.Container{
			Name:                c.Name,
			Image:               c.Image,
			HasLivenessProbe:    c.LivenessProbe != nil,
			HasReadinessProbe:   c.ReadinessProbe != nil,
			HasResourceRequests: len(c.Resources.Requests) > 0,
			HasResourceLimits:   len(c.Resources.Limits) > 0,
		}
		if len(c.Ports) > 0 {
			ctr.Port = c.Ports[0].ContainerPort
		}
		if cs, ok := statusByName[c.Name]; ok {
			ctr.RestartCount = cs.RestartCount
			ctr.RestartCountKnown = true
		}
		w.Containers = append(w.Containers, ctr)
	}

	for _, owner := range pod.OwnerReferences {
		w.Owners = append(w.Owners, governance.OwnerRef{Kind: owner.Kind, Name: owner.Name})
	}

	return w
}
