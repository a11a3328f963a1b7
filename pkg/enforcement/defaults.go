package enforcement

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	intstr "k8s.io/apimachinery/pkg/util/intstr"

	govv1alpha1 "github.com/stochastic-io/governance-platform/api/v1alpha1"
	"github.com/stochastic-io/governance-platform/pkg/governance"
	"github.com/stochastic-io/governance-platform/pkg/policy"
)

// BuildProbe constructs the TCP-socket probe injected for a container
// missing one. The port preference order is: policy.defaultProbe.tcpPort,
// then the container's own first declared port, then 8080.
func BuildProbe(cfg *govv1alpha1.DefaultProbeConfig, ctr governance.Container) *corev1.Probe {
	port := policy.DefaultTCPProbePort
	if ctr.Port != 0 {
		port = ctr.Port
	}
	initialDelay := policy.DefaultProbeInitialDelaySeconds
	period := policy.DefaultProbePeriodSeconds
	if cfg != nil {
		if cfg.TCPPort != 0 {
			port = cfg.TCPPort
		}
		if cfg.InitialDelaySeconds != 0 {
			initialDelay = cfg.InitialDelaySeconds
		}
		if cfg.PeriodSeconds != 0 {
			period = cfg.PeriodSeconds
		}
	}
	return &corev1.Probe{
		ProbeHandler: corev1.ProbeHandler{
			TCPSocket: &corev1.TCPSocketAction{Port: intstr.FromInt(int(port))},
		},
		InitialDelaySeconds: initialDelay,
		PeriodSeconds:       period,
	}
}

// BuildResources constructs the requests/limits block injected for a
// container missing one, from the policy's configured defaults. Returns
// nil when the policy sets no defaults: absence here means "no patch
// for this facet," not "zero resources."
func BuildResources(cfg *govv1alpha1.DefaultResourceConfig) *corev1.ResourceRequirements {
	if cfg == nil {
		return nil
	}
	reqs := corev1.ResourceList{}
	limits := corev1.ResourceList{}
	if cfg.CPURequest != "" {
		reqs[corev1.ResourceCPU] = resource.MustParse(cfg.CPURequest)
	}
	if cfg.MemoryRequest != "" {
		reqs[corev1.ResourceMemory] = resource.MustParse(cfg.MemoryRequest)
	}
	if cfg.CPULimit != "" {
		limits[corev1.ResourceCPU] = resource.MustParse(cfg.CPULimit)
	}
	if cfg.MemoryLimit != "" {
		limits[corev1.ResourceMemory] = resource.MustParse(cfg.MemoryLimit)
	}
	if len(reqs) == 0 && len(limits) == 0 {
		return nil
	}
	return &corev1.ResourceRequirements{Requests: reqs, Limits: limits}
}
