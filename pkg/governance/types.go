// Package governance implements the pure evaluation engine: turning a
// workload description and a policy into violations, aggregate metrics,
// and a health score. Nothing in this package touches the Kubernetes API
// directly: pkg/adapter builds Workload values from live cluster objects
// so this package stays trivially unit-testable and reusable outside a
// cluster context entirely.
package governance

import (
	"strings"

	govv1alpha1 "github.com/stochastic-io/governance-platform/api/v1alpha1"
)

// Phase mirrors the small set of pod phases the engine cares about.
type Phase string

const (
	PhasePending   Phase = "Pending"
	PhaseRunning   Phase = "Running"
	PhaseSucceeded Phase = "Succeeded"
	PhaseFailed    Phase = "Failed"
	PhaseUnknown   Phase = "Unknown"
)

// OwnerRef is an ordered back-reference to a workload's owner.
type OwnerRef struct {
	Kind string
	Name string
}

// Container carries the subset of container state the engine reasons
// about. All fields are optional; a zero value means "no information."
type Container struct {
	Name string
	// Image is the full image reference, e.g. "nginx:latest" or "nginx".
	Image string
	// HasLivenessProbe and HasReadinessProbe report whether the
	// container spec declares the corresponding probe.
	HasLivenessProbe  bool
	HasReadinessProbe bool
	// HasResourceRequests and HasResourceLimits report whether the
	// container declares any resource requests/limits respectively.
	HasResourceRequests bool
	HasResourceLimits   bool
	// Port is the container's first declared port, 0 if none.
	Port int32
	// RestartCount is the observed restart count from status, if known.
	RestartCount int32
	// RestartCountKnown distinguishes "zero restarts observed" from "no
	// status available yet."
	RestartCountKnown bool
}

// Workload is an opaque description of a single pod-shaped thing: it
// carries no identity beyond what's needed to evaluate and report on it.
type Workload struct {
	Namespace string
	Name      string
	Phase     Phase
	// PendingSince is when the pod entered Pending, taken from the
	// PodScheduled condition's LastTransitionTime. Zero means unknown.
	PendingSince int64 // unix seconds, 0 = unknown
	Containers   []Container
	Owners       []OwnerRef
}

// HasLatestTag reports whether an image reference is bare (no tag) or
// explicitly tagged ":latest". Only the final path segment is examined so
// that a registry host containing a colon (e.g. "registry:5000/app") does
// not produce a false positive.
func HasLatestTag(image string) bool {
	if image == "" {
		return false
	}
	lastSlash := strings.LastIndex(image, "/")
	tail := image
	if lastSlash >= 0 {
		tail = image[lastSlash+1:]
	}
	if !strings.Contains(tail, ":") {
		return true
	}
	return strings.HasSuffix(tail, ":latest")
}

// Aggregate is the per-namespace sum of violation counts and total pods,
// the sole input to Score.
type Aggregate struct {
	LatestTag        int64
	MissingLiveness   int64
	MissingReadiness  int64
	HighRestarts      int64
	Pending           int64
	TotalPods         int64
}

// Weights are the fixed per-violation-type penalty weights used by Score.
type Weights struct {
	LatestTag        int64
	MissingLiveness  int64
	MissingReadiness int64
	HighRestarts     int64
	Pending          int64
}

// DefaultWeights is the fixed weight set the score formula uses:
// 5*latestTag + 3*missingLiveness + 2*missingReadiness + 6*highRestarts + 4*pending.
var DefaultWeights = Weights{
	LatestTag:        5,
	MissingLiveness:  3,
	MissingReadiness: 2,
	HighRestarts:     6,
	Pending:          4,
}

// Violation is a single non-compliant fact about a container or pod.
type Violation struct {
	PodName       string
	ContainerName string
	Type          govv1alpha1.ViolationType
	Severity      govv1alpha1.Severity
	Message       string
}
