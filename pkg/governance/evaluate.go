package governance

import (
	"fmt"
	"strings"

	govv1alpha1 "github.com/stochastic-io/governance-platform/api/v1alpha1"
)

// checksEnabled mirrors which facets of a PolicySpec are switched on,
// resolved once per evaluation so evaluate and detectViolations agree.
type checksEnabled struct {
	latestTag        bool
	missingLiveness   bool
	missingReadiness  bool
	highRestarts      bool
	maxRestartCount   int32
	pending           bool
	pendingDuration   int64
}

func resolveChecks(policy *govv1alpha1.PolicySpec) checksEnabled {
	var c checksEnabled
	if policy == nil {
		return c
	}
	if policy.ForbidLatestTag != nil && *policy.ForbidLatestTag {
		c.latestTag = true
	}
	if policy.RequireLivenessProbe != nil && *policy.RequireLivenessProbe {
		c.missingLiveness = true
	}
	if policy.RequireReadinessProbe != nil && *policy.RequireReadinessProbe {
		c.missingReadiness = true
	}
	if policy.MaxRestartCount != nil {
		c.highRestarts = true
		c.maxRestartCount = *policy.MaxRestartCount
	}
	if policy.ForbidPendingDuration != nil {
		c.pending = true
		c.pendingDuration = *policy.ForbidPendingDuration
	}
	return c
}

// Evaluate returns integer counts across the five violation types plus
// totalPods=1. A workload with no containers contributes totalPods=1 and
// no container-level violations; only the pod-level pending check can
// still fire for it.
func Evaluate(w Workload, policy *govv1alpha1.PolicySpec) Aggregate {
	c := resolveChecks(policy)
	agg := Aggregate{TotalPods: 1}

	for _, ctr := range w.Containers {
		if c.latestTag && HasLatestTag(ctr.Image) {
			agg.LatestTag++
		}
		if c.missingLiveness && !ctr.HasLivenessProbe {
			agg.MissingLiveness++
		}
		if c.missingReadiness && !ctr.HasReadinessProbe {
			agg.MissingReadiness++
		}
		if c.highRestarts && ctr.RestartCountKnown && ctr.RestartCount > c.maxRestartCount {
			agg.HighRestarts++
		}
	}

	if c.pending && isPendingTooLong(w, c.pendingDuration) {
		agg.Pending++
	}

	return agg
}

// isPendingTooLong reports whether w has been Pending for longer than
// durationSeconds. A pod that is Pending but has no recorded
// PendingSince timestamp is treated as not yet exceeding the threshold,
// per DESIGN.md's Open Question decision on forbidPendingDuration.
func isPendingTooLong(w Workload, durationSeconds int64) bool {
	if w.Phase != PhasePending {
		return false
	}
	if w.PendingSince == 0 {
		return false
	}
	return nowUnix()-w.PendingSince > durationSeconds
}

// nowUnix is a seam so tests can supply deterministic time; production
// code always calls through to wall-clock time via the var below.
var nowUnix = defaultNowUnix

// DetectViolations returns the per-container violation records used by
// audit results and the admission webhook. Rules mirror Evaluate exactly;
// severity comes from severityOverrides, defaulting to medium.
func DetectViolations(w Workload, policy *govv1alpha1.PolicySpec) []Violation {
	c := resolveChecks(policy)
	overrides := severityOverridesOf(policy)

	var out []Violation
	for _, ctr := range w.Containers {
		if c.latestTag && HasLatestTag(ctr.Image) {
			out = append(out, Violation{
				PodName:       w.Name,
				ContainerName: ctr.Name,
				Type:          govv1alpha1.ViolationLatestTag,
				Severity:      overrides.LatestTag,
				Message:       fmt.Sprintf("container '%s' uses :latest or an untagged image", ctr.Name),
			})
		}
		if c.missingLiveness && !ctr.HasLivenessProbe {
			out = append(out, Violation{
				PodName:       w.Name,
				ContainerName: ctr.Name,
				Type:          govv1alpha1.ViolationMissingLiveness,
				Severity:      overrides.MissingLiveness,
				Message:       fmt.Sprintf("container '%s' has no liveness probe", ctr.Name),
			})
		}
		if c.missingReadiness && !ctr.HasReadinessProbe {
			out = append(out, Violation{
				PodName:       w.Name,
				ContainerName: ctr.Name,
				Type:          govv1alpha1.ViolationMissingReadiness,
				Severity:      overrides.MissingReadiness,
				Message:       fmt.Sprintf("container '%s' has no readiness probe", ctr.Name),
			})
		}
		if c.highRestarts && ctr.RestartCountKnown && ctr.RestartCount > c.maxRestartCount {
			out = append(out, Violation{
				PodName:       w.Name,
				ContainerName: ctr.Name,
				Type:          govv1alpha1.ViolationHighRestarts,
				Severity:      overrides.HighRestarts,
				Message:       fmt.Sprintf("container '%s' has restarted %d times, exceeding the threshold of %d", ctr.Name, ctr.RestartCount, c.maxRestartCount),
			})
		}
	}

	if c.pending && isPendingTooLong(w, c.pendingDuration) {
		out = append(out, Violation{
			PodName:  w.Name,
			Type:     govv1alpha1.ViolationPending,
			Severity: overrides.Pending,
			Message:  fmt.Sprintf("pod '%s' has been pending for more than %ds", w.Name, c.pendingDuration),
		})
	}

	return out
}

// AdmissionViolationTypes excludes the two violation kinds that require
// runtime data unavailable at admission time.
func AdmissionViolationTypes() map[govv1alpha1.ViolationType]bool {
	return map[govv1alpha1.ViolationType]bool{
		govv1alpha1.ViolationLatestTag:        true,
		govv1alpha1.ViolationMissingLiveness:  true,
		govv1alpha1.ViolationMissingReadiness: true,
	}
}

const defaultSeverity = govv1alpha1.SeverityMedium

type resolvedSeverities struct {
	LatestTag        govv1alpha1.Severity
	MissingLiveness  govv1alpha1.Severity
	MissingReadiness govv1alpha1.Severity
	HighRestarts     govv1alpha1.Severity
	Pending          govv1alpha1.Severity
}

func severityOverridesOf(policy *govv1alpha1.PolicySpec) resolvedSeverities {
	r := resolvedSeverities{
		LatestTag:        defaultSeverity,
		MissingLiveness:  defaultSeverity,
		MissingReadiness: defaultSeverity,
		HighRestarts:     defaultSeverity,
		Pending:          defaultSeverity,
	}
	if policy == nil || policy.SeverityOverrides == nil {
		return r
	}
	o := policy.SeverityOverrides
	if o.LatestTag != "" {
		r.LatestTag = o.LatestTag
	}
	if o.MissingLiveness != "" {
		r.MissingLiveness = o.MissingLiveness
	}
	if o.MissingReadiness != "" {
		r.MissingReadiness = o.MissingReadiness
	}
	if o.HighRestarts != "" {
		r.HighRestarts = o.HighRestarts
	}
	if o.Pending != "" {
		r.Pending = o.Pending
	}
	return r
}

// AddAggregate and SubtractAggregate implement the saturating arithmetic
// the watch controller uses to maintain its incremental per-namespace
// state.

func AddAggregate(a, b Aggregate) Aggregate {
	return Aggregate{
		LatestTag:        a.LatestTag + b.LatestTag,
		MissingLiveness:  a.MissingLiveness + b.MissingLiveness,
		MissingReadiness: a.MissingReadiness + b.MissingReadiness,
		HighRestarts:     a.HighRestarts + b.HighRestarts,
		Pending:          a.Pending + b.Pending,
		TotalPods:        a.TotalPods + b.TotalPods,
	}
}

func SubtractAggregate(a, b Aggregate) Aggregate {
	return Aggregate{
		LatestTag:        saturatingSub(a.LatestTag, b.LatestTag),
		MissingLiveness:  saturatingSub(a.MissingLiveness, b.MissingLiveness),
		MissingReadiness: saturatingSub(a.MissingReadiness, b.MissingReadiness),
		HighRestarts:     saturatingSub(a.HighRestarts, b.HighRestarts),
		Pending:          saturatingSub(a.Pending, b.Pending),
		TotalPods:        saturatingSub(a.TotalPods, b.TotalPods),
	}
}

func saturatingSub(a, b int64) int64 {
	if b >= a {
		return 0
	}
	return a - b
}

// Score computes the plain, severity-unaware health score used for
// cluster/namespace gauges: 100 minus the weighted penalty per pod,
// capped at 100. An aggregate with zero pods scores 100.
func Score(agg Aggregate, weights Weights) int32 {
	if agg.TotalPods == 0 {
		return 100
	}
	raw := weights.LatestTag*agg.LatestTag +
		weights.MissingLiveness*agg.MissingLiveness +
		weights.MissingReadiness*agg.MissingReadiness +
		weights.HighRestarts*agg.HighRestarts +
		weights.Pending*agg.Pending
	penalty := raw / agg.TotalPods
	if penalty > 100 {
		penalty = 100
	}
	return int32(100 - penalty)
}

// severityMultiplier weights a violation by how seriously a policy author
// has tagged it, used only by ScoreWithSeverity.
func severityMultiplier(s govv1alpha1.Severity) int64 {
	switch s {
	case govv1alpha1.SeverityCritical:
		return 3
	case govv1alpha1.SeverityHigh:
		return 2
	default:
		return 1
	}
}

// ScoreWithSeverity is the severity-weighted variant used for a Policy's
// own status.healthScore and its AuditResult: each violation type's
// contribution is multiplied by the severity assigned to it in the
// policy's severityOverrides (or the medium default) before the same
// division-and-cap arithmetic as Score. See SPEC_FULL.md §4.1 for why
// this coexists with the plain Score used by namespace/cluster gauges.
func ScoreWithSeverity(agg Aggregate, weights Weights, policy *govv1alpha1.PolicySpec) int32 {
	if agg.TotalPods == 0 {
		return 100
	}
	sev := severityOverridesOf(policy)
	raw := weights.LatestTag*agg.LatestTag*severityMultiplier(sev.LatestTag) +
		weights.MissingLiveness*agg.MissingLiveness*severityMultiplier(sev.MissingLiveness) +
		weights.MissingReadiness*agg.MissingReadiness*severityMultiplier(sev.MissingReadiness) +
		weights.HighRestarts*agg.HighRestarts*severityMultiplier(sev.HighRestarts) +
		weights.Pending*agg.Pending*severityMultiplier(sev.Pending)
	penalty := raw / agg.TotalPods
	if penalty > 100 {
		penalty = 100
	}
	return int32(100 - penalty)
}

// Classify maps a score to its band. Boundaries are the closed lower
// bound of each band: Healthy 80-100, Stable 60-79, Degraded 40-59,
// Critical 0-39.
func Classify(score int32) string {
	switch {
	case score >= 80:
		return "Healthy"
	case score >= 60:
		return "Stable"
	case score >= 40:
		return "Degraded"
	default:
		return "Critical"
	}
}

// systemNamespaceExplicitSet lists namespaces treated as system namespaces
// regardless of naming convention.
var systemNamespaceExplicitSet = map[string]bool{
	"cert-manager": true,
	"istio-system": true,
	"monitoring":   true,
	"argocd":       true,
}

// IsSystemNamespace is true for kube-system, kube-public,
// kube-node-lease, any name starting with "kube-", any name ending with
// "-system", and the explicit set above.
func IsSystemNamespace(name string) bool {
	if name == "kube-system" || name == "kube-public" || name == "kube-node-lease" {
		return true
	}
	if strings.HasPrefix(name, "kube-") {
		return true
	}
	if strings.HasSuffix(name, "-system") {
		return true
	}
	return systemNamespaceExplicitSet[name]
}
