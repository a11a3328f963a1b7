package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// EnforcementMode selects whether a Policy only reports violations or also
// mutates offending parent workloads.
type EnforcementMode string

const (
	EnforcementModeAudit   EnforcementMode = "audit"
	EnforcementModeEnforce EnforcementMode = "enforce"
)

// Severity ranks how serious a violation is, used both for reporting and
// for the admission blocking threshold.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// ViolationType enumerates the facts the governance engine can detect.
type ViolationType string

const (
	ViolationLatestTag        ViolationType = "latestTag"
	ViolationMissingLiveness  ViolationType = "missingLiveness"
	ViolationMissingReadiness ViolationType = "missingReadiness"
	ViolationHighRestarts     ViolationType = "highRestarts"
	ViolationPending          ViolationType = "pending"
)

// SeverityOverrides lets a Policy author assign a severity to each
// violation type individually. Unset entries default to medium.
type SeverityOverrides struct {
	// +optional
	LatestTag Severity `json:"latestTag,omitempty" yaml:"latestTag,omitempty"`
	// +optional
	MissingLiveness Severity `json:"missingLiveness,omitempty" yaml:"missingLiveness,omitempty"`
	// +optional
	MissingReadiness Severity `json:"missingReadiness,omitempty" yaml:"missingReadiness,omitempty"`
	// +optional
	HighRestarts Severity `json:"highRestarts,omitempty" yaml:"highRestarts,omitempty"`
	// +optional
	Pending Severity `json:"pending,omitempty" yaml:"pending,omitempty"`
}

// DefaultProbeConfig is the TCP probe injected into containers missing one,
// when the owning Policy is in enforce mode.
type DefaultProbeConfig struct {
	// TCPPort is the probe's target port. Falls back to the container's
	// first declared port, then 8080, when unset.
	// +optional
	TCPPort int32 `json:"tcpPort,omitempty" yaml:"tcpPort,omitempty"`
	// +optional
	InitialDelaySeconds int32 `json:"initialDelaySeconds,omitempty" yaml:"initialDelaySeconds,omitempty"`
	// +optional
	PeriodSeconds int32 `json:"periodSeconds,omitempty" yaml:"periodSeconds,omitempty"`
}

// DefaultResourceConfig is the requests/limits block injected into
// containers missing resource constraints, when enforcing.
type DefaultResourceConfig struct {
	// +optional
	CPURequest string `json:"cpuRequest,omitempty" yaml:"cpuRequest,omitempty"`
	// +optional
	CPULimit string `json:"cpuLimit,omitempty" yaml:"cpuLimit,omitempty"`
	// +optional
	MemoryRequest string `json:"memoryRequest,omitempty" yaml:"memoryRequest,omitempty"`
	// +optional
	MemoryLimit string `json:"memoryLimit,omitempty" yaml:"memoryLimit,omitempty"`
}

// PolicySpec declares which compliance checks apply to workloads in this
// Policy's namespace, and how violations should be handled.
//
// Every field is optional; an absent field means "skip this check." Newer
// fields must follow the same rule so that a Policy written for a newer
// version of this API keeps working, minus the newer behavior, on an
// older build of the operator.
type PolicySpec struct {
	// ForbidLatestTag flags any container whose image reference ends in
	// ":latest" or carries no tag at all.
	// +optional
	ForbidLatestTag *bool `json:"forbidLatestTag,omitempty" yaml:"forbidLatestTag,omitempty"`
	// +optional
	RequireLivenessProbe *bool `json:"requireLivenessProbe,omitempty" yaml:"requireLivenessProbe,omitempty"`
	// +optional
	RequireReadinessProbe *bool `json:"requireReadinessProbe,omitempty" yaml:"requireReadinessProbe,omitempty"`
	// MaxRestartCount flags any container whose restart count strictly
	// exceeds this threshold.
	// +optional
	MaxRestartCount *int32 `json:"maxRestartCount,omitempty" yaml:"maxRestartCount,omitempty"`
	// ForbidPendingDuration flags any pod Pending for longer than this
	// many seconds.
	// +optional
	ForbidPendingDuration *int64 `json:"forbidPendingDuration,omitempty" yaml:"forbidPendingDuration,omitempty"`
	// EnforcementMode is "audit" (default) or "enforce".
	// +optional
	// +kubebuilder:validation:Enum=audit;enforce
	EnforcementMode EnforcementMode `json:"enforcementMode,omitempty" yaml:"enforcementMode,omitempty"`
	// +optional
	DefaultProbe *DefaultProbeConfig `json:"defaultProbe,omitempty" yaml:"defaultProbe,omitempty"`
	// +optional
	DefaultResources *DefaultResourceConfig `json:"defaultResources,omitempty" yaml:"defaultResources,omitempty"`
	// +optional
	SeverityOverrides *SeverityOverrides `json:"severityOverrides,omitempty" yaml:"severityOverrides,omitempty"`
	// MinBlockingSeverity is the lowest severity that causes admission to
	// deny a workload. Defaults to "high".
	// +optional
	// +kubebuilder:validation:Enum=critical;high;medium;low
	MinBlockingSeverity Severity `json:"minBlockingSeverity,omitempty" yaml:"minBlockingSeverity,omitempty"`
	// AuditResultRetention caps how many AuditResult records are kept for
	// this policy. Defaults to 10.
	// +optional
	AuditResultRetention *int32 `json:"auditResultRetention,omitempty" yaml:"auditResultRetention,omitempty"`
}

// PolicyStatus is the operator-owned status sub-resource. It is never
// written through the same patch path as spec.
type PolicyStatus struct {
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty" yaml:"observedGeneration,omitempty"`
	// +optional
	Healthy bool `json:"healthy,omitempty" yaml:"healthy,omitempty"`
	// HealthScore is in [0,100].
	// +optional
	HealthScore int32 `json:"healthScore,omitempty" yaml:"healthScore,omitempty"`
	// +optional
	Violations int32 `json:"violations,omitempty" yaml:"violations,omitempty"`
	// +optional
	LastEvaluated metav1.Time `json:"lastEvaluated,omitempty" yaml:"lastEvaluated,omitempty"`
	// +optional
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	// +optional
	EnforcementMode EnforcementMode `json:"enforcementMode,omitempty" yaml:"enforcementMode,omitempty"`
	// +optional
	RemediationsApplied int32 `json:"remediationsApplied,omitempty" yaml:"remediationsApplied,omitempty"`
	// +optional
	RemediationsFailed int32 `json:"remediationsFailed,omitempty" yaml:"remediationsFailed,omitempty"`
	// RemediatedWorkloads is de-duplicated by (kind, namespace, name),
	// stored as "<kind>/<namespace>/<name>".
	// +optional
	RemediatedWorkloads []string `json:"remediatedWorkloads,omitempty" yaml:"remediatedWorkloads,omitempty"`
}

// +genclient
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:path=policies,scope="Namespaced",shortName=gpol
// +kubebuilder:printcolumn:name="Mode",type="string",JSONPath=".spec.enforcementMode"
// +kubebuilder:printcolumn:name="Healthy",type="boolean",JSONPath=".status.healthy"
// +kubebuilder:printcolumn:name="Score",type="integer",JSONPath=".status.healthScore"

// Policy declares which compliance checks apply to workloads in its
// namespace and how they are enforced.
type Policy struct {
	metav1.TypeMeta   `json:",inline" yaml:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	Spec PolicySpec `json:"spec" yaml:"spec"`
	// +optional
	Status PolicyStatus `json:"status,omitempty" yaml:"status,omitempty"`
}

// IsReady reports whether the policy has been evaluated at least once.
func (p *Policy) IsReady() bool {
	return p.Status.ObservedGeneration > 0
}

// EffectiveMode returns the policy's enforcement mode, defaulting to audit.
func (p *Policy) EffectiveMode() EnforcementMode {
	if p.Spec.EnforcementMode == "" {
		return EnforcementModeAudit
	}
	return p.Spec.EnforcementMode
}

// Validate implements programmatic validation of the spec beyond JSON
// schema shape.
func (p *Policy) Validate() field.ErrorList {
	return ValidatePolicySpec(field.NewPath("spec"), &p.Spec)
}

// ValidatePolicySpec checks field-level constraints the wire schema cannot
// express on its own.
func ValidatePolicySpec(fldPath *field.Path, spec *PolicySpec) (errs field.ErrorList) {
	if spec.MaxRestartCount != nil && *spec.MaxRestartCount < 0 {
		errs = append(errs, field.Invalid(fldPath.Child("maxRestartCount"), *spec.MaxRestartCount, "must be >= 0"))
	}
	if spec.ForbidPendingDuration != nil && *spec.ForbidPendingDuration < 0 {
		errs = append(errs, field.Invalid(fldPath.Child("forbidPendingDuration"), *spec.ForbidPendingDuration, "must be >= 0"))
	}
	if spec.AuditResultRetention != nil && *spec.AuditResultRetention < 1 {
		errs = append(errs, field.Invalid(fldPath.Child("auditResultRetention"), *spec.AuditResultRetention, "must be >= 1"))
	}
	if spec.DefaultProbe != nil && spec.DefaultProbe.TCPPort != 0 {
		if spec.DefaultProbe.TCPPort < 1 || spec.DefaultProbe.TCPPort > 65535 {
			errs = append(errs, field.Invalid(fldPath.Child("defaultProbe").Child("tcpPort"), spec.DefaultProbe.TCPPort, "must be between 1 and 65535"))
		}
	}
	switch spec.EnforcementMode {
	case "", EnforcementModeAudit, EnforcementModeEnforce:
	default:
		errs = append(errs, field.NotSupported(fldPath.Child("enforcementMode"), spec.EnforcementMode, []string{string(EnforcementModeAudit), string(EnforcementModeEnforce)}))
	}
	return errs
}

// PolicyList is a list of Policy instances.
//
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
type PolicyList struct {
	metav1.TypeMeta `json:",inline" yaml:",inline"`
	metav1.ListMeta `json:"metadata" yaml:"metadata"`
	Items           []Policy `json:"items" yaml:"items"`
}
