package v1alpha1

import (
	runtime "k8s.io/apimachinery/pkg/runtime"
)

// DeepCopyInto copies all properties of this object into another object of
// the same type that is provided as a pointer.
func (in *SeverityOverrides) DeepCopyInto(out *SeverityOverrides) {
	*out = *in
}

// DeepCopy creates a new SeverityOverrides by deep copying the receiver.
func (in *SeverityOverrides) DeepCopy() *SeverityOverrides {
	if in == nil {
		return nil
	}
	out := new(SeverityOverrides)
	in.DeepCopyInto(out)
	return out
}

func (in *DefaultProbeConfig) DeepCopyInto(out *DefaultProbeConfig) {
	*out = *in
}

func (in *DefaultProbeConfig) DeepCopy() *DefaultProbeConfig {
	if in == nil {
		return nil
	}
	out := new(DefaultProbeConfig)
	in.DeepCopyInto(out)
	return out
}

func (in *DefaultResourceConfig) DeepCopyInto(out *DefaultResourceConfig) {
	*out = *in
}

func (in *DefaultResourceConfig) DeepCopy() *DefaultResourceConfig {
	if in == nil {
		return nil
	}
	out := new(DefaultResourceConfig)
	in.DeepCopyInto(out)
	return out
}

func (in *PolicySpec) DeepCopyInto(out *PolicySpec) {
	*out = *in
	if in.ForbidLatestTag != nil {
		out.ForbidLatestTag = new(bool)
		*out.ForbidLatestTag = *in.ForbidLatestTag
	}
	if in.RequireLivenessProbe != nil {
		out.RequireLivenessProbe = new(bool)
		*out.RequireLivenessProbe = *in.RequireLivenessProbe
	}
	if in.RequireReadinessProbe != nil {
		out.RequireReadinessProbe = new(bool)
		*out.RequireReadinessProbe = *in.RequireReadinessProbe
	}
	if in.MaxRestartCount != nil {
		out.MaxRestartCount = new(int32)
		*out.MaxRestartCount = *in.MaxRestartCount
	}
	if in.ForbidPendingDuration != nil {
		out.ForbidPendingDuration = new(int64)
		*out.ForbidPendingDuration = *in.ForbidPendingDuration
	}
	if in.DefaultProbe != nil {
		out.DefaultProbe = in.DefaultProbe.DeepCopy()
	}
	if in.DefaultResources != nil {
		out.DefaultResources = in.DefaultResources.DeepCopy()
	}
	if in.SeverityOverrides != nil {
		out.SeverityOverrides = in.SeverityOverrides.DeepCopy()
	}
	if in.AuditResultRetention != nil {
		out.AuditResultRetention = new(int32)
		*out.AuditResultRetention = *in.AuditResultRetention
	}
}

func (in *PolicySpec) DeepCopy() *PolicySpec {
	if in == nil {
		return nil
	}
	out := new(PolicySpec)
	in.DeepCopyInto(out)
	return out
}

func (in *PolicyStatus) DeepCopyInto(out *PolicyStatus) {
	*out = *in
	in.LastEvaluated.DeepCopyInto(&out.LastEvaluated)
	if in.RemediatedWorkloads != nil {
		out.RemediatedWorkloads = make([]string, len(in.RemediatedWorkloads))
		copy(out.RemediatedWorkloads, in.RemediatedWorkloads)
	}
}

func (in *PolicyStatus) DeepCopy() *PolicyStatus {
	if in == nil {
		return nil
	}
	out := new(PolicyStatus)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyInto copies all properties of this object into another object of
// the same type that is provided as a pointer.
func (in *Policy) DeepCopyInto(out *Policy) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
	in.Status.DeepCopyInto(&out.Status)
}

// DeepCopy creates a new Policy by deep copying the receiver.
func (in *Policy) DeepCopy() *Policy {
	if in == nil {
		return nil
	}
	out := new(Policy)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject implements runtime.Object.
func (in *Policy) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

func (in *PolicyList) DeepCopyInto(out *PolicyList) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		out.Items = make([]Policy, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

func (in *PolicyList) DeepCopy() *PolicyList {
	if in == nil {
		return nil
	}
	out := new(PolicyList)
	in.DeepCopyInto(out)
	return out
}

func (in *PolicyList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

func (in *Violation) DeepCopyInto(out *Violation) {
	*out = *in
}

func (in *Violation) DeepCopy() *Violation {
	if in == nil {
		return nil
	}
	out := new(Violation)
	in.DeepCopyInto(out)
	return out
}

func (in *AuditResultSpec) DeepCopyInto(out *AuditResultSpec) {
	*out = *in
	in.Timestamp.DeepCopyInto(&out.Timestamp)
	if in.Violations != nil {
		out.Violations = make([]Violation, len(in.Violations))
		copy(out.Violations, in.Violations)
	}
}

func (in *AuditResultSpec) DeepCopy() *AuditResultSpec {
	if in == nil {
		return nil
	}
	out := new(AuditResultSpec)
	in.DeepCopyInto(out)
	return out
}

func (in *AuditResult) DeepCopyInto(out *AuditResult) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
}

func (in *AuditResult) DeepCopy() *AuditResult {
	if in == nil {
		return nil
	}
	out := new(AuditResult)
	in.DeepCopyInto(out)
	return out
}

func (in *AuditResult) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

func (in *AuditResultList) DeepCopyInto(out *AuditResultList) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		out.Items = make([]AuditResult, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

func (in *AuditResultList) DeepCopy() *AuditResultList {
	if in == nil {
		return nil
	}
	out := new(AuditResultList)
	in.DeepCopyInto(out)
	return out
}

func (in *AuditResultList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}
