package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Violation is a single non-compliant fact about a container or pod.
type Violation struct {
	PodName string `json:"podName" yaml:"podName"`
	// +optional
	ContainerName string        `json:"containerName,omitempty" yaml:"containerName,omitempty"`
	Type          ViolationType `json:"violationType" yaml:"violationType"`
	Severity      Severity      `json:"severity" yaml:"severity"`
	Message       string        `json:"message" yaml:"message"`
}

// AuditResultSpec records one evaluation of a policy. Immutable after
// creation.
type AuditResultSpec struct {
	PolicyName string `json:"policyName" yaml:"policyName"`
	// ClusterName optionally tags the result for consumers that aggregate
	// across multiple independent clusters. The governance platform
	// itself never reads this field back; it only ever writes its own
	// configured cluster name here.
	// +optional
	ClusterName string      `json:"clusterName,omitempty" yaml:"clusterName,omitempty"`
	Timestamp   metav1.Time `json:"timestamp" yaml:"timestamp"`
	// +optional
	HealthScore int32 `json:"healthScore,omitempty" yaml:"healthScore,omitempty"`
	// +optional
	TotalViolations int32 `json:"totalViolations,omitempty" yaml:"totalViolations,omitempty"`
	// +optional
	TotalPods int32 `json:"totalPods,omitempty" yaml:"totalPods,omitempty"`
	// +optional
	Classification string `json:"classification,omitempty" yaml:"classification,omitempty"`
	// +optional
	Violations []Violation `json:"violations,omitempty" yaml:"violations,omitempty"`
}

// +genclient
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
// +kubebuilder:object:root=true
// +kubebuilder:resource:path=auditresults,scope="Namespaced",shortName=gaudit
// +kubebuilder:printcolumn:name="Policy",type="string",JSONPath=".spec.policyName"
// +kubebuilder:printcolumn:name="Score",type="integer",JSONPath=".spec.healthScore"
// +kubebuilder:printcolumn:name="Classification",type="string",JSONPath=".spec.classification"

// AuditResult records a single point-in-time evaluation of a Policy. It
// has no status sub-resource: once created, it is never updated, only
// eventually garbage-collected by the operator's retention policy.
type AuditResult struct {
	metav1.TypeMeta   `json:",inline" yaml:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	Spec AuditResultSpec `json:"spec" yaml:"spec"`
}

// AuditResultList is a list of AuditResult instances.
//
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
type AuditResultList struct {
	metav1.TypeMeta `json:",inline" yaml:",inline"`
	metav1.ListMeta `json:"metadata" yaml:"metadata"`
	Items           []AuditResult `json:"items" yaml:"items"`
}
