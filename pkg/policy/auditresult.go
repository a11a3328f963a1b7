package policy

import (
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	govv1alpha1 "github.com/stochastic-io/governance-platform/api/v1alpha1"
	"github.com/stochastic-io/governance-platform/pkg/governance"
)

// BuildAuditResult assembles the AuditResult record for one evaluation of
// a policy. now is passed in rather than read from the clock so callers
// control the exact name and recorded timestamp.
func BuildAuditResult(policyName, namespace, clusterName string, now metav1.Time, agg governance.Aggregate, score int32, violations []governance.Violation) *govv1alpha1.AuditResult {
	out := &govv1alpha1.AuditResult{
		ObjectMeta: metav1.ObjectMeta{
			Name:      AuditResultName(policyName, now),
			Namespace: namespace,
			Labels: map[string]string{
				"policy": policyName,
			},
		},
		Spec: govv1alpha1.AuditResultSpec{
			PolicyName:      policyName,
			ClusterName:     clusterName,
			Timestamp:       now,
			HealthScore:     score,
			TotalViolations: int32(len(violations)),
			TotalPods:       int32(agg.TotalPods),
			Classification:  governance.Classify(score),
		},
	}
	for _, v := range violations {
		out.Spec.Violations = append(out.Spec.Violations, govv1alpha1.Violation{
			PodName:       v.PodName,
			ContainerName: v.ContainerName,
			Type:          v.Type,
			Severity:      v.Severity,
			Message:       v.Message,
		})
	}
	return out
}

// AuditResultName returns the "<policy-name>-audit-<epoch-seconds>" name.
func AuditResultName(policyName string, at metav1.Time) string {
	return fmt.Sprintf("%s-audit-%d", policyName, at.Unix())
}
