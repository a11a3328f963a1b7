// Package metrics is the process-wide Prometheus registry shared by all
// three control planes, instrumenting exactly the metrics named below and
// nothing else.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the process-global registry every binary registers against
// and every /metrics listener serves from.
var Registry = prometheus.NewRegistry()

var (
	ClusterHealthScore = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cluster_health_score",
		Help: "Unweighted mean health score across non-empty non-system namespaces.",
	})

	NamespaceHealthScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "namespace_health_score",
		Help: "Health score of a single namespace's tracked workloads.",
	}, []string{"namespace"})

	PodEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pod_events_total",
		Help: "Pod watch events processed by the watch controller.",
	}, []string{"op"})

	PodsTracked = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pods_tracked",
		Help: "Number of pods currently reflected in the watch controller's aggregate state.",
	})

	ReconcileTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reconcile_total",
		Help: "Policy reconcile invocations.",
	})

	ReconcileErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reconcile_errors_total",
		Help: "Policy reconcile invocations that failed.",
	})

	ReconcileDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reconcile_duration_seconds",
		Help:    "Duration of a single policy reconcile invocation.",
		Buckets: prometheus.DefBuckets,
	})

	PolicyViolationsTotal = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "policy_violations_total",
		Help: "Violation count from the most recent evaluation of a policy.",
	}, []string{"namespace", "policy"})

	PolicyHealthScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "policy_health_score",
		Help: "Health score from the most recent evaluation of a policy.",
	}, []string{"namespace", "policy"})

	EnforcementApplied = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enforcement_applied_total",
		Help: "Remediation patches successfully applied.",
	}, []string{"namespace", "policy"})

	EnforcementFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enforcement_failed_total",
		Help: "Remediation patches that failed to apply.",
	}, []string{"namespace", "policy"})

	EnforcementMode = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "enforcement_mode",
		Help: "1 if the policy's enforcement mode is enforce, 0 if audit.",
	}, []string{"namespace", "policy"})

	ViolationsBySeverity = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "violations_by_severity",
		Help: "Violation count from the most recent evaluation, by severity.",
	}, []string{"namespace", "severity"})

	AuditResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_results_total",
		Help: "AuditResult records created.",
	}, []string{"namespace", "policy"})

	WebhookRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_requests_total",
		Help: "Admission requests handled, by operation and outcome.",
	}, []string{"operation", "allowed"})

	WebhookDenialsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_denials_total",
		Help: "Admission requests denied, by namespace and violation type.",
	}, []string{"namespace", "violation"})

	WebhookRequestDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "webhook_request_duration_seconds",
		Help:    "Duration of admission request handling.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	Registry.MustRegister(
		ClusterHealthScore,
		NamespaceHealthScore,
		PodEventsTotal,
		PodsTracked,
		ReconcileTotal,
		ReconcileErrorsTotal,
		ReconcileDurationSeconds,
		PolicyViolationsTotal,
		PolicyHealthScore,
		EnforcementApplied,
		EnforcementFailed,
		EnforcementMode,
		ViolationsBySeverity,
		AuditResultsTotal,
		WebhookRequestsTotal,
		WebhookDenialsTotal,
		WebhookRequestDurationSeconds,
	)
}
