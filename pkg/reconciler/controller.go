package reconciler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	govv1alpha1 "github.com/stochastic-io/governance-platform/api/v1alpha1"
	"github.com/stochastic-io/governance-platform/pkg/adapter"
	govclient "github.com/stochastic-io/governance-platform/pkg/client"
	"github.com/stochastic-io/governance-platform/pkg/enforcement"
	"github.com/stochastic-io/governance-platform/pkg/errors"
	"github.com/stochastic-io/governance-platform/pkg/governance"
	"github.com/stochastic-io/governance-platform/pkg/metrics"
	"github.com/stochastic-io/governance-platform/pkg/policy"
)

// RequeuePeriod is the default periodic re-evaluation interval for a
// Policy whose spec hasn't changed.
const RequeuePeriod = 30 * time.Second

// Controller drives the reconcile operator's state machine over Policy
// resources.
type Controller struct {
	Gov         *govclient.Clientset
	KubeClient  kubernetes.Interface
	Log         logr.Logger
	ClusterName string

	// firstReconcileDone flips readyz from 503 to 200.
	firstReconcileDone bool
}

// Ready reports whether at least one reconcile has completed, wired into
// the reconcile operator's /readyz handler.
func (c *Controller) Ready() bool {
	return c.firstReconcileDone
}

// Reconcile drives the get, drain-or-evaluate state machine for a single
// (namespace, name) Policy key.
func (c *Controller) Reconcile(ctx context.Context, logger logr.Logger, namespace, name string) error {
	metrics.ReconcileTotal.Inc()
	start := time.Now()
	defer func() { metrics.ReconcileDurationSeconds.Observe(time.Since(start).Seconds()) }()

	pol, err := c.Gov.Policies(namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		metrics.ReconcileErrorsTotal.Inc()
		return errors.Wrap(errors.ClassifyAPIError(err), err, "getting policy")
	}

	if pol.DeletionTimestamp != nil {
		return c.drain(ctx, logger, pol)
	}

	if !ContainsFinalizer(pol, CleanupFinalizer) {
		AddFinalizer(pol, CleanupFinalizer)
		updated, err := c.Gov.Policies(namespace).Update(ctx, pol, metav1.UpdateOptions{})
		if err != nil {
			metrics.ReconcileErrorsTotal.Inc()
			return errors.Wrap(errors.ClassifyAPIError(err), err, "adding cleanup finalizer")
		}
		pol = updated
	}

	if err := c.evaluate(ctx, logger, pol); err != nil {
		metrics.ReconcileErrorsTotal.Inc()
		return err
	}
	c.firstReconcileDone = true
	return nil
}

func (c *Controller) evaluate(ctx context.Context, logger logr.Logger, pol *govv1alpha1.Policy) error {
	spec := policy.ApplyDefaults(pol.Spec)

	pods, err := c.KubeClient.CoreV1().Pods(pol.Namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return errors.Wrap(errors.ClassifyAPIError(err), err, "listing workloads")
	}
	ns, err := c.KubeClient.CoreV1().Namespaces().Get(ctx, pol.Namespace, metav1.GetOptions{})
	var nsLabels map[string]string
	if err == nil {
		nsLabels = ns.Labels
	}

	var agg governance.Aggregate
	var violations []governance.Violation
	var workloads []governance.Workload
	for _, pod := range pods.Items {
		w := adapter.FromPod(&pod)
		agg = governance.AddAggregate(agg, governance.Evaluate(w, &spec))
		violations = append(violations, governance.DetectViolations(w, &spec)...)
		workloads = append(workloads, w)
	}

	score := governance.ScoreWithSeverity(agg, governance.DefaultWeights, &spec)

	var applied, failed int32
	remediated := map[string]bool{}
	if spec.EnforcementMode == govv1alpha1.EnforcementModeEnforce {
		plans := enforcement.PlanAll(workloads, nsLabels, &spec)
		for _, plan := range plans {
			if err := c.applyPlan(ctx, logger, plan, &spec); err != nil {
				logger.Error(err, "remediation failed", "parent", plan.Parent.Key())
				failed++
				metrics.EnforcementFailed.WithLabelValues(pol.Namespace, pol.Name).Inc()
				continue
			}
			applied++
			metrics.EnforcementApplied.WithLabelValues(pol.Namespace, pol.Name).Inc()
			key := fmt.Sprintf("%s/%s/%s", plan.Parent.Kind, plan.Parent.Namespace, plan.Parent.Name)
			remediated[key] = true
		}
	}

	now := metav1.Now()
	audit := policy.BuildAuditResult(pol.Name, pol.Namespace, c.ClusterName, now, agg, score, violations)
	if _, err := c.Gov.AuditResults(pol.Namespace).Create(ctx, audit, metav1.CreateOptions{}); err != nil {
		return errors.Wrap(errors.ClassifyAPIError(err), err, "creating audit result")
	}
	metrics.AuditResultsTotal.WithLabelValues(pol.Namespace, pol.Name).Inc()

	if err := c.pruneAuditResults(ctx, pol.Namespace, pol.Name, policy.EffectiveRetention(&spec)); err != nil {
		logger.Error(err, "pruning old audit results")
	}

	pol.Status.ObservedGeneration = pol.Generation
	pol.Status.HealthScore = score
	pol.Status.Healthy = score >= 80
	pol.Status.Violations = int32(len(violations))
	pol.Status.LastEvaluated = now
	pol.Status.EnforcementMode = spec.EnforcementMode
	pol.Status.RemediationsApplied = applied
	pol.Status.RemediationsFailed = failed
	existing := make(map[string]bool, len(pol.Status.RemediatedWorkloads))
	for _, k := range pol.Status.RemediatedWorkloads {
		existing[k] = true
	}
	for k := range remediated {
		if !existing[k] {
			pol.Status.RemediatedWorkloads = append(pol.Status.RemediatedWorkloads, k)
		}
	}
	pol.Status.Message = fmt.Sprintf("evaluated %d workloads, %s", len(pods.Items), governance.Classify(score))

	if _, err := c.Gov.Policies(pol.Namespace).UpdateStatus(ctx, pol, metav1.UpdateOptions{}); err != nil {
		return errors.Wrap(errors.ClassifyAPIError(err), err, "patching status")
	}

	metrics.PolicyViolationsTotal.WithLabelValues(pol.Namespace, pol.Name).Set(float64(len(violations)))
	metrics.PolicyHealthScore.WithLabelValues(pol.Namespace, pol.Name).Set(float64(score))
	modeValue := 0.0
	if spec.EnforcementMode == govv1alpha1.EnforcementModeEnforce {
		modeValue = 1.0
	}
	metrics.EnforcementMode.WithLabelValues(pol.Namespace, pol.Name).Set(modeValue)
	bySeverity := severityTotals(violations)
	for sev, count := range bySeverity {
		metrics.ViolationsBySeverity.WithLabelValues(pol.Namespace, string(sev)).Set(float64(count))
	}

	return nil
}

// RecordPermanentFailure writes a Status.Message describing a permanently
// failed reconcile so the failure is visible on the Policy itself rather
// than only in operator logs; it is wired as the queue's onPermanentFailure
// hook and runs outside the retry loop, so it deliberately does not return
// an error for the queue to act on. A concurrent delete of the Policy is
// not itself an error here: there is nothing left to annotate.
func (c *Controller) RecordPermanentFailure(ctx context.Context, logger logr.Logger, namespace, name string, failErr error) {
	pol, err := c.Gov.Policies(namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return
	}
	if err != nil {
		logger.Error(err, "fetching policy to record permanent failure", "namespace", namespace, "name", name)
		return
	}
	pol.Status.Message = fmt.Sprintf("reconcile failed permanently: %s", failErr.Error())
	if _, err := c.Gov.Policies(namespace).UpdateStatus(ctx, pol, metav1.UpdateOptions{}); err != nil {
		logger.Error(err, "writing permanent-failure status", "namespace", namespace, "name", name)
	}
}

func severityTotals(violations []governance.Violation) map[govv1alpha1.Severity]int {
	out := map[govv1alpha1.Severity]int{}
	for _, v := range violations {
		out[v.Severity]++
	}
	return out
}

// applyPlan fetches the parent's current container list so BuildPatch can
// address each by name, then applies the strategic merge patch.
func (c *Controller) applyPlan(ctx context.Context, logger logr.Logger, plan enforcement.Plan, spec *govv1alpha1.PolicySpec) error {
	containers, err := c.parentContainers(ctx, plan)
	if err != nil {
		return errors.Wrap(errors.ClassRemediationFailure, err, "fetching parent containers")
	}
	patch, err := enforcement.BuildPatch(plan, containers, spec.DefaultProbe, spec.DefaultResources)
	if err != nil {
		return errors.Wrap(errors.ClassRemediationFailure, err, "building patch")
	}
	if err := enforcement.Apply(ctx, c.KubeClient, plan, patch); err != nil {
		return errors.Wrap(errors.ClassRemediationFailure, err, "applying patch")
	}
	return nil
}

func (c *Controller) parentContainers(ctx context.Context, plan enforcement.Plan) ([]corev1.Container, error) {
	switch plan.Parent.Kind {
	case enforcement.ParentDeployment:
		obj, err := c.KubeClient.AppsV1().Deployments(plan.Parent.Namespace).Get(ctx, plan.Parent.Name, metav1.GetOptions{})
		if err != nil {
			return nil, err
		}
		return obj.Spec.Template.Spec.Containers, nil
	case enforcement.ParentStatefulSet:
		obj, err := c.KubeClient.AppsV1().StatefulSets(plan.Parent.Namespace).Get(ctx, plan.Parent.Name, metav1.GetOptions{})
		if err != nil {
			return nil, err
		}
		return obj.Spec.Template.Spec.Containers, nil
	case enforcement.ParentDaemonSet:
		obj, err := c.KubeClient.AppsV1().DaemonSets(plan.Parent.Namespace).Get(ctx, plan.Parent.Name, metav1.GetOptions{})
		if err != nil {
			return nil, err
		}
		return obj.Spec.Template.Spec.Containers, nil
	default:
		return nil, fmt.Errorf("unsupported parent kind %q", plan.Parent.Kind)
	}
}

// pruneAuditResults keeps at most retention AuditResult records for a
// policy, deleting the oldest by creation timestamp.
func (c *Controller) pruneAuditResults(ctx context.Context, namespace, policyName string, retention int32) error {
	list, err := c.Gov.AuditResults(namespace).List(ctx, metav1.ListOptions{LabelSelector: "policy=" + policyName})
	if err != nil {
		return err
	}
	items := list.Items
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreationTimestamp.After(items[j].CreationTimestamp.Time)
	})
	if int32(len(items)) <= retention {
		return nil
	}
	for _, stale := range items[retention:] {
		if err := c.Gov.AuditResults(namespace).Delete(ctx, stale.Name, metav1.DeleteOptions{}); err != nil && !apierrors.IsNotFound(err) {
			return err
		}
	}
	return nil
}

// drain handles a Policy with a deletionTimestamp set: remove this
// operator's metric labels, prune every AuditResult belonging to it, and
// remove the finalizer so the API server can finish deleting it.
func (c *Controller) drain(ctx context.Context, logger logr.Logger, pol *govv1alpha1.Policy) error {
	metrics.PolicyViolationsTotal.DeleteLabelValues(pol.Namespace, pol.Name)
	metrics.PolicyHealthScore.DeleteLabelValues(pol.Namespace, pol.Name)
	metrics.EnforcementMode.DeleteLabelValues(pol.Namespace, pol.Name)

	list, err := c.Gov.AuditResults(pol.Namespace).List(ctx, metav1.ListOptions{LabelSelector: "policy=" + pol.Name})
	if err != nil {
		return errors.Wrap(errors.ClassifyAPIError(err), err, "listing audit results for drain")
	}
	for _, a := range list.Items {
		if err := c.Gov.AuditResults(pol.Namespace).Delete(ctx, a.Name, metav1.DeleteOptions{}); err != nil && !apierrors.IsNotFound(err) {
			logger.Error(err, "deleting audit result during drain", "auditResult", a.Name)
		}
	}

	if ContainsFinalizer(pol, CleanupFinalizer) {
		RemoveFinalizer(pol, CleanupFinalizer)
		if _, err := c.Gov.Policies(pol.Namespace).Update(ctx, pol, metav1.UpdateOptions{}); err != nil {
			return errors.Wrap(errors.ClassifyAPIError(err), err, "removing cleanup finalizer")
		}
	}
	return nil
}
