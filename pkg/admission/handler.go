package admission

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/webhook/admission"

	govv1alpha1 "github.com/stochastic-io/governance-platform/api/v1alpha1"
	"github.com/stochastic-io/governance-platform/pkg/adapter"
	perrors "github.com/stochastic-io/governance-platform/pkg/errors"
	"github.com/stochastic-io/governance-platform/pkg/metrics"
)

// RequestTimeout is the fail-open budget: if the policy lookup doesn't
// complete within this window, the request is allowed.
const RequestTimeout = 2 * time.Second

// PolicyLookup resolves the single policy governing a namespace, or nil
// if none applies. Returning an error is itself treated as fail-open.
type PolicyLookup func(ctx context.Context, namespace string) (*govv1alpha1.PolicySpec, error)

// Handler wraps the pure Verdict function in controller-runtime's
// admission.Handler interface, with panic recovery and a hard timeout:
// the cluster must never be broken by this component being wrong or
// slow.
type Handler struct {
	Decoder admission.Decoder
	Lookup  PolicyLookup
	Log     logr.Logger
}

// Handle implements admission.Handler.
func (h *Handler) Handle(ctx context.Context, req admission.Request) (resp admission.Response) {
	defer func() {
		if r := recover(); r != nil {
			h.Log.Error(perrors.New(perrors.ClassPanic, "recovered panic in admission handler"), "failing open", "panic", r)
			metrics.WebhookRequestsTotal.WithLabelValues(string(req.Operation), "true").Inc()
			resp = admission.Allowed("failing open after internal panic")
		}
	}()

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	pod := &corev1.Pod{}
	if err := h.Decoder.Decode(req, pod); err != nil {
		h.Log.Error(err, "failing open: could not decode admission request")
		metrics.WebhookRequestsTotal.WithLabelValues(string(req.Operation), "true").Inc()
		return admission.Allowed("failing open: could not decode request")
	}

	policySpec, err := h.lookupWithDeadline(ctx, pod.Namespace)
	if err != nil {
		h.Log.Error(err, "failing open: policy lookup failed", "namespace", pod.Namespace)
		metrics.WebhookRequestsTotal.WithLabelValues(string(req.Operation), "true").Inc()
		return admission.Allowed("failing open: policy lookup error")
	}

	workload := adapter.FromPod(pod)
	decision := Verdict(workload, policySpec, minBlockingSeverityOf(policySpec))

	metrics.WebhookRequestDurationSeconds.Observe(time.Since(start).Seconds())
	metrics.WebhookRequestsTotal.WithLabelValues(string(req.Operation), boolLabel(decision.Allowed)).Inc()
	if !decision.Allowed {
		for _, t := range decision.ViolationTypes {
			metrics.WebhookDenialsTotal.WithLabelValues(pod.Namespace, string(t)).Inc()
		}
		return admission.Denied(decision.Message())
	}
	return admission.Allowed("")
}

func (h *Handler) lookupWithDeadline(ctx context.Context, namespace string) (*govv1alpha1.PolicySpec, error) {
	type result struct {
		spec *govv1alpha1.PolicySpec
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		spec, err := h.Lookup(ctx, namespace)
		ch <- result{spec, err}
	}()
	select {
	case r := <-ch:
		return r.spec, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func minBlockingSeverityOf(spec *govv1alpha1.PolicySpec) govv1alpha1.Severity {
	if spec == nil || spec.MinBlockingSeverity == "" {
		return govv1alpha1.SeverityHigh
	}
	return spec.MinBlockingSeverity
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
