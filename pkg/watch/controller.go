package watch

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes"

	govv1alpha1 "github.com/stochastic-io/governance-platform/api/v1alpha1"
	"github.com/stochastic-io/governance-platform/pkg/adapter"
	"github.com/stochastic-io/governance-platform/pkg/governance"
	"github.com/stochastic-io/governance-platform/pkg/metrics"
)

// EventChannelCapacity bounds the event channel; saturation triggers a
// drop-cache-and-re-list back-pressure policy.
const EventChannelCapacity = 1024

// DefaultPolicy is applied to every workload the watch controller
// observes: it has no namespace-scoped Policy resource to read, so it
// uses a fixed set of three checks (latest tag, liveness probe,
// readiness probe) to keep cluster/namespace gauges meaningful without a
// per-namespace lookup on every event.
var DefaultPolicy = defaultPolicySpec()

// Controller is the watch controller's event loop, run only while this
// process holds the leader-election lease.
type Controller struct {
	KubeClient kubernetes.Interface
	Log        logr.Logger

	aggregator *Aggregator
	ready      int32
}

// NewController builds a Controller in the "waiting" state: it performs
// no work until Run is invoked by the leader-election callback.
func NewController(kubeClient kubernetes.Interface, log logr.Logger) *Controller {
	return &Controller{KubeClient: kubeClient, Log: log, aggregator: NewAggregator()}
}

// Ready reports whether the controller has completed its initial list
// and is now consuming the event stream. Non-leader replicas report
// ready regardless; that distinction is made by the caller wiring up
// /readyz, not by this method.
func (c *Controller) Ready() bool {
	return atomic.LoadInt32(&c.ready) == 1
}

// Run performs a full list to populate the aggregate from scratch, then
// switches to the pod watch stream until ctx is cancelled or the stream
// ends (e.g. on leadership loss via ctx cancellation from the caller).
// It is safe to call repeatedly: each call starts from a clean
// Aggregator.
func (c *Controller) Run(ctx context.Context) {
	c.aggregator.Reset()
	atomic.StoreInt32(&c.ready, 0)
	defer func() {
		c.aggregator.Reset()
		atomic.StoreInt32(&c.ready, 0)
	}()

	if err := c.fullList(ctx); err != nil {
		c.Log.Error(err, "initial list failed")
		return
	}
	c.publishGauges()
	atomic.StoreInt32(&c.ready, 1)

	for {
		if err := c.consumeStream(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			c.Log.Error(err, "watch stream ended, re-listing")
			c.aggregator.Reset()
			atomic.StoreInt32(&c.ready, 0)
			if err := c.fullList(ctx); err != nil {
				c.Log.Error(err, "re-list failed")
				return
			}
			c.publishGauges()
			atomic.StoreInt32(&c.ready, 1)
		}
	}
}

func (c *Controller) fullList(ctx context.Context) error {
	pods, err := c.KubeClient.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return err
	}
	for i := range pods.Items {
		pod := &pods.Items[i]
		w := adapter.FromPod(pod)
		agg := governance.Evaluate(w, &DefaultPolicy)
		c.aggregator.Add(string(pod.UID), pod.Namespace, agg)
	}
	metrics.PodsTracked.Set(float64(c.aggregator.PodsTracked()))
	return nil
}

// consumeStream relays the raw watch.Interface into a bounded local
// channel and processes events from it, so a slow consumer never blocks
// the underlying watch connection indefinitely; a full channel is
// treated as saturation and ends the stream to trigger a re-list.
func (c *Controller) consumeStream(ctx context.Context) error {
	w, err := c.KubeClient.CoreV1().Pods(metav1.NamespaceAll).Watch(ctx, metav1.ListOptions{})
	if err != nil {
		return err
	}
	defer w.Stop()

	events := make(chan watch.Event, EventChannelCapacity)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case ev, ok := <-w.ResultChan():
				if !ok {
					return
				}
				select {
				case events <- ev:
				default:
					c.Log.Info("event channel saturated, dropping stream")
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.handleEvent(ev)
		case <-done:
			return errors.New("watch stream ended or event channel saturated")
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Controller) handleEvent(ev watch.Event) {
	pod, ok := ev.Object.(*corev1.Pod)
	if !ok {
		return
	}
	w := adapter.FromPod(pod)
	agg := governance.Evaluate(w, &DefaultPolicy)

	switch ev.Type {
	case watch.Added:
		c.aggregator.Add(string(pod.UID), pod.Namespace, agg)
		metrics.PodEventsTotal.WithLabelValues("add").Inc()
	case watch.Modified:
		c.aggregator.Modify(string(pod.UID), pod.Namespace, agg)
		metrics.PodEventsTotal.WithLabelValues("modify").Inc()
	case watch.Deleted:
		c.aggregator.Remove(string(pod.UID))
		metrics.PodEventsTotal.WithLabelValues("delete").Inc()
	default:
		return
	}
	metrics.PodsTracked.Set(float64(c.aggregator.PodsTracked()))
	c.publishGauges()
}

func (c *Controller) publishGauges() {
	metrics.ClusterHealthScore.Set(float64(c.aggregator.ClusterScore()))
	for _, ns := range c.aggregator.Namespaces() {
		metrics.NamespaceHealthScore.WithLabelValues(ns).Set(float64(c.aggregator.NamespaceScore(ns)))
	}
}

func defaultPolicySpec() govv1alpha1.PolicySpec {
	enabled := true
	return govv1alpha1.PolicySpec{
		ForbidLatestTag:       &enabled,
		RequireLivenessProbe:  &enabled,
		RequireReadinessProbe: &enabled,
	}
}

// LeaseName is the cluster-wide lease resource name the watch controller
// contends for.
func LeaseName(operatorName string) string {
	return operatorName + "-watch"
}
