package reconciler

import (
	"context"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/tools/cache"
	"k8s.io/client-go/util/workqueue"

	govclient "github.com/stochastic-io/governance-platform/pkg/client"
)

// ListAndEnqueue lists every Policy across all namespaces and enqueues
// its key, backing both the initial sync and the periodic re-queue timer.
func ListAndEnqueue(ctx context.Context, log logr.Logger, gov *govclient.Clientset, queue workqueue.RateLimitingInterface) {
	list, err := gov.Policies(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		log.Error(err, "listing policies for periodic re-queue")
		return
	}
	for _, pol := range list.Items {
		if key, err := cache.MetaNamespaceKeyFunc(&pol); err == nil {
			queue.Add(key)
		}
	}
}

// WatchAndEnqueue relays Policy add/update/delete events into queue until
// the watch stream ends or ctx is cancelled; callers are expected to call
// it in a retry loop so a dropped connection is simply re-established.
func WatchAndEnqueue(ctx context.Context, log logr.Logger, gov *govclient.Clientset, queue workqueue.RateLimitingInterface) {
	w, err := gov.Policies(metav1.NamespaceAll).Watch(ctx, metav1.ListOptions{})
	if err != nil {
		log.Error(err, "starting policy watch")
		return
	}
	defer w.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.ResultChan():
			if !ok {
				return
			}
			if ev.Type == watch.Error {
				return
			}
			meta, ok := ev.Object.(interface {
				GetNamespace() string
				GetName() string
			})
			if !ok {
				continue
			}
			queue.Add(meta.GetNamespace() + "/" + meta.GetName())
		}
	}
}
