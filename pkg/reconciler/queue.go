// Package reconciler implements the reconcile operator: a workqueue
// controller over Policy resources.
package reconciler

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/tools/cache"
	"k8s.io/client-go/util/workqueue"

	perrors "github.com/stochastic-io/governance-platform/pkg/errors"
)

// ControllerName identifies this controller for cache-sync logging and
// the leader-election-free, per-key workqueue it owns.
const ControllerName = "policy-reconciler"

// RequeueBase and RequeueCap are the back-off bounds for reconcile
// errors: 60s base, 15 minute cap.
const (
	RequeueBase = 60 * time.Second
	RequeueCap  = 15 * time.Minute
)

// NewQueue builds the rate-limited workqueue used to key reconciles by
// (namespace, policy name), exponential back-off bounded per spec.
func NewQueue() workqueue.RateLimitingInterface {
	limiter := workqueue.NewItemExponentialFailureRateLimiter(RequeueBase, RequeueCap)
	return workqueue.NewNamedRateLimitingQueue(limiter, ControllerName)
}

type reconcileFunc func(ctx context.Context, logger logr.Logger, namespace, name string) error

// permanentFailureFunc is invoked, outside the retry loop, the one time a
// reconcile fails with perrors.ClassPermanent: it gives the caller (the
// domain Controller) a chance to write a Status.Message so the failure is
// visible on the Policy resource instead of only in the operator's logs.
type permanentFailureFunc func(ctx context.Context, logger logr.Logger, namespace, name string, err error)

// Run starts n worker goroutines pulling keys off queue until ctx is
// cancelled, then waits for in-flight reconciles to finish.
func Run(ctx context.Context, logger logr.Logger, queue workqueue.RateLimitingInterface, n, maxRetries int, r reconcileFunc, onPermanentFailure permanentFailureFunc, cacheSyncs ...cache.InformerSynced) {
	logger.Info("starting ...")
	defer runtime.HandleCrash()
	defer logger.Info("stopped")
	var wg sync.WaitGroup
	func() {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		defer queue.ShutDown()
		if !cache.WaitForNamedCacheSync(ControllerName, ctx.Done(), cacheSyncs...) {
			return
		}
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(logger logr.Logger) {
				defer wg.Done()
				wait.UntilWithContext(ctx, func(ctx context.Context) {
					worker(ctx, logger, queue, maxRetries, r, onPermanentFailure)
				}, time.Second)
			}(logger.WithValues("worker", i))
		}
		<-ctx.Done()
	}()
	logger.Info("waiting for workers to terminate ...")
	wg.Wait()
}

func worker(ctx context.Context, logger logr.Logger, queue workqueue.RateLimitingInterface, maxRetries int, r reconcileFunc, onPermanentFailure permanentFailureFunc) {
	for processNextWorkItem(ctx, logger, queue, maxRetries, r, onPermanentFailure) {
	}
}

func processNextWorkItem(ctx context.Context, logger logr.Logger, queue workqueue.RateLimitingInterface, maxRetries int, r reconcileFunc, onPermanentFailure permanentFailureFunc) bool {
	obj, quit := queue.Get()
	if quit {
		return false
	}
	defer queue.Done(obj)
	handleErr(ctx, logger, queue, maxRetries, reconcileOne(ctx, logger, obj, r), obj, onPermanentFailure)
	return true
}

// handleErr decides whether a reconcile error is retried, and at what
// back-off. A *perrors.Error classified ClassPermanent is never retried:
// the key is forgotten immediately and onPermanentFailure is given the
// chance to record the failure on the Policy itself, since the next
// attempt won't happen until something re-enqueues the key (a spec change
// or the periodic re-list), not on a timer the queue controls.
func handleErr(ctx context.Context, logger logr.Logger, queue workqueue.RateLimitingInterface, maxRetries int, err error, obj interface{}, onPermanentFailure permanentFailureFunc) {
	switch {
	case err == nil:
		queue.Forget(obj)
	case apierrors.IsNotFound(err):
		logger.Info("policy no longer exists, dropping from queue", "obj", obj)
		queue.Forget(obj)
	default:
		var perr *perrors.Error
		if perrors.As(err, &perr) && perr.Class == perrors.ClassPermanent {
			logger.Error(err, "permanent error, not retrying until next reconcile trigger", "obj", obj)
			queue.Forget(obj)
			notifyPermanentFailure(ctx, logger, obj, err, onPermanentFailure)
			return
		}
		if queue.NumRequeues(obj) < maxRetries {
			logger.Info("retrying reconcile", "obj", obj, "error", err.Error())
			queue.AddRateLimited(obj)
			return
		}
		logger.Error(err, "giving up on reconcile after max retries", "obj", obj)
		queue.Forget(obj)
	}
}

func notifyPermanentFailure(ctx context.Context, logger logr.Logger, obj interface{}, err error, onPermanentFailure permanentFailureFunc) {
	if onPermanentFailure == nil {
		return
	}
	key, ok := obj.(string)
	if !ok {
		return
	}
	namespace, name, splitErr := cache.SplitMetaNamespaceKey(key)
	if splitErr != nil {
		return
	}
	onPermanentFailure(ctx, logger, namespace, name, err)
}

func reconcileOne(ctx context.Context, logger logr.Logger, obj interface{}, r reconcileFunc) error {
	key, ok := obj.(string)
	if !ok {
		return nil
	}
	namespace, name, err := cache.SplitMetaNamespaceKey(key)
	if err != nil {
		return err
	}
	logger = logger.WithValues("namespace", namespace, "name", name)
	start := time.Now()
	logger.Info("reconciling")
	err = r(ctx, logger, namespace, name)
	logger.Info("reconcile done", "duration", time.Since(start).String())
	return err
}
