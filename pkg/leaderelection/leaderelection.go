// Package leaderelection wraps client-go's leader election machinery for
// the watch controller, which runs as a single active replica backed by a
// cluster-wide Lease.
package leaderelection

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/util/uuid"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/leaderelection"
	"k8s.io/client-go/tools/leaderelection/resourcelock"

	perrors "github.com/stochastic-io/governance-platform/pkg/errors"
)

// LeaseDuration, RenewDeadline and RetryPeriod are the exact timings the
// watch controller's leader-election lease is held and renewed on.
const (
	LeaseDuration = 15 * time.Second
	RenewDeadline = 10 * time.Second
	RetryPeriod   = 2 * time.Second
)

// Interface is a leader-elected task.
type Interface interface {
	// Run is a blocking call that runs the leader election loop.
	Run(ctx context.Context)
	// ID returns this instance's unique identifier.
	ID() string
	// Name returns the name of the lease being contended for.
	Name() string
	// Namespace is where the lease resource lives.
	Namespace() string
	// IsLeader reports whether this instance currently holds the lease.
	IsLeader() bool
}

type elector struct {
	name       string
	namespace  string
	kubeClient kubernetes.Interface
	lock       resourcelock.Interface
	startWork  func()
	stopWork   func()
	isLeader   int64
	log        logr.Logger
}

// New builds a leader elector contending for a Lease named name in
// namespace. startWork is invoked when this instance becomes leader;
// stopWork when it loses or releases leadership.
func New(name, namespace string, kubeClient kubernetes.Interface, startWork, stopWork func(), log logr.Logger) (Interface, error) {
	id, err := os.Hostname()
	if err != nil {
		return nil, errors.Wrapf(err, "resolving host name for lease %s/%s", namespace, name)
	}
	id = id + "_" + string(uuid.NewUUID())

	lock, err := resourcelock.New(
		resourcelock.LeasesResourceLock,
		namespace,
		name,
		kubeClient.CoreV1(),
		kubeClient.CoordinationV1(),
		resourcelock.ResourceLockConfig{Identity: id},
	)
	if err != nil {
		return nil, errors.Wrapf(err, "initializing lease lock %s/%s", namespace, name)
	}

	return &elector{
		name:       name,
		namespace:  namespace,
		kubeClient: kubeClient,
		lock:       lock,
		startWork:  startWork,
		stopWork:   stopWork,
		log:        log,
	}, nil
}

func (e *elector) Name() string      { return e.name }
func (e *elector) Namespace() string { return e.namespace }
func (e *elector) ID() string        { return e.lock.Identity() }
func (e *elector) IsLeader() bool    { return atomic.LoadInt64(&e.isLeader) == 1 }

func (e *elector) Run(ctx context.Context) {
	leaderelection.RunOrDie(ctx, leaderelection.LeaderElectionConfig{
		Lock:            e.lock,
		ReleaseOnCancel: true,
		LeaseDuration:   LeaseDuration,
		RenewDeadline:   RenewDeadline,
		RetryPeriod:     RetryPeriod,
		Callbacks: leaderelection.LeaderCallbacks{
			OnStartedLeading: func(ctx context.Context) {
				atomic.StoreInt64(&e.isLeader, 1)
				e.log.WithValues("id", e.lock.Identity()).Info("started leading")
				if e.startWork != nil {
					e.startWork()
				}
			},
			OnStoppedLeading: func() {
				atomic.StoreInt64(&e.isLeader, 0)
				// ClassLeaderLoss: the caller's stopWork is expected to
				// treat this like a clean restart (drop aggregate state,
				// clear readiness), not retry anything.
				lost := perrors.New(perrors.ClassLeaderLoss, "lease lost or released")
				e.log.WithValues("id", e.lock.Identity()).Error(lost, "stopped leading")
				if e.stopWork != nil {
					e.stopWork()
				}
			},
			OnNewLeader: func(identity string) {
				if identity == e.lock.Identity() {
					return
				}
				e.log.WithValues("currentID", e.lock.Identity(), "leader", identity).Info("another instance holds the lease")
			},
		},
	})
}
