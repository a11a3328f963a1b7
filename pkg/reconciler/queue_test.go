package reconciler

import (
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/util/workqueue"

	perrors "github.com/stochastic-io/governance-platform/pkg/errors"
)

type mockWorkqueue struct {
	workqueue.RateLimitingInterface
	forgotten   []interface{}
	rateLimited []interface{}
	numRequeues int
}

func (m *mockWorkqueue) Forget(obj interface{})          { m.forgotten = append(m.forgotten, obj) }
func (m *mockWorkqueue) AddRateLimited(obj interface{})  { m.rateLimited = append(m.rateLimited, obj) }
func (m *mockWorkqueue) NumRequeues(obj interface{}) int { return m.numRequeues }

func TestHandleErr(t *testing.T) {
	t.Run("no error", func(t *testing.T) {
		queue := &mockWorkqueue{}
		handleErr(context.Background(), logr.Discard(), queue, 5, nil, "production/web-policy", nil)
		assert.Equal(t, []interface{}{"production/web-policy"}, queue.forgotten)
		assert.Empty(t, queue.rateLimited)
	})
	t.Run("not found error", func(t *testing.T) {
		queue := &mockWorkqueue{}
		handleErr(context.Background(), logr.Discard(), queue, 5, apierrors.NewNotFound(schema.GroupResource{}, ""), "production/web-policy", nil)
		assert.Equal(t, []interface{}{"production/web-policy"}, queue.forgotten)
		assert.Empty(t, queue.rateLimited)
	})
	t.Run("max retries", func(t *testing.T) {
		queue := &mockWorkqueue{numRequeues: 5}
		handleErr(context.Background(), logr.Discard(), queue, 5, errors.New("some error"), "production/web-policy", nil)
		assert.Equal(t, []interface{}{"production/web-policy"}, queue.forgotten)
		assert.Empty(t, queue.rateLimited)
	})
	t.Run("retry", func(t *testing.T) {
		queue := &mockWorkqueue{numRequeues: 4}
		handleErr(context.Background(), logr.Discard(), queue, 5, errors.New("some error"), "production/web-policy", nil)
		assert.Empty(t, queue.forgotten)
		assert.Equal(t, []interface{}{"production/web-policy"}, queue.rateLimited)
	})
	t.Run("permanent error forgets without retry and notifies", func(t *testing.T) {
		queue := &mockWorkqueue{numRequeues: 0}
		var gotNamespace, gotName string
		var calls int
		notify := func(ctx context.Context, logger logr.Logger, namespace, name string, err error) {
			calls++
			gotNamespace, gotName = namespace, name
		}
		permErr := perrors.Wrap(perrors.ClassPermanent, errors.New("forbidden"), "patching status")
		handleErr(context.Background(), logr.Discard(), queue, 5, permErr, "production/web-policy", notify)
		assert.Equal(t, []interface{}{"production/web-policy"}, queue.forgotten)
		assert.Empty(t, queue.rateLimited, "a permanent error must not be rate-limited for retry")
		assert.Equal(t, 1, calls)
		assert.Equal(t, "production", gotNamespace)
		assert.Equal(t, "web-policy", gotName)
	})
	t.Run("permanent error tolerates a nil notify callback", func(t *testing.T) {
		queue := &mockWorkqueue{}
		permErr := perrors.Wrap(perrors.ClassPermanent, errors.New("forbidden"), "patching status")
		assert.NotPanics(t, func() {
			handleErr(context.Background(), logr.Discard(), queue, 5, permErr, "production/web-policy", nil)
		})
		assert.Equal(t, []interface{}{"production/web-policy"}, queue.forgotten)
	})
	t.Run("transient classified error still backs off", func(t *testing.T) {
		queue := &mockWorkqueue{numRequeues: 0}
		transientErr := perrors.Wrap(perrors.ClassTransient, errors.New("conflict"), "updating policy")
		handleErr(context.Background(), logr.Discard(), queue, 5, transientErr, "production/web-policy", nil)
		assert.Empty(t, queue.forgotten)
		assert.Equal(t, []interface{}{"production/web-policy"}, queue.rateLimited)
	})
}
