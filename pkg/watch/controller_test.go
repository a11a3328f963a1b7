package watch

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes/fake"
)

func TestController_FullListPopulatesAggregate(t *testing.T) {
	client := fake.NewSimpleClientset(
		&corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{Name: "app-1", Namespace: "team-a", UID: "uid-1"},
			Spec: corev1.PodSpec{
				Containers: []corev1.Container{{Name: "app", Image: "app:latest"}},
			},
			Status: corev1.PodStatus{Phase: corev1.PodRunning},
		},
	)
	c := NewController(client, logr.Discard())
	require.NoError(t, c.fullList(context.Background()))
	assert.Equal(t, 1, c.aggregator.PodsTracked())
	assert.Less(t, c.aggregator.NamespaceScore("team-a"), int32(100))
}

func TestController_HandleEventAddModifyDelete(t *testing.T) {
	c := NewController(fake.NewSimpleClientset(), logr.Discard())
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "app-1", Namespace: "team-a", UID: "uid-1"},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{{Name: "app", Image: "app:latest"}},
		},
		Status: corev1.PodStatus{Phase: corev1.PodRunning},
	}

	c.handleEvent(watch.Event{Type: watch.Added, Object: pod})
	assert.Equal(t, 1, c.aggregator.PodsTracked())

	pod.Spec.Containers[0].Image = "app:1.0"
	c.handleEvent(watch.Event{Type: watch.Modified, Object: pod})
	assert.Equal(t, 1, c.aggregator.PodsTracked())
	// The latest-tag penalty is gone, but the container still has no
	// liveness (3) or readiness (2) probe: 100 - 5 = 95.
	assert.Equal(t, int32(95), c.aggregator.NamespaceScore("team-a"))

	c.handleEvent(watch.Event{Type: watch.Deleted, Object: pod})
	assert.Equal(t, 0, c.aggregator.PodsTracked())
}
