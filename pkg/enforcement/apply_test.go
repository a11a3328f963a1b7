package enforcement

import (
	"context"
	"testing"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPatch_OnlyTouchesActionedContainers(t *testing.T) {
	plan := Plan{
		Parent: ParentRef{Kind: ParentDeployment, Namespace: "production", Name: "app"},
		Actions: []Action{
			{ContainerIndex: 0, ContainerName: "app", Kind: ActionInjectLivenessProbe},
		},
	}
	containers := []corev1.Container{
		{Name: "app", Ports: []corev1.ContainerPort{{ContainerPort: 8080}}},
		{Name: "sidecar"},
	}
	patch, err := BuildPatch(plan, containers, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, string(patch), `"name":"app"`)
	assert.NotContains(t, string(patch), `"name":"sidecar"`)
	assert.Contains(t, string(patch), PatchedByAnnotation)
}

func TestApply_PatchesDeployment(t *testing.T) {
	dep := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: "app", Namespace: "production"},
		Spec: appsv1.DeploymentSpec{
			Template: corev1.PodTemplateSpec{
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{{Name: "app"}},
				},
			},
		},
	}
	client := fake.NewSimpleClientset(dep)

	plan := Plan{
		Parent: ParentRef{Kind: ParentDeployment, Namespace: "production", Name: "app"},
		Actions: []Action{
			{ContainerIndex: 0, ContainerName: "app", Kind: ActionInjectLivenessProbe},
		},
	}
	patch, err := BuildPatch(plan, dep.Spec.Template.Spec.Containers, nil, nil)
	require.NoError(t, err)

	err = Apply(context.Background(), client, plan, patch)
	require.NoError(t, err)

	updated, err := client.AppsV1().Deployments("production").Get(context.Background(), "app", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, OperatorIdentity, updated.Annotations[PatchedByAnnotation])
	assert.NotNil(t, updated.Spec.Template.Spec.Containers[0].LivenessProbe)
}

func TestApply_UnsupportedParentKindErrors(t *testing.T) {
	client := fake.NewSimpleClientset()
	plan := Plan{Parent: ParentRef{Kind: ParentKind("CronJob"), Namespace: "production", Name: "app"}}
	err := Apply(context.Background(), client, plan, []byte(`{}`))
	assert.Error(t, err)
}
