package enforcement

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"

	govv1alpha1 "github.com/stochastic-io/governance-platform/api/v1alpha1"
	"github.com/stochastic-io/governance-platform/pkg/governance"
)

func governanceContainerFromSpec(c corev1.Container) governance.Container {
	ctr := governance.Container{Name: c.Name, Image: c.Image}
	if len(c.Ports) > 0 {
		ctr.Port = c.Ports[0].ContainerPort
	}
	return ctr
}

func metaPatchOptions() metav1.PatchOptions {
	return metav1.PatchOptions{}
}

// containerPatch is the strategic-merge-patch shape for one named
// container; unset pointer fields are omitted so existing values on the
// parent are never overwritten, only filled in where missing.
type containerPatch struct {
	Name           string                        `json:"name"`
	LivenessProbe  *corev1.Probe                 `json:"livenessProbe,omitempty"`
	ReadinessProbe *corev1.Probe                 `json:"readinessProbe,omitempty"`
	Resources      *corev1.ResourceRequirements  `json:"resources,omitempty"`
}

type podSpecPatch struct {
	Containers []containerPatch `json:"containers"`
}

type podTemplatePatch struct {
	Spec podSpecPatch `json:"spec"`
}

type patchBody struct {
	Metadata struct {
		Annotations map[string]string `json:"annotations"`
	} `json:"metadata"`
	Spec struct {
		Template podTemplatePatch `json:"template"`
	} `json:"spec"`
}

// BuildPatch renders the strategic-merge-patch JSON for a plan, given the
// full set of containers on the parent's pod template (needed so each
// action can be addressed by name) and the policy's injection defaults.
func BuildPatch(plan Plan, containers []corev1.Container, probeCfg *govv1alpha1.DefaultProbeConfig, resourceCfg *govv1alpha1.DefaultResourceConfig) ([]byte, error) {
	byName := make(map[string][]ActionKind)
	for _, a := range plan.Actions {
		byName[a.ContainerName] = append(byName[a.ContainerName], a.Kind)
	}

	var body patchBody
	body.Metadata.Annotations = map[string]string{PatchedByAnnotation: OperatorIdentity}

	for _, c := range containers {
		kinds, ok := byName[c.Name]
		if !ok {
			continue
		}
		cp := containerPatch{Name: c.Name}
		for _, k := range kinds {
			switch k {
			case ActionInjectLivenessProbe:
				cp.LivenessProbe = buildProbeForContainer(probeCfg, c)
			case ActionInjectReadinessProbe:
				cp.ReadinessProbe = buildProbeForContainer(probeCfg, c)
			case ActionInjectResources:
				cp.Resources = BuildResources(resourceCfg)
			}
		}
		body.Spec.Template.Spec.Containers = append(body.Spec.Template.Spec.Containers, cp)
	}

	return json.Marshal(body)
}

func buildProbeForContainer(cfg *govv1alpha1.DefaultProbeConfig, c corev1.Container) *corev1.Probe {
	ctr := governanceContainerFromSpec(c)
	return BuildProbe(cfg, ctr)
}

// Apply patches the resolved parent workload via a strategic merge,
// setting missing probe/resource fields without overwriting existing
// ones, and annotates the parent for audit purposes. It is the only part
// of this package that touches the API server.
func Apply(ctx context.Context, client kubernetes.Interface, plan Plan, patch []byte) error {
	var err error
	switch plan.Parent.Kind {
	case ParentDeployment:
		_, err = client.AppsV1().Deployments(plan.Parent.Namespace).Patch(ctx, plan.Parent.Name, types.StrategicMergePatchType, patch, metaPatchOptions())
	case ParentStatefulSet:
		_, err = client.AppsV1().StatefulSets(plan.Parent.Namespace).Patch(ctx, plan.Parent.Name, types.StrategicMergePatchType, patch, metaPatchOptions())
	case ParentDaemonSet:
		_, err = client.AppsV1().DaemonSets(plan.Parent.Namespace).Patch(ctx, plan.Parent.Name, types.StrategicMergePatchType, patch, metaPatchOptions())
	default:
		return fmt.Errorf("unsupported parent kind %q", plan.Parent.Kind)
	}
	if err != nil {
		if apierrors.IsConflict(err) || apierrors.IsTooManyRequests(err) {
			return errors.Wrap(err, "transient error applying remediation patch")
		}
		return errors.Wrap(err, "applying remediation patch")
	}
	return nil
}
