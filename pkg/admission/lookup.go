package admission

import (
	"context"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	govv1alpha1 "github.com/stochastic-io/governance-platform/api/v1alpha1"
	govclient "github.com/stochastic-io/governance-platform/pkg/client"
	"github.com/stochastic-io/governance-platform/pkg/policy"
)

// ClientLookup builds a PolicyLookup backed by the live API server: it
// lists the Policy resources in the workload's namespace and returns the
// effective spec of the first one found. A namespace with no Policy
// returns a nil spec, which Verdict treats as Allow.
func ClientLookup(gov *govclient.Clientset) PolicyLookup {
	return func(ctx context.Context, namespace string) (*govv1alpha1.PolicySpec, error) {
		list, err := gov.Policies(namespace).List(ctx, metav1.ListOptions{})
		if err != nil {
			if apierrors.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		if len(list.Items) == 0 {
			return nil, nil
		}
		spec := policy.ApplyDefaults(list.Items[0].Spec)
		return &spec, nil
	}
}
