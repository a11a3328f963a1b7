package policy

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	apiextensionsclient "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	govv1alpha1 "github.com/stochastic-io/governance-platform/api/v1alpha1"
)

// RequiredCRDNames are the two custom resource definitions every one of
// the three binaries assumes are already installed in the cluster.
var RequiredCRDNames = []string{
	"policies." + govv1alpha1.GroupName,
	"auditresults." + govv1alpha1.GroupName,
}

// CRDsInstalled checks that each of names exists as a
// CustomResourceDefinition, combining every miss into a single error so a
// misconfigured cluster reports all of them at once instead of one at a
// time across repeated restarts.
func CRDsInstalled(ctx context.Context, apiserverClient apiextensionsclient.Interface, names ...string) error {
	var errs error
	for _, name := range names {
		if _, err := apiserverClient.ApiextensionsV1().CustomResourceDefinitions().Get(ctx, name, metav1.GetOptions{}); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("CRD %s: %w", name, err))
		}
	}
	return errs
}
