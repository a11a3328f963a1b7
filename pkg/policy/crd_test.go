package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	apiextensionsfake "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset/fake"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

func newCRD(name string) runtime.Object {
	return &apiextensionsv1.CustomResourceDefinition{ObjectMeta: metav1.ObjectMeta{Name: name}}
}

func TestCRDsInstalled(t *testing.T) {
	t.Run("both CRDs present", func(t *testing.T) {
		client := apiextensionsfake.NewSimpleClientset(newCRD("policies.governance.stochastic.io"), newCRD("auditresults.governance.stochastic.io"))
		err := CRDsInstalled(context.Background(), client, RequiredCRDNames...)
		assert.NoError(t, err)
	})

	t.Run("one CRD missing", func(t *testing.T) {
		client := apiextensionsfake.NewSimpleClientset(newCRD("policies.governance.stochastic.io"))
		err := CRDsInstalled(context.Background(), client, RequiredCRDNames...)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "auditresults.governance.stochastic.io")
	})

	t.Run("both CRDs missing combines both errors", func(t *testing.T) {
		client := apiextensionsfake.NewSimpleClientset()
		err := CRDsInstalled(context.Background(), client, RequiredCRDNames...)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "policies.governance.stochastic.io")
		assert.Contains(t, err.Error(), "auditresults.governance.stochastic.io")
	})

	t.Run("no names to check", func(t *testing.T) {
		client := apiextensionsfake.NewSimpleClientset()
		err := CRDsInstalled(context.Background(), client)
		assert.NoError(t, err)
	})
}
