package client

import (
	"testing"

	"k8s.io/client-go/rest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	govv1alpha1 "github.com/stochastic-io/governance-platform/api/v1alpha1"
)

func TestNewForConfig_BuildsTypedClients(t *testing.T) {
	cs, err := NewForConfig(&rest.Config{Host: "https://example.invalid"})
	require.NoError(t, err)
	require.NotNil(t, cs)

	assert.NotNil(t, cs.Policies("production"))
	assert.NotNil(t, cs.AuditResults("production"))
}

func TestNewForConfig_DoesNotMutateCallerConfig(t *testing.T) {
	cfg := &rest.Config{Host: "https://example.invalid"}
	_, err := NewForConfig(cfg)
	require.NoError(t, err)
	// NewForConfig must not mutate the caller's config.
	assert.Empty(t, cfg.UserAgent)
}

func TestScheme_RegistersGovernanceTypes(t *testing.T) {
	gv := govv1alpha1.SchemeGroupVersion
	assert.True(t, Scheme.Recognizes(gv.WithKind("Policy")))
	assert.True(t, Scheme.Recognizes(gv.WithKind("PolicyList")))
	assert.True(t, Scheme.Recognizes(gv.WithKind("AuditResult")))
}
