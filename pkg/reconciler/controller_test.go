package reconciler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/rest"

	govv1alpha1 "github.com/stochastic-io/governance-platform/api/v1alpha1"
	govclient "github.com/stochastic-io/governance-platform/pkg/client"
	"github.com/stochastic-io/governance-platform/pkg/governance"
)

func TestSeverityTotals(t *testing.T) {
	violations := []governance.Violation{
		{Severity: govv1alpha1.SeverityHigh},
		{Severity: govv1alpha1.SeverityHigh},
		{Severity: govv1alpha1.SeverityLow},
	}
	totals := severityTotals(violations)
	assert.Equal(t, 2, totals[govv1alpha1.SeverityHigh])
	assert.Equal(t, 1, totals[govv1alpha1.SeverityLow])
	assert.Equal(t, 0, totals[govv1alpha1.SeverityCritical])
}

func TestFinalizerLifecycle(t *testing.T) {
	pol := &govv1alpha1.Policy{}
	assert.False(t, ContainsFinalizer(pol, CleanupFinalizer))
	assert.True(t, AddFinalizer(pol, CleanupFinalizer))
	assert.True(t, ContainsFinalizer(pol, CleanupFinalizer))
	assert.False(t, AddFinalizer(pol, CleanupFinalizer))
	assert.True(t, RemoveFinalizer(pol, CleanupFinalizer))
	assert.False(t, ContainsFinalizer(pol, CleanupFinalizer))
}

// newTestGovClient points a real Clientset at an httptest server, since
// the hand-written REST clientset has no fake implementation the way
// kubernetes.Interface does.
func newTestGovClient(t *testing.T, server *httptest.Server) *govclient.Clientset {
	t.Helper()
	cs, err := govclient.NewForConfig(&rest.Config{Host: server.URL})
	require.NoError(t, err)
	return cs
}

func TestRecordPermanentFailure_WritesStatusMessage(t *testing.T) {
	var sawStatusUpdate bool
	var postedPolicy govv1alpha1.Policy

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/policies/web-policy"):
			w.Header().Set("Content-Type", "application/json")
			pol := &govv1alpha1.Policy{
				TypeMeta:   metav1.TypeMeta{Kind: "Policy", APIVersion: govv1alpha1.SchemeGroupVersion.String()},
				ObjectMeta: metav1.ObjectMeta{Namespace: "production", Name: "web-policy"},
			}
			_ = json.NewEncoder(w).Encode(pol)
		case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/policies/web-policy/status"):
			sawStatusUpdate = true
			_ = json.NewDecoder(r.Body).Decode(&postedPolicy)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(&postedPolicy)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := &Controller{Gov: newTestGovClient(t, server)}
	c.RecordPermanentFailure(context.Background(), logr.Discard(), "production", "web-policy", errors.New("forbidden: webhook denied the request"))

	assert.True(t, sawStatusUpdate, "permanent failure must write the status sub-resource")
	assert.Contains(t, postedPolicy.Status.Message, "forbidden: webhook denied the request")
}

func TestRecordPermanentFailure_PolicyGoneIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"kind": "Status", "apiVersion": "v1", "status": "Failure", "reason": "NotFound", "code": 404,
		})
	}))
	defer server.Close()

	c := &Controller{Gov: newTestGovClient(t, server)}
	assert.NotPanics(t, func() {
		c.RecordPermanentFailure(context.Background(), logr.Discard(), "production", "deleted-policy", errors.New("forbidden"))
	})
}
