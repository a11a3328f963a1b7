package watch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stochastic-io/governance-platform/pkg/governance"
)

func TestAggregator_AddModifyRemove(t *testing.T) {
	a := NewAggregator()
	a.Add("uid-1", "team-a", governance.Aggregate{TotalPods: 1, LatestTag: 1})
	assert.Equal(t, 1, a.PodsTracked())
	assert.Less(t, a.NamespaceScore("team-a"), int32(100))

	a.Modify("uid-1", "team-a", governance.Aggregate{TotalPods: 1})
	assert.Equal(t, int32(100), a.NamespaceScore("team-a"))

	a.Remove("uid-1")
	assert.Equal(t, 0, a.PodsTracked())
	assert.Equal(t, int32(100), a.NamespaceScore("team-a"))
}

func TestAggregator_ClusterScoreExcludesSystemAndEmptyNamespaces(t *testing.T) {
	a := NewAggregator()
	a.Add("uid-1", "team-a", governance.Aggregate{TotalPods: 1})
	a.Add("uid-2", "kube-system", governance.Aggregate{TotalPods: 1, HighRestarts: 5})
	assert.Equal(t, int32(100), a.ClusterScore())
}

func TestAggregator_ClusterScoreDefaultsTo100WhenEmpty(t *testing.T) {
	a := NewAggregator()
	assert.Equal(t, int32(100), a.ClusterScore())
}

func TestAggregator_Reset(t *testing.T) {
	a := NewAggregator()
	a.Add("uid-1", "team-a", governance.Aggregate{TotalPods: 1})
	a.Reset()
	assert.Equal(t, 0, a.PodsTracked())
	assert.Empty(t, a.Namespaces())
}
