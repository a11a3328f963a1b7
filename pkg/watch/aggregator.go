// Package watch implements the watch controller: a leader-elected,
// event-driven maintainer of cluster-wide and per-namespace health
// gauges built from live pod events.
package watch

import (
	"github.com/stochastic-io/governance-platform/pkg/governance"
)

// Aggregator owns the process-local per-namespace aggregate map and the
// side cache keyed by workload UID, both mutated only from the single
// goroutine that drains the event channel, so no lock is needed.
type Aggregator struct {
	byNamespace map[string]governance.Aggregate
	byUID       map[string]cachedWorkload
}

type cachedWorkload struct {
	namespace string
	agg       governance.Aggregate
}

// NewAggregator returns an empty Aggregator, the state a leader starts
// from before its initial full list.
func NewAggregator() *Aggregator {
	return &Aggregator{
		byNamespace: make(map[string]governance.Aggregate),
		byUID:       make(map[string]cachedWorkload),
	}
}

// Reset discards all state, used when a Run starts or ends (leadership
// gained or lost) and when the watch stream ends or the event channel
// saturates and a re-list is triggered.
func (a *Aggregator) Reset() {
	a.byNamespace = make(map[string]governance.Aggregate)
	a.byUID = make(map[string]cachedWorkload)
}

// Add records a newly observed workload under uid, folding its aggregate
// into its namespace's running total.
func (a *Aggregator) Add(uid, namespace string, agg governance.Aggregate) {
	a.byNamespace[namespace] = governance.AddAggregate(a.byNamespace[namespace], agg)
	a.byUID[uid] = cachedWorkload{namespace: namespace, agg: agg}
}

// Modify subtracts the previously cached aggregate for uid (if any) and
// adds the new one, then updates the side cache.
func (a *Aggregator) Modify(uid, namespace string, agg governance.Aggregate) {
	if prev, ok := a.byUID[uid]; ok {
		a.byNamespace[prev.namespace] = governance.SubtractAggregate(a.byNamespace[prev.namespace], prev.agg)
	}
	a.byNamespace[namespace] = governance.AddAggregate(a.byNamespace[namespace], agg)
	a.byUID[uid] = cachedWorkload{namespace: namespace, agg: agg}
}

// Remove subtracts uid's cached aggregate and drops it from the side
// cache. A miss is a no-op: the workload was never successfully added.
func (a *Aggregator) Remove(uid string) {
	prev, ok := a.byUID[uid]
	if !ok {
		return
	}
	a.byNamespace[prev.namespace] = governance.SubtractAggregate(a.byNamespace[prev.namespace], prev.agg)
	delete(a.byUID, uid)
}

// NamespaceScore returns the score for a single namespace's aggregate.
func (a *Aggregator) NamespaceScore(namespace string) int32 {
	return governance.Score(a.byNamespace[namespace], governance.DefaultWeights)
}

// Namespaces returns every namespace currently tracked, including empty
// ones (TotalPods==0) so callers can decide how to treat them.
func (a *Aggregator) Namespaces() []string {
	out := make([]string, 0, len(a.byNamespace))
	for ns := range a.byNamespace {
		out = append(out, ns)
	}
	return out
}

// ClusterScore is the unweighted mean of per-namespace scores across
// non-empty, non-system namespaces.
func (a *Aggregator) ClusterScore() int32 {
	var total int64
	var count int64
	for ns, agg := range a.byNamespace {
		if agg.TotalPods == 0 {
			continue
		}
		if governance.IsSystemNamespace(ns) {
			continue
		}
		total += int64(governance.Score(agg, governance.DefaultWeights))
		count++
	}
	if count == 0 {
		return 100
	}
	return int32(total / count)
}

// PodsTracked returns the number of workloads in the side cache.
func (a *Aggregator) PodsTracked() int {
	return len(a.byUID)
}
