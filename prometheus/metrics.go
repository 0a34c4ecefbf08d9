package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	policiesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "integration_policies_created",
		Help: "The total number of integration policies created",
	})
	policiesUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "integration_policies_updated",
		Help: "The total number of integration policies updated from the master policy",
	})
	policiesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "integration_policies_deleted",
		Help: "The total number of orphaned integration policies deleted",
	})
	operationsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "policy_operations_failed",
		Help: "The total number of create/update/delete operations that failed",
	})
	passesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sync_passes_completed",
		Help: "The total number of reconciliation passes that ran to completion",
	})
	passesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sync_passes_failed",
		Help: "The total number of reconciliation passes aborted by a fatal error",
	})
)

func IncrementPoliciesCreated(count int) {
	policiesCreated.Add(float64(count))
}

func IncrementPoliciesUpdated(count int) {
	policiesUpdated.Add(float64(count))
}

func IncrementPoliciesDeleted(count int) {
	policiesDeleted.Add(float64(count))
}

func IncrementOperationsFailed(count int) {
	operationsFailed.Add(float64(count))
}

func IncrementPassesCompleted() {
	passesCompleted.Inc()
}

func IncrementPassesFailed() {
	passesFailed.Inc()
}
