// Package syncer holds the reconcile engine: each pass recomputes the full
// desired state (active GCP projects minus exclusions) and observed state
// (existing derived policies) and drives the minimal create/update/delete
// sequence to converge them. Passes are stateless; a pass that is skipped or
// half-fails is healed by the next one.
package syncer

import (
	"context"

	"github.com/amit7itz/goset"
	"github.com/fleetsync/gcp-integration-syncer/shared/kibana"
)

// ProjectSource yields the complete set of live, active project IDs under
// the configured scope. Implementations must fully drain pagination before
// returning; a partial snapshot would be reconciled as deletions.
type ProjectSource interface {
	ListProjects(ctx context.Context) (*goset.Set[string], error)
}

// PolicyStore is the control-plane boundary. ListDerivedPolicies returns the
// decodable policies matching the derived naming convention plus the names
// of prefix-matching policies that failed to decode.
type PolicyStore interface {
	GetMasterPolicy(ctx context.Context) (kibana.PackagePolicy, error)
	ListDerivedPolicies(ctx context.Context) ([]kibana.PackagePolicy, []string, error)
	CreatePackagePolicy(ctx context.Context, def kibana.PackagePolicy) (kibana.PackagePolicy, error)
	UpdatePackagePolicy(ctx context.Context, id string, def kibana.PackagePolicy) error
	DeletePackagePolicy(ctx context.Context, id string) error
}

type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

type FailedOperation struct {
	ProjectID string
	Operation Operation
	Reason    error
}

// Result is the externally observable outcome of one reconciliation pass.
// Project ID slices are sorted for stable logs and assertions.
type Result struct {
	PassID    string
	Created   []string
	Updated   []string
	Deleted   []string
	Failed    []FailedOperation
	Malformed []string
}

// Operations reports how many mutations the pass attempted, including the
// failed ones.
func (r Result) Operations() int {
	return len(r.Created) + len(r.Updated) + len(r.Deleted) + len(r.Failed)
}

// FilterExcluded removes the configured exclusions from the desired project
// set. Pure set difference by exact project ID.
func FilterExcluded(projects *goset.Set[string], exclusions *goset.Set[string]) *goset.Set[string] {
	return projects.Difference(exclusions)
}
