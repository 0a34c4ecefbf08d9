package syncer

import (
	"context"
	"sort"

	"github.com/amit7itz/goset"
	"github.com/fleetsync/gcp-integration-syncer/prometheus"
	"github.com/fleetsync/gcp-integration-syncer/shared/errors"
	"github.com/fleetsync/gcp-integration-syncer/shared/kibana"
	"github.com/fleetsync/gcp-integration-syncer/syncer/template"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Engine drives one reconciliation pass at a time. Callers must not run two
// passes for the same scope concurrently; the engine does not take a
// distributed lock.
type Engine struct {
	projects   ProjectSource
	store      PolicyStore
	template   *template.Template
	exclusions *goset.Set[string]
}

func NewEngine(projects ProjectSource, store PolicyStore, tmpl *template.Template, exclusions *goset.Set[string]) *Engine {
	return &Engine{
		projects:   projects,
		store:      store,
		template:   tmpl,
		exclusions: exclusions,
	}
}

type gathered struct {
	projects  *goset.Set[string]
	master    kibana.PackagePolicy
	derived   []kibana.PackagePolicy
	malformed []string
}

type plannedCreate struct {
	projectID string
	def       kibana.PackagePolicy
}

type plannedUpdate struct {
	projectID string
	policyID  string
	def       kibana.PackagePolicy
}

type plannedDelete struct {
	projectID string
	policyID  string
}

type plan struct {
	creates []plannedCreate
	updates []plannedUpdate
	deletes []plannedDelete
}

// RunPass executes one gather/classify/execute cycle. Gather failures are
// fatal and return before any mutation; execute failures are isolated per
// operation and reported in the Result.
func (e *Engine) RunPass(ctx context.Context) (Result, error) {
	passID := uuid.NewString()
	logger := logrus.WithField("pass", passID)

	state, err := e.gather(ctx)
	if err != nil {
		return Result{}, errors.Wrap(err)
	}

	desired := FilterExcluded(state.projects, e.exclusions)
	logger.Infof("Gathered %d desired projects (%d excluded), %d derived policies, %d malformed",
		desired.Len(), state.projects.Len()-desired.Len(), len(state.derived), len(state.malformed))

	passPlan, err := e.classify(desired, state)
	if err != nil {
		// the master payload could not be rendered, no safe template
		return Result{}, errors.Wrap(err)
	}

	result := e.execute(ctx, passPlan, logger)
	result.PassID = passID
	result.Malformed = state.malformed
	sort.Strings(result.Malformed)

	prometheus.IncrementPoliciesCreated(len(result.Created))
	prometheus.IncrementPoliciesUpdated(len(result.Updated))
	prometheus.IncrementPoliciesDeleted(len(result.Deleted))
	prometheus.IncrementOperationsFailed(len(result.Failed))

	return result, nil
}

// gather reads desired and observed state. The project search and the policy
// store reads are independent, so they run in parallel; any failure aborts
// the pass before it can mutate anything.
func (e *Engine) gather(ctx context.Context) (gathered, error) {
	var state gathered
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		projects, err := e.projects.ListProjects(groupCtx)
		if err != nil {
			return errors.Wrap(err)
		}
		state.projects = projects
		return nil
	})

	group.Go(func() error {
		master, err := e.store.GetMasterPolicy(groupCtx)
		if err != nil {
			return errors.Wrap(err)
		}
		state.master = master
		return nil
	})

	group.Go(func() error {
		derived, malformed, err := e.store.ListDerivedPolicies(groupCtx)
		if err != nil {
			return errors.Wrap(err)
		}
		state.derived = derived
		state.malformed = malformed
		return nil
	})

	if err := group.Wait(); err != nil {
		return gathered{}, errors.Wrap(err)
	}
	return state, nil
}

// classify partitions the desired and observed project IDs into the minimal
// operation set. Policies whose names do not parse under the naming
// convention never reach the plan.
func (e *Engine) classify(desired *goset.Set[string], state gathered) (plan, error) {
	observedByProject, extraDuplicates := e.indexObserved(state.derived)

	var passPlan plan
	for _, projectID := range sorted(desired) {
		rendered, err := e.template.Render(state.master, projectID)
		if err != nil {
			return plan{}, errors.Wrap(err)
		}

		observed, exists := observedByProject[projectID]
		if !exists {
			passPlan.creates = append(passPlan.creates, plannedCreate{projectID: projectID, def: rendered})
			continue
		}

		equal, err := definitionsEqual(rendered, observed)
		if err != nil {
			return plan{}, errors.Wrap(err)
		}
		if !equal {
			passPlan.updates = append(passPlan.updates, plannedUpdate{projectID: projectID, policyID: observed.ID, def: rendered})
		}
	}

	for projectID, observed := range observedByProject {
		if desired.Contains(projectID) {
			continue
		}
		passPlan.deletes = append(passPlan.deletes, plannedDelete{projectID: projectID, policyID: observed.ID})
	}
	// duplicate derived policies for a desired project: everything beyond
	// the retained one is deleted to restore the one-policy-per-project
	// invariant
	passPlan.deletes = append(passPlan.deletes, extraDuplicates...)

	sort.Slice(passPlan.deletes, func(i, j int) bool {
		if passPlan.deletes[i].projectID != passPlan.deletes[j].projectID {
			return passPlan.deletes[i].projectID < passPlan.deletes[j].projectID
		}
		return passPlan.deletes[i].policyID < passPlan.deletes[j].policyID
	})

	return passPlan, nil
}

// indexObserved maps observed derived policies by their recovered project ID.
// Unparsable names are ignored entirely: hand-created or foreign policies
// are never deletion candidates. When several policies recover to the same
// project, the lowest policy ID is retained and the rest become deletes.
func (e *Engine) indexObserved(derived []kibana.PackagePolicy) (map[string]kibana.PackagePolicy, []plannedDelete) {
	byProject := make(map[string]kibana.PackagePolicy)
	duplicates := make([]plannedDelete, 0)

	ordered := make([]kibana.PackagePolicy, len(derived))
	copy(ordered, derived)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	for _, policy := range ordered {
		projectID, ok := e.template.ProjectID(policy.Name)
		if !ok {
			logrus.Debugf("Ignoring policy %q: name does not match the derived naming convention", policy.Name)
			continue
		}
		if _, exists := byProject[projectID]; exists {
			logrus.Warningf("Duplicate derived policy %q for project %s, scheduling for deletion", policy.Name, projectID)
			duplicates = append(duplicates, plannedDelete{projectID: projectID, policyID: policy.ID})
			continue
		}
		byProject[projectID] = policy
	}

	return byProject, duplicates
}

// execute issues the planned operations, creates and updates before deletes.
// Operation failures are accumulated, never propagated; the remaining
// operations still run.
func (e *Engine) execute(ctx context.Context, passPlan plan, logger *logrus.Entry) Result {
	result := Result{
		Created: make([]string, 0, len(passPlan.creates)),
		Updated: make([]string, 0, len(passPlan.updates)),
		Deleted: make([]string, 0, len(passPlan.deletes)),
		Failed:  make([]FailedOperation, 0),
	}

	for _, create := range passPlan.creates {
		if _, err := e.store.CreatePackagePolicy(ctx, create.def); err != nil {
			logger.WithError(err).Errorf("Failed to create policy for project %s", create.projectID)
			result.Failed = append(result.Failed, FailedOperation{ProjectID: create.projectID, Operation: OperationCreate, Reason: err})
			continue
		}
		logger.Infof("Created policy %q for project %s", create.def.Name, create.projectID)
		result.Created = append(result.Created, create.projectID)
	}

	for _, update := range passPlan.updates {
		if err := e.store.UpdatePackagePolicy(ctx, update.policyID, update.def); err != nil {
			logger.WithError(err).Errorf("Failed to update policy for project %s", update.projectID)
			result.Failed = append(result.Failed, FailedOperation{ProjectID: update.projectID, Operation: OperationUpdate, Reason: err})
			continue
		}
		logger.Infof("Updated policy %q for project %s", update.def.Name, update.projectID)
		result.Updated = append(result.Updated, update.projectID)
	}

	for _, del := range passPlan.deletes {
		if err := e.store.DeletePackagePolicy(ctx, del.policyID); err != nil {
			logger.WithError(err).Errorf("Failed to delete policy of project %s", del.projectID)
			result.Failed = append(result.Failed, FailedOperation{ProjectID: del.projectID, Operation: OperationDelete, Reason: err})
			continue
		}
		logger.Infof("Deleted policy %s of project %s", del.policyID, del.projectID)
		result.Deleted = append(result.Deleted, del.projectID)
	}

	sort.Strings(result.Created)
	sort.Strings(result.Updated)
	sort.Strings(result.Deleted)
	return result
}

func definitionsEqual(rendered kibana.PackagePolicy, observed kibana.PackagePolicy) (bool, error) {
	renderedJSON, err := template.Canonical(rendered)
	if err != nil {
		return false, errors.Wrap(err)
	}
	observedJSON, err := template.Canonical(observed)
	if err != nil {
		return false, errors.Wrap(err)
	}
	return string(renderedJSON) == string(observedJSON), nil
}

func sorted(set *goset.Set[string]) []string {
	items := set.Items()
	sort.Strings(items)
	return items
}
