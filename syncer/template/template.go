// Package template renders derived integration policies from the master
// definition, and owns the naming convention that ties a derived policy back
// to its GCP project. Render and ProjectID are exact inverses over the name;
// keeping them in one place keeps the create path and the orphan-detection
// path from drifting apart.
package template

import (
	"encoding/json"
	"strings"

	"github.com/fleetsync/gcp-integration-syncer/shared/errors"
	"github.com/fleetsync/gcp-integration-syncer/shared/kibana"
)

// projectIDVar is the var slot the project identity is substituted into, at
// the policy, input and stream levels.
const projectIDVar = "project_id"

type Template struct {
	prefix string
}

func New(prefix string) *Template {
	return &Template{prefix: prefix}
}

// Render produces the desired derived policy for projectID: a clone of the
// master with server-owned fields cleared, the derived name applied and the
// project ID substituted into every project_id var. It is a pure function;
// identical inputs yield byte-identical definitions under Canonical.
func (t *Template) Render(master kibana.PackagePolicy, projectID string) (kibana.PackagePolicy, error) {
	derived, err := clone(master)
	if err != nil {
		return kibana.PackagePolicy{}, errors.Wrap(err)
	}

	stripServerOwned(&derived)
	derived.Name = t.DerivedName(projectID)
	derived.Description = "Managed by gcp-integration-syncer for project " + projectID

	setProjectIDVar(derived.Vars, projectID)
	for i := range derived.Inputs {
		setProjectIDVar(derived.Inputs[i].Vars, projectID)
		for j := range derived.Inputs[i].Streams {
			setProjectIDVar(derived.Inputs[i].Streams[j].Vars, projectID)
		}
	}

	return derived, nil
}

// DerivedName builds the deterministic name of the derived policy for a
// project.
func (t *Template) DerivedName(projectID string) string {
	return t.prefix + "-" + projectID
}

// ProjectID recovers the project ID from a derived policy name. It is the
// inverse of DerivedName; names outside the convention report ok=false and
// must never be touched by the engine.
func (t *Template) ProjectID(name string) (string, bool) {
	projectID, found := strings.CutPrefix(name, t.prefix+"-")
	if !found || projectID == "" {
		return "", false
	}
	return projectID, true
}

// Canonical returns the canonical JSON form of a definition with the
// server-owned fields stripped, so that a freshly rendered definition and an
// observed one compare equal exactly when no update is needed.
func Canonical(def kibana.PackagePolicy) ([]byte, error) {
	normalized, err := clone(def)
	if err != nil {
		return nil, errors.Wrap(err)
	}
	stripServerOwned(&normalized)

	encoded, err := json.Marshal(normalized)
	if err != nil {
		return nil, errors.Wrap(err)
	}
	return encoded, nil
}

// clone deep-copies a definition through JSON, which also normalizes the
// untyped var values so two structurally equal payloads marshal identically.
func clone(def kibana.PackagePolicy) (kibana.PackagePolicy, error) {
	encoded, err := json.Marshal(def)
	if err != nil {
		return kibana.PackagePolicy{}, errors.Wrap(err)
	}
	var copied kibana.PackagePolicy
	if err := json.Unmarshal(encoded, &copied); err != nil {
		return kibana.PackagePolicy{}, errors.Wrap(err)
	}
	return copied, nil
}

func stripServerOwned(def *kibana.PackagePolicy) {
	def.ID = ""
	def.Revision = 0
	def.Version = ""
	def.CreatedAt = ""
	def.CreatedBy = ""
	def.UpdatedAt = ""
	def.UpdatedBy = ""
	for i := range def.Inputs {
		for j := range def.Inputs[i].Streams {
			def.Inputs[i].Streams[j].ID = ""
		}
	}
}

func setProjectIDVar(vars map[string]kibana.PolicyVar, projectID string) {
	if vars == nil {
		return
	}
	if current, ok := vars[projectIDVar]; ok {
		current.Value = projectID
		vars[projectIDVar] = current
	}
}
