package template

import (
	"encoding/json"
	"testing"

	"github.com/fleetsync/gcp-integration-syncer/shared/kibana"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/suite"
)

type TemplateTestSuite struct {
	suite.Suite
	template *Template
}

func (s *TemplateTestSuite) SetupTest() {
	s.template = New("gcp-sync")
}

func sampleMaster() kibana.PackagePolicy {
	return kibana.PackagePolicy{
		ID:       "master-id",
		Name:     "gcp-master",
		PolicyID: "agent-policy-7",
		Package:  &kibana.PackageRef{Name: "gcp", Version: "2.11.0"},
		Vars: map[string]kibana.PolicyVar{
			"project_id": {Value: "master-project", Type: "text"},
			"zone":       {Value: "europe-west1-b", Type: "text"},
		},
		Inputs: []kibana.PolicyInput{
			{
				Type:    "gcp/metrics",
				Enabled: true,
				Vars:    map[string]kibana.PolicyVar{"project_id": {Value: "master-project", Type: "text"}},
				Streams: []kibana.PolicyStream{
					{
						ID:         "stream-9",
						Enabled:    true,
						DataStream: kibana.DataStream{Type: "logs", Dataset: "gcp.audit"},
						Vars:       map[string]kibana.PolicyVar{"project_id": {Value: "master-project", Type: "text"}},
					},
				},
			},
		},
		Revision:  12,
		Version:   "WzI0NywxXQ==",
		CreatedAt: "2024-01-01T00:00:00Z",
		CreatedBy: "elastic",
		UpdatedAt: "2024-02-01T00:00:00Z",
		UpdatedBy: "elastic",
	}
}

func (s *TemplateTestSuite) TestRenderSubstitutesProjectIDEverywhere() {
	rendered, err := s.template.Render(sampleMaster(), "proj-a")
	s.Require().NoError(err)

	s.Equal("gcp-sync-proj-a", rendered.Name)
	s.Equal("proj-a", rendered.Vars["project_id"].Value)
	s.Equal("proj-a", rendered.Inputs[0].Vars["project_id"].Value)
	s.Equal("proj-a", rendered.Inputs[0].Streams[0].Vars["project_id"].Value)
	// non-parameter vars come through untouched
	s.Equal("europe-west1-b", rendered.Vars["zone"].Value)
	s.Equal("agent-policy-7", rendered.PolicyID)
}

func (s *TemplateTestSuite) TestRenderStripsServerOwnedFields() {
	rendered, err := s.template.Render(sampleMaster(), "proj-a")
	s.Require().NoError(err)

	s.Empty(rendered.ID)
	s.Zero(rendered.Revision)
	s.Empty(rendered.Version)
	s.Empty(rendered.CreatedAt)
	s.Empty(rendered.CreatedBy)
	s.Empty(rendered.UpdatedAt)
	s.Empty(rendered.UpdatedBy)
	s.Empty(rendered.Inputs[0].Streams[0].ID)
}

func (s *TemplateTestSuite) TestRenderDoesNotMutateMaster() {
	master := sampleMaster()
	_, err := s.template.Render(master, "proj-a")
	s.Require().NoError(err)

	s.Empty(cmp.Diff(sampleMaster(), master))
}

func (s *TemplateTestSuite) TestRenderIsDeterministic() {
	first, err := s.template.Render(sampleMaster(), "proj-a")
	s.Require().NoError(err)
	second, err := s.template.Render(sampleMaster(), "proj-a")
	s.Require().NoError(err)

	firstJSON, err := Canonical(first)
	s.Require().NoError(err)
	secondJSON, err := Canonical(second)
	s.Require().NoError(err)
	s.Equal(string(firstJSON), string(secondJSON))
}

func (s *TemplateTestSuite) TestCanonicalIgnoresServerOwnedFields() {
	rendered, err := s.template.Render(sampleMaster(), "proj-a")
	s.Require().NoError(err)

	observed := rendered
	observed.ID = "pp-123"
	observed.Revision = 42
	observed.UpdatedAt = "2024-06-01T00:00:00Z"

	renderedJSON, err := Canonical(rendered)
	s.Require().NoError(err)
	observedJSON, err := Canonical(observed)
	s.Require().NoError(err)
	s.Equal(string(renderedJSON), string(observedJSON))
}

func (s *TemplateTestSuite) TestRenderPreservesUnmodeledFields() {
	master := sampleMaster()
	master.Extra = map[string]json.RawMessage{"output_id": json.RawMessage(`"custom-monitoring-output"`)}
	master.Inputs[0].Extra = map[string]json.RawMessage{"config": json.RawMessage(`{"period": {"value": "60s"}}`)}
	master.Inputs[0].Streams[0].Extra = map[string]json.RawMessage{"config": json.RawMessage(`{"metric_types": {"value": ["GAUGE"]}}`)}

	rendered, err := s.template.Render(master, "proj-a")
	s.Require().NoError(err)

	s.JSONEq(`"custom-monitoring-output"`, string(rendered.Extra["output_id"]))
	s.JSONEq(`{"period": {"value": "60s"}}`, string(rendered.Inputs[0].Extra["config"]))
	s.JSONEq(`{"metric_types": {"value": ["GAUGE"]}}`, string(rendered.Inputs[0].Streams[0].Extra["config"]))

	encoded, err := json.Marshal(rendered)
	s.Require().NoError(err)
	s.Contains(string(encoded), `"output_id"`)
}

func (s *TemplateTestSuite) TestCanonicalDetectsUnmodeledFieldDrift() {
	master := sampleMaster()
	master.Extra = map[string]json.RawMessage{"output_id": json.RawMessage(`"custom-monitoring-output"`)}

	rendered, err := s.template.Render(master, "proj-a")
	s.Require().NoError(err)

	drifted, err := s.template.Render(master, "proj-a")
	s.Require().NoError(err)
	drifted.Extra["output_id"] = json.RawMessage(`"default"`)

	renderedJSON, err := Canonical(rendered)
	s.Require().NoError(err)
	driftedJSON, err := Canonical(drifted)
	s.Require().NoError(err)
	s.NotEqual(string(renderedJSON), string(driftedJSON))
}

func (s *TemplateTestSuite) TestNameCodecRoundTrip() {
	for _, projectID := range []string{"proj-a", "my-project-123", "x"} {
		name := s.template.DerivedName(projectID)
		recovered, ok := s.template.ProjectID(name)
		s.Require().True(ok, "name %q must parse back", name)
		s.Equal(projectID, recovered)
	}
}

func (s *TemplateTestSuite) TestProjectIDRejectsForeignNames() {
	for _, name := range []string{"hand-made-nginx", "gcp-sync", "gcp-sync-", "gcp-syncx-proj", ""} {
		_, ok := s.template.ProjectID(name)
		s.False(ok, "name %q must not parse", name)
	}
}

func TestTemplateTestSuite(t *testing.T) {
	suite.Run(t, &TemplateTestSuite{})
}
