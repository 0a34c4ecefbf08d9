package kibana

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fleetsync/gcp-integration-syncer/shared/errors"
	"github.com/fleetsync/gcp-integration-syncer/shared/syncerconfig"
	"github.com/fleetsync/gcp-integration-syncer/shared/syncererrors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"
)

// prefixNames stands in for the production name codec so the client tests
// stay decoupled from the template package.
type prefixNames struct {
	prefix string
}

func (p prefixNames) ProjectID(name string) (string, bool) {
	projectID, found := strings.CutPrefix(name, p.prefix+"-")
	if !found || projectID == "" {
		return "", false
	}
	return projectID, true
}

type ClientTestSuite struct {
	suite.Suite
	server *httptest.Server
}

func (s *ClientTestSuite) SetupTest() {
	viper.Reset()
	viper.Set(syncerconfig.ElasticAPIKeyKey, "test-api-key")
	viper.Set(syncerconfig.MasterAgentPolicyNameKey, "GCP Master")
	viper.Set(syncerconfig.KibanaClientTimeoutKey, "5s")
}

func (s *ClientTestSuite) TearDownTest() {
	if s.server != nil {
		s.server.Close()
		s.server = nil
	}
	viper.Reset()
}

func (s *ClientTestSuite) newClient(handler http.Handler) *Client {
	s.server = httptest.NewServer(handler)
	viper.Set(syncerconfig.KibanaEndpointKey, s.server.URL)
	return NewClient(prefixNames{prefix: "gcp-sync"})
}

func (s *ClientTestSuite) TestRequestCarriesFleetHeaders() {
	client := s.newClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal("ApiKey test-api-key", r.Header.Get("Authorization"))
		s.Equal("true", r.Header.Get("kbn-xsrf"))
		s.Equal("application/json", r.Header.Get("Content-Type"))
		fmt.Fprint(w, `{"items": [{"id": "ap-1", "name": "GCP Master", "package_policies": [{"id": "pp-1", "name": "master", "policy_id": "ap-1"}]}]}`)
	}))

	master, err := client.GetMasterPolicy(context.Background())
	s.Require().NoError(err)
	s.Equal("pp-1", master.ID)
	s.Equal("ap-1", master.PolicyID)
}

func (s *ClientTestSuite) TestGetMasterPolicyIgnoresFuzzyMatches() {
	client := s.newClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": [
			{"id": "ap-2", "name": "GCP Master copy", "package_policies": [{"id": "pp-2", "name": "copy", "policy_id": "ap-2"}]},
			{"id": "ap-1", "name": "GCP Master", "package_policies": [{"id": "pp-1", "name": "master", "policy_id": "ap-1"}]}
		]}`)
	}))

	master, err := client.GetMasterPolicy(context.Background())
	s.Require().NoError(err)
	s.Equal("pp-1", master.ID)
}

func (s *ClientTestSuite) TestGetMasterPolicyMissingWhenNoMatch() {
	client := s.newClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": []}`)
	}))

	_, err := client.GetMasterPolicy(context.Background())
	s.Require().Error(err)
	s.True(errors.Is(err, syncererrors.ErrMasterPolicyMissing))
}

func (s *ClientTestSuite) TestGetMasterPolicyMissingWhenAmbiguous() {
	client := s.newClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": [{"id": "ap-1", "name": "GCP Master", "package_policies": [
			{"id": "pp-1", "name": "first", "policy_id": "ap-1"},
			{"id": "pp-2", "name": "second", "policy_id": "ap-1"}
		]}]}`)
	}))

	_, err := client.GetMasterPolicy(context.Background())
	s.Require().Error(err)
	s.True(errors.Is(err, syncererrors.ErrMasterPolicyMissing))
}

func (s *ClientTestSuite) TestListDerivedPoliciesDrainsPagination() {
	pageSize := listPageSize
	total := pageSize + 2
	client := s.newClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		items := make([]json.RawMessage, 0)
		start, end := 0, 0
		switch page {
		case "1":
			start, end = 0, pageSize
		case "2":
			start, end = pageSize, total
		default:
			s.Failf("unexpected page", "page=%s", page)
		}
		for i := start; i < end; i++ {
			items = append(items, json.RawMessage(fmt.Sprintf(
				`{"id": "pp-%d", "name": "gcp-sync-proj-%d", "policy_id": "ap-1"}`, i, i)))
		}
		response := map[string]any{"items": items, "total": total, "page": page, "perPage": pageSize}
		s.Require().NoError(json.NewEncoder(w).Encode(response))
	}))

	derived, malformed, err := client.ListDerivedPolicies(context.Background())
	s.Require().NoError(err)
	s.Len(derived, total)
	s.Empty(malformed)
}

func (s *ClientTestSuite) TestListDerivedPoliciesFiltersForeignAndMalformed() {
	client := s.newClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": [
			{"id": "pp-1", "name": "gcp-sync-proj-a", "policy_id": "ap-1"},
			{"id": "pp-2", "name": "hand-made-nginx", "policy_id": "ap-1"},
			{"id": "pp-3", "name": "gcp-sync-proj-b", "policy_id": "ap-1", "vars": "corrupt"}
		], "total": 3}`)
	}))

	derived, malformed, err := client.ListDerivedPolicies(context.Background())
	s.Require().NoError(err)
	s.Require().Len(derived, 1)
	s.Equal("gcp-sync-proj-a", derived[0].Name)
	s.Equal([]string{"gcp-sync-proj-b"}, malformed)
}

func (s *ClientTestSuite) TestAuthFailureMapsToErrAuth() {
	client := s.newClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "invalid api key"}`, http.StatusUnauthorized)
	}))

	_, _, err := client.ListDerivedPolicies(context.Background())
	s.Require().Error(err)
	s.True(errors.Is(err, syncererrors.ErrAuth))
}

func (s *ClientTestSuite) TestServerErrorMapsToUpstreamUnavailable() {
	client := s.newClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))

	_, _, err := client.ListDerivedPolicies(context.Background())
	s.Require().Error(err)
	s.True(errors.Is(err, syncererrors.ErrUpstreamUnavailable))
}

func (s *ClientTestSuite) TestConflictOnUpdate() {
	client := s.newClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "conflict"}`, http.StatusConflict)
	}))

	err := client.UpdatePackagePolicy(context.Background(), "pp-1", PackagePolicy{Name: "gcp-sync-proj-a"})
	s.Require().Error(err)
	s.True(errors.Is(err, syncererrors.ErrConflict))
}

func (s *ClientTestSuite) TestDeleteOfVanishedPolicyIsConflict() {
	client := s.newClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "not found"}`, http.StatusNotFound)
	}))

	err := client.DeletePackagePolicy(context.Background(), "pp-1")
	s.Require().Error(err)
	s.True(errors.Is(err, syncererrors.ErrConflict))
}

func (s *ClientTestSuite) TestCreateReturnsServerAssignedPolicy() {
	client := s.newClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		var def PackagePolicy
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&def))
		def.ID = "pp-new"
		def.Revision = 1
		s.Require().NoError(json.NewEncoder(w).Encode(map[string]any{"item": def}))
	}))

	created, err := client.CreatePackagePolicy(context.Background(), PackagePolicy{Name: "gcp-sync-proj-a", PolicyID: "ap-1"})
	s.Require().NoError(err)
	s.Equal("pp-new", created.ID)
	s.Equal("gcp-sync-proj-a", created.Name)
}

func (s *ClientTestSuite) TestUnreachableEndpointIsUpstreamUnavailable() {
	viper.Set(syncerconfig.KibanaEndpointKey, "http://127.0.0.1:1")
	client := NewClient(prefixNames{prefix: "gcp-sync"})

	_, _, err := client.ListDerivedPolicies(context.Background())
	s.Require().Error(err)
	s.True(errors.Is(err, syncererrors.ErrUpstreamUnavailable))
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, &ClientTestSuite{})
}
