package kibana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fleetsync/gcp-integration-syncer/shared/errors"
	"github.com/fleetsync/gcp-integration-syncer/shared/syncerconfig"
	"github.com/fleetsync/gcp-integration-syncer/shared/syncererrors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	agentPoliciesPath   = "/api/fleet/agent_policies"
	packagePoliciesPath = "/api/fleet/package_policies"

	listPageSize = 100
)

var errNotFound = errors.NewSentinelError("not found")

// NameCodec recognizes derived policy names. The template package owns the
// naming convention; the client only asks it whether a name belongs to a
// project.
type NameCodec interface {
	ProjectID(name string) (string, bool)
}

// Client talks to the Kibana Fleet API. It implements the syncer's
// PolicyStore contract: master policy resolution, derived policy listing and
// the create/update/delete operations.
type Client struct {
	endpoint              string
	apiKey                string
	masterAgentPolicyName string
	names                 NameCodec
	client                *http.Client
}

func NewClient(names NameCodec) *Client {
	return &Client{
		endpoint:              strings.TrimSuffix(viper.GetString(syncerconfig.KibanaEndpointKey), "/"),
		apiKey:                viper.GetString(syncerconfig.ElasticAPIKeyKey),
		masterAgentPolicyName: viper.GetString(syncerconfig.MasterAgentPolicyNameKey),
		names:                 names,
		client:                &http.Client{Timeout: viper.GetDuration(syncerconfig.KibanaClientTimeoutKey)},
	}
}

// GetMasterPolicy resolves the master integration policy: the single package
// policy of the agent policy named by configuration. Anything other than
// exactly one match is ErrMasterPolicyMissing - there is no safe template to
// clone from.
func (c *Client) GetMasterPolicy(ctx context.Context) (PackagePolicy, error) {
	query := url.Values{}
	query.Set("kuery", fmt.Sprintf("name:%q", c.masterAgentPolicyName))
	query.Set("full", "true")

	var response struct {
		Items []AgentPolicy `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, agentPoliciesPath, query, nil, &response); err != nil {
		if errors.Is(err, errNotFound) {
			return PackagePolicy{}, errors.Errorf("agent policy %q: %w", c.masterAgentPolicyName, syncererrors.ErrMasterPolicyMissing)
		}
		return PackagePolicy{}, errors.Wrap(err)
	}

	// kuery matching is fuzzy, insist on the exact name
	for _, agentPolicy := range response.Items {
		if agentPolicy.Name != c.masterAgentPolicyName {
			continue
		}
		if len(agentPolicy.PackagePolicies) != 1 {
			return PackagePolicy{}, errors.Errorf("agent policy %q has %d package policies, expected exactly one master integration: %w",
				c.masterAgentPolicyName, len(agentPolicy.PackagePolicies), syncererrors.ErrMasterPolicyMissing)
		}
		return agentPolicy.PackagePolicies[0], nil
	}

	return PackagePolicy{}, errors.Errorf("no agent policy named %q: %w", c.masterAgentPolicyName, syncererrors.ErrMasterPolicyMissing)
}

// ListDerivedPolicies returns every package policy whose name the codec
// recognizes as derived, draining pagination so the caller always sees a
// complete snapshot. Recognized items that fail to decode are returned by
// name in the second value; they are warned about and left alone.
func (c *Client) ListDerivedPolicies(ctx context.Context) ([]PackagePolicy, []string, error) {
	derived := make([]PackagePolicy, 0)
	malformed := make([]string, 0)

	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		query.Set("perPage", strconv.Itoa(listPageSize))

		var response struct {
			Items []json.RawMessage `json:"items"`
			Total int               `json:"total"`
		}
		if err := c.do(ctx, http.MethodGet, packagePoliciesPath, query, nil, &response); err != nil {
			return nil, nil, errors.Wrap(err)
		}

		for _, item := range response.Items {
			policy, ok, err := c.decodeDerived(item)
			if err != nil {
				name := policyName(item)
				logrus.WithError(err).Warningf("Skipping malformed derived policy %q", name)
				malformed = append(malformed, name)
				continue
			}
			if ok {
				derived = append(derived, policy)
			}
		}

		if len(response.Items) == 0 || page*listPageSize >= response.Total {
			break
		}
	}

	return derived, malformed, nil
}

func (c *Client) CreatePackagePolicy(ctx context.Context, def PackagePolicy) (PackagePolicy, error) {
	var response struct {
		Item PackagePolicy `json:"item"`
	}
	if err := c.do(ctx, http.MethodPost, packagePoliciesPath, nil, def, &response); err != nil {
		if errors.Is(err, errNotFound) {
			return PackagePolicy{}, errors.Errorf("create %q: %w", def.Name, syncererrors.ErrConflict)
		}
		return PackagePolicy{}, errors.Wrap(err)
	}
	return response.Item, nil
}

func (c *Client) UpdatePackagePolicy(ctx context.Context, id string, def PackagePolicy) error {
	err := c.do(ctx, http.MethodPut, packagePoliciesPath+"/"+id, nil, def, nil)
	if err == nil {
		return nil
	}
	if errors.Is(err, errNotFound) {
		// target vanished between gather and execute
		return errors.Errorf("update %s: %w", id, syncererrors.ErrConflict)
	}
	return errors.Wrap(err)
}

func (c *Client) DeletePackagePolicy(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, packagePoliciesPath+"/"+id, nil, nil, nil)
	if err == nil {
		return nil
	}
	if errors.Is(err, errNotFound) {
		// already gone, same terminal state the delete was after
		return errors.Errorf("delete %s: %w", id, syncererrors.ErrConflict)
	}
	return errors.Wrap(err)
}

// decodeDerived decodes a raw package policy item, reporting ok=false for
// policies outside the derived naming convention.
func (c *Client) decodeDerived(item json.RawMessage) (PackagePolicy, bool, error) {
	name := policyName(item)
	if _, ok := c.names.ProjectID(name); !ok {
		return PackagePolicy{}, false, nil
	}

	var policy PackagePolicy
	if err := json.Unmarshal(item, &policy); err != nil {
		return PackagePolicy{}, false, errors.Errorf("decoding package policy %q: %w", name, syncererrors.ErrMalformedPolicy)
	}
	return policy, true, nil
}

func policyName(item json.RawMessage) string {
	var header struct {
		Name string `json:"name"`
	}
	// best effort, used for prefix matching and log lines only
	_ = json.Unmarshal(item, &header)
	return header.Name
}

func (c *Client) do(ctx context.Context, method string, path string, query url.Values, body any, out any) error {
	requestURL := c.endpoint + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var requestBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err)
		}
		requestBody = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, requestBody)
	if err != nil {
		return errors.Wrap(err)
	}
	request.Header.Set("kbn-xsrf", "true")
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "ApiKey "+c.apiKey)

	response, err := c.client.Do(request)
	if err != nil {
		return errors.Errorf("fleet API request %s %s: %v: %w", method, path, err, syncererrors.ErrUpstreamUnavailable)
	}
	defer response.Body.Close()

	if err := c.checkStatus(method, path, response); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return errors.Errorf("decoding fleet API response for %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) checkStatus(method string, path string, response *http.Response) error {
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(response.Body, 512))
	switch {
	case response.StatusCode == http.StatusUnauthorized || response.StatusCode == http.StatusForbidden:
		return errors.Errorf("fleet API %s %s: %s: %w", method, path, snippet, syncererrors.ErrAuth)
	case response.StatusCode == http.StatusNotFound:
		return errors.Errorf("fleet API %s %s: %w", method, path, errNotFound)
	case response.StatusCode == http.StatusConflict:
		return errors.Errorf("fleet API %s %s: %s: %w", method, path, snippet, syncererrors.ErrConflict)
	case response.StatusCode == http.StatusTooManyRequests || response.StatusCode >= 500:
		return errors.Errorf("fleet API %s %s: status %d: %w", method, path, response.StatusCode, syncererrors.ErrUpstreamUnavailable)
	default:
		return errors.Errorf("fleet API %s %s: unexpected status %d: %s", method, path, response.StatusCode, snippet)
	}
}
