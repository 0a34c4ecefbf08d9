package kibana

import "encoding/json"

// Fleet API payload types. Only the fields the syncer reads or rewrites are
// typed; every other key of a payload object is kept in the Extra map of its
// level, so cloning and diffing always operate on the complete definition.

type PackageRef struct {
	Name    string `json:"name"`
	Title   string `json:"title,omitempty"`
	Version string `json:"version"`

	Extra map[string]json.RawMessage `json:"-"`
}

type PolicyVar struct {
	Value any    `json:"value,omitempty"`
	Type  string `json:"type,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type DataStream struct {
	Type    string `json:"type"`
	Dataset string `json:"dataset"`

	Extra map[string]json.RawMessage `json:"-"`
}

type PolicyStream struct {
	ID         string               `json:"id,omitempty"`
	Enabled    bool                 `json:"enabled"`
	DataStream DataStream           `json:"data_stream"`
	Vars       map[string]PolicyVar `json:"vars,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type PolicyInput struct {
	Type           string               `json:"type"`
	PolicyTemplate string               `json:"policy_template,omitempty"`
	Enabled        bool                 `json:"enabled"`
	Vars           map[string]PolicyVar `json:"vars,omitempty"`
	Streams        []PolicyStream       `json:"streams,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// PackagePolicy is a Fleet integration policy definition. The server-owned
// audit fields are never part of a rendered definition; they are stripped
// before create/update requests and before payload comparison.
type PackagePolicy struct {
	ID          string               `json:"id,omitempty"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Namespace   string               `json:"namespace,omitempty"`
	PolicyID    string               `json:"policy_id"`
	Package     *PackageRef          `json:"package,omitempty"`
	Vars        map[string]PolicyVar `json:"vars,omitempty"`
	Inputs      []PolicyInput        `json:"inputs,omitempty"`

	Revision  int    `json:"revision,omitempty"`
	Version   string `json:"version,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	CreatedBy string `json:"created_by,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
	UpdatedBy string `json:"updated_by,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type AgentPolicy struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Namespace       string          `json:"namespace,omitempty"`
	PackagePolicies []PackagePolicy `json:"package_policies,omitempty"`
}

func (p *PackageRef) UnmarshalJSON(data []byte) error {
	type packageRefAlias PackageRef
	var typed packageRefAlias
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	extra, err := extraFields(data, packageRefAlias{})
	if err != nil {
		return err
	}
	typed.Extra = extra
	*p = PackageRef(typed)
	return nil
}

func (p PackageRef) MarshalJSON() ([]byte, error) {
	type packageRefAlias PackageRef
	return marshalWithExtra(packageRefAlias(p), p.Extra)
}

func (v *PolicyVar) UnmarshalJSON(data []byte) error {
	type policyVarAlias PolicyVar
	var typed policyVarAlias
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	extra, err := extraFields(data, policyVarAlias{})
	if err != nil {
		return err
	}
	typed.Extra = extra
	*v = PolicyVar(typed)
	return nil
}

func (v PolicyVar) MarshalJSON() ([]byte, error) {
	type policyVarAlias PolicyVar
	return marshalWithExtra(policyVarAlias(v), v.Extra)
}

func (d *DataStream) UnmarshalJSON(data []byte) error {
	type dataStreamAlias DataStream
	var typed dataStreamAlias
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	extra, err := extraFields(data, dataStreamAlias{})
	if err != nil {
		return err
	}
	typed.Extra = extra
	*d = DataStream(typed)
	return nil
}

func (d DataStream) MarshalJSON() ([]byte, error) {
	type dataStreamAlias DataStream
	return marshalWithExtra(dataStreamAlias(d), d.Extra)
}

func (s *PolicyStream) UnmarshalJSON(data []byte) error {
	type policyStreamAlias PolicyStream
	var typed policyStreamAlias
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	extra, err := extraFields(data, policyStreamAlias{})
	if err != nil {
		return err
	}
	typed.Extra = extra
	*s = PolicyStream(typed)
	return nil
}

func (s PolicyStream) MarshalJSON() ([]byte, error) {
	type policyStreamAlias PolicyStream
	return marshalWithExtra(policyStreamAlias(s), s.Extra)
}

func (i *PolicyInput) UnmarshalJSON(data []byte) error {
	type policyInputAlias PolicyInput
	var typed policyInputAlias
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	extra, err := extraFields(data, policyInputAlias{})
	if err != nil {
		return err
	}
	typed.Extra = extra
	*i = PolicyInput(typed)
	return nil
}

func (i PolicyInput) MarshalJSON() ([]byte, error) {
	type policyInputAlias PolicyInput
	return marshalWithExtra(policyInputAlias(i), i.Extra)
}

func (p *PackagePolicy) UnmarshalJSON(data []byte) error {
	type packagePolicyAlias PackagePolicy
	var typed packagePolicyAlias
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	extra, err := extraFields(data, packagePolicyAlias{})
	if err != nil {
		return err
	}
	typed.Extra = extra
	*p = PackagePolicy(typed)
	return nil
}

func (p PackagePolicy) MarshalJSON() ([]byte, error) {
	type packagePolicyAlias PackagePolicy
	return marshalWithExtra(packagePolicyAlias(p), p.Extra)
}
