package kibana

import (
	"encoding/json"
	"reflect"
	"strings"
)

// extraFields returns the top-level JSON keys of data that the prototype
// struct does not model, keyed by their raw values. Returns nil when every
// key is modeled.
func extraFields(data []byte, prototype any) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for _, key := range modeledKeys(prototype) {
		delete(raw, key)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

// marshalWithExtra merges the unmodeled keys back into the typed struct's
// JSON form. The merged object marshals through a map, so its keys come out
// sorted, which keeps the encoding deterministic.
func marshalWithExtra(typed any, extra map[string]json.RawMessage) ([]byte, error) {
	typedJSON, err := json.Marshal(typed)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return typedJSON, nil
	}

	merged := make(map[string]json.RawMessage)
	if err := json.Unmarshal(typedJSON, &merged); err != nil {
		return nil, err
	}
	for key, value := range extra {
		merged[key] = value
	}
	return json.Marshal(merged)
}

func modeledKeys(prototype any) []string {
	structType := reflect.TypeOf(prototype)
	keys := make([]string, 0, structType.NumField())
	for i := 0; i < structType.NumField(); i++ {
		name, _, _ := strings.Cut(structType.Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		keys = append(keys, name)
	}
	return keys
}
