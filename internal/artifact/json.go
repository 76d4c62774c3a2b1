package artifact

import (
	"encoding/json"
	"fmt"
	"os"
)

// UnmarshalRefs unmarshals a JSON array of artifact references, validating
// each entry and preserving the resolver's order.
func UnmarshalRefs(data []byte) ([]Ref, error) {
	var rawRefs []json.RawMessage
	if err := json.Unmarshal(data, &rawRefs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal artifacts array: %w", err)
	}

	refs := make([]Ref, 0, len(rawRefs))
	for i, raw := range rawRefs {
		var ref Ref
		if err := json.Unmarshal(raw, &ref); err != nil {
			return nil, fmt.Errorf("artifact[%d]: %w", i, err)
		}
		if err := Validate(i, ref); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	return refs, nil
}

// LoadRefs reads a JSON artifact list from a file.
func LoadRefs(path string) ([]Ref, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifacts file: %w", err)
	}
	return UnmarshalRefs(data)
}

// MarshalRefs marshals artifact references as a JSON array.
func MarshalRefs(refs []Ref) ([]byte, error) {
	if refs == nil {
		refs = []Ref{}
	}
	return json.Marshal(refs)
}
