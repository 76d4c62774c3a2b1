package artifact

import (
	"fmt"
	"strings"

	"changelogagg/internal/apperrors"
)

// Validate validates an artifact reference at the given index.
// A resolved artifact must name its file; unresolved ones are kept so the
// aggregator can skip them without losing the resolver's ordering.
func Validate(i int, r Ref) error {
	field := fmt.Sprintf("artifacts[%d]", i)

	if strings.TrimSpace(r.ID) == "" && strings.TrimSpace(r.File) == "" {
		return apperrors.Configuration(field, fmt.Sprintf("artifact[%d]: id or file is required", i))
	}
	if r.Resolved && strings.TrimSpace(r.File) == "" {
		return apperrors.Configuration(field+".file", fmt.Sprintf("artifact[%d]: file is required for a resolved artifact", i))
	}
	if strings.ContainsRune(r.File, 0) {
		return apperrors.Configuration(field+".file", fmt.Sprintf("artifact[%d]: file contains a NUL byte", i))
	}

	return nil
}

// ValidateAll validates every reference in order.
func ValidateAll(refs []Ref) error {
	for i, r := range refs {
		if err := Validate(i, r); err != nil {
			return err
		}
	}
	return nil
}
