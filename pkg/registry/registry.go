package registry

import (
	"encoding/json"
	"fmt"
	"os"

	apperrors "product-assistant/internal/common/errors"
)

// LoadRegistry reads and parses the registry file. A file that cannot be read
// is reported as REGISTRY_UNAVAILABLE.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewRegistryUnavailableError(err)
	}
	return ParseRegistry(data)
}

func ParseRegistry(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return &reg, nil
}

// FindByTaskType returns the activity registered for taskType.
func (r *ActivityRegistry) FindByTaskType(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}
