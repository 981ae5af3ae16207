package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Validator checks job variables against the input schemas of a registry.
// Compiled schemas are cached per task type.
type Validator struct {
	reg *ActivityRegistry

	mu      sync.Mutex
	schemas map[string]*gojsonschema.Schema
}

func NewValidator(reg *ActivityRegistry) *Validator {
	return &Validator{reg: reg, schemas: make(map[string]*gojsonschema.Schema)}
}

// ValidateInput validates data against the task type's input schema. Task
// types without a registered schema are accepted.
func (v *Validator) ValidateInput(taskType string, data interface{}) error {
	schema, err := v.schemaFor(taskType)
	if err != nil {
		return err
	}
	if schema == nil {
		return nil
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("input validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (v *Validator) schemaFor(taskType string) (*gojsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.schemas[taskType]; ok {
		return s, nil
	}

	activity, ok := v.reg.FindByTaskType(taskType)
	if !ok || len(activity.InputSchema) == 0 {
		v.schemas[taskType] = nil
		return nil, nil
	}

	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(activity.InputSchema))
	if err != nil {
		return nil, fmt.Errorf("compile input schema for %s: %w", taskType, err)
	}
	v.schemas[taskType] = s
	return s, nil
}

// Check compiles every input and output schema in the registry.
func (r *ActivityRegistry) Check() error {
	for _, a := range r.Activities {
		if a.TaskType == "" {
			return fmt.Errorf("activity %q has no taskType", a.ID)
		}
		for name, schema := range map[string]map[string]interface{}{"input": a.InputSchema, "output": a.OutputSchema} {
			if len(schema) == 0 {
				continue
			}
			if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema)); err != nil {
				return fmt.Errorf("activity %s %s schema: %w", a.TaskType, name, err)
			}
		}
	}
	return nil
}
