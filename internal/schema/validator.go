// Package schema validates tool arguments against JSON Schemas before a
// handler runs.
// file: internal/schema/validator.go
package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/logging"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const resourcePrefix = "mem://camptools/tools/"

// Validator holds one compiled schema per name. It is safe for concurrent
// use; Register is normally called once per tool at startup.
type Validator struct {
	mu      sync.RWMutex
	schemas map[string]*jsonschema.Schema
	logger  logging.Logger
}

// NewValidator returns an empty validator.
func NewValidator(logger logging.Logger) *Validator {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Validator{
		schemas: make(map[string]*jsonschema.Schema),
		logger:  logger.WithField("component", "schema_validator"),
	}
}

// Register compiles doc and stores it under name, replacing any previous
// schema with that name.
func (v *Validator) Register(name string, doc []byte) error {
	if err := ValidateToolName(name); err != nil {
		return err
	}
	url := resourcePrefix + name + ".json"
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(url, bytes.NewReader(doc)); err != nil {
		return NewValidationError(ErrSchemaCompileFailed, fmt.Sprintf("loading schema for %s", name), err)
	}
	start := time.Now()
	compiled, err := compiler.Compile(url)
	if err != nil {
		return NewValidationError(ErrSchemaCompileFailed, fmt.Sprintf("compiling schema for %s", name), err)
	}
	v.mu.Lock()
	v.schemas[name] = compiled
	v.mu.Unlock()
	v.logger.Debug("Schema registered.", "name", name, "compile_duration", time.Since(start))
	return nil
}

// HasSchema reports whether name has a registered schema.
func (v *Validator) HasSchema(name string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.schemas[name]
	return ok
}

// Names returns the registered names, sorted.
func (v *Validator) Names() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	names := make([]string, 0, len(v.schemas))
	for name := range v.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the JSON document data against the schema for name.
func (v *Validator) Validate(_ context.Context, name string, data []byte) error {
	instance, err := decodeInstance(data)
	if err != nil {
		return NewValidationError(ErrInvalidJSONFormat, "invalid JSON", errors.Wrap(err, "decoding arguments"))
	}
	return v.validate(name, instance)
}

// ValidateValue checks an already decoded value, such as the argument map
// of a tool call.
func (v *Validator) ValidateValue(_ context.Context, name string, value any) error {
	// Round-trip so numbers and nested types are in the shapes the
	// validator expects regardless of how value was built.
	data, err := json.Marshal(value)
	if err != nil {
		return NewValidationError(ErrInvalidJSONFormat, "arguments are not JSON-encodable", err)
	}
	instance, err := decodeInstance(data)
	if err != nil {
		return NewValidationError(ErrInvalidJSONFormat, "invalid JSON", err)
	}
	return v.validate(name, instance)
}

// decodeInstance keeps numbers as json.Number so integer keywords see the
// literal value.
func decodeInstance(data []byte) (any, error) {
	var instance any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&instance); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after the JSON value")
	}
	return instance, nil
}

func (v *Validator) validate(name string, instance any) error {
	v.mu.RLock()
	compiled, ok := v.schemas[name]
	v.mu.RUnlock()
	if !ok {
		return NewValidationError(ErrSchemaNotFound, fmt.Sprintf("no schema registered for %s", name), nil)
	}
	if err := compiled.Validate(instance); err != nil {
		var valErr *jsonschema.ValidationError
		if errors.As(err, &valErr) {
			v.logger.Debug("Arguments rejected by schema.", "name", name, "error", valErr.Message)
			return convertValidationError(valErr, name)
		}
		return NewValidationError(ErrValidationFailed, "validation failed unexpectedly", err)
	}
	return nil
}
