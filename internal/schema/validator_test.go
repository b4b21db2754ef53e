package schema

// file: internal/schema/validator_test.go

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchSchema = `{
  "type": "object",
  "properties": {
    "query": {"type": "string", "minLength": 1},
    "limit": {"type": "number", "minimum": 1},
    "kinds": {"type": "array", "items": {"type": "string", "enum": ["todo", "card"]}}
  },
  "required": ["query"]
}`

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v := NewValidator(nil)
	require.NoError(t, v.Register("search_work_items", []byte(searchSchema)))
	return v
}

func TestValidateAcceptsGoodArguments(t *testing.T) {
	v := newTestValidator(t)
	ctx := context.Background()
	assert.NoError(t, v.Validate(ctx, "search_work_items", []byte(`{"query":"launch","limit":5}`)))
	assert.NoError(t, v.ValidateValue(ctx, "search_work_items", map[string]any{
		"query": "launch", "limit": 3, "kinds": []string{"todo"},
	}))
	assert.True(t, v.HasSchema("search_work_items"))
	assert.Equal(t, []string{"search_work_items"}, v.Names())
}

func TestValidateRejects(t *testing.T) {
	v := newTestValidator(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		args     map[string]any
		wantPath string
	}{
		{"missing required", map[string]any{"limit": 1}, "/"},
		{"wrong type", map[string]any{"query": "x", "limit": "ten"}, "/limit"},
		{"below minimum", map[string]any{"query": "x", "limit": 0}, "/limit"},
		{"bad enum", map[string]any{"query": "x", "kinds": []string{"email"}}, "/kinds/0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateValue(ctx, "search_work_items", tt.args)
			require.Error(t, err)
			var valErr *ValidationError
			require.True(t, errors.As(err, &valErr))
			assert.Equal(t, ErrValidationFailed, valErr.Code)
			assert.Equal(t, tt.wantPath, valErr.InstancePath)
			assert.NotEmpty(t, valErr.Details)
		})
	}
}

func TestValidateErrors(t *testing.T) {
	v := newTestValidator(t)
	ctx := context.Background()

	var valErr *ValidationError
	err := v.Validate(ctx, "search_work_items", []byte(`{not json`))
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, ErrInvalidJSONFormat, valErr.Code)

	err = v.Validate(ctx, "unknown_tool", []byte(`{}`))
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, ErrSchemaNotFound, valErr.Code)

	err = v.Register("broken", []byte(`{"type": 12}`))
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, ErrSchemaCompileFailed, valErr.Code)
}

func TestValidateToolName(t *testing.T) {
	for _, name := range []string{"aggregate_work", "get_due_items", "a1"} {
		assert.NoError(t, ValidateToolName(name), name)
	}
	for _, name := range []string{"", "GetTasks", "get-tasks", "1tool", "get tasks"} {
		assert.Error(t, ValidateToolName(name), name)
	}
}

func TestValidateIntegerArguments(t *testing.T) {
	v := NewValidator(nil)
	require.NoError(t, v.Register("get_stale_items", []byte(`{
  "type": "object",
  "properties": {"project_ids": {"type": "array", "items": {"type": "integer"}}}
}`)))
	ctx := context.Background()

	assert.NoError(t, v.Validate(ctx, "get_stale_items", []byte(`{"project_ids":[1, 9007199254740993]}`)))
	assert.NoError(t, v.ValidateValue(ctx, "get_stale_items", map[string]any{"project_ids": []int64{1, 2}}))

	err := v.Validate(ctx, "get_stale_items", []byte(`{"project_ids":[1.5]}`))
	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, ErrValidationFailed, valErr.Code)
	assert.Equal(t, "/project_ids/0", valErr.InstancePath)

	err = v.Validate(ctx, "get_stale_items", []byte(`{} {}`))
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, ErrInvalidJSONFormat, valErr.Code)
}
