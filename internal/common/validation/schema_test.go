package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-engine/internal/common/errors"
)

const applySchema = `{
  "type": "object",
  "required": ["studentId", "courseId"],
  "properties": {
    "studentId": {"type": "string", "minLength": 1},
    "courseId": {"type": "string", "minLength": 1}
  }
}`

func TestSchema_Validate(t *testing.T) {
	s := MustCompile(applySchema)

	tests := []struct {
		name      string
		doc       string
		valid     bool
		badFields []string
	}{
		{"valid", `{"studentId":"s1","courseId":"c1"}`, true, nil},
		{"missing course", `{"studentId":"s1"}`, false, []string{"courseId"}},
		{"empty student", `{"studentId":"","courseId":"c1"}`, false, []string{"studentId"}},
		{"wrong type", `{"studentId":7,"courseId":"c1"}`, false, []string{"studentId"}},
		{"blank document", ``, false, []string{"studentId", "courseId"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Validate(tt.doc)
			assert.Equal(t, tt.valid, res.Valid)
			for _, f := range tt.badFields {
				assert.True(t, res.HasErrors(f) || res.HasErrors("(root)"), "expected error for %s: %v", f, res.GetErrorMessages())
			}
		})
	}
}

func TestSchema_ValidateVariables(t *testing.T) {
	s := MustCompile(applySchema)

	require.NoError(t, s.ValidateVariables(`{"studentId":"s1","courseId":"c1"}`))

	err := s.ValidateVariables(`{"studentId":"s1"}`)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
}

func TestSchema_MalformedJSON(t *testing.T) {
	res := MustCompile(applySchema).Validate(`{not json`)
	assert.False(t, res.Valid)
	assert.True(t, res.HasErrors("(root)"))
}

func TestCompile_RejectsBadSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
}
