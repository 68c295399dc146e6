package submitgrades

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-engine/internal/common/config"
	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/workers/workertest"
)

func TestHandler_Execute(t *testing.T) {
	env := workertest.New(t)
	h := NewHandler(LoadConfig(config.WorkerConfig{}), env.Engine, workertest.DefaultSessions(), nil, env.Log)

	in := &Input{AuthToken: "student-2", StudentID: "s-2", InstitutionID: "i-1", Marks: 64, Skills: []string{" Maths ", "Physics"}}
	out, err := h.Execute(env.Ctx, in)
	require.NoError(t, err)
	snap, ok := out.Student.EnteredGrades["i-1"]
	require.True(t, ok)
	assert.Equal(t, 64.0, snap.Marks)
	assert.Equal(t, []string{"Maths", "Physics"}, snap.Skills)
	assert.True(t, out.Student.GradesSubmitted)

	_, err = h.Execute(env.Ctx, in)
	assert.True(t, errors.HasCode(err, errors.ErrCodeGradesFrozen))
}

func TestHandler_Execute_OtherStudent(t *testing.T) {
	env := workertest.New(t)
	h := NewHandler(LoadConfig(config.WorkerConfig{}), env.Engine, workertest.DefaultSessions(), nil, env.Log)

	_, err := h.Execute(env.Ctx, &Input{AuthToken: "student", StudentID: "s-2", InstitutionID: "i-1", Marks: 64, Skills: []string{"Maths"}})
	assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden))
}

func TestInputSchema(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		valid bool
	}{
		{"complete", `{"studentId":"s","institutionId":"i","marks":50,"skills":["Maths"]}`, true},
		{"zero marks", `{"studentId":"s","institutionId":"i","marks":0,"skills":["Maths"]}`, false},
		{"no skills", `{"studentId":"s","institutionId":"i","marks":50,"skills":[]}`, false},
		{"missing institution", `{"studentId":"s","marks":50,"skills":["Maths"]}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, inputSchema.Validate(tt.doc).Valid)
		})
	}
}
