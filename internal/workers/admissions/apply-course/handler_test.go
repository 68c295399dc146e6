package applycourse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-engine/internal/common/auth"
	"admissions-engine/internal/common/config"
	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/models"
	"admissions-engine/internal/workers/workertest"
)

func newHandler(env *workertest.Env, sessions auth.SessionResolver) *Handler {
	return NewHandler(LoadConfig(config.WorkerConfig{Timeout: 5000}), env.Engine, sessions, nil, env.Log)
}

func TestLoadConfig(t *testing.T) {
	assert.Equal(t, 5*time.Second, LoadConfig(config.WorkerConfig{Timeout: 5000}).Timeout)
}

func TestHandler_Execute(t *testing.T) {
	env := workertest.New(t)
	h := newHandler(env, workertest.DefaultSessions())

	out, err := h.Execute(env.Ctx, &Input{AuthToken: "student", StudentID: "s-1", CourseID: "c-1"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, out.Registration.Status)
	assert.Equal(t, "i-1", out.Registration.InstitutionID)
	assert.Equal(t, "Software Engineering", out.Registration.CourseName)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    Input
		wantCode errors.ErrorCode
	}{
		{"unknown token", Input{AuthToken: "nope", StudentID: "s-1", CourseID: "c-1"}, errors.ErrCodeAuthentication},
		{"wrong role", Input{AuthToken: "company", StudentID: "s-1", CourseID: "c-1"}, errors.ErrCodeForbidden},
		{"other student", Input{AuthToken: "student-2", StudentID: "s-1", CourseID: "c-1"}, errors.ErrCodeForbidden},
		{"no grades", Input{AuthToken: "student-2", StudentID: "s-2", CourseID: "c-1"}, errors.ErrCodeIneligible},
		{"missing course", Input{AuthToken: "student", StudentID: "s-1", CourseID: "c-404"}, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := workertest.New(t)
			_, err := newHandler(env, workertest.DefaultSessions()).Execute(env.Ctx, &tt.input)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestHandler_Execute_Duplicate(t *testing.T) {
	env := workertest.New(t)
	h := newHandler(env, nil)

	_, err := h.Execute(env.Ctx, &Input{StudentID: "s-1", CourseID: "c-1"})
	require.NoError(t, err)

	_, err = h.Execute(env.Ctx, &Input{StudentID: "s-1", CourseID: "c-1"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeDuplicateApplication))
}

func TestInputSchema(t *testing.T) {
	assert.NoError(t, inputSchema.ValidateVariables(`{"studentId":"s-1","courseId":"c-1"}`))
	assert.True(t, errors.HasCode(inputSchema.ValidateVariables(`{"studentId":"s-1"}`), errors.ErrCodeInvalidInput))
}
