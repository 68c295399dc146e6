package listregistrations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-engine/internal/common/config"
	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/models"
	"admissions-engine/internal/workers/workertest"
)

func newHandler(env *workertest.Env) *Handler {
	return NewHandler(LoadConfig(config.WorkerConfig{}), env.Engine, workertest.DefaultSessions(), nil, env.Log)
}

func TestHandler_Execute_Student(t *testing.T) {
	env := workertest.New(t)
	env.Apply("s-1", "c-1")
	env.Apply("s-1", "c-3")

	out, err := newHandler(env).Execute(env.Ctx, &Input{AuthToken: "student", StudentID: "s-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, "c-1", out.Registrations[0].CourseID)
}

func TestHandler_Execute_StudentWithoutRegistrations(t *testing.T) {
	env := workertest.New(t)

	out, err := newHandler(env).Execute(env.Ctx, &Input{AuthToken: "student-2", StudentID: "s-2"})
	require.NoError(t, err)
	assert.NotNil(t, out.Registrations)
	assert.Zero(t, out.Count)
}

func TestHandler_Execute_InstitutionHealsCap(t *testing.T) {
	env := workertest.New(t)
	env.Apply("s-1", "c-1")
	env.Apply("s-1", "c-2")
	// A third live registration written behind the evaluator's back.
	require.NoError(t, env.Mem.Registrations.Create(env.Ctx, &models.Registration{
		ID: "late", StudentID: "s-1", Type: models.RegistrationCourse, Status: models.StatusPending,
		CourseID: "c-9", InstitutionID: "i-1", CreatedAt: workertest.Now.Add(time.Hour),
	}))

	out, err := newHandler(env).Execute(env.Ctx, &Input{AuthToken: "institute", InstitutionID: "i-1"})
	require.NoError(t, err)
	require.Equal(t, 3, out.Count)
	assert.Equal(t, models.StatusRejected, env.Status("late"))
}

func TestHandler_Execute_Forbidden(t *testing.T) {
	env := workertest.New(t)
	h := newHandler(env)

	_, err := h.Execute(env.Ctx, &Input{AuthToken: "student", StudentID: "s-2"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden))

	_, err = h.Execute(env.Ctx, &Input{AuthToken: "institute", InstitutionID: "i-2"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden))

	_, err = h.Execute(env.Ctx, &Input{AuthToken: "student", InstitutionID: "i-1"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden))
}

func TestInputSchema(t *testing.T) {
	assert.True(t, inputSchema.Validate(`{"studentId":"s-1"}`).Valid)
	assert.True(t, inputSchema.Validate(`{"institutionId":"i-1"}`).Valid)
	assert.False(t, inputSchema.Validate(`{}`).Valid)
	assert.False(t, inputSchema.Validate(`{"studentId":"s-1","institutionId":"i-1"}`).Valid)
}
