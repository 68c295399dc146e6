package setregistrationstatus

import (
	"testing"

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

func TestHandler_Execute_AdmitRunsCascade(t *testing.T) {
	env := workertest.New(t)
	h := newHandler(env)
	home := env.Apply("s-1", "c-1")
	away := env.Apply("s-1", "c-3")

	out, err := h.Execute(env.Ctx, &Input{AuthToken: "institute", RegistrationID: home.ID, Status: "admitted"})
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Equal(t, models.StatusAdmitted, out.Registration.Status)
	require.NotNil(t, out.Cascade)
	require.Len(t, out.Cascade.Removed, 1)
	assert.Equal(t, away.ID, out.Cascade.Removed[0].ID)
	assert.Equal(t, models.StatusRemoved, env.Status(away.ID))
}

func TestHandler_Execute_RejectPromotesWaitlist(t *testing.T) {
	env := workertest.New(t)
	env.Grades("s-2", "i-1", 80, "Maths")
	h := newHandler(env)
	first := env.Apply("s-1", "c-1")
	second := env.Apply("s-2", "c-1")

	_, err := h.Execute(env.Ctx, &Input{AuthToken: "admin", RegistrationID: second.ID, Status: "waiting"})
	require.NoError(t, err)

	out, err := h.Execute(env.Ctx, &Input{AuthToken: "admin", RegistrationID: first.ID, Status: "rejected"})
	require.NoError(t, err)
	require.NotNil(t, out.Promoted)
	assert.Equal(t, second.ID, out.Promoted.ID)
	assert.Equal(t, models.StatusPending, env.Status(second.ID))
	assert.Equal(t, models.StatusPending, out.Promoted.Status)

	// A retry of the same decision is a no-op; resume reports the existing promotion.
	again, err := h.Execute(env.Ctx, &Input{AuthToken: "admin", RegistrationID: first.ID, Status: "rejected"})
	require.NoError(t, err)
	assert.False(t, again.Changed)

	resumed, err := h.Execute(env.Ctx, &Input{AuthToken: "admin", RegistrationID: first.ID, Resume: true})
	require.NoError(t, err)
	require.NotNil(t, resumed.Promoted)
	assert.Equal(t, second.ID, resumed.Promoted.ID)
}

func TestHandler_Execute_Errors(t *testing.T) {
	env := workertest.New(t)
	h := newHandler(env)
	away := env.Apply("s-1", "c-3")

	_, err := h.Execute(env.Ctx, &Input{AuthToken: "institute", RegistrationID: away.ID, Status: "admitted"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden), "i-1 staff deciding on an i-2 registration")

	_, err = h.Execute(env.Ctx, &Input{AuthToken: "student", RegistrationID: away.ID, Status: "admitted"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden))

	_, err = h.Execute(env.Ctx, &Input{AuthToken: "admin", RegistrationID: "missing", Status: "admitted"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))

	_, err = env.Engine.Publish(env.Ctx, "i-2")
	require.NoError(t, err)
	_, err = h.Execute(env.Ctx, &Input{AuthToken: "admin", RegistrationID: away.ID, Status: "rejected"})
	assert.True(t, errors.HasCode(err, errors.ErrCodePublishedLock))
}

func TestInputSchema(t *testing.T) {
	assert.True(t, inputSchema.Validate(`{"registrationId":"r","status":"admitted"}`).Valid)
	assert.True(t, inputSchema.Validate(`{"registrationId":"r","resume":true}`).Valid)
	assert.False(t, inputSchema.Validate(`{"registrationId":"r"}`).Valid)
	assert.False(t, inputSchema.Validate(`{"registrationId":"r","status":"accepted"}`).Valid)
}
