package applyjob

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

func TestHandler_Execute(t *testing.T) {
	env := workertest.New(t)
	h := NewHandler(LoadConfig(config.WorkerConfig{}), env.Engine, workertest.DefaultSessions(), nil, env.Log)

	out, err := h.Execute(env.Ctx, &Input{AuthToken: "student", StudentID: "s-1", JobID: "j-1"})
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationJob, out.Registration.Type)
	assert.Equal(t, models.StatusPending, out.Registration.Status)
	assert.Equal(t, "co-1", out.Registration.CompanyID)

	_, err = h.Execute(env.Ctx, &Input{AuthToken: "student", StudentID: "s-1", JobID: "j-1"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeDuplicateApplication))
}

func TestHandler_Execute_Ineligible(t *testing.T) {
	env := workertest.New(t)
	past := workertest.Now.Add(-24 * time.Hour)
	require.NoError(t, env.Mem.Jobs.Create(env.Ctx, &models.Job{
		ID: "j-closed", CompanyID: "co-1", Title: "Closed", Skills: []string{"go"}, Deadline: &past,
	}))
	h := NewHandler(LoadConfig(config.WorkerConfig{}), env.Engine, workertest.DefaultSessions(), nil, env.Log)

	_, err := h.Execute(env.Ctx, &Input{AuthToken: "student-2", StudentID: "s-2", JobID: "j-1"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeIneligible))

	_, err = h.Execute(env.Ctx, &Input{AuthToken: "student", StudentID: "s-1", JobID: "j-closed"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeIneligible))
}
