package scoreapplicants

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-engine/internal/common/config"
	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/models"
	"admissions-engine/internal/workers/workertest"
)

func seedApplicants(t *testing.T, env *workertest.Env) {
	t.Helper()
	_, err := env.Engine.ApplyJob(env.Ctx, "s-1", "j-1")
	require.NoError(t, err)
	// s-2 would fail the evaluator; write the registration directly.
	require.NoError(t, env.Mem.Registrations.Create(env.Ctx, &models.Registration{
		ID: "weak", StudentID: "s-2", Type: models.RegistrationJob, Status: models.StatusPending,
		JobID: "j-1", CompanyID: "co-1", CreatedAt: workertest.Now,
	}))
}

func TestHandler_Execute(t *testing.T) {
	env := workertest.New(t)
	seedApplicants(t, env)
	h := NewHandler(LoadConfig(config.WorkerConfig{}), env.Engine, workertest.DefaultSessions(), nil, env.Log)

	out, err := h.Execute(env.Ctx, &Input{AuthToken: "company", CompanyID: "co-1"})
	require.NoError(t, err)
	require.Equal(t, 2, out.Count)

	byStudent := map[string]models.Qualification{}
	for _, a := range out.Applicants {
		byStudent[a.Student.ID] = a.Qualification
	}
	// 40 for marks, 20 experience, 20 documents, 20 shared skills.
	assert.Equal(t, models.Qualification{Score: 100, Tier: models.TierInterview}, byStudent["s-1"])
	assert.Equal(t, models.TierNotQualified, byStudent["s-2"].Tier)

	filtered, err := h.Execute(env.Ctx, &Input{AuthToken: "admin", CompanyID: "co-1", MinTier: models.TierQualified})
	require.NoError(t, err)
	require.Equal(t, 1, filtered.Count)
	assert.Equal(t, "s-1", filtered.Applicants[0].Student.ID)
}

func TestHandler_Execute_OtherCompany(t *testing.T) {
	env := workertest.New(t)
	h := NewHandler(LoadConfig(config.WorkerConfig{}), env.Engine, workertest.DefaultSessions(), nil, env.Log)

	_, err := h.Execute(env.Ctx, &Input{AuthToken: "company", CompanyID: "co-2"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden))
}
