package publishadmissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-engine/internal/common/config"
	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/events"
	"admissions-engine/internal/workers/workertest"
)

func TestHandler_Execute(t *testing.T) {
	env := workertest.New(t)
	h := NewHandler(LoadConfig(config.WorkerConfig{}), env.Engine, workertest.DefaultSessions(), nil, env.Log)

	out, err := h.Execute(env.Ctx, &Input{AuthToken: "institute", InstitutionID: "i-1"})
	require.NoError(t, err)
	assert.True(t, out.Institution.Published)
	require.NotNil(t, out.Institution.PublishedAt)
	first := *out.Institution.PublishedAt

	again, err := h.Execute(env.Ctx, &Input{AuthToken: "admin", InstitutionID: "i-1"})
	require.NoError(t, err)
	assert.Equal(t, first, *again.Institution.PublishedAt)

	published := 0
	for _, ev := range env.Events.Events() {
		if ev.Type == events.InstitutionPublished {
			published++
		}
	}
	assert.Equal(t, 1, published)
}

func TestHandler_Execute_Errors(t *testing.T) {
	env := workertest.New(t)
	h := NewHandler(LoadConfig(config.WorkerConfig{}), env.Engine, workertest.DefaultSessions(), nil, env.Log)

	_, err := h.Execute(env.Ctx, &Input{AuthToken: "institute", InstitutionID: "i-2"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden))

	_, err = h.Execute(env.Ctx, &Input{AuthToken: "admin", InstitutionID: "i-404"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}
