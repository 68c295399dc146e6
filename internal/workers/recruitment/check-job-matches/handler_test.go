package checkjobmatches

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-engine/internal/common/config"
	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/models"
	"admissions-engine/internal/notify"
	"admissions-engine/internal/workers/workertest"
)

func TestHandler_Execute(t *testing.T) {
	env := workertest.New(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := NewHandler(LoadConfig(config.WorkerConfig{}), env.Emitter(notify.WithRedis(rdb)), workertest.DefaultSessions(), nil, env.Log)

	out, err := h.Execute(env.Ctx, &Input{AuthToken: "student", StudentID: "s-1"})
	require.NoError(t, err)
	require.Equal(t, 1, out.Created)
	assert.Equal(t, models.NotificationJobMatch, out.Notifications[0].Type)
	assert.Equal(t, "Junior Developer matches your skills", out.Notifications[0].Message)

	again, err := h.Execute(env.Ctx, &Input{AuthToken: "admin", StudentID: "s-1"})
	require.NoError(t, err)
	assert.Zero(t, again.Created)
	assert.NotNil(t, again.Notifications)
}

func TestHandler_Execute_Errors(t *testing.T) {
	env := workertest.New(t)
	h := NewHandler(LoadConfig(config.WorkerConfig{}), env.Emitter(), workertest.DefaultSessions(), nil, env.Log)

	_, err := h.Execute(env.Ctx, &Input{AuthToken: "student", StudentID: "s-2"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden))

	_, err = h.Execute(env.Ctx, &Input{AuthToken: "admin", StudentID: "s-404"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}
