package cache

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/common/logger"
	"admissions-engine/internal/models"
	"admissions-engine/internal/store/memory"
)

func setup(t *testing.T) (*Students, *memory.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	mem := memory.New()
	require.NoError(t, mem.Students.Create(context.Background(), &models.Student{
		ID: "s-1", Name: "Ana", Skills: []string{"Go"},
	}))
	return NewStudents(mem.Students, rdb, time.Minute, logger.NewTestLogger(t)), mem, mr
}

func TestStudents_ReadThrough(t *testing.T) {
	c, _, mr := setup(t)
	ctx := context.Background()

	s, err := c.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", s.Name)
	assert.True(t, mr.Exists(StudentKey("s-1")))
	assert.Equal(t, time.Minute, mr.TTL(StudentKey("s-1")))

	// A cached profile wins over the backing store.
	require.NoError(t, mr.Set(StudentKey("s-1"), `{"id":"s-1","name":"Cached"}`))
	s, err = c.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Cached", s.Name)
}

func TestStudents_GradeSnapshotInvalidates(t *testing.T) {
	c, _, mr := setup(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "s-1")
	require.NoError(t, err)

	snap := models.GradeSnapshot{Marks: 70, Skills: []string{"Math"}}
	require.NoError(t, c.PutGradeSnapshot(ctx, "s-1", "i-1", snap))
	assert.False(t, mr.Exists(StudentKey("s-1")))

	s, err := c.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.True(t, s.GradesSubmitted)
	_, ok := s.Snapshot("i-1")
	assert.True(t, ok)

	err = c.PutGradeSnapshot(ctx, "s-1", "i-1", snap)
	assert.True(t, errors.HasCode(err, errors.ErrCodeGradesFrozen))
}

func TestStudents_NotFoundIsNotCached(t *testing.T) {
	c, _, mr := setup(t)

	_, err := c.Get(context.Background(), "ghost")
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
	assert.False(t, mr.Exists(StudentKey("ghost")))
}

func TestStudents_RedisDownFallsThrough(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(StudentKey("s-1")).SetErr(stderrors.New("connection refused"))

	mem := memory.New()
	require.NoError(t, mem.Students.Create(context.Background(), &models.Student{ID: "s-1", Name: "Ana"}))

	c := NewStudents(mem.Students, rdb, 0, logger.NewNoOpLogger())
	s, err := c.Get(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", s.Name)
	assert.Equal(t, 5*time.Minute, c.ttl)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWrap(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	mem := memory.New()
	s := Wrap(mem.Store, rdb, time.Minute, logger.NewNoOpLogger())
	_, ok := s.Students.(*Students)
	assert.True(t, ok)
}
