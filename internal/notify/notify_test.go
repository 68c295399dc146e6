package notify

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/common/logger"
	"admissions-engine/internal/models"
	"admissions-engine/internal/store/memory"
)

var now = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

type env struct {
	ctx context.Context
	mem *memory.Store
	ids int
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{ctx: context.Background(), mem: memory.New()}
	require.NoError(t, e.mem.Companies.Create(e.ctx, &models.Company{ID: "co-1", Name: "Acme", Status: models.ApprovalApproved}))
	require.NoError(t, e.mem.Companies.Create(e.ctx, &models.Company{ID: "co-2", Name: "Pending Ltd", Status: models.ApprovalPending}))
	return e
}

func (e *env) emitter(t *testing.T, opts ...Option) *Emitter {
	base := []Option{
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string { e.ids++; return fmt.Sprintf("n-%d", e.ids) }),
	}
	return NewEmitter(e.mem.Store, logger.NewTestLogger(t), append(base, opts...)...)
}

func (e *env) job(t *testing.T, id, company string, marks float64, deadline *time.Time, skills ...string) {
	t.Helper()
	require.NoError(t, e.mem.Jobs.Create(e.ctx, &models.Job{
		ID: id, CompanyID: company, Title: "Job " + id, Marks: marks, MinExperienceYears: 2,
		Skills: skills, Deadline: deadline,
	}))
}

func (e *env) student(t *testing.T, s *models.Student) {
	t.Helper()
	require.NoError(t, e.mem.Students.Create(e.ctx, s))
}

func (e *env) jobReg(t *testing.T, id, studentID, jobID string) {
	t.Helper()
	require.NoError(t, e.mem.Registrations.Create(e.ctx, &models.Registration{
		ID: id, StudentID: studentID, Type: models.RegistrationJob, Status: models.StatusPending,
		JobID: jobID, CompanyID: "co-1", CreatedAt: now,
	}))
}

func TestInviteToInterview(t *testing.T) {
	e := newEnv(t)
	e.job(t, "j-1", "co-1", 60, nil, "JS", "Go")
	e.student(t, &models.Student{
		ID: "s-1", Marks: 70, ExperienceYears: 3, Documents: []string{"a", "b"}, Skills: []string{"JS", "SQL"},
	})
	e.student(t, &models.Student{ID: "s-2", Marks: 10})
	e.jobReg(t, "r-1", "s-1", "j-1")
	e.jobReg(t, "r-2", "s-2", "j-1")
	em := e.emitter(t)

	iv := Interview{Date: "2026-04-20", Time: "10:00", Place: "Room 4"}
	n, err := em.InviteToInterview(e.ctx, "r-1", iv)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationInterviewInvitation, n.Type)
	assert.Equal(t, "You have been invited for an interview for the position of Job j-1 at Acme. "+
		"The interview is scheduled for 2026-04-20 at 10:00 at Room 4. "+
		"Please bring hard copies of your documents and transcripts.", n.Message)

	reg, err := e.mem.Registrations.Get(e.ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, reg.Status)

	_, err = em.InviteToInterview(e.ctx, "r-2", iv)
	assert.True(t, errors.HasCode(err, errors.ErrCodeIneligible))

	_, err = em.InviteToInterview(e.ctx, "r-1", Interview{Date: "2026-04-20"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))

	list, err := em.ListNotifications(e.ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NoError(t, em.MarkRead(e.ctx, list[0].ID))
	list, err = em.ListNotifications(e.ctx, "s-1")
	require.NoError(t, err)
	assert.True(t, list[0].Read)

	assert.True(t, errors.HasCode(em.MarkRead(e.ctx, "n-404"), errors.ErrCodeNotFound))
}

func TestInviteToInterview_CourseRegistration(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.mem.Registrations.Create(e.ctx, &models.Registration{
		ID: "c-reg", StudentID: "s-1", Type: models.RegistrationCourse, Status: models.StatusPending,
	}))

	_, err := e.emitter(t).InviteToInterview(e.ctx, "c-reg", Interview{Date: "d", Time: "t", Place: "p"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidTransition))
}

func TestCheckJobMatches(t *testing.T) {
	e := newEnv(t)
	past := now.Add(-time.Hour)
	e.job(t, "j-match", "co-1", 50, nil, "go")
	e.job(t, "j-marks", "co-1", 90, nil, "go")
	e.job(t, "j-skill", "co-1", 10, nil, "cobol")
	e.job(t, "j-closed", "co-1", 10, &past, "go")
	e.job(t, "j-unapproved", "co-2", 10, nil, "go")
	e.student(t, &models.Student{ID: "s-1", Marks: 60, Skills: []string{" Go"}})

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	em := e.emitter(t, WithRedis(rdb))

	created, err := em.CheckJobMatches(e.ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "j-match", created[0].JobID)
	assert.Equal(t, "Job j-match matches your skills", created[0].Message)

	members, err := mr.Members(MatchSetKey("s-1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"j-match"}, members)

	again, err := em.CheckJobMatches(e.ctx, "s-1")
	require.NoError(t, err)
	assert.Empty(t, again)

	// Losing the fast path still does not re-notify.
	mr.FlushAll()
	again, err = em.CheckJobMatches(e.ctx, "s-1")
	require.NoError(t, err)
	assert.Empty(t, again)

	list, err := em.ListNotifications(e.ctx, "s-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

type mockIndex struct {
	mock.Mock
}

func (m *mockIndex) SearchCandidates(ctx context.Context, skills []string, marks float64) ([]string, error) {
	args := m.Called(ctx, skills, marks)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func TestCheckJobMatches_IndexNarrowsAndIsReverified(t *testing.T) {
	e := newEnv(t)
	e.job(t, "j-1", "co-1", 50, nil, "go")
	e.job(t, "j-2", "co-1", 50, nil, "go")
	e.student(t, &models.Student{ID: "s-1", Marks: 60, Skills: []string{"go"}})

	idx := new(mockIndex)
	// j-stale is indexed but no longer open in the store.
	idx.On("SearchCandidates", mock.Anything, []string{"go"}, 60.0).Return([]string{"j-2", "j-stale"}, nil)

	created, err := e.emitter(t, WithIndex(idx)).CheckJobMatches(e.ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "j-2", created[0].JobID)
	idx.AssertExpectations(t)
}

func TestCheckJobMatches_IndexDownFallsBack(t *testing.T) {
	e := newEnv(t)
	e.job(t, "j-1", "co-1", 50, nil, "go")
	e.student(t, &models.Student{ID: "s-1", Marks: 60, Skills: []string{"go"}})

	idx := new(mockIndex)
	idx.On("SearchCandidates", mock.Anything, mock.Anything, mock.Anything).Return(nil, stderrors.New("es down"))

	created, err := e.emitter(t, WithIndex(idx)).CheckJobMatches(e.ctx, "s-1")
	require.NoError(t, err)
	assert.Len(t, created, 1)
}

type recordingReindexer struct {
	jobs []models.Job
}

func (r *recordingReindexer) Reindex(_ context.Context, jobs []models.Job) error {
	r.jobs = jobs
	return nil
}

func TestMatchScheduler_RunOnce(t *testing.T) {
	e := newEnv(t)
	e.job(t, "j-1", "co-1", 50, nil, "go")
	e.job(t, "j-2", "co-2", 50, nil, "go")
	for i := 0; i < 5; i++ {
		e.student(t, &models.Student{ID: fmt.Sprintf("s-%d", i), Marks: 60, Skills: []string{"go"}})
	}
	e.student(t, &models.Student{ID: "s-none", Marks: 60, Skills: []string{"rust"}})

	re := &recordingReindexer{}
	em := NewEmitter(e.mem.Store, logger.NewTestLogger(t), WithClock(func() time.Time { return now }))
	sched := NewMatchScheduler(em, re, time.Minute, 3, logger.NewTestLogger(t))

	summary, err := sched.RunOnce(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, MatchSummary{Students: 6, Notifications: 5}, summary)
	require.Len(t, re.jobs, 1)
	assert.Equal(t, "j-1", re.jobs[0].ID)

	summary, err = sched.RunOnce(e.ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.Notifications)
}

func TestMatchScheduler_RunStopsOnCancel(t *testing.T) {
	e := newEnv(t)
	sched := NewMatchScheduler(e.emitter(t), nil, 10*time.Millisecond, 0, logger.NewNoOpLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
