// Package workertest seeds an in-memory store for worker handler tests.
package workertest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"admissions-engine/internal/common/auth"
	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/common/logger"
	"admissions-engine/internal/events"
	"admissions-engine/internal/lifecycle"
	"admissions-engine/internal/models"
	"admissions-engine/internal/notify"
	"admissions-engine/internal/store/memory"
)

// Now is the fixed wall clock of every Env.
var Now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// Sessions resolves fixed tokens.
type Sessions map[string]*auth.Session

func (s Sessions) Resolve(_ context.Context, token string) (*auth.Session, error) {
	if session, ok := s[token]; ok {
		return session, nil
	}
	return nil, errors.NewAuthenticationError("unknown token")
}

// DefaultSessions has one token per role, each bound to a seeded account.
func DefaultSessions() Sessions {
	return Sessions{
		"student":   {UserID: "s-1", Role: auth.RoleStudent, EmailVerified: true},
		"student-2": {UserID: "s-2", Role: auth.RoleStudent, EmailVerified: true},
		"institute": {UserID: "i-1", Role: auth.RoleInstitute},
		"company":   {UserID: "co-1", Role: auth.RoleCompany},
		"admin":     {UserID: "root", Role: auth.RoleAdmin},
	}
}

type Env struct {
	T      *testing.T
	Ctx    context.Context
	Mem    *memory.Store
	Events *events.Recorder
	Engine *lifecycle.Engine
	Log    logger.Logger

	tick int
	ids  int
}

// New seeds two approved institutions (i-1 with courses c-1 and c-2, i-2 with
// c-3), an approved company co-1 with an open job j-1, and students s-1 and
// s-2. s-1 has grades at both institutions and a job-ready profile.
func New(t *testing.T) *Env {
	t.Helper()
	e := &Env{
		T:      t,
		Ctx:    context.Background(),
		Mem:    memory.New(),
		Events: &events.Recorder{},
		Log:    logger.NewTestLogger(t),
	}
	e.Engine = lifecycle.New(e.Mem.Store, e.Log,
		lifecycle.WithClock(e.Clock),
		lifecycle.WithEvents(e.Events),
		lifecycle.WithIDGenerator(func() string {
			e.ids++
			return fmt.Sprintf("reg-%d", e.ids)
		}),
	)

	ctx := e.Ctx
	must := func(err error) {
		t.Helper()
		require.NoError(t, err)
	}
	must(e.Mem.Institutions.Create(ctx, &models.Institution{ID: "i-1", Name: "Limkokwing", Email: "i1@test", Status: models.ApprovalApproved}))
	must(e.Mem.Institutions.Create(ctx, &models.Institution{ID: "i-2", Name: "NUL", Email: "i2@test", Status: models.ApprovalApproved}))
	must(e.Mem.Courses.Create(ctx, &models.Course{ID: "c-1", InstitutionID: "i-1", Name: "Software Engineering", MinMarks: 50, RequiredSubjects: []string{"Maths"}}))
	must(e.Mem.Courses.Create(ctx, &models.Course{ID: "c-2", InstitutionID: "i-1", Name: "Business IT", MinMarks: 40}))
	must(e.Mem.Courses.Create(ctx, &models.Course{ID: "c-3", InstitutionID: "i-2", Name: "Computer Science", MinMarks: 60}))

	must(e.Mem.Companies.Create(ctx, &models.Company{ID: "co-1", Name: "Acme", Email: "hr@acme.test", Status: models.ApprovalApproved}))
	must(e.Mem.Jobs.Create(ctx, &models.Job{ID: "j-1", CompanyID: "co-1", Title: "Junior Developer", Marks: 50, MinExperienceYears: 2, Skills: []string{"Go", "SQL"}}))

	must(e.Mem.Students.Create(ctx, &models.Student{
		ID: "s-1", Name: "Lerato", Marks: 70, ExperienceYears: 2,
		Skills: []string{"go", "sql"}, Documents: []string{"cv.pdf", "transcript.pdf"},
	}))
	must(e.Mem.Students.Create(ctx, &models.Student{ID: "s-2", Name: "Thabo", Marks: 30, Skills: []string{"excel"}}))
	e.Grades("s-1", "i-1", 75, "Maths", "English")
	e.Grades("s-1", "i-2", 75, "Maths")
	return e
}

// Clock advances one second per reading.
func (e *Env) Clock() time.Time {
	e.tick++
	return Now.Add(time.Duration(e.tick) * time.Second)
}

func (e *Env) Grades(studentID, institutionID string, marks float64, skills ...string) {
	e.T.Helper()
	require.NoError(e.T, e.Mem.Students.PutGradeSnapshot(e.Ctx, studentID, institutionID, models.GradeSnapshot{
		Marks: marks, Skills: skills, SubmittedAt: Now,
	}))
}

// Apply creates a course registration through the engine.
func (e *Env) Apply(studentID, courseID string) *models.Registration {
	e.T.Helper()
	reg, err := e.Engine.Apply(e.Ctx, studentID, courseID)
	require.NoError(e.T, err)
	return reg
}

func (e *Env) Status(registrationID string) models.RegistrationStatus {
	e.T.Helper()
	reg, err := e.Mem.Registrations.Get(e.Ctx, registrationID)
	require.NoError(e.T, err)
	return reg.Status
}

// Emitter builds a notification emitter over the same store and clock.
func (e *Env) Emitter(opts ...notify.Option) *notify.Emitter {
	base := []notify.Option{
		notify.WithClock(e.Clock),
		notify.WithIDGenerator(func() string {
			e.ids++
			return fmt.Sprintf("n-%d", e.ids)
		}),
	}
	return notify.NewEmitter(e.Mem.Store, e.Log, append(base, opts...)...)
}
