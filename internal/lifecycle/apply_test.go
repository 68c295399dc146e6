package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/events"
	"admissions-engine/internal/models"
	"admissions-engine/internal/store"
)

func TestApply(t *testing.T) {
	f := newFixture(t)
	f.institution("i-1", false)
	f.course("c-1", "i-1", 50, "Math", "Physics")
	f.student("s-1")
	f.grades("s-1", "i-1", 72, "math", "physics")

	reg, err := f.eng.Apply(f.ctx, "s-1", "c-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, reg.Status)
	assert.Equal(t, "gen-1", reg.ID)
	assert.Equal(t, "Course c-1", reg.CourseName)
	assert.Equal(t, "Institution i-1", reg.InstitutionName)

	got := f.events.Events()
	require.Len(t, got, 1)
	assert.Equal(t, events.RegistrationCreated, got[0].Type)

	_, err = f.eng.Apply(f.ctx, "s-1", "c-1")
	assert.True(t, errors.HasCode(err, errors.ErrCodeDuplicateApplication))
}

func TestApply_Ineligible(t *testing.T) {
	f := newFixture(t)
	f.institution("i-1", false)
	f.course("c-1", "i-1", 50, "Math", "Physics")
	f.student("s-1")
	f.grades("s-1", "i-1", 45, "Math", "Physics")
	f.student("s-2")

	_, err := f.eng.Apply(f.ctx, "s-1", "c-1")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeIneligible))
	stdErr, _ := errors.AsStandard(err)
	assert.Equal(t, "Marks too low: need 50, have 45", stdErr.Message)
	assert.Equal(t, "marks_too_low", stdErr.Metadata["reasonCode"])

	_, err = f.eng.Apply(f.ctx, "s-2", "c-1")
	stdErr, _ = errors.AsStandard(err)
	require.NotNil(t, stdErr)
	assert.Equal(t, "Please enter your grades first.", stdErr.Message)
}

func TestApply_InstitutionNotApproved(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.mem.Institutions.Create(f.ctx, &models.Institution{ID: "i-1", Status: models.ApprovalSuspended}))
	f.course("c-1", "i-1", 0)
	f.student("s-1")
	f.grades("s-1", "i-1", 60, "Math")

	_, err := f.eng.Apply(f.ctx, "s-1", "c-1")
	assert.True(t, errors.HasCode(err, errors.ErrCodeIneligible))
}

func TestApply_NotFound(t *testing.T) {
	f := newFixture(t)
	f.student("s-1")

	_, err := f.eng.Apply(f.ctx, "s-1", "nope")
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))

	_, err = f.eng.Apply(f.ctx, "ghost", "nope")
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestApply_PublishedLock(t *testing.T) {
	f := newFixture(t)
	f.institution("i-1", true)
	f.institution("i-2", false)
	f.course("c-1", "i-1", 0)
	f.student("s-1")
	f.grades("s-1", "i-1", 60, "Math")
	f.reg("r-a", "s-1", "c-9", "i-2", models.StatusAdmitted)

	_, err := f.eng.Apply(f.ctx, "s-1", "c-1")
	assert.True(t, errors.HasCode(err, errors.ErrCodePublishedLock))
}

func TestApply_SelfHealsRacingThirdApplication(t *testing.T) {
	f := newFixture(t)
	f.institution("i-1", false)
	f.course("c-3", "i-1", 0)
	f.student("s-1")
	f.grades("s-1", "i-1", 60, "Math")
	f.reg("r-1", "s-1", "c-1", "i-1", models.StatusPending)

	// A concurrent caller commits an older second registration after our
	// evaluator read but before our write.
	racing := *f.mem.Store
	racing.Registrations = &racingRegistrations{
		RegistrationRepository: f.mem.Registrations,
		before: func() {
			at := f.get("r-1").CreatedAt.Add(500 * time.Millisecond)
			require.NoError(t, f.mem.Registrations.Create(f.ctx, &models.Registration{
				ID: "r-2", StudentID: "s-1", Type: models.RegistrationCourse, Status: models.StatusPending,
				CourseID: "c-2", InstitutionID: "i-1", CreatedAt: at, UpdatedAt: at,
			}))
		},
	}
	f.eng.store = &racing

	reg, err := f.eng.Apply(f.ctx, "s-1", "c-3")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, reg.Status)
	assert.Equal(t, models.StatusPending, f.status("r-1"))
	assert.Equal(t, models.StatusPending, f.status("r-2"))
}

type racingRegistrations struct {
	store.RegistrationRepository
	before func()
}

func (r *racingRegistrations) Create(ctx context.Context, reg *models.Registration) error {
	if r.before != nil {
		fn := r.before
		r.before = nil
		fn()
	}
	return r.RegistrationRepository.Create(ctx, reg)
}

func TestSubmitGrades(t *testing.T) {
	f := newFixture(t)
	f.institution("i-1", false)
	f.student("s-1")

	_, err := f.eng.SubmitGrades(f.ctx, "s-1", "i-1", 0, []string{"Math"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
	_, err = f.eng.SubmitGrades(f.ctx, "s-1", "i-1", 70, []string{" ", ""})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
	_, err = f.eng.SubmitGrades(f.ctx, "s-1", "i-404", 70, []string{"Math"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))

	s, err := f.eng.SubmitGrades(f.ctx, "s-1", "i-1", 70, []string{" Math "})
	require.NoError(t, err)
	assert.True(t, s.GradesSubmitted)
	snap, ok := s.Snapshot("i-1")
	require.True(t, ok)
	assert.Equal(t, []string{"Math"}, snap.Skills)

	_, err = f.eng.SubmitGrades(f.ctx, "s-1", "i-1", 99, []string{"Math"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeGradesFrozen))
}

func (f *fixture) company(id string, status models.ApprovalStatus) {
	f.t.Helper()
	require.NoError(f.t, f.mem.Companies.Create(f.ctx, &models.Company{ID: id, Name: "Company " + id, Status: status}))
}

func (f *fixture) job(id, companyID string, deadline *time.Time) {
	f.t.Helper()
	require.NoError(f.t, f.mem.Jobs.Create(f.ctx, &models.Job{
		ID: id, CompanyID: companyID, Title: "Job " + id, Marks: 60, MinExperienceYears: 2,
		Skills: []string{"JS", "Go"}, Deadline: deadline,
	}))
}

func TestApplyJob(t *testing.T) {
	f := newFixture(t)
	f.company("co-1", models.ApprovalApproved)
	f.company("co-2", models.ApprovalPending)
	past := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f.job("j-1", "co-1", nil)
	f.job("j-2", "co-1", &past)
	f.job("j-3", "co-2", nil)
	require.NoError(t, f.mem.Students.Create(f.ctx, &models.Student{ID: "s-1", Marks: 70, Skills: []string{"js"}}))

	reg, err := f.eng.ApplyJob(f.ctx, "s-1", "j-1")
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationJob, reg.Type)
	assert.Equal(t, models.StatusPending, reg.Status)
	assert.Equal(t, "co-1", reg.CompanyID)

	_, err = f.eng.ApplyJob(f.ctx, "s-1", "j-1")
	assert.True(t, errors.HasCode(err, errors.ErrCodeDuplicateApplication))

	_, err = f.eng.ApplyJob(f.ctx, "s-1", "j-2")
	assert.True(t, errors.HasCode(err, errors.ErrCodeIneligible))

	_, err = f.eng.ApplyJob(f.ctx, "s-1", "j-3")
	assert.True(t, errors.HasCode(err, errors.ErrCodeIneligible))

	_, err = f.eng.SetStatus(f.ctx, reg.ID, models.StatusRejected)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidTransition))
}

func TestListApplicants(t *testing.T) {
	f := newFixture(t)
	f.company("co-1", models.ApprovalApproved)
	f.job("j-1", "co-1", nil)
	require.NoError(t, f.mem.Students.Create(f.ctx, &models.Student{
		ID: "s-1", Marks: 70, ExperienceYears: 3, Documents: []string{"a", "b"}, Skills: []string{"JS", "SQL"},
	}))

	_, err := f.eng.ApplyJob(f.ctx, "s-1", "j-1")
	require.NoError(t, err)
	require.NoError(t, f.mem.Registrations.Create(f.ctx, &models.Registration{
		ID: "orphan", StudentID: "gone", Type: models.RegistrationJob, Status: models.StatusPending,
		JobID: "j-1", CompanyID: "co-1", CreatedAt: f.clock.Now(),
	}))

	applicants, err := f.eng.ListApplicants(f.ctx, "co-1")
	require.NoError(t, err)
	require.Len(t, applicants, 1)
	assert.Equal(t, 90, applicants[0].Qualification.Score)
	assert.Equal(t, models.TierInterview, applicants[0].Qualification.Tier)
	assert.Equal(t, "Job j-1", applicants[0].Job.Title)

	_, err = f.eng.ListApplicants(f.ctx, "co-404")
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}
