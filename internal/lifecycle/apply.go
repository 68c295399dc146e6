package lifecycle

import (
	"context"
	"strings"

	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/common/metrics"
	"admissions-engine/internal/eligibility"
	"admissions-engine/internal/events"
	"admissions-engine/internal/models"
	"admissions-engine/internal/store"
)

// Apply creates a pending course registration for studentID. The application
// cap is enforced right after the write, so a registration that raced past
// the evaluator comes back already rejected.
func (e *Engine) Apply(ctx context.Context, studentID, courseID string) (*models.Registration, error) {
	student, err := e.store.Students.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	course, err := e.store.Courses.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	inst, err := e.store.Institutions.Get(ctx, course.InstitutionID)
	if err != nil {
		return nil, err
	}
	if inst.Status != models.ApprovalApproved {
		return nil, errors.NewIneligibleError("Institution is not accepting applications.").
			WithMetadata("institutionId", inst.ID)
	}

	existing, err := e.store.Registrations.List(ctx, store.RegistrationFilter{StudentID: studentID})
	if err != nil {
		return nil, err
	}

	if res := e.evaluator.CanApplyCourse(student, course, existing); !res.Eligible {
		return nil, eligibilityError(res, "course "+courseID)
	}

	if inst.Published {
		for i := range existing {
			if existing[i].Type == models.RegistrationCourse && existing[i].Status == models.StatusAdmitted {
				return nil, errors.NewPublishedLockError(inst.ID, "Admissions are published. Cannot apply for new courses.")
			}
		}
	}

	now := e.now()
	reg := &models.Registration{
		ID:              e.newID(),
		StudentID:       studentID,
		Type:            models.RegistrationCourse,
		Status:          models.StatusPending,
		CourseID:        course.ID,
		InstitutionID:   inst.ID,
		StudentName:     student.Name,
		CourseName:      course.Name,
		InstitutionName: inst.Name,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := e.store.Registrations.Create(ctx, reg); err != nil {
		return nil, err
	}
	e.created(ctx, reg)

	healed, err := e.EnforceApplicationCap(ctx, studentID, inst.ID)
	if err != nil {
		return nil, err
	}
	for i := range healed {
		if healed[i].ID == reg.ID {
			return &healed[i], nil
		}
	}
	return reg, nil
}

// ApplyJob creates a job registration. Job registrations stay pending; their
// standing is the derived qualification.
func (e *Engine) ApplyJob(ctx context.Context, studentID, jobID string) (*models.Registration, error) {
	student, err := e.store.Students.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	job, err := e.store.Jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	company, err := e.store.Companies.Get(ctx, job.CompanyID)
	if err != nil {
		return nil, err
	}
	if company.Status != models.ApprovalApproved {
		return nil, errors.NewIneligibleError("Company is not accepting applications.").
			WithMetadata("companyId", company.ID)
	}
	if !job.IsOpen(e.now()) {
		return nil, errors.NewIneligibleError("Applications for this job are closed.").
			WithMetadata("jobId", job.ID)
	}

	existing, err := e.store.Registrations.List(ctx, store.RegistrationFilter{
		StudentID: studentID,
		Type:      models.RegistrationJob,
	})
	if err != nil {
		return nil, err
	}
	if res := e.evaluator.CanApplyJob(student, job, existing); !res.Eligible {
		return nil, eligibilityError(res, "job "+jobID)
	}

	now := e.now()
	reg := &models.Registration{
		ID:          e.newID(),
		StudentID:   studentID,
		Type:        models.RegistrationJob,
		Status:      models.StatusPending,
		JobID:       job.ID,
		CompanyID:   company.ID,
		StudentName: student.Name,
		JobTitle:    job.Title,
		CompanyName: company.Name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.store.Registrations.Create(ctx, reg); err != nil {
		return nil, err
	}
	e.created(ctx, reg)
	return reg, nil
}

// SubmitGrades freezes the student's marks and skills for one institution.
func (e *Engine) SubmitGrades(ctx context.Context, studentID, institutionID string, marks float64, skills []string) (*models.Student, error) {
	if marks <= 0 {
		return nil, errors.NewInvalidInputError("marks must be greater than zero")
	}
	var cleaned []string
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		return nil, errors.NewInvalidInputError("at least one skill is required")
	}

	if _, err := e.store.Students.Get(ctx, studentID); err != nil {
		return nil, err
	}
	if _, err := e.store.Institutions.Get(ctx, institutionID); err != nil {
		return nil, err
	}

	snap := models.GradeSnapshot{Marks: marks, Skills: cleaned, SubmittedAt: e.now()}
	if err := e.store.Students.PutGradeSnapshot(ctx, studentID, institutionID, snap); err != nil {
		return nil, err
	}
	e.logger.Info("grades submitted", map[string]interface{}{
		"studentId":     studentID,
		"institutionId": institutionID,
	})
	return e.store.Students.Get(ctx, studentID)
}

func (e *Engine) created(ctx context.Context, reg *models.Registration) {
	metrics.RegistrationTransitions.WithLabelValues("", string(reg.Status), string(events.CauseApply)).Inc()
	e.logger.Info("registration created", map[string]interface{}{
		"registrationId": reg.ID,
		"studentId":      reg.StudentID,
		"type":           reg.Type,
	})
	e.emit(ctx, events.Event{
		Type:           events.RegistrationCreated,
		RegistrationID: reg.ID,
		StudentID:      reg.StudentID,
		To:             string(reg.Status),
		Cause:          events.CauseApply,
		InstitutionID:  reg.InstitutionID,
		OccurredAt:     reg.CreatedAt,
	})
}

func eligibilityError(res eligibility.Result, target string) error {
	if res.Code == eligibility.CodeAlreadyApplied {
		return errors.NewDuplicateApplicationError(target)
	}
	return errors.NewIneligibleError(res.Reason).WithMetadata("reasonCode", string(res.Code))
}
