package lifecycle

import (
	"context"

	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/models"
	"admissions-engine/internal/scoring"
	"admissions-engine/internal/store"
)

// ListApplicants joins a company's job registrations with the applicant
// profile and job, scoring each on the fly. Registrations whose student or job
// no longer exists are skipped.
func (e *Engine) ListApplicants(ctx context.Context, companyID string) ([]models.Applicant, error) {
	if _, err := e.store.Companies.Get(ctx, companyID); err != nil {
		return nil, err
	}
	regs, err := e.store.Registrations.List(ctx, store.RegistrationFilter{
		CompanyID: companyID,
		Type:      models.RegistrationJob,
	})
	if err != nil {
		return nil, err
	}

	jobs := make(map[string]*models.Job)
	out := make([]models.Applicant, 0, len(regs))
	for _, reg := range regs {
		student, err := e.store.Students.Get(ctx, reg.StudentID)
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			e.logger.Warn("skipping applicant with missing student", map[string]interface{}{"registrationId": reg.ID})
			continue
		}
		if err != nil {
			return nil, err
		}

		job, ok := jobs[reg.JobID]
		if !ok {
			job, err = e.store.Jobs.Get(ctx, reg.JobID)
			if errors.HasCode(err, errors.ErrCodeNotFound) {
				e.logger.Warn("skipping applicant with missing job", map[string]interface{}{"registrationId": reg.ID})
				continue
			}
			if err != nil {
				return nil, err
			}
			jobs[reg.JobID] = job
		}

		out = append(out, models.Applicant{
			Registration:  reg,
			Student:       *student,
			Job:           *job,
			Qualification: scoring.Score(student, job),
		})
	}
	return out, nil
}
