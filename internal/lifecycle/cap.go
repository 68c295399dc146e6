package lifecycle

import (
	"context"

	"admissions-engine/internal/common/metrics"
	"admissions-engine/internal/events"
	"admissions-engine/internal/models"
	"admissions-engine/internal/store"
)

// EnforceApplicationCap walks a student's course registrations at one
// institution oldest first and rejects every live registration beyond the cap.
// Rejection here frees no seat, so nothing is promoted. Returns the healed
// registrations.
func (e *Engine) EnforceApplicationCap(ctx context.Context, studentID, institutionID string) ([]models.Registration, error) {
	regs, err := e.store.Registrations.List(ctx, store.RegistrationFilter{
		StudentID:     studentID,
		InstitutionID: institutionID,
		Type:          models.RegistrationCourse,
	})
	if err != nil {
		return nil, err
	}

	limit := e.evaluator.MaxPerInstitution
	live := 0
	for i := range regs {
		reg := &regs[i]
		if !reg.Status.Live() {
			continue
		}
		if live < limit {
			live++
			continue
		}

		rejected, err := e.settle(ctx, reg, func(cur *models.Registration) (models.RegistrationStatus, bool, error) {
			return models.StatusRejected, cur.Status.Live(), nil
		}, stamp{}, events.CauseCap)
		if err != nil {
			return nil, err
		}
		if rejected {
			metrics.CascadeSteps.WithLabelValues("cap", "rejected").Inc()
			e.logger.Warn("application cap exceeded, registration rejected", map[string]interface{}{
				"registrationId": reg.ID,
				"studentId":      studentID,
				"institutionId":  institutionID,
			})
		}
	}
	return regs, nil
}

// ListStudentRegistrations returns all of a student's registrations with the
// application cap enforced at every institution involved.
func (e *Engine) ListStudentRegistrations(ctx context.Context, studentID string) ([]models.Registration, error) {
	if _, err := e.store.Students.Get(ctx, studentID); err != nil {
		return nil, err
	}
	regs, err := e.store.Registrations.List(ctx, store.RegistrationFilter{StudentID: studentID})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, reg := range regs {
		if reg.Type != models.RegistrationCourse || seen[reg.InstitutionID] {
			continue
		}
		seen[reg.InstitutionID] = true
		if _, err := e.EnforceApplicationCap(ctx, studentID, reg.InstitutionID); err != nil {
			return nil, err
		}
	}
	if len(seen) == 0 {
		return regs, nil
	}
	return e.store.Registrations.List(ctx, store.RegistrationFilter{StudentID: studentID})
}

// ListInstitutionRegistrations returns an institution's course registrations
// oldest first, with the cap enforced for each applicant.
func (e *Engine) ListInstitutionRegistrations(ctx context.Context, institutionID string) ([]models.Registration, error) {
	if _, err := e.store.Institutions.Get(ctx, institutionID); err != nil {
		return nil, err
	}
	filter := store.RegistrationFilter{InstitutionID: institutionID, Type: models.RegistrationCourse}
	regs, err := e.store.Registrations.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, reg := range regs {
		if seen[reg.StudentID] {
			continue
		}
		seen[reg.StudentID] = true
		if _, err := e.EnforceApplicationCap(ctx, reg.StudentID, institutionID); err != nil {
			return nil, err
		}
	}
	if len(seen) == 0 {
		return regs, nil
	}
	return e.store.Registrations.List(ctx, filter)
}
