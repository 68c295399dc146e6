package lifecycle

import (
	"context"

	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/common/metrics"
	"admissions-engine/internal/events"
	"admissions-engine/internal/models"
	"admissions-engine/internal/store"
)

// CascadeResult lists what one cascade run touched.
type CascadeResult struct {
	Registration models.Registration   `json:"registration"`
	Removed      []models.Registration `json:"removed"`
	Skipped      []models.Registration `json:"skipped"`
	Promoted     []models.Registration `json:"promoted"`
}

const (
	kindExclusivity = "exclusivity"
	kindChoice      = "choice"
)

// ExclusivityCascade removes every other course registration of an admitted
// student and backfills each freed seat from its waitlist. Admitted
// registrations at published institutions are left for the student to choose
// between. Each sibling is an independent step; the first store failure aborts
// the run and a re-run resumes it. Job registrations are never touched.
func (e *Engine) ExclusivityCascade(ctx context.Context, registrationID string) (*CascadeResult, error) {
	reg, err := e.store.Registrations.Get(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	res := &CascadeResult{Registration: *reg}
	if reg.Type != models.RegistrationCourse || reg.Status != models.StatusAdmitted {
		return res, nil
	}

	insts := e.institutionCache()
	err = e.resolveSiblings(ctx, reg, res, kindExclusivity, events.CauseCascade,
		func(ctx context.Context, sib *models.Registration) (bool, error) {
			if sib.Status != models.StatusAdmitted {
				return false, nil
			}
			inst, err := insts.get(ctx, sib.InstitutionID)
			if err != nil {
				return false, err
			}
			return inst.Published, nil
		})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ChooseInstitution keeps the student's chosen admitted registration and
// removes every other live course registration, admitted ones included.
func (e *Engine) ChooseInstitution(ctx context.Context, studentID, registrationID string) (*CascadeResult, error) {
	reg, err := e.store.Registrations.Get(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.StudentID != studentID {
		return nil, errors.NewForbiddenError("registration belongs to another student")
	}
	if reg.Type != models.RegistrationCourse || reg.Status != models.StatusAdmitted {
		return nil, errors.NewInvalidTransitionError("only an admitted course registration can be chosen")
	}

	res := &CascadeResult{Registration: *reg}
	err = e.resolveSiblings(ctx, reg, res, kindChoice, events.CauseChoice,
		func(context.Context, *models.Registration) (bool, error) { return false, nil })
	if err != nil {
		return nil, err
	}
	return res, nil
}

// resolveSiblings removes each of reg's sibling course registrations unless
// keep says otherwise, then promotes the freed scope. A sibling already
// removed by reg's own cascade gets its promotion re-run, which completes an
// interrupted run; siblings removed by anyone else are left alone.
func (e *Engine) resolveSiblings(
	ctx context.Context,
	reg *models.Registration,
	res *CascadeResult,
	kind string,
	cause events.Cause,
	keep func(ctx context.Context, sib *models.Registration) (bool, error),
) error {
	siblings, err := e.store.Registrations.List(ctx, store.RegistrationFilter{
		StudentID: reg.StudentID,
		Type:      models.RegistrationCourse,
	})
	if err != nil {
		return err
	}

	for i := range siblings {
		sib := &siblings[i]
		if sib.ID == reg.ID {
			continue
		}

		removed, err := e.settle(ctx, sib, func(cur *models.Registration) (models.RegistrationStatus, bool, error) {
			if cur.Status.Closed() {
				return "", false, nil
			}
			skip, err := keep(ctx, cur)
			if err != nil || skip {
				return "", false, err
			}
			return models.StatusRemoved, true, nil
		}, stamp{removedBy: reg.ID}, cause)
		if err != nil {
			metrics.CascadeSteps.WithLabelValues(kind, "error").Inc()
			e.logger.Error("cascade step failed", map[string]interface{}{
				"registrationId": reg.ID,
				"siblingId":      sib.ID,
				"error":          err.Error(),
			})
			return err
		}

		switch {
		case removed:
			metrics.CascadeSteps.WithLabelValues(kind, "removed").Inc()
			res.Removed = append(res.Removed, *sib)
		case sib.Status == models.StatusRemoved && sib.RemovedBy == reg.ID:
			metrics.CascadeSteps.WithLabelValues(kind, "already_removed").Inc()
		case sib.Status == models.StatusRemoved:
			metrics.CascadeSteps.WithLabelValues(kind, "removed_elsewhere").Inc()
			continue
		default:
			metrics.CascadeSteps.WithLabelValues(kind, "skipped").Inc()
			if sib.Status == models.StatusAdmitted {
				e.logger.Warn("student admitted at another published institution", map[string]interface{}{
					"registrationId": reg.ID,
					"siblingId":      sib.ID,
					"institutionId":  sib.InstitutionID,
				})
			}
			res.Skipped = append(res.Skipped, *sib)
			continue
		}

		promoted, fresh, err := e.promote(ctx, sib.Scope(), sib.FreeingEvent())
		if err != nil {
			metrics.CascadeSteps.WithLabelValues(kind, "error").Inc()
			return err
		}
		if fresh {
			res.Promoted = append(res.Promoted, *promoted)
		}
	}
	return nil
}
