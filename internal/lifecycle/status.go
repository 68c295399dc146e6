package lifecycle

import (
	"context"
	"fmt"

	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/events"
	"admissions-engine/internal/models"
)

// StatusChange reports what SetStatus did.
type StatusChange struct {
	Registration models.Registration  `json:"registration"`
	Changed      bool                 `json:"changed"`
	Cascade      *CascadeResult       `json:"cascade,omitempty"`
	Promoted     *models.Registration `json:"promoted,omitempty"`
}

// SetStatus is the institution staff decision on a course registration.
//
// Once the institution has published, admitted→admitted is a no-op success and
// pending|waiting→admitted is a confirmation; every other change is locked.
// A registration already in the target state is not written and triggers no
// cascade. Admission runs the exclusivity cascade; rejection or removal runs
// waitlist promotion for the registration's course.
func (e *Engine) SetStatus(ctx context.Context, registrationID string, status models.RegistrationStatus) (*StatusChange, error) {
	if !models.ValidCourseStatus(status) {
		return nil, errors.NewInvalidTransitionError(fmt.Sprintf("unknown status %q", status))
	}

	reg, err := e.store.Registrations.Get(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.Type != models.RegistrationCourse {
		return nil, errors.NewInvalidTransitionError("job registrations have no status transitions")
	}

	inst, err := e.store.Institutions.Get(ctx, reg.InstitutionID)
	if err != nil {
		return nil, err
	}

	changed, err := e.settle(ctx, reg, func(cur *models.Registration) (models.RegistrationStatus, bool, error) {
		if inst.Published {
			switch {
			case cur.Status == models.StatusAdmitted && status == models.StatusAdmitted:
				return "", false, nil
			case status == models.StatusAdmitted &&
				(cur.Status == models.StatusPending || cur.Status == models.StatusWaiting):
			default:
				return "", false, errors.NewPublishedLockError(inst.ID,
					fmt.Sprintf("cannot move registration %s from %s to %s", cur.ID, cur.Status, status))
			}
		}
		if cur.Status == status {
			return "", false, nil
		}
		return status, true, nil
	}, stamp{}, events.CauseStaff)
	if err != nil {
		return nil, err
	}

	out := &StatusChange{Registration: *reg, Changed: changed}
	if !changed {
		return out, nil
	}

	switch status {
	case models.StatusAdmitted:
		res, err := e.ExclusivityCascade(ctx, reg.ID)
		if err != nil {
			return nil, err
		}
		out.Cascade = res
	case models.StatusRejected, models.StatusRemoved:
		promoted, err := e.PromoteWaitlist(ctx, reg.Scope(), reg.FreeingEvent())
		if err != nil {
			return nil, err
		}
		out.Promoted = promoted
	}
	return out, nil
}

// ResumeCascade re-runs the follow-up of a registration's current status:
// the exclusivity cascade for admitted, waitlist promotion for rejected or
// removed. Both are idempotent, so this is safe after a partial failure.
func (e *Engine) ResumeCascade(ctx context.Context, registrationID string) (*StatusChange, error) {
	reg, err := e.store.Registrations.Get(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	out := &StatusChange{Registration: *reg}
	if reg.Type != models.RegistrationCourse {
		return out, nil
	}

	switch reg.Status {
	case models.StatusAdmitted:
		res, err := e.ExclusivityCascade(ctx, reg.ID)
		if err != nil {
			return nil, err
		}
		out.Cascade = res
	case models.StatusRejected, models.StatusRemoved:
		promoted, err := e.PromoteWaitlist(ctx, reg.Scope(), reg.FreeingEvent())
		if err != nil {
			return nil, err
		}
		out.Promoted = promoted
	}
	return out, nil
}

// Publish finalizes an institution's admissions. Publishing twice is a no-op.
func (e *Engine) Publish(ctx context.Context, institutionID string) (*models.Institution, error) {
	at := e.now()
	first, err := e.store.Institutions.MarkPublished(ctx, institutionID, at)
	if err != nil {
		return nil, err
	}
	if first {
		e.logger.Info("admissions published", map[string]interface{}{"institutionId": institutionID})
		e.emit(ctx, events.Event{
			Type:          events.InstitutionPublished,
			Cause:         events.CausePublish,
			InstitutionID: institutionID,
			OccurredAt:    at,
		})
	}
	return e.store.Institutions.Get(ctx, institutionID)
}
