package lifecycle

import (
	"context"

	"admissions-engine/internal/common/metrics"
	"admissions-engine/internal/events"
	"admissions-engine/internal/models"
	"admissions-engine/internal/store"
)

// PromoteWaitlist moves the earliest waiting registration in scope to pending
// and stamps it with freedBy, the Registration.FreeingEvent of the seat being
// backfilled. A freeing event promotes at most once: if some registration
// already carries freedBy it is returned unchanged. Returns nil when nobody is
// waiting.
func (e *Engine) PromoteWaitlist(ctx context.Context, scope models.Scope, freedBy string) (*models.Registration, error) {
	reg, _, err := e.promote(ctx, scope, freedBy)
	return reg, err
}

// promote also reports whether this call performed the promotion.
func (e *Engine) promote(ctx context.Context, scope models.Scope, freedBy string) (*models.Registration, bool, error) {
	if freedBy != "" {
		done, err := e.store.Registrations.List(ctx, store.RegistrationFilter{PromotedBy: freedBy, Limit: 1})
		if err != nil {
			return nil, false, err
		}
		if len(done) > 0 {
			metrics.WaitlistPromotions.WithLabelValues("already_promoted").Inc()
			return &done[0], false, nil
		}
	}

	waiting, err := e.store.Registrations.List(ctx, store.RegistrationFilter{
		Type:          models.RegistrationCourse,
		CourseID:      scope.CourseID,
		InstitutionID: scope.InstitutionID,
		Statuses:      []models.RegistrationStatus{models.StatusWaiting},
	})
	if err != nil {
		return nil, false, err
	}

	for i := range waiting {
		cand := &waiting[i]
		promoted, err := e.settle(ctx, cand, func(cur *models.Registration) (models.RegistrationStatus, bool, error) {
			return models.StatusPending, cur.Status == models.StatusWaiting, nil
		}, stamp{promotedBy: freedBy}, events.CausePromotion)
		if err != nil {
			return nil, false, err
		}
		if promoted {
			metrics.WaitlistPromotions.WithLabelValues("promoted").Inc()
			e.logger.Info("waitlist promoted", map[string]interface{}{
				"registrationId": cand.ID,
				"courseId":       scope.CourseID,
				"freedBy":        freedBy,
			})
			return cand, true, nil
		}
		if freedBy != "" && cand.PromotedBy == freedBy {
			// A concurrent promotion for the same freeing event won this candidate.
			metrics.WaitlistPromotions.WithLabelValues("already_promoted").Inc()
			return cand, false, nil
		}
	}

	metrics.WaitlistPromotions.WithLabelValues("empty").Inc()
	return nil, false, nil
}
