// Package lifecycle owns registration state: applications, staff decisions,
// exclusivity cascades, waitlist promotion, the application cap and the
// published admissions lock.
//
// There is no global lock. Every multi-step operation is a loop of
// single-registration compare-and-set steps, and each step treats "already in
// the target state" as success, so any operation can be re-invoked after a
// partial failure.
package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"

	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/common/logger"
	"admissions-engine/internal/common/metrics"
	"admissions-engine/internal/eligibility"
	"admissions-engine/internal/events"
	"admissions-engine/internal/models"
	"admissions-engine/internal/store"
)

const defaultTransitionRetries = 3

type Engine struct {
	store     *store.Store
	evaluator eligibility.Evaluator
	events    events.Publisher
	logger    logger.Logger
	retries   int
	now       func() time.Time
	newID     func() string
}

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithEvents(p events.Publisher) Option {
	return func(e *Engine) {
		if p != nil {
			e.events = p
		}
	}
}

// WithMaxApplications sets the live course application cap per institution.
func WithMaxApplications(n int) Option {
	return func(e *Engine) { e.evaluator = eligibility.New(n) }
}

// WithTransitionRetries bounds compare-and-set attempts per registration.
func WithTransitionRetries(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.retries = n
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

func New(s *store.Store, log logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:     s,
		evaluator: eligibility.New(eligibility.DefaultMaxPerInstitution),
		events:    events.Noop{},
		logger:    log.WithFields(map[string]interface{}{"component": "lifecycle"}),
		retries:   defaultTransitionRetries,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store exposes the backing repositories to collaborators sharing the engine.
func (e *Engine) Store() *store.Store {
	return e.store
}

// stamp is recorded with a transition.
type stamp struct {
	promotedBy string
	removedBy  string
}

// decision picks the target status for a registration as currently stored.
// proceed=false means nothing needs to be written.
type decision func(reg *models.Registration) (to models.RegistrationStatus, proceed bool, err error)

// settle applies decide to reg until a write lands or decide declines. A lost
// compare-and-set refreshes reg and decides again, up to e.retries times.
func (e *Engine) settle(ctx context.Context, reg *models.Registration, decide decision, st stamp, cause events.Cause) (bool, error) {
	for attempt := 0; attempt < e.retries; attempt++ {
		to, proceed, err := decide(reg)
		if err != nil || !proceed {
			return false, err
		}
		applied, err := e.cas(ctx, reg, to, st, cause)
		if err != nil {
			return false, err
		}
		if applied {
			return true, nil
		}
	}
	return false, errors.NewConcurrentModificationError(reg.ID, e.retries)
}

// cas moves reg from its observed status to `to`. On success reg is updated in
// place; on a lost race reg is reloaded.
func (e *Engine) cas(ctx context.Context, reg *models.Registration, to models.RegistrationStatus, st stamp, cause events.Cause) (bool, error) {
	from := reg.Status
	at := e.now()

	applied, err := e.store.Registrations.Transition(ctx, store.Transition{
		ID:         reg.ID,
		From:       []models.RegistrationStatus{from},
		To:         to,
		PromotedBy: st.promotedBy,
		RemovedBy:  st.removedBy,
		At:         at,
	})
	if err != nil {
		return false, err
	}

	if !applied {
		fresh, err := e.store.Registrations.Get(ctx, reg.ID)
		if err != nil {
			return false, err
		}
		*reg = *fresh
		return false, nil
	}

	reg.Status = to
	reg.UpdatedAt = at
	if st.promotedBy != "" {
		reg.PromotedBy = st.promotedBy
	}
	reg.RemovedBy = st.removedBy

	metrics.RegistrationTransitions.WithLabelValues(string(from), string(to), string(cause)).Inc()
	e.logger.Info("registration transitioned", map[string]interface{}{
		"registrationId": reg.ID,
		"studentId":      reg.StudentID,
		"from":           from,
		"to":             to,
		"cause":          cause,
	})
	e.emit(ctx, events.Event{
		Type:           events.RegistrationTransitioned,
		RegistrationID: reg.ID,
		StudentID:      reg.StudentID,
		From:           string(from),
		To:             string(to),
		Cause:          cause,
		InstitutionID:  reg.InstitutionID,
		OccurredAt:     at,
	})
	return true, nil
}

// emit never fails the caller.
func (e *Engine) emit(ctx context.Context, ev events.Event) {
	if err := e.events.Publish(ctx, ev); err != nil {
		e.logger.Warn("failed to publish lifecycle event", map[string]interface{}{
			"type":           ev.Type,
			"registrationId": ev.RegistrationID,
			"error":          err.Error(),
		})
	}
}

// institutions memoizes institution reads within one operation.
type institutions struct {
	e     *Engine
	cache map[string]*models.Institution
}

func (e *Engine) institutionCache() *institutions {
	return &institutions{e: e, cache: make(map[string]*models.Institution)}
}

func (c *institutions) get(ctx context.Context, id string) (*models.Institution, error) {
	if inst, ok := c.cache[id]; ok {
		return inst, nil
	}
	inst, err := c.e.store.Institutions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache[id] = inst
	return inst, nil
}
