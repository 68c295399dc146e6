package inviteinterview

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"admissions-engine/internal/common/auth"
	"admissions-engine/internal/common/camunda"
	"admissions-engine/internal/common/logger"
	"admissions-engine/internal/common/observability"
	"admissions-engine/internal/notify"
	"admissions-engine/internal/store"
)

const TaskType = "invite-interview"

type Handler struct {
	emitter  *notify.Emitter
	store    *store.Store
	sessions auth.SessionResolver
	runner   *camunda.JobRunner
	logger   logger.Logger
}

func NewHandler(cfg *Config, emitter *notify.Emitter, s *store.Store, sessions auth.SessionResolver, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		emitter:  emitter,
		store:    s,
		sessions: sessions,
		runner:   camunda.NewJobRunner(TaskType, inputSchema, cfg.Timeout, obs, log),
		logger:   log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	var input Input
	h.runner.Run(client, job, &input, func(ctx context.Context) (interface{}, error) {
		return h.Execute(ctx, &input)
	})
}

// Execute sends the invitation. Company users may only invite their own applicants.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	session, err := auth.Authorize(ctx, h.sessions, input.AuthToken, auth.RoleCompany, auth.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if session != nil {
		reg, err := h.store.Registrations.Get(ctx, input.RegistrationID)
		if err != nil {
			return nil, err
		}
		if err := auth.RequireOwner(session, auth.RoleCompany, reg.CompanyID); err != nil {
			return nil, err
		}
	}

	n, err := h.emitter.InviteToInterview(ctx, input.RegistrationID, input.Interview)
	if err != nil {
		return nil, err
	}
	return &Output{Notification: *n}, nil
}
