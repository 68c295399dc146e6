package setregistrationstatus

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"admissions-engine/internal/common/auth"
	"admissions-engine/internal/common/camunda"
	"admissions-engine/internal/common/logger"
	"admissions-engine/internal/common/observability"
	"admissions-engine/internal/lifecycle"
	"admissions-engine/internal/models"
)

const TaskType = "set-registration-status"

type Handler struct {
	engine   *lifecycle.Engine
	sessions auth.SessionResolver
	runner   *camunda.JobRunner
	logger   logger.Logger
}

func NewHandler(cfg *Config, engine *lifecycle.Engine, sessions auth.SessionResolver, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		engine:   engine,
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

// Execute applies a staff decision. Institution staff may only decide on
// registrations of their own institution.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	session, err := auth.Authorize(ctx, h.sessions, input.AuthToken, auth.RoleInstitute, auth.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if session != nil {
		reg, err := h.engine.Store().Registrations.Get(ctx, input.RegistrationID)
		if err != nil {
			return nil, err
		}
		if err := auth.RequireOwner(session, auth.RoleInstitute, reg.InstitutionID); err != nil {
			return nil, err
		}
	}

	var change *lifecycle.StatusChange
	if input.Resume {
		change, err = h.engine.ResumeCascade(ctx, input.RegistrationID)
	} else {
		change, err = h.engine.SetStatus(ctx, input.RegistrationID, models.RegistrationStatus(input.Status))
	}
	if err != nil {
		return nil, err
	}
	return &Output{StatusChange: *change}, nil
}
