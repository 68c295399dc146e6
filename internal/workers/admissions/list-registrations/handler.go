package listregistrations

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

const TaskType = "list-registrations"

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

// Execute lists registrations. Listing enforces the application cap, so the
// result may show registrations rejected by this very call.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	var (
		regs []models.Registration
		err  error
	)
	if input.StudentID != "" {
		regs, err = h.forStudent(ctx, input)
	} else {
		regs, err = h.forInstitution(ctx, input)
	}
	if err != nil {
		return nil, err
	}
	if regs == nil {
		regs = []models.Registration{}
	}
	return &Output{Registrations: regs, Count: len(regs)}, nil
}

func (h *Handler) forStudent(ctx context.Context, input *Input) ([]models.Registration, error) {
	session, err := auth.Authorize(ctx, h.sessions, input.AuthToken, auth.RoleStudent, auth.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireSelf(session, input.StudentID); err != nil {
		return nil, err
	}
	return h.engine.ListStudentRegistrations(ctx, input.StudentID)
}

func (h *Handler) forInstitution(ctx context.Context, input *Input) ([]models.Registration, error) {
	session, err := auth.Authorize(ctx, h.sessions, input.AuthToken, auth.RoleInstitute, auth.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwner(session, auth.RoleInstitute, input.InstitutionID); err != nil {
		return nil, err
	}
	return h.engine.ListInstitutionRegistrations(ctx, input.InstitutionID)
}
