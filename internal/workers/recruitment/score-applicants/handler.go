package scoreapplicants

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

const TaskType = "score-applicants"

var tierRank = map[models.Tier]int{
	models.TierNotQualified: 0,
	models.TierQualified:    1,
	models.TierInterview:    2,
}

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

// Execute scores every applicant to the company's jobs against the live profile.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	session, err := auth.Authorize(ctx, h.sessions, input.AuthToken, auth.RoleCompany, auth.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwner(session, auth.RoleCompany, input.CompanyID); err != nil {
		return nil, err
	}

	applicants, err := h.engine.ListApplicants(ctx, input.CompanyID)
	if err != nil {
		return nil, err
	}

	out := make([]models.Applicant, 0, len(applicants))
	floor := tierRank[input.MinTier]
	for _, a := range applicants {
		if tierRank[a.Qualification.Tier] >= floor {
			out = append(out, a)
		}
	}
	return &Output{Applicants: out, Count: len(out)}, nil
}
