package reviewaccount

import (
	"context"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"admissions-engine/internal/approval"
	"admissions-engine/internal/common/auth"
	"admissions-engine/internal/common/camunda"
	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/common/logger"
	"admissions-engine/internal/common/observability"
	"admissions-engine/internal/models"
)

const TaskType = "review-account"

type Handler struct {
	approvals *approval.Service
	sessions  auth.SessionResolver
	runner    *camunda.JobRunner
	logger    logger.Logger
}

func NewHandler(cfg *Config, approvals *approval.Service, sessions auth.SessionResolver, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		approvals: approvals,
		sessions:  sessions,
		runner:    camunda.NewJobRunner(TaskType, inputSchema, cfg.Timeout, obs, log),
		logger:    log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	var input Input
	h.runner.Run(client, job, &input, func(ctx context.Context) (interface{}, error) {
		return h.Execute(ctx, &input)
	})
}

// Execute approves or suspends an institution or company. Admin only.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if _, err := auth.Authorize(ctx, h.sessions, input.AuthToken, auth.RoleAdmin); err != nil {
		return nil, err
	}

	out := &Output{Kind: input.Kind, ID: input.ID}
	switch input.Action {
	case ActionApprove:
		resp, err := h.approvals.Approve(ctx, input.Kind, input.ID)
		if err != nil {
			return nil, err
		}
		out.Status = models.ApprovalApproved
		out.Message = resp.Message
	case ActionSuspend:
		if err := h.approvals.Suspend(ctx, input.Kind, input.ID); err != nil {
			return nil, err
		}
		out.Status = models.ApprovalSuspended
	default:
		return nil, errors.NewInvalidInputError(fmt.Sprintf("unknown action %q", input.Action))
	}
	return out, nil
}
