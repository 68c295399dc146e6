package applycourse

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"admissions-engine/internal/common/auth"
	"admissions-engine/internal/common/camunda"
	"admissions-engine/internal/common/logger"
	"admissions-engine/internal/common/observability"
	"admissions-engine/internal/lifecycle"
)

const TaskType = "apply-course"

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

// Execute applies the student to the course. The returned registration may
// already be rejected when a racing application pushed the student over the cap.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	session, err := auth.Authorize(ctx, h.sessions, input.AuthToken, auth.RoleStudent)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireSelf(session, input.StudentID); err != nil {
		return nil, err
	}

	reg, err := h.engine.Apply(ctx, input.StudentID, input.CourseID)
	if err != nil {
		return nil, err
	}
	return &Output{Registration: *reg}, nil
}
