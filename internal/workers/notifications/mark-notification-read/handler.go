package marknotificationread

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"admissions-engine/internal/common/auth"
	"admissions-engine/internal/common/camunda"
	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/common/logger"
	"admissions-engine/internal/common/observability"
	"admissions-engine/internal/notify"
)

const TaskType = "mark-notification-read"

type Handler struct {
	emitter  *notify.Emitter
	sessions auth.SessionResolver
	runner   *camunda.JobRunner
	logger   logger.Logger
}

func NewHandler(cfg *Config, emitter *notify.Emitter, sessions auth.SessionResolver, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		emitter:  emitter,
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

// Execute marks one of the student's notifications read. A notification of
// another student reports NOT_FOUND.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	session, err := auth.Authorize(ctx, h.sessions, input.AuthToken, auth.RoleStudent)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireSelf(session, input.StudentID); err != nil {
		return nil, err
	}

	list, err := h.emitter.ListNotifications(ctx, input.StudentID)
	if err != nil {
		return nil, err
	}
	out := &Output{}
	found := false
	for _, n := range list {
		if n.ID == input.NotificationID {
			found = true
			out.Notification = n
			out.Notification.Read = true
			continue
		}
		if !n.Read {
			out.Unread++
		}
	}
	if !found {
		return nil, errors.NewNotFoundError("notifications", input.NotificationID)
	}

	if err := h.emitter.MarkRead(ctx, input.NotificationID); err != nil {
		return nil, err
	}
	return out, nil
}
