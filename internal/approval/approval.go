// Package approval moves institutions and companies through admin review.
// Approval is confirmed by an external webhook that also mails credentials.
package approval

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"admissions-engine/internal/common/errors"
	apphttp "admissions-engine/internal/common/http"
	"admissions-engine/internal/common/logger"
	"admissions-engine/internal/models"
	"admissions-engine/internal/store"
)

// Kind selects the account collection under review.
type Kind string

const (
	KindInstitution Kind = "institution"
	KindCompany     Kind = "company"
)

// Request is the webhook payload.
type Request struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Kind   `json:"role"`
}

// Response is the webhook reply.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Poster interface {
	PostJSON(ctx context.Context, target string, body, out interface{}) error
}

type Service struct {
	store      *store.Store
	client     Poster
	webhookURL string
	logger     logger.Logger
}

func NewService(s *store.Store, client Poster, webhookURL string, log logger.Logger) *Service {
	return &Service{
		store:      s,
		client:     client,
		webhookURL: webhookURL,
		logger:     log.WithFields(map[string]interface{}{"component": "approval"}),
	}
}

// NewHTTPService builds a Service backed by the shared HTTP client.
func NewHTTPService(s *store.Store, webhookURL string, timeout time.Duration, log logger.Logger) *Service {
	return NewService(s, apphttp.NewClient(timeout), webhookURL, log)
}

type account struct {
	id, email, name string
	status          models.ApprovalStatus
}

func (s *Service) load(ctx context.Context, kind Kind, id string) (*account, error) {
	switch kind {
	case KindInstitution:
		inst, err := s.store.Institutions.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return &account{id: inst.ID, email: inst.Email, name: inst.Name, status: inst.Status}, nil
	case KindCompany:
		c, err := s.store.Companies.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return &account{id: c.ID, email: c.Email, name: c.Name, status: c.Status}, nil
	default:
		return nil, errors.NewInvalidInputError(fmt.Sprintf("unknown account kind %q", kind))
	}
}

func (s *Service) setStatus(ctx context.Context, kind Kind, id string, status models.ApprovalStatus) error {
	if kind == KindInstitution {
		return s.store.Institutions.SetStatus(ctx, id, status)
	}
	return s.store.Companies.SetStatus(ctx, id, status)
}

// Approve confirms the account with the webhook and then marks it approved.
// An already approved account is left alone.
func (s *Service) Approve(ctx context.Context, kind Kind, id string) (*Response, error) {
	acc, err := s.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if acc.status == models.ApprovalApproved {
		return &Response{Success: true, Message: acc.name + " is already approved."}, nil
	}
	if s.webhookURL == "" {
		return nil, errors.NewExternalServiceError("approval webhook", stderrors.New("webhook url not configured"))
	}

	var resp Response
	req := Request{ID: acc.id, Email: acc.email, Name: acc.name, Role: kind}
	if err := s.client.PostJSON(ctx, s.webhookURL, req, &resp); err != nil {
		var statusErr *apphttp.StatusError
		if stderrors.As(err, &statusErr) && !statusErr.Transient() {
			return nil, errors.NewApprovalRejectedError(statusErr.Body)
		}
		return nil, errors.NewExternalServiceError("approval webhook", err)
	}
	if !resp.Success {
		s.logger.Warn("approval rejected by webhook", map[string]interface{}{
			"kind": string(kind), "id": id, "message": resp.Message,
		})
		return nil, errors.NewApprovalRejectedError(resp.Message)
	}

	if err := s.setStatus(ctx, kind, id, models.ApprovalApproved); err != nil {
		return nil, err
	}
	s.logger.Info("account approved", map[string]interface{}{"kind": string(kind), "id": id})
	return &resp, nil
}

// Suspend blocks the account from taking new applications.
func (s *Service) Suspend(ctx context.Context, kind Kind, id string) error {
	if _, err := s.load(ctx, kind, id); err != nil {
		return err
	}
	if err := s.setStatus(ctx, kind, id, models.ApprovalSuspended); err != nil {
		return err
	}
	s.logger.Info("account suspended", map[string]interface{}{"kind": string(kind), "id": id})
	return nil
}
