package reviewaccount

import (
	"admissions-engine/internal/approval"
	"admissions-engine/internal/models"
)

const (
	ActionApprove = "approve"
	ActionSuspend = "suspend"
)

type Input struct {
	AuthToken string        `json:"authToken,omitempty"`
	Kind      approval.Kind `json:"kind"`
	ID        string        `json:"id"`
	Action    string        `json:"action"`
}

type Output struct {
	Kind    approval.Kind         `json:"kind"`
	ID      string                `json:"id"`
	Status  models.ApprovalStatus `json:"status"`
	Message string                `json:"message,omitempty"`
}
