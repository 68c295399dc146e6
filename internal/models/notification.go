// internal/models/notification.go
package models

import "time"

type NotificationType string

const (
	NotificationInterviewInvitation NotificationType = "interview_invitation"
	NotificationJobMatch            NotificationType = "job_match"
)

// Notification is append-only; only Read ever changes.
type Notification struct {
	ID          string           `json:"id"`
	StudentID   string           `json:"studentId"`
	Type        NotificationType `json:"type"`
	Message     string           `json:"message"`
	CompanyID   string           `json:"companyId,omitempty"`
	CompanyName string           `json:"companyName,omitempty"`
	JobID       string           `json:"jobId,omitempty"`
	JobTitle    string           `json:"jobTitle,omitempty"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"createdAt"`
}
