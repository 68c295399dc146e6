// internal/models/institution.go
package models

import "time"

// ApprovalStatus is the platform admin's verdict on an institution or company.
type ApprovalStatus string

const (
	ApprovalPending   ApprovalStatus = "pending"
	ApprovalApproved  ApprovalStatus = "approved"
	ApprovalSuspended ApprovalStatus = "suspended"
)

type Institution struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Status      ApprovalStatus `json:"status"`
	Published   bool           `json:"published"`
	PublishedAt *time.Time     `json:"publishedAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

type Faculty struct {
	ID            string    `json:"id"`
	InstitutionID string    `json:"institutionId"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Course struct {
	ID               string    `json:"id"`
	InstitutionID    string    `json:"institutionId"`
	FacultyID        string    `json:"facultyId"`
	Name             string    `json:"name"`
	RequiredSubjects []string  `json:"requiredSubjects"`
	MinMarks         float64   `json:"minMarks"`
	CreatedAt        time.Time `json:"createdAt"`
}
