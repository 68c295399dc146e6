// internal/models/company.go
package models

import "time"

type Company struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Status    ApprovalStatus `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
}

type Job struct {
	ID                 string     `json:"id"`
	CompanyID          string     `json:"companyId"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	Location           string     `json:"location,omitempty"`
	Type               string     `json:"type,omitempty"`
	Deadline           *time.Time `json:"deadline,omitempty"`
	Marks              float64    `json:"marks"`
	MinExperienceYears int        `json:"minExperienceYears"`
	Skills             []string   `json:"skills"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// IsOpen reports whether applications are still accepted at now.
func (j *Job) IsOpen(now time.Time) bool {
	return j.Deadline == nil || !now.After(*j.Deadline)
}
