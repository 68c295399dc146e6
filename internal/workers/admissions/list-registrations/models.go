package listregistrations

import "admissions-engine/internal/models"

// Input selects either a student's registrations or an institution's.
type Input struct {
	AuthToken     string `json:"authToken,omitempty"`
	StudentID     string `json:"studentId,omitempty"`
	InstitutionID string `json:"institutionId,omitempty"`
}

type Output struct {
	Registrations []models.Registration `json:"registrations"`
	Count         int                   `json:"count"`
}
