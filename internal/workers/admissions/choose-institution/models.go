package chooseinstitution

import "admissions-engine/internal/lifecycle"

type Input struct {
	AuthToken      string `json:"authToken,omitempty"`
	StudentID      string `json:"studentId"`
	RegistrationID string `json:"registrationId"`
}

type Output struct {
	lifecycle.CascadeResult
}
