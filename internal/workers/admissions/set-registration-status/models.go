package setregistrationstatus

import "admissions-engine/internal/lifecycle"

type Input struct {
	AuthToken      string `json:"authToken,omitempty"`
	RegistrationID string `json:"registrationId"`
	Status         string `json:"status,omitempty"`
	// Resume re-runs the cascade of the registration's current status instead
	// of changing it.
	Resume bool `json:"resume,omitempty"`
}

type Output struct {
	lifecycle.StatusChange
}
