package publishadmissions

import "admissions-engine/internal/models"

type Input struct {
	AuthToken     string `json:"authToken,omitempty"`
	InstitutionID string `json:"institutionId"`
}

type Output struct {
	Institution models.Institution `json:"institution"`
}
