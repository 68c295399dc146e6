package submitgrades

import "admissions-engine/internal/models"

type Input struct {
	AuthToken     string   `json:"authToken,omitempty"`
	StudentID     string   `json:"studentId"`
	InstitutionID string   `json:"institutionId"`
	Marks         float64  `json:"marks"`
	Skills        []string `json:"skills"`
}

type Output struct {
	Student models.Student `json:"student"`
}
