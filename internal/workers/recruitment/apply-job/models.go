package applyjob

import "admissions-engine/internal/models"

type Input struct {
	AuthToken string `json:"authToken,omitempty"`
	StudentID string `json:"studentId"`
	JobID     string `json:"jobId"`
}

type Output struct {
	Registration models.Registration `json:"registration"`
}
