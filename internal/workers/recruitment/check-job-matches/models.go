package checkjobmatches

import "admissions-engine/internal/models"

type Input struct {
	AuthToken string `json:"authToken,omitempty"`
	StudentID string `json:"studentId"`
}

type Output struct {
	Notifications []models.Notification `json:"notifications"`
	Created       int                   `json:"created"`
}
