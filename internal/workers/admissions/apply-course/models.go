package applycourse

import "admissions-engine/internal/models"

type Input struct {
	AuthToken string `json:"authToken,omitempty"`
	StudentID string `json:"studentId"`
	CourseID  string `json:"courseId"`
}

type Output struct {
	Registration models.Registration `json:"registration"`
}
