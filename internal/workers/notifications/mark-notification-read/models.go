package marknotificationread

import "admissions-engine/internal/models"

type Input struct {
	AuthToken      string `json:"authToken,omitempty"`
	StudentID      string `json:"studentId"`
	NotificationID string `json:"notificationId"`
}

type Output struct {
	Notification models.Notification `json:"notification"`
	Unread       int                 `json:"unread"`
}
