package inviteinterview

import (
	"admissions-engine/internal/models"
	"admissions-engine/internal/notify"
)

type Input struct {
	AuthToken      string `json:"authToken,omitempty"`
	RegistrationID string `json:"registrationId"`
	notify.Interview
}

type Output struct {
	Notification models.Notification `json:"notification"`
}
