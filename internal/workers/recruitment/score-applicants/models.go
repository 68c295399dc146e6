package scoreapplicants

import "admissions-engine/internal/models"

type Input struct {
	AuthToken string `json:"authToken,omitempty"`
	CompanyID string `json:"companyId"`
	// MinTier drops applicants below the tier. Empty keeps everyone.
	MinTier models.Tier `json:"minTier,omitempty"`
}

type Output struct {
	Applicants []models.Applicant `json:"applicants"`
	Count      int                `json:"count"`
}
