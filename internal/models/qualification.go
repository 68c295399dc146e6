// internal/models/qualification.go
package models

type Tier string

const (
	TierNotQualified Tier = "not_qualified"
	TierQualified    Tier = "qualified"
	TierInterview    Tier = "interview"
)

// Qualification is derived on every read and never stored.
type Qualification struct {
	Score int  `json:"score"`
	Tier  Tier `json:"tier"`
}

// Invitable reports whether the tier allows an interview invitation.
func (q Qualification) Invitable() bool {
	return q.Tier == TierQualified || q.Tier == TierInterview
}

// Applicant is a job registration joined with its student and derived qualification.
type Applicant struct {
	Registration  Registration  `json:"registration"`
	Student       Student       `json:"student"`
	Job           Job           `json:"job"`
	Qualification Qualification `json:"qualification"`
}
