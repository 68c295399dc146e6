// internal/models/student.go
package models

import "time"

// GradeSnapshot is the grade and skill set a student entered for one institution.
// It is captured once and never overwritten.
type GradeSnapshot struct {
	Marks       float64   `json:"marks"`
	Skills      []string  `json:"skills"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type Student struct {
	ID              string                   `json:"id"`
	Name            string                   `json:"name"`
	Email           string                   `json:"email"`
	Marks           float64                  `json:"marks"`
	Skills          []string                 `json:"skills"`
	ExperienceYears int                      `json:"experienceYears"`
	Documents       []string                 `json:"documents"`
	EnteredGrades   map[string]GradeSnapshot `json:"enteredGrades,omitempty"` // keyed by institution ID
	GradesSubmitted bool                     `json:"gradesSubmitted"`
	CreatedAt       time.Time                `json:"createdAt"`
}

// Snapshot returns the frozen grades for an institution. A snapshot counts only
// when it has positive marks and at least one skill.
func (s *Student) Snapshot(institutionID string) (GradeSnapshot, bool) {
	snap, ok := s.EnteredGrades[institutionID]
	if !ok || snap.Marks <= 0 || len(snap.Skills) == 0 {
		return GradeSnapshot{}, false
	}
	return snap, true
}
