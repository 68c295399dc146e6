package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"admissions-engine/internal/models"
)

func TestScore(t *testing.T) {
	job := &models.Job{Marks: 60, MinExperienceYears: 2, Skills: []string{"JS", "Go"}}

	tests := []struct {
		name    string
		student *models.Student
		score   int
		tier    models.Tier
	}{
		{
			name: "reference applicant",
			student: &models.Student{
				Marks: 70, ExperienceYears: 3,
				Documents: []string{"a", "b"}, Skills: []string{"JS", "SQL"},
			},
			score: 90,
			tier:  models.TierInterview,
		},
		{
			name:    "qualified boundary",
			student: &models.Student{Marks: 60, ExperienceYears: 1, Skills: []string{"go"}},
			score:   60,
			tier:    models.TierQualified,
		},
		{
			name:    "below marks",
			student: &models.Student{Marks: 10, ExperienceYears: 5, Documents: []string{"cv"}},
			score:   30,
			tier:    models.TierNotQualified,
		},
		{
			name:    "empty profile",
			student: &models.Student{},
			score:   0,
			tier:    models.TierNotQualified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Score(tt.student, job)
			assert.Equal(t, tt.score, q.Score)
			assert.Equal(t, tt.tier, q.Tier)
		})
	}
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, models.TierNotQualified, TierFor(59))
	assert.Equal(t, models.TierQualified, TierFor(60))
	assert.Equal(t, models.TierQualified, TierFor(79))
	assert.Equal(t, models.TierInterview, TierFor(80))
}
