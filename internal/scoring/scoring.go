// Package scoring derives a job applicant's qualification. The result is
// recomputed on every read and never stored.
package scoring

import "admissions-engine/internal/models"

const (
	marksPoints      = 40
	experiencePoints = 10
	documentPoints   = 10
	skillPoints      = 10

	InterviewThreshold = 80
	QualifiedThreshold = 60
)

// Score rates student against job.
func Score(student *models.Student, job *models.Job) models.Qualification {
	score := 0
	if student.Marks >= job.Marks {
		score += marksPoints
	}
	score += min(max(student.ExperienceYears, 0), max(job.MinExperienceYears, 0)) * experiencePoints
	score += len(student.Documents) * documentPoints
	score += models.NewSkillSet(student.Skills).CountShared(job.Skills) * skillPoints

	return models.Qualification{Score: score, Tier: TierFor(score)}
}

func TierFor(score int) models.Tier {
	switch {
	case score >= InterviewThreshold:
		return models.TierInterview
	case score >= QualifiedThreshold:
		return models.TierQualified
	default:
		return models.TierNotQualified
	}
}
