// Package eligibility decides whether a student may apply to a course or a job.
// Every check is a pure function of its arguments.
package eligibility

import (
	"fmt"
	"strconv"
	"strings"

	"admissions-engine/internal/models"
)

// Code classifies a failed check.
type Code string

const (
	CodeMaxApplications Code = "max_applications"
	CodeAlreadyApplied  Code = "already_applied"
	CodeGradesMissing   Code = "grades_missing"
	CodeMissingSubjects Code = "missing_subjects"
	CodeMarksTooLow     Code = "marks_too_low"
	CodeMissingSkills   Code = "missing_skills"
)

// DefaultMaxPerInstitution is the live course application cap per institution.
const DefaultMaxPerInstitution = 2

type Result struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
	Code     Code   `json:"code,omitempty"`
}

var eligible = Result{Eligible: true}

func deny(code Code, reason string) Result {
	return Result{Reason: reason, Code: code}
}

// Evaluator carries the tunable application cap.
type Evaluator struct {
	MaxPerInstitution int
}

func New(maxPerInstitution int) Evaluator {
	if maxPerInstitution < 1 {
		maxPerInstitution = DefaultMaxPerInstitution
	}
	return Evaluator{MaxPerInstitution: maxPerInstitution}
}

// CanApplyCourse evaluates with the default cap.
func CanApplyCourse(student *models.Student, course *models.Course, existing []models.Registration) Result {
	return New(DefaultMaxPerInstitution).CanApplyCourse(student, course, existing)
}

// CanApplyJob evaluates a job application against the live profile.
func CanApplyJob(student *models.Student, job *models.Job, existing []models.Registration) Result {
	return New(DefaultMaxPerInstitution).CanApplyJob(student, job, existing)
}

// CanApplyCourse checks, in order: the per-institution cap, a duplicate
// application, the frozen grade snapshot, required subjects and minimum marks.
// existing holds the student's registrations.
func (e Evaluator) CanApplyCourse(student *models.Student, course *models.Course, existing []models.Registration) Result {
	live := 0
	for i := range existing {
		r := &existing[i]
		if r.Type == models.RegistrationCourse && r.InstitutionID == course.InstitutionID && r.Status.Live() {
			live++
		}
	}
	if live >= e.MaxPerInstitution {
		return deny(CodeMaxApplications, fmt.Sprintf("Max %d courses per institution reached.", e.MaxPerInstitution))
	}

	for i := range existing {
		if existing[i].Type == models.RegistrationCourse && existing[i].CourseID == course.ID {
			return deny(CodeAlreadyApplied, "Already applied.")
		}
	}

	snap, ok := student.Snapshot(course.InstitutionID)
	if !ok {
		return deny(CodeGradesMissing, "Please enter your grades first.")
	}

	if missing := models.NewSkillSet(snap.Skills).Missing(course.RequiredSubjects); len(missing) > 0 {
		return deny(CodeMissingSubjects, "Missing skills: "+strings.Join(missing, ", "))
	}

	if snap.Marks < course.MinMarks {
		return deny(CodeMarksTooLow, fmt.Sprintf("Marks too low: need %s, have %s",
			formatMarks(course.MinMarks), formatMarks(snap.Marks)))
	}

	return eligible
}

// CanApplyJob checks for a duplicate application, at least one shared skill
// and the live marks threshold. No grade snapshot is needed.
func (e Evaluator) CanApplyJob(student *models.Student, job *models.Job, existing []models.Registration) Result {
	for i := range existing {
		if existing[i].Type == models.RegistrationJob && existing[i].JobID == job.ID {
			return deny(CodeAlreadyApplied, "Already applied for this job!")
		}
	}

	if models.NewSkillSet(student.Skills).CountShared(job.Skills) == 0 {
		return deny(CodeMissingSkills, "You do not have the required skills.")
	}

	if student.Marks < job.Marks {
		return deny(CodeMarksTooLow, "Your marks do not meet the minimum requirement.")
	}

	return eligible
}

func formatMarks(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
