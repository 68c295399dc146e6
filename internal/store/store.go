// Package store defines the entity repositories the lifecycle engine runs on.
// Implementations guarantee per-record atomic updates only; there is no
// multi-record transaction.
package store

import (
	"context"
	"time"

	"admissions-engine/internal/models"
)

type InstitutionRepository interface {
	Create(ctx context.Context, inst *models.Institution) error
	Get(ctx context.Context, id string) (*models.Institution, error)
	SetStatus(ctx context.Context, id string, status models.ApprovalStatus) error
	// MarkPublished flips published once; it reports false when already published.
	MarkPublished(ctx context.Context, id string, at time.Time) (bool, error)
}

type FacultyRepository interface {
	Create(ctx context.Context, f *models.Faculty) error
	Get(ctx context.Context, id string) (*models.Faculty, error)
	ListByInstitution(ctx context.Context, institutionID string) ([]models.Faculty, error)
}

type CourseRepository interface {
	Create(ctx context.Context, c *models.Course) error
	Get(ctx context.Context, id string) (*models.Course, error)
}

type CompanyRepository interface {
	Create(ctx context.Context, c *models.Company) error
	Get(ctx context.Context, id string) (*models.Company, error)
	SetStatus(ctx context.Context, id string, status models.ApprovalStatus) error
}

type JobRepository interface {
	Create(ctx context.Context, j *models.Job) error
	Get(ctx context.Context, id string) (*models.Job, error)
	ListByCompany(ctx context.Context, companyID string) ([]models.Job, error)
	// ListOpen returns jobs of approved companies whose deadline has not passed at now.
	ListOpen(ctx context.Context, now time.Time) ([]models.Job, error)
}

type StudentRepository interface {
	Create(ctx context.Context, s *models.Student) error
	Get(ctx context.Context, id string) (*models.Student, error)
	ListIDs(ctx context.Context) ([]string, error)
	// PutGradeSnapshot stores the snapshot for an institution once; a second
	// call for the same pair fails with GRADES_FROZEN.
	PutGradeSnapshot(ctx context.Context, studentID, institutionID string, snap models.GradeSnapshot) error
}

// RegistrationFilter matches on every non-empty field. Results are ordered by
// createdAt ascending, ties broken by insertion order.
type RegistrationFilter struct {
	StudentID     string
	Type          models.RegistrationType
	CourseID      string
	InstitutionID string
	JobID         string
	CompanyID     string
	Statuses      []models.RegistrationStatus
	PromotedBy    string
	Limit         int
}

// Transition is a compare-and-set on one registration's status.
type Transition struct {
	ID         string
	From       []models.RegistrationStatus
	To         models.RegistrationStatus
	PromotedBy string
	// RemovedBy replaces the stored value on every transition.
	RemovedBy string
	At        time.Time
}

type RegistrationRepository interface {
	// Create fails with DUPLICATE_APPLICATION when the student already has a
	// registration for the same course or job.
	Create(ctx context.Context, r *models.Registration) error
	Get(ctx context.Context, id string) (*models.Registration, error)
	List(ctx context.Context, f RegistrationFilter) ([]models.Registration, error)
	// Transition applies t only if the current status is in t.From.
	Transition(ctx context.Context, t Transition) (bool, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	// CreateOnce inserts a job_match notification unless one exists for the
	// same (student, type, job). It reports whether a row was written.
	CreateOnce(ctx context.Context, n *models.Notification) (bool, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Institutions  InstitutionRepository
	Faculties     FacultyRepository
	Courses       CourseRepository
	Companies     CompanyRepository
	Jobs          JobRepository
	Students      StudentRepository
	Registrations RegistrationRepository
	Notifications NotificationRepository
}

// HasStatus reports whether s is one of statuses.
func HasStatus(s models.RegistrationStatus, statuses []models.RegistrationStatus) bool {
	for _, c := range statuses {
		if c == s {
			return true
		}
	}
	return false
}
