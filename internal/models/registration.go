// internal/models/registration.go
package models

import "time"

type RegistrationType string

const (
	RegistrationCourse RegistrationType = "course"
	RegistrationJob    RegistrationType = "job"
)

type RegistrationStatus string

const (
	StatusPending  RegistrationStatus = "pending"
	StatusWaiting  RegistrationStatus = "waiting"
	StatusAdmitted RegistrationStatus = "admitted"
	StatusRejected RegistrationStatus = "rejected"
	StatusRemoved  RegistrationStatus = "removed"
)

// LiveStatuses count toward the per-institution application cap.
var LiveStatuses = []RegistrationStatus{StatusPending, StatusWaiting, StatusAdmitted}

// Live reports whether the status is pending, waiting or admitted.
func (s RegistrationStatus) Live() bool {
	return s == StatusPending || s == StatusWaiting || s == StatusAdmitted
}

// Closed reports the negative terminal statuses.
func (s RegistrationStatus) Closed() bool {
	return s == StatusRejected || s == StatusRemoved
}

// ValidCourseStatus reports whether s is a course registration status.
func ValidCourseStatus(s RegistrationStatus) bool {
	switch s {
	case StatusPending, StatusWaiting, StatusAdmitted, StatusRejected, StatusRemoved:
		return true
	}
	return false
}

// Registration is a student's application to a course or a job.
type Registration struct {
	ID        string             `json:"id"`
	StudentID string             `json:"studentId"`
	Type      RegistrationType   `json:"type"`
	Status    RegistrationStatus `json:"status"`

	CourseID      string `json:"courseId,omitempty"`
	InstitutionID string `json:"institutionId,omitempty"`
	JobID         string `json:"jobId,omitempty"`
	CompanyID     string `json:"companyId,omitempty"`

	// PromotedBy names the freeing event (see FreeingEvent) that moved this
	// one off the waitlist.
	PromotedBy string `json:"promotedBy,omitempty"`
	// RemovedBy is the admitted registration whose cascade removed this one.
	// Empty for staff removals; cleared by any later transition.
	RemovedBy string `json:"removedBy,omitempty"`

	StudentName     string `json:"studentName,omitempty"`
	CourseName      string `json:"courseName,omitempty"`
	InstitutionName string `json:"institutionName,omitempty"`
	JobTitle        string `json:"jobTitle,omitempty"`
	CompanyName     string `json:"companyName,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Scope identifies one course waitlist.
type Scope struct {
	CourseID      string `json:"courseId"`
	InstitutionID string `json:"institutionId"`
}

// Scope returns the waitlist scope of a course registration.
func (r *Registration) Scope() Scope {
	return Scope{CourseID: r.CourseID, InstitutionID: r.InstitutionID}
}

// FreeingEvent identifies the transition that closed r and freed its seat.
// It stays stable while r remains closed, and differs each time r is closed
// again after being reopened.
func (r *Registration) FreeingEvent() string {
	return r.ID + "@" + r.UpdatedAt.UTC().Format("20060102T150405.000000Z")
}
