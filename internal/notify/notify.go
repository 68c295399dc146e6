// Package notify writes student notifications: interview invitations and job
// matches. Notifications are append-only; only the read flag changes.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/common/logger"
	"admissions-engine/internal/common/metrics"
	"admissions-engine/internal/models"
	"admissions-engine/internal/scoring"
	"admissions-engine/internal/store"
)

const matchSetTTL = 24 * time.Hour

// CandidateIndex narrows the jobs worth checking for a profile.
type CandidateIndex interface {
	SearchCandidates(ctx context.Context, skills []string, marks float64) ([]string, error)
}

type Interview struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	Place string `json:"place"`
}

type Emitter struct {
	store  *store.Store
	redis  redis.Cmdable
	index  CandidateIndex
	logger logger.Logger
	now    func() time.Time
	newID  func() string
}

type Option func(*Emitter)

// WithRedis enables the per-student set of already notified jobs.
func WithRedis(rdb redis.Cmdable) Option {
	return func(e *Emitter) { e.redis = rdb }
}

func WithIndex(idx CandidateIndex) Option {
	return func(e *Emitter) { e.index = idx }
}

func WithClock(now func() time.Time) Option {
	return func(e *Emitter) { e.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(e *Emitter) { e.newID = gen }
}

func NewEmitter(s *store.Store, log logger.Logger, opts ...Option) *Emitter {
	e := &Emitter{
		store:  s,
		logger: log.WithFields(map[string]interface{}{"component": "notify"}),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MatchSetKey is the Redis set of job IDs a student was already told about.
func MatchSetKey(studentID string) string {
	return "notify:job_match:" + studentID
}

// InterviewMessage renders the invitation text.
func InterviewMessage(jobTitle, company string, iv Interview) string {
	return fmt.Sprintf("You have been invited for an interview for the position of %s at %s. "+
		"The interview is scheduled for %s at %s at %s. "+
		"Please bring hard copies of your documents and transcripts.",
		jobTitle, company, iv.Date, iv.Time, iv.Place)
}

// InviteToInterview notifies a qualified job applicant. The registration itself
// does not change.
func (e *Emitter) InviteToInterview(ctx context.Context, registrationID string, iv Interview) (*models.Notification, error) {
	if strings.TrimSpace(iv.Date) == "" || strings.TrimSpace(iv.Time) == "" || strings.TrimSpace(iv.Place) == "" {
		return nil, errors.NewInvalidInputError("interview date, time and place are required")
	}

	reg, err := e.store.Registrations.Get(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.Type != models.RegistrationJob {
		return nil, errors.NewInvalidTransitionError("interviews apply to job registrations only")
	}

	student, err := e.store.Students.Get(ctx, reg.StudentID)
	if err != nil {
		return nil, err
	}
	job, err := e.store.Jobs.Get(ctx, reg.JobID)
	if err != nil {
		return nil, err
	}
	company, err := e.store.Companies.Get(ctx, job.CompanyID)
	if err != nil {
		return nil, err
	}

	q := scoring.Score(student, job)
	if !q.Invitable() {
		return nil, errors.NewIneligibleError("Applicant is not qualified for an interview.").
			WithMetadata("score", q.Score).
			WithMetadata("tier", string(q.Tier))
	}

	n := &models.Notification{
		ID:          e.newID(),
		StudentID:   student.ID,
		Type:        models.NotificationInterviewInvitation,
		Message:     InterviewMessage(job.Title, company.Name, iv),
		CompanyID:   company.ID,
		CompanyName: company.Name,
		JobID:       job.ID,
		JobTitle:    job.Title,
		CreatedAt:   e.now(),
	}
	if err := e.store.Notifications.Create(ctx, n); err != nil {
		return nil, err
	}

	metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()
	e.logger.Info("interview invitation sent", map[string]interface{}{
		"registrationId": reg.ID,
		"studentId":      student.ID,
		"jobId":          job.ID,
		"score":          q.Score,
	})
	return n, nil
}

// CheckJobMatches emits one job_match notification for every open job of an
// approved company that newly matches the student's live profile. A job
// matches on at least one shared skill and marks at or above the job's.
func (e *Emitter) CheckJobMatches(ctx context.Context, studentID string) ([]models.Notification, error) {
	student, err := e.store.Students.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}

	jobs, err := e.store.Jobs.ListOpen(ctx, e.now())
	if err != nil {
		return nil, err
	}
	jobs = e.narrow(ctx, student, jobs)

	skills := models.NewSkillSet(student.Skills)
	var created []models.Notification
	for i := range jobs {
		job := &jobs[i]
		if skills.CountShared(job.Skills) == 0 || student.Marks < job.Marks {
			continue
		}
		if e.alreadyNotified(ctx, studentID, job.ID) {
			continue
		}

		n := &models.Notification{
			ID:        e.newID(),
			StudentID: studentID,
			Type:      models.NotificationJobMatch,
			Message:   job.Title + " matches your skills",
			CompanyID: job.CompanyID,
			JobID:     job.ID,
			JobTitle:  job.Title,
			CreatedAt: e.now(),
		}
		ok, err := e.store.Notifications.CreateOnce(ctx, n)
		if err != nil {
			return created, err
		}
		e.remember(ctx, studentID, job.ID)
		if ok {
			metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()
			created = append(created, *n)
		}
	}

	if len(created) > 0 {
		e.logger.Info("job matches notified", map[string]interface{}{
			"studentId": studentID,
			"count":     len(created),
		})
	}
	return created, nil
}

// narrow keeps only the jobs the index returns. Index failures fall back to
// the full list.
func (e *Emitter) narrow(ctx context.Context, student *models.Student, jobs []models.Job) []models.Job {
	if e.index == nil || len(jobs) == 0 {
		return jobs
	}
	ids, err := e.index.SearchCandidates(ctx, student.Skills, student.Marks)
	if err != nil {
		e.logger.Warn("job index unavailable, scanning all open jobs", map[string]interface{}{
			"studentId": student.ID,
			"error":     err.Error(),
		})
		return jobs
	}

	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	out := jobs[:0]
	for _, j := range jobs {
		if _, ok := keep[j.ID]; ok {
			out = append(out, j)
		}
	}
	return out
}

func (e *Emitter) alreadyNotified(ctx context.Context, studentID, jobID string) bool {
	if e.redis == nil {
		return false
	}
	seen, err := e.redis.SIsMember(ctx, MatchSetKey(studentID), jobID).Result()
	if err != nil {
		e.logger.Debug("match set lookup failed", map[string]interface{}{"studentId": studentID, "error": err.Error()})
		return false
	}
	return seen
}

func (e *Emitter) remember(ctx context.Context, studentID, jobID string) {
	if e.redis == nil {
		return
	}
	key := MatchSetKey(studentID)
	pipe := e.redis.TxPipeline()
	pipe.SAdd(ctx, key, jobID)
	pipe.Expire(ctx, key, matchSetTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		e.logger.Debug("match set update failed", map[string]interface{}{"studentId": studentID, "error": err.Error()})
	}
}

func (e *Emitter) MarkRead(ctx context.Context, notificationID string) error {
	return e.store.Notifications.MarkRead(ctx, notificationID)
}

// ListNotifications returns a student's notifications, newest first.
func (e *Emitter) ListNotifications(ctx context.Context, studentID string) ([]models.Notification, error) {
	return e.store.Notifications.ListByStudent(ctx, studentID)
}
