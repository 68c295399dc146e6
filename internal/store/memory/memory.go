// Package memory is an in-process store with the same semantics as the
// Postgres store. It backs tests and database.driver=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/models"
	"admissions-engine/internal/store"
)

type db struct {
	mu sync.RWMutex

	seq           int64
	institutions  map[string]models.Institution
	faculties     map[string]models.Faculty
	courses       map[string]models.Course
	companies     map[string]models.Company
	jobs          map[string]models.Job
	students      map[string]models.Student
	registrations map[string]models.Registration
	regSeq        map[string]int64
	notifications map[string]models.Notification
	noteSeq       map[string]int64

	// failWrites, when set, makes registration writes fail for matching IDs.
	failWrites func(id string) error
}

// Store is a memory-backed store.Store with test hooks.
type Store struct {
	*store.Store
	db *db
}

// New returns an empty store.
func New() *Store {
	d := &db{
		institutions:  make(map[string]models.Institution),
		faculties:     make(map[string]models.Faculty),
		courses:       make(map[string]models.Course),
		companies:     make(map[string]models.Company),
		jobs:          make(map[string]models.Job),
		students:      make(map[string]models.Student),
		registrations: make(map[string]models.Registration),
		regSeq:        make(map[string]int64),
		notifications: make(map[string]models.Notification),
		noteSeq:       make(map[string]int64),
	}
	return &Store{
		db: d,
		Store: &store.Store{
			Institutions:  institutions{d},
			Faculties:     faculties{d},
			Courses:       courses{d},
			Companies:     companies{d},
			Jobs:          jobs{d},
			Students:      students{d},
			Registrations: registrations{d},
			Notifications: notifications{d},
		},
	}
}

// FailRegistrationWrites installs a hook consulted before every registration
// write. Returning an error simulates a store outage for that record.
func (s *Store) FailRegistrationWrites(fn func(id string) error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.failWrites = fn
}

func (d *db) next() int64 {
	d.seq++
	return d.seq
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// ---- institutions ----

type institutions struct{ d *db }

func (r institutions) Create(_ context.Context, inst *models.Institution) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.institutions[inst.ID]; ok {
		return errors.NewStoreWriteError("institutions.create", errDuplicateKey(inst.ID))
	}
	r.d.institutions[inst.ID] = *inst
	return nil
}

func (r institutions) Get(_ context.Context, id string) (*models.Institution, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	inst, ok := r.d.institutions[id]
	if !ok {
		return nil, errors.NewNotFoundError("institution", id)
	}
	return &inst, nil
}

func (r institutions) SetStatus(_ context.Context, id string, status models.ApprovalStatus) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	inst, ok := r.d.institutions[id]
	if !ok {
		return errors.NewNotFoundError("institution", id)
	}
	inst.Status = status
	r.d.institutions[id] = inst
	return nil
}

func (r institutions) MarkPublished(_ context.Context, id string, at time.Time) (bool, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	inst, ok := r.d.institutions[id]
	if !ok {
		return false, errors.NewNotFoundError("institution", id)
	}
	if inst.Published {
		return false, nil
	}
	inst.Published = true
	inst.PublishedAt = &at
	r.d.institutions[id] = inst
	return true, nil
}

// ---- faculties ----

type faculties struct{ d *db }

func (r faculties) Create(_ context.Context, f *models.Faculty) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	r.d.faculties[f.ID] = *f
	return nil
}

func (r faculties) Get(_ context.Context, id string) (*models.Faculty, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	f, ok := r.d.faculties[id]
	if !ok {
		return nil, errors.NewNotFoundError("faculty", id)
	}
	return &f, nil
}

func (r faculties) ListByInstitution(_ context.Context, institutionID string) ([]models.Faculty, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	var out []models.Faculty
	for _, f := range r.d.faculties {
		if f.InstitutionID == institutionID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ---- courses ----

type courses struct{ d *db }

func (r courses) Create(_ context.Context, c *models.Course) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	cp := *c
	cp.RequiredSubjects = cloneStrings(c.RequiredSubjects)
	r.d.courses[c.ID] = cp
	return nil
}

func (r courses) Get(_ context.Context, id string) (*models.Course, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	c, ok := r.d.courses[id]
	if !ok {
		return nil, errors.NewNotFoundError("course", id)
	}
	c.RequiredSubjects = cloneStrings(c.RequiredSubjects)
	return &c, nil
}

// ---- companies ----

type companies struct{ d *db }

func (r companies) Create(_ context.Context, c *models.Company) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	r.d.companies[c.ID] = *c
	return nil
}

func (r companies) Get(_ context.Context, id string) (*models.Company, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	c, ok := r.d.companies[id]
	if !ok {
		return nil, errors.NewNotFoundError("company", id)
	}
	return &c, nil
}

func (r companies) SetStatus(_ context.Context, id string, status models.ApprovalStatus) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	c, ok := r.d.companies[id]
	if !ok {
		return errors.NewNotFoundError("company", id)
	}
	c.Status = status
	r.d.companies[id] = c
	return nil
}

// ---- jobs ----

type jobs struct{ d *db }

func cloneJob(j models.Job) models.Job {
	j.Skills = cloneStrings(j.Skills)
	if j.Deadline != nil {
		d := *j.Deadline
		j.Deadline = &d
	}
	return j
}

func (r jobs) Create(_ context.Context, j *models.Job) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	r.d.jobs[j.ID] = cloneJob(*j)
	return nil
}

func (r jobs) Get(_ context.Context, id string) (*models.Job, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	j, ok := r.d.jobs[id]
	if !ok {
		return nil, errors.NewNotFoundError("job", id)
	}
	j = cloneJob(j)
	return &j, nil
}

func (r jobs) ListByCompany(_ context.Context, companyID string) ([]models.Job, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	var out []models.Job
	for _, j := range r.d.jobs {
		if j.CompanyID == companyID {
			out = append(out, cloneJob(j))
		}
	}
	sortJobs(out)
	return out, nil
}

func (r jobs) ListOpen(_ context.Context, now time.Time) ([]models.Job, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	var out []models.Job
	for _, j := range r.d.jobs {
		c, ok := r.d.companies[j.CompanyID]
		if !ok || c.Status != models.ApprovalApproved || !j.IsOpen(now) {
			continue
		}
		out = append(out, cloneJob(j))
	}
	sortJobs(out)
	return out, nil
}

func sortJobs(js []models.Job) {
	sort.Slice(js, func(i, k int) bool {
		if js[i].CreatedAt.Equal(js[k].CreatedAt) {
			return js[i].ID < js[k].ID
		}
		return js[i].CreatedAt.Before(js[k].CreatedAt)
	})
}

// ---- students ----

type students struct{ d *db }

func cloneStudent(s models.Student) models.Student {
	s.Skills = cloneStrings(s.Skills)
	s.Documents = cloneStrings(s.Documents)
	if s.EnteredGrades != nil {
		grades := make(map[string]models.GradeSnapshot, len(s.EnteredGrades))
		for k, v := range s.EnteredGrades {
			v.Skills = cloneStrings(v.Skills)
			grades[k] = v
		}
		s.EnteredGrades = grades
	}
	return s
}

func (r students) Create(_ context.Context, s *models.Student) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	r.d.students[s.ID] = cloneStudent(*s)
	return nil
}

func (r students) Get(_ context.Context, id string) (*models.Student, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	s, ok := r.d.students[id]
	if !ok {
		return nil, errors.NewNotFoundError("student", id)
	}
	s = cloneStudent(s)
	return &s, nil
}

func (r students) ListIDs(_ context.Context) ([]string, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	ids := make([]string, 0, len(r.d.students))
	for id := range r.d.students {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r students) PutGradeSnapshot(_ context.Context, studentID, institutionID string, snap models.GradeSnapshot) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	s, ok := r.d.students[studentID]
	if !ok {
		return errors.NewNotFoundError("student", studentID)
	}
	if _, exists := s.EnteredGrades[institutionID]; exists {
		return errors.NewGradesFrozenError(institutionID)
	}
	s = cloneStudent(s)
	if s.EnteredGrades == nil {
		s.EnteredGrades = make(map[string]models.GradeSnapshot)
	}
	snap.Skills = cloneStrings(snap.Skills)
	s.EnteredGrades[institutionID] = snap
	s.GradesSubmitted = true
	r.d.students[studentID] = s
	return nil
}

// ---- registrations ----

type registrations struct{ d *db }

func (r registrations) Create(_ context.Context, reg *models.Registration) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if r.d.failWrites != nil {
		if err := r.d.failWrites(reg.ID); err != nil {
			return errors.NewStoreWriteError("registrations.create", err)
		}
	}
	for _, existing := range r.d.registrations {
		if existing.StudentID != reg.StudentID || existing.Type != reg.Type {
			continue
		}
		if reg.Type == models.RegistrationCourse && existing.CourseID == reg.CourseID {
			return errors.NewDuplicateApplicationError("course " + reg.CourseID)
		}
		if reg.Type == models.RegistrationJob && existing.JobID == reg.JobID {
			return errors.NewDuplicateApplicationError("job " + reg.JobID)
		}
	}
	r.d.registrations[reg.ID] = *reg
	r.d.regSeq[reg.ID] = r.d.next()
	return nil
}

func (r registrations) Get(_ context.Context, id string) (*models.Registration, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	reg, ok := r.d.registrations[id]
	if !ok {
		return nil, errors.NewNotFoundError("registration", id)
	}
	return &reg, nil
}

func matches(reg models.Registration, f store.RegistrationFilter) bool {
	switch {
	case f.StudentID != "" && reg.StudentID != f.StudentID,
		f.Type != "" && reg.Type != f.Type,
		f.CourseID != "" && reg.CourseID != f.CourseID,
		f.InstitutionID != "" && reg.InstitutionID != f.InstitutionID,
		f.JobID != "" && reg.JobID != f.JobID,
		f.CompanyID != "" && reg.CompanyID != f.CompanyID,
		f.PromotedBy != "" && reg.PromotedBy != f.PromotedBy:
		return false
	}
	if len(f.Statuses) > 0 && !store.HasStatus(reg.Status, f.Statuses) {
		return false
	}
	return true
}

func (r registrations) List(_ context.Context, f store.RegistrationFilter) ([]models.Registration, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	var out []models.Registration
	for _, reg := range r.d.registrations {
		if matches(reg, f) {
			out = append(out, reg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return r.d.regSeq[out[i].ID] < r.d.regSeq[out[j].ID]
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r registrations) Transition(_ context.Context, t store.Transition) (bool, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if r.d.failWrites != nil {
		if err := r.d.failWrites(t.ID); err != nil {
			return false, errors.NewStoreWriteError("registrations.transition", err)
		}
	}
	reg, ok := r.d.registrations[t.ID]
	if !ok || !store.HasStatus(reg.Status, t.From) {
		return false, nil
	}
	reg.Status = t.To
	reg.UpdatedAt = t.At
	if t.PromotedBy != "" {
		reg.PromotedBy = t.PromotedBy
	}
	reg.RemovedBy = t.RemovedBy
	r.d.registrations[t.ID] = reg
	return true, nil
}

// ---- notifications ----

type notifications struct{ d *db }

func (r notifications) Create(_ context.Context, n *models.Notification) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	r.d.notifications[n.ID] = *n
	r.d.noteSeq[n.ID] = r.d.next()
	return nil
}

func (r notifications) CreateOnce(_ context.Context, n *models.Notification) (bool, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, existing := range r.d.notifications {
		if existing.StudentID == n.StudentID && existing.Type == n.Type && existing.JobID == n.JobID {
			return false, nil
		}
	}
	r.d.notifications[n.ID] = *n
	r.d.noteSeq[n.ID] = r.d.next()
	return true, nil
}

func (r notifications) ListByStudent(_ context.Context, studentID string) ([]models.Notification, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	var out []models.Notification
	for _, n := range r.d.notifications {
		if n.StudentID == studentID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return r.d.noteSeq[out[i].ID] > r.d.noteSeq[out[j].ID]
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r notifications) MarkRead(_ context.Context, id string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	n, ok := r.d.notifications[id]
	if !ok {
		return errors.NewNotFoundError("notification", id)
	}
	n.Read = true
	r.d.notifications[id] = n
	return nil
}

type duplicateKeyError string

func (e duplicateKeyError) Error() string { return "duplicate key " + string(e) }

func errDuplicateKey(id string) error { return duplicateKeyError(id) }
