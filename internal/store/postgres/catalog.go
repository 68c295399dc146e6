package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/models"
)

// ---- faculties ----

type facultyRepo struct {
	db *sql.DB
}

func (r *facultyRepo) Create(ctx context.Context, f *models.Faculty) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO faculties (id, institution_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		f.ID, f.InstitutionID, f.Name, f.CreatedAt)
	if err != nil {
		return errors.NewStoreWriteError("faculties.create", err)
	}
	return nil
}

func (r *facultyRepo) Get(ctx context.Context, id string) (*models.Faculty, error) {
	var f models.Faculty
	err := r.db.QueryRowContext(ctx, `
		SELECT id, institution_id, name, created_at FROM faculties WHERE id = $1`, id,
	).Scan(&f.ID, &f.InstitutionID, &f.Name, &f.CreatedAt)
	if err != nil {
		return nil, readErr(err, "faculty", id)
	}
	return &f, nil
}

func (r *facultyRepo) ListByInstitution(ctx context.Context, institutionID string) ([]models.Faculty, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, institution_id, name, created_at FROM faculties
		WHERE institution_id = $1 ORDER BY created_at, id`, institutionID)
	if err != nil {
		return nil, errors.NewStoreReadError("faculties.list", err)
	}
	defer rows.Close()

	var out []models.Faculty
	for rows.Next() {
		var f models.Faculty
		if err := rows.Scan(&f.ID, &f.InstitutionID, &f.Name, &f.CreatedAt); err != nil {
			return nil, errors.NewStoreReadError("faculties.list", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreReadError("faculties.list", err)
	}
	return out, nil
}

// ---- courses ----

type courseRepo struct {
	db *sql.DB
}

func (r *courseRepo) Create(ctx context.Context, c *models.Course) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO courses (id, institution_id, faculty_id, name, required_subjects, min_marks, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.InstitutionID, c.FacultyID, c.Name, pq.Array(c.RequiredSubjects), c.MinMarks, c.CreatedAt)
	if err != nil {
		return errors.NewStoreWriteError("courses.create", err)
	}
	return nil
}

func (r *courseRepo) Get(ctx context.Context, id string) (*models.Course, error) {
	var c models.Course
	err := r.db.QueryRowContext(ctx, `
		SELECT id, institution_id, faculty_id, name, required_subjects, min_marks, created_at
		FROM courses WHERE id = $1`, id,
	).Scan(&c.ID, &c.InstitutionID, &c.FacultyID, &c.Name, pq.Array(&c.RequiredSubjects), &c.MinMarks, &c.CreatedAt)
	if err != nil {
		return nil, readErr(err, "course", id)
	}
	return &c, nil
}

// ---- companies ----

type companyRepo struct {
	db *sql.DB
}

func (r *companyRepo) Create(ctx context.Context, c *models.Company) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO companies (id, name, email, status, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Email, string(c.Status), c.CreatedAt)
	if err != nil {
		return errors.NewStoreWriteError("companies.create", err)
	}
	return nil
}

func (r *companyRepo) Get(ctx context.Context, id string) (*models.Company, error) {
	var (
		c      models.Company
		status string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, status, created_at FROM companies WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Email, &status, &c.CreatedAt)
	if err != nil {
		return nil, readErr(err, "company", id)
	}
	c.Status = models.ApprovalStatus(status)
	return &c, nil
}

func (r *companyRepo) SetStatus(ctx context.Context, id string, status models.ApprovalStatus) error {
	return execOne(ctx, r.db, "companies.set_status", "company", id,
		`UPDATE companies SET status = $2 WHERE id = $1`, id, string(status))
}

// ---- jobs ----

type jobRepo struct {
	db *sql.DB
}

const jobColumns = `j.id, j.company_id, j.title, j.description, j.location, j.type, j.deadline,
	j.marks, j.min_experience_years, j.skills, j.created_at`

func scanJob(s scanner) (models.Job, error) {
	var (
		j        models.Job
		deadline sql.NullTime
	)
	err := s.Scan(&j.ID, &j.CompanyID, &j.Title, &j.Description, &j.Location, &j.Type, &deadline,
		&j.Marks, &j.MinExperienceYears, pq.Array(&j.Skills), &j.CreatedAt)
	j.Deadline = timePtr(deadline)
	return j, err
}

func (r *jobRepo) Create(ctx context.Context, j *models.Job) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (id, company_id, title, description, location, type, deadline,
			marks, min_experience_years, skills, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		j.ID, j.CompanyID, j.Title, j.Description, j.Location, j.Type, nullTime(j.Deadline),
		j.Marks, j.MinExperienceYears, pq.Array(j.Skills), j.CreatedAt)
	if err != nil {
		return errors.NewStoreWriteError("jobs.create", err)
	}
	return nil
}

func (r *jobRepo) Get(ctx context.Context, id string) (*models.Job, error) {
	j, err := scanJob(r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs j WHERE j.id = $1`, id))
	if err != nil {
		return nil, readErr(err, "job", id)
	}
	return &j, nil
}

func (r *jobRepo) ListByCompany(ctx context.Context, companyID string) ([]models.Job, error) {
	return r.list(ctx, "jobs.list_by_company",
		`SELECT `+jobColumns+` FROM jobs j WHERE j.company_id = $1 ORDER BY j.created_at, j.id`, companyID)
}

func (r *jobRepo) ListOpen(ctx context.Context, now time.Time) ([]models.Job, error) {
	return r.list(ctx, "jobs.list_open", `
		SELECT `+jobColumns+` FROM jobs j
		JOIN companies c ON c.id = j.company_id
		WHERE c.status = 'approved' AND (j.deadline IS NULL OR j.deadline >= $1)
		ORDER BY j.created_at, j.id`, now)
}

func (r *jobRepo) list(ctx context.Context, op, query string, args ...interface{}) ([]models.Job, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStoreReadError(op, err)
	}
	defer rows.Close()

	var out []models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, errors.NewStoreReadError(op, err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreReadError(op, err)
	}
	return out, nil
}
