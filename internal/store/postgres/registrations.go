package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"

	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/models"
	"admissions-engine/internal/store"
)

type registrationRepo struct {
	db *sql.DB
}

const registrationColumns = `id, student_id, type, status, course_id, institution_id, job_id, company_id,
	promoted_by, removed_by, student_name, course_name, institution_name, job_title, company_name, created_at, updated_at`

func scanRegistration(s scanner) (models.Registration, error) {
	var (
		reg     models.Registration
		regType string
		status  string
	)
	err := s.Scan(&reg.ID, &reg.StudentID, &regType, &status, &reg.CourseID, &reg.InstitutionID,
		&reg.JobID, &reg.CompanyID, &reg.PromotedBy, &reg.RemovedBy, &reg.StudentName, &reg.CourseName,
		&reg.InstitutionName, &reg.JobTitle, &reg.CompanyName, &reg.CreatedAt, &reg.UpdatedAt)
	reg.Type = models.RegistrationType(regType)
	reg.Status = models.RegistrationStatus(status)
	return reg, err
}

func (r *registrationRepo) Create(ctx context.Context, reg *models.Registration) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO registrations (`+registrationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		reg.ID, reg.StudentID, string(reg.Type), string(reg.Status), reg.CourseID, reg.InstitutionID,
		reg.JobID, reg.CompanyID, reg.PromotedBy, reg.RemovedBy, reg.StudentName, reg.CourseName,
		reg.InstitutionName, reg.JobTitle, reg.CompanyName, reg.CreatedAt, reg.UpdatedAt)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			target := "course " + reg.CourseID
			if reg.Type == models.RegistrationJob {
				target = "job " + reg.JobID
			}
			return errors.NewDuplicateApplicationError(target)
		}
		return errors.NewStoreWriteError("registrations.create", err)
	}
	return nil
}

func (r *registrationRepo) Get(ctx context.Context, id string) (*models.Registration, error) {
	reg, err := scanRegistration(r.db.QueryRowContext(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id))
	if err != nil {
		return nil, readErr(err, "registration", id)
	}
	return &reg, nil
}

// buildListQuery turns a filter into a WHERE clause with positional args.
func buildListQuery(f store.RegistrationFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	eq := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conds = append(conds, column+" = "+placeholder(len(args)))
	}
	eq("student_id", f.StudentID)
	eq("type", string(f.Type))
	eq("course_id", f.CourseID)
	eq("institution_id", f.InstitutionID)
	eq("job_id", f.JobID)
	eq("company_id", f.CompanyID)
	eq("promoted_by", f.PromotedBy)

	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		conds = append(conds, "status = ANY("+placeholder(len(args))+")")
	}

	query := `SELECT ` + registrationColumns + ` FROM registrations`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, seq"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += " LIMIT " + placeholder(len(args))
	}
	return query, args
}

func (r *registrationRepo) List(ctx context.Context, f store.RegistrationFilter) ([]models.Registration, error) {
	query, args := buildListQuery(f)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStoreReadError("registrations.list", err)
	}
	defer rows.Close()

	var out []models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, errors.NewStoreReadError("registrations.list", err)
		}
		out = append(out, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreReadError("registrations.list", err)
	}
	return out, nil
}

func (r *registrationRepo) Transition(ctx context.Context, t store.Transition) (bool, error) {
	from := make([]string, len(t.From))
	for i, s := range t.From {
		from[i] = string(s)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE registrations
		SET status = $1, updated_at = $2, promoted_by = COALESCE(NULLIF($3, ''), promoted_by), removed_by = $4
		WHERE id = $5 AND status = ANY($6)`,
		string(t.To), t.At, t.PromotedBy, t.RemovedBy, t.ID, pq.Array(from))
	if err != nil {
		return false, errors.NewStoreWriteError("registrations.transition", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.NewStoreWriteError("registrations.transition", err)
	}
	return n == 1, nil
}
