package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/models"
)

type studentRepo struct {
	db *sql.DB
}

func (r *studentRepo) Create(ctx context.Context, s *models.Student) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO students (id, name, email, marks, skills, experience_years, documents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.Name, s.Email, s.Marks, pq.Array(s.Skills), s.ExperienceYears, pq.Array(s.Documents), s.CreatedAt)
	if err != nil {
		return errors.NewStoreWriteError("students.create", err)
	}
	return nil
}

func (r *studentRepo) Get(ctx context.Context, id string) (*models.Student, error) {
	var s models.Student
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, marks, skills, experience_years, documents, created_at
		FROM students WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.Email, &s.Marks, pq.Array(&s.Skills), &s.ExperienceYears, pq.Array(&s.Documents), &s.CreatedAt)
	if err != nil {
		return nil, readErr(err, "student", id)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT institution_id, marks, skills, submitted_at
		FROM student_grade_snapshots WHERE student_id = $1`, id)
	if err != nil {
		return nil, errors.NewStoreReadError("students.snapshots", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			instID string
			snap   models.GradeSnapshot
		)
		if err := rows.Scan(&instID, &snap.Marks, pq.Array(&snap.Skills), &snap.SubmittedAt); err != nil {
			return nil, errors.NewStoreReadError("students.snapshots", err)
		}
		if s.EnteredGrades == nil {
			s.EnteredGrades = make(map[string]models.GradeSnapshot)
		}
		s.EnteredGrades[instID] = snap
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreReadError("students.snapshots", err)
	}
	s.GradesSubmitted = len(s.EnteredGrades) > 0
	return &s, nil
}

func (r *studentRepo) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM students ORDER BY id`)
	if err != nil {
		return nil, errors.NewStoreReadError("students.list_ids", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.NewStoreReadError("students.list_ids", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreReadError("students.list_ids", err)
	}
	return ids, nil
}

func (r *studentRepo) PutGradeSnapshot(ctx context.Context, studentID, institutionID string, snap models.GradeSnapshot) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO student_grade_snapshots (student_id, institution_id, marks, skills, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (student_id, institution_id) DO NOTHING`,
		studentID, institutionID, snap.Marks, pq.Array(snap.Skills), snap.SubmittedAt)
	if err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return errors.NewNotFoundError("student", studentID)
		}
		return errors.NewStoreWriteError("students.put_grades", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewStoreWriteError("students.put_grades", err)
	}
	if n == 0 {
		return errors.NewGradesFrozenError(institutionID)
	}
	return nil
}
