package postgres

import (
	"context"
	"database/sql"
	"time"

	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/models"
)

type institutionRepo struct {
	db *sql.DB
}

func (r *institutionRepo) Create(ctx context.Context, inst *models.Institution) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO institutions (id, name, email, status, published, published_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		inst.ID, inst.Name, inst.Email, string(inst.Status), inst.Published, nullTime(inst.PublishedAt), inst.CreatedAt,
	)
	if err != nil {
		return errors.NewStoreWriteError("institutions.create", err)
	}
	return nil
}

func (r *institutionRepo) Get(ctx context.Context, id string) (*models.Institution, error) {
	var (
		inst        models.Institution
		status      string
		publishedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, status, published, published_at, created_at
		FROM institutions WHERE id = $1`, id,
	).Scan(&inst.ID, &inst.Name, &inst.Email, &status, &inst.Published, &publishedAt, &inst.CreatedAt)
	if err != nil {
		return nil, readErr(err, "institution", id)
	}
	inst.Status = models.ApprovalStatus(status)
	inst.PublishedAt = timePtr(publishedAt)
	return &inst, nil
}

func (r *institutionRepo) SetStatus(ctx context.Context, id string, status models.ApprovalStatus) error {
	return execOne(ctx, r.db, "institutions.set_status", "institution", id,
		`UPDATE institutions SET status = $2 WHERE id = $1`, id, string(status))
}

func (r *institutionRepo) MarkPublished(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE institutions SET published = TRUE, published_at = $2
		WHERE id = $1 AND published = FALSE`, id, at)
	if err != nil {
		return false, errors.NewStoreWriteError("institutions.publish", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.NewStoreWriteError("institutions.publish", err)
	}
	if n == 1 {
		return true, nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM institutions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, errors.NewStoreReadError("institutions.publish", err)
	}
	if !exists {
		return false, errors.NewNotFoundError("institution", id)
	}
	return false, nil
}
