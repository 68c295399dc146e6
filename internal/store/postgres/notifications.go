package postgres

import (
	"context"
	"database/sql"

	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/models"
)

type notificationRepo struct {
	db *sql.DB
}

const notificationColumns = `id, student_id, type, message, company_id, company_name, job_id, job_title, read, created_at`

func notificationArgs(n *models.Notification) []interface{} {
	return []interface{}{
		n.ID, n.StudentID, string(n.Type), n.Message, n.CompanyID, n.CompanyName,
		n.JobID, n.JobTitle, n.Read, n.CreatedAt,
	}
}

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`, notificationArgs(n)...)
	if err != nil {
		return errors.NewStoreWriteError("notifications.create", err)
	}
	return nil
}

func (r *notificationRepo) CreateOnce(ctx context.Context, n *models.Notification) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (student_id, type, job_id) WHERE type = 'job_match' DO NOTHING`, notificationArgs(n)...)
	if err != nil {
		return false, errors.NewStoreWriteError("notifications.create_once", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, errors.NewStoreWriteError("notifications.create_once", err)
	}
	return rows == 1, nil
}

func (r *notificationRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE student_id = $1 ORDER BY created_at DESC, seq DESC`, studentID)
	if err != nil {
		return nil, errors.NewStoreReadError("notifications.list", err)
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var (
			n     models.Notification
			ntype string
		)
		if err := rows.Scan(&n.ID, &n.StudentID, &ntype, &n.Message, &n.CompanyID, &n.CompanyName,
			&n.JobID, &n.JobTitle, &n.Read, &n.CreatedAt); err != nil {
			return nil, errors.NewStoreReadError("notifications.list", err)
		}
		n.Type = models.NotificationType(ntype)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreReadError("notifications.list", err)
	}
	return out, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, id string) error {
	return execOne(ctx, r.db, "notifications.mark_read", "notification", id,
		`UPDATE notifications SET read = TRUE WHERE id = $1`, id)
}
