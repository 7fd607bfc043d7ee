package sqlite

import (
	"context"
	"time"

	"github.com/atriumhq/atrium/internal/api/domain"
)

type joinRequestsRepo struct {
	q dbtx
}

const joinRequestColumns = `id, tenant_id, user_id, status, message, created_at, updated_at`

func (r *joinRequestsRepo) CreateJoinRequest(ctx context.Context, jr domain.JoinRequest) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO join_requests (id, tenant_id, user_id, status, message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		jr.ID, jr.TenantID, jr.UserID, jr.Status, jr.Message, jr.CreatedAt, jr.UpdatedAt,
	)
	// The partial unique index rejects a second pending request for the same
	// (tenant, user) pair.
	return mapConstraint(err)
}

func (r *joinRequestsRepo) GetJoinRequestByID(ctx context.Context, id string) (domain.JoinRequest, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+joinRequestColumns+` FROM join_requests WHERE id = ?`, id)
	return scanJoinRequest(row)
}

func (r *joinRequestsRepo) ListJoinRequestsByTenant(ctx context.Context, tenantID, status string) ([]domain.JoinRequest, error) {
	query := `SELECT ` + joinRequestColumns + ` FROM join_requests WHERE tenant_id = ?`
	args := []any{tenantID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []domain.JoinRequest
	for rows.Next() {
		jr, err := scanJoinRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, jr)
	}
	return requests, rows.Err()
}

func (r *joinRequestsRepo) UpdateJoinRequestStatus(ctx context.Context, id, status string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE join_requests SET status = ?, updated_at = ? WHERE id = ?`,
		status, now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *joinRequestsRepo) DeleteJoinRequest(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM join_requests WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *joinRequestsRepo) DeleteResolvedJoinRequestsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM join_requests
		WHERE status IN (?, ?) AND updated_at < ?`,
		domain.JoinRequestApproved, domain.JoinRequestRejected, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanJoinRequest(row rowScanner) (domain.JoinRequest, error) {
	var jr domain.JoinRequest
	err := row.Scan(&jr.ID, &jr.TenantID, &jr.UserID, &jr.Status, &jr.Message, &jr.CreatedAt, &jr.UpdatedAt)
	if err != nil {
		return domain.JoinRequest{}, mapNotFound(err)
	}
	return jr, nil
}
