package sqlite

import (
	"context"
	"database/sql"

	"github.com/atriumhq/atrium/internal/api/domain"
	"github.com/atriumhq/atrium/internal/api/store"
)

type usersRepo struct {
	q dbtx
}

// userColumns is the default projection. It deliberately omits password_hash
// and refresh_token_hash; only the WithSecrets lookup reads those.
const userColumns = `id, email, roles, is_active, billing_customer_id, created_at, updated_at`

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, roles, is_active, billing_customer_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, joinRoles(u.Roles), u.IsActive,
		mapOptionalString(u.BillingCustomerID), u.CreatedAt, u.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmailWithSecrets(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, email, password_hash, roles, is_active, refresh_token_hash, billing_customer_id, created_at, updated_at
		FROM users WHERE email = ?`, email)

	var (
		u           domain.User
		roles       string
		refreshHash sql.NullString
		billingID   sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &roles, &u.IsActive,
		&refreshHash, &billingID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Roles = splitRoles(roles)
	u.RefreshTokenHash = mapNullStringPtr(refreshHash)
	u.BillingCustomerID = mapNullStringPtr(billingID)
	return u, nil
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) SetRefreshTokenHash(ctx context.Context, userID, hash string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET refresh_token_hash = ?, updated_at = ? WHERE id = ?`,
		hash, now(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) RotateRefreshTokenHash(ctx context.Context, userID, expectedCurrent, next string) error {
	// Compare-and-swap: losing a concurrent rotation leaves zero rows
	// affected, reported as ErrNotFound.
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET refresh_token_hash = ?, updated_at = ?
		WHERE id = ? AND refresh_token_hash = ?`,
		next, now(), userID, expectedCurrent)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) ClearRefreshTokenHash(ctx context.Context, userID string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET refresh_token_hash = NULL, updated_at = ? WHERE id = ?`,
		now(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) SetBillingCustomerID(ctx context.Context, userID, customerID string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET billing_customer_id = ?, updated_at = ? WHERE id = ?`,
		customerID, now(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) ClearBillingCustomerID(ctx context.Context, userID string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET billing_customer_id = NULL, updated_at = ? WHERE id = ?`,
		now(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u         domain.User
		roles     string
		billingID sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &roles, &u.IsActive, &billingID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Roles = splitRoles(roles)
	u.BillingCustomerID = mapNullStringPtr(billingID)
	return u, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
