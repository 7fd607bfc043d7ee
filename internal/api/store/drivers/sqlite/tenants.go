package sqlite

import (
	"context"

	"github.com/atriumhq/atrium/internal/api/domain"
)

type tenantsRepo struct {
	q dbtx
}

const tenantColumns = `id, name, created_by, created_at, updated_at`

func (r *tenantsRepo) CreateTenant(ctx context.Context, t domain.Tenant) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO tenants (id, name, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *tenantsRepo) GetTenantByID(ctx context.Context, id string) (domain.Tenant, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = ?`, id)
	return scanTenant(row)
}

func (r *tenantsRepo) ListTenantsForUser(ctx context.Context, userID string) ([]domain.Tenant, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT t.id, t.name, t.created_by, t.created_at, t.updated_at
		FROM tenants t
		JOIN tenant_members m ON m.tenant_id = t.id
		WHERE m.user_id = ?
		ORDER BY t.created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (r *tenantsRepo) UpdateTenantName(ctx context.Context, id, name string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE tenants SET name = ?, updated_at = ? WHERE id = ?`,
		name, now(), id)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRow(res)
}

func (r *tenantsRepo) DeleteTenant(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM tenants WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *tenantsRepo) AddMember(ctx context.Context, m domain.Membership) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO tenant_members (tenant_id, user_id, role, created_at)
		VALUES (?, ?, ?, ?)`,
		m.TenantID, m.UserID, string(m.Role), m.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *tenantsRepo) GetMembership(ctx context.Context, tenantID, userID string) (domain.Membership, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT tenant_id, user_id, role, created_at
		FROM tenant_members WHERE tenant_id = ? AND user_id = ?`,
		tenantID, userID)
	return scanMembership(row)
}

func (r *tenantsRepo) ListMembers(ctx context.Context, tenantID string) ([]domain.Membership, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT tenant_id, user_id, role, created_at
		FROM tenant_members WHERE tenant_id = ?
		ORDER BY created_at ASC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *tenantsRepo) UpdateMemberRole(ctx context.Context, tenantID, userID string, role domain.TenantRole) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE tenant_members SET role = ? WHERE tenant_id = ? AND user_id = ?`,
		string(role), tenantID, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *tenantsRepo) RemoveMember(ctx context.Context, tenantID, userID string) error {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM tenant_members WHERE tenant_id = ? AND user_id = ?`,
		tenantID, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *tenantsRepo) CountMembersWithRole(ctx context.Context, tenantID string, role domain.TenantRole) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tenant_members WHERE tenant_id = ? AND role = ?`,
		tenantID, string(role)).Scan(&n)
	return n, err
}

func scanTenant(row rowScanner) (domain.Tenant, error) {
	var t domain.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Tenant{}, mapNotFound(err)
	}
	return t, nil
}

func scanMembership(row rowScanner) (domain.Membership, error) {
	var (
		m    domain.Membership
		role string
	)
	err := row.Scan(&m.TenantID, &m.UserID, &role, &m.CreatedAt)
	if err != nil {
		return domain.Membership{}, mapNotFound(err)
	}
	m.Role = domain.TenantRole(role)
	return m, nil
}
