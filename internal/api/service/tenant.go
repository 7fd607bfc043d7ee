package service

import (
	"context"
	"errors"
	"time"

	"github.com/atriumhq/atrium/internal/api/domain"
	"github.com/atriumhq/atrium/internal/api/store"
	"github.com/atriumhq/atrium/pkg/idx"
)

var (
	ErrTenantNameTaken     = errors.New("tenant_name_taken")
	ErrAlreadyMember       = errors.New("already_member")
	ErrLastOwner           = errors.New("last_owner")
	ErrJoinRequestExists   = errors.New("join_request_exists")
	ErrJoinRequestResolved = errors.New("join_request_resolved")
	ErrForbidden           = errors.New("forbidden")
)

// TenantService owns tenant lifecycle, membership, and the join-request
// workflow.
type TenantService struct {
	Store store.Store
}

// CreateTenant creates a tenant with the creator as its first OWNER, in one
// transaction.
func (s *TenantService) CreateTenant(ctx context.Context, name, creatorID string) (domain.Tenant, error) {
	now := time.Now().UTC()
	t := domain.Tenant{
		ID:        idx.New().String(),
		Name:      name,
		CreatedBy: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.Tenants().CreateTenant(ctx, t); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrTenantNameTaken
			}
			return err
		}
		return tx.Tenants().AddMember(ctx, domain.Membership{
			TenantID:  t.ID,
			UserID:    creatorID,
			Role:      domain.TenantRoleOwner,
			CreatedAt: now,
		})
	})
	if err != nil {
		return domain.Tenant{}, err
	}
	return t, nil
}

func (s *TenantService) GetTenant(ctx context.Context, id string) (domain.Tenant, error) {
	return s.Store.Tenants().GetTenantByID(ctx, id)
}

func (s *TenantService) ListTenantsForUser(ctx context.Context, userID string) ([]domain.Tenant, error) {
	return s.Store.Tenants().ListTenantsForUser(ctx, userID)
}

func (s *TenantService) RenameTenant(ctx context.Context, id, name string) error {
	if err := s.Store.Tenants().UpdateTenantName(ctx, id, name); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrTenantNameTaken
		}
		return err
	}
	return nil
}

func (s *TenantService) DeleteTenant(ctx context.Context, id string) error {
	return s.Store.Tenants().DeleteTenant(ctx, id)
}

func (s *TenantService) ListMembers(ctx context.Context, tenantID string) ([]domain.Membership, error) {
	return s.Store.Tenants().ListMembers(ctx, tenantID)
}

func (s *TenantService) GetMembership(ctx context.Context, tenantID, userID string) (domain.Membership, error) {
	return s.Store.Tenants().GetMembership(ctx, tenantID, userID)
}

// UpdateMemberRole changes a member's tenant role. Demoting the only OWNER is
// refused so a tenant can never be left ownerless.
func (s *TenantService) UpdateMemberRole(ctx context.Context, tenantID, userID string, role domain.TenantRole) error {
	return s.Store.WithTx(ctx, func(tx store.Store) error {
		m, err := tx.Tenants().GetMembership(ctx, tenantID, userID)
		if err != nil {
			return err
		}
		if m.Role == domain.TenantRoleOwner && role != domain.TenantRoleOwner {
			if err := s.requireAnotherOwner(ctx, tx, tenantID); err != nil {
				return err
			}
		}
		return tx.Tenants().UpdateMemberRole(ctx, tenantID, userID, role)
	})
}

// RemoveMember removes a member, with the same last-owner protection as role
// demotion.
func (s *TenantService) RemoveMember(ctx context.Context, tenantID, userID string) error {
	return s.Store.WithTx(ctx, func(tx store.Store) error {
		m, err := tx.Tenants().GetMembership(ctx, tenantID, userID)
		if err != nil {
			return err
		}
		if m.Role == domain.TenantRoleOwner {
			if err := s.requireAnotherOwner(ctx, tx, tenantID); err != nil {
				return err
			}
		}
		return tx.Tenants().RemoveMember(ctx, tenantID, userID)
	})
}

func (s *TenantService) requireAnotherOwner(ctx context.Context, tx store.Store, tenantID string) error {
	owners, err := tx.Tenants().CountMembersWithRole(ctx, tenantID, domain.TenantRoleOwner)
	if err != nil {
		return err
	}
	if owners <= 1 {
		return ErrLastOwner
	}
	return nil
}

// RequestJoin files a pending join request. Members can't file one, and only
// a single pending request may exist per (tenant, user) pair.
func (s *TenantService) RequestJoin(ctx context.Context, tenantID, userID, message string) (domain.JoinRequest, error) {
	if _, err := s.Store.Tenants().GetTenantByID(ctx, tenantID); err != nil {
		return domain.JoinRequest{}, err
	}

	if _, err := s.Store.Tenants().GetMembership(ctx, tenantID, userID); err == nil {
		return domain.JoinRequest{}, ErrAlreadyMember
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.JoinRequest{}, err
	}

	now := time.Now().UTC()
	jr := domain.JoinRequest{
		ID:        idx.New().String(),
		TenantID:  tenantID,
		UserID:    userID,
		Status:    domain.JoinRequestPending,
		Message:   message,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Store.JoinRequests().CreateJoinRequest(ctx, jr); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.JoinRequest{}, ErrJoinRequestExists
		}
		return domain.JoinRequest{}, err
	}
	return jr, nil
}

// ListJoinRequests lists a tenant's join requests, optionally filtered by
// status.
func (s *TenantService) ListJoinRequests(ctx context.Context, tenantID, status string) ([]domain.JoinRequest, error) {
	return s.Store.JoinRequests().ListJoinRequestsByTenant(ctx, tenantID, status)
}

// CancelJoinRequest lets the requester withdraw their own pending request.
func (s *TenantService) CancelJoinRequest(ctx context.Context, tenantID, requestID, userID string) error {
	jr, err := s.Store.JoinRequests().GetJoinRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if jr.TenantID != tenantID {
		return store.ErrNotFound
	}
	if jr.UserID != userID {
		return ErrForbidden
	}
	if jr.Status != domain.JoinRequestPending {
		return ErrJoinRequestResolved
	}
	return s.Store.JoinRequests().DeleteJoinRequest(ctx, requestID)
}

// ResolveJoinRequest approves or rejects a pending request. Approval adds the
// requester as a member with the given role in the same transaction that
// flips the status, so a crash can't admit someone without recording it.
func (s *TenantService) ResolveJoinRequest(ctx context.Context, tenantID, requestID string, approve bool, role domain.TenantRole) (domain.JoinRequest, error) {
	var resolved domain.JoinRequest

	err := s.Store.WithTx(ctx, func(tx store.Store) error {
		jr, err := tx.JoinRequests().GetJoinRequestByID(ctx, requestID)
		if err != nil {
			return err
		}
		// A request id from another tenant's URL space is treated as absent.
		if jr.TenantID != tenantID {
			return store.ErrNotFound
		}
		if jr.Status != domain.JoinRequestPending {
			return ErrJoinRequestResolved
		}

		status := domain.JoinRequestRejected
		if approve {
			status = domain.JoinRequestApproved
			err := tx.Tenants().AddMember(ctx, domain.Membership{
				TenantID:  tenantID,
				UserID:    jr.UserID,
				Role:      role,
				CreatedAt: time.Now().UTC(),
			})
			if err != nil && !errors.Is(err, store.ErrAlreadyExists) {
				return err
			}
		}

		if err := tx.JoinRequests().UpdateJoinRequestStatus(ctx, requestID, status); err != nil {
			return err
		}

		jr.Status = status
		resolved = jr
		return nil
	})
	if err != nil {
		return domain.JoinRequest{}, err
	}
	return resolved, nil
}
