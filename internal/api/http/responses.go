package http

import (
	"time"

	"github.com/atriumhq/atrium/internal/api/domain"
)

// Response DTOs. Handlers never serialize domain structs directly so the
// wire shape can't drift when the domain grows a field.

type UserResponse struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	Roles             []string  `json:"roles"`
	IsActive          bool      `json:"is_active"`
	BillingCustomerID *string   `json:"billing_customer_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Email:             u.Email,
		Roles:             u.Roles,
		IsActive:          u.IsActive,
		BillingCustomerID: u.BillingCustomerID,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"` // seconds
}

func toTokenResponse(p *domain.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		ExpiresIn:    int64(p.ExpiresIn.Seconds()),
	}
}

type TenantResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toTenantResponse(t domain.Tenant) TenantResponse {
	return TenantResponse{
		ID:        t.ID,
		Name:      t.Name,
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

type MemberResponse struct {
	TenantID  string    `json:"tenant_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toMemberResponse(m domain.Membership) MemberResponse {
	return MemberResponse{
		TenantID:  m.TenantID,
		UserID:    m.UserID,
		Role:      string(m.Role),
		CreatedAt: m.CreatedAt,
	}
}

type JoinRequestResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toJoinRequestResponse(jr domain.JoinRequest) JoinRequestResponse {
	return JoinRequestResponse{
		ID:        jr.ID,
		TenantID:  jr.TenantID,
		UserID:    jr.UserID,
		Status:    jr.Status,
		Message:   jr.Message,
		CreatedAt: jr.CreatedAt,
		UpdatedAt: jr.UpdatedAt,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthChecks struct {
	Database string `json:"database,omitempty"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
