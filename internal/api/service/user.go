package service

import (
	"context"

	"github.com/atriumhq/atrium/internal/api/domain"
	"github.com/atriumhq/atrium/internal/api/store"
)

// UserService serves profile reads and the admin user listing.
type UserService struct {
	Store store.Store
}

func (s *UserService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// ListUsers returns every user. Route access is gated to global ADMINs by the
// HTTP layer.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}
