package service

import (
	"context"
	"errors"

	"github.com/atriumhq/atrium/internal/api/domain"
	"github.com/atriumhq/atrium/internal/api/store"
)

var (
	ErrCustomerExists = errors.New("billing_customer_exists")
	ErrNoCustomer     = errors.New("no_billing_customer")
)

// BillingProvider is the payment-processor boundary. The Stripe adapter in
// internal/api/billing implements it; tests swap in a fake.
type BillingProvider interface {
	CreateCustomer(ctx context.Context, email, name string) (domain.BillingCustomer, error)
	GetCustomer(ctx context.Context, customerID string) (domain.BillingCustomer, error)
	UpdateCustomer(ctx context.Context, customerID, email, name string) (domain.BillingCustomer, error)
	DeleteCustomer(ctx context.Context, customerID string) error
	CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (domain.BillingSession, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (domain.BillingSession, error)
}

// BillingService is a thin passthrough: the processor owns all billing state,
// we only persist the customer id on the user record.
type BillingService struct {
	Store    store.Store
	Provider BillingProvider
}

// CreateCustomer provisions a processor customer for the user. A user gets at
// most one.
func (s *BillingService) CreateCustomer(ctx context.Context, userID, name string) (domain.BillingCustomer, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.BillingCustomer{}, err
	}
	if u.BillingCustomerID != nil {
		return domain.BillingCustomer{}, ErrCustomerExists
	}

	customer, err := s.Provider.CreateCustomer(ctx, u.Email, name)
	if err != nil {
		return domain.BillingCustomer{}, err
	}

	if err := s.Store.Users().SetBillingCustomerID(ctx, userID, customer.ID); err != nil {
		return domain.BillingCustomer{}, err
	}
	return customer, nil
}

// GetCustomer fetches the user's processor customer record.
func (s *BillingService) GetCustomer(ctx context.Context, userID string) (domain.BillingCustomer, error) {
	id, err := s.customerID(ctx, userID)
	if err != nil {
		return domain.BillingCustomer{}, err
	}
	return s.Provider.GetCustomer(ctx, id)
}

// UpdateCustomer pushes new contact details to the processor.
func (s *BillingService) UpdateCustomer(ctx context.Context, userID, email, name string) (domain.BillingCustomer, error) {
	id, err := s.customerID(ctx, userID)
	if err != nil {
		return domain.BillingCustomer{}, err
	}
	return s.Provider.UpdateCustomer(ctx, id, email, name)
}

// DeleteCustomer removes the processor customer and forgets its id, so the
// user can be provisioned again later.
func (s *BillingService) DeleteCustomer(ctx context.Context, userID string) error {
	id, err := s.customerID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.Provider.DeleteCustomer(ctx, id); err != nil {
		return err
	}
	return s.Store.Users().ClearBillingCustomerID(ctx, userID)
}

// CreateCheckoutSession opens a checkout session for the user's customer.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, userID, priceID, successURL, cancelURL string) (domain.BillingSession, error) {
	id, err := s.customerID(ctx, userID)
	if err != nil {
		return domain.BillingSession{}, err
	}
	return s.Provider.CreateCheckoutSession(ctx, id, priceID, successURL, cancelURL)
}

// CreatePortalSession opens a self-service billing portal session.
func (s *BillingService) CreatePortalSession(ctx context.Context, userID, returnURL string) (domain.BillingSession, error) {
	id, err := s.customerID(ctx, userID)
	if err != nil {
		return domain.BillingSession{}, err
	}
	return s.Provider.CreatePortalSession(ctx, id, returnURL)
}

func (s *BillingService) customerID(ctx context.Context, userID string) (string, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.BillingCustomerID == nil {
		return "", ErrNoCustomer
	}
	return *u.BillingCustomerID, nil
}
