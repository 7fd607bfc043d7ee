package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atrium/internal/api/domain"
)

// fakeProvider is an in-memory BillingProvider.
type fakeProvider struct {
	customers map[string]domain.BillingCustomer
	seq       int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{customers: map[string]domain.BillingCustomer{}}
}

func (f *fakeProvider) CreateCustomer(_ context.Context, email, name string) (domain.BillingCustomer, error) {
	f.seq++
	c := domain.BillingCustomer{ID: fmt.Sprintf("cus_%03d", f.seq), Email: email, Name: name}
	f.customers[c.ID] = c
	return c, nil
}

func (f *fakeProvider) GetCustomer(_ context.Context, customerID string) (domain.BillingCustomer, error) {
	c, ok := f.customers[customerID]
	if !ok {
		return domain.BillingCustomer{}, fmt.Errorf("no such customer %q", customerID)
	}
	return c, nil
}

func (f *fakeProvider) UpdateCustomer(_ context.Context, customerID, email, name string) (domain.BillingCustomer, error) {
	c, ok := f.customers[customerID]
	if !ok {
		return domain.BillingCustomer{}, fmt.Errorf("no such customer %q", customerID)
	}
	if email != "" {
		c.Email = email
	}
	if name != "" {
		c.Name = name
	}
	f.customers[customerID] = c
	return c, nil
}

func (f *fakeProvider) DeleteCustomer(_ context.Context, customerID string) error {
	if _, ok := f.customers[customerID]; !ok {
		return fmt.Errorf("no such customer %q", customerID)
	}
	delete(f.customers, customerID)
	return nil
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, customerID, priceID, successURL, cancelURL string) (domain.BillingSession, error) {
	return domain.BillingSession{ID: "cs_test", URL: "https://checkout.example.com/" + customerID + "/" + priceID}, nil
}

func (f *fakeProvider) CreatePortalSession(_ context.Context, customerID, returnURL string) (domain.BillingSession, error) {
	return domain.BillingSession{ID: "bps_test", URL: "https://portal.example.com/" + customerID}, nil
}

func TestBillingCustomerLifecycle(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	svc := &BillingService{Store: st, Provider: newFakeProvider()}
	ctx := context.Background()

	u := seedUser(t, st, "payer@example.com")

	t.Run("sessions require a customer", func(t *testing.T) {
		_, err := svc.GetCustomer(ctx, u.ID)
		require.ErrorIs(t, err, ErrNoCustomer)

		_, err = svc.CreateCheckoutSession(ctx, u.ID, "price_123", "https://ok", "https://no")
		require.ErrorIs(t, err, ErrNoCustomer)
	})

	customer, err := svc.CreateCustomer(ctx, u.ID, "Payer Person")
	require.NoError(t, err)
	require.Equal(t, "payer@example.com", customer.Email)

	t.Run("customer id is persisted on the user", func(t *testing.T) {
		got, err := st.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, got.BillingCustomerID)
		require.Equal(t, customer.ID, *got.BillingCustomerID)
	})

	t.Run("one customer per user", func(t *testing.T) {
		_, err := svc.CreateCustomer(ctx, u.ID, "Payer Again")
		require.ErrorIs(t, err, ErrCustomerExists)
	})

	t.Run("checkout and portal sessions", func(t *testing.T) {
		checkout, err := svc.CreateCheckoutSession(ctx, u.ID, "price_123", "https://ok", "https://no")
		require.NoError(t, err)
		require.Contains(t, checkout.URL, customer.ID)

		portal, err := svc.CreatePortalSession(ctx, u.ID, "https://back")
		require.NoError(t, err)
		require.Contains(t, portal.URL, customer.ID)
	})

	t.Run("update pushes new details", func(t *testing.T) {
		updated, err := svc.UpdateCustomer(ctx, u.ID, "", "New Name")
		require.NoError(t, err)
		require.Equal(t, "New Name", updated.Name)
		require.Equal(t, "payer@example.com", updated.Email)
	})

	t.Run("delete forgets the customer id", func(t *testing.T) {
		require.NoError(t, svc.DeleteCustomer(ctx, u.ID))

		got, err := st.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Nil(t, got.BillingCustomerID)

		// The user can be provisioned again after deletion.
		_, err = svc.CreateCustomer(ctx, u.ID, "Payer Person")
		require.NoError(t, err)
	})
}
