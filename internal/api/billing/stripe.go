// Package billing adapts the Stripe API to the service layer's
// BillingProvider interface.
package billing

import (
	"context"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/atriumhq/atrium/internal/api/domain"
)

// StripeProvider implements service.BillingProvider against the live Stripe
// API.
type StripeProvider struct {
	api *client.API
}

// NewStripeProvider builds a provider with its own Stripe client bound to the
// given secret key.
func NewStripeProvider(secretKey string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api}
}

func (p *StripeProvider) CreateCustomer(ctx context.Context, email, name string) (domain.BillingCustomer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	if name != "" {
		params.Name = stripe.String(name)
	}
	params.Context = ctx

	c, err := p.api.Customers.New(params)
	if err != nil {
		return domain.BillingCustomer{}, err
	}
	return mapCustomer(c), nil
}

func (p *StripeProvider) GetCustomer(ctx context.Context, customerID string) (domain.BillingCustomer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	c, err := p.api.Customers.Get(customerID, params)
	if err != nil {
		return domain.BillingCustomer{}, err
	}
	return mapCustomer(c), nil
}

func (p *StripeProvider) UpdateCustomer(ctx context.Context, customerID, email, name string) (domain.BillingCustomer, error) {
	params := &stripe.CustomerParams{}
	if email != "" {
		params.Email = stripe.String(email)
	}
	if name != "" {
		params.Name = stripe.String(name)
	}
	params.Context = ctx

	c, err := p.api.Customers.Update(customerID, params)
	if err != nil {
		return domain.BillingCustomer{}, err
	}
	return mapCustomer(c), nil
}

func (p *StripeProvider) DeleteCustomer(ctx context.Context, customerID string) error {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	_, err := p.api.Customers.Del(customerID, params)
	return err
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (domain.BillingSession, error) {
	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.Context = ctx

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return domain.BillingSession{}, err
	}
	return domain.BillingSession{ID: sess.ID, URL: sess.URL}, nil
}

func (p *StripeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (domain.BillingSession, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return domain.BillingSession{}, err
	}
	return domain.BillingSession{ID: sess.ID, URL: sess.URL}, nil
}

func mapCustomer(c *stripe.Customer) domain.BillingCustomer {
	return domain.BillingCustomer{
		ID:    c.ID,
		Email: c.Email,
		Name:  c.Name,
	}
}
