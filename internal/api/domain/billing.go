package domain

// BillingCustomer is the slim projection of a payment-processor customer that
// the API exposes. The processor owns the record; we only mirror identifiers.
type BillingCustomer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// BillingSession is a redirect-style session (checkout or billing portal)
// created at the payment processor.
type BillingSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
