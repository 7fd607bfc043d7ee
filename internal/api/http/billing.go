package http

import (
	"encoding/json"
	"net/http"

	"github.com/atriumhq/atrium/internal/api/service"
	"github.com/atriumhq/atrium/pkg/httpx"
)

// BillingHandler passes billing operations through to the payment processor
// on behalf of the authenticated user.
type BillingHandler struct {
	BillingService *service.BillingService
}

type customerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// HandleCreateCustomer godoc
//
//	@Summary		Provision a billing customer
//	@Description	Creates a customer at the payment processor and stores its id on the
//	@Description	user record. A user gets at most one customer.
//	@Tags			Billing
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		customerRequest	false	"optional display name"
//	@Success		201		{object}	domain.BillingCustomer
//	@Failure		409		{object}	httpx.ErrorBody	"customer already exists"
//	@Router			/v1/billing/customer [post].
func (h *BillingHandler) HandleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req customerRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	customer, err := h.BillingService.CreateCustomer(r.Context(), id.UserID, req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, customer)
}

// HandleGetCustomer godoc
//
//	@Summary	Get the billing customer
//	@Tags		Billing
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	domain.BillingCustomer
//	@Failure	400	{object}	httpx.ErrorBody	"no customer provisioned"
//	@Router		/v1/billing/customer [get].
func (h *BillingHandler) HandleGetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	customer, err := h.BillingService.GetCustomer(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, customer)
}

// HandleUpdateCustomer godoc
//
//	@Summary	Update the billing customer's contact details
//	@Tags		Billing
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		customerRequest	true	"fields to update"
//	@Success	200		{object}	domain.BillingCustomer
//	@Router		/v1/billing/customer [patch].
func (h *BillingHandler) HandleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "malformed body")
		return
	}

	customer, err := h.BillingService.UpdateCustomer(r.Context(), id.UserID, req.Email, req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, customer)
}

// HandleDeleteCustomer godoc
//
//	@Summary		Delete the billing customer
//	@Description	Removes the processor customer and forgets its id.
//	@Tags			Billing
//	@Security		BearerAuth
//	@Success		204
//	@Failure		400	{object}	httpx.ErrorBody	"no customer provisioned"
//	@Router			/v1/billing/customer [delete].
func (h *BillingHandler) HandleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.BillingService.DeleteCustomer(r.Context(), id.UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type checkoutRequest struct {
	PriceID    string `json:"price_id"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

// HandleCheckout godoc
//
//	@Summary	Create a checkout session
//	@Tags		Billing
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		checkoutRequest	true	"price and redirect URLs"
//	@Success	201		{object}	domain.BillingSession
//	@Failure	400		{object}	httpx.ErrorBody	"no customer provisioned"
//	@Router		/v1/billing/checkout [post].
func (h *BillingHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PriceID == "" || req.SuccessURL == "" || req.CancelURL == "" {
		httpx.WriteError(w, http.StatusBadRequest, "price_id, success_url and cancel_url are required")
		return
	}

	sess, err := h.BillingService.CreateCheckoutSession(r.Context(), id.UserID, req.PriceID, req.SuccessURL, req.CancelURL)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, sess)
}

type portalRequest struct {
	ReturnURL string `json:"return_url"`
}

// HandlePortal godoc
//
//	@Summary	Create a billing portal session
//	@Tags		Billing
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		portalRequest	true	"return URL"
//	@Success	201		{object}	domain.BillingSession
//	@Failure	400		{object}	httpx.ErrorBody	"no customer provisioned"
//	@Router		/v1/billing/portal [post].
func (h *BillingHandler) HandlePortal(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req portalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ReturnURL == "" {
		httpx.WriteError(w, http.StatusBadRequest, "return_url is required")
		return
	}

	sess, err := h.BillingService.CreatePortalSession(r.Context(), id.UserID, req.ReturnURL)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, sess)
}
