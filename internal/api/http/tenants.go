package http

import (
	"encoding/json"
	"net/http"

	"github.com/atriumhq/atrium/internal/api/service"
	"github.com/atriumhq/atrium/pkg/httpx"
)

// TenantsHandler serves tenant CRUD.
type TenantsHandler struct {
	TenantService *service.TenantService
}

type tenantRequest struct {
	Name string `json:"name"`
}

// HandleCreate godoc
//
//	@Summary		Create a tenant
//	@Description	The creator becomes the tenant's first OWNER.
//	@Tags			Tenants
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		tenantRequest	true	"tenant name"
//	@Success		201		{object}	TenantResponse
//	@Failure		409		{object}	httpx.ErrorBody	"name already taken"
//	@Router			/v1/tenants [post].
func (h *TenantsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req tenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	t, err := h.TenantService.CreateTenant(r.Context(), req.Name, id.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toTenantResponse(t))
}

// HandleList godoc
//
//	@Summary	List the caller's tenants
//	@Tags		Tenants
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	TenantResponse
//	@Router		/v1/tenants [get].
func (h *TenantsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	tenants, err := h.TenantService.ListTenantsForUser(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]TenantResponse, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, toTenantResponse(t))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet godoc
//
//	@Summary	Get a tenant
//	@Tags		Tenants
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"tenant id"
//	@Success	200	{object}	TenantResponse
//	@Failure	403	{object}	httpx.ErrorBody	"not a member"
//	@Router		/v1/tenants/{id} [get].
func (h *TenantsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	t, err := h.TenantService.GetTenant(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTenantResponse(t))
}

// HandleRename godoc
//
//	@Summary	Rename a tenant
//	@Tags		Tenants
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"tenant id"
//	@Param		body	body		tenantRequest	true	"new name"
//	@Success	200		{object}	TenantResponse
//	@Failure	409		{object}	httpx.ErrorBody	"name already taken"
//	@Router		/v1/tenants/{id} [patch].
func (h *TenantsHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	var req tenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	tenantID := r.PathValue("id")
	if err := h.TenantService.RenameTenant(r.Context(), tenantID, req.Name); err != nil {
		writeServiceError(w, r, err)
		return
	}

	t, err := h.TenantService.GetTenant(r.Context(), tenantID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTenantResponse(t))
}

// HandleDelete godoc
//
//	@Summary	Delete a tenant
//	@Tags		Tenants
//	@Security	BearerAuth
//	@Param		id	path	string	true	"tenant id"
//	@Success	204
//	@Failure	403	{object}	httpx.ErrorBody	"caller is not an OWNER"
//	@Router		/v1/tenants/{id} [delete].
func (h *TenantsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.TenantService.DeleteTenant(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
