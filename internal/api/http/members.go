package http

import (
	"encoding/json"
	"net/http"

	"github.com/atriumhq/atrium/internal/api/domain"
	"github.com/atriumhq/atrium/internal/api/service"
	"github.com/atriumhq/atrium/pkg/httpx"
)

// MembersHandler serves tenant membership management.
type MembersHandler struct {
	TenantService *service.TenantService
}

// HandleList godoc
//
//	@Summary	List tenant members
//	@Tags		Members
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path	string	true	"tenant id"
//	@Success	200	{array}	MemberResponse
//	@Failure	403	{object}	httpx.ErrorBody	"not a member"
//	@Router		/v1/tenants/{id}/members [get].
func (h *MembersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	members, err := h.TenantService.ListMembers(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toMemberResponse(m))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type memberRoleRequest struct {
	Role string `json:"role"`
}

// HandleUpdateRole godoc
//
//	@Summary		Change a member's tenant role
//	@Description	The last OWNER cannot be demoted.
//	@Tags			Members
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"tenant id"
//	@Param			userID	path		string				true	"member user id"
//	@Param			body	body		memberRoleRequest	true	"new role"
//	@Success		200		{object}	MemberResponse
//	@Failure		409		{object}	httpx.ErrorBody	"tenant must retain an owner"
//	@Router			/v1/tenants/{id}/members/{userID} [patch].
func (h *MembersHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	var req memberRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "role is required")
		return
	}

	role, err := domain.ParseTenantRole(req.Role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	tenantID, userID := r.PathValue("id"), r.PathValue("userID")
	if err := h.TenantService.UpdateMemberRole(r.Context(), tenantID, userID, role); err != nil {
		writeServiceError(w, r, err)
		return
	}

	m, err := h.TenantService.GetMembership(r.Context(), tenantID, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toMemberResponse(m))
}

// HandleRemove godoc
//
//	@Summary		Remove a member
//	@Description	The last OWNER cannot be removed.
//	@Tags			Members
//	@Security		BearerAuth
//	@Param			id		path	string	true	"tenant id"
//	@Param			userID	path	string	true	"member user id"
//	@Success		204
//	@Failure		409	{object}	httpx.ErrorBody	"tenant must retain an owner"
//	@Router			/v1/tenants/{id}/members/{userID} [delete].
func (h *MembersHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	if err := h.TenantService.RemoveMember(r.Context(), r.PathValue("id"), r.PathValue("userID")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
