package http

import (
	"encoding/json"
	"net/http"

	"github.com/atriumhq/atrium/internal/api/domain"
	"github.com/atriumhq/atrium/internal/api/service"
	"github.com/atriumhq/atrium/pkg/httpx"
)

// JoinRequestsHandler serves the join-request workflow.
type JoinRequestsHandler struct {
	TenantService *service.TenantService
}

type joinRequestCreate struct {
	Message string `json:"message"`
}

// HandleCreate godoc
//
//	@Summary		Request to join a tenant
//	@Description	Files a pending join request. Members cannot file one, and only a
//	@Description	single pending request may exist per tenant and user.
//	@Tags			JoinRequests
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"tenant id"
//	@Param			body	body		joinRequestCreate	false	"optional message"
//	@Success		201		{object}	JoinRequestResponse
//	@Failure		409		{object}	httpx.ErrorBody	"already a member or already pending"
//	@Router			/v1/tenants/{id}/join-requests [post].
func (h *JoinRequestsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req joinRequestCreate
	_ = json.NewDecoder(r.Body).Decode(&req)

	jr, err := h.TenantService.RequestJoin(r.Context(), r.PathValue("id"), id.UserID, req.Message)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toJoinRequestResponse(jr))
}

// HandleList godoc
//
//	@Summary	List a tenant's join requests
//	@Tags		JoinRequests
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id		path	string	true	"tenant id"
//	@Param		status	query	string	false	"filter by status (PENDING, APPROVED, REJECTED)"
//	@Success	200		{array}	JoinRequestResponse
//	@Failure	403		{object}	httpx.ErrorBody	"caller is not OWNER or ADMIN"
//	@Router		/v1/tenants/{id}/join-requests [get].
func (h *JoinRequestsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	requests, err := h.TenantService.ListJoinRequests(r.Context(), r.PathValue("id"), status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]JoinRequestResponse, 0, len(requests))
	for _, jr := range requests {
		out = append(out, toJoinRequestResponse(jr))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleApprove godoc
//
//	@Summary		Approve a join request
//	@Description	Admits the requester as a VIEWER member.
//	@Tags			JoinRequests
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id		path		string	true	"tenant id"
//	@Param			reqID	path		string	true	"join request id"
//	@Success		200		{object}	JoinRequestResponse
//	@Failure		409		{object}	httpx.ErrorBody	"already resolved"
//	@Router			/v1/tenants/{id}/join-requests/{reqID}/approve [post].
func (h *JoinRequestsHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, true)
}

// HandleReject godoc
//
//	@Summary	Reject a join request
//	@Tags		JoinRequests
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id		path		string	true	"tenant id"
//	@Param		reqID	path		string	true	"join request id"
//	@Success	200		{object}	JoinRequestResponse
//	@Failure	409		{object}	httpx.ErrorBody	"already resolved"
//	@Router		/v1/tenants/{id}/join-requests/{reqID}/reject [post].
func (h *JoinRequestsHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, false)
}

func (h *JoinRequestsHandler) resolve(w http.ResponseWriter, r *http.Request, approve bool) {
	jr, err := h.TenantService.ResolveJoinRequest(
		r.Context(), r.PathValue("id"), r.PathValue("reqID"), approve, domain.TenantRoleViewer)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toJoinRequestResponse(jr))
}

// HandleCancel godoc
//
//	@Summary		Cancel a join request
//	@Description	Only the requester may withdraw their own pending request.
//	@Tags			JoinRequests
//	@Security		BearerAuth
//	@Param			id		path	string	true	"tenant id"
//	@Param			reqID	path	string	true	"join request id"
//	@Success		204
//	@Failure		403	{object}	httpx.ErrorBody	"not the requester"
//	@Router			/v1/tenants/{id}/join-requests/{reqID} [delete].
func (h *JoinRequestsHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	err := h.TenantService.CancelJoinRequest(r.Context(), r.PathValue("id"), r.PathValue("reqID"), id.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
