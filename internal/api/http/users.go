package http

import (
	"net/http"

	"github.com/atriumhq/atrium/internal/api/service"
	"github.com/atriumhq/atrium/pkg/httpx"
)

// UsersHandler serves the profile endpoint and the admin user listing.
type UsersHandler struct {
	UserService *service.UserService
}

// HandleMe godoc
//
//	@Summary		Get the authenticated user
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	UserResponse
//	@Failure		401	{object}	httpx.ErrorBody	"missing or invalid access token"
//	@Router			/v1/me [get].
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	u, err := h.UserService.GetUser(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleAdminList godoc
//
//	@Summary		List all users
//	@Description	Requires the global ADMIN role.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		UserResponse
//	@Failure		403	{object}	httpx.ErrorBody	"caller is not an ADMIN"
//	@Router			/v1/admin/users [get].
func (h *UsersHandler) HandleAdminList(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
