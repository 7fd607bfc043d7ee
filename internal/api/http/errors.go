package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/atriumhq/atrium/internal/api/domain"
	"github.com/atriumhq/atrium/internal/api/service"
	"github.com/atriumhq/atrium/internal/api/store"
	"github.com/atriumhq/atrium/pkg/httpx"
	"github.com/atriumhq/atrium/pkg/slogx"
)

// writeServiceError maps service and store sentinels onto HTTP statuses.
// Anything unmapped is an infrastructure failure: logged in full, reported
// as an opaque 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, service.ErrTenantNameTaken):
		httpx.WriteError(w, http.StatusConflict, "tenant name already taken")
	case errors.Is(err, service.ErrAlreadyMember):
		httpx.WriteError(w, http.StatusConflict, "already a member")
	case errors.Is(err, service.ErrJoinRequestExists):
		httpx.WriteError(w, http.StatusConflict, "join request already pending")
	case errors.Is(err, service.ErrJoinRequestResolved):
		httpx.WriteError(w, http.StatusConflict, "join request already resolved")
	case errors.Is(err, service.ErrCustomerExists):
		httpx.WriteError(w, http.StatusConflict, "billing customer already exists")
	case errors.Is(err, service.ErrLastOwner):
		httpx.WriteError(w, http.StatusConflict, "tenant must retain an owner")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrInvalidRefresh):
		httpx.WriteError(w, http.StatusForbidden, "invalid refresh token")
	case errors.Is(err, service.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrNoCustomer), errors.Is(err, domain.ErrUnknownTenantRole):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not found")
	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
