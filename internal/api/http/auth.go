package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/atriumhq/atrium/internal/api/service"
	"github.com/atriumhq/atrium/pkg/httpx"
)

const refreshCookieName = "refresh_token"

// AuthHandler serves registration, login, refresh, and logout.
type AuthHandler struct {
	AuthService *service.AuthService

	// SecureCookies marks the refresh cookie Secure; enabled in prod.
	SecureCookies bool
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister godoc
//
//	@Summary		Register a new user
//	@Description	Creates a user account with the USER role.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		registerRequest	true	"email and password"
//	@Success		201		{object}	UserResponse
//	@Failure		400		{object}	httpx.ErrorBody	"malformed body"
//	@Failure		409		{object}	httpx.ErrorBody	"email already registered"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	u, err := h.AuthService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(u))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Verifies the credential and issues an access/refresh token pair.
//	@Description	The refresh token is also set as an HttpOnly cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		loginRequest	true	"email and password"
//	@Success		200		{object}	TokenResponse
//	@Failure		400		{object}	httpx.ErrorBody	"malformed body"
//	@Failure		401		{object}	httpx.ErrorBody	"invalid credentials"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	pair, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// HandleRefresh godoc
//
//	@Summary		Refresh the session
//	@Description	Rotates the refresh token and issues a new pair. The token is read
//	@Description	from the request body first, falling back to the refresh cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		refreshRequest	false	"refresh token (optional if cookie present)"
//	@Success		200		{object}	TokenResponse
//	@Failure		403		{object}	httpx.ErrorBody	"invalid refresh token"
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	token := req.RefreshToken
	if token == "" {
		if c, err := r.Cookie(refreshCookieName); err == nil {
			token = c.Value
		}
	}
	if token == "" {
		httpx.WriteError(w, http.StatusForbidden, "invalid refresh token")
		return
	}

	pair, err := h.AuthService.Refresh(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Clears the stored refresh digest and the refresh cookie.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	MessageResponse
//	@Failure		401	{object}	httpx.ErrorBody	"missing or invalid access token"
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.AuthService.Logout(r.Context(), id.UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.clearRefreshCookie(w)
	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/v1/auth",
		MaxAge:   int(h.AuthService.RefreshTTL / time.Second),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/v1/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}
