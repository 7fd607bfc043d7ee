package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/atriumhq/atrium/internal/api/domain"
	"github.com/atriumhq/atrium/internal/api/service"
	"github.com/atriumhq/atrium/internal/api/store"
	"github.com/atriumhq/atrium/pkg/httpx"
	"github.com/atriumhq/atrium/pkg/jwtx"
	"github.com/atriumhq/atrium/pkg/slogx"

	_ "github.com/atriumhq/atrium/api/atrium" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier      jwtx.Verifier
	buildVersion  string
	secureCookies bool
	startTime     time.Time
	logger        *slog.Logger

	store          store.Store
	AuthService    *service.AuthService
	UserService    *service.UserService
	TenantService  *service.TenantService
	BillingService *service.BillingService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	secureCookies bool,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:           http.NewServeMux(),
		verifier:      verifier,
		buildVersion:  buildVersion,
		secureCookies: secureCookies,
		startTime:     time.Now(),
		store:         st,
		logger:        logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerTenants()
	r.registerBilling()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Atrium API
//	@version		0.1.0
//	@description	Multi-tenant backend API: user accounts with JWT session management,
//	@description	tenant workspaces with per-tenant roles and a join-request workflow,
//	@description	and billing passthrough to the payment processor.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService, SecureCookies: r.secureCookies}

	// Credential endpoints get the strict limit as a brute-force brake.
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	r.Mux.Handle("GET /v1/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// The global role guard: ADMIN only.
	r.Mux.Handle("GET /v1/admin/users",
		httpx.Chain(http.HandlerFunc(h.HandleAdminList),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyRole(httpx.RoleAdmin),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerTenants() {
	tenants := &TenantsHandler{TenantService: r.TenantService}
	members := &MembersHandler{TenantService: r.TenantService}
	joins := &JoinRequestsHandler{TenantService: r.TenantService}

	authn := httpx.AuthnMiddleware(r.verifier)
	anyMember := RequireTenantRole(r.TenantService,
		domain.TenantRoleOwner, domain.TenantRoleAdmin, domain.TenantRoleEditor, domain.TenantRoleViewer)
	managers := RequireTenantRole(r.TenantService, domain.TenantRoleOwner, domain.TenantRoleAdmin)
	ownersOnly := RequireTenantRole(r.TenantService, domain.TenantRoleOwner)

	r.Mux.Handle("POST /v1/tenants",
		httpx.Chain(http.HandlerFunc(tenants.HandleCreate),
			authn, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("GET /v1/tenants",
		httpx.Chain(http.HandlerFunc(tenants.HandleList),
			authn, httpx.RateLimitByUser(httpx.LenientLimit)))
	r.Mux.Handle("GET /v1/tenants/{id}",
		httpx.Chain(http.HandlerFunc(tenants.HandleGet),
			authn, anyMember, httpx.RateLimitByUser(httpx.LenientLimit)))
	r.Mux.Handle("PATCH /v1/tenants/{id}",
		httpx.Chain(http.HandlerFunc(tenants.HandleRename),
			authn, managers, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("DELETE /v1/tenants/{id}",
		httpx.Chain(http.HandlerFunc(tenants.HandleDelete),
			authn, ownersOnly, httpx.RateLimitByUser(httpx.ModerateLimit)))

	r.Mux.Handle("GET /v1/tenants/{id}/members",
		httpx.Chain(http.HandlerFunc(members.HandleList),
			authn, anyMember, httpx.RateLimitByUser(httpx.LenientLimit)))
	r.Mux.Handle("PATCH /v1/tenants/{id}/members/{userID}",
		httpx.Chain(http.HandlerFunc(members.HandleUpdateRole),
			authn, managers, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("DELETE /v1/tenants/{id}/members/{userID}",
		httpx.Chain(http.HandlerFunc(members.HandleRemove),
			authn, managers, httpx.RateLimitByUser(httpx.ModerateLimit)))

	// Filing and cancelling are open to any authenticated user; the service
	// enforces the rest. Listing and resolving are manager operations.
	r.Mux.Handle("POST /v1/tenants/{id}/join-requests",
		httpx.Chain(http.HandlerFunc(joins.HandleCreate),
			authn, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("GET /v1/tenants/{id}/join-requests",
		httpx.Chain(http.HandlerFunc(joins.HandleList),
			authn, managers, httpx.RateLimitByUser(httpx.LenientLimit)))
	r.Mux.Handle("POST /v1/tenants/{id}/join-requests/{reqID}/approve",
		httpx.Chain(http.HandlerFunc(joins.HandleApprove),
			authn, managers, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("POST /v1/tenants/{id}/join-requests/{reqID}/reject",
		httpx.Chain(http.HandlerFunc(joins.HandleReject),
			authn, managers, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("DELETE /v1/tenants/{id}/join-requests/{reqID}",
		httpx.Chain(http.HandlerFunc(joins.HandleCancel),
			authn, httpx.RateLimitByUser(httpx.ModerateLimit)))
}

func (r *Router) registerBilling() {
	h := &BillingHandler{BillingService: r.BillingService}
	authn := httpx.AuthnMiddleware(r.verifier)

	r.Mux.Handle("POST /v1/billing/customer",
		httpx.Chain(http.HandlerFunc(h.HandleCreateCustomer),
			authn, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("GET /v1/billing/customer",
		httpx.Chain(http.HandlerFunc(h.HandleGetCustomer),
			authn, httpx.RateLimitByUser(httpx.LenientLimit)))
	r.Mux.Handle("PATCH /v1/billing/customer",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateCustomer),
			authn, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("DELETE /v1/billing/customer",
		httpx.Chain(http.HandlerFunc(h.HandleDeleteCustomer),
			authn, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("POST /v1/billing/checkout",
		httpx.Chain(http.HandlerFunc(h.HandleCheckout),
			authn, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("POST /v1/billing/portal",
		httpx.Chain(http.HandlerFunc(h.HandlePortal),
			authn, httpx.RateLimitByUser(httpx.ModerateLimit)))
}

func (r *Router) registerSystem() {
	// Monitoring systems may poll these frequently.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
