package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/RafatAiub/AmarBin-Backend/internal/domain"
	"github.com/RafatAiub/AmarBin-Backend/internal/revocation"
	"github.com/RafatAiub/AmarBin-Backend/internal/service"
	"github.com/RafatAiub/AmarBin-Backend/internal/store"
	"github.com/RafatAiub/AmarBin-Backend/pkg/httpx"
	"github.com/RafatAiub/AmarBin-Backend/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	cache revocation.Cache

	Sessions *service.SessionService
	Pickups  *service.PickupService
	Users    *service.UserService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	cache revocation.Cache,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		cache:        cache,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerPickups()
	r.registerUsers()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Sessions: r.Sessions,
		Users:    r.Users,
	}
	authn := RequireAuth(r.Sessions)

	// Credential endpoints - strict rate limit by IP (brute-force surface)
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Refresh is unauthenticated too: the body token is the credential
	r.Mux.Handle("POST /auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			authn,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Change-password re-verifies the current password, so it gets the same
	// strict budget as login
	r.Mux.Handle("PATCH /auth/change-password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
			authn,
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("GET /auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			authn,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PATCH /auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateMe),
			authn,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /auth/sessions",
		httpx.Chain(http.HandlerFunc(h.HandleSessions),
			authn,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /auth/history",
		httpx.Chain(http.HandlerFunc(h.HandleHistory),
			authn,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerPickups() {
	h := &PickupsHandler{Pickups: r.Pickups}
	authn := RequireAuth(r.Sessions)

	// Only customers open requests; staff work them
	r.Mux.Handle("POST /pickups",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			authn,
			RequireRole(domain.RoleCustomer),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /pickups",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			authn,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// Registered before /pickups/{id} so the literal segment wins
	r.Mux.Handle("GET /pickups/stats",
		httpx.Chain(http.HandlerFunc(h.HandleStats),
			authn,
			RequireRole(domain.RoleAdmin),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /pickups/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			authn,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// Ownership and pending-only rules are enforced in the service
	r.Mux.Handle("PATCH /pickups/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			authn,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /pickups/{id}/assign",
		httpx.Chain(http.HandlerFunc(h.HandleAssign),
			authn,
			RequireRole(domain.RoleAdmin),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// The assignee check is data-dependent, so the service owns it; the role
	// gate just keeps customers out early
	r.Mux.Handle("POST /pickups/{id}/status",
		httpx.Chain(http.HandlerFunc(h.HandleStatus),
			authn,
			RequireRole(domain.RoleEmployee, domain.RoleAdmin),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /pickups/{id}/cancel",
		httpx.Chain(http.HandlerFunc(h.HandleCancel),
			authn,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("DELETE /pickups/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			authn,
			RequireRole(domain.RoleAdmin),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{Users: r.Users}
	authn := RequireAuth(r.Sessions)
	admin := RequireRole(domain.RoleAdmin)

	r.Mux.Handle("GET /users",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			authn, admin,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			authn, admin,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /users",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			authn, admin,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PATCH /users/{id}/role",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateRole),
			authn, admin,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			authn, admin,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.cache),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
