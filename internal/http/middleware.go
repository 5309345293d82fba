package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/RafatAiub/AmarBin-Backend/internal/domain"
	"github.com/RafatAiub/AmarBin-Backend/internal/service"
	"github.com/RafatAiub/AmarBin-Backend/pkg/httpx"
	"github.com/RafatAiub/AmarBin-Backend/pkg/jwtx"
	"github.com/RafatAiub/AmarBin-Backend/pkg/slogx"
)

type principalKey struct{}

// principal is the authenticated caller. The raw token string is kept so
// logout and change-password can blacklist exactly what was presented.
type principal struct {
	Account domain.Account
	Claims  jwtx.Claims
	Token   string
}

func withPrincipal(ctx context.Context, p principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func principalFrom(ctx context.Context) (principal, bool) {
	p, ok := ctx.Value(principalKey{}).(principal)
	return p, ok
}

// RequireAuth runs the bearer token through the full authentication gate and
// attaches the caller to the request context. Gate failures all read as the
// same 401 to the client; the distinct reason goes to the log.
func RequireAuth(sessions *service.SessionService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				httpx.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}

			account, claims, err := sessions.Authenticate(r.Context(), token)
			if err != nil {
				writeAuthError(w, r, err)
				return
			}

			ctx := withPrincipal(r.Context(), principal{Account: account, Claims: claims, Token: token})
			ctx = httpx.WithUserID(ctx, account.ID)
			ctx = slogx.With(ctx, "account_id", account.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route to the given roles. Must run after RequireAuth.
func RequireRole(roles ...domain.Role) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := principalFrom(r.Context())
			if !ok {
				httpx.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}
			for _, role := range roles {
				if p.Account.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.Error(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}

// bearerToken pulls the token out of the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// requestSource captures where a login-ish request came from, for the
// session slot and audit trail.
func requestSource(r *http.Request) (address, device string) {
	return httpx.IPKeyExtractor(r), r.UserAgent()
}
