package api_test

import (
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/RafatAiub/AmarBin-Backend/internal/domain"
	apihttp "github.com/RafatAiub/AmarBin-Backend/internal/http"
	"github.com/RafatAiub/AmarBin-Backend/internal/revocation"
	"github.com/RafatAiub/AmarBin-Backend/internal/service"
	"github.com/RafatAiub/AmarBin-Backend/internal/store"
	"github.com/RafatAiub/AmarBin-Backend/internal/store/drivers/sqlite"
	"github.com/RafatAiub/AmarBin-Backend/pkg/apiclient"
	"github.com/RafatAiub/AmarBin-Backend/pkg/jwtx"
)

/*
 * Common constants and helpers for API end-to-end tests. Each test boots the
 * full service stack on a real listener and drives it exclusively through
 * the apiclient SDK, the way an external consumer would.
 */

const (
	e2eAccessSecret  = "e2e-access-secret-0123456789abcdef-pad"
	e2eRefreshSecret = "e2e-refresh-secret-0123456789abcdef-pad"
	e2eIssuer        = "amarbin-e2e"
	e2eVersion       = "e2e"

	adminEmail    = "admin@amarbin.example"
	adminName     = "Administrator"
	adminPassword = "Admin123!e2e"

	customerPassword = "Resident123!e2e"
)

// apiEnv is one running API instance backed by real storage. Tests normally
// stay on the SDK side; the store, miniredis and user-service handles exist
// for seeding staff accounts and injecting dependency failures.
type apiEnv struct {
	srv   *httptest.Server
	store store.Store
	mr    *miniredis.Miniredis
	users *service.UserService
}

// setupAPIServer boots the composed service, file-backed sqlite and all, and
// returns an SDK client pointed at its listener.
func setupAPIServer(t *testing.T) (*apiclient.Client, *apiEnv) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL",
		filepath.Join(t.TempDir(), "api.db"))
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cache := revocation.NewRedis(rdb)

	accessSigner, err := jwtx.NewSignerHS256([]byte(e2eAccessSecret))
	require.NoError(t, err)
	accessVerifier, err := jwtx.NewVerifierHS256([]byte(e2eAccessSecret), e2eIssuer)
	require.NoError(t, err)
	refreshSigner, err := jwtx.NewSignerHS256([]byte(e2eRefreshSecret))
	require.NoError(t, err)
	refreshVerifier, err := jwtx.NewVerifierHS256([]byte(e2eRefreshSecret), e2eIssuer)
	require.NoError(t, err)

	tokens := &service.TokenService{
		AccessSigner:    accessSigner,
		AccessVerifier:  accessVerifier,
		RefreshSigner:   refreshSigner,
		RefreshVerifier: refreshVerifier,
		Cache:           cache,
		Issuer:          e2eIssuer,
		AccessTTL:       15 * time.Minute,
		RefreshTTL:      7 * 24 * time.Hour,
	}
	guard := &service.LoginGuard{
		Store:        st,
		MaxAttempts:  5,
		LockDuration: 15 * time.Minute,
		HistoryLimit: 10,
	}
	users := &service.UserService{Store: st}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := apihttp.NewRouter(e2eVersion, st, cache, logger)
	router.Sessions = &service.SessionService{
		Store:       st,
		Tokens:      tokens,
		Guard:       guard,
		MaxSessions: 5,
	}
	router.Pickups = &service.PickupService{Store: st}
	router.Users = users
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return apiclient.New(srv.URL), &apiEnv{srv: srv, store: st, mr: mr, users: users}
}

// seedAdmin provisions the admin account the same way production boot does,
// then logs in through the API.
func seedAdmin(t *testing.T, client *apiclient.Client, env *apiEnv) *apiclient.Session {
	t.Helper()

	created, err := env.users.EnsureAdmin(t.Context(), adminEmail, adminName, adminPassword)
	require.NoError(t, err)
	require.True(t, created, "admin should not exist yet in a fresh environment")

	session, err := client.Login(t.Context(), adminEmail, adminPassword)
	require.NoError(t, err)
	return session
}

// seedEmployee provisions a staff account directly in the store and logs it
// in through the API.
func seedEmployee(t *testing.T, client *apiclient.Client, env *apiEnv, email string) *apiclient.Session {
	t.Helper()

	_, err := env.users.Create(t.Context(), service.CreateUserInput{
		Email:    email,
		Name:     "Crew Member",
		Password: customerPassword,
		Role:     domain.RoleEmployee,
	})
	require.NoError(t, err)

	session, err := client.Login(t.Context(), email, customerPassword)
	require.NoError(t, err)
	return session
}

// registerCustomer goes through the public registration endpoint.
func registerCustomer(t *testing.T, client *apiclient.Client, email string) *apiclient.Session {
	t.Helper()

	session, err := client.Register(t.Context(), apiclient.RegisterRequest{
		Email:    email,
		Name:     "Test Resident",
		Password: customerPassword,
	})
	require.NoError(t, err)
	return session
}

// assertAPIError requires err to be an *apiclient.APIError with the given
// HTTP status.
func assertAPIError(t *testing.T, err error, wantStatus int, msg string) {
	t.Helper()

	require.Error(t, err, msg)
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr, msg)
	require.Equal(t, wantStatus, apiErr.StatusCode, msg)
}

// assertTokenPair checks the fields every issued pair must carry.
func assertTokenPair(t *testing.T, pair *apiclient.TokenPair) {
	t.Helper()

	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "Bearer", pair.TokenType)
	require.Positive(t, pair.ExpiresIn)
}
