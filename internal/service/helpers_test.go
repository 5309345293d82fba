package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/RafatAiub/AmarBin-Backend/internal/domain"
	"github.com/RafatAiub/AmarBin-Backend/internal/revocation"
	"github.com/RafatAiub/AmarBin-Backend/internal/store"
	"github.com/RafatAiub/AmarBin-Backend/internal/store/drivers/sqlite"
	"github.com/RafatAiub/AmarBin-Backend/pkg/jwtx"
)

const (
	testAccessSecret  = "test-access-secret-0123456789abcdef"
	testRefreshSecret = "test-refresh-secret-0123456789abcdef"
	testIssuer        = "amarbin-test"
	testPassword      = "correct-horse-battery"
)

type testEnv struct {
	store    store.Store
	mr       *miniredis.Miniredis
	tokens   *TokenService
	guard    *LoginGuard
	sessions *SessionService
	users    *UserService
	pickups  *PickupService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tokens := newTestTokens(t, testAccessSecret, testRefreshSecret)
	tokens.Cache = revocation.NewRedis(client)

	guard := &LoginGuard{
		Store:        st,
		MaxAttempts:  5,
		LockDuration: 15 * time.Minute,
		HistoryLimit: 10,
	}
	sessions := &SessionService{
		Store:       st,
		Tokens:      tokens,
		Guard:       guard,
		MaxSessions: 5,
	}

	return &testEnv{
		store:    st,
		mr:       mr,
		tokens:   tokens,
		guard:    guard,
		sessions: sessions,
		users:    &UserService{Store: st},
		pickups:  &PickupService{Store: st},
	}
}

// newTestTokens builds a TokenService with a disabled cache; tests that care
// about the blacklist swap in a live one.
func newTestTokens(t *testing.T, accessSecret, refreshSecret string) *TokenService {
	t.Helper()

	accessSigner, err := jwtx.NewSignerHS256([]byte(accessSecret))
	require.NoError(t, err)
	accessVerifier, err := jwtx.NewVerifierHS256([]byte(accessSecret), testIssuer)
	require.NoError(t, err)
	refreshSigner, err := jwtx.NewSignerHS256([]byte(refreshSecret))
	require.NoError(t, err)
	refreshVerifier, err := jwtx.NewVerifierHS256([]byte(refreshSecret), testIssuer)
	require.NoError(t, err)

	return &TokenService{
		AccessSigner:    accessSigner,
		AccessVerifier:  accessVerifier,
		RefreshSigner:   refreshSigner,
		RefreshVerifier: refreshVerifier,
		Cache:           revocation.Disabled(),
		Issuer:          testIssuer,
		AccessTTL:       15 * time.Minute,
		RefreshTTL:      7 * 24 * time.Hour,
	}
}

// registerCustomer runs the real registration flow and returns the account
// and its token pair.
func registerCustomer(t *testing.T, env *testEnv, email string) (domain.Account, domain.TokenPair) {
	t.Helper()

	account, pair, err := env.sessions.Register(context.Background(), RegisterInput{
		Email:         email,
		Name:          "Test Customer",
		Password:      testPassword,
		SourceAddress: "203.0.113.9",
		DeviceContext: "go-test/1.0",
	})
	require.NoError(t, err)
	return account, pair
}

func login(t *testing.T, env *testEnv, email, password string) (domain.Account, domain.TokenPair, error) {
	t.Helper()

	return env.sessions.Login(context.Background(), LoginInput{
		Email:         email,
		Password:      password,
		SourceAddress: "203.0.113.9",
		DeviceContext: "go-test/1.0",
	})
}

// createStaff inserts an account with an elevated role through the admin path.
func createStaff(t *testing.T, env *testEnv, email string, role domain.Role) domain.Account {
	t.Helper()

	a, err := env.users.Create(context.Background(), CreateUserInput{
		Email:    email,
		Name:     "Staff Member",
		Password: testPassword,
		Role:     role,
	})
	require.NoError(t, err)
	return a
}

// requestPickup opens a pending pickup for the given customer.
func requestPickup(t *testing.T, env *testEnv, customerID string) domain.PickupRequest {
	t.Helper()

	p, err := env.pickups.Create(context.Background(), CreatePickupInput{
		CustomerID: customerID,
		WasteType:  domain.WasteHousehold,
		QuantityKG: 12.5,
		Address:    "12 Binside Lane",
		Notes:      "gate code 4417",
	})
	require.NoError(t, err)
	return p
}
