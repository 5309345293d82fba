package api_test

import (
	"net/http"
	"testing"

	"github.com/RafatAiub/AmarBin-Backend/pkg/httpx"
)

// TestInvalidCredentials verifies that login with a wrong password is
// rejected without leaking whether the account exists.
func TestInvalidCredentials(t *testing.T) {
	client, _ := setupAPIServer(t)

	registerCustomer(t, client, "victim@e2e.example")

	_, err := client.Login(t.Context(), "victim@e2e.example", "wrong-password")
	assertAPIError(t, err, http.StatusUnauthorized, "wrong password should be rejected")

	_, err = client.Login(t.Context(), "ghost@e2e.example", "wrong-password")
	assertAPIError(t, err, http.StatusUnauthorized, "unknown account should look identical")
	t.Logf("Invalid credentials correctly rejected with 401")
}

// TestInvalidAccessToken verifies the authenticated surface rejects tokens
// the service never issued.
func TestInvalidAccessToken(t *testing.T) {
	client, _ := setupAPIServer(t)

	invalid := client.NewSessionFromTokens("invalid-token-12345", "", 3600)

	_, err := invalid.Me(t.Context())
	assertAPIError(t, err, http.StatusUnauthorized, "garbage token should be rejected")
	t.Logf("Invalid token correctly rejected with 401")
}

// TestRefreshAsAccessRejected verifies a refresh token cannot be smuggled
// into the Authorization header; the two token kinds use distinct secrets.
func TestRefreshAsAccessRejected(t *testing.T) {
	client, _ := setupAPIServer(t)

	session := registerCustomer(t, client, "smuggler@e2e.example")

	crossed := client.NewSessionFromTokens(session.RefreshToken(), "", 3600)
	_, err := crossed.Me(t.Context())
	assertAPIError(t, err, http.StatusUnauthorized, "refresh token should not authenticate requests")
	t.Logf("Refresh token in Authorization header correctly rejected with 401")
}

// TestLoginRateLimited exhausts the per-IP login budget and verifies the
// next attempt bounces with 429 before credentials are even checked.
func TestLoginRateLimited(t *testing.T) {
	client, _ := setupAPIServer(t)

	registerCustomer(t, client, "limited@e2e.example")

	for range httpx.StrictLimit.Burst {
		_, err := client.Login(t.Context(), "limited@e2e.example", "wrong-password")
		assertAPIError(t, err, http.StatusUnauthorized, "attempts inside the budget fail on credentials")
	}

	// Budget spent: even the correct password is turned away now.
	_, err := client.Login(t.Context(), "limited@e2e.example", customerPassword)
	assertAPIError(t, err, http.StatusTooManyRequests, "attempt over the budget should be throttled")
	t.Logf("Login attempts over the budget correctly rejected with 429")
}
