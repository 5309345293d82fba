/*
Package apiclient provides a typed Go client for the AmarBin waste pickup API.

# Overview

The package is organized around two types:

  - Client: unauthenticated operations, and the entry points that create sessions
  - Session: authenticated operations with automatic access token refresh

Create a Client to reach public endpoints and authenticate:

	client := apiclient.New("https://api.amarbin.example")

	// Check service health
	health, err := client.GetLiveness(ctx)

	// Authenticate to create a session
	session, err := client.Login(ctx, "resident@example.com", "secret")

Use the Session for everything behind authentication:

	me, err := session.Me(ctx)

	pickup, err := session.CreatePickup(ctx, apiclient.CreatePickupRequest{
		WasteType:  "household",
		QuantityKG: 12.5,
		Address:    "12 Binside Lane",
	})

	page, err := session.ListPickups(ctx, apiclient.ListPickupsOptions{Status: "pending"})

# Automatic Token Refresh

Session methods call getValidToken internally, which:

 1. Checks whether the access token is still valid, with a 30-second buffer
 2. If not, exchanges the refresh token for a new token pair
 3. Stores the rotated pair on the session

The server rotates the refresh token on every exchange, so callers that
persist tokens should read RefreshToken() again after use. A restored
session is built with NewSessionFromTokens.

# Error Handling

Failed requests return typed errors:

  - *APIError: the server's enveloped error, with status code, message and
    any field-level details
  - *AccountLockedError: login rejected because the account is temporarily
    locked; carries the unlock time

Example:

	session, err := client.Login(ctx, email, password)
	if err != nil {
		var locked *apiclient.AccountLockedError
		if errors.As(err, &locked) {
			fmt.Println("try again at", locked.Until)
			return
		}
		return err
	}

# Roles

The API enforces roles server-side. A customer session calling an admin
endpoint gets a 403 *APIError; the client does no local role checking.

# Thread Safety

Sessions are safe for concurrent use. Token state is guarded by a
read/write lock and refreshes are deduplicated, so multiple goroutines can
share one Session.
*/
package apiclient
