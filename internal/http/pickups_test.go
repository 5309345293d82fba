package http_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/RafatAiub/AmarBin-Backend/internal/domain"
	"github.com/RafatAiub/AmarBin-Backend/pkg/apiclient"
)

func createPickup(t *testing.T, ts *testServer, token string) apiclient.PickupInfo {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/pickups", token, apiclient.CreatePickupRequest{
		WasteType:  "household",
		QuantityKG: 12.5,
		Address:    "12 Binside Lane",
		Notes:      "gate code 4417",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var p apiclient.PickupInfo
	unmarshalData(t, parseEnvelope(t, rec), &p)
	return p
}

func TestPickupLifecycle(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	customer, customerPair := ts.register(t, "resident@amarbin.example")
	_, adminPair := ts.seedStaff(t, "ops@amarbin.example", domain.RoleAdmin)
	employee, employeePair := ts.seedStaff(t, "crew@amarbin.example", domain.RoleEmployee)

	p := createPickup(t, ts, customerPair.AccessToken)
	require.Equal(t, customer.ID, p.CustomerID)
	require.Equal(t, "pending", p.Status)

	t.Run("assign requires employee_id", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/pickups/"+p.ID+"/assign", adminPair.AccessToken, apiclient.AssignPickupRequest{})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "employee_id is required", parseEnvelope(t, rec).Message)
	})

	rec := ts.do(t, http.MethodPost, "/pickups/"+p.ID+"/assign", adminPair.AccessToken, apiclient.AssignPickupRequest{
		EmployeeID: employee.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var scheduled apiclient.PickupInfo
	unmarshalData(t, parseEnvelope(t, rec), &scheduled)
	require.Equal(t, "scheduled", scheduled.Status)
	require.NotNil(t, scheduled.AssigneeID)
	require.Equal(t, employee.ID, *scheduled.AssigneeID)
	require.NotNil(t, scheduled.ScheduledFor)

	t.Run("customer cannot edit once scheduled", func(t *testing.T) {
		addr := "99 Other Street"
		rec := ts.do(t, http.MethodPatch, "/pickups/"+p.ID, customerPair.AccessToken, apiclient.UpdatePickupRequest{Address: &addr})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	rec = ts.do(t, http.MethodPost, "/pickups/"+p.ID+"/status", employeePair.AccessToken, apiclient.UpdateStatusRequest{Status: "in_progress"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/pickups/"+p.ID+"/status", employeePair.AccessToken, apiclient.UpdateStatusRequest{Status: "completed"})
	require.Equal(t, http.StatusOK, rec.Code)

	var done apiclient.PickupInfo
	unmarshalData(t, parseEnvelope(t, rec), &done)
	require.Equal(t, "completed", done.Status)
	require.NotNil(t, done.CompletedAt)
	require.WithinDuration(t, time.Now(), *done.CompletedAt, time.Minute)

	t.Run("stats count the finished job", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/pickups/stats", adminPair.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var stats apiclient.StatsResponse
		unmarshalData(t, parseEnvelope(t, rec), &stats)
		require.Len(t, stats, 5)
		require.Equal(t, 1, stats["completed"])
		require.Equal(t, 0, stats["pending"])
	})

	t.Run("admin delete", func(t *testing.T) {
		rec := ts.do(t, http.MethodDelete, "/pickups/"+p.ID, adminPair.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = ts.do(t, http.MethodGet, "/pickups/"+p.ID, adminPair.AccessToken, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPickupRoleGates(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	_, customerPair := ts.register(t, "gatecheck@amarbin.example")
	_, employeePair := ts.seedStaff(t, "gatecrew@amarbin.example", domain.RoleEmployee)

	p := createPickup(t, ts, customerPair.AccessToken)

	t.Run("only customers open requests", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/pickups", employeePair.AccessToken, apiclient.CreatePickupRequest{
			WasteType:  "household",
			QuantityKG: 3,
			Address:    "1 Depot Road",
		})
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "insufficient permissions", parseEnvelope(t, rec).Message)
	})

	t.Run("customers cannot post status", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/pickups/"+p.ID+"/status", customerPair.AccessToken, apiclient.UpdateStatusRequest{Status: "in_progress"})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("stats and delete are admin only", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/pickups/stats", customerPair.AccessToken, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = ts.do(t, http.MethodDelete, "/pickups/"+p.ID, employeePair.AccessToken, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = ts.do(t, http.MethodPost, "/pickups/"+p.ID+"/assign", employeePair.AccessToken, apiclient.AssignPickupRequest{EmployeeID: "whoever"})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("other customers cannot see the request", func(t *testing.T) {
		_, nosyPair := ts.register(t, "nosy@amarbin.example")
		rec := ts.do(t, http.MethodGet, "/pickups/"+p.ID, nosyPair.AccessToken, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)

		// Staff can.
		rec = ts.do(t, http.MethodGet, "/pickups/"+p.ID, employeePair.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestPickupListScopingAndPaging(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	_, alicePair := ts.register(t, "alice.bins@amarbin.example")
	_, bobPair := ts.register(t, "bob.bins@amarbin.example")
	_, employeePair := ts.seedStaff(t, "lister@amarbin.example", domain.RoleEmployee)

	createPickup(t, ts, alicePair.AccessToken)
	createPickup(t, ts, alicePair.AccessToken)
	createPickup(t, ts, bobPair.AccessToken)

	rec := ts.do(t, http.MethodGet, "/pickups", alicePair.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page apiclient.PickupPage
	unmarshalData(t, parseEnvelope(t, rec), &page)
	require.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 2)

	// Staff see everything, and the page echoes the clamped window.
	rec = ts.do(t, http.MethodGet, "/pickups?page=2&limit=2", employeePair.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	unmarshalData(t, parseEnvelope(t, rec), &page)
	require.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 1)
	require.Equal(t, 2, page.Page)
	require.Equal(t, 2, page.Limit)

	t.Run("filter junk rejected", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/pickups?status=vanished", alicePair.AccessToken, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "validation failed", parseEnvelope(t, rec).Message)
	})

	t.Run("create validation surfaces detail", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/pickups", alicePair.AccessToken, apiclient.CreatePickupRequest{
			WasteType:  "plutonium",
			QuantityKG: 1,
			Address:    "1 Lead Box",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		env := parseEnvelope(t, rec)
		require.Equal(t, "validation failed", env.Message)
		require.NotEmpty(t, env.Errors)
	})
}

func TestPickupCancel(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	_, ownerPair := ts.register(t, "canceller@amarbin.example")
	_, strangerPair := ts.register(t, "stranger@amarbin.example")

	p := createPickup(t, ts, ownerPair.AccessToken)

	rec := ts.do(t, http.MethodPost, "/pickups/"+p.ID+"/cancel", strangerPair.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPost, "/pickups/"+p.ID+"/cancel", ownerPair.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cancelled apiclient.PickupInfo
	unmarshalData(t, parseEnvelope(t, rec), &cancelled)
	require.Equal(t, "cancelled", cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	// Terminal: cancelling twice is an invalid transition.
	rec = ts.do(t, http.MethodPost, "/pickups/"+p.ID+"/cancel", ownerPair.AccessToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid status transition", parseEnvelope(t, rec).Message)
}
