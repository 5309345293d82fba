package http

import (
	"net/http"

	"github.com/RafatAiub/AmarBin-Backend/internal/domain"
	"github.com/RafatAiub/AmarBin-Backend/internal/service"
	"github.com/RafatAiub/AmarBin-Backend/pkg/apiclient"
	"github.com/RafatAiub/AmarBin-Backend/pkg/httpx"
)

// PickupsHandler serves the /pickups surface. Role gates sit in the router;
// ownership and transition rules live in the service.
type PickupsHandler struct {
	Pickups *service.PickupService
}

// HandleCreate opens a new pickup request for the calling customer.
func (h *PickupsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req apiclient.CreatePickupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pickup, err := h.Pickups.Create(r.Context(), service.CreatePickupInput{
		CustomerID:    p.Account.ID,
		WasteType:     domain.WasteType(req.WasteType),
		QuantityKG:    req.QuantityKG,
		Address:       req.Address,
		Notes:         req.Notes,
		PreferredDate: req.PreferredDate,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.Success(w, http.StatusCreated, "pickup requested", pickupInfo(pickup))
}

// HandleList returns a filtered page of requests. Customers only ever see
// their own; the filters come straight from the query string.
func (h *PickupsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	page, limit := clampPage(queryInt(r, "page", 1), queryInt(r, "limit", 0))
	items, total, err := h.Pickups.List(r.Context(), p.Account, service.ListPickupsInput{
		Status:    r.URL.Query().Get("status"),
		WasteType: r.URL.Query().Get("waste_type"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := apiclient.PickupPage{
		Items: make([]apiclient.PickupInfo, 0, len(items)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for _, item := range items {
		out.Items = append(out.Items, pickupInfo(item))
	}
	httpx.Success(w, http.StatusOK, "ok", out)
}

// HandleGet returns a single request by id.
func (h *PickupsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	pickup, err := h.Pickups.Get(r.Context(), p.Account, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.Success(w, http.StatusOK, "ok", pickupInfo(pickup))
}

// HandleUpdate patches a pending request owned by the caller.
func (h *PickupsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req apiclient.UpdatePickupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := service.UpdatePickupInput{
		QuantityKG:    req.QuantityKG,
		Address:       req.Address,
		Notes:         req.Notes,
		PreferredDate: req.PreferredDate,
	}
	if req.WasteType != nil {
		waste := domain.WasteType(*req.WasteType)
		in.WasteType = &waste
	}

	pickup, err := h.Pickups.Update(r.Context(), p.Account, r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.Success(w, http.StatusOK, "pickup updated", pickupInfo(pickup))
}

// HandleAssign schedules a request onto an employee. Admin only.
func (h *PickupsHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	var req apiclient.AssignPickupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.EmployeeID == "" {
		httpx.Error(w, http.StatusBadRequest, "employee_id is required")
		return
	}

	pickup, err := h.Pickups.Assign(r.Context(), r.PathValue("id"), req.EmployeeID, req.ScheduledFor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.Success(w, http.StatusOK, "pickup assigned", pickupInfo(pickup))
}

// HandleStatus moves a request to in_progress or completed.
func (h *PickupsHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req apiclient.UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pickup, err := h.Pickups.UpdateStatus(r.Context(), p.Account, r.PathValue("id"), domain.PickupStatus(req.Status))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.Success(w, http.StatusOK, "status updated", pickupInfo(pickup))
}

// HandleCancel aborts a request that has not started yet.
func (h *PickupsHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	pickup, err := h.Pickups.Cancel(r.Context(), p.Account, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.Success(w, http.StatusOK, "pickup cancelled", pickupInfo(pickup))
}

// HandleDelete removes a request outright. Admin only.
func (h *PickupsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Pickups.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.Success(w, http.StatusOK, "pickup deleted", nil)
}

// HandleStats returns request counts per status. Admin only.
func (h *PickupsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Pickups.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make(apiclient.StatsResponse, len(counts))
	for status, n := range counts {
		out[string(status)] = n
	}
	httpx.Success(w, http.StatusOK, "ok", out)
}
