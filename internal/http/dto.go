package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/RafatAiub/AmarBin-Backend/internal/domain"
	"github.com/RafatAiub/AmarBin-Backend/pkg/apiclient"
	"github.com/RafatAiub/AmarBin-Backend/pkg/httpx"
)

// decodeJSON reads a JSON request body into dst, writing the 400 itself on
// failure. Bodies are capped at 1 MiB; nothing here needs more.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// decodeJSONAllowEmpty is decodeJSON for endpoints where an empty body means
// "all defaults", like logout.
func decodeJSONAllowEmpty(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// queryInt parses an integer query parameter, falling back to def on absence
// or junk.
func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// clampPage normalizes 1-based page/limit values the same way the services
// do, so the echoed pagination matches what was actually queried.
func clampPage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func userInfo(a domain.Account) apiclient.UserInfo {
	return apiclient.UserInfo{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Role:      string(a.Role),
		LastLogin: a.LastLoginAt,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func tokenPair(p domain.TokenPair) apiclient.TokenPair {
	return apiclient.TokenPair{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		ExpiresIn:    p.ExpiresIn,
	}
}

func sessionInfo(t domain.RefreshToken) apiclient.SessionInfo {
	return apiclient.SessionInfo{
		ID:            t.ID,
		SourceAddress: t.SourceAddress,
		DeviceContext: t.DeviceContext,
		IssuedAt:      t.IssuedAt,
		ExpiresAt:     t.ExpiresAt,
	}
}

func loginRecordInfo(rec domain.LoginRecord) apiclient.LoginRecordInfo {
	return apiclient.LoginRecordInfo{
		At:            rec.At,
		SourceAddress: rec.SourceAddress,
		DeviceContext: rec.DeviceContext,
		Success:       rec.Success,
	}
}

func pickupInfo(p domain.PickupRequest) apiclient.PickupInfo {
	return apiclient.PickupInfo{
		ID:            p.ID,
		CustomerID:    p.CustomerID,
		AssigneeID:    p.AssigneeID,
		WasteType:     string(p.WasteType),
		QuantityKG:    p.QuantityKG,
		Address:       p.Address,
		Notes:         p.Notes,
		PreferredDate: p.PreferredDate,
		Status:        string(p.Status),
		ScheduledFor:  p.ScheduledFor,
		CompletedAt:   p.CompletedAt,
		CancelledAt:   p.CancelledAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
