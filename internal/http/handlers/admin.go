package handlers

import (
	"crypto/subtle"
	"net/http"
	"strconv"

	"snapstudy/internal/domain"
)

const defaultLogLimit = 100

type adminLogsResponse struct {
	Total     int64             `json:"total"`
	Succeeded int64             `json:"succeeded"`
	Failed    int64             `json:"failed"`
	Logs      []domain.LogEntry `json:"logs"`
}

// AdminLogs returns the recent request log plus summary counters. Access is
// gated by the shared admin password in the pass query parameter.
func (a *App) AdminLogs(w http.ResponseWriter, r *http.Request) {
	pass := r.URL.Query().Get("pass")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.AdminPass)) != 1 {
		a.error(w, http.StatusForbidden, "forbidden", "invalid credentials")
		return
	}

	limit := defaultLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	summary, err := a.Log.Summary(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: log summary failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load logs")
		return
	}
	entries, err := a.Log.Recent(r.Context(), limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: recent logs failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load logs")
		return
	}
	if entries == nil {
		entries = []domain.LogEntry{}
	}

	a.json(w, http.StatusOK, adminLogsResponse{
		Total:     summary.Total,
		Succeeded: summary.Succeeded,
		Failed:    summary.Failed,
		Logs:      entries,
	})
}
