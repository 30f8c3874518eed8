package handlers

import (
	"net/http"

	"snapstudy/internal/middleware"
)

func (a *App) QuotaStatus(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.ClientIP(r)
	a.json(w, http.StatusOK, map[string]int{
		"limit":     a.Quota.Limit(),
		"remaining": a.Quota.Remaining(clientID),
	})
}
