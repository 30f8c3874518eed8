package handlers

import (
	"encoding/json"
	"net/http"

	"snapstudy/internal/infra"
	"snapstudy/internal/jobs"
	"snapstudy/internal/quota"
	"snapstudy/internal/requestlog"
)

type App struct {
	Logger    infra.Logger
	Jobs      *jobs.Orchestrator
	Quota     *quota.Limiter
	Log       requestlog.Sink
	AdminPass string
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]string{"error": code, "message": message})
}
