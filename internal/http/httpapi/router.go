package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"snapstudy/internal/http/handlers"
	"snapstudy/internal/middleware"
)

// Options tunes the router's protective middleware.
type Options struct {
	// BurstLimit is the per-IP request cap per BurstWindow; zero disables
	// the burst limiter.
	BurstLimit     int
	BurstWindow    time.Duration
	AllowedOrigins []string
	DefaultLocale  string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.Locale(opts.DefaultLocale),
	)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(opts.AllowedOrigins))
	}
	if opts.BurstLimit > 0 {
		window := opts.BurstWindow
		if window <= 0 {
			window = time.Minute
		}
		r.Use(middleware.RateLimit(opts.BurstLimit, window))
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/quota", app.QuotaStatus)

	r.Route("/v1/videos", func(r chi.Router) {
		r.Post("/", app.VideosGenerate)
		r.Get("/{job_id}", app.VideoStatus)
		r.Post("/{job_id}/cancel", app.VideoCancel)
	})

	r.Get("/v1/admin/logs", app.AdminLogs)

	return r
}
