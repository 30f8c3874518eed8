package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"snapstudy/internal/domain"
	"snapstudy/internal/middleware"
)

const maxTopicLength = 500

type videoGenerateRequest struct {
	Topic  string `json:"topic"`
	Locale string `json:"locale"`
}

type videoAcceptedResponse struct {
	JobID          string `json:"job_id"`
	State          string `json:"state"`
	RemainingQuota int    `json:"remaining_quota"`
}

type videoStatusResponse struct {
	JobID     string          `json:"job_id"`
	Topic     string          `json:"topic"`
	State     string          `json:"state"`
	Progress  string          `json:"progress,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Result    *domain.Result  `json:"result,omitempty"`
	Failure   *domain.Failure `json:"failure,omitempty"`
	Message   string          `json:"message,omitempty"`
}

func (a *App) VideosGenerate(w http.ResponseWriter, r *http.Request) {
	var req videoGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "topic is required")
		return
	}
	if len(req.Topic) > maxTopicLength {
		a.error(w, http.StatusBadRequest, "bad_request", "topic too long")
		return
	}
	locale := req.Locale
	if locale == "" {
		locale = middleware.LocaleFromContext(r.Context())
	}

	clientID := middleware.ClientIP(r)
	jobID, err := a.Jobs.Submit(req.Topic, clientID, locale)
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) {
			a.error(w, http.StatusTooManyRequests, "rate_limited",
				"daily generation limit reached, come back tomorrow")
			return
		}
		a.Logger.Error().Err(err).Msg("handlers: submit failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to accept generation request")
		return
	}

	a.json(w, http.StatusAccepted, videoAcceptedResponse{
		JobID:          jobID,
		State:          string(domain.JobStateQueued),
		RemainingQuota: a.Quota.Remaining(clientID),
	})
}

func (a *App) VideoStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, err := a.Jobs.GetStatus(jobID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}

	resp := videoStatusResponse{
		JobID:     job.ID,
		Topic:     job.Topic,
		State:     string(job.State),
		Progress:  job.Progress,
		CreatedAt: job.CreatedAt,
		Result:    job.Result,
		Failure:   job.Failure,
	}
	if job.Failure != nil {
		resp.Message = failureMessage(job.Failure.Category)
	}
	a.json(w, http.StatusOK, resp)
}

func (a *App) VideoCancel(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	err := a.Jobs.Cancel(jobID)
	switch {
	case err == nil:
		a.json(w, http.StatusAccepted, map[string]string{"job_id": jobID, "state": "cancelling"})
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "job not found")
	case errors.Is(err, domain.ErrJobTerminal):
		a.error(w, http.StatusConflict, "conflict", "job already finished")
	default:
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("handlers: cancel failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to cancel job")
	}
}

// failureMessage maps a failure category to wording safe to show end users.
func failureMessage(category domain.FailureCategory) string {
	switch category {
	case domain.FailureQuotaExceeded:
		return "Daily limit reached. Come back tomorrow."
	case domain.FailureTimeout:
		return "The video is taking longer than expected. It may still complete on the provider side; try submitting again later."
	case domain.FailureCancelled:
		return "Generation was cancelled."
	default:
		return "Something went wrong while generating your video. Please try again."
	}
}
