// Package jobs owns the generation job lifecycle: quota admission, the
// state machine from initiation through rendering, and the polling engine
// against the generation backend.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"snapstudy/internal/branding"
	"snapstudy/internal/domain"
	"snapstudy/internal/identity"
	"snapstudy/internal/infra"
	"snapstudy/internal/notegpt"
	"snapstudy/internal/quota"
	"snapstudy/internal/requestlog"
)

// Backend is the remote protocol surface the orchestrator drives. The
// notegpt client implements it; tests substitute fakes.
type Backend interface {
	Initiate(ctx context.Context, ident identity.Identity, topic, lang string) (string, error)
	FetchScript(ctx context.Context, ident identity.Identity, conversationID string) (*domain.Script, error)
	SaveScript(ctx context.Context, ident identity.Identity, conversationID string, script *domain.Script) error
	PollStatus(ctx context.Context, ident identity.Identity, conversationID string) (notegpt.RenderStatus, error)
}

// Options wires the orchestrator's collaborators and timing policy.
type Options struct {
	Backend    Backend
	Identities identity.Provider
	Quota      *quota.Limiter
	Store      Store
	Log        requestlog.Sink
	Logger     infra.Logger

	// CountryLookup annotates log entries with the caller's country; nil
	// leaves the field empty.
	CountryLookup func(ip string) string

	BrandSuffix string

	// SettleDelay is the blind wait between initiation and the script
	// fetch; the backend needs time to produce a script and exposes no
	// readiness signal.
	SettleDelay  time.Duration
	PollInterval time.Duration
	RenderBudget time.Duration

	// MaxConcurrent bounds in-flight background jobs; submissions beyond
	// the bound stay queued until a slot frees.
	MaxConcurrent int

	// Retention is how long terminal jobs stay queryable before eviction;
	// zero keeps them for the process lifetime.
	Retention time.Duration
}

// Orchestrator accepts topics, drives each job through the backend on its
// own goroutine and exposes job snapshots to pollers. It is the only
// component that mutates a job.
type Orchestrator struct {
	backend       Backend
	identities    identity.Provider
	quota         *quota.Limiter
	store         Store
	log           requestlog.Sink
	logger        infra.Logger
	countryLookup func(ip string) string

	brandSuffix  string
	settleDelay  time.Duration
	pollInterval time.Duration
	renderBudget time.Duration
	retention    time.Duration

	sem chan struct{}

	mu      sync.Mutex
	cancels map[string]context.CancelFunc

	sweepStop context.CancelFunc
}

// New constructs an orchestrator, applying defaults for any collaborator or
// timing knob left unset, and starts the retention sweeper when a retention
// window is configured.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		backend:       opts.Backend,
		identities:    opts.Identities,
		quota:         opts.Quota,
		store:         opts.Store,
		log:           opts.Log,
		logger:        opts.Logger,
		countryLookup: opts.CountryLookup,
		brandSuffix:   opts.BrandSuffix,
		settleDelay:   opts.SettleDelay,
		pollInterval:  opts.PollInterval,
		renderBudget:  opts.RenderBudget,
		retention:     opts.Retention,
		cancels:       make(map[string]context.CancelFunc),
	}
	if o.identities == nil {
		o.identities = identity.NewRotating()
	}
	if o.quota == nil {
		o.quota = quota.NewLimiter(3)
	}
	if o.store == nil {
		o.store = NewMemoryStore()
	}
	if o.log == nil {
		o.log = requestlog.NewMemory()
	}
	if o.brandSuffix == "" {
		o.brandSuffix = branding.DefaultSuffix
	}
	if o.settleDelay <= 0 {
		o.settleDelay = 7 * time.Second
	}
	if o.pollInterval <= 0 {
		o.pollInterval = 10 * time.Second
	}
	if o.renderBudget <= 0 {
		o.renderBudget = 5 * time.Minute
	}
	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	o.sem = make(chan struct{}, maxConcurrent)

	if o.retention > 0 {
		sweepCtx, stop := context.WithCancel(context.Background())
		o.sweepStop = stop
		go o.sweepLoop(sweepCtx)
	}
	return o
}

// Close stops the retention sweeper. In-flight jobs keep running.
func (o *Orchestrator) Close() {
	if o.sweepStop != nil {
		o.sweepStop()
	}
}

// Submit admits a topic for generation. It consults the quota first and
// fails fast with domain.ErrQuotaExceeded before any job is created; on
// success it returns the job id immediately while the work proceeds on a
// background goroutine.
func (o *Orchestrator) Submit(topic, clientID, locale string) (string, error) {
	if !o.quota.TryConsume(clientID) {
		o.logger.Info().Str("client_id", clientID).Msg("jobs: daily quota exhausted")
		return "", domain.ErrQuotaExceeded
	}

	job := domain.Job{
		ID:        uuid.NewString(),
		Topic:     topic,
		ClientID:  clientID,
		Locale:    locale,
		State:     domain.JobStateQueued,
		Progress:  "queued",
		CreatedAt: time.Now(),
	}
	o.store.Create(job)

	ctx, cancel := context.WithCancel(context.Background())
	o.mu.Lock()
	o.cancels[job.ID] = cancel
	o.mu.Unlock()

	o.logger.Info().Str("job_id", job.ID).Str("client_id", clientID).Str("topic", topic).Msg("jobs: submitted")
	go o.run(ctx, job.ID, topic, locale)
	return job.ID, nil
}

// GetStatus returns a read-only snapshot of the job, or domain.ErrNotFound.
// Safe to call at any time; never blocks on job progress.
func (o *Orchestrator) GetStatus(jobID string) (domain.Job, error) {
	return o.store.Get(jobID)
}

// Cancel signals the job's background task to stop. The signal is observed
// between suspension points; the job then terminates as Cancelled with no
// further remote calls. Terminal jobs return domain.ErrJobTerminal.
func (o *Orchestrator) Cancel(jobID string) error {
	job, err := o.store.Get(jobID)
	if err != nil {
		return err
	}
	if job.State.Terminal() {
		return domain.ErrJobTerminal
	}
	o.mu.Lock()
	cancel, ok := o.cancels[jobID]
	o.mu.Unlock()
	if ok {
		cancel()
	}
	return nil
}

func (o *Orchestrator) run(ctx context.Context, jobID, topic, locale string) {
	stage := domain.FailureInitiation
	defer o.release(jobID)
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().Str("job_id", jobID).Msgf("jobs: background task panicked: %v", r)
			o.fail(jobID, stage, fmt.Sprintf("panic: %v", r))
		}
	}()

	select {
	case o.sem <- struct{}{}:
	case <-ctx.Done():
		o.cancelled(jobID)
		return
	}
	defer func() { <-o.sem }()

	// One identity per job; the cookie correlates every call of the
	// attempt alongside the conversation id.
	ident := o.identities.NewIdentity()

	o.transition(jobID, domain.JobStateInitiating, "contacting generation backend")
	conversationID, err := o.backend.Initiate(ctx, ident, topic, locale)
	if err != nil {
		o.failOrCancel(ctx, jobID, domain.FailureInitiation, err)
		return
	}
	o.logger.Info().Str("job_id", jobID).Str("conversation_id", conversationID).Msg("jobs: generation initiated")

	o.transition(jobID, domain.JobStateAwaitingScript, "waiting for script generation")
	if !sleepCtx(ctx, o.settleDelay) {
		o.cancelled(jobID)
		return
	}

	stage = domain.FailureEdit
	o.transition(jobID, domain.JobStateEditing, "editing lesson script")
	script, err := o.backend.FetchScript(ctx, ident, conversationID)
	if err != nil {
		o.failOrCancel(ctx, jobID, domain.FailureEdit, err)
		return
	}
	branding.Apply(script, o.brandSuffix)
	if err := o.backend.SaveScript(ctx, ident, conversationID, script); err != nil {
		o.failOrCancel(ctx, jobID, domain.FailureEdit, err)
		return
	}

	stage = domain.FailureRender
	o.transition(jobID, domain.JobStateRendering, "rendering video")
	deadline := time.Now().Add(o.renderBudget)
	for {
		status, err := o.backend.PollStatus(ctx, ident, conversationID)
		if err != nil {
			o.failOrCancel(ctx, jobID, domain.FailureRender, err)
			return
		}
		switch status.State {
		case notegpt.RenderSuccess:
			o.succeed(jobID, script.Scenes, status.VideoURL)
			return
		case notegpt.RenderFailed:
			detail := "backend reported render failure"
			if status.Step != "" {
				detail += ": " + status.Step
			}
			o.fail(jobID, domain.FailureRender, detail)
			return
		}
		if status.Step != "" {
			o.progress(jobID, status.Step)
		}
		if !time.Now().Before(deadline) {
			o.timeout(jobID)
			return
		}
		if !sleepCtx(ctx, o.pollInterval) {
			o.cancelled(jobID)
			return
		}
	}
}

// transition moves the job forward. Invalid or post-terminal transitions
// are dropped silently: terminal states are sticky.
func (o *Orchestrator) transition(jobID string, to domain.JobState, note string) {
	_ = o.store.Update(jobID, func(job *domain.Job) {
		if !domain.ValidTransition(job.State, to) {
			return
		}
		job.State = to
		job.Progress = note
	})
}

func (o *Orchestrator) progress(jobID, step string) {
	_ = o.store.Update(jobID, func(job *domain.Job) {
		if job.State.Terminal() {
			return
		}
		job.Progress = step
	})
}

func (o *Orchestrator) succeed(jobID string, scenes []domain.Scene, videoURL string) {
	if o.finalize(jobID, domain.JobStateSucceeded, func(job *domain.Job) {
		job.Progress = "completed"
		job.Result = &domain.Result{Scenes: scenes, VideoURL: videoURL}
	}) {
		o.logger.Info().Str("job_id", jobID).Str("video_url", videoURL).Msg("jobs: succeeded")
	}
}

func (o *Orchestrator) fail(jobID string, category domain.FailureCategory, detail string) {
	if o.finalize(jobID, domain.JobStateFailed, func(job *domain.Job) {
		job.Progress = "failed"
		job.Failure = &domain.Failure{Category: category, Detail: detail}
	}) {
		o.logger.Warn().Str("job_id", jobID).Str("category", string(category)).Str("detail", detail).Msg("jobs: failed")
	}
}

func (o *Orchestrator) failOrCancel(ctx context.Context, jobID string, category domain.FailureCategory, err error) {
	if ctx.Err() != nil {
		o.cancelled(jobID)
		return
	}
	o.fail(jobID, category, err.Error())
}

func (o *Orchestrator) timeout(jobID string) {
	if o.finalize(jobID, domain.JobStateTimedOut, func(job *domain.Job) {
		job.Progress = "timed out"
		job.Failure = &domain.Failure{
			Category: domain.FailureTimeout,
			Detail:   fmt.Sprintf("render budget of %s exhausted", o.renderBudget),
		}
	}) {
		o.logger.Warn().Str("job_id", jobID).Msg("jobs: render budget exhausted")
	}
}

func (o *Orchestrator) cancelled(jobID string) {
	if o.finalize(jobID, domain.JobStateCancelled, func(job *domain.Job) {
		job.Progress = "cancelled"
		job.Failure = &domain.Failure{Category: domain.FailureCancelled, Detail: "cancelled by caller"}
	}) {
		o.logger.Info().Str("job_id", jobID).Msg("jobs: cancelled")
	}
}

// finalize performs the single transition into a terminal state: it stamps
// terminatedAt exactly once and records the log entry exactly once. Returns
// false when the job was already terminal.
func (o *Orchestrator) finalize(jobID string, to domain.JobState, apply func(*domain.Job)) bool {
	moved := false
	var entry domain.LogEntry
	_ = o.store.Update(jobID, func(job *domain.Job) {
		if !domain.ValidTransition(job.State, to) {
			return
		}
		job.State = to
		now := time.Now()
		job.TerminatedAt = &now
		if apply != nil {
			apply(job)
		}
		moved = true

		outcome := domain.OutcomeFailure
		if to == domain.JobStateSucceeded {
			outcome = domain.OutcomeSuccess
		}
		detail := ""
		if job.Failure != nil {
			detail = string(job.Failure.Category)
			if job.Failure.Detail != "" {
				detail += ": " + job.Failure.Detail
			}
		}
		entry = domain.LogEntry{
			Time:     now,
			ClientID: job.ClientID,
			Topic:    job.Topic,
			Outcome:  outcome,
			Detail:   detail,
		}
	})
	if !moved {
		return false
	}
	if o.countryLookup != nil {
		entry.Country = o.countryLookup(entry.ClientID)
	}
	if err := o.log.Record(context.Background(), entry); err != nil {
		o.logger.Error().Err(err).Str("job_id", jobID).Msg("jobs: record log entry failed")
	}
	return true
}

func (o *Orchestrator) release(jobID string) {
	o.mu.Lock()
	cancel, ok := o.cancels[jobID]
	delete(o.cancels, jobID)
	o.mu.Unlock()
	if ok {
		cancel()
	}
}

func (o *Orchestrator) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := o.store.SweepTerminal(time.Now().Add(-o.retention)); n > 0 {
				o.logger.Debug().Int("evicted", n).Msg("jobs: evicted terminal jobs")
			}
		}
	}
}

// sleepCtx waits for d, returning false if ctx is done first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
