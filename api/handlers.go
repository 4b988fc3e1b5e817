/*
handlers.go - HTTP API handlers for the earnings and experience engine

PURPOSE:
  Exposes the engine via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to domain logic.

ENDPOINTS:
  Jobs:
    GET    /api/jobs                 List jobs (?status= filter)
    POST   /api/jobs                 Create job
    GET    /api/jobs/{id}            Get job
    PUT    /api/jobs/{id}            Update job
    DELETE /api/jobs/{id}            Delete job
    POST   /api/jobs/{id}/complete   Complete job

  Timer:
    GET    /api/timer                Current timer state
    POST   /api/timer/start          Start/resume timing a job
    POST   /api/timer/pause          Pause
    POST   /api/timer/stop           Stop

  Earnings:
    GET    /api/earnings             Computed earnings + aggregate
    GET    /api/goals/progress       Today's progress vs daily goals

  Profile & setup:
    GET    /api/user                 Profile with derived leveling
    POST   /api/user                 Create profile
    POST   /api/setup                Complete onboarding
    GET    /api/trades               Trade preset catalog

  Settings:
    GET/PUT /api/settings            App settings
    GET/PUT /api/settings/company    Compensation settings
    GET/PUT /api/goals               Daily goals

  Admin:
    POST   /api/reset                Wipe all state (dev only)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Job or profile not found
  - 409: Timer conflict, already-completed job
  - 500: Persistence errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fieldquest/engine/app"
	"github.com/fieldquest/engine/comp"
	"github.com/fieldquest/engine/core"
	"github.com/fieldquest/engine/jobs"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	App *app.App
}

func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// =============================================================================
// JOB HANDLERS
// =============================================================================

// ListJobs returns jobs in creation order, with per-status counts.
// GET /api/jobs?status=pending|in-progress|completed|all
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	filter := jobs.StatusFilter(r.URL.Query().Get("status"))
	writeJSON(w, http.StatusOK, JobListDTO{
		Jobs:   h.App.Jobs.List(filter),
		Counts: h.App.Jobs.CountByStatus(),
	})
}

// CreateJob adds a pending job.
// POST /api/jobs
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	job, err := h.App.Jobs.Create(jobs.CreateInput{
		Title:         req.Title,
		Client:        req.Client,
		Location:      req.Location,
		Description:   req.Description,
		Priority:      core.Priority(req.Priority),
		CallType:      core.CallType(req.CallType),
		EstimatedTime: req.EstimatedTime,
		ScheduledTime: req.ScheduledTime,
		LaborCost:     req.LaborCost,
		PartsCost:     req.PartsCost,
		GPSLocation:   req.GPSLocation,
	})
	if err != nil {
		writeDomainError(w, "Failed to create job", err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

// GetJob returns a single job.
// GET /api/jobs/{id}
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := core.JobID(chi.URLParam(r, "id"))
	job, err := h.App.Jobs.Get(id)
	if err != nil {
		writeDomainError(w, "Failed to get job", err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// UpdateJob patches a job. totalCost is recomputed server-side.
// PUT /api/jobs/{id}
func (h *Handler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	id := core.JobID(chi.URLParam(r, "id"))

	var req UpdateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	u := jobs.Update{
		Title:         req.Title,
		Client:        req.Client,
		Location:      req.Location,
		Description:   req.Description,
		EstimatedTime: req.EstimatedTime,
		ScheduledTime: req.ScheduledTime,
		LaborCost:     req.LaborCost,
		PartsCost:     req.PartsCost,
		Photos:        req.Photos,
		VoiceNotes:    req.VoiceNotes,
		GPSLocation:   req.GPSLocation,
	}
	if req.Priority != nil {
		p := core.Priority(*req.Priority)
		if !p.Valid() {
			writeError(w, http.StatusBadRequest, "Unknown priority", nil)
			return
		}
		u.Priority = &p
	}
	if req.CallType != nil {
		c := core.CallType(*req.CallType)
		if !c.Valid() {
			writeError(w, http.StatusBadRequest, "Unknown call type", nil)
			return
		}
		u.CallType = &c
	}

	job, err := h.App.Jobs.ApplyUpdate(id, u)
	if err != nil {
		writeDomainError(w, "Failed to update job", err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// DeleteJob removes a job. Realized revenue stays in the aggregate.
// DELETE /api/jobs/{id}
func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id := core.JobID(chi.URLParam(r, "id"))
	if err := h.App.Jobs.Delete(id); err != nil {
		writeDomainError(w, "Failed to delete job", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CompleteJob finishes a job exactly once. An optional durationMs in the
// body overrides the timer-derived figure.
// POST /api/jobs/{id}/complete
func (h *Handler) CompleteJob(w http.ResponseWriter, r *http.Request) {
	id := core.JobID(chi.URLParam(r, "id"))

	var req CompleteJobRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	var explicit *time.Duration
	if req.DurationMS != nil {
		d := time.Duration(*req.DurationMS) * time.Millisecond
		explicit = &d
	}

	job, err := h.App.Jobs.Complete(id, explicit)
	if err != nil {
		writeDomainError(w, "Failed to complete job", err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// =============================================================================
// TIMER HANDLERS
// =============================================================================

// GetTimer reports the current timer state.
// GET /api/timer
func (h *Handler) GetTimer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.timerDTO())
}

func (h *Handler) timerDTO() TimerDTO {
	dto := TimerDTO{
		State:     string(h.App.Timer.State()),
		ElapsedMS: h.App.Timer.Elapsed().Milliseconds(),
	}
	if id, ok := h.App.Timer.ActiveJobID(); ok {
		dto.JobID = &id
	}
	return dto
}

// StartTimer begins (or resumes) timing a job. A different active job
// yields 409 and changes nothing.
// POST /api/timer/start
func (h *Handler) StartTimer(w http.ResponseWriter, r *http.Request) {
	var req StartTimerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.JobID == "" {
		writeError(w, http.StatusBadRequest, "jobId is required", nil)
		return
	}

	if _, err := h.App.Jobs.StartTimer(req.JobID); err != nil {
		writeDomainError(w, "Failed to start timer", err)
		return
	}
	writeJSON(w, http.StatusOK, h.timerDTO())
}

// PauseTimer freezes the clock. No-op when nothing is running.
// POST /api/timer/pause
func (h *Handler) PauseTimer(w http.ResponseWriter, r *http.Request) {
	h.App.Jobs.PauseTimer()
	writeJSON(w, http.StatusOK, h.timerDTO())
}

// StopTimer ends the active timer; the job keeps its stamped duration
// but stays in-progress until completed. No timer is a no-op, not an
// error.
// POST /api/timer/stop
func (h *Handler) StopTimer(w http.ResponseWriter, r *http.Request) {
	h.App.Jobs.StopTimer()
	writeJSON(w, http.StatusOK, h.timerDTO())
}

// =============================================================================
// EARNINGS AND GOALS
// =============================================================================

// GetEarnings returns the computed earnings figure, its label, the
// cumulative aggregate, and today's display summary.
// GET /api/earnings
func (h *Handler) GetEarnings(w http.ResponseWriter, r *http.Request) {
	amount, label := h.App.Earnings()
	writeJSON(w, http.StatusOK, EarningsDTO{
		Amount: amount,
		Label:  label,
		Data:   h.App.Agg.Data(),
		Today:  h.App.TodaySummary(),
	})
}

// GetGoalProgress reports today's ratios against the daily goals.
// GET /api/goals/progress
func (h *Handler) GetGoalProgress(w http.ResponseWriter, r *http.Request) {
	goals, _ := h.App.Goals()
	writeJSON(w, http.StatusOK, GoalProgressDTO{
		Goals:  goals,
		Ratios: h.App.GoalProgress(),
		Today:  h.App.TodaySummary(),
	})
}

// =============================================================================
// PROFILE AND SETUP
// =============================================================================

// GetUser returns the profile with derived leveling fields.
// GET /api/user
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.App.User()
	if !ok {
		writeError(w, http.StatusNotFound, "No user profile", core.ErrUserMissing)
		return
	}
	writeJSON(w, http.StatusOK, UserDTO{User: user, XPToNextLevel: user.XPToNextLevel()})
}

// CreateUser starts a fresh level-1 profile.
// POST /api/user
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	user := h.App.CreateUser(req.Name, req.Email, req.Trade)
	writeJSON(w, http.StatusCreated, UserDTO{User: user, XPToNextLevel: user.XPToNextLevel()})
}

// CompleteSetup finishes onboarding. The client sends either full
// company settings or a trade preset reference the server expands.
// POST /api/setup
func (h *Handler) CompleteSetup(w http.ResponseWriter, r *http.Request) {
	var req SetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var company comp.Settings
	switch {
	case req.Company != nil:
		company = *req.Company
	case req.TradeID != "":
		td := comp.TradeDefaultsFor(req.TradeID)
		if td == nil {
			writeError(w, http.StatusBadRequest, "Unknown trade", nil)
			return
		}
		plan := comp.PlanType(req.PlanType)
		if plan == "" {
			plan = comp.PlanHourly
		}
		if !plan.Valid() {
			writeError(w, http.StatusBadRequest, "Unknown plan type", nil)
			return
		}
		company = comp.SettingsFromTrade(td.Name, plan, *td)
	default:
		writeError(w, http.StatusBadRequest, "company or tradeId is required", nil)
		return
	}

	if err := h.App.CompleteSetup(company, req.Goals); err != nil {
		writeDomainError(w, "Failed to complete setup", err)
		return
	}
	user, _ := h.App.User()
	writeJSON(w, http.StatusOK, UserDTO{User: user, XPToNextLevel: user.XPToNextLevel()})
}

// ListTrades returns the trade preset catalog for the setup UI.
// GET /api/trades
func (h *Handler) ListTrades(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, comp.TradeCatalog)
}

// =============================================================================
// SETTINGS
// =============================================================================

// GetSettings returns the app settings.
// GET /api/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.App.Settings())
}

// UpdateSettings replaces the app settings wholesale.
// PUT /api/settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var s app.Settings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.App.UpdateSettings(s)
	writeJSON(w, http.StatusOK, h.App.Settings())
}

// GetCompanySettings returns the compensation settings, 404 before setup.
// GET /api/settings/company
func (h *Handler) GetCompanySettings(w http.ResponseWriter, r *http.Request) {
	company, ok := h.App.CompanySettings()
	if !ok {
		writeError(w, http.StatusNotFound, "Setup not completed", core.ErrSettingsMissing)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

// UpdateCompanySettings replaces the compensation settings.
// PUT /api/settings/company
func (h *Handler) UpdateCompanySettings(w http.ResponseWriter, r *http.Request) {
	var s comp.Settings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !s.Type.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown plan type", nil)
		return
	}
	h.App.UpdateCompanySettings(s)
	writeJSON(w, http.StatusOK, s)
}

// GetGoals returns the daily goals, 404 before setup.
// GET /api/goals
func (h *Handler) GetGoals(w http.ResponseWriter, r *http.Request) {
	goals, ok := h.App.Goals()
	if !ok {
		writeError(w, http.StatusNotFound, "Goals not configured", core.ErrSettingsMissing)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

// UpdateGoals replaces the daily goals.
// PUT /api/goals
func (h *Handler) UpdateGoals(w http.ResponseWriter, r *http.Request) {
	var g app.DailyGoals
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.App.UpdateGoals(g)
	writeJSON(w, http.StatusOK, g)
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset wipes every record and returns the engine to its out-of-box
// state. Dev convenience; keep it off production routers.
// POST /api/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.App.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case core.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, core.ErrTimerActive), errors.Is(err, core.ErrJobAlreadyCompleted):
		writeError(w, http.StatusConflict, message, err)
	case core.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
