/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY ON THE WIRE:
  Monetary fields arrive and leave as JSON strings ("249.99") so no
  precision is lost crossing the boundary. core.Money handles both
  directions through its JSON methods.

VALIDATION:
  Validation is done in the domain layer, not in DTOs. DTOs are pure
  data carriers; handlers translate ValidationError to 400.

SEE ALSO:
  - handlers.go: Uses these types
  - server.go: Router setup and middleware
*/
package api

import (
	"github.com/fieldquest/engine/app"
	"github.com/fieldquest/engine/commission"
	"github.com/fieldquest/engine/comp"
	"github.com/fieldquest/engine/core"
	"github.com/fieldquest/engine/jobs"
	"github.com/fieldquest/engine/xp"
)

// =============================================================================
// JOBS
// =============================================================================

// CreateJobRequest is the operator's job-creation payload. Costs are the
// raw entered figures; markup and the XP reward are derived server-side.
type CreateJobRequest struct {
	Title         string         `json:"title"`
	Client        string         `json:"client"`
	Location      string         `json:"location,omitempty"`
	Description   string         `json:"description,omitempty"`
	Priority      string         `json:"priority,omitempty"`
	CallType      string         `json:"callType,omitempty"`
	EstimatedTime string         `json:"estimatedTime,omitempty"`
	ScheduledTime string         `json:"scheduledTime,omitempty"`
	LaborCost     core.Money     `json:"laborCost"`
	PartsCost     core.Money     `json:"partsCost"`
	GPSLocation   *core.GeoPoint `json:"gpsLocation,omitempty"`
}

// UpdateJobRequest patches a job. Absent fields stay unchanged; totalCost
// is always recomputed server-side and cannot be set directly.
type UpdateJobRequest struct {
	Title         *string        `json:"title,omitempty"`
	Client        *string        `json:"client,omitempty"`
	Location      *string        `json:"location,omitempty"`
	Description   *string        `json:"description,omitempty"`
	Priority      *string        `json:"priority,omitempty"`
	CallType      *string        `json:"callType,omitempty"`
	EstimatedTime *string        `json:"estimatedTime,omitempty"`
	ScheduledTime *string        `json:"scheduledTime,omitempty"`
	LaborCost     *core.Money    `json:"laborCost,omitempty"`
	PartsCost     *core.Money    `json:"partsCost,omitempty"`
	Photos        *[]string      `json:"photos,omitempty"`
	VoiceNotes    *[]string      `json:"voiceNotes,omitempty"`
	GPSLocation   *core.GeoPoint `json:"gpsLocation,omitempty"`
}

// CompleteJobRequest optionally overrides the worked duration.
type CompleteJobRequest struct {
	DurationMS *int64 `json:"durationMs,omitempty"`
}

// JobListDTO is the list response with the filter-bar tallies.
type JobListDTO struct {
	Jobs   []jobs.Job  `json:"jobs"`
	Counts jobs.Counts `json:"counts"`
}

// =============================================================================
// TIMER
// =============================================================================

// TimerDTO is the current timer state for display.
type TimerDTO struct {
	State     string      `json:"state"`
	JobID     *core.JobID `json:"jobId,omitempty"`
	ElapsedMS int64       `json:"elapsedMs"`
}

// StartTimerRequest names the job to time.
type StartTimerRequest struct {
	JobID core.JobID `json:"jobId"`
}

// =============================================================================
// EARNINGS AND GOALS
// =============================================================================

// EarningsDTO carries the computed figure and its plan-specific label.
type EarningsDTO struct {
	Amount core.Money      `json:"amount"`
	Label  string          `json:"label"`
	Data   commission.Data `json:"commission"`
	Today  jobs.Summary    `json:"today"`
}

// GoalProgressDTO reports today's ratios next to the goals themselves.
type GoalProgressDTO struct {
	Goals  app.DailyGoals `json:"goals"`
	Ratios app.GoalRatios `json:"ratios"`
	Today  jobs.Summary   `json:"today"`
}

// =============================================================================
// USER AND SETUP
// =============================================================================

// CreateUserRequest starts a profile.
type CreateUserRequest struct {
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Trade xp.Trade `json:"trade"`
}

// UserDTO adds derived leveling fields to the profile.
type UserDTO struct {
	xp.User
	XPToNextLevel int64 `json:"xpToNextLevel"`
}

// SetupRequest finishes onboarding: either a full settings object, or a
// trade preset reference the server expands.
type SetupRequest struct {
	Company  *comp.Settings `json:"company,omitempty"`
	TradeID  string         `json:"tradeId,omitempty"`
	PlanType string         `json:"planType,omitempty"`
	Goals    app.DailyGoals `json:"goals"`
}

// =============================================================================
// MISC
// =============================================================================

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
