/*
Package jobs owns the job collection and its lifecycle.

PURPOSE:
  The job store is the single owner of job mutation. Everything that
  changes a job — creation, edits, timer stamps, completion — flows
  through here, so the totalCost invariant and the complete-exactly-once
  rule are enforced in one place.

KEY CONCEPTS IN THIS FILE (job.go):
  - Job: The full job record, including financials and timing
  - CreateInput / Update: Operator-facing payloads
  - StatusFilter / Counts: List filtering consumed by the UI

INVARIANTS:
  1. totalCost == laborCost + partsCost after every mutation. It is
     recomputed, never independently set.
  2. Lifecycle only moves forward: pending → in-progress → completed.
  3. Parts markup and the XP multiplier are applied at creation only.
  4. Photos and voice notes are empty slices when absent, never nil;
     GPS location is a nil pointer when absent.

SEE ALSO:
  - store.go: The store operating on these records
  - timer/: Supplies elapsed durations via Stopped events
*/
package jobs

import (
	"time"

	"github.com/fieldquest/engine/core"
)

// =============================================================================
// JOB RECORD
// =============================================================================

// Job is one unit of field work. Costs are stored post-markup; XPReward
// is stored post-multiplier.
type Job struct {
	ID          core.JobID     `json:"id"`
	JobNumber   string         `json:"jobNumber"`
	Title       string         `json:"title"`
	Client      string         `json:"client"`
	Location    string         `json:"location,omitempty"`
	Description string         `json:"description,omitempty"`
	Priority    core.Priority  `json:"priority"`
	Status      core.JobStatus `json:"status"`
	CallType    core.CallType  `json:"callType"`

	EstimatedTime string `json:"estimatedTime,omitempty"`
	ScheduledTime string `json:"scheduledTime,omitempty"`

	XPReward  int64      `json:"xpReward"`
	LaborCost core.Money `json:"laborCost"`
	PartsCost core.Money `json:"partsCost"`
	TotalCost core.Money `json:"totalCost"`

	StartTime *int64 `json:"startTime,omitempty"` // epoch ms
	EndTime   *int64 `json:"endTime,omitempty"`   // epoch ms
	// ActualDuration is worked milliseconds, paused time excluded.
	// Nil when the job never had a timer.
	ActualDuration *int64 `json:"actualDuration,omitempty"`

	Photos      []string       `json:"photos"`
	VoiceNotes  []string       `json:"voiceNotes"`
	GPSLocation *core.GeoPoint `json:"gpsLocation,omitempty"`
}

// =============================================================================
// PAYLOADS
// =============================================================================

// CreateInput is the operator's job-creation payload. Costs are the raw
// figures entered; markup and XP are derived during Create.
type CreateInput struct {
	Title         string
	Client        string
	Location      string
	Description   string
	Priority      core.Priority
	CallType      core.CallType
	EstimatedTime string
	ScheduledTime string
	LaborCost     core.Money
	PartsCost     core.Money
	GPSLocation   *core.GeoPoint
}

// Update carries optional field changes. Nil means "leave unchanged".
// totalCost is recomputed after every update regardless of which fields
// were touched.
type Update struct {
	Title         *string
	Client        *string
	Location      *string
	Description   *string
	Priority      *core.Priority
	CallType      *core.CallType
	EstimatedTime *string
	ScheduledTime *string
	LaborCost     *core.Money
	PartsCost     *core.Money
	Photos        *[]string
	VoiceNotes    *[]string
	GPSLocation   *core.GeoPoint
}

// =============================================================================
// FILTERING
// =============================================================================

// StatusFilter selects jobs for listing. Empty means all.
type StatusFilter string

const (
	FilterAll        StatusFilter = "all"
	FilterPending    StatusFilter = StatusFilter(core.StatusPending)
	FilterInProgress StatusFilter = StatusFilter(core.StatusInProgress)
	FilterCompleted  StatusFilter = StatusFilter(core.StatusCompleted)
)

func (f StatusFilter) matches(s core.JobStatus) bool {
	return f == "" || f == FilterAll || string(f) == string(s)
}

// Counts are per-status job tallies for the filter bar.
type Counts struct {
	All        int `json:"all"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

// =============================================================================
// WINDOW SUMMARY
// =============================================================================

// Summary aggregates completed jobs inside a calendar window, keyed by
// completion (end) time. This is the display-side "today / this week"
// figure; pay is computed from the cumulative commission aggregate.
type Summary struct {
	JobsCompleted int           `json:"jobsCompleted"`
	Revenue       core.Money    `json:"revenue"`
	Labor         core.Money    `json:"labor"`
	Parts         core.Money    `json:"parts"`
	XPEarned      int64         `json:"xpEarned"`
	Worked        time.Duration `json:"-"`
	WorkedMS      int64         `json:"workedMs"`
}
