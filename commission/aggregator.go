/*
Package commission provides the running earnings aggregate.

PURPOSE:
  Accumulates completed-job totals for the compensation computation and
  goal-progress display. The aggregate is the single source of truth for
  earnings; it only ever grows (there is no "uncomplete job" operation,
  so there is no decrement path).

KEY CONCEPTS:
  - Data: cumulative-since-reset counters and totals
  - Completion: the slice of a completed job the aggregate cares about
  - Bucket rule: exactly ONE call-type bucket increments per completion
    (regular jobs increment none), and exactly once per job — the job
    store enforces complete-once before calling Apply

DAILY/WEEKLY LABELS:
  These totals are cumulative, not calendar-bucketed. "Today" and "this
  week" figures for display are derived separately from the job list by
  completion time (see jobs.Store.SummaryBetween). The two views can
  legitimately differ; the aggregate is what pay is computed from.

SEE ALSO:
  - comp/: Turns Data into an earnings figure
  - jobs/: Calls Apply exactly once per completion
*/
package commission

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/fieldquest/engine/core"
)

// =============================================================================
// AGGREGATE DATA
// =============================================================================

// Data is the running aggregate across completed jobs. Mutated only by
// Aggregator.Apply; persisted as one record.
type Data struct {
	// BaseRate is the hourly base rate; CommissionRate is the headline
	// serviceCalls percentage. Both informational, seeded at setup.
	BaseRate       core.Money      `json:"baseRate"`
	CommissionRate decimal.Decimal `json:"commissionRate"`

	JobsCompleted  int64 `json:"jobsCompleted"`
	EmergencyJobs  int64 `json:"emergencyJobs"`
	WeekendJobs    int64 `json:"weekendJobs"`
	AfterHoursJobs int64 `json:"afterHoursJobs"`
	HolidayJobs    int64 `json:"holidayJobs"`

	TotalRevenue core.Money `json:"totalRevenue"`
	TotalLabor   core.Money `json:"totalLabor"`
	TotalParts   core.Money `json:"totalParts"`

	WeeklyGoal core.Money `json:"weeklyGoal"`
	DailyGoal  core.Money `json:"dailyGoal"`
}

// DefaultData returns the aggregate as it exists before setup.
func DefaultData() Data {
	return Data{
		BaseRate:       core.NewMoneyFromInt(45),
		CommissionRate: decimal.NewFromInt(15),
		WeeklyGoal:     core.NewMoneyFromInt(1800),
		DailyGoal:      core.NewMoneyFromInt(360),
	}
}

// BucketFor returns the completed-job count for a call type.
// Regular jobs have no bucket; only the overall JobsCompleted counts them.
func (d Data) BucketFor(callType core.CallType) int64 {
	switch callType {
	case core.CallEmergency:
		return d.EmergencyJobs
	case core.CallWeekend:
		return d.WeekendJobs
	case core.CallAfterHours:
		return d.AfterHoursJobs
	case core.CallHoliday:
		return d.HolidayJobs
	default:
		return 0
	}
}

// =============================================================================
// COMPLETION EVENT
// =============================================================================

// Completion is what the aggregate records about a completed job.
// The job store builds one per completion; costs are the stored
// (post-markup) figures.
type Completion struct {
	JobID     core.JobID
	CallType  core.CallType
	LaborCost core.Money
	PartsCost core.Money
	TotalCost core.Money
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator owns the aggregate. Apply is the only mutation; there is no
// decrement or undo. Safe for concurrent use.
type Aggregator struct {
	mu   sync.RWMutex
	data Data
}

func NewAggregator(data Data) *Aggregator {
	return &Aggregator{data: data}
}

// Data returns a copy of the current aggregate.
func (a *Aggregator) Data() Data {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.data
}

// Replace swaps the aggregate wholesale. Used when reloading persisted
// state at startup.
func (a *Aggregator) Replace(data Data) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.data = data
}

// Apply folds one completed job into the aggregate. Exactly one
// call-type bucket increments; regular jobs increment none.
func (a *Aggregator) Apply(c Completion) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.data.JobsCompleted++
	switch c.CallType {
	case core.CallEmergency:
		a.data.EmergencyJobs++
	case core.CallWeekend:
		a.data.WeekendJobs++
	case core.CallAfterHours:
		a.data.AfterHoursJobs++
	case core.CallHoliday:
		a.data.HolidayJobs++
	}
	a.data.TotalRevenue = a.data.TotalRevenue.Add(c.TotalCost)
	a.data.TotalLabor = a.data.TotalLabor.Add(c.LaborCost)
	a.data.TotalParts = a.data.TotalParts.Add(c.PartsCost)
}

// SetGoals updates the revenue goal thresholds.
func (a *Aggregator) SetGoals(daily, weekly core.Money) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.data.DailyGoal = daily
	a.data.WeeklyGoal = weekly
}

// SetRates records the base hourly rate and headline commission rate for
// display. Informational only; earnings math reads company settings.
func (a *Aggregator) SetRates(baseRate core.Money, commissionRate decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.data.BaseRate = baseRate
	a.data.CommissionRate = commissionRate
}

// =============================================================================
// GOAL PROGRESS
// =============================================================================

// GoalProgress is a display ratio toward a revenue goal. Progress can
// exceed 1 when a goal is beaten; the UI clamps for rendering.
type GoalProgress struct {
	Achieved core.Money
	Goal     core.Money
	Ratio    decimal.Decimal
}

// ProgressToward computes achieved/goal, zero when the goal is unset.
func ProgressToward(achieved, goal core.Money) GoalProgress {
	p := GoalProgress{Achieved: achieved, Goal: goal, Ratio: decimal.Zero}
	if goal.IsPositive() {
		p.Ratio = achieved.Value.Div(goal.Value)
	}
	return p
}
