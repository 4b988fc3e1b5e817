/*
Package app assembles the engine into one explicit application state.

PURPOSE:
  A single App struct owns the user profile, company settings, goals,
  app settings, the job store, the timer, and the commission aggregate.
  Nothing is a package-level global: tests build as many independent
  Apps as they like with no state bleed.

WIRING:
  - The job store reads company settings (parts markup) and the XP
    multiplier table through accessor callbacks into the App.
  - Completion grants XP through the App so the profile and its leveling
    invariant stay in one place.
  - Every mutation ends in a best-effort save of the touched state to
    the KV store. Save failures are logged and swallowed: the in-memory
    state is authoritative until the process dies.

STARTUP:
  app := app.New(kvStore, nil)
  if err := app.Load(ctx); err != nil { ... }   // absent keys are fine

SEE ALSO:
  - persist/: Record keys and the KV contract
  - api/: HTTP surface over this struct
*/
package app

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fieldquest/engine/commission"
	"github.com/fieldquest/engine/comp"
	"github.com/fieldquest/engine/core"
	"github.com/fieldquest/engine/jobs"
	"github.com/fieldquest/engine/persist"
	"github.com/fieldquest/engine/timer"
	"github.com/fieldquest/engine/xp"
)

// =============================================================================
// APP STATE
// =============================================================================

// App is the process-local application state. One logical writer; the
// mutex covers the profile/settings fields read by store callbacks.
type App struct {
	mu       sync.RWMutex
	user     *xp.User
	company  *comp.Settings
	goals    *DailyGoals
	settings Settings

	Jobs  *jobs.Store
	Timer *timer.Machine
	Agg   *commission.Aggregator

	kv  persist.KV
	now func() time.Time
}

// New builds a fully wired App. Pass nil for now to use the wall clock.
func New(kv persist.KV, now func() time.Time) *App {
	if now == nil {
		now = time.Now
	}
	a := &App{
		settings: DefaultSettings(),
		Timer:    timer.New(now),
		Agg:      commission.NewAggregator(commission.DefaultData()),
		kv:       kv,
		now:      now,
	}
	a.Jobs = jobs.NewStore(jobs.Config{
		Aggregator:  a.Agg,
		Timer:       a.Timer,
		Settings:    a.companySnapshot,
		Multipliers: a.multipliers,
		GrantXP:     a.grantXP,
		OnChange:    a.persistAll,
		Now:         now,
	})
	return a
}

func (a *App) companySnapshot() *comp.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.company == nil {
		return nil
	}
	c := *a.company
	return &c
}

func (a *App) multipliers() xp.MultiplierTable {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings.CallTypeRewards
}

func (a *App) grantXP(amount int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.user != nil {
		a.user.GrantXP(amount)
	}
}

// =============================================================================
// PROFILE
// =============================================================================

// User returns a copy of the profile, ok=false before sign-in.
func (a *App) User() (xp.User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.user == nil {
		return xp.User{}, false
	}
	return *a.user, true
}

// CreateUser starts a fresh level-1 profile.
func (a *App) CreateUser(name, email string, trade xp.Trade) xp.User {
	u := xp.NewUser(core.UserID(uuid.NewString()), name, email, trade)
	u.JoinDate = a.now().UTC().Format("2006-01-02")

	a.mu.Lock()
	a.user = u
	out := *u
	a.mu.Unlock()

	a.persistAll()
	return out
}

// CompleteSetup records onboarding: company settings, goals, and the
// aggregate's display rates and goal thresholds (weekly = daily × 5).
func (a *App) CompleteSetup(company comp.Settings, goals DailyGoals) error {
	a.mu.Lock()
	if a.user == nil {
		a.mu.Unlock()
		return core.ErrUserMissing
	}
	a.user.IsSetupComplete = true
	c := company
	g := goals
	a.company = &c
	a.goals = &g
	a.mu.Unlock()

	a.Agg.SetRates(company.BaseHourlyRate, company.Rates.ServiceCalls)
	a.Agg.SetGoals(goals.RevenuePerDay, goals.RevenuePerDay.Mul(decimal.NewFromInt(5)))

	a.persistAll()
	return nil
}

// =============================================================================
// SETTINGS AND GOALS
// =============================================================================

func (a *App) CompanySettings() (comp.Settings, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.company == nil {
		return comp.Settings{}, false
	}
	return *a.company, true
}

func (a *App) UpdateCompanySettings(s comp.Settings) {
	a.mu.Lock()
	a.company = &s
	a.mu.Unlock()
	a.persistAll()
}

func (a *App) Goals() (DailyGoals, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.goals == nil {
		return DailyGoals{}, false
	}
	return *a.goals, true
}

func (a *App) UpdateGoals(g DailyGoals) {
	a.mu.Lock()
	a.goals = &g
	a.mu.Unlock()
	a.persistAll()
}

func (a *App) Settings() Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

func (a *App) UpdateSettings(s Settings) {
	a.mu.Lock()
	if s.CallTypeRewards == nil {
		s.CallTypeRewards = a.settings.CallTypeRewards
	}
	a.settings = s
	a.mu.Unlock()
	a.persistAll()
}

// =============================================================================
// EARNINGS AND PROGRESS
// =============================================================================

// Earnings computes the current figure under the configured plan, with
// its display label. Zero with an "hourly" label before setup.
func (a *App) Earnings() (core.Money, string) {
	company := a.companySnapshot()
	amount := comp.ComputeEarnings(company, a.Agg.Data())
	label := comp.PlanHourly.EarningsLabel()
	if company != nil {
		label = company.Type.EarningsLabel()
	}
	return amount, label
}

// TodaySummary derives today's display totals from the completed-job
// list. Independent of the cumulative aggregate by design.
func (a *App) TodaySummary() jobs.Summary {
	now := a.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return a.Jobs.SummaryBetween(start, start.AddDate(0, 0, 1))
}

// GoalProgress computes today's progress ratios against the daily
// goals. All zero when goals are unset.
func (a *App) GoalProgress() GoalRatios {
	goals, ok := a.Goals()
	if !ok {
		return GoalRatios{Jobs: decimal.Zero, Hours: decimal.Zero, Revenue: decimal.Zero, XP: decimal.Zero}
	}
	sum := a.TodaySummary()
	hoursWorked := decimal.NewFromFloat(sum.Worked.Hours())
	return GoalRatios{
		Jobs:    ratio(decimal.NewFromInt(int64(sum.JobsCompleted)), decimal.NewFromInt(goals.JobsPerDay)),
		Hours:   ratio(hoursWorked, goals.HoursPerDay),
		Revenue: ratio(sum.Revenue.Value, goals.RevenuePerDay.Value),
		XP:      ratio(decimal.NewFromInt(sum.XPEarned), decimal.NewFromInt(goals.XPPerDay)),
	}
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// persistAll is the fire-and-forget save hook: failures are logged, the
// in-memory state stands.
func (a *App) persistAll() {
	if a.kv == nil {
		return
	}
	if err := a.Save(context.Background()); err != nil {
		log.Printf("save failed (state kept in memory): %v", err)
	}
}

// Save writes every record. The timer record exists only while a timer
// does; otherwise its key is removed.
func (a *App) Save(ctx context.Context) error {
	// The profile is mutated in place by XP grants; copy it under the
	// lock so marshaling never races a concurrent completion. The other
	// pointers are replaced wholesale, never mutated.
	a.mu.RLock()
	var user *xp.User
	if a.user != nil {
		u := *a.user
		user = &u
	}
	company := a.company
	goals := a.goals
	settings := a.settings
	a.mu.RUnlock()

	jobList, counter := a.Jobs.Snapshot()

	records := []struct {
		key   string
		value any
		skip  bool
	}{
		{persist.KeyUser, user, user == nil},
		{persist.KeyJobs, jobList, false},
		{persist.KeyCommission, a.Agg.Data(), false},
		{persist.KeySettings, settings, false},
		{persist.KeyCompany, company, company == nil},
		{persist.KeyGoals, goals, goals == nil},
		{persist.KeyCounter, counter, false},
	}
	for _, r := range records {
		if r.skip {
			continue
		}
		data, err := json.Marshal(r.value)
		if err != nil {
			return err
		}
		if err := a.kv.Save(ctx, r.key, data); err != nil {
			return err
		}
	}

	if snap := a.Timer.Snapshot(); snap != nil {
		data, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		return a.kv.Save(ctx, persist.KeyTimer, data)
	}
	return a.kv.Clear(ctx, persist.KeyTimer)
}

// Load restores persisted state. Absent keys leave defaults in place;
// a malformed record is an error (the caller decides whether to reset).
func (a *App) Load(ctx context.Context) error {
	if a.kv == nil {
		return nil
	}

	var user xp.User
	if ok, err := a.loadInto(ctx, persist.KeyUser, &user); err != nil {
		return err
	} else if ok {
		a.mu.Lock()
		a.user = &user
		a.mu.Unlock()
	}

	var jobList []jobs.Job
	jobsOK, err := a.loadInto(ctx, persist.KeyJobs, &jobList)
	if err != nil {
		return err
	}
	var counter int64 = 1
	if _, err := a.loadInto(ctx, persist.KeyCounter, &counter); err != nil {
		return err
	}
	if jobsOK || counter > 1 {
		a.Jobs.Restore(jobList, counter)
	}

	var data commission.Data
	if ok, err := a.loadInto(ctx, persist.KeyCommission, &data); err != nil {
		return err
	} else if ok {
		a.Agg.Replace(data)
	}

	var settings Settings
	if ok, err := a.loadInto(ctx, persist.KeySettings, &settings); err != nil {
		return err
	} else if ok {
		if settings.CallTypeRewards == nil {
			settings.CallTypeRewards = xp.DefaultMultipliers()
		}
		a.mu.Lock()
		a.settings = settings
		a.mu.Unlock()
	}

	var company comp.Settings
	if ok, err := a.loadInto(ctx, persist.KeyCompany, &company); err != nil {
		return err
	} else if ok {
		a.mu.Lock()
		a.company = &company
		a.mu.Unlock()
	}

	var goals DailyGoals
	if ok, err := a.loadInto(ctx, persist.KeyGoals, &goals); err != nil {
		return err
	} else if ok {
		a.mu.Lock()
		a.goals = &goals
		a.mu.Unlock()
	}

	var snap timer.Snapshot
	if ok, err := a.loadInto(ctx, persist.KeyTimer, &snap); err != nil {
		return err
	} else if ok {
		a.Timer.Restore(&snap)
	}
	return nil
}

func (a *App) loadInto(ctx context.Context, key string, dst any) (bool, error) {
	data, ok, err := a.kv.Load(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// Reset clears every persisted record and returns the App to its
// out-of-box state.
func (a *App) Reset(ctx context.Context) error {
	if a.kv != nil {
		if err := a.kv.Clear(ctx, persist.AllKeys()...); err != nil {
			return err
		}
	}

	a.mu.Lock()
	a.user = nil
	a.company = nil
	a.goals = nil
	a.settings = DefaultSettings()
	a.mu.Unlock()

	a.Timer.Restore(nil)
	a.Agg.Replace(commission.DefaultData())
	a.Jobs.Restore(nil, 1)
	return nil
}
