package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldquest/engine/app"
	"github.com/fieldquest/engine/comp"
	"github.com/fieldquest/engine/core"
	"github.com/fieldquest/engine/jobs"
	"github.com/fieldquest/engine/persist/memory"
	"github.com/fieldquest/engine/timer"
	"github.com/fieldquest/engine/xp"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newApp(kv *memory.KV) (*app.App, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)}
	return app.New(kv, clock.now), clock
}

func onboarded(t *testing.T, a *app.App) {
	t.Helper()
	a.CreateUser("Alex", "alex@example.com", xp.Trade{ID: "hvac"})
	company := comp.Settings{
		Name: "Acme", Type: comp.PlanCommission,
		BaseHourlyRate: core.NewMoneyFromInt(48),
		Rates:          comp.CommissionRates{ServiceCalls: decimal.NewFromInt(15), Parts: decimal.NewFromInt(10)},
	}
	goals := app.DailyGoals{
		JobsPerDay:    4,
		HoursPerDay:   decimal.NewFromInt(8),
		RevenuePerDay: core.NewMoneyFromInt(600),
		XPPerDay:      300,
	}
	require.NoError(t, a.CompleteSetup(company, goals))
}

func createInput() jobs.CreateInput {
	return jobs.CreateInput{
		Title:     "Furnace tune-up",
		Client:    "J. Okafor",
		LaborCost: core.NewMoneyFromInt(100),
		PartsCost: core.NewMoneyFromInt(50),
	}
}

// =============================================================================
// ONBOARDING
// =============================================================================

func TestCompleteSetup_RequiresProfile(t *testing.T) {
	a, _ := newApp(memory.New())
	err := a.CompleteSetup(comp.Settings{Type: comp.PlanHourly}, app.DailyGoals{})
	assert.ErrorIs(t, err, core.ErrUserMissing)
}

func TestCompleteSetup_SeedsAggregateRatesAndGoals(t *testing.T) {
	// GIVEN: a fresh profile
	// WHEN: Completing setup with a 600/day revenue goal
	// THEN: aggregate carries the rate and daily/weekly (×5) goals,
	//       and the profile is marked set up

	a, _ := newApp(memory.New())
	onboarded(t, a)

	d := a.Agg.Data()
	assert.True(t, d.BaseRate.Equal(core.NewMoneyFromInt(48)))
	assert.True(t, d.CommissionRate.Equal(decimal.NewFromInt(15)))
	assert.True(t, d.DailyGoal.Equal(core.NewMoneyFromInt(600)))
	assert.True(t, d.WeeklyGoal.Equal(core.NewMoneyFromInt(3000)))

	user, ok := a.User()
	require.True(t, ok)
	assert.True(t, user.IsSetupComplete)
}

// =============================================================================
// END TO END: CREATE → COMPLETE → EARNINGS/XP
// =============================================================================

func TestCompletion_GrantsXPOnceEndToEnd(t *testing.T) {
	// GIVEN: an onboarded app and an emergency job (base 75, ×1.5 = 113)
	// WHEN: Creating then completing
	// THEN: the profile gains exactly 113 XP; creation alone grants none

	a, _ := newApp(memory.New())
	onboarded(t, a)

	in := createInput()
	in.CallType = core.CallEmergency
	job, err := a.Jobs.Create(in)
	require.NoError(t, err)
	require.Equal(t, int64(113), job.XPReward)

	user, _ := a.User()
	assert.Zero(t, user.TotalXP, "creation must not grant XP")

	_, err = a.Jobs.Complete(job.ID, nil)
	require.NoError(t, err)

	user, _ = a.User()
	assert.Equal(t, int64(113), user.TotalXP)
	assert.Equal(t, int64(1), user.Level)
}

func TestEarnings_CommissionPlanWithBonus(t *testing.T) {
	// GIVEN: labor 100 at 15%, parts 50 at 10%, one emergency completion
	// WHEN: Reading earnings
	// THEN: 15 + 5 + 50 = 70, labeled "Commission Earned"

	a, _ := newApp(memory.New())
	onboarded(t, a)

	in := createInput()
	in.CallType = core.CallEmergency
	job, _ := a.Jobs.Create(in)
	_, err := a.Jobs.Complete(job.ID, nil)
	require.NoError(t, err)

	amount, label := a.Earnings()
	assert.True(t, amount.Equal(core.NewMoneyFromInt(70)), "got %s", amount)
	assert.Equal(t, "Commission Earned", label)
}

func TestEarnings_BeforeSetupIsZero(t *testing.T) {
	a, _ := newApp(memory.New())
	amount, label := a.Earnings()
	assert.True(t, amount.IsZero())
	assert.Equal(t, "Revenue Generated", label)
}

func TestGoalProgress_TodayOnly(t *testing.T) {
	// GIVEN: goals of 4 jobs and 600 revenue per day; one 150 job done today
	// WHEN: Reading progress
	// THEN: jobs 0.25, revenue 0.25

	a, _ := newApp(memory.New())
	onboarded(t, a)

	job, _ := a.Jobs.Create(createInput())
	_, err := a.Jobs.Complete(job.ID, nil)
	require.NoError(t, err)

	ratios := a.GoalProgress()
	assert.True(t, ratios.Jobs.Equal(decimal.NewFromFloat(0.25)), "jobs ratio %s", ratios.Jobs)
	assert.True(t, ratios.Revenue.Equal(decimal.NewFromFloat(0.25)), "revenue ratio %s", ratios.Revenue)
	assert.True(t, ratios.XP.Equal(decimal.NewFromFloat(0.25)), "xp ratio %s", ratios.XP) // 75/300
}

func TestGoalProgress_NoGoalsIsAllZero(t *testing.T) {
	a, _ := newApp(memory.New())
	ratios := a.GoalProgress()
	assert.True(t, ratios.Jobs.IsZero())
	assert.True(t, ratios.Revenue.IsZero())
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func TestSaveLoad_FullStateRoundTrip(t *testing.T) {
	// GIVEN: an onboarded app with a completed job and a running timer
	// WHEN: Loading a second app from the same KV
	// THEN: profile XP, jobs, aggregate, goals, and timer all survive

	kv := memory.New()
	a, clock := newApp(kv)
	onboarded(t, a)

	done, _ := a.Jobs.Create(createInput())
	_, err := a.Jobs.Complete(done.ID, nil)
	require.NoError(t, err)

	running, _ := a.Jobs.Create(createInput())
	_, err = a.Jobs.StartTimer(running.ID)
	require.NoError(t, err)
	clock.advance(20 * time.Minute)
	require.NoError(t, a.Save(context.Background()))

	b := app.New(kv, clock.now)
	require.NoError(t, b.Load(context.Background()))

	user, ok := b.User()
	require.True(t, ok)
	assert.Equal(t, int64(75), user.TotalXP)

	assert.Equal(t, 2, b.Jobs.CountByStatus().All)
	assert.Equal(t, int64(1), b.Agg.Data().JobsCompleted)

	goals, ok := b.Goals()
	require.True(t, ok)
	assert.True(t, goals.RevenuePerDay.Equal(core.NewMoneyFromInt(600)))

	id, held := b.Timer.ActiveJobID()
	require.True(t, held)
	assert.Equal(t, running.ID, id)
	assert.Equal(t, 20*time.Minute, b.Timer.Elapsed())

	next, _ := b.Jobs.Create(createInput())
	assert.Equal(t, "JOB-0003", next.JobNumber, "numbering continues after reload")
}

func TestSaveLoad_MoneySurvivesWithExactPrecision(t *testing.T) {
	kv := memory.New()
	a, clock := newApp(kv)
	onboarded(t, a)

	in := createInput()
	in.LaborCost = core.MustParseMoney("123.45")
	in.PartsCost = core.MustParseMoney("0.10")
	job, err := a.Jobs.Create(in)
	require.NoError(t, err)
	require.NoError(t, a.Save(context.Background()))

	b := app.New(kv, clock.now)
	require.NoError(t, b.Load(context.Background()))

	got, err := b.Jobs.Get(job.ID)
	require.NoError(t, err)
	assert.True(t, got.LaborCost.Equal(core.MustParseMoney("123.45")))
	assert.True(t, got.TotalCost.Equal(core.MustParseMoney("123.55")))
}

func TestSave_ConcurrentWithCompletionsKeepsProfileConsistent(t *testing.T) {
	// GIVEN: completions granting XP while saves marshal the profile
	// WHEN: Both run concurrently (the profile is mutated in place by
	//       grants; Save must work on its own copy)
	// THEN: no race, and the final persisted profile carries every grant

	kv := memory.New()
	a, clock := newApp(kv)
	onboarded(t, a)

	const n = 50
	var ids []core.JobID
	for i := 0; i < n; i++ {
		job, err := a.Jobs.Create(createInput()) // 75 XP each
		require.NoError(t, err)
		ids = append(ids, job.ID)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for _, id := range ids {
			_, _ = a.Jobs.Complete(id, nil)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			_ = a.Save(context.Background())
		}
	}()
	wg.Wait()
	require.NoError(t, a.Save(context.Background()))

	b := app.New(kv, clock.now)
	require.NoError(t, b.Load(context.Background()))
	user, ok := b.User()
	require.True(t, ok)
	assert.Equal(t, int64(75*n), user.TotalXP)
	assert.Equal(t, user.TotalXP/1000+1, user.Level)
}

func TestSave_ClearsTimerKeyWhenIdle(t *testing.T) {
	// GIVEN: a saved running timer
	// WHEN: Stopping it and saving again, then loading fresh
	// THEN: no timer is restored

	kv := memory.New()
	a, clock := newApp(kv)
	onboarded(t, a)

	job, _ := a.Jobs.Create(createInput())
	a.Jobs.StartTimer(job.ID)
	require.NoError(t, a.Save(context.Background()))

	a.Jobs.StopTimer()
	require.NoError(t, a.Save(context.Background()))

	b := app.New(kv, clock.now)
	require.NoError(t, b.Load(context.Background()))
	assert.Equal(t, timer.StateIdle, b.Timer.State())
}

func TestLoad_EmptyStoreLeavesDefaults(t *testing.T) {
	a, _ := newApp(memory.New())
	require.NoError(t, a.Load(context.Background()))

	_, ok := a.User()
	assert.False(t, ok)
	assert.Equal(t, 0, a.Jobs.CountByStatus().All)
	assert.True(t, a.Agg.Data().DailyGoal.Equal(core.NewMoneyFromInt(360)), "stock goal survives")
}

// =============================================================================
// RESET
// =============================================================================

func TestReset_ReturnsToOutOfBoxState(t *testing.T) {
	// GIVEN: a fully populated app
	// WHEN: Resetting
	// THEN: profile, jobs, aggregate, and persisted records are all gone

	kv := memory.New()
	a, clock := newApp(kv)
	onboarded(t, a)
	job, _ := a.Jobs.Create(createInput())
	a.Jobs.Complete(job.ID, nil)

	require.NoError(t, a.Reset(context.Background()))

	_, ok := a.User()
	assert.False(t, ok)
	assert.Equal(t, 0, a.Jobs.CountByStatus().All)
	assert.Equal(t, int64(0), a.Agg.Data().JobsCompleted)
	_, ok = a.CompanySettings()
	assert.False(t, ok)

	// Nothing comes back from the KV either.
	b := app.New(kv, clock.now)
	require.NoError(t, b.Load(context.Background()))
	_, ok = b.User()
	assert.False(t, ok)
	assert.Equal(t, 0, b.Jobs.CountByStatus().All)

	first, _ := a.Jobs.Create(createInput())
	assert.Equal(t, "JOB-0001", first.JobNumber, "numbering restarts after reset")
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestUpdateSettings_KeepsRewardTableWhenOmitted(t *testing.T) {
	// GIVEN: default settings
	// WHEN: Updating preferences without a reward table
	// THEN: the existing table survives; job creation still scales XP

	a, _ := newApp(memory.New())
	onboarded(t, a)

	s := a.Settings()
	s.CallTypeRewards = nil
	s.Notifications.Enabled = false
	a.UpdateSettings(s)

	assert.False(t, a.Settings().Notifications.Enabled)
	require.NotNil(t, a.Settings().CallTypeRewards)

	in := createInput()
	in.CallType = core.CallHoliday
	job, err := a.Jobs.Create(in)
	require.NoError(t, err)
	assert.Equal(t, int64(150), job.XPReward) // 75 × 2.0
}
