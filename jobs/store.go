/*
store.go - Job lifecycle store

PURPOSE:
  CRUD over the job collection, sequential JOB-NNNN numbering, the
  totalCost invariant, and completion orchestration:

    Complete → stop timer if this job's → stamp endTime/duration
             → apply commission aggregate → grant stored XP → save

COMPLETION IS EXACTLY-ONCE:
  A second Complete on the same job returns ErrJobAlreadyCompleted and
  mutates nothing. Revenue and XP are realized a single time.

TIMER COUPLING:
  The store never reaches into the timer's state and the timer never
  touches jobs. The store subscribes to timer.Stopped events and stamps
  endTime/actualDuration when one arrives. Complete stops the timer
  BEFORE taking the store lock, so the synchronous event delivery cannot
  deadlock.

PERSISTENCE:
  Every mutation ends with the OnChange hook (fire-and-forget save, the
  app layer wires it). Failures there are logged by the app layer; the
  in-memory mutation stands.

SEE ALSO:
  - job.go: Record and payload types
  - timer/: Stopped event source
  - commission/: Aggregate applied on completion
*/
package jobs

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fieldquest/engine/commission"
	"github.com/fieldquest/engine/comp"
	"github.com/fieldquest/engine/core"
	"github.com/fieldquest/engine/timer"
	"github.com/fieldquest/engine/xp"
)

// =============================================================================
// STORE
// =============================================================================

// Config wires the store's collaborators. Aggregator and Timer are
// required; the rest have working defaults.
type Config struct {
	Aggregator *commission.Aggregator
	Timer      *timer.Machine

	// Settings supplies company settings at creation time (parts
	// markup). May return nil before onboarding completes.
	Settings func() *comp.Settings

	// Multipliers supplies the single XP multiplier table.
	Multipliers func() xp.MultiplierTable

	// GrantXP receives the stored reward on completion. May be nil
	// when no user profile exists yet.
	GrantXP func(amount int64)

	// OnChange fires after every mutation (persistence hook).
	OnChange func()

	Now   func() time.Time
	NewID func() core.JobID
}

// Store owns the job collection. All mutation goes through it.
type Store struct {
	mu      sync.RWMutex
	jobs    map[core.JobID]*Job
	order   []core.JobID // creation order, for stable listing
	counter int64        // next job number

	agg         *commission.Aggregator
	timer       *timer.Machine
	settings    func() *comp.Settings
	multipliers func() xp.MultiplierTable
	grantXP     func(int64)
	onChange    func()
	now         func() time.Time
	newID       func() core.JobID
}

func NewStore(cfg Config) *Store {
	s := &Store{
		jobs:        make(map[core.JobID]*Job),
		counter:     1,
		agg:         cfg.Aggregator,
		timer:       cfg.Timer,
		settings:    cfg.Settings,
		multipliers: cfg.Multipliers,
		grantXP:     cfg.GrantXP,
		onChange:    cfg.OnChange,
		now:         cfg.Now,
		newID:       cfg.NewID,
	}
	if s.settings == nil {
		s.settings = func() *comp.Settings { return nil }
	}
	if s.multipliers == nil {
		s.multipliers = xp.DefaultMultipliers
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() core.JobID { return core.JobID(uuid.NewString()) }
	}
	if s.timer != nil {
		s.timer.Subscribe(s.handleTimerStopped)
	}
	return s
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// =============================================================================
// CREATE / READ / UPDATE / DELETE
// =============================================================================

// Create validates and adds a pending job. The XP reward is computed
// from the RAW costs (multiplier applied here, once); parts markup then
// inflates the stored parts cost.
func (s *Store) Create(in CreateInput) (Job, error) {
	if err := validate(in); err != nil {
		return Job{}, err
	}
	if in.Priority == "" {
		in.Priority = core.PriorityMedium
	}
	if in.CallType == "" {
		in.CallType = core.CallRegular
	}

	reward := xp.CreationReward(in.LaborCost, in.PartsCost, in.CallType, s.multipliers())
	storedParts := s.settings().ApplyPartsMarkup(in.PartsCost)

	s.mu.Lock()
	job := &Job{
		ID:            s.newID(),
		JobNumber:     fmt.Sprintf("JOB-%04d", s.counter),
		Title:         in.Title,
		Client:        in.Client,
		Location:      in.Location,
		Description:   in.Description,
		Priority:      in.Priority,
		Status:        core.StatusPending,
		CallType:      in.CallType,
		EstimatedTime: in.EstimatedTime,
		ScheduledTime: in.ScheduledTime,
		XPReward:      reward,
		LaborCost:     in.LaborCost,
		PartsCost:     storedParts,
		TotalCost:     in.LaborCost.Add(storedParts),
		Photos:        []string{},
		VoiceNotes:    []string{},
		GPSLocation:   in.GPSLocation,
	}
	s.counter++
	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)
	out := *job
	s.mu.Unlock()

	s.changed()
	return out, nil
}

func validate(in CreateInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return &core.ValidationError{Field: "title", Message: "required"}
	}
	if strings.TrimSpace(in.Client) == "" {
		return &core.ValidationError{Field: "client", Message: "required"}
	}
	if !in.LaborCost.IsPositive() {
		return &core.ValidationError{Field: "laborCost", Message: "must be greater than zero"}
	}
	if in.PartsCost.IsNegative() {
		return &core.ValidationError{Field: "partsCost", Message: "cannot be negative"}
	}
	if in.Priority != "" && !in.Priority.Valid() {
		return &core.ValidationError{Field: "priority", Message: "unknown priority"}
	}
	if in.CallType != "" && !in.CallType.Valid() {
		return &core.ValidationError{Field: "callType", Message: "unknown call type"}
	}
	return nil
}

// Get returns a copy of the job.
func (s *Store) Get(id core.JobID) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, core.ErrJobNotFound
	}
	return *job, nil
}

// ApplyUpdate patches a job and recomputes totalCost. Costs entered
// here are stored as-is: markup and XP belong to creation only.
func (s *Store) ApplyUpdate(id core.JobID, u Update) (Job, error) {
	s.mu.Lock()
	job, ok := s.jobs[id]
	if !ok {
		s.mu.Unlock()
		return Job{}, core.ErrJobNotFound
	}

	if u.Title != nil {
		job.Title = *u.Title
	}
	if u.Client != nil {
		job.Client = *u.Client
	}
	if u.Location != nil {
		job.Location = *u.Location
	}
	if u.Description != nil {
		job.Description = *u.Description
	}
	if u.Priority != nil {
		job.Priority = *u.Priority
	}
	if u.CallType != nil {
		job.CallType = *u.CallType
	}
	if u.EstimatedTime != nil {
		job.EstimatedTime = *u.EstimatedTime
	}
	if u.ScheduledTime != nil {
		job.ScheduledTime = *u.ScheduledTime
	}
	if u.LaborCost != nil {
		job.LaborCost = *u.LaborCost
	}
	if u.PartsCost != nil {
		job.PartsCost = *u.PartsCost
	}
	if u.Photos != nil {
		job.Photos = append([]string{}, (*u.Photos)...)
	}
	if u.VoiceNotes != nil {
		job.VoiceNotes = append([]string{}, (*u.VoiceNotes)...)
	}
	if u.GPSLocation != nil {
		job.GPSLocation = u.GPSLocation
	}

	// Invariant: totalCost is derived, never independently mutated.
	job.TotalCost = job.LaborCost.Add(job.PartsCost)

	out := *job
	s.mu.Unlock()

	s.changed()
	return out, nil
}

// Delete removes a job. Completed jobs' realized revenue stays in the
// aggregate; there is no decrement path.
func (s *Store) Delete(id core.JobID) error {
	s.mu.Lock()
	if _, ok := s.jobs[id]; !ok {
		s.mu.Unlock()
		return core.ErrJobNotFound
	}
	delete(s.jobs, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.changed()
	return nil
}

// List returns jobs matching the filter in creation order.
func (s *Store) List(filter StatusFilter) []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Job, 0, len(s.order))
	for _, id := range s.order {
		if job := s.jobs[id]; filter.matches(job.Status) {
			out = append(out, *job)
		}
	}
	return out
}

// CountByStatus tallies jobs per status for the filter bar.
func (s *Store) CountByStatus() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c Counts
	for _, job := range s.jobs {
		c.All++
		switch job.Status {
		case core.StatusPending:
			c.Pending++
		case core.StatusInProgress:
			c.InProgress++
		case core.StatusCompleted:
			c.Completed++
		}
	}
	return c
}

// =============================================================================
// TIMER INTEGRATION
// =============================================================================

// StartTimer begins timing a job and moves it to in-progress.
// Exclusivity is enforced by the timer machine; a conflict leaves the
// job untouched.
func (s *Store) StartTimer(id core.JobID) (Job, error) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	if !ok {
		s.mu.RUnlock()
		return Job{}, core.ErrJobNotFound
	}
	if job.Status == core.StatusCompleted {
		s.mu.RUnlock()
		return Job{}, core.ErrJobAlreadyCompleted
	}
	s.mu.RUnlock()

	if err := s.timer.Start(id); err != nil {
		return Job{}, err
	}

	s.mu.Lock()
	job, ok = s.jobs[id]
	if !ok {
		// Deleted between the status check and here. Release the timer
		// we just took (outside the lock: Stop re-enters this store).
		s.mu.Unlock()
		s.timer.Stop()
		return Job{}, core.ErrJobNotFound
	}
	if job.Status == core.StatusCompleted {
		s.mu.Unlock()
		s.timer.Stop()
		return Job{}, core.ErrJobAlreadyCompleted
	}
	if job.Status == core.StatusPending {
		job.Status = core.StatusInProgress
	}
	if job.StartTime == nil {
		ms := s.now().UnixMilli()
		job.StartTime = &ms
	}
	out := *job
	s.mu.Unlock()

	s.changed()
	return out, nil
}

// PauseTimer freezes the active timer. No-op when nothing is running.
func (s *Store) PauseTimer() {
	s.timer.Pause()
	s.changed()
}

// StopTimer ends the active timer. The Stopped event stamps the job.
// No-op (ok=false) when no timer exists.
func (s *Store) StopTimer() (timer.Stopped, bool) {
	return s.timer.Stop()
}

// handleTimerStopped is the Stopped subscriber: the store, as sole
// owner of job mutation, stamps endTime and actualDuration.
func (s *Store) handleTimerStopped(ev timer.Stopped) {
	s.mu.Lock()
	job, ok := s.jobs[ev.JobID]
	if !ok || job.Status == core.StatusCompleted {
		// Completion already finalized its own stamps.
		s.mu.Unlock()
		return
	}
	end := ev.EndedAt.UnixMilli()
	dur := ev.Elapsed.Milliseconds()
	job.EndTime = &end
	job.ActualDuration = &dur
	s.mu.Unlock()

	s.changed()
}

// =============================================================================
// COMPLETION
// =============================================================================

// Complete finishes a job exactly once: stops its timer if it holds
// one, stamps endTime, finalizes actualDuration (explicit value wins,
// then timer elapsed, then whatever an earlier stop recorded), applies
// the commission aggregate, and grants the stored XP reward.
func (s *Store) Complete(id core.JobID, explicitDuration *time.Duration) (Job, error) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	if !ok {
		s.mu.RUnlock()
		return Job{}, core.ErrJobNotFound
	}
	if job.Status == core.StatusCompleted {
		s.mu.RUnlock()
		return Job{}, core.ErrJobAlreadyCompleted
	}
	s.mu.RUnlock()

	// Stop the timer before taking the write lock: the Stopped event is
	// delivered synchronously back into this store.
	var timerElapsed *time.Duration
	if active, held := s.timer.ActiveJobID(); held && active == id {
		if ev, stopped := s.timer.Stop(); stopped {
			timerElapsed = &ev.Elapsed
		}
	}

	s.mu.Lock()
	job, ok = s.jobs[id]
	if !ok {
		s.mu.Unlock()
		return Job{}, core.ErrJobNotFound
	}
	if job.Status == core.StatusCompleted {
		s.mu.Unlock()
		return Job{}, core.ErrJobAlreadyCompleted
	}

	job.Status = core.StatusCompleted
	end := s.now().UnixMilli()
	job.EndTime = &end

	switch {
	case explicitDuration != nil:
		ms := explicitDuration.Milliseconds()
		job.ActualDuration = &ms
	case timerElapsed != nil:
		ms := timerElapsed.Milliseconds()
		job.ActualDuration = &ms
	}
	// Else: keep what an earlier stop recorded; a job never timed stays
	// without a duration.

	done := *job
	s.mu.Unlock()

	s.agg.Apply(commission.Completion{
		JobID:     done.ID,
		CallType:  done.CallType,
		LaborCost: done.LaborCost,
		PartsCost: done.PartsCost,
		TotalCost: done.TotalCost,
	})
	if s.grantXP != nil {
		// The reward was multiplied at creation; grant it verbatim.
		s.grantXP(done.XPReward)
	}

	s.changed()
	return done, nil
}

// =============================================================================
// WINDOW SUMMARIES
// =============================================================================

// SummaryBetween derives display totals from jobs completed in
// [from, to), keyed by end time. Independent of the cumulative
// commission aggregate by design.
func (s *Store) SummaryBetween(from, to time.Time) Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum Summary
	sum.Revenue = core.ZeroMoney()
	sum.Labor = core.ZeroMoney()
	sum.Parts = core.ZeroMoney()
	for _, job := range s.jobs {
		if job.Status != core.StatusCompleted || job.EndTime == nil {
			continue
		}
		end := time.UnixMilli(*job.EndTime)
		if end.Before(from) || !end.Before(to) {
			continue
		}
		sum.JobsCompleted++
		sum.Revenue = sum.Revenue.Add(job.TotalCost)
		sum.Labor = sum.Labor.Add(job.LaborCost)
		sum.Parts = sum.Parts.Add(job.PartsCost)
		sum.XPEarned += job.XPReward
		if job.ActualDuration != nil {
			sum.Worked += time.Duration(*job.ActualDuration) * time.Millisecond
		}
	}
	sum.WorkedMS = sum.Worked.Milliseconds()
	return sum
}

// =============================================================================
// PERSISTENCE SUPPORT
// =============================================================================

// Snapshot returns all jobs (creation order) and the number counter.
func (s *Store) Snapshot() ([]Job, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Job, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.jobs[id])
	}
	return out, s.counter
}

// Restore replaces the collection wholesale from persisted state.
// Jobs are kept in slice order; the counter is clamped so restored
// numbering never collides.
func (s *Store) Restore(jobsIn []Job, counter int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = make(map[core.JobID]*Job, len(jobsIn))
	s.order = make([]core.JobID, 0, len(jobsIn))
	for i := range jobsIn {
		job := jobsIn[i]
		if job.Photos == nil {
			job.Photos = []string{}
		}
		if job.VoiceNotes == nil {
			job.VoiceNotes = []string{}
		}
		s.jobs[job.ID] = &job
		s.order = append(s.order, job.ID)
	}
	if counter < 1 {
		counter = 1
	}
	s.counter = counter
}
