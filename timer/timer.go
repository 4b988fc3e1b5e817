/*
Package timer provides the single-active-timer state machine for job
time tracking.

PURPOSE:
  Tracks working time for at most ONE job at a time. The machine owns
  the exclusivity invariant itself: starting a timer for job B while job
  A holds it is rejected here, not left to the caller's buttons.

STATES:
  Idle    - no timer exists
  Running - timer active for one job
  Paused  - same job, clock frozen; paused time is excluded from elapsed

TRANSITIONS:
  Start(jobID):  Idle → Running. Same-job Start while Paused resumes.
                 Different-job Start while active → TimerConflictError.
  Pause():       Running → Paused. No-op otherwise.
  Stop():        Running/Paused → Idle. Computes
                 elapsed = now − start − pausedDuration and emits a
                 Stopped event. Stop with no timer is a no-op, NOT an
                 error.

EVENTS:
  The machine never touches jobs. It emits Stopped{JobID, Elapsed,
  EndedAt} to subscribers; the job store is the sole owner of job
  mutation and stamps endTime/actualDuration when it receives one.

DISPLAY TICK:
  Tick runs a 1-second loop invoking a callback with the current elapsed
  value: live while Running, frozen while Paused, zero when Idle.
  Cancelled via context on teardown.

SEE ALSO:
  - jobs/: Subscribes to Stopped events
  - core/errors.go: TimerConflictError
*/
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/fieldquest/engine/core"
)

// =============================================================================
// STATES AND EVENTS
// =============================================================================

type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

// Stopped is emitted when a timer stops. Elapsed excludes paused time.
type Stopped struct {
	JobID   core.JobID
	Elapsed time.Duration
	EndedAt time.Time
}

// Snapshot is the persisted form of an in-flight timer. Written only
// while a timer exists; the record is cleared on stop.
type Snapshot struct {
	JobID          core.JobID `json:"jobId"`
	StartTime      int64      `json:"startTime"`      // epoch ms
	IsRunning      bool       `json:"isRunning"`
	PausedDuration int64      `json:"pausedDuration"` // cumulative ms
}

// =============================================================================
// MACHINE
// =============================================================================

type active struct {
	jobID          core.JobID
	startTime      time.Time
	isRunning      bool
	pausedDuration time.Duration
	pausedAt       time.Time // valid while paused
}

// Machine is the global timer. Safe for concurrent use; all methods
// take the lock.
type Machine struct {
	mu     sync.Mutex
	now    func() time.Time
	active *active
	subs   []func(Stopped)
}

// New creates an idle machine. Pass nil to use the wall clock; tests
// inject a fake.
func New(now func() time.Time) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{now: now}
}

// Subscribe registers a Stopped listener. Listeners run synchronously
// on the stopping goroutine, after the machine has returned to Idle.
func (m *Machine) Subscribe(fn func(Stopped)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// Start begins (or resumes) timing jobID.
//
// Exclusivity is enforced HERE: if a different job's timer is running or
// paused, Start returns a TimerConflictError and nothing changes.
func (m *Machine) Start(jobID core.JobID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		m.active = &active{
			jobID:     jobID,
			startTime: m.now(),
			isRunning: true,
		}
		return nil
	}

	if m.active.jobID != jobID {
		return &core.TimerConflictError{
			RequestedJobID: jobID,
			ActiveJobID:    m.active.jobID,
		}
	}

	// Same job: resume from pause, no-op if already running.
	if !m.active.isRunning {
		m.active.pausedDuration += m.now().Sub(m.active.pausedAt)
		m.active.isRunning = true
	}
	return nil
}

// Pause freezes the clock. Valid only from Running; no-op otherwise.
func (m *Machine) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil || !m.active.isRunning {
		return
	}
	m.active.isRunning = false
	m.active.pausedAt = m.now()
}

// Stop ends the active timer and emits a Stopped event. With no active
// timer it is a no-op returning ok=false.
func (m *Machine) Stop() (Stopped, bool) {
	m.mu.Lock()
	if m.active == nil {
		m.mu.Unlock()
		return Stopped{}, false
	}

	now := m.now()
	a := m.active
	if !a.isRunning {
		a.pausedDuration += now.Sub(a.pausedAt)
	}
	ev := Stopped{
		JobID:   a.jobID,
		Elapsed: now.Sub(a.startTime) - a.pausedDuration,
		EndedAt: now,
	}
	m.active = nil
	subs := m.subs
	m.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
	return ev, true
}

// =============================================================================
// QUERIES
// =============================================================================

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.active == nil:
		return StateIdle
	case m.active.isRunning:
		return StateRunning
	default:
		return StatePaused
	}
}

// ActiveJobID reports which job holds the timer, if any.
func (m *Machine) ActiveJobID() (core.JobID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return "", false
	}
	return m.active.jobID, true
}

// Elapsed is the display value: live while running, frozen while
// paused, zero when idle.
func (m *Machine) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return 0
	}
	ref := m.now()
	if !m.active.isRunning {
		ref = m.active.pausedAt
	}
	return ref.Sub(m.active.startTime) - m.active.pausedDuration
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Snapshot captures the in-flight timer for persistence, nil when idle.
func (m *Machine) Snapshot() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return nil
	}
	paused := m.active.pausedDuration
	if !m.active.isRunning {
		// The snapshot format carries no pausedAt; fold the current
		// pause stretch into the cumulative figure.
		paused += m.now().Sub(m.active.pausedAt)
	}
	return &Snapshot{
		JobID:          m.active.jobID,
		StartTime:      m.active.startTime.UnixMilli(),
		IsRunning:      m.active.isRunning,
		PausedDuration: paused.Milliseconds(),
	}
}

// Restore reinstates a persisted timer. A nil snapshot clears to Idle.
// A paused snapshot resumes its pause stretch from now, so time spent
// offline does not count as worked time.
func (m *Machine) Restore(s *Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s == nil {
		m.active = nil
		return
	}
	m.active = &active{
		jobID:          s.JobID,
		startTime:      time.UnixMilli(s.StartTime),
		isRunning:      s.IsRunning,
		pausedDuration: time.Duration(s.PausedDuration) * time.Millisecond,
	}
	if !s.IsRunning {
		m.active.pausedAt = m.now()
	}
}

// =============================================================================
// DISPLAY TICK
// =============================================================================

// Tick invokes fn with the current elapsed value every interval until
// ctx is cancelled. Runs on the calling goroutine; callers usually
// launch it with go.
func (m *Machine) Tick(ctx context.Context, interval time.Duration, fn func(elapsed time.Duration)) {
	if interval <= 0 {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn(m.Elapsed())
		}
	}
}
