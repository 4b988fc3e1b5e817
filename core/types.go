/*
Package core provides the shared domain types for the field-service engine.

PURPOSE:
  This package contains the primitives every other package builds on:
  exact-precision money, job classification enums, and type-safe
  identifiers. It has no dependencies on the stores or the API layer.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A currency amount backed by decimal.Decimal
  - CallType: Job classification driving bonuses and XP multipliers
  - JobStatus / Priority: Lifecycle and scheduling enums
  - JobID / UserID: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
     in commission and revenue arithmetic
  2. Type Safety: Strong typing for IDs prevents mixing job/user IDs
  3. No behavior leaks: enums validate themselves, nothing else

USAGE:
  labor := core.NewMoney(200)
  parts := core.MustParseMoney("49.99")
  total := labor.Add(parts)

SEE ALSO:
  - errors.go: Sentinel and structured error types
  - comp/: Compensation policies consuming Money
  - xp/: XP rewards keyed by CallType
*/
package core

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Exact-precision currency amount
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value)}
}

func NewMoneyFromInt(value int) Money {
	return Money{Value: decimal.NewFromInt(int64(value))}
}

func ZeroMoney() Money {
	return Money{Value: decimal.Zero}
}

// MustParseMoney parses a decimal string, returning zero on malformed input.
func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroMoney()
	}
	return Money{Value: d}
}

func (m Money) Add(o Money) Money              { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money              { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Mul(s decimal.Decimal) Money    { return Money{Value: m.Value.Mul(s)} }
func (m Money) Div(s decimal.Decimal) Money    { return Money{Value: m.Value.Div(s)} }
func (m Money) IsZero() bool                   { return m.Value.IsZero() }
func (m Money) IsNegative() bool               { return m.Value.IsNegative() }
func (m Money) IsPositive() bool               { return m.Value.IsPositive() }
func (m Money) Equal(o Money) bool             { return m.Value.Equal(o.Value) }
func (m Money) GreaterThan(o Money) bool       { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThan(o Money) bool          { return m.Value.LessThan(o.Value) }

// Percent applies a percentage rate: m × (rate / 100).
func (m Money) Percent(rate decimal.Decimal) Money {
	return Money{Value: m.Value.Mul(rate).Div(decimal.NewFromInt(100))}
}

// Display formats the amount as a two-decimal currency string.
// Internal arithmetic keeps full precision; rounding happens here only.
func (m Money) Display() string {
	return m.Value.StringFixed(2)
}

func (m Money) String() string { return m.Value.String() }

// Float64 is for display-layer consumers only. Never feed the result
// back into financial arithmetic.
func (m Money) Float64() float64 {
	f, _ := m.Value.Float64()
	return f
}

// MarshalJSON serializes as a quoted decimal string. Persisted records
// round-trip with no precision loss.
func (m Money) MarshalJSON() ([]byte, error) {
	return m.Value.MarshalJSON()
}

func (m *Money) UnmarshalJSON(data []byte) error {
	return m.Value.UnmarshalJSON(data)
}

// Percentage rates (commission, markup) are plain decimals, e.g. 15 = 15%.
func Rate(value float64) decimal.Decimal { return decimal.NewFromFloat(value) }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type JobID string
type UserID string

// =============================================================================
// CALL TYPE - Job classification
// =============================================================================

// CallType classifies when/why a job happened. It drives the flat
// commission bonuses and the XP multiplier table.
type CallType string

const (
	CallRegular    CallType = "regular"
	CallEmergency  CallType = "emergency"
	CallWeekend    CallType = "weekend"
	CallAfterHours CallType = "after-hours"
	CallHoliday    CallType = "holiday"
)

// CallTypes lists every valid call type, regular first.
func CallTypes() []CallType {
	return []CallType{CallRegular, CallEmergency, CallWeekend, CallAfterHours, CallHoliday}
}

func (c CallType) Valid() bool {
	switch c {
	case CallRegular, CallEmergency, CallWeekend, CallAfterHours, CallHoliday:
		return true
	}
	return false
}

// =============================================================================
// JOB LIFECYCLE
// =============================================================================

// JobStatus is the job lifecycle state. Transitions only move forward:
// pending → in-progress → completed. A completed job is never reopened.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusInProgress JobStatus = "in-progress"
	StatusCompleted  JobStatus = "completed"
)

func (s JobStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// =============================================================================
// GEO POINT - Optional job location
// =============================================================================

// GeoPoint is an optional GPS fix attached to a job. A nil *GeoPoint
// means "no location captured"; there is no zero-value sentinel.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}
