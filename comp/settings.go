/*
Package comp provides compensation configuration and the earnings
computation for the three pay models.

PURPOSE:
  Maps (company settings, running aggregate) to a monetary earnings
  figure. Three plan types exist; two of them share one formula and
  differ only in how the UI labels the result.

PLAN TYPES:
  PlanHourly:
    Earnings shown = total revenue generated. The tech is paid a fixed
    rate elsewhere; this figure is informational.

  PlanCommission:
    labor × serviceCalls% + parts × parts% + flat per-job bonuses
    (emergency $50, weekend $25, after-hours $30, holiday $75).

  PlanSalary:
    Identical computation to PlanCommission. The UI labels it
    "Commission Bonus" instead of "Commission Earned".

PARTS MARKUP:
  Markup is applied ONCE, when a job is created: the operator's parts
  figure is inflated by markup% before being stored on the job. The
  aggregate therefore already contains marked-up parts; no markup is
  applied at earnings time.

SEE ALSO:
  - policy.go: ComputeEarnings and the flat bonus constants
  - defaults.go: Per-trade preset settings
*/
package comp

import (
	"github.com/shopspring/decimal"

	"github.com/fieldquest/engine/core"
)

// =============================================================================
// PLAN TYPE
// =============================================================================

type PlanType string

const (
	PlanHourly     PlanType = "hourly"
	PlanCommission PlanType = "commission"
	PlanSalary     PlanType = "salary"
)

func (p PlanType) Valid() bool {
	switch p {
	case PlanHourly, PlanCommission, PlanSalary:
		return true
	}
	return false
}

// EarningsLabel is how the UI titles the computed figure.
func (p PlanType) EarningsLabel() string {
	switch p {
	case PlanSalary:
		return "Commission Bonus"
	case PlanCommission:
		return "Commission Earned"
	default:
		return "Revenue Generated"
	}
}

// =============================================================================
// COMPANY SETTINGS
// =============================================================================

// CommissionRates are per-category percentages (15 means 15%).
type CommissionRates struct {
	ServiceCalls decimal.Decimal `json:"serviceCalls"`
	Parts        decimal.Decimal `json:"parts"`
	Equipment    decimal.Decimal `json:"equipment,omitempty"`
	Emergency    decimal.Decimal `json:"emergency"`
	Weekend      decimal.Decimal `json:"weekend"`
	AfterHours   decimal.Decimal `json:"afterHours"`
	Holiday      decimal.Decimal `json:"holiday"`
}

// Settings is the compensation configuration captured during onboarding.
// Editable afterwards; not versioned.
type Settings struct {
	Name           string          `json:"name"`
	Type           PlanType        `json:"type"`
	BaseHourlyRate core.Money      `json:"baseHourlyRate"`
	Rates          CommissionRates `json:"commissionRates"`

	// PartsMarkup is a percentage applied to parts cost at job creation.
	PartsMarkup decimal.Decimal `json:"partsMarkup"`

	// Multipliers scale commission-derived earnings for non-regular
	// calls when a per-job breakdown is shown.
	EmergencyMultiplier  decimal.Decimal `json:"emergencyMultiplier"`
	WeekendMultiplier    decimal.Decimal `json:"weekendMultiplier"`
	AfterHoursMultiplier decimal.Decimal `json:"afterHoursMultiplier"`
	HolidayMultiplier    decimal.Decimal `json:"holidayMultiplier"`
}

// ApplyPartsMarkup inflates an operator-entered parts cost by the
// configured markup. Called exactly once, at job creation.
func (s *Settings) ApplyPartsMarkup(partsCost core.Money) core.Money {
	if s == nil || !partsCost.IsPositive() {
		return partsCost
	}
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)
	return partsCost.Mul(one.Add(s.PartsMarkup.Div(hundred)))
}
