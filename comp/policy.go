/*
policy.go - Earnings computation across the three pay models

PURPOSE:
  Pure function from (settings, aggregate) to money. No state, no I/O;
  callable on every render of the earnings screen.

FLAT BONUSES:
  Commission plans add a fixed dollar bonus per non-regular completed
  job. These are constants of the product, not configuration:
    emergency $50, weekend $25, after-hours $30, holiday $75.

EDGE CASES:
  - Nil settings (onboarding not finished): earnings are zero.
  - Unknown plan type: treated as hourly (informational revenue figure).

EXAMPLE:
  agg has totalLabor=200, serviceCalls=15% → service commission = 30.
  One emergency job in the buckets adds the flat $50.

SEE ALSO:
  - settings.go: Settings and PlanType
  - commission/: Where the aggregate comes from
*/
package comp

import (
	"github.com/shopspring/decimal"

	"github.com/fieldquest/engine/commission"
	"github.com/fieldquest/engine/core"
)

// =============================================================================
// FLAT PER-JOB BONUSES (product constants)
// =============================================================================

var (
	BonusEmergency  = core.NewMoneyFromInt(50)
	BonusWeekend    = core.NewMoneyFromInt(25)
	BonusAfterHours = core.NewMoneyFromInt(30)
	BonusHoliday    = core.NewMoneyFromInt(75)
)

// =============================================================================
// EARNINGS
// =============================================================================

// ComputeEarnings maps the running aggregate to a monetary figure under
// the configured plan. Nil settings yield zero.
func ComputeEarnings(settings *Settings, agg commission.Data) core.Money {
	if settings == nil {
		return core.ZeroMoney()
	}

	switch settings.Type {
	case PlanCommission, PlanSalary:
		// Salary plans show the same commission math under a
		// different label.
		return commissionEarnings(settings, agg)
	default:
		// Hourly: the pay is a fixed rate elsewhere; show revenue.
		return agg.TotalRevenue
	}
}

func commissionEarnings(settings *Settings, agg commission.Data) core.Money {
	earned := agg.TotalLabor.Percent(settings.Rates.ServiceCalls)
	earned = earned.Add(agg.TotalParts.Percent(settings.Rates.Parts))
	earned = earned.Add(flatBonuses(agg))
	return earned
}

// flatBonuses sums the fixed per-job bonuses across the call-type buckets.
func flatBonuses(agg commission.Data) core.Money {
	mul := func(bonus core.Money, n int64) core.Money {
		return bonus.Mul(decimal.NewFromInt(n))
	}
	total := mul(BonusEmergency, agg.EmergencyJobs)
	total = total.Add(mul(BonusWeekend, agg.WeekendJobs))
	total = total.Add(mul(BonusAfterHours, agg.AfterHoursJobs))
	total = total.Add(mul(BonusHoliday, agg.HolidayJobs))
	return total
}
