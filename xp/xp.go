/*
Package xp provides the experience-point reward calculator and the
technician leveling rules.

PURPOSE:
  Converts a job's value into an integer XP award and applies that award
  to a technician profile. XP is the gamification currency: half the job
  value, scaled by a call-type multiplier, banked at 1000 XP per level.

KEY CONCEPTS:
  - BaseXP: floor((labor + parts) / 2), computed on the costs the
    operator entered (before parts markup is applied)
  - MultiplierTable: call-type scaling, applied EXACTLY ONCE, at job
    creation. The completion path grants the stored reward verbatim.
  - Leveling: level = floor(totalXP/1000) + 1, currentXP = totalXP mod 1000

SINGLE MULTIPLICATION:
  Earlier revisions of this system kept two multiplier tables (one baked
  into the stored reward at creation, one applied again at completion),
  which double-scaled non-regular jobs. There is now ONE table. Inject
  the same table into job creation and anything that previews rewards.

EXAMPLE:
  table := xp.DefaultMultipliers()
  reward := xp.CreationReward(core.NewMoney(100), core.NewMoney(50),
      core.CallEmergency, table)
  // floor(150/2) = 75, ×1.5 = 112.5, rounds to 113

SEE ALSO:
  - level.go: User profile and XP grants
  - jobs/: Bakes CreationReward into each job
*/
package xp

import (
	"github.com/shopspring/decimal"

	"github.com/fieldquest/engine/core"
)

// =============================================================================
// MULTIPLIER TABLE
// =============================================================================

// Multiplier is one call type's XP scaling entry. Disabled entries fall
// back to ×1 without being removed from the table.
type Multiplier struct {
	Factor  decimal.Decimal `json:"xpMultiplier"`
	Enabled bool            `json:"enabled"`
}

// MultiplierTable maps call types to XP scaling. Regular jobs are always
// ×1 and need no entry.
type MultiplierTable map[core.CallType]Multiplier

// DefaultMultipliers returns the stock scaling table.
func DefaultMultipliers() MultiplierTable {
	return MultiplierTable{
		core.CallEmergency:  {Factor: decimal.NewFromFloat(1.5), Enabled: true},
		core.CallWeekend:    {Factor: decimal.NewFromFloat(1.25), Enabled: true},
		core.CallAfterHours: {Factor: decimal.NewFromFloat(1.3), Enabled: true},
		core.CallHoliday:    {Factor: decimal.NewFromFloat(2.0), Enabled: true},
	}
}

// FactorFor returns the effective multiplier for a call type.
// Regular, unknown, and disabled entries all resolve to ×1.
func (t MultiplierTable) FactorFor(callType core.CallType) decimal.Decimal {
	if callType == core.CallRegular {
		return decimal.NewFromInt(1)
	}
	m, ok := t[callType]
	if !ok || !m.Enabled {
		return decimal.NewFromInt(1)
	}
	return m.Factor
}

// =============================================================================
// REWARD CALCULATION
// =============================================================================

// BaseXP computes the pre-multiplier reward: floor((labor + parts) / 2).
// Costs are the operator-entered figures; parts markup is applied to the
// stored job AFTER this is computed.
func BaseXP(laborCost, partsCost core.Money) int64 {
	half := laborCost.Add(partsCost).Value.Div(decimal.NewFromInt(2))
	return half.Floor().IntPart()
}

// CreationReward computes the XP award stored on a job at creation:
// BaseXP scaled by the call-type multiplier, rounded half away from zero
// to an integer. This is the only place the multiplier is applied.
func CreationReward(laborCost, partsCost core.Money, callType core.CallType, table MultiplierTable) int64 {
	base := decimal.NewFromInt(BaseXP(laborCost, partsCost))
	return base.Mul(table.FactorFor(callType)).Round(0).IntPart()
}
