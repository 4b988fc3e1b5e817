/*
defaults.go - Per-trade preset compensation settings

PURPOSE:
  Ships sensible starting numbers for each supported trade so onboarding
  can prefill the settings form. Rates carry min/max bounds the setup UI
  uses for its sliders; the engine itself does not clamp.

SEE ALSO:
  - settings.go: What these presets populate
*/
package comp

import (
	"github.com/shopspring/decimal"

	"github.com/fieldquest/engine/core"
)

// =============================================================================
// TRADE DEFAULTS
// =============================================================================

// RateRange is a default percentage with slider bounds.
type RateRange struct {
	Default decimal.Decimal `json:"default"`
	Min     decimal.Decimal `json:"min"`
	Max     decimal.Decimal `json:"max"`
}

// TradeDefaults are the preset numbers for one trade.
type TradeDefaults struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Color         string     `json:"color"`
	AvgHourlyRate core.Money `json:"avgHourlyRate"`

	ServiceCalls RateRange  `json:"serviceCalls"`
	Parts        RateRange  `json:"parts"`
	Equipment    *RateRange `json:"equipment,omitempty"`
	Emergency    RateRange  `json:"emergency"`

	PartsMarkupDefault decimal.Decimal `json:"partsMarkupDefault"`
	AvgJobsPerDay      int             `json:"avgJobsPerDay"`
	AvgRevenuePerJob   core.Money      `json:"avgRevenuePerJob"`
	Specialties        []string        `json:"specialties"`
}

func rr(def, min, max float64) RateRange {
	return RateRange{
		Default: decimal.NewFromFloat(def),
		Min:     decimal.NewFromFloat(min),
		Max:     decimal.NewFromFloat(max),
	}
}

func rrp(def, min, max float64) *RateRange { r := rr(def, min, max); return &r }

// TradeCatalog lists the supported trades with their presets.
var TradeCatalog = []TradeDefaults{
	{
		ID: "hvac", Name: "HVAC Technician", Color: "#16a34a",
		AvgHourlyRate: core.NewMoneyFromInt(48),
		ServiceCalls:  rr(15, 5, 30),
		Parts:         rr(12, 5, 25),
		Equipment:     rrp(8, 3, 15),
		Emergency:     rr(22, 10, 40),
		PartsMarkupDefault: decimal.NewFromInt(35),
		AvgJobsPerDay:      3,
		AvgRevenuePerJob:   core.NewMoneyFromInt(285),
		Specialties:        []string{"Installation", "Maintenance", "Repair", "Diagnostics"},
	},
	{
		ID: "electrician", Name: "Electrician", Color: "#f59e0b",
		AvgHourlyRate: core.NewMoneyFromInt(52),
		ServiceCalls:  rr(18, 8, 35),
		Parts:         rr(15, 8, 30),
		Emergency:     rr(25, 15, 45),
		PartsMarkupDefault: decimal.NewFromInt(40),
		AvgJobsPerDay:      4,
		AvgRevenuePerJob:   core.NewMoneyFromInt(320),
		Specialties:        []string{"Wiring", "Panels", "Outlets", "Lighting"},
	},
	{
		ID: "plumber", Name: "Plumber", Color: "#06b6d4",
		AvgHourlyRate: core.NewMoneyFromInt(46),
		ServiceCalls:  rr(16, 8, 30),
		Parts:         rr(14, 8, 28),
		Emergency:     rr(25, 15, 45),
		PartsMarkupDefault: decimal.NewFromInt(45),
		AvgJobsPerDay:      4,
		AvgRevenuePerJob:   core.NewMoneyFromInt(275),
		Specialties:        []string{"Pipes", "Fixtures", "Drains", "Water Heaters"},
	},
	{
		ID: "appliance", Name: "Appliance Repair", Color: "#2563eb",
		AvgHourlyRate: core.NewMoneyFromInt(42),
		ServiceCalls:  rr(25, 15, 40),
		Parts:         rr(50, 25, 100),
		Emergency:     rr(30, 20, 50),
		PartsMarkupDefault: decimal.NewFromInt(65),
		AvgJobsPerDay:      5,
		AvgRevenuePerJob:   core.NewMoneyFromInt(185),
		Specialties:        []string{"Refrigeration", "Washers", "Dryers", "Ovens"},
	},
}

// TradeDefaultsFor looks up a trade's presets. Nil when unknown.
func TradeDefaultsFor(tradeID string) *TradeDefaults {
	for i := range TradeCatalog {
		if TradeCatalog[i].ID == tradeID {
			return &TradeCatalog[i]
		}
	}
	return nil
}

// SettingsFromTrade builds starter company settings from a trade preset.
func SettingsFromTrade(companyName string, planType PlanType, td TradeDefaults) Settings {
	s := Settings{
		Name:           companyName,
		Type:           planType,
		BaseHourlyRate: td.AvgHourlyRate,
		Rates: CommissionRates{
			ServiceCalls: td.ServiceCalls.Default,
			Parts:        td.Parts.Default,
			Emergency:    td.Emergency.Default,
			Weekend:      decimal.NewFromInt(10),
			AfterHours:   decimal.NewFromInt(12),
			Holiday:      decimal.NewFromInt(20),
		},
		PartsMarkup:          td.PartsMarkupDefault,
		EmergencyMultiplier:  decimal.NewFromFloat(1.5),
		WeekendMultiplier:    decimal.NewFromFloat(1.25),
		AfterHoursMultiplier: decimal.NewFromFloat(1.3),
		HolidayMultiplier:    decimal.NewFromFloat(2.0),
	}
	if td.Equipment != nil {
		s.Rates.Equipment = td.Equipment.Default
	}
	return s
}
