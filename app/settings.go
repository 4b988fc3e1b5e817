/*
settings.go - Application settings and daily goals

PURPOSE:
  Holds the technician-facing preferences and the single XP multiplier
  table. The table lives HERE and nowhere else; job creation reads it
  through the app. (Earlier revisions duplicated the table and double
  multiplied XP.)

SEE ALSO:
  - app.go: The state struct carrying these
  - xp/: MultiplierTable semantics
*/
package app

import (
	"github.com/shopspring/decimal"

	"github.com/fieldquest/engine/core"
	"github.com/fieldquest/engine/xp"
)

// =============================================================================
// APP SETTINGS
// =============================================================================

type NotificationSettings struct {
	Enabled           bool `json:"enabled"`
	JobReminders      bool `json:"jobReminders"`
	AchievementAlerts bool `json:"achievementAlerts"`
	TeamUpdates       bool `json:"teamUpdates"`
}

type PrivacySettings struct {
	ShareLocation bool `json:"shareLocation"`
	ShareStats    bool `json:"shareStats"`
	PublicProfile bool `json:"publicProfile"`
}

type WorkPreferences struct {
	AutoStartTimer         bool `json:"autoStartTimer"`
	RequireGPSVerification bool `json:"requireGPSVerification"`
	VoiceNotesEnabled      bool `json:"voiceNotesEnabled"`
}

// Settings are the technician's app preferences plus the consolidated
// call-type reward table.
type Settings struct {
	Notifications   NotificationSettings `json:"notifications"`
	Privacy         PrivacySettings      `json:"privacy"`
	WorkPreferences WorkPreferences      `json:"workPreferences"`
	CallTypeRewards xp.MultiplierTable   `json:"callTypeRewards"`
}

// DefaultSettings returns the out-of-box preferences.
func DefaultSettings() Settings {
	return Settings{
		Notifications: NotificationSettings{
			Enabled:           true,
			JobReminders:      true,
			AchievementAlerts: true,
			TeamUpdates:       true,
		},
		Privacy: PrivacySettings{
			ShareLocation: true,
			ShareStats:    true,
			PublicProfile: false,
		},
		WorkPreferences: WorkPreferences{
			AutoStartTimer:    true,
			VoiceNotesEnabled: true,
		},
		CallTypeRewards: xp.DefaultMultipliers(),
	}
}

// =============================================================================
// DAILY GOALS
// =============================================================================

// DailyGoals are display targets; nothing enforces them.
type DailyGoals struct {
	JobsPerDay    int64           `json:"jobsPerDay"`
	HoursPerDay   decimal.Decimal `json:"hoursPerDay"`
	RevenuePerDay core.Money      `json:"revenuePerDay"`
	XPPerDay      int64           `json:"xpPerDay"`
}

// GoalRatios are today's progress ratios against the daily goals.
// Ratios can exceed 1; the UI clamps for rendering.
type GoalRatios struct {
	Jobs    decimal.Decimal `json:"jobs"`
	Hours   decimal.Decimal `json:"hours"`
	Revenue decimal.Decimal `json:"revenue"`
	XP      decimal.Decimal `json:"xp"`
}

func ratio(achieved, goal decimal.Decimal) decimal.Decimal {
	if !goal.IsPositive() {
		return decimal.Zero
	}
	return achieved.Div(goal)
}
