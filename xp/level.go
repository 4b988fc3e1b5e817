/*
level.go - Technician profile and leveling rules

PURPOSE:
  Owns the User entity and the only mutation path for XP. Level and
  currentXP are DERIVED from totalXP on every grant; they are never set
  independently, so they cannot drift out of sync.

LEVELING RULE:
  level     = floor(totalXP / 1000) + 1
  currentXP = totalXP mod 1000

EXAMPLE:
  user := &xp.User{ID: "u-1", Name: "Sam"}
  user.GrantXP(1130)
  // TotalXP 1130, Level 2, CurrentXP 130

SEE ALSO:
  - xp.go: How rewards are computed
  - jobs/: Grants the stored reward on completion
*/
package xp

import "github.com/fieldquest/engine/core"

// XPPerLevel is the flat XP cost of each level.
const XPPerLevel = 1000

// Trade is the technician's trade classification.
type Trade struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// User is the technician profile. XP fields are mutated only through
// GrantXP so the leveling invariant always holds.
type User struct {
	ID              core.UserID `json:"id"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	Phone           string      `json:"phone,omitempty"`
	Avatar          string      `json:"avatar,omitempty"`
	Trade           Trade       `json:"trade"`
	Level           int64       `json:"level"`
	CurrentXP       int64       `json:"currentXP"`
	TotalXP         int64       `json:"totalXP"`
	JoinDate        string      `json:"joinDate,omitempty"`
	IsSetupComplete bool        `json:"isSetupComplete"`
}

// NewUser creates a level-1 profile with zero XP.
func NewUser(id core.UserID, name, email string, trade Trade) *User {
	u := &User{ID: id, Name: name, Email: email, Trade: trade}
	u.recompute()
	return u
}

// GrantXP adds the award to lifetime XP and recomputes level and
// progress. Returns the new level so callers can detect level-ups.
func (u *User) GrantXP(amount int64) int64 {
	u.TotalXP += amount
	u.recompute()
	return u.Level
}

// recompute derives level and currentXP from totalXP.
func (u *User) recompute() {
	u.Level = u.TotalXP/XPPerLevel + 1
	u.CurrentXP = u.TotalXP % XPPerLevel
}

// XPToNextLevel is how much XP remains until the next level-up.
func (u *User) XPToNextLevel() int64 {
	return XPPerLevel - u.CurrentXP
}
