/*
Package persist defines the key-value persistence contract.

PURPOSE:
  The engine persists each logical collection as one self-contained JSON
  record under a well-known key. The storage itself is opaque: the app
  layer serializes, an implementation of KV stores bytes. No cross-key
  referential integrity is enforced down here.

KEY LAYOUT:
  fieldquest_user       Technician profile
  fieldquest_jobs       Job list
  fieldquest_commission Commission aggregate
  fieldquest_settings   App settings (incl. XP multiplier table)
  fieldquest_timer      Active timer (written only while one exists)
  fieldquest_company    Company settings
  fieldquest_goals      Daily goals
  fieldquest_counter    Job number counter

FAILURE SEMANTICS:
  Saves are best-effort: callers log failures and keep the in-memory
  state. There is no retry and no rollback. If the process dies between
  a mutation and its save, the last mutation is lost and the next launch
  loads the previous record.

IMPLEMENTATIONS:
  - persist/memory: In-memory map (tests/dev)
  - persist/sqlite: Single-table SQLite store (production)
*/
package persist

import "context"

// =============================================================================
// RECORD KEYS
// =============================================================================

const (
	KeyUser       = "fieldquest_user"
	KeyJobs       = "fieldquest_jobs"
	KeyCommission = "fieldquest_commission"
	KeySettings   = "fieldquest_settings"
	KeyTimer      = "fieldquest_timer"
	KeyCompany    = "fieldquest_company"
	KeyGoals      = "fieldquest_goals"
	KeyCounter    = "fieldquest_counter"
)

// AllKeys lists every record key, for Clear.
func AllKeys() []string {
	return []string{
		KeyUser, KeyJobs, KeyCommission, KeySettings,
		KeyTimer, KeyCompany, KeyGoals, KeyCounter,
	}
}

// =============================================================================
// KV - Opaque key-value store
// =============================================================================

// KV stores one serialized record per key.
type KV interface {
	// Load returns the record bytes, ok=false when the key is absent.
	Load(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Save writes (or overwrites) a record.
	Save(ctx context.Context, key string, data []byte) error

	// Clear removes the given keys. Missing keys are not an error.
	Clear(ctx context.Context, keys ...string) error
}
