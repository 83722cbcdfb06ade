package fire

import (
	"time"

	"foguinho/internal/models"
)

// StatusReport is the engine's answer to "how is this group's fire doing
// right now". Returned after activity recording and by the status command.
type StatusReport struct {
	Group            *models.Group `json:"group"`
	Level            Level         `json:"level"`
	ActiveUsersToday int           `json:"activeUsersToday"`
	RequiredUsers    int           `json:"requiredUsers"`
}

// RestorationResult reports a successful restore.
type RestorationResult struct {
	GroupID          string    `json:"groupId"`
	NewStreak        int       `json:"newStreak"`
	Level            Level     `json:"fireLevel"`
	RestorationsUsed int       `json:"restorationsUsed"` // including this one
	MaxRestorations  int       `json:"maxRestorations"`
	Remaining        int       `json:"remaining"`
	RestoredBy       string    `json:"restoredBy"`
	RestoredAt       time.Time `json:"restoredAt"`
}

// RolloverStats summarizes one midnight rollover pass.
type RolloverStats struct {
	Groups int // groups evaluated
	Broken int // streaks zeroed for the unmet day
}
