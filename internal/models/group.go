// Package models holds the domain types shared by the storage layer and the
// feature services.
package models

import "time"

// GroupStatus is the engagement state of a group for the current day.
type GroupStatus string

const (
	// StatusActive — today's distinct-user threshold is met (or the streak
	// is simply running). A broken streak is also "active" with Streak == 0;
	// there is no separate "broken" state.
	StatusActive GroupStatus = "active"
	// StatusAtRisk — today's count is still below the threshold and the day
	// is not over yet. The streak itself is untouched until the rollover.
	StatusAtRisk GroupStatus = "at_risk"
)

// Group is one chat group tracked by the fire engine.
type Group struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	RequiredUsers int         `json:"requiredUsers"` // distinct users needed per day
	Streak        int         `json:"streak"`        // consecutive met days, >= 0
	Status        GroupStatus `json:"status"`

	// LastMetDay is the last calendar day (midnight in the app timezone)
	// already counted into the streak. Zero when the group never met the
	// threshold. Guards against double-incrementing within one day.
	LastMetDay time.Time `json:"lastMetDay"`

	MaxRestorations int       `json:"maxRestorations"` // monthly quota, default 5
	LastActivity    time.Time `json:"lastActivity"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// MetOn reports whether day is already counted into the streak.
func (g *Group) MetOn(day time.Time) bool {
	return !g.LastMetDay.IsZero() && g.LastMetDay.Equal(day)
}
