package models

import "time"

// UserActivity is a ranking row: one user's totals within a group.
type UserActivity struct {
	UserID     string `json:"userId"`
	Messages   int    `json:"messages"`
	DaysActive int    `json:"daysActive"`
}

// DaySummary is the frozen end-of-day record written at rollover. Historical
// days are never rewritten.
type DaySummary struct {
	GroupID     string    `json:"groupId"`
	Day         time.Time `json:"date"`
	ActiveUsers int       `json:"activeUsers"`
	Met         bool      `json:"met"`
	Streak      int       `json:"streak"` // streak as of the end of that day
}
