package models

import "time"

// RestorationEvent records one use of the monthly restoration mechanic.
// The monthly count is always derived by counting events inside the calendar
// month window; there is no explicit monthly reset.
type RestorationEvent struct {
	ID        string    `json:"id"` // uuid
	GroupID   string    `json:"groupId"`
	UserID    string    `json:"userId"` // who triggered the restore
	CreatedAt time.Time `json:"createdAt"`
}
