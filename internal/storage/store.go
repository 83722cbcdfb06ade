// Package storage defines the persistence contract the feature services are
// built against. The engine rules never touch a database directly: a Store is
// injected, so the pure logic tests run on the memory implementation and
// production runs on postgres.
package storage

import (
	"context"
	"time"

	"foguinho/internal/models"
)

// Store is the repository surface of the fire engine.
//
// Contract notes:
//   - GetGroup returns common.ErrUnknownGroup (possibly wrapped) for an
//     unprovisioned id.
//   - AppendActivity is idempotent on the distinct set: repeating the same
//     (group, user, day) only bumps the message counter, never the distinct
//     count.
//   - AppendRestoration persists the event and the updated group
//     all-or-nothing.
//   - SaveDaySummary writes the frozen end-of-day record; historical days
//     are never rewritten.
type Store interface {
	CreateGroup(ctx context.Context, g *models.Group) error
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	SaveGroup(ctx context.Context, g *models.Group) error
	ListGroups(ctx context.Context) ([]*models.Group, error)

	AppendActivity(ctx context.Context, groupID, userID string, day time.Time) error
	CountActiveUsers(ctx context.Context, groupID string, day time.Time) (int, error)
	UserRanking(ctx context.Context, groupID string, limit int) ([]models.UserActivity, error)

	AppendRestoration(ctx context.Context, ev *models.RestorationEvent, g *models.Group) error
	CountRestorations(ctx context.Context, groupID string, from, to time.Time) (int, error)

	SaveDaySummary(ctx context.Context, s *models.DaySummary) error
	RecentDaySummaries(ctx context.Context, groupID string, limit int) ([]models.DaySummary, error)
}
