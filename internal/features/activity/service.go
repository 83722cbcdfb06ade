// Package activity is the activity tracker: it records which users were
// active in which group on which day and answers distinct-user counts.
package activity

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"foguinho/internal/common"
	"foguinho/internal/models"
	"foguinho/internal/storage"
)

// Service wraps the store with input validation and day-key normalization.
type Service struct {
	store storage.Store
	loc   *time.Location
}

// NewService creates the tracker.
func NewService(store storage.Store, loc *time.Location) *Service {
	return &Service{store: store, loc: loc}
}

// Record marks userID as active in groupID on the day of ts. Idempotent for
// the distinct count: the same user on the same day only grows the message
// counter. Fails with ErrInvalidInput on empty identifiers, with no side
// effects.
func (s *Service) Record(ctx context.Context, groupID, userID string, ts time.Time) error {
	if strings.TrimSpace(groupID) == "" || strings.TrimSpace(userID) == "" {
		return common.ErrInvalidInput
	}

	day := common.DayOf(ts, s.loc)
	if err := s.store.AppendActivity(ctx, groupID, userID, day); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"group_id": groupID,
		"user_id":  userID,
		"day":      day.Format("2006-01-02"),
	}).Debug("atividade registrada")
	return nil
}

// CountActiveUsers returns the distinct-user count for the day of ts.
// 0 for a day with no records; never fails on absence.
func (s *Service) CountActiveUsers(ctx context.Context, groupID string, ts time.Time) (int, error) {
	return s.store.CountActiveUsers(ctx, groupID, common.DayOf(ts, s.loc))
}

// Ranking returns the group's top users by message volume.
func (s *Service) Ranking(ctx context.Context, groupID string, limit int) ([]models.UserActivity, error) {
	if strings.TrimSpace(groupID) == "" {
		return nil, common.ErrInvalidInput
	}
	return s.store.UserRanking(ctx, groupID, limit)
}
