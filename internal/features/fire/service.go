package fire

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"foguinho/internal/common"
	"foguinho/internal/features/activity"
	"foguinho/internal/models"
	"foguinho/internal/storage"
)

// Service orchestrates the pure rules over the store. All mutations for one
// group run under that group's mutex: activity recording, restoration and
// rollover for the same group are mutually exclusive, while different groups
// proceed in parallel.
type Service struct {
	store   storage.Store
	tracker *activity.Service
	loc     *time.Location

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewService creates the engine service.
func NewService(store storage.Store, tracker *activity.Service, loc *time.Location) *Service {
	return &Service{
		store:   store,
		tracker: tracker,
		loc:     loc,
		locks:   make(map[string]*sync.Mutex),
	}
}

// groupLock returns the mutex for one group, creating it on first use.
func (s *Service) groupLock(groupID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	mu, ok := s.locks[groupID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[groupID] = mu
	}
	return mu
}

// RecordActivity records one incoming group message and re-evaluates the
// streak. The streak increments at most once per day, at the moment the
// distinct-user count crosses the threshold; every message before or after
// that only updates the activity set and the status.
func (s *Service) RecordActivity(ctx context.Context, groupID, userID string, ts time.Time) (*StatusReport, error) {
	if strings.TrimSpace(groupID) == "" || strings.TrimSpace(userID) == "" {
		return nil, common.ErrInvalidInput
	}

	mu := s.groupLock(groupID)
	mu.Lock()
	defer mu.Unlock()

	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if err := s.tracker.Record(ctx, groupID, userID, ts); err != nil {
		return nil, err
	}
	count, err := s.tracker.CountActiveUsers(ctx, groupID, ts)
	if err != nil {
		return nil, err
	}

	day := common.DayOf(ts, s.loc)
	s.evaluate(g, count, day)
	g.LastActivity = ts

	if err := s.store.SaveGroup(ctx, g); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"group_id":     groupID,
		"user_id":      userID,
		"active_today": count,
		"streak":       g.Streak,
		"status":       g.Status,
	}).Debug("atividade avaliada")

	return s.report(g, count), nil
}

// evaluate applies the day rules to g for the given distinct count.
func (s *Service) evaluate(g *models.Group, activeToday int, day time.Time) {
	if MeetsThreshold(activeToday, g.RequiredUsers) {
		if !g.MetOn(day) {
			prevDayMet := g.MetOn(day.AddDate(0, 0, -1))
			g.Streak = NextStreak(g.Streak, prevDayMet)
			g.LastMetDay = day
		}
		g.Status = models.StatusActive
		return
	}
	if g.MetOn(day) {
		// Threshold was crossed earlier today; the set can only grow, so
		// this is unreachable outside of raised thresholds. Stay active.
		g.Status = models.StatusActive
		return
	}
	g.Status = models.StatusAtRisk
}

func (s *Service) report(g *models.Group, activeToday int) *StatusReport {
	return &StatusReport{
		Group:            g,
		Level:            LevelForStreak(g.Streak),
		ActiveUsersToday: activeToday,
		RequiredUsers:    g.RequiredUsers,
	}
}

// Status re-evaluates and returns the group's current standing without
// recording any activity.
func (s *Service) Status(ctx context.Context, groupID string, now time.Time) (*StatusReport, error) {
	if strings.TrimSpace(groupID) == "" {
		return nil, common.ErrInvalidInput
	}

	mu := s.groupLock(groupID)
	mu.Lock()
	defer mu.Unlock()

	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	count, err := s.tracker.CountActiveUsers(ctx, groupID, now)
	if err != nil {
		return nil, err
	}

	before := g.Status
	s.evaluate(g, count, common.DayOf(now, s.loc))
	if g.Status != before {
		if err := s.store.SaveGroup(ctx, g); err != nil {
			return nil, err
		}
	}
	return s.report(g, count), nil
}

// RestorationsUsed counts the group's restorations inside the calendar month
// of now.
func (s *Service) RestorationsUsed(ctx context.Context, groupID string, now time.Time) (int, error) {
	from, to := common.MonthWindow(now, s.loc)
	return s.store.CountRestorations(ctx, groupID, from, to)
}

// Restore revives the fire: streak back to day 1, status active, one unit of
// the monthly quota consumed. Fails with ErrRestorationLimitExceeded when the
// calendar month of now already holds MaxRestorations events — and in that
// case the group state is untouched. Deliberately not idempotent: every
// successful call appends an event and resets the streak again.
func (s *Service) Restore(ctx context.Context, groupID, userID string, now time.Time) (*RestorationResult, error) {
	if strings.TrimSpace(groupID) == "" || strings.TrimSpace(userID) == "" {
		return nil, common.ErrInvalidInput
	}

	mu := s.groupLock(groupID)
	mu.Lock()
	defer mu.Unlock()

	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	used, err := s.RestorationsUsed(ctx, groupID, now)
	if err != nil {
		return nil, err
	}
	if used >= g.MaxRestorations {
		return nil, common.ErrRestorationLimitExceeded
	}

	day := common.DayOf(now, s.loc)
	g.Streak = 1
	g.Status = models.StatusActive
	// The restore day counts as met day 1, so a threshold crossing later
	// today does not bump the streak to 2.
	g.LastMetDay = day

	ev := &models.RestorationEvent{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		UserID:    userID,
		CreatedAt: now,
	}
	if err := s.store.AppendRestoration(ctx, ev, g); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"group_id": groupID,
		"user_id":  userID,
		"used":     used + 1,
		"max":      g.MaxRestorations,
	}).Info("foguinho restaurado")

	return &RestorationResult{
		GroupID:          groupID,
		NewStreak:        g.Streak,
		Level:            LevelForStreak(g.Streak),
		RestorationsUsed: used + 1,
		MaxRestorations:  g.MaxRestorations,
		Remaining:        g.MaxRestorations - used - 1,
		RestoredBy:       userID,
		RestoredAt:       now,
	}, nil
}

// RolloverAll closes the previous calendar day for every group: an unmet day
// zeroes the streak, and a frozen DaySummary is written either way. Runs from
// the midnight cron; safe to re-run (summaries upsert, an already-zeroed
// streak stays zero).
func (s *Service) RolloverAll(ctx context.Context, now time.Time) (RolloverStats, error) {
	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		return RolloverStats{}, err
	}

	yesterday := common.DayOf(now, s.loc).AddDate(0, 0, -1)
	stats := RolloverStats{Groups: len(groups)}

	for _, g := range groups {
		if err := s.rolloverGroup(ctx, g, yesterday, &stats); err != nil {
			log.WithError(err).WithField("group_id", g.ID).Error("erro no rollover do grupo")
		}
	}

	log.WithFields(log.Fields{
		"groups": stats.Groups,
		"broken": stats.Broken,
		"day":    yesterday.Format("2006-01-02"),
	}).Info("rollover diário concluído")
	return stats, nil
}

func (s *Service) rolloverGroup(ctx context.Context, g *models.Group, yesterday time.Time, stats *RolloverStats) error {
	mu := s.groupLock(g.ID)
	mu.Lock()
	defer mu.Unlock()

	// Re-read under the lock; the listing snapshot may be stale.
	g, err := s.store.GetGroup(ctx, g.ID)
	if err != nil {
		return err
	}

	count, err := s.store.CountActiveUsers(ctx, g.ID, yesterday)
	if err != nil {
		return err
	}

	met := g.MetOn(yesterday)
	newStreak := Rollover(g.Streak, met)
	if newStreak != g.Streak {
		stats.Broken++
		log.WithFields(log.Fields{
			"group_id": g.ID,
			"streak":   g.Streak,
		}).Info("foguinho apagado: dia sem meta atingida")
	}
	g.Streak = newStreak
	// The new day starts in active: a broken streak is "active with streak
	// 0", and the hourly sweep flips groups to at_risk as the day wears on.
	g.Status = models.StatusActive

	if err := s.store.SaveGroup(ctx, g); err != nil {
		return err
	}

	return s.store.SaveDaySummary(ctx, &models.DaySummary{
		GroupID:     g.ID,
		Day:         yesterday,
		ActiveUsers: count,
		Met:         met,
		Streak:      g.Streak,
	})
}

// SweepStatuses recomputes at-risk flags for the current day across all
// groups. Returns the ids whose status changed, so the caller can broadcast
// them.
func (s *Service) SweepStatuses(ctx context.Context, now time.Time) ([]string, error) {
	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		return nil, err
	}

	var changed []string
	for _, g := range groups {
		report, err := s.Status(ctx, g.ID, now)
		if err != nil {
			log.WithError(err).WithField("group_id", g.ID).Error("erro no sweep de status")
			continue
		}
		if report.Group.Status != g.Status {
			changed = append(changed, g.ID)
		}
	}
	return changed, nil
}

// History returns the most recent frozen day records for a group.
func (s *Service) History(ctx context.Context, groupID string, limit int) ([]models.DaySummary, error) {
	return s.store.RecentDaySummaries(ctx, groupID, limit)
}
