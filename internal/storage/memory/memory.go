// Package memory is the in-memory Store implementation. It backs the test
// suite and STORAGE_DRIVER=memory deployments, where the service runs
// without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"foguinho/internal/common"
	"foguinho/internal/models"
)

// Store keeps everything in maps guarded by one mutex. Fine for a single
// process; the per-group serialization the engine needs is enforced one
// level up, in the fire service.
type Store struct {
	mu sync.RWMutex

	groups map[string]*models.Group
	// group id → day key → user id → message count
	activity     map[string]map[string]map[string]int
	restorations map[string][]models.RestorationEvent
	summaries    map[string][]models.DaySummary
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		groups:       make(map[string]*models.Group),
		activity:     make(map[string]map[string]map[string]int),
		restorations: make(map[string][]models.RestorationEvent),
		summaries:    make(map[string][]models.DaySummary),
	}
}

func dayKey(day time.Time) string {
	return day.Format("2006-01-02")
}

// CreateGroup inserts a new group. Creating an id twice is an error.
func (s *Store) CreateGroup(_ context.Context, g *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[g.ID]; ok {
		return fmt.Errorf("grupo %q já existe", g.ID)
	}
	clone := *g
	s.groups[g.ID] = &clone
	return nil
}

// GetGroup returns a copy of the group, or ErrUnknownGroup.
func (s *Store) GetGroup(_ context.Context, id string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownGroup, id)
	}
	clone := *g
	return &clone, nil
}

// SaveGroup overwrites the stored group state.
func (s *Store) SaveGroup(_ context.Context, g *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[g.ID]; !ok {
		return fmt.Errorf("%w: %s", common.ErrUnknownGroup, g.ID)
	}
	clone := *g
	clone.UpdatedAt = time.Now()
	s.groups[g.ID] = &clone
	return nil
}

// ListGroups returns copies of all groups, ordered by creation time.
func (s *Store) ListGroups(_ context.Context) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Group, 0, len(s.groups))
	for _, g := range s.groups {
		clone := *g
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// AppendActivity adds userID to the distinct set for (groupID, day) and bumps
// that user's message counter. The distinct set is union semantics: the same
// user on the same day never grows the set.
func (s *Store) AppendActivity(_ context.Context, groupID, userID string, day time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	days, ok := s.activity[groupID]
	if !ok {
		days = make(map[string]map[string]int)
		s.activity[groupID] = days
	}
	key := dayKey(day)
	users, ok := days[key]
	if !ok {
		users = make(map[string]int)
		days[key] = users
	}
	users[userID]++
	return nil
}

// CountActiveUsers returns the distinct-user count for (groupID, day);
// 0 when nothing was recorded.
func (s *Store) CountActiveUsers(_ context.Context, groupID string, day time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.activity[groupID][dayKey(day)]), nil
}

// UserRanking aggregates per-user totals across all days, ordered by message
// volume.
func (s *Store) UserRanking(_ context.Context, groupID string, limit int) ([]models.UserActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]*models.UserActivity)
	for _, users := range s.activity[groupID] {
		for userID, messages := range users {
			ua, ok := totals[userID]
			if !ok {
				ua = &models.UserActivity{UserID: userID}
				totals[userID] = ua
			}
			ua.Messages += messages
			ua.DaysActive++
		}
	}

	out := make([]models.UserActivity, 0, len(totals))
	for _, ua := range totals {
		out = append(out, *ua)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Messages == out[j].Messages {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Messages > out[j].Messages
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// AppendRestoration stores the event and the updated group together. Under
// one lock both land or neither does.
func (s *Store) AppendRestoration(_ context.Context, ev *models.RestorationEvent, g *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[g.ID]; !ok {
		return fmt.Errorf("%w: %s", common.ErrUnknownGroup, g.ID)
	}
	s.restorations[ev.GroupID] = append(s.restorations[ev.GroupID], *ev)
	clone := *g
	clone.UpdatedAt = time.Now()
	s.groups[g.ID] = &clone
	return nil
}

// CountRestorations counts events with CreatedAt in [from, to).
func (s *Store) CountRestorations(_ context.Context, groupID string, from, to time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, ev := range s.restorations[groupID] {
		if !ev.CreatedAt.Before(from) && ev.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

// SaveDaySummary stores the end-of-day record, replacing a same-day record
// if the rollover ran twice.
func (s *Store) SaveDaySummary(_ context.Context, sum *models.DaySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.summaries[sum.GroupID]
	for i := range list {
		if dayKey(list[i].Day) == dayKey(sum.Day) {
			list[i] = *sum
			return nil
		}
	}
	s.summaries[sum.GroupID] = append(list, *sum)
	return nil
}

// RecentDaySummaries returns up to limit summaries, most recent day first.
func (s *Store) RecentDaySummaries(_ context.Context, groupID string, limit int) ([]models.DaySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := append([]models.DaySummary(nil), s.summaries[groupID]...)
	sort.Slice(list, func(i, j int) bool { return list[i].Day.After(list[j].Day) })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}
