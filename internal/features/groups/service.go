// Package groups handles group provisioning and the dashboard read model:
// lists, aggregate stats and the per-group detail view. Pure projections
// over the store — no streak rules live here.
package groups

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"foguinho/internal/common"
	"foguinho/internal/features/activity"
	"foguinho/internal/features/fire"
	"foguinho/internal/models"
	"foguinho/internal/storage"
)

// Service is the dashboard-facing service.
type Service struct {
	store   storage.Store
	engine  *fire.Service
	tracker *activity.Service
	loc     *time.Location

	defaultRequiredUsers   int
	defaultMaxRestorations int
	historyDays            int
}

// NewService creates the groups service. The defaults apply to newly
// provisioned groups that don't override them.
func NewService(store storage.Store, engine *fire.Service, tracker *activity.Service,
	loc *time.Location, defaultRequiredUsers, defaultMaxRestorations, historyDays int) *Service {
	return &Service{
		store:                  store,
		engine:                 engine,
		tracker:                tracker,
		loc:                    loc,
		defaultRequiredUsers:   defaultRequiredUsers,
		defaultMaxRestorations: defaultMaxRestorations,
		historyDays:            historyDays,
	}
}

// Provision creates a group. Zero requiredUsers/maxRestorations take the
// configured defaults. This is the only way groups come into existence; the
// engine never auto-creates one from a message.
func (s *Service) Provision(ctx context.Context, id, name string, requiredUsers, maxRestorations int) (*models.Group, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(name) == "" {
		return nil, common.ErrInvalidInput
	}
	if requiredUsers <= 0 {
		requiredUsers = s.defaultRequiredUsers
	}
	if maxRestorations <= 0 {
		maxRestorations = s.defaultMaxRestorations
	}

	now := time.Now().In(s.loc)
	g := &models.Group{
		ID:              id,
		Name:            name,
		RequiredUsers:   requiredUsers,
		Streak:          0,
		Status:          models.StatusActive,
		MaxRestorations: maxRestorations,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateGroup(ctx, g); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"group_id":       id,
		"required_users": requiredUsers,
	}).Info("grupo provisionado")
	return g, nil
}

// GroupSummary is one dashboard list row.
type GroupSummary struct {
	*models.Group
	Level            fire.Level `json:"level"`
	ActiveUsersToday int        `json:"activeUsersToday"`
	RestorationsUsed int        `json:"restorationsUsed"`
}

// Stats are the dashboard aggregates. Pure projection over the group
// collection, no invariants of their own.
type Stats struct {
	TotalGroups       int `json:"totalGroups"`
	ActiveGroups      int `json:"activeGroups"`
	AtRiskGroups      int `json:"atRiskGroups"`
	MaxStreak         int `json:"maxStreak"`
	TotalRestorations int `json:"totalRestorations"` // in the current month
}

// Overview lists every group with its derived level plus the aggregates.
func (s *Service) Overview(ctx context.Context, now time.Time) ([]GroupSummary, Stats, error) {
	list, err := s.store.ListGroups(ctx)
	if err != nil {
		return nil, Stats{}, err
	}

	summaries := make([]GroupSummary, 0, len(list))
	stats := Stats{TotalGroups: len(list)}
	for _, g := range list {
		active, err := s.tracker.CountActiveUsers(ctx, g.ID, now)
		if err != nil {
			return nil, Stats{}, err
		}
		used, err := s.engine.RestorationsUsed(ctx, g.ID, now)
		if err != nil {
			return nil, Stats{}, err
		}

		summaries = append(summaries, GroupSummary{
			Group:            g,
			Level:            fire.LevelForStreak(g.Streak),
			ActiveUsersToday: active,
			RestorationsUsed: used,
		})

		switch g.Status {
		case models.StatusAtRisk:
			stats.AtRiskGroups++
		default:
			stats.ActiveGroups++
		}
		if g.Streak > stats.MaxStreak {
			stats.MaxStreak = g.Streak
		}
		stats.TotalRestorations += used
	}
	return summaries, stats, nil
}

// GroupDetail is the per-group dashboard view.
type GroupDetail struct {
	*models.Group
	Level            fire.Level            `json:"level"`
	Progress         fire.Progress         `json:"progress"`
	ActiveUsersToday int                   `json:"activeUsersToday"`
	RestorationsUsed int                   `json:"restorationsUsed"`
	History          []models.DaySummary   `json:"history"`
	TopUsers         []models.UserActivity `json:"topUsers"`
}

// Detail assembles the status page for one group: level, progress, today's
// count, recent day history and top users.
func (s *Service) Detail(ctx context.Context, groupID string, now time.Time) (*GroupDetail, error) {
	report, err := s.engine.Status(ctx, groupID, now)
	if err != nil {
		return nil, err
	}
	used, err := s.engine.RestorationsUsed(ctx, groupID, now)
	if err != nil {
		return nil, err
	}
	history, err := s.engine.History(ctx, groupID, s.historyDays)
	if err != nil {
		return nil, err
	}
	topUsers, err := s.tracker.Ranking(ctx, groupID, 10)
	if err != nil {
		return nil, err
	}

	return &GroupDetail{
		Group:            report.Group,
		Level:            report.Level,
		Progress:         fire.ProgressToNext(report.Group.Streak),
		ActiveUsersToday: report.ActiveUsersToday,
		RestorationsUsed: used,
		History:          history,
		TopUsers:         topUsers,
	}, nil
}
