package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"foguinho/internal/common"
	"foguinho/internal/models"
)

// Store implements storage.Store on a pgx pool. All day keys are stored as
// DATE columns; loc rebuilds scanned dates into the app timezone so they
// compare equal to keys produced by common.DayOf.
type Store struct {
	db  *pgxpool.Pool
	loc *time.Location
}

// New creates the postgres store.
func New(db *pgxpool.Pool, loc *time.Location) *Store {
	return &Store{db: db, loc: loc}
}

const dayFormat = "2006-01-02"

// dateInLoc rebuilds a scanned DATE (midnight UTC from pgx) as midnight of
// the same calendar day in the app timezone.
func (s *Store) dateInLoc(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

const groupColumns = `id, name, required_users, streak, status, last_met_day,
       max_restorations, last_activity, created_at, updated_at`

func (s *Store) scanGroup(row pgx.Row) (*models.Group, error) {
	var (
		g            models.Group
		status       string
		lastMetDay   *time.Time
		lastActivity *time.Time
	)
	err := row.Scan(
		&g.ID, &g.Name, &g.RequiredUsers, &g.Streak, &status, &lastMetDay,
		&g.MaxRestorations, &lastActivity, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	g.Status = models.GroupStatus(status)
	if lastMetDay != nil {
		g.LastMetDay = s.dateInLoc(*lastMetDay)
	}
	if lastActivity != nil {
		g.LastActivity = *lastActivity
	}
	return &g, nil
}

// nullableDay converts a zero day into NULL for the last_met_day column.
func nullableDay(day time.Time) *string {
	if day.IsZero() {
		return nil
	}
	v := day.Format(dayFormat)
	return &v
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// CreateGroup inserts a new group row.
func (s *Store) CreateGroup(ctx context.Context, g *models.Group) error {
	query := `
		INSERT INTO groups (id, name, required_users, streak, status, last_met_day,
		                    max_restorations, last_activity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8, NOW(), NOW())
	`
	_, err := s.db.Exec(ctx, query,
		g.ID, g.Name, g.RequiredUsers, g.Streak, string(g.Status),
		nullableDay(g.LastMetDay), g.MaxRestorations, nullableTime(g.LastActivity),
	)
	if err != nil {
		return fmt.Errorf("criação do grupo %q: %w", g.ID, err)
	}
	return nil
}

// GetGroup returns one group or common.ErrUnknownGroup.
func (s *Store) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1`
	g, err := s.scanGroup(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", common.ErrUnknownGroup, id)
		}
		return nil, fmt.Errorf("consulta do grupo %q: %w", id, err)
	}
	return g, nil
}

// SaveGroup overwrites the mutable fields of a group row.
func (s *Store) SaveGroup(ctx context.Context, g *models.Group) error {
	tag, err := s.db.Exec(ctx, saveGroupSQL,
		g.ID, g.Name, g.RequiredUsers, g.Streak, string(g.Status),
		nullableDay(g.LastMetDay), g.MaxRestorations, nullableTime(g.LastActivity),
	)
	if err != nil {
		return fmt.Errorf("atualização do grupo %q: %w", g.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", common.ErrUnknownGroup, g.ID)
	}
	return nil
}

const saveGroupSQL = `
	UPDATE groups
	SET name = $2, required_users = $3, streak = $4, status = $5,
	    last_met_day = $6::date, max_restorations = $7, last_activity = $8,
	    updated_at = NOW()
	WHERE id = $1
`

// ListGroups returns all groups ordered by creation time.
func (s *Store) ListGroups(ctx context.Context) ([]*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups ORDER BY created_at, id`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listagem de grupos: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		g, err := s.scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan de grupo: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// AppendActivity upserts the (group, user, day) cell: the first message of
// the day creates the row, repeats only bump the message counter. The
// distinct count is the row count, so recording is idempotent by key.
func (s *Store) AppendActivity(ctx context.Context, groupID, userID string, day time.Time) error {
	query := `
		INSERT INTO group_activity (group_id, user_id, day, messages)
		VALUES ($1, $2, $3::date, 1)
		ON CONFLICT (group_id, user_id, day)
		DO UPDATE SET messages = group_activity.messages + 1
	`
	_, err := s.db.Exec(ctx, query, groupID, userID, day.Format(dayFormat))
	if err != nil {
		return fmt.Errorf("registro de atividade (%s, %s): %w", groupID, userID, err)
	}
	return nil
}

// CountActiveUsers counts distinct users for (groupID, day).
func (s *Store) CountActiveUsers(ctx context.Context, groupID string, day time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM group_activity WHERE group_id = $1 AND day = $2::date`
	var n int
	err := s.db.QueryRow(ctx, query, groupID, day.Format(dayFormat)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("contagem de usuários ativos: %w", err)
	}
	return n, nil
}

// UserRanking aggregates message volume and active days per user.
func (s *Store) UserRanking(ctx context.Context, groupID string, limit int) ([]models.UserActivity, error) {
	query := `
		SELECT user_id, SUM(messages) AS messages, COUNT(*) AS days_active
		FROM group_activity
		WHERE group_id = $1
		GROUP BY user_id
		ORDER BY messages DESC, user_id
		LIMIT $2
	`
	rows, err := s.db.Query(ctx, query, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("ranking do grupo %q: %w", groupID, err)
	}
	defer rows.Close()

	var out []models.UserActivity
	for rows.Next() {
		var ua models.UserActivity
		if err := rows.Scan(&ua.UserID, &ua.Messages, &ua.DaysActive); err != nil {
			return nil, fmt.Errorf("scan de ranking: %w", err)
		}
		out = append(out, ua)
	}
	return out, rows.Err()
}

// AppendRestoration inserts the restoration event and saves the group in one
// transaction, so a crash can never consume quota without resetting the
// streak (or the reverse).
func (s *Store) AppendRestoration(ctx context.Context, ev *models.RestorationEvent, g *models.Group) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("início da transação: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO restorations (id, group_id, user_id, created_at) VALUES ($1, $2, $3, $4)`,
		ev.ID, ev.GroupID, ev.UserID, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("registro da restauração: %w", err)
	}

	tag, err := tx.Exec(ctx, saveGroupSQL,
		g.ID, g.Name, g.RequiredUsers, g.Streak, string(g.Status),
		nullableDay(g.LastMetDay), g.MaxRestorations, nullableTime(g.LastActivity),
	)
	if err != nil {
		return fmt.Errorf("atualização do grupo restaurado: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", common.ErrUnknownGroup, g.ID)
	}
	return tx.Commit(ctx)
}

// CountRestorations counts events with created_at in [from, to).
func (s *Store) CountRestorations(ctx context.Context, groupID string, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM restorations
		WHERE group_id = $1 AND created_at >= $2 AND created_at < $3
	`
	var n int
	err := s.db.QueryRow(ctx, query, groupID, from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("contagem de restaurações: %w", err)
	}
	return n, nil
}

// SaveDaySummary upserts the end-of-day record for (group, day).
func (s *Store) SaveDaySummary(ctx context.Context, sum *models.DaySummary) error {
	query := `
		INSERT INTO group_days (group_id, day, active_users, met, streak)
		VALUES ($1, $2::date, $3, $4, $5)
		ON CONFLICT (group_id, day)
		DO UPDATE SET active_users = EXCLUDED.active_users,
		              met = EXCLUDED.met, streak = EXCLUDED.streak
	`
	_, err := s.db.Exec(ctx, query,
		sum.GroupID, sum.Day.Format(dayFormat), sum.ActiveUsers, sum.Met, sum.Streak,
	)
	if err != nil {
		return fmt.Errorf("registro do resumo diário: %w", err)
	}
	return nil
}

// RecentDaySummaries returns up to limit summaries, most recent day first.
func (s *Store) RecentDaySummaries(ctx context.Context, groupID string, limit int) ([]models.DaySummary, error) {
	query := `
		SELECT group_id, day, active_users, met, streak
		FROM group_days
		WHERE group_id = $1
		ORDER BY day DESC
		LIMIT $2
	`
	rows, err := s.db.Query(ctx, query, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("histórico do grupo %q: %w", groupID, err)
	}
	defer rows.Close()

	var out []models.DaySummary
	for rows.Next() {
		var (
			sum models.DaySummary
			day time.Time
		)
		if err := rows.Scan(&sum.GroupID, &day, &sum.ActiveUsers, &sum.Met, &sum.Streak); err != nil {
			return nil, fmt.Errorf("scan de resumo diário: %w", err)
		}
		sum.Day = s.dateInLoc(day)
		out = append(out, sum)
	}
	return out, rows.Err()
}
