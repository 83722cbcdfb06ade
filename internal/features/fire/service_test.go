package fire

import (
	"context"
	"errors"
	"testing"
	"time"

	"foguinho/internal/common"
	"foguinho/internal/features/activity"
	"foguinho/internal/models"
	"foguinho/internal/storage/memory"
)

func newTestEngine(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	tracker := activity.NewService(store, time.UTC)
	return NewService(store, tracker, time.UTC), store
}

func seedGroup(t *testing.T, store *memory.Store, id string, required, maxRestorations int) {
	t.Helper()
	err := store.CreateGroup(context.Background(), &models.Group{
		ID:              id,
		Name:            "Grupo " + id,
		RequiredUsers:   required,
		MaxRestorations: maxRestorations,
		Status:          models.StatusActive,
		CreatedAt:       time.Now(),
	})
	if err != nil {
		t.Fatalf("seedGroup(%s): %v", id, err)
	}
}

func TestRecordActivityThresholdCrossing(t *testing.T) {
	engine, store := newTestEngine(t)
	seedGroup(t, store, "g1", 2, 5)
	ctx := context.Background()
	day := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	report, err := engine.RecordActivity(ctx, "g1", "ana", day)
	if err != nil {
		t.Fatalf("primeira mensagem: %v", err)
	}
	if report.Group.Streak != 0 || report.Group.Status != models.StatusAtRisk {
		t.Errorf("com 1/2 usuários: streak=%d status=%s, quer 0/at_risk",
			report.Group.Streak, report.Group.Status)
	}

	report, err = engine.RecordActivity(ctx, "g1", "bia", day.Add(time.Hour))
	if err != nil {
		t.Fatalf("segunda mensagem: %v", err)
	}
	if report.Group.Streak != 1 || report.Group.Status != models.StatusActive {
		t.Errorf("ao cruzar a meta: streak=%d status=%s, quer 1/active",
			report.Group.Streak, report.Group.Status)
	}

	// A third user on the same day must not bump the streak again.
	report, err = engine.RecordActivity(ctx, "g1", "caio", day.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("terceira mensagem: %v", err)
	}
	if report.Group.Streak != 1 {
		t.Errorf("mesmo dia após a meta: streak=%d, quer 1", report.Group.Streak)
	}
	if report.ActiveUsersToday != 3 {
		t.Errorf("ActiveUsersToday = %d, quer 3", report.ActiveUsersToday)
	}
}

func TestRecordActivitySameUserDoesNotCross(t *testing.T) {
	engine, store := newTestEngine(t)
	seedGroup(t, store, "g1", 2, 5)
	ctx := context.Background()
	day := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	var report *StatusReport
	var err error
	for i := 0; i < 100; i++ {
		report, err = engine.RecordActivity(ctx, "g1", "ana", day.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("mensagem %d: %v", i, err)
		}
	}
	if report.ActiveUsersToday != 1 {
		t.Errorf("100 mensagens do mesmo usuário: ActiveUsersToday = %d, quer 1", report.ActiveUsersToday)
	}
	if report.Group.Streak != 0 || report.Group.Status != models.StatusAtRisk {
		t.Errorf("streak=%d status=%s, quer 0/at_risk", report.Group.Streak, report.Group.Status)
	}
}

func TestRecordActivityValidation(t *testing.T) {
	engine, store := newTestEngine(t)
	seedGroup(t, store, "g1", 2, 5)
	ctx := context.Background()
	now := time.Now()

	tests := []struct {
		name    string
		groupID string
		userID  string
		wantErr error
	}{
		{"empty group", "", "ana", common.ErrInvalidInput},
		{"blank group", "   ", "ana", common.ErrInvalidInput},
		{"empty user", "g1", "", common.ErrInvalidInput},
		{"unknown group", "ghost", "ana", common.ErrUnknownGroup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.RecordActivity(ctx, tt.groupID, tt.userID, now)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("erro = %v, quer %v", err, tt.wantErr)
			}
		})
	}
}

func TestRestoreSetsStreakToOne(t *testing.T) {
	engine, store := newTestEngine(t)
	seedGroup(t, store, "g1", 2, 5)
	ctx := context.Background()
	now := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)

	// A long streak is demoted to day 1, not preserved.
	g, _ := store.GetGroup(ctx, "g1")
	g.Streak = 42
	if err := store.SaveGroup(ctx, g); err != nil {
		t.Fatal(err)
	}

	result, err := engine.Restore(ctx, "g1", "ana", now)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if result.NewStreak != 1 {
		t.Errorf("NewStreak = %d, quer 1", result.NewStreak)
	}
	if result.Level.Name != "laranja" {
		t.Errorf("Level = %q, quer laranja", result.Level.Name)
	}
	if result.RestorationsUsed != 1 || result.Remaining != 4 {
		t.Errorf("used=%d remaining=%d, quer 1/4", result.RestorationsUsed, result.Remaining)
	}

	g, _ = store.GetGroup(ctx, "g1")
	if g.Streak != 1 || g.Status != models.StatusActive {
		t.Errorf("grupo após restore: streak=%d status=%s, quer 1/active", g.Streak, g.Status)
	}
	if !g.MetOn(common.DayOf(now, time.UTC)) {
		t.Error("o dia do restore deve contar como dia cumprido")
	}
}

func TestRestoreMonthlyQuota(t *testing.T) {
	engine, store := newTestEngine(t)
	seedGroup(t, store, "g1", 2, 5)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		result, err := engine.Restore(ctx, "g1", "ana", base.AddDate(0, 0, i))
		if err != nil {
			t.Fatalf("restore %d: %v", i+1, err)
		}
		if result.RestorationsUsed != i+1 {
			t.Errorf("restore %d: used = %d", i+1, result.RestorationsUsed)
		}
	}

	// The 6th restore in the same month fails and leaves the group untouched.
	g, _ := store.GetGroup(ctx, "g1")
	g.Streak = 9
	if err := store.SaveGroup(ctx, g); err != nil {
		t.Fatal(err)
	}

	_, err := engine.Restore(ctx, "g1", "ana", base.AddDate(0, 0, 20))
	if !errors.Is(err, common.ErrRestorationLimitExceeded) {
		t.Fatalf("sexto restore: erro = %v, quer ErrRestorationLimitExceeded", err)
	}
	g, _ = store.GetGroup(ctx, "g1")
	if g.Streak != 9 {
		t.Errorf("streak após recusa = %d, quer 9 (intocado)", g.Streak)
	}

	// A new calendar month resets the window.
	if _, err := engine.Restore(ctx, "g1", "ana", base.AddDate(0, 1, 2)); err != nil {
		t.Fatalf("restore no mês seguinte: %v", err)
	}
	used, err := engine.RestorationsUsed(ctx, "g1", base.AddDate(0, 1, 2))
	if err != nil {
		t.Fatal(err)
	}
	if used != 1 {
		t.Errorf("usadas no mês novo = %d, quer 1", used)
	}
}

func TestRolloverBreaksUnmetDay(t *testing.T) {
	engine, store := newTestEngine(t)
	seedGroup(t, store, "met", 2, 5)
	seedGroup(t, store, "missed", 2, 5)
	ctx := context.Background()
	day := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	// "met" crosses the threshold; "missed" gets only one user.
	for _, user := range []string{"ana", "bia"} {
		if _, err := engine.RecordActivity(ctx, "met", user, day); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := engine.RecordActivity(ctx, "missed", "ana", day); err != nil {
		t.Fatal(err)
	}

	midnight := time.Date(2026, 8, 11, 0, 0, 0, 0, time.UTC)
	stats, err := engine.RolloverAll(ctx, midnight)
	if err != nil {
		t.Fatalf("RolloverAll: %v", err)
	}
	if stats.Groups != 2 || stats.Broken != 0 {
		t.Errorf("stats = %+v, quer Groups=2 Broken=0 (streak 0 não quebra)", stats)
	}

	met, _ := store.GetGroup(ctx, "met")
	if met.Streak != 1 || met.Status != models.StatusActive {
		t.Errorf("grupo met: streak=%d status=%s, quer 1/active", met.Streak, met.Status)
	}
	missed, _ := store.GetGroup(ctx, "missed")
	if missed.Streak != 0 {
		t.Errorf("grupo missed: streak=%d, quer 0", missed.Streak)
	}

	history, err := engine.History(ctx, "met", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || !history[0].Met || history[0].ActiveUsers != 2 {
		t.Errorf("histórico do met = %+v, quer 1 registro cumprido com 2 usuários", history)
	}
}

func TestRolloverBreaksRunningStreak(t *testing.T) {
	engine, store := newTestEngine(t)
	seedGroup(t, store, "g1", 2, 5)
	ctx := context.Background()

	// Build a 3-day streak, then let a day pass with nobody showing up.
	day := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	for d := 0; d < 3; d++ {
		ts := day.AddDate(0, 0, d)
		for _, user := range []string{"ana", "bia"} {
			if _, err := engine.RecordActivity(ctx, "g1", user, ts); err != nil {
				t.Fatal(err)
			}
		}
		if _, err := engine.RolloverAll(ctx, ts.AddDate(0, 0, 1)); err != nil {
			t.Fatal(err)
		}
	}
	g, _ := store.GetGroup(ctx, "g1")
	if g.Streak != 3 {
		t.Fatalf("streak após 3 dias = %d, quer 3", g.Streak)
	}

	// Day 4 is silent; midnight of day 5 breaks the fire.
	stats, err := engine.RolloverAll(ctx, day.AddDate(0, 0, 4))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Broken != 1 {
		t.Errorf("Broken = %d, quer 1", stats.Broken)
	}
	g, _ = store.GetGroup(ctx, "g1")
	if g.Streak != 0 || g.Status != models.StatusActive {
		t.Errorf("após quebra: streak=%d status=%s, quer 0/active", g.Streak, g.Status)
	}
}

func TestStatusDoesNotRecordActivity(t *testing.T) {
	engine, store := newTestEngine(t)
	seedGroup(t, store, "g1", 2, 5)
	ctx := context.Background()
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	report, err := engine.Status(ctx, "g1", now)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if report.ActiveUsersToday != 0 {
		t.Errorf("ActiveUsersToday = %d, quer 0", report.ActiveUsersToday)
	}
	if report.Group.Status != models.StatusAtRisk {
		t.Errorf("status = %s, quer at_risk (dia aberto sem meta)", report.Group.Status)
	}

	// The read-only path must not create activity.
	count, err := store.CountActiveUsers(ctx, "g1", common.DayOf(now, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("CountActiveUsers = %d após Status, quer 0", count)
	}
}
