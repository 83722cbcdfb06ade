package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"foguinho/internal/common"
	"foguinho/internal/models"
)

func TestGroupLifecycle(t *testing.T) {
	store := New()
	ctx := context.Background()

	g := &models.Group{ID: "g1", Name: "Família", RequiredUsers: 2, Status: models.StatusActive}
	if err := store.CreateGroup(ctx, g); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if err := store.CreateGroup(ctx, g); err == nil {
		t.Error("criação duplicada deveria falhar")
	}

	got, err := store.GetGroup(ctx, "g1")
	if err != nil {
		t.Fatalf("GetGroup: %v", err)
	}
	// Mutating the returned copy must not leak into the store.
	got.Streak = 99
	again, _ := store.GetGroup(ctx, "g1")
	if again.Streak != 0 {
		t.Errorf("o store vazou o ponteiro interno: streak = %d", again.Streak)
	}

	if _, err := store.GetGroup(ctx, "ghost"); !errors.Is(err, common.ErrUnknownGroup) {
		t.Errorf("grupo inexistente: erro = %v", err)
	}
	if err := store.SaveGroup(ctx, &models.Group{ID: "ghost"}); !errors.Is(err, common.ErrUnknownGroup) {
		t.Errorf("SaveGroup em inexistente: erro = %v", err)
	}
}

func TestListGroupsOrder(t *testing.T) {
	store := New()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"c", "a", "b"} {
		err := store.CreateGroup(ctx, &models.Group{ID: id, Name: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)})
		if err != nil {
			t.Fatal(err)
		}
	}

	list, err := store.ListGroups(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].ID != "c" || list[1].ID != "a" || list[2].ID != "b" {
		ids := make([]string, len(list))
		for i, g := range list {
			ids[i] = g.ID
		}
		t.Errorf("ordem = %v, quer [c a b] por criação", ids)
	}
}

func TestRestorationWindow(t *testing.T) {
	store := New()
	ctx := context.Background()
	g := &models.Group{ID: "g1", Name: "g1"}
	if err := store.CreateGroup(ctx, g); err != nil {
		t.Fatal(err)
	}

	july := time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)
	august := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	for i, at := range []time.Time{july, august, august.AddDate(0, 0, 1)} {
		ev := &models.RestorationEvent{ID: string(rune('a' + i)), GroupID: "g1", UserID: "ana", CreatedAt: at}
		if err := store.AppendRestoration(ctx, ev, g); err != nil {
			t.Fatal(err)
		}
	}

	from, to := common.MonthWindow(august, time.UTC)
	n, err := store.CountRestorations(ctx, "g1", from, to)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("agosto: %d eventos, quer 2", n)
	}

	// AppendRestoration against a missing group must store nothing.
	ev := &models.RestorationEvent{ID: "x", GroupID: "ghost", UserID: "ana", CreatedAt: august}
	if err := store.AppendRestoration(ctx, ev, &models.Group{ID: "ghost"}); !errors.Is(err, common.ErrUnknownGroup) {
		t.Fatalf("erro = %v, quer ErrUnknownGroup", err)
	}
	n, _ = store.CountRestorations(ctx, "ghost", from, to)
	if n != 0 {
		t.Errorf("evento órfão persistido: %d", n)
	}
}

func TestDaySummaryUpsert(t *testing.T) {
	store := New()
	ctx := context.Background()
	day := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	if err := store.SaveDaySummary(ctx, &models.DaySummary{GroupID: "g1", Day: day, ActiveUsers: 1}); err != nil {
		t.Fatal(err)
	}
	// A rerun of the same day replaces, not appends.
	if err := store.SaveDaySummary(ctx, &models.DaySummary{GroupID: "g1", Day: day, ActiveUsers: 3, Met: true}); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveDaySummary(ctx, &models.DaySummary{GroupID: "g1", Day: day.AddDate(0, 0, 1), ActiveUsers: 2}); err != nil {
		t.Fatal(err)
	}

	list, err := store.RecentDaySummaries(ctx, "g1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, quer 2", len(list))
	}
	// Most recent first.
	if !list[0].Day.After(list[1].Day) {
		t.Errorf("ordem errada: %v antes de %v", list[0].Day, list[1].Day)
	}
	if list[1].ActiveUsers != 3 || !list[1].Met {
		t.Errorf("upsert não substituiu: %+v", list[1])
	}

	limited, _ := store.RecentDaySummaries(ctx, "g1", 1)
	if len(limited) != 1 {
		t.Errorf("limite 1: len = %d", len(limited))
	}
}
