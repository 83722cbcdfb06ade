package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"foguinho/internal/common"
	"foguinho/internal/storage/memory"
)

func TestRecordValidation(t *testing.T) {
	svc := NewService(memory.New(), time.UTC)
	ctx := context.Background()
	now := time.Now()

	tests := []struct {
		name    string
		groupID string
		userID  string
	}{
		{"empty group", "", "ana"},
		{"empty user", "g1", ""},
		{"blank group", "   ", "ana"},
		{"blank user", "g1", "\t "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Record(ctx, tt.groupID, tt.userID, now)
			if !errors.Is(err, common.ErrInvalidInput) {
				t.Errorf("erro = %v, quer ErrInvalidInput", err)
			}
		})
	}

	// Rejected input must leave no trace.
	count, err := svc.CountActiveUsers(ctx, "g1", now)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("CountActiveUsers = %d após entradas inválidas, quer 0", count)
	}
}

func TestCountDistinctUsersPerDay(t *testing.T) {
	svc := NewService(memory.New(), time.UTC)
	ctx := context.Background()
	day := time.Date(2026, 8, 10, 8, 0, 0, 0, time.UTC)

	// Same user many times counts once; different users each count.
	for i := 0; i < 50; i++ {
		if err := svc.Record(ctx, "g1", "ana", day.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatal(err)
		}
	}
	if err := svc.Record(ctx, "g1", "bia", day.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	count, err := svc.CountActiveUsers(ctx, "g1", day)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("CountActiveUsers = %d, quer 2", count)
	}

	// The next day starts from zero.
	count, err = svc.CountActiveUsers(ctx, "g1", day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("dia seguinte: CountActiveUsers = %d, quer 0", count)
	}
}

func TestDayBoundaryInLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	svc := NewService(memory.New(), loc)
	ctx := context.Background()

	// 2026-08-11 01:30 UTC is still 2026-08-10 22:30 in BRT: both messages
	// land on the same local day.
	early := time.Date(2026, 8, 10, 12, 0, 0, 0, loc)
	lateUTC := time.Date(2026, 8, 11, 1, 30, 0, 0, time.UTC)

	if err := svc.Record(ctx, "g1", "ana", early); err != nil {
		t.Fatal(err)
	}
	if err := svc.Record(ctx, "g1", "bia", lateUTC); err != nil {
		t.Fatal(err)
	}

	count, err := svc.CountActiveUsers(ctx, "g1", early)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("CountActiveUsers = %d, quer 2 no mesmo dia local", count)
	}
}

func TestRanking(t *testing.T) {
	svc := NewService(memory.New(), time.UTC)
	ctx := context.Background()
	day := time.Date(2026, 8, 10, 8, 0, 0, 0, time.UTC)

	send := func(user string, n int, d time.Time) {
		for i := 0; i < n; i++ {
			if err := svc.Record(ctx, "g1", user, d); err != nil {
				t.Fatal(err)
			}
		}
	}
	send("ana", 5, day)
	send("ana", 2, day.AddDate(0, 0, 1))
	send("bia", 4, day)
	send("caio", 1, day)

	ranking, err := svc.Ranking(ctx, "g1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(ranking) != 3 {
		t.Fatalf("len(ranking) = %d, quer 3", len(ranking))
	}
	if ranking[0].UserID != "ana" || ranking[0].Messages != 7 || ranking[0].DaysActive != 2 {
		t.Errorf("primeiro lugar = %+v, quer ana com 7 mensagens em 2 dias", ranking[0])
	}
	if ranking[1].UserID != "bia" || ranking[2].UserID != "caio" {
		t.Errorf("ordem = %s, %s; quer bia, caio", ranking[1].UserID, ranking[2].UserID)
	}

	limited, err := svc.Ranking(ctx, "g1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("limite 2: len = %d", len(limited))
	}
}
