package common

import (
	"testing"
	"time"
)

func TestDayOf(t *testing.T) {
	brt := time.FixedZone("BRT", -3*60*60)

	tests := []struct {
		name string
		in   time.Time
		loc  *time.Location
		want time.Time
	}{
		{
			"midday truncates to midnight",
			time.Date(2026, 8, 10, 15, 42, 7, 0, time.UTC),
			time.UTC,
			time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			"early UTC is still the previous local day",
			time.Date(2026, 8, 11, 1, 30, 0, 0, time.UTC),
			brt,
			time.Date(2026, 8, 10, 0, 0, 0, 0, brt),
		},
		{
			"local midnight maps to itself",
			time.Date(2026, 8, 10, 0, 0, 0, 0, brt),
			brt,
			time.Date(2026, 8, 10, 0, 0, 0, 0, brt),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DayOf(tt.in, tt.loc)
			if !got.Equal(tt.want) {
				t.Errorf("DayOf(%v) = %v, quer %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMonthWindow(t *testing.T) {
	loc := time.UTC

	from, to := MonthWindow(time.Date(2026, 8, 28, 23, 59, 0, 0, loc), loc)
	if !from.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, loc)) {
		t.Errorf("from = %v, quer 1º de agosto", from)
	}
	if !to.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, loc)) {
		t.Errorf("to = %v, quer 1º de setembro", to)
	}

	// December wraps the year.
	from, to = MonthWindow(time.Date(2026, 12, 15, 12, 0, 0, 0, loc), loc)
	if !from.Equal(time.Date(2026, 12, 1, 0, 0, 0, 0, loc)) || !to.Equal(time.Date(2027, 1, 1, 0, 0, 0, 0, loc)) {
		t.Errorf("dezembro: [%v, %v)", from, to)
	}

	// The window is half-open: an event exactly at `to` belongs to the next
	// month.
	if !to.After(from) {
		t.Error("janela vazia")
	}
}

func TestLoadLocationFallback(t *testing.T) {
	loc := LoadLocation("Not/AZone")
	if loc == nil {
		t.Fatal("LoadLocation retornou nil")
	}
	_, offset := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC).In(loc).Zone()
	if offset != -3*60*60 {
		t.Errorf("offset do fallback = %d, quer -10800", offset)
	}
}

func TestPluralize(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 dias"},
		{1, "1 dia"},
		{2, "2 dias"},
		{100, "100 dias"},
	}
	for _, tt := range tests {
		if got := FormatDias(tt.n); got != tt.want {
			t.Errorf("FormatDias(%d) = %q, quer %q", tt.n, got, tt.want)
		}
	}

	if PluralizePessoas(1) != "pessoa" || PluralizePessoas(3) != "pessoas" {
		t.Error("PluralizePessoas incorreto")
	}
	if PluralizeMensagens(1) != "mensagem" || PluralizeMensagens(0) != "mensagens" {
		t.Error("PluralizeMensagens incorreto")
	}
}
