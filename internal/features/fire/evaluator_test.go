package fire

import (
	"reflect"
	"testing"

	"foguinho/internal/models"
)

func TestMeetsThreshold(t *testing.T) {
	tests := []struct {
		active, required int
		want             bool
	}{
		{0, 2, false},
		{1, 2, false},
		{2, 2, true},
		{5, 2, true},
		{1, 1, true},
	}
	for _, tt := range tests {
		if got := MeetsThreshold(tt.active, tt.required); got != tt.want {
			t.Errorf("MeetsThreshold(%d, %d) = %v, quer %v", tt.active, tt.required, got, tt.want)
		}
	}
}

func TestNextStreak(t *testing.T) {
	tests := []struct {
		name       string
		prev       int
		prevDayMet bool
		want       int
	}{
		{"continues a running streak", 3, true, 4},
		{"restarts after a gap", 3, false, 1},
		{"first day ever", 0, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextStreak(tt.prev, tt.prevDayMet); got != tt.want {
				t.Errorf("NextStreak(%d, %v) = %d, quer %d", tt.prev, tt.prevDayMet, got, tt.want)
			}
		})
	}
}

func TestRollover(t *testing.T) {
	if got := Rollover(7, true); got != 7 {
		t.Errorf("dia cumprido: Rollover = %d, quer 7", got)
	}
	if got := Rollover(7, false); got != 0 {
		t.Errorf("dia perdido: Rollover = %d, quer 0", got)
	}
	if got := Rollover(0, false); got != 0 {
		t.Errorf("streak já zerado: Rollover = %d, quer 0", got)
	}
}

// TestSimulateWeek replays the canonical sequence: three met days, one missed
// day that breaks the streak at midnight, then a fresh start.
func TestSimulateWeek(t *testing.T) {
	got := Simulate([]int{2, 2, 2, 1, 2}, 2)

	want := []SimDay{
		{ActiveUsers: 2, Streak: 1, Status: models.StatusActive, EndStreak: 1},
		{ActiveUsers: 2, Streak: 2, Status: models.StatusActive, EndStreak: 2},
		{ActiveUsers: 2, Streak: 3, Status: models.StatusActive, EndStreak: 3},
		{ActiveUsers: 1, Streak: 3, Status: models.StatusAtRisk, EndStreak: 0},
		{ActiveUsers: 2, Streak: 1, Status: models.StatusActive, EndStreak: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Simulate([2 2 2 1 2], 2) =\n%+v\nquer\n%+v", got, want)
	}
}

func TestSimulateDeterministic(t *testing.T) {
	counts := []int{3, 0, 2, 2, 1, 4, 4}
	first := Simulate(counts, 2)
	for i := 0; i < 10; i++ {
		if again := Simulate(counts, 2); !reflect.DeepEqual(again, first) {
			t.Fatalf("replay %d divergiu: %+v != %+v", i, again, first)
		}
	}
}

func TestSimulateNeverNegative(t *testing.T) {
	for _, d := range Simulate([]int{0, 0, 5, 0, 0, 5, 5, 0}, 3) {
		if d.Streak < 0 || d.EndStreak < 0 {
			t.Fatalf("streak negativo: %+v", d)
		}
	}
}
