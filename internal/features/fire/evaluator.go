// Package fire implements the streak engine: the pure daily-streak rules,
// the level bands and the monthly restoration mechanic.
//
// evaluator.go is the rules core. Everything here is a pure function over
// ints and flags; time, storage and locking live in service.go. For one
// sequence of daily counts and one threshold the resulting streak sequence
// is fully deterministic.
package fire

import "foguinho/internal/models"

// MeetsThreshold reports whether a day's distinct-user count keeps the fire
// alive.
func MeetsThreshold(activeUsers, requiredUsers int) bool {
	return activeUsers >= requiredUsers
}

// NextStreak returns the streak value after today's threshold crossing.
// When yesterday was also a met day the streak keeps running; otherwise a
// new streak starts at day 1.
func NextStreak(prevStreak int, prevDayMet bool) int {
	if prevDayMet {
		return prevStreak + 1
	}
	return 1
}

// Rollover returns the streak after a calendar day fully elapses. An unmet
// day breaks the streak; being at risk during the day never does — more
// users may still show up before midnight.
func Rollover(streak int, dayMet bool) int {
	if !dayMet {
		return 0
	}
	return streak
}

// SimDay is one step of a day-by-day replay.
type SimDay struct {
	ActiveUsers int
	// Streak and Status as seen while the day is still open (after any
	// threshold crossing that day).
	Streak int
	Status models.GroupStatus
	// EndStreak is the value after the midnight rollover.
	EndStreak int
}

// Simulate replays daily distinct-user counts against a threshold starting
// from a fresh group. Exercised by the determinism tests; the service applies
// the same three functions incrementally.
func Simulate(counts []int, requiredUsers int) []SimDay {
	streak := 0
	prevMet := false

	out := make([]SimDay, 0, len(counts))
	for _, n := range counts {
		d := SimDay{ActiveUsers: n}
		met := MeetsThreshold(n, requiredUsers)
		if met {
			streak = NextStreak(streak, prevMet)
			d.Status = models.StatusActive
		} else {
			d.Status = models.StatusAtRisk
		}
		d.Streak = streak

		streak = Rollover(streak, met)
		d.EndStreak = streak
		prevMet = met
		out = append(out, d)
	}
	return out
}
