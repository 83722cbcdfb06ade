// Package common holds shared utilities: the app timezone, calendar-day and
// calendar-month arithmetic, and Portuguese pluralization for user-facing
// replies.
//
// Every day boundary and month window in the engine is computed in one
// configured timezone. Mixing zones here would silently shift streak breaks
// and restoration quotas, so all date math goes through these helpers.
package common

import (
	"fmt"
	"time"
)

// DefaultTimezone is the deployment default for day and month boundaries.
const DefaultTimezone = "America/Sao_Paulo"

// LoadLocation resolves the configured timezone, falling back to a fixed
// UTC-3 zone when the tzdata lookup fails (e.g. scratch containers).
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}

// DayOf truncates t to midnight of its calendar day in loc. Day keys stored
// and compared anywhere in the engine are produced by this function.
func DayOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// MonthWindow returns the [from, to) bounds of the calendar month containing
// t in loc. Restoration quotas count events inside this window.
func MonthWindow(t time.Time, loc *time.Location) (from, to time.Time) {
	t = t.In(loc)
	from = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, 0)
}

// PluralizeDias returns "dia" or "dias" for n.
func PluralizeDias(n int) string {
	if n == 1 || n == -1 {
		return "dia"
	}
	return "dias"
}

// PluralizePessoas returns "pessoa" or "pessoas" for n.
func PluralizePessoas(n int) string {
	if n == 1 || n == -1 {
		return "pessoa"
	}
	return "pessoas"
}

// PluralizeMensagens returns "mensagem" or "mensagens" for n.
func PluralizeMensagens(n int) string {
	if n == 1 || n == -1 {
		return "mensagem"
	}
	return "mensagens"
}

// FormatDias formats a day count with its unit: FormatDias(1) → "1 dia".
func FormatDias(n int) string {
	return fmt.Sprintf("%d %s", n, PluralizeDias(n))
}
