package fire

// Level is one fire tier. Bands are contiguous, non-overlapping and ordered
// by Lower; together they cover every streak >= 0 (streak 0 shares the
// lowest band — there is no separate "zero" level).
type Level struct {
	Name  string `json:"name"`  // machine name: laranja, amarelo, azul, verde, roxo
	Label string `json:"label"` // display label shown in chat and dashboard
	Lower int    `json:"lower"` // inclusive lower streak bound
}

// levels in increasing order. The top band is unbounded.
var levels = []Level{
	{Name: "laranja", Label: "🟠 Laranja Iniciante", Lower: 1},
	{Name: "amarelo", Label: "🟡 Amarelo Comum", Lower: 7},
	{Name: "azul", Label: "🔵 Azul Raro", Lower: 15},
	{Name: "verde", Label: "🟢 Verde Épico", Lower: 30},
	{Name: "roxo", Label: "🟣 Roxo Lendário", Lower: 50},
}

// Levels returns the band table in increasing order.
func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels)
	return out
}

// LevelForStreak maps a streak length to its tier. Total over streak >= 0:
// anything below the first bound falls into the lowest band.
func LevelForStreak(streak int) Level {
	current := levels[0]
	for _, lv := range levels {
		if streak >= lv.Lower {
			current = lv
		}
	}
	return current
}

// Progress describes the distance to the next tier. Next is nil in the top
// band; callers render a "max level" state instead of a percentage.
type Progress struct {
	Next          *Level `json:"nextLevel"`
	Percent       int    `json:"percent"`
	DaysRemaining int    `json:"daysRemaining"`
}

// ProgressToNext computes floor(100 * (streak-lower) / (nextLower-lower)),
// clamped to [0, 100].
func ProgressToNext(streak int) Progress {
	cur := LevelForStreak(streak)
	for i := range levels {
		if levels[i].Lower != cur.Lower {
			continue
		}
		if i == len(levels)-1 {
			return Progress{} // top band
		}
		next := levels[i+1]
		pct := 100 * (streak - cur.Lower) / (next.Lower - cur.Lower)
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		days := next.Lower - streak
		if days < 0 {
			days = 0
		}
		return Progress{Next: &next, Percent: pct, DaysRemaining: days}
	}
	return Progress{}
}
