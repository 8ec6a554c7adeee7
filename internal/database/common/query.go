package common

// ReadQuery selects one integer column of a table. NULLs are never returned.
type ReadQuery struct {
	Table       string
	Column      string
	Filter      map[string]any // equality conditions, ANDed
	Limit       uint64         // 0 means no limit
	RandomOrder bool
}

// StatDuration pairs a player_match_stat row with the duration of its match.
type StatDuration struct {
	StatID   int64
	Duration int
}
