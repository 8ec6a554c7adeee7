package seeder

import "time"

const (
	// DateLayout keeps the zone offset so every engine stores the same instant.
	DateLayout     = "2006-01-02 15:04:05.000000-07:00"
	BirthdayLayout = "2006-01-02"
)

// Row is one generated record in its table's insert column order.
type Row interface {
	Values() []any
}

type Account struct {
	SteamID  int64
	Login    string
	FullName *string
	Nickname string
	Country  *string
	Birthday *time.Time
}

func (a Account) Values() []any {
	var birthday any
	if a.Birthday != nil {
		birthday = a.Birthday.Format(BirthdayLayout)
	}
	return []any{a.SteamID, a.Login, nullable(a.FullName), a.Nickname, nullable(a.Country), birthday}
}

type Player struct {
	PlayerID int64
	SteamID  int64
	ProfName string
	Rank     *int64
	Nickname string
}

func (p Player) Values() []any {
	return []any{p.PlayerID, p.SteamID, p.ProfName, nullable(p.Rank), p.Nickname}
}

type Match struct {
	MatchID  int64
	Duration int
	Winner   bool
	Date     time.Time
}

func (m Match) Values() []any {
	return []any{m.MatchID, m.Duration, m.Winner, m.Date.Format(DateLayout)}
}

type PlayerMatchStat struct {
	MatchID  int64
	PlayerID int64
	HeroID   int64
	Side     bool
	Pos      int
	Kills    int
	Deaths   int
	Assists  int
	GPM      int
	XPM      int
	LastHit  int
	Denies   int
}

func (p PlayerMatchStat) Values() []any {
	return []any{p.MatchID, p.PlayerID, p.HeroID, p.Side, p.Pos, p.Kills, p.Deaths,
		p.Assists, p.GPM, p.XPM, p.LastHit, p.Denies}
}

type PlayerItem struct {
	StatID        int64
	ItemID        int64
	TimeFromStart int
}

func (p PlayerItem) Values() []any {
	return []any{p.StatID, p.ItemID, p.TimeFromStart}
}

type PlayerNeutralItem struct {
	StatID        int64
	NeutralItemID int64
	EnchantID     *int64
	TimeFromStart int
	Tier          int
}

func (p PlayerNeutralItem) Values() []any {
	return []any{p.StatID, p.NeutralItemID, nullable(p.EnchantID), p.TimeFromStart, p.Tier}
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func toRows[T Row](records []T) [][]any {
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = r.Values()
	}
	return rows
}
