package seeder

import (
	"slices"
	"time"

	"github.com/Lumos-Labs-HQ/dotaseed/internal/database/common"
	"github.com/Lumos-Labs-HQ/dotaseed/internal/reference"
)

const (
	nullProbability = 0.15

	minAge = 16
	maxAge = 45

	matchWindow    = 730 * 24 * time.Hour
	minDuration    = 600
	maxDuration    = 5400
	minTZOffsetH   = -12
	maxTZOffsetH   = 14
	rosterSize     = 10
	teamSize       = 5
	neutralsPer    = 5
	maxItemsPer    = 6
	minItemTime    = 60
	maxNeutralTier = 5
)

// GenerateAccounts builds n accounts with steam ids and logins unique within
// the batch. Steam ids in exclude are never reused.
func GenerateAccounts(s *Sampler, n int, now time.Time, exclude map[int64]bool) ([]Account, error) {
	ids, err := UniqueInts(s.Rand(), n, SteamIDMin, SteamIDMax, exclude)
	if err != nil {
		return nil, err
	}
	logins, err := uniqueLogins(s, n)
	if err != nil {
		return nil, err
	}

	accounts := make([]Account, n)
	for i := range accounts {
		accounts[i] = Account{
			SteamID:  ids[i],
			Login:    logins[i],
			FullName: Maybe(s, nullProbability, s.FullName),
			Nickname: s.Token(AlphaNumeric, 6),
			Country:  Maybe(s, nullProbability, s.Country),
			Birthday: Maybe(s, nullProbability, func() time.Time { return s.Birthday(minAge, maxAge, now) }),
		}
	}
	return accounts, nil
}

func uniqueLogins(s *Sampler, n int) ([]string, error) {
	seen := make(map[string]bool, n)
	logins := make([]string, 0, n)
	for attempts := 0; len(logins) < n; attempts++ {
		if attempts > 20*n+100 {
			return nil, &InsufficientPoolError{Pool: "login", Requested: n, Available: len(logins)}
		}
		login := s.Login()
		if seen[login] {
			login += s.Token(Digits, 3)
		}
		if seen[login] {
			continue
		}
		seen[login] = true
		logins = append(logins, login)
	}
	return logins, nil
}

// GeneratePlayers builds n players, one per persisted steam id in steamIDs.
func GeneratePlayers(s *Sampler, n int, steamIDs []int64, ranks *RankAllocator, exclude map[int64]bool) ([]Player, error) {
	if len(steamIDs) < n {
		return nil, &InsufficientPoolError{Pool: "steam_id", Requested: n, Available: len(steamIDs)}
	}
	ids, err := UniqueInts(s.Rand(), n, PlayerIDMin, PlayerIDMax, exclude)
	if err != nil {
		return nil, err
	}

	players := make([]Player, n)
	for i := range players {
		players[i] = Player{
			PlayerID: ids[i],
			SteamID:  steamIDs[i],
			Rank:     ranks.Next(),
			ProfName: s.Token(UpperAlphaNumeric, 6),
			Nickname: s.Token(UpperAlphaNumeric, 6),
		}
	}
	return players, nil
}

// GenerateMatches builds n matches played during the two years before now.
func GenerateMatches(s *Sampler, n int, now time.Time, randomOffsets bool, exclude map[int64]bool) ([]Match, error) {
	ids, err := UniqueInts(s.Rand(), n, MatchIDMin, MatchIDMax, exclude)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, n)
	for i := range matches {
		matches[i] = Match{
			MatchID:  ids[i],
			Duration: s.IntRange(minDuration, maxDuration),
			Winner:   s.Bool(),
			Date:     s.TimestampWithOffset(now.Add(-matchWindow), now, minTZOffsetH, maxTZOffsetH, randomOffsets),
		}
	}
	return matches, nil
}

// GeneratePlayerMatchStats draws a roster of 10 distinct players for every
// match. The first five play on side true; positions run 1..5 on each side.
func GeneratePlayerMatchStats(s *Sampler, matchIDs, playerIDs, heroIDs []int64) ([]PlayerMatchStat, error) {
	stats := make([]PlayerMatchStat, 0, len(matchIDs)*rosterSize)
	for _, matchID := range matchIDs {
		roster, err := Sample(s, playerIDs, rosterSize)
		if err != nil {
			return nil, poolError(err, "player_id")
		}
		for i, playerID := range roster {
			heroID, err := Choice(s, heroIDs)
			if err != nil {
				return nil, poolError(err, "hero_id")
			}
			stats = append(stats, PlayerMatchStat{
				MatchID:  matchID,
				PlayerID: playerID,
				HeroID:   heroID,
				Side:     i < teamSize,
				Pos:      i%teamSize + 1,
				Kills:    s.IntRange(0, 25),
				Deaths:   s.IntRange(0, 25),
				Assists:  s.IntRange(4, 30),
				GPM:      s.IntRange(200, 700),
				XPM:      s.IntRange(200, 600),
				LastHit:  s.IntRange(20, 500),
				Denies:   s.IntRange(10, 100),
			})
		}
	}
	return stats, nil
}

// GeneratePlayerNeutralItems gives every stat five distinct neutral items
// with tiers in ascending order. The enchant is null only when no enchants
// exist.
func GeneratePlayerNeutralItems(s *Sampler, stats []common.StatDuration, neutralIDs, enchantIDs []int64) ([]PlayerNeutralItem, error) {
	out := make([]PlayerNeutralItem, 0, len(stats)*neutralsPer)
	for _, stat := range stats {
		picked, err := Sample(s, neutralIDs, neutralsPer)
		if err != nil {
			return nil, poolError(err, "neutral_items_id")
		}
		tiers := make([]int, neutralsPer)
		for i := range tiers {
			tiers[i] = s.IntRange(1, maxNeutralTier)
		}
		slices.Sort(tiers)

		for i, neutralID := range picked {
			var enchant *int64
			if len(enchantIDs) > 0 {
				id, _ := Choice(s, enchantIDs)
				enchant = &id
			}
			out = append(out, PlayerNeutralItem{
				StatID:        stat.StatID,
				NeutralItemID: neutralID,
				EnchantID:     enchant,
				TimeFromStart: s.IntRange(minItemTime, max(minItemTime, stat.Duration/neutralsPer*tiers[i])),
				Tier:          tiers[i],
			})
		}
	}
	return out, nil
}

// GeneratePlayerItems gives every stat up to six distinct items.
func GeneratePlayerItems(s *Sampler, stats []common.StatDuration, itemIDs []int64) []PlayerItem {
	var out []PlayerItem
	for _, stat := range stats {
		k := min(s.IntRange(0, maxItemsPer), len(itemIDs))
		picked, _ := Sample(s, itemIDs, k)
		for _, itemID := range picked {
			out = append(out, PlayerItem{
				StatID:        stat.StatID,
				ItemID:        itemID,
				TimeFromStart: s.IntRange(minItemTime, max(minItemTime, stat.Duration)),
			})
		}
	}
	return out
}

func poolError(err error, pool string) error {
	if pe, ok := err.(*InsufficientPoolError); ok {
		pe.Pool = pool
	}
	return err
}

func HeroRows(heroes []reference.Hero) [][]any {
	rows := make([][]any, len(heroes))
	for i, h := range heroes {
		rows[i] = []any{h.ID, h.Name, h.PrimaryAttribute, h.Ranged}
	}
	return rows
}

func ItemRows(items []reference.Item) [][]any {
	rows := make([][]any, len(items))
	for i, it := range items {
		rows[i] = []any{it.Name, it.Cost, it.Recipe}
	}
	return rows
}

func NeutralItemRows(items []reference.NeutralItem) [][]any {
	rows := make([][]any, len(items))
	for i, it := range items {
		rows[i] = []any{it.Name, it.Tier}
	}
	return rows
}

func NeutralEnchantRows(enchants []reference.NeutralEnchant) [][]any {
	rows := make([][]any, len(enchants))
	for i, e := range enchants {
		rows[i] = []any{e.Name}
	}
	return rows
}
