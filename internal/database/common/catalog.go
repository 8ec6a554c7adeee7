package common

// Reference is a foreign key target.
type Reference struct {
	Table  string
	Column string
}

// Table describes one target table of the dataset.
type Table struct {
	Name       string
	Columns    []string // insert order
	Unique     [][]string
	Serial     string // column assigned by the database, if any
	References map[string]Reference
}

var (
	Heroes = Table{
		Name:    "static.heroes",
		Columns: []string{"hero_id", "hero_name", "attribute", "attack_type"},
		Unique:  [][]string{{"hero_id"}},
	}
	Items = Table{
		Name:    "static.items",
		Columns: []string{"item_name", "cost", "recipe"},
		Unique:  [][]string{{"item_id"}, {"item_name"}},
		Serial:  "item_id",
	}
	NeutralItems = Table{
		Name:    "static.neutral_items",
		Columns: []string{"neutral_items_name", "tier"},
		Unique:  [][]string{{"neutral_items_id"}, {"neutral_items_name"}},
		Serial:  "neutral_items_id",
	}
	NeutralEnchants = Table{
		Name:    "static.neutral_enchant",
		Columns: []string{"neutral_enchant_name"},
		Unique:  [][]string{{"neutral_enchant_id"}, {"neutral_enchant_name"}},
		Serial:  "neutral_enchant_id",
	}
	SteamAccounts = Table{
		Name:    "player_info.steam_account",
		Columns: []string{"steam_id", "login", "full_name", "nickname", "country", "birthday"},
		Unique:  [][]string{{"steam_id"}, {"login"}},
	}
	Players = Table{
		Name:    "player_info.players",
		Columns: []string{"player_id", "steam_id", "prof_name", "rank", "nickname"},
		Unique:  [][]string{{"player_id"}, {"rank"}},
		References: map[string]Reference{
			"steam_id": {Table: "player_info.steam_account", Column: "steam_id"},
		},
	}
	Matches = Table{
		Name:    "match_info.matches",
		Columns: []string{"match_id", "duration", "winner", "date"},
		Unique:  [][]string{{"match_id"}},
	}
	PlayerMatchStats = Table{
		Name: "match_info.player_match_stat",
		Columns: []string{"match_id", "player_id", "hero_id", "side", "pos", "kills", "deaths",
			"assists", "gpm", "xpm", "last_hit", "denies"},
		Unique: [][]string{{"stat_id"}, {"match_id", "player_id"}},
		Serial: "stat_id",
		References: map[string]Reference{
			"match_id":  {Table: "match_info.matches", Column: "match_id"},
			"player_id": {Table: "player_info.players", Column: "player_id"},
			"hero_id":   {Table: "static.heroes", Column: "hero_id"},
		},
	}
	PlayerItems = Table{
		Name:    "match_info.player_items",
		Columns: []string{"stat_id", "item_id", "time_from_start"},
		Unique:  [][]string{{"stat_id", "item_id"}},
		References: map[string]Reference{
			"stat_id": {Table: "match_info.player_match_stat", Column: "stat_id"},
			"item_id": {Table: "static.items", Column: "item_id"},
		},
	}
	PlayerNeutralItems = Table{
		Name:    "match_info.player_neutral_items",
		Columns: []string{"stat_id", "neutral_item_id", "neutral_enchant_id", "time_from_start", "tier"},
		Unique:  [][]string{{"stat_id", "neutral_item_id"}},
		References: map[string]Reference{
			"stat_id":            {Table: "match_info.player_match_stat", Column: "stat_id"},
			"neutral_item_id":    {Table: "static.neutral_items", Column: "neutral_items_id"},
			"neutral_enchant_id": {Table: "static.neutral_enchant", Column: "neutral_enchant_id"},
		},
	}
)

// Catalog returns every table in dependency order, parents first.
func Catalog() []Table {
	return []Table{
		Heroes, Items, NeutralItems, NeutralEnchants,
		SteamAccounts, Players, Matches,
		PlayerMatchStats, PlayerNeutralItems, PlayerItems,
	}
}

// Dependencies lists the distinct tables t references, excluding itself.
func (t Table) Dependencies() []string {
	seen := make(map[string]bool)
	var deps []string
	for _, col := range t.Columns {
		ref, ok := t.References[col]
		if !ok || ref.Table == t.Name || seen[ref.Table] {
			continue
		}
		seen[ref.Table] = true
		deps = append(deps, ref.Table)
	}
	return deps
}
