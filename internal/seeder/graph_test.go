package seeder

import (
	"slices"
	"testing"

	"github.com/Lumos-Labs-HQ/dotaseed/internal/database/common"
)

func TestBuildInsertionOrderCatalog(t *testing.T) {
	g := NewDependencyGraph()
	catalog := common.Catalog()
	for i := len(catalog) - 1; i >= 0; i-- {
		g.AddTable(catalog[i].Name, catalog[i].Dependencies())
	}

	order, err := g.BuildInsertionOrder()
	if err != nil {
		t.Fatalf("BuildInsertionOrder failed: %v", err)
	}
	if len(order) != len(catalog) {
		t.Fatalf("expected %d tables, got %v", len(catalog), order)
	}
	pos := make(map[string]int)
	for i, name := range order {
		pos[name] = i
	}
	for _, table := range catalog {
		for _, dep := range table.Dependencies() {
			if pos[dep] >= pos[table.Name] {
				t.Errorf("%s runs before its dependency %s", table.Name, dep)
			}
		}
	}
}

func TestBuildInsertionOrderKeepsDeclarationOrder(t *testing.T) {
	g := NewDependencyGraph()
	for _, table := range common.Catalog() {
		g.AddTable(table.Name, table.Dependencies())
	}
	order, err := g.BuildInsertionOrder()
	if err != nil {
		t.Fatalf("BuildInsertionOrder failed: %v", err)
	}
	want := []string{
		"static.heroes", "static.items", "static.neutral_items", "static.neutral_enchant",
		"player_info.steam_account", "player_info.players", "match_info.matches",
		"match_info.player_match_stat", "match_info.player_neutral_items", "match_info.player_items",
	}
	if !slices.Equal(order, want) {
		t.Errorf("unexpected order:\n got %v\nwant %v", order, want)
	}
}

func TestBuildInsertionOrderCycle(t *testing.T) {
	g := NewDependencyGraph()
	g.AddTable("a", []string{"b"})
	g.AddTable("b", []string{"c"})
	g.AddTable("c", []string{"a"})
	if _, err := g.BuildInsertionOrder(); err == nil {
		t.Error("expected circular dependency error")
	}
}

func TestBuildInsertionOrderIgnoresMissingTables(t *testing.T) {
	g := NewDependencyGraph()
	g.AddTable("match_info.player_match_stat", []string{"match_info.matches", "static.heroes"})
	g.AddTable("match_info.matches", nil)
	order, err := g.BuildInsertionOrder()
	if err != nil {
		t.Fatalf("BuildInsertionOrder failed: %v", err)
	}
	if !slices.Equal(order, []string{"match_info.matches", "match_info.player_match_stat"}) {
		t.Errorf("unexpected order %v", order)
	}
}
