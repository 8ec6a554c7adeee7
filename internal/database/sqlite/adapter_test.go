package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Lumos-Labs-HQ/dotaseed/internal/database/common"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	a := New(DriverPureGo)
	if err := a.Connect(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "dota.db")); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	if err := a.ApplySchema(context.Background()); err != nil {
		t.Fatalf("ApplySchema failed: %v", err)
	}
	return a
}

func TestUpsertSkipsConflicts(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	rows := [][]any{
		{int64(1), "Anti-Mage", "agi", false},
		{int64(2), "Axe", "str", false},
	}
	n, err := a.Upsert(ctx, common.Heroes.Name, common.Heroes.Columns, rows)
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 inserted rows, got %d", n)
	}

	n, err = a.Upsert(ctx, common.Heroes.Name, common.Heroes.Columns, rows)
	if err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected second run to insert nothing, got %d", n)
	}

	count, err := a.Count(ctx, common.Heroes.Name)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 heroes, got %d", count)
	}
}

func TestUpsertRecipeAsJSON(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	rows := [][]any{
		{"Blink Dagger", int64(2250), []string(nil)},
		{"Power Treads", int64(1400), []string{"item_boots", "item_gloves", "item_belt_of_strength"}},
	}
	if _, err := a.Upsert(ctx, common.Items.Name, common.Items.Columns, rows); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	var recipe string
	if err := a.DB.QueryRow(`SELECT recipe FROM static_items WHERE item_name = ?`, "Power Treads").Scan(&recipe); err != nil {
		t.Fatalf("failed to read recipe: %v", err)
	}
	if recipe != `["item_boots","item_gloves","item_belt_of_strength"]` {
		t.Errorf("unexpected recipe %s", recipe)
	}

	ids, err := a.Query(ctx, common.ReadQuery{Table: common.Items.Name, Column: "item_id"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 serial ids, got %v", ids)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	a := newTestAdapter(t)
	_, err := a.Upsert(context.Background(), common.Players.Name, common.Players.Columns, [][]any{
		{int64(1000000001), int64(1000000000001), "ABC123", nil, "XYZ789"},
	})
	if err == nil {
		t.Fatal("expected foreign key violation for unknown steam_id")
	}
}

func TestQueryFilterAndStatDurations(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	mustUpsert := func(table common.Table, rows [][]any) {
		t.Helper()
		if _, err := a.Upsert(ctx, table.Name, table.Columns, rows); err != nil {
			t.Fatalf("Upsert %s failed: %v", table.Name, err)
		}
	}

	mustUpsert(common.Heroes, [][]any{{int64(1), "Anti-Mage", "agi", false}})
	mustUpsert(common.SteamAccounts, [][]any{
		{int64(1000000000001), "alpha", nil, "aaaaaa", nil, nil},
		{int64(1000000000002), "beta", "Beta Person", "bbbbbb", "Peru", "1990-04-02"},
	})
	mustUpsert(common.Players, [][]any{
		{int64(1000000001), int64(1000000000001), "PRO001", int64(7), "NICK01"},
		{int64(1000000002), int64(1000000000002), "PRO002", nil, "NICK02"},
	})
	mustUpsert(common.Matches, [][]any{
		{int64(1000001), int64(1800), true, "2025-03-01 10:00:00.000000+02:00"},
	})
	mustUpsert(common.PlayerMatchStats, [][]any{
		{int64(1000001), int64(1000000001), int64(1), true, int64(1), int64(3), int64(2), int64(5), int64(400), int64(500), int64(120), int64(10)},
		{int64(1000001), int64(1000000002), int64(1), false, int64(2), int64(1), int64(4), int64(9), int64(300), int64(350), int64(80), int64(4)},
	})

	ranks, err := a.Query(ctx, common.ReadQuery{Table: common.Players.Name, Column: "rank"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(ranks) != 1 || ranks[0] != 7 {
		t.Errorf("expected only the non-null rank 7, got %v", ranks)
	}

	players, err := a.Query(ctx, common.ReadQuery{
		Table:  common.PlayerMatchStats.Name,
		Column: "player_id",
		Filter: map[string]any{"match_id": int64(1000001)},
		Limit:  1,
	})
	if err != nil {
		t.Fatalf("filtered Query failed: %v", err)
	}
	if len(players) != 1 {
		t.Errorf("expected limit of 1 row, got %v", players)
	}

	durations, err := a.StatDurations(ctx)
	if err != nil {
		t.Fatalf("StatDurations failed: %v", err)
	}
	if len(durations) != 2 {
		t.Fatalf("expected 2 stat durations, got %d", len(durations))
	}
	for _, d := range durations {
		if d.Duration != 1800 {
			t.Errorf("stat %d: expected duration 1800, got %d", d.StatID, d.Duration)
		}
	}

	if err := a.Delete(ctx, common.PlayerMatchStats.Name); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n, _ := a.Count(ctx, common.PlayerMatchStats.Name); n != 0 {
		t.Errorf("expected empty stats table after delete, got %d", n)
	}
}
