package seeder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Lumos-Labs-HQ/dotaseed/internal/database/common"
	"github.com/Lumos-Labs-HQ/dotaseed/internal/database/memory"
	"github.com/Lumos-Labs-HQ/dotaseed/internal/reference"
)

func testCatalog() reference.Catalog {
	var cat reference.Catalog
	for i := 1; i <= 6; i++ {
		cat.Heroes = append(cat.Heroes, reference.Hero{ID: int64(i), Name: fmt.Sprintf("Hero %d", i), PrimaryAttribute: "str", Ranged: i%2 == 0})
	}
	for i := 1; i <= 8; i++ {
		cat.Items = append(cat.Items, reference.Item{Name: fmt.Sprintf("Item %d", i), Cost: 100 * i})
	}
	cat.Items[0].Recipe = []string{"item_1", "item_2"}
	for i := 1; i <= 7; i++ {
		cat.NeutralItems = append(cat.NeutralItems, reference.NeutralItem{Name: fmt.Sprintf("Neutral %d", i), Tier: (i-1)%5 + 1})
	}
	cat.NeutralEnchants = []reference.NeutralEnchant{{Name: "Brawny"}, {Name: "Quick"}}
	return cat
}

func testOptions(seed uint64) Options {
	return Options{
		Accounts:      30,
		Players:       20,
		Matches:       4,
		Seed:          seed,
		RandomOffsets: true,
		Quiet:         true,
		Now:           func() time.Time { return testNow },
	}
}

func count(t *testing.T, sink *memory.Sink, table common.Table) int64 {
	t.Helper()
	n, err := sink.Count(context.Background(), table.Name)
	if err != nil {
		t.Fatalf("Count %s failed: %v", table.Name, err)
	}
	return n
}

func TestRunPopulatesEveryTable(t *testing.T) {
	sink := memory.New()
	s, err := New(sink, reference.StaticProvider{Catalog: testCatalog()}, testOptions(1))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Stages) != 10 {
		t.Fatalf("expected 10 stages, got %d", len(report.Stages))
	}
	if report.Seed != 1 {
		t.Errorf("expected seed 1 in report, got %d", report.Seed)
	}

	want := []struct {
		table common.Table
		rows  int64
	}{
		{common.Heroes, 6},
		{common.Items, 8},
		{common.NeutralItems, 7},
		{common.NeutralEnchants, 2},
		{common.SteamAccounts, 30},
		{common.Players, 20},
		{common.Matches, 4},
		{common.PlayerMatchStats, 40},
		{common.PlayerNeutralItems, 200},
	}
	for _, w := range want {
		if got := count(t, sink, w.table); got != w.rows {
			t.Errorf("%s: expected %d rows, got %d", w.table.Name, w.rows, got)
		}
	}
	if got := count(t, sink, common.PlayerItems); got > 240 {
		t.Errorf("expected at most 240 item rows, got %d", got)
	}

	stage, ok := report.Stage(common.PlayerMatchStats.Name)
	if !ok || stage.Generated != 40 || stage.Inserted != 40 || stage.Skipped != 0 {
		t.Errorf("unexpected stat stage report %+v", stage)
	}
}

func TestRunRosterInvariantAfterPersistence(t *testing.T) {
	sink := memory.New()
	s, _ := New(sink, reference.StaticProvider{Catalog: testCatalog()}, testOptions(2))
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	players := make(map[int64]bool)
	for _, row := range sink.Rows(common.Players.Name) {
		players[row["player_id"].(int64)] = true
	}

	sides := make(map[int64]map[bool]int)
	for _, row := range sink.Rows(common.PlayerMatchStats.Name) {
		matchID := row["match_id"].(int64)
		if !players[row["player_id"].(int64)] {
			t.Errorf("stat references unknown player %v", row["player_id"])
		}
		if sides[matchID] == nil {
			sides[matchID] = make(map[bool]int)
		}
		sides[matchID][row["side"].(bool)]++
	}
	for matchID, counts := range sides {
		if counts[true] != 5 || counts[false] != 5 {
			t.Errorf("match %d: sides %v", matchID, counts)
		}
	}
}

func TestRunIsIdempotentForReferenceData(t *testing.T) {
	sink := memory.New()
	provider := reference.StaticProvider{Catalog: testCatalog()}

	first, _ := New(sink, provider, testOptions(3))
	if _, err := first.Run(context.Background()); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	second, _ := New(sink, provider, testOptions(4))
	report, err := second.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}

	for _, table := range []common.Table{common.Heroes, common.Items, common.NeutralItems, common.NeutralEnchants} {
		st, _ := report.Stage(table.Name)
		if st.Inserted != 0 || st.Skipped != int64(st.Generated) {
			t.Errorf("%s: expected rerun to insert nothing, got %+v", table.Name, st)
		}
	}

	if got := count(t, sink, common.Matches); got != 8 {
		t.Errorf("expected 8 matches after two runs, got %d", got)
	}
	if got := count(t, sink, common.PlayerMatchStats); got != 80 {
		t.Errorf("expected rosters only for the new matches (80 rows), got %d", got)
	}
	if got := count(t, sink, common.PlayerNeutralItems); got != 400 {
		t.Errorf("expected neutral items only for the new stats (400 rows), got %d", got)
	}
}

func TestRunWithoutProviderUsesPersistedReferenceData(t *testing.T) {
	sink := memory.New()
	loader, _ := New(sink, reference.StaticProvider{Catalog: testCatalog()}, testOptions(5))
	if _, err := loader.LoadReference(context.Background()); err != nil {
		t.Fatalf("LoadReference failed: %v", err)
	}
	if got := count(t, sink, common.SteamAccounts); got != 0 {
		t.Fatalf("LoadReference must not generate accounts, got %d", got)
	}

	s, _ := New(sink, nil, testOptions(6))
	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Stages) != 6 {
		t.Errorf("expected 6 generated stages, got %d", len(report.Stages))
	}
	if got := count(t, sink, common.PlayerMatchStats); got != 40 {
		t.Errorf("expected 40 stat rows, got %d", got)
	}
}

func TestRunWithoutReferenceDataFails(t *testing.T) {
	sink := memory.New()
	s, _ := New(sink, nil, testOptions(7))
	_, err := s.Run(context.Background())

	var ipe *InsufficientPoolError
	if !errors.As(err, &ipe) || ipe.Pool != "hero_id" {
		t.Fatalf("expected hero pool error, got %v", err)
	}
	if got := count(t, sink, common.PlayerMatchStats); got != 0 {
		t.Errorf("no stats may be written after a failed stage, got %d", got)
	}
}

type failingProvider struct{ reference.StaticProvider }

func (failingProvider) FetchHeroes(ctx context.Context) ([]reference.Hero, error) {
	return nil, &reference.FetchError{Resource: "heroes", Err: errors.New("unreachable")}
}

func TestFetchErrorAbortsBeforeGeneration(t *testing.T) {
	sink := memory.New()
	s, _ := New(sink, failingProvider{}, testOptions(8))
	report, err := s.Run(context.Background())

	var fe *reference.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *reference.FetchError, got %v", err)
	}
	if len(report.Stages) != 0 {
		t.Errorf("expected no stages to run, got %d", len(report.Stages))
	}
	for _, table := range common.Catalog() {
		if got := count(t, sink, table); got != 0 {
			t.Errorf("%s: expected no rows, got %d", table.Name, got)
		}
	}
}

type rejectingSink struct {
	*memory.Sink
	table string
}

func (r rejectingSink) Upsert(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if table == r.table {
		return 0, errors.New("connection reset")
	}
	return r.Sink.Upsert(ctx, table, columns, rows)
}

func TestPersistenceErrorStopsDependentStages(t *testing.T) {
	sink := memory.New()
	s, _ := New(rejectingSink{Sink: sink, table: common.Matches.Name}, reference.StaticProvider{Catalog: testCatalog()}, testOptions(9))
	_, err := s.Run(context.Background())

	var pe *PersistenceError
	if !errors.As(err, &pe) || pe.Table != common.Matches.Name {
		t.Fatalf("expected *PersistenceError for matches, got %v", err)
	}
	if got := count(t, sink, common.Players); got != 20 {
		t.Errorf("earlier stages must stay committed, got %d players", got)
	}
	if got := count(t, sink, common.PlayerMatchStats); got != 0 {
		t.Errorf("later stages must not run, got %d stats", got)
	}
}

func TestStatusAndReset(t *testing.T) {
	sink := memory.New()
	s, _ := New(sink, reference.StaticProvider{Catalog: testCatalog()}, testOptions(10))
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	counts, err := s.Status(context.Background())
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if len(counts) != 10 {
		t.Fatalf("expected 10 tables, got %d", len(counts))
	}

	if err := s.Reset(context.Background()); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	counts, _ = s.Status(context.Background())
	for _, c := range counts {
		if c.Rows != 0 {
			t.Errorf("%s still has %d rows after reset", c.Table, c.Rows)
		}
	}
}

func TestReportYAML(t *testing.T) {
	sink := memory.New()
	s, _ := New(sink, reference.StaticProvider{Catalog: testCatalog()}, testOptions(11))
	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var buf bytes.Buffer
	if err := report.WriteYAML(&buf); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"seed: 11", "table: match_info.player_match_stat", "generated: 40"} {
		if !strings.Contains(out, want) {
			t.Errorf("report is missing %q:\n%s", want, out)
		}
	}
}

func TestRunIsReproducible(t *testing.T) {
	a, b := memory.NewSeeded(12), memory.NewSeeded(12)
	for _, sink := range []*memory.Sink{a, b} {
		s, _ := New(sink, reference.StaticProvider{Catalog: testCatalog()}, testOptions(12))
		if _, err := s.Run(context.Background()); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
	}

	tests := []struct {
		table   common.Table
		columns []string
	}{
		{common.Matches, []string{"match_id", "date"}},
		{common.Players, []string{"player_id", "steam_id", "rank"}},
		{common.PlayerMatchStats, []string{"stat_id", "match_id", "player_id", "hero_id"}},
		{common.PlayerItems, []string{"stat_id", "item_id", "time_from_start"}},
	}
	for _, tt := range tests {
		ra, rb := a.Rows(tt.table.Name), b.Rows(tt.table.Name)
		if len(ra) != len(rb) {
			t.Fatalf("%s: same seed produced %d and %d rows", tt.table.Name, len(ra), len(rb))
		}
		for i := range ra {
			for _, col := range tt.columns {
				if ra[i][col] != rb[i][col] {
					t.Fatalf("%s row %d: same seed produced different %s: %v vs %v", tt.table.Name, i, col, ra[i][col], rb[i][col])
				}
			}
		}
	}
}

type countingSink struct {
	*memory.Sink
	queries   map[string]int
	durations int
}

func (c *countingSink) Query(ctx context.Context, q common.ReadQuery) ([]int64, error) {
	c.queries[fmt.Sprintf("%s.%s|%d|%t", q.Table, q.Column, q.Limit, q.RandomOrder)]++
	return c.Sink.Query(ctx, q)
}

func (c *countingSink) StatDurations(ctx context.Context) ([]common.StatDuration, error) {
	c.durations++
	return c.Sink.StatDurations(ctx)
}

func TestRunReusesReadsAcrossUnrelatedFlushes(t *testing.T) {
	sink := &countingSink{Sink: memory.New(), queries: make(map[string]int)}
	s, _ := New(sink, reference.StaticProvider{Catalog: testCatalog()}, testOptions(13))
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if sink.durations != 1 {
		t.Errorf("neutral and item waves should share one stat/match join, got %d", sink.durations)
	}
	// matches is flushed between the match and stat stages, so its pool is read again.
	if n := sink.queries[common.Matches.Name+".match_id|0|false"]; n != 2 {
		t.Errorf("expected match ids to be re-read after their flush, got %d reads", n)
	}
	if n := sink.queries[common.Heroes.Name+".hero_id|0|false"]; n != 1 {
		t.Errorf("expected one hero read, got %d", n)
	}
	if got := count(t, sink.Sink, common.PlayerItems); got == 0 {
		t.Error("item wave produced no rows from the cached join")
	}
}
