package seeder

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/dotaseed/internal/database/common"
	"github.com/Lumos-Labs-HQ/dotaseed/internal/reference"
	"github.com/fatih/color"
)

// Sink is the storage the pipeline writes to and reads pools back from.
type Sink interface {
	Reader
	Upsert(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
	Count(ctx context.Context, table string) (int64, error)
	Delete(ctx context.Context, table string) error
}

type Options struct {
	Accounts int
	Players  int
	Matches  int

	// Seed drives every random draw; 0 picks a time based seed.
	Seed uint64
	// RandomOffsets presents match dates in a random UTC offset instead of UTC.
	RandomOffsets bool
	Quiet         bool
	Now           func() time.Time
}

func DefaultOptions() Options {
	return Options{
		Accounts:      2000,
		Players:       1252,
		Matches:       500,
		RandomOffsets: true,
	}
}

type stage struct {
	table    common.Table
	generate func(ctx context.Context) ([][]any, error)
}

type Seeder struct {
	sink     Sink
	provider reference.Provider
	opts     Options
	sampler  *Sampler
	cache    *ReferenceCache

	stages  map[string]stage
	graph   *DependencyGraph
	catalog *reference.Catalog
	// stats that already had neutral items before this run's neutral wave
	settled map[int64]bool
}

// New builds a seeder over sink. A nil provider skips the reference stages;
// the static tables must then already be loaded.
func New(sink Sink, provider reference.Provider, opts Options) (*Seeder, error) {
	if opts.Accounts < 0 || opts.Players < 0 || opts.Matches < 0 {
		return nil, fmt.Errorf("counts must not be negative")
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	cache, err := NewReferenceCache(sink)
	if err != nil {
		return nil, err
	}

	s := &Seeder{
		sink:     sink,
		provider: provider,
		opts:     opts,
		sampler:  NewSampler(opts.Seed),
		cache:    cache,
		stages:   make(map[string]stage),
		graph:    NewDependencyGraph(),
	}
	s.declareStages()
	return s, nil
}

func (s *Seeder) declareStages() {
	if s.provider != nil {
		s.add(common.Heroes, s.heroRows)
		s.add(common.Items, s.itemRows)
		s.add(common.NeutralItems, s.neutralItemRows)
		s.add(common.NeutralEnchants, s.neutralEnchantRows)
	}
	s.add(common.SteamAccounts, s.accountRows)
	s.add(common.Players, s.playerRows)
	s.add(common.Matches, s.matchRows)
	s.add(common.PlayerMatchStats, s.statRows)
	s.add(common.PlayerNeutralItems, s.neutralUsageRows)
	s.add(common.PlayerItems, s.itemUsageRows)
}

func (s *Seeder) add(table common.Table, generate func(ctx context.Context) ([][]any, error)) {
	s.stages[table.Name] = stage{table: table, generate: generate}
	s.graph.AddTable(table.Name, table.Dependencies())
}

func (s *Seeder) Seed() uint64 {
	return s.opts.Seed
}

// Order returns the stage run order.
func (s *Seeder) Order() ([]string, error) {
	return s.graph.BuildInsertionOrder()
}

func (s *Seeder) say(printer func(format string, a ...interface{}), format string, a ...interface{}) {
	if !s.opts.Quiet {
		printer(format, a...)
	}
}

// Run fetches the reference data, then generates and flushes every table in
// dependency order. Each flush is a commit barrier: later stages re-read
// their pools from storage. The first error stops the run.
func (s *Seeder) Run(ctx context.Context) (*Report, error) {
	report := &Report{Seed: s.opts.Seed, StartedAt: s.opts.Now()}

	order, err := s.Order()
	if err != nil {
		return report, fmt.Errorf("failed to build insertion order: %w", err)
	}

	// Storage may have changed since the last run of this seeder.
	s.cache.Invalidate()

	s.say(color.Cyan, "🌱 Starting dataset generation (seed %d)...", s.opts.Seed)
	s.say(color.Cyan, "📋 Insertion order: %s", strings.Join(order, " → "))

	if s.provider != nil {
		if err := s.fetchReference(ctx); err != nil {
			return report, err
		}
	}

	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		st := s.stages[name]
		stageReport, err := s.runStage(ctx, st)
		report.Stages = append(report.Stages, stageReport)
		if err != nil {
			return report, err
		}
	}

	s.say(color.Green, "\n✅ Dataset generation completed: %d rows inserted", report.TotalInserted())
	return report, nil
}

// LoadReference runs only the reference stages.
func (s *Seeder) LoadReference(ctx context.Context) (*Report, error) {
	report := &Report{Seed: s.opts.Seed, StartedAt: s.opts.Now()}
	if s.provider == nil {
		return report, fmt.Errorf("no reference provider configured")
	}
	if err := s.fetchReference(ctx); err != nil {
		return report, err
	}

	for _, table := range []common.Table{common.Heroes, common.Items, common.NeutralItems, common.NeutralEnchants} {
		stageReport, err := s.runStage(ctx, s.stages[table.Name])
		report.Stages = append(report.Stages, stageReport)
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

func (s *Seeder) fetchReference(ctx context.Context) error {
	s.say(color.Cyan, "🌐 Fetching reference data...")
	catalog, err := reference.Load(ctx, s.provider)
	if err != nil {
		return err
	}
	s.catalog = catalog
	s.say(color.Green, "  ✅ %d heroes, %d items, %d neutral items, %d enchants",
		len(catalog.Heroes), len(catalog.Items), len(catalog.NeutralItems), len(catalog.NeutralEnchants))
	return nil
}

func (s *Seeder) runStage(ctx context.Context, st stage) (StageReport, error) {
	start := time.Now()
	rep := StageReport{Table: st.table.Name}
	s.say(color.Cyan, "  📝 Seeding %s...", st.table.Name)

	rows, err := st.generate(ctx)
	if err != nil {
		rep.Duration = time.Since(start)
		return rep, fmt.Errorf("failed to generate %s: %w", st.table.Name, err)
	}
	rep.Generated = len(rows)

	inserted, err := s.flush(ctx, st.table, rows)
	rep.Duration = time.Since(start)
	if err != nil {
		return rep, err
	}
	rep.Inserted = inserted
	rep.Skipped = int64(rep.Generated) - inserted

	if rep.Skipped > 0 {
		s.say(color.Yellow, "  ⚠️  %s: %d of %d rows inserted, %d skipped on conflict",
			st.table.Name, inserted, rep.Generated, rep.Skipped)
	} else {
		s.say(color.Green, "  ✅ %s: %d rows inserted", st.table.Name, inserted)
	}
	return rep, nil
}

// flush writes one batch and then drops the memoised reads of that table.
func (s *Seeder) flush(ctx context.Context, table common.Table, rows [][]any) (int64, error) {
	defer s.cache.InvalidateTable(table.Name)
	if len(rows) == 0 {
		return 0, nil
	}
	inserted, err := s.sink.Upsert(ctx, table.Name, table.Columns, rows)
	if err != nil {
		return 0, &PersistenceError{Table: table.Name, Err: err}
	}
	return inserted, nil
}

func (s *Seeder) heroRows(ctx context.Context) ([][]any, error) {
	return HeroRows(s.catalog.Heroes), nil
}

func (s *Seeder) itemRows(ctx context.Context) ([][]any, error) {
	return ItemRows(s.catalog.Items), nil
}

func (s *Seeder) neutralItemRows(ctx context.Context) ([][]any, error) {
	return NeutralItemRows(s.catalog.NeutralItems), nil
}

func (s *Seeder) neutralEnchantRows(ctx context.Context) ([][]any, error) {
	return NeutralEnchantRows(s.catalog.NeutralEnchants), nil
}

func (s *Seeder) accountRows(ctx context.Context) ([][]any, error) {
	existing, err := s.cache.IDSet(ctx, common.SteamAccounts.Name, "steam_id")
	if err != nil {
		return nil, err
	}
	accounts, err := GenerateAccounts(s.sampler, s.opts.Accounts, s.opts.Now(), existing)
	if err != nil {
		return nil, err
	}
	return toRows(accounts), nil
}

func (s *Seeder) playerRows(ctx context.Context) ([][]any, error) {
	steamIDs, err := s.cache.RandomIDs(ctx, common.SteamAccounts.Name, "steam_id", s.opts.Players)
	if err != nil {
		return nil, err
	}
	existing, err := s.cache.IDSet(ctx, common.Players.Name, "player_id")
	if err != nil {
		return nil, err
	}
	usedRanks, err := s.cache.LoadIDs(ctx, common.Players.Name, "rank")
	if err != nil {
		return nil, err
	}

	players, err := GeneratePlayers(s.sampler, s.opts.Players, steamIDs, NewRankAllocator(s.sampler, usedRanks), existing)
	if err != nil {
		return nil, err
	}
	return toRows(players), nil
}

func (s *Seeder) matchRows(ctx context.Context) ([][]any, error) {
	existing, err := s.cache.IDSet(ctx, common.Matches.Name, "match_id")
	if err != nil {
		return nil, err
	}
	matches, err := GenerateMatches(s.sampler, s.opts.Matches, s.opts.Now(), s.opts.RandomOffsets, existing)
	if err != nil {
		return nil, err
	}
	return toRows(matches), nil
}

// statRows fills rosters for the persisted matches that have none yet.
func (s *Seeder) statRows(ctx context.Context) ([][]any, error) {
	matchIDs, err := s.cache.LoadIDs(ctx, common.Matches.Name, "match_id")
	if err != nil {
		return nil, err
	}
	played, err := s.cache.IDSet(ctx, common.PlayerMatchStats.Name, "match_id")
	if err != nil {
		return nil, err
	}
	playerIDs, err := s.cache.LoadIDs(ctx, common.Players.Name, "player_id")
	if err != nil {
		return nil, err
	}
	heroIDs, err := s.cache.LoadIDs(ctx, common.Heroes.Name, "hero_id")
	if err != nil {
		return nil, err
	}

	pending := slices.DeleteFunc(slices.Clone(matchIDs), func(id int64) bool { return played[id] })
	stats, err := GeneratePlayerMatchStats(s.sampler, pending, playerIDs, heroIDs)
	if err != nil {
		return nil, err
	}
	return toRows(stats), nil
}

func (s *Seeder) neutralUsageRows(ctx context.Context) ([][]any, error) {
	stats, err := s.cache.StatDurations(ctx)
	if err != nil {
		return nil, err
	}
	settled, err := s.cache.IDSet(ctx, common.PlayerNeutralItems.Name, "stat_id")
	if err != nil {
		return nil, err
	}
	neutralIDs, err := s.cache.LoadIDs(ctx, common.NeutralItems.Name, "neutral_items_id")
	if err != nil {
		return nil, err
	}
	enchantIDs, err := s.cache.LoadIDs(ctx, common.NeutralEnchants.Name, "neutral_enchant_id")
	if err != nil {
		return nil, err
	}
	s.settled = settled

	usage, err := GeneratePlayerNeutralItems(s.sampler, pendingStats(stats, settled), neutralIDs, enchantIDs)
	if err != nil {
		return nil, err
	}
	return toRows(usage), nil
}

func (s *Seeder) itemUsageRows(ctx context.Context) ([][]any, error) {
	stats, err := s.cache.StatDurations(ctx)
	if err != nil {
		return nil, err
	}
	equipped, err := s.cache.IDSet(ctx, common.PlayerItems.Name, "stat_id")
	if err != nil {
		return nil, err
	}
	itemIDs, err := s.cache.LoadIDs(ctx, common.Items.Name, "item_id")
	if err != nil {
		return nil, err
	}
	for id := range s.settled {
		equipped[id] = true
	}

	return toRows(GeneratePlayerItems(s.sampler, pendingStats(stats, equipped), itemIDs)), nil
}

func pendingStats(stats []common.StatDuration, done map[int64]bool) []common.StatDuration {
	out := make([]common.StatDuration, 0, len(stats))
	for _, st := range stats {
		if !done[st.StatID] {
			out = append(out, st)
		}
	}
	return out
}

// Status counts the rows of every table.
func (s *Seeder) Status(ctx context.Context) ([]TableCount, error) {
	var counts []TableCount
	for _, table := range common.Catalog() {
		n, err := s.sink.Count(ctx, table.Name)
		if err != nil {
			return nil, err
		}
		counts = append(counts, TableCount{Table: table.Name, Rows: n})
	}
	return counts, nil
}

// Reset deletes every row, children first.
func (s *Seeder) Reset(ctx context.Context) error {
	graph := NewDependencyGraph()
	for _, table := range common.Catalog() {
		graph.AddTable(table.Name, table.Dependencies())
	}
	order, err := graph.BuildInsertionOrder()
	if err != nil {
		return err
	}

	for i := len(order) - 1; i >= 0; i-- {
		if err := s.sink.Delete(ctx, order[i]); err != nil {
			return fmt.Errorf("failed to reset %s: %w", order[i], err)
		}
		s.say(color.Yellow, "  🗑️  %s cleared", order[i])
	}
	s.cache.Invalidate()
	return nil
}
