// Package memory holds an in-process Sink that enforces the same unique keys,
// serial columns and foreign keys as the SQL schemas. It backs tests and
// dry runs.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/Lumos-Labs-HQ/dotaseed/internal/database/common"
)

type table struct {
	def    common.Table
	rows   []map[string]any
	keys   map[string]map[string]bool // constraint -> encoded key
	serial int64
}

type Sink struct {
	mu     sync.Mutex
	tables map[string]*table
	rng    *rand.Rand // nil shuffles with the global source
}

func New() *Sink {
	s := &Sink{tables: make(map[string]*table)}
	for _, def := range common.Catalog() {
		s.tables[def.Name] = newTable(def)
	}
	return s
}

// NewSeeded returns a Sink whose random-order reads are drawn from seed, so
// a run against it is reproducible.
func NewSeeded(seed uint64) *Sink {
	s := New()
	s.rng = rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
	return s
}

func newTable(def common.Table) *table {
	t := &table{def: def, keys: make(map[string]map[string]bool)}
	for _, cols := range def.Unique {
		t.keys[constraintName(cols)] = make(map[string]bool)
	}
	return t
}

func (s *Sink) Connect(ctx context.Context, url string) error { return nil }
func (s *Sink) Close() error                                  { return nil }
func (s *Sink) Ping(ctx context.Context) error                { return nil }
func (s *Sink) ApplySchema(ctx context.Context) error         { return nil }

func (s *Sink) table(name string) (*table, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("unknown table: %s", name)
	}
	return t, nil
}

// Upsert applies the batch atomically: a foreign key violation rejects every
// row, while unique-key collisions only skip the colliding row.
func (s *Sink) Upsert(ctx context.Context, name string, columns []string, rows [][]any) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(name)
	if err != nil {
		return 0, err
	}
	for _, col := range columns {
		if !slices.Contains(t.def.Columns, col) {
			return 0, fmt.Errorf("table %s has no insertable column %s", name, col)
		}
	}

	staged := make(map[string]map[string]bool, len(t.keys))
	for c := range t.keys {
		staged[c] = make(map[string]bool)
	}
	serial := t.serial
	var accepted []map[string]any

	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("row %d of %s has %d values, want %d", i, name, len(row), len(columns))
		}
		rec := make(map[string]any, len(columns)+1)
		for j, col := range columns {
			rec[col] = normalize(row[j])
		}
		for col, ref := range t.def.References {
			v := rec[col]
			if v == nil {
				continue
			}
			if !s.exists(ref, v) {
				return 0, fmt.Errorf("row %d of %s: %s=%v violates foreign key to %s.%s", i, name, col, v, ref.Table, ref.Column)
			}
		}
		if t.def.Serial != "" {
			rec[t.def.Serial] = serial + 1
		}

		duplicate := false
		encoded := make(map[string]string, len(t.def.Unique))
		for _, cols := range t.def.Unique {
			key, ok := encodeKey(rec, cols)
			if !ok {
				continue
			}
			c := constraintName(cols)
			if t.keys[c][key] || staged[c][key] {
				duplicate = true
				break
			}
			encoded[c] = key
		}
		if duplicate {
			continue
		}

		for c, key := range encoded {
			staged[c][key] = true
		}
		if t.def.Serial != "" {
			serial++
		}
		accepted = append(accepted, rec)
	}

	for c, keys := range staged {
		for key := range keys {
			t.keys[c][key] = true
		}
	}
	t.serial = serial
	t.rows = append(t.rows, accepted...)
	return int64(len(accepted)), nil
}

func (s *Sink) exists(ref common.Reference, v any) bool {
	t, ok := s.tables[ref.Table]
	if !ok {
		return false
	}
	key, _ := encodeKey(map[string]any{ref.Column: v}, []string{ref.Column})
	return t.keys[ref.Column][key]
}

func (s *Sink) Query(ctx context.Context, q common.ReadQuery) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(q.Table)
	if err != nil {
		return nil, err
	}
	if !t.hasColumn(q.Column) {
		return nil, fmt.Errorf("table %s has no column %s", q.Table, q.Column)
	}
	filter := make(map[string]any, len(q.Filter))
	for col, v := range q.Filter {
		if !t.hasColumn(col) {
			return nil, fmt.Errorf("table %s has no column %s", q.Table, col)
		}
		filter[col] = normalize(v)
	}

	var ids []int64
	for _, rec := range t.rows {
		if !matches(rec, filter) {
			continue
		}
		id, ok := rec[q.Column].(int64)
		if !ok {
			continue
		}
		ids = append(ids, id)
	}

	if q.RandomOrder {
		swap := func(i, j int) { ids[i], ids[j] = ids[j], ids[i] }
		if s.rng != nil {
			s.rng.Shuffle(len(ids), swap)
		} else {
			rand.Shuffle(len(ids), swap)
		}
	}
	if q.Limit > 0 && uint64(len(ids)) > q.Limit {
		ids = ids[:q.Limit]
	}
	return ids, nil
}

func (s *Sink) StatDurations(ctx context.Context) ([]common.StatDuration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	durations := make(map[int64]int)
	for _, m := range s.tables[common.Matches.Name].rows {
		id, _ := m["match_id"].(int64)
		d, _ := m["duration"].(int64)
		durations[id] = int(d)
	}

	var out []common.StatDuration
	for _, stat := range s.tables[common.PlayerMatchStats.Name].rows {
		matchID, _ := stat["match_id"].(int64)
		d, ok := durations[matchID]
		if !ok {
			continue
		}
		statID, _ := stat["stat_id"].(int64)
		out = append(out, common.StatDuration{StatID: statID, Duration: d})
	}
	slices.SortFunc(out, func(a, b common.StatDuration) int {
		return cmp.Compare(a.StatID, b.StatID)
	})
	return out, nil
}

func (s *Sink) Count(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(name)
	if err != nil {
		return 0, err
	}
	return int64(len(t.rows)), nil
}

// Delete empties a table. It fails while another table still references it.
// Serial counters keep running, as they do in the SQL engines.
func (s *Sink) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(name)
	if err != nil {
		return err
	}
	for _, other := range s.tables {
		if other == t || len(other.rows) == 0 {
			continue
		}
		if slices.Contains(other.def.Dependencies(), name) {
			return fmt.Errorf("cannot delete from %s: referenced by %s", name, other.def.Name)
		}
	}

	t.rows = nil
	for c := range t.keys {
		t.keys[c] = make(map[string]bool)
	}
	return nil
}

// Rows returns a copy of every stored row of a table.
func (s *Sink) Rows(name string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[name]
	if !ok {
		return nil
	}
	out := make([]map[string]any, len(t.rows))
	for i, rec := range t.rows {
		cp := make(map[string]any, len(rec))
		for k, v := range rec {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}

func (t *table) hasColumn(col string) bool {
	return col == t.def.Serial || slices.Contains(t.def.Columns, col)
}

func matches(rec, filter map[string]any) bool {
	for col, want := range filter {
		if fmt.Sprint(rec[col]) != fmt.Sprint(want) || rec[col] == nil {
			return false
		}
	}
	return true
}

func constraintName(cols []string) string {
	return strings.Join(cols, ",")
}

// encodeKey reports false when any key column is NULL; such rows never collide.
func encodeKey(rec map[string]any, cols []string) (string, bool) {
	parts := make([]string, len(cols))
	for i, col := range cols {
		v := rec[col]
		if v == nil {
			return "", false
		}
		parts[i] = fmt.Sprintf("%T:%v", v, v)
	}
	return strings.Join(parts, "|"), true
}

func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case []string:
		if n == nil {
			return nil
		}
		return slices.Clone(n)
	default:
		return v
	}
}
