package seeder

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/dotaseed/internal/database/common"
	lru "github.com/hashicorp/golang-lru"
)

const cacheSize = 64

// statDurationsKey caches the stat⋈match join; it goes stale when either
// side is flushed.
const statDurationsKey = "stat_durations"

// Reader is the read-back half of a sink.
type Reader interface {
	Query(ctx context.Context, q common.ReadQuery) ([]int64, error)
	StatDurations(ctx context.Context) ([]common.StatDuration, error)
}

// ReferenceCache reads foreign key pools from storage. Results are memoised
// until the table they were read from is flushed again.
type ReferenceCache struct {
	reader Reader
	cache  *lru.Cache
}

func NewReferenceCache(reader Reader) (*ReferenceCache, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create reference cache: %w", err)
	}
	return &ReferenceCache{reader: reader, cache: cache}, nil
}

// LoadIDs returns every non-null value of table.column.
func (c *ReferenceCache) LoadIDs(ctx context.Context, table, column string) ([]int64, error) {
	return c.query(ctx, common.ReadQuery{Table: table, Column: column})
}

// RandomIDs returns up to limit values of table.column in random order.
func (c *ReferenceCache) RandomIDs(ctx context.Context, table, column string, limit int) ([]int64, error) {
	if limit <= 0 {
		return []int64{}, nil
	}
	return c.query(ctx, common.ReadQuery{Table: table, Column: column, Limit: uint64(limit), RandomOrder: true})
}

// IDSet is LoadIDs as a lookup set.
func (c *ReferenceCache) IDSet(ctx context.Context, table, column string) (map[int64]bool, error) {
	ids, err := c.LoadIDs(ctx, table, column)
	if err != nil {
		return nil, err
	}
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (c *ReferenceCache) query(ctx context.Context, q common.ReadQuery) ([]int64, error) {
	key := fmt.Sprintf("%s|%s|%d|%t", q.Table, q.Column, q.Limit, q.RandomOrder)
	if v, ok := c.cache.Get(key); ok {
		return v.([]int64), nil
	}
	ids, err := c.reader.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s.%s: %w", q.Table, q.Column, err)
	}
	c.cache.Add(key, ids)
	return ids, nil
}

// StatDurations returns every persisted stat with the duration of its match.
func (c *ReferenceCache) StatDurations(ctx context.Context) ([]common.StatDuration, error) {
	key := statDurationsKey
	if v, ok := c.cache.Get(key); ok {
		return v.([]common.StatDuration), nil
	}
	stats, err := c.reader.StatDurations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read stat durations: %w", err)
	}
	c.cache.Add(key, stats)
	return stats, nil
}

// Invalidate drops every memoised read.
func (c *ReferenceCache) Invalidate() {
	c.cache.Purge()
}

// InvalidateTable drops the reads that depend on table. Pools of other
// tables stay cached.
func (c *ReferenceCache) InvalidateTable(table string) {
	prefix := table + "|"
	for _, k := range c.cache.Keys() {
		key, ok := k.(string)
		if !ok {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			c.cache.Remove(k)
		}
	}
	if table == common.PlayerMatchStats.Name || table == common.Matches.Name {
		c.cache.Remove(statDurationsKey)
	}
}
