// Package reference fetches the static game data (heroes, items, neutral
// items and neutral enchants) that seeds the static schema.
package reference

import (
	"context"
	"fmt"
)

type Hero struct {
	ID               int64
	Name             string
	PrimaryAttribute string
	Ranged           bool
}

type Item struct {
	Name   string
	Cost   int
	Recipe []string // component item keys, nil when the item has no recipe
}

type NeutralItem struct {
	Name string
	Tier int
}

type NeutralEnchant struct {
	Name string
}

// Catalog is everything a provider returns for one run.
type Catalog struct {
	Heroes          []Hero
	Items           []Item
	NeutralItems    []NeutralItem
	NeutralEnchants []NeutralEnchant
}

type Provider interface {
	FetchHeroes(ctx context.Context) ([]Hero, error)
	FetchItems(ctx context.Context) ([]Item, error)
	FetchNeutralItems(ctx context.Context) ([]NeutralItem, error)
	FetchNeutralEnchants(ctx context.Context) ([]NeutralEnchant, error)
}

// FetchError reports an unreachable provider or a response that could not
// be parsed. It is fatal to a seeding run.
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
