package reference

import "context"

// StaticProvider serves a fixed catalog. It stands in for the network when
// the reference tables should be loaded from known data.
type StaticProvider struct {
	Catalog Catalog
}

func (p StaticProvider) FetchHeroes(ctx context.Context) ([]Hero, error) {
	return p.Catalog.Heroes, nil
}

func (p StaticProvider) FetchItems(ctx context.Context) ([]Item, error) {
	return p.Catalog.Items, nil
}

func (p StaticProvider) FetchNeutralItems(ctx context.Context) ([]NeutralItem, error) {
	return p.Catalog.NeutralItems, nil
}

func (p StaticProvider) FetchNeutralEnchants(ctx context.Context) ([]NeutralEnchant, error) {
	return p.Catalog.NeutralEnchants, nil
}
