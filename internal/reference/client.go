package reference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const DefaultBaseURL = "https://api.opendota.com/api"

const (
	heroesPath    = "/heroes"
	constantsPath = "/constants/items"
)

// Client is an OpenDota backed Provider.
type Client struct {
	baseURL    string
	httpClient *http.Client
	group      singleflight.Group
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type heroResponse struct {
	ID            int64  `json:"id"`
	LocalizedName string `json:"localized_name"`
	PrimaryAttr   string `json:"primary_attr"`
	AttackType    string `json:"attack_type"`
}

type itemConstant struct {
	DisplayName *string  `json:"dname"`
	Cost        *int     `json:"cost"`
	Components  []string `json:"components"`
	Tier        *int     `json:"tier"`
}

func (c *Client) getJSON(ctx context.Context, resource, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &FetchError{Resource: resource, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &FetchError{Resource: resource, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchError{Resource: resource, Err: fmt.Errorf("API returned status %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &FetchError{Resource: resource, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	return nil
}

func (c *Client) FetchHeroes(ctx context.Context) ([]Hero, error) {
	var raw []heroResponse
	if err := c.getJSON(ctx, "heroes", heroesPath, &raw); err != nil {
		return nil, err
	}

	heroes := make([]Hero, 0, len(raw))
	for _, h := range raw {
		heroes = append(heroes, Hero{
			ID:               h.ID,
			Name:             h.LocalizedName,
			PrimaryAttribute: h.PrimaryAttr,
			Ranged:           h.AttackType == "Ranged",
		})
	}
	return heroes, nil
}

// itemConstants downloads the items constants table. Concurrent callers
// share one request.
func (c *Client) itemConstants(ctx context.Context) (map[string]itemConstant, error) {
	v, err, _ := c.group.Do(constantsPath, func() (any, error) {
		var raw map[string]itemConstant
		if err := c.getJSON(ctx, "item constants", constantsPath, &raw); err != nil {
			return nil, err
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]itemConstant), nil
}

func (c *Client) FetchItems(ctx context.Context) ([]Item, error) {
	raw, err := c.itemConstants(ctx)
	if err != nil {
		return nil, err
	}
	return itemsFrom(raw), nil
}

func (c *Client) FetchNeutralItems(ctx context.Context) ([]NeutralItem, error) {
	raw, err := c.itemConstants(ctx)
	if err != nil {
		return nil, err
	}
	return neutralItemsFrom(raw), nil
}

func (c *Client) FetchNeutralEnchants(ctx context.Context) ([]NeutralEnchant, error) {
	raw, err := c.itemConstants(ctx)
	if err != nil {
		return nil, err
	}
	return neutralEnchantsFrom(raw), nil
}

// FetchAll downloads heroes and the item constants concurrently, then derives
// the three item lists from the single constants payload.
func (c *Client) FetchAll(ctx context.Context) (*Catalog, error) {
	var (
		heroes []Hero
		raw    map[string]itemConstant
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		heroes, err = c.FetchHeroes(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		raw, err = c.itemConstants(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Catalog{
		Heroes:          heroes,
		Items:           itemsFrom(raw),
		NeutralItems:    neutralItemsFrom(raw),
		NeutralEnchants: neutralEnchantsFrom(raw),
	}, nil
}

func itemsFrom(raw map[string]itemConstant) []Item {
	var items []Item
	for _, key := range sortedKeys(raw) {
		it := raw[key]
		if it.DisplayName == nil || *it.DisplayName == "" || it.Cost == nil || *it.Cost == 0 {
			continue
		}
		items = append(items, Item{Name: *it.DisplayName, Cost: *it.Cost, Recipe: it.Components})
	}
	return items
}

func neutralItemsFrom(raw map[string]itemConstant) []NeutralItem {
	var items []NeutralItem
	for _, key := range sortedKeys(raw) {
		it := raw[key]
		if it.Tier == nil {
			continue
		}
		items = append(items, NeutralItem{Name: displayName(key, it), Tier: *it.Tier})
	}
	return items
}

func neutralEnchantsFrom(raw map[string]itemConstant) []NeutralEnchant {
	var enchants []NeutralEnchant
	for _, key := range sortedKeys(raw) {
		if !strings.Contains(key, "enhancement") {
			continue
		}
		enchants = append(enchants, NeutralEnchant{Name: displayName(key, raw[key])})
	}
	return enchants
}

func displayName(key string, it itemConstant) string {
	if it.DisplayName != nil && *it.DisplayName != "" {
		return *it.DisplayName
	}
	return key
}

func sortedKeys(raw map[string]itemConstant) []string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Load fetches a full catalog from p. Clients fetch the shared constants
// once; other providers have their four lists fetched concurrently.
func Load(ctx context.Context, p Provider) (*Catalog, error) {
	if c, ok := p.(*Client); ok {
		return c.FetchAll(ctx)
	}

	var cat Catalog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cat.Heroes, err = p.FetchHeroes(gctx)
		return err
	})
	g.Go(func() (err error) {
		cat.Items, err = p.FetchItems(gctx)
		return err
	})
	g.Go(func() (err error) {
		cat.NeutralItems, err = p.FetchNeutralItems(gctx)
		return err
	})
	g.Go(func() (err error) {
		cat.NeutralEnchants, err = p.FetchNeutralEnchants(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, &FetchError{Resource: "reference data", Err: err}
	}
	return &cat, nil
}
