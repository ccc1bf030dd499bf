// Package wikidata resolves people against the Wikidata SPARQL endpoint.
package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	domainerrors "fantamorto/internal/errors"
	"fantamorto/internal/models"
)

const (
	// Max item IDs per dead-only query.
	chunkSize = 100
	// Max item IDs per wbgetentities call.
	entitiesChunkSize = 50
)

type Config struct {
	Endpoint          string        `env:"ENDPOINT" envDefault:"https://query.wikidata.org/sparql"`
	EntitiesEndpoint  string        `env:"ENTITIES_ENDPOINT" envDefault:"https://www.wikidata.org/w/api.php"`
	Language          string        `env:"LANGUAGE" envDefault:"it"`
	Timeout           time.Duration `env:"TIMEOUT" envDefault:"30s"`
	UserAgent         string        `env:"USER_AGENT" envDefault:"Fantamorto/1.0 (https://github.com/fantamorto)"`
	RequestsPerSecond float64       `env:"REQUESTS_PER_SECOND" envDefault:"2"`
}

type Client struct {
	endpoint  string
	entities  string
	language  string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
	clock     clockwork.Clock
}

func NewClient(cfg *Config, clock clockwork.Clock) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	lang := cfg.Language
	if lang == "" {
		lang = "it"
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Client{
		endpoint:  cfg.Endpoint,
		entities:  cfg.EntitiesEndpoint,
		language:  lang,
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(limit, 1),
		clock:     clock,
	}
}

// Search resolves a free-text name or an item ID into candidate people,
// oldest first.
func (c *Client) Search(ctx context.Context, query string) ([]*models.Athlet, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if IsID(strings.ToUpper(query)) {
		return c.run(ctx, idQuery(strings.ToUpper(query), c.language))
	}
	return c.run(ctx, nameQuery(query, c.language))
}

// FindDead returns the people among wids that Wikidata knows to be dead,
// with refreshed facts.
func (c *Client) FindDead(ctx context.Context, wids []string) ([]*models.Athlet, error) {
	ids := make([]string, 0, len(wids))
	for _, wid := range wids {
		if IsID(wid) && !slices.Contains(ids, wid) {
			ids = append(ids, wid)
		}
	}

	var dead []*models.Athlet
	for chunk := range slices.Chunk(ids, chunkSize) {
		athlets, err := c.run(ctx, deadQuery(chunk, c.language))
		if err != nil {
			return nil, err
		}
		dead = append(dead, athlets...)
	}
	return dead, nil
}

func (c *Client) run(ctx context.Context, query string) ([]*models.Athlet, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("query", query)

	var data sparqlResponse
	if err := c.get(ctx, c.endpoint, params, "application/sparql-results+json", &data); err != nil {
		return nil, err
	}
	groups := groupBindings(data.Results.Bindings)

	wids := make([]string, 0, len(groups))
	for _, g := range groups {
		if !slices.Contains(wids, g.wid()) {
			wids = append(wids, g.wid())
		}
	}
	orders, err := c.claimOrders(ctx, wids)
	if err != nil {
		return nil, err
	}
	return athletsFromGroups(groups, orders, c.clock.Now()), nil
}

// claimOrders fetches the statement ranks of wids. Without an entities
// endpoint the labels keep the SPARQL order.
func (c *Client) claimOrders(ctx context.Context, wids []string) (map[string]claimOrder, error) {
	orders := make(map[string]claimOrder, len(wids))
	if c.entities == "" {
		return orders, nil
	}
	for chunk := range slices.Chunk(wids, entitiesChunkSize) {
		params := url.Values{}
		params.Set("action", "wbgetentities")
		params.Set("ids", strings.Join(chunk, "|"))
		params.Set("props", "claims")
		params.Set("format", "json")

		var data entitiesResponse
		if err := c.get(ctx, c.entities, params, "application/json", &data); err != nil {
			return nil, err
		}
		for wid, entity := range data.Entities {
			orders[wid] = rankedClaims(entity.Claims)
		}
	}
	return orders, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, accept string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return unavailable(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return unavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return unavailable(fmt.Errorf("status code %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return unavailable(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func unavailable(err error) error {
	return domainerrors.Newf(domainerrors.KindUpstreamUnavailable, "wikidata is unavailable: %v", err)
}
