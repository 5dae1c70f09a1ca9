package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"matchsync/ingestion/internal/cache"
	"matchsync/ingestion/internal/metrics"
	"matchsync/ingestion/internal/models"
	"matchsync/ingestion/internal/quota"

	"github.com/rs/zerolog/log"
)

// TTLConfig holds the cache validity window per data category.
// Values are configuration inputs, sized by data volatility.
type TTLConfig struct {
	Live      time.Duration
	Fixtures  time.Duration
	Standings time.Duration
	Teams     time.Duration
	Players   time.Duration
}

// Client is the API-Football provider client. Every fetch goes through
// the response cache and the quota governor, in that order: a cache hit
// never consumes quota, and a governor denial never reaches the network.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	governor   *quota.Counter
	cache      cache.Cache
	ttl        TTLConfig

	// Provider-reported quota headers, advisory only. The local
	// governor stays authoritative for halting calls.
	mu                sync.Mutex
	providerLimit     int
	providerRemaining int
}

// NewClient creates a new provider client
func NewClient(baseURL, apiKey string, timeout time.Duration, governor *quota.Counter, responseCache cache.Cache, ttl TTLConfig) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		governor: governor,
		cache:    responseCache,
		ttl:      ttl,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// envelope is the provider's standard response wrapper
type envelope struct {
	Response json.RawMessage `json:"response"`
	Paging   struct {
		Current int `json:"current"`
		Total   int `json:"total"`
	} `json:"paging"`
}

// fingerprint builds a stable cache key from path plus sorted params
func fingerprint(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(path)
	sb.WriteByte('?')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(params[k])
	}
	return sb.String()
}

// get performs a cached, quota-governed GET against the provider
func (c *Client) get(ctx context.Context, path string, params map[string]string, ttl time.Duration) ([]byte, error) {
	key := fingerprint(path, params)

	if body, ok := c.cache.Get(key); ok {
		metrics.RecordCacheHit()
		log.Debug().Str("key", key).Msg("Response cache hit")
		return body, nil
	}
	metrics.RecordCacheMiss()

	allowed, remaining := c.governor.TryReserve()
	if !allowed {
		metrics.QuotaDeniedTotal.WithLabelValues("outbound").Inc()
		metrics.RecordUpstreamCall(path, "quota_exhausted", 0)
		return nil, fmt.Errorf("%w: %s", ErrQuotaExhausted, key)
	}

	usage := c.governor.Usage()
	metrics.RecordQuotaUsage("outbound", usage.Count, usage.Remaining)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-apisports-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	if len(params) > 0 {
		q := req.URL.Query()
		for k, v := range params {
			q.Add(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}

	log.Debug().
		Str("path", path).
		Int("quota_remaining", remaining).
		Msg("Making upstream request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamCall(path, "transport_error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordUpstreamCall(path, "transport_error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: reading body: %v", ErrTransport, err)
	}

	c.recordProviderHeaders(resp.Header)

	switch resp.StatusCode {
	case http.StatusOK:
		metrics.RecordUpstreamCall(path, "ok", time.Since(start).Seconds())
		c.cache.Set(key, body, ttl)
		return body, nil

	case http.StatusUnauthorized, http.StatusForbidden:
		metrics.RecordUpstreamCall(path, "unauthorized", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w (status %d): %s", ErrUnauthorized, resp.StatusCode, truncate(body, 256))

	case http.StatusTooManyRequests:
		metrics.RecordUpstreamCall(path, "throttled", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %s", ErrThrottled, truncate(body, 256))

	default:
		metrics.RecordUpstreamCall(path, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: status %d: %s", ErrTransport, resp.StatusCode, truncate(body, 256))
	}
}

// getResponse unmarshals the provider envelope and returns its response field
func (c *Client) getResponse(ctx context.Context, path string, params map[string]string, ttl time.Duration, out interface{}) error {
	body, err := c.get(ctx, path, params, ttl)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to unmarshal %s envelope: %w", path, err)
	}
	if len(env.Response) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Response, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", path, err)
	}

	return nil
}

// recordProviderHeaders captures the provider's advisory quota headers
func (c *Client) recordProviderHeaders(h http.Header) {
	limit, limitErr := strconv.Atoi(h.Get("x-ratelimit-requests-limit"))
	remaining, remErr := strconv.Atoi(h.Get("x-ratelimit-requests-remaining"))
	if limitErr != nil && remErr != nil {
		return
	}

	c.mu.Lock()
	if limitErr == nil {
		c.providerLimit = limit
	}
	if remErr == nil {
		c.providerRemaining = remaining
	}
	c.mu.Unlock()
}

// ProviderQuota returns the provider-reported daily limit and remaining
// calls from the most recent response. Advisory only.
func (c *Client) ProviderQuota() (limit, remaining int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.providerLimit, c.providerRemaining
}

// FetchLiveFixtures fetches all fixtures currently in play
func (c *Client) FetchLiveFixtures(ctx context.Context) ([]models.FixtureInput, error) {
	var fixtures []models.FixtureInput
	if err := c.getResponse(ctx, "fixtures", map[string]string{"live": "all"}, c.ttl.Live, &fixtures); err != nil {
		return nil, fmt.Errorf("failed to fetch live fixtures: %w", err)
	}
	return fixtures, nil
}

// FetchFixturesByDate fetches the fixture list for a calendar date
func (c *Client) FetchFixturesByDate(ctx context.Context, date time.Time) ([]models.FixtureInput, error) {
	params := map[string]string{"date": date.Format("2006-01-02")}

	var fixtures []models.FixtureInput
	if err := c.getResponse(ctx, "fixtures", params, c.ttl.Fixtures, &fixtures); err != nil {
		return nil, fmt.Errorf("failed to fetch fixtures by date: %w", err)
	}
	return fixtures, nil
}

// FetchUpcomingFixtures fetches the next n fixtures for a league season
func (c *Client) FetchUpcomingFixtures(ctx context.Context, leagueID int64, season, next int) ([]models.FixtureInput, error) {
	params := map[string]string{
		"league": strconv.FormatInt(leagueID, 10),
		"season": strconv.Itoa(season),
		"next":   strconv.Itoa(next),
	}

	var fixtures []models.FixtureInput
	if err := c.getResponse(ctx, "fixtures", params, c.ttl.Fixtures, &fixtures); err != nil {
		return nil, fmt.Errorf("failed to fetch upcoming fixtures: %w", err)
	}
	return fixtures, nil
}

// FetchFixtureByID fetches a single fixture by its provider id
func (c *Client) FetchFixtureByID(ctx context.Context, fixtureID int64) (*models.FixtureInput, error) {
	params := map[string]string{"id": strconv.FormatInt(fixtureID, 10)}

	var fixtures []models.FixtureInput
	if err := c.getResponse(ctx, "fixtures", params, c.ttl.Fixtures, &fixtures); err != nil {
		return nil, fmt.Errorf("failed to fetch fixture %d: %w", fixtureID, err)
	}
	if len(fixtures) == 0 {
		return nil, nil
	}
	return &fixtures[0], nil
}

// FetchFixtureStatistics fetches per-team statistics for one fixture
func (c *Client) FetchFixtureStatistics(ctx context.Context, fixtureID int64) ([]models.FixtureStatisticsInput, error) {
	params := map[string]string{"fixture": strconv.FormatInt(fixtureID, 10)}

	var stats []models.FixtureStatisticsInput
	if err := c.getResponse(ctx, "fixtures/statistics", params, c.ttl.Live, &stats); err != nil {
		return nil, fmt.Errorf("failed to fetch fixture statistics: %w", err)
	}
	return stats, nil
}

// FetchTeams fetches the teams of a league season
func (c *Client) FetchTeams(ctx context.Context, leagueID int64, season int) ([]models.TeamInput, error) {
	params := map[string]string{
		"league": strconv.FormatInt(leagueID, 10),
		"season": strconv.Itoa(season),
	}

	var teams []models.TeamInput
	if err := c.getResponse(ctx, "teams", params, c.ttl.Teams, &teams); err != nil {
		return nil, fmt.Errorf("failed to fetch teams: %w", err)
	}
	return teams, nil
}

// FetchStandings fetches the current table for a league season
func (c *Client) FetchStandings(ctx context.Context, leagueID int64, season int) ([]models.StandingsInput, error) {
	params := map[string]string{
		"league": strconv.FormatInt(leagueID, 10),
		"season": strconv.Itoa(season),
	}

	var standings []models.StandingsInput
	if err := c.getResponse(ctx, "standings", params, c.ttl.Standings, &standings); err != nil {
		return nil, fmt.Errorf("failed to fetch standings: %w", err)
	}
	return standings, nil
}

// FetchPlayers fetches the squad list for one team season. The players
// endpoint is paginated; each page consumes one unit of quota, so a
// quota denial mid-fetch returns the pages gathered so far with the error.
func (c *Client) FetchPlayers(ctx context.Context, teamID int64, season int) ([]models.PlayerInput, error) {
	var players []models.PlayerInput

	page := 1
	for {
		params := map[string]string{
			"team":   strconv.FormatInt(teamID, 10),
			"season": strconv.Itoa(season),
			"page":   strconv.Itoa(page),
		}

		body, err := c.get(ctx, "players", params, c.ttl.Players)
		if err != nil {
			return players, fmt.Errorf("failed to fetch players page %d: %w", page, err)
		}

		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return players, fmt.Errorf("failed to unmarshal players envelope: %w", err)
		}

		var pageItems []models.PlayerInput
		if len(env.Response) > 0 {
			if err := json.Unmarshal(env.Response, &pageItems); err != nil {
				return players, fmt.Errorf("failed to unmarshal players page: %w", err)
			}
		}
		players = append(players, pageItems...)

		if env.Paging.Total <= env.Paging.Current || env.Paging.Total == 0 {
			return players, nil
		}
		page++
	}
}

// FetchLeagues fetches the leagues tracked by id
func (c *Client) FetchLeagues(ctx context.Context, leagueID int64) ([]models.LeagueInput, error) {
	params := map[string]string{"id": strconv.FormatInt(leagueID, 10)}

	// The leagues endpoint wraps each league in an extra object
	var items []struct {
		League  models.LeagueInput `json:"league"`
		Country struct {
			Name string `json:"name"`
		} `json:"country"`
	}
	if err := c.getResponse(ctx, "leagues", params, c.ttl.Teams, &items); err != nil {
		return nil, fmt.Errorf("failed to fetch leagues: %w", err)
	}

	leagues := make([]models.LeagueInput, 0, len(items))
	for _, item := range items {
		league := item.League
		if league.Country == "" {
			league.Country = item.Country.Name
		}
		leagues = append(leagues, league)
	}
	return leagues, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
