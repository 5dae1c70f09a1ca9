package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"matchsync/ingestion/internal/cache"
	"matchsync/ingestion/internal/quota"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const liveFixturesBody = `{
	"paging": {"current": 1, "total": 1},
	"response": [{
		"fixture": {
			"id": 867946,
			"date": "2026-03-01T15:00:00+00:00",
			"status": {"long": "Second Half", "short": "2H", "elapsed": 62}
		},
		"league": {"id": 39, "name": "Premier League", "country": "England", "season": 2025, "round": "Regular Season - 27"},
		"teams": {
			"home": {"id": 40, "name": "Liverpool"},
			"away": {"id": 50, "name": "Manchester City"}
		},
		"goals": {"home": 2, "away": 1},
		"score": {
			"halftime": {"home": 1, "away": 1},
			"fulltime": {"home": null, "away": null},
			"extratime": {"home": null, "away": null},
			"penalty": {"home": null, "away": null}
		}
	}]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, ceiling int) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	governor := quota.NewCounter("outbound", ceiling)
	ttl := TTLConfig{
		Live:      30 * time.Second,
		Fixtures:  time.Hour,
		Standings: 6 * time.Hour,
		Teams:     24 * time.Hour,
		Players:   24 * time.Hour,
	}

	return NewClient(server.URL, "test-key", 5*time.Second, governor, cache.NewMemoryCache(), ttl), server
}

func TestClient_FetchLiveFixtures(t *testing.T) {
	var gotKey string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-apisports-key")
		w.Header().Set("x-ratelimit-requests-limit", "7500")
		w.Header().Set("x-ratelimit-requests-remaining", "7320")
		w.Write([]byte(liveFixturesBody))
	}, 10)

	fixtures, err := c.FetchLiveFixtures(context.Background())
	require.NoError(t, err)
	require.Len(t, fixtures, 1)

	assert.Equal(t, "test-key", gotKey, "API key header should be sent")
	assert.Equal(t, int64(867946), fixtures[0].Fixture.ID)
	assert.Equal(t, "2H", fixtures[0].Fixture.Status.Short)
	assert.Equal(t, int64(40), fixtures[0].Teams.Home.ID)

	limit, remaining := c.ProviderQuota()
	assert.Equal(t, 7500, limit, "provider quota headers should be surfaced")
	assert.Equal(t, 7320, remaining)
}

func TestClient_CacheHitSkipsQuota(t *testing.T) {
	var calls int64
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Write([]byte(liveFixturesBody))
	}, 10)

	_, err := c.FetchLiveFixtures(context.Background())
	require.NoError(t, err)

	_, err = c.FetchLiveFixtures(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls), "second fetch should come from cache")
	assert.Equal(t, 1, c.governor.Usage().Count, "cache hit must not consume quota")
}

func TestClient_QuotaExhausted(t *testing.T) {
	var calls int64
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Write([]byte(`{"response": []}`))
	}, 1)

	_, err := c.FetchStandings(context.Background(), 39, 2025)
	require.NoError(t, err)

	// Different fingerprint, quota gone
	_, err = c.FetchStandings(context.Background(), 140, 2025)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuotaExhausted)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls), "denied call must not reach the network")
}

func TestClient_Unauthorized(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"invalid key"}`))
	}, 10)

	_, err := c.FetchLiveFixtures(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_Throttled(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}, 10)

	_, err := c.FetchLiveFixtures(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrThrottled)
}

func TestClient_NoRetryOnThrottle(t *testing.T) {
	var calls int64
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}, 10)

	_, _ = c.FetchLiveFixtures(context.Background())
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls), "client must not retry on its own")
}

func TestClient_TransportError(t *testing.T) {
	c, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, 10)
	server.Close()

	_, err := c.FetchLiveFixtures(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestClient_PlayersPagination(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		if page == "2" {
			w.Write([]byte(`{"paging": {"current": 2, "total": 2}, "response": [{"player": {"id": 2, "name": "Second"}}]}`))
			return
		}
		w.Write([]byte(`{"paging": {"current": 1, "total": 2}, "response": [{"player": {"id": 1, "name": "First"}}]}`))
	}, 10)

	players, err := c.FetchPlayers(context.Background(), 40, 2025)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, int64(1), players[0].Player.ID)
	assert.Equal(t, int64(2), players[1].Player.ID)
	assert.Equal(t, 2, c.governor.Usage().Count, "each page consumes one quota unit")
}

func TestFingerprint_ParamOrderStable(t *testing.T) {
	a := fingerprint("fixtures", map[string]string{"league": "39", "season": "2025"})
	b := fingerprint("fixtures", map[string]string{"season": "2025", "league": "39"})
	assert.Equal(t, a, b, "fingerprint must not depend on map iteration order")
}
