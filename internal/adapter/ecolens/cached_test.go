package ecolens

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sureka400/Ecolens-AI/internal/domain"
	"github.com/Sureka400/Ecolens-AI/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingServer(t *testing.T, hits *atomic.Int32, gate <-chan struct{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if gate != nil {
			<-gate
		}
		writeJSON(t, w, domain.Forecast{Forecast: []domain.ForecastPoint{
			{Day: "Today", Current: 72, WithAction: 72},
			{Day: "Day 2", Current: 76, WithAction: 69},
		}})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newCached(srv *httptest.Server, ttl time.Duration, clk clockwork.Clock) *CachedClient {
	return NewCachedClient(testClient(srv.URL), ttl, 16, clk, observability.NewMetricsForTesting())
}

func TestCachedClient_CacheHit(t *testing.T) {
	var hits atomic.Int32
	c := newCached(countingServer(t, &hits, nil), time.Minute, clockwork.NewFakeClock())

	f1, err := c.Forecast(context.Background(), 48.8566, 2.3522)
	require.NoError(t, err)
	f2, err := c.Forecast(context.Background(), 48.8566, 2.3522)
	require.NoError(t, err)

	assert.Equal(t, f1, f2)
	assert.Equal(t, int32(1), hits.Load(), "second call should be served from cache")
}

func TestCachedClient_DifferentCoordinatesMiss(t *testing.T) {
	var hits atomic.Int32
	c := newCached(countingServer(t, &hits, nil), time.Minute, clockwork.NewFakeClock())

	_, _ = c.Forecast(context.Background(), 48.8566, 2.3522)
	_, _ = c.Forecast(context.Background(), 51.5074, -0.1278)

	assert.Equal(t, int32(2), hits.Load())
}

func TestCachedClient_TTLExpiry(t *testing.T) {
	var hits atomic.Int32
	clk := clockwork.NewFakeClock()
	c := newCached(countingServer(t, &hits, nil), 30*time.Second, clk)

	_, _ = c.Forecast(context.Background(), 1, 2)
	clk.Advance(31 * time.Second)
	_, _ = c.Forecast(context.Background(), 1, 2)

	assert.Equal(t, int32(2), hits.Load())
}

func TestCachedClient_ZeroTTLDisablesCache(t *testing.T) {
	var hits atomic.Int32
	c := newCached(countingServer(t, &hits, nil), 0, clockwork.NewFakeClock())

	_, _ = c.Forecast(context.Background(), 1, 2)
	_, _ = c.Forecast(context.Background(), 1, 2)

	assert.Equal(t, int32(2), hits.Load())
}

func TestCachedClient_DeduplicatesInFlight(t *testing.T) {
	var hits atomic.Int32
	gate := make(chan struct{})
	c := newCached(countingServer(t, &hits, gate), 0, clockwork.NewFakeClock())

	var wg sync.WaitGroup
	results := make([]domain.Forecast, 2)
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, err := c.Forecast(context.Background(), 1, 2)
			assert.NoError(t, err)
			results[i] = f
		}()
		if i == 0 {
			require.Eventually(t, func() bool { return hits.Load() == 1 }, time.Second, 5*time.Millisecond)
		}
	}

	// Give the second caller time to join the in-flight request.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, results[0], results[1])
}

func TestCachedClient_CallerCancelStopsWaiting(t *testing.T) {
	var hits atomic.Int32
	gate := make(chan struct{})
	c := newCached(countingServer(t, &hits, gate), time.Minute, clockwork.NewFakeClock())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Forecast(ctx, 1, 2)
		errCh <- err
	}()

	require.Eventually(t, func() bool { return hits.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	// The detached backend call still completes and warms the cache.
	close(gate)
	require.Eventually(t, func() bool {
		_, ok := c.cache.Get(requestKey(EndpointForecast, 1, 2, ""))
		return ok
	}, time.Second, 5*time.Millisecond)

	_, err := c.Forecast(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestCachedClient_ErrorsNotCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	c := newCached(srv, time.Minute, clockwork.NewFakeClock())

	_, err := c.Snapshot(context.Background(), 1, 2)
	require.Error(t, err)
	_, err = c.Snapshot(context.Background(), 1, 2)
	require.Error(t, err)

	assert.Equal(t, int32(2), hits.Load())
}

func TestRequestKey(t *testing.T) {
	assert.Equal(t, "map?lat=48.85661&lon=2.35222&layer=air", requestKey(EndpointMap, 48.85661, 2.35222, "air"))
	assert.Equal(t, "snapshot?lat=48.8566&lon=2.3522", requestKey(EndpointSnapshot, 48.8566, 2.3522, ""))
	assert.NotEqual(t,
		requestKey(EndpointSnapshot, 48.85661, 2.35222, ""),
		requestKey(EndpointSnapshot, 48.85669, 2.35228, ""),
		"nearby positions are distinct requests")
}

func TestCachedClient_NearbyCoordinatesMiss(t *testing.T) {
	var hits atomic.Int32
	c := newCached(countingServer(t, &hits, nil), time.Minute, clockwork.NewFakeClock())

	_, err := c.Forecast(context.Background(), 48.85661, 2.35222)
	require.NoError(t, err)
	_, err = c.Forecast(context.Background(), 48.85669, 2.35228)
	require.NoError(t, err)

	assert.Equal(t, int32(2), hits.Load())
}
