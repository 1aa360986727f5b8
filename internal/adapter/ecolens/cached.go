package ecolens

import (
	"context"
	"time"

	"github.com/Sureka400/Ecolens-AI/internal/cache"
	"github.com/Sureka400/Ecolens-AI/internal/domain"
	"github.com/Sureka400/Ecolens-AI/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// CachedClient decorates Client for the location-keyed panel endpoints:
// identical in-flight requests share one backend call, and successful
// responses are kept for a short TTL. Other calls pass through.
//
// Cached values are shared between sessions and must be treated as
// read-only.
type CachedClient struct {
	*Client
	cache   *cache.LRU[string, any]
	ttl     time.Duration
	group   singleflight.Group
	metrics *observability.Metrics
}

// NewCachedClient wraps c. A ttl of zero disables response caching but keeps
// request de-duplication.
func NewCachedClient(c *Client, ttl time.Duration, maxEntries int, clk clockwork.Clock, metrics *observability.Metrics) *CachedClient {
	return &CachedClient{
		Client: c,
		cache: cache.New(maxEntries,
			cache.WithTTL[string, any](ttl),
			cache.WithClock[string, any](clk),
		),
		ttl:     ttl,
		metrics: metrics,
	}
}

func (c *CachedClient) Overview(ctx context.Context) (domain.Overview, error) {
	return cached(ctx, c, EndpointOverview, EndpointOverview, c.Client.Overview)
}

func (c *CachedClient) Map(ctx context.Context, lat, lon float64, layer string) (domain.MapData, error) {
	return cached(ctx, c, EndpointMap, requestKey(EndpointMap, lat, lon, layer), func(ctx context.Context) (domain.MapData, error) {
		return c.Client.Map(ctx, lat, lon, layer)
	})
}

func (c *CachedClient) Snapshot(ctx context.Context, lat, lon float64) ([]domain.Metric, error) {
	return cached(ctx, c, EndpointSnapshot, requestKey(EndpointSnapshot, lat, lon, ""), func(ctx context.Context) ([]domain.Metric, error) {
		return c.Client.Snapshot(ctx, lat, lon)
	})
}

func (c *CachedClient) Insights(ctx context.Context, lat, lon float64) (domain.Insights, error) {
	return cached(ctx, c, EndpointInsights, requestKey(EndpointInsights, lat, lon, ""), func(ctx context.Context) (domain.Insights, error) {
		return c.Client.Insights(ctx, lat, lon)
	})
}

func (c *CachedClient) Forecast(ctx context.Context, lat, lon float64) (domain.Forecast, error) {
	return cached(ctx, c, EndpointForecast, requestKey(EndpointForecast, lat, lon, ""), func(ctx context.Context) (domain.Forecast, error) {
		return c.Client.Forecast(ctx, lat, lon)
	})
}

func (c *CachedClient) ImpactScore(ctx context.Context, lat, lon float64) (domain.ImpactScore, error) {
	return cached(ctx, c, EndpointImpact, requestKey(EndpointImpact, lat, lon, ""), func(ctx context.Context) (domain.ImpactScore, error) {
		return c.Client.ImpactScore(ctx, lat, lon)
	})
}

func (c *CachedClient) ImpactSimulation(ctx context.Context, lat, lon float64) (domain.Simulation, error) {
	return cached(ctx, c, EndpointSimulation, requestKey(EndpointSimulation, lat, lon, ""), func(ctx context.Context) (domain.Simulation, error) {
		return c.Client.ImpactSimulation(ctx, lat, lon)
	})
}

// requestKey identifies a request by endpoint, coordinates and layer.
func requestKey(endpoint string, lat, lon float64, layer string) string {
	key := endpoint + "?" + coordParams(lat, lon).Encode()
	if layer != "" {
		key += "&layer=" + layer
	}
	return key
}

// cached serves key from the cache or runs fetch once for all concurrent
// callers. The shared backend call is detached from any single caller's
// context and bounded by the client timeout; a caller whose context ends
// stops waiting and gets ctx.Err().
func cached[T any](ctx context.Context, c *CachedClient, endpoint, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	if c.ttl > 0 {
		if v, ok := c.cache.Get(key); ok {
			c.metrics.BackendCache.WithLabelValues(endpoint, "hit").Inc()
			return v.(T), nil
		}
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		v, err := fetch(detached)
		if err != nil {
			return nil, err
		}
		if c.ttl > 0 {
			c.cache.Put(key, v)
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.metrics.BackendCache.WithLabelValues(endpoint, "shared").Inc()
		} else {
			c.metrics.BackendCache.WithLabelValues(endpoint, "miss").Inc()
		}
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
