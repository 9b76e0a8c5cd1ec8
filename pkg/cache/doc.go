// Package cache provides a Redis-backed page cache for Healthie GraphQL responses.
//
// Every page fetched during a sync is keyed by its tenant (a digest of endpoint and API
// key), query document and variables, so a re-run within the TTL with the same
// credentials replays pages instead of hitting the API again. Pages are never shared
// across API keys or endpoints. Only successful responses without a
// GraphQL errors array are cached.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient)
//
//	key := cache.CacheKey{
//		Tenant:    cache.Tenant(baseURL, apiKey),
//		Query:     document,
//		Variables: map[string]any{"offset": 10},
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the API, then:
//		_ = manager.Set(ctx, key, cache.NewEntry(body, cache.DefaultTTL))
//	}
//
// # Metrics
//
//   - healthie_cache_hits_total{layer="redis"} - Cache hits
//   - healthie_cache_misses_total - Cache misses
//   - healthie_cache_size_bytes{layer="redis"} - Bytes written
//   - healthie_cache_errors_total{operation} - Cache operation errors
package cache
