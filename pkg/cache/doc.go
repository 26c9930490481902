// Package cache stores hotel API GET responses in Redis.
//
// The room catalogue and availability answers change rarely, and the CLI
// re-reads them on every page turn of a fresh process. Responses are kept
// until their Expires header (or DefaultTTL when the API sends none) and
// revalidated with If-None-Match / If-Modified-Since when the API supplied an
// ETag or Last-Modified value.
//
// # Usage
//
//	store, err := cache.NewStore(redisClient)
//	key := cache.Key{Path: "/rooms"}
//	entry, err := store.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch, then:
//		entry, _ = cache.FromResponse(resp)
//		_ = store.Set(ctx, key, entry)
//	}
//
// Responses fetched with a bearer token carry the token subject in
// Key.Scope so one user's bookings are never served to another.
//
// # Metrics
//
//   - hotel_cache_hits_total
//   - hotel_cache_misses_total
//   - hotel_cache_stored_bytes
//   - hotel_cache_not_modified_total
//   - hotel_cache_conditional_requests_total
//   - hotel_cache_errors_total{operation}
package cache
