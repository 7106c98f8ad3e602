// Package cache provides a Redis-backed HTTP response cache. Only
// successful GET responses are stored; everything else passes through.
// A nil client disables the cache without changing the middleware
// chain, so deployments without Redis run identically minus caching.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces all cache entries in Redis.
const keyPrefix = "respcache:"

// NewClient creates a Redis client from the given URL and verifies the
// connection. An empty URL returns nil, nil: caching is simply off.
func NewClient(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// ResponseCache caches HTTP responses in Redis with a fixed TTL.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResponseCache creates a ResponseCache. client may be nil, in which
// case Middleware is a no-op and Invalidate does nothing.
func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	return &ResponseCache{client: client, ttl: ttl}
}

// Enabled reports whether a cache backend is configured.
func (c *ResponseCache) Enabled() bool {
	return c.client != nil
}

// cachedResponse is the stored representation of a response.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Middleware serves cached responses for GET requests and records
// cache-misses on the way out. Responses other than 200 are never
// stored. Cache failures degrade to uncached serving; they never fail
// the request.
func (c *ResponseCache) Middleware(next http.Handler) http.Handler {
	if c.client == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		key := cacheKey(r)
		if data, err := c.client.Get(r.Context(), key).Bytes(); err == nil {
			var cached cachedResponse
			if err := json.Unmarshal(data, &cached); err == nil {
				w.Header().Set("Content-Type", cached.ContentType)
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(cached.Status)
				w.Write(cached.Body)
				return
			}
		}

		rec := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
		rec.Header().Set("X-Cache", "MISS")
		next.ServeHTTP(rec, r)

		if rec.status == http.StatusOK {
			entry := cachedResponse{
				Status:      rec.status,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.body,
			}
			data, err := json.Marshal(entry)
			if err != nil {
				return
			}
			if err := c.client.Set(r.Context(), key, data, c.ttl).Err(); err != nil {
				log.Printf("cache: failed to store %s: %v", key, err)
			}
		}
	})
}

// Invalidate removes every cached response whose path starts with
// pathPrefix. Mutating handlers call this so stale listings do not
// outlive their TTL after a write.
func (c *ResponseCache) Invalidate(ctx context.Context, pathPrefix string) {
	if c.client == nil {
		return
	}
	pattern := keyPrefix + pathPrefix + "*"
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("cache: failed to invalidate %s: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		log.Printf("cache: scan failed for %s: %v", pattern, err)
	}
}

func cacheKey(r *http.Request) string {
	key := keyPrefix + r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}
	return key
}

// recordingWriter captures the response while forwarding it to the
// client.
type recordingWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        []byte
}

func (w *recordingWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	w.body = append(w.body, b...)
	return w.ResponseWriter.Write(b)
}
