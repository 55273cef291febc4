package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware. Caching is
// off when Enabled is false or no Redis client is available.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
	// Paths lists the route prefixes eligible for caching, e.g. /api/movies.
	Paths []string
	// FlushPaths lists uncached prefixes whose writes still change cached
	// responses; booking writes move show seat counts.
	FlushPaths []string
}

// LoadCacheConfig reads CACHE_* variables. Only public catalog reads are
// cached by default.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      parseList(envStr("CACHE_METHODS", "GET"), strings.ToUpper),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
		Paths:        keys(parseList(envStr("CACHE_PATHS", "/api/movies,/api/shows,/api/theatres,/api/cineasts"), nil)),
		FlushPaths:   keys(parseList(envStr("CACHE_FLUSH_PATHS", "/api/bookings"), nil)),
	}
}

func parseList(s string, norm func(string) string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if norm != nil {
			p = norm(p)
		}
		if p != "" {
			m[p] = true
		}
	}
	return m
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
