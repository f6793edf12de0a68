package server

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"

	atsErrors "atsmatch/internal/errors"
)

const cacheHeader = "X-Cache"

// analysisCache memoises deterministic responses keyed by a hash of the
// endpoint and its resolved inputs. A nil cache always misses.
type analysisCache struct {
	entries *lru.Cache[string, any]
}

func newAnalysisCache(size int) (*analysisCache, error) {
	if size <= 0 {
		return nil, nil
	}
	entries, err := lru.New[string, any](size)
	if err != nil {
		return nil, atsErrors.NewConfigError(atsErrors.ErrCodeInvalidConfig, "invalid server.cacheSize", err)
	}
	return &analysisCache{entries: entries}, nil
}

func cacheKey(endpoint string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(endpoint))
	for _, p := range parts {
		// Length-prefix each part so ("ab","c") and ("a","bc") differ.
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *analysisCache) get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	return c.entries.Get(key)
}

func (c *analysisCache) add(key string, value any) {
	if c == nil {
		return
	}
	c.entries.Add(key, value)
}

func (c *analysisCache) remove(key string) {
	if c == nil {
		return
	}
	c.entries.Remove(key)
}

func (c *analysisCache) stats() map[string]any {
	if c == nil {
		return map[string]any{"enabled": false}
	}
	return map[string]any{
		"enabled": true,
		"entries": c.entries.Len(),
	}
}

// memo returns the cached value for endpoint and parts, computing and
// storing it on a miss. The outcome is reported in the X-Cache header.
// A cached value of the wrong type is evicted and reported as an internal
// error.
func memo[T any](ctx context.Context, s *Server, w http.ResponseWriter, endpoint string, compute func() T, parts ...string) (T, error) {
	if s.cache == nil {
		return compute(), nil
	}

	key := cacheKey(endpoint, parts...)
	if v, ok := s.cache.get(key); ok {
		s.metrics().RecordCacheLookup(ctx, endpoint, true)
		result, ok := v.(T)
		if !ok {
			s.cache.remove(key)
			var zero T
			return zero, atsErrors.NewInternalError(atsErrors.ErrCodeCacheEntryInvalid,
				fmt.Sprintf("cached %s result has type %T", endpoint, v), nil)
		}
		w.Header().Set(cacheHeader, "HIT")
		return result, nil
	}

	s.metrics().RecordCacheLookup(ctx, endpoint, false)
	w.Header().Set(cacheHeader, "MISS")
	result := compute()
	s.cache.add(key, result)
	return result, nil
}
