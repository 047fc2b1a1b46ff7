package middlewares

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"voiceagent-server/internal/infrastructure/cache"
)

// KeyFunc derives a cache key from the request. Returning "" skips caching
// for that request.
type KeyFunc func(c *gin.Context) string

type bodyCapture struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapture) Write(p []byte) (int, error) {
	w.buf.Write(p)
	return w.ResponseWriter.Write(p)
}

// CacheGet serves 200 responses from Redis when present and otherwise
// captures the handler's output and stores it under the derived key. A nil
// cache passes every request straight through.
func CacheGet(rc *cache.RedisCache, keyFn KeyFunc, ttl time.Duration, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rc == nil {
			c.Next()
			return
		}
		key := keyFn(c)
		if key == "" {
			c.Next()
			return
		}

		if payload, err := rc.Get(c.Request.Context(), key); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
			c.Abort()
			return
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn().Err(err).Str("key", key).Msg("cache read error")
		}

		capture := &bodyCapture{ResponseWriter: c.Writer}
		c.Writer = capture

		c.Next()

		if c.Writer.Status() == http.StatusOK && capture.buf.Len() > 0 {
			if err := rc.Set(c.Request.Context(), key, capture.buf.Bytes(), ttl); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("cache write error")
			}
		}
	}
}

// CacheInvalidate drops the derived keys before the handler runs, so writes
// are never served stale reads.
func CacheInvalidate(rc *cache.RedisCache, log zerolog.Logger, keyFns ...KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rc != nil {
			keys := make([]string, 0, len(keyFns))
			for _, fn := range keyFns {
				if key := fn(c); key != "" {
					keys = append(keys, key)
				}
			}
			if err := rc.Delete(c.Request.Context(), keys...); err != nil {
				log.Warn().Err(err).Msg("cache invalidate error")
			}
		}
		c.Next()
	}
}
