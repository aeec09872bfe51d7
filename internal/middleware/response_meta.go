package middleware

import "github.com/gin-gonic/gin"

const metaContextKey = "responseMeta"

// WithResponseMeta seeds a per-request metadata map that handlers enrich and the
// response envelope ships back in its meta block.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(metaContextKey, map[string]interface{}{})
		c.Next()
	}
}

// SetCacheHit records whether the response was served from the analytics cache.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMetaValue(c, "cache_hit", hit)
}

// SetMetaValue stores one metadata entry for the current response.
func SetMetaValue(c *gin.Context, key string, value interface{}) {
	meta := ensureMeta(c)
	meta[key] = value
}

// ExtractMeta returns the metadata accumulated for the current response. The map is
// never nil, so handlers can pass it straight to the envelope.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	return ensureMeta(c)
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if raw, ok := c.Get(metaContextKey); ok {
		if meta, ok := raw.(map[string]interface{}); ok {
			return meta
		}
	}
	meta := map[string]interface{}{}
	c.Set(metaContextKey, meta)
	return meta
}
