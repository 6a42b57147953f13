package vertical

import (
	"context"

	"exits_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

const contextKey = "vertical"

// Middleware resolves the vertical for each request from the Host header, or
// from a valid ?vertical= override, and exposes it to handlers and clients.
func Middleware(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := reg.Resolve(c.Request.Host)
		if override := c.Query("vertical"); override != "" {
			if ov, ok := reg.BySlug(override); ok {
				v = ov
			}
		}

		c.Set(contextKey, v)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.VerticalKey, v.Slug))
		c.Header("X-Vertical-Slug", v.Slug)
		c.Header("X-Vertical-Name", v.Name)
		c.Header("X-Vertical-Domain", v.Domain)
		c.Next()
	}
}

// FromContext returns the vertical set by Middleware, or fallback when absent.
func FromContext(c *gin.Context, fallback *Vertical) *Vertical {
	if v, ok := c.Get(contextKey); ok {
		if typed, ok := v.(*Vertical); ok {
			return typed
		}
	}
	return fallback
}
