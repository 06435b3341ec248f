package http

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/example/sprint-sense/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" { id = uuid.NewString() }
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func accessLog(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	}
}

// apiKeyAuth rejects requests whose X-API-Key header does not match the
// configured key. With no key configured, auth is disabled.
func apiKeyAuth(cfg config.Config, log zerolog.Logger) gin.HandlerFunc {
	if cfg.APIKey == "" {
		log.Warn().Msg("API_KEY not set, http auth disabled")
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		got := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(got), []byte(cfg.APIKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid api key"})
			return
		}
		c.Next()
	}
}
