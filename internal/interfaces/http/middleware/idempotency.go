package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/fieldcredit/backend/internal/infrastructure/logger"
	"github.com/fieldcredit/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyHeader carries the client generated replay key
const IdempotencyHeader = "Idempotency-Key"

// maxIdempotencyKeyLength bounds the header value
const maxIdempotencyKeyLength = 128

// Idempotency rejects a second request carrying the same Idempotency-Key
// for the same user and request path while the first reservation lives. Requests
// without the header pass through. A failed request releases its key so
// the client may retry it.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", GetRequestID(c)))
			return
		}

		ctx := c.Request.Context()
		scoped := idempotencyScope(c, key)

		reserved, err := store.Reserve(ctx, scoped, ttl)
		if err != nil {
			// Store outage: let the request through rather than block collections.
			logger.L(ctx).Error("idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !reserved {
			logger.L(ctx).Info("replayed request rejected", zap.String("idempotency_key", key))
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeIdempotencyConflict,
				"A request with this Idempotency-Key was already processed",
				GetRequestID(c)))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Release(ctx, scoped); err != nil {
				logger.L(ctx).Warn("failed to release idempotency key", zap.Error(err))
			}
		}
	}
}

func idempotencyScope(c *gin.Context, key string) string {
	user := "anonymous"
	if id, ok := GetJWTUserID(c); ok {
		user = id.String()
	}
	// the concrete path, so /loans/A/payments and /loans/B/payments differ
	return c.Request.Method + ":" + c.Request.URL.Path + ":" + user + ":" + key
}
