package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/logger"
)

// GuestSessionHeader carries the anonymous session ID issued by
// POST /api/v1/auth/guest
const GuestSessionHeader = "X-Guest-Session"

// GuestSessionKey is the gin context key for a validated guest session ID
const GuestSessionKey = "guest_session"

// GuestSession validates the guest session header against the session
// store and stores the session ID in the request context. Requests
// without the header, or with an expired session, pass through without
// a session; handlers that require an owner reject them.
func GuestSession(store cache.GuestSessionStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(GuestSessionHeader)
		if sessionID == "" {
			c.Next()
			return
		}

		valid, err := store.Validate(c.Request.Context(), sessionID)
		if err != nil {
			if log != nil {
				log.Error("failed to validate guest session",
					zap.String("session_id", sessionID),
					zap.Error(err))
			}
			c.Next()
			return
		}
		if !valid {
			c.Next()
			return
		}

		c.Set(GuestSessionKey, sessionID)

		ctx := c.Request.Context()
		ctxLog := logger.FromContext(ctx)
		ctx, _ = logger.WithGuestSession(ctx, ctxLog, sessionID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetGuestSession retrieves the validated guest session ID, if any
func GetGuestSession(c *gin.Context) string {
	return c.GetString(GuestSessionKey)
}
