package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bloodreport-backend/internal/shared/server/respond"
)

const callerIDKey = "callerId"

// Identity resolves the caller from the X-Guest-Id header. There is no
// account system; the guest ID only scopes reports and analyses to one
// browser session.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		guestID := strings.TrimSpace(c.GetHeader("X-Guest-Id"))
		if guestID == "" {
			respond.Error(c, http.StatusUnauthorized, "missing_identity", "X-Guest-Id header is required", nil)
			return
		}
		if len(guestID) > 128 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "X-Guest-Id is too long", nil)
			return
		}

		c.Set(callerIDKey, "guest:"+guestID)
		c.Next()
	}
}

// CallerIDFromContext fetches the caller ID set by the Identity middleware.
func CallerIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(callerIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
