package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/rental_ledger/internal/utils"
	"github.com/gin-gonic/gin"
)

// PosthogMiddleware tracks successful authenticated API calls as PostHog
// events named after the route, e.g. "api_v1_reports_balance-sheet".
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !posthogClient.IsInitialized() {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		userID, exists := GetUserIDFromContext(c)
		if !exists {
			return
		}

		eventName := strings.ReplaceAll(strings.TrimPrefix(c.FullPath(), "/"), "/", "_")
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"status_code": c.Writer.Status(),
		}
		for _, param := range c.Params {
			props["param_"+param.Key] = param.Value
		}
		for _, key := range []string{"basis", "residenceId"} {
			if v := c.Query(key); v != "" {
				props[key] = v
			}
		}

		posthogClient.Enqueue(userID, eventName, props)
	}
}
