package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/clanhub-backend/internal/http/response"
	"github.com/yungbote/clanhub-backend/internal/platform/ctxutil"
)

// headerUserID carries the user id vouched for by the upstream gateway.
const headerUserID = "X-User-Id"

// AttachActor puts the X-User-Id user on the request context. A missing
// header passes through anonymous; a malformed one is rejected.
func AttachActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(headerUserID))
		if raw == "" {
			c.Next()
			return
		}
		userID, err := uuid.Parse(raw)
		if err != nil || userID == uuid.Nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithActor(c.Request.Context(), userID))
		c.Next()
	}
}
