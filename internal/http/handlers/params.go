package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/clanhub-backend/internal/http/response"
)

func clanIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_clan_id", err)
		return uuid.Nil, false
	}
	return id, true
}

// pageParams reads limit/offset; absent values stay zero.
func pageParams(c *gin.Context) (limit, offset int, ok bool) {
	var err error
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
			return 0, 0, false
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if offset, err = strconv.Atoi(raw); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_offset", err)
			return 0, 0, false
		}
	}
	return limit, offset, true
}
