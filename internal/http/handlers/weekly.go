package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/clanhub-backend/internal/http/response"
	"github.com/yungbote/clanhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/clanhub-backend/internal/services"
)

type WeeklyHandler struct {
	weekly services.WeeklyStatsService
}

func NewWeeklyHandler(weekly services.WeeklyStatsService) *WeeklyHandler {
	return &WeeklyHandler{weekly: weekly}
}

// GET /api/clans/:id/weekly?week=YYYY-Www
func (h *WeeklyHandler) Get(c *gin.Context) {
	clanID, ok := clanIDParam(c)
	if !ok {
		return
	}
	out, err := h.weekly.GetWeeklySummary(dbctx.Context{Ctx: c.Request.Context()}, clanID, c.Query("week"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// PUT /api/clans/:id/weekly?week=YYYY-Www
func (h *WeeklyHandler) Update(c *gin.Context) {
	clanID, ok := clanIDParam(c)
	if !ok {
		return
	}
	var body services.WeeklyStatsUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	out, err := h.weekly.UpdateWeeklyStats(dbctx.Context{Ctx: c.Request.Context()}, clanID, c.Query("week"), body)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}
